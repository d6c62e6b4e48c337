package boards

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dawnhq/stickyboard/internal/db"
)

const boardColumns = "id, owner_id, name, is_shared, in_trash, notes_count, last_modified, created_at"

// PGStore persists boards in PostgreSQL.
type PGStore struct {
	db db.DBTX
}

// NewPGStore creates a board store over the given connection.
func NewPGStore(conn db.DBTX) *PGStore {
	return &PGStore{db: conn}
}

// Create inserts a board owned by the given user.
func (s *PGStore) Create(ctx context.Context, ownerID, name string) (Board, error) {
	pgOwnerID, err := db.ParseUUID(ownerID)
	if err != nil {
		return Board{}, err
	}
	query := `
		INSERT INTO boards (owner_id, name)
		VALUES ($1, $2)
		RETURNING ` + boardColumns

	board, err := scanBoard(s.db.QueryRow(ctx, query, pgOwnerID, name))
	if err != nil {
		return Board{}, fmt.Errorf("create board: %w", err)
	}
	return board, nil
}

// Get returns the board with the given id, or ErrBoardNotFound.
func (s *PGStore) Get(ctx context.Context, id string) (Board, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return Board{}, ErrBoardNotFound
	}
	query := `SELECT ` + boardColumns + ` FROM boards WHERE id = $1`

	board, err := scanBoard(s.db.QueryRow(ctx, query, pgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Board{}, ErrBoardNotFound
		}
		return Board{}, fmt.Errorf("get board: %w", err)
	}
	return board, nil
}

// ListForUser returns the user's own boards plus boards shared by others,
// excluding trashed boards the user does not own.
func (s *PGStore) ListForUser(ctx context.Context, userID string) ([]Board, error) {
	pgUserID, err := db.ParseUUID(userID)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT ` + boardColumns + `
		FROM boards
		WHERE owner_id = $1 OR (is_shared AND NOT in_trash)
		ORDER BY last_modified DESC`

	rows, err := s.db.Query(ctx, query, pgUserID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	var out []Board
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		out = append(out, board)
	}
	return out, rows.Err()
}

// Update patches name and sharing flag; nil fields keep current values.
func (s *PGStore) Update(ctx context.Context, id string, req UpdateRequest) (Board, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return Board{}, ErrBoardNotFound
	}
	query := `
		UPDATE boards SET
			name = COALESCE($2, name),
			is_shared = COALESCE($3, is_shared),
			last_modified = now()
		WHERE id = $1
		RETURNING ` + boardColumns

	board, err := scanBoard(s.db.QueryRow(ctx, query, pgID, req.Name, req.IsShared))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Board{}, ErrBoardNotFound
		}
		return Board{}, fmt.Errorf("update board: %w", err)
	}
	return board, nil
}

// SetTrash moves a board into or out of the trash.
func (s *PGStore) SetTrash(ctx context.Context, id string, inTrash bool) (Board, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return Board{}, ErrBoardNotFound
	}
	query := `
		UPDATE boards SET in_trash = $2, last_modified = now()
		WHERE id = $1
		RETURNING ` + boardColumns

	board, err := scanBoard(s.db.QueryRow(ctx, query, pgID, inTrash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Board{}, ErrBoardNotFound
		}
		return Board{}, fmt.Errorf("set board trash: %w", err)
	}
	return board, nil
}

// Delete removes the board; notes and presence cascade.
func (s *PGStore) Delete(ctx context.Context, id string) error {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return ErrBoardNotFound
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM boards WHERE id = $1`, pgID)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBoardNotFound
	}
	return nil
}

// ApplyNotesDelta atomically adjusts the notes counter and bumps
// last_modified.
func (s *PGStore) ApplyNotesDelta(ctx context.Context, id string, delta int) error {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return ErrBoardNotFound
	}
	query := `
		UPDATE boards SET
			notes_count = GREATEST(notes_count + $2, 0),
			last_modified = now()
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, pgID, delta)
	if err != nil {
		return fmt.Errorf("adjust notes count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBoardNotFound
	}
	return nil
}

// Touch bumps last_modified without other changes.
func (s *PGStore) Touch(ctx context.Context, id string) error {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return ErrBoardNotFound
	}
	_, err = s.db.Exec(ctx, `UPDATE boards SET last_modified = now() WHERE id = $1`, pgID)
	if err != nil {
		return fmt.Errorf("touch board: %w", err)
	}
	return nil
}

func scanBoard(row pgx.Row) (Board, error) {
	var (
		id           pgtype.UUID
		ownerID      pgtype.UUID
		name         string
		isShared     bool
		inTrash      bool
		notesCount   int
		lastModified pgtype.Timestamptz
		createdAt    pgtype.Timestamptz
	)
	if err := row.Scan(&id, &ownerID, &name, &isShared, &inTrash, &notesCount, &lastModified, &createdAt); err != nil {
		return Board{}, err
	}
	return Board{
		ID:           db.UUIDString(id),
		OwnerID:      db.UUIDString(ownerID),
		Name:         name,
		IsShared:     isShared,
		InTrash:      inTrash,
		NotesCount:   notesCount,
		LastModified: db.TimeFromPg(lastModified),
		CreatedAt:    db.TimeFromPg(createdAt),
	}, nil
}
