package notes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dawnhq/stickyboard/internal/boards"
	"github.com/dawnhq/stickyboard/internal/db"
)

const noteColumns = "id, board_id, content, color, pos_x, pos_y, width, height, z_index, created_at"

// PGStore persists notes in PostgreSQL.
type PGStore struct {
	db db.DBTX
}

// NewPGStore creates a note store over the given connection.
func NewPGStore(conn db.DBTX) *PGStore {
	return &PGStore{db: conn}
}

// Create inserts a note on a board.
func (s *PGStore) Create(ctx context.Context, req CreateRequest) (Note, error) {
	pgBoardID, err := db.ParseUUID(req.BoardID)
	if err != nil {
		return Note{}, err
	}
	query := `
		INSERT INTO notes (board_id, content, color, pos_x, pos_y, width, height, z_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + noteColumns

	note, err := scanNote(s.db.QueryRow(ctx, query,
		pgBoardID, req.Content, req.Color,
		req.Position.X, req.Position.Y,
		req.Size.Width, req.Size.Height,
		req.ZIndex,
	))
	if err != nil {
		// board deleted between the access check and the insert
		if db.IsForeignKeyViolation(err) {
			return Note{}, boards.ErrBoardNotFound
		}
		return Note{}, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

// Get returns a note by id, or ErrNoteNotFound.
func (s *PGStore) Get(ctx context.Context, id string) (Note, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return Note{}, ErrNoteNotFound
	}
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1`

	note, err := scanNote(s.db.QueryRow(ctx, query, pgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Note{}, ErrNoteNotFound
		}
		return Note{}, fmt.Errorf("get note: %w", err)
	}
	return note, nil
}

// ListByBoard returns all notes on a board.
func (s *PGStore) ListByBoard(ctx context.Context, boardID string) ([]Note, error) {
	pgBoardID, err := db.ParseUUID(boardID)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + noteColumns + ` FROM notes WHERE board_id = $1 ORDER BY z_index, created_at`

	rows, err := s.db.Query(ctx, query, pgBoardID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, note)
	}
	return out, rows.Err()
}

// Update patches a note; nil fields keep current values.
func (s *PGStore) Update(ctx context.Context, id string, req UpdateRequest) (Note, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return Note{}, ErrNoteNotFound
	}

	var posX, posY *float64
	if req.Position != nil {
		posX, posY = &req.Position.X, &req.Position.Y
	}
	var width, height *float64
	if req.Size != nil {
		width, height = &req.Size.Width, &req.Size.Height
	}

	query := `
		UPDATE notes SET
			content = COALESCE($2, content),
			color = COALESCE($3, color),
			pos_x = COALESCE($4, pos_x),
			pos_y = COALESCE($5, pos_y),
			width = COALESCE($6, width),
			height = COALESCE($7, height),
			z_index = COALESCE($8, z_index)
		WHERE id = $1
		RETURNING ` + noteColumns

	note, err := scanNote(s.db.QueryRow(ctx, query, pgID,
		req.Content, req.Color, posX, posY, width, height, req.ZIndex))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Note{}, ErrNoteNotFound
		}
		return Note{}, fmt.Errorf("update note: %w", err)
	}
	return note, nil
}

// Delete removes a note.
func (s *PGStore) Delete(ctx context.Context, id string) error {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return ErrNoteNotFound
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM notes WHERE id = $1`, pgID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func scanNote(row pgx.Row) (Note, error) {
	var (
		id        pgtype.UUID
		boardID   pgtype.UUID
		content   string
		color     string
		x, y      float64
		w, h      float64
		zIndex    int
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &boardID, &content, &color, &x, &y, &w, &h, &zIndex, &createdAt); err != nil {
		return Note{}, err
	}
	return Note{
		ID:        db.UUIDString(id),
		BoardID:   db.UUIDString(boardID),
		Content:   content,
		Color:     color,
		Position:  Position{X: x, Y: y},
		Size:      Size{Width: w, Height: h},
		ZIndex:    zIndex,
		CreatedAt: db.TimeFromPg(createdAt),
	}, nil
}
