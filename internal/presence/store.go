package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dawnhq/stickyboard/internal/boards"
	"github.com/dawnhq/stickyboard/internal/db"
)

// PGStore persists presence rows in PostgreSQL.
type PGStore struct {
	db db.DBTX
}

// NewPGStore creates a presence store over the given connection.
func NewPGStore(conn db.DBTX) *PGStore {
	return &PGStore{db: conn}
}

// Upsert refreshes the (user, board) presence row. A heartbeat advances
// last_updated but keeps the stored cursor position; a position update
// writes both. last_updated never moves backwards, so a delayed heartbeat
// cannot shadow a fresher update.
func (s *PGStore) Upsert(ctx context.Context, userID, boardID string, pos CursorPosition, heartbeat bool, now time.Time) error {
	pgUserID, err := db.ParseUUID(userID)
	if err != nil {
		return err
	}
	pgBoardID, err := db.ParseUUID(boardID)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO presence (user_id, board_id, cursor_x, cursor_y, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, board_id) DO UPDATE SET
			last_updated = GREATEST(presence.last_updated, EXCLUDED.last_updated),
			cursor_x = CASE WHEN $6 THEN presence.cursor_x ELSE EXCLUDED.cursor_x END,
			cursor_y = CASE WHEN $6 THEN presence.cursor_y ELSE EXCLUDED.cursor_y END`

	_, err = s.db.Exec(ctx, query, pgUserID, pgBoardID, pos.X, pos.Y, now, heartbeat)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return boards.ErrBoardNotFound
		}
		return fmt.Errorf("upsert presence: %w", err)
	}
	return nil
}

// ActiveSince returns the board's presence rows updated strictly after
// the given instant.
func (s *PGStore) ActiveSince(ctx context.Context, boardID string, since time.Time) ([]Record, error) {
	pgBoardID, err := db.ParseUUID(boardID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT user_id, board_id, cursor_x, cursor_y, last_updated
		FROM presence
		WHERE board_id = $1 AND last_updated > $2`

	rows, err := s.db.Query(ctx, query, pgBoardID, since)
	if err != nil {
		return nil, fmt.Errorf("query presence: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			userID      pgtype.UUID
			bID         pgtype.UUID
			x, y        float64
			lastUpdated pgtype.Timestamptz
		)
		if err := rows.Scan(&userID, &bID, &x, &y, &lastUpdated); err != nil {
			return nil, fmt.Errorf("scan presence: %w", err)
		}
		records = append(records, Record{
			UserID:         db.UUIDString(userID),
			BoardID:        db.UUIDString(bID),
			CursorPosition: CursorPosition{X: x, Y: y},
			LastUpdated:    db.TimeFromPg(lastUpdated),
		})
	}
	return records, rows.Err()
}

// Remove deletes the (user, board) presence row; no-op when absent.
func (s *PGStore) Remove(ctx context.Context, userID, boardID string) error {
	pgUserID, err := db.ParseUUID(userID)
	if err != nil {
		return err
	}
	pgBoardID, err := db.ParseUUID(boardID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `DELETE FROM presence WHERE user_id = $1 AND board_id = $2`, pgUserID, pgBoardID)
	if err != nil {
		return fmt.Errorf("remove presence: %w", err)
	}
	return nil
}

// DeleteStale removes presence rows not refreshed since the given instant
// and returns the number deleted.
func (s *PGStore) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM presence WHERE last_updated <= $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("delete stale presence: %w", err)
	}
	return tag.RowsAffected(), nil
}
