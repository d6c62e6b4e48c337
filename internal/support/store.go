package support

import (
	"context"
	"fmt"

	"github.com/dawnhq/stickyboard/internal/db"
)

// PGStore persists support requests in PostgreSQL.
type PGStore struct {
	db db.DBTX
}

// NewPGStore creates a support store over the given connection.
func NewPGStore(conn db.DBTX) *PGStore {
	return &PGStore{db: conn}
}

// Create inserts a support request for the given user.
func (s *PGStore) Create(ctx context.Context, userID, input string) error {
	pgUserID, err := db.ParseUUID(userID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO support_requests (user_id, input) VALUES ($1, $2)`, pgUserID, input)
	if err != nil {
		return fmt.Errorf("create support request: %w", err)
	}
	return nil
}
