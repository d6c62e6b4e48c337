package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dawnhq/stickyboard/internal/db"
)

// PGStore persists users in PostgreSQL.
type PGStore struct {
	db db.DBTX
}

// NewPGStore creates a user store over the given connection.
func NewPGStore(conn db.DBTX) *PGStore {
	return &PGStore{db: conn}
}

// GetByTokenIdentifier returns the user whose token_identifier matches the
// token subject, or ErrUserNotFound.
func (s *PGStore) GetByTokenIdentifier(ctx context.Context, tokenIdentifier string) (User, error) {
	query := `
		SELECT id, token_identifier, name, email, profile_image_url, company_id, created_at, updated_at
		FROM users
		WHERE token_identifier = $1`

	row := s.db.QueryRow(ctx, query, tokenIdentifier)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetByID returns the user with the given id, or ErrUserNotFound.
func (s *PGStore) GetByID(ctx context.Context, id string) (User, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return User{}, err
	}
	query := `
		SELECT id, token_identifier, name, email, profile_image_url, company_id, created_at, updated_at
		FROM users
		WHERE id = $1`

	row := s.db.QueryRow(ctx, query, pgID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Upsert inserts a user keyed by token_identifier, or patches name,
// profile image, and company on conflict. Email is only written at
// creation. Returns the user id.
func (s *PGStore) Upsert(ctx context.Context, params UpsertParams) (string, error) {
	query := `
		INSERT INTO users (token_identifier, name, email, profile_image_url, company_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token_identifier) DO UPDATE SET
			name = EXCLUDED.name,
			profile_image_url = EXCLUDED.profile_image_url,
			company_id = EXCLUDED.company_id,
			updated_at = now()
		RETURNING id`

	var id pgtype.UUID
	err := s.db.QueryRow(ctx, query,
		params.TokenIdentifier,
		params.Name,
		db.TextValue(params.Email),
		db.TextValue(params.ProfileImageURL),
		db.TextValue(params.CompanyID),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert user: %w", err)
	}
	return db.UUIDString(id), nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id        pgtype.UUID
		tokenID   string
		name      string
		email     pgtype.Text
		imageURL  pgtype.Text
		companyID pgtype.Text
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &tokenID, &name, &email, &imageURL, &companyID, &createdAt, &updatedAt); err != nil {
		return User{}, err
	}
	return User{
		ID:              db.UUIDString(id),
		TokenIdentifier: tokenID,
		Name:            name,
		Email:           db.TextToString(email),
		ProfileImageURL: db.TextToString(imageURL),
		CompanyID:       db.TextToString(companyID),
		CreatedAt:       db.TimeFromPg(createdAt),
		UpdatedAt:       db.TimeFromPg(updatedAt),
	}, nil
}
