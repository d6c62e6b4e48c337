package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dawnhq/stickyboard/internal/auth"
)

// Errors returned by user operations. Authentication failures wrap
// auth.ErrInvalidToken and collapse into its uniform message at the API
// boundary; ErrIdentifierMismatch stays distinct because it indicates a
// client construction bug, not a bad credential.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrIdentifierMismatch = errors.New("token identifier mismatch")
)

// Store is the persistence contract for user records.
type Store interface {
	GetByTokenIdentifier(ctx context.Context, tokenIdentifier string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Upsert(ctx context.Context, params UpsertParams) (string, error)
}

// Service resolves callers from bearer tokens and provisions user records.
type Service struct {
	verifier *auth.Verifier
	store    Store
	logger   *slog.Logger
}

// NewService creates a users service.
func NewService(log *slog.Logger, verifier *auth.Verifier, store Store) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		verifier: verifier,
		store:    store,
		logger:   log.With(slog.String("service", "users")),
	}
}

// Authenticate verifies the token and resolves the persisted user whose
// token_identifier equals the token subject. It never creates users. A
// missing user collapses into the uniform auth.ErrInvalidToken.
func (s *Service) Authenticate(ctx context.Context, token string) (User, error) {
	if s.store == nil {
		return User{}, errors.New("user store not configured")
	}
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return User{}, err
	}
	user, err := s.store.GetByTokenIdentifier(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Debug("token subject has no user record", slog.String("sub", claims.Subject))
			return User{}, fmt.Errorf("%w: unknown subject", auth.ErrInvalidToken)
		}
		return User{}, err
	}
	return user, nil
}

// CreateOrUpdate provisions a user for the token subject. The claimed
// tokenIdentifier must equal the token's sub. Company falls back to the
// token's company_id when the request omits it. Returns the user id.
func (s *Service) CreateOrUpdate(ctx context.Context, req UpsertRequest) (string, error) {
	if s.store == nil {
		return "", errors.New("user store not configured")
	}
	claims, err := s.verifier.Verify(req.Token)
	if err != nil {
		return "", err
	}
	if claims.Subject != strings.TrimSpace(req.TokenIdentifier) {
		return "", ErrIdentifierMismatch
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", errors.New("name is required")
	}

	companyID := strings.TrimSpace(req.CompanyID)
	if companyID == "" {
		companyID = claims.CompanyID
	}

	id, err := s.store.Upsert(ctx, UpsertParams{
		TokenIdentifier: claims.Subject,
		Name:            name,
		Email:           strings.TrimSpace(req.Email),
		ProfileImageURL: strings.TrimSpace(req.ProfileImageURL),
		CompanyID:       companyID,
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("user upserted", slog.String("sub", claims.Subject))
	return id, nil
}

// GetCurrent returns the authenticated caller's user record.
func (s *Service) GetCurrent(ctx context.Context, token string) (User, error) {
	return s.Authenticate(ctx, token)
}
