// Package support records user feedback submissions.
package support

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dawnhq/stickyboard/internal/users"
)

// ErrEmptyInput is returned when a submission has no content.
var ErrEmptyInput = errors.New("support input is required")

// Authenticator resolves the calling user from a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (users.User, error)
}

// Store is the persistence contract for support requests.
type Store interface {
	Create(ctx context.Context, userID, input string) error
}

// Service accepts authenticated support requests.
type Service struct {
	authn  Authenticator
	store  Store
	logger *slog.Logger
}

// NewService creates a support service.
func NewService(log *slog.Logger, authn Authenticator, store Store) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		authn:  authn,
		store:  store,
		logger: log.With(slog.String("service", "support")),
	}
}

// Submit stores the caller's feedback.
func (s *Service) Submit(ctx context.Context, token, input string) error {
	if s.store == nil {
		return errors.New("support store not configured")
	}
	user, err := s.authn.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return ErrEmptyInput
	}
	if err := s.store.Create(ctx, user.ID, input); err != nil {
		return err
	}
	s.logger.Info("support request recorded", slog.String("user_id", user.ID))
	return nil
}
