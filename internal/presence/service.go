package presence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dawnhq/stickyboard/internal/users"
)

// Authenticator resolves the calling user from a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (users.User, error)
}

// UserDirectory looks up user records for roster assembly.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (users.User, error)
}

// Store is the persistence contract for presence rows.
type Store interface {
	Upsert(ctx context.Context, userID, boardID string, pos CursorPosition, heartbeat bool, now time.Time) error
	ActiveSince(ctx context.Context, boardID string, since time.Time) ([]Record, error)
	Remove(ctx context.Context, userID, boardID string) error
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// Service maintains the live roster of collaborators per board.
type Service struct {
	authn     Authenticator
	store     Store
	directory UserDirectory
	window    time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a presence service with the given freshness window.
func NewService(log *slog.Logger, authn Authenticator, store Store, directory UserDirectory, window time.Duration) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		authn:     authn,
		store:     store,
		directory: directory,
		window:    window,
		logger:    log.With(slog.String("service", "presence")),
		now:       time.Now,
	}
}

// Update refreshes the caller's presence on the board. Heartbeats prove
// liveness without moving the stored cursor; position updates write both.
// Idempotent under retry.
func (s *Service) Update(ctx context.Context, token, boardID string, pos CursorPosition, heartbeat bool) error {
	if s.store == nil {
		return errors.New("presence store not configured")
	}
	user, err := s.authn.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	return s.store.Upsert(ctx, user.ID, boardID, pos, heartbeat, s.now())
}

// ActiveUsers returns the board's collaborators seen within the freshness
// window, restricted to the caller's organization. A caller without an
// organization sees an empty roster. The caller appears in their own
// result set. A row exactly one window old counts as stale.
func (s *Service) ActiveUsers(ctx context.Context, token, boardID string) ([]ActiveUser, error) {
	if s.store == nil {
		return nil, errors.New("presence store not configured")
	}
	caller, err := s.authn.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if caller.CompanyID == "" {
		return []ActiveUser{}, nil
	}

	records, err := s.store.ActiveSince(ctx, boardID, s.now().Add(-s.window))
	if err != nil {
		return nil, err
	}

	roster := make([]ActiveUser, 0, len(records))
	for _, record := range records {
		user, err := s.directory.GetByID(ctx, record.UserID)
		if err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		if user.CompanyID != caller.CompanyID {
			continue
		}
		roster = append(roster, ActiveUser{
			ID:              user.ID,
			Name:            user.Name,
			ProfileImageURL: user.ProfileImageURL,
			CursorPosition:  record.CursorPosition,
		})
	}
	return roster, nil
}

// Remove deletes the caller's presence on the board so the roster drops
// them immediately rather than after the freshness window.
func (s *Service) Remove(ctx context.Context, token, boardID string) error {
	if s.store == nil {
		return errors.New("presence store not configured")
	}
	user, err := s.authn.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	return s.store.Remove(ctx, user.ID, boardID)
}

// Window returns the configured freshness window.
func (s *Service) Window() time.Duration {
	return s.window
}
