package boards

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dawnhq/stickyboard/internal/users"
)

// Errors returned by board operations. ErrAccessDenied is deliberately
// distinct from authentication failures.
var (
	ErrBoardNotFound = errors.New("board not found")
	ErrAccessDenied  = errors.New("access denied")
)

// Authenticator resolves the calling user from a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (users.User, error)
}

// Store is the persistence contract for boards.
type Store interface {
	Create(ctx context.Context, ownerID, name string) (Board, error)
	Get(ctx context.Context, id string) (Board, error)
	ListForUser(ctx context.Context, userID string) ([]Board, error)
	Update(ctx context.Context, id string, req UpdateRequest) (Board, error)
	SetTrash(ctx context.Context, id string, inTrash bool) (Board, error)
	Delete(ctx context.Context, id string) error
	ApplyNotesDelta(ctx context.Context, id string, delta int) error
	Touch(ctx context.Context, id string) error
}

// Service provides board operations scoped to the authenticated caller.
type Service struct {
	authn  Authenticator
	store  Store
	logger *slog.Logger
}

// NewService creates a boards service.
func NewService(log *slog.Logger, authn Authenticator, store Store) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		authn:  authn,
		store:  store,
		logger: log.With(slog.String("service", "boards")),
	}
}

// CanAccess reports whether the user may act on the board: owner, or the
// board is shared and not trashed.
func CanAccess(user users.User, board Board) bool {
	return board.OwnerID == user.ID || (board.IsShared && !board.InTrash)
}

// Authorize loads the board and applies the access rule for the given
// user. Used by the notes service as well.
func (s *Service) Authorize(ctx context.Context, user users.User, boardID string) (Board, error) {
	board, err := s.store.Get(ctx, boardID)
	if err != nil {
		return Board{}, err
	}
	if !CanAccess(user, board) {
		return Board{}, ErrAccessDenied
	}
	return board, nil
}

// Create makes a new board owned by the caller.
func (s *Service) Create(ctx context.Context, token, name string) (Board, error) {
	user, err := s.authn.Authenticate(ctx, token)
	if err != nil {
		return Board{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Board{}, errors.New("board name is required")
	}
	board, err := s.store.Create(ctx, user.ID, name)
	if err != nil {
		return Board{}, err
	}
	s.logger.Info("board created", slog.String("board", board.ID), slog.String("owner", user.ID))
	return board, nil
}

// Get returns a single board the caller may access.
func (s *Service) Get(ctx context.Context, token, boardID string) (Board, error) {
	user, err := s.authn.Authenticate(ctx, token)
	if err != nil {
		return Board{}, err
	}
	return s.Authorize(ctx, user, boardID)
}

// List returns the caller's boards plus shared boards.
func (s *Service) List(ctx context.Context, token string) ([]Board, error) {
	user, err := s.authn.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.store.ListForUser(ctx, user.ID)
}

// Update changes board metadata; only the owner may do this.
func (s *Service) Update(ctx context.Context, token, boardID string, req UpdateRequest) (Board, error) {
	if _, err := s.requireOwner(ctx, token, boardID); err != nil {
		return Board{}, err
	}
	return s.store.Update(ctx, boardID, req)
}

// SetTrash moves the board into or out of the trash; owner only.
func (s *Service) SetTrash(ctx context.Context, token, boardID string, inTrash bool) (Board, error) {
	if _, err := s.requireOwner(ctx, token, boardID); err != nil {
		return Board{}, err
	}
	return s.store.SetTrash(ctx, boardID, inTrash)
}

// Delete permanently removes the board; owner only.
func (s *Service) Delete(ctx context.Context, token, boardID string) error {
	if _, err := s.requireOwner(ctx, token, boardID); err != nil {
		return err
	}
	return s.store.Delete(ctx, boardID)
}

// ApplyNotesDelta adjusts the board's notes counter and bumps
// last_modified. Callers must have authorized access already.
func (s *Service) ApplyNotesDelta(ctx context.Context, boardID string, delta int) error {
	return s.store.ApplyNotesDelta(ctx, boardID, delta)
}

// Touch bumps the board's last_modified. Callers must have authorized
// access already.
func (s *Service) Touch(ctx context.Context, boardID string) error {
	return s.store.Touch(ctx, boardID)
}

func (s *Service) requireOwner(ctx context.Context, token, boardID string) (Board, error) {
	user, err := s.authn.Authenticate(ctx, token)
	if err != nil {
		return Board{}, err
	}
	board, err := s.store.Get(ctx, boardID)
	if err != nil {
		return Board{}, err
	}
	if board.OwnerID != user.ID {
		return Board{}, ErrAccessDenied
	}
	return board, nil
}
