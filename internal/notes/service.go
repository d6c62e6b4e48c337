package notes

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dawnhq/stickyboard/internal/boards"
	"github.com/dawnhq/stickyboard/internal/users"
)

// ErrNoteNotFound is returned when a note id does not resolve.
var ErrNoteNotFound = errors.New("note not found")

// Authenticator resolves the calling user from a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (users.User, error)
}

// BoardGate authorizes board access and maintains board bookkeeping.
type BoardGate interface {
	Authorize(ctx context.Context, user users.User, boardID string) (boards.Board, error)
	ApplyNotesDelta(ctx context.Context, boardID string, delta int) error
	Touch(ctx context.Context, boardID string) error
}

// Store is the persistence contract for notes.
type Store interface {
	Create(ctx context.Context, req CreateRequest) (Note, error)
	Get(ctx context.Context, id string) (Note, error)
	ListByBoard(ctx context.Context, boardID string) ([]Note, error)
	Update(ctx context.Context, id string, req UpdateRequest) (Note, error)
	Delete(ctx context.Context, id string) error
}

// Service provides note operations; every operation authorizes board
// access for the caller first.
type Service struct {
	authn  Authenticator
	boards BoardGate
	store  Store
	logger *slog.Logger
}

// NewService creates a notes service.
func NewService(log *slog.Logger, authn Authenticator, boardGate BoardGate, store Store) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		authn:  authn,
		boards: boardGate,
		store:  store,
		logger: log.With(slog.String("service", "notes")),
	}
}

// Create adds a note to a board, bumping the board's note counter and
// last_modified.
func (s *Service) Create(ctx context.Context, token string, req CreateRequest) (Note, error) {
	user, err := s.authn.Authenticate(ctx, token)
	if err != nil {
		return Note{}, err
	}
	if _, err := s.boards.Authorize(ctx, user, req.BoardID); err != nil {
		return Note{}, err
	}
	note, err := s.store.Create(ctx, req)
	if err != nil {
		return Note{}, err
	}
	if err := s.boards.ApplyNotesDelta(ctx, req.BoardID, 1); err != nil {
		return Note{}, err
	}
	return note, nil
}

// Update patches a note after authorizing access to its board.
func (s *Service) Update(ctx context.Context, token, noteID string, req UpdateRequest) (Note, error) {
	user, err := s.authn.Authenticate(ctx, token)
	if err != nil {
		return Note{}, err
	}
	note, err := s.store.Get(ctx, noteID)
	if err != nil {
		return Note{}, err
	}
	if _, err := s.boards.Authorize(ctx, user, note.BoardID); err != nil {
		return Note{}, err
	}
	updated, err := s.store.Update(ctx, noteID, req)
	if err != nil {
		return Note{}, err
	}
	if err := s.boards.Touch(ctx, note.BoardID); err != nil {
		return Note{}, err
	}
	return updated, nil
}

// Delete removes a note, decrementing the board's note counter.
func (s *Service) Delete(ctx context.Context, token, noteID string) error {
	user, err := s.authn.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	note, err := s.store.Get(ctx, noteID)
	if err != nil {
		return err
	}
	if _, err := s.boards.Authorize(ctx, user, note.BoardID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, noteID); err != nil {
		return err
	}
	return s.boards.ApplyNotesDelta(ctx, note.BoardID, -1)
}

// List returns a board's notes after authorizing access.
func (s *Service) List(ctx context.Context, token, boardID string) ([]Note, error) {
	user, err := s.authn.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if _, err := s.boards.Authorize(ctx, user, boardID); err != nil {
		return nil, err
	}
	return s.store.ListByBoard(ctx, boardID)
}
