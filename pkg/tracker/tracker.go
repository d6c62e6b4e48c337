// Package tracker reports a client's cursor to the presence API. Cursor
// moves are debounced so a fast-moving mouse does not flood the server;
// a heartbeat keeps the session visible while the cursor is idle.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Timing mirrors the web client: trailing-edge debounce with a max wait
// twice the debounce, heartbeat on its own interval.
const (
	DefaultDebounce          = 100 * time.Millisecond
	DefaultMaxWait           = 2 * DefaultDebounce
	DefaultHeartbeatInterval = 30 * time.Second
)

// CursorPosition is a cursor location on a board, in board coordinates.
// Declared here rather than borrowed from the server packages so the
// package is importable outside this module.
type CursorPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sender delivers presence calls to the backend.
type Sender interface {
	UpdatePresence(ctx context.Context, boardID string, pos CursorPosition, heartbeat bool) error
	RemovePresence(ctx context.Context, boardID string) error
}

// Options tune the tracker's timers. Zero values take the defaults.
type Options struct {
	Debounce          time.Duration
	MaxWait           time.Duration
	HeartbeatInterval time.Duration
}

// Tracker is one board session's presence reporter. Track may be called
// from any goroutine; the latest position wins.
type Tracker struct {
	sender  Sender
	boardID string
	opts    Options
	logger  *slog.Logger

	moves  chan CursorPosition
	done   chan struct{}
	closed sync.Once
	wg     sync.WaitGroup
}

// New starts a tracker for one board. Stop it with Close.
func New(log *slog.Logger, sender Sender, boardID string, opts Options) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultMaxWait
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = DefaultHeartbeatInterval
	}
	t := &Tracker{
		sender:  sender,
		boardID: boardID,
		opts:    opts,
		logger:  log.With(slog.String("component", "tracker"), slog.String("board_id", boardID)),
		moves:   make(chan CursorPosition, 1),
		done:    make(chan struct{}),
	}
	t.wg.Add(1)
	go t.run()
	return t
}

// Track records a cursor move. Never blocks; when the loop is busy the
// newest position replaces the queued one.
func (t *Tracker) Track(pos CursorPosition) {
	select {
	case <-t.done:
		return
	default:
	}
	for {
		select {
		case t.moves <- pos:
			return
		default:
			select {
			case <-t.moves:
			default:
			}
		}
	}
}

// Close flushes any pending position, withdraws the session from the
// board roster, and stops both timers.
func (t *Tracker) Close(ctx context.Context) error {
	t.closed.Do(func() { close(t.done) })
	t.wg.Wait()
	return t.sender.RemovePresence(ctx, t.boardID)
}

func (t *Tracker) run() {
	defer t.wg.Done()

	heartbeat := time.NewTicker(t.opts.HeartbeatInterval)
	defer heartbeat.Stop()

	// debounce fires opts.Debounce after the last move; maxWait caps the
	// total delay while moves keep arriving.
	debounce := time.NewTimer(t.opts.Debounce)
	stopTimer(debounce)
	maxWait := time.NewTimer(t.opts.MaxWait)
	stopTimer(maxWait)

	var (
		pending    CursorPosition
		hasPending bool
	)

	flush := func() {
		if !hasPending {
			return
		}
		hasPending = false
		stopTimer(debounce)
		stopTimer(maxWait)
		if err := t.sender.UpdatePresence(context.Background(), t.boardID, pending, false); err != nil {
			t.logger.Error("presence update failed", slog.String("error", err.Error()))
		}
	}

	for {
		select {
		case pos := <-t.moves:
			pending = pos
			if !hasPending {
				hasPending = true
				resetTimer(maxWait, t.opts.MaxWait)
			}
			resetTimer(debounce, t.opts.Debounce)
		case <-debounce.C:
			flush()
		case <-maxWait.C:
			flush()
		case <-heartbeat.C:
			if err := t.sender.UpdatePresence(context.Background(), t.boardID, pending, true); err != nil {
				t.logger.Error("heartbeat failed", slog.String("error", err.Error()))
			}
		case <-t.done:
			// drain a move that raced with shutdown, then flush
			select {
			case pos := <-t.moves:
				pending = pos
				hasPending = true
			default:
			}
			flush()
			return
		}
	}
}

func stopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

func resetTimer(timer *time.Timer, d time.Duration) {
	stopTimer(timer)
	timer.Reset(d)
}
