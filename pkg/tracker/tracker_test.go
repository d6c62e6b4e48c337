package tracker

import (
	"context"
	"sync"
	"testing"
	"time"
)

type call struct {
	boardID   string
	pos       CursorPosition
	heartbeat bool
}

type recorder struct {
	mu      sync.Mutex
	updates []call
	removed []string
}

func (r *recorder) UpdatePresence(_ context.Context, boardID string, pos CursorPosition, heartbeat bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, call{boardID: boardID, pos: pos, heartbeat: heartbeat})
	return nil
}

func (r *recorder) RemovePresence(_ context.Context, boardID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, boardID)
	return nil
}

func (r *recorder) cursorUpdates() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []call
	for _, c := range r.updates {
		if !c.heartbeat {
			out = append(out, c)
		}
	}
	return out
}

func (r *recorder) heartbeats() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.updates {
		if c.heartbeat {
			n++
		}
	}
	return n
}

func testOptions() Options {
	return Options{
		Debounce:          10 * time.Millisecond,
		MaxWait:           20 * time.Millisecond,
		HeartbeatInterval: time.Hour, // out of the way unless the test wants it
	}
}

func TestDebounceCollapsesBurst(t *testing.T) {
	rec := &recorder{}
	tr := New(nil, rec, "board-1", testOptions())

	for i := 0; i < 5; i++ {
		tr.Track(CursorPosition{X: float64(i), Y: float64(i)})
		time.Sleep(time.Millisecond)
	}
	time.Sleep(40 * time.Millisecond)

	updates := rec.cursorUpdates()
	if len(updates) == 0 {
		t.Fatal("expected at least one flushed update")
	}
	if len(updates) > 2 {
		t.Fatalf("burst not debounced: %d updates", len(updates))
	}
	last := updates[len(updates)-1]
	if last.pos.X != 4 {
		t.Fatalf("expected latest position to win, got %+v", last.pos)
	}

	if err := tr.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestMaxWaitBoundsContinuousMovement(t *testing.T) {
	rec := &recorder{}
	tr := New(nil, rec, "board-1", testOptions())
	defer tr.Close(context.Background())

	// keep moving faster than the debounce for ~100ms
	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		tr.Track(CursorPosition{X: 1})
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(30 * time.Millisecond)

	if len(rec.cursorUpdates()) < 2 {
		t.Fatalf("max-wait should force periodic flushes, got %d", len(rec.cursorUpdates()))
	}
}

func TestHeartbeatFiresWhileIdle(t *testing.T) {
	rec := &recorder{}
	opts := testOptions()
	opts.HeartbeatInterval = 15 * time.Millisecond
	tr := New(nil, rec, "board-1", opts)
	defer tr.Close(context.Background())

	time.Sleep(50 * time.Millisecond)

	if rec.heartbeats() == 0 {
		t.Fatal("expected heartbeats while idle")
	}
	if len(rec.cursorUpdates()) != 0 {
		t.Fatalf("idle tracker must not send cursor updates, got %d", len(rec.cursorUpdates()))
	}
}

func TestCloseFlushesAndRemoves(t *testing.T) {
	rec := &recorder{}
	tr := New(nil, rec, "board-9", testOptions())

	tr.Track(CursorPosition{X: 7, Y: 8})
	if err := tr.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	updates := rec.cursorUpdates()
	if len(updates) == 0 || updates[len(updates)-1].pos.X != 7 {
		t.Fatalf("pending position not flushed on close: %+v", updates)
	}
	if len(rec.removed) != 1 || rec.removed[0] != "board-9" {
		t.Fatalf("expected removePresence for board-9, got %v", rec.removed)
	}
}

func TestCloseIsIdempotentOnTimers(t *testing.T) {
	rec := &recorder{}
	tr := New(nil, rec, "board-1", testOptions())

	if err := tr.Close(context.Background()); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := tr.Close(context.Background()); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	tr.Track(CursorPosition{X: 1}) // must not panic or block
}
