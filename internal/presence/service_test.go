package presence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dawnhq/stickyboard/internal/auth"
	"github.com/dawnhq/stickyboard/internal/users"
)

type fakeStore struct {
	rows map[string]Record
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]Record{}}
}

func key(userID, boardID string) string { return userID + "|" + boardID }

// Upsert mirrors the SQL upsert: last_updated never moves backwards and a
// heartbeat keeps the stored cursor position.
func (f *fakeStore) Upsert(_ context.Context, userID, boardID string, pos CursorPosition, heartbeat bool, now time.Time) error {
	k := key(userID, boardID)
	existing, ok := f.rows[k]
	if !ok {
		f.rows[k] = Record{UserID: userID, BoardID: boardID, CursorPosition: pos, LastUpdated: now}
		return nil
	}
	if now.After(existing.LastUpdated) {
		existing.LastUpdated = now
	}
	if !heartbeat {
		existing.CursorPosition = pos
	}
	f.rows[k] = existing
	return nil
}

func (f *fakeStore) ActiveSince(_ context.Context, boardID string, since time.Time) ([]Record, error) {
	var out []Record
	for _, r := range f.rows {
		if r.BoardID == boardID && r.LastUpdated.After(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) Remove(_ context.Context, userID, boardID string) error {
	delete(f.rows, key(userID, boardID))
	return nil
}

func (f *fakeStore) DeleteStale(_ context.Context, olderThan time.Time) (int64, error) {
	var n int64
	for k, r := range f.rows {
		if !r.LastUpdated.After(olderThan) {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}

type fakeAuthn struct {
	byToken map[string]users.User
}

func (f *fakeAuthn) Authenticate(_ context.Context, token string) (users.User, error) {
	user, ok := f.byToken[token]
	if !ok {
		return users.User{}, auth.ErrInvalidToken
	}
	return user, nil
}

type fakeDirectory struct {
	byID map[string]users.User
}

func (f *fakeDirectory) GetByID(_ context.Context, id string) (users.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return users.User{}, users.ErrUserNotFound
	}
	return user, nil
}

type fixture struct {
	svc   *Service
	store *fakeStore
	now   time.Time
}

// newFixture registers three users: A and B in company acme, C in company
// other, with tokens "tok-a" etc.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	authn := &fakeAuthn{byToken: map[string]users.User{}}
	directory := &fakeDirectory{byID: map[string]users.User{}}
	for _, u := range []users.User{
		{ID: "ua", Name: "Alice", CompanyID: "acme", ProfileImageURL: "https://img/a.png"},
		{ID: "ub", Name: "Bob", CompanyID: "acme"},
		{ID: "uc", Name: "Carol", CompanyID: "other"},
		{ID: "un", Name: "Nomad"}, // no company
	} {
		authn.byToken["tok-"+u.ID[1:]] = u
		directory.byID[u.ID] = u
	}

	store := newFakeStore()
	f := &fixture{
		svc:   NewService(nil, authn, store, directory, 30*time.Second),
		store: store,
		now:   time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

const board = "b1"

func TestUpdateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pos := CursorPosition{X: 5, Y: 7}

	if err := f.svc.Update(ctx, "tok-a", board, pos, false); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	first := f.store.rows[key("ua", board)]

	if err := f.svc.Update(ctx, "tok-a", board, pos, false); err != nil {
		t.Fatalf("second Update error: %v", err)
	}
	if len(f.store.rows) != 1 {
		t.Fatalf("expected exactly one presence row, got %d", len(f.store.rows))
	}
	second := f.store.rows[key("ua", board)]
	if second.CursorPosition != pos {
		t.Errorf("position = %+v, want %+v", second.CursorPosition, pos)
	}
	if second.LastUpdated.Before(first.LastUpdated) {
		t.Error("lastUpdated moved backwards on retry")
	}
}

func TestHeartbeatPreservesPosition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pos := CursorPosition{X: 10, Y: 20}

	if err := f.svc.Update(ctx, "tok-a", board, pos, false); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	f.advance(time.Second)
	if err := f.svc.Update(ctx, "tok-a", board, CursorPosition{X: 999, Y: 999}, true); err != nil {
		t.Fatalf("heartbeat error: %v", err)
	}

	row := f.store.rows[key("ua", board)]
	if row.CursorPosition != pos {
		t.Errorf("heartbeat overwrote position: %+v, want %+v", row.CursorPosition, pos)
	}
	if !row.LastUpdated.Equal(f.now) {
		t.Errorf("lastUpdated = %v, want advanced to %v", row.LastUpdated, f.now)
	}
}

func TestDelayedHeartbeatDoesNotRegressTimestamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.Update(ctx, "tok-a", board, CursorPosition{X: 1, Y: 1}, false); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	fresh := f.now

	// heartbeat carrying an older timestamp, as if delayed in flight
	f.now = fresh.Add(-5 * time.Second)
	if err := f.svc.Update(ctx, "tok-a", board, CursorPosition{}, true); err != nil {
		t.Fatalf("heartbeat error: %v", err)
	}

	row := f.store.rows[key("ua", board)]
	if !row.LastUpdated.Equal(fresh) {
		t.Errorf("lastUpdated = %v, want kept at %v", row.LastUpdated, fresh)
	}
}

func TestFreshnessWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		age     time.Duration
		visible bool
	}{
		{"29s old is present", 29 * time.Second, true},
		{"exactly 30s old is stale", 30 * time.Second, false},
		{"31s old is stale", 31 * time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.store.rows = map[string]Record{}
			f.store.rows[key("ub", board)] = Record{
				UserID:      "ub",
				BoardID:     board,
				LastUpdated: f.now.Add(-tt.age),
			}
			roster, err := f.svc.ActiveUsers(ctx, "tok-a", board)
			if err != nil {
				t.Fatalf("ActiveUsers error: %v", err)
			}
			if got := len(roster) == 1; got != tt.visible {
				t.Errorf("visible = %v, want %v", got, tt.visible)
			}
		})
	}
}

func TestCompanyIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, tok := range []string{"tok-a", "tok-b", "tok-c"} {
		if err := f.svc.Update(ctx, tok, board, CursorPosition{X: 1, Y: 2}, false); err != nil {
			t.Fatalf("Update(%s) error: %v", tok, err)
		}
	}

	roster, err := f.svc.ActiveUsers(ctx, "tok-a", board)
	if err != nil {
		t.Fatalf("ActiveUsers error: %v", err)
	}
	ids := map[string]bool{}
	for _, u := range roster {
		ids[u.ID] = true
	}
	if !ids["ua"] || !ids["ub"] {
		t.Errorf("roster %v, want both acme users (self included)", ids)
	}
	if ids["uc"] {
		t.Error("roster leaked a user from another company")
	}

	otherRoster, err := f.svc.ActiveUsers(ctx, "tok-c", board)
	if err != nil {
		t.Fatalf("ActiveUsers(tok-c) error: %v", err)
	}
	if len(otherRoster) != 1 || otherRoster[0].ID != "uc" {
		t.Errorf("other-company roster = %v, want only uc", otherRoster)
	}
}

func TestNoCompanySeesEmptyRoster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.Update(ctx, "tok-a", board, CursorPosition{}, false); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := f.svc.Update(ctx, "tok-n", board, CursorPosition{}, false); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	roster, err := f.svc.ActiveUsers(ctx, "tok-n", board)
	if err != nil {
		t.Fatalf("ActiveUsers error: %v", err)
	}
	if roster == nil {
		t.Fatal("expected empty roster, got nil")
	}
	if len(roster) != 0 {
		t.Errorf("roster = %v, want empty for caller without company", roster)
	}
}

func TestRemoveIsImmediate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.Update(ctx, "tok-b", board, CursorPosition{X: 3, Y: 4}, false); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := f.svc.Remove(ctx, "tok-b", board); err != nil {
		t.Fatalf("Remove error: %v", err)
	}

	roster, err := f.svc.ActiveUsers(ctx, "tok-a", board)
	if err != nil {
		t.Fatalf("ActiveUsers error: %v", err)
	}
	for _, u := range roster {
		if u.ID == "ub" {
			t.Error("removed user still in roster")
		}
	}

	// removing again is a no-op
	if err := f.svc.Remove(ctx, "tok-b", board); err != nil {
		t.Fatalf("second Remove error: %v", err)
	}
}

func TestAuthFailurePropagates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.Update(ctx, "bogus", board, CursorPosition{}, false); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("Update error = %v, want auth.ErrInvalidToken", err)
	}
	if _, err := f.svc.ActiveUsers(ctx, "bogus", board); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("ActiveUsers error = %v, want auth.ErrInvalidToken", err)
	}
	if err := f.svc.Remove(ctx, "bogus", board); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("Remove error = %v, want auth.ErrInvalidToken", err)
	}
}

func TestCollaborationScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.Update(ctx, "tok-a", board, CursorPosition{X: 1, Y: 1}, false); err != nil {
		t.Fatalf("Update A error: %v", err)
	}
	if err := f.svc.Update(ctx, "tok-b", board, CursorPosition{X: 2, Y: 2}, false); err != nil {
		t.Fatalf("Update B error: %v", err)
	}
	if err := f.svc.Update(ctx, "tok-c", board, CursorPosition{X: 9, Y: 9}, false); err != nil {
		t.Fatalf("Update C error: %v", err)
	}

	for _, tok := range []string{"tok-a", "tok-b"} {
		roster, err := f.svc.ActiveUsers(ctx, tok, board)
		if err != nil {
			t.Fatalf("ActiveUsers(%s) error: %v", tok, err)
		}
		positions := map[string]CursorPosition{}
		for _, u := range roster {
			positions[u.ID] = u.CursorPosition
		}
		if positions["ua"] != (CursorPosition{X: 1, Y: 1}) {
			t.Errorf("A position = %+v", positions["ua"])
		}
		if positions["ub"] != (CursorPosition{X: 2, Y: 2}) {
			t.Errorf("B position = %+v", positions["ub"])
		}
		if _, ok := positions["uc"]; ok {
			t.Error("C visible across companies")
		}
	}
}

func TestReaperSweepsOnlyInvisibleRows(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.rows[key("ua", board)] = Record{UserID: "ua", BoardID: board, LastUpdated: now.Add(-10 * time.Second)}
	store.rows[key("ub", board)] = Record{UserID: "ub", BoardID: board, LastUpdated: now.Add(-45 * time.Second)}
	store.rows[key("uc", board)] = Record{UserID: "uc", BoardID: board, LastUpdated: now.Add(-5 * time.Minute)}

	r := NewReaper(nil, store, 30*time.Second, "@every 1m")
	r.sweep()

	if _, ok := store.rows[key("ua", board)]; !ok {
		t.Error("fresh row was reaped")
	}
	if _, ok := store.rows[key("ub", board)]; !ok {
		t.Error("row stale for less than two windows was reaped")
	}
	if _, ok := store.rows[key("uc", board)]; ok {
		t.Error("long-stale row survived the sweep")
	}
}

func TestReaperDisabledPattern(t *testing.T) {
	r := NewReaper(nil, newFakeStore(), 30*time.Second, "")
	if err := r.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	r.Stop()
}

func TestReaperStartStop(t *testing.T) {
	r := NewReaper(nil, newFakeStore(), 30*time.Second, "@every 1h")
	if err := r.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	r.Stop()
}

func TestReaperRejectsBadPattern(t *testing.T) {
	r := NewReaper(nil, newFakeStore(), 30*time.Second, fmt.Sprintf("@every %s", "not-a-duration"))
	if err := r.Start(); err == nil {
		t.Fatal("expected error for invalid cron pattern")
	}
}
