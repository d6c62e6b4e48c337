package presence

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Reaper periodically deletes presence rows that have been stale for at
// least one extra freshness window. Reads already exclude anything older
// than the window, so the sweep only touches rows no roster can see; it
// exists to bound storage on long-lived boards with many transient
// visitors.
type Reaper struct {
	cron    *cron.Cron
	store   Store
	retain  time.Duration
	pattern string
	logger  *slog.Logger
}

// NewReaper creates a reaper sweeping on the given cron pattern. An empty
// pattern disables the sweep.
func NewReaper(log *slog.Logger, store Store, window time.Duration, pattern string) *Reaper {
	if log == nil {
		log = slog.Default()
	}
	return &Reaper{
		cron:    cron.New(),
		store:   store,
		retain:  2 * window,
		pattern: pattern,
		logger:  log.With(slog.String("service", "presence-reaper")),
	}
}

// Start schedules the sweep and starts the cron runner.
func (r *Reaper) Start() error {
	if r.pattern == "" {
		r.logger.Info("presence reaper disabled")
		return nil
	}
	if _, err := r.cron.AddFunc(r.pattern, r.sweep); err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("presence reaper started", slog.String("pattern", r.pattern))
	return nil
}

// Stop halts the cron runner and waits for a running sweep to finish.
func (r *Reaper) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Reaper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := r.store.DeleteStale(ctx, time.Now().Add(-r.retain))
	if err != nil {
		r.logger.Warn("presence sweep failed", slog.Any("error", err))
		return
	}
	if deleted > 0 {
		r.logger.Info("reaped stale presence", slog.Int64("deleted", deleted))
	}
}
