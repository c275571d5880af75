package session

import (
	"context"
	"log/slog"
	"time"
)

// Sweep defaults.
const (
	DefaultMaxAge        = 24 * time.Hour
	DefaultSweepInterval = time.Hour
)

// Sweeper periodically removes sessions that have been inactive longer than
// maxAge. Without it the store grows unbounded for abandoned sessions.
type Sweeper struct {
	store    *Store
	maxAge   time.Duration
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper. Non-positive durations select the defaults;
// a nil logger falls back to slog.Default().
func NewSweeper(store *Store, maxAge, interval time.Duration, logger *slog.Logger) *Sweeper {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{store: store, maxAge: maxAge, interval: interval, logger: logger}
}

// Run blocks until ctx is canceled, sweeping on each tick. Callers must
// track the goroutine with a WaitGroup for graceful shutdown.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.store.Sweep(s.maxAge)
		}
	}
}
