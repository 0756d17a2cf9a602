package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// IdleReaper tears down workspaces unused for longer than maxIdle.
type IdleReaper interface {
	ReapIdle(maxIdle time.Duration) int
}

// ReaperWorker periodically closes idle workspaces.
type ReaperWorker struct {
	registry IdleReaper
	maxIdle  time.Duration
	interval time.Duration
	log      zerolog.Logger
}

// NewReaperWorker creates a ReaperWorker that sweeps every maxIdle/4, but at
// least once a minute.
func NewReaperWorker(registry IdleReaper, maxIdle time.Duration, log zerolog.Logger) *ReaperWorker {
	interval := maxIdle / 4
	if interval <= 0 || interval > time.Minute {
		interval = time.Minute
	}
	return &ReaperWorker{
		registry: registry,
		maxIdle:  maxIdle,
		interval: interval,
		log:      log.With().Str("component", "reaper_worker").Logger(),
	}
}

// Start begins the sweep loop. Call in a goroutine.
func (w *ReaperWorker) Start(ctx context.Context) {
	w.log.Info().Dur("max_idle", w.maxIdle).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *ReaperWorker) sweep() int {
	n := w.registry.ReapIdle(w.maxIdle)
	if n > 0 {
		w.log.Info().Int("closed", n).Msg("Idle workspaces closed")
	}
	return n
}
