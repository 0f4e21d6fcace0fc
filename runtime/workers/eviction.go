package workers

import (
	"chat-presence/services"
	"context"
	"log/slog"
	"time"
)

// EvictionWorker sweeps stale participants every interval.
// A failed sweep is logged and the next tick tries again.
type EvictionWorker struct {
	log      *slog.Logger
	presence services.IPresenceService
	interval time.Duration
	timeout  time.Duration
	clock    func() time.Time
}

func NewEvictionWorker(
	log *slog.Logger,
	presence services.IPresenceService,
	interval, timeout time.Duration,
	clock func() time.Time,
) *EvictionWorker {
	if clock == nil {
		clock = time.Now
	}
	return &EvictionWorker{
		log:      log,
		presence: presence,
		interval: interval,
		timeout:  timeout,
		clock:    clock,
	}
}

func (w *EvictionWorker) Run(ctx context.Context) error {
	w.log.Info("Starting eviction worker", "interval", w.interval, "timeout", w.timeout)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep bounds one eviction pass by the tick interval so a stuck store
// cannot stack sweeps.
func (w *EvictionWorker) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()

	evicted, err := w.presence.EvictInactive(sweepCtx, w.clock(), w.timeout)
	if err != nil {
		w.log.Error("Eviction sweep failed", "err", err)
		return
	}
	if len(evicted) > 0 {
		w.log.Debug("Eviction sweep done", "evicted", evicted)
	}
}
