package cache

import (
	"context"
	"log/slog"
	"time"
)

// Refresher rebuilds the cache periodically. A failed rebuild leaves the current
// generation serving.
type Refresher struct {
	interval time.Duration
	builder  *Builder
	cache    *Cache
}

// NewRefresher creates a refresher that installs builder output into cache.
func NewRefresher(interval time.Duration, builder *Builder, cache *Cache) *Refresher {
	return &Refresher{
		interval: interval,
		builder:  builder,
		cache:    cache,
	}
}

// Start rebuilds on every tick until ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("[Refresher] Starting cache refresher", "interval", r.interval)

	for {
		select {
		case <-ticker.C:
			r.refresh(ctx)
		case <-ctx.Done():
			slog.Info("[Refresher] Stopping (context cancelled)")
			return nil
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	gen, err := r.builder.Build(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		current, _ := r.cache.Current()
		attrs := []any{"error", err}
		if current != nil {
			attrs = append(attrs, "serving", current.ID, "serving_since", current.BuiltAt)
		}
		slog.Error("[Refresher] Rebuild failed, keeping current generation", attrs...)
		return
	}
	r.cache.Install(gen)
}
