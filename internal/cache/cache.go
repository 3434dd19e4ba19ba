package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/rvmarket-lab/rv-intel/internal/metrics"
)

// ErrNotReady is returned for reads before the first generation is installed.
var ErrNotReady = errors.New("cache not ready")

// Cache hands out the current Generation. The pointer swap is the only write.
type Cache struct {
	current   atomic.Pointer[Generation]
	ready     chan struct{}
	readyOnce sync.Once
	metrics   *metrics.Metrics
}

// New creates an empty cache. m may be nil.
func New(m *metrics.Metrics) *Cache {
	return &Cache{
		ready:   make(chan struct{}),
		metrics: m,
	}
}

// Install makes g the current generation and marks the cache ready.
func (c *Cache) Install(g *Generation) {
	prev := c.current.Swap(g)
	c.readyOnce.Do(func() { close(c.ready) })
	c.observe(g)

	attrs := []any{
		"generation", g.ID,
		"backend", g.Backend,
		"inventory_rows", g.Inventory.Len(),
		"sales_rows", g.Sales.Len(),
		"snapshots", len(g.Snapshots),
	}
	if prev != nil {
		attrs = append(attrs, "replaced", prev.ID)
	}
	slog.Info("[Cache] Generation installed", attrs...)
}

func (c *Cache) observe(g *Generation) {
	if c.metrics == nil {
		return
	}
	c.metrics.GenerationRows.WithLabelValues("inventory").Set(float64(g.Inventory.Len()))
	c.metrics.GenerationRows.WithLabelValues("sales").Set(float64(g.Sales.Len()))
	c.metrics.GenerationTimestamp.Set(float64(g.BuiltAt.Unix()))
	c.metrics.Snapshots.Set(float64(len(g.Snapshots)))
	c.metrics.JoinMissRows.Reset()
	for d, m := range g.JoinStats.Misses {
		c.metrics.JoinMissRows.WithLabelValues(string(d)).Set(float64(m.Rows))
	}
}

// Current returns the serving generation, or ErrNotReady.
func (c *Cache) Current() (*Generation, error) {
	g := c.current.Load()
	if g == nil {
		return nil, ErrNotReady
	}
	return g, nil
}

// Ready reports whether a generation has been installed.
func (c *Cache) Ready() bool {
	return c.current.Load() != nil
}

// Wait blocks until the cache is ready or ctx is done.
func (c *Cache) Wait(ctx context.Context) (*Generation, error) {
	select {
	case <-c.ready:
		return c.current.Load(), nil
	case <-ctx.Done():
		return nil, errors.Join(ErrNotReady, ctx.Err())
	}
}

// Ping reports readiness to health checks.
func (c *Cache) Ping(_ context.Context) error {
	if !c.Ready() {
		return ErrNotReady
	}
	return nil
}
