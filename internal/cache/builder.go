package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rvmarket-lab/rv-intel/internal/core/aggregation"
	"github.com/rvmarket-lab/rv-intel/internal/joiner"
	"github.com/rvmarket-lab/rv-intel/internal/metrics"
	"github.com/rvmarket-lab/rv-intel/internal/source"
	"golang.org/x/sync/errgroup"
)

// BuildOptions controls what a build precomputes and how long it may take.
type BuildOptions struct {
	Timeout     time.Duration
	Precompute  []SnapshotSpec
	Limits      aggregation.DisplayLimits
	Aggregation aggregation.Options
}

// Builder turns a backend into a Generation.
type Builder struct {
	backend source.Backend
	opts    BuildOptions
	metrics *metrics.Metrics
	nowFn   func() time.Time
}

// NewBuilder creates a builder. m may be nil.
func NewBuilder(backend source.Backend, opts BuildOptions, m *metrics.Metrics) *Builder {
	return &Builder{
		backend: backend,
		opts:    opts,
		metrics: m,
		nowFn:   time.Now,
	}
}

// Build runs the full build protocol under the configured timeout:
//  1. preload dimension tables (bulk backends only)
//  2. fetch inventory and sales facts in parallel
//  3. resolve the referenced dimension keys in parallel
//  4. join, then precompute the unfiltered results and configured snapshots
//
// Any failure aborts the build; nothing partial is returned.
func (b *Builder) Build(ctx context.Context) (*Generation, error) {
	if b.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
	}

	start := b.nowFn()
	name := b.backend.Name()
	slog.Info("[CacheBuilder] Build started", "backend", name, "timeout", b.opts.Timeout)

	gen, err := b.build(ctx)
	elapsed := b.nowFn().Sub(start)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("cache build timed out after %s: %w", b.opts.Timeout, err)
		}
		b.observe(name, metrics.OutcomeFailure, elapsed)
		slog.Error("[CacheBuilder] Build failed", "backend", name, "elapsed", elapsed, "error", err)
		return nil, err
	}

	gen.BuildDuration = elapsed
	b.observe(name, metrics.OutcomeSuccess, elapsed)
	slog.Info("[CacheBuilder] Build complete",
		"backend", name,
		"generation", gen.ID,
		"elapsed", elapsed,
		"inventory_rows", gen.Inventory.Len(),
		"sales_rows", gen.Sales.Len(),
		"join_missed_rows", gen.JoinStats.MissedRows())
	return gen, nil
}

func (b *Builder) observe(backend, outcome string, elapsed time.Duration) {
	if b.metrics == nil {
		return
	}
	b.metrics.BuildsTotal.WithLabelValues(backend, outcome).Inc()
	b.metrics.BuildDuration.WithLabelValues(backend, outcome).Observe(elapsed.Seconds())
}

func (b *Builder) build(ctx context.Context) (*Generation, error) {
	if p, ok := b.backend.(source.Preloader); ok {
		if err := p.Preload(ctx); err != nil {
			return nil, source.Upstream("preload dimensions", err)
		}
	}

	var (
		inventory []source.InventoryFact
		sales     []source.SalesFact
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inventory, err = b.backend.FetchInventory(gctx)
		return source.Upstream("fetch inventory", err)
	})
	g.Go(func() error {
		var err error
		sales, err = b.backend.FetchSales(gctx)
		return source.Upstream("fetch sales", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	slog.Info("[CacheBuilder] Facts fetched", "inventory_rows", len(inventory), "sales_rows", len(sales))

	dims, err := b.resolve(ctx, joiner.CollectKeys(inventory, sales))
	if err != nil {
		return nil, err
	}

	joined := joiner.Join(inventory, sales, dims, b.backend.Columns())
	return b.assemble(ctx, joined)
}

func (b *Builder) resolve(ctx context.Context, keys joiner.Keys) (joiner.Dimensions, error) {
	var dims joiner.Dimensions
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dims.ProductModels, err = b.backend.ResolveProductModels(gctx, keys.ProductModels)
		return source.Upstream("resolve product models", err)
	})
	g.Go(func() error {
		var err error
		dims.Products, err = b.backend.ResolveProducts(gctx, keys.Products)
		return source.Upstream("resolve products", err)
	})
	g.Go(func() error {
		var err error
		dims.Dealerships, err = b.backend.ResolveDealerships(gctx, keys.Dealerships)
		return source.Upstream("resolve dealerships", err)
	})
	g.Go(func() error {
		var err error
		dims.Dates, err = b.backend.ResolveDates(gctx, keys.Dates)
		return source.Upstream("resolve dates", err)
	})
	if err := g.Wait(); err != nil {
		return joiner.Dimensions{}, err
	}
	slog.Info("[CacheBuilder] Dimensions resolved",
		"product_models", len(dims.ProductModels),
		"products", len(dims.Products),
		"dealerships", len(dims.Dealerships),
		"dates", len(dims.Dates))
	return dims, nil
}

// assemble precomputes everything a generation serves. Every summary goes through
// the same Generation methods the on-demand path uses.
func (b *Builder) assemble(ctx context.Context, joined joiner.Result) (*Generation, error) {
	gen := &Generation{
		ID:         uuid.New(),
		Backend:    b.backend.Name(),
		Inventory:  joined.Inventory,
		Sales:      joined.Sales,
		Limits:     b.opts.Limits,
		AggOptions: b.opts.Aggregation,
		JoinStats:  joined.Stats,
	}
	gen.Unfiltered = gen.Summarize(aggregation.Criteria{})
	gen.UnfilteredVelocity = gen.Velocity(aggregation.Criteria{})
	gen.FilterOptions = aggregation.BuildFilterOptions(gen.Inventory)
	gen.Dealers = aggregation.Distinct(gen.Inventory, aggregation.FieldDealership)
	gen.DateRange = aggregation.SalesDateRange(gen.Sales)

	keys := expandSnapshotKeys(b.opts.Precompute, gen.Inventory)
	gen.Snapshots = make(map[aggregation.SnapshotKey]aggregation.Summary, len(keys))
	gen.VelocitySnapshots = make(map[aggregation.SnapshotKey]aggregation.Velocity, len(keys))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, key := range keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := key.Criteria()
			summary := gen.Summarize(c)
			velocity := gen.Velocity(c)
			mu.Lock()
			gen.Snapshots[key] = summary
			gen.VelocitySnapshots[key] = velocity
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("precompute snapshots: %w", err)
	}

	gen.BuiltAt = b.nowFn()
	slog.Info("[CacheBuilder] Snapshots precomputed", "count", len(keys))
	return gen, nil
}
