package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rvmarket-lab/rv-intel/internal/cache"
	corecfg "github.com/rvmarket-lab/rv-intel/internal/core/config"
	"github.com/rvmarket-lab/rv-intel/internal/metrics"
	"github.com/rvmarket-lab/rv-intel/internal/migrations"
	"github.com/rvmarket-lab/rv-intel/internal/projection"
	"github.com/rvmarket-lab/rv-intel/internal/server"
	"github.com/rvmarket-lab/rv-intel/internal/source"
	"github.com/rvmarket-lab/rv-intel/internal/source/fixture"
	"github.com/rvmarket-lab/rv-intel/internal/source/graph"
	"github.com/rvmarket-lab/rv-intel/internal/source/lake"
	"github.com/rvmarket-lab/rv-intel/internal/source/warehouse"
)

func main() {
	configPath := flag.String("config", "rvintel.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration (.env first, so RVINTEL_ variables can live there)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to read .env file", "error", err)
	}
	// A missing default config file is fine; a missing explicit one is not.
	if _, err := os.Stat(*configPath); err != nil && !flagPassed("config") {
		slog.Info("Config file not found, using defaults and environment", "path", *configPath)
		*configPath = ""
	}
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"backend", cfg.Source.EffectiveBackend(),
		"address", fmtAddr(cfg.Server.Host, cfg.Server.Port),
		"precompute", len(cfg.Cache.Precompute),
	)

	refreshEvery, err := cfg.Cache.RefreshEvery()
	if err != nil {
		slog.Error("Invalid refresh interval", "value", cfg.Cache.RefreshInterval, "error", err)
		os.Exit(1)
	}
	precompute, err := cache.ParseSnapshotSpecs(cfg.Cache.Precompute)
	if err != nil {
		slog.Error("Invalid precompute list", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	// 2. Initialize Backend
	backend, closeBackend, err := openBackend(cfg, m)
	if err != nil {
		slog.Error("Failed to initialize backend", "backend", cfg.Source.EffectiveBackend(), "error", err)
		os.Exit(1)
	}
	defer closeBackend()

	// 3. Initialize Cache
	store := cache.New(m)
	builder := cache.NewBuilder(backend, cache.BuildOptions{
		Timeout:     cfg.Cache.BuildTimeout,
		Precompute:  precompute,
		Limits:      cfg.Cache.DisplayLimits.Limits(),
		Aggregation: cfg.Cache.AggregationOptions(),
	}, m)

	// 4. Initialize Projection (query facade)
	projectionSvc := projection.NewService(store, m)

	// 5. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), cfg.Server.Mode, backend.Name(), store, m)
	projectionSvc.RegisterRoutes(srv.Engine)

	// 6. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler → triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// The server answers /health and 503s queries while the first build runs.
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Run(ctx)
	}()

	// 7. Build the first generation
	gen, err := builder.Build(ctx)
	if err != nil {
		if ctx.Err() != nil {
			<-serverDone
			slog.Info("Shutdown complete")
			return
		}
		slog.Error("Initial cache build failed", "backend", backend.Name(), "error", err)
		cancel()
		<-serverDone
		os.Exit(1)
	}
	store.Install(gen)

	if refreshEvery > 0 {
		refresher := cache.NewRefresher(refreshEvery, builder, store)
		go func() {
			if err := refresher.Start(ctx); err != nil {
				slog.Error("Refresher stopped with error", "error", err)
			}
		}()
	} else {
		slog.Info("Cache refresh disabled by config")
	}

	// HTTP server blocks until ctx is cancelled.
	if err := <-serverDone; err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// openBackend builds the configured backend. The returned close func is always safe to call.
func openBackend(cfg *corecfg.Config, m *metrics.Metrics) (source.Backend, func(), error) {
	noop := func() {}

	switch cfg.Source.EffectiveBackend() {
	case corecfg.BackendGraph:
		return graph.New(graph.Config{
			Endpoint:         cfg.Graph.Endpoint,
			TokenURL:         cfg.Graph.TokenURL,
			ClientID:         cfg.Graph.ClientID,
			ClientSecret:     cfg.Graph.ClientSecret,
			Scope:            cfg.Graph.Scope,
			PageSize:         cfg.Graph.PageSize,
			BatchSize:        cfg.Graph.BatchSize,
			Concurrency:      cfg.Graph.Concurrency,
			RequestTimeout:   cfg.Graph.RequestTimeout,
			TokenRefreshSkew: cfg.Graph.TokenRefreshSkew,
			Retry: graph.RetryConfig{
				MaxAttempts:  cfg.Graph.Retry.MaxAttempts,
				InitialDelay: cfg.Graph.Retry.InitialDelay,
				MaxDelay:     cfg.Graph.Retry.MaxDelay,
			},
		}, m), noop, nil

	case corecfg.BackendLake:
		return lake.New(cfg.Lake.Root), noop, nil

	case corecfg.BackendWarehouse:
		wh, err := warehouse.Open(warehouse.Config{
			DSN:          cfg.Warehouse.DSN,
			MaxOpenConns: cfg.Warehouse.MaxOpenConns,
			MaxIdleConns: cfg.Warehouse.MaxIdleConns,
			PageSize:     cfg.Warehouse.PageSize,
			BatchSize:    cfg.Warehouse.BatchSize,
		}, m)
		if err != nil {
			return nil, noop, err
		}
		closeWH := func() {
			if err := wh.Close(); err != nil {
				slog.Warn("[Warehouse] Failed to close connection pool", "error", err)
			}
		}

		// 2.1. Run Database Migrations
		if err := migrations.RunMigrations(wh.DB(), cfg.Warehouse.AutoMigrate); err != nil {
			closeWH()
			return nil, noop, fmt.Errorf("failed to run database migrations: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := wh.ValidateSchema(ctx); err != nil {
			closeWH()
			return nil, noop, err
		}
		return wh, closeWH, nil

	case corecfg.BackendFixture:
		fx, err := fixture.Load(cfg.Fixture.Path)
		if err != nil {
			return nil, noop, err
		}
		return fx, noop, nil
	}

	return nil, noop, fmt.Errorf("unsupported backend %q", cfg.Source.EffectiveBackend())
}

func flagPassed(name string) bool {
	passed := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
