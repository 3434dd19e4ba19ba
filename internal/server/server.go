package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	v1 "github.com/rvmarket-lab/rv-intel/internal/api/v1"
	"github.com/rvmarket-lab/rv-intel/internal/cache"
	httperr "github.com/rvmarket-lab/rv-intel/internal/core/errors"
	"github.com/rvmarket-lab/rv-intel/internal/metrics"
)

// Version is reported by GET /. Overridden at build time with -ldflags.
var Version = "dev"

type Server struct {
	Engine  *gin.Engine
	Addr    string
	backend string
	cache   *cache.Cache
	metrics *metrics.Metrics
}

func New(addr, mode, backend string, c *cache.Cache, m *metrics.Metrics) *Server {
	// Set Gin mode based on configuration
	if mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	s := &Server{
		Engine:  r,
		Addr:    addr,
		backend: backend,
		cache:   c,
		metrics: m,
	}

	r.GET("/", s.rootHandler)
	// Liveness: the process is up even while the first build runs.
	r.GET("/health", s.healthHandler)
	r.GET("/ready", s.readyHandler)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	return s
}

func (s *Server) rootHandler(c *gin.Context) {
	paths := make([]string, 0)
	seen := map[string]struct{}{}
	for _, route := range s.Engine.Routes() {
		if _, ok := seen[route.Path]; ok {
			continue
		}
		seen[route.Path] = struct{}{}
		paths = append(paths, route.Path)
	}
	sort.Strings(paths)

	c.JSON(http.StatusOK, v1.ServiceInfo{
		Message:   "RV inventory and sales intelligence API",
		Version:   Version,
		Backend:   s.backend,
		Endpoints: paths,
	})
}

func (s *Server) healthHandler(c *gin.Context) {
	resp := v1.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Cache:     "building",
	}

	if gen, err := s.cache.Current(); err == nil {
		resp.Cache = "ready"
		resp.Generation = &v1.GenerationInfo{
			ID:              gen.ID.String(),
			Backend:         gen.Backend,
			BuiltAt:         gen.BuiltAt,
			BuildDurationMS: gen.BuildDuration.Milliseconds(),
			InventoryRows:   gen.Inventory.Len(),
			SalesRows:       gen.Sales.Len(),
			Snapshots:       len(gen.Snapshots),
			JoinMissedRows:  gen.JoinStats.MissedRows(),
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) readyHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.cache.Ping(ctx); err != nil {
		c.Header("Retry-After", "5")
		c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
			ErrorType: httperr.HttpCacheNotReadyError,
			Message:   "the cache is still building",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.Addr,
		Handler: s.Engine,
	}

	slog.Info("Starting HTTP Server...", "address", s.Addr)

	go func() {
		<-ctx.Done()
		slog.Info("Stopping HTTP Server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP Server forced to shutdown", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
