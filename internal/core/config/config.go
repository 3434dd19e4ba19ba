package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rvmarket-lab/rv-intel/internal/cache"
	"github.com/rvmarket-lab/rv-intel/internal/core/aggregation"
)

const envPrefix = "RVINTEL_"

// Backends selectable with source.backend.
const (
	BackendLake      = "lake"
	BackendGraph     = "graph"
	BackendWarehouse = "warehouse"
	BackendFixture   = "fixture"
)

// graphMaxBatchSize is the largest key list the GraphQL `in` filter accepts.
const graphMaxBatchSize = 100

// Config represents the top-level application config.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Source    SourceConfig    `koanf:"source"`
	Graph     GraphConfig     `koanf:"graph"`
	Lake      LakeConfig      `koanf:"lake"`
	Warehouse WarehouseConfig `koanf:"warehouse"`
	Fixture   FixtureConfig   `koanf:"fixture"`
	Cache     CacheConfig     `koanf:"cache"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

type SourceConfig struct {
	Backend      string `koanf:"backend"`
	UseDeltaLake *bool  `koanf:"use_deltalake"` // legacy switch, consulted only when backend is unset
}

type GraphConfig struct {
	Endpoint         string           `koanf:"endpoint"`
	TokenURL         string           `koanf:"token_url"`
	ClientID         string           `koanf:"client_id"`
	ClientSecret     string           `koanf:"client_secret"`
	Scope            string           `koanf:"scope"`
	PageSize         int              `koanf:"page_size"`
	BatchSize        int              `koanf:"batch_size"`
	Concurrency      int              `koanf:"concurrency"`
	RequestTimeout   time.Duration    `koanf:"request_timeout"`
	TokenRefreshSkew time.Duration    `koanf:"token_refresh_skew"`
	Retry            GraphRetryConfig `koanf:"retry"`
}

type GraphRetryConfig struct {
	MaxAttempts  int           `koanf:"max_attempts"`
	InitialDelay time.Duration `koanf:"initial_delay"`
	MaxDelay     time.Duration `koanf:"max_delay"`
}

type LakeConfig struct {
	Root string `koanf:"root"`
}

type WarehouseConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	PageSize     int    `koanf:"page_size"`
	BatchSize    int    `koanf:"batch_size"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

type FixtureConfig struct {
	Path string `koanf:"path"`
}

type CacheConfig struct {
	BuildTimeout      time.Duration       `koanf:"build_timeout"`
	RefreshInterval   string              `koanf:"refresh_interval"` // empty disables refresh
	Precompute        []string            `koanf:"precompute"`
	ParallelThreshold int                 `koanf:"parallel_threshold"`
	ChunkSize         int                 `koanf:"chunk_size"`
	Workers           int                 `koanf:"workers"`
	DisplayLimits     DisplayLimitsConfig `koanf:"display_limits"`
}

type DisplayLimitsConfig struct {
	RVType       int `koanf:"rv_type"`
	DealerGroup  int `koanf:"dealer_group"`
	Manufacturer int `koanf:"manufacturer"`
	Condition    int `koanf:"condition"`
	State        int `koanf:"state"`
	Region       int `koanf:"region"`
	City         int `koanf:"city"`
	County       int `koanf:"county"`
}

// EffectiveBackend resolves source.backend, falling back to the legacy
// use_deltalake switch and then to the lake.
func (c SourceConfig) EffectiveBackend() string {
	if b := strings.ToLower(strings.TrimSpace(c.Backend)); b != "" {
		return b
	}
	if c.UseDeltaLake != nil && !*c.UseDeltaLake {
		return BackendGraph
	}
	return BackendLake
}

// RefreshEvery returns the refresh period, or zero when refresh is disabled.
func (c CacheConfig) RefreshEvery() (time.Duration, error) {
	if strings.TrimSpace(c.RefreshInterval) == "" {
		return 0, nil
	}
	return time.ParseDuration(c.RefreshInterval)
}

// Limits converts the configured caps for the aggregation engine.
func (c DisplayLimitsConfig) Limits() aggregation.DisplayLimits {
	return aggregation.DisplayLimits{
		RVType:       c.RVType,
		DealerGroup:  c.DealerGroup,
		Manufacturer: c.Manufacturer,
		Condition:    c.Condition,
		State:        c.State,
		Region:       c.Region,
		City:         c.City,
		County:       c.County,
	}
}

// AggregationOptions converts the parallelism settings for the aggregation engine.
func (c CacheConfig) AggregationOptions() aggregation.Options {
	return aggregation.Options{
		ParallelThreshold: c.ParallelThreshold,
		ChunkSize:         c.ChunkSize,
		Workers:           c.Workers,
	}
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	switch backend := c.Source.EffectiveBackend(); backend {
	case BackendLake:
		if strings.TrimSpace(c.Lake.Root) == "" {
			return fmt.Errorf("lake.root is required")
		}
	case BackendGraph:
		if err := c.Graph.validate(); err != nil {
			return err
		}
	case BackendWarehouse:
		if err := c.Warehouse.validate(); err != nil {
			return err
		}
	case BackendFixture:
		if strings.TrimSpace(c.Fixture.Path) == "" {
			return fmt.Errorf("fixture.path is required")
		}
		if _, err := os.Stat(c.Fixture.Path); err != nil {
			return fmt.Errorf("fixture.path %q is not accessible: %w", c.Fixture.Path, err)
		}
	default:
		return fmt.Errorf("unsupported source.backend %q (must be lake, graph, warehouse or fixture)", backend)
	}

	return c.Cache.validate()
}

func (g GraphConfig) validate() error {
	if strings.TrimSpace(g.Endpoint) == "" {
		return fmt.Errorf("graph.endpoint is required")
	}
	if g.TokenURL != "" && (g.ClientID == "" || g.ClientSecret == "") {
		return fmt.Errorf("graph.client_id and graph.client_secret are required with graph.token_url")
	}
	if g.PageSize <= 0 {
		return fmt.Errorf("graph.page_size must be > 0")
	}
	if g.BatchSize <= 0 || g.BatchSize > graphMaxBatchSize {
		return fmt.Errorf("graph.batch_size must be between 1 and %d", graphMaxBatchSize)
	}
	if g.Concurrency <= 0 {
		return fmt.Errorf("graph.concurrency must be > 0")
	}
	if g.RequestTimeout <= 0 {
		return fmt.Errorf("graph.request_timeout must be > 0")
	}
	if g.TokenRefreshSkew < 0 {
		return fmt.Errorf("graph.token_refresh_skew must be >= 0")
	}
	if g.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("graph.retry.max_attempts must be > 0")
	}
	if g.Retry.InitialDelay < 0 || g.Retry.MaxDelay < g.Retry.InitialDelay {
		return fmt.Errorf("graph.retry delays must satisfy 0 <= initial_delay <= max_delay")
	}
	return nil
}

func (w WarehouseConfig) validate() error {
	if strings.TrimSpace(w.DSN) == "" {
		return fmt.Errorf("warehouse.dsn is required")
	}
	if w.MaxOpenConns <= 0 {
		return fmt.Errorf("warehouse.max_open_conns must be > 0")
	}
	if w.MaxIdleConns <= 0 {
		return fmt.Errorf("warehouse.max_idle_conns must be > 0")
	}
	if w.PageSize <= 0 {
		return fmt.Errorf("warehouse.page_size must be > 0")
	}
	if w.BatchSize <= 0 {
		return fmt.Errorf("warehouse.batch_size must be > 0")
	}
	return nil
}

func (c CacheConfig) validate() error {
	if c.BuildTimeout <= 0 {
		return fmt.Errorf("cache.build_timeout must be > 0")
	}
	interval, err := c.RefreshEvery()
	if err != nil {
		return fmt.Errorf("invalid cache.refresh_interval %q: %w", c.RefreshInterval, err)
	}
	if interval < 0 {
		return fmt.Errorf("cache.refresh_interval must be >= 0")
	}
	if _, err := cache.ParseSnapshotSpecs(c.Precompute); err != nil {
		return fmt.Errorf("invalid cache.precompute: %w", err)
	}
	if c.ParallelThreshold < 0 || c.ChunkSize < 0 || c.Workers < 0 {
		return fmt.Errorf("cache.parallel_threshold, chunk_size and workers must be >= 0")
	}
	l := c.DisplayLimits
	for name, v := range map[string]int{
		"rv_type": l.RVType, "dealer_group": l.DealerGroup, "manufacturer": l.Manufacturer,
		"condition": l.Condition, "state": l.State, "region": l.Region, "city": l.City, "county": l.County,
	} {
		if v < 0 {
			return fmt.Errorf("cache.display_limits.%s must be >= 0", name)
		}
	}
	return nil
}

// Load parses config from defaults, file and env, then validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                       8080,
		"server.host":                       "0.0.0.0",
		"server.mode":                       "release",
		"source.backend":                    "",
		"graph.page_size":                   1000,
		"graph.batch_size":                  graphMaxBatchSize,
		"graph.concurrency":                 4,
		"graph.request_timeout":             "60s",
		"graph.token_refresh_skew":          "5m",
		"graph.retry.max_attempts":          3,
		"graph.retry.initial_delay":         "1s",
		"graph.retry.max_delay":             "10s",
		"lake.root":                         "./data/lake",
		"warehouse.max_open_conns":          10,
		"warehouse.max_idle_conns":          5,
		"warehouse.page_size":               5000,
		"warehouse.batch_size":              500,
		"warehouse.auto_migrate":            false,
		"fixture.path":                      "./testdata/fixture.yaml",
		"cache.build_timeout":               "15m",
		"cache.refresh_interval":            "",
		"cache.precompute":                  DefaultPrecompute(),
		"cache.parallel_threshold":          50000,
		"cache.chunk_size":                  25000,
		"cache.workers":                     0,
		"cache.display_limits.rv_type":      10,
		"cache.display_limits.dealer_group": 10,
		"cache.display_limits.manufacturer": 10,
		"cache.display_limits.condition":    0,
		"cache.display_limits.state":        65,
		"cache.display_limits.region":       10,
		"cache.display_limits.city":         20,
		"cache.display_limits.county":       15,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultPrecompute renders the cache's default snapshot set as config entries.
func DefaultPrecompute() []string {
	specs := cache.DefaultSnapshotSpecs()
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, s.String())
	}
	return out
}
