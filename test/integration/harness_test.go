//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/rvmarket-lab/rv-intel/internal/cache"
	"github.com/rvmarket-lab/rv-intel/internal/core/aggregation"
	"github.com/rvmarket-lab/rv-intel/internal/metrics"
	"github.com/rvmarket-lab/rv-intel/internal/projection"
	"github.com/rvmarket-lab/rv-intel/internal/server"
	"github.com/rvmarket-lab/rv-intel/internal/source"
	"github.com/rvmarket-lab/rv-intel/internal/source/fixture"
	"github.com/stretchr/testify/require"
)

type integrationHarness struct {
	baseURL    string
	client     *http.Client
	cache      *cache.Cache
	builder    *cache.Builder
	metrics    *metrics.Metrics
	cancel     context.CancelFunc
	serverDone chan error
}

func (h *integrationHarness) close(t *testing.T) {
	t.Helper()

	h.cancel()
	select {
	case <-h.serverDone:
	case <-time.After(5 * time.Second):
		t.Log("server shutdown timed out")
	}
}

// build runs one cache build and installs the result.
func (h *integrationHarness) build(t *testing.T) *cache.Generation {
	t.Helper()
	gen, err := h.builder.Build(context.Background())
	require.NoError(t, err)
	h.cache.Install(gen)
	return gen
}

func (h *integrationHarness) getJSON(t *testing.T, path string, out interface{}) (int, http.Header) {
	t.Helper()
	status, header, body := h.get(t, path)
	if out != nil && status == http.StatusOK {
		require.NoError(t, json.Unmarshal(body, out), string(body))
	}
	return status, header
}

func (h *integrationHarness) get(t *testing.T, path string) (int, http.Header, []byte) {
	t.Helper()
	resp, err := h.client.Get(h.baseURL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header, body
}

func loadFixture(t *testing.T) *fixture.Backend {
	t.Helper()
	backend, err := fixture.Load(filepath.Join(projectRoot(t), "testdata", "fixture.yaml"))
	require.NoError(t, err)
	return backend
}

// startHarness serves backend over HTTP with an empty cache. Call build to fill it.
func startHarness(t *testing.T, backend source.Backend) *integrationHarness {
	t.Helper()

	m := metrics.New()
	c := cache.New(m)
	builder := cache.NewBuilder(backend, cache.BuildOptions{
		Timeout: 30 * time.Second,
		Precompute: []cache.SnapshotSpec{
			{Field: aggregation.FieldCondition, Value: "NEW"},
			{Field: aggregation.FieldCondition, Value: "USED"},
			{Field: aggregation.FieldState, All: true},
		},
		Limits: aggregation.DefaultDisplayLimits(),
	}, m)

	port := freePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	httpServer := server.New(addr, "release", backend.Name(), c, m)
	projection.NewService(c, m).RegisterRoutes(httpServer.Engine)

	ctx, cancel := context.WithCancel(context.Background())
	serverDone := make(chan error, 1)
	go func() { serverDone <- httpServer.Run(ctx) }()

	baseURL := "http://" + addr
	waitForHealthy(t, baseURL)

	return &integrationHarness{
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		cache:      c,
		builder:    builder,
		metrics:    m,
		cancel:     cancel,
		serverDone: serverDone,
	}
}

func waitForHealthy(t *testing.T, baseURL string) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("server did not become healthy at %s", baseURL)
}

func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func projectRoot(t *testing.T) string {
	t.Helper()

	root, err := filepath.Abs(filepath.Join("..", ".."))
	require.NoError(t, err)
	return root
}
