// Package graph reads the star schema through a GraphQL endpoint secured with
// OAuth2 client credentials.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rvmarket-lab/rv-intel/internal/metrics"
)

// Name is the backend name reported in logs and metrics.
const Name = "graph"

// MaxBatchSize is the largest key list the endpoint accepts in an `in` filter.
const MaxBatchSize = 100

// Config holds endpoint, credential and paging settings.
type Config struct {
	Endpoint         string
	TokenURL         string
	ClientID         string
	ClientSecret     string
	Scope            string
	PageSize         int
	BatchSize        int
	Concurrency      int
	RequestTimeout   time.Duration
	TokenRefreshSkew time.Duration
	Retry            RetryConfig
}

// Client implements source.Backend against the GraphQL endpoint.
type Client struct {
	endpoint    string
	httpClient  *http.Client
	tokens      *tokenManager
	retry       RetryConfig
	pageSize    int
	batchSize   int
	concurrency int
	metrics     *metrics.Metrics
}

// New creates a client. With no token URL, requests are sent unauthenticated.
func New(cfg Config, m *metrics.Metrics) *Client {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	c := &Client{
		endpoint:    cfg.Endpoint,
		httpClient:  httpClient,
		retry:       cfg.Retry,
		pageSize:    max(cfg.PageSize, 1),
		batchSize:   min(max(cfg.BatchSize, 1), MaxBatchSize),
		concurrency: max(cfg.Concurrency, 1),
		metrics:     m,
	}
	if cfg.TokenURL != "" {
		c.tokens = newTokenManager(cfg, httpClient)
	}
	return c
}

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

type gqlError struct {
	Message string `json:"message"`
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Execute posts query with vars and decodes the data member into out. Transient
// failures are retried with backoff.
func (c *Client) Execute(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to encode graphql request: %w", err)
	}
	return c.retry.Do(ctx, "graphql", func() error {
		return c.post(ctx, body, out)
	})
}

func (c *Client) post(ctx context.Context, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return transient(fmt.Errorf("graphql request failed: %w", err))
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		err := fmt.Errorf("graphql request failed: status %d: %s", res.StatusCode, strings.TrimSpace(string(snippet)))
		switch {
		case res.StatusCode == http.StatusUnauthorized && c.tokens != nil:
			c.tokens.Invalidate()
			return transient(err)
		case retryableStatus(res.StatusCode):
			return transient(err)
		}
		return err
	}

	var decoded response
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to decode graphql response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		msgs := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			msgs = append(msgs, e.Message)
		}
		return errors.New("graphql errors: " + strings.Join(msgs, "; "))
	}
	if out == nil || len(decoded.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(decoded.Data, out); err != nil {
		return fmt.Errorf("failed to decode graphql data: %w", err)
	}
	return nil
}

func (c *Client) observe(operation string, err error) {
	if c.metrics == nil {
		return
	}
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	c.metrics.UpstreamRequests.WithLabelValues(Name, operation, outcome).Inc()
}
