package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// tokenManager hands out client-credentials access tokens. The reuse source
// refreshes skew before expiry and serializes refreshes across callers;
// Invalidate swaps in a fresh one after the endpoint rejects a token.
type tokenManager struct {
	creds clientcredentials.Config
	skew  time.Duration
	// base carries the HTTP client the token requests go through.
	base context.Context

	mu  sync.Mutex
	src oauth2.TokenSource
}

func newTokenManager(cfg Config, httpClient *http.Client) *tokenManager {
	creds := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	if cfg.Scope != "" {
		creds.Scopes = strings.Fields(cfg.Scope)
	}
	return &tokenManager{
		creds: creds,
		skew:  cfg.TokenRefreshSkew,
		base:  context.WithValue(context.Background(), oauth2.HTTPClient, httpClient),
	}
}

func (m *tokenManager) source() oauth2.TokenSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.src == nil {
		m.src = oauth2.ReuseTokenSourceWithExpiry(nil, fetchSource{creds: &m.creds, ctx: m.base}, m.skew)
	}
	return m.src
}

// Token returns a valid access token, fetching a new one when needed.
func (m *tokenManager) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tok, err := m.source().Token()
	if err != nil {
		return "", classifyTokenError(err)
	}
	return tok.AccessToken, nil
}

// Invalidate drops the cached token so the next call fetches a fresh one.
func (m *tokenManager) Invalidate() {
	m.mu.Lock()
	m.src = nil
	m.mu.Unlock()
}

// classifyTokenError marks network failures and 429/5xx responses as transient.
func classifyTokenError(err error) error {
	err = fmt.Errorf("token request failed: %w", err)
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) && rErr.Response != nil && !retryableStatus(rErr.Response.StatusCode) {
		return err
	}
	return transient(err)
}

// fetchSource requests a new token on every call. creds.TokenSource would add
// its own reuse layer with a fixed expiry delta and hide the configured skew.
type fetchSource struct {
	creds *clientcredentials.Config
	ctx   context.Context
}

func (s fetchSource) Token() (*oauth2.Token, error) {
	tok, err := s.creds.Token(s.ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("[Graph] Access token refreshed", "expires_at", tok.Expiry.Format(time.RFC3339))
	return tok, nil
}
