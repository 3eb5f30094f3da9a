package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"meeting_sync/internal/domain"
	"meeting_sync/internal/resilience"
)

const userAgent = "MeetingSync/1.0"

// Config is shared by the platform adapters.
type Config struct {
	BaseURL  string
	TokenURL string
	PageSize int
	MaxPages int
	Timeout  time.Duration
	Retry    resilience.Policy
}

// Client issues platform API requests with retries, classification and
// cached OAuth tokens per credential.
type Client struct {
	httpClient *http.Client
	policy     resilience.Policy
	logger     *slog.Logger

	mu     sync.Mutex
	tokens map[int64]oauth2.TokenSource
}

func NewClient(timeout time.Duration, policy resilience.Policy, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		policy:     policy,
		logger:     logger,
		tokens:     make(map[int64]oauth2.TokenSource),
	}
}

// TokenFactory builds the token source for a credential.
type TokenFactory func(ctx context.Context, cred *domain.Credential) (oauth2.TokenSource, error)

// Authorized returns an HTTP client carrying a token for cred. Token sources
// are reused across runs so tokens are refreshed only on expiry.
func (c *Client) Authorized(ctx context.Context, cred *domain.Credential, factory TokenFactory) (*http.Client, error) {
	if cred == nil {
		return nil, domain.NewError(domain.KindAuthFailure, "authorize", domain.ErrNoCredential)
	}

	c.mu.Lock()
	ts, ok := c.tokens[cred.ID]
	c.mu.Unlock()

	if !ok {
		tokenCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, c.httpClient)
		base, err := factory(tokenCtx, cred)
		if err != nil {
			return nil, domain.NewError(domain.KindAuthFailure, "authorize", err)
		}
		ts = oauth2.ReuseTokenSource(nil, classifiedTokens{base})

		c.mu.Lock()
		c.tokens[cred.ID] = ts
		c.mu.Unlock()
	}

	return &http.Client{
		Timeout: c.httpClient.Timeout,
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   c.httpClient.Transport,
		},
	}, nil
}

// Forget drops the cached token source of a credential.
func (c *Client) Forget(credID int64) {
	c.mu.Lock()
	delete(c.tokens, credID)
	c.mu.Unlock()
}

type classifiedTokens struct {
	src oauth2.TokenSource
}

func (t classifiedTokens) Token() (*oauth2.Token, error) {
	tok, err := t.src.Token()
	if err == nil {
		return tok, nil
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode < 500 {
		return nil, domain.NewError(domain.KindAuthFailure, "fetch token", err)
	}
	if errors.As(err, &re) {
		return nil, domain.NewError(domain.KindTransientNetwork, "fetch token", err)
	}
	return nil, domain.NewError(domain.KindAuthFailure, "fetch token", err)
}

// GetJSON decodes a 2xx response body into out.
func (c *Client) GetJSON(ctx context.Context, hc *http.Client, op, url string, out any) error {
	return resilience.Do(ctx, c.policy, c.logger, op, func(ctx context.Context) error {
		resp, err := c.do(ctx, hc, op, http.MethodGet, url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domain.NewError(domain.KindPermanent, op, fmt.Errorf("decode response: %w", err))
		}
		return nil
	})
}

// GetBytes downloads a file.
func (c *Client) GetBytes(ctx context.Context, hc *http.Client, op, url string) ([]byte, error) {
	var data []byte
	err := resilience.Do(ctx, c.policy, c.logger, op, func(ctx context.Context) error {
		resp, err := c.do(ctx, hc, op, http.MethodGet, url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return resilience.ClassifyTransportError(ctx, op, fmt.Errorf("read body: %w", err))
		}
		return nil
	})
	return data, err
}

func (c *Client) Delete(ctx context.Context, hc *http.Client, op, url string) error {
	return resilience.Do(ctx, c.policy, c.logger, op, func(ctx context.Context) error {
		resp, err := c.do(ctx, hc, op, http.MethodDelete, url)
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	})
}

func (c *Client) do(ctx context.Context, hc *http.Client, op, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, domain.NewError(domain.KindPermanent, op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := hc.Do(req)
	if err != nil {
		return nil, resilience.ClassifyTransportError(ctx, op, fmt.Errorf("execute request: %w", err))
	}
	if err := resilience.CheckResponse(op, resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}
