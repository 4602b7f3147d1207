// Package assets talks to the asset API that signs model, cover and page URLs,
// and warms resolved model files into memory.
package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrNoModel means the asset API has no model for the book.
	ErrNoModel = errors.New("model not found")
	// ErrNoModelURL means the asset API answered without a usable URL.
	ErrNoModelURL = errors.New("no model URL received")
)

// ModelAsset matches GET /books/{id}/assets/model.
type ModelAsset struct {
	URL       string `json:"url"`
	GLTFURL   string `json:"gltf_url"`
	ExpiresIn int    `json:"expires_in"`
	AssetType string `json:"asset_type"`
}

// Location prefers the glTF URL.
func (a ModelAsset) Location() string {
	if a.GLTFURL != "" {
		return a.GLTFURL
	}
	return a.URL
}

// TokenSource returns the bearer token for the next request.
type TokenSource func(ctx context.Context) (string, error)

type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	token      TokenSource
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff sets the first retry delay; later retries double it.
func WithBackoff(d time.Duration) ClientOption {
	return func(c *Client) { c.backoff = d }
}

func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = func(context.Context) (string, error) { return token, nil }
	}
}

func WithTokenSource(ts TokenSource) ClientOption {
	return func(c *Client) { c.token = ts }
}

func NewClient(baseURL string, rps int, maxRetries int, opts ...ClientOption) *Client {
	if rps <= 0 {
		rps = 10
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
		backoff:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ModelAsset fetches the signed model descriptor for a book.
func (c *Client) ModelAsset(ctx context.Context, bookID string) (*ModelAsset, error) {
	u := fmt.Sprintf("%s/books/%s/assets/model", c.baseURL, url.PathEscape(bookID))

	var res ModelAsset
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ResolveModelURL returns the URL the viewer should load for a book.
func (c *Client) ResolveModelURL(ctx context.Context, bookID string) (string, error) {
	asset, err := c.ModelAsset(ctx, bookID)
	if err != nil {
		return "", fmt.Errorf("resolve model %s: %w", bookID, err)
	}
	loc := asset.Location()
	if loc == "" {
		return "", ErrNoModelURL
	}
	return loc, nil
}

func (c *Client) get(ctx context.Context, url string, target any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1x, 2x, 4x...
			backoff := c.backoff * time.Duration(1<<uint(i-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		retry, err := c.do(ctx, url, target)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, url string, target any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return false, fmt.Errorf("asset api token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return false, fmt.Errorf("decode asset response: %w", err)
		}
		return false, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, ErrNoModel
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return true, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	default:
		return false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}
