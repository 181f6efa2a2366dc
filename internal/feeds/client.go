package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"mnavcli/internal/config"
)

// maxResponseBytes bounds one feed response body.
const maxResponseBytes = 4 << 20

// client is the shared rate-limited JSON HTTP client under every feed.
type client struct {
	http    *http.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
}

func newClient(cfg config.FeedEndpoint) *client {
	return &client{
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// getJSON performs a rate-limited GET and decodes the JSON response into v.
func (c *client) getJSON(ctx context.Context, path string, query url.Values, v interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("feed endpoint is not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("feed returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(v); err != nil {
		return fmt.Errorf("failed to decode feed response: %w", err)
	}
	return nil
}
