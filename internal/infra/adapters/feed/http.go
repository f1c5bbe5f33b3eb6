// File: internal/infra/adapters/feed/http.go
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/infra/metrics"
)

// maxBody caps how much of an upstream response is read.
const maxBody = 64 << 20

// Client is the shared HTTP getter of the feed adapters.
type Client struct {
	http      *http.Client
	userAgent string
}

func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// get fetches url and returns its body. Every failure wraps domain.ErrFetchFailed.
func (c *Client) get(ctx context.Context, source, url string) (body []byte, err error) {
	start := time.Now()
	defer func() { metrics.ObserveFeedFetch(source, time.Since(start), err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrFetchFailed, source, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrFetchFailed, source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: unexpected status %d", domain.ErrFetchFailed, source, resp.StatusCode)
	}
	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", domain.ErrFetchFailed, source, err)
	}
	return body, nil
}
