// Package fetch retrieves upstream proposal documents from the raw GitHub
// content host.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SentinelNotFound is the literal body the raw content host serves for a
// missing file. A true HTTP 404 is normalized to the same value so callers
// have a single not-found signal, kept distinct from transport errors.
const SentinelNotFound = "404: Not Found"

// Fetcher retrieves a document body by URL. "Document does not exist" is
// reported in-band as SentinelNotFound; a non-nil error always means the
// document could not be retrieved, never that it is absent.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Client is the production Fetcher over net/http.
type Client struct {
	http *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return SentinelNotFound, nil
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	return string(body), nil
}

// IsNotFound reports whether a fetched body is the not-found sentinel.
func IsNotFound(body string) bool {
	return body == SentinelNotFound
}
