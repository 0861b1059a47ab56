package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultHTTPTimeout bounds a single contract download.
const DefaultHTTPTimeout = 10 * time.Second

// HTTP fetches contract documents with GET requests.
type HTTP struct {
	Client *http.Client
}

// NewHTTP returns an HTTP backend whose requests time out after timeout.
// A non-positive timeout selects DefaultHTTPTimeout.
func NewHTTP(timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTP{Client: &http.Client{Timeout: timeout}}
}

// Fetch downloads loc. Any status other than 200 is an error.
func (h *HTTP) Fetch(ctx context.Context, loc *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", loc, err)
	}
	req.Header.Set("Accept", "application/schema+json, application/json, application/zstd")

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", loc, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("get %s: unexpected status %s", loc, resp.Status)
	}

	data, err := readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", loc, err)
	}
	if resp.Header.Get("Content-Type") == zstdContentType && !isCompressed(loc) {
		return decompress(data)
	}
	return data, nil
}
