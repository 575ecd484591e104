package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Ping sends an unauthenticated GET to the base URL and returns the status
// code. Any HTTP answer means the server is reachable; only transport
// failures are errors. Ping bypasses the contract check.
func (c *Client) Ping(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(http.MethodGet, "/", 0, time.Since(start))
		return 0, &TransportError{Op: http.MethodGet, URL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	c.metrics.ObserveRequest(http.MethodGet, "/", resp.StatusCode, time.Since(start))
	return resp.StatusCode, nil
}
