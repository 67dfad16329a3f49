// Package httpx wraps the standard HTTP client with bounded retries and a
// per-attempt timeout for calls to external providers.
package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultRetries        = 2
	defaultAttemptTimeout = 12 * time.Second
	retryBackoff          = 600 * time.Millisecond
)

// Client retries transient failures. Responses with status >= 500 and
// transport errors are retried; 4xx responses are returned as-is.
type Client struct {
	HTTP           *http.Client
	Retries        int
	AttemptTimeout time.Duration
}

// NewClient returns a Client with default retry settings.
func NewClient() *Client {
	return &Client{
		HTTP:           &http.Client{},
		Retries:        defaultRetries,
		AttemptTimeout: defaultAttemptTimeout,
	}
}

// Do performs the request, replaying the body on each retry. The returned
// response body is fully read and the connection released.
func (c *Client) Do(ctx context.Context, method, url string, header http.Header, body []byte) (int, []byte, error) {
	retries := c.Retries
	if retries < 0 {
		retries = 0
	}
	timeout := c.AttemptTimeout
	if timeout <= 0 {
		timeout = defaultAttemptTimeout
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			case <-time.After(retryBackoff * time.Duration(attempt)):
			}
		}

		status, respBody, err := c.doOnce(ctx, timeout, method, url, header, body)
		if err != nil {
			lastErr = err
			continue
		}
		if status >= http.StatusInternalServerError && attempt < retries {
			lastErr = fmt.Errorf("upstream returned %d", status)
			continue
		}
		return status, respBody, nil
	}

	return 0, nil, fmt.Errorf("request to %s failed after %d attempts: %w", url, retries+1, lastErr)
}

func (c *Client) doOnce(ctx context.Context, timeout time.Duration, method, url string, header http.Header, body []byte) (int, []byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}
