package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"
)

const externalHTTPTimeout = 30 * time.Second

var externalHTTPClient = &http.Client{
	Timeout: externalHTTPTimeout,
}

const (
	maxHTTPRetries   = 3
	retryBaseBackoff = 500 * time.Millisecond
)

// doWithRetry executes an HTTP request with bounded retries and exponential
// backoff. Only transport errors and retryable status codes (429, 5xx) are
// retried; the request must have a rewindable body (GetBody set) or no body.
func doWithRetry(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < maxHTTPRetries; attempt++ {
		if attempt > 0 {
			backoff := retryBaseBackoff << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("rewinding request body: %w", err)
				}
				req.Body = body
			}
		}

		resp, err := client.Do(req.WithContext(ctx))
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("http retryable error attempt=%d url=%s: %v", attempt+1, req.URL.Host, err)
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d from %s", resp.StatusCode, req.URL.Host)
			log.Printf("http retryable status attempt=%d url=%s status=%d", attempt+1, req.URL.Host, resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", maxHTTPRetries, lastErr)
}
