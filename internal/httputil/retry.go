// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"
)

// RetryBaseDelay is the backoff unit for HTTP 429 and 503 responses and
// TimeoutBaseDelay the unit for timed-out attempts. Tests override both
// to avoid real sleeps.
var (
	RetryBaseDelay   = 15 * time.Second
	TimeoutBaseDelay = 10 * time.Second
)

const defaultMaxAttempts = 3

// retryable reports whether an HTTP status is worth another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// DoWithRetry executes an HTTP request, retrying on HTTP 429 and 503 and
// on request timeouts. The wait grows linearly with the attempt number:
// RetryBaseDelay·n after a rate-limit status, TimeoutBaseDelay·n after a
// timeout.
//
// When maxAttempts is 0 the default (3) is used. Request bodies are
// replayed through req.GetBody. If the context is cancelled during a wait
// the function returns ctx.Err(). After the last attempt the final 429/503
// response is returned so the caller can inspect it, or the final timeout
// error.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxAttempts int) (*http.Response, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	for attempt := 1; ; attempt++ {
		r := req.Clone(ctx)
		if attempt > 1 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			r.Body = body
		}

		var wait time.Duration
		resp, err := client.Do(r)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !isTimeout(err) || attempt >= maxAttempts {
				return nil, err
			}
			wait = time.Duration(attempt) * TimeoutBaseDelay
		case !retryable(resp.StatusCode):
			return resp, nil
		case attempt >= maxAttempts:
			return resp, nil
		default:
			// Drain and close the body before retrying.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			wait = time.Duration(attempt) * RetryBaseDelay
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
