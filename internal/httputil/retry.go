// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across lookup backends.
package httputil

import (
	"context"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// transient responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 4

// RetryableStatus reports whether an HTTP status is transient: HTTP 429
// (rate limit) and all 5xx responses are retried; every other non-2xx
// status is treated as permanent and returned immediately.
func RetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Notify observes each completed attempt before any backoff sleep. status
// is 0 when the attempt failed at the transport level. delay is the backoff
// that follows, or 0 for the final attempt.
type Notify func(attempt int, status int, delay time.Duration)

// DoWithRetry executes an HTTP request, retrying transient failures
// (transport errors, HTTP 429, 5xx) with exponential backoff and jitter.
// The delay starts at RetryBaseDelay and doubles each attempt, with up to
// 50% random jitter added so concurrent processes do not retry in
// lockstep; the jitter affects timing only, never the returned payload.
//
// When maxRetries is 0 the default (4) is used. On each transient response
// the body is drained and closed before sleeping. If the context is
// cancelled during a backoff wait the function returns ctx.Err(). After
// exhausting retries the last transient response (or transport error) is
// returned so the caller can inspect it. notify, if non-nil, is called for
// every attempt, success or failure.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, notify Notify) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))

		last := attempt >= maxRetries
		transient := err != nil || RetryableStatus(resp.StatusCode)

		var delay time.Duration
		if transient && !last {
			delay = backoff(attempt)
		}
		if notify != nil {
			status := 0
			if err == nil {
				status = resp.StatusCode
			}
			notify(attempt, status, delay)
		}

		if err != nil {
			if last {
				return nil, err
			}
		} else if !transient || last {
			return resp, nil
		} else {
			// Drain and close the body before retrying.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func backoff(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
	return d + time.Duration(rand.Int63n(int64(d)/2+1))
}
