// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookup fetches bibliographic metadata from remote sources
// (CrossRef, arXiv, DataCite) with process-wide rate limiting, retry, and
// a persistent payload cache. Every fetch attempt, success or failure, is
// logged with enough detail to reconstruct why a later match did or did
// not occur.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/cite-engine/internal/cache"
	"github.com/pdiddy/cite-engine/internal/httputil"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// Client is a rate-limited, caching metadata client. The limiter is shared
// state with a single owner: every worker goes through the same Client, so
// the minimum inter-request interval holds process-wide regardless of
// caller concurrency.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	store      *cache.Store
	cfg        types.LookupConfig
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLimiter substitutes the rate limiter. Tests pass rate.NewLimiter
// (rate.Inf, 0) to disable pacing.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithCache attaches a payload cache. Without one every fetch hits the
// network.
func WithCache(s *cache.Store) Option {
	return func(c *Client) { c.store = s }
}

// WithLogger sets the audit logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a lookup client from cfg.
func NewClient(cfg types.LookupConfig, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 1 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "cite-engine/0.1"
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		cfg:        cfg,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultTTL is the cache freshness bound callers use when none is
// configured. A non-positive TTL means cached payloads never expire.
const DefaultTTL = 30 * 24 * time.Hour

// FetchByIdentifier resolves an identifier to a canonical Payload. DOIs go
// to CrossRef with a DataCite fallback on not-found; preprint IDs go to
// the arXiv API. URL and unrecognized identifiers cannot be looked up and
// return a permanent LookupError.
func (c *Client) FetchByIdentifier(ctx context.Context, id types.Identifier, ttl time.Duration) (types.Payload, error) {
	switch id.Kind {
	case types.KindDOI:
		p, err := c.fetchCrossRef(ctx, id, ttl)
		var lerr *LookupError
		if errors.As(err, &lerr) && lerr.Kind == ErrNotFound {
			if fallback, ferr := c.fetchDataCite(ctx, id, ttl); ferr == nil {
				return fallback, nil
			}
			// Keep the CrossRef not-found as the primary error.
		}
		return p, err
	case types.KindPreprint:
		return c.fetchArxiv(ctx, id, ttl)
	default:
		return types.Payload{}, &LookupError{
			Kind:    ErrPermanent,
			Backend: "none",
			Err:     fmt.Errorf("identifier kind %q cannot be fetched", id.Kind),
		}
	}
}

// get performs a cached, rate-limited, retried GET against backend. The
// cache key is derived from the normalized query, never raw user text. The
// returned bool reports whether the payload came from the cache.
func (c *Client) get(ctx context.Context, backend, url, cacheKey string, ttl time.Duration, header http.Header) ([]byte, bool, error) {
	if c.store != nil {
		value, age, ok, err := c.store.Get(cacheKey)
		if err != nil {
			return nil, false, &LookupError{Kind: ErrPermanent, Backend: backend, Err: err}
		}
		if ok && (ttl <= 0 || age <= ttl) {
			c.log.Debug().
				Str("backend", backend).
				Str("url", url).
				Dur("age", age).
				Msg("cache hit")
			return value, true, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, &LookupError{Kind: ErrTransient, Backend: backend, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, &LookupError{Kind: ErrPermanent, Backend: backend, Err: err}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	notify := func(attempt, status int, delay time.Duration) {
		c.log.Info().
			Str("backend", backend).
			Str("url", url).
			Int("attempt", attempt+1).
			Int("status", status).
			Dur("backoff", delay).
			Dur("elapsed", time.Since(start)).
			Msg("fetch attempt")
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.cfg.MaxRetries, notify)
	if err != nil {
		c.log.Warn().Str("backend", backend).Str("url", url).Err(err).Msg("fetch failed")
		return nil, false, &LookupError{Kind: ErrTransient, Backend: backend, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, &LookupError{Kind: ErrNotFound, Backend: backend, Err: fmt.Errorf("HTTP 404 from %s", url)}
	case httputil.RetryableStatus(resp.StatusCode):
		return nil, false, &LookupError{Kind: ErrTransient, Backend: backend, Err: fmt.Errorf("HTTP %d from %s after retries", resp.StatusCode, url)}
	default:
		return nil, false, &LookupError{Kind: ErrPermanent, Backend: backend, Err: fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, &LookupError{Kind: ErrTransient, Backend: backend, Err: fmt.Errorf("reading response: %w", err)}
	}

	if c.store != nil {
		if err := c.store.Put(cacheKey, body); err != nil {
			// A cache write failure degrades to uncached operation.
			c.log.Warn().Str("backend", backend).Err(err).Msg("cache write failed")
		}
	}
	return body, false, nil
}

func malformed(backend string, err error) error {
	return &LookupError{Kind: ErrMalformed, Backend: backend, Err: err}
}
