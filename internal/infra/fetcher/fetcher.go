// Package fetcher provides the HTTP layer for pulling raw feed documents.
// It wraps plain GETs with URL validation, retry with exponential backoff,
// per-host circuit breakers, and a response size cap.
package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"decks/internal/observability/metrics"
	"decks/internal/resilience/circuitbreaker"
	"decks/internal/resilience/retry"
	"decks/internal/usecase/ingest"
)

const userAgent = "DecksBot/1.0"

// FeedFetcher fetches raw feed bodies over HTTP.
//
// Failure contract: client errors (4xx) fail immediately, server errors (5xx)
// and network failures are retried with exponential backoff. A body over the
// configured cap is rejected without retry.
//
// Thread safety: FeedFetcher is safe for concurrent use.
type FeedFetcher struct {
	client      *http.Client
	retryConfig retry.Config
	config      FeedFetchConfig

	// ブレーカーはホスト単位。死んだフィードが他のフィードを巻き込まない。
	mu       sync.Mutex
	breakers map[string]*circuitbreaker.CircuitBreaker
}

// NewFeedFetcher creates a new FeedFetcher with the given configuration.
func NewFeedFetcher(config FeedFetchConfig) *FeedFetcher {
	fetcher := &FeedFetcher{
		retryConfig: retry.FeedFetchConfig(),
		config:      config,
		breakers:    make(map[string]*circuitbreaker.CircuitBreaker),
	}

	// Each redirect target is validated for SSRF before it is followed.
	fetcher.client = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ingest.ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.URL.String(), config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	return fetcher
}

// FetchBody fetches the raw body of a feed URL.
//
// The fetch process:
//  1. Validates the URL (scheme, host, private network check)
//  2. Executes the GET through the circuit breaker, retrying transient
//     failures with exponential backoff
//  3. Enforces the body size cap while reading the response
func (f *FeedFetcher) FetchBody(ctx context.Context, urlStr string) (string, error) {
	if err := validateURL(urlStr, f.config.DenyPrivateIPs); err != nil {
		return "", err
	}
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ingest.ErrInvalidURL, err)
	}
	breaker := f.breakerFor(parsed.Host)

	start := time.Now()
	var body string
	err = retry.WithBackoff(ctx, f.retryConfig, func() error {
		result, err := breaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, urlStr)
		})
		if err != nil {
			return err
		}
		body = result.(string)
		return nil
	})
	if err != nil {
		metrics.RecordFeedFetchFailed(time.Since(start))
		return "", fmt.Errorf("%w: %s: %v", ingest.ErrFeedFetchFailed, urlStr, err)
	}

	metrics.RecordFeedFetchSuccess(time.Since(start), len(body))
	return body, nil
}

// breakerFor returns the circuit breaker for a feed host, creating it on
// first use. Hosts keep their port so two servers on one address stay
// independent.
func (f *FeedFetcher) breakerFor(host string) *circuitbreaker.CircuitBreaker {
	f.mu.Lock()
	defer f.mu.Unlock()
	cb, ok := f.breakers[host]
	if !ok {
		cfg := circuitbreaker.FeedFetchConfig()
		cfg.Name = cfg.Name + ":" + host
		cb = circuitbreaker.New(cfg)
		f.breakers[host] = cb
	}
	return cb
}

// doFetch performs one HTTP request attempt. Called through the circuit
// breaker, so an unhealthy upstream eventually short-circuits.
func (f *FeedFetcher) doFetch(ctx context.Context, urlStr string) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ingest.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := f.client.Do(req)
	if err != nil {
		// Surface redirect validation errors without the url.Error wrapper
		if urlErr, ok := err.(*url.Error); ok && urlErr.Err != nil {
			return "", urlErr.Err
		}
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Redirects are already followed by the client, so any remaining status
	// below 400 (304 included) is success.
	if resp.StatusCode >= http.StatusBadRequest {
		return "", &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	// Read one byte past the cap to distinguish "at limit" from "over limit"
	limitedReader := io.LimitReader(resp.Body, f.config.MaxBodySize+1)
	bodyBytes, err := io.ReadAll(limitedReader)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if int64(len(bodyBytes)) > f.config.MaxBodySize {
		return "", fmt.Errorf("%w: response size exceeds %d bytes",
			ingest.ErrBodyTooLarge, f.config.MaxBodySize)
	}

	return string(bodyBytes), nil
}
