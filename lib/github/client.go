// Copyright 2026 The Releasefs Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/releasefs/releasefs/lib/clock"
	"github.com/releasefs/releasefs/lib/netutil"
)

// githubAPIVersion is the GitHub REST API version header. Pinning the
// version ensures consistent behavior as GitHub evolves the API.
const githubAPIVersion = "2022-11-28"

// defaultBaseURL is the base URL for the public GitHub API.
const defaultBaseURL = "https://api.github.com"

// Config holds configuration for creating a GitHub API Client.
//
// Authentication is optional. When Username and Password are both set,
// every request — including conditional re-validation requests — is
// sent with HTTP basic credentials. Unauthenticated clients work
// against public repositories at a lower rate limit.
type Config struct {
	// BaseURL is the root URL for API requests. Defaults to
	// "https://api.github.com". Must use HTTPS.
	BaseURL string

	// Username is the basic-auth username. Optional; must be set
	// together with Password.
	Username string

	// Password is the basic-auth password or personal access token.
	// Optional; must be set together with Username.
	Password string

	// HTTPClient is used for all HTTP requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Clock provides time operations. Defaults to clock.Real().
	// Inject clock.Fake() in tests for deterministic behavior.
	Clock clock.Clock

	// Logger is used for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client is a typed GitHub releases API client with optional basic
// authentication, rate limiting, pagination, ETag caching, and
// structured error handling.
type Client struct {
	baseURL    string
	httpClient *http.Client
	username   string
	password   string
	rateLimit  *rateLimitTracker
	etagCache  *etagCache
	clock      clock.Clock
	logger     *slog.Logger
}

// NewClient creates a GitHub API client from the given configuration.
// Returns an error if the configuration is invalid (partial
// credentials, non-HTTPS URL).
func NewClient(config Config) (*Client, error) {
	// Resolve defaults.
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	// Enforce HTTPS.
	if !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("github: API client requires HTTPS (got %q)", baseURL)
	}

	// Credentials are all-or-nothing.
	if (config.Username == "") != (config.Password == "") {
		return nil, fmt.Errorf("github: username and password must be set together")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		username:   config.Username,
		password:   config.Password,
		rateLimit:  newRateLimitTracker(clk),
		etagCache:  newETagCache(),
		clock:      clk,
		logger:     logger,
	}, nil
}

// fetchPage executes a conditional GET against an absolute URL and
// returns the response body and the next-page URL from the Link
// header (empty for the last page). Handles rate limit waiting,
// authentication, ETag caching, and error parsing.
//
// A 200 response carrying an ETag replaces the cache entry for the
// URL, next-page URL included. A 304 Not Modified is answered from the
// cache; the cached next-page URL backs any Link header the 304
// omitted, since a 304 is only obliged to repeat cache-validation
// headers. A 304 for a URL with no cache entry returns
// ErrEtagCacheConsistency, since the If-None-Match header is only sent
// when an entry exists.
func (client *Client) fetchPage(ctx context.Context, url string) ([]byte, string, error) {
	return client.fetchPageWithRetry(ctx, url, false)
}

// fetchPageWithRetry is the internal implementation of fetchPage with
// a retry flag to prevent infinite recursion on persistent rate
// limiting.
func (client *Client) fetchPageWithRetry(ctx context.Context, url string, isRetry bool) ([]byte, string, error) {
	response, err := client.doRaw(ctx, url)
	if err != nil {
		return nil, "", err
	}
	defer response.Body.Close()

	// 304 Not Modified — the catalog page has not changed since the
	// cached validator. Serve the cached body and next-page URL.
	if response.StatusCode == http.StatusNotModified {
		cachedBody, cachedNext, ok := client.etagCache.cached(url)
		if !ok {
			return nil, "", fmt.Errorf("github: 304 for %s: %w", url, ErrEtagCacheConsistency)
		}
		nextURL := parseLinkNext(response.Header.Get("Link"))
		if nextURL == "" {
			nextURL = cachedNext
		}
		client.logger.Debug("catalog unchanged, serving cached body", "url", url)
		return cachedBody, nextURL, nil
	}

	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, "", fmt.Errorf("github: reading response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		// Rate limited — attempt one retry after backoff.
		if !isRetry && (response.StatusCode == 429 || (response.StatusCode == 403 && isRateLimitMessage(string(body)))) {
			retryDuration := client.rateLimit.retryAfter(response.Header)
			if retryDuration > 0 {
				client.logger.Info("rate limited, backing off",
					"duration", retryDuration,
					"url", url,
				)

				select {
				case <-client.clock.After(retryDuration):
				case <-ctx.Done():
					return nil, "", ctx.Err()
				}

				return client.fetchPageWithRetry(ctx, url, true)
			}
		}

		return nil, "", parseAPIErrorFromBody(response.StatusCode, body)
	}

	nextURL := parseLinkNext(response.Header.Get("Link"))

	// A fresh response with a validator replaces the cache entry.
	if etag := response.Header.Get("ETag"); etag != "" {
		client.etagCache.put(url, etag, body, nextURL)
	}

	return body, nextURL, nil
}

// doRaw executes a GET request with authentication, conditional-fetch
// headers, and rate limit waiting, but without response handling. The
// caller is responsible for closing the response body.
func (client *Client) doRaw(ctx context.Context, url string) (*http.Response, error) {
	// Preemptive rate limit check.
	if err := client.rateLimit.wait(ctx); err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("github: creating request: %w", err)
	}

	if client.username != "" {
		request.SetBasicAuth(client.username, client.password)
	}

	// Standard GitHub headers.
	request.Header.Set("Accept", "application/vnd.github+json")
	request.Header.Set("X-GitHub-Api-Version", githubAPIVersion)

	// Conditional fetch: send the cached validator if one exists.
	if etag, ok := client.etagCache.etag(url); ok {
		request.Header.Set("If-None-Match", etag)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("github: GET %s: %w", url, err)
	}

	// Update rate limit tracker from every response.
	client.rateLimit.update(response.Header)

	return response, nil
}

// list creates a PageIterator for a paginated GET endpoint.
func list[T any](client *Client, path string) *PageIterator[T] {
	return &PageIterator[T]{
		client:  client,
		nextURL: client.baseURL + path,
	}
}
