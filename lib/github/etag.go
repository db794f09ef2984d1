// Copyright 2026 The Releasefs Authors
// SPDX-License-Identifier: Apache-2.0

package github

import "sync"

// etagEntry holds a cached validator, response body, and next-page URL
// for one URL. The next-page URL is stored because a 304 Not Modified
// is only required to carry cache-validation headers: the Link header
// may be absent, and pagination must survive that.
type etagEntry struct {
	etag    string
	body    []byte
	nextURL string
}

// etagCache stores per-URL (validator, body) pairs for conditional GET
// requests. When a GET response includes an ETag header, the response
// body is cached; on subsequent GETs to the same URL the If-None-Match
// header is sent, and a 304 Not Modified is answered from the cached
// body instead of consuming transfer and rate limit quota.
//
// Entries are replaced whole under the mutex, so concurrent fetches of
// the same URL never observe a torn entry. The cache has no eviction
// policy — it lives for the duration of the Client and is bounded by
// the number of distinct URLs queried (one per catalog page).
type etagCache struct {
	mu      sync.Mutex
	entries map[string]etagEntry
}

func newETagCache() *etagCache {
	return &etagCache{entries: make(map[string]etagEntry)}
}

// etag returns the cached validator for a URL.
func (cache *etagCache) etag(url string) (string, bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	entry, ok := cache.entries[url]
	return entry.etag, ok
}

// cached returns the cached response body and next-page URL for a URL.
func (cache *etagCache) cached(url string) ([]byte, string, bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	entry, ok := cache.entries[url]
	return entry.body, entry.nextURL, ok
}

// put stores a validator, response body, and next-page URL for a URL,
// evicting any prior entry.
func (cache *etagCache) put(url string, etag string, body []byte, nextURL string) {
	if etag == "" {
		return
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.entries[url] = etagEntry{etag: etag, body: body, nextURL: nextURL}
}
