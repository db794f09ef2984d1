// Copyright 2026 The Releasefs Authors
// SPDX-License-Identifier: Apache-2.0

// Package github provides a typed Go client for the GitHub releases
// API — the catalog source behind the releasefs mount.
//
// The client optionally authenticates with HTTP basic credentials. It
// handles rate limiting (X-RateLimit-* headers with automatic backoff),
// pagination (RFC 5988 Link headers), and conditional requests: every
// GET response carrying an ETag is cached per URL, subsequent requests
// send If-None-Match, and a 304 Not Modified is answered from the
// cached body without re-transferring the catalog. This keeps repeated
// directory listings cheap against GitHub's rate-limited API.
//
// All requests are made over HTTPS. The client refuses non-HTTPS base
// URLs.
package github
