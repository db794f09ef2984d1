// Copyright 2026 The Releasefs Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEtagCacheConsistency reports a 304 Not Modified response for a
// URL with no conditional-cache entry. The If-None-Match header is
// only sent when an entry exists, so this indicates a client or server
// protocol violation and is not recovered from.
var ErrEtagCacheConsistency = errors.New("github: 304 Not Modified for a URL with no cache entry")

// APIError represents a non-2xx response from the GitHub REST API.
// GitHub returns structured JSON error bodies with a message and an
// optional documentation URL.
type APIError struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Message is the top-level error description from GitHub.
	Message string

	// DocumentationURL points to the relevant API documentation.
	DocumentationURL string
}

func (err *APIError) Error() string {
	return fmt.Sprintf("github: HTTP %d: %s", err.StatusCode, err.Message)
}

// DecodeError reports a response body that could not be decoded as the
// expected catalog shape.
type DecodeError struct {
	// URL is the request URL whose body failed to decode.
	URL string

	// Err is the underlying JSON decoding error.
	Err error
}

func (err *DecodeError) Error() string {
	return fmt.Sprintf("github: decoding %s: %v", err.URL, err.Err)
}

func (err *DecodeError) Unwrap() error { return err.Err }

// IsNotFound reports whether err is a GitHub API 404 Not Found
// response (unknown owner/repo, or a private repository accessed
// without credentials).
func IsNotFound(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == 404
}

// IsRateLimited reports whether err is a GitHub API rate limit
// response. GitHub returns 403 when the primary rate limit is exceeded
// and 429 for secondary (abuse) rate limits.
func IsRateLimited(err error) bool {
	var apiError *APIError
	if !errors.As(err, &apiError) {
		return false
	}
	return apiError.StatusCode == 429 || (apiError.StatusCode == 403 && isRateLimitMessage(apiError.Message))
}

// isRateLimitMessage checks whether a 403 error message indicates a
// rate limit rather than a permission issue. GitHub's rate limit 403
// responses contain recognizable phrases.
func isRateLimitMessage(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "abuse detection")
}

// parseAPIErrorFromBody parses a GitHub API error from a status code
// and response body. Unstructured bodies are carried verbatim in the
// message.
func parseAPIErrorFromBody(statusCode int, body []byte) *APIError {
	apiError := &APIError{StatusCode: statusCode}

	var wireError struct {
		Message          string `json:"message"`
		DocumentationURL string `json:"documentation_url"`
	}
	if json.Unmarshal(body, &wireError) == nil && wireError.Message != "" {
		apiError.Message = wireError.Message
		apiError.DocumentationURL = wireError.DocumentationURL
	} else {
		apiError.Message = string(body)
	}

	return apiError
}
