// Copyright 2026 The Releasefs Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"fmt"
	"time"
)

// Release is a published release in a repository's catalog. Immutable
// once fetched: a re-fetch replaces the whole value, never individual
// fields.
type Release struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	TagName     string    `json:"tag_name"`
	CreatedAt   time.Time `json:"created_at"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []Asset   `json:"assets"`
}

// Asset is a downloadable artifact attached to a release. Asset IDs
// are unique within a release but not guaranteed globally unique.
type Asset struct {
	ID                 int64  `json:"id"`
	URL                string `json:"url"`
	Name               string `json:"name"`
	ContentType        string `json:"content_type"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// ListReleases fetches the full release catalog for a repository, in
// the API's order (newest first), following pagination Link headers
// until exhausted. Each page is served from the conditional-request
// cache when GitHub reports it unchanged.
func (client *Client) ListReleases(ctx context.Context, owner, repo string) ([]Release, error) {
	path := fmt.Sprintf("/repos/%s/%s/releases", owner, repo)
	return list[Release](client, path).Collect(ctx)
}
