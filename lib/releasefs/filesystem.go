// Copyright 2026 The Releasefs Authors
// SPDX-License-Identifier: Apache-2.0

package releasefs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/releasefs/releasefs/lib/github"
)

// Options configures a Filesystem.
type Options struct {
	// Client fetches the release catalog. Required. The Filesystem
	// owns exactly one client; there is no shared global state.
	Client *github.Client

	// Owner is the repository owner. Required.
	Owner string

	// Repo is the repository name. Required.
	Repo string

	// Logger receives diagnostic messages. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Filesystem binds a catalog client to the current identifier-tree
// snapshot. Queries are answered from the snapshot; Refresh replaces
// it wholesale. Safe for concurrent use: readers always observe a
// complete snapshot.
type Filesystem struct {
	client *github.Client
	owner  string
	repo   string
	logger *slog.Logger

	tree atomic.Pointer[Tree]
}

// New creates a Filesystem and performs the initial catalog fetch.
// A fetch or decode failure here is fatal to the mount attempt: with
// no catalog there is no tree to serve.
func New(ctx context.Context, options Options) (*Filesystem, error) {
	if options.Client == nil {
		return nil, fmt.Errorf("catalog client is required")
	}
	if options.Owner == "" || options.Repo == "" {
		return nil, fmt.Errorf("owner and repo are required")
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	filesystem := &Filesystem{
		client: options.Client,
		owner:  options.Owner,
		repo:   options.Repo,
		logger: options.Logger,
	}

	if err := filesystem.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("initial catalog fetch for %s/%s: %w", options.Owner, options.Repo, err)
	}

	return filesystem, nil
}

// Tree returns the current tree snapshot. The snapshot is immutable;
// callers may keep using it across a concurrent Refresh and will see
// a consistent view.
func (f *Filesystem) Tree() *Tree {
	return f.tree.Load()
}

// Refresh fetches the catalog and atomically replaces the tree
// snapshot. On error the previous snapshot stays in place; in-flight
// readers are never left without a tree.
func (f *Filesystem) Refresh(ctx context.Context) error {
	releases, err := f.client.ListReleases(ctx, f.owner, f.repo)
	if err != nil {
		return err
	}

	tree := Build(releases, f.logger)
	f.tree.Store(tree)

	f.logger.Debug("catalog snapshot replaced",
		"owner", f.owner,
		"repo", f.repo,
		"releases", len(releases),
		"nodes", tree.Len(),
	)
	return nil
}
