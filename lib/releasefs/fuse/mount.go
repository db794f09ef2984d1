// Copyright 2026 The Releasefs Authors
// SPDX-License-Identifier: Apache-2.0

package fuse

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/releasefs/releasefs/lib/clock"
	"github.com/releasefs/releasefs/lib/releasefs"
)

// Options configures the FUSE mount.
type Options struct {
	// Mountpoint is the directory where the filesystem is mounted.
	// Created if it does not exist.
	Mountpoint string

	// Filesystem provides the tree snapshots served to the kernel.
	Filesystem *releasefs.Filesystem

	// RefreshInterval enables periodic catalog refresh when positive.
	// Zero disables refresh: the tree built at mount time is served
	// for the lifetime of the mount.
	RefreshInterval time.Duration

	// AllowOther permits other users (including root) to access the
	// mount. Requires user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Clock drives the refresh ticker. If nil, defaults to
	// clock.Real().
	Clock clock.Clock

	// Logger receives diagnostic messages. If nil, a stderr text
	// handler at error level is used.
	Logger *slog.Logger
}

// Server is a mounted releasefs filesystem. Unmount stops the refresh
// loop and detaches the mount.
type Server struct {
	fuseServer *fuse.Server

	stopRefresh chan struct{}
	refreshDone chan struct{}
	stopOnce    sync.Once
}

// Mount mounts the release filesystem at the configured mountpoint.
// The caller must call Unmount on the returned Server when done.
func Mount(options Options) (*Server, error) {
	if options.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if options.Filesystem == nil {
		return nil, fmt.Errorf("filesystem is required")
	}

	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}

	// Ensure the mountpoint exists.
	if err := os.MkdirAll(options.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("creating mountpoint %s: %w", options.Mountpoint, err)
	}

	root := &rootNode{options: &options}

	entryTimeout := 1 * time.Second
	attrTimeout := 1 * time.Second
	negativeTimeout := 100 * time.Millisecond

	fuseServer, err := gofuse.Mount(options.Mountpoint, root, &gofuse.Options{
		EntryTimeout:    &entryTimeout,
		AttrTimeout:     &attrTimeout,
		NegativeTimeout: &negativeTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     "releasefs",
			Name:       "releasefs",
			AllowOther: options.AllowOther,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting FUSE filesystem at %s: %w", options.Mountpoint, err)
	}

	server := &Server{
		fuseServer:  fuseServer,
		stopRefresh: make(chan struct{}),
		refreshDone: make(chan struct{}),
	}

	if options.RefreshInterval > 0 {
		go runRefresher(options.Filesystem, options.Clock, options.RefreshInterval, options.Logger, server.stopRefresh, server.refreshDone)
	} else {
		close(server.refreshDone)
	}

	options.Logger.Info("release FUSE filesystem mounted",
		"mountpoint", options.Mountpoint,
		"refresh_interval", options.RefreshInterval,
	)
	return server, nil
}

// Wait blocks until the kernel connection is torn down, either by
// Unmount or by an external umount of the mountpoint.
func (s *Server) Wait() {
	s.fuseServer.Wait()
}

// Unmount stops the refresh loop and detaches the filesystem.
func (s *Server) Unmount() error {
	s.stopOnce.Do(func() { close(s.stopRefresh) })
	<-s.refreshDone
	return s.fuseServer.Unmount()
}

// runRefresher refetches the catalog on every tick and swaps the tree
// snapshot. A failed refresh keeps the previous snapshot and is
// logged, not fatal: serving a stale catalog beats tearing down the
// mount.
func runRefresher(filesystem *releasefs.Filesystem, clk clock.Clock, interval time.Duration, logger *slog.Logger, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := clk.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := filesystem.Refresh(context.Background()); err != nil {
				logger.Warn("catalog refresh failed, keeping previous snapshot", "error", err)
			}
		case <-stop:
			return
		}
	}
}
