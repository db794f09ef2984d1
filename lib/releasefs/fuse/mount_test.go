// Copyright 2026 The Releasefs Authors
// SPDX-License-Identifier: Apache-2.0

package fuse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"

	"github.com/releasefs/releasefs/lib/clock"
	"github.com/releasefs/releasefs/lib/github"
	"github.com/releasefs/releasefs/lib/releasefs"
)

// fuseAvailable checks whether /dev/fuse is accessible. Tests that
// need a real FUSE mount call this and skip if the device is absent.
func fuseAvailable(t *testing.T) {
	t.Helper()
	_, err := os.Stat("/dev/fuse")
	if err != nil {
		t.Skip("skipping: /dev/fuse not available")
	}
}

const testCatalogBody = `[
	{"id": 1, "tag_name": "v1.0", "assets": [
		{"id": 11, "name": "app.bin", "size": 10, "content_type": "application/octet-stream"},
		{"id": 12, "name": "app.sig", "size": 5, "content_type": "application/pgp-signature"}
	]},
	{"id": 2, "tag_name": "v0.9", "assets": []}
]`

// testMount serves the catalog body from an httptest server, builds
// the filesystem, and mounts it. The mount is automatically unmounted
// when the test ends.
func testMount(t *testing.T, body *atomic.Value) (mountpoint string, filesystem *releasefs.Filesystem) {
	t.Helper()
	fuseAvailable(t)

	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte(body.Load().(string)))
	}))
	t.Cleanup(server.Close)

	client, err := github.NewClient(github.Config{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Clock:      clock.Real(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	filesystem, err = releasefs.New(context.Background(), releasefs.Options{
		Client: client,
		Owner:  "owner",
		Repo:   "repo",
	})
	if err != nil {
		t.Fatalf("releasefs.New: %v", err)
	}

	mountpoint = filepath.Join(t.TempDir(), "mount")

	mounted, err := Mount(Options{
		Mountpoint: mountpoint,
		Filesystem: filesystem,
	})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	t.Cleanup(func() {
		if err := mounted.Unmount(); err != nil {
			t.Errorf("Unmount: %v", err)
		}
	})

	return mountpoint, filesystem
}

func newTestBody() *atomic.Value {
	var body atomic.Value
	body.Store(testCatalogBody)
	return &body
}

func TestMountRootListsTags(t *testing.T) {
	mountpoint, _ := testMount(t, newTestBody())

	entries, err := os.ReadDir(mountpoint)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	names := make(map[string]bool)
	for _, entry := range entries {
		if !entry.IsDir() {
			t.Errorf("entry %s is not a directory", entry.Name())
		}
		names[entry.Name()] = true
	}

	if !names["v1.0"] || !names["v0.9"] {
		t.Errorf("tags = %v, want v1.0 and v0.9", names)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestMountTagListsAssets(t *testing.T) {
	mountpoint, _ := testMount(t, newTestBody())

	entries, err := os.ReadDir(filepath.Join(mountpoint, "v1.0"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.IsDir() {
			t.Errorf("asset %s listed as directory", entry.Name())
		}
	}

	empty, err := os.ReadDir(filepath.Join(mountpoint, "v0.9"))
	if err != nil {
		t.Fatalf("ReadDir(v0.9): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("v0.9 entries = %v, want none", empty)
	}
}

func TestMountAssetAttributes(t *testing.T) {
	mountpoint, _ := testMount(t, newTestBody())

	info, err := os.Stat(filepath.Join(mountpoint, "v1.0", "app.bin"))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	if info.IsDir() {
		t.Error("asset reported as directory")
	}
	if info.Size() != int64(releasefs.AssetSize) {
		t.Errorf("size = %d, want %d", info.Size(), releasefs.AssetSize)
	}
	if mode := info.Mode().Perm(); mode != 0o444 {
		t.Errorf("mode = %o, want 0444", mode)
	}
}

// Stat immediately after a fresh lookup answers from the entry reply's
// attributes, so this exercises the link counts set in Lookup, not
// just Getattr.
func TestMountLinkCounts(t *testing.T) {
	mountpoint, _ := testMount(t, newTestBody())

	statNlink := func(path string) uint64 {
		t.Helper()
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat(%s): %v", path, err)
		}
		stat, ok := info.Sys().(*syscall.Stat_t)
		if !ok {
			t.Fatal("no Stat_t available")
		}
		return uint64(stat.Nlink)
	}

	if nlink := statNlink(filepath.Join(mountpoint, "v1.0")); nlink != 2 {
		t.Errorf("tag directory nlink = %d, want 2", nlink)
	}
	if nlink := statNlink(filepath.Join(mountpoint, "v1.0", "app.bin")); nlink != 1 {
		t.Errorf("asset nlink = %d, want 1", nlink)
	}
}

func TestMountReadEmbedsInode(t *testing.T) {
	mountpoint, _ := testMount(t, newTestBody())
	assetPath := filepath.Join(mountpoint, "v1.0", "app.bin")

	info, err := os.Stat(assetPath)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		t.Fatal("no Stat_t available")
	}

	content, err := os.ReadFile(assetPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if len(content) == 0 {
		t.Fatal("asset content empty")
	}
	if !strings.Contains(string(content), strconv.FormatUint(stat.Ino, 10)) {
		t.Errorf("content %q does not embed inode %d", content, stat.Ino)
	}
}

func TestMountRootInodeIsOne(t *testing.T) {
	mountpoint, _ := testMount(t, newTestBody())

	info, err := os.Stat(mountpoint)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		t.Fatal("no Stat_t available")
	}
	if stat.Ino != 1 {
		t.Errorf("root inode = %d, want 1", stat.Ino)
	}
}

func TestMountUnknownNameIsENOENT(t *testing.T) {
	mountpoint, _ := testMount(t, newTestBody())

	_, err := os.Stat(filepath.Join(mountpoint, "v9.9"))
	if !os.IsNotExist(err) {
		t.Errorf("Stat(v9.9) err = %v, want not-exist", err)
	}

	_, err = os.Stat(filepath.Join(mountpoint, "v1.0", "missing.bin"))
	if !os.IsNotExist(err) {
		t.Errorf("Stat(missing.bin) err = %v, want not-exist", err)
	}
}

func TestMountWriteIsRejected(t *testing.T) {
	mountpoint, _ := testMount(t, newTestBody())

	_, err := os.OpenFile(filepath.Join(mountpoint, "v1.0", "app.bin"), os.O_WRONLY, 0)
	if err == nil {
		t.Fatal("open for write succeeded on read-only filesystem")
	}
}

func TestMountValidatesOptions(t *testing.T) {
	if _, err := Mount(Options{Filesystem: &releasefs.Filesystem{}}); err == nil {
		t.Error("expected error for missing mountpoint")
	}
	if _, err := Mount(Options{Mountpoint: t.TempDir()}); err == nil {
		t.Error("expected error for missing filesystem")
	}
}
