// Copyright 2026 The Releasefs Authors
// SPDX-License-Identifier: Apache-2.0

// Package fuse mounts a releasefs.Filesystem into the host directory
// tree via go-fuse.
//
// The mount is read-only and fully synthetic: one directory per
// release tag, one regular file per asset, placeholder file content.
// Every kernel call is answered from the current tree snapshot; no
// call blocks on the network. Inode numbers reported to the kernel
// are the tree's own identifiers (root is always 1), carried through
// go-fuse stable attributes.
//
// When a refresh interval is configured, a background goroutine
// refetches the catalog on a ticker and atomically swaps the snapshot.
// In-flight kernel calls keep reading the old snapshot; new calls see
// the new one. The 1-second kernel attribute TTL bounds how long stale
// entries linger after a swap.
//
// # Write Path
//
// Not implemented. The filesystem advertises read-only permission
// bits, and opening an asset for writing returns EROFS.
package fuse
