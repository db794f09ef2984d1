// Copyright 2026 The Releasefs Authors
// SPDX-License-Identifier: Apache-2.0

// Package releasefs synthesizes a read-only, two-level virtual
// filesystem from a repository's release catalog: one directory per
// release tag under the root, one regular file per asset inside each
// tag directory. Reading an asset file yields short placeholder
// content embedding the file's identifier — asset bytes are never
// downloaded.
//
// # Identifier tree
//
// Build walks a catalog snapshot in order and assigns every node a
// filesystem identifier from a global counter. Identifier 1 is always
// the root. Within one built Tree, identifiers are stable and unique;
// a rebuild from the same catalog assigns the same identifiers. A
// Tree is immutable after Build and safe for concurrent reads.
//
// # Query operations
//
// A Tree answers the four queries a kernel filesystem protocol needs:
// Lookup (child by name under a parent), Attr (attributes by
// identifier), ReadAt (placeholder file content from an offset), and
// List (directory entries with `.`/`..` and resumable continuation
// offsets). All four are pure functions of the tree snapshot; a
// miss is reported with a false second return, never an error.
//
// # Catalog refresh
//
// Filesystem owns the catalog client and the current Tree snapshot.
// The snapshot is replaced wholesale by Refresh — there is no
// incremental diffing, and identifier stability is only promised
// within one snapshot. Readers always see either the old tree or the
// new one, never a mix.
package releasefs
