// Copyright 2026 The Releasefs Authors
// SPDX-License-Identifier: Apache-2.0

package releasefs

import "fmt"

// Attr holds the fixed attributes reported for a node. The filesystem
// is synthetic: sizes and link counts are fixed by kind, not taken
// from the remote catalog.
type Attr struct {
	// ID is the node's filesystem identifier.
	ID uint64

	// Kind is the node's kind.
	Kind Kind

	// Size is 0 for directories and AssetSize for asset files.
	Size uint64

	// Nlink is 2 for directories (self and `.`) and 1 for files.
	Nlink uint32
}

// DirEntry is one entry in a directory listing.
type DirEntry struct {
	// ID is the entry's filesystem identifier. For `.` it is the
	// listed directory's own identifier; for `..` the parent's.
	ID uint64

	// Kind is the entry's kind.
	Kind Kind

	// Name is the entry name within the directory.
	Name string
}

// Lookup resolves a child by name under a parent directory. Returns
// false if the parent is unknown, the parent is not a directory, or
// the parent has no child with that name.
func (t *Tree) Lookup(parent uint64, name string) (*Node, bool) {
	parentNode, ok := t.nodes[parent]
	if !ok || parentNode.Kind != Directory {
		return nil, false
	}
	childID, ok := parentNode.childByName[name]
	if !ok {
		return nil, false
	}
	return t.nodes[childID], true
}

// Attr returns the fixed attributes of a node. Returns false for
// identifiers that do not resolve to any node — unknown identifiers
// are a miss, never defaulted to file attributes.
func (t *Tree) Attr(id uint64) (Attr, bool) {
	node, ok := t.nodes[id]
	if !ok {
		return Attr{}, false
	}
	return attrOf(node), true
}

// attrOf derives the fixed attributes for a node.
func attrOf(node *Node) Attr {
	attr := Attr{ID: node.ID, Kind: node.Kind}
	if node.Kind == Directory {
		attr.Nlink = 2
	} else {
		attr.Size = AssetSize
		attr.Nlink = 1
	}
	return attr
}

// Content returns the deterministic placeholder content of an asset
// file identifier. The content embeds the identifier and always fits
// within AssetSize.
func Content(id uint64) []byte {
	return []byte(fmt.Sprintf("release asset %d\n", id))
}

// ReadAt returns the placeholder content of an asset file from the
// given byte offset to the end. An offset at or beyond the content
// length yields an empty slice, not a miss. Directories and unknown
// identifiers return false.
func (t *Tree) ReadAt(id uint64, offset int64) ([]byte, bool) {
	node, ok := t.nodes[id]
	if !ok || node.Kind != RegularFile {
		return nil, false
	}

	content := Content(id)
	if offset < 0 || offset >= int64(len(content)) {
		return []byte{}, true
	}
	return content[offset:], true
}

// List enumerates a directory: `.`, `..`, then the children in build
// order, starting after the first offset entries. The same (id,
// offset) pair always yields the same suffix for one tree snapshot,
// which is what the kernel's paged readdir protocol requires. Unknown
// identifiers and asset files return false; an offset at or past the
// end returns an empty listing.
func (t *Tree) List(id uint64, offset int) ([]DirEntry, bool) {
	node, ok := t.nodes[id]
	if !ok || node.Kind != Directory {
		return nil, false
	}

	entries := make([]DirEntry, 0, len(node.children)+2)
	entries = append(entries,
		DirEntry{ID: node.ID, Kind: Directory, Name: "."},
		DirEntry{ID: node.Parent, Kind: Directory, Name: ".."},
	)
	for _, childID := range node.children {
		child := t.nodes[childID]
		entries = append(entries, DirEntry{ID: child.ID, Kind: child.Kind, Name: child.Name})
	}

	if offset < 0 {
		offset = 0
	}
	if offset >= len(entries) {
		return []DirEntry{}, true
	}
	return entries[offset:], true
}
