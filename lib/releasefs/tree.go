// Copyright 2026 The Releasefs Authors
// SPDX-License-Identifier: Apache-2.0

package releasefs

import (
	"log/slog"

	"github.com/releasefs/releasefs/lib/github"
)

// RootID is the filesystem identifier of the root directory. The
// kernel protocol reserves identifier 1 for the mount root.
const RootID uint64 = 1

// AssetSize is the declared size of every synthesized asset file. The
// placeholder content is always shorter than this, so reads terminate
// within the declared size.
const AssetSize uint64 = 64

// Kind distinguishes directories from regular files.
type Kind uint8

const (
	// Directory is the root or a tag node.
	Directory Kind = iota

	// RegularFile is an asset node.
	RegularFile
)

// Node is one entry in the synthesized tree: the root, a tag
// directory, or an asset file.
type Node struct {
	// ID is the node's filesystem identifier, unique within one
	// built tree and stable for the tree's lifetime.
	ID uint64

	// Kind is Directory for the root and tags, RegularFile for
	// assets.
	Kind Kind

	// Name is the tag name or asset file name. Empty for the root.
	Name string

	// Parent is the identifier of the containing directory. Tags
	// hang off the root; assets hang off their tag. The root is its
	// own parent.
	Parent uint64

	// children holds child identifiers in catalog order. Nil for
	// asset nodes.
	children []uint64

	// childByName resolves a child name to its identifier. Nil for
	// asset nodes.
	childByName map[string]uint64
}

// Tree is the identifier tree built from one catalog snapshot.
// Immutable after Build and safe for concurrent reads.
type Tree struct {
	nodes map[uint64]*Node
}

// Build synthesizes the identifier tree from a release catalog.
// Identifiers are assigned from a counter walked in catalog order, so
// building twice from the same catalog yields identical identifiers.
//
// Duplicate tag names across releases, and duplicate asset names
// within a release, cannot coexist in a filesystem namespace: the
// first occurrence wins and later ones are dropped with a warning.
func Build(releases []github.Release, logger *slog.Logger) *Tree {
	if logger == nil {
		logger = slog.Default()
	}

	root := &Node{
		ID:          RootID,
		Kind:        Directory,
		Parent:      RootID,
		childByName: make(map[string]uint64),
	}
	tree := &Tree{nodes: map[uint64]*Node{RootID: root}}

	nextID := RootID
	for _, release := range releases {
		if _, exists := root.childByName[release.TagName]; exists {
			logger.Warn("duplicate tag name in catalog, keeping first occurrence",
				"tag", release.TagName,
				"release_id", release.ID,
			)
			continue
		}

		nextID++
		tag := &Node{
			ID:          nextID,
			Kind:        Directory,
			Name:        release.TagName,
			Parent:      RootID,
			childByName: make(map[string]uint64),
		}
		tree.nodes[tag.ID] = tag
		root.children = append(root.children, tag.ID)
		root.childByName[tag.Name] = tag.ID

		for _, asset := range release.Assets {
			if _, exists := tag.childByName[asset.Name]; exists {
				logger.Warn("duplicate asset name in release, keeping first occurrence",
					"tag", release.TagName,
					"asset", asset.Name,
					"asset_id", asset.ID,
				)
				continue
			}

			nextID++
			file := &Node{
				ID:     nextID,
				Kind:   RegularFile,
				Name:   asset.Name,
				Parent: tag.ID,
			}
			tree.nodes[file.ID] = file
			tag.children = append(tag.children, file.ID)
			tag.childByName[file.Name] = file.ID
		}
	}

	return tree
}

// Len returns the number of nodes in the tree, including the root.
func (t *Tree) Len() int { return len(t.nodes) }
