// Copyright 2026 The Releasefs Authors
// SPDX-License-Identifier: Apache-2.0

package releasefs

import (
	"testing"

	"github.com/releasefs/releasefs/lib/github"
)

// testCatalog is the canonical two-release fixture: v2.0 with two
// assets, v1.0 with one.
func testCatalog() []github.Release {
	return []github.Release{
		{
			ID:      200,
			TagName: "v2.0",
			Assets: []github.Asset{
				{ID: 2001, Name: "app-linux-amd64.tar.gz", Size: 1048576, ContentType: "application/gzip"},
				{ID: 2002, Name: "app-darwin-arm64.tar.gz", Size: 917504, ContentType: "application/gzip"},
			},
		},
		{
			ID:      100,
			TagName: "v1.0",
			Assets: []github.Asset{
				{ID: 1001, Name: "app.bin", Size: 10, ContentType: "application/octet-stream"},
			},
		},
	}
}

func TestBuildRootIsIdentifierOne(t *testing.T) {
	tree := Build(testCatalog(), nil)

	attr, ok := tree.Attr(RootID)
	if !ok {
		t.Fatal("Attr(1) missing")
	}
	if attr.Kind != Directory {
		t.Errorf("root kind = %v, want Directory", attr.Kind)
	}
	if attr.ID != 1 {
		t.Errorf("root id = %d, want 1", attr.ID)
	}
}

func TestBuildIdentifiersUnique(t *testing.T) {
	tree := Build(testCatalog(), nil)

	seen := make(map[uint64]string)
	listing, ok := tree.List(RootID, 2)
	if !ok {
		t.Fatal("List(root) missing")
	}
	for _, tagEntry := range listing {
		if prior, dup := seen[tagEntry.ID]; dup {
			t.Errorf("id %d assigned to both %q and %q", tagEntry.ID, prior, tagEntry.Name)
		}
		seen[tagEntry.ID] = tagEntry.Name

		assets, ok := tree.List(tagEntry.ID, 2)
		if !ok {
			t.Fatalf("List(%d) missing", tagEntry.ID)
		}
		for _, assetEntry := range assets {
			if prior, dup := seen[assetEntry.ID]; dup {
				t.Errorf("id %d assigned to both %q and %q", assetEntry.ID, prior, assetEntry.Name)
			}
			seen[assetEntry.ID] = assetEntry.Name
		}
	}

	if len(seen) != 5 {
		t.Errorf("distinct non-root ids = %d, want 5", len(seen))
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	first := Build(testCatalog(), nil)
	second := Build(testCatalog(), nil)

	if first.Len() != second.Len() {
		t.Fatalf("node counts differ: %d vs %d", first.Len(), second.Len())
	}

	// The sequential-counter scheme assigns identical ids on a
	// rebuild from the same catalog.
	firstListing, _ := first.List(RootID, 0)
	secondListing, _ := second.List(RootID, 0)
	for i := range firstListing {
		if firstListing[i] != secondListing[i] {
			t.Errorf("entry %d differs: %+v vs %+v", i, firstListing[i], secondListing[i])
		}
	}
}

func TestBuildParentContainment(t *testing.T) {
	tree := Build(testCatalog(), nil)

	tag, ok := tree.Lookup(RootID, "v2.0")
	if !ok {
		t.Fatal("v2.0 not found under root")
	}
	if tag.Parent != RootID {
		t.Errorf("tag parent = %d, want %d", tag.Parent, RootID)
	}

	asset, ok := tree.Lookup(tag.ID, "app-linux-amd64.tar.gz")
	if !ok {
		t.Fatal("asset not found under tag")
	}
	if asset.Parent != tag.ID {
		t.Errorf("asset parent = %d, want %d", asset.Parent, tag.ID)
	}

	root, ok := tree.Lookup(RootID, "..")
	if ok {
		t.Errorf("Lookup(root, ..) = %+v, want miss (dot entries are listing-only)", root)
	}
}

func TestBuildEmptyCatalog(t *testing.T) {
	tree := Build(nil, nil)

	if tree.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (root only)", tree.Len())
	}

	listing, ok := tree.List(RootID, 0)
	if !ok {
		t.Fatal("List(root) missing")
	}
	if len(listing) != 2 || listing[0].Name != "." || listing[1].Name != ".." {
		t.Errorf("listing = %+v, want only . and ..", listing)
	}
	if listing[0].ID != RootID || listing[1].ID != RootID {
		t.Errorf("root dot entries = %+v, want both id %d", listing, RootID)
	}
}

func TestBuildReleaseWithoutAssets(t *testing.T) {
	tree := Build([]github.Release{{ID: 1, TagName: "v0.1"}}, nil)

	tag, ok := tree.Lookup(RootID, "v0.1")
	if !ok {
		t.Fatal("v0.1 not found")
	}

	listing, ok := tree.List(tag.ID, 0)
	if !ok {
		t.Fatal("List(tag) missing")
	}
	if len(listing) != 2 {
		t.Errorf("listing = %+v, want only . and ..", listing)
	}
}

func TestBuildDuplicateTagNamesFirstWins(t *testing.T) {
	releases := []github.Release{
		{ID: 1, TagName: "v1.0", Assets: []github.Asset{{ID: 11, Name: "first.bin"}}},
		{ID: 2, TagName: "v1.0", Assets: []github.Asset{{ID: 21, Name: "second.bin"}}},
	}
	tree := Build(releases, nil)

	tag, ok := tree.Lookup(RootID, "v1.0")
	if !ok {
		t.Fatal("v1.0 not found")
	}
	if _, ok := tree.Lookup(tag.ID, "first.bin"); !ok {
		t.Error("first release's asset missing — first occurrence should win")
	}
	if _, ok := tree.Lookup(tag.ID, "second.bin"); ok {
		t.Error("second release's asset present — later duplicate should be dropped")
	}

	listing, _ := tree.List(RootID, 2)
	if len(listing) != 1 {
		t.Errorf("root has %d tags, want 1", len(listing))
	}
}

func TestBuildDuplicateAssetNamesFirstWins(t *testing.T) {
	releases := []github.Release{
		{ID: 1, TagName: "v1.0", Assets: []github.Asset{
			{ID: 11, Name: "app.bin", Size: 10},
			{ID: 12, Name: "app.bin", Size: 20},
		}},
	}
	tree := Build(releases, nil)

	tag, _ := tree.Lookup(RootID, "v1.0")
	listing, _ := tree.List(tag.ID, 2)
	if len(listing) != 1 {
		t.Fatalf("tag has %d assets, want 1", len(listing))
	}

	// The surviving node is the one built first (smaller id than any
	// node built later would have received).
	first, _ := tree.Lookup(tag.ID, "app.bin")
	if first.ID != tag.ID+1 {
		t.Errorf("surviving asset id = %d, want %d (assigned right after its tag)", first.ID, tag.ID+1)
	}
}
