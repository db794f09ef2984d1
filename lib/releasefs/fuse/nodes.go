// Copyright 2026 The Releasefs Authors
// SPDX-License-Identifier: Apache-2.0

package fuse

import (
	"context"
	"syscall"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/releasefs/releasefs/lib/releasefs"
)

// rootNode is the filesystem root: one subdirectory per release tag.
type rootNode struct {
	gofuse.Inode
	options *Options
}

var _ gofuse.InodeEmbedder = (*rootNode)(nil)
var _ gofuse.NodeLookuper = (*rootNode)(nil)
var _ gofuse.NodeReaddirer = (*rootNode)(nil)
var _ gofuse.NodeGetattrer = (*rootNode)(nil)

func (r *rootNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	tree := r.options.Filesystem.Tree()
	node, ok := tree.Lookup(releasefs.RootID, name)
	if !ok {
		return nil, syscall.ENOENT
	}

	child := r.NewPersistentInode(ctx, &tagNode{options: r.options, id: node.ID},
		gofuse.StableAttr{Mode: syscall.S_IFDIR, Ino: node.ID})
	out.Mode = syscall.S_IFDIR | 0o555
	out.Nlink = 2
	return child, 0
}

func (r *rootNode) Readdir(ctx context.Context) (gofuse.DirStream, syscall.Errno) {
	return listDirStream(r.options.Filesystem.Tree(), releasefs.RootID)
}

func (r *rootNode) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = syscall.S_IFDIR | 0o555
	out.Nlink = 2
	return 0
}

// tagNode is one release-tag directory. It resolves queries through
// the current tree snapshot by identifier, so a node that survived a
// catalog refresh answers from whatever the snapshot now holds for
// that identifier — or ENOENT if the identifier is gone.
type tagNode struct {
	gofuse.Inode
	options *Options
	id      uint64
}

var _ gofuse.InodeEmbedder = (*tagNode)(nil)
var _ gofuse.NodeLookuper = (*tagNode)(nil)
var _ gofuse.NodeReaddirer = (*tagNode)(nil)
var _ gofuse.NodeGetattrer = (*tagNode)(nil)

func (t *tagNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	tree := t.options.Filesystem.Tree()
	node, ok := tree.Lookup(t.id, name)
	if !ok {
		return nil, syscall.ENOENT
	}

	child := t.NewPersistentInode(ctx, &assetNode{options: t.options, id: node.ID},
		gofuse.StableAttr{Mode: syscall.S_IFREG, Ino: node.ID})
	out.Mode = syscall.S_IFREG | 0o444
	out.Size = releasefs.AssetSize
	out.Nlink = 1
	return child, 0
}

func (t *tagNode) Readdir(ctx context.Context) (gofuse.DirStream, syscall.Errno) {
	return listDirStream(t.options.Filesystem.Tree(), t.id)
}

func (t *tagNode) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	if _, ok := t.options.Filesystem.Tree().Attr(t.id); !ok {
		return syscall.ENOENT
	}
	out.Mode = syscall.S_IFDIR | 0o555
	out.Nlink = 2
	return 0
}

// assetNode is one asset as a regular file serving placeholder
// content.
type assetNode struct {
	gofuse.Inode
	options *Options
	id      uint64
}

var _ gofuse.InodeEmbedder = (*assetNode)(nil)
var _ gofuse.NodeGetattrer = (*assetNode)(nil)
var _ gofuse.NodeOpener = (*assetNode)(nil)
var _ gofuse.NodeReader = (*assetNode)(nil)

func (a *assetNode) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	attr, ok := a.options.Filesystem.Tree().Attr(a.id)
	if !ok {
		return syscall.ENOENT
	}
	out.Mode = syscall.S_IFREG | 0o444
	out.Size = attr.Size
	out.Nlink = attr.Nlink
	out.Blocks = (out.Size + 511) / 512
	return 0
}

func (a *assetNode) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}
	// Placeholder content is immutable for one identifier, so the
	// kernel page cache is always valid.
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (a *assetNode) Read(ctx context.Context, f gofuse.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	content, ok := a.options.Filesystem.Tree().ReadAt(a.id, off)
	if !ok {
		return nil, syscall.ENOENT
	}
	if len(content) > len(dest) {
		content = content[:len(dest)]
	}
	return fuse.ReadResultData(content), 0
}

// listDirStream enumerates a directory's children from the tree,
// skipping the `.`/`..` entries (offset 2) — go-fuse synthesizes
// those itself.
func listDirStream(tree *releasefs.Tree, id uint64) (gofuse.DirStream, syscall.Errno) {
	children, ok := tree.List(id, 2)
	if !ok {
		return nil, syscall.ENOENT
	}

	entries := make([]fuse.DirEntry, 0, len(children))
	for _, child := range children {
		mode := uint32(syscall.S_IFREG)
		if child.Kind == releasefs.Directory {
			mode = syscall.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{
			Name: child.Name,
			Mode: mode,
			Ino:  child.ID,
		})
	}

	return &sliceDirStream{entries: entries}, 0
}

// sliceDirStream implements fs.DirStream from a slice of entries.
type sliceDirStream struct {
	entries []fuse.DirEntry
	index   int
}

func (s *sliceDirStream) HasNext() bool {
	return s.index < len(s.entries)
}

func (s *sliceDirStream) Next() (fuse.DirEntry, syscall.Errno) {
	if s.index >= len(s.entries) {
		return fuse.DirEntry{}, syscall.EINVAL
	}
	entry := s.entries[s.index]
	s.index++
	return entry, 0
}

func (s *sliceDirStream) Close() {}
