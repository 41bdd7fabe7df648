//go:build fuse

package moros

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// fuseNode is a read-only go-fuse/v2 bridge over a mounted MFS volume,
// built on the higher-level fs.Inode API. MFS has no inode table to walk,
// so Lookup/Readdir go straight through Dir.Find and Dir.Read instead of
// an inodeRef index.
type fuseNode struct {
	fs.Inode
	entry *DirEntry // nil for the root
}

var (
	_ fs.NodeLookuper  = (*fuseNode)(nil)
	_ fs.NodeReaddirer = (*fuseNode)(nil)
	_ fs.NodeOpener    = (*fuseNode)(nil)
	_ fs.NodeReader    = (*fuseNode)(nil)
	_ fs.NodeGetattrer = (*fuseNode)(nil)
)

// Serve mounts the MFS root directory at mountpoint as a read-only FUSE
// filesystem and blocks until it is unmounted. The caller is responsible
// for having already called Init/Mount/Format.
func Serve(mountpoint string) error {
	root := &fuseNode{}
	server, err := fs.Mount(mountpoint, root, &fs.Options{
		MountOptions: fuse.MountOptions{
			Name:     "moros",
			FsName:   "mfs",
			ReadOnly: true,
		},
	})
	if err != nil {
		return err
	}
	server.Wait()
	return nil
}

func (n *fuseNode) dir() (*Dir, error) {
	if n.entry == nil {
		return RootDir(), nil
	}
	return n.entry.ToDir(), nil
}

func (n *fuseNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	d, err := n.dir()
	if err != nil {
		return nil, syscall.EIO
	}
	entry, err := d.Find(name)
	if err != nil {
		return nil, syscall.ENOENT
	}

	mode := uint32(fuse.S_IFREG)
	if entry.IsDir() {
		mode = fuse.S_IFDIR
	}
	out.Mode = mode | 0o444
	out.Size = uint64(entry.Size)

	child := &fuseNode{entry: entry}
	return n.NewInode(ctx, child, fs.StableAttr{Mode: mode}), 0
}

func (n *fuseNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	d, err := n.dir()
	if err != nil {
		return nil, syscall.EIO
	}
	rd, err := d.Read()
	if err != nil {
		return nil, syscall.EIO
	}

	var entries []fuse.DirEntry
	for {
		entry, ok, err := rd.Next()
		if err != nil {
			return nil, syscall.EIO
		}
		if !ok {
			break
		}
		mode := uint32(fuse.S_IFREG)
		if entry.IsDir() {
			mode = fuse.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{Name: entry.Name, Mode: mode})
	}
	return fs.NewListDirStream(entries), 0
}

func (n *fuseNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if n.entry == nil || !n.entry.IsFile() {
		return nil, 0, syscall.EISDIR
	}
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (n *fuseNode) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	if n.entry == nil || !n.entry.IsFile() {
		return nil, syscall.EISDIR
	}
	file := n.entry.ToFile()
	count, err := file.Read(uint32(off), dest)
	if err != nil {
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(dest[:count]), 0
}

func (n *fuseNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	mode := uint32(fuse.S_IFREG)
	var size uint64
	if n.entry == nil {
		mode = fuse.S_IFDIR
	} else {
		size = uint64(n.entry.Size)
		if n.entry.IsDir() {
			mode = fuse.S_IFDIR
		}
	}
	out.Mode = mode | 0o444
	out.Size = size
	return 0
}
