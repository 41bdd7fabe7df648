package moros

import "encoding/binary"

// Dir is a handle to a directory: a chain of Blocks holding a packed
// sequence of DirEntry records.
type Dir struct {
	addr uint32
}

// RootDir returns a handle to the root directory without touching the
// device. It works even when nothing is mounted; OpenDir("/") is what fails
// in that case.
func RootDir() *Dir {
	blockCount := uint32(MaxBlocks)
	if v, err := current(); err == nil {
		blockCount = v.blockCount
	}
	return &Dir{addr: DataAddr(blockCount)}
}

// Addr returns the directory's first block address.
func (d *Dir) Addr() uint32 {
	return d.addr
}

// OpenDir resolves pathname to a Dir, walking from the root and descending
// through every non-empty path segment. Fails with ErrNotMounted if no
// volume is mounted, ErrNotFound if any segment is missing, or ErrWrongKind
// if a segment names something other than a directory.
func OpenDir(pathname string) (*Dir, error) {
	pathname = Realpath(pathname)

	if !IsMounted() {
		return nil, ErrNotMounted
	}

	dir := RootDir()
	if pathname == "/" {
		return dir, nil
	}

	for _, name := range splitPath(pathname) {
		entry, err := dir.Find(name)
		if err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			return nil, ErrWrongKind
		}
		dir = entry.ToDir()
	}
	return dir, nil
}

// CreateDir creates a new directory at pathname, failing if the parent
// doesn't exist or the name is already taken.
func CreateDir(pathname string) (*Dir, error) {
	pathname = Realpath(pathname)
	parent, err := OpenDir(Dirname(pathname))
	if err != nil {
		return nil, err
	}
	entry, err := parent.CreateDirEntry(Filename(pathname))
	if err != nil {
		return nil, err
	}
	return entry.ToDir(), nil
}

// DeleteDir removes the directory at pathname from its parent. Like
// DeleteEntry, this only frees the directory's own block chain; see
// Dir.DeleteRecursive for a version that also frees its contents.
func DeleteDir(pathname string) error {
	pathname = Realpath(pathname)
	parent, err := OpenDir(Dirname(pathname))
	if err != nil {
		return err
	}
	return parent.DeleteEntry(Filename(pathname))
}

// splitPath breaks an absolute pathname into its non-empty segments.
func splitPath(pathname string) []string {
	var segs []string
	start := 0
	for i := 0; i <= len(pathname); i++ {
		if i == len(pathname) || pathname[i] == '/' {
			if i > start {
				segs = append(segs, pathname[start:i])
			}
			start = i + 1
		}
	}
	return segs
}

// Find enumerates the directory's entries and returns the first whose name
// equals name. Returns ErrNotFound if absent.
func (d *Dir) Find(name string) (*DirEntry, error) {
	rd, err := d.Read()
	if err != nil {
		return nil, err
	}
	for {
		entry, ok, err := rd.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotFound
		}
		if entry.Name == name {
			return entry, nil
		}
	}
}

// CreateFile creates a new, empty file entry named name in d.
func (d *Dir) CreateFile(name string) (*DirEntry, error) {
	return d.CreateEntry(FileKind, name)
}

// CreateDirEntry creates a new, empty subdirectory entry named name in d.
func (d *Dir) CreateDirEntry(name string) (*DirEntry, error) {
	return d.CreateEntry(DirKind, name)
}

// CreateEntry fails with ErrExists if name is already used, otherwise walks
// to the end of the directory's entry list, appending a fresh block first
// if there isn't room for the new header in the current tail, allocates
// the entry's content block, and writes the entry header and name in
// place.
func (d *Dir) CreateEntry(kind Kind, name string) (*DirEntry, error) {
	if len(name) == 0 || len(name) > maxNameLen {
		return nil, ErrInvalidName
	}

	if _, err := d.Find(name); err == nil {
		return nil, ErrExists
	} else if err != ErrNotFound {
		return nil, err
	}

	v, err := current()
	if err != nil {
		return nil, err
	}

	rd, err := d.Read()
	if err != nil {
		return nil, err
	}
	for {
		_, ok, err := rd.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
	}

	if len(rd.block.Data())-rd.offset < direntryHeaderSize+len(name) {
		next, err := rd.block.AllocNext()
		if err != nil {
			return nil, err
		}
		rd.block = next
		rd.offset = 0
	}

	content, err := allocBlock(v)
	if err != nil {
		return nil, err
	}

	writeEntryHeader(rd.block.DataMut(), rd.offset, kind, content.Addr(), 0, name)
	if err := rd.block.Write(); err != nil {
		return nil, err
	}

	return &DirEntry{dir: d, Kind: kind, Addr: content.Addr(), Size: 0, Name: name}, nil
}

// writeEntryHeader packs one DirEntry record at offset i within data.
func writeEntryHeader(data []byte, i int, kind Kind, addr, size uint32, name string) {
	data[i+0] = byte(kind)
	binary.BigEndian.PutUint32(data[i+1:i+5], addr)
	binary.BigEndian.PutUint32(data[i+5:i+9], size)
	data[i+9] = byte(len(name))
	copy(data[i+10:i+10+len(name)], name)
}

// DeleteEntry removes the entry named name: it zeroes the entry's address
// field in place (turning it into a tombstone) and then walks the entry's
// own content block chain, freeing every block. It does not touch blocks
// owned by a subdirectory's children; see DeleteRecursive for that.
func (d *Dir) DeleteEntry(name string) error {
	v, err := current()
	if err != nil {
		return err
	}

	rd, err := d.Read()
	if err != nil {
		return err
	}
	for {
		entry, ok, err := rd.Next()
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		if entry.Name != name {
			continue
		}

		data := rd.block.DataMut()
		i := rd.entryStart
		data[i+1] = 0
		data[i+2] = 0
		data[i+3] = 0
		data[i+4] = 0
		if err := rd.block.Write(); err != nil {
			return err
		}

		return freeChain(v, entry.Addr)
	}
}

// freeChain walks the block chain starting at addr, freeing every block in
// the volume's bitmap.
func freeChain(v *Volume, addr uint32) error {
	for addr != 0 {
		b, err := readBlock(v, addr)
		if err != nil {
			return err
		}
		if err := v.bitmapFree(addr); err != nil {
			return err
		}
		next, ok, err := b.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		addr = next.Addr()
	}
	return nil
}

// DeleteRecursive removes the entry named name; if it is a directory, every
// file, device, and subdirectory it transitively contains is freed first.
// Non-directory entries behave exactly like DeleteEntry.
func (d *Dir) DeleteRecursive(name string) error {
	entry, err := d.Find(name)
	if err != nil {
		return err
	}

	if entry.IsDir() {
		sub := entry.ToDir()
		names, err := sub.childNames()
		if err != nil {
			return err
		}
		for _, child := range names {
			if err := sub.DeleteRecursive(child); err != nil {
				return err
			}
		}
	}

	return d.DeleteEntry(name)
}

// childNames collects every non-tombstone entry name directly under d.
func (d *Dir) childNames() ([]string, error) {
	rd, err := d.Read()
	if err != nil {
		return nil, err
	}
	var names []string
	for {
		entry, ok, err := rd.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return names, nil
		}
		names = append(names, entry.Name)
	}
}

// UpdateEntrySize overwrites the size field of the entry named name in
// place. Used by File.Write to push size fixups up to the parent directory.
func (d *Dir) UpdateEntrySize(name string, size uint32) error {
	rd, err := d.Read()
	if err != nil {
		return err
	}
	for {
		entry, ok, err := rd.Next()
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		if entry.Name != name {
			continue
		}
		data := rd.block.DataMut()
		i := rd.entryStart
		binary.BigEndian.PutUint32(data[i+5:i+9], size)
		return rd.block.Write()
	}
}

// ReadDir streams DirEntry records across the block boundaries of a
// directory's chain, tolerating mutation of the current block's payload by
// Dir's create/delete/update operations. It owns a cached copy of its
// current block; writes go through that cached block, not a fresh read, so
// in-place tombstone/size edits land correctly.
type ReadDir struct {
	dir        *Dir
	v          *Volume
	block      *Block
	offset     int // byte offset of the next unparsed entry
	entryStart int // byte offset where the most recently yielded entry began
}

// Read returns an iterator over d's entries, starting at its first block.
func (d *Dir) Read() (*ReadDir, error) {
	v, err := current()
	if err != nil {
		return nil, err
	}
	block, err := readBlock(v, d.addr)
	if err != nil {
		return nil, err
	}
	return &ReadDir{dir: d, v: v, block: block}, nil
}

// Next parses and returns the next non-tombstone entry. ok is false once
// the chain is exhausted; err is non-nil only on an I/O failure. Corrupt or
// uninitialized headers are not surfaced as errors — the iterator just
// advances to the next block.
func (rd *ReadDir) Next() (*DirEntry, bool, error) {
	for {
		data := rd.block.Data()

		for {
			i := rd.offset

			// Not enough room left in this block for another header.
			if i > len(data)-direntryHeaderSize {
				break
			}

			kind := Kind(data[i])
			if !kind.valid() {
				// Corrupt/uninitialized tail: treat as end of this block.
				break
			}

			addr := binary.BigEndian.Uint32(data[i+1 : i+5])
			size := binary.BigEndian.Uint32(data[i+5 : i+9])
			n := int(data[i+9])
			if n == 0 || i+direntryHeaderSize+n > len(data) {
				break
			}

			name := string(data[i+10 : i+10+n])
			rd.entryStart = i
			rd.offset = i + direntryHeaderSize + n

			if addr == 0 {
				// Tombstone: skip, keep scanning this block.
				continue
			}

			return &DirEntry{dir: rd.dir, Kind: kind, Addr: addr, Size: size, Name: name}, true, nil
		}

		next, ok, err := rd.block.Next()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		rd.block = next
		rd.offset = 0
	}
}
