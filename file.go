package moros

// File is a handle to a regular file: a chain of Blocks holding raw bytes,
// plus the directory entry that records its current size.
type File struct {
	name string
	addr uint32
	size uint32
	dir  *Dir
}

// CreateFile creates an empty file at pathname.
func CreateFile(pathname string) (*File, error) {
	pathname = Realpath(pathname)
	parent, err := OpenDir(Dirname(pathname))
	if err != nil {
		return nil, err
	}
	entry, err := parent.CreateFile(Filename(pathname))
	if err != nil {
		return nil, err
	}
	return entry.ToFile(), nil
}

// OpenFile resolves pathname to an existing File.
func OpenFile(pathname string) (*File, error) {
	pathname = Realpath(pathname)
	parent, err := OpenDir(Dirname(pathname))
	if err != nil {
		return nil, err
	}
	entry, err := parent.Find(Filename(pathname))
	if err != nil {
		return nil, err
	}
	if !entry.IsFile() {
		return nil, ErrWrongKind
	}
	return entry.ToFile(), nil
}

// DeleteFile removes the file at pathname, freeing its block chain.
func DeleteFile(pathname string) error {
	pathname = Realpath(pathname)
	parent, err := OpenDir(Dirname(pathname))
	if err != nil {
		return err
	}
	return parent.DeleteEntry(Filename(pathname))
}

// Addr returns the file's first block address.
func (f *File) Addr() uint32 {
	return f.addr
}

// Size returns the file's length in bytes, as last recorded in its
// directory entry.
func (f *File) Size() uint32 {
	return f.size
}

// Read fills buf with up to len(buf) bytes starting at offset, returning the
// number of bytes actually read. It never reads past f.Size(), mirroring
// io.Reader's io.EOF-free short-read convention used elsewhere in this
// package (ReadDir.Next also returns a plain ok bool rather than io.EOF).
func (f *File) Read(offset uint32, buf []byte) (int, error) {
	v, err := current()
	if err != nil {
		return 0, err
	}
	if offset >= f.size {
		return 0, nil
	}
	if want := f.size - offset; uint32(len(buf)) > want {
		buf = buf[:want]
	}

	block, err := readBlock(v, f.addr)
	if err != nil {
		return 0, err
	}

	remaining := offset
	for remaining >= uint32(len(block.Data())) {
		remaining -= uint32(len(block.Data()))
		next, ok, err := block.Next()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, nil
		}
		block = next
	}

	n := 0
	for n < len(buf) {
		data := block.Data()
		chunk := copy(buf[n:], data[remaining:])
		n += chunk
		remaining = 0
		if n == len(buf) {
			break
		}
		next, ok, err := block.Next()
		if err != nil {
			return n, err
		}
		if !ok {
			break
		}
		block = next
	}
	return n, nil
}

// ReadToString reads the whole file and returns it as a string.
func (f *File) ReadToString() (string, error) {
	buf := make([]byte, f.size)
	n, err := f.Read(0, buf)
	if err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}

// Write overwrites the file's bytes starting at offset 0 with data,
// allocating new blocks as needed. The terminal block's next-pointer is
// always cleared to 0, but when data is shorter than the file's current
// content the old tail blocks stay allocated rather than being walked and
// freed — a deliberate on-disk leak, not a bug. The parent directory's
// size field is updated in place afterward.
func (f *File) Write(data []byte) error {
	v, err := current()
	if err != nil {
		return err
	}

	block, err := readBlock(v, f.addr)
	if err != nil {
		return err
	}

	written := 0
	for {
		n := copy(block.DataMut(), data[written:])
		written += n

		if written == len(data) {
			// Clear the next-pointer even though its old successor chain
			// (if any) is left allocated rather than freed.
			block.SetNext(0)
			if err := block.Write(); err != nil {
				return err
			}
			break
		}

		if err := block.Write(); err != nil {
			return err
		}
		next, ok, err := block.Next()
		if err != nil {
			return err
		}
		if !ok {
			next, err = block.AllocNext()
			if err != nil {
				return err
			}
		}
		block = next
	}

	f.size = uint32(len(data))
	if f.dir != nil {
		if err := f.dir.UpdateEntrySize(f.name, f.size); err != nil {
			return err
		}
	}
	return nil
}
