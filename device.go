package moros

import (
	"os"
	"sync"

	"github.com/pkg/errors"
)

// BlockDevice is a thin sector-oriented read/write interface over whatever
// physical or virtual medium a Volume is mounted on. Implementations
// transfer exactly BlockSize bytes per call and are not expected to retry or
// cache: MFS has no journaling, so a transport error is surfaced as-is to
// the caller.
type BlockDevice interface {
	// Read fills buf (which must be BlockSize bytes) with the contents of
	// the block at addr.
	Read(addr uint32, buf []byte) error
	// Write persists buf (which must be BlockSize bytes) as the block at
	// addr.
	Write(addr uint32, buf []byte) error
	// Close releases any resources held by the device.
	Close() error
}

// Candidate identifies one device slot to probe at Init time, named after
// the (bus, drive) addressing scheme of the ATA channels MFS historically
// ran on.
type Candidate struct {
	Bus   uint8
	Drive uint8
	Open  func() (BlockDevice, error)
}

// FileDevice is a BlockDevice backed by a regular host file or block
// special file, addressed by block number rather than byte offset.
type FileDevice struct {
	f    *os.File
	path string
}

// OpenFileDevice opens path (which must already exist) as a BlockDevice.
// Use CreateFileDevice to make a new backing file.
func OpenFileDevice(path string) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "opening block device %q", path)
	}
	return &FileDevice{f: f, path: path}, nil
}

// CreateFileDevice creates a new zero-filled backing file of size blocks*
// BlockSize bytes and returns it opened as a BlockDevice.
func CreateFileDevice(path string, blocks uint32) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "creating block device %q", path)
	}
	if err := f.Truncate(int64(blocks) * BlockSize); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "sizing block device %q", path)
	}
	return &FileDevice{f: f, path: path}, nil
}

// Read implements BlockDevice.
func (d *FileDevice) Read(addr uint32, buf []byte) error {
	_, err := d.f.ReadAt(buf, int64(addr)*BlockSize)
	if err != nil {
		return errors.Wrapf(err, "reading block %d from %q", addr, d.path)
	}
	return nil
}

// Write implements BlockDevice.
func (d *FileDevice) Write(addr uint32, buf []byte) error {
	_, err := d.f.WriteAt(buf, int64(addr)*BlockSize)
	if err != nil {
		return errors.Wrapf(err, "writing block %d to %q", addr, d.path)
	}
	return nil
}

// Close implements BlockDevice.
func (d *FileDevice) Close() error {
	return d.f.Close()
}

// Size reports the backing device's capacity in blocks. On a real block
// special file this consults the kernel (see device_linux.go); on a
// regular file it uses the file's length.
func (d *FileDevice) Size() (uint32, error) {
	if n, err := blockDeviceSizeBlocks(d.f); err == nil {
		return n, nil
	}
	fi, err := d.f.Stat()
	if err != nil {
		return 0, errors.Wrapf(err, "statting block device %q", d.path)
	}
	return uint32(fi.Size() / BlockSize), nil
}

// MemDevice is an in-memory BlockDevice, used by tests that don't want to
// touch the host filesystem.
type MemDevice struct {
	blocks [][BlockSize]byte
}

// NewMemDevice returns a zeroed in-memory device with room for n blocks.
func NewMemDevice(n uint32) *MemDevice {
	return &MemDevice{blocks: make([][BlockSize]byte, n)}
}

// Read implements BlockDevice.
func (d *MemDevice) Read(addr uint32, buf []byte) error {
	if int(addr) >= len(d.blocks) {
		return errors.Errorf("block %d out of range (%d blocks)", addr, len(d.blocks))
	}
	copy(buf, d.blocks[addr][:])
	return nil
}

// Write implements BlockDevice.
func (d *MemDevice) Write(addr uint32, buf []byte) error {
	if int(addr) >= len(d.blocks) {
		return errors.Errorf("block %d out of range (%d blocks)", addr, len(d.blocks))
	}
	copy(d.blocks[addr][:], buf)
	return nil
}

// Close implements BlockDevice.
func (d *MemDevice) Close() error {
	return nil
}

// Volume is the process-wide mount state: the currently active BlockDevice
// plus the parameters (block count) the bitmap and resolver operate over.
// This is a narrow, mutex-guarded module-scope object; individual Dir/File
// handles reference it rather than holding a device of their own.
type Volume struct {
	device     BlockDevice
	blockCount uint32
	clock      func() int64
}

var (
	mountMu sync.Mutex
	mounted *Volume
)

// IsMounted reports whether a volume is currently mounted.
func IsMounted() bool {
	mountMu.Lock()
	defer mountMu.Unlock()
	return mounted != nil
}

// current returns the active Volume, or ErrNotMounted.
func current() (*Volume, error) {
	mountMu.Lock()
	defer mountMu.Unlock()
	if mounted == nil {
		return nil, ErrNotMounted
	}
	return mounted, nil
}

// setMounted installs v as the active volume, replacing any previous mount.
// The previous device, if any, is closed.
func setMounted(v *Volume) {
	mountMu.Lock()
	prev := mounted
	mounted = v
	mountMu.Unlock()
	if prev != nil && prev.device != nil {
		prev.device.Close()
	}
}
