package moros

import "encoding/binary"

// BlockSize is the fixed size, in bytes, of every block transferred to and
// from a BlockDevice.
const BlockSize = 512

// blockHeaderSize is the width of the next-block pointer at the front of
// every block's buffer.
const blockHeaderSize = 4

// BitmapDataBytes is the number of payload bytes usable for bitmap data in a
// single bitmap block. Bitmap blocks use the same layout as every other
// block (a 4-byte header followed by payload), so only BlockSize-4 bytes are
// actually available for bits.
const BitmapDataBytes = BlockSize - blockHeaderSize

// Block is the 512-byte I/O and allocation unit. Bytes 0..4 hold a
// big-endian next-block pointer (0 meaning "no successor"); bytes 4..512 are
// the block's payload, addressable through Data/DataMut.
type Block struct {
	dev  *Volume
	addr uint32
	buf  [BlockSize]byte
}

// newBlock returns a zeroed, not-yet-persisted Block at addr.
func newBlock(v *Volume, addr uint32) *Block {
	return &Block{dev: v, addr: addr}
}

// readBlock loads the block at addr from the volume's device.
func readBlock(v *Volume, addr uint32) (*Block, error) {
	b := &Block{dev: v, addr: addr}
	if err := v.device.Read(addr, b.buf[:]); err != nil {
		return nil, err
	}
	return b, nil
}

// allocBlock asks the volume's bitmap for a free address, marks it
// allocated, zeroes and persists the new block, and returns it.
func allocBlock(v *Volume) (*Block, error) {
	addr, ok, err := v.nextFreeAddr()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOutOfSpace
	}

	if err := v.bitmapAlloc(addr); err != nil {
		return nil, err
	}

	b := newBlock(v, addr)
	if err := b.Write(); err != nil {
		return nil, err
	}
	return b, nil
}

// Addr returns the block's address.
func (b *Block) Addr() uint32 {
	return b.addr
}

// Data returns the block's payload slice (BlockSize-4 bytes).
func (b *Block) Data() []byte {
	return b.buf[blockHeaderSize:]
}

// DataMut returns a mutable view of the block's payload slice.
func (b *Block) DataMut() []byte {
	return b.buf[blockHeaderSize:]
}

// nextAddr returns the raw successor address (0 meaning none).
func (b *Block) nextAddr() uint32 {
	return binary.BigEndian.Uint32(b.buf[0:blockHeaderSize])
}

// SetNext installs addr as this block's successor pointer without touching
// the device; call Write to persist it.
func (b *Block) SetNext(addr uint32) {
	binary.BigEndian.PutUint32(b.buf[0:blockHeaderSize], addr)
}

// Next reads and returns the successor block, or (nil, false) if there is
// none.
func (b *Block) Next() (*Block, bool, error) {
	addr := b.nextAddr()
	if addr == 0 {
		return nil, false, nil
	}
	next, err := readBlock(b.dev, addr)
	if err != nil {
		return nil, false, err
	}
	return next, true, nil
}

// AllocNext allocates a new block, links it as this block's successor, and
// persists this block. The new block is returned unpersisted-beyond-its-own
// allocation write.
func (b *Block) AllocNext() (*Block, error) {
	next, err := allocBlock(b.dev)
	if err != nil {
		return nil, err
	}
	b.SetNext(next.addr)
	if err := b.Write(); err != nil {
		return nil, err
	}
	return next, nil
}

// Write persists the block's current buffer to the device.
func (b *Block) Write() error {
	return b.dev.device.Write(b.addr, b.buf[:])
}
