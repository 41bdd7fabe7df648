package moros

import (
	"bytes"
	"encoding/binary"
	"log"

	"github.com/pkg/errors"
)

// Magic is the 8-byte signature stored at the start of the superblock that
// identifies an MFS volume on disk.
const Magic = "MOROS FS"

// probe reads the block at SuperblockAddr from dev and reports whether it
// carries the MFS magic.
func probe(dev BlockDevice) (bool, error) {
	buf := make([]byte, BlockSize)
	if err := dev.Read(SuperblockAddr, buf); err != nil {
		return false, err
	}
	return bytes.Equal(buf[:len(Magic)], []byte(Magic)), nil
}

// Init probes every candidate drive in order and mounts the first MFS
// volume it finds. The first match wins; later candidates are never
// opened once a match is mounted. Returns ErrNoDevice if none of the
// candidates carry the magic.
func Init(candidates []Candidate, opts ...Option) error {
	cfg := newConfig(opts)

	for _, c := range candidates {
		dev, err := c.Open()
		if err != nil {
			log.Printf("moros: candidate %d:%d unavailable: %s", c.Bus, c.Drive, err)
			continue
		}

		ok, err := probe(dev)
		if err != nil {
			log.Printf("moros: candidate %d:%d probe failed: %s", c.Bus, c.Drive, err)
			dev.Close()
			continue
		}
		if !ok {
			dev.Close()
			continue
		}

		log.Printf("moros: MFS superblock found on %d:%d", c.Bus, c.Drive)
		setMounted(&Volume{device: dev, blockCount: cfg.blockCount, clock: cfg.clock})
		return nil
	}

	return ErrNoDevice
}

// Mount installs dev as the active device with no verification; the caller
// is expected to have already probed it.
func Mount(dev BlockDevice, opts ...Option) {
	cfg := newConfig(opts)
	setMounted(&Volume{device: dev, blockCount: cfg.blockCount, clock: cfg.clock})
}

// Format writes a fresh MFS superblock to dev, mounts it, and marks the
// root directory's block allocated. Any other bits in the bitmap start
// clear; bitmap blocks are assumed to read as zero on a blank device.
func Format(dev BlockDevice, opts ...Option) error {
	cfg := newConfig(opts)

	buf := make([]byte, BlockSize)
	copy(buf, []byte(Magic))
	if cfg.clock != nil {
		binary.BigEndian.PutUint32(buf[len(Magic):len(Magic)+4], uint32(cfg.clock()))
	}

	if err := dev.Write(SuperblockAddr, buf); err != nil {
		return errors.Wrap(err, "writing superblock")
	}

	v := &Volume{device: dev, blockCount: cfg.blockCount, clock: cfg.clock}
	setMounted(v)

	root := DataAddr(v.blockCount)
	if err := v.bitmapAlloc(root); err != nil {
		return errors.Wrap(err, "allocating root directory block")
	}

	return nil
}

// FormatTime returns the Unix timestamp stamped in the currently mounted
// superblock by Format's WithClock option, or 0 if none was stamped.
func FormatTime() (int64, error) {
	v, err := current()
	if err != nil {
		return 0, err
	}
	buf := make([]byte, BlockSize)
	if err := v.device.Read(SuperblockAddr, buf); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint32(buf[len(Magic) : len(Magic)+4])), nil
}
