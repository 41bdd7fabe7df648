package moros

import "crypto/rand"

// DeviceVariant selects which synthetic device a Device entry behaves as.
// This is a small, host-safe set: there is no interactive console or
// hardware RNG in this environment, so the random variant draws from
// crypto/rand instead.
type DeviceVariant uint8

const (
	// NullDevice reads return nothing; writes are silently discarded.
	NullDevice DeviceVariant = 0
	// ZeroDevice reads return zero bytes; writes are silently discarded.
	ZeroDevice DeviceVariant = 1
	// RandomDevice reads return bytes drawn from crypto/rand; writes are
	// silently discarded.
	RandomDevice DeviceVariant = 2
)

func (variant DeviceVariant) valid() bool {
	switch variant {
	case NullDevice, ZeroDevice, RandomDevice:
		return true
	default:
		return false
	}
}

// Device is a handle to a device node entry. Unlike File, a Device carries
// no persisted size and is not chained beyond its single descriptor block.
type Device struct {
	addr    uint32
	variant DeviceVariant
}

// CreateDevice creates a new device node named name in d, backed by
// variant.
func (d *Dir) CreateDevice(name string, variant DeviceVariant) (*DirEntry, error) {
	if !variant.valid() {
		return nil, ErrInvalidName
	}

	entry, err := d.CreateEntry(DeviceKind, name)
	if err != nil {
		return nil, err
	}

	v, err := current()
	if err != nil {
		return nil, err
	}
	b, err := readBlock(v, entry.Addr)
	if err != nil {
		return nil, err
	}
	b.DataMut()[0] = byte(variant)
	if err := b.Write(); err != nil {
		return nil, err
	}

	return entry, nil
}

// OpenDevice resolves pathname to an existing Device node.
func OpenDevice(pathname string) (*Device, error) {
	pathname = Realpath(pathname)
	parent, err := OpenDir(Dirname(pathname))
	if err != nil {
		return nil, err
	}
	entry, err := parent.Find(Filename(pathname))
	if err != nil {
		return nil, err
	}
	if !entry.IsDevice() {
		return nil, ErrWrongKind
	}
	return entry.ToDevice()
}

// openDeviceEntry materializes a Device handle from a DirEntry known to be
// DeviceKind, reading its descriptor byte.
func openDeviceEntry(e *DirEntry) (*Device, error) {
	v, err := current()
	if err != nil {
		return nil, err
	}
	b, err := readBlock(v, e.Addr)
	if err != nil {
		return nil, err
	}
	variant := DeviceVariant(b.Data()[0])
	if !variant.valid() {
		return nil, ErrCorrupt
	}
	return &Device{addr: e.Addr, variant: variant}, nil
}

// Addr returns the device entry's descriptor block address.
func (dv *Device) Addr() uint32 {
	return dv.addr
}

// Read fills buf according to the device's variant.
func (dv *Device) Read(buf []byte) (int, error) {
	switch dv.variant {
	case NullDevice:
		return 0, nil
	case ZeroDevice:
		for i := range buf {
			buf[i] = 0
		}
		return len(buf), nil
	case RandomDevice:
		return rand.Read(buf)
	default:
		return 0, ErrCorrupt
	}
}

// Write discards buf and reports its full length consumed, matching every
// variant's write-is-a-no-op behavior.
func (dv *Device) Write(buf []byte) (int, error) {
	return len(buf), nil
}
