//go:build !linux

package moros

import (
	"errors"
	"os"
)

// blockDeviceSizeBlocks has no portable equivalent of Linux's BLKGETSIZE64
// outside Linux; callers fall back to Stat-based sizing.
func blockDeviceSizeBlocks(f *os.File) (uint32, error) {
	return 0, errors.New("moros: block device size ioctl not supported on this platform")
}
