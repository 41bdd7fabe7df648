//go:build linux

package moros

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// blockDeviceSizeBlocks asks the kernel for the size of a real block special
// file via the BLKGETSIZE64 ioctl. It fails (harmlessly, the caller falls
// back to Stat) for regular files, which don't support the ioctl.
func blockDeviceSizeBlocks(f *os.File) (uint32, error) {
	var size uint64
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&size)))
	if errno != 0 {
		return 0, errno
	}
	return uint32(size / BlockSize), nil
}
