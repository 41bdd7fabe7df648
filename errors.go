package moros

import "errors"

// Package-specific error variables that can be used with errors.Is() for error handling.
var (
	// ErrNotMounted is returned when an operation needs a mounted volume but none is mounted.
	ErrNotMounted = errors.New("moros: no volume mounted")

	// ErrNotFound is returned when pathname resolution fails to find a segment.
	ErrNotFound = errors.New("moros: file or directory not found")

	// ErrWrongKind is returned when a path segment resolves to the wrong kind of entry.
	ErrWrongKind = errors.New("moros: not the expected kind of entry")

	// ErrExists is returned by CreateEntry when the name is already in use.
	ErrExists = errors.New("moros: name already exists")

	// ErrOutOfSpace is returned when the block bitmap has no free address left.
	ErrOutOfSpace = errors.New("moros: disk full")

	// ErrCorrupt is returned when a device node's descriptor byte names no
	// known DeviceVariant. Invalid directory entry headers are not reported
	// with it: ReadDir.Next skips to the next block instead.
	ErrCorrupt = errors.New("moros: corrupt directory entry")

	// ErrInvalidName is returned when a name is empty or longer than 255 bytes.
	ErrInvalidName = errors.New("moros: invalid name")

	// ErrNoDevice is returned when probing finds no MFS superblock on any candidate drive.
	ErrNoDevice = errors.New("moros: no MFS volume found")
)
