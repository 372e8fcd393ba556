//go:build linux

package ioport

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// OpenMMIO maps size bytes of path (typically /dev/mem or a UIO device) at
// file offset base. base must be page aligned.
func OpenMMIO(path string, base uint64, size int) (*MMIO, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmio: size must be positive, got %d", size)
	}
	if page := uint64(unix.Getpagesize()); base%page != 0 {
		return nil, fmt.Errorf("mmio: base 0x%X is not aligned to the %d-byte page size", base, page)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("mmio: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	mem, err := unix.Mmap(int(f.Fd()), int64(base), size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmio: map %s at 0x%X: %w", path, base, err)
	}

	return &MMIO{
		Base: base,
		mem:  mem,
		closer: func() error {
			return unix.Munmap(mem)
		},
	}, nil
}
