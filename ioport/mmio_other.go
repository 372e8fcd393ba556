//go:build !linux

package ioport

import "fmt"

// OpenMMIO is only supported on Linux.
func OpenMMIO(path string, base uint64, size int) (*MMIO, error) {
	return nil, fmt.Errorf("mmio: not supported on this platform")
}
