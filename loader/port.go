package loader

import (
	"fmt"

	"github.com/moffa90/go-aiecdo/cdo"
)

// IOPort is the hardware capability the engines drive. Implementations must
// perform each call synchronously and report failures as errors.
type IOPort interface {
	// Write32 writes a 32-bit register
	Write32(addr uint64, value uint32) error

	// MaskWrite32 updates the bits of a register selected by mask
	MaskWrite32(addr uint64, mask, value uint32) error

	// CopyToDevice copies a block of data to device memory
	CopyToDevice(dest uint64, data []byte) error
}

// IOError indicates that an IOPort call failed.
type IOError struct {
	Op   string
	Addr uint64
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s at 0x%X: %v", e.Op, e.Addr, e.Err)
}

// Unwrap returns the port's error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports IOError as cdo.ErrHardwareIO.
func (e *IOError) Is(target error) bool {
	return target == cdo.ErrHardwareIO
}
