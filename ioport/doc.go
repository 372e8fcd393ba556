// Package ioport provides implementations of the hardware I/O capability
// consumed by the loaders:
//
//   - Recorder captures every call for inspection and replay (tests, dry runs)
//   - Memory simulates a sparse tile address space
//   - MMIO writes through a memory-mapped register aperture
//
// All three satisfy loader.IOPort:
//
//	Write32(addr uint64, value uint32) error
//	MaskWrite32(addr uint64, mask, value uint32) error
//	CopyToDevice(dest uint64, data []byte) error
package ioport

// Port is the hardware I/O capability. It mirrors loader.IOPort so this
// package does not depend on the loader.
type Port interface {
	Write32(addr uint64, value uint32) error
	MaskWrite32(addr uint64, mask, value uint32) error
	CopyToDevice(dest uint64, data []byte) error
}
