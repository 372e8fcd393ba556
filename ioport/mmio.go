package ioport

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// MMIO is a Port that writes through a memory-mapped register aperture
// starting at physical address Base. Open one with OpenMMIO.
//
// Register accesses are single aligned 32-bit loads and stores.
type MMIO struct {
	Base uint64

	mem    []byte
	closer func() error
}

func (m *MMIO) offset(addr uint64, n int) (uint64, error) {
	if m.mem == nil {
		return 0, fmt.Errorf("mmio: aperture is closed")
	}
	size := uint64(len(m.mem))
	if addr < m.Base || addr-m.Base > size || uint64(n) > size-(addr-m.Base) {
		return 0, fmt.Errorf("mmio: access [0x%X, +%d) outside aperture [0x%X, +%d)", addr, n, m.Base, len(m.mem))
	}
	return addr - m.Base, nil
}

func (m *MMIO) word(addr uint64) (*uint32, error) {
	if addr%4 != 0 {
		return nil, fmt.Errorf("mmio: unaligned register address 0x%X", addr)
	}
	off, err := m.offset(addr, 4)
	if err != nil {
		return nil, err
	}
	return (*uint32)(unsafe.Pointer(&m.mem[off])), nil
}

// Read32 loads the register at addr.
func (m *MMIO) Read32(addr uint64) (uint32, error) {
	p, err := m.word(addr)
	if err != nil {
		return 0, err
	}
	return atomic.LoadUint32(p), nil
}

// Write32 implements Port.
func (m *MMIO) Write32(addr uint64, value uint32) error {
	p, err := m.word(addr)
	if err != nil {
		return err
	}
	atomic.StoreUint32(p, value)
	return nil
}

// MaskWrite32 implements Port with a read-modify-write of the register.
func (m *MMIO) MaskWrite32(addr uint64, mask, value uint32) error {
	p, err := m.word(addr)
	if err != nil {
		return err
	}
	cur := atomic.LoadUint32(p)
	atomic.StoreUint32(p, (cur&^mask)|(value&mask))
	return nil
}

// CopyToDevice implements Port.
func (m *MMIO) CopyToDevice(dest uint64, data []byte) error {
	off, err := m.offset(dest, len(data))
	if err != nil {
		return err
	}
	copy(m.mem[off:], data)
	return nil
}

// Close unmaps the aperture.
func (m *MMIO) Close() error {
	if m.mem == nil {
		return nil
	}
	m.mem = nil
	return m.closer()
}
