package ioport

import (
	"encoding/binary"
	"sort"
)

// Memory is a Port backed by a sparse byte-addressed simulation of a tile
// address space. Unwritten bytes read as zero. Registers are little-endian.
type Memory struct {
	bytes map[uint64]byte
}

// NewMemory returns an empty (all-zero) Memory.
func NewMemory() *Memory {
	return &Memory{bytes: make(map[uint64]byte)}
}

// Read32 returns the word at addr.
func (m *Memory) Read32(addr uint64) uint32 {
	var b [4]byte
	for i := range b {
		b[i] = m.bytes[addr+uint64(i)]
	}
	return binary.LittleEndian.Uint32(b[:])
}

// Read returns n bytes starting at addr.
func (m *Memory) Read(addr uint64, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = m.bytes[addr+uint64(i)]
	}
	return out
}

// Write32 implements Port.
func (m *Memory) Write32(addr uint64, value uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], value)
	m.store(addr, b[:])
	return nil
}

// MaskWrite32 implements Port: bits set in mask take their value from value,
// the rest keep their current contents.
func (m *Memory) MaskWrite32(addr uint64, mask, value uint32) error {
	cur := m.Read32(addr)
	return m.Write32(addr, (cur&^mask)|(value&mask))
}

// CopyToDevice implements Port.
func (m *Memory) CopyToDevice(dest uint64, data []byte) error {
	m.store(dest, data)
	return nil
}

func (m *Memory) store(addr uint64, data []byte) {
	for i, b := range data {
		a := addr + uint64(i)
		if b == 0 {
			delete(m.bytes, a)
			continue
		}
		m.bytes[a] = b
	}
}

// Equal reports whether m and other hold identical contents.
func (m *Memory) Equal(other *Memory) bool {
	if len(m.bytes) != len(other.bytes) {
		return false
	}
	for a, b := range m.bytes {
		if other.bytes[a] != b {
			return false
		}
	}
	return true
}

// Addresses returns the sorted addresses holding non-zero bytes.
func (m *Memory) Addresses() []uint64 {
	out := make([]uint64, 0, len(m.bytes))
	for a := range m.bytes {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
