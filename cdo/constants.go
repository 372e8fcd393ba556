package cdo

import "fmt"

// Header layout constants.
const (
	// WordSize is the size of one CDO word in bytes
	WordSize = 4

	// HeaderWords is the number of words in the CDO header
	HeaderWords = 5

	// HeaderSize is the size of the CDO header in bytes
	HeaderSize = HeaderWords * WordSize

	// HeaderWordCount is the value of the first header word
	HeaderWordCount = HeaderWords - 1

	// Magic identifies a CDO ("CDO" packed little-endian)
	Magic = 0x004F4443

	// DefaultVersion is the CDO version written by Builder
	DefaultVersion = 0x00000200
)

// Command framing constants.
const (
	// LongLengthSentinel in the length field means the payload length is in word1
	LongLengthSentinel = 0xFF

	// MaxShortPayloadWords is the largest payload encoded in the short form
	MaxShortPayloadWords = LongLengthSentinel - 1

	opcodeMask   = 0xFF
	lengthShift  = 16
	lengthMask   = 0xFF
	dmaAddrWords = 2
)

// Command zone constants.
const (
	// GroupHeaderSize is the size of a command group header ({opcode, count})
	GroupHeaderSize = 8

	// MaxBodySize is the largest fixed command body in the command zone
	MaxBodySize = 16

	// MaxGroupEntries is the largest count carried by one group header
	MaxGroupEntries = 0xFFFF

	// MaxDmaWords is the largest DMA write the command zone can describe
	MaxDmaWords = 0xFFFF

	// ZeroRunFlag marks an all-zero DMA payload in the stored length field
	ZeroRunFlag = 1 << 16

	dmaLengthMask = 0xFFFF
)

// Opcode identifies a CDO command (bits 0-7 of the first command word).
type Opcode uint8

// Supported opcodes.
const (
	// OpEnd terminates the command stream
	OpEnd Opcode = 0x01

	// OpMaskWrite is a read-modify-write of a 32-bit addressed register
	OpMaskWrite Opcode = 0x02

	// OpWrite writes a 32-bit addressed register
	OpWrite Opcode = 0x03

	// OpDmaWrite copies a block of words to a 64-bit destination
	OpDmaWrite Opcode = 0x05

	// OpMaskWrite64 is a read-modify-write of a 64-bit addressed register
	OpMaskWrite64 Opcode = 0x07

	// OpWrite64 writes a 64-bit addressed register
	OpWrite64 Opcode = 0x08

	// OpNop is padding; it is skipped
	OpNop Opcode = 0x11
)

// String returns the command name.
func (op Opcode) String() string {
	switch op {
	case OpEnd:
		return "end"
	case OpMaskWrite:
		return "mask_write"
	case OpWrite:
		return "write"
	case OpDmaWrite:
		return "dma_write"
	case OpMaskWrite64:
		return "mask_write64"
	case OpWrite64:
		return "write64"
	case OpNop:
		return "nop"
	default:
		return fmt.Sprintf("opcode(0x%02X)", uint8(op))
	}
}

// Supported reports whether op is one of the known command kinds (Nop included).
func (op Opcode) Supported() bool {
	switch op {
	case OpEnd, OpMaskWrite, OpWrite, OpDmaWrite, OpMaskWrite64, OpWrite64, OpNop:
		return true
	}
	return false
}

// payloadWords returns the fixed payload length of op in an original stream.
// DmaWrite, Nop and End have no fixed length.
func payloadWords(op Opcode) (uint32, bool) {
	switch op {
	case OpMaskWrite:
		return 3, true
	case OpWrite:
		return 2, true
	case OpMaskWrite64:
		return 4, true
	case OpWrite64:
		return 3, true
	}
	return 0, false
}

// RecordBodySize returns the size in bytes of one command-zone body for op.
// Returns false for opcodes that never appear in a command zone.
func RecordBodySize(op uint32) (int, bool) {
	if op > opcodeMask {
		return 0, false
	}
	switch Opcode(op) {
	case OpEnd:
		return 0, true
	case OpWrite:
		return 8, true
	case OpMaskWrite, OpWrite64:
		return 12, true
	case OpMaskWrite64, OpDmaWrite:
		return 16, true
	}
	return 0, false
}
