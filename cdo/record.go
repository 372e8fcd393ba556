package cdo

import (
	"encoding/binary"
	"fmt"
)

// AppendGroupHeader appends a command group header to a command zone.
//
// Header structure:
//
//	[OPCODE(4)][COUNT(4)]
func AppendGroupHeader(dst []byte, op Opcode, count uint32) []byte {
	return AppendWords(dst, uint32(op), count)
}

// PutGroupCount overwrites the count of the group header at offset in zone.
func PutGroupCount(zone []byte, offset int, count uint32) {
	binary.LittleEndian.PutUint32(zone[offset+WordSize:], count)
}

// AppendRecord appends the command-zone body of cmd to dst.
//
// Body structures:
//
//	mask_write:   [ADDR][MASK][VALUE]
//	write:        [ADDR][VALUE]
//	mask_write64: [ADDR_HI][ADDR_LO][MASK][VALUE]
//	write64:      [ADDR_HI][ADDR_LO][VALUE]
//	dma_write:    [DEST_LO][DEST_HI][SOURCE_REF][LENGTH_WORDS|FLAGS]
//	end:          (empty)
func AppendRecord(dst []byte, cmd Command) []byte {
	hi, lo := uint32(cmd.Addr>>32), uint32(cmd.Addr)
	switch cmd.Op {
	case OpMaskWrite:
		return AppendWords(dst, lo, cmd.Mask, cmd.Value)
	case OpWrite:
		return AppendWords(dst, lo, cmd.Value)
	case OpMaskWrite64:
		return AppendWords(dst, hi, lo, cmd.Mask, cmd.Value)
	case OpWrite64:
		return AppendWords(dst, hi, lo, cmd.Value)
	case OpDmaWrite:
		return AppendWords(dst, lo, hi, cmd.SourceRef, dmaLengthField(cmd.LengthWords, cmd.ZeroRun))
	}
	return dst
}

// PutDmaRecord rewrites the source reference and length field of a dma_write body in place.
func PutDmaRecord(body []byte, sourceRef, lengthWords uint32, zeroRun bool) {
	putWord(body, 2, sourceRef)
	putWord(body, 3, dmaLengthField(lengthWords, zeroRun))
}

func dmaLengthField(lengthWords uint32, zeroRun bool) uint32 {
	field := lengthWords & dmaLengthMask
	if zeroRun {
		field |= ZeroRunFlag
	}
	return field
}

// DecodeRecord decodes one command-zone body of kind op.
func DecodeRecord(op Opcode, body []byte) (Command, error) {
	size, ok := RecordBodySize(uint32(op))
	if !ok {
		return Command{}, ErrUnsupportedCommand
	}
	if len(body) < size {
		return Command{}, fmt.Errorf("%w: %s body is %d bytes, need %d", ErrTruncatedCommand, op, len(body), size)
	}

	w := func(i int) uint32 {
		return binary.LittleEndian.Uint32(body[i*WordSize:])
	}

	cmd := Command{Op: op}
	switch op {
	case OpMaskWrite:
		cmd.Addr, cmd.Mask, cmd.Value = uint64(w(0)), w(1), w(2)
	case OpWrite:
		cmd.Addr, cmd.Value = uint64(w(0)), w(1)
	case OpMaskWrite64:
		cmd.Addr, cmd.Mask, cmd.Value = addr64(w(0), w(1)), w(2), w(3)
	case OpWrite64:
		cmd.Addr, cmd.Value = addr64(w(0), w(1)), w(2)
	case OpDmaWrite:
		field := w(3)
		if field&^(dmaLengthMask|ZeroRunFlag) != 0 {
			return cmd, fmt.Errorf("%w: dma_write length field 0x%08X has reserved bits set", ErrMalformedCommand, field)
		}
		cmd.Addr = addr64(w(1), w(0))
		cmd.SourceRef = w(2)
		cmd.LengthWords = field & dmaLengthMask
		cmd.ZeroRun = field&ZeroRunFlag != 0
	}
	return cmd, nil
}

// WalkRecords decodes every record of a command zone, in order, calling fn with
// the decoded command and its body slice. The body aliases zone, so fn may patch
// it in place. The walk stops after an end record.
func WalkRecords(zone []byte, fn func(cmd Command, body []byte) error) error {
	pos := 0
	for pos < len(zone) {
		if len(zone)-pos < GroupHeaderSize {
			return &CommandError{Offset: pos, Err: fmt.Errorf("%w: %d bytes left, need a group header",
				ErrTruncatedCommand, len(zone)-pos)}
		}

		op := binary.LittleEndian.Uint32(zone[pos:])
		count := binary.LittleEndian.Uint32(zone[pos+WordSize:])
		size, ok := RecordBodySize(op)
		if !ok {
			return &CommandError{Offset: pos, Opcode: op, Err: ErrUnsupportedCommand}
		}
		if count > MaxGroupEntries {
			return &CommandError{Offset: pos, Opcode: op,
				Err: fmt.Errorf("%w: group count %d exceeds %d", ErrMalformedCommand, count, MaxGroupEntries)}
		}
		pos += GroupHeaderSize

		for i := uint32(0); i < count; i++ {
			if len(zone)-pos < size {
				return &CommandError{Offset: pos, Opcode: op, Err: fmt.Errorf("%w: group entry %d of %d cut short",
					ErrTruncatedCommand, i+1, count)}
			}
			body := zone[pos : pos+size]
			cmd, err := DecodeRecord(Opcode(op), body)
			if err != nil {
				return &CommandError{Offset: pos, Opcode: op, Err: err}
			}
			cmd.Offset = pos
			if err := fn(cmd, body); err != nil {
				return err
			}
			pos += size
			if cmd.Op == OpEnd {
				return nil
			}
		}
	}
	return nil
}
