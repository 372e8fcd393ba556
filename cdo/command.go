package cdo

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Command is one decoded CDO command.
//
// Commands decoded from an original stream carry DMA data in Payload.
// Commands decoded from a command-zone record carry SourceRef, LengthWords
// and ZeroRun instead.
type Command struct {
	// Op is the command kind
	Op Opcode

	// Offset is the byte offset of the command (or record body) in its buffer
	Offset int

	// Addr is the register or DMA destination address
	Addr uint64

	// Mask is the write mask (mask writes only)
	Mask uint32

	// Value is the register value (writes and mask writes)
	Value uint32

	// Payload is the DMA data (original streams only)
	Payload []byte

	// PayloadOffset is the byte offset of Payload in the decoded buffer
	PayloadOffset int

	// SourceRef is the byte offset of the DMA data
	SourceRef uint32

	// LengthWords is the DMA length in words
	LengthWords uint32

	// ZeroRun marks an all-zero DMA payload (command-zone records only)
	ZeroRun bool
}

// Decoder walks an original CDO command stream.
//
// Decoder is not safe for concurrent use.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder returns a Decoder over stream (the words following the CDO header).
func NewDecoder(stream []byte) *Decoder {
	return &Decoder{buf: stream}
}

// Offset returns the byte offset of the next command.
func (d *Decoder) Offset() int {
	return d.pos
}

// Next decodes the next command. It returns io.EOF at the end of the stream.
// Nop commands are returned so callers can account for them.
func (d *Decoder) Next() (Command, error) {
	if d.pos >= len(d.buf) {
		return Command{}, io.EOF
	}

	rest := d.buf[d.pos:]
	f, err := DecodeFrame(rest)
	if err != nil {
		var op uint32
		if len(rest) >= WordSize {
			op = binary.LittleEndian.Uint32(rest) & opcodeMask
		}
		return Command{}, &CommandError{Offset: d.pos, Opcode: op, Err: err}
	}

	payloadStart := f.HeaderWords * WordSize
	payload := rest[payloadStart : f.TotalWords*WordSize]

	cmd, err := decodePayload(f, payload)
	if err != nil {
		return Command{}, &CommandError{Offset: d.pos, Opcode: uint32(f.Opcode), Err: err}
	}
	cmd.Offset = d.pos
	if cmd.Op == OpDmaWrite {
		cmd.PayloadOffset = d.pos + payloadStart + dmaAddrWords*WordSize
	}

	d.pos += int(f.TotalWords * WordSize)
	return cmd, nil
}

func decodePayload(f Frame, payload []byte) (Command, error) {
	cmd := Command{Op: f.Opcode}

	if !f.Opcode.Supported() {
		return cmd, ErrUnsupportedCommand
	}

	if want, fixed := payloadWords(f.Opcode); fixed && f.PayloadWords != want {
		return cmd, fmt.Errorf("%w: %s payload is %d words, expected %d",
			ErrMalformedCommand, f.Opcode, f.PayloadWords, want)
	}

	w := func(i int) uint32 {
		return binary.LittleEndian.Uint32(payload[i*WordSize:])
	}

	switch f.Opcode {
	case OpMaskWrite:
		cmd.Addr, cmd.Mask, cmd.Value = uint64(w(0)), w(1), w(2)
	case OpWrite:
		cmd.Addr, cmd.Value = uint64(w(0)), w(1)
	case OpMaskWrite64:
		cmd.Addr, cmd.Mask, cmd.Value = addr64(w(0), w(1)), w(2), w(3)
	case OpWrite64:
		cmd.Addr, cmd.Value = addr64(w(0), w(1)), w(2)
	case OpDmaWrite:
		if f.PayloadWords < dmaAddrWords {
			return cmd, fmt.Errorf("%w: dma_write payload is %d words, need at least %d",
				ErrMalformedCommand, f.PayloadWords, dmaAddrWords)
		}
		cmd.Addr = addr64(w(0), w(1))
		cmd.Payload = payload[dmaAddrWords*WordSize:]
		cmd.LengthWords = f.PayloadWords - dmaAddrWords
	}

	return cmd, nil
}

func addr64(hi, lo uint32) uint64 {
	return uint64(hi)<<32 | uint64(lo)
}
