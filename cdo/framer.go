package cdo

import (
	"encoding/binary"
	"fmt"
)

// Frame describes the framing of one command in an original stream.
type Frame struct {
	// Opcode is bits 0-7 of the first command word
	Opcode Opcode

	// HeaderWords is 1 for the short form, 2 for the long form
	HeaderWords int

	// PayloadWords is the payload length in words
	PayloadWords uint32

	// TotalWords is HeaderWords + PayloadWords
	TotalWords uint64
}

// Long reports whether the command uses the long (sentinel) length form.
func (f Frame) Long() bool {
	return f.HeaderWords == 2
}

// DecodeSize decodes the framing of a command from its first two words.
// word1 is only consulted when the length field holds LongLengthSentinel.
//
// DecodeSize does no bounds checking; use DecodeFrame when decoding from a buffer.
func DecodeSize(word0, word1 uint32) Frame {
	f := Frame{
		Opcode:      Opcode(word0 & opcodeMask),
		HeaderWords: 1,
	}

	length := (word0 >> lengthShift) & lengthMask
	if length == LongLengthSentinel {
		f.HeaderWords = 2
		f.PayloadWords = word1
	} else {
		f.PayloadWords = length
	}

	f.TotalWords = uint64(f.HeaderWords) + uint64(f.PayloadWords)
	return f
}

// DecodeFrame decodes the framing of the command at the start of buf and checks
// that the whole command is present.
func DecodeFrame(buf []byte) (Frame, error) {
	if len(buf) < WordSize {
		return Frame{}, fmt.Errorf("%w: %d bytes left, need a command word", ErrTruncatedCommand, len(buf))
	}

	word0 := binary.LittleEndian.Uint32(buf)
	var word1 uint32
	if (word0>>lengthShift)&lengthMask == LongLengthSentinel {
		if len(buf) < 2*WordSize {
			return Frame{}, fmt.Errorf("%w: long-form length word missing", ErrTruncatedCommand)
		}
		word1 = binary.LittleEndian.Uint32(buf[WordSize:])
	}

	f := DecodeSize(word0, word1)
	if f.TotalWords*WordSize > uint64(len(buf)) {
		return f, fmt.Errorf("%w: command needs %d words, %d available",
			ErrTruncatedCommand, f.TotalWords, len(buf)/WordSize)
	}

	return f, nil
}

// AppendCommand frames op with payload and appends it to dst.
// Payloads longer than MaxShortPayloadWords use the long form.
//
// Frame structure:
//
//	short: [OP | LEN<<16][PAYLOAD...]
//	long:  [OP | 0xFF<<16][LEN][PAYLOAD...]
func AppendCommand(dst []byte, op Opcode, payload ...uint32) []byte {
	n := len(payload)
	if n <= MaxShortPayloadWords {
		dst = AppendWords(dst, uint32(op)|uint32(n)<<lengthShift)
	} else {
		dst = AppendWords(dst, uint32(op)|LongLengthSentinel<<lengthShift, uint32(n))
	}
	return AppendWords(dst, payload...)
}
