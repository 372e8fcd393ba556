package cdo

import (
	"encoding/binary"
	"fmt"
)

// Checksum returns the bitwise complement of the sum (mod 2^32) of words.
//
// The CDO header, the PDI image header table and the partition header all store
// this value in their last word, computed over every word before it.
func Checksum(words []uint32) uint32 {
	var sum uint32
	for _, w := range words {
		sum += w
	}
	return ^sum
}

// Validate checks that the last word of words is the checksum of the others.
func Validate(words []uint32) error {
	if len(words) < 2 {
		return fmt.Errorf("%w: need at least 2 words, got %d", ErrChecksumMismatch, len(words))
	}
	n := len(words) - 1
	expected := Checksum(words[:n])
	if words[n] != expected {
		return &ChecksumError{Expected: expected, Actual: words[n]}
	}
	return nil
}

// BytesToWords decodes buf as little-endian words. Trailing bytes that do not
// form a full word are ignored.
func BytesToWords(buf []byte) []uint32 {
	words := make([]uint32, len(buf)/WordSize)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(buf[i*WordSize:])
	}
	return words
}

// AppendWords appends words to dst in little-endian order.
func AppendWords(dst []byte, words ...uint32) []byte {
	for _, w := range words {
		dst = binary.LittleEndian.AppendUint32(dst, w)
	}
	return dst
}
