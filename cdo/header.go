package cdo

import (
	"encoding/binary"
	"fmt"
)

// Header is the fixed 5-word record at the start of every CDO.
type Header struct {
	// WordCount is the number of header words after the first (always 4)
	WordCount uint32

	// Magic identifies the stream (Magic)
	Magic uint32

	// Version is the CDO format version
	Version uint32

	// LengthWords is the number of words following the header
	LengthWords uint32

	// Checksum is the complement of the sum of the first four words
	Checksum uint32
}

// NewHeader returns a header for a stream of lengthWords words with a valid checksum.
func NewHeader(version, lengthWords uint32) Header {
	h := Header{
		WordCount:   HeaderWordCount,
		Magic:       Magic,
		Version:     version,
		LengthWords: lengthWords,
	}
	h.Checksum = Checksum(h.words()[:HeaderWords-1])
	return h
}

// ParseHeader decodes and validates the CDO header at the start of buf.
//
// Validation covers the checksum, the magic word and the word count. It does
// not check that LengthWords fits in buf; use Stream for that.
func ParseHeader(buf []byte) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("cdo header too short: got %d bytes, need %d", len(buf), HeaderSize)
	}

	words := BytesToWords(buf[:HeaderSize])
	if err := Validate(words); err != nil {
		if ce, ok := err.(*ChecksumError); ok {
			ce.Table = "cdo header"
		}
		return nil, err
	}

	h := &Header{
		WordCount:   words[0],
		Magic:       words[1],
		Version:     words[2],
		LengthWords: words[3],
		Checksum:    words[4],
	}

	if h.Magic != Magic {
		return nil, fmt.Errorf("%w: got 0x%08X, expected 0x%08X", ErrBadMagic, h.Magic, uint32(Magic))
	}
	if h.WordCount != HeaderWordCount {
		return nil, fmt.Errorf("invalid cdo header word count: got %d, expected %d", h.WordCount, HeaderWordCount)
	}

	return h, nil
}

// Stream validates the header of cdoBuf and returns the command stream it describes.
func Stream(cdoBuf []byte) (*Header, []byte, error) {
	h, err := ParseHeader(cdoBuf)
	if err != nil {
		return nil, nil, err
	}

	end := uint64(HeaderSize) + uint64(h.LengthWords)*WordSize
	if end > uint64(len(cdoBuf)) {
		return nil, nil, fmt.Errorf("%w: header declares %d words, buffer holds %d",
			ErrTruncatedCommand, h.LengthWords, (len(cdoBuf)-HeaderSize)/WordSize)
	}

	return h, cdoBuf[HeaderSize:end], nil
}

// AppendTo appends the encoded header to dst.
func (h Header) AppendTo(dst []byte) []byte {
	return AppendWords(dst, h.words()...)
}

// Bytes returns the encoded header.
func (h Header) Bytes() []byte {
	return h.AppendTo(make([]byte, 0, HeaderSize))
}

func (h Header) words() []uint32 {
	return []uint32{h.WordCount, h.Magic, h.Version, h.LengthWords, h.Checksum}
}

// putWord overwrites the word at word index i of buf.
func putWord(buf []byte, i int, v uint32) {
	binary.LittleEndian.PutUint32(buf[i*WordSize:], v)
}
