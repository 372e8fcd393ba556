package cdo

import (
	"errors"
	"fmt"
)

// Error kinds shared by the codec, the transform and the loaders.
// Match them with errors.Is.
var (
	ErrChecksumMismatch         = errors.New("checksum mismatch")
	ErrTruncatedCommand         = errors.New("truncated command")
	ErrUnsupportedCommand       = errors.New("unsupported command")
	ErrMalformedCommand         = errors.New("malformed command")
	ErrAlreadyTransformed       = errors.New("partition already transformed")
	ErrOutOfBoundsDataReference = errors.New("data reference out of bounds")
	ErrHardwareIO               = errors.New("hardware I/O failure")
	ErrBadMagic                 = errors.New("bad CDO magic")
	ErrInvalidMarker            = errors.New("invalid transform marker")
)

// ChecksumError indicates that a stored checksum word does not match the computed one.
type ChecksumError struct {
	// Table names the checksummed record ("cdo header", "image header table", ...)
	Table    string
	Expected uint32
	Actual   uint32
}

func (e *ChecksumError) Error() string {
	table := e.Table
	if table == "" {
		table = "record"
	}
	return fmt.Sprintf("%s checksum mismatch: stored 0x%08X, computed 0x%08X",
		table, e.Actual, e.Expected)
}

// Is reports ErrChecksumMismatch as the error kind.
func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksumMismatch
}

// CommandError describes a command that could not be decoded or executed.
type CommandError struct {
	// Offset is the byte offset of the command within the buffer being walked
	Offset int

	// Opcode is the raw opcode word (or byte) of the command
	Opcode uint32

	// Err is the underlying error kind
	Err error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s at offset %d: %v", Opcode(e.Opcode&opcodeMask), e.Offset, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// DataReferenceError indicates that a DMA source reference reads past its buffer.
type DataReferenceError struct {
	SourceRef   uint32
	LengthWords uint32
	Limit       int
}

func (e *DataReferenceError) Error() string {
	return fmt.Sprintf("data reference [%d, +%d words) exceeds %d-byte buffer",
		e.SourceRef, e.LengthWords, e.Limit)
}

// Is reports ErrOutOfBoundsDataReference as the error kind.
func (e *DataReferenceError) Is(target error) bool {
	return target == ErrOutOfBoundsDataReference
}

// IsChecksumError returns true if err is (or wraps) a ChecksumError.
func IsChecksumError(err error) bool {
	var ce *ChecksumError
	return errors.As(err, &ce)
}

// CheckDataReference validates that [ref, ref+words*4) lies within a buffer of size limit.
// A non-empty reference must also start strictly inside the buffer.
func CheckDataReference(ref, words uint32, limit int) error {
	end := uint64(ref) + uint64(words)*WordSize
	if end > uint64(limit) || (words > 0 && uint64(ref) >= uint64(limit)) {
		return &DataReferenceError{SourceRef: ref, LengthWords: words, Limit: limit}
	}
	return nil
}
