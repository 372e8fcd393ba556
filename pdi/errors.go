package pdi

import (
	"errors"
	"fmt"
)

var (
	// ErrBadIdentification indicates the image header table is not a PDI
	ErrBadIdentification = errors.New("bad PDI identification")

	// ErrNoPartitions indicates a PDI without partitions
	ErrNoPartitions = errors.New("PDI has no partitions")

	// ErrTruncatedImage indicates a header or partition extends past the image
	ErrTruncatedImage = errors.New("truncated PDI")
)

// PartitionError attaches the partition index to an error.
type PartitionError struct {
	Index int
	Err   error
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("partition %d: %v", e.Index, e.Err)
}

func (e *PartitionError) Unwrap() error {
	return e.Err
}
