package pdi

import (
	"fmt"
	"io"
	"os"

	"github.com/moffa90/go-aiecdo/cdo"
)

// PDI is a parsed and verified image.
type PDI struct {
	// Table is the image header table
	Table ImageHeaderTable

	// Partitions are listed in header-chain order
	Partitions []Partition
}

// Partition is one partition header and its data.
type Partition struct {
	Header PartitionHeader

	// Data is the partition's CDO; it aliases the parsed buffer
	Data []byte
}

// Type returns the decoded transform type. Parse has already validated the marker.
func (p *Partition) Type() cdo.TransformType {
	t, _ := p.Header.TransformType()
	return t
}

// ParseFile parses a PDI from the given file path.
//
// Example:
//
//	img, err := pdi.ParseFile("design.pdi")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d partitions\n", len(img.Partitions))
func ParseFile(path string) (*PDI, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader reads a whole PDI from r and parses it.
func ParseReader(r io.Reader) (*PDI, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return Parse(buf)
}

// VerifyHeader checks the image header table and every partition header
// without touching hardware.
func VerifyHeader(pdiBytes []byte) error {
	_, err := Parse(pdiBytes)
	return err
}

// Parse verifies the image header table and walks the partition header chain.
// Partition data slices alias buf.
//
// Checks, in order:
//  1. Image header table checksum and identification
//  2. Partition count
//  3. Each partition header checksum, data bounds and transform marker
func Parse(buf []byte) (*PDI, error) {
	w, err := wordsAt(buf, 0, TableWords, "image header table")
	if err != nil {
		return nil, err
	}
	if err := validate("image header table", w); err != nil {
		return nil, err
	}

	table := tableFromWords(w)
	if table.Identification != Identification {
		return nil, fmt.Errorf("%w: got 0x%08X, expected 0x%08X",
			ErrBadIdentification, table.Identification, uint32(Identification))
	}
	if table.PartitionCount == 0 {
		return nil, ErrNoPartitions
	}
	if table.PartitionCount > MaxPartitions {
		return nil, fmt.Errorf("partition count %d exceeds %d", table.PartitionCount, MaxPartitions)
	}
	if uint64(table.TotalLength)*cdo.WordSize > uint64(len(buf)) {
		return nil, fmt.Errorf("%w: table declares %d words, image holds %d",
			ErrTruncatedImage, table.TotalLength, len(buf)/cdo.WordSize)
	}

	p := &PDI{Table: table, Partitions: make([]Partition, 0, table.PartitionCount)}
	off := uint64(table.PartitionHeaderOffset) * cdo.WordSize
	for i := 0; i < int(table.PartitionCount); i++ {
		if i > 0 {
			next := p.Partitions[i-1].Header.NextPartitionHeaderOffset
			if next == 0 {
				return nil, &PartitionError{Index: i, Err: fmt.Errorf("%w: header chain ends after %d of %d partitions",
					ErrTruncatedImage, i, table.PartitionCount)}
			}
			off = uint64(next) * cdo.WordSize
		}

		part, err := parsePartition(buf, off, i)
		if err != nil {
			return nil, &PartitionError{Index: i, Err: err}
		}
		p.Partitions = append(p.Partitions, part)
	}

	return p, nil
}

func parsePartition(buf []byte, off uint64, index int) (Partition, error) {
	w, err := wordsAt(buf, off, PartitionHeaderWords, "partition header")
	if err != nil {
		return Partition{}, err
	}
	if err := validate(fmt.Sprintf("partition header %d", index), w); err != nil {
		return Partition{}, err
	}

	h := partitionHeaderFromWords(w)
	start := uint64(h.DataWordOffset) * cdo.WordSize
	end := start + uint64(h.DataWords)*cdo.WordSize
	if end > uint64(len(buf)) {
		return Partition{}, fmt.Errorf("%w: data [%d, %d) past %d-byte image",
			ErrTruncatedImage, start, end, len(buf))
	}
	if _, err := h.TransformType(); err != nil {
		return Partition{}, err
	}

	return Partition{Header: h, Data: buf[start:end]}, nil
}
