package pdi

import (
	"errors"
	"fmt"

	"github.com/moffa90/go-aiecdo/cdo"
)

// Layout constants.
const (
	// TableWords is the size of the image header table in words
	TableWords = 16

	// TableSize is the size of the image header table in bytes
	TableSize = TableWords * cdo.WordSize

	// PartitionHeaderWords is the size of a partition header in words
	PartitionHeaderWords = 16

	// PartitionHeaderSize is the size of a partition header in bytes
	PartitionHeaderSize = PartitionHeaderWords * cdo.WordSize

	// Identification is "PDI\0" packed little-endian
	Identification = 0x00494450

	// DefaultVersion is the table version written by Build
	DefaultVersion = 0x00040000

	// MaxPartitions bounds the partition count accepted by Parse
	MaxPartitions = 64
)

// ImageHeaderTable is the first record of a PDI.
type ImageHeaderTable struct {
	Version               uint32
	ImageCount            uint32
	ImageHeaderOffset     uint32
	PartitionCount        uint32
	PartitionHeaderOffset uint32
	SecondaryBootDevice   uint32
	IDCode                uint32
	Attributes            uint32
	PdiID                 uint32
	ParentID              uint32
	Identification        uint32
	HeadersSize           uint32
	TotalLength           uint32
	Reserved              [2]uint32
	Checksum              uint32
}

func (t *ImageHeaderTable) words() []uint32 {
	return []uint32{
		t.Version, t.ImageCount, t.ImageHeaderOffset, t.PartitionCount,
		t.PartitionHeaderOffset, t.SecondaryBootDevice, t.IDCode, t.Attributes,
		t.PdiID, t.ParentID, t.Identification, t.HeadersSize,
		t.TotalLength, t.Reserved[0], t.Reserved[1], t.Checksum,
	}
}

func tableFromWords(w []uint32) ImageHeaderTable {
	return ImageHeaderTable{
		Version:               w[0],
		ImageCount:            w[1],
		ImageHeaderOffset:     w[2],
		PartitionCount:        w[3],
		PartitionHeaderOffset: w[4],
		SecondaryBootDevice:   w[5],
		IDCode:                w[6],
		Attributes:            w[7],
		PdiID:                 w[8],
		ParentID:              w[9],
		Identification:        w[10],
		HeadersSize:           w[11],
		TotalLength:           w[12],
		Reserved:              [2]uint32{w[13], w[14]},
		Checksum:              w[15],
	}
}

// Seal recomputes the checksum.
func (t *ImageHeaderTable) Seal() {
	w := t.words()
	t.Checksum = cdo.Checksum(w[:TableWords-1])
}

// Bytes returns the encoded table.
func (t *ImageHeaderTable) Bytes() []byte {
	return cdo.AppendWords(make([]byte, 0, TableSize), t.words()...)
}

// PartitionHeader describes one partition.
type PartitionHeader struct {
	DataWords                 uint32
	UnencryptedDataWords      uint32
	TotalPartitionWords       uint32
	NextPartitionHeaderOffset uint32
	ExecAddrLo                uint32
	ExecAddrHi                uint32
	LoadAddrLo                uint32
	LoadAddrHi                uint32
	DataWordOffset            uint32
	Attributes                uint32
	SectionCount              uint32
	ChecksumWordOffset        uint32
	PartitionID               uint32
	CommandZoneLen            uint32
	TransformMarker           uint32
	Checksum                  uint32
}

func (h *PartitionHeader) words() []uint32 {
	return []uint32{
		h.DataWords, h.UnencryptedDataWords, h.TotalPartitionWords, h.NextPartitionHeaderOffset,
		h.ExecAddrLo, h.ExecAddrHi, h.LoadAddrLo, h.LoadAddrHi,
		h.DataWordOffset, h.Attributes, h.SectionCount, h.ChecksumWordOffset,
		h.PartitionID, h.CommandZoneLen, h.TransformMarker, h.Checksum,
	}
}

func partitionHeaderFromWords(w []uint32) PartitionHeader {
	return PartitionHeader{
		DataWords:                 w[0],
		UnencryptedDataWords:      w[1],
		TotalPartitionWords:       w[2],
		NextPartitionHeaderOffset: w[3],
		ExecAddrLo:                w[4],
		ExecAddrHi:                w[5],
		LoadAddrLo:                w[6],
		LoadAddrHi:                w[7],
		DataWordOffset:            w[8],
		Attributes:                w[9],
		SectionCount:              w[10],
		ChecksumWordOffset:        w[11],
		PartitionID:               w[12],
		CommandZoneLen:            w[13],
		TransformMarker:           w[14],
		Checksum:                  w[15],
	}
}

// Seal recomputes the checksum.
func (h *PartitionHeader) Seal() {
	w := h.words()
	h.Checksum = cdo.Checksum(w[:PartitionHeaderWords-1])
}

// Bytes returns the encoded header.
func (h *PartitionHeader) Bytes() []byte {
	return cdo.AppendWords(make([]byte, 0, PartitionHeaderSize), h.words()...)
}

// TransformType decodes the transform marker against the stored command-zone length.
func (h *PartitionHeader) TransformType() (cdo.TransformType, error) {
	return cdo.DecodeMarker(h.TransformMarker, h.CommandZoneLen)
}

// LoadAddr returns the 64-bit load address.
func (h *PartitionHeader) LoadAddr() uint64 {
	return uint64(h.LoadAddrHi)<<32 | uint64(h.LoadAddrLo)
}

// ExecAddr returns the 64-bit execution address.
func (h *PartitionHeader) ExecAddr() uint64 {
	return uint64(h.ExecAddrHi)<<32 | uint64(h.ExecAddrLo)
}

// validate checks words against their trailing checksum, naming the record in the error.
func validate(table string, words []uint32) error {
	err := cdo.Validate(words)
	var ce *cdo.ChecksumError
	if errors.As(err, &ce) {
		ce.Table = table
	}
	return err
}

func wordsAt(buf []byte, off uint64, n int, what string) ([]uint32, error) {
	end := off + uint64(n)*cdo.WordSize
	if end > uint64(len(buf)) {
		return nil, fmt.Errorf("%w: %s at byte %d needs %d bytes, image holds %d",
			ErrTruncatedImage, what, off, end-off, len(buf))
	}
	return cdo.BytesToWords(buf[off:end]), nil
}
