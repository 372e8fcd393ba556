package pdi

import (
	"fmt"

	"github.com/moffa90/go-aiecdo/cdo"
)

// BuildOptions sets the identifying fields of a built image.
type BuildOptions struct {
	// Version is the table version (DefaultVersion if zero)
	Version uint32

	IDCode   uint32
	PdiID    uint32
	ParentID uint32

	// PartitionIDs assigns IDs by partition index (index+1 if missing)
	PartitionIDs []uint32
}

// Build packs original CDOs into a PDI, one partition per CDO, in order.
// Each CDO header is validated first.
//
// Example:
//
//	b := cdo.NewBuilder()
//	b.Write(0x1000, 1)
//	b.End()
//	image, err := pdi.Build(pdi.BuildOptions{PdiID: 7}, b.Bytes())
func Build(opts BuildOptions, cdos ...[]byte) ([]byte, error) {
	if len(cdos) == 0 {
		return nil, ErrNoPartitions
	}

	table := ImageHeaderTable{
		Version:  opts.Version,
		IDCode:   opts.IDCode,
		PdiID:    opts.PdiID,
		ParentID: opts.ParentID,
	}
	if table.Version == 0 {
		table.Version = DefaultVersion
	}

	parts := make([]Partition, len(cdos))
	for i, buf := range cdos {
		if _, _, err := cdo.Stream(buf); err != nil {
			return nil, &PartitionError{Index: i, Err: err}
		}
		id := uint32(i + 1)
		if i < len(opts.PartitionIDs) {
			id = opts.PartitionIDs[i]
		}
		parts[i] = Partition{
			Header: PartitionHeader{PartitionID: id, SectionCount: 1},
			Data:   buf,
		}
	}

	return assemble(table, parts)
}

// assemble lays out the table, the partition headers and the partition data,
// filling in every offset, length and checksum. Identifying header fields and
// transform fields of parts are kept.
func assemble(table ImageHeaderTable, parts []Partition) ([]byte, error) {
	headersWords := TableWords + len(parts)*PartitionHeaderWords

	dataOff := headersWords
	headers := make([]PartitionHeader, len(parts))
	for i, part := range parts {
		if len(part.Data)%cdo.WordSize != 0 {
			return nil, &PartitionError{Index: i, Err: fmt.Errorf("%w: %d-byte data is not word aligned",
				cdo.ErrMalformedCommand, len(part.Data))}
		}
		words := uint32(len(part.Data) / cdo.WordSize)

		h := part.Header
		h.DataWords = words
		h.UnencryptedDataWords = words
		h.TotalPartitionWords = words
		h.DataWordOffset = uint32(dataOff)
		h.NextPartitionHeaderOffset = 0
		if i+1 < len(parts) {
			h.NextPartitionHeaderOffset = uint32(TableWords + (i+1)*PartitionHeaderWords)
		}
		h.Seal()
		headers[i] = h

		dataOff += int(words)
	}

	table.ImageCount = 1
	table.PartitionCount = uint32(len(parts))
	table.PartitionHeaderOffset = TableWords
	table.Identification = Identification
	table.HeadersSize = uint32(headersWords)
	table.TotalLength = uint32(dataOff)
	table.Seal()

	out := make([]byte, 0, dataOff*cdo.WordSize)
	out = append(out, table.Bytes()...)
	for i := range headers {
		out = append(out, headers[i].Bytes()...)
	}
	for _, part := range parts {
		out = append(out, part.Data...)
	}
	return out, nil
}
