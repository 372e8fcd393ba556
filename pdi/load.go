package pdi

import (
	"fmt"

	"github.com/moffa90/go-aiecdo/cdo"
	"github.com/moffa90/go-aiecdo/loader"
	"github.com/moffa90/go-aiecdo/transform"
)

// Load verifies pdiBytes and loads every partition, in order, through port.
// Transformed partitions run on a StreamEngine with a cache of cacheCapacity
// bytes; untransformed ones run on a DirectEngine.
//
// Every header, and every transformed image, is validated before the first
// hardware call. A failure after that leaves the hardware partially programmed.
func Load(pdiBytes []byte, port loader.IOPort, cacheCapacity int, opts ...loader.Option) error {
	p, err := Parse(pdiBytes)
	if err != nil {
		return err
	}

	var stream *loader.StreamEngine
	plan := make([]*transform.Image, len(p.Partitions))
	for i := range p.Partitions {
		part := &p.Partitions[i]
		switch part.Type() {
		case cdo.TransformSeparated:
			img, err := transform.ParseImage(part.Data, part.Header.CommandZoneLen)
			if err != nil {
				return &PartitionError{Index: i, Err: err}
			}
			plan[i] = img
			if stream == nil {
				if stream, err = loader.NewStreamEngine(port, cacheCapacity, opts...); err != nil {
					return err
				}
			}
		default:
			if _, _, err := cdo.Stream(part.Data); err != nil {
				return &PartitionError{Index: i, Err: err}
			}
		}
	}

	direct := loader.NewDirectEngine(port, opts...)
	for i, img := range plan {
		if img == nil {
			err = direct.Load(p.Partitions[i].Data)
		} else {
			err = stream.LoadImage(img)
		}
		if err != nil {
			return &PartitionError{Index: i, Err: err}
		}
	}
	return nil
}

// Transform returns a copy of pdiBytes with every partition transformed.
// pdiBytes is never modified. If any partition already carries a transform
// marker, Transform returns cdo.ErrAlreadyTransformed.
func Transform(pdiBytes []byte, opts ...transform.Option) ([]byte, error) {
	p, err := Parse(pdiBytes)
	if err != nil {
		return nil, err
	}

	for i := range p.Partitions {
		h := &p.Partitions[i].Header
		if err := transform.CheckMarker(h.TransformMarker, h.CommandZoneLen); err != nil {
			return nil, &PartitionError{Index: i, Err: err}
		}
	}

	enc := transform.NewEncoder(opts...)
	parts := make([]Partition, len(p.Partitions))
	for i, part := range p.Partitions {
		img, err := enc.Encode(part.Data)
		if err != nil {
			return nil, &PartitionError{Index: i, Err: fmt.Errorf("transform: %w", err)}
		}
		h := part.Header
		h.CommandZoneLen = img.CommandZoneLen
		h.TransformMarker = img.Marker()
		parts[i] = Partition{Header: h, Data: img.Bytes()}
	}

	return assemble(p.Table, parts)
}
