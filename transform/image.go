package transform

import (
	"fmt"

	"github.com/moffa90/go-aiecdo/cdo"
)

// Image is a transformed CDO: a command zone of grouped records followed by a
// packed data zone referenced by DMA records.
type Image struct {
	// Version is the CDO version carried over from the original header
	Version uint32

	// CommandZone holds the grouped command records
	CommandZone []byte

	// CommandZoneLen is len(CommandZone), as stored in the partition header
	CommandZoneLen uint32

	// DataZone holds the relocated DMA payloads
	DataZone []byte
}

// Marker returns the transform marker describing this image.
func (img *Image) Marker() uint32 {
	return cdo.EncodeMarker(cdo.TransformSeparated, img.CommandZoneLen)
}

// Bytes returns the persisted form: a CDO header covering both zones, the
// command zone, then the data zone at offset CommandZoneLen past the header.
func (img *Image) Bytes() []byte {
	n := len(img.CommandZone) + len(img.DataZone)
	h := cdo.NewHeader(img.Version, uint32(n/cdo.WordSize))

	out := make([]byte, 0, cdo.HeaderSize+n)
	out = h.AppendTo(out)
	out = append(out, img.CommandZone...)
	return append(out, img.DataZone...)
}

// ParseImage splits a persisted image at cmdZoneLen and validates it.
// The returned zones alias buf.
func ParseImage(buf []byte, cmdZoneLen uint32) (*Image, error) {
	h, body, err := cdo.Stream(buf)
	if err != nil {
		return nil, fmt.Errorf("image header: %w", err)
	}

	if uint64(cmdZoneLen) > uint64(len(body)) {
		return nil, fmt.Errorf("%w: command zone length %d exceeds %d-byte image body",
			cdo.ErrTruncatedCommand, cmdZoneLen, len(body))
	}
	if cmdZoneLen%cdo.WordSize != 0 {
		return nil, fmt.Errorf("%w: command zone length %d is not word aligned",
			cdo.ErrMalformedCommand, cmdZoneLen)
	}

	img := &Image{
		Version:        h.Version,
		CommandZone:    body[:cmdZoneLen],
		CommandZoneLen: cmdZoneLen,
		DataZone:       body[cmdZoneLen:],
	}

	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

// Validate walks the command zone and checks that every DMA record references
// bytes inside the data zone.
func (img *Image) Validate() error {
	if int(img.CommandZoneLen) != len(img.CommandZone) {
		return fmt.Errorf("command zone length %d does not match %d-byte zone",
			img.CommandZoneLen, len(img.CommandZone))
	}

	return cdo.WalkRecords(img.CommandZone, func(cmd cdo.Command, _ []byte) error {
		if cmd.Op != cdo.OpDmaWrite {
			return nil
		}
		if err := cdo.CheckDataReference(cmd.SourceRef, cmd.LengthWords, len(img.DataZone)); err != nil {
			return &cdo.CommandError{Offset: cmd.Offset, Opcode: uint32(cmd.Op), Err: err}
		}
		return nil
	})
}

// CheckMarker returns cdo.ErrAlreadyTransformed if marker describes a partition
// that has already been transformed, and cdo.ErrInvalidMarker if it is corrupt.
func CheckMarker(marker, cmdZoneLen uint32) error {
	t, err := cdo.DecodeMarker(marker, cmdZoneLen)
	if err != nil {
		return err
	}
	if t != cdo.TransformNone {
		return fmt.Errorf("%w: marker 0x%08X (%s)", cdo.ErrAlreadyTransformed, marker, t)
	}
	return nil
}
