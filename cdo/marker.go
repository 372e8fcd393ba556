package cdo

import "fmt"

// MarkerPattern is the fixed bit pattern present in every non-zero transform marker.
const MarkerPattern = 0x8866

// TransformType records how a partition's command stream is laid out.
type TransformType uint32

const (
	// TransformNone is an untransformed CDO stream
	TransformNone TransformType = 0

	// TransformSeparated is a command zone followed by a data zone
	TransformSeparated TransformType = 1
)

func (t TransformType) String() string {
	switch t {
	case TransformNone:
		return "none"
	case TransformSeparated:
		return "separated"
	default:
		return fmt.Sprintf("transform(%d)", uint32(t))
	}
}

// EncodeMarker returns the partition-header transform marker for t and cmdZoneLen.
//
// Both values are stored with their 16-bit halves (type: bytes) swapped and
// OR-ed over MarkerPattern.
func EncodeMarker(t TransformType, cmdZoneLen uint32) uint32 {
	tt := uint32(t)
	return MarkerPattern |
		((tt&0xFF)<<8 | tt>>8) |
		((cmdZoneLen&0xFFFF)<<16 | cmdZoneLen>>16)
}

// DecodeMarker interprets a stored transform marker. cmdZoneLen is the command-zone
// length stored next to the marker; a separated marker must encode exactly it.
func DecodeMarker(marker, cmdZoneLen uint32) (TransformType, error) {
	switch {
	case marker == 0, marker == EncodeMarker(TransformNone, 0):
		return TransformNone, nil
	case marker == EncodeMarker(TransformSeparated, cmdZoneLen):
		return TransformSeparated, nil
	}
	return TransformNone, fmt.Errorf("%w: 0x%08X does not match command zone length %d",
		ErrInvalidMarker, marker, cmdZoneLen)
}
