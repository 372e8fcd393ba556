// Package transform rewrites a CDO command stream into the separated form
// replayed by the streaming loader.
//
// # Overview
//
// The transform runs once, on the producer side, in two passes:
//   - Pass 1 groups consecutive commands of the same kind under one
//     {opcode, count} header and emits fixed-size bodies into the command zone.
//     DMA writes keep a reference to their payload in the original buffer.
//   - Pass 2 copies every DMA payload into the data zone and rewrites the
//     reference to point there. All-zero payloads aimed at tile data memory
//     are flagged so the loader may skip them.
//
// # Usage
//
//	img, err := transform.Encode(cdoBuf)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	persisted := img.Bytes() // CDO header, command zone, data zone
//
// The transform marker recorded next to the image (see Image.Marker) lets a
// reader find the data zone without re-parsing, and guards against
// transforming a partition twice.
package transform
