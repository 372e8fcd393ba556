// Package cdo implements the Configuration Data Object (CDO) wire format used to
// program AIE-style compute tiles.
//
// # Stream Layout
//
// A CDO is a 5-word header followed by a stream of framed commands:
//
//	Header:  [WORD_COUNT][MAGIC][VERSION][LENGTH_WORDS][CHECKSUM]
//	Command: [WORD0][LEN?][PAYLOAD...]
//
// Where:
//   - WORD_COUNT = 4 (words following the first header word)
//   - MAGIC = 0x004F4443
//   - CHECKSUM = bitwise complement of the sum of the first 4 header words
//   - WORD0 bits [7:0] = opcode, bits [23:16] = payload length in words
//   - LEN is present only when the length field holds the 255 sentinel
//
// All words are little-endian.
//
// # Decoding
//
// Use Decoder to walk an original command stream:
//
//	dec := cdo.NewDecoder(stream)
//	for {
//	    cmd, err := dec.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // ... handle cmd
//	}
//
// # Building
//
// Use Builder to produce a complete CDO:
//
//	b := cdo.NewBuilder()
//	b.Write(0x0003_2000, 0x1)
//	b.DmaWrite(0x0002_0000, payload)
//	b.End()
//	buf := b.Bytes()
//
// # Command Zone Records
//
// The transformed form of a stream groups commands under 8-byte group headers
// ({opcode, count}) followed by fixed-size bodies. See RecordBodySize and
// WalkRecords.
package cdo
