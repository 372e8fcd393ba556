// Package pdi reads, verifies, builds and loads PDI (Platform Device Image)
// containers holding CDO partitions.
//
// # File Format
//
// A PDI is a sequence of little-endian 32-bit words:
//
//	[IMAGE HEADER TABLE (16 words)]
//	[PARTITION HEADER (16 words)] ... one per partition
//	[PARTITION DATA] ...
//
// Image header table:
//
//	[VERSION][IMAGE_COUNT][IMAGE_HDR_OFF][PARTITION_COUNT][PARTITION_HDR_OFF]
//	[SECONDARY_BOOT][ID_CODE][ATTRIBUTES][PDI_ID][PARENT_ID]["PDI\0"]
//	[HEADERS_SIZE][TOTAL_LENGTH][RESERVED][RESERVED][CHECKSUM]
//
// Partition header:
//
//	[DATA_WORDS][UNENCRYPTED_WORDS][TOTAL_WORDS][NEXT_HDR_OFF]
//	[EXEC_LO][EXEC_HI][LOAD_LO][LOAD_HI][DATA_OFF][ATTRIBUTES][SECTIONS]
//	[CHECKSUM_OFF][PARTITION_ID][CMD_ZONE_LEN][TRANSFORM_MARKER][CHECKSUM]
//
// Offsets are in words. Each checksum is the complement of the sum of the words
// before it. Partition data is a CDO: either an original command stream, or a
// transformed image (command zone then data zone) when the transform marker
// says so.
//
// # Basic Usage
//
//	if err := pdi.VerifyHeader(image); err != nil {
//	    log.Fatal(err)
//	}
//	if err := pdi.Load(image, port, 4096); err != nil {
//	    log.Fatal(err)
//	}
//
// Transforming ahead of time, on the host:
//
//	out, err := pdi.Transform(image)
//	if errors.Is(err, cdo.ErrAlreadyTransformed) {
//	    // nothing to do
//	}
package pdi
