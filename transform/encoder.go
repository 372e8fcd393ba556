package transform

import (
	"errors"
	"fmt"
	"io"

	"github.com/moffa90/go-aiecdo/cdo"
)

// Encoder transforms CDO command streams into separated images.
//
// Encoder holds only configuration; every Encode call starts from fresh state,
// so one Encoder may be reused.
type Encoder struct {
	config Config
}

// NewEncoder creates an Encoder with the given options.
func NewEncoder(opts ...Option) *Encoder {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Encoder{config: cfg}
}

// Encode transforms cdoBuf with a new Encoder.
func Encode(cdoBuf []byte, opts ...Option) (*Image, error) {
	return NewEncoder(opts...).Encode(cdoBuf)
}

// encodeStats summarizes one Encode call for logging.
type encodeStats struct {
	commands int
	nops     int
	groups   int
	dmas     int
	zeroRuns int
}

// groupState tracks the group header currently open in the command zone.
type groupState struct {
	open      bool
	op        cdo.Opcode
	headerPos int
	count     uint32
}

// add accounts for one more entry of kind op, opening a new group header when
// the kind changes or the open group is full.
func (g *groupState) add(zone []byte, op cdo.Opcode, stats *encodeStats) []byte {
	if !g.open || g.op != op || g.count == cdo.MaxGroupEntries {
		g.headerPos = len(zone)
		zone = cdo.AppendGroupHeader(zone, op, 0)
		g.open = true
		g.op = op
		g.count = 0
		stats.groups++
	}
	g.count++
	cdo.PutGroupCount(zone, g.headerPos, g.count)
	return zone
}

// Encode transforms one CDO (header plus command stream). cdoBuf is not modified.
//
// Steps:
//  1. Validate the CDO header
//  2. Group commands into the command zone (DMA records reference cdoBuf)
//  3. Relocate DMA payloads into the data zone and rewrite the references
func (e *Encoder) Encode(cdoBuf []byte) (*Image, error) {
	h, stream, err := cdo.Stream(cdoBuf)
	if err != nil {
		return nil, fmt.Errorf("cdo header: %w", err)
	}

	var stats encodeStats

	zone, err := e.group(stream, &stats)
	if err != nil {
		return nil, fmt.Errorf("group commands: %w", err)
	}

	data, err := e.relocate(zone, cdoBuf, &stats)
	if err != nil {
		return nil, fmt.Errorf("relocate data: %w", err)
	}

	img := &Image{
		Version:        h.Version,
		CommandZone:    zone,
		CommandZoneLen: uint32(len(zone)),
		DataZone:       data,
	}

	e.logDebug("cdo transformed",
		"commands", stats.commands,
		"nops", stats.nops,
		"groups", stats.groups,
		"dma_writes", stats.dmas,
		"zero_runs", stats.zeroRuns,
		"command_zone_bytes", len(zone),
		"data_zone_bytes", len(data),
	)

	return img, nil
}

// group is the first pass. DMA records store the byte offset of their payload
// within the original CDO buffer (header included).
func (e *Encoder) group(stream []byte, stats *encodeStats) ([]byte, error) {
	zone := make([]byte, 0, len(stream))
	var g groupState

	dec := cdo.NewDecoder(stream)
	for {
		cmd, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return zone, nil
		}
		if err != nil {
			return nil, err
		}

		switch cmd.Op {
		case cdo.OpNop:
			stats.nops++
			continue
		case cdo.OpDmaWrite:
			if cmd.LengthWords > cdo.MaxDmaWords {
				return nil, &cdo.CommandError{Offset: cmd.Offset, Opcode: uint32(cmd.Op),
					Err: fmt.Errorf("%w: dma_write of %d words exceeds %d",
						cdo.ErrMalformedCommand, cmd.LengthWords, cdo.MaxDmaWords)}
			}
			cmd.SourceRef = uint32(cdo.HeaderSize + cmd.PayloadOffset)
			stats.dmas++
		}

		stats.commands++
		zone = g.add(zone, cmd.Op, stats)
		zone = cdo.AppendRecord(zone, cmd)

		if cmd.Op == cdo.OpEnd {
			return zone, nil
		}
	}
}

// relocate is the second pass. It rewrites every DMA record in zone in place.
func (e *Encoder) relocate(zone, original []byte, stats *encodeStats) ([]byte, error) {
	var data []byte

	err := cdo.WalkRecords(zone, func(cmd cdo.Command, body []byte) error {
		if cmd.Op != cdo.OpDmaWrite {
			return nil
		}

		if err := cdo.CheckDataReference(cmd.SourceRef, cmd.LengthWords, len(original)); err != nil {
			return &cdo.CommandError{Offset: cmd.Offset, Opcode: uint32(cmd.Op), Err: err}
		}

		// Empty payloads reference offset 0 and are never zero runs.
		if cmd.LengthWords == 0 {
			cdo.PutDmaRecord(body, 0, 0, false)
			return nil
		}

		payload := original[cmd.SourceRef : cmd.SourceRef+cmd.LengthWords*cdo.WordSize]
		ref := uint32(len(data))
		data = append(data, payload...)

		zeroRun := e.config.ZeroRunDetection && e.config.inDataMemory(cmd.Addr) && allZero(payload)
		if zeroRun {
			stats.zeroRuns++
		}

		cdo.PutDmaRecord(body, ref, cmd.LengthWords, zeroRun)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return data, nil
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// logDebug logs a debug message if a logger is configured.
func (e *Encoder) logDebug(msg string, keysAndValues ...interface{}) {
	if e.config.Logger != nil {
		e.config.Logger.Debug(msg, keysAndValues...)
	}
}
