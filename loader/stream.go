package loader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/moffa90/go-aiecdo/cdo"
	"github.com/moffa90/go-aiecdo/transform"
)

// MinCacheCapacity is the smallest usable cache: one group header plus the
// largest record body.
const MinCacheCapacity = cdo.GroupHeaderSize + cdo.MaxBodySize

// State is a StreamEngine state.
type State int

const (
	StateIdle State = iota
	StateStreamingChunk
	StateExecutingGroup
	StateAwaitingHeader
	StateDraining
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreamingChunk:
		return "streaming_chunk"
	case StateExecutingGroup:
		return "executing_group"
	case StateAwaitingHeader:
		return "awaiting_header"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StreamEngine executes a transformed image through a fixed-size cache.
//
// StreamEngine is not safe for concurrent use. It may be reused for
// sequential loads.
type StreamEngine struct {
	port   IOPort
	config Config
	cache  []byte
	carry  Carry
	state  State
	stats  Stats
	err    error
}

// NewStreamEngine creates an engine with a cache of capacity bytes.
// The port must not be nil.
//
// Example:
//
//	eng, err := loader.NewStreamEngine(port, 4096,
//	    loader.WithLogger(myLogger),
//	    loader.WithTrustZeroedMemory(true),
//	)
func NewStreamEngine(port IOPort, capacity int, opts ...Option) (*StreamEngine, error) {
	if port == nil {
		panic("port cannot be nil")
	}
	if capacity < MinCacheCapacity {
		return nil, fmt.Errorf("cache capacity %d is below the minimum of %d bytes", capacity, MinCacheCapacity)
	}

	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &StreamEngine{
		port:   port,
		config: config,
		cache:  make([]byte, capacity),
	}, nil
}

// State returns the engine state.
func (e *StreamEngine) State() State {
	return e.state
}

// Err returns the error that failed the last load, if any.
func (e *StreamEngine) Err() error {
	return e.err
}

// Stats returns the statistics of the last load.
func (e *StreamEngine) Stats() Stats {
	return e.stats
}

// Capacity returns the cache size in bytes.
func (e *StreamEngine) Capacity() int {
	return len(e.cache)
}

// LoadImage executes a transformed image held in memory.
func (e *StreamEngine) LoadImage(img *transform.Image) error {
	return e.Load(bytes.NewReader(img.CommandZone), img.CommandZoneLen, img.DataZone)
}

// Load executes cmdZoneLen bytes of command zone read from src. DMA records
// read their payloads from dataZone.
//
// A failed load leaves the hardware partially programmed.
func (e *StreamEngine) Load(src io.Reader, cmdZoneLen uint32, dataZone []byte) error {
	e.carry.reset()
	e.stats = Stats{}
	e.err = nil
	e.state = StateIdle

	e.config.logInfo("starting stream load",
		"cmd_zone_len", cmdZoneLen,
		"data_zone_len", len(dataZone),
		"cache", len(e.cache))

	start := time.Now()
	err := e.run(src, int(cmdZoneLen), dataZone, start)
	e.config.Metrics.load("stream", err)
	if err != nil {
		e.err = err
		e.state = StateFailed
		e.config.logError("stream load failed",
			"error", err,
			"refills", e.stats.Refills,
			"commands", e.stats.Commands)
		return err
	}

	e.state = StateDone
	e.config.reportProgress(Progress{
		Phase:         PhaseComplete,
		BytesConsumed: int(cmdZoneLen),
		TotalBytes:    int(cmdZoneLen),
		Percentage:    100,
		Commands:      e.stats.Commands,
		Refills:       e.stats.Refills,
		ElapsedTime:   time.Since(start),
	})
	e.config.logInfo("stream load complete",
		"refills", e.stats.Refills,
		"commands", e.stats.Commands,
		"bytes_copied", e.stats.BytesCopied,
		"zero_runs_skipped", e.stats.ZeroRunsSkipped,
		"duration", time.Since(start))
	return nil
}

func (e *StreamEngine) run(src io.Reader, total int, dataZone []byte, start time.Time) error {
	consumed := 0
	for consumed < total {
		e.state = StateStreamingChunk
		used := e.carry.restore(e.cache)
		n := min(len(e.cache)-used, total-consumed)

		if _, err := io.ReadFull(src, e.cache[used:used+n]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("%w: command zone ended after %d of %d bytes",
					cdo.ErrTruncatedCommand, consumed, total)
			}
			return fmt.Errorf("read command zone: %w", err)
		}
		consumed += n
		e.stats.Refills++
		e.config.Metrics.refill()

		ended, err := e.parseChunk(e.cache[:used+n], dataZone)
		if err != nil {
			return fmt.Errorf("refill %d: %w", e.stats.Refills, err)
		}

		if e.config.Logger != nil {
			e.config.logDebug("refill done",
				"refill", e.stats.Refills,
				"consumed", consumed,
				"carry", e.carry.size())
		}
		if e.config.ProgressCallback != nil {
			e.config.reportProgress(Progress{
				Phase:         PhaseStreaming,
				BytesConsumed: consumed,
				TotalBytes:    total,
				Percentage:    percentage(consumed, total),
				Commands:      e.stats.Commands,
				Refills:       e.stats.Refills,
				ElapsedTime:   time.Since(start),
			})
		}

		if ended {
			return nil
		}
	}

	e.state = StateDraining
	if e.carry.Pending {
		if e.carry.Opaque() {
			return fmt.Errorf("%w: command zone ends inside a group header (%d bytes left)",
				cdo.ErrTruncatedCommand, e.carry.TailLen)
		}
		return fmt.Errorf("%w: command zone ends with %d %s entries owed",
			cdo.ErrTruncatedCommand, e.carry.EntriesRemaining, e.carry.Opcode)
	}
	return nil
}

// parseChunk executes every complete entry in buf and saves the leftover bytes
// in the carry. It reports true once an end record is reached. Offsets in
// errors are relative to buf.
func (e *StreamEngine) parseChunk(buf, dataZone []byte) (bool, error) {
	pos := 0
	for pos < len(buf) {
		e.state = StateAwaitingHeader
		if len(buf)-pos < cdo.GroupHeaderSize {
			e.carry.saveFragment(buf[pos:])
			return false, nil
		}

		op := binary.LittleEndian.Uint32(buf[pos:])
		count := binary.LittleEndian.Uint32(buf[pos+cdo.WordSize:])
		size, ok := cdo.RecordBodySize(op)
		if !ok {
			return false, &cdo.CommandError{Offset: pos, Opcode: op, Err: cdo.ErrUnsupportedCommand}
		}
		if count > cdo.MaxGroupEntries {
			return false, &cdo.CommandError{Offset: pos, Opcode: op,
				Err: fmt.Errorf("%w: group count %d exceeds %d", cdo.ErrMalformedCommand, count, cdo.MaxGroupEntries)}
		}
		pos += cdo.GroupHeaderSize

		e.state = StateExecutingGroup
		for i := uint32(0); i < count; i++ {
			if len(buf)-pos < size {
				e.carry.saveGroup(cdo.Opcode(op), uint16(count-i), buf[pos:])
				return false, nil
			}
			cmd, err := cdo.DecodeRecord(cdo.Opcode(op), buf[pos:pos+size])
			if err != nil {
				return false, &cdo.CommandError{Offset: pos, Opcode: op, Err: err}
			}
			cmd.Offset = pos
			if cmd.Op == cdo.OpEnd {
				return true, nil
			}
			if err := e.execute(cmd, dataZone); err != nil {
				return false, err
			}
			pos += size
		}
	}
	return false, nil
}

func (e *StreamEngine) execute(cmd cdo.Command, dataZone []byte) error {
	x := executor{port: e.port, metrics: e.config.Metrics, stats: &e.stats}
	if cmd.Op != cdo.OpDmaWrite {
		return commandError(cmd, x.run(cmd, nil))
	}

	if err := cdo.CheckDataReference(cmd.SourceRef, cmd.LengthWords, len(dataZone)); err != nil {
		return &cdo.CommandError{Offset: cmd.Offset, Opcode: uint32(cmd.Op), Err: err}
	}
	if cmd.ZeroRun && e.config.TrustZeroedMemory {
		e.stats.Commands++
		e.stats.ZeroRunsSkipped++
		e.config.Metrics.zeroRunSkipped()
		return nil
	}
	end := cmd.SourceRef + cmd.LengthWords*cdo.WordSize
	return commandError(cmd, x.run(cmd, dataZone[cmd.SourceRef:end]))
}
