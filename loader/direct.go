package loader

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/moffa90/go-aiecdo/cdo"
)

// directProgressInterval is the number of commands between DirectEngine progress reports.
const directProgressInterval = 1024

// DirectEngine executes an original CDO held entirely in memory. DMA payloads
// are copied straight from the command stream.
//
// DirectEngine is not safe for concurrent use.
type DirectEngine struct {
	port   IOPort
	config Config
	stats  Stats
}

// NewDirectEngine creates a DirectEngine. The port must not be nil.
func NewDirectEngine(port IOPort, opts ...Option) *DirectEngine {
	if port == nil {
		panic("port cannot be nil")
	}

	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &DirectEngine{
		port:   port,
		config: config,
	}
}

// Stats returns the statistics of the last load.
func (e *DirectEngine) Stats() Stats {
	return e.stats
}

// Load validates the CDO header of cdoBuf and executes its commands in order.
// Execution stops at an end command or at the end of the stream.
//
// A failed load leaves the hardware partially programmed.
func (e *DirectEngine) Load(cdoBuf []byte) error {
	e.stats = Stats{}
	start := time.Now()

	err := e.run(cdoBuf, start)
	e.config.Metrics.load("direct", err)
	if err != nil {
		e.config.logError("direct load failed", "error", err, "commands", e.stats.Commands)
		return err
	}

	e.config.logInfo("direct load complete",
		"commands", e.stats.Commands,
		"bytes_copied", e.stats.BytesCopied,
		"duration", time.Since(start))
	return nil
}

func (e *DirectEngine) run(cdoBuf []byte, start time.Time) error {
	h, stream, err := cdo.Stream(cdoBuf)
	if err != nil {
		return fmt.Errorf("cdo header: %w", err)
	}
	e.config.logInfo("starting direct load", "version", fmt.Sprintf("0x%X", h.Version), "stream_len", len(stream))

	x := executor{port: e.port, metrics: e.config.Metrics, stats: &e.stats}
	dec := cdo.NewDecoder(stream)
	for decoded := 1; ; decoded++ {
		cmd, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if cmd.Op == cdo.OpEnd {
			break
		}
		if err := x.run(cmd, cmd.Payload); err != nil {
			return commandError(cmd, err)
		}
		if decoded%directProgressInterval == 0 {
			e.config.reportProgress(Progress{
				Phase:         PhaseDirect,
				BytesConsumed: dec.Offset(),
				TotalBytes:    len(stream),
				Percentage:    percentage(dec.Offset(), len(stream)),
				Commands:      e.stats.Commands,
				ElapsedTime:   time.Since(start),
			})
		}
	}

	e.config.reportProgress(Progress{
		Phase:         PhaseComplete,
		BytesConsumed: dec.Offset(),
		TotalBytes:    len(stream),
		Percentage:    100,
		Commands:      e.stats.Commands,
		ElapsedTime:   time.Since(start),
	})
	return nil
}
