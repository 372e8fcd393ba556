package loader

import "time"

// Load phases reported in Progress.Phase.
const (
	PhaseStreaming = "streaming"
	PhaseDirect    = "direct"
	PhaseComplete  = "complete"
)

// Progress contains information about a load in progress.
// Passed to ProgressCallback during load operations.
type Progress struct {
	// Phase describes the current operation phase:
	//   "streaming" - StreamEngine finished a refill
	//   "direct"    - DirectEngine is walking the stream
	//   "complete"  - Load completed successfully
	Phase string

	// BytesConsumed is the number of command bytes processed so far
	BytesConsumed int

	// TotalBytes is the command zone (or command stream) length
	TotalBytes int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// Commands is the number of hardware commands executed so far
	Commands int

	// Refills is the number of cache refills so far (StreamEngine only)
	Refills int

	// ElapsedTime is the time elapsed since the load started
	ElapsedTime time.Duration
}

// ProgressCallback is called during a load to report progress.
// Implementations should return quickly to avoid stalling the load.
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the engines.
// This allows integration with any logging framework.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

func percentage(done, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(done) / float64(total) * 100
}
