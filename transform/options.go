package transform

// Logger is an optional logging interface for the encoder.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Config holds the encoder configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// ZeroRunDetection enables flagging of all-zero DMA payloads
	ZeroRunDetection bool

	// DataMemoryLow and DataMemoryHigh bound (exclusively) the low 20 bits of a
	// DMA destination that count as clearable tile data memory
	DataMemoryLow  uint32
	DataMemoryHigh uint32
}

// Default data memory window: 0 < dest&0xFFFFF < 64 KiB.
const (
	DefaultDataMemoryLow  = 0
	DefaultDataMemoryHigh = 0x10000

	tileOffsetMask = 0xFFFFF
)

func defaultConfig() Config {
	return Config{
		ZeroRunDetection: true,
		DataMemoryLow:    DefaultDataMemoryLow,
		DataMemoryHigh:   DefaultDataMemoryHigh,
	}
}

// Option is a functional option for configuring the Encoder.
type Option func(*Config)

// WithLogger sets a logger for encoder operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithZeroRunDetection enables or disables the zero-run flag.
// Default is true.
func WithZeroRunDetection(enabled bool) Option {
	return func(c *Config) {
		c.ZeroRunDetection = enabled
	}
}

// WithDataMemoryWindow sets the exclusive bounds on dest&0xFFFFF for which an
// all-zero DMA payload is flagged. Ignored unless low < high.
//
// Example:
//
//	img, err := transform.Encode(buf, transform.WithDataMemoryWindow(0, 0x8000))
func WithDataMemoryWindow(low, high uint32) Option {
	return func(c *Config) {
		if low < high {
			c.DataMemoryLow = low
			c.DataMemoryHigh = high
		}
	}
}

func (c Config) inDataMemory(dest uint64) bool {
	off := uint32(dest & tileOffsetMask)
	return c.DataMemoryLow < off && off < c.DataMemoryHigh
}
