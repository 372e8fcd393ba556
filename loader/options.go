package loader

// Config holds the engine configuration.
type Config struct {
	// ProgressCallback is called during a load to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Metrics receives load counters (optional)
	Metrics *Metrics

	// TrustZeroedMemory lets StreamEngine skip DMA records flagged as zero runs.
	// Only set it when the destination memory is known to be zeroed.
	TrustZeroedMemory bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{}
}

// Option is a functional option for configuring an engine.
type Option func(*Config)

// WithProgressCallback sets a callback function to track load progress.
//
// Example:
//
//	eng := loader.NewDirectEngine(port,
//	    loader.WithProgressCallback(func(p loader.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the engine operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics records load counters in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// WithTrustZeroedMemory enables or disables skipping zero-run DMA records.
// Default is false.
func WithTrustZeroedMemory(trust bool) Option {
	return func(c *Config) {
		c.TrustZeroedMemory = trust
	}
}

func (c *Config) logDebug(msg string, keysAndValues ...interface{}) {
	if c.Logger != nil {
		c.Logger.Debug(msg, keysAndValues...)
	}
}

func (c *Config) logInfo(msg string, keysAndValues ...interface{}) {
	if c.Logger != nil {
		c.Logger.Info(msg, keysAndValues...)
	}
}

func (c *Config) logError(msg string, keysAndValues ...interface{}) {
	if c.Logger != nil {
		c.Logger.Error(msg, keysAndValues...)
	}
}

func (c *Config) reportProgress(p Progress) {
	if c.ProgressCallback != nil {
		c.ProgressCallback(p)
	}
}
