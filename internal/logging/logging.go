// Package logging configures the process-wide slog logger and adapts it to the
// Logger interfaces of the loader and transform packages.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

// Environment variables read by InitFromEnv.
const (
	EnvLevel = "AIECDO_LOG_LEVEL"
	EnvJSON  = "AIECDO_LOG_JSON"
)

// Options selects the handler built by Configure.
type Options struct {
	// Level is one of debug, info, warn or error (info if unrecognised)
	Level string

	// JSON selects slog.JSONHandler instead of slog.TextHandler
	JSON bool

	// Output defaults to os.Stderr
	Output io.Writer
}

var def atomic.Pointer[slog.Logger]

func init() {
	def.Store(newLogger(Options{}))
}

// Configure replaces the logger returned by L. It is safe to call while
// other goroutines are logging.
func Configure(opts Options) {
	def.Store(newLogger(opts))
}

func newLogger(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	cfg := &slog.HandlerOptions{Level: parseLevel(opts.Level)}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(out, cfg))
	}
	return slog.New(slog.NewTextHandler(out, cfg))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L returns the current process-wide logger.
func L() *slog.Logger {
	return def.Load()
}

// InitFromEnv configures the logger from AIECDO_LOG_LEVEL and AIECDO_LOG_JSON.
// An unparsable AIECDO_LOG_JSON leaves text output selected.
func InitFromEnv() {
	json, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(EnvJSON)))
	if err != nil {
		json = false
	}
	Configure(Options{Level: os.Getenv(EnvLevel), JSON: json})
}
