// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	// Set global log level
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	// Configure output
	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	// Create logger with timestamp
	logger := zerolog.New(output).With().Timestamp().Logger()

	// Set as global logger
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Overlay phase transitions (cycle id, phase)
//   - Cache operations (hit/miss, key, TTL)
//   - Discarded stale fetch results
//   - Scroll range recomputes and anchor decisions
//
// Info: Normal operation events
//   - Feed pages loaded (page, item count)
//   - Application startup/shutdown
//   - Configuration summary at startup
//
// Warn: Warning conditions that don't prevent operation
//   - Fetch failures recorded for retry
//   - Overlay hard timeouts
//   - Cache write failures (value still served)
//   - Recovered event handler panics
//
// Error: Error conditions requiring attention
//   - Cache backend unavailability
//   - Configuration errors
//
// Context Fields:
//   - component: Emitting component (paging, readiness, overlay, ...)
//   - page: Feed page number
//   - batch_size: Page size requested from the source
//   - items: Item count in a page or list
//   - request_id: Fetch request identity for staleness checks
//   - cycle_id: Overlay show/hide cycle identity
//   - phase: Overlay phase name
//   - route: Route key for navigation events
//   - key: Cache key
//   - ttl: Cache entry TTL
//   - duration: Fetch duration
