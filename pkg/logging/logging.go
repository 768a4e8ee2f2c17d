package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level represents a log level.
type Level = slog.Level

// Log levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format represents the log output format.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level Level

	// Format is the output format (text or json).
	Format Format

	// Output is the writer to send logs to. Defaults to os.Stderr.
	Output io.Writer

	// File, when set, receives a JSON copy of every record, debug included,
	// whatever Level says.
	File string

	// AddSource adds source file and line to log entries.
	AddSource bool
}

// DefaultConfig returns sensible defaults for logging.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Format: FormatText,
		Output: os.Stderr,
	}
}

// New creates a new slog.Logger with the given configuration. If cfg.File
// cannot be opened the logger writes to Output only.
func New(cfg Config) *slog.Logger {
	logger, _, err := Open(cfg)
	if err != nil {
		return slog.New(newHandler(cfg.Output, cfg.Format, handlerOptions(cfg)))
	}
	return logger
}

// Open is New with an explicit error for an unopenable cfg.File. The returned
// closer releases the file; it is a no-op when File is empty.
func Open(cfg Config) (*slog.Logger, io.Closer, error) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	opts := handlerOptions(cfg)
	handler := newHandler(cfg.Output, cfg.Format, opts)

	if cfg.File == "" {
		return slog.New(handler), nopCloser{}, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	file := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: LevelDebug, AddSource: cfg.AddSource})
	return slog.New(teeHandler{console: handler, file: file}), f, nil
}

func handlerOptions(cfg Config) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}
}

func newHandler(w io.Writer, format Format, opts *slog.HandlerOptions) slog.Handler {
	if w == nil {
		w = os.Stderr
	}
	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	default:
		return slog.NewTextHandler(w, opts)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Nop returns a no-op logger that discards all output.
// Use this when a logger is required but logging is disabled.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel parses a log level string, case-insensitively.
// Valid values: "debug", "info", "warn", "warning", "error".
// Returns LevelInfo if the string is not recognized.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ParseFormat parses a log format string, case-insensitively.
// Valid values: "text", "json".
// Returns FormatText if the string is not recognized.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, "json") {
		return FormatJSON
	}
	return FormatText
}

// RequestIDKey is the attribute key used for request ids.
const RequestIDKey = "request_id"

// WithRequestID returns a logger that tags every record with id.
func WithRequestID(log *slog.Logger, id string) *slog.Logger {
	if id == "" {
		return log
	}
	return log.With(RequestIDKey, id)
}
