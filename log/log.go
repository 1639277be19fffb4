// Package log configures structured logging (slog) for the host SDK.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// HandlerOption configures the logger.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Level
	addSource bool
	writer    io.Writer
	json      bool
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level:  slog.LevelInfo,
		writer: os.Stderr,
	}
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithWriter sets the output destination. Default is stderr.
func WithWriter(w io.Writer) HandlerOption {
	return func(c *handlerConfig) {
		c.writer = w
	}
}

// WithJSON switches output from text to JSON records.
func WithJSON(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.json = enabled
	}
}

// New builds a logger with the given options.
func New(opts ...HandlerOption) *slog.Logger {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     cfg.level,
		AddSource: cfg.addSource,
	}
	var handler slog.Handler
	if cfg.json {
		handler = slog.NewJSONHandler(cfg.writer, handlerOpts)
	} else {
		handler = slog.NewTextHandler(cfg.writer, handlerOpts)
	}
	return slog.New(handler)
}

// Setup builds a logger and installs it as the slog default.
func Setup(opts ...HandlerOption) *slog.Logger {
	logger := New(opts...)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}
