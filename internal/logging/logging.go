// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Params selects level, format and destinations.
type Params struct {
	Level  string
	Format string // "text" or "json"
	File   string // rotated log file; empty logs to stdout only
	Stdout bool   // also log to stdout when File is set
	Stderr bool   // use stderr in place of stdout
}

// Setup returns a logger and a closer for the rotated log file. The closer is
// never nil.
func Setup(p Params) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(p.Level)
	if err != nil {
		return nil, nil, err
	}

	var console io.Writer = os.Stdout
	if p.Stderr {
		console = os.Stderr
	}
	var (
		out    io.Writer = console
		closer io.Closer = nopCloser{}
	)
	if p.File != "" {
		file := p.File
		if !strings.HasSuffix(file, ".log") {
			file += ".log"
		}
		rotated := &lumberjack.Logger{
			Filename:  file,
			MaxSize:   50, // megabytes
			LocalTime: false,
			Compress:  true,
		}
		closer = rotated
		out = rotated
		if p.Stdout {
			out = NewCombinedWriter(console, rotated)
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(p.Format) {
	case "", "text":
		handler = slog.NewTextHandler(out, opts)
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", p.Format)
	}
	return slog.New(handler), closer, nil
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}

// CombinedWriter writes to every writer, collecting their errors.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{Writers: writers}
}

func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var err error
	for _, w := range cw.Writers {
		if _, werr := w.Write(p); werr != nil {
			err = multierr.Combine(err, werr)
		}
	}
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
