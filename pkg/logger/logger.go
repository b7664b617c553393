package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Pretty output is for local runs; everything
// else is line-delimited JSON on stdout.
func New(level string, pretty bool) zerolog.Logger {
	if pretty {
		return NewWithWriter(level, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter builds a logger on the given writer; tests pass a buffer.
// Unrecognized levels fall back to info.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
