package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup returns a logger writing to stderr. format "text" gives a
// human-friendly console; anything else gives JSON lines.
func Setup(format string) zerolog.Logger {
	return New(os.Stderr, format)
}

// New is Setup with an explicit destination.
func New(w io.Writer, format string) zerolog.Logger {
	if format == "text" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Str("service", "chargeflow").Logger()
}

// Phase returns a child logger tagged with a batch phase.
func Phase(log zerolog.Logger, phase string) zerolog.Logger {
	return log.With().Str("phase", phase).Logger()
}
