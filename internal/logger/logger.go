// Package logger builds the zerolog logger used by the fetch command.
package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w at the given level. An unknown level falls
// back to info. If pretty is true, output is formatted for human readability
// rather than as JSON.
func New(level string, pretty bool, w io.Writer) zerolog.Logger {
	if pretty {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		zLevel = zerolog.InfoLevel
	}

	return zerolog.New(w).With().Timestamp().Logger().Level(zLevel)
}
