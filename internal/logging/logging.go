// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger construction
type Options struct {
	// Level is trace, debug, info, warn or error
	Level string
	// Format is "console" or "json"
	Format string
	// Out defaults to os.Stderr so command output on stdout stays clean
	Out io.Writer
}

// New builds a logger and sets the global zerolog level
func New(opts Options) (zerolog.Logger, error) {
	level := zerolog.WarnLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimestampFieldName = "timestamp"

	w := opts.Out
	if w == nil {
		w = os.Stderr
	}
	switch opts.Format {
	case "", "console":
		cw := zerolog.NewConsoleWriter()
		cw.TimeFormat = time.DateTime
		cw.Out = w
		w = cw
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", opts.Format)
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger(), nil
}
