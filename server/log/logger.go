// Package log provides the logger the server writes to.
package log

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

type (
	// Logger writes formatted messages.  Most of the server only needs Printf, so it is not tied to a logging library.
	Logger interface {
		// Printf writes the formatted string with values to the logger.
		// Arguments are handled in the manner of fmt.Printf.
		Printf(format string, v ...interface{})
	}

	// LeveledLogger is a Logger that can also write warnings and errors.
	LeveledLogger interface {
		Logger
		// Warnf writes the formatted string at the warning level.
		Warnf(format string, v ...interface{})
		// Errorf writes the formatted string at the error level.
		Errorf(format string, v ...interface{})
	}

	// Zerolog adapts a zerolog.Logger to the LeveledLogger interface.
	// Printf writes at the info level.
	Zerolog struct {
		zerolog.Logger
	}
)

// New creates a Logger that writes json lines to w.
// If pretty is true, the output is formatted for terminals instead.
func New(w io.Writer, level string, pretty bool) (*Zerolog, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w}
	}
	zl := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	l := Zerolog{
		Logger: zl,
	}
	return &l, nil
}

var _ LeveledLogger = Zerolog{}

// Printf implements the Logger interface.
func (l Zerolog) Printf(format string, v ...interface{}) {
	l.Logger.Info().Msgf(format, v...)
}

// Warnf implements the LeveledLogger interface.
func (l Zerolog) Warnf(format string, v ...interface{}) {
	l.Logger.Warn().Msgf(format, v...)
}

// Errorf implements the LeveledLogger interface.
func (l Zerolog) Errorf(format string, v ...interface{}) {
	l.Logger.Error().Msgf(format, v...)
}

// Component creates a Logger with the component name attached to each message.
func (l Zerolog) Component(name string) *Zerolog {
	l2 := Zerolog{
		Logger: l.Logger.With().Str("component", name).Logger(),
	}
	return &l2
}
