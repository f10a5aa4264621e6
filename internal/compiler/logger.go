package compiler

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger provides verbose diagnostics for optimization sweeps and test
// runs. A nil *Logger is valid and silent, so callers never need to guard
// their log calls.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger returns a logger writing human-readable output to stderr, or
// nil when verbose mode is off.
func NewLogger(enabled bool) *Logger {
	if !enabled {
		return nil
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// SetOutput redirects log output, mainly for tests.
func (l *Logger) SetOutput(w io.Writer) {
	if l == nil {
		return
	}
	l.zl = l.zl.Output(w)
}

// Log emits a formatted debug message.
func (l *Logger) Log(format string, args ...any) {
	if l == nil {
		return
	}
	l.zl.Debug().Msgf(format, args...)
}

// Section marks the start of a named phase.
func (l *Logger) Section(name string) {
	if l == nil {
		return
	}
	l.zl.Debug().Str("section", name).Msg("start")
}
