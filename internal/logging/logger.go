// Package logging builds the zerolog loggers used by the command line tool.
package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to w. Debug messages are only written
// when verbose is set.
func New(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// RetryLogger adapts a zerolog logger to the leveled logger interface used by
// go-retryablehttp. Info and debug chatter is dropped unless the logger is at
// debug level.
type RetryLogger struct {
	Log zerolog.Logger
}

func (l RetryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.Log.Error().Fields(keysAndValues).Msg(msg)
}

func (l RetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.Log.Warn().Fields(keysAndValues).Msg(msg)
}

func (l RetryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l RetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.Log.Debug().Fields(keysAndValues).Msg(msg)
}
