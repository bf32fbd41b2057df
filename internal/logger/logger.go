// Package logger builds the zerolog logger shared by every component.
// Output is one JSON object per line with the timestamp under "ts",
// rendered in the application's configured location.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimestampFieldName = "ts"
	zerolog.MessageFieldName = "msg"
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// New returns a logger writing to w at the given level ("debug", "info", ...).
// Unknown levels fall back to info. A nil loc means UTC.
func New(w io.Writer, level string, loc *time.Location) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if loc == nil {
		loc = time.UTC
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).
		Level(lvl).
		Hook(tsHook{loc: loc}).
		With().
		Logger()
}

// tsHook stamps events in loc; zerolog's own Timestamp() always uses the
// process-global TimestampFunc.
type tsHook struct {
	loc *time.Location
}

func (h tsHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str(zerolog.TimestampFieldName, time.Now().In(h.loc).Format(time.RFC3339Nano))
}

// Nop is a logger that discards everything. Handy as a default in
// constructors and tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
