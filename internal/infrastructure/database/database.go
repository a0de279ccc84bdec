package database

import (
	"log/slog"
	"time"
)

// Logger is the logging surface used by the facades.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options carries the optional collaborators of a facade.
type Options struct {
	// Logger receives connection and schema logs. Defaults to discarding.
	Logger Logger

	// Observer receives lifecycle and query events. Optional.
	Observer Observer
}

func (o Options) logger() Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// emitter stamps and forwards events for one facade.
type emitter struct {
	mode     string
	database string
	observer Observer
}

func (e emitter) emit(ev Event) {
	if e.observer == nil {
		return
	}
	ev.Mode = e.mode
	ev.Database = e.database
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	e.observer.Observe(ev)
}
