package database

import "time"

// EventType identifies a connection lifecycle or query event.
type EventType string

// Event types emitted to an Observer.
const (
	EventConnected       EventType = "connected"
	EventConnectionLost  EventType = "connection_lost"
	EventReconnected     EventType = "reconnected"
	EventReconnectFailed EventType = "reconnect_failed"
	EventTableCreated    EventType = "table_created"
	EventSchemaEnsured   EventType = "schema_ensured"
	EventQuery           EventType = "query"
)

// Facade modes reported in Event.Mode.
const (
	ModeSync   = "sync"
	ModePooled = "pooled"
)

// Event describes something that happened to a facade.
type Event struct {
	Type     EventType
	Mode     string
	Database string
	Time     time.Time

	// Table is set for EventTableCreated.
	Table string

	// Created lists the tables created by the pass, for EventSchemaEnsured.
	Created []string

	// Rows and Duration are set for EventQuery.
	Rows     int
	Duration time.Duration

	// Err is the failure, if any.
	Err error
}

// Observer receives facade events. Observe is called synchronously on the
// calling goroutine and must not block.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }
