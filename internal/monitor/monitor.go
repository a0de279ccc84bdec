package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-dbfacade/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-dbfacade/internal/infrastructure/mqtt"
)

// eventQueueSize is the buffer between facade calls and the publishing worker.
const eventQueueSize = 256

// Connection status values published on the retained database status topic.
const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// Publisher is the MQTT surface the monitor needs. Satisfied by *mqtt.Client.
type Publisher interface {
	PublishEvent(topic string, payload []byte) error
	PublishRetained(topic string, payload []byte) error
}

// MetricWriter is the InfluxDB surface the monitor needs. Satisfied by *influxdb.Client.
type MetricWriter interface {
	WriteQueryMetric(database, mode string, rows int, duration time.Duration, failed bool)
	WriteConnectionEvent(database, mode, event string, at time.Time)
}

// Logger is the logging surface used by the monitor.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Observer is a database.Observer that forwards facade events to MQTT and
// InfluxDB.
//
// Observe never blocks: events are queued and handled by a single worker in
// arrival order. When the queue is full the event is dropped and counted.
//
// Thread Safety:
//   - Observe is safe for concurrent use.
//   - Close may be called once the facades are closed; later events are dropped.
type Observer struct {
	publisher Publisher
	metrics   MetricWriter
	logger    Logger

	queue  chan database.Event
	done   chan struct{}
	closed bool
	mu     sync.RWMutex
	wg     sync.WaitGroup

	handled atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64
}

// New starts an Observer. publisher and metrics may each be nil to disable
// that sink; a nil logger discards.
func New(publisher Publisher, metrics MetricWriter, logger Logger) *Observer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	o := &Observer{
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		queue:     make(chan database.Event, eventQueueSize),
		done:      make(chan struct{}),
	}

	o.wg.Add(1)
	go o.worker()

	return o
}

// Observe queues e for publishing.
func (o *Observer) Observe(e database.Event) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		o.dropped.Add(1)
		return
	}

	select {
	case o.queue <- e:
	default:
		o.dropped.Add(1)
		o.logger.Warn("monitor queue full, dropping event", "event", e.Type, "database", e.Database)
	}
}

// Close stops the worker after it has handled every queued event.
func (o *Observer) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	close(o.done)
	o.mu.Unlock()

	o.wg.Wait()
}

// Stats reports how many events were handled, dropped, and failed to publish.
func (o *Observer) Stats() (handled, dropped, failed uint64) {
	return o.handled.Load(), o.dropped.Load(), o.failed.Load()
}

func (o *Observer) worker() {
	defer o.wg.Done()

	for {
		select {
		case e := <-o.queue:
			o.handle(e)
		case <-o.done:
			o.drain()
			return
		}
	}
}

// drain handles whatever is still queued at shutdown.
func (o *Observer) drain() {
	for {
		select {
		case e := <-o.queue:
			o.handle(e)
		default:
			return
		}
	}
}

func (o *Observer) handle(e database.Event) {
	defer func() {
		if r := recover(); r != nil {
			o.failed.Add(1)
			o.logger.Error("monitor handler panic", "event", e.Type, "panic", fmt.Sprint(r))
		}
	}()
	defer o.handled.Add(1)

	if e.Type == database.EventQuery {
		if o.metrics != nil {
			o.metrics.WriteQueryMetric(e.Database, e.Mode, e.Rows, e.Duration, e.Err != nil)
		}
		return
	}

	if status, ok := connectionStatus(e.Type); ok {
		if o.metrics != nil {
			o.metrics.WriteConnectionEvent(e.Database, e.Mode, string(e.Type), e.Time)
		}
		o.publish(e, mqtt.Topics{}.DatabaseStatus(e.Database), buildStatusPayload(e, status), true)
	}

	o.publish(e, mqtt.Topics{}.DatabaseEvent(e.Database, string(e.Type)), buildEventPayload(e), false)
}

func (o *Observer) publish(e database.Event, topic string, payload []byte, retained bool) {
	if o.publisher == nil {
		return
	}

	var err error
	if retained {
		err = o.publisher.PublishRetained(topic, payload)
	} else {
		err = o.publisher.PublishEvent(topic, payload)
	}
	if err != nil {
		o.failed.Add(1)
		o.logger.Warn("publishing database event failed",
			"event", e.Type,
			"topic", topic,
			"error", err,
		)
	}
}

// connectionStatus maps lifecycle events to the retained status they imply.
func connectionStatus(t database.EventType) (string, bool) {
	switch t {
	case database.EventConnected, database.EventReconnected:
		return StatusConnected, true
	case database.EventConnectionLost, database.EventReconnectFailed:
		return StatusDisconnected, true
	default:
		return "", false
	}
}

// eventPayload is the JSON body of event messages.
type eventPayload struct {
	Event     string   `json:"event"`
	Mode      string   `json:"mode"`
	Database  string   `json:"database"`
	Table     string   `json:"table,omitempty"`
	Created   []string `json:"created,omitempty"`
	Error     string   `json:"error,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// statusPayload is the JSON body of retained status messages.
type statusPayload struct {
	Status    string `json:"status"`
	Mode      string `json:"mode"`
	Database  string `json:"database"`
	Since     string `json:"since"`
	LastError string `json:"last_error,omitempty"`
}

func buildEventPayload(e database.Event) []byte {
	p := eventPayload{
		Event:     string(e.Type),
		Mode:      e.Mode,
		Database:  e.Database,
		Table:     e.Table,
		Created:   e.Created,
		Timestamp: e.Time.UTC().Format(time.RFC3339Nano),
	}
	if e.Err != nil {
		p.Error = e.Err.Error()
	}
	//nolint:errchkjson // Plain string fields always marshal
	b, _ := json.Marshal(p)
	return b
}

func buildStatusPayload(e database.Event, status string) []byte {
	p := statusPayload{
		Status:   status,
		Mode:     e.Mode,
		Database: e.Database,
		Since:    e.Time.UTC().Format(time.RFC3339Nano),
	}
	if e.Err != nil {
		p.LastError = e.Err.Error()
	}
	//nolint:errchkjson // Plain string fields always marshal
	b, _ := json.Marshal(p)
	return b
}
