package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementQuery      = "db_query"
	MeasurementConnection = "db_connection"
)

// WriteQueryMetric records one facade statement.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - database: Database name (tag)
//   - mode: Facade mode, "sync" or "pooled" (tag)
//   - rows: Rows returned
//   - duration: Wall time including any reconnect and retry
//   - failed: Whether the statement returned an error
//
// Example:
//
//	client.WriteQueryMetric("bot", "sync", 3, 2*time.Millisecond, false)
func (c *Client) WriteQueryMetric(database, mode string, rows int, duration time.Duration, failed bool) {
	c.writePoint(MeasurementQuery,
		map[string]string{
			"database": database,
			"mode":     mode,
		},
		map[string]interface{}{
			"rows":        rows,
			"duration_ms": float64(duration) / float64(time.Millisecond),
			"failed":      failed,
		},
		time.Now(),
	)
}

// WriteConnectionEvent records a connection lifecycle event as a counter
// point, so reconnect rates can be graphed per database.
//
// Parameters:
//   - database: Database name (tag)
//   - mode: Facade mode (tag)
//   - event: Event type, e.g. "reconnected" (tag)
//   - at: When the event happened
func (c *Client) WriteConnectionEvent(database, mode, event string, at time.Time) {
	c.writePoint(MeasurementConnection,
		map[string]string{
			"database": database,
			"mode":     mode,
			"event":    event,
		},
		map[string]interface{}{
			"count": 1,
		},
		at,
	)
}

// writePoint queues a point when the client is connected.
func (c *Client) writePoint(measurement string, tags map[string]string, fields map[string]interface{}, ts time.Time) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, ts))
}
