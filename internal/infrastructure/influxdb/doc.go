// Package influxdb provides InfluxDB connectivity for facade metrics.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, metric writing, and health monitoring.
//
// # Purpose
//
// This package records time-series data for:
//   - Statement latency and row counts (measurement db_query)
//   - Connection lifecycle events such as reconnects (measurement db_connection)
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    Enabled: true,
//	    URL:     "http://localhost:8086",
//	    Token:   "your-token",
//	    Org:     "dbfacade",
//	    Bucket:  "metrics",
//	}
//
//	client, err := influxdb.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteQueryMetric("bot", "sync", 1, 3*time.Millisecond, false)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking; batch errors are delivered to the
// SetOnError callback. Connection and health check errors are returned directly.
package influxdb
