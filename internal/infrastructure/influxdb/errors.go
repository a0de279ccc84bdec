package influxdb

import "errors"

// Sentinel errors returned by the metrics client. Match with errors.Is.
var (
	// ErrDisabled is returned by Connect when influxdb.enabled is false.
	// Callers treat it as "run without metrics", not as a failure.
	ErrDisabled = errors.New("influxdb: disabled in configuration")

	// ErrConnectionFailed wraps the ping error from Connect.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrNotConnected is returned by HealthCheck after Close.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrUnhealthy is returned by HealthCheck when the server answers the
	// ping but reports itself unhealthy, or the ping fails.
	ErrUnhealthy = errors.New("influxdb: server unhealthy")

	// ErrWriteFailed wraps batch errors delivered to the SetOnError callback.
	// Query and connection points are written asynchronously, so a failed
	// batch never reaches the facade call that produced it.
	ErrWriteFailed = errors.New("influxdb: write failed")
)
