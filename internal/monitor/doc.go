// Package monitor forwards database facade events to MQTT and InfluxDB.
//
// Lifecycle events (connected, connection_lost, reconnected,
// reconnect_failed) update a retained status topic per database and are
// counted in InfluxDB. Schema events are published as MQTT events only.
// Query events become InfluxDB latency points and are not published.
//
// Usage:
//
//	obs := monitor.New(mqttClient, influxClient, log)
//	defer obs.Close()
//
//	conn, err := database.NewSyncConnection(ctx, cfg, schema,
//	    database.Options{Logger: log, Observer: obs})
package monitor
