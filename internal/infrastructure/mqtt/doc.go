// Package mqtt provides MQTT publishing for the database facade.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Topics
//
//	dbfacade/system/status                     retained, carries the LWT
//	dbfacade/database/{name}/status            retained connection status
//	dbfacade/database/{name}/event/{type}      facade events
//
// # Security Considerations
//
//   - TLS should be enabled for brokers outside localhost (cfg.Broker.TLS=true)
//   - Payloads never contain database credentials
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.DatabaseEvent("bot", "reconnected")
//	client.PublishEvent(topic, []byte(`{"mode":"sync"}`))
package mqtt
