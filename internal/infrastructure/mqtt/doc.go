// Package mqtt provides the broker transport for rangeview.
//
// This package manages:
//   - One connection attempt per Connect call (paho's own retry loops are off)
//   - A single concrete topic subscription per connection
//   - Last Will and Testament (LWT) for offline detection
//   - An ordered event stream for connection changes and messages
//
// # Architecture
//
// The transport does not decide when to reconnect. The caller starts every
// attempt and reacts to the events:
//
//	Connect ──► EventConnected ──► Subscribe ──► EventSubscribed, EventMessage...
//	                  │
//	                  └── connection drops ──► EventDisconnected
//
// Paho callbacks only enqueue events. Message events never block, so a slow
// consumer cannot stall the paho router.
//
// # Status Topic
//
// The client's liveness is kept retained on clients/<clientId>/status:
// "online" after each successful connect, "offline" on a graceful
// Disconnect, and "offline" as the last will on an unclean one.
//
// # Security Considerations
//
//   - TLS (cfg.Broker.TLS=true) uses TLS 1.2 or later
//   - Credentials are passed to the broker only; they are never logged
//
// # Usage
//
//	client := mqtt.New(cfg.MQTT)
//	defer client.Close()
//
//	if err := client.Connect(ctx); err != nil {
//	    var refused *mqtt.ConnectError
//	    if errors.As(err, &refused) {
//	        log.Printf("broker refused: code %d", refused.Code)
//	    }
//	}
//
//	for ev := range client.Events() {
//	    switch ev.Kind {
//	    case mqtt.EventConnected:
//	        client.Subscribe("sensor/distance", 0)
//	    case mqtt.EventMessage:
//	        log.Printf("%s = %s", ev.Topic, ev.Payload)
//	    }
//	}
package mqtt
