// Package telemetry runs the sensor feed: it owns the broker connection
// lifecycle and turns transport events into session state.
//
// # Architecture
//
// A Client ties together three parts it does not own the logic of:
//
//	Transport           one connection attempt per Connect, events out
//	reconnect.Controller decides when an attempt may start
//	session.Controller   gates and stores readings, builds snapshots
//
// Two goroutines run while the Client is started:
//
//	pump      reads transport events in arrival order and applies them
//	watchdog  ticks at the frame rate: fires due reconnects, evaluates
//	          staleness, hands each frame to Options.OnFrame
//
// Connect attempts run in their own goroutine so neither loop blocks on the
// network. The Connecting state guarantees at most one attempt at a time.
//
// # Shutdown
//
// Close shuts the reconnect controller down first, so a disconnect always
// wins over an attempt that is still in flight, then stops both loops, waits
// for the attempt and closes the transport.
//
// # Usage
//
//	client := telemetry.New(transport, link, sess, telemetry.Options{
//	    Topic:        "sensor/distance",
//	    TickInterval: 100 * time.Millisecond,
//	})
//	client.SetLogger(logger)
//	if err := client.Start(ctx); err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	snap := client.Snapshot(time.Now())
package telemetry
