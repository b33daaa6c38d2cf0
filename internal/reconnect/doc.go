// Package reconnect implements the broker connection state machine and its
// bounded exponential backoff policy.
//
// The Controller never performs I/O and never reads the wall clock: callers
// pass the current time into every transition and perform the actual
// connect attempt themselves when Begin or Due report that one should start.
// This keeps the watchdog tick non-blocking and makes every transition
// deterministic under test.
//
// # States
//
//	Disconnected --Begin--> Connecting
//	Connecting   --Connected(rc=0)--> Connected        (backoff reset)
//	Connecting   --Connected(rc≠0) / ConnectFailed--> BackingOff
//	Connected    --Lost--> BackingOff
//	BackingOff   --Due (deadline passed)--> Connecting
//	any          --Shutdown--> Disconnected            (terminal for the controller)
//
// A failed retry doubles the backoff up to Policy.Max. The first failure
// after a fresh start or a successful connection waits Policy.Initial.
//
// Thread Safety: all methods are safe for concurrent use.
package reconnect
