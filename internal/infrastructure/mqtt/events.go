package mqtt

// EventKind identifies what happened on the connection.
type EventKind int

const (
	// EventConnected is emitted when the broker accepts the connection.
	EventConnected EventKind = iota + 1

	// EventDisconnected is emitted when an established connection is lost.
	// It is not emitted for a Disconnect requested by the caller.
	EventDisconnected

	// EventMessage carries one received message.
	EventMessage

	// EventSubscribed is emitted when the broker acknowledges a subscription.
	EventSubscribed
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventMessage:
		return "message"
	case EventSubscribed:
		return "subscribed"
	default:
		return "unknown"
	}
}

// Event is one item on the Client's event stream.
type Event struct {
	Kind EventKind

	// Code is the CONNACK return code (EventConnected).
	Code byte

	// Err is the cause of a lost connection (EventDisconnected).
	Err error

	// Topic and Payload are set for EventMessage; Topic and QoS for EventSubscribed.
	Topic   string
	Payload []byte
	QoS     byte
}
