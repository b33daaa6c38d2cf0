package mqtt

import (
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// subscribeFailure is the SUBACK code for a refused subscription.
const subscribeFailure = 0x80

// Subscribe subscribes to one concrete topic on the current connection.
//
// Each received message is delivered as an EventMessage on Events(). On
// SUBACK an EventSubscribed carrying the granted QoS is emitted as well.
// Subscriptions do not survive a reconnect; subscribe again after every
// EventConnected.
//
// It returns the QoS the broker granted. Errors are ErrInvalidTopic,
// ErrInvalidQoS, ErrNotConnected, or wrap ErrSubscribeFailed.
func (c *Client) Subscribe(topic string, qos byte) (byte, error) {
	// Validate inputs
	if err := ValidateTopic(topic); err != nil {
		return 0, err
	}
	if qos > maxQoS {
		return 0, ErrInvalidQoS
	}

	// Check connection state
	cl := c.current()
	if cl == nil || !cl.IsConnected() {
		return 0, ErrNotConnected
	}

	token := cl.Subscribe(topic, qos, c.handleMessage)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return 0, fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	granted := qos
	if st, ok := token.(*pahomqtt.SubscribeToken); ok {
		if g, found := st.Result()[topic]; found {
			granted = g
		}
	}
	if granted == subscribeFailure {
		return 0, fmt.Errorf("%w: broker refused %q", ErrSubscribeFailed, topic)
	}

	c.emitMessage(Event{Kind: EventSubscribed, Topic: topic, QoS: granted})
	return granted, nil
}

// handleMessage turns a paho message into an EventMessage, with panic recovery.
func (c *Client) handleMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	defer func() {
		if r := recover(); r != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Error("MQTT handler panic recovered",
					"topic", msg.Topic(),
					"panic", r,
				)
			}
		}
	}()

	c.emitMessage(Event{
		Kind:    EventMessage,
		Topic:   msg.Topic(),
		Payload: msg.Payload(),
		QoS:     msg.Qos(),
	})
}
