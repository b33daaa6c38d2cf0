package mqtt

import (
	"fmt"
)

const maxPayloadSize = 1 << 20

// Publish sends payload to a concrete topic and waits, bounded by the publish
// timeout, for paho to complete delivery at the requested QoS. Oversized
// payloads, QoS above 2 and wildcard topics are rejected before sending.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := ValidateTopic(topic); err != nil {
		return err
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	cl := c.current()
	if cl == nil || !cl.IsConnected() {
		return ErrNotConnected
	}

	token := cl.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}
