package mqtt

import (
	"fmt"
	"strings"
)

// TopicPrefixClients is the base for per-client status topics.
const TopicPrefixClients = "clients"

// Payloads published on the client status topic.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Topics provides builders for the topics this client publishes.
type Topics struct{}

// ClientStatus returns the retained liveness topic of a client. The broker
// publishes the last will "offline" here on an unclean disconnect.
//
// Example: clients/distance_display_client/status
func (Topics) ClientStatus(clientID string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixClients, clientID)
}

// ValidateTopic checks that topic names one concrete topic.
// Empty topics and wildcard filters (+, #) are rejected.
func ValidateTopic(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: topic cannot be empty", ErrInvalidTopic)
	}
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("%w: %q contains a wildcard", ErrInvalidTopic, topic)
	}
	return nil
}
