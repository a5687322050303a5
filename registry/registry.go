package registry

import "errors"

// Common errors.
var (
	ErrClosed       = errors.New("registry closed")
	ErrInvalidTopic = errors.New("invalid topic")
)

// Message represents a message delivered to a topic subscriber.
type Message struct {
	// Topic the message was published on.
	Topic string

	// Data is the message payload, delivered unchanged.
	Data []byte
}

// Handler receives messages published on a subscribed topic.
type Handler func(msg *Message)

// Registry is a topic-addressed event bus with broadcast fan-out.
// All subscribers of a topic receive all messages published on it.
type Registry interface {
	// Subscribe registers h to receive every message subsequently
	// published on topic.
	Subscribe(topic string, h Handler) (Subscription, error)

	// Publish delivers data to every current subscriber of topic.
	// Messages published with zero subscribers are lost.
	Publish(topic string, data []byte) error

	// Close shuts down the registry and removes all subscriptions.
	Close() error
}

// Subscription represents one active (topic, handler) registration.
type Subscription interface {
	// Unsubscribe removes exactly this registration.
	// Safe to call more than once.
	Unsubscribe() error
}

// Config holds common registry configuration.
type Config struct {
	// BufferSize for networked registries' inbound queues.
	// Ignored by MemoryRegistry, which delivers synchronously.
	// Default: 256
	BufferSize int
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize: 256,
	}
}

// ValidateTopic checks if a topic name is valid.
func ValidateTopic(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	return nil
}
