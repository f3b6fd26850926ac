package interfaces

import "context"

// PublisherInterface is the slice of a Pub/Sub topic publisher the SMS
// notifier needs.
type PublisherInterface interface {
	Publish(ctx context.Context, msg []byte, attributes map[string]string) error
}

// PubSubPublisherClientInterface hands out per-topic publishers and owns the
// underlying client connection.
type PubSubPublisherClientInterface interface {
	Publisher(topic string) PublisherInterface
	Close() error
}
