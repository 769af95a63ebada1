package ports

import "context"

// EventPublisher is the transport side of the event bus: it hands one staged
// message to the broker. Implementations must respect the context deadline
// so a slow broker cannot stall the relay, and must return an error (not
// drop) on failed delivery so the relay can retry or dead-letter.
type EventPublisher interface {
	// Publish sends a payload on a topic. Key selects the partition so
	// events of one aggregate stay ordered on the bus.
	Publish(ctx context.Context, topic string, key string, payload []byte) error
}
