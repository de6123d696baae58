package mqtt

import (
	"context"
)

// MessageHandler processes one received message. Each subscription calls
// its handler from a single goroutine, in delivery order, with a context
// bounded by ClientConfig.HandlerTimeout.
type MessageHandler func(ctx context.Context, topic string, payload []byte)

// Client is the broker connection used by the manager and the simulator.
type Client interface {
	// Start begins connecting in the background; see AwaitConnection.
	Start(ctx context.Context) error

	Disconnect(ctx context.Context)

	Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error

	// Subscribe registers handler for a filter, which may use wildcards or a
	// $share/{group}/ prefix. Filters are re-subscribed after every reconnect.
	Subscribe(ctx context.Context, topic string, qos int, handler MessageHandler) error

	Unsubscribe(ctx context.Context, topic string) error

	// AwaitConnection blocks until the first connection is up or ctx ends.
	AwaitConnection(ctx context.Context) error

	IsConnected() bool
}
