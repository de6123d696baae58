package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/autopeer-io/sensorlink/internal/pkg/mqtt/adapter"
	"github.com/autopeer-io/sensorlink/internal/transport/codec"
	"github.com/autopeer-io/sensorlink/pkg/log"
	"github.com/autopeer-io/sensorlink/pkg/mqtt"
	mqtttopic "github.com/autopeer-io/sensorlink/pkg/mqtt/topic"
)

// Hub is the device side of the MQTT link: it subscribes to the downstream
// topics of one endpoint and publishes upstream messages for it.
type Hub struct {
	endpoint string
	qos      int

	mc     mqtt.Client
	topics *mqtttopic.Builder
	routes map[string]adapter.HandlerFunc
}

func NewHub(endpoint string, client mqtt.Client, builder *mqtttopic.Builder, qos int) *Hub {
	return &Hub{
		endpoint: endpoint,
		qos:      qos,
		mc:       client,
		topics:   builder,
		routes:   make(map[string]adapter.HandlerFunc),
	}
}

// Register routes the downstream segment to handler. It must be called
// before Start.
func (b *Hub) Register(segment string, handler adapter.HandlerFunc) {
	b.routes[segment] = handler
}

// Send encodes msg and publishes it on the upstream segment.
func (b *Hub) Send(ctx context.Context, segment string, msg any) error {
	payload, err := codec.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %T: %w", msg, err)
	}
	return b.mc.Publish(ctx, b.topics.Build(segment, b.endpoint), b.qos, false, payload)
}

func (b *Hub) IsConnected() bool {
	return b.mc.IsConnected()
}

// Start connects and subscribes to every registered segment.
func (b *Hub) Start(ctx context.Context) error {
	if err := b.mc.Start(ctx); err != nil {
		return err
	}

	if err := b.mc.AwaitConnection(ctx); err != nil {
		return err
	}

	for segment, handler := range b.routes {
		topic := b.topics.Build(segment, b.endpoint)
		err := b.mc.Subscribe(ctx, topic, b.qos, func(c context.Context, _ string, p []byte) {
			if handleErr := handler(c, b.endpoint, p); handleErr != nil {
				log.Error(handleErr, "Handler execution failed", "topic", topic)
			}
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (b *Hub) Stop() {
	log.Info("Disconnecting MQTT client...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b.mc.Disconnect(ctx)
}
