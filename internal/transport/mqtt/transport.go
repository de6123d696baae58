// Package mqtt carries device messages over an MQTT broker.
package mqtt

import (
	"context"
	"fmt"

	"github.com/autopeer-io/sensorlink/internal/device"
	"github.com/autopeer-io/sensorlink/internal/pkg/mqtt/paths"
	"github.com/autopeer-io/sensorlink/internal/transport/codec"
	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
	pkgmqtt "github.com/autopeer-io/sensorlink/pkg/mqtt"
	"github.com/autopeer-io/sensorlink/pkg/mqtt/topic"
)

var _ device.Transport = (*Transport)(nil)

// Transport publishes outbound device messages to {root}/{segment}/{endpoint}.
// The peer of an identity does not take part in addressing.
type Transport struct {
	client pkgmqtt.Client
	topics *topic.Builder
	qos    int
}

// NewTransport returns a Transport publishing through client.
func NewTransport(client pkgmqtt.Client, topics *topic.Builder, qos int) *Transport {
	return &Transport{
		client: client,
		topics: topics,
		qos:    qos,
	}
}

func (t *Transport) SendConfigurationRequest(ctx context.Context, id device.Identity, msg *mrsv1.DeviceConfiguration) error {
	return t.publish(ctx, paths.ConfigurationRequest, id, msg)
}

func (t *Transport) SendSubscriptionRequest(ctx context.Context, id device.Identity, msg *mrsv1.DeviceSubscriptionConfiguration) error {
	return t.publish(ctx, paths.SubscriptionRequest, id, msg)
}

func (t *Transport) SendCommand(ctx context.Context, id device.Identity, msg *mrsv1.CommandMessage) error {
	return t.publish(ctx, paths.Command, id, msg)
}

func (t *Transport) publish(ctx context.Context, segment string, id device.Identity, msg any) error {
	payload, err := codec.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %T: %w", msg, err)
	}
	return t.client.Publish(ctx, t.topics.Build(segment, id.Endpoint), t.qos, false, payload)
}
