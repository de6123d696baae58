package mqtt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/autopeer-io/sensorlink/internal/device"
	"github.com/autopeer-io/sensorlink/internal/pkg/mqtt/adapter"
	"github.com/autopeer-io/sensorlink/internal/pkg/mqtt/paths"
	"github.com/autopeer-io/sensorlink/pkg/log"
	pkgmqtt "github.com/autopeer-io/sensorlink/pkg/mqtt"
	"github.com/autopeer-io/sensorlink/pkg/mqtt/topic"
)

// Server implements the MQTT ingress layer: it subscribes to every upstream
// segment and hands decoded messages to the device manager.
type Server struct {
	client  pkgmqtt.Client
	topics  *topic.Builder
	manager *device.Manager
	qos     int
	group   string

	// endpoints serializes the handling of each endpoint's messages.
	endpoints *lanes
}

// handleTimeout bounds the handling of one upstream message.
const handleTimeout = 30 * time.Second

// NewServer creates a new MQTT server. A non-empty group joins a shared
// subscription so that replicas split the upstream traffic.
func NewServer(client pkgmqtt.Client, builder *topic.Builder, manager *device.Manager, qos int, group string) *Server {
	return &Server{
		client:    client,
		topics:    builder,
		manager:   manager,
		qos:       qos,
		group:     group,
		endpoints: newLanes(),
	}
}

// Ready reports whether the broker connection is up.
func (s *Server) Ready() bool {
	return s.client.IsConnected()
}

// Start connects to the broker, subscribes and blocks until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return err
	}

	// Ensure MQTT disconnects when Start exits.
	defer func() {
		log.Info("Disconnecting MQTT client...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.client.Disconnect(shutdownCtx)
		log.Info("MQTT client disconnected")
	}()

	log.Info("Waiting for MQTT connection...")
	if err := s.client.AwaitConnection(ctx); err != nil {
		return err
	}
	log.Info("MQTT Connected")

	if err := s.initMQTTSubscriptions(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	s.endpoints.wait()
	return nil
}

func (s *Server) initMQTTSubscriptions(ctx context.Context) error {
	subscriptions := map[string]adapter.HandlerFunc{
		paths.Configuration:   adapter.Handler(s.manager.OnConfigurationReceived),
		paths.Status:          adapter.Handler(s.manager.OnStatusReportReceived),
		paths.Indication:      adapter.Handler(s.manager.OnIndicationReportReceived),
		paths.SubscriptionAck: adapter.Handler(s.manager.OnSubscriptionAckReceived),
		paths.CommandEcho:     adapter.Handler(s.manager.OnCommandEchoReceived),
	}

	filters := s.topics
	if s.group != "" {
		filters = s.topics.Shared(s.group)
	}

	for segment, handler := range subscriptions {
		fullTopic := filters.BuildWildcard(segment)
		if err := s.client.Subscribe(ctx, fullTopic, s.qos, s.dispatch(ctx, segment, handler)); err != nil {
			return fmt.Errorf("failed to subscribe to topic: %s, err: %w", fullTopic, err)
		}
		log.Debug("Subscribed", "topic", fullTopic)
	}

	return nil
}

// dispatch returns the subscription handler for segment. Messages are
// handled in arrival order per endpoint, off the client's delivery goroutine,
// with a context derived from base.
func (s *Server) dispatch(base context.Context, segment string, handler adapter.HandlerFunc) pkgmqtt.MessageHandler {
	return func(_ context.Context, t string, payload []byte) {
		endpoint, ok := s.topics.ParseID(segment, t)
		if !ok {
			log.Warn("Dropping message on unexpected topic", "topic", t)
			return
		}

		s.endpoints.submit(endpoint, func() {
			ctx, cancel := context.WithTimeout(base, handleTimeout)
			defer cancel()
			s.handle(ctx, t, endpoint, payload, handler)
		})
	}
}

func (s *Server) handle(ctx context.Context, t, endpoint string, payload []byte, handler adapter.HandlerFunc) {
	err := handler(ctx, endpoint, payload)
	var decodeErr *adapter.DecodeError
	switch {
	case err == nil:
	case errors.Is(err, device.ErrDeviceNotFound):
		log.Debug("Dropping message from unmanaged device", "topic", t)
	case errors.As(err, &decodeErr):
		log.Warn("Dropping undecodable message", "topic", t, "error", err.Error())
	default:
		log.Error(err, "Handler execution failed", "topic", t)
	}
}
