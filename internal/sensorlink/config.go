package sensorlink

import (
	"fmt"

	"github.com/autopeer-io/sensorlink/internal/device"
	"github.com/autopeer-io/sensorlink/internal/pkg/metrics"
	"github.com/autopeer-io/sensorlink/internal/server"
	httpserver "github.com/autopeer-io/sensorlink/internal/server/http"
	mqtttransport "github.com/autopeer-io/sensorlink/internal/transport/mqtt"
	"github.com/autopeer-io/sensorlink/pkg/log"
	"github.com/autopeer-io/sensorlink/pkg/mqtt"
	"github.com/autopeer-io/sensorlink/pkg/mqtt/topic"
	"github.com/autopeer-io/sensorlink/pkg/options"
)

type Config struct {
	MqttOptions   *options.MqttOptions
	HttpOptions   *options.HttpOptions
	DeviceOptions *options.DeviceOptions
}

// NewServer wires the MQTT client, the device manager and the ingress
// servers together.
func (cfg *Config) NewServer() (*Server, error) {
	mqttClient, err := InitializeMQTTClient(cfg.MqttOptions)
	if err != nil {
		return nil, err
	}
	topics := topic.NewBuilder(cfg.MqttOptions.TopicRoot)

	categories, err := cfg.DeviceOptions.ReportCategories()
	if err != nil {
		return nil, err
	}

	devices, err := device.NewManager(
		mqtttransport.NewTransport(mqttClient, topics, cfg.MqttOptions.QoS),
		device.WithPolicy(PolicyFrom(cfg.DeviceOptions)),
		device.WithRequestorID(cfg.DeviceOptions.RequestorID),
		device.WithParallelism(cfg.DeviceOptions.Parallelism),
		device.WithSubscriptions(categories),
		device.WithSendTimeout(cfg.DeviceOptions.SendTimeout),
		device.WithEventDeliveryTimeout(cfg.DeviceOptions.EventDeliveryTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init device manager: %w", err)
	}

	mqttSrv := mqtttransport.NewServer(mqttClient, topics, devices, cfg.MqttOptions.QoS, cfg.MqttOptions.SharedGroup)
	httpSrv := httpserver.NewServer(cfg.HttpOptions, devices, mqttSrv.Ready)

	return &Server{
		client:  mqttClient,
		devices: devices,
		startup: cfg.DeviceOptions.Devices,
		servers: server.NewManager(mqttSrv, httpSrv, server.ServerFunc(devices.Run)),
	}, nil
}

// PolicyFrom extracts the liveness policy from the device options.
func PolicyFrom(opts *options.DeviceOptions) device.Policy {
	return device.Policy{
		KeepAliveInterval:         opts.KeepAliveInterval,
		ConnectionTimeout:         opts.ConnectionTimeout,
		ReconnectionInterval:      opts.ReconnectionInterval,
		ValidateMessagesOnReceive: opts.ValidateMessagesOnReceive,
	}
}

func InitializeMQTTClient(opts *options.MqttOptions) (mqtt.Client, error) {
	cfg := opts.ToClientConfig()
	cfg.OnConnectionChange = func(up bool) {
		if up {
			metrics.BrokerConnected.Set(1)
			return
		}
		metrics.BrokerConnected.Set(0)
	}

	mqttclient, err := mqtt.NewClient(cfg)
	if err != nil {
		log.Error(err, "failed to new mqtt client")
		return nil, err
	}

	return mqttclient, nil
}
