package simulator

import (
	"fmt"

	"github.com/autopeer-io/sensorlink/pkg/log"
	"github.com/autopeer-io/sensorlink/pkg/mqtt"
	mqtttopic "github.com/autopeer-io/sensorlink/pkg/mqtt/topic"
	"github.com/autopeer-io/sensorlink/pkg/options"
)

type Config struct {
	MqttOptions      *options.MqttOptions
	SimulatorOptions *options.SimulatorOptions
}

func (cfg *Config) NewSimulator() (*Simulator, error) {
	sensors, err := ParseSensors(cfg.SimulatorOptions.Sensors)
	if err != nil {
		return nil, err
	}

	mqttClient, topicBuilder, err := cfg.initMqttClientAndTopicBuilder()
	if err != nil {
		return nil, fmt.Errorf("failed to init mqtt client: %w", err)
	}

	return New(
		NewHub(cfg.SimulatorOptions.Endpoint, mqttClient, topicBuilder, cfg.MqttOptions.QoS),
		NewPlant(cfg.SimulatorOptions.DeviceName, sensors),
		cfg.SimulatorOptions.StatusInterval,
		nil,
	), nil
}

func (cfg *Config) initMqttClientAndTopicBuilder() (mqtt.Client, *mqtttopic.Builder, error) {
	topicBuilder := mqtttopic.NewBuilder(cfg.MqttOptions.TopicRoot)

	mqttConfig := cfg.MqttOptions.ToClientConfig()
	if cfg.MqttOptions.ClientID == "" {
		mqttConfig.ClientID = fmt.Sprintf("sensorlink-sim-%s", cfg.SimulatorOptions.Endpoint)
	}

	mqttClient, err := mqtt.NewClient(mqttConfig)
	if err != nil {
		log.Error(err, "failed to new mqtt client")
		return nil, nil, err
	}
	return mqttClient, topicBuilder, nil
}
