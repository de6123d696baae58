package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "sensorlink"

// Registry holds every sensorlink collector plus the Go runtime and
// process collectors. The HTTP server exposes it on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// DevicesByState counts registered devices per connection state.
	// Disconnected devices are not registered and are not counted.
	DevicesByState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "devices",
			Help:      "Number of registered devices by connection state.",
		},
		[]string{"state"},
	)

	// StateTransitionsTotal counts connection state changes.
	StateTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Total number of device connection state transitions.",
		},
		[]string{"from", "to"},
	)

	// MessagesSentTotal counts successful outbound messages.
	MessagesSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Total number of outbound messages sent, by intent.",
		},
		[]string{"intent"}, // keep_alive, configuration_request, subscription_request, command
	)

	// SendFailuresTotal counts outbound messages the transport failed to deliver.
	SendFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_failures_total",
			Help:      "Total number of failed outbound sends, by intent.",
		},
		[]string{"intent"},
	)

	// MessagesReceivedTotal counts inbound messages routed to a device.
	MessagesReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total number of inbound messages, by kind.",
		},
		[]string{"kind"},
	)

	// ValidationFailuresTotal counts inbound messages rejected by validation.
	ValidationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Total number of inbound messages rejected by validation, by kind.",
		},
		[]string{"kind"},
	)

	// MergeSkipsTotal counts status sub-trees kept from the previous snapshot
	// because the incoming fragment had a different shape.
	MergeSkipsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_skips_total",
			Help:      "Total number of status sub-trees skipped during merge.",
		},
	)

	// EventsDroppedTotal counts events a subscriber did not accept in time.
	EventsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Total number of device events dropped because a subscriber was too slow.",
		},
	)

	// BrokerConnected is 1 while the MQTT connection is up.
	BrokerConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mqtt_connected",
			Help:      "Whether the MQTT broker connection is up (1) or down (0).",
		},
	)

	// WatchdogTickDuration records how long one watchdog pass over all devices takes.
	WatchdogTickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "watchdog_tick_duration_seconds",
			Help:      "Duration of one connection watchdog pass.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		DevicesByState,
		StateTransitionsTotal,
		MessagesSentTotal,
		SendFailuresTotal,
		MessagesReceivedTotal,
		ValidationFailuresTotal,
		MergeSkipsTotal,
		EventsDroppedTotal,
		WatchdogTickDuration,
		BrokerConnected,
	)
}
