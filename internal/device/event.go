package device

import (
	"time"

	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
)

// EventType classifies device events.
type EventType string

const (
	// EventConnected is published when a device becomes live.
	EventConnected EventType = "Connected"
	// EventDisconnected is published on the first loss of contact and on disconnect.
	EventDisconnected EventType = "Disconnected"
	// EventStatusUpdated carries the merged status snapshot after a status fragment.
	EventStatusUpdated EventType = "StatusUpdated"
	// EventMessageReceived carries any other inbound message as received.
	EventMessageReceived EventType = "MessageReceived"
	// EventMessageSent carries an outbound message the transport accepted.
	EventMessageSent EventType = "MessageSent"
)

// Event is a notification about one device. Seq increases by one per event
// of the same device, in publication order. Message is shared and must not
// be modified by subscribers.
type Event struct {
	Type   EventType `json:"type"`
	Device Identity  `json:"device"`
	Seq    uint64    `json:"seq"`
	Time   time.Time `json:"time"`

	// Message is one of *mrsv1.DeviceConfiguration, *mrsv1.DeviceStatusReport,
	// *mrsv1.DeviceIndicationReport, *mrsv1.DeviceSubscriptionConfiguration or
	// *mrsv1.CommandMessage, or nil for connection events.
	// +optional
	Message any `json:"message,omitempty"`
}

// StatusReport returns the status snapshot carried by an EventStatusUpdated.
func (e Event) StatusReport() (*mrsv1.DeviceStatusReport, bool) {
	r, ok := e.Message.(*mrsv1.DeviceStatusReport)
	return r, ok
}
