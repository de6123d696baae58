package v1

import (
	"encoding/json"
	"time"
)

// DeviceRef names a device in an event.
type DeviceRef struct {
	Endpoint string `json:"endpoint"`
	// +optional
	Peer string `json:"peer,omitempty"`
}

// Event is one entry of a device event stream.
type Event struct {
	// Type is one of Connected, Disconnected, StatusUpdated, MessageReceived
	// or MessageSent.
	Type   string    `json:"type"`
	Device DeviceRef `json:"device"`
	Seq    uint64    `json:"seq"`
	Time   time.Time `json:"time"`
	// Message is the MRS message the event carries, left undecoded.
	// +optional
	Message json.RawMessage `json:"message,omitempty"`
}
