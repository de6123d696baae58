package v1

import (
	"time"

	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
)

// Device is the API view of a supervised device.
type Device struct {
	Endpoint string `json:"endpoint"`
	// +optional
	Peer string `json:"peer,omitempty"`

	// State is one of Disconnected, Reconnecting or Connected.
	State string `json:"state"`

	// +optional
	LastContactTime *time.Time `json:"lastContactTime,omitempty"`
	// +optional
	ReconnectProbeTime *time.Time `json:"reconnectProbeTime,omitempty"`

	// DeviceIdentification is taken from the latest configuration.
	// +optional
	DeviceIdentification *mrsv1.DeviceIdentification `json:"deviceIdentification,omitempty"`

	// ActiveSensor is the sensor currently routed to the first video channel.
	// +optional
	ActiveSensor *mrsv1.SensorIdentification `json:"activeSensor,omitempty"`

	// +optional
	Subscriptions []mrsv1.ReportCategory `json:"subscriptions,omitempty"`

	// +optional
	Sensors []Sensor `json:"sensors,omitempty"`
}

// Sensor is the API view of one configured sensor.
type Sensor struct {
	Configuration mrsv1.SensorConfiguration `json:"configuration"`
	// +optional
	Status *mrsv1.SensorStatusReport `json:"status,omitempty"`
	// +optional
	BIT *mrsv1.DetailedSensorBIT `json:"bit,omitempty"`
}

// DeviceList is the response of the device listing.
type DeviceList struct {
	Items []Device `json:"items"`
}

// ConnectRequest asks the manager to start supervising a device.
type ConnectRequest struct {
	Endpoint string `json:"endpoint"`
	// +optional
	Peer string `json:"peer,omitempty"`

	// Subscriptions overrides the manager's default report categories.
	// +optional
	Subscriptions []mrsv1.ReportCategory `json:"subscriptions,omitempty"`
}

// DeviceStatus is the cumulative status of a device together with the
// last fragment received.
type DeviceStatus struct {
	// +optional
	Cumulative *mrsv1.DeviceStatusReport `json:"cumulative,omitempty"`
	// +optional
	Last *mrsv1.DeviceStatusReport `json:"last,omitempty"`
}

// ErrorResponse is returned with every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
	// +optional
	Details []string `json:"details,omitempty"`
}
