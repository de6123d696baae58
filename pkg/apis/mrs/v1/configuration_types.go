package v1

import "slices"

// SensorConfiguration describes one sensor of a device.
type SensorConfiguration struct {
	SensorIdentification SensorIdentification `json:"sensorIdentification"`

	// SimpleCommands lists the simple commands the sensor accepts.
	// +optional
	SimpleCommands []SimpleCommand `json:"simpleCommandConfiguration,omitempty"`

	// +optional
	Description string `json:"description,omitempty"`
}

// Supports reports whether the sensor accepts cmd.
func (c *SensorConfiguration) Supports(cmd SimpleCommand) bool {
	return c != nil && slices.Contains(c.SimpleCommands, cmd)
}

// DeviceConfiguration is both the configuration request sent to a device and
// the full configuration the device returns. A configuration response is
// authoritative: it lists every sensor the device currently has.
type DeviceConfiguration struct {
	MessageHeader

	// +optional
	SensorConfigurations []SensorConfiguration `json:"sensorConfiguration,omitempty"`
}
