package v1

import (
	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
)

// CommandVerb selects the command built by the manager.
type CommandVerb string

const (
	CommandVerbKeepAlive      CommandVerb = "KeepAlive"
	CommandVerbStop           CommandVerb = "Stop"
	CommandVerbTurnOn         CommandVerb = "TurnOn"
	CommandVerbTurnOff        CommandVerb = "TurnOff"
	CommandVerbZoom           CommandVerb = "Zoom"
	CommandVerbFocus          CommandVerb = "Focus"
	CommandVerbMove           CommandVerb = "Move"
	CommandVerbGoto           CommandVerb = "Goto"
	CommandVerbGeoGoto        CommandVerb = "GeoGoto"
	CommandVerbSwitchChannels CommandVerb = "SwitchChannels"
	// CommandVerbCustom sends Command as given.
	CommandVerbCustom CommandVerb = "Custom"
)

// SupportedCommandVerbs lists every CommandVerb.
var SupportedCommandVerbs = []CommandVerb{
	CommandVerbKeepAlive,
	CommandVerbStop,
	CommandVerbTurnOn,
	CommandVerbTurnOff,
	CommandVerbZoom,
	CommandVerbFocus,
	CommandVerbMove,
	CommandVerbGoto,
	CommandVerbGeoGoto,
	CommandVerbSwitchChannels,
	CommandVerbCustom,
}

// CommandRequest asks the manager to send a command to a device.
// Only the fields relevant to Verb are read.
type CommandRequest struct {
	Verb CommandVerb `json:"verb"`

	// Sensor targets a specific sensor. Commands that default to the active
	// sensor use it when Sensor is unset.
	// +optional
	Sensor *mrsv1.SensorIdentification `json:"sensor,omitempty"`

	// Value is the zoom or focus step; positive zooms or focuses in.
	// +optional
	Value float64 `json:"value,omitempty"`

	// HorizontalVelocity and VerticalVelocity are in mils per second.
	// +optional
	HorizontalVelocity float64 `json:"horizontalVelocity,omitempty"`
	// +optional
	VerticalVelocity float64 `json:"verticalVelocity,omitempty"`

	// Azimuth and Elevation are in degrees, Range in meters.
	// +optional
	Azimuth float64 `json:"azimuth,omitempty"`
	// +optional
	Elevation float64 `json:"elevation,omitempty"`
	// +optional
	Range float64 `json:"range,omitempty"`

	// Latitude and Longitude are WGS84 decimal degrees, Altitude in meters.
	// +optional
	Latitude float64 `json:"latitude,omitempty"`
	// +optional
	Longitude float64 `json:"longitude,omitempty"`
	// +optional
	Altitude float64 `json:"altitude,omitempty"`
	// AltitudeReference defaults to MSL.
	// +optional
	AltitudeReference mrsv1.AltitudeReference `json:"altitudeReference,omitempty"`

	// +optional
	VideoChannels []mrsv1.VideoChannel `json:"videoChannels,omitempty"`

	// Command is sent as is with CommandVerbCustom.
	// +optional
	Command *mrsv1.Command `json:"command,omitempty"`
}
