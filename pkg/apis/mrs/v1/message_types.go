package v1

// Severity ranks an indication.
type Severity string

const (
	SeverityInfo     Severity = "Info"
	SeverityWarning  Severity = "Warning"
	SeverityCritical Severity = "Critical"
)

// DeviceIndicationReport carries operational indications raised by a device.
type DeviceIndicationReport struct {
	MessageHeader

	// +optional
	Indications []Indication `json:"indication,omitempty"`
}

// Indication is a single operational event.
type Indication struct {
	Code string `json:"code"`

	// +optional
	SensorIdentification *SensorIdentification `json:"sensorIdentification,omitempty"`
	// +optional
	Severity Severity `json:"severity,omitempty"`
	// +optional
	Message string `json:"message,omitempty"`
}

// ExecutionStatus is the outcome reported in a response.
type ExecutionStatus string

const (
	ExecutionStatusSuccess ExecutionStatus = "Success"
	ExecutionStatusFailure ExecutionStatus = "Failure"
)

// DeviceSubscriptionConfiguration requests (or acknowledges) the report
// categories a device pushes. An empty list unsubscribes from everything.
type DeviceSubscriptionConfiguration struct {
	MessageHeader

	SubscriptionTypes []ReportCategory `json:"subscriptionType"`

	// +optional
	ExecutionStatus *ExecutionStatus `json:"executionStatus,omitempty"`
}

// CommandMessage addresses a command to a device, or to one of its sensors
// when SensorIdentification is set. Devices echo command messages back.
type CommandMessage struct {
	MessageHeader

	// +optional
	SensorIdentification *SensorIdentification `json:"sensorIdentification,omitempty"`

	Command Command `json:"command"`
}

// CommandKind names the member set on a Command.
type CommandKind string

const (
	CommandKindNone        CommandKind = ""
	CommandKindSimple      CommandKind = "Simple"
	CommandKindLocation    CommandKind = "Location"
	CommandKindOptical     CommandKind = "Optical"
	CommandKindVideoSwitch CommandKind = "VideoSwitch"
	CommandKindScript      CommandKind = "Script"
)

// Command is a one-of: exactly one member is set.
type Command struct {
	// +optional
	Simple *SimpleCommand `json:"simpleCommand,omitempty"`
	// +optional
	Location *LocationCommand `json:"locationCommand,omitempty"`
	// +optional
	Optical *OpticalCommand `json:"opticalCommand,omitempty"`
	// +optional
	VideoSwitch *VideoSwitchCommand `json:"videoSwitchCommand,omitempty"`
	// +optional
	Script *ScriptCommand `json:"scriptCommand,omitempty"`
}

// Kinds returns the kinds of every member that is set.
func (c *Command) Kinds() []CommandKind {
	if c == nil {
		return nil
	}
	var kinds []CommandKind
	if c.Simple != nil {
		kinds = append(kinds, CommandKindSimple)
	}
	if c.Location != nil {
		kinds = append(kinds, CommandKindLocation)
	}
	if c.Optical != nil {
		kinds = append(kinds, CommandKindOptical)
	}
	if c.VideoSwitch != nil {
		kinds = append(kinds, CommandKindVideoSwitch)
	}
	if c.Script != nil {
		kinds = append(kinds, CommandKindScript)
	}
	return kinds
}

// Kind returns the kind of the member that is set, or CommandKindNone.
func (c *Command) Kind() CommandKind {
	if kinds := c.Kinds(); len(kinds) > 0 {
		return kinds[0]
	}
	return CommandKindNone
}

// Verb returns the simple command carried by c, whatever its kind.
func (c *Command) Verb() SimpleCommand {
	switch c.Kind() {
	case CommandKindSimple:
		return *c.Simple
	case CommandKindLocation:
		return c.Location.SimpleCommand
	case CommandKindOptical:
		return c.Optical.SimpleCommand
	case CommandKindVideoSwitch:
		return c.VideoSwitch.SimpleCommand
	case CommandKindScript:
		switch {
		case c.Script.GoTo != nil:
			return c.Script.GoTo.SimpleCommand
		case c.Script.GeoGoTo != nil:
			return c.Script.GeoGoTo.SimpleCommand
		}
	}
	return ""
}

// AngularUnits is the unit of an angle.
type AngularUnits string

const (
	AngularUnitsMils    AngularUnits = "Mils"
	AngularUnitsDegrees AngularUnits = "Degrees"
)

// AngularSpeedUnits is the unit of an angular speed.
type AngularSpeedUnits string

const (
	AngularSpeedUnitsMilsPerSecond    AngularSpeedUnits = "MilsPerSecond"
	AngularSpeedUnitsDegreesPerSecond AngularSpeedUnits = "DegreesPerSecond"
)

// DistanceUnits is the unit of a distance.
type DistanceUnits string

const DistanceUnitsMeters DistanceUnits = "Meters"

// AltitudeReference is the datum an altitude is measured from.
type AltitudeReference string

const (
	AltitudeReferenceMSL AltitudeReference = "MSL"
	AltitudeReferenceAGL AltitudeReference = "AGL"
	AltitudeReferenceHAE AltitudeReference = "HAE"
)

// Angle is a value with its unit.
type Angle struct {
	Value float64      `json:"value"`
	Units AngularUnits `json:"units"`
}

// AngularSpeed is a value with its unit.
type AngularSpeed struct {
	Value float64           `json:"value"`
	Units AngularSpeedUnits `json:"units"`
}

// Distance is a value with its unit.
type Distance struct {
	Value float64       `json:"value"`
	Units DistanceUnits `json:"units"`
}

// Altitude is a height with its reference.
type Altitude struct {
	Value     float64           `json:"value"`
	Units     DistanceUnits     `json:"units"`
	Reference AltitudeReference `json:"reference"`
}

// GeodeticLocation is a WGS84 position in decimal degrees.
type GeodeticLocation struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  Altitude `json:"altitude"`
	Datum     string   `json:"datum"`
}

// RelativeLocation is a position relative to the device.
type RelativeLocation struct {
	Azimuth   Angle `json:"azimuth"`
	Elevation Angle `json:"elevation"`
	// +optional
	Range *Distance `json:"range,omitempty"`
}

// Point is a one-of: either a geodetic or a relative location.
type Point struct {
	// +optional
	Geodetic *GeodeticLocation `json:"geodeticLocation,omitempty"`
	// +optional
	Relative *RelativeLocation `json:"relativeLocation,omitempty"`
}

// LocationCommand moves or points a pedestal.
type LocationCommand struct {
	SimpleCommand SimpleCommand `json:"simpleCommand"`

	// +optional
	Points []Point `json:"point,omitempty"`
	// +optional
	HorizontalVelocity *AngularSpeed `json:"horizontalVelocity,omitempty"`
	// +optional
	VerticalVelocity *AngularSpeed `json:"verticalVelocity,omitempty"`
}

// Operation is the direction of a relative optical adjustment.
type Operation string

const (
	OperationPlus  Operation = "Plus"
	OperationMinus Operation = "Minus"
)

// Control selects manual or automatic optical control.
type Control string

const (
	ControlManual Control = "Manual"
	ControlAuto   Control = "Auto"
)

// OpticalCommand adjusts a camera.
type OpticalCommand struct {
	SimpleCommand SimpleCommand `json:"simpleCommand"`

	// +optional
	Value *float64 `json:"value,omitempty"`
	// +optional
	Operation *Operation `json:"operation,omitempty"`
	// +optional
	Control *Control `json:"control,omitempty"`
}

// VideoSwitchCommand reroutes video channels.
type VideoSwitchCommand struct {
	SimpleCommand SimpleCommand  `json:"simpleCommand"`
	VideoChannels []VideoChannel `json:"videoChannel"`
}

// ScriptCommand couples a pedestal with an optical sensor to point the
// sensor at a location. Exactly one of GoTo and GeoGoTo is set.
type ScriptCommand struct {
	// +optional
	GoTo *LocationCommand `json:"goToCommand,omitempty"`
	// +optional
	GeoGoTo *LocationCommand `json:"geoGoToCommand,omitempty"`

	PedestalSensorIdentification SensorIdentification `json:"pedestalSensorIdentification"`
	OpticalSensorIdentification  SensorIdentification `json:"opticalSensorIdentification"`
}
