package v1

// DeviceStatusReport is a status fragment. Devices usually report only the
// sensors and fields that changed.
type DeviceStatusReport struct {
	MessageHeader

	// +optional
	TechnicalState *TechnicalState `json:"technicalState,omitempty"`

	// +optional
	SensorStatusReports []SensorStatusReport `json:"sensorStatusReport,omitempty"`
}

// SensorStatusReport is the status of a single sensor.
type SensorStatusReport struct {
	SensorIdentification SensorIdentification `json:"sensorIdentification"`

	// +optional
	TechnicalState *TechnicalState `json:"technicalState,omitempty"`
	// +optional
	PowerState *PowerState `json:"powerState,omitempty"`
	// Temperature in degrees Celsius.
	// +optional
	Temperature *float64 `json:"temperature,omitempty"`

	// Item carries the type-specific part of the report.
	// +optional
	Item *SensorStatusItem `json:"item,omitempty"`

	// +optional
	DetailedSensorBIT *DetailedSensorBIT `json:"detailedSensorBIT,omitempty"`
}

// StatusItemKind names the member set on a SensorStatusItem.
type StatusItemKind string

const (
	StatusItemKindNone        StatusItemKind = ""
	StatusItemKindVideoSwitch StatusItemKind = "VideoSwitch"
	StatusItemKindPedestal    StatusItemKind = "Pedestal"
	StatusItemKindOptical     StatusItemKind = "Optical"
	StatusItemKindGeneric     StatusItemKind = "Generic"
)

// SensorStatusItem is a one-of: exactly one member is set.
type SensorStatusItem struct {
	// +optional
	VideoSwitch *VideoSwitchStatus `json:"videoSwitchStatus,omitempty"`
	// +optional
	Pedestal *PedestalStatus `json:"pedestalStatus,omitempty"`
	// +optional
	Optical *OpticalStatus `json:"opticalStatus,omitempty"`
	// +optional
	Generic *GenericStatus `json:"genericStatus,omitempty"`
}

// Kinds returns the kinds of every member that is set.
func (i *SensorStatusItem) Kinds() []StatusItemKind {
	if i == nil {
		return nil
	}
	var kinds []StatusItemKind
	if i.VideoSwitch != nil {
		kinds = append(kinds, StatusItemKindVideoSwitch)
	}
	if i.Pedestal != nil {
		kinds = append(kinds, StatusItemKindPedestal)
	}
	if i.Optical != nil {
		kinds = append(kinds, StatusItemKindOptical)
	}
	if i.Generic != nil {
		kinds = append(kinds, StatusItemKindGeneric)
	}
	return kinds
}

// Kind returns the kind of the member that is set, or StatusItemKindNone.
// An item with several members set reports the first one.
func (i *SensorStatusItem) Kind() StatusItemKind {
	if kinds := i.Kinds(); len(kinds) > 0 {
		return kinds[0]
	}
	return StatusItemKindNone
}

// VideoSwitchStatus reports which source is routed to each output channel.
type VideoSwitchStatus struct {
	// +optional
	VideoChannels []VideoChannel `json:"videoChannel,omitempty"`
}

// VideoChannel routes a source to an output. The source is referenced either
// by sensor type or by full sensor identification.
type VideoChannel struct {
	ChannelID int `json:"channelID"`

	// +optional
	SensorType *SensorType `json:"sensorType,omitempty"`
	// +optional
	SensorIdentification *SensorIdentification `json:"sensorIdentification,omitempty"`
}

// PedestalStatus is the pointing state of a pan/tilt pedestal.
type PedestalStatus struct {
	// Azimuth in mils.
	// +optional
	Azimuth *float64 `json:"azimuth,omitempty"`
	// Elevation in mils.
	// +optional
	Elevation *float64 `json:"elevation,omitempty"`
	// +optional
	Moving *bool `json:"moving,omitempty"`
}

// OpticalStatus is the state of a camera.
type OpticalStatus struct {
	// +optional
	Zoom *float64 `json:"zoom,omitempty"`
	// +optional
	Focus *float64 `json:"focus,omitempty"`
	// FieldOfView in mils.
	// +optional
	FieldOfView *float64 `json:"fieldOfView,omitempty"`
}

// GenericStatus carries named parameters for sensors without a dedicated
// status type.
type GenericStatus struct {
	// +optional
	Parameters []Parameter `json:"parameter,omitempty"`
}

// Parameter is a named value. Parameters are matched by name.
type Parameter struct {
	Name string `json:"name"`
	// +optional
	Value *string `json:"value,omitempty"`
}

// BITResult is the outcome of a built-in test.
type BITResult string

const (
	BITResultPass BITResult = "Pass"
	BITResultFail BITResult = "Fail"
)

// DetailedSensorBIT is a sensor's built-in-test report.
type DetailedSensorBIT struct {
	// +optional
	Result *BITResult `json:"result,omitempty"`
	// +optional
	Tests []BITTest `json:"test,omitempty"`
}

// BITTest is a single built-in test. Tests are matched by name.
type BITTest struct {
	Name string `json:"name"`
	// +optional
	Result *BITResult `json:"result,omitempty"`
	// +optional
	Message *string `json:"message,omitempty"`
}
