package v1

import (
	"fmt"
	"slices"
)

// SensorType is the kind of a sensor mounted on a device.
type SensorType string

const (
	SensorTypePedestal       SensorType = "Pedestal"
	SensorTypeDayCameraBW    SensorType = "DayCameraBW"
	SensorTypeDayCameraColor SensorType = "DayCameraColor"
	SensorTypeFLIR           SensorType = "FLIR"
	SensorTypeLRF            SensorType = "LRF"
	SensorTypeRadar          SensorType = "Radar"
	SensorTypeVideoSwitch    SensorType = "VideoSwitch"
	SensorTypeGPS            SensorType = "GPS"
	SensorTypeOther          SensorType = "Other"
)

// SupportedSensorTypes lists every SensorType a device may report.
var SupportedSensorTypes = []SensorType{
	SensorTypePedestal,
	SensorTypeDayCameraBW,
	SensorTypeDayCameraColor,
	SensorTypeFLIR,
	SensorTypeLRF,
	SensorTypeRadar,
	SensorTypeVideoSwitch,
	SensorTypeGPS,
	SensorTypeOther,
}

// IsCamera reports whether the sensor type is an electro-optical camera.
func (t SensorType) IsCamera() bool {
	switch t {
	case SensorTypeDayCameraBW, SensorTypeDayCameraColor, SensorTypeFLIR:
		return true
	}
	return false
}

// SensorIdentification is the composite key of a sensor within a device.
type SensorIdentification struct {
	SensorType SensorType `json:"sensorType"`
	SensorID   string     `json:"sensorID"`
}

func (s SensorIdentification) String() string {
	return fmt.Sprintf("%s/%s", s.SensorType, s.SensorID)
}

// DeviceIdentification names a device as it describes itself.
type DeviceIdentification struct {
	DeviceName string `json:"deviceName"`
	// +optional
	DeviceType string `json:"deviceType,omitempty"`
}

// ReportCategory is a class of report a device can be subscribed to.
type ReportCategory string

const (
	ReportCategoryConfiguration         ReportCategory = "Configuration"
	ReportCategoryOperationalIndication ReportCategory = "OperationalIndication"
	ReportCategoryTechnicalStatus       ReportCategory = "TechnicalStatus"
	ReportCategoryAlert                 ReportCategory = "Alert"
)

// SupportedReportCategories lists every known ReportCategory.
var SupportedReportCategories = []ReportCategory{
	ReportCategoryConfiguration,
	ReportCategoryOperationalIndication,
	ReportCategoryTechnicalStatus,
	ReportCategoryAlert,
}

// DefaultReportCategories returns the categories requested when a device is
// connected without an explicit subscription.
func DefaultReportCategories() []ReportCategory {
	return []ReportCategory{
		ReportCategoryConfiguration,
		ReportCategoryOperationalIndication,
		ReportCategoryTechnicalStatus,
	}
}

// ParseReportCategory returns the ReportCategory named s.
func ParseReportCategory(s string) (ReportCategory, error) {
	c := ReportCategory(s)
	if !slices.Contains(SupportedReportCategories, c) {
		return "", fmt.Errorf("unknown report category %q", s)
	}
	return c, nil
}

// MessageType distinguishes requests from responses.
type MessageType string

const (
	MessageTypeRequest  MessageType = "Request"
	MessageTypeResponse MessageType = "Response"
)

// MessageHeader carries the fields shared by all messages.
type MessageHeader struct {
	// +optional
	MessageID string `json:"messageID,omitempty"`
	// +optional
	MessageType MessageType `json:"messageType,omitempty"`
	// +optional
	RequestorIdentification string `json:"requestorIdentification,omitempty"`
	// +optional
	DeviceIdentification *DeviceIdentification `json:"deviceIdentification,omitempty"`
}

// TechnicalState is the health reported for a device or sensor.
type TechnicalState string

const (
	TechnicalStateOK       TechnicalState = "OK"
	TechnicalStateDegraded TechnicalState = "Degraded"
	TechnicalStateFault    TechnicalState = "Fault"
	TechnicalStateOff      TechnicalState = "Off"
)

// PowerState is the power status of a sensor.
type PowerState string

const (
	PowerStateOn      PowerState = "On"
	PowerStateOff     PowerState = "Off"
	PowerStateStandby PowerState = "Standby"
)

// SimpleCommand is a command verb understood by devices and sensors.
type SimpleCommand string

const (
	SimpleCommandKeepAlive SimpleCommand = "KeepAlive"
	SimpleCommandStop      SimpleCommand = "Stop"
	SimpleCommandOn        SimpleCommand = "On"
	SimpleCommandOff       SimpleCommand = "Off"
	SimpleCommandGoTo      SimpleCommand = "GoTo"
	SimpleCommandGEOGoTo   SimpleCommand = "GEOGoTo"
	SimpleCommandMove      SimpleCommand = "Move"
	SimpleCommandZoom      SimpleCommand = "Zoom"
	SimpleCommandFocus     SimpleCommand = "Focus"
	SimpleCommandSet       SimpleCommand = "Set"
)
