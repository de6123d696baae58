package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

func TestValidateDeviceConfiguration(t *testing.T) {
	ped := sensor(SensorTypePedestal, "1")

	tests := []struct {
		name    string
		cfg     *DeviceConfiguration
		wantErr []field.ErrorType
	}{
		{"nil", nil, []field.ErrorType{field.ErrorTypeRequired}},
		{"empty", &DeviceConfiguration{}, nil},
		{
			name: "valid",
			cfg: &DeviceConfiguration{SensorConfigurations: []SensorConfiguration{
				{SensorIdentification: ped},
				{SensorIdentification: sensor(SensorTypeFLIR, "1")},
			}},
		},
		{
			name: "duplicate sensor",
			cfg: &DeviceConfiguration{SensorConfigurations: []SensorConfiguration{
				{SensorIdentification: ped},
				{SensorIdentification: ped},
			}},
			wantErr: []field.ErrorType{field.ErrorTypeDuplicate},
		},
		{
			name: "unknown type and missing id",
			cfg: &DeviceConfiguration{SensorConfigurations: []SensorConfiguration{
				{SensorIdentification: SensorIdentification{SensorType: "Sonar"}},
			}},
			wantErr: []field.ErrorType{field.ErrorTypeNotSupported, field.ErrorTypeRequired},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, errorTypes(ValidateDeviceConfiguration(tt.cfg)))
		})
	}
}

func TestValidateDeviceStatusReport(t *testing.T) {
	cam := sensor(SensorTypeFLIR, "1")

	tests := []struct {
		name    string
		report  *DeviceStatusReport
		wantErr []field.ErrorType
	}{
		{"empty", &DeviceStatusReport{}, nil},
		{
			name:   "valid item",
			report: &DeviceStatusReport{SensorStatusReports: []SensorStatusReport{{SensorIdentification: cam, Item: &SensorStatusItem{Optical: &OpticalStatus{}}}}},
		},
		{
			name: "two item members",
			report: &DeviceStatusReport{SensorStatusReports: []SensorStatusReport{{
				SensorIdentification: cam,
				Item:                 &SensorStatusItem{Optical: &OpticalStatus{}, Pedestal: &PedestalStatus{}},
			}}},
			wantErr: []field.ErrorType{field.ErrorTypeForbidden},
		},
		{
			name: "channel references both forms",
			report: &DeviceStatusReport{SensorStatusReports: []SensorStatusReport{{
				SensorIdentification: sensor(SensorTypeVideoSwitch, "1"),
				Item: &SensorStatusItem{VideoSwitch: &VideoSwitchStatus{VideoChannels: []VideoChannel{
					{ChannelID: 1, SensorType: ptr(SensorTypeFLIR), SensorIdentification: &cam},
					{ChannelID: 1},
				}}},
			}}},
			wantErr: []field.ErrorType{field.ErrorTypeForbidden, field.ErrorTypeDuplicate},
		},
		{
			name: "bit test without name",
			report: &DeviceStatusReport{SensorStatusReports: []SensorStatusReport{{
				SensorIdentification: cam,
				DetailedSensorBIT:    &DetailedSensorBIT{Tests: []BITTest{{Result: ptr(BITResultPass)}}},
			}}},
			wantErr: []field.ErrorType{field.ErrorTypeRequired},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, errorTypes(ValidateDeviceStatusReport(tt.report)))
		})
	}
}

func TestValidateCommand(t *testing.T) {
	ped := sensor(SensorTypePedestal, "1")
	cam := sensor(SensorTypeFLIR, "1")

	tests := []struct {
		name    string
		cmd     Command
		wantErr []field.ErrorType
	}{
		{"empty", Command{}, []field.ErrorType{field.ErrorTypeRequired}},
		{"simple", Command{Simple: ptr(SimpleCommandKeepAlive)}, nil},
		{"two members", Command{Simple: ptr(SimpleCommandStop), Optical: &OpticalCommand{SimpleCommand: SimpleCommandStop}}, []field.ErrorType{field.ErrorTypeForbidden}},
		{"switch without channels", Command{VideoSwitch: &VideoSwitchCommand{SimpleCommand: SimpleCommandSet}}, []field.ErrorType{field.ErrorTypeRequired}},
		{
			name: "geo goto out of range",
			cmd: Command{Script: &ScriptCommand{
				GeoGoTo: &LocationCommand{
					SimpleCommand: SimpleCommandGEOGoTo,
					Points:        []Point{{Geodetic: &GeodeticLocation{Latitude: 91, Longitude: 10}}},
				},
				PedestalSensorIdentification: ped,
				OpticalSensorIdentification:  cam,
			}},
			wantErr: []field.ErrorType{field.ErrorTypeInvalid},
		},
		{
			name: "script without location",
			cmd: Command{Script: &ScriptCommand{
				PedestalSensorIdentification: ped,
				OpticalSensorIdentification:  cam,
			}},
			wantErr: []field.ErrorType{field.ErrorTypeRequired},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, errorTypes(ValidateCommand(&tt.cmd, field.NewPath("command"))))
		})
	}
}

func TestValidateSubscriptionAndIndication(t *testing.T) {
	assert.Empty(t, ValidateDeviceSubscriptionConfiguration(&DeviceSubscriptionConfiguration{SubscriptionTypes: DefaultReportCategories()}))
	assert.Len(t, ValidateDeviceSubscriptionConfiguration(&DeviceSubscriptionConfiguration{SubscriptionTypes: []ReportCategory{"Weather"}}), 1)

	assert.Empty(t, ValidateDeviceIndicationReport(&DeviceIndicationReport{Indications: []Indication{{Code: "OVERHEAT"}}}))
	assert.Len(t, ValidateDeviceIndicationReport(&DeviceIndicationReport{Indications: []Indication{{Message: "no code"}}}), 1)
}

func TestCommandVerb(t *testing.T) {
	assert.Equal(t, SimpleCommandKeepAlive, (&Command{Simple: ptr(SimpleCommandKeepAlive)}).Verb())
	assert.Equal(t, SimpleCommandZoom, (&Command{Optical: &OpticalCommand{SimpleCommand: SimpleCommandZoom}}).Verb())
	assert.Equal(t, SimpleCommandGEOGoTo, (&Command{Script: &ScriptCommand{GeoGoTo: &LocationCommand{SimpleCommand: SimpleCommandGEOGoTo}}}).Verb())
	assert.Equal(t, SimpleCommand(""), (&Command{}).Verb())
}

func TestParseReportCategory(t *testing.T) {
	c, err := ParseReportCategory("TechnicalStatus")
	assert.NoError(t, err)
	assert.Equal(t, ReportCategoryTechnicalStatus, c)

	_, err = ParseReportCategory("technicalstatus")
	assert.Error(t, err)
}

func errorTypes(errs field.ErrorList) []field.ErrorType {
	var types []field.ErrorType
	for _, e := range errs {
		types = append(types, e.Type)
	}
	return types
}
