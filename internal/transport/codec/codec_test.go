package codec

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
)

func TestMarshalUsesJSONFieldNames(t *testing.T) {
	msg := &mrsv1.DeviceSubscriptionConfiguration{
		MessageHeader:     mrsv1.MessageHeader{MessageID: "m-1", MessageType: mrsv1.MessageTypeRequest},
		SubscriptionTypes: []mrsv1.ReportCategory{mrsv1.ReportCategoryTechnicalStatus},
	}
	data, err := Marshal(msg)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, cbor.Unmarshal(data, &generic))
	assert.Equal(t, "m-1", generic["messageID"])
	assert.Equal(t, "Request", generic["messageType"])
	assert.Equal(t, []any{"TechnicalStatus"}, generic["subscriptionType"])
	assert.NotContains(t, generic, "deviceIdentification")
}

func TestMarshalIsDeterministic(t *testing.T) {
	temp := 21.5
	msg := &mrsv1.DeviceStatusReport{
		SensorStatusReports: []mrsv1.SensorStatusReport{{
			SensorIdentification: mrsv1.SensorIdentification{SensorType: mrsv1.SensorTypeFLIR, SensorID: "1"},
			Temperature:          &temp,
		}},
	}
	a, err := Marshal(msg)
	require.NoError(t, err)
	b, err := Marshal(msg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecodeCBOR(t *testing.T) {
	data, err := cbor.Marshal(map[string]any{
		"messageType": "Response",
		"sensorConfiguration": []any{
			map[string]any{
				"sensorIdentification":       map[string]any{"sensorType": "Pedestal", "sensorID": "1"},
				"simpleCommandConfiguration": []any{"Stop", "Move"},
			},
		},
		"futureField": 42,
	})
	require.NoError(t, err)

	cfg, err := Decode[mrsv1.DeviceConfiguration](data)
	require.NoError(t, err)
	assert.Equal(t, mrsv1.MessageTypeResponse, cfg.MessageType)
	require.Len(t, cfg.SensorConfigurations, 1)
	assert.True(t, cfg.SensorConfigurations[0].Supports(mrsv1.SimpleCommandMove))
}

func TestDecodeJSON(t *testing.T) {
	payload := []byte(` {"sensorStatusReport":[{"sensorIdentification":{"sensorType":"FLIR","sensorID":"2"},"temperature":30}]}`)

	r, err := Decode[mrsv1.DeviceStatusReport](payload)
	require.NoError(t, err)
	require.Len(t, r.SensorStatusReports, 1)
	assert.Equal(t, "2", r.SensorStatusReports[0].SensorIdentification.SensorID)
	assert.Equal(t, 30.0, *r.SensorStatusReports[0].Temperature)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode[mrsv1.DeviceStatusReport](nil)
	assert.Error(t, err)

	_, err = Decode[mrsv1.DeviceStatusReport]([]byte{0xff, 0x00})
	assert.Error(t, err)

	_, err = Decode[mrsv1.DeviceStatusReport]([]byte(`{"sensorStatusReport": 5}`))
	assert.Error(t, err)
}
