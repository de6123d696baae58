package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/sensorlink/internal/transport/codec"
	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
)

func TestHandler(t *testing.T) {
	var (
		gotEndpoint string
		gotMsg      *mrsv1.DeviceIndicationReport
	)
	h := Handler(func(_ context.Context, endpoint string, msg *mrsv1.DeviceIndicationReport) error {
		gotEndpoint, gotMsg = endpoint, msg
		return nil
	})

	payload, err := codec.Marshal(&mrsv1.DeviceIndicationReport{
		Indications: []mrsv1.Indication{{Code: "DOOR_OPEN", Severity: mrsv1.SeverityWarning}},
	})
	require.NoError(t, err)

	require.NoError(t, h(context.Background(), "mast-01", payload))
	assert.Equal(t, "mast-01", gotEndpoint)
	require.Len(t, gotMsg.Indications, 1)
	assert.Equal(t, "DOOR_OPEN", gotMsg.Indications[0].Code)
}

func TestHandlerDecodeError(t *testing.T) {
	called := false
	h := Handler(func(context.Context, string, *mrsv1.DeviceStatusReport) error {
		called = true
		return nil
	})

	err := h(context.Background(), "mast-01", []byte{0xff})
	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
	assert.False(t, called)
}

func TestHandlerPassesHandlerError(t *testing.T) {
	want := errors.New("rejected")
	h := Handler(func(context.Context, string, *mrsv1.DeviceStatusReport) error { return want })

	assert.ErrorIs(t, h(context.Background(), "mast-01", []byte(`{}`)), want)
}
