package mqtt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/autopeer-io/sensorlink/internal/device"
	"github.com/autopeer-io/sensorlink/internal/pkg/mqtt/paths"
	"github.com/autopeer-io/sensorlink/internal/transport/codec"
	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
	"github.com/autopeer-io/sensorlink/pkg/mqtt/topic"
)

const root = "sensorlink/v1"

func newManager(t *testing.T, client *fakeClient) *device.Manager {
	t.Helper()
	m, err := device.NewManager(
		NewTransport(client, topic.NewBuilder(root), 1),
		device.WithClock(clocktesting.NewFakeClock(time.Now())),
	)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close(context.Background()) })
	return m
}

func TestTransportPublishesCBOR(t *testing.T) {
	client := newFakeClient()
	tr := NewTransport(client, topic.NewBuilder(root+"/"), 1)
	id := device.Identity{Endpoint: "mast-01", Peer: "gw-1"}
	ctx := context.Background()

	keepAlive := mrsv1.SimpleCommandKeepAlive
	require.NoError(t, tr.SendCommand(ctx, id, &mrsv1.CommandMessage{Command: mrsv1.Command{Simple: &keepAlive}}))
	msg, ok := client.lastPublished()
	require.True(t, ok)
	assert.Equal(t, "sensorlink/v1/command/mast-01", msg.topic)
	assert.Equal(t, 1, msg.qos)

	cmd, err := codec.Decode[mrsv1.CommandMessage](msg.payload)
	require.NoError(t, err)
	assert.Equal(t, keepAlive, *cmd.Command.Simple)

	require.NoError(t, tr.SendSubscriptionRequest(ctx, id, &mrsv1.DeviceSubscriptionConfiguration{SubscriptionTypes: []mrsv1.ReportCategory{}}))
	msg, _ = client.lastPublished()
	assert.Equal(t, "sensorlink/v1/subscription/request/mast-01", msg.topic)

	require.NoError(t, tr.SendConfigurationRequest(ctx, id, &mrsv1.DeviceConfiguration{}))
	msg, _ = client.lastPublished()
	assert.Equal(t, "sensorlink/v1/configuration/request/mast-01", msg.topic)

	client.publishErr = errors.New("not connected")
	assert.Error(t, tr.SendConfigurationRequest(ctx, id, &mrsv1.DeviceConfiguration{}))
}

func TestServerRoutesUpstreamMessages(t *testing.T) {
	client := newFakeClient()
	m := newManager(t, client)
	srv := NewServer(client, topic.NewBuilder(root), m, 1, paths.GroupManager)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	require.Eventually(t, func() bool { return len(client.filters()) == 5 }, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []string{
		"$share/sensorlink-manager/sensorlink/v1/configuration/+",
		"$share/sensorlink-manager/sensorlink/v1/status/+",
		"$share/sensorlink-manager/sensorlink/v1/indication/+",
		"$share/sensorlink-manager/sensorlink/v1/subscription/ack/+",
		"$share/sensorlink-manager/sensorlink/v1/command/echo/+",
	}, client.filters())
	assert.True(t, srv.Ready())

	d, err := m.Connect(ctx, device.Identity{Endpoint: "mast-01"}, nil)
	require.NoError(t, err)
	probe, ok := client.lastPublished()
	require.True(t, ok)
	assert.Equal(t, "sensorlink/v1/configuration/request/mast-01", probe.topic)

	cfg, err := codec.Marshal(&mrsv1.DeviceConfiguration{
		MessageHeader: mrsv1.MessageHeader{MessageType: mrsv1.MessageTypeResponse},
		SensorConfigurations: []mrsv1.SensorConfiguration{{
			SensorIdentification: mrsv1.SensorIdentification{SensorType: mrsv1.SensorTypeFLIR, SensorID: "1"},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, client.deliver(ctx, "sensorlink/v1/configuration/mast-01", cfg))
	srv.endpoints.wait()
	assert.Len(t, d.Snapshot().Sensors, 1)

	sub, _ := client.lastPublished()
	assert.Equal(t, "sensorlink/v1/subscription/request/mast-01", sub.topic)
	req, err := codec.Decode[mrsv1.DeviceSubscriptionConfiguration](sub.payload)
	require.NoError(t, err)
	assert.Equal(t, mrsv1.DefaultReportCategories(), req.SubscriptionTypes)

	status := []byte(`{"sensorStatusReport":[{"sensorIdentification":{"sensorType":"FLIR","sensorID":"1"},"temperature":40}]}`)
	client.deliver(ctx, "sensorlink/v1/status/mast-01", status)
	srv.endpoints.wait()
	require.NotNil(t, d.CumulativeStatus())
	assert.Equal(t, 40.0, *d.CumulativeStatus().SensorStatusReports[0].Temperature)

	// Undecodable payloads and unmanaged devices are dropped.
	contact := d.LastContactTime()
	client.deliver(ctx, "sensorlink/v1/status/mast-01", []byte{0xff})
	client.deliver(ctx, "sensorlink/v1/status/mast-99", status)
	srv.endpoints.wait()
	assert.Equal(t, contact, d.LastContactTime())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, client.disconnected.Load())
	assert.False(t, srv.Ready())
}

func TestServerWithoutSharedGroup(t *testing.T) {
	client := newFakeClient()
	srv := NewServer(client, topic.NewBuilder(root), newManager(t, client), 0, "")

	require.NoError(t, srv.initMQTTSubscriptions(context.Background()))
	assert.Contains(t, client.filters(), "sensorlink/v1/status/+")
}

func TestServerHandlesEndpointMessagesInOrder(t *testing.T) {
	client := newFakeClient()
	m := newManager(t, client)
	srv := NewServer(client, topic.NewBuilder(root), m, 1, "")
	ctx := context.Background()
	require.NoError(t, srv.initMQTTSubscriptions(ctx))

	flir := mrsv1.SensorIdentification{SensorType: mrsv1.SensorTypeFLIR, SensorID: "1"}
	d, err := m.Connect(ctx, device.Identity{Endpoint: "mast-01"}, nil)
	require.NoError(t, err)
	cfg, err := codec.Marshal(&mrsv1.DeviceConfiguration{
		MessageHeader:        mrsv1.MessageHeader{MessageType: mrsv1.MessageTypeResponse},
		SensorConfigurations: []mrsv1.SensorConfiguration{{SensorIdentification: flir}},
	})
	require.NoError(t, err)
	client.deliver(ctx, "sensorlink/v1/configuration/mast-01", cfg)

	const fragments = 200
	for i := 1; i <= fragments; i++ {
		temp := float64(i)
		payload, err := codec.Marshal(&mrsv1.DeviceStatusReport{
			SensorStatusReports: []mrsv1.SensorStatusReport{{SensorIdentification: flir, Temperature: &temp}},
		})
		require.NoError(t, err)
		client.deliver(ctx, "sensorlink/v1/status/mast-01", payload)
	}
	srv.endpoints.wait()

	status := d.CumulativeStatus()
	require.NotNil(t, status)
	require.Len(t, status.SensorStatusReports, 1)
	assert.Equal(t, float64(fragments), *status.SensorStatusReports[0].Temperature)
}
