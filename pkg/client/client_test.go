package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/sensorlink/internal/device"
	httpserver "github.com/autopeer-io/sensorlink/internal/server/http"
	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
	apiv1 "github.com/autopeer-io/sensorlink/pkg/apis/sensorlink/v1"
	"github.com/autopeer-io/sensorlink/pkg/options"
)

type nopTransport struct{}

func (nopTransport) SendConfigurationRequest(context.Context, device.Identity, *mrsv1.DeviceConfiguration) error {
	return nil
}

func (nopTransport) SendSubscriptionRequest(context.Context, device.Identity, *mrsv1.DeviceSubscriptionConfiguration) error {
	return nil
}

func (nopTransport) SendCommand(context.Context, device.Identity, *mrsv1.CommandMessage) error {
	return nil
}

func newTestClient(t *testing.T) (*Client, *device.Manager) {
	t.Helper()
	m, err := device.NewManager(nopTransport{})
	require.NoError(t, err)
	t.Cleanup(func() { m.Close(context.Background()) })

	srv := httptest.NewServer(httpserver.NewServer(options.NewHttpOptions(), m, func() bool { return true }).Handler())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", 5*time.Second)
	require.NoError(t, err)
	return c, m
}

func configure(m *device.Manager, endpoint string) error {
	cfg := &mrsv1.DeviceConfiguration{MessageHeader: mrsv1.MessageHeader{
		DeviceIdentification: &mrsv1.DeviceIdentification{DeviceName: endpoint},
	}}
	return m.OnConfigurationReceived(context.Background(), endpoint, cfg)
}

func TestNewRejectsBadAddress(t *testing.T) {
	_, err := New("localhost:8080", 0)
	assert.Error(t, err)

	c, err := New("http://localhost:8080", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
}

func TestDeviceRoundTrip(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	d, err := c.Connect(ctx, &apiv1.ConnectRequest{Endpoint: "mast-01", Peer: "gw-a"})
	require.NoError(t, err)
	assert.Equal(t, "Reconnecting", d.State)

	list, err := c.ListDevices(ctx)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "gw-a", list.Items[0].Peer)

	d, err = c.GetDevice(ctx, "mast-01", "gw-a")
	require.NoError(t, err)
	assert.Equal(t, "mast-01", d.Endpoint)

	status, err := c.GetStatus(ctx, "mast-01", "")
	require.NoError(t, err)
	assert.Nil(t, status.Last)

	require.NoError(t, c.Disconnect(ctx, "mast-01", "gw-a"))

	_, err = c.GetDevice(ctx, "mast-01", "")
	assert.True(t, IsNotFound(err))
}

func TestAPIErrors(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, err := c.Connect(ctx, &apiv1.ConnectRequest{Endpoint: "mast-01"})
	require.NoError(t, err)

	_, err = c.Connect(ctx, &apiv1.ConnectRequest{Endpoint: "mast-01"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)

	_, err = c.Connect(ctx, &apiv1.ConnectRequest{Endpoint: "a/b"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	err = c.SendCommand(ctx, "mast-01", "", &apiv1.CommandRequest{Verb: "Spin"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	require.NoError(t, c.SendCommand(ctx, "mast-01", "", &apiv1.CommandRequest{Verb: apiv1.CommandVerbKeepAlive}))
}

func TestWatchEvents(t *testing.T) {
	c, m := newTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := c.Connect(ctx, &apiv1.ConnectRequest{Endpoint: "mast-01"})
	require.NoError(t, err)

	var (
		mu     sync.Mutex
		events []apiv1.Event
		seen   atomic.Bool
	)
	done := make(chan error, 1)
	go func() {
		done <- c.WatchEvents(ctx, "mast-01", "", func(ev apiv1.Event) error {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
			seen.Store(true)
			return nil
		})
	}()

	require.Eventually(t, func() bool {
		return configure(m, "mast-01") == nil && seen.Load()
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, c.Disconnect(ctx, "mast-01", ""))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("event stream did not end after disconnect")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, "Disconnected", last.Type)
	assert.Equal(t, "mast-01", last.Device.Endpoint)
	for i := 1; i < len(events); i++ {
		assert.Greater(t, events[i].Seq, events[i-1].Seq)
	}
}
