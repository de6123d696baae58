package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
)

func TestConnect(t *testing.T) {
	m, tr, _ := newTestManager(t, WithSubscriptions([]mrsv1.ReportCategory{mrsv1.ReportCategoryAlert}))
	ctx := context.Background()

	d, err := m.Connect(ctx, Identity{Endpoint: "mast-01"}, nil)
	require.NoError(t, err)
	assert.Equal(t, StateReconnecting, d.State())
	assert.Equal(t, []mrsv1.ReportCategory{mrsv1.ReportCategoryAlert}, d.Snapshot().Subscriptions)
	assert.Equal(t, 1, tr.count("mast-01", IntentConfigurationRequest))

	_, err = m.Connect(ctx, Identity{Endpoint: "mast-01"}, nil)
	assert.ErrorIs(t, err, ErrAlreadyConnected)

	// A different peer is a different device.
	_, err = m.Connect(ctx, Identity{Endpoint: "mast-01", Peer: "gw-2"}, nil)
	require.NoError(t, err)
	assert.Len(t, m.List(), 2)

	_, err = m.Connect(ctx, Identity{Endpoint: "bad/endpoint"}, nil)
	assert.Error(t, err)

	_, err = m.Connect(ctx, Identity{Endpoint: "mast-02"}, []mrsv1.ReportCategory{"Gossip"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	_, ok := m.Get(Identity{Endpoint: "mast-02"})
	assert.False(t, ok)
}

func TestConnectSurvivesSendFailure(t *testing.T) {
	m, tr, _ := newTestManager(t)
	tr.setFail("mast-01", assert.AnError)

	d, err := m.Connect(context.Background(), Identity{Endpoint: "mast-01"}, nil)
	require.NoError(t, err)
	assert.Equal(t, StateReconnecting, d.State())

	found, err := m.Find("mast-01")
	require.NoError(t, err)
	assert.Same(t, d, found)

	err = d.SendKeepAlive(context.Background())
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestDisconnect(t *testing.T) {
	m, tr, _ := newTestManager(t)
	ctx := context.Background()
	sub := m.Subscribe(32, nil)

	d := connectConfigured(t, m, "mast-01")
	m.watchdog.Tick(ctx)
	require.Equal(t, StateConnected, d.State())
	drain(sub)

	require.NoError(t, m.Disconnect(ctx, d.ID()))
	assert.Equal(t, StateDisconnected, d.State())
	assert.Nil(t, d.Snapshot().ReconnectProbeTime)

	unsub, ok := tr.last("mast-01", IntentSubscriptionRequest).(*mrsv1.DeviceSubscriptionConfiguration)
	require.True(t, ok)
	assert.NotNil(t, unsub.SubscriptionTypes)
	assert.Empty(t, unsub.SubscriptionTypes)
	assert.Equal(t, []EventType{EventMessageSent, EventDisconnected}, eventTypes(drain(sub)))

	_, err := m.Find("mast-01")
	assert.ErrorIs(t, err, ErrDeviceNotFound)
	assert.ErrorIs(t, m.Disconnect(ctx, d.ID()), ErrDeviceNotFound)

	// Reconnecting the same endpoint starts from scratch.
	d2, err := m.Connect(ctx, Identity{Endpoint: "mast-01"}, nil)
	require.NoError(t, err)
	assert.NotSame(t, d, d2)
	assert.Nil(t, d2.CumulativeStatus())
}

func TestDisconnectReconnectingDeviceSkipsUnsubscribe(t *testing.T) {
	m, tr, _ := newTestManager(t)
	ctx := context.Background()

	d, err := m.Connect(ctx, Identity{Endpoint: "mast-01"}, nil)
	require.NoError(t, err)
	require.NoError(t, m.Disconnect(ctx, d.ID()))

	assert.Zero(t, tr.count("mast-01", IntentSubscriptionRequest))
	assert.Equal(t, StateDisconnected, d.State())
}

func TestDisconnectedDeviceRefusesToSend(t *testing.T) {
	m, tr, _ := newTestManager(t)
	ctx := context.Background()

	d := connectConfigured(t, m, "mast-01")
	m.watchdog.Tick(ctx)
	require.Equal(t, StateConnected, d.State())
	require.NoError(t, m.Disconnect(ctx, d.ID()))
	subscriptions := tr.count("mast-01", IntentSubscriptionRequest)

	assert.ErrorIs(t, d.TurnOn(ctx, nil), ErrDetached)
	assert.ErrorIs(t, d.Goto(ctx, 45, 0, 0, &flirID), ErrDetached)
	assert.ErrorIs(t, d.SendKeepAlive(ctx), ErrDetached)
	assert.ErrorIs(t, d.RequestConfiguration(ctx), ErrDetached)
	assert.ErrorIs(t, d.SendSubscriptionRequest(ctx, mrsv1.DefaultReportCategories()), ErrDetached)

	assert.Zero(t, tr.count("mast-01", IntentCommand))
	assert.Equal(t, 1, tr.count("mast-01", IntentConfigurationRequest), "only the probe sent on connect")
	assert.Equal(t, subscriptions, tr.count("mast-01", IntentSubscriptionRequest))
}

func TestManagerClose(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	sub := m.Subscribe(32, nil)

	a := connectConfigured(t, m, "mast-a")
	b := connectConfigured(t, m, "mast-b")

	m.Close(ctx)
	assert.Empty(t, m.List())
	assert.Equal(t, StateDisconnected, a.State())
	assert.Equal(t, StateDisconnected, b.State())

	for range sub.C() {
	}
}

func TestNewManagerRequiresTransport(t *testing.T) {
	_, err := NewManager(nil)
	assert.Error(t, err)
}
