package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/autopeer-io/sensorlink/internal/device"
	mqtttransport "github.com/autopeer-io/sensorlink/internal/transport/mqtt"
	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
	"github.com/autopeer-io/sensorlink/pkg/mqtt/topic"
)

type rig struct {
	broker  *memBroker
	manager *device.Manager
	plant   *Plant
	clock   *clocktesting.FakeClock
}

// newRig runs a manager and a simulator for endpoint sim-01 on an
// in-process broker.
func newRig(t *testing.T) *rig {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r := &rig{
		broker: &memBroker{},
		plant:  newTestPlant(),
		clock:  clocktesting.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	}
	topics := topic.NewBuilder("sensorlink/v1")

	mgrClient := r.broker.client()
	m, err := device.NewManager(mqtttransport.NewTransport(mgrClient, topics, 1), device.WithRequestorID("rig"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close(context.Background()) })
	r.manager = m

	srv := mqtttransport.NewServer(mgrClient, topics, m, 1, "")
	go func() { _ = srv.Start(ctx) }()

	sim := New(NewHub("sim-01", r.broker.client(), topics, 1), r.plant, time.Second, r.clock)
	go func() { _ = sim.Run(ctx) }()

	// five upstream filters for the manager, three downstream topics for the simulator
	require.Eventually(t, func() bool { return r.broker.subscriptions() == 8 }, 5*time.Second, 10*time.Millisecond)
	return r
}

func pedestalAzimuth(d *device.Device) (float64, bool) {
	for _, s := range d.Snapshot().Sensors {
		if s.Configuration.SensorIdentification != pedestal || s.Status == nil || s.Status.Item == nil || s.Status.Item.Pedestal == nil {
			continue
		}
		if az := s.Status.Item.Pedestal.Azimuth; az != nil {
			return *az, true
		}
	}
	return 0, false
}

func TestSimulatedDeviceConnects(t *testing.T) {
	r := newRig(t)

	d, err := r.manager.Connect(context.Background(), device.Identity{Endpoint: "sim-01"}, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap := d.Snapshot()
		return snap.State == device.StateConnected && snap.CumulativeStatus != nil && snap.ActiveSensor != nil
	}, 5*time.Second, 10*time.Millisecond)

	snap := d.Snapshot()
	assert.Equal(t, "Mast", snap.DeviceIdentification.DeviceName)
	assert.Len(t, snap.Sensors, 4)
	assert.Equal(t, flir, *snap.ActiveSensor)
}

func TestSimulatedDeviceExecutesGoto(t *testing.T) {
	r := newRig(t)
	ctx := context.Background()

	d, err := r.manager.Connect(ctx, device.Identity{Endpoint: "sim-01"}, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return d.Snapshot().ActiveSensor != nil }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, d.Goto(ctx, 45, 0, 0, nil))
	require.Eventually(t, func() bool {
		az, ok := pedestalAzimuth(d)
		return ok && az == 800
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSimulatedDeviceReportsRejectedCommands(t *testing.T) {
	r := newRig(t)
	ctx := context.Background()

	d, err := r.manager.Connect(ctx, device.Identity{Endpoint: "sim-01"},
		[]mrsv1.ReportCategory{mrsv1.ReportCategoryOperationalIndication})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return d.State() == device.StateConnected }, 5*time.Second, 10*time.Millisecond)

	sub := r.manager.Subscribe(64, func(ev device.Event) bool {
		_, ok := ev.Message.(*mrsv1.DeviceIndicationReport)
		return ok
	})
	defer sub.Close()

	// The subscription ack races the command; resend until the indication arrives.
	radar := mrsv1.SensorIdentification{SensorType: mrsv1.SensorTypeRadar, SensorID: "9"}
	on := mrsv1.SimpleCommandOn
	var got *mrsv1.DeviceIndicationReport
	require.Eventually(t, func() bool {
		if err := d.SendCommand(ctx, mrsv1.Command{Simple: &on}, &radar); err != nil {
			return false
		}
		select {
		case ev := <-sub.C():
			got = ev.Message.(*mrsv1.DeviceIndicationReport)
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	require.Len(t, got.Indications, 1)
	assert.Equal(t, "CommandRejected", got.Indications[0].Code)
	assert.Equal(t, radar, *got.Indications[0].SensorIdentification)
}

func TestSimulatorPushesPeriodicStatus(t *testing.T) {
	r := newRig(t)
	ctx := context.Background()

	d, err := r.manager.Connect(ctx, device.Identity{Endpoint: "sim-01"}, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return d.Snapshot().CumulativeStatus != nil }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, d.Move(ctx, 100, 0))
	require.Eventually(t, func() bool {
		r.clock.Step(time.Second)
		az, ok := pedestalAzimuth(d)
		return ok && az > 0
	}, 5*time.Second, 20*time.Millisecond)
}
