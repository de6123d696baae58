package device

import (
	"context"
	"slices"
	"sync"
	"time"

	"k8s.io/utils/clock"

	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
	"github.com/autopeer-io/sensorlink/pkg/log"
)

// deps are the collaborators shared by every device of a Manager.
type deps struct {
	clock       clock.PassiveClock
	transport   Transport
	broker      *Broker
	requestorID string
	sendTimeout time.Duration
	policy      func() Policy
	messageID   func() string
}

// Device is the supervised state of one remote device. All mutable fields
// are guarded by mu; events are queued under mu and published in order by
// flush.
type Device struct {
	id   Identity
	log  log.Logger
	deps *deps

	mu            sync.Mutex
	fsm           *connectionFSM
	lastContact   time.Time
	probeTime     *time.Time
	configuration *mrsv1.DeviceConfiguration
	sensors       []*Sensor
	active        *Sensor
	categories    []mrsv1.ReportCategory
	cumulative    *mrsv1.DeviceStatusReport
	lastRaw       *mrsv1.DeviceStatusReport
	detached      bool
	seq           uint64
	outbox        []Event

	// flushMu serializes publication so events leave in sequence order.
	flushMu sync.Mutex
}

func newDevice(id Identity, categories []mrsv1.ReportCategory, d *deps) *Device {
	return &Device{
		id:         id,
		log:        log.WithValues("device", id.String()),
		deps:       d,
		fsm:        newConnectionFSM(),
		categories: slices.Clone(categories),
	}
}

// ID returns the device identity.
func (d *Device) ID() Identity {
	return d.id
}

// State returns the current connection state.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fsm.state()
}

// LastContactTime returns when a message was last received from the device.
// It is the zero time until the first message.
func (d *Device) LastContactTime() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastContact
}

// CumulativeStatus returns the merged status snapshot. The result shares
// structure with the device state and must be treated as read-only.
func (d *Device) CumulativeStatus() *mrsv1.DeviceStatusReport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cumulative
}

// Snapshot is a point-in-time copy of a device's state. Pointer fields share
// structure with the device and must be treated as read-only.
type Snapshot struct {
	ID                   Identity
	State                State
	LastContactTime      time.Time
	ReconnectProbeTime   *time.Time
	DeviceIdentification *mrsv1.DeviceIdentification
	Sensors              []Sensor
	ActiveSensor         *mrsv1.SensorIdentification
	Subscriptions        []mrsv1.ReportCategory
	CumulativeStatus     *mrsv1.DeviceStatusReport
	LastStatus           *mrsv1.DeviceStatusReport
}

// Snapshot returns a consistent copy of the device state.
func (d *Device) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := Snapshot{
		ID:                   d.id,
		State:                d.fsm.state(),
		LastContactTime:      d.lastContact,
		DeviceIdentification: d.deviceIdentification(),
		Sensors:              copySensors(d.sensors),
		Subscriptions:        slices.Clone(d.categories),
		CumulativeStatus:     d.cumulative,
		LastStatus:           d.lastRaw,
	}
	if d.probeTime != nil {
		t := *d.probeTime
		s.ReconnectProbeTime = &t
	}
	if d.active != nil {
		id := d.active.Identification()
		s.ActiveSensor = &id
	}
	return s
}

// deviceIdentification must be called with mu held.
func (d *Device) deviceIdentification() *mrsv1.DeviceIdentification {
	if d.configuration == nil {
		return nil
	}
	return d.configuration.DeviceIdentification
}

// enqueue must be called with mu held.
func (d *Device) enqueue(t EventType, msg any) {
	d.seq++
	d.outbox = append(d.outbox, Event{
		Type:    t,
		Device:  d.id,
		Seq:     d.seq,
		Time:    d.deps.clock.Now(),
		Message: msg,
	})
}

// flush publishes queued events. It must be called without mu held.
func (d *Device) flush() {
	d.flushMu.Lock()
	defer d.flushMu.Unlock()

	d.mu.Lock()
	events := d.outbox
	d.outbox = nil
	d.mu.Unlock()

	for _, ev := range events {
		d.deps.broker.Publish(ev)
	}
}

// touch must be called with mu held.
func (d *Device) touch() {
	d.lastContact = d.deps.clock.Now()
}

// connect moves a new device to Reconnecting and starts the probe clock.
func (d *Device) connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.fsm.fire(EventConnect); err != nil {
		return err
	}
	now := d.deps.clock.Now()
	d.probeTime = &now
	return nil
}

// disconnect stops supervising the device. A connected device is first
// unsubscribed from every report category. The device must already be
// removed from the registry.
func (d *Device) disconnect(ctx context.Context) {
	d.mu.Lock()
	if d.detached {
		d.mu.Unlock()
		return
	}
	d.detached = true
	wasConnected := d.fsm.state() == StateConnected
	d.mu.Unlock()

	if wasConnected {
		_ = d.unsubscribe(ctx)
	}

	d.mu.Lock()
	if _, err := d.fsm.fire(EventDisconnect); err != nil {
		d.log.Error(err, "Failed to mark device disconnected")
	}
	d.probeTime = nil
	d.enqueue(EventDisconnected, nil)
	d.mu.Unlock()

	d.flush()
	d.log.Info("Device disconnected")
}

// abandon drops a device that never made it into the registry.
func (d *Device) abandon() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detached = true
	_, _ = d.fsm.fire(EventDisconnect)
}
