package device

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
	"github.com/autopeer-io/sensorlink/pkg/log"
)

// Manager supervises devices: it owns the registry, the watchdog and the
// event broker, and routes inbound transport messages to devices by endpoint.
type Manager struct {
	registry *Registry
	watchdog *Watchdog
	broker   *Broker
	deps     *deps
	policy   atomic.Pointer[Policy]

	subscriptions []mrsv1.ReportCategory
}

type managerOptions struct {
	clock           clock.WithTicker
	policy          Policy
	requestorID     string
	parallelism     int
	subscriptions   []mrsv1.ReportCategory
	sendTimeout     time.Duration
	deliveryTimeout time.Duration
}

// Option configures a Manager.
type Option func(*managerOptions)

// WithClock sets the time source. Tests use a fake clock.
func WithClock(c clock.WithTicker) Option {
	return func(o *managerOptions) { o.clock = c }
}

// WithPolicy sets the initial liveness policy.
func WithPolicy(p Policy) Option {
	return func(o *managerOptions) { o.policy = p }
}

// WithRequestorID sets the requestor identification of outbound messages.
func WithRequestorID(id string) Option {
	return func(o *managerOptions) { o.requestorID = id }
}

// WithParallelism caps the devices checked concurrently per watchdog tick.
func WithParallelism(n int) Option {
	return func(o *managerOptions) { o.parallelism = n }
}

// WithSubscriptions sets the report categories requested when Connect is
// called without any.
func WithSubscriptions(categories []mrsv1.ReportCategory) Option {
	return func(o *managerOptions) { o.subscriptions = slices.Clone(categories) }
}

// WithSendTimeout bounds each outbound send.
func WithSendTimeout(d time.Duration) Option {
	return func(o *managerOptions) { o.sendTimeout = d }
}

// WithEventDeliveryTimeout bounds how long a full subscriber may hold up an event.
func WithEventDeliveryTimeout(d time.Duration) Option {
	return func(o *managerOptions) { o.deliveryTimeout = d }
}

// NewManager returns a Manager sending through transport.
func NewManager(transport Transport, opts ...Option) (*Manager, error) {
	if transport == nil {
		return nil, errors.New("device transport is required")
	}

	o := managerOptions{
		clock:           clock.RealClock{},
		policy:          DefaultPolicy(),
		requestorID:     "sensorlink",
		parallelism:     32,
		subscriptions:   mrsv1.DefaultReportCategories(),
		sendTimeout:     5 * time.Second,
		deliveryTimeout: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid device policy: %w", err)
	}
	if o.sendTimeout <= 0 {
		return nil, fmt.Errorf("send timeout must be positive, got %s", o.sendTimeout)
	}

	m := &Manager{
		broker:        NewBroker(o.deliveryTimeout),
		subscriptions: o.subscriptions,
	}
	m.policy.Store(&o.policy)
	m.deps = &deps{
		clock:       o.clock,
		transport:   transport,
		broker:      m.broker,
		requestorID: o.requestorID,
		sendTimeout: o.sendTimeout,
		policy:      m.Policy,
		messageID:   uuid.NewString,
	}
	m.registry = NewRegistry(func() { m.watchdog.Arm() })
	m.watchdog = NewWatchdog(m.registry, o.clock, m.Policy, o.parallelism)

	return m, nil
}

// Policy returns the current liveness policy.
func (m *Manager) Policy() Policy {
	return *m.policy.Load()
}

// SetPolicy replaces the liveness policy. The watchdog picks up a new
// keep-alive interval right away.
func (m *Manager) SetPolicy(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.policy.Store(&p)
	m.watchdog.Arm()
	log.Info("Device policy updated",
		"keepAliveInterval", p.KeepAliveInterval.String(),
		"connectionTimeout", p.ConnectionTimeout.String(),
		"reconnectionInterval", p.ReconnectionInterval.String(),
		"validateMessagesOnReceive", p.ValidateMessagesOnReceive)
	return nil
}

// Run drives the connection watchdog until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	return m.watchdog.Run(ctx)
}

// Connect starts supervising the device at id. A nil categories list uses
// the manager's default subscriptions. The device starts Reconnecting and
// is sent a configuration request right away.
func (m *Manager) Connect(ctx context.Context, id Identity, categories []mrsv1.ReportCategory) (*Device, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = m.subscriptions
	}
	probe := &mrsv1.DeviceSubscriptionConfiguration{SubscriptionTypes: categories}
	if err := newValidationError("subscription", mrsv1.ValidateDeviceSubscriptionConfiguration(probe)); err != nil {
		return nil, err
	}
	if _, ok := m.registry.Get(id); ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyConnected, id)
	}

	d := newDevice(id, categories, m.deps)
	if err := d.connect(); err != nil {
		return nil, err
	}
	if !m.registry.Add(d) {
		// Lost a race with a concurrent Connect for the same identity.
		d.abandon()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyConnected, id)
	}
	d.log.Info("Device connecting", "subscriptions", categories)

	// The watchdog re-probes on the reconnection interval if this fails.
	_ = d.RequestConfiguration(ctx)
	return d, nil
}

// Disconnect stops supervising the device at id.
func (m *Manager) Disconnect(ctx context.Context, id Identity) error {
	d := m.registry.Remove(id)
	if d == nil {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	d.disconnect(ctx)
	return nil
}

// Get returns the device registered for id.
func (m *Manager) Get(id Identity) (*Device, bool) {
	return m.registry.Get(id)
}

// Find returns the device at endpoint, whatever its peer.
func (m *Manager) Find(endpoint string) (*Device, error) {
	d, ok := m.registry.FindByEndpoint(endpoint)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, endpoint)
	}
	return d, nil
}

// List returns the registered devices in registration order.
func (m *Manager) List() []*Device {
	return m.registry.Snapshot()
}

// Subscribe returns a subscription to device events. A nil filter receives
// every event; buffer <= 0 uses DefaultSubscriptionBuffer.
func (m *Manager) Subscribe(buffer int, filter func(Event) bool) *Subscription {
	return m.broker.Subscribe(buffer, filter)
}

// Close disconnects every device and closes all subscriptions.
func (m *Manager) Close(ctx context.Context) {
	for _, d := range m.registry.Snapshot() {
		if m.registry.Remove(d.ID()) != nil {
			d.disconnect(ctx)
		}
	}
	m.broker.Close()
}

// OnConfigurationReceived routes a configuration from endpoint.
func (m *Manager) OnConfigurationReceived(ctx context.Context, endpoint string, msg *mrsv1.DeviceConfiguration) error {
	d, err := m.route(endpoint, msg == nil)
	if err != nil {
		return err
	}
	return d.HandleConfiguration(ctx, msg)
}

// OnStatusReportReceived routes a status fragment from endpoint.
func (m *Manager) OnStatusReportReceived(ctx context.Context, endpoint string, msg *mrsv1.DeviceStatusReport) error {
	d, err := m.route(endpoint, msg == nil)
	if err != nil {
		return err
	}
	return d.HandleStatusReport(ctx, msg)
}

// OnIndicationReportReceived routes an indication report from endpoint.
func (m *Manager) OnIndicationReportReceived(ctx context.Context, endpoint string, msg *mrsv1.DeviceIndicationReport) error {
	d, err := m.route(endpoint, msg == nil)
	if err != nil {
		return err
	}
	return d.HandleIndicationReport(ctx, msg)
}

// OnSubscriptionAckReceived routes a subscription acknowledgement from endpoint.
func (m *Manager) OnSubscriptionAckReceived(ctx context.Context, endpoint string, msg *mrsv1.DeviceSubscriptionConfiguration) error {
	d, err := m.route(endpoint, msg == nil)
	if err != nil {
		return err
	}
	return d.HandleSubscriptionAck(ctx, msg)
}

// OnCommandEchoReceived routes a command echo from endpoint.
func (m *Manager) OnCommandEchoReceived(ctx context.Context, endpoint string, msg *mrsv1.CommandMessage) error {
	d, err := m.route(endpoint, msg == nil)
	if err != nil {
		return err
	}
	return d.HandleCommandEcho(ctx, msg)
}

func (m *Manager) route(endpoint string, empty bool) (*Device, error) {
	if empty {
		return nil, errors.New("empty message")
	}
	return m.Find(endpoint)
}
