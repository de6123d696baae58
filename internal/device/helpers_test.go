package device

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var (
	pedestalID = mrsv1.SensorIdentification{SensorType: mrsv1.SensorTypePedestal, SensorID: "1"}
	flirID     = mrsv1.SensorIdentification{SensorType: mrsv1.SensorTypeFLIR, SensorID: "1"}
	dayID      = mrsv1.SensorIdentification{SensorType: mrsv1.SensorTypeDayCameraColor, SensorID: "1"}
	switchID   = mrsv1.SensorIdentification{SensorType: mrsv1.SensorTypeVideoSwitch, SensorID: "1"}
	radarID    = mrsv1.SensorIdentification{SensorType: mrsv1.SensorTypeRadar, SensorID: "1"}
)

type sentMessage struct {
	id     Identity
	intent string
	msg    any
}

// fakeTransport records outbound messages and fails sends to endpoints
// listed in fail.
type fakeTransport struct {
	mu   sync.Mutex
	sent []sentMessage
	fail map[string]error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{fail: make(map[string]error)}
}

func (f *fakeTransport) record(id Identity, intent string, msg any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[id.Endpoint]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMessage{id: id, intent: intent, msg: msg})
	return nil
}

func (f *fakeTransport) SendConfigurationRequest(_ context.Context, id Identity, msg *mrsv1.DeviceConfiguration) error {
	return f.record(id, IntentConfigurationRequest, msg)
}

func (f *fakeTransport) SendSubscriptionRequest(_ context.Context, id Identity, msg *mrsv1.DeviceSubscriptionConfiguration) error {
	return f.record(id, IntentSubscriptionRequest, msg)
}

func (f *fakeTransport) SendCommand(_ context.Context, id Identity, msg *mrsv1.CommandMessage) error {
	intent := IntentCommand
	if s := msg.Command.Simple; s != nil && *s == mrsv1.SimpleCommandKeepAlive {
		intent = IntentKeepAlive
	}
	return f.record(id, intent, msg)
}

func (f *fakeTransport) setFail(endpoint string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[endpoint] = err
}

func (f *fakeTransport) count(endpoint, intent string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sent {
		if s.id.Endpoint == endpoint && s.intent == intent {
			n++
		}
	}
	return n
}

func (f *fakeTransport) last(endpoint, intent string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if s := f.sent[i]; s.id.Endpoint == endpoint && s.intent == intent {
			return s.msg
		}
	}
	return nil
}

func (f *fakeTransport) lastCommand(t *testing.T, endpoint string) *mrsv1.CommandMessage {
	t.Helper()
	msg, ok := f.last(endpoint, IntentCommand).(*mrsv1.CommandMessage)
	require.True(t, ok, "no command sent to %s", endpoint)
	return msg
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *fakeTransport, *clocktesting.FakeClock) {
	t.Helper()
	tr := newFakeTransport()
	fc := clocktesting.NewFakeClock(t0)
	m, err := NewManager(tr, append([]Option{WithClock(fc), WithRequestorID("test-manager")}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close(context.Background()) })
	return m, tr, fc
}

// connectConfigured connects endpoint and delivers testConfiguration.
func connectConfigured(t *testing.T, m *Manager, endpoint string) *Device {
	t.Helper()
	ctx := context.Background()
	d, err := m.Connect(ctx, Identity{Endpoint: endpoint}, nil)
	require.NoError(t, err)
	require.NoError(t, m.OnConfigurationReceived(ctx, endpoint, testConfiguration()))
	return d
}

func testConfiguration() *mrsv1.DeviceConfiguration {
	return &mrsv1.DeviceConfiguration{
		MessageHeader: mrsv1.MessageHeader{
			MessageType:          mrsv1.MessageTypeResponse,
			DeviceIdentification: &mrsv1.DeviceIdentification{DeviceName: "mast-01"},
		},
		SensorConfigurations: []mrsv1.SensorConfiguration{
			{SensorIdentification: pedestalID, SimpleCommands: []mrsv1.SimpleCommand{mrsv1.SimpleCommandStop, mrsv1.SimpleCommandMove, mrsv1.SimpleCommandGoTo}},
			{SensorIdentification: flirID, SimpleCommands: []mrsv1.SimpleCommand{mrsv1.SimpleCommandStop, mrsv1.SimpleCommandZoom, mrsv1.SimpleCommandFocus}},
			{SensorIdentification: dayID, SimpleCommands: []mrsv1.SimpleCommand{mrsv1.SimpleCommandZoom}},
			{SensorIdentification: switchID, SimpleCommands: []mrsv1.SimpleCommand{mrsv1.SimpleCommandSet}},
			{SensorIdentification: radarID, SimpleCommands: []mrsv1.SimpleCommand{mrsv1.SimpleCommandStop}},
		},
	}
}

func temperatureReport(id mrsv1.SensorIdentification, temp float64) *mrsv1.DeviceStatusReport {
	return &mrsv1.DeviceStatusReport{
		SensorStatusReports: []mrsv1.SensorStatusReport{
			{SensorIdentification: id, Temperature: &temp},
		},
	}
}

func videoSwitchReport(ch mrsv1.VideoChannel) *mrsv1.DeviceStatusReport {
	return &mrsv1.DeviceStatusReport{
		SensorStatusReports: []mrsv1.SensorStatusReport{
			{
				SensorIdentification: switchID,
				Item: &mrsv1.SensorStatusItem{
					VideoSwitch: &mrsv1.VideoSwitchStatus{VideoChannels: []mrsv1.VideoChannel{ch}},
				},
			},
		},
	}
}

// drain returns the events buffered on sub without blocking.
func drain(sub *Subscription) []Event {
	var out []Event
	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Type)
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
