package device

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/autopeer-io/sensorlink/internal/pkg/metrics"
	fsmutil "github.com/autopeer-io/sensorlink/internal/pkg/util/fsm"
)

// State is the connection state of a device.
type State string

const (
	StateDisconnected State = "Disconnected"
	StateReconnecting State = "Reconnecting"
	StateConnected    State = "Connected"
)

const (
	// EventConnect starts supervising a device.
	EventConnect = "connect"
	// EventContact marks a device as live again.
	EventContact = "contact"
	// EventTimeout marks the first loss of contact.
	EventTimeout = "timeout"
	// EventDisconnect stops supervising a device.
	EventDisconnect = "disconnect"
)

// connectionFSM wraps the connection state machine of one device. It is not
// safe for concurrent use on its own; the owning Device's mutex guards it.
type connectionFSM struct {
	*fsm.FSM
}

func newConnectionFSM() *connectionFSM {
	f := &connectionFSM{}

	events := fsm.Events{
		{Name: EventConnect, Src: []string{string(StateDisconnected)}, Dst: string(StateReconnecting)},
		{Name: EventContact, Src: []string{string(StateReconnecting)}, Dst: string(StateConnected)},
		{Name: EventTimeout, Src: []string{string(StateConnected)}, Dst: string(StateReconnecting)},
		{Name: EventDisconnect, Src: []string{string(StateConnected), string(StateReconnecting)}, Dst: string(StateDisconnected)},
	}

	callbacks := fsm.Callbacks{
		// Side-Effects: keep the per-state device gauge in step.
		"enter_state": fsmutil.WrapEvent(f.actionEnterState),
	}

	f.FSM = fsm.NewFSM(string(StateDisconnected), events, callbacks)
	return f
}

// actionEnterState must not call back into the FSM.
func (f *connectionFSM) actionEnterState(_ context.Context, e *fsm.Event) error {
	if e.Src != string(StateDisconnected) {
		metrics.DevicesByState.WithLabelValues(e.Src).Dec()
	}
	if e.Dst != string(StateDisconnected) {
		metrics.DevicesByState.WithLabelValues(e.Dst).Inc()
	}
	metrics.StateTransitionsTotal.WithLabelValues(e.Src, e.Dst).Inc()
	return nil
}

// fire applies event and reports whether the state changed. A transition
// that does not apply to the current state is not an error.
func (f *connectionFSM) fire(event string) (bool, error) {
	before := f.Current()
	// The callers hold the device lock, never a request context: a canceled
	// context would make looplab skip the transition.
	err := f.Event(context.Background(), event)
	if err != nil {
		if !fsmutil.IsRealError(err) {
			return false, nil
		}
		if _, ok := err.(fsm.InvalidEventError); ok {
			return false, nil
		}
		return false, err
	}
	return f.Current() != before, nil
}

func (f *connectionFSM) state() State {
	return State(f.Current())
}
