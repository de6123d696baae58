package device

import (
	"fmt"
	"time"
)

// MinKeepAliveInterval is the shortest watchdog period accepted.
const MinKeepAliveInterval = time.Second

// Policy holds the liveness knobs. It can be replaced at runtime with
// Manager.SetPolicy; the next watchdog tick uses the new values.
type Policy struct {
	// KeepAliveInterval is the watchdog period.
	KeepAliveInterval time.Duration
	// ConnectionTimeout is the silence after which a device is considered lost.
	ConnectionTimeout time.Duration
	// ReconnectionInterval spaces reconfiguration probes.
	ReconnectionInterval time.Duration
	// ValidateMessagesOnReceive rejects invalid inbound messages.
	ValidateMessagesOnReceive bool
}

// DefaultPolicy returns the default liveness policy.
func DefaultPolicy() Policy {
	return Policy{
		KeepAliveInterval:         time.Second,
		ConnectionTimeout:         5 * time.Second,
		ReconnectionInterval:      10 * time.Second,
		ValidateMessagesOnReceive: true,
	}
}

// Validate checks the policy.
func (p Policy) Validate() error {
	if p.KeepAliveInterval < MinKeepAliveInterval {
		return fmt.Errorf("keep-alive interval %s is below the minimum of %s", p.KeepAliveInterval, MinKeepAliveInterval)
	}
	if p.ConnectionTimeout <= 0 {
		return fmt.Errorf("connection timeout must be positive, got %s", p.ConnectionTimeout)
	}
	if p.ReconnectionInterval <= 0 {
		return fmt.Errorf("reconnection interval must be positive, got %s", p.ReconnectionInterval)
	}
	return nil
}
