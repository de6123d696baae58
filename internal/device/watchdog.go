package device

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/autopeer-io/sensorlink/internal/pkg/metrics"
	"github.com/autopeer-io/sensorlink/pkg/log"
)

// probeAction is what a watchdog check decided to send.
type probeAction int

const (
	actionNone probeAction = iota
	actionKeepAlive
	actionProbe
)

// Watchdog periodically checks every registered device for liveness. It
// idles while the registry is empty and picks up a new keep-alive interval
// on the next loop iteration after Arm.
type Watchdog struct {
	registry    *Registry
	clock       clock.WithTicker
	policy      func() Policy
	parallelism int

	kick chan struct{}
}

// NewWatchdog returns a Watchdog over registry.
func NewWatchdog(registry *Registry, clk clock.WithTicker, policy func() Policy, parallelism int) *Watchdog {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Watchdog{
		registry:    registry,
		clock:       clk,
		policy:      policy,
		parallelism: parallelism,
		kick:        make(chan struct{}, 1),
	}
}

// Arm wakes the watchdog loop, e.g. after the first device was added or the
// policy changed. It never blocks.
func (w *Watchdog) Arm() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Run ticks until ctx is done. It always returns nil.
func (w *Watchdog) Run(ctx context.Context) error {
	var (
		ticker clock.Ticker
		period time.Duration
	)
	stop := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
		}
	}
	defer stop()

	log.Info("Connection watchdog started")
	for {
		if w.registry.Len() > 0 {
			if p := w.policy().KeepAliveInterval; ticker == nil || p != period {
				stop()
				ticker = w.clock.NewTicker(p)
				period = p
				log.Debug("Connection watchdog armed", "interval", p.String())
			}
		} else if ticker != nil {
			stop()
			log.Debug("Connection watchdog idle, no devices registered")
		}

		var tick <-chan time.Time
		if ticker != nil {
			tick = ticker.C()
		}

		select {
		case <-ctx.Done():
			log.Info("Connection watchdog stopped")
			return nil
		case <-w.kick:
		case <-tick:
			w.Tick(ctx)
		}
	}
}

// Tick checks every device of a registry snapshot once, in parallel up to
// the configured limit. A failing or panicking check never affects the
// other devices.
func (w *Watchdog) Tick(ctx context.Context) {
	start := w.clock.Now()
	devices := w.registry.Snapshot()
	p := w.policy()

	var g errgroup.Group
	g.SetLimit(w.parallelism)
	for _, d := range devices {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					d.log.Error(fmt.Errorf("panic: %v", r), "Connection check panicked")
				}
			}()
			d.check(ctx, start, p)
			return nil
		})
	}
	_ = g.Wait()

	metrics.WatchdogTickDuration.Observe(w.clock.Since(start).Seconds())
}

// check runs one watchdog step for the device: decide under the lock,
// publish, then send.
func (d *Device) check(ctx context.Context, now time.Time, p Policy) {
	action := d.assess(now, p)
	d.flush()

	switch action {
	case actionKeepAlive:
		_ = d.SendKeepAlive(ctx)
	case actionProbe:
		_ = d.RequestConfiguration(ctx)
	}
}

// assess applies the liveness rules at time now.
func (d *Device) assess(now time.Time, p Policy) probeAction {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.detached {
		return actionNone
	}

	live := !d.lastContact.IsZero() && now.Sub(d.lastContact) < p.ConnectionTimeout
	state := d.fsm.state()

	switch {
	case live:
		if state != StateConnected {
			if _, err := d.fsm.fire(EventContact); err != nil {
				d.log.Error(err, "Failed to mark device connected")
			}
			d.probeTime = nil
			d.enqueue(EventConnected, nil)
			d.log.Info("Device connected")
		}
		return actionKeepAlive

	case state == StateConnected:
		if _, err := d.fsm.fire(EventTimeout); err != nil {
			d.log.Error(err, "Failed to mark device reconnecting")
		}
		t := now
		d.probeTime = &t
		d.enqueue(EventDisconnected, nil)
		d.log.Info("Device connection lost, probing", "lastContact", d.lastContact)
		return actionProbe

	default:
		if d.probeTime == nil || now.Sub(*d.probeTime) >= p.ReconnectionInterval {
			t := now
			d.probeTime = &t
			return actionProbe
		}
		return actionNone
	}
}
