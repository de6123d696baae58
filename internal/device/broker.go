package device

import (
	"sync"
	"time"

	"github.com/autopeer-io/sensorlink/internal/pkg/metrics"
	"github.com/autopeer-io/sensorlink/pkg/log"
)

// DefaultSubscriptionBuffer is the channel capacity of a Subscription.
const DefaultSubscriptionBuffer = 64

// Broker fans device events out to subscribers. Each subscriber gets its
// own buffered channel; a subscriber that stays full for longer than the
// delivery timeout loses the event.
type Broker struct {
	mu      sync.RWMutex
	subs    map[*Subscription]struct{}
	timeout time.Duration
}

// NewBroker returns a Broker that waits at most timeout for a full subscriber.
func NewBroker(timeout time.Duration) *Broker {
	return &Broker{
		subs:    make(map[*Subscription]struct{}),
		timeout: timeout,
	}
}

// Subscription receives events until Close is called.
type Subscription struct {
	broker *Broker
	filter func(Event) bool
	ch     chan Event
	once   sync.Once
}

// C returns the event channel. It is closed by Close.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close unsubscribes and closes the channel. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.broker.mu.Lock()
		delete(s.broker.subs, s)
		close(s.ch)
		s.broker.mu.Unlock()
	})
}

// Subscribe registers a subscriber. A nil filter receives every event.
func (b *Broker) Subscribe(buffer int, filter func(Event) bool) *Subscription {
	if buffer <= 0 {
		buffer = DefaultSubscriptionBuffer
	}
	s := &Subscription{
		broker: b,
		filter: filter,
		ch:     make(chan Event, buffer),
	}

	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	return s
}

// Publish delivers ev to every matching subscriber.
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for s := range b.subs {
		if s.filter != nil && !s.filter(ev) {
			continue
		}
		select {
		case s.ch <- ev:
			continue
		default:
		}

		timer := time.NewTimer(b.timeout)
		select {
		case s.ch <- ev:
		case <-timer.C:
			metrics.EventsDroppedTotal.Inc()
			log.Warn("Dropping device event for slow subscriber", "device", ev.Device.String(), "type", string(ev.Type), "seq", ev.Seq)
		}
		timer.Stop()
	}
}

// Close closes every subscription.
func (b *Broker) Close() {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[*Subscription]struct{})
	b.mu.Unlock()

	for s := range subs {
		s.once.Do(func() { close(s.ch) })
	}
}
