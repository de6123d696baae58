package simulator

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	pkgmqtt "github.com/autopeer-io/sensorlink/pkg/mqtt"
	mqtttopic "github.com/autopeer-io/sensorlink/pkg/mqtt/topic"
)

// memBroker is an in-process broker. Messages are delivered on their own
// goroutine so handlers never run inside Publish.
type memBroker struct {
	mu   sync.Mutex
	subs []memSub
}

type memSub struct {
	owner   *memClient
	filter  string
	handler pkgmqtt.MessageHandler
}

type memClient struct {
	broker    *memBroker
	connected atomic.Bool
}

var _ pkgmqtt.Client = (*memClient)(nil)

func (b *memBroker) client() *memClient {
	return &memClient{broker: b}
}

func (b *memBroker) subscriptions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (c *memClient) Start(context.Context) error {
	c.connected.Store(true)
	return nil
}

func (c *memClient) Disconnect(context.Context) {
	c.connected.Store(false)
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()
	c.broker.subs = slices.DeleteFunc(c.broker.subs, func(s memSub) bool { return s.owner == c })
}

func (c *memClient) Publish(_ context.Context, topic string, _ int, _ bool, payload []byte) error {
	data := slices.Clone(payload)

	c.broker.mu.Lock()
	var handlers []pkgmqtt.MessageHandler
	for _, s := range c.broker.subs {
		if mqtttopic.Match(s.filter, topic) {
			handlers = append(handlers, s.handler)
		}
	}
	c.broker.mu.Unlock()

	for _, h := range handlers {
		go h(context.Background(), topic, data)
	}
	return nil
}

func (c *memClient) Subscribe(_ context.Context, topic string, _ int, handler pkgmqtt.MessageHandler) error {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()
	c.broker.subs = append(c.broker.subs, memSub{owner: c, filter: topic, handler: handler})
	return nil
}

func (c *memClient) Unsubscribe(_ context.Context, topic string) error {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()
	c.broker.subs = slices.DeleteFunc(c.broker.subs, func(s memSub) bool { return s.owner == c && s.filter == topic })
	return nil
}

func (c *memClient) AwaitConnection(context.Context) error {
	return nil
}

func (c *memClient) IsConnected() bool {
	return c.connected.Load()
}
