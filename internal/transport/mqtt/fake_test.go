package mqtt

import (
	"context"
	"sync"
	"sync/atomic"

	pkgmqtt "github.com/autopeer-io/sensorlink/pkg/mqtt"
	mqtttopic "github.com/autopeer-io/sensorlink/pkg/mqtt/topic"
)

type publishedMessage struct {
	topic   string
	qos     int
	payload []byte
}

// fakeClient is an in-memory pkgmqtt.Client.
type fakeClient struct {
	mu           sync.Mutex
	published    []publishedMessage
	handlers     map[string]pkgmqtt.MessageHandler
	connected    atomic.Bool
	disconnected atomic.Bool
	publishErr   error
}

var _ pkgmqtt.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{handlers: make(map[string]pkgmqtt.MessageHandler)}
}

func (f *fakeClient) Start(context.Context) error {
	f.connected.Store(true)
	return nil
}

func (f *fakeClient) Disconnect(context.Context) {
	f.connected.Store(false)
	f.disconnected.Store(true)
}

func (f *fakeClient) Publish(_ context.Context, topic string, qos int, _ bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, publishedMessage{topic: topic, qos: qos, payload: payload})
	return nil
}

func (f *fakeClient) Subscribe(_ context.Context, topic string, _ int, handler pkgmqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = handler
	return nil
}

func (f *fakeClient) Unsubscribe(_ context.Context, topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handlers, topic)
	return nil
}

func (f *fakeClient) AwaitConnection(context.Context) error {
	return nil
}

func (f *fakeClient) IsConnected() bool {
	return f.connected.Load()
}

func (f *fakeClient) filters() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.handlers))
	for filter := range f.handlers {
		out = append(out, filter)
	}
	return out
}

func (f *fakeClient) lastPublished() (publishedMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.published) == 0 {
		return publishedMessage{}, false
	}
	return f.published[len(f.published)-1], true
}

// deliver hands payload to every handler whose filter matches topic.
func (f *fakeClient) deliver(ctx context.Context, topic string, payload []byte) int {
	f.mu.Lock()
	var matched []pkgmqtt.MessageHandler
	for filter, h := range f.handlers {
		if mqtttopic.Match(filter, topic) {
			matched = append(matched, h)
		}
	}
	f.mu.Unlock()

	for _, h := range matched {
		h(ctx, topic, payload)
	}
	return len(matched)
}
