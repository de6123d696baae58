package mqtt

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/eclipse/paho.golang/paho"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientConfigValidate(t *testing.T) {
	cfg := &ClientConfig{BrokerURL: "tcp://localhost:1883"}
	setDefaultConfig(cfg)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint16(60), cfg.KeepAlive)
	assert.NotZero(t, cfg.HandlerTimeout)

	assert.Error(t, (&ClientConfig{}).Validate())
	assert.Error(t, (&ClientConfig{BrokerURL: "localhost"}).Validate())
	assert.Error(t, (&ClientConfig{BrokerURL: "tcp://localhost:1883", WillQoS: 3}).Validate())
}

func TestNewClientRejectsNilConfig(t *testing.T) {
	_, err := NewClient(nil)
	assert.Error(t, err)
}

func TestConnectionChangeReportsTransitionsOnly(t *testing.T) {
	var seen []bool
	c, err := NewClient(&ClientConfig{
		BrokerURL:          "tcp://localhost:1883",
		OnConnectionChange: func(up bool) { seen = append(seen, up) },
	})
	require.NoError(t, err)

	pc := c.(*pahoClient)
	pc.setConnected(true)
	pc.setConnected(true)
	pc.setConnected(false)
	pc.setConnected(false)

	assert.Equal(t, []bool{true, false}, seen)
	assert.False(t, c.IsConnected())
	assert.NotZero(t, pc.cfg.ReconnectBackoff)
}

func TestRouterKeepsDeliveryOrderPerSubscription(t *testing.T) {
	c, err := NewClient(&ClientConfig{BrokerURL: "tcp://localhost:1883", InboxSize: 4})
	require.NoError(t, err)
	pc := c.(*pahoClient)
	t.Cleanup(func() { pc.Disconnect(context.Background()) })

	var mu sync.Mutex
	var got []string
	pc.register("status/+", 1, func(_ context.Context, topic string, payload []byte) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, topic+"="+string(payload))
	})

	var want []string
	for i := range 100 {
		payload := strconv.Itoa(i)
		ok, err := pc.router(paho.PublishReceived{Packet: &paho.Publish{Topic: "status/mast-01", Payload: []byte(payload)}})
		require.NoError(t, err)
		require.True(t, ok)
		want = append(want, "status/mast-01="+payload)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == len(want)
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, want, got)
}

func TestInboxDiscardsAfterClose(t *testing.T) {
	calls := make(chan string, 1)
	b := newInbox(func(_ context.Context, topic string, _ []byte) { calls <- topic }, time.Second, 1)

	require.True(t, b.push("a", nil))
	assert.Equal(t, "a", <-calls)

	b.close()
	b.close()
	assert.False(t, b.push("b", nil))
}

func TestReplacedSubscriptionStopsPreviousHandler(t *testing.T) {
	c, err := NewClient(&ClientConfig{BrokerURL: "tcp://localhost:1883"})
	require.NoError(t, err)
	pc := c.(*pahoClient)

	pc.register("status/+", 0, func(context.Context, string, []byte) {})
	v, ok := pc.subscriptions.Load("status/+")
	require.True(t, ok)
	first := v.(subscriptionEntry).inbox

	pc.register("status/+", 0, func(context.Context, string, []byte) {})
	assert.False(t, first.push("status/x", nil), "replaced handler no longer receives")

	pc.Disconnect(context.Background())
	_, ok = pc.subscriptions.Load("status/+")
	assert.False(t, ok)
}
