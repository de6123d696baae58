package mqtt

import (
	"context"
	"sync"
	"time"
)

type message struct {
	topic   string
	payload []byte
}

// inbox runs the handler of one subscription on its own goroutine, one
// message at a time, in the order the broker delivered them.
type inbox struct {
	handler MessageHandler
	timeout time.Duration
	queue   chan message
	done    chan struct{}
	stop    sync.Once
}

func newInbox(handler MessageHandler, timeout time.Duration, size int) *inbox {
	b := &inbox{
		handler: handler,
		timeout: timeout,
		queue:   make(chan message, size),
		done:    make(chan struct{}),
	}
	go b.run()
	return b
}

// push queues a message. It blocks while the queue is full, holding back the
// connection reader, and returns false once the inbox is closed.
func (b *inbox) push(topic string, payload []byte) bool {
	select {
	case <-b.done:
		return false
	default:
	}

	select {
	case b.queue <- message{topic: topic, payload: payload}:
		return true
	case <-b.done:
		return false
	}
}

func (b *inbox) run() {
	for {
		select {
		case <-b.done:
			return
		case m := <-b.queue:
			b.deliver(m)
		}
	}
}

func (b *inbox) deliver(m message) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	b.handler(ctx, m.topic, m.payload)
}

// close stops the worker. Queued messages are discarded.
func (b *inbox) close() {
	b.stop.Do(func() { close(b.done) })
}
