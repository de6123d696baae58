package mqtt

import (
	"sync"

	"github.com/autopeer-io/sensorlink/pkg/log"
)

// maxBacklog bounds the jobs waiting behind a busy endpoint.
const maxBacklog = 1024

// lanes runs jobs for the same key one after another, in submission order.
// Different keys run concurrently. A key's goroutine exits once its backlog
// is empty, so idle endpoints hold no resources.
type lanes struct {
	mu sync.Mutex
	// pending holds the backlog of every running key.
	pending map[string][]func()
	wg      sync.WaitGroup
}

func newLanes() *lanes {
	return &lanes{pending: make(map[string][]func())}
}

// submit queues job behind the jobs already submitted for key. It never
// blocks; when the backlog is full the job is dropped and submit returns false.
func (l *lanes) submit(key string, job func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	backlog, running := l.pending[key]
	if running {
		if len(backlog) >= maxBacklog {
			log.Warn("Dropping message, endpoint backlog is full", "endpoint", key, "backlog", len(backlog))
			return false
		}
		l.pending[key] = append(backlog, job)
		return true
	}

	l.pending[key] = nil
	l.wg.Add(1)
	go l.run(key, job)
	return true
}

func (l *lanes) run(key string, job func()) {
	defer l.wg.Done()
	for {
		job()

		l.mu.Lock()
		backlog := l.pending[key]
		if len(backlog) == 0 {
			delete(l.pending, key)
			l.mu.Unlock()
			return
		}
		job = backlog[0]
		l.pending[key] = backlog[1:]
		l.mu.Unlock()
	}
}

// wait blocks until every submitted job has run.
func (l *lanes) wait() {
	l.wg.Wait()
}
