// Package queue implements the CommandQueue: a single writer goroutine
// that serializes every session's outbound frames and emits a periodic
// status-request heartbeat per session, grounded on WiiCommandQueue in
// the original libwiimote.py and on the single-writer-goroutine shape of
// the teacher's linux/internal/cmd/cmd.go.
package queue

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	pollInterval      = 500 * time.Millisecond
	heartbeatInterval = 5 * time.Second
)

// Session is what the queue needs from a DeviceSession: enough to write
// a frame, report a transport failure back through the rendezvous, build
// a status-poll payload, and tear itself down.
type Session interface {
	Send(payload []byte) error
	OnSendError()
	StatusPollPayload() []byte
	Disconnect()
}

type item struct {
	session Session
	payload []byte
}

type heartbeat struct {
	next time.Time
}

// Queue is the long-lived CommandQueue. The zero value is not usable;
// construct with New. Lifecycle is explicit (Start/Stop), replacing the
// original's "stop() reassigns a global" pattern (Design Notes).
type Queue struct {
	log logrus.FieldLogger

	mu       sync.Mutex
	fifo     []item
	sessions map[Session]*heartbeat

	wake    chan struct{}
	stopCh  chan struct{}
	stopped sync.Once
	started bool
}

func New(log logrus.FieldLogger) *Queue {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Queue{
		log:      log,
		sessions: make(map[Session]*heartbeat),
		wake:     make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
}

// Start launches the writer goroutine. Safe to call more than once.
func (q *Queue) Start() {
	q.mu.Lock()
	already := q.started
	q.started = true
	q.mu.Unlock()
	if !already {
		go q.run()
	}
}

// Enqueue appends (session, payload) to the FIFO without blocking the
// caller, registering the session for heartbeats if it isn't already.
func (q *Queue) Enqueue(s Session, payload []byte) {
	q.mu.Lock()
	if _, ok := q.sessions[s]; !ok {
		q.sessions[s] = &heartbeat{next: time.Now().Add(heartbeatInterval)}
	}
	q.fifo = append(q.fifo, item{session: s, payload: payload})
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Remove disowns a session; it stops receiving heartbeats. Called when a
// session disconnects.
func (q *Queue) Remove(s Session) {
	q.mu.Lock()
	delete(q.sessions, s)
	q.mu.Unlock()
}

// Stop halts the writer goroutine. Idempotent.
func (q *Queue) Stop() {
	q.stopped.Do(func() { close(q.stopCh) })
}

func (q *Queue) dequeue() (item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.fifo) == 0 {
		return item{}, false
	}
	it := q.fifo[0]
	q.fifo = q.fifo[1:]
	return it, true
}

func (q *Queue) run() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-q.stopCh:
			return
		case <-q.wake:
		case <-ticker.C:
		}
		q.drain()
		q.pollHeartbeats()
	}
}

func (q *Queue) drain() {
	for {
		it, ok := q.dequeue()
		if !ok {
			return
		}
		if err := it.session.Send(it.payload); err != nil {
			// Transport failure: the queue never raises, it reports the
			// error only via the session's own command rendezvous.
			it.session.OnSendError()
		}
	}
}

func (q *Queue) pollHeartbeats() {
	now := time.Now()
	q.mu.Lock()
	var due []Session
	for s, hb := range q.sessions {
		if now.After(hb.next) {
			hb.next = now.Add(heartbeatInterval)
			due = append(due, s)
		}
	}
	q.mu.Unlock()

	for _, s := range due {
		if err := s.Send(s.StatusPollPayload()); err != nil {
			s.Disconnect()
		}
	}
}
