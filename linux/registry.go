package linux

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/berfenger/wiipad/linux/internal/queue"
	"github.com/berfenger/wiipad/linux/internal/recv"
	"github.com/berfenger/wiipad/mapping"
)

// Listener receives connect/disconnect notifications, the Go-native
// replacement for ctrlmanager.py's listener list (SUPPLEMENTED FEATURES
// item 4: OnConnect/OnDisconnect capability slots).
type Listener struct {
	OnConnect    func(*DeviceSession)
	OnDisconnect func(*DeviceSession)
}

// SessionRegistry is the long-lived Manager value: it owns the
// CommandQueue and Receiver goroutines plus the LED allocator, fans out
// connect/disconnect notifications, and tracks every live session.
// Lifecycle is tied to the registry, not to package load time (Design
// Notes), unlike ctrlmanager.py's module-level singleton.
type SessionRegistry struct {
	log   logrus.FieldLogger
	queue *queue.Queue
	recv  *recv.Receiver
	leds  LedAllocator

	mu        sync.Mutex
	sessions  map[*DeviceSession]struct{}
	listeners []Listener
}

// NewRegistry constructs a registry. The CommandQueue and Receiver are
// not started until the first Connect call.
func NewRegistry(log logrus.FieldLogger) *SessionRegistry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SessionRegistry{
		log:      log,
		queue:    queue.New(log),
		recv:     recv.New(log),
		sessions: make(map[*DeviceSession]struct{}),
	}
}

// AddListener registers a connect/disconnect observer.
func (r *SessionRegistry) AddListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Connect dials addr, runs the connect sequence, and registers the
// resulting session, notifying listeners on success.
func (r *SessionRegistry) Connect(addr [6]byte, name string, profile *mapping.Profile) (*DeviceSession, error) {
	if profile == nil {
		return nil, fmt.Errorf("linux: no mapping profile supplied")
	}
	s := newSession(r.log, r, r.queue, r.recv, addr, name, profile)
	slot := r.leds.Acquire()
	if err := s.connect(slot); err != nil {
		r.leds.Release(slot)
		return nil, err
	}

	r.mu.Lock()
	r.sessions[s] = struct{}{}
	listeners := append([]Listener(nil), r.listeners...)
	r.mu.Unlock()

	for _, l := range listeners {
		if l.OnConnect != nil {
			l.OnConnect(s)
		}
	}
	return s, nil
}

// Sessions returns a snapshot of every currently connected session, the
// primitive behind the supplemented Manager.Sessions accessor.
func (r *SessionRegistry) Sessions() []*DeviceSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*DeviceSession, 0, len(r.sessions))
	for s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// notifyDisconnect is called by DeviceSession.Disconnect once teardown
// completes; it removes the session from the registry and fans the
// event out to listeners.
func (r *SessionRegistry) notifyDisconnect(s *DeviceSession) {
	r.mu.Lock()
	delete(r.sessions, s)
	listeners := append([]Listener(nil), r.listeners...)
	r.mu.Unlock()

	for _, l := range listeners {
		if l.OnDisconnect != nil {
			l.OnDisconnect(s)
		}
	}
}

// Stop tears every session down and halts the queue/receiver
// goroutines. Intended for process shutdown.
func (r *SessionRegistry) Stop() {
	for _, s := range r.Sessions() {
		s.Disconnect()
	}
	r.queue.Stop()
	r.recv.Stop()
}
