package queue

import (
	"errors"
	"sync"
	"testing"
)

type fakeSession struct {
	mu        sync.Mutex
	sent      [][]byte
	sendErr   error
	errCalled bool
	disc      bool
	poll      []byte
}

func (f *fakeSession) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, payload)
	return f.sendErr
}
func (f *fakeSession) OnSendError()           { f.mu.Lock(); f.errCalled = true; f.mu.Unlock() }
func (f *fakeSession) StatusPollPayload() []byte { return f.poll }
func (f *fakeSession) Disconnect()            { f.mu.Lock(); f.disc = true; f.mu.Unlock() }

func TestQueueDrainPreservesOrder(t *testing.T) {
	q := New(nil)
	s := &fakeSession{}
	q.Enqueue(s, []byte{1})
	q.Enqueue(s, []byte{2})
	q.Enqueue(s, []byte{3})
	q.drain()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) != 3 || s.sent[0][0] != 1 || s.sent[1][0] != 2 || s.sent[2][0] != 3 {
		t.Fatalf("drain order = %v", s.sent)
	}
}

func TestQueueDrainOnSendError(t *testing.T) {
	q := New(nil)
	s := &fakeSession{sendErr: errors.New("broken pipe")}
	q.Enqueue(s, []byte{1})
	q.drain()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.errCalled {
		t.Error("OnSendError should be called when Send fails")
	}
	if s.disc {
		t.Error("drain itself must not disconnect; that is OnSendError's call")
	}
}

func TestQueueRemoveStopsHeartbeats(t *testing.T) {
	q := New(nil)
	s := &fakeSession{}
	q.Enqueue(s, []byte{1})
	q.drain()
	q.Remove(s)

	q.mu.Lock()
	_, present := q.sessions[s]
	q.mu.Unlock()
	if present {
		t.Error("Remove should drop the session from the heartbeat registry")
	}
}

func TestQueuePollHeartbeatsNotYetDue(t *testing.T) {
	q := New(nil)
	s := &fakeSession{poll: []byte{0x15, 0x00}}
	q.Enqueue(s, []byte{1})
	q.drain()
	q.pollHeartbeats()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) != 1 {
		t.Fatalf("heartbeat should not fire immediately after registration: sent=%v", s.sent)
	}
}

func TestQueuePollHeartbeatsDisconnectsOnFailure(t *testing.T) {
	q := New(nil)
	s := &fakeSession{}
	q.mu.Lock()
	q.sessions[s] = &heartbeat{}
	q.mu.Unlock()
	s.sendErr = errors.New("broken pipe")

	q.pollHeartbeats()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.disc {
		t.Error("a failed heartbeat send should disconnect the session")
	}
}

func TestQueueStopIdempotent(t *testing.T) {
	q := New(nil)
	q.Start()
	q.Stop()
	q.Stop()
}
