// Package recv implements the Receiver: a single reader goroutine
// multiplexing every session's data socket via readiness polling,
// grounded on WiiDeviceReceiver in the original libwiimote.py, using
// golang.org/x/sys/unix.Poll in place of Python's select.select.
package recv

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

const pollTimeoutMs = 500

// Session is what the Receiver needs from a DeviceSession: its data
// socket's fd, a sink for complete frames, and a way to tear down on
// disconnection.
type Session interface {
	DataFd() int
	HandleFrame(frame []byte)
	Disconnect()
}

// Receiver is the long-lived reader. Construct with New; lifecycle is
// explicit (Start/Stop).
type Receiver struct {
	log logrus.FieldLogger

	mu       sync.Mutex
	sessions map[int]Session

	stopCh  chan struct{}
	stopped sync.Once
	started bool
}

func New(log logrus.FieldLogger) *Receiver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Receiver{log: log, sessions: make(map[int]Session), stopCh: make(chan struct{})}
}

func (r *Receiver) Start() {
	r.mu.Lock()
	already := r.started
	r.started = true
	r.mu.Unlock()
	if !already {
		go r.run()
	}
}

func (r *Receiver) Add(s Session) {
	r.mu.Lock()
	r.sessions[s.DataFd()] = s
	r.mu.Unlock()
}

func (r *Receiver) Remove(s Session) {
	r.mu.Lock()
	delete(r.sessions, s.DataFd())
	r.mu.Unlock()
}

func (r *Receiver) Stop() {
	r.stopped.Do(func() { close(r.stopCh) })
}

func (r *Receiver) run() {
	for {
		select {
		case <-r.stopCh:
			return
		default:
		}

		fds, bySlot := r.snapshot()
		if len(fds) == 0 {
			time.Sleep(pollTimeoutMs * time.Millisecond)
			continue
		}

		n, err := unix.Poll(fds, pollTimeoutMs)
		if err != nil || n <= 0 {
			continue
		}

		for i, pfd := range fds {
			if pfd.Revents&unix.POLLIN == 0 {
				continue
			}
			r.readOne(bySlot[i], int(pfd.Fd))
		}
	}
}

func (r *Receiver) snapshot() ([]unix.PollFd, []Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fds := make([]unix.PollFd, 0, len(r.sessions))
	sessions := make([]Session, 0, len(r.sessions))
	for fd, s := range r.sessions {
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
		sessions = append(sessions, s)
	}
	return fds, sessions
}

func (r *Receiver) readOne(s Session, fd int) {
	buf := make([]byte, 32)
	n, err := unix.Read(fd, buf)
	if err != nil {
		return
	}
	if n <= 0 {
		s.Disconnect()
		return
	}
	s.HandleFrame(buf[:n])
}
