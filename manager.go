package wiipad

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/berfenger/wiipad/linux"
	"github.com/berfenger/wiipad/mapping"
)

// Session is one connected controller: its transport, protocol state
// and synthesized input device(s). It is the engine's DeviceSession,
// re-exported here as the package's public handle.
type Session = linux.DeviceSession

// Manager is the long-lived value owning the Bluetooth command queue,
// frame receiver and player-LED allocator — modeled as a value whose
// lifecycle is tied to its own construction/Stop, not to package load
// time, per the Design Notes this driver follows.
type Manager struct {
	log     logrus.FieldLogger
	profile *mapping.Profile
	reg     *linux.SessionRegistry
}

// NewManager constructs a Manager. WithProfile is required; every other
// Option has a sensible default.
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{log: logrus.StandardLogger()}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	if m.profile == nil {
		return nil, fmt.Errorf("wiipad: WithProfile is required")
	}
	m.reg = linux.NewRegistry(m.log)
	return m, nil
}

// OnConnect registers a callback fired once a controller finishes its
// connect sequence (status request, extension detection, reporting-mode
// and LED assignment).
func (m *Manager) OnConnect(f func(*Session)) {
	m.reg.AddListener(linux.Listener{OnConnect: f})
}

// OnDisconnect registers a callback fired once a controller's session
// has fully torn down (synthetic devices destroyed, LED slot released).
func (m *Manager) OnDisconnect(f func(*Session)) {
	m.reg.AddListener(linux.Listener{OnDisconnect: f})
}

// Connect dials the controller at addr (canonical "AA:BB:CC:DD:EE:FF"
// form) and runs its connect sequence. name is the Bluetooth device
// name reported during discovery/pairing, used to classify the
// controller generation; discovery and pairing themselves are the
// caller's responsibility.
func (m *Manager) Connect(addr string, name string) (*Session, error) {
	a, err := parseAddr(addr)
	if err != nil {
		return nil, err
	}
	return m.reg.Connect(a, name, m.profile)
}

// Sessions returns every currently connected controller, e.g. to
// implement a player-count display.
func (m *Manager) Sessions() []*Session {
	return m.reg.Sessions()
}

// Stop disconnects every session and halts the manager's background
// goroutines. Safe to call once at process shutdown.
func (m *Manager) Stop() {
	m.reg.Stop()
}

func parseAddr(s string) ([6]byte, error) {
	var out [6]byte
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return out, fmt.Errorf("wiipad: invalid bluetooth address %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return out, fmt.Errorf("wiipad: invalid bluetooth address %q: %w", s, err)
		}
		out[i] = byte(v)
	}
	return out, nil
}
