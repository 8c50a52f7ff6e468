// Package uinputdev implements the legacy /dev/uinput wire protocol
// spec.md §6.2 requires: a packed uinput_user_dev struct write followed
// by UI_DEV_CREATE, as opposed to the newer UI_DEV_SETUP ioctl. Grounded
// on the original libuinput.py and, for the raw-ioctl calling style, on
// friedelschoen-go-xwiimote/pkg/virtdev/uinput.go.
package uinputdev

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"syscall"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// candidatePaths are probed in order, matching open_uinput's fallback.
var candidatePaths = []string{"/dev/uinput", "/dev/input/uinput"}

// State is the SyntheticDevice lifecycle: Open -> Created -> Destroyed,
// with destruction only ever allowed from Created. This guards against
// the double-destroy the original risked on extension-change-then-disconnect
// (Design Notes).
type State int

const (
	StateOpen State = iota
	StateCreated
	StateDestroyed
)

// AbsRange is one absolute axis's min/max/fuzz/flat, copied straight from
// a mapping.AbsParams.
type AbsRange struct {
	Min, Max, Fuzz, Flat int32
}

// FFCallback is invoked for every acknowledged force-feedback upload
// (code 1, UI_FF_UPLOAD) or erase (code 2, UI_FF_ERASE) request, and with
// code -1 for a plain EV_FF event; wiipad never synthesizes effects,
// it only acknowledges them, per spec.md §1's Non-goals.
type FFCallback func(code int, requestID int32)

// Device is one synthetic OS input endpoint.
type Device struct {
	log    logrus.FieldLogger
	f      *os.File
	fdMu   sync.Mutex
	state  State
	uidev  userDev
	useFF  bool
	ffCB   FFCallback
	effects map[int32]struct{}
	done   chan struct{}
}

// Open tries each candidate uinput path in turn, opened read-write
// non-blocking, matching open_uinput's permission-error fallback.
func Open(paths ...string) (*os.File, error) {
	if len(paths) == 0 {
		paths = candidatePaths
	}
	var lastErr error
	for _, p := range paths {
		f, err := os.OpenFile(p, os.O_RDWR|syscall.O_NONBLOCK, 0)
		if err == nil {
			return f, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("uinputdev: could not open uinput device, do you have permissions? %w", lastErr)
}

// New opens the device file and prepares (but does not yet commit) the
// user_dev descriptor.
func New(log logrus.FieldLogger, name string, bustype, vendor, product, version uint16) (*Device, error) {
	f, err := Open()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	d := &Device{log: log, f: f, state: StateOpen, effects: map[int32]struct{}{}, done: make(chan struct{})}
	if len(name) > uinputMaxNameSize-1 {
		name = name[:uinputMaxNameSize-1]
	}
	copy(d.uidev.Name[:], name)
	d.uidev.ID = inputID{Bustype: bustype, Vendor: vendor, Product: product, Version: version}
	return d, nil
}

func (d *Device) ioctl(cmd uintptr, arg uintptr) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, d.f.Fd(), cmd, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

// EnableEventType enables a whole event family (EV_ABS, EV_KEY, or EV_FF).
// Enabling EV_FF also sizes ff_effects_max and marks the device as
// wanting the background FF-acknowledgement reader once Setup runs.
func (d *Device) EnableEventType(evt uint16) error {
	if evt == evFF {
		d.useFF = true
		d.uidev.FFEffectsMax = 16
	}
	return d.ioctl(uiSetEvBit, uintptr(evt))
}

// EnableEvent enables a single code within an already-enabled event type.
func (d *Device) EnableEvent(evt uint16, code uint16) error {
	ioc, ok := evBitIoctl(evt)
	if !ok {
		return fmt.Errorf("uinputdev: no SET_*BIT ioctl for event type %#x", evt)
	}
	return d.ioctl(ioc, uintptr(code))
}

// SetAbsProps records the absmin/max/fuzz/flat range for one ABS code.
// Must be called before Setup.
func (d *Device) SetAbsProps(code uint16, r AbsRange) {
	d.uidev.AbsMax[code] = r.Max
	d.uidev.AbsMin[code] = r.Min
	d.uidev.AbsFuzz[code] = r.Fuzz
	d.uidev.AbsFlat[code] = r.Flat
}

// Setup commits the device: writes the packed user_dev struct and issues
// UI_DEV_CREATE. No further capability changes are possible afterward.
// Starts the FF-acknowledgement reader goroutine if EV_FF was enabled.
func (d *Device) Setup() error {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, &d.uidev); err != nil {
		return fmt.Errorf("uinputdev: encode user_dev: %w", err)
	}
	if _, err := d.f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("uinputdev: write user_dev: %w", err)
	}
	if err := d.ioctl(uiDevCreate, 0); err != nil {
		return fmt.Errorf("uinputdev: UI_DEV_CREATE: %w", err)
	}
	d.state = StateCreated
	if d.useFF {
		go d.ffReader()
	}
	return nil
}

// SendEvent writes one input_event. A no-op before Setup or after Destroy.
func (d *Device) SendEvent(typ uint16, code uint16, value int32) error {
	if d.state != StateCreated {
		return nil
	}
	ev := inputEvent{Type: typ, Code: code, Value: value}
	return d.writeEvent(&ev)
}

// SendSync writes a SYN_REPORT, terminating a batch of key/axis events.
func (d *Device) SendSync() error {
	if d.state != StateCreated {
		return nil
	}
	ev := inputEvent{Type: evSyn, Code: synReport, Value: 0}
	return d.writeEvent(&ev)
}

func (d *Device) writeEvent(ev *inputEvent) error {
	d.fdMu.Lock()
	defer d.fdMu.Unlock()
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, ev); err != nil {
		return err
	}
	_, err := d.f.Write(buf.Bytes())
	return err
}

// SetFFCallback installs the upload/erase acknowledgement observer.
func (d *Device) SetFFCallback(cb FFCallback) { d.ffCB = cb }

// ffReader mirrors libuinput.py's bak_read thread: it polls the device
// fd for inbound EV_FF / EV_UINPUT events and acknowledges upload/erase
// requests without synthesizing the effect itself.
func (d *Device) ffReader() {
	fds := []unix.PollFd{{Fd: int32(d.f.Fd()), Events: unix.POLLIN}}
	for {
		select {
		case <-d.done:
			return
		default:
		}
		n, err := unix.Poll(fds, 500)
		if err != nil || n <= 0 {
			continue
		}
		var raw [unsafe.Sizeof(inputEvent{})]byte
		nr, err := d.f.Read(raw[:])
		if err != nil || nr == 0 {
			continue
		}
		var ev inputEvent
		_ = binary.Read(bytes.NewReader(raw[:]), binary.LittleEndian, &ev)
		switch ev.Type {
		case evFF:
			if d.ffCB != nil {
				d.ffCB(-1, ev.Value)
			}
		case evUInput:
			d.handleFFControlRequest(ev)
		}
	}
}

func (d *Device) handleFFControlRequest(ev inputEvent) {
	switch ev.Code {
	case uiFFUpload:
		up := uinputFFUpload{RequestID: ev.Value}
		if err := d.ioctl(uiBeginFFUpload, uintptr(unsafe.Pointer(&up))); err != nil {
			d.log.WithError(err).Warn("uinputdev: UI_BEGIN_FF_UPLOAD failed")
			return
		}
		d.effects[up.RequestID] = struct{}{}
		if err := d.ioctl(uiEndFFUpload, uintptr(unsafe.Pointer(&up))); err != nil {
			d.log.WithError(err).Warn("uinputdev: UI_END_FF_UPLOAD failed")
		}
		if d.ffCB != nil {
			d.ffCB(uiFFUpload, up.RequestID)
		}
	case uiFFErase:
		er := uinputFFErase{RequestID: ev.Value}
		if err := d.ioctl(uiBeginFFErase, uintptr(unsafe.Pointer(&er))); err != nil {
			d.log.WithError(err).Warn("uinputdev: UI_BEGIN_FF_ERASE failed")
			return
		}
		delete(d.effects, er.EffectID)
		if err := d.ioctl(uiEndFFErase, uintptr(unsafe.Pointer(&er))); err != nil {
			d.log.WithError(err).Warn("uinputdev: UI_END_FF_ERASE failed")
		}
		if d.ffCB != nil {
			d.ffCB(uiFFErase, er.RequestID)
		}
	}
}

// Destroy tears the device down: issues UI_DEV_DESTROY then closes the
// fd. Idempotent and safe to call more than once (only the transition
// out of StateCreated actually issues UI_DEV_DESTROY), matching the
// tri-state discipline in spec.md §9.
func (d *Device) Destroy() error {
	d.fdMu.Lock()
	wasCreated := d.state == StateCreated
	d.state = StateDestroyed
	d.fdMu.Unlock()

	select {
	case <-d.done:
	default:
		close(d.done)
	}

	if wasCreated {
		if err := d.ioctl(uiDevDestroy, 0); err != nil {
			d.log.WithError(err).Warn("uinputdev: UI_DEV_DESTROY failed")
		}
	}
	return d.f.Close()
}

