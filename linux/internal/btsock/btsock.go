// Package btsock opens the two raw L2CAP sockets a Wii/Wii U controller
// session needs: the control channel (PSM 0x11) and the data channel
// (PSM 0x13). It follows the shape of the teacher's
// linux/internal/socket+device packages (retrying Socket() on EBUSY, a
// mutex-guarded read/write wrapper per fd) but talks classic-BT L2CAP
// directly through golang.org/x/sys/unix instead of the 386-only
// socketcall shim paypal-gatt shipped for HCI sockets.
package btsock

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

const (
	// PSMControl is the L2CAP PSM the Wiimote control channel listens on.
	PSMControl = 0x11
	// PSMData is the L2CAP PSM the Wiimote data (report) channel listens on.
	PSMData = 0x13
)

// Socket is a single connected L2CAP socket. Reads and writes are each
// guarded by their own mutex so a concurrent Close doesn't race a
// blocked Read, matching linux/internal/device/device.go's rmu/wmu split.
type Socket struct {
	fd  int
	rmu sync.Mutex
	wmu sync.Mutex
}

func socket() (int, error) {
	for i := 0; i < 5; i++ {
		fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_SEQPACKET, unix.BTPROTO_L2CAP)
		if err == nil || err != unix.EBUSY {
			return fd, err
		}
		time.Sleep(time.Second)
	}
	return -1, unix.EBUSY
}

// Dial opens one L2CAP socket to addr on the given PSM.
func Dial(addr [6]byte, psm uint16) (*Socket, error) {
	fd, err := socket()
	if err != nil {
		return nil, fmt.Errorf("btsock: socket: %w", err)
	}
	sa := &unix.SockaddrL2{PSM: psm, Addr: addr}
	if err := unix.Connect(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("btsock: connect psm %#x: %w", psm, err)
	}
	return &Socket{fd: fd}, nil
}

func (s *Socket) Read(b []byte) (int, error) {
	s.rmu.Lock()
	defer s.rmu.Unlock()
	n, err := unix.Read(s.fd, b)
	if err != nil {
		return n, fmt.Errorf("btsock: read: %w", err)
	}
	return n, nil
}

func (s *Socket) Write(b []byte) (int, error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	n, err := unix.Write(s.fd, b)
	if err != nil {
		return n, fmt.Errorf("btsock: write: %w", err)
	}
	return n, nil
}

// Fd exposes the raw descriptor so a Receiver can multiplex it with unix.Poll.
func (s *Socket) Fd() int { return s.fd }

func (s *Socket) Close() error {
	return unix.Close(s.fd)
}

// Transport bundles the control and data sockets of one controller
// session. Send is whichever socket outbound commands go out on: the
// control channel for protocol v1 controllers, the data channel for v2
// ("-TR"/"-UC") ones, matching the original connect()'s sendsocket
// selection.
type Transport struct {
	Control *Socket
	Data    *Socket
	Send    *Socket
}

// Connect opens both channels in the order the original dance expects:
// control first, then data. If the data channel fails to connect the
// control socket is torn down rather than leaked. v2 selects the data
// channel as the send channel (protocol v2 controllers); v1 controllers
// send on the control channel.
func Connect(addr [6]byte, v2 bool) (*Transport, error) {
	ctrl, err := Dial(addr, PSMControl)
	if err != nil {
		return nil, err
	}
	data, err := Dial(addr, PSMData)
	if err != nil {
		ctrl.Close()
		return nil, err
	}
	t := &Transport{Control: ctrl, Data: data}
	if v2 {
		t.Send = data
	} else {
		t.Send = ctrl
	}
	return t, nil
}

func (t *Transport) Close() error {
	errC := t.Control.Close()
	errD := t.Data.Close()
	if errC != nil {
		return errC
	}
	return errD
}
