// Package linux is the Linux engine: the Bluetooth L2CAP connection,
// protocol state machine and report dispatch for one or many Wii/Wii U
// controllers. It is grounded throughout on the original Python
// implementation (libwiimote.py, ctrlmanager.py) and structured the way
// the teacher splits its HCI/L2CAP engine into a root package plus
// internal helpers.
package linux

// DeviceKind is the physical controller family, derived from the
// Bluetooth device name alone.
type DeviceKind int

const (
	DeviceUnknown DeviceKind = iota
	DeviceGen10
	DeviceGen20
	DeviceBalanceBoard
	DeviceProController
)

// ExtensionKind is the peripheral plugged into the Wiimote's expansion
// port, classified from the six-byte signature at register 0xA400FA.
type ExtensionKind int

const (
	ExtNone ExtensionKind = iota
	ExtUnknown
	ExtNunchuk
	ExtClassic
	ExtClassicPro
	ExtBalanceBoard
	ExtPro
)

// Flags is the SessionFlags bitset from spec.md §3.
type Flags uint32

const (
	FlagLED1 Flags = 1 << iota
	FlagLED2
	FlagLED3
	FlagLED4
	FlagRumble
	FlagAccel
	FlagIrBasic
	FlagIrExt
	FlagExtPlugged
	FlagExtUsed
	FlagExtActive
	FlagMpPlugged
	FlagMpUsed
	FlagMpActive
	FlagBuiltinMp
	FlagNoMp
	FlagProCalibDone
)

// FlagIrFull is a derived flag: both IrBasic and IrExt set.
const FlagIrFull = FlagIrBasic | FlagIrExt

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// PendingKind identifies the single outstanding command a session may
// have in flight, per the rendezvous described in spec.md §4.4.
type PendingKind int

const (
	PendingNone PendingKind = iota
	PendingStatus
	PendingReadMem
	PendingWriteMem
)
