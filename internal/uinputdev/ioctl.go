package uinputdev

import "unsafe"

// Linux uinput ioctl numbers, computed the same way <linux/uinput.h>
// derives them from _IO/_IOW/_IOWR so nothing here depends on cgo or a
// vendored kernel header.
const uinputIOCBase = 'U'

func ioc(dir, nr, size uintptr) uintptr {
	return dir<<30 | size<<16 | uinputIOCBase<<8 | nr
}

func ioW(nr, size uintptr) uintptr  { return ioc(1, nr, size) }
func ioWR(nr, size uintptr) uintptr { return ioc(3, nr, size) }
func io_(nr uintptr) uintptr        { return ioc(0, nr, 0) }

var (
	uiDevCreate  = io_(1)
	uiDevDestroy = io_(2)

	uiSetEvBit  = ioW(100, unsafe.Sizeof(int(0)))
	uiSetKeyBit = ioW(101, unsafe.Sizeof(int(0)))
	uiSetRelBit = ioW(102, unsafe.Sizeof(int(0)))
	uiSetAbsBit = ioW(103, unsafe.Sizeof(int(0)))
	uiSetFFBit  = ioW(107, unsafe.Sizeof(int(0)))

	uiBeginFFUpload = ioWR(200, unsafe.Sizeof(uinputFFUpload{}))
	uiEndFFUpload   = ioW(201, unsafe.Sizeof(uinputFFUpload{}))
	uiBeginFFErase  = ioWR(202, unsafe.Sizeof(uinputFFErase{}))
	uiEndFFErase    = ioW(203, unsafe.Sizeof(uinputFFErase{}))
)

// evBitIoctl returns which UI_SET_*BIT ioctl enables codes of evt, mirroring
// libuinput.py's evbits table.
func evBitIoctl(evt uint16) (uintptr, bool) {
	switch evt {
	case evKey:
		return uiSetKeyBit, true
	case evAbs:
		return uiSetAbsBit, true
	case evRel:
		return uiSetRelBit, true
	case evFF:
		return uiSetFFBit, true
	}
	return 0, false
}

// EvType is a Linux EV_* event-type code, exported so callers
// (linux/session.go, the translator glue) can enable capabilities
// without redefining input-event-codes.h values themselves.
type EvType uint16

const (
	EVKey EvType = evKey
	EVAbs EvType = evAbs
	EVFF  EvType = evFF
)

const (
	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02
	evAbs = 0x03
	evFF  = 0x15
	// evUInput is the kernel's EV_UINPUT pseudo event type (linux/uinput.h),
	// carrying UI_FF_UPLOAD/UI_FF_ERASE requests back to the FF reader.
	evUInput = 0x0101

	synReport = 0

	uiFFUpload = 1
	uiFFErase  = 2
)

const uinputMaxNameSize = 80
const absCnt = 0x40 // ABS_MAX + 1

// inputID mirrors struct input_id.
type inputID struct {
	Bustype, Vendor, Product, Version uint16
}

// userDev mirrors struct uinput_user_dev, the legacy setup struct written
// wholesale to the device file before UI_DEV_CREATE, exactly as
// libuinput.py's write_uinput_device_info does (as opposed to the newer
// UI_DEV_SETUP ioctl bendahl/uinput uses instead).
type userDev struct {
	Name        [uinputMaxNameSize]byte
	ID          inputID
	FFEffectsMax uint32
	AbsMax      [absCnt]int32
	AbsMin      [absCnt]int32
	AbsFuzz     [absCnt]int32
	AbsFlat     [absCnt]int32
}

// timeval mirrors struct timeval as laid out in struct input_event.
type timeval struct {
	Sec  int64
	Usec int64
}

// inputEvent mirrors struct input_event.
type inputEvent struct {
	Time  timeval
	Type  uint16
	Code  uint16
	Value int32
}

// uinputFFUpload mirrors struct uinput_ff_upload closely enough to make
// the begin/end-upload round trip through the kernel succeed: request_id
// and retval are read back and reused verbatim, and the effect payload is
// treated as an opaque blob the driver immediately re-submits unmodified
// (spec.md's Non-goals exclude FF payload synthesis, so the exact layout
// of struct ff_effect's trigger/envelope/union fields is never inspected).
type uinputFFUpload struct {
	RequestID int32
	Retval    int32
	Effect    [96]byte
	Old       [96]byte
}

// uinputFFErase mirrors struct uinput_ff_erase.
type uinputFFErase struct {
	RequestID int32
	Retval    int32
	EffectID  int32
}
