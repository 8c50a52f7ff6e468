package mapping

// EventType mirrors the Linux input-event-codes.h EV_* family the target
// codes below belong to. Only the two families the protocol ever emits
// are represented.
type EventType uint16

const (
	EventKey EventType = 0x01
	EventAbs EventType = 0x03
)

// Linux input-event-codes.h values for the subset of BTN_*/ABS_* codes a
// Wii/Wii U mapping can target. Kept as real kernel numbers (not our own
// enumeration) since they end up written verbatim into the uinput_user_dev
// and input_event structs.
const (
	BtnA      uint16 = 0x130
	BtnB      uint16 = 0x131
	BtnC      uint16 = 0x132
	BtnX      uint16 = 0x133
	BtnY      uint16 = 0x134
	BtnZ      uint16 = 0x135
	BtnTL     uint16 = 0x136
	BtnTR     uint16 = 0x137
	BtnTL2    uint16 = 0x138
	BtnTR2    uint16 = 0x139
	BtnSelect uint16 = 0x13a
	BtnStart  uint16 = 0x13b
	BtnMode   uint16 = 0x13c
	BtnThumbL uint16 = 0x13d
	BtnThumbR uint16 = 0x13e

	BtnDpadUp    uint16 = 0x220
	BtnDpadDown  uint16 = 0x221
	BtnDpadLeft  uint16 = 0x222
	BtnDpadRight uint16 = 0x223

	BtnJoystick        uint16 = 0x120
	BtnGearUp          uint16 = 0x151
	BtnTriggerHappy40  uint16 = 0x2e7

	AbsX  uint16 = 0x00
	AbsY  uint16 = 0x01
	AbsZ  uint16 = 0x02
	AbsRX uint16 = 0x03
	AbsRY uint16 = 0x04
	AbsRZ uint16 = 0x05
	AbsMax uint16 = 0x3f
)

// target is one entry in the static name -> (event type, code) table that
// replaces the original parser's eval() on mapping-file target tokens.
type target struct {
	typ  EventType
	code uint16
}

var targetsByName = map[string]target{
	"BTN_A": {EventKey, BtnA}, "BTN_B": {EventKey, BtnB}, "BTN_C": {EventKey, BtnC},
	"BTN_X": {EventKey, BtnX}, "BTN_Y": {EventKey, BtnY}, "BTN_Z": {EventKey, BtnZ},
	"BTN_TL": {EventKey, BtnTL}, "BTN_TR": {EventKey, BtnTR},
	"BTN_TL2": {EventKey, BtnTL2}, "BTN_TR2": {EventKey, BtnTR2},
	"BTN_SELECT": {EventKey, BtnSelect}, "BTN_START": {EventKey, BtnStart},
	"BTN_MODE": {EventKey, BtnMode},
	"BTN_THUMBL": {EventKey, BtnThumbL}, "BTN_THUMBR": {EventKey, BtnThumbR},
	"BTN_DPAD_UP": {EventKey, BtnDpadUp}, "BTN_DPAD_DOWN": {EventKey, BtnDpadDown},
	"BTN_DPAD_LEFT": {EventKey, BtnDpadLeft}, "BTN_DPAD_RIGHT": {EventKey, BtnDpadRight},
	"ABS_X": {EventAbs, AbsX}, "ABS_Y": {EventAbs, AbsY}, "ABS_Z": {EventAbs, AbsZ},
	"ABS_RX": {EventAbs, AbsRX}, "ABS_RY": {EventAbs, AbsRY}, "ABS_RZ": {EventAbs, AbsRZ},
}

// prettyAliases maps a handful of human-friendly alternate names, as a
// mapping-file author would type them, onto the kernel names above.
var prettyAliases = map[string]string{
	"XBOX360_A": "BTN_A", "XBOX360_B": "BTN_B", "XBOX360_X": "BTN_X", "XBOX360_Y": "BTN_Y",
	"XBOX360_LB": "BTN_TL", "XBOX360_RB": "BTN_TR",
	"XBOX360_LT": "BTN_TL2", "XBOX360_RT": "BTN_TR2",
	"XBOX360_BACK": "BTN_SELECT", "XBOX360_START": "BTN_START", "XBOX360_GUIDE": "BTN_MODE",
	"XBOX360_LSB": "BTN_THUMBL", "XBOX360_RSB": "BTN_THUMBR",
	"XBOX360_DPAD_UP": "BTN_DPAD_UP", "XBOX360_DPAD_DOWN": "BTN_DPAD_DOWN",
	"XBOX360_DPAD_LEFT": "BTN_DPAD_LEFT", "XBOX360_DPAD_RIGHT": "BTN_DPAD_RIGHT",
	"XBOX360_LSTICK_X": "ABS_X", "XBOX360_LSTICK_Y": "ABS_Y",
	"XBOX360_RSTICK_X": "ABS_RX", "XBOX360_RSTICK_Y": "ABS_RY",
}

// LookupTarget resolves a mapping-file target token (kernel name or
// pretty alias) to its event type and code. ok is false for any unknown
// token; the caller (profile loader) skips the line per spec.md §7.
func LookupTarget(name string) (EventType, uint16, bool) {
	if canonical, isAlias := prettyAliases[name]; isAlias {
		name = canonical
	}
	t, ok := targetsByName[name]
	return t.typ, t.code, ok
}

// IsGamepadCode reports whether a (type, code) pair falls in one of the
// OS's gamepad-recognized ranges, per the GLOSSARY's "Gamepad bit" entry.
func IsGamepadCode(typ EventType, code uint16) bool {
	switch typ {
	case EventKey:
		return (code >= BtnDpadUp && code <= BtnTriggerHappy40) ||
			(code >= BtnJoystick && code <= BtnGearUp)
	case EventAbs:
		return code <= AbsMax
	}
	return false
}
