package linux

import (
	"fmt"

	"github.com/berfenger/wiipad/report"
)

// buildLED builds the 0x11 output report. Rumble is carried in bit 0,
// LED1..LED4 in bits 4..7, matching the original's led_report byte
// layout exactly.
func buildLED(flags Flags) []byte {
	var b byte
	if flags.Has(FlagRumble) {
		b |= 0x01
	}
	if flags.Has(FlagLED1) {
		b |= 0x10
	}
	if flags.Has(FlagLED2) {
		b |= 0x20
	}
	if flags.Has(FlagLED3) {
		b |= 0x40
	}
	if flags.Has(FlagLED4) {
		b |= 0x80
	}
	return []byte{report.ReqLED, b}
}

// buildStatusReq builds the 0x15 status-request report, fire-and-forget
// on the wire but tracked by the session as an outstanding PendingStatus
// rendezvous so the reply can be correlated.
func buildStatusReq(flags Flags) []byte {
	var b byte
	if flags.Has(FlagRumble) {
		b |= 0x01
	}
	return []byte{report.ReqSreq, b}
}

// drmForFlags is the pure DRM-selection table from spec.md §4.4,
// matching the original's wiiproto_select_drm exactly: the IR bits are
// compared as an exclusive three-way state (basic-only, ext-only, or
// both/"full"), not as independently-truthy checks, so enabling IR_FULL
// always overrides the Accel/Ext fallback chain below it.
func drmForFlags(kind DeviceKind, flags Flags) byte {
	used := flags.Has(FlagExtUsed) || flags.Has(FlagMpUsed)
	accel := flags.Has(FlagAccel)
	ir := flags & FlagIrFull

	if kind == DeviceBalanceBoard {
		if used {
			return report.DrmKEE
		}
		return report.DrmK
	}

	switch ir {
	case FlagIrBasic:
		if accel {
			return report.DrmKAIE
		}
		return report.DrmKIE
	case FlagIrExt:
		return report.DrmKAI
	case FlagIrFull:
		return report.DrmSKAI1
	default:
		switch {
		case accel && used:
			return report.DrmKAE
		case accel:
			return report.DrmKA
		case used:
			return report.DrmKEE
		default:
			return report.DrmK
		}
	}
}

func buildDRM(kind DeviceKind, flags Flags) []byte {
	var b byte
	if flags.Has(FlagRumble) {
		b |= 0x01
	}
	return []byte{report.ReqDRM, b, drmForFlags(kind, flags)}
}

// buildReadMem builds the 0x17 command reading size bytes from addr (a
// 24-bit register/EEPROM address packed big-endian into three bytes per
// the original's read_data).
func buildReadMem(addr uint32, size uint16) []byte {
	return []byte{
		report.ReqRmem,
		byte(addr >> 16),
		byte(addr >> 8),
		byte(addr),
		byte(size >> 8),
		byte(size),
	}
}

// buildWriteMem builds the 0x16 command writing up to 16 bytes at addr.
func buildWriteMem(addr uint32, data []byte) []byte {
	if len(data) > 16 {
		data = data[:16]
	}
	buf := make([]byte, 6+16)
	buf[0] = report.ReqWmem
	buf[1] = byte(addr >> 16)
	buf[2] = byte(addr >> 8)
	buf[3] = byte(addr)
	buf[4] = byte(len(data))
	copy(buf[5:], data)
	return buf
}

// Extension detection/classification, grounded on init_extension and
// classify_extension in libwiimote.py.
const (
	extInitAddrA = 0xA400F0
	extInitAddrB = 0xA400FB
	extIDAddr    = 0xA400FA
)

func buildExtInitStep1() []byte { return buildWriteMem(extInitAddrA, []byte{0x55}) }
func buildExtInitStep2() []byte { return buildWriteMem(extInitAddrB, []byte{0x00}) }
func buildExtIDRead() []byte    { return buildReadMem(extIDAddr, 6) }

// classifyExtension maps the six-byte identity read at 0xA400FA to an
// ExtensionKind, mirroring the original's big table of known IDs.
// Unrecognized signatures (including a missing classification) fall back
// to ExtNone per spec.md §4.4 and §7 ("Missing extension classification:
// treated as None; no extension support enabled").
func classifyExtension(id []byte) ExtensionKind {
	if len(id) != 6 {
		return ExtNone
	}
	allFF := true
	for _, b := range id {
		if b != 0xFF {
			allFF = false
			break
		}
	}
	switch {
	case allFF:
		return ExtNone
	case id[4] == 0x00 && id[5] == 0x00:
		return ExtNunchuk
	case id[0] == 0x00 && id[4] == 0x01 && id[5] == 0x01:
		return ExtClassic
	case id[0] == 0x01 && id[4] == 0x01 && id[5] == 0x01:
		return ExtClassicPro
	case id[4] == 0x04 && id[5] == 0x02:
		return ExtBalanceBoard
	case id[4] == 0x01 && id[5] == 0x20:
		return ExtPro
	default:
		return ExtNone
	}
}

// statusInfo is the decoded payload of a 0x20 status reply.
type statusInfo struct {
	ExtConnected bool
	BatteryLevel byte
	LEDs         Flags
}

// parseStatus decodes a status-reply payload (everything after the report
// id, i.e. bytes 2.. of the frame), mirroring the BB BB LF 00 00 VV
// layout documented for the 0x20 report and used by libwiimote.py's
// handle_status: two Keys bytes, the LF flags byte, two reserved bytes
// and the battery level.
func parseStatus(p []byte) (statusInfo, error) {
	if len(p) < 6 {
		return statusInfo{}, fmt.Errorf("linux: short status frame (%d bytes)", len(p))
	}
	lf := p[2]
	var leds Flags
	if lf&0x10 != 0 {
		leds |= FlagLED1
	}
	if lf&0x20 != 0 {
		leds |= FlagLED2
	}
	if lf&0x40 != 0 {
		leds |= FlagLED3
	}
	if lf&0x80 != 0 {
		leds |= FlagLED4
	}
	return statusInfo{
		ExtConnected: lf&0x02 != 0,
		BatteryLevel: p[5],
		LEDs:         leds,
	}, nil
}

// writeAckError extracts the error byte from a 0x22 write acknowledgement
// frame; a non-zero value signals the write failed, per the original's
// handling of error codes in output-report acknowledgements.
func writeAckError(frame []byte) error {
	if len(frame) < 5 {
		return fmt.Errorf("linux: short write-ack frame (%d bytes)", len(frame))
	}
	if frame[4] != 0x00 {
		return fmt.Errorf("linux: write-mem error code %#x", frame[4])
	}
	return nil
}
