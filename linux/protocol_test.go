package linux

import (
	"testing"

	"github.com/berfenger/wiipad/report"
)

func TestBuildLEDBits(t *testing.T) {
	b := buildLED(FlagLED1 | FlagLED3 | FlagRumble)
	if b[0] != report.ReqLED {
		t.Fatalf("buildLED report code = %#x, want %#x", b[0], report.ReqLED)
	}
	if b[1] != 0x01|0x10|0x40 {
		t.Errorf("buildLED byte = %#x, want %#x", b[1], byte(0x01|0x10|0x40))
	}
}

func TestBuildStatusReq(t *testing.T) {
	b := buildStatusReq(0)
	if b[0] != report.ReqSreq || b[1] != 0 {
		t.Errorf("buildStatusReq = %#x, want [%#x 0x00]", b, report.ReqSreq)
	}
	b = buildStatusReq(FlagRumble)
	if b[1] != 0x01 {
		t.Errorf("buildStatusReq rumble bit = %#x, want 0x01", b[1])
	}
}

func TestDrmForFlags(t *testing.T) {
	cases := []struct {
		kind  DeviceKind
		flags Flags
		want  byte
	}{
		{DeviceGen10, 0, report.DrmK},
		{DeviceGen10, FlagAccel, report.DrmKA},
		{DeviceGen10, FlagAccel | FlagExtUsed, report.DrmKAE},
		{DeviceGen10, FlagExtUsed, report.DrmKEE},
		{DeviceGen10, FlagIrBasic, report.DrmKIE},
		{DeviceGen10, FlagIrExt, report.DrmKAI},
		{DeviceGen10, FlagIrFull, report.DrmSKAI1},
		{DeviceGen10, FlagIrBasic | FlagAccel, report.DrmKAIE},
		{DeviceBalanceBoard, 0, report.DrmK},
		{DeviceBalanceBoard, FlagExtUsed, report.DrmKEE},
		{DeviceBalanceBoard, FlagMpUsed, report.DrmKEE},
	}
	for _, c := range cases {
		if got := drmForFlags(c.kind, c.flags); got != c.want {
			t.Errorf("drmForFlags(%v, %v) = %#x, want %#x", c.kind, c.flags, got, c.want)
		}
	}
}

func TestBuildDRMIncludesSelection(t *testing.T) {
	b := buildDRM(DeviceGen10, FlagAccel)
	if b[0] != report.ReqDRM || b[2] != report.DrmKA {
		t.Errorf("buildDRM = %#x", b)
	}
}

func TestBuildReadMem(t *testing.T) {
	b := buildReadMem(0xA400FA, 6)
	want := []byte{report.ReqRmem, 0xA4, 0x00, 0xFA, 0x00, 0x06}
	if len(b) != len(want) {
		t.Fatalf("buildReadMem = %#x, want %#x", b, want)
	}
	for i := range want {
		if b[i] != want[i] {
			t.Errorf("buildReadMem[%d] = %#x, want %#x", i, b[i], want[i])
		}
	}
}

func TestBuildWriteMem(t *testing.T) {
	b := buildWriteMem(0xA400F0, []byte{0x55})
	if len(b) != 22 {
		t.Fatalf("buildWriteMem length = %d, want 22", len(b))
	}
	if b[0] != report.ReqWmem || b[1] != 0xA4 || b[2] != 0x00 || b[3] != 0xF0 {
		t.Errorf("buildWriteMem header = %#x", b[:4])
	}
	if b[4] != 1 || b[5] != 0x55 {
		t.Errorf("buildWriteMem payload = len=%d data=%#x", b[4], b[5])
	}
}

func TestBuildWriteMemTruncatesOversizedPayload(t *testing.T) {
	data := make([]byte, 32)
	for i := range data {
		data[i] = byte(i)
	}
	b := buildWriteMem(0, data)
	if b[4] != 16 {
		t.Errorf("buildWriteMem size byte = %d, want 16 (truncated)", b[4])
	}
}

func TestClassifyExtension(t *testing.T) {
	cases := []struct {
		id   []byte
		want ExtensionKind
	}{
		{[]byte{0x00, 0x00, 0xa4, 0x20, 0x00, 0x00}, ExtNunchuk},
		{[]byte{0x00, 0x00, 0xa4, 0x20, 0x01, 0x01}, ExtClassic},
		{[]byte{0x01, 0x00, 0xa4, 0x20, 0x01, 0x01}, ExtClassicPro},
		{[]byte{0x00, 0x00, 0xa4, 0x20, 0x04, 0x02}, ExtBalanceBoard},
		{[]byte{0x00, 0x00, 0xa4, 0x20, 0x01, 0x20}, ExtPro},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, ExtNone},
		{[]byte{0x00}, ExtNone},
	}
	for _, c := range cases {
		if got := classifyExtension(c.id); got != c.want {
			t.Errorf("classifyExtension(%#x) = %v, want %v", c.id, got, c.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	p := []byte{0x00, 0x00, 0x12, 0x00, 0x00, 0x80}
	info, err := parseStatus(p)
	if err != nil {
		t.Fatalf("parseStatus: %v", err)
	}
	if !info.ExtConnected {
		t.Error("ExtConnected should be set from LF bit 1")
	}
	if info.LEDs != FlagLED1|FlagLED4 {
		t.Errorf("LEDs = %v, want LED1|LED4", info.LEDs)
	}
	if info.BatteryLevel != 0x80 {
		t.Errorf("BatteryLevel = %#x, want 0x80", info.BatteryLevel)
	}
}

func TestParseStatusShortFrame(t *testing.T) {
	if _, err := parseStatus([]byte{0x00}); err == nil {
		t.Error("expected error for short status frame")
	}
}

func TestWriteAckError(t *testing.T) {
	if err := writeAckError([]byte{0, 0, 0, 0, 0x00}); err != nil {
		t.Errorf("writeAckError with zero code = %v, want nil", err)
	}
	if err := writeAckError([]byte{0, 0, 0, 0, 0x07}); err == nil {
		t.Error("writeAckError with non-zero code should return an error")
	}
	if err := writeAckError([]byte{0, 0}); err == nil {
		t.Error("writeAckError with short frame should return an error")
	}
}
