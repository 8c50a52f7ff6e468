package linux

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/berfenger/wiipad/internal/uinputdev"
	"github.com/berfenger/wiipad/linux/internal/queue"
	"github.com/berfenger/wiipad/mapping"
	"github.com/berfenger/wiipad/report"
)

func TestBatteryPercentDivisorByKind(t *testing.T) {
	// "UC device, byte 5 = 208 -> battery = 81" per spec.md.
	if got := batteryPercent(208, DeviceGen10); got != 100 {
		t.Errorf("batteryPercent(208, Gen10) = %d, want 100", got)
	}
	if got := batteryPercent(208, DeviceProController); got != 81 {
		t.Errorf("batteryPercent(208, ProController) = %d, want 81", got)
	}
	if got := batteryPercent(255, DeviceProController); got != 100 {
		t.Errorf("batteryPercent(255, ProController) = %d, want 100", got)
	}
}

func TestDeviceKindFromName(t *testing.T) {
	cases := map[string]DeviceKind{
		"Nintendo RVL-CNT-01":    DeviceGen10,
		"Nintendo RVL-CNT-01-TR": DeviceGen20,
		"Nintendo RVL-CNT-01-UC": DeviceProController,
		"Nintendo RVL-WBC-01":    DeviceBalanceBoard,
		"something else":         DeviceUnknown,
	}
	for name, want := range cases {
		if got := deviceKindFromName(name); got != want {
			t.Errorf("deviceKindFromName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestIsProtocolV2(t *testing.T) {
	cases := map[string]bool{
		"Nintendo RVL-CNT-01":    false,
		"Nintendo RVL-CNT-01-TR": true,
		"Nintendo RVL-CNT-01-UC": true,
		"Nintendo RVL-WBC-01":    false,
	}
	for name, want := range cases {
		if got := isProtocolV2(name); got != want {
			t.Errorf("isProtocolV2(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestProductIDForKind(t *testing.T) {
	cases := map[DeviceKind]uint16{
		DeviceGen10:         0x0306,
		DeviceGen20:         0x0330,
		DeviceProController: 0x0330,
		DeviceBalanceBoard:  0x0001,
		DeviceUnknown:       0x0001,
	}
	for kind, want := range cases {
		if got := productIDForKind(kind); got != want {
			t.Errorf("productIDForKind(%v) = %#x, want %#x", kind, got, want)
		}
	}
}

func TestSyntheticDeviceNameGamepad(t *testing.T) {
	m := mapping.NewMapping(mapping.KindWiimote)
	m.Set(mapping.WiimoteBtnA, &mapping.ButtonMapping{Code: mapping.BtnA})
	if !m.IsGamepad {
		t.Fatal("fixture mapping should be recognized as a gamepad")
	}
	if name := syntheticDeviceName(mapping.KindWiimote, m); name != "Nintendo Wii Remote" {
		t.Errorf("syntheticDeviceName = %q, want unmodified name", name)
	}
}

func TestSyntheticDeviceNameKeyboardFallback(t *testing.T) {
	m := mapping.NewMapping(mapping.KindWiimote)
	m.Set(mapping.WiimoteBtnA, &mapping.ButtonMapping{Code: 0x1e}) // KEY_A, outside any gamepad range
	if m.IsGamepad {
		t.Fatal("fixture mapping should not be recognized as a gamepad")
	}
	got := syntheticDeviceName(mapping.KindWiimote, m)
	want := "Nintendo Keyboard Wii Remote"
	if got != want {
		t.Errorf("syntheticDeviceName = %q, want %q", got, want)
	}
}

func TestSyntheticDeviceNameClassicAndPro(t *testing.T) {
	if got := syntheticDeviceName(mapping.KindClassic, nil); got != "Nintendo Wii Remote Classic Controller" {
		t.Errorf("classic name = %q", got)
	}
	if got := syntheticDeviceName(mapping.KindPro, nil); got != "Nintendo Wii Remote Pro Controller" {
		t.Errorf("pro name = %q", got)
	}
}

func TestPrettyNameComposesExtensionSuffix(t *testing.T) {
	s := &DeviceSession{Kind: DeviceGen20, ext: ExtNunchuk}
	if got := s.PrettyName(); got != "Wiimote Plus + Nunchuk" {
		t.Errorf("PrettyName = %q", got)
	}

	s2 := &DeviceSession{Kind: DeviceProController}
	if got := s2.PrettyName(); got != "WiiU Pro Controller" {
		t.Errorf("PrettyName = %q", got)
	}

	s3 := &DeviceSession{Kind: DeviceUnknown, Name: "some device"}
	if got := s3.PrettyName(); got != "some device" {
		t.Errorf("PrettyName fallback = %q, want raw Name", got)
	}
}

func TestPollExpiredGatedUntilFirstStatus(t *testing.T) {
	s := &DeviceSession{}
	if s.pollExpired() {
		t.Fatal("pollExpired must be false before any status reply has been observed")
	}
	s.lastPoll = time.Now().Add(-15 * time.Second)
	if !s.pollExpired() {
		t.Error("pollExpired should be true once lastPoll is older than disconnectTimeout")
	}
	s.lastPoll = time.Now()
	if s.pollExpired() {
		t.Error("pollExpired should be false right after a fresh status reply")
	}
}

func TestEnableDisableExtensionFlag(t *testing.T) {
	// EnableExtension/DisableExtension call applyDRM, which enqueues
	// through s.queue; the queue's writer goroutine is never started, so
	// the DRM update is only queued, never sent.
	s := &DeviceSession{queue: queue.New(nil)}
	s.flags = FlagExtPlugged
	s.EnableExtension()
	if !s.flags.Has(FlagExtUsed) {
		t.Fatal("expected FlagExtUsed set when plugged")
	}

	s.flags |= FlagAccel
	s.DisableExtension()
	if s.flags.Has(FlagExtUsed) {
		t.Error("DisableExtension logic should clear only FlagExtUsed")
	}
	if !s.flags.Has(FlagAccel) || !s.flags.Has(FlagExtPlugged) {
		t.Error("DisableExtension must not clear unrelated flags (the AND-NOT fix)")
	}
}

func TestExtensionOffsetByFrameKind(t *testing.T) {
	if got := extensionOffset(report.FrameKeysAccelExt); got != 5 {
		t.Errorf("extensionOffset(FrameKeysAccelExt) = %d, want 5 (keys+accel)", got)
	}
	if got := extensionOffset(report.FrameKeysExt); got != 2 {
		t.Errorf("extensionOffset(FrameKeysExt) = %d, want 2 (keys only)", got)
	}
}

func TestSendCommandSerializesConcurrentCallers(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := &DeviceSession{
		log:          log,
		queue:        queue.New(log),
		disconnected: make(chan struct{}),
	}

	// Neither call ever gets a reply (the queue's writer goroutine was
	// never started), so each one times out on its own. If sendCommand
	// still failed fast on a second caller (the pre-fix behavior), the
	// pair would finish in ~timeout rather than ~2*timeout.
	const timeout = 30 * time.Millisecond
	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			s.sendCommand(PendingStatus, []byte{0x00}, timeout)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)
	if elapsed < 2*timeout {
		t.Errorf("two concurrent sendCommand calls finished in %v, want >= %v: cmdMu should serialize them rather than failing fast", elapsed, 2*timeout)
	}
}

func TestProcessInputShortAccelBodyDoesNotPanic(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := &DeviceSession{
		log:  log,
		Kind: DeviceGen20,
		profile: &mapping.Profile{
			Wiimote: mapping.NewMapping(mapping.KindWiimote),
		},
		devices: map[mapping.Kind]*uinputdev.Device{},
	}
	// report.Select accepts any frame longer than a handler's registered
	// size, and processInput passes the body length plus two as the frame
	// size, so a 4-byte body one short of DRM_KA's 5-byte keys+accel shape
	// still classifies as FrameKeysAccel; ParseAccel must not be reached
	// with too few bytes to index.
	s.processInput(report.DrmKA, []byte{0x00, 0x08, 0x00, 0x00})
}

func TestProcessInputBalanceBoardDoesNotTouchWiimoteMapping(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := &DeviceSession{
		log:  log,
		Kind: DeviceBalanceBoard,
		profile: &mapping.Profile{
			Wiimote: mapping.NewMapping(mapping.KindWiimote),
		},
		devices: map[mapping.Kind]*uinputdev.Device{},
	}
	// A balance board frame must return before touching the Wiimote
	// device lookup/profile, since the original never assigns a mapping
	// for PROFILE_BALANCE_BOARD either; this must not panic even though
	// no synthetic device exists.
	s.processInput(report.DrmK, []byte{0x00, 0x08})
}
