package linux

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/berfenger/wiipad/internal/uinputdev"
	"github.com/berfenger/wiipad/linux/internal/btsock"
	"github.com/berfenger/wiipad/linux/internal/queue"
	"github.com/berfenger/wiipad/linux/internal/recv"
	"github.com/berfenger/wiipad/mapping"
	"github.com/berfenger/wiipad/report"
	"github.com/berfenger/wiipad/translate"
)

// Outbound report-type prefixes, per spec.md §4.1: v1 controllers use
// 0x52, v2 ("-TR"/"-UC") ones use 0xA2. Inbound frames always arrive
// prefixed 0xA1 (DATA | INPUT) regardless of protocol version.
const (
	prefixOutputV1 = 0x52
	prefixOutputV2 = 0xA2
	prefixInput    = 0xA1
)

const pendingTimeout = 2 * time.Second

// pendingWait is the single outstanding command rendezvous a session may
// have in flight at a time, grounded on libwiimote.py's WiimoteDevice
// holding exactly one pending request.
type pendingWait struct {
	kind  PendingKind
	reply chan []byte
}

// DeviceSession is one connected controller: its transport, protocol
// state, extension status, mapping profile and synthesized input
// device(s). Grounded end to end on WiimoteDevice in libwiimote.py.
type DeviceSession struct {
	log      logrus.FieldLogger
	registry *SessionRegistry

	Addr [6]byte
	Name string
	Kind DeviceKind

	transport *btsock.Transport
	queue     *queue.Queue
	recv      *recv.Receiver

	mu       sync.Mutex
	flags    Flags
	ext      ExtensionKind
	ledSlot  int
	pending  *pendingWait
	calib    report.ProCalibration
	lastPoll time.Time

	profile *mapping.Profile
	devices map[mapping.Kind]*uinputdev.Device

	disconnectOnce sync.Once
	disconnected   chan struct{}

	cmdMu sync.Mutex
}

func newSession(log logrus.FieldLogger, reg *SessionRegistry, q *queue.Queue, rv *recv.Receiver, addr [6]byte, name string, profile *mapping.Profile) *DeviceSession {
	return &DeviceSession{
		log:          log,
		registry:     reg,
		Addr:         addr,
		Name:         name,
		Kind:         deviceKindFromName(name),
		queue:        q,
		recv:         rv,
		profile:      profile,
		devices:      make(map[mapping.Kind]*uinputdev.Device),
		disconnected: make(chan struct{}),
	}
}

// deviceKindFromName classifies the Bluetooth device name the way
// ctrlmanager.py's is_wiimote/is_balance_board checks do.
func deviceKindFromName(name string) DeviceKind {
	switch name {
	case "Nintendo RVL-CNT-01":
		return DeviceGen10
	case "Nintendo RVL-CNT-01-TR":
		return DeviceGen20
	case "Nintendo RVL-CNT-01-UC":
		return DeviceProController
	case "Nintendo RVL-WBC-01":
		return DeviceBalanceBoard
	default:
		return DeviceUnknown
	}
}

// productIDForKind is the uinput product code per spec.md §4.8 step 2.
func productIDForKind(kind DeviceKind) uint16 {
	switch kind {
	case DeviceGen10:
		return 0x0306
	case DeviceGen20, DeviceProController:
		return 0x0330
	default:
		return 0x0001
	}
}

// isProtocolV2 reports whether name is a protocol-v2 controller
// ("-TR"/"-UC" suffix), per the original connect()'s CMD_SET_REPORT
// selection (spec.md §4.1).
func isProtocolV2(name string) bool {
	return strings.Contains(name, "RVL-CNT-01-TR") || strings.Contains(name, "RVL-CNT-01-UC")
}

// connect opens the transport and runs the status/extension-detect/DRM
// sequence from spec.md §4.5.
func (s *DeviceSession) connect(slot int) error {
	t, err := btsock.Connect(s.Addr, isProtocolV2(s.Name))
	if err != nil {
		return fmt.Errorf("linux: connect %x: %w", s.Addr, err)
	}
	s.transport = t
	s.ledSlot = slot

	s.mu.Lock()
	s.flags |= ledFlagForSlot(slot) | FlagAccel
	s.mu.Unlock()

	s.queue.Start()
	s.recv.Start()
	s.recv.Add(s)

	if _, err := s.sendCommand(PendingStatus, buildStatusReq(s.currentFlags()), pendingTimeout); err != nil {
		s.log.WithError(err).Warn("linux: initial status request failed")
	}
	s.detectExtension()
	s.applyDRM()
	s.applyLEDs()
	return nil
}

func (s *DeviceSession) currentFlags() Flags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags
}

// detectExtension runs the two-step init write followed by the identity
// read, classifying the result per classifyExtension. Per
// wiiproto_cmd_detect_ext, the wire dance only runs when FlagExtPlugged
// is set; otherwise classification short-circuits straight to ExtNone
// without touching the transport (SPEC_FULL.md supplemented feature 6).
// The base Wiimote synthetic device is created either way.
func (s *DeviceSession) detectExtension() {
	kind := ExtNone
	if s.currentFlags().Has(FlagExtPlugged) {
		kind = s.readExtensionID()
	}

	s.mu.Lock()
	s.ext = kind
	if kind != ExtNone && kind != ExtUnknown {
		s.flags |= FlagExtUsed | FlagExtActive
	}
	s.mu.Unlock()

	if err := s.ensureDevice(mapping.KindWiimote); err != nil {
		s.log.WithError(err).Warn("linux: failed to create base synthetic device")
	}
	if extKind := mappingKindForExtension(kind); extKind != mapping.KindWiimote {
		if err := s.ensureDevice(extKind); err != nil {
			s.log.WithError(err).Warn("linux: failed to create synthetic device for extension")
		}
	}
}

// readExtensionID runs the init-write/init-write/identity-read sequence
// and classifies the result, or returns ExtNone on any transport failure
// along the way.
func (s *DeviceSession) readExtensionID() ExtensionKind {
	if _, err := s.sendCommand(PendingWriteMem, buildExtInitStep1(), pendingTimeout); err != nil {
		s.log.WithError(err).Debug("linux: extension init step 1 failed, assuming none plugged")
		return ExtNone
	}
	if _, err := s.sendCommand(PendingWriteMem, buildExtInitStep2(), pendingTimeout); err != nil {
		s.log.WithError(err).Debug("linux: extension init step 2 failed")
		return ExtNone
	}
	id, err := s.sendCommand(PendingReadMem, buildExtIDRead(), pendingTimeout)
	if err != nil {
		s.log.WithError(err).Debug("linux: extension identity read failed")
		return ExtNone
	}
	return classifyExtension(id)
}

func mappingKindForExtension(ext ExtensionKind) mapping.Kind {
	switch ext {
	case ExtNunchuk:
		return mapping.KindWiimoteNunchuk
	case ExtClassic, ExtClassicPro:
		return mapping.KindClassic
	case ExtPro:
		return mapping.KindPro
	default:
		return mapping.KindWiimote
	}
}

// ensureDevice lazily synthesizes the uinput device for a mapping kind,
// reading capability codes straight from the profile's descriptor.
func (s *DeviceSession) ensureDevice(kind mapping.Kind) error {
	s.mu.Lock()
	if _, ok := s.devices[kind]; ok {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	m := s.profile.For(kind)
	if m == nil {
		return fmt.Errorf("linux: no mapping configured for %v", kind)
	}

	dev, err := uinputdev.New(s.log, syntheticDeviceName(kind, m), 0x0005, 0x057e, productIDForKind(s.Kind), 1)
	if err != nil {
		return err
	}

	enabled := map[uinputdev.EvType]bool{}
	for pos := 0; pos < m.Len(); pos++ {
		e := m.Get(pos)
		if e == nil {
			continue
		}
		evt := uinputdev.EvType(e.Type())
		if !enabled[evt] {
			if err := dev.EnableEventType(uint16(evt)); err != nil {
				dev.Destroy()
				return err
			}
			enabled[evt] = true
		}
		codes := e.Codes()
		naturalAxis := e.Type() == mapping.EventAbs && m.Descriptor.IsAxis[pos]
		for _, code := range codes {
			if err := dev.EnableEvent(uint16(evt), code); err != nil {
				dev.Destroy()
				return err
			}
			if e.Type() != mapping.EventAbs {
				continue
			}
			switch {
			case len(codes) >= 2:
				// Split one axis across two targets: each gets half-range.
				ap := m.AbsParams[pos]
				dev.SetAbsProps(code, uinputdev.AbsRange{Min: ap.Min / 2, Max: ap.Max / 2, Fuzz: ap.Fuzz, Flat: ap.Flat})
			case naturalAxis:
				ap := m.AbsParams[pos]
				dev.SetAbsProps(code, uinputdev.AbsRange{Min: ap.Min, Max: ap.Max, Fuzz: ap.Fuzz, Flat: ap.Flat})
			default:
				// Button driving an axis target (emulation): {-1,+1,0,0}.
				dev.SetAbsProps(code, uinputdev.AbsRange{Min: -1, Max: 1, Fuzz: 0, Flat: 0})
			}
		}
	}
	if err := dev.Setup(); err != nil {
		return err
	}

	s.mu.Lock()
	s.devices[kind] = dev
	s.mu.Unlock()
	return nil
}

// syntheticDeviceName picks the uinput device name per spec.md §6.3,
// then substitutes "Nintendo Keyboard" for "Nintendo" when m carries no
// gamepad-recognized bits (the Xorg blacklist workaround, §4.8 step 6).
func syntheticDeviceName(kind mapping.Kind, m *mapping.Mapping) string {
	name := "Nintendo Wii Remote"
	switch kind {
	case mapping.KindClassic:
		name = "Nintendo Wii Remote Classic Controller"
	case mapping.KindPro:
		name = "Nintendo Wii Remote Pro Controller"
	}
	if m != nil && !m.IsGamepad {
		name = strings.Replace(name, "Nintendo", "Nintendo Keyboard", 1)
	}
	return name
}

func (s *DeviceSession) applyDRM() {
	if _, err := s.enqueueFireAndForget(buildDRM(s.Kind, s.currentFlags())); err != nil {
		s.log.WithError(err).Warn("linux: failed to set reporting mode")
	}
}

func (s *DeviceSession) applyLEDs() {
	if _, err := s.enqueueFireAndForget(buildLED(s.currentFlags())); err != nil {
		s.log.WithError(err).Warn("linux: failed to set LEDs")
	}
}

// outputPrefix returns this session's report-type byte per spec.md §4.1.
func (s *DeviceSession) outputPrefix() byte {
	if isProtocolV2(s.Name) {
		return prefixOutputV2
	}
	return prefixOutputV1
}

func (s *DeviceSession) enqueueFireAndForget(payload []byte) (struct{}, error) {
	s.queue.Enqueue(s, append([]byte{s.outputPrefix()}, payload...))
	return struct{}{}, nil
}

// sendCommand enqueues payload and blocks until the matching reply
// arrives or pendingTimeout elapses. Only one command may be in flight
// at a time; a second caller waits for cmdMu rather than failing, the
// Go equivalent of the original's "with self.state.send_command:" lock
// serializing wiiproto_cmd_wmem/rmem/req_status against each other.
func (s *DeviceSession) sendCommand(kind PendingKind, payload []byte, timeout time.Duration) ([]byte, error) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	wait := &pendingWait{kind: kind, reply: make(chan []byte, 1)}
	s.mu.Lock()
	s.pending = wait
	s.mu.Unlock()

	s.queue.Enqueue(s, append([]byte{s.outputPrefix()}, payload...))

	select {
	case data := <-wait.reply:
		return data, nil
	case <-time.After(timeout):
		s.mu.Lock()
		if s.pending == wait {
			s.pending = nil
		}
		s.mu.Unlock()
		return nil, fmt.Errorf("linux: command timed out waiting for reply")
	case <-s.disconnected:
		return nil, fmt.Errorf("linux: session disconnected")
	}
}

// --- queue.Session ---

func (s *DeviceSession) Send(payload []byte) error {
	if s.transport == nil || s.transport.Send == nil {
		return fmt.Errorf("linux: no transport")
	}
	_, err := s.transport.Send.Write(payload)
	return err
}

func (s *DeviceSession) OnSendError() {
	s.log.Warn("linux: write failed, disconnecting")
	s.Disconnect()
}

func (s *DeviceSession) StatusPollPayload() []byte {
	return append([]byte{s.outputPrefix()}, buildStatusReq(s.currentFlags())...)
}

// --- recv.Session ---

func (s *DeviceSession) DataFd() int {
	if s.transport == nil {
		return -1
	}
	return s.transport.Data.Fd()
}

// disconnectTimeout is the §4.4 "no status reply observed" window: if
// more than this elapses since lastPoll was last set, the session is
// considered dead. lastPoll starts zero-valued and the check is skipped
// until the first status reply arrives (Open Question resolution in
// SPEC_FULL.md: "no timeout until first status observed").
const disconnectTimeout = 14 * time.Second

func (s *DeviceSession) HandleFrame(frame []byte) {
	if len(frame) < 2 || frame[0] != prefixInput {
		return
	}
	code := int(frame[1])
	body := frame[2:]

	switch code {
	case report.ReqStatus:
		s.handleStatusReply(body)
	case report.ReqData:
		s.deliverPending(PendingReadMem, body)
	case report.ReqReturn:
		if err := writeAckError(frame[1:]); err != nil {
			s.log.WithError(err).Debug("linux: write-mem nack")
		}
		s.deliverPending(PendingWriteMem, body)
	default:
		s.processInput(code, body)
	}

	if s.pollExpired() {
		go s.Disconnect()
	}
}

func (s *DeviceSession) pollExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.lastPoll.IsZero() && time.Since(s.lastPoll) > disconnectTimeout
}

// handleStatusReply applies the status reply per libwiimote.py's
// handler_status: the plugged bit is edge-triggered, not level-triggered,
// so a repeated "still plugged" status doesn't keep restarting extension
// detection.
func (s *DeviceSession) handleStatusReply(body []byte) {
	s.mu.Lock()
	s.lastPoll = time.Now()
	s.mu.Unlock()
	if info, err := parseStatus(body); err == nil {
		s.mu.Lock()
		wasPlugged := s.flags.Has(FlagExtPlugged)
		var redetect bool
		if info.ExtConnected {
			if !wasPlugged {
				s.flags |= FlagExtPlugged
				redetect = true
			}
		} else if wasPlugged {
			s.flags &^= FlagExtPlugged | FlagExtUsed | FlagExtActive | FlagMpPlugged | FlagMpActive
			redetect = true
		}
		s.mu.Unlock()
		if redetect {
			go s.detectExtension()
		}
	}
	s.deliverPending(PendingStatus, body)
}

// EnableExtension flags a detected extension as in-use and requests the
// reporting mode update, the Go analogue of libwiimote.py's enableExtension.
func (s *DeviceSession) EnableExtension() {
	s.mu.Lock()
	if s.flags.Has(FlagExtPlugged) {
		s.flags |= FlagExtUsed
	}
	s.mu.Unlock()
	s.applyDRM()
}

// DisableExtension clears ExtUsed and requests the reporting mode update.
// libwiimote.py's disableExtension clears this flag with AND instead of
// AND-NOT, a bug corrected here (spec.md Design Notes REDESIGN FLAG).
func (s *DeviceSession) DisableExtension() {
	s.mu.Lock()
	s.flags &^= FlagExtUsed
	s.mu.Unlock()
	s.applyDRM()
}

// EnableAccel and DisableAccel toggle FlagAccel and push the updated
// reporting mode, mirroring libwiimote.py's enableAccel/disableAccel.
func (s *DeviceSession) EnableAccel() {
	s.mu.Lock()
	s.flags |= FlagAccel
	s.mu.Unlock()
	s.applyDRM()
}

func (s *DeviceSession) DisableAccel() {
	s.mu.Lock()
	s.flags &^= FlagAccel
	s.mu.Unlock()
	s.applyDRM()
}

func (s *DeviceSession) deliverPending(kind PendingKind, data []byte) {
	s.mu.Lock()
	w := s.pending
	if w == nil || w.kind != kind {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.mu.Unlock()
	select {
	case w.reply <- data:
	default:
	}
}

// processInput dispatches a button/accel/extension frame through the
// report parsers and the translator, emitting uinput events.
func (s *DeviceSession) processInput(code int, body []byte) {
	frameKind, ok := report.Select(code, len(body)+2)
	if !ok {
		return
	}

	if s.Kind == DeviceBalanceBoard && len(body) >= 2 {
		// wiimote_uinput_glue.py never assigns a mapping for
		// PROFILE_BALANCE_BOARD, so the board's single button never
		// reaches a synthetic device here either; it's only logged.
		s.log.WithField("pressed", report.ParseBalanceKey(body)).Debug("linux: balance board button state")
		return
	}

	wiiDev := s.deviceFor(mapping.KindWiimote)
	if wiiDev != nil && len(body) >= 2 {
		s.emitWiimoteKeys(wiiDev, report.ParseKeys(body))
	}

	switch frameKind {
	case report.FrameKeysAccel, report.FrameKeysAccelExt:
		if len(body) < 5 {
			break
		}
		accel := report.ParseAccel(body, s.Kind == DeviceGen10)
		s.emitAccel(wiiDev, accel)
	}

	switch frameKind {
	case report.FrameKeysAccelExt, report.FrameKeysExt:
		s.dispatchExtension(frameKind, body)
	}

	if wiiDev != nil {
		wiiDev.SendSync()
	}
}

func (s *DeviceSession) deviceFor(kind mapping.Kind) *uinputdev.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.devices[kind]
}

func (s *DeviceSession) emitWiimoteKeys(dev *uinputdev.Device, keys report.Keys) {
	m := s.profile.Wiimote
	buttons := map[int]bool{
		mapping.WiimoteBtnA: keys.A, mapping.WiimoteBtnB: keys.B,
		mapping.WiimoteBtn1: keys.One, mapping.WiimoteBtn2: keys.Two,
		mapping.WiimoteBtnMinus: keys.Minus, mapping.WiimoteBtnHome: keys.Home, mapping.WiimoteBtnPlus: keys.Plus,
		mapping.WiimoteBtnLeft: keys.Left, mapping.WiimoteBtnRight: keys.Right,
		mapping.WiimoteBtnUp: keys.Up, mapping.WiimoteBtnDown: keys.Down,
	}
	for pos, v := range buttons {
		s.emitButton(dev, m, pos, v)
	}
}

func (s *DeviceSession) emitAccel(dev *uinputdev.Device, accel report.Accel) {
	if dev == nil {
		return
	}
	m := s.profile.Wiimote
	for _, pos := range []int{mapping.WiimoteAccelX, mapping.WiimoteAccelY, mapping.WiimoteAccelZ} {
		e := m.Get(pos)
		if e == nil {
			continue
		}
		v := map[int]int{mapping.WiimoteAccelX: accel.X, mapping.WiimoteAccelY: accel.Y, mapping.WiimoteAccelZ: accel.Z}[pos]
		ap := m.AbsParams[pos]
		v = translate.SingleDeadZone(e, ap, v)
		for _, ev := range translate.Emit(e, v, true, ap) {
			dev.SendEvent(uint16(ev.Type), ev.Code, ev.Value)
		}
	}

	if shake := m.Get(mapping.WiimoteBtnShake); shake != nil {
		sens := 0
		if bm, ok := shake.(*mapping.ButtonMapping); ok {
			sens = bm.Sensitivity
		}
		v := translate.ShakeValue(accel.Z, sens)
		for _, ev := range translate.Emit(shake, v, false, mapping.AbsParams{}) {
			dev.SendEvent(uint16(ev.Type), ev.Code, ev.Value)
		}
	}
}

// dispatchExtension slices the extension payload out of body, whose
// leading bytes differ by frame kind per spec.md §4.5: KAE (DRM_KAE,
// handler_drm_KAE) carries keys+accel (5 bytes) before the extension
// data, while KE (DRM_KEE, handler_drm_KEE) carries keys only (2 bytes).
func (s *DeviceSession) dispatchExtension(frameKind report.FrameKind, body []byte) {
	ext := s.extKind()
	extOffset := extensionOffset(frameKind)
	if len(body) <= extOffset {
		return
	}
	extBytes := body[extOffset:]

	switch ext {
	case ExtNunchuk:
		if dev := s.deviceFor(mapping.KindWiimoteNunchuk); dev != nil {
			nc := report.ParseNunchuk(extBytes, s.currentFlags().Has(FlagMpActive))
			s.emitNunchuk(dev, nc)
			dev.SendSync()
		}
	case ExtClassic, ExtClassicPro:
		if dev := s.deviceFor(mapping.KindClassic); dev != nil {
			cc := report.ParseClassic(extBytes, s.currentFlags().Has(FlagMpActive))
			s.emitClassic(dev, cc)
			dev.SendSync()
		}
	case ExtPro:
		if dev := s.deviceFor(mapping.KindPro); dev != nil {
			s.mu.Lock()
			pc := report.ParseProController(extBytes, &s.calib)
			s.mu.Unlock()
			s.emitPro(dev, pc)
			dev.SendSync()
		}
	}
}

// extensionOffset is how many leading bytes of a KA*/KE*-family payload
// belong to keys (and, for KAE, accel) rather than the extension, per
// spec.md §4.5's handler_drm_KAE (5 bytes: keys+accel) vs handler_drm_KEE
// (2 bytes: keys only).
func extensionOffset(frameKind report.FrameKind) int {
	if frameKind == report.FrameKeysAccelExt {
		return 5
	}
	return 2
}

func (s *DeviceSession) extKind() ExtensionKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ext
}

func (s *DeviceSession) emitNunchuk(dev *uinputdev.Device, nc report.Nunchuk) {
	m := s.profile.WiimoteNunchuk
	vals := map[int]int{
		mapping.NunchukAxisX: nc.StickX, mapping.NunchukAxisY: nc.StickY,
		mapping.NunchukAccelX: nc.AccelX, mapping.NunchukAccelY: nc.AccelY, mapping.NunchukAccelZ: nc.AccelZ,
	}
	s.emitAxes(dev, m, vals, [2]int{mapping.NunchukAxisX, mapping.NunchukAxisY})
	s.emitButton(dev, m, mapping.NunchukBtnC, nc.C)
	s.emitButton(dev, m, mapping.NunchukBtnZ, nc.Z)

	if shake := m.Get(mapping.NunchukBtnShake); shake != nil {
		sens := 0
		if bm, ok := shake.(*mapping.ButtonMapping); ok {
			sens = bm.Sensitivity
		}
		v := translate.ShakeValue(nc.AccelZ, sens)
		for _, ev := range translate.Emit(shake, v, false, mapping.AbsParams{}) {
			dev.SendEvent(uint16(ev.Type), ev.Code, ev.Value)
		}
	}
}

func (s *DeviceSession) emitClassic(dev *uinputdev.Device, cc report.Classic) {
	m := s.profile.Classic
	vals := map[int]int{
		mapping.ClassicAxisX: cc.LX, mapping.ClassicAxisY: cc.LY,
		mapping.ClassicAxisRX: cc.RX, mapping.ClassicAxisRY: cc.RY,
		mapping.ClassicAxisLT: cc.LT, mapping.ClassicAxisRT: cc.RT,
	}
	s.emitAxes(dev, m, vals,
		[2]int{mapping.ClassicAxisX, mapping.ClassicAxisY},
		[2]int{mapping.ClassicAxisRX, mapping.ClassicAxisRY})
	buttons := map[int]bool{
		mapping.ClassicBtnA: cc.A, mapping.ClassicBtnB: cc.B, mapping.ClassicBtnX: cc.X, mapping.ClassicBtnY: cc.Y,
		mapping.ClassicBtnTL: cc.TL, mapping.ClassicBtnTR: cc.TR, mapping.ClassicBtnZL: cc.ZL, mapping.ClassicBtnZR: cc.ZR,
		mapping.ClassicBtnMinus: cc.Minus, mapping.ClassicBtnPlus: cc.Plus, mapping.ClassicBtnHome: cc.Home,
		mapping.ClassicBtnUp: cc.Up, mapping.ClassicBtnDown: cc.Down, mapping.ClassicBtnLeft: cc.Left, mapping.ClassicBtnRight: cc.Right,
	}
	for pos, v := range buttons {
		s.emitButton(dev, m, pos, v)
	}
}

func (s *DeviceSession) emitPro(dev *uinputdev.Device, pc report.Pro) {
	m := s.profile.Pro
	vals := map[int]int{
		mapping.ProAxisX: pc.LX, mapping.ProAxisY: pc.LY,
		mapping.ProAxisRX: pc.RX, mapping.ProAxisRY: pc.RY,
	}
	s.emitAxes(dev, m, vals,
		[2]int{mapping.ProAxisX, mapping.ProAxisY},
		[2]int{mapping.ProAxisRX, mapping.ProAxisRY})
	buttons := map[int]bool{
		mapping.ProBtnA: pc.A, mapping.ProBtnB: pc.B, mapping.ProBtnX: pc.X, mapping.ProBtnY: pc.Y,
		mapping.ProBtnTL: pc.TL, mapping.ProBtnTR: pc.TR, mapping.ProBtnZL: pc.ZL, mapping.ProBtnZR: pc.ZR,
		mapping.ProBtnMinus: pc.Minus, mapping.ProBtnPlus: pc.Plus, mapping.ProBtnHome: pc.Home,
		mapping.ProBtnUp: pc.Up, mapping.ProBtnDown: pc.Down, mapping.ProBtnLeft: pc.Left, mapping.ProBtnRight: pc.Right,
		mapping.ProBtnThumbL: pc.ThumbL, mapping.ProBtnThumbR: pc.ThumbR,
	}
	for pos, v := range buttons {
		s.emitButton(dev, m, pos, v)
	}
}

// emitAxes emits every natural-axis position in vals. stickPairs lists
// position pairs (X,Y and RX,RY for Nunchuk/Classic/Pro) that take the
// circular dead-zone rule instead of the single-axis rule, per §4.7.
func (s *DeviceSession) emitAxes(dev *uinputdev.Device, m *mapping.Mapping, vals map[int]int, stickPairs ...[2]int) {
	if m == nil {
		return
	}
	paired := map[int]bool{}
	for _, pr := range stickPairs {
		posX, posY := pr[0], pr[1]
		vx, vy := vals[posX], vals[posY]
		ex, ey := m.Get(posX), m.Get(posY)
		if ex != nil {
			vx, vy = translate.CircularDeadZone(ex, ey, m.AbsParams[posX], m.AbsParams[posY], vx, vy)
		}
		for _, item := range []struct {
			pos int
			e   mapping.Entry
			v   int
		}{{posX, ex, vx}, {posY, ey, vy}} {
			paired[item.pos] = true
			if item.e == nil {
				continue
			}
			ap := m.AbsParams[item.pos]
			for _, ev := range translate.Emit(item.e, item.v, true, ap) {
				dev.SendEvent(uint16(ev.Type), ev.Code, ev.Value)
			}
		}
	}
	for pos, v := range vals {
		if paired[pos] {
			continue
		}
		e := m.Get(pos)
		if e == nil {
			continue
		}
		ap := m.AbsParams[pos]
		v = translate.SingleDeadZone(e, ap, v)
		for _, ev := range translate.Emit(e, v, true, ap) {
			dev.SendEvent(uint16(ev.Type), ev.Code, ev.Value)
		}
	}
}

func (s *DeviceSession) emitButton(dev *uinputdev.Device, m *mapping.Mapping, pos int, pressed bool) {
	if m == nil {
		return
	}
	e := m.Get(pos)
	if e == nil {
		return
	}
	v := 0
	if pressed {
		v = 1
	}
	for _, ev := range translate.Emit(e, v, false, mapping.AbsParams{}) {
		dev.SendEvent(uint16(ev.Type), ev.Code, ev.Value)
	}
}

// PrettyName returns a human-readable name for the controller, one of
// the supplemented features absent from the distilled control flow.
// Operator-facing only (log lines); distinct from the synthetic uinput
// device name of §6.3, grounded on libwiimote.py's getDeviceName.
func (s *DeviceSession) PrettyName() string {
	var name string
	switch s.Kind {
	case DeviceGen10:
		name = "Wiimote"
	case DeviceGen20:
		name = "Wiimote Plus"
	case DeviceBalanceBoard:
		name = "Balance Board"
	case DeviceProController:
		name = "WiiU Pro Controller"
	default:
		return s.Name
	}
	switch s.extKind() {
	case ExtClassicPro:
		name += " + Classic Controller Pro"
	case ExtClassic:
		name += " + Classic Controller"
	case ExtNunchuk:
		name += " + Nunchuk"
	}
	return name
}

// Battery requests a fresh status report and returns its battery level
// scaled to 0-100 (0 if the request or the parse fails), another
// supplemented accessor. handler_status in the original scales the raw
// status byte by 255.0 for Wii U Pro Controllers ("-UC") and 208.0 for
// everything else; the two families report against different raw
// ranges, so the divisor is picked the same way applyDRM/ParseAccel
// branch on s.Kind.
func (s *DeviceSession) Battery() byte {
	data, err := s.sendCommand(PendingStatus, buildStatusReq(s.currentFlags()), pendingTimeout)
	if err != nil {
		return 0
	}
	info, err := parseStatus(data)
	if err != nil {
		return 0
	}
	return batteryPercent(info.BatteryLevel, s.Kind)
}

// batteryPercent scales a raw status-reply battery byte to 0-100, per
// handler_status's divisor split: 255.0 for Wii U Pro Controllers
// ("-UC"), 208.0 for every other device kind.
func batteryPercent(raw byte, kind DeviceKind) byte {
	divisor := 208.0
	if kind == DeviceProController {
		divisor = 255.0
	}
	pct := float64(raw) / divisor * 100.0
	if pct > 100 {
		pct = 100
	}
	return byte(pct)
}

// Disconnect tears the session down: idempotent, safe from any
// goroutine, releases the LED slot and destroys every synthesized
// device, mirroring libwiimote.py's close().
func (s *DeviceSession) Disconnect() {
	s.disconnectOnce.Do(func() {
		close(s.disconnected)
		s.recv.Remove(s)
		s.queue.Remove(s)
		if s.transport != nil {
			s.transport.Close()
		}
		s.mu.Lock()
		devices := s.devices
		s.devices = nil
		slot := s.ledSlot
		s.mu.Unlock()
		for _, d := range devices {
			d.Destroy()
		}
		if s.registry != nil {
			s.registry.leds.Release(slot)
			s.registry.notifyDisconnect(s)
		}
	})
}
