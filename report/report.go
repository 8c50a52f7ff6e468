// Package report holds the bit-exact decoders for each Data Reporting
// Mode payload shape and each extension signature, grounded on
// WiiDataParser in the original libwiimote.py.
package report

// Report ids, inbound and outbound, as they appear on the wire after the
// transport's report-type prefix byte.
const (
	ReqRumble = 0x10
	ReqLED    = 0x11
	ReqDRM    = 0x12
	ReqSreq   = 0x15
	ReqWmem   = 0x16
	ReqRmem   = 0x17
	ReqStatus = 0x20
	ReqData   = 0x21
	ReqReturn = 0x22

	DrmK    = 0x30
	DrmKA   = 0x31
	DrmKAI  = 0x33
	DrmKEE  = 0x34
	DrmKAE  = 0x35
	DrmKIE  = 0x36
	DrmKAIE = 0x37
	DrmSKAI1 = 0x3e
)

// Keys holds the Wiimote's eleven digital buttons (and, for a Balance
// Board frame, just A is meaningful).
type Keys struct {
	Left, Right, Up, Down  bool
	Minus, Home, Plus      bool
	A, B, One, Two         bool
}

// ParseKeys decodes the two-byte button payload shared by every DRM that
// starts with BB (the Wiimote's own key bits).
func ParseKeys(p []byte) Keys {
	return Keys{
		Left:  p[0]&0x01 != 0,
		Right: p[0]&0x02 != 0,
		Down:  p[0]&0x04 != 0,
		Up:    p[0]&0x08 != 0,
		Plus:  p[0]&0x10 != 0,
		Two:   p[1]&0x01 != 0,
		One:   p[1]&0x02 != 0,
		B:     p[1]&0x04 != 0,
		A:     p[1]&0x08 != 0,
		Minus: p[1]&0x10 != 0,
		Home:  p[1]&0x80 != 0,
	}
}

// ParseBalanceKey decodes the Balance Board's single meaningful button.
func ParseBalanceKey(p []byte) bool {
	return p[1]&0x08 != 0
}

// Accel is a Wiimote accelerometer sample, already re-centred around
// zero. Y is negated before it reaches the mapping/translate pipeline
// (SUPPLEMENTED FEATURES item 5), distinct from any per-mapping inverted
// flag applied later by the translator.
type Accel struct {
	X, Y, Z int
}

// ParseAccel decodes the 5-byte DRM_KA/KAE payload's three accelerometer
// fields. gen10 selects the Wiimote-generation-specific zero offset.
func ParseAccel(p []byte, gen10 bool) Accel {
	x := int(p[2])<<2 | int(p[0]>>5)&0x3
	y := int(p[3])<<2 | int(p[1]>>4)&0x2
	z := int(p[4])<<2 | int(p[1]>>5)&0x2
	offset := 0x200
	if gen10 {
		offset = 0x1e7
	}
	return Accel{X: x - offset, Y: -(y - offset), Z: z - offset}
}

// Nunchuk is a decoded Nunchuk extension frame.
type Nunchuk struct {
	StickX, StickY int
	AccelX, AccelY, AccelZ int
	C, Z bool
}

// ParseNunchuk decodes the 6-byte Nunchuk extension payload. mpActive
// selects the narrower accelerometer LSB packing used when a Motion Plus
// is passed through.
func ParseNunchuk(ext []byte, mpActive bool) Nunchuk {
	bx := int(ext[0]) - 128
	by := -(int(ext[1]) - 128)

	x := int(ext[2]) << 2
	y := int(ext[3]) << 2
	z := int(ext[4]) << 2

	var c, z_ bool
	if mpActive {
		x |= int(ext[5]>>3) & 0x2
		y |= int(ext[5]>>4) & 0x2
		z = (z &^ 0x4) | int(ext[5]>>5)&0x6
		z_ = ext[5]&0x04 == 0
		c = ext[5]&0x08 == 0
	} else {
		x |= int(ext[5]>>2) & 0x3
		y |= int(ext[5]>>4) & 0x3
		z |= int(ext[5]>>6) & 0x3
		z_ = ext[5]&0x01 == 0
		c = ext[5]&0x02 == 0
	}

	return Nunchuk{
		StickX: bx, StickY: by,
		AccelX: x - 0x200, AccelY: y - 0x200, AccelZ: z - 0x200,
		C: c, Z: z_,
	}
}

// Classic is a decoded Classic Controller (or Classic Controller Pro,
// same wire layout) extension frame.
type Classic struct {
	LX, LY, RX, RY int
	LT, RT         int
	Left, Right, Up, Down     bool
	Minus, Home, Plus         bool
	A, B, X, Y                bool
	TL, TR, ZL, ZR            bool
}

// ParseClassic decodes the 6-byte Classic Controller extension payload,
// per the bit layout in libwiimote.py's parseClassic. mpActive selects
// the narrower stick LSB packing used when a Motion Plus is passed
// through, which also relocates the D-pad up/left bits.
func ParseClassic(ext []byte, mpActive bool) Classic {
	var lx, ly int
	if mpActive {
		lx = int(ext[0]) & 0x3e
		ly = int(ext[1]) & 0x3e
	} else {
		lx = int(ext[0]) & 0x3f
		ly = int(ext[1]) & 0x3f
	}

	rx := int(ext[0]>>3) & 0x18
	rx |= int(ext[1]>>5) & 0x06
	rx |= int(ext[2]>>7) & 0x01
	ry := int(ext[2]) & 0x1f

	rt := int(ext[3]) & 0x1f
	lt := int(ext[2]>>2) & 0x18
	lt |= int(ext[3]>>5) & 0x07

	rx <<= 1
	ry <<= 1
	rt <<= 1
	lt <<= 1

	rx -= 0x20
	lx -= 0x20
	ry -= 0x20
	ly -= 0x20
	ly = -ly
	ry = -ry
	lt -= 30
	rt -= 30

	c := Classic{
		LX: lx, LY: ly, RX: rx, RY: ry, LT: lt, RT: rt,
		Right: ext[4]&0x80 == 0,
		Down:  ext[4]&0x40 == 0,
		TL:    ext[4]&0x20 == 0,
		Minus: ext[4]&0x10 == 0,
		Home:  ext[4]&0x08 == 0,
		Plus:  ext[4]&0x04 == 0,
		TR:    ext[4]&0x02 == 0,
		ZL:    ext[5]&0x80 == 0,
		B:     ext[5]&0x40 == 0,
		Y:     ext[5]&0x20 == 0,
		A:     ext[5]&0x10 == 0,
		X:     ext[5]&0x08 == 0,
		ZR:    ext[5]&0x04 == 0,
	}
	if mpActive {
		c.Left = ext[1]&0x01 == 0
		c.Up = ext[0]&0x01 == 0
	} else {
		c.Left = ext[5]&0x02 == 0
		c.Up = ext[5]&0x01 == 0
	}
	return c
}

// ProCalibration holds the one-shot zero-offsets captured from the first
// Pro Controller report whose raw magnitude is under 500 on each axis.
type ProCalibration struct {
	LX, LY, RX, RY int
	Done           bool
}

// Pro is a decoded Wii U Pro Controller extension frame.
type Pro struct {
	LX, LY, RX, RY int
	Left, Right, Up, Down bool
	Minus, Home, Plus     bool
	A, B, X, Y            bool
	TL, TR, ZL, ZR        bool
	ThumbL, ThumbR        bool
}

// ParseProController decodes the 11-byte Pro Controller extension
// payload and applies the one-shot calibration offsets described in
// ProCalibration, capturing them from the first report whose four axes
// are all under 500 in magnitude.
func ParseProController(ext []byte, calib *ProCalibration) Pro {
	lx := int(ext[0]) | int(ext[1]&0x0f)<<8
	rx := int(ext[2]) | int(ext[3]&0x0f)<<8
	ly := int(ext[4]) | int(ext[5]&0x0f)<<8
	ry := int(ext[6]) | int(ext[7]&0x0f)<<8

	lx -= 0x800
	ly = 0x800 - ly
	rx -= 0x800
	ry = 0x800 - ry

	if !calib.Done && abs(lx) < 500 && abs(ly) < 500 && abs(rx) < 500 && abs(ry) < 500 {
		calib.Done = true
		calib.LX = -lx
		calib.LY = -ly
		calib.RX = -rx
		calib.RY = -ry
	}
	lx += calib.LX
	ly += calib.LY
	rx += calib.RX
	ry += calib.RY

	return Pro{
		LX: lx, LY: ly, RX: rx, RY: ry,
		Right: ext[8]&0x80 == 0,
		Down:  ext[8]&0x40 == 0,
		TL:    ext[8]&0x20 == 0,
		Minus: ext[8]&0x10 == 0,
		Home:  ext[8]&0x08 == 0,
		Plus:  ext[8]&0x04 == 0,
		TR:    ext[8]&0x02 == 0,
		ZL:    ext[9]&0x80 == 0,
		B:     ext[9]&0x40 == 0,
		Y:     ext[9]&0x20 == 0,
		A:     ext[9]&0x10 == 0,
		X:     ext[9]&0x08 == 0,
		ZR:    ext[9]&0x04 == 0,
		Left:  ext[9]&0x02 == 0,
		Up:    ext[9]&0x01 == 0,
		ThumbL: ext[10]&0x02 == 0,
		ThumbR: ext[10]&0x01 == 0,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Handler describes one registered (reportCode, minSize) -> decode-shape
// pairing. Selection is largest-size-first: the first handler whose Size
// is strictly less than the frame length wins, expressed here as an
// ordered table rather than repeated comparisons (Design Notes).
type Handler struct {
	Code int
	Size int
	Kind FrameKind
}

// FrameKind says which of keys/accel/ext/sync the handler's payload
// carries, so a caller (DeviceSession.processInput) knows which parsers
// to run without re-deriving it from the code.
type FrameKind int

const (
	FrameKeys FrameKind = iota
	FrameKeysAccel
	FrameKeysAccelExt
	FrameKeysExt
)

// handlerTable lists handlers in the priority order the original
// installs them: larger payload variant first, smaller fallback after.
var handlerTable = []Handler{
	{Code: DrmK, Size: 2, Kind: FrameKeys},
	{Code: DrmKA, Size: 5, Kind: FrameKeysAccel},
	{Code: DrmKA, Size: 2, Kind: FrameKeys},
	{Code: DrmKAE, Size: 21, Kind: FrameKeysAccelExt},
	{Code: DrmKAE, Size: 2, Kind: FrameKeys},
	{Code: DrmKEE, Size: 21, Kind: FrameKeysExt},
	{Code: DrmKEE, Size: 2, Kind: FrameKeys},
}

// Select resolves (code, frameSize) to the FrameKind the registered
// handler table would have dispatched to, per §4.5's largest-size-first
// rule. ok is false if no handler matches (unrecognized DRM report).
func Select(code, frameSize int) (FrameKind, bool) {
	for _, h := range handlerTable {
		if h.Code == code && h.Size < frameSize {
			return h.Kind, true
		}
	}
	return 0, false
}
