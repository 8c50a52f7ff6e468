// Package mapping models a MappingProfile: the per-controller-kind table
// of descriptor position -> target event, grounded on the original
// mapping.py's WimoteDescription/NunchukDescription/ClassicControllerDescription/
// ProControllerDescription classes and Mapping/ButtonMapping/AxisMapping.
package mapping

// Kind identifies one of the four logical controller profiles a
// MappingProfile can carry a Mapping for.
type Kind int

const (
	KindWiimote Kind = iota
	KindWiimoteNunchuk
	KindClassic
	KindPro
)

// AbsParams is the absolute-axis range a descriptor position reports,
// copied verbatim into the SyntheticDevice's absmin/max/fuzz/flat arrays.
type AbsParams struct {
	Min, Max, Fuzz, Flat int32
}

// Descriptor describes one controller kind's set of positions: how many
// there are, which ones are "natural axes" (analog sources) versus
// buttons, and the AbsParams for the natural-axis ones.
type Descriptor struct {
	Size      int
	IsAxis    []bool
	AbsParams map[int]AbsParams
}

// Wiimote descriptor positions.
const (
	WiimoteBtnA = iota
	WiimoteBtnB
	WiimoteBtn1
	WiimoteBtn2
	WiimoteBtnMinus
	WiimoteBtnHome
	WiimoteBtnPlus
	WiimoteBtnLeft
	WiimoteBtnRight
	WiimoteBtnUp
	WiimoteBtnDown
	WiimoteBtnShake
	WiimoteAccelX
	WiimoteAccelY
	WiimoteAccelZ
	wiimoteSize
)

var WiimoteDescriptor = newWiimoteDescriptor()

func newWiimoteDescriptor() Descriptor {
	axis := make([]bool, wiimoteSize)
	axis[WiimoteAccelX], axis[WiimoteAccelY], axis[WiimoteAccelZ] = true, true, true
	accel := AbsParams{Min: -500, Max: 500, Fuzz: 2, Flat: 4}
	return Descriptor{
		Size:   wiimoteSize,
		IsAxis: axis,
		AbsParams: map[int]AbsParams{
			WiimoteAccelX: accel, WiimoteAccelY: accel, WiimoteAccelZ: accel,
		},
	}
}

// Nunchuk descriptor positions extend the Wiimote's.
const (
	NunchukBtnC = wiimoteSize + iota
	NunchukBtnZ
	NunchukAxisX
	NunchukAxisY
	NunchukBtnShake
	NunchukAccelX
	NunchukAccelY
	NunchukAccelZ
	nunchukSize
)

var NunchukDescriptor = newNunchukDescriptor()

func newNunchukDescriptor() Descriptor {
	axis := make([]bool, nunchukSize)
	copy(axis, WiimoteDescriptor.IsAxis)
	axis[NunchukAxisX], axis[NunchukAxisY] = true, true
	axis[NunchukAccelX], axis[NunchukAccelY], axis[NunchukAccelZ] = true, true, true
	stick := AbsParams{Min: -120, Max: 120, Fuzz: 2, Flat: 4}
	accel := AbsParams{Min: -500, Max: 500, Fuzz: 2, Flat: 4}
	params := map[int]AbsParams{
		NunchukAxisX: stick, NunchukAxisY: stick,
		NunchukAccelX: accel, NunchukAccelY: accel, NunchukAccelZ: accel,
	}
	for k, v := range WiimoteDescriptor.AbsParams {
		params[k] = v
	}
	return Descriptor{Size: nunchukSize, IsAxis: axis, AbsParams: params}
}

// Classic Controller (and Classic Controller Pro, which shares the same
// descriptor layout) positions.
const (
	ClassicBtnA = iota
	ClassicBtnB
	ClassicBtnX
	ClassicBtnY
	ClassicBtnMinus
	ClassicBtnHome
	ClassicBtnPlus
	ClassicBtnLeft
	ClassicBtnRight
	ClassicBtnUp
	ClassicBtnDown
	ClassicBtnTL
	ClassicBtnTR
	ClassicBtnZL
	ClassicBtnZR
	ClassicAxisX
	ClassicAxisY
	ClassicAxisRX
	ClassicAxisRY
	ClassicAxisLT
	ClassicAxisRT
	classicSize
)

var ClassicDescriptor = newClassicDescriptor()

func newClassicDescriptor() Descriptor {
	axis := make([]bool, classicSize)
	for _, p := range []int{ClassicAxisX, ClassicAxisY, ClassicAxisRX, ClassicAxisRY, ClassicAxisLT, ClassicAxisRT} {
		axis[p] = true
	}
	stick := AbsParams{Min: -30, Max: 30, Fuzz: 1, Flat: 1}
	params := map[int]AbsParams{}
	for _, p := range []int{ClassicAxisX, ClassicAxisY, ClassicAxisRX, ClassicAxisRY, ClassicAxisLT, ClassicAxisRT} {
		params[p] = stick
	}
	return Descriptor{Size: classicSize, IsAxis: axis, AbsParams: params}
}

// Wii U Pro Controller positions.
const (
	ProBtnA = iota
	ProBtnB
	ProBtnX
	ProBtnY
	ProBtnMinus
	ProBtnHome
	ProBtnPlus
	ProBtnLeft
	ProBtnRight
	ProBtnUp
	ProBtnDown
	ProBtnTL
	ProBtnTR
	ProBtnZL
	ProBtnZR
	ProAxisX
	ProAxisY
	ProAxisRX
	ProAxisRY
	ProBtnThumbL
	ProBtnThumbR
	proSize
)

var ProDescriptor = newProDescriptor()

func newProDescriptor() Descriptor {
	axis := make([]bool, proSize)
	for _, p := range []int{ProAxisX, ProAxisY, ProAxisRX, ProAxisRY} {
		axis[p] = true
	}
	stick := AbsParams{Min: -0x400, Max: 0x400, Fuzz: 4, Flat: 100}
	params := map[int]AbsParams{}
	for _, p := range []int{ProAxisX, ProAxisY, ProAxisRX, ProAxisRY} {
		params[p] = stick
	}
	return Descriptor{Size: proSize, IsAxis: axis, AbsParams: params}
}

// Entry is the per-position mapping cell: either a ButtonMapping or an
// AxisMapping, or nil for an unmapped position.
type Entry interface {
	Type() EventType
	Codes() []uint16
}

// ButtonMapping targets a single KEY/BTN code. Sensitivity, when > 0,
// overrides the default axis->button emission threshold (30) or the
// default shake-pseudo-button threshold (260).
type ButtonMapping struct {
	Code        uint16
	Sensitivity int
}

func (b *ButtonMapping) Type() EventType { return EventKey }
func (b *ButtonMapping) Codes() []uint16 { return []uint16{b.Code} }

// AxisMapping targets one or two ABS codes (two when one physical axis
// fans out into two independent codes).
type AxisMapping struct {
	Codes1      []uint16
	SourceScale int
	DeadZonePct int
	Inverted    bool
}

func (a *AxisMapping) Type() EventType { return EventAbs }
func (a *AxisMapping) Codes() []uint16 { return a.Codes1 }

// NewAxisMapping clamps DeadZonePct to [0,100] per spec.md §6.4.
func NewAxisMapping(codes []uint16, sourceScale int, deadZonePct int, inverted bool) *AxisMapping {
	if deadZonePct < 0 {
		deadZonePct = 0
	}
	if deadZonePct > 100 {
		deadZonePct = 100
	}
	return &AxisMapping{Codes1: codes, SourceScale: sourceScale, DeadZonePct: deadZonePct, Inverted: inverted}
}

// Mapping is one controller kind's descriptor-indexed entry table.
type Mapping struct {
	Kind       Kind
	Descriptor Descriptor
	// AbsParams mirrors Descriptor.AbsParams, exposed directly on Mapping
	// since callers (the translator, synthetic-device setup) index it far
	// more often than the rest of the descriptor.
	AbsParams map[int]AbsParams
	entries   []Entry
	IsGamepad bool
}

func NewMapping(kind Kind) *Mapping {
	var d Descriptor
	switch kind {
	case KindWiimote:
		d = WiimoteDescriptor
	case KindWiimoteNunchuk:
		d = NunchukDescriptor
	case KindClassic:
		d = ClassicDescriptor
	case KindPro:
		d = ProDescriptor
	}
	return &Mapping{Kind: kind, Descriptor: d, AbsParams: d.AbsParams, entries: make([]Entry, d.Size)}
}

// Set assigns the entry at position, recomputing IsGamepad. Out-of-range
// positions are ignored, matching the original's bounds-checked setMap.
func (m *Mapping) Set(position int, e Entry) {
	if position < 0 || position >= len(m.entries) {
		return
	}
	m.entries[position] = e
	m.IsGamepad = false
	for _, entry := range m.entries {
		if entry == nil {
			continue
		}
		for _, c := range entry.Codes() {
			if IsGamepadCode(entry.Type(), c) {
				m.IsGamepad = true
				return
			}
		}
	}
}

func (m *Mapping) Get(position int) Entry {
	if position < 0 || position >= len(m.entries) {
		return nil
	}
	return m.entries[position]
}

func (m *Mapping) Len() int { return len(m.entries) }

// Profile is a name plus up to four Mappings, one per logical controller
// kind, matching the original's MappingProfile.
type Profile struct {
	Name              string
	Wiimote           *Mapping
	WiimoteNunchuk    *Mapping
	Classic           *Mapping
	Pro               *Mapping
}

// For selects the Mapping a session should use for its current
// profile kind, or nil if the profile defines none for that kind
// (the session logs a warning and stays uninitialized, per spec.md §7).
func (p *Profile) For(kind Kind) *Mapping {
	switch kind {
	case KindWiimote:
		return p.Wiimote
	case KindWiimoteNunchuk:
		return p.WiimoteNunchuk
	case KindClassic:
		return p.Classic
	case KindPro:
		return p.Pro
	}
	return nil
}
