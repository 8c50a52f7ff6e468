package mapping

import "testing"

func TestNewAxisMappingClampsDeadZone(t *testing.T) {
	a := NewAxisMapping([]uint16{AbsX}, 1000, 150, false)
	if a.DeadZonePct != 100 {
		t.Errorf("DeadZonePct = %d, want 100", a.DeadZonePct)
	}
	b := NewAxisMapping([]uint16{AbsX}, 1000, -10, false)
	if b.DeadZonePct != 0 {
		t.Errorf("DeadZonePct = %d, want 0", b.DeadZonePct)
	}
}

func TestMappingSetOutOfRangeIgnored(t *testing.T) {
	m := NewMapping(KindWiimote)
	m.Set(-1, &ButtonMapping{Code: BtnA})
	m.Set(m.Len(), &ButtonMapping{Code: BtnA})
	for i := 0; i < m.Len(); i++ {
		if m.Get(i) != nil {
			t.Fatalf("position %d unexpectedly set", i)
		}
	}
}

func TestMappingSetRecomputesIsGamepad(t *testing.T) {
	m := NewMapping(KindWiimote)
	if m.IsGamepad {
		t.Fatal("fresh mapping should not be IsGamepad")
	}
	m.Set(WiimoteBtnA, &ButtonMapping{Code: BtnDpadUp})
	if !m.IsGamepad {
		t.Error("setting a gamepad-range code should flip IsGamepad")
	}
}

func TestMappingGetOutOfRange(t *testing.T) {
	m := NewMapping(KindClassic)
	if m.Get(-1) != nil || m.Get(m.Len()) != nil {
		t.Error("Get on out-of-range position should return nil")
	}
}

func TestProfileForSelectsByKind(t *testing.T) {
	wiimote := NewMapping(KindWiimote)
	pro := NewMapping(KindPro)
	p := &Profile{Wiimote: wiimote, Pro: pro}

	if p.For(KindWiimote) != wiimote {
		t.Error("For(KindWiimote) did not return the Wiimote mapping")
	}
	if p.For(KindPro) != pro {
		t.Error("For(KindPro) did not return the Pro mapping")
	}
	if p.For(KindClassic) != nil {
		t.Error("For(KindClassic) should be nil when unset")
	}
}

func TestDescriptorAbsParams(t *testing.T) {
	if WiimoteDescriptor.AbsParams[WiimoteAccelX].Max != 500 {
		t.Errorf("Wiimote accel max = %d, want 500", WiimoteDescriptor.AbsParams[WiimoteAccelX].Max)
	}
	if ProDescriptor.AbsParams[ProAxisX].Max != 0x400 {
		t.Errorf("Pro stick max = %#x, want 0x400", ProDescriptor.AbsParams[ProAxisX].Max)
	}
	if !ClassicDescriptor.IsAxis[ClassicAxisLT] {
		t.Error("ClassicAxisLT should be a natural axis")
	}
	if ClassicDescriptor.IsAxis[ClassicBtnA] {
		t.Error("ClassicBtnA should not be a natural axis")
	}
}

func TestButtonAndAxisMappingTypes(t *testing.T) {
	b := &ButtonMapping{Code: BtnA}
	if b.Type() != EventKey {
		t.Errorf("ButtonMapping.Type() = %v, want EventKey", b.Type())
	}
	if got := b.Codes(); len(got) != 1 || got[0] != BtnA {
		t.Errorf("ButtonMapping.Codes() = %v", got)
	}

	a := &AxisMapping{Codes1: []uint16{AbsX, AbsRX}}
	if a.Type() != EventAbs {
		t.Errorf("AxisMapping.Type() = %v, want EventAbs", a.Type())
	}
	if got := a.Codes(); len(got) != 2 {
		t.Errorf("AxisMapping.Codes() = %v", got)
	}
}
