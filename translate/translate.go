// Package translate implements the Translator: it turns a decoded
// controller value plus a mapping.Entry into zero or more synthetic
// input events, grounded on wiimote_uinput_glue.py's send_event,
// compute_deadzone and compute_single_deadzone.
package translate

import "github.com/berfenger/wiipad/mapping"

// Event is one synthetic input event the caller hands to a
// SyntheticDevice. A Sync event carries no meaningful Code/Value.
type Event struct {
	Type  mapping.EventType
	Code  uint16
	Value int32
	Sync  bool
}

func syn() Event { return Event{Sync: true} }

const (
	defaultButtonFromAxisSensitivity = 30
	defaultShakeSensitivity          = 260
)

// Emit implements the four-rule dispatch of §4.7. v is the raw decoded
// source value (button: 0/1 truthiness via v!=0; axis: signed magnitude).
// naturalAxis says whether the descriptor position is an analog source;
// abs is that position's range, used only when m is an AxisMapping
// targeting a natural axis; button->axis emulation emits -1/+1 and
// ignores it.
func Emit(m mapping.Entry, v int, naturalAxis bool, abs mapping.AbsParams) []Event {
	if m == nil {
		return nil
	}
	switch {
	case m.Type() == mapping.EventAbs && !naturalAxis:
		// Rule 1: button source driving an axis target (axis emulation).
		val := int32(-1)
		if v != 0 {
			val = 1
		}
		return []Event{{Type: mapping.EventAbs, Code: m.Codes()[0], Value: val}}

	case m.Type() == mapping.EventKey && naturalAxis:
		// Rule 2: axis source driving a button target.
		sens := defaultButtonFromAxisSensitivity
		if bm, ok := m.(*mapping.ButtonMapping); ok && bm.Sensitivity > 0 {
			sens = bm.Sensitivity
		}
		val := int32(0)
		if v > sens {
			val = 1
		}
		return []Event{{Type: mapping.EventKey, Code: m.Codes()[0], Value: val}}

	case naturalAxis:
		// Rule 3: axis source driving an axis target.
		am, ok := m.(*mapping.AxisMapping)
		if !ok {
			return nil
		}
		if am.Inverted {
			v = -v
		}
		if am.SourceScale > 0 {
			v = int(float64(v) * float64(abs.Max) / float64(am.SourceScale))
		}
		codes := am.Codes1
		if len(codes) >= 2 {
			half := abs.Max / 2
			switch {
			case v > 0:
				return []Event{
					{Type: mapping.EventAbs, Code: codes[1], Value: int32(v) - half},
					{Type: mapping.EventAbs, Code: codes[0], Value: abs.Min},
				}
			case v < 0:
				return []Event{
					{Type: mapping.EventAbs, Code: codes[0], Value: int32(-v) - half},
					{Type: mapping.EventAbs, Code: codes[1], Value: abs.Min},
				}
			default:
				return []Event{
					{Type: mapping.EventAbs, Code: codes[0], Value: abs.Min},
					{Type: mapping.EventAbs, Code: codes[1], Value: abs.Min},
				}
			}
		}
		return []Event{{Type: mapping.EventAbs, Code: codes[0], Value: int32(v)}}

	default:
		// Rule 4: button source driving a button target.
		val := int32(0)
		if v != 0 {
			val = 1
		}
		return []Event{{Type: mapping.EventKey, Code: m.Codes()[0], Value: val}}
	}
}

// Sync returns the single SYN_REPORT event that must follow any batch of
// key/accel/ext emissions.
func Sync() Event { return syn() }

// SingleDeadZone implements the per-axis dead-zone rule: zero v when its
// magnitude is under dz% of abs.Max. Applied to accelerometer axes and
// shake-pseudo-button source values before emission.
func SingleDeadZone(m mapping.Entry, abs mapping.AbsParams, v int) int {
	am, ok := m.(*mapping.AxisMapping)
	if !ok || am.DeadZonePct <= 0 {
		return v
	}
	limit := float64(am.DeadZonePct) / 100.0 * float64(abs.Max)
	if float64(v) < limit && float64(v) > -limit {
		return 0
	}
	return v
}

// CircularDeadZone implements the stick-pair dead-zone rule for X+Y (or
// RX+RY) pairs. Returns (0,0) when the point falls inside the
// ellipse both axes' dead zones describe; otherwise returns vx,vy
// unchanged.
func CircularDeadZone(mx, my mapping.Entry, absX, absY mapping.AbsParams, vx, vy int) (int, int) {
	amx, okx := mx.(*mapping.AxisMapping)
	amy, oky := my.(*mapping.AxisMapping)
	if !okx || !oky || amx.DeadZonePct <= 0 || amy.DeadZonePct <= 0 {
		return vx, vy
	}
	limX := float64(amx.DeadZonePct) / 100.0 * float64(absX.Max)
	limY := float64(amy.DeadZonePct) / 100.0 * float64(absY.Max)
	ellipse := (float64(vx)*float64(vx))/(limX*limX) + (float64(vy)*float64(vy))/(limY*limY)
	if ellipse < 1 {
		return 0, 0
	}
	return vx, vy
}

// ShakeValue derives the shake pseudo-button's value from a Z-accel
// sample: 1 if |z| exceeds sensitivity (0 means use the default 260),
// else 0.
func ShakeValue(z int, sensitivity int) int {
	sens := sensitivity
	if sens <= 0 {
		sens = defaultShakeSensitivity
	}
	if z < -sens || z > sens {
		return 1
	}
	return 0
}
