package linux

import "sync"

// LedAllocator hands out one of the four physical player-LED slots to
// each connecting session, grounded on the slot bookkeeping in
// ctrlmanager.py's WiimoteList. A fifth-and-beyond controller reuses
// slot 1 rather than failing to connect, preserving the original's
// overflow behavior.
type LedAllocator struct {
	mu    sync.Mutex
	slots [4]bool
}

// Acquire returns a 1-based LED slot number, the first free one, or 1
// (overflow policy, preserved from ctrlmanager.py's acquireLedSlot) if
// all four are already taken.
func (a *LedAllocator) Acquire() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, taken := range a.slots {
		if !taken {
			a.slots[i] = true
			return i + 1
		}
	}
	return 1
}

// Release frees a previously acquired slot. Out-of-range or
// already-free slots are ignored.
func (a *LedAllocator) Release(slot int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if slot < 1 || slot > len(a.slots) {
		return
	}
	a.slots[slot-1] = false
}

// ledFlagForSlot maps a 1-based slot to the SessionFlags LED bit the
// protocol layer understands.
func ledFlagForSlot(slot int) Flags {
	switch slot {
	case 1:
		return FlagLED1
	case 2:
		return FlagLED2
	case 3:
		return FlagLED3
	default:
		return FlagLED4
	}
}
