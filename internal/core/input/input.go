// Package input turns device events into a per-frame snapshot.
//
// The device collaborator (browser, terminal, console socket) pushes events
// into a State from any goroutine. The frame loop takes exactly one Snapshot
// per frame; look and wheel deltas are consumed by that read.
package input

import "sync"

// KeyCode names a physical key ("KeyW", "Space", "ShiftLeft").
type KeyCode string

const (
	KeyW     KeyCode = "KeyW"
	KeyA     KeyCode = "KeyA"
	KeyS     KeyCode = "KeyS"
	KeyD     KeyCode = "KeyD"
	KeyR     KeyCode = "KeyR"
	KeySpace KeyCode = "Space"
	KeyShift KeyCode = "ShiftLeft"
)

// Button is a pointer button index.
type Button uint8

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// Snapshot is the immutable input view handed to frame hooks.
type Snapshot struct {
	keys    map[KeyCode]bool
	buttons map[Button]bool

	// LookX and LookY are the pointer movement since the previous snapshot.
	LookX, LookY float64
	// Wheel is the accumulated wheel delta since the previous snapshot.
	Wheel float64
}

// KeyDown reports whether the key was held when the snapshot was taken.
func (s Snapshot) KeyDown(code KeyCode) bool {
	return s.keys[code]
}

// ButtonDown reports whether the pointer button was held.
func (s Snapshot) ButtonDown(b Button) bool {
	return s.buttons[b]
}

// Axis returns +1 when pos is held, -1 when neg is held, 0 for neither or both.
func (s Snapshot) Axis(pos, neg KeyCode) float64 {
	v := 0.0
	if s.KeyDown(pos) {
		v++
	}
	if s.KeyDown(neg) {
		v--
	}
	return v
}

// NewSnapshot builds a snapshot directly. Used by hosts that poll devices
// themselves and by tests.
func NewSnapshot(keys []KeyCode, buttons []Button, lookX, lookY, wheel float64) Snapshot {
	s := Snapshot{
		keys:    make(map[KeyCode]bool, len(keys)),
		buttons: make(map[Button]bool, len(buttons)),
		LookX:   lookX,
		LookY:   lookY,
		Wheel:   wheel,
	}
	for _, k := range keys {
		s.keys[k] = true
	}
	for _, b := range buttons {
		s.buttons[b] = true
	}
	return s
}

// Source produces one snapshot per frame.
type Source interface {
	Snapshot() Snapshot
}

// State accumulates device events between frames.
type State struct {
	mu      sync.Mutex
	keys    map[KeyCode]bool
	buttons map[Button]bool
	lookX   float64
	lookY   float64
	wheel   float64
}

func NewState() *State {
	return &State{
		keys:    make(map[KeyCode]bool),
		buttons: make(map[Button]bool),
	}
}

func (s *State) KeyDown(code KeyCode) {
	s.mu.Lock()
	s.keys[code] = true
	s.mu.Unlock()
}

func (s *State) KeyUp(code KeyCode) {
	s.mu.Lock()
	delete(s.keys, code)
	s.mu.Unlock()
}

func (s *State) ButtonDown(b Button) {
	s.mu.Lock()
	s.buttons[b] = true
	s.mu.Unlock()
}

func (s *State) ButtonUp(b Button) {
	s.mu.Lock()
	delete(s.buttons, b)
	s.mu.Unlock()
}

// Move adds pointer movement.
func (s *State) Move(dx, dy float64) {
	s.mu.Lock()
	s.lookX += dx
	s.lookY += dy
	s.mu.Unlock()
}

// Wheel records the latest wheel delta. Like the browser wheel event, a new
// delta replaces one that has not been read yet.
func (s *State) Wheel(delta float64) {
	s.mu.Lock()
	s.wheel = delta
	s.mu.Unlock()
}

// Clear releases every held key and button and drops pending deltas. Called
// when control capture is lost.
func (s *State) Clear() {
	s.mu.Lock()
	clear(s.keys)
	clear(s.buttons)
	s.lookX, s.lookY, s.wheel = 0, 0, 0
	s.mu.Unlock()
}

// Snapshot copies held keys and consumes the look and wheel deltas.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		keys:    make(map[KeyCode]bool, len(s.keys)),
		buttons: make(map[Button]bool, len(s.buttons)),
		LookX:   s.lookX,
		LookY:   s.lookY,
		Wheel:   s.wheel,
	}
	for k := range s.keys {
		snap.keys[k] = true
	}
	for b := range s.buttons {
		snap.buttons[b] = true
	}
	s.lookX, s.lookY, s.wheel = 0, 0, 0
	return snap
}
