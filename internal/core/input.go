package core

import (
	"strings"
	"time"
)

// Key is one of the keys scripts may query.
type Key int

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeySpace
)

// keyNames maps script-facing names to keys.
var keyNames = map[string]Key{
	"left":  KeyLeft,
	"right": KeyRight,
	"up":    KeyUp,
	"down":  KeyDown,
	"space": KeySpace,
}

// ParseKey looks up a key by name, ignoring case.
// Unknown names return KeyNone and false.
func ParseKey(name string) (Key, bool) {
	k, ok := keyNames[strings.ToLower(name)]
	return k, ok
}

// String returns the script-facing name of the key.
func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeySpace:
		return "space"
	default:
		return "none"
	}
}

// Input answers live key state queries.
type Input interface {
	IsKeyDown(k Key) bool
}

// KeyState tracks held keys from press events only.
// Terminals report key repeats but never releases, so a key counts as
// down for a hold window after its most recent press.
type KeyState struct {
	clock Clock
	hold  float64
	last  map[Key]float64
}

// NewKeyState creates a key state that keeps keys down for hold after
// each press.
func NewKeyState(clock Clock, hold time.Duration) *KeyState {
	return &KeyState{
		clock: clock,
		hold:  hold.Seconds(),
		last:  make(map[Key]float64),
	}
}

// Press records a press (or auto-repeat) of k.
func (s *KeyState) Press(k Key) {
	if k == KeyNone {
		return
	}
	s.last[k] = s.clock.Seconds()
}

// Release forgets k immediately.
func (s *KeyState) Release(k Key) {
	delete(s.last, k)
}

// ReleaseAll forgets every key, as when the terminal loses focus.
func (s *KeyState) ReleaseAll() {
	for k := range s.last {
		s.Release(k)
	}
}

// IsKeyDown implements Input.
func (s *KeyState) IsKeyDown(k Key) bool {
	t, ok := s.last[k]
	if !ok {
		return false
	}
	return s.clock.Seconds()-t <= s.hold
}
