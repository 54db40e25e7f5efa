package scene

import (
	"errors"
	"fmt"
	"math"
)

var ErrClipNotFound = errors.New("animation clip not found")

// Clip is a named animation of fixed duration.
type Clip struct {
	Name     string
	Duration float64
}

// Mixer plays one clip at a time, loop or once, with a linear cross-fade
// from the previous clip.
type Mixer struct {
	clips map[string]Clip

	current  string
	loop     bool
	time     float64
	previous string
	fade     float64
	fadeLeft float64
}

func NewMixer(clips map[string]Clip) *Mixer {
	m := &Mixer{clips: make(map[string]Clip, len(clips))}
	for k, v := range clips {
		m.clips[k] = v
	}
	return m
}

// Play switches to clip name. Playing the current clip again is a no-op.
func (m *Mixer) Play(name string, loop bool, fade float64) error {
	if _, ok := m.clips[name]; !ok {
		return fmt.Errorf("%w: %s", ErrClipNotFound, name)
	}
	if name == m.current {
		m.loop = loop
		return nil
	}
	m.previous = m.current
	m.current = name
	m.loop = loop
	m.time = 0
	m.fade = math.Max(fade, 0)
	m.fadeLeft = m.fade
	return nil
}

// Update advances the current clip.
func (m *Mixer) Update(dt float64) {
	if m.current == "" {
		return
	}
	clip := m.clips[m.current]
	m.time += dt
	if m.loop && clip.Duration > 0 {
		m.time = math.Mod(m.time, clip.Duration)
	} else if m.time > clip.Duration {
		m.time = clip.Duration
	}
	if m.fadeLeft > 0 {
		m.fadeLeft = math.Max(m.fadeLeft-dt, 0)
	}
}

func (m *Mixer) Current() string { return m.current }

// Time is the playhead of the current clip.
func (m *Mixer) Time() float64 { return m.time }

// Weight is the blend weight of the current clip; the previous clip has 1-Weight.
func (m *Mixer) Weight() float64 {
	if m.fade == 0 || m.previous == "" {
		return 1
	}
	return 1 - m.fadeLeft/m.fade
}

// Finished reports whether a non-looping clip reached its end.
func (m *Mixer) Finished() bool {
	if m.current == "" || m.loop {
		return false
	}
	return m.time >= m.clips[m.current].Duration
}
