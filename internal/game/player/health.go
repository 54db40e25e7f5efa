package player

import (
	"math"

	"github.com/zeusync/scenekit/internal/core/events"
	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/models"
)

// PlayerHealth takes damage from hit events on the player topic. It
// broadcasts every change and announces death once on the default topic.
type PlayerHealth struct {
	models.Base
	max     float64
	current float64
	state   *PlayerState
}

func NewPlayerHealth(maxHealth float64) *PlayerHealth {
	return &PlayerHealth{max: maxHealth, current: maxHealth}
}

func (h *PlayerHealth) Kind() models.Kind { return models.KindPlayerHealth }

func (h *PlayerHealth) Initialize(models.Registry) error {
	e := h.Entity()
	h.state, _ = models.ComponentAs[*PlayerState](e, models.KindPlayerState)
	if err := e.Subscribe(events.Hit, func(ev bus.Event) error {
		if hit, ok := ev.Data().(events.HitData); ok {
			return h.Damage(hit.Damage)
		}
		return nil
	}); err != nil {
		return err
	}
	return h.broadcast()
}

// Damage lowers health. Reaching zero marks the player dead.
func (h *PlayerHealth) Damage(amount float64) error {
	if amount <= 0 || !h.Alive() {
		return nil
	}
	h.current = math.Max(0, h.current-amount)
	if err := h.broadcast(); err != nil {
		return err
	}
	if h.Alive() {
		return nil
	}
	if h.state != nil {
		h.state.Kill()
	}
	e := h.Entity()
	return e.Registry().Bus().Publish(bus.NewEvent(events.PlayerDead, e.Name(), nil))
}

func (h *PlayerHealth) broadcast() error {
	return h.Entity().Broadcast(events.PlayerHealth, events.HealthData{Current: h.current, Max: h.max})
}

func (h *PlayerHealth) Current() float64 { return h.current }
func (h *PlayerHealth) Max() float64     { return h.max }
func (h *PlayerHealth) Alive() bool      { return h.current > 0 }
