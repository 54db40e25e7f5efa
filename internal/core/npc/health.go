package npc

import (
	"math"

	"github.com/zeusync/scenekit/internal/core/events"
	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/models"
)

// Health tracks hit points and takes damage from hit events.
type Health struct {
	models.Base
	max     float64
	current float64
}

func NewHealth(maxHealth float64) *Health {
	return &Health{max: maxHealth, current: maxHealth}
}

func (h *Health) Kind() models.Kind { return models.KindHealth }

func (h *Health) Initialize(models.Registry) error {
	return h.Entity().Subscribe(events.Hit, func(e bus.Event) error {
		if hit, ok := e.Data().(events.HitData); ok {
			h.Damage(hit.Damage)
		}
		return nil
	})
}

func (h *Health) Damage(amount float64) {
	if amount <= 0 {
		return
	}
	h.current = math.Max(0, h.current-amount)
}

func (h *Health) Current() float64 { return h.current }
func (h *Health) Max() float64     { return h.max }
func (h *Health) Alive() bool      { return h.current > 0 }
