// Package ui keeps the heads-up display model in sync with gameplay events.
package ui

import (
	"fmt"
	"sync"

	"github.com/zeusync/scenekit/internal/core/events"
	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/observability/log"
)

const Name = "UIManager"

// HUD is a copy of what the overlay shows.
type HUD struct {
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"max_health"`
	Magazine  int     `json:"magazine"`
	Reserve   int     `json:"reserve"`
	Reloading bool    `json:"reloading"`
	Kills     int     `json:"kills"`
	Dead      bool    `json:"dead"`
}

func (h HUD) String() string {
	s := fmt.Sprintf("health %.0f/%.0f ammo %d/%d kills %d", h.Health, h.MaxHealth, h.Magazine, h.Reserve, h.Kills)
	if h.Reloading {
		s += " reloading"
	}
	if h.Dead {
		s += " dead"
	}
	return s
}

// UIManager listens to the player topic and the session-wide events. The
// HUD is read from other goroutines.
type UIManager struct {
	models.Base
	player string
	logger log.Log

	mu  sync.RWMutex
	hud HUD
}

func NewUIManager(player string) *UIManager {
	return &UIManager{player: player}
}

func (u *UIManager) Kind() models.Kind { return models.KindUIManager }

func (u *UIManager) Initialize(reg models.Registry) error {
	e := u.Entity()
	u.logger = reg.Logger().With(log.String("component", "ui"))

	subs := []struct {
		topic, event string
		handler      bus.EventHandler
	}{
		{u.player, events.PlayerHealth, u.onHealth},
		{u.player, events.AmmoChanged, u.onAmmo},
		{"", events.NPCDead, u.onKill},
		{"", events.PlayerDead, u.onPlayerDead},
	}
	for _, s := range subs {
		if err := e.SubscribeTo(s.topic, s.event, s.handler); err != nil {
			return err
		}
	}
	return nil
}

func (u *UIManager) onHealth(ev bus.Event) error {
	data, ok := ev.Data().(events.HealthData)
	if !ok {
		return nil
	}
	u.mu.Lock()
	u.hud.Health, u.hud.MaxHealth = data.Current, data.Max
	u.mu.Unlock()
	return nil
}

func (u *UIManager) onAmmo(ev bus.Event) error {
	data, ok := ev.Data().(events.AmmoData)
	if !ok {
		return nil
	}
	u.mu.Lock()
	u.hud.Magazine, u.hud.Reserve, u.hud.Reloading = data.Magazine, data.Reserve, data.Reloading
	u.mu.Unlock()
	return nil
}

func (u *UIManager) onKill(ev bus.Event) error {
	u.mu.Lock()
	u.hud.Kills++
	kills := u.hud.Kills
	u.mu.Unlock()
	u.logger.Info("npc killed", log.String("npc", ev.Source()), log.Int("kills", kills))
	return nil
}

func (u *UIManager) onPlayerDead(bus.Event) error {
	u.mu.Lock()
	u.hud.Dead = true
	u.mu.Unlock()
	u.logger.Info("player died")
	return nil
}

// HUD returns a copy of the current display state.
func (u *UIManager) HUD() HUD {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.hud
}

// New builds the persistent UI entity bound to the named player.
func New(player string) *models.Entity {
	return models.NewEntity(Name).AddComponent(NewUIManager(player))
}
