package game

import (
	"fmt"

	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/navigation"
	"github.com/zeusync/scenekit/internal/core/npc"
	"github.com/zeusync/scenekit/internal/core/system"
	"github.com/zeusync/scenekit/internal/game/builtin"
	"github.com/zeusync/scenekit/internal/game/level"
	"github.com/zeusync/scenekit/internal/game/pickup"
	"github.com/zeusync/scenekit/internal/game/player"
)

// levelEntities resolves every asset of the named level and builds its
// entities, all tagged with the level name. Nothing is registered.
func (a *App) levelEntities(s *Session, name string) ([]*models.Entity, error) {
	lc, err := a.config.Level(name)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", name, ErrLevelNotFound)
	}
	model, err := s.Assets.Model(lc.Model)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w: %w", name, ErrLevelNotFound, err)
	}
	var nav *navigation.Graph
	if lc.Navmesh != "" {
		if nav, err = s.Assets.Navmesh(lc.Navmesh); err != nil {
			return nil, fmt.Errorf("level %s navmesh: %w", name, err)
		}
	}

	out := []*models.Entity{level.New(name, level.Deps{
		World:      s.World,
		Graph:      s.Graph,
		Model:      model,
		Navmesh:    nav,
		DecalLimit: lc.Decals,
	})}

	if len(lc.NPCs) > 0 {
		npcConfig := a.config.NPC
		npcConfig.Target = player.Name
		npcConfig.Navmesh = level.Name
		if len(lc.Patrol) > 0 {
			npcConfig.PatrolRoute = lc.Patrol
		}
		clips, err := s.Assets.Clips(builtin.Mutant)
		if err != nil {
			return nil, err
		}
		for i, spawn := range lc.NPCs {
			mutant, err := s.Assets.Model(builtin.Mutant)
			if err != nil {
				return nil, err
			}
			e, err := npc.New(lc.NPCName(i), spawn.Position, npcConfig, npc.Deps{
				World: s.World,
				Graph: s.Graph,
				Model: mutant,
				Clips: clips,
			})
			if err != nil {
				return nil, err
			}
			out = append(out, e.SetLevel(name))
		}
	}

	shape, _ := s.Assets.Shape(builtin.AmmoBoxShape)
	for i, spawn := range lc.Ammo {
		box, _ := s.Assets.Model(builtin.AmmoBox)
		ammo := pickup.NewAmmoBox(s.World, s.Graph, box, shape, spawn.Rounds, player.Name)
		out = append(out, pickup.New(lc.AmmoName(i), name, spawn.Position, ammo))
	}
	return out, nil
}

// checkNames rejects spawns whose names repeat or are held by an entity
// that stays when the current level is unloaded.
func checkNames(s *Session, spawns []*models.Entity) error {
	seen := make(map[string]bool, len(spawns))
	for _, e := range spawns {
		if seen[e.Name()] {
			return fmt.Errorf("entity %q: %w", e.Name(), system.ErrDuplicateName)
		}
		seen[e.Name()] = true
		held, ok := s.Manager.Get(e.Name())
		if ok && (s.Level == "" || held.Level() != s.Level) {
			return fmt.Errorf("entity %q: %w", e.Name(), system.ErrDuplicateName)
		}
	}
	return nil
}

// install stages and commits the spawns as one batch. A failed Add drops the
// spawns staged before it; a failed commit is rolled back by the manager.
func install(s *Session, spawns []*models.Entity) error {
	for i, e := range spawns {
		if err := s.Manager.Add(e); err != nil {
			for _, staged := range spawns[:i] {
				_ = s.Manager.Remove(staged)
			}
			return err
		}
	}
	return s.Manager.EndSetup()
}
