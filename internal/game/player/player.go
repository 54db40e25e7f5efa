// Package player binds the player entity to the physics world and the
// camera.
package player

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/scene"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

// Name is the player entity name other entities resolve at setup.
const Name = "Player"

type Deps struct {
	World  physics.World
	Graph  *scene.Graph
	Camera *scene.Camera
	// Weapon is the weapon model. Nil builds an unarmed player.
	Weapon *scene.Node
	Flash  *scene.Node
}

// New assembles the persistent player entity at config.Spawn.
func New(config Config, weapon WeaponConfig, deps Deps) (*models.Entity, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if deps.Weapon != nil {
		if err := weapon.Validate(); err != nil {
			return nil, err
		}
	}
	e := models.NewEntity(Name)
	e.SetPosition(config.Spawn)
	e.SetRotation(mgl64.QuatRotate(config.Yaw, mgl64.Vec3{0, 1, 0}))
	e.AddComponent(NewPlayerState()).
		AddComponent(NewPlayerPhysics(deps.World, config)).
		AddComponent(NewPlayerControls(deps.Camera, config)).
		AddComponent(NewPlayerHealth(config.MaxHealth))
	if deps.Weapon != nil {
		e.AddComponent(NewWeapon(weapon, deps.World, deps.Graph, deps.Camera, deps.Weapon, deps.Flash))
	}
	return e, nil
}
