package npc

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/scene"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

// Deps are the collaborators an NPC is built against.
type Deps struct {
	World physics.World
	Graph *scene.Graph
	Model *scene.Node
	Clips map[string]scene.Clip
}

// New assembles an NPC entity standing at position.
func New(name string, position mgl64.Vec3, config Config, deps Deps) (*models.Entity, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	e := models.NewEntity(name)
	e.SetPosition(position)
	e.AddComponent(NewHealth(config.MaxHealth)).
		AddComponent(NewCharacterCollision(deps.World, config.CapsuleRadius, config.CapsuleHalfHeight, config.Mass)).
		AddComponent(NewAttackTrigger(deps.World, config.AttackRadius, config.AttackReach, config.EyeHeight/2)).
		AddComponent(NewCharacterController(config, deps.Graph, deps.Model, deps.Clips))
	if config.Debug {
		e.AddComponent(NewDirectionDebug(deps.Graph))
	}
	return e, nil
}
