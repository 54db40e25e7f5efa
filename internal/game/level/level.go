// Package level builds the level and sky entities.
package level

import (
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/navigation"
	"github.com/zeusync/scenekit/internal/core/scene"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

const (
	// Name is the level entity name NPCs resolve their navmesh from.
	Name    = "Level"
	SkyName = "Sky"
)

type Deps struct {
	World physics.World
	Graph *scene.Graph
	Model *scene.Node
	// Navmesh is optional; a level without one has no NPC navigation.
	Navmesh    *navigation.Graph
	DecalLimit int
}

// New builds the level entity tagged with tag. Every entity spawned for the
// level should carry the same tag so RemoveLevel tears them down together.
func New(tag string, deps Deps) *models.Entity {
	e := models.NewEntity(Name).SetLevel(tag)
	e.AddComponent(NewLevelSetup(deps.World, deps.Graph, deps.Model))
	if deps.Navmesh != nil {
		e.AddComponent(NewNavmesh(deps.Navmesh))
	}
	return e.AddComponent(NewBulletDecals(deps.Graph, deps.DecalLimit))
}

// NewSkyEntity builds the persistent sky entity.
func NewSkyEntity(graph *scene.Graph, dome *scene.Node, camera *scene.Camera) *models.Entity {
	return models.NewEntity(SkyName).AddComponent(NewSky(graph, dome, camera))
}
