package level

import (
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/navigation"
)

// Navmesh exposes the level's navigation graph to NPC controllers.
type Navmesh struct {
	models.Base
	graph *navigation.Graph
}

func NewNavmesh(graph *navigation.Graph) *Navmesh { return &Navmesh{graph: graph} }

func (n *Navmesh) Kind() models.Kind { return models.KindNavmesh }

func (n *Navmesh) Initialize(models.Registry) error {
	if n.graph == nil {
		return ErrNilNavmesh
	}
	return nil
}

func (n *Navmesh) Graph() *navigation.Graph { return n.graph }
