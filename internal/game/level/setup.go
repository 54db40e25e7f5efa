package level

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/scene"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

// LevelSetup attaches the level model and turns every leaf mesh into a
// static box body sized by the node scale.
type LevelSetup struct {
	models.Base
	world  physics.World
	graph  *scene.Graph
	model  *scene.Node
	bodies []*physics.Body
}

func NewLevelSetup(world physics.World, graph *scene.Graph, model *scene.Node) *LevelSetup {
	return &LevelSetup{world: world, graph: graph, model: model}
}

func (l *LevelSetup) Kind() models.Kind { return models.KindLevelSetup }

func (l *LevelSetup) Initialize(models.Registry) error {
	switch {
	case l.model == nil:
		return ErrNilModel
	case l.world == nil:
		return ErrNilWorld
	case l.graph == nil:
		return ErrNilGraph
	}
	if err := l.graph.Add(l.model); err != nil {
		return err
	}

	owner := uint64(l.Entity().ID())
	var err error
	l.model.Traverse(func(n *scene.Node) {
		if err != nil || n == l.model || len(n.Children()) > 0 {
			return
		}
		body := physics.NewBody(physics.Static, physics.Box{Half: n.Scale.Mul(0.5)}, 0, worldPosition(n))
		body.SetOwner(owner)
		if err = l.world.AddBody(body); err == nil {
			l.bodies = append(l.bodies, body)
		}
	})
	return err
}

// worldPosition sums translations up the parent chain. Level nodes carry no
// rotation.
func worldPosition(n *scene.Node) mgl64.Vec3 {
	var p mgl64.Vec3
	for ; n != nil; n = n.Parent() {
		p = p.Add(n.Position)
	}
	return p
}

func (l *LevelSetup) Bodies() []*physics.Body { return l.bodies }
func (l *LevelSetup) Model() *scene.Node      { return l.model }

func (l *LevelSetup) Dispose() error {
	var errs []error
	for _, b := range l.bodies {
		if err := l.world.RemoveBody(b); err != nil && !errors.Is(err, physics.ErrBodyNotFound) {
			errs = append(errs, err)
		}
	}
	l.bodies = nil
	if l.graph.Contains(l.model) {
		errs = append(errs, l.graph.Remove(l.model))
	}
	return errors.Join(errs...)
}
