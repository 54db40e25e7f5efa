package npc

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/scene"
)

// DirectionDebug draws an arrow showing where the NPC faces.
type DirectionDebug struct {
	models.Base
	graph *scene.Graph
	arrow *scene.Node
}

func NewDirectionDebug(graph *scene.Graph) *DirectionDebug {
	arrow := scene.NewNode("direction-arrow")
	arrow.Scale = mgl64.Vec3{0.05, 0.05, 1}
	return &DirectionDebug{graph: graph, arrow: arrow}
}

func (d *DirectionDebug) Kind() models.Kind { return models.KindDirectionDebug }

func (d *DirectionDebug) Initialize(models.Registry) error {
	if d.graph == nil {
		return ErrNilScene
	}
	d.arrow.Name = d.Entity().Name() + "-direction"
	return d.graph.Add(d.arrow)
}

func (d *DirectionDebug) FrameUpdate(*models.Frame) error {
	e := d.Entity()
	d.arrow.Position = e.Position().Add(mgl64.Vec3{0, 1, 0}).Add(e.Forward().Mul(0.5))
	d.arrow.Rotation = e.Rotation()
	return nil
}

func (d *DirectionDebug) Arrow() *scene.Node { return d.arrow }

func (d *DirectionDebug) Dispose() error {
	if !d.graph.Contains(d.arrow) {
		return nil
	}
	return d.graph.Remove(d.arrow)
}
