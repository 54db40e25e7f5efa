// Package pickup holds collectable props.
package pickup

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/scenekit/internal/core/events"
	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/scene"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

var (
	ErrNilWorld = errors.New("physics world is nil")
	ErrNilGraph = errors.New("scene graph is nil")
)

const (
	DefaultRounds = 30
	spinSpeed     = 1.5
)

type bodyProvider interface {
	Body() *physics.Body
}

// AmmoBox is a ghost sensor that hands rounds to the collector once and
// then removes its entity.
type AmmoBox struct {
	models.Base
	world     physics.World
	graph     *scene.Graph
	model     *scene.Node
	ghost     *physics.Body
	rounds    int
	collector string
	collected bool
}

// NewAmmoBox builds a box sensed by the entity named collector. A nil shape
// falls back to a half-meter cube.
func NewAmmoBox(world physics.World, graph *scene.Graph, model *scene.Node, shape physics.Shape, rounds int, collector string) *AmmoBox {
	if shape == nil {
		shape = physics.Box{Half: mgl64.Vec3{0.25, 0.25, 0.25}}
	}
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	return &AmmoBox{
		world:     world,
		graph:     graph,
		model:     model,
		ghost:     physics.NewBody(physics.Ghost, shape, 0, mgl64.Vec3{}),
		rounds:    rounds,
		collector: collector,
	}
}

func (a *AmmoBox) Kind() models.Kind { return models.KindAmmoBox }

func (a *AmmoBox) Initialize(models.Registry) error {
	switch {
	case a.world == nil:
		return ErrNilWorld
	case a.graph == nil:
		return ErrNilGraph
	}
	e := a.Entity()
	center := e.Position().Add(mgl64.Vec3{0, a.ghost.Shape().HalfExtents().Y(), 0})
	a.ghost.SetOwner(uint64(e.ID()))
	a.ghost.SetPosition(center)
	if err := a.world.AddBody(a.ghost); err != nil {
		return err
	}
	if a.model != nil {
		a.model.Position = e.Position()
		if err := a.graph.Add(a.model); err != nil {
			return err
		}
	}
	return nil
}

func (a *AmmoBox) FrameUpdate(frame *models.Frame) error {
	if a.collected {
		return nil
	}
	if a.model != nil {
		a.model.Rotation = a.model.Rotation.Mul(mgl64.QuatRotate(spinSpeed*frame.Delta, mgl64.Vec3{0, 1, 0}))
	}

	e := a.Entity()
	reg := e.Registry()
	collector, ok := reg.Get(a.collector)
	if !ok {
		return nil
	}
	bp, ok := models.ComponentAs[bodyProvider](collector, models.KindPlayerPhysics)
	if !ok || !slices.Contains(a.world.Overlapping(a.ghost), bp.Body()) {
		return nil
	}

	a.collected = true
	data := events.AmmoPickupData{Rounds: a.rounds}
	if err := reg.Bus().PublishToTopic(collector.Name(), bus.NewEvent(events.AmmoPickup, e.Name(), data)); err != nil {
		return fmt.Errorf("deliver %s: %w", events.AmmoPickup, err)
	}
	return reg.Remove(e)
}

func (a *AmmoBox) Collected() bool      { return a.collected }
func (a *AmmoBox) Ghost() *physics.Body { return a.ghost }

func (a *AmmoBox) Dispose() error {
	var errs []error
	if err := a.world.RemoveBody(a.ghost); err != nil && !errors.Is(err, physics.ErrBodyNotFound) {
		errs = append(errs, err)
	}
	if a.model != nil && a.graph.Contains(a.model) {
		errs = append(errs, a.graph.Remove(a.model))
	}
	return errors.Join(errs...)
}

// New builds an ammo box entity at position tagged with the level.
func New(name, levelTag string, position mgl64.Vec3, box *AmmoBox) *models.Entity {
	e := models.NewEntity(name).SetLevel(levelTag)
	e.SetPosition(position)
	return e.AddComponent(box)
}
