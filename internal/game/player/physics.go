package player

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

// PlayerPhysics owns the player's dynamic capsule. The entity position is
// the capsule center.
type PlayerPhysics struct {
	models.Base
	world physics.World
	body  *physics.Body
}

func NewPlayerPhysics(world physics.World, config Config) *PlayerPhysics {
	shape := physics.Capsule{Radius: config.CapsuleRadius, HalfHeight: config.CapsuleHalfHeight}
	return &PlayerPhysics{
		world: world,
		body:  physics.NewBody(physics.Dynamic, shape, config.Mass, mgl64.Vec3{}),
	}
}

func (p *PlayerPhysics) Kind() models.Kind { return models.KindPlayerPhysics }

func (p *PlayerPhysics) Initialize(models.Registry) error {
	if p.world == nil {
		return ErrNilWorld
	}
	e := p.Entity()
	p.body.SetOwner(uint64(e.ID()))
	p.body.SetPosition(e.Position())
	return p.world.AddBody(p.body)
}

func (p *PlayerPhysics) Body() *physics.Body { return p.body }

func (p *PlayerPhysics) Dispose() error {
	if err := p.world.RemoveBody(p.body); err != nil && !errors.Is(err, physics.ErrBodyNotFound) {
		return err
	}
	return nil
}
