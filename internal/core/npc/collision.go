package npc

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

// CharacterCollision owns the NPC capsule body. The body center sits above
// the entity position, which is at the feet.
type CharacterCollision struct {
	models.Base
	world physics.World
	body  *physics.Body
}

func NewCharacterCollision(world physics.World, radius, halfHeight, mass float64) *CharacterCollision {
	shape := physics.Capsule{Radius: radius, HalfHeight: halfHeight}
	return &CharacterCollision{
		world: world,
		body:  physics.NewBody(physics.Dynamic, shape, mass, mgl64.Vec3{}),
	}
}

func (c *CharacterCollision) Kind() models.Kind { return models.KindCharacterCollision }

func (c *CharacterCollision) Initialize(models.Registry) error {
	if c.world == nil {
		return ErrNilPhysics
	}
	e := c.Entity()
	c.body.SetOwner(uint64(e.ID()))
	c.body.SetPosition(e.Position().Add(c.offset()))
	c.body.SetRotation(e.Rotation())
	return c.world.AddBody(c.body)
}

func (c *CharacterCollision) Dispose() error {
	if err := c.world.RemoveBody(c.body); err != nil && !errors.Is(err, physics.ErrBodyNotFound) {
		return err
	}
	return nil
}

func (c *CharacterCollision) Body() *physics.Body  { return c.body }
func (c *CharacterCollision) World() physics.World { return c.world }

// Feet returns the entity-space position of the body.
func (c *CharacterCollision) Feet() mgl64.Vec3 {
	return c.body.Position().Sub(c.offset())
}

func (c *CharacterCollision) offset() mgl64.Vec3 {
	return mgl64.Vec3{0, c.body.Shape().HalfExtents().Y(), 0}
}
