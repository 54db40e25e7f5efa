package npc

import (
	"errors"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

// AttackTrigger is a ghost sphere in front of the NPC. The controller
// attacks while the target body overlaps it.
type AttackTrigger struct {
	models.Base
	world   physics.World
	ghost   *physics.Body
	reach   float64
	height  float64
	enabled bool
}

func NewAttackTrigger(world physics.World, radius, reach, height float64) *AttackTrigger {
	return &AttackTrigger{
		world:  world,
		ghost:  physics.NewBody(physics.Ghost, physics.Sphere{Radius: radius}, 0, mgl64.Vec3{}),
		reach:  reach,
		height: height,
	}
}

func (t *AttackTrigger) Kind() models.Kind { return models.KindAttackTrigger }

func (t *AttackTrigger) Initialize(models.Registry) error {
	if t.world == nil {
		return ErrNilPhysics
	}
	e := t.Entity()
	t.ghost.SetOwner(uint64(e.ID()))
	t.Follow(e.Position(), e.Forward())
	if err := t.world.AddBody(t.ghost); err != nil {
		return err
	}
	t.enabled = true
	return nil
}

// Follow moves the sensor to reach units ahead of feet along forward.
func (t *AttackTrigger) Follow(feet, forward mgl64.Vec3) {
	t.ghost.SetPosition(feet.Add(physics.Flatten(forward).Mul(t.reach)).Add(mgl64.Vec3{0, t.height, 0}))
}

// Overlaps reports whether body is inside the sensor.
func (t *AttackTrigger) Overlaps(body *physics.Body) bool {
	if !t.enabled || body == nil {
		return false
	}
	return slices.Contains(t.world.Overlapping(t.ghost), body)
}

// Disable removes the sensor from the world. It must not run inside a
// physics step.
func (t *AttackTrigger) Disable() error {
	if !t.enabled {
		return nil
	}
	t.enabled = false
	if err := t.world.RemoveBody(t.ghost); err != nil && !errors.Is(err, physics.ErrBodyNotFound) {
		return err
	}
	return nil
}

func (t *AttackTrigger) Enabled() bool        { return t.enabled }
func (t *AttackTrigger) Ghost() *physics.Body { return t.ghost }

func (t *AttackTrigger) Dispose() error { return t.Disable() }
