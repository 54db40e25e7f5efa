package npc

import (
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/navigation"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

// BodyProvider is implemented by components that own a physics body, such
// as the player's physics binding.
type BodyProvider interface {
	Body() *physics.Body
}

// Vital is implemented by components that know whether their entity lives.
type Vital interface {
	Alive() bool
}

// NavmeshProvider is implemented by the level navmesh component.
type NavmeshProvider interface {
	Graph() *navigation.Graph
}

// target is the resolved hunt target.
type target struct {
	entity *models.Entity
	body   *physics.Body
	vital  Vital
}

func (t target) alive() bool {
	if t.entity == nil || t.entity.Disposed() {
		return false
	}
	return t.vital == nil || t.vital.Alive()
}

// perception is what the controller knows about its target this frame.
type perception struct {
	distance float64
	visible  bool
	alive    bool
	detected bool
}

func (c *CharacterController) perceive() perception {
	var p perception
	p.alive = c.target.alive()
	if !p.alive {
		return p
	}

	feet := c.collision.Feet()
	p.distance = physics.HorizontalDistance(feet, c.target.body.Position())
	if p.distance <= c.config.DetectionRadius {
		p.visible = c.lineOfSight(feet)
	}
	p.detected = p.visible
	return p
}

// lineOfSight casts from the NPC's eyes to the target body; the target is
// visible when it is the first body hit.
func (c *CharacterController) lineOfSight(feet mgl64.Vec3) bool {
	eyes := feet.Add(mgl64.Vec3{0, c.config.EyeHeight, 0})
	hit, ok := c.collision.World().RayTest(eyes, c.target.body.Position(), c.collision.Body())
	return ok && hit.Body == c.target.body
}

// seed derives a stable per-NPC value in [0, 1) from the entity name.
func seed(name string) float64 {
	return float64(xxhash.Sum64String(name)>>11) / float64(uint64(1)<<53)
}

// jittered spreads v by up to ±fraction using the NPC seed.
func jittered(v, fraction float64, name string) float64 {
	if fraction <= 0 {
		return v
	}
	return math.Max(0, v*(1+fraction*(2*seed(name)-1)))
}
