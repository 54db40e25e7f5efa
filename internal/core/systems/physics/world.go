package physics

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

var _ World = (*DiscreteWorld)(nil)

// WorldConfig configures a DiscreteWorld.
type WorldConfig struct {
	FixedTimeStep float64
	Gravity       mgl64.Vec3
}

// DefaultWorldConfig returns a 60 Hz world with earth gravity.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		FixedTimeStep: 1.0 / 60.0,
		Gravity:       mgl64.Vec3{0, -9.81, 0},
	}
}

// DiscreteWorld is a fixed-step world: gravity and velocity integration,
// dynamic bodies pushed out of static and kinematic bounds, ghost overlap and
// ray queries. Bodies are processed in insertion order.
type DiscreteWorld struct {
	fixedStep   float64
	gravity     mgl64.Vec3
	accumulator float64
	bodies      []*Body
	index       map[*Body]int
	tick        TickHandler
	locked      bool
	substeps    uint64
}

func NewDiscreteWorld(config WorldConfig) *DiscreteWorld {
	if config.FixedTimeStep <= 0 {
		config.FixedTimeStep = DefaultWorldConfig().FixedTimeStep
	}
	return &DiscreteWorld{
		fixedStep: config.FixedTimeStep,
		gravity:   config.Gravity,
		index:     make(map[*Body]int),
	}
}

func (w *DiscreteWorld) SetInternalTickCallback(handler TickHandler) { w.tick = handler }
func (w *DiscreteWorld) FixedTimeStep() float64                      { return w.fixedStep }
func (w *DiscreteWorld) SetGravity(g mgl64.Vec3)                     { w.gravity = g }
func (w *DiscreteWorld) Gravity() mgl64.Vec3                         { return w.gravity }
func (w *DiscreteWorld) BodyCount() int                              { return len(w.bodies) }

// Substeps returns the number of substeps simulated so far.
func (w *DiscreteWorld) Substeps() uint64 { return w.substeps }

// StepSimulation follows the fixed-step contract: elapsed time accumulates and
// is consumed in whole fixed steps, at most maxSubSteps per call; time beyond
// that is dropped. With maxSubSteps <= 0 a single variable step of timeStep runs.
func (w *DiscreteWorld) StepSimulation(timeStep float64, maxSubSteps int) int {
	if timeStep <= 0 {
		return 0
	}
	if maxSubSteps <= 0 {
		w.substep(timeStep)
		return 1
	}

	w.accumulator += timeStep
	steps := int(math.Floor(w.accumulator / w.fixedStep))
	w.accumulator -= float64(steps) * w.fixedStep
	if steps > maxSubSteps {
		steps = maxSubSteps
	}
	for i := 0; i < steps; i++ {
		w.substep(w.fixedStep)
	}
	return steps
}

func (w *DiscreteWorld) substep(dt float64) {
	w.locked = true
	defer func() { w.locked = false }()

	for _, b := range w.bodies {
		switch b.kind {
		case Dynamic:
			b.velocity = b.velocity.Add(w.gravity.Mul(dt))
			b.position = b.position.Add(b.velocity.Mul(dt))
			b.onGround = false
			w.resolve(b)
		case Kinematic:
			b.position = b.position.Add(b.velocity.Mul(dt))
		}
	}
	w.substeps++

	if w.tick != nil {
		w.tick.PhysicsUpdate(w, dt)
	}
}

// resolve pushes a dynamic body out of every blocker along the axis of least
// penetration and cancels velocity into the contact.
func (w *DiscreteWorld) resolve(b *Body) {
	for _, other := range w.bodies {
		if other == b || (other.kind != Static && other.kind != Kinematic) {
			continue
		}
		bMin, bMax := b.Bounds()
		oMin, oMax := other.Bounds()
		if !aabbOverlap(bMin, bMax, oMin, oMax) {
			continue
		}

		axis, depth := 0, math.Inf(1)
		for i := 0; i < 3; i++ {
			push := oMax[i] - bMin[i]
			if alt := bMax[i] - oMin[i]; alt < push {
				push = -alt
			}
			if math.Abs(push) < math.Abs(depth) {
				axis, depth = i, push
			}
		}

		b.position[axis] += depth
		if (depth > 0 && b.velocity[axis] < 0) || (depth < 0 && b.velocity[axis] > 0) {
			b.velocity[axis] = 0
		}
		if axis == 1 && depth > 0 {
			b.onGround = true
		}
	}
}

func (w *DiscreteWorld) AddBody(body *Body) error {
	if body == nil {
		return ErrNilBody
	}
	if w.locked {
		return ErrWorldLocked
	}
	if _, exists := w.index[body]; exists {
		return ErrBodyExists
	}
	w.index[body] = len(w.bodies)
	w.bodies = append(w.bodies, body)
	return nil
}

func (w *DiscreteWorld) RemoveBody(body *Body) error {
	if body == nil {
		return ErrNilBody
	}
	if w.locked {
		return ErrWorldLocked
	}
	i, exists := w.index[body]
	if !exists {
		return ErrBodyNotFound
	}
	w.bodies = slices.Delete(w.bodies, i, i+1)
	delete(w.index, body)
	for j := i; j < len(w.bodies); j++ {
		w.index[w.bodies[j]] = j
	}
	return nil
}

func (w *DiscreteWorld) Contains(body *Body) bool {
	_, exists := w.index[body]
	return exists
}

func (w *DiscreteWorld) RayTest(from, to mgl64.Vec3, ignore ...*Body) (RayHit, bool) {
	dir := to.Sub(from)
	best := RayHit{Fraction: math.Inf(1)}
	for _, b := range w.bodies {
		if b.kind == Ghost || slices.Contains(ignore, b) {
			continue
		}
		bMin, bMax := b.Bounds()
		t, normal, ok := rayAABB(from, dir, bMin, bMax)
		if !ok || t >= best.Fraction {
			continue
		}
		best = RayHit{Body: b, Point: from.Add(dir.Mul(t)), Normal: normal, Fraction: t}
	}
	return best, best.Body != nil
}

func (w *DiscreteWorld) Overlapping(ghost *Body) []*Body {
	if ghost == nil {
		return nil
	}
	gMin, gMax := ghost.Bounds()
	sphere, isSphere := ghost.shape.(Sphere)

	var out []*Body
	for _, b := range w.bodies {
		if b == ghost || b.kind == Ghost {
			continue
		}
		bMin, bMax := b.Bounds()
		if isSphere {
			if sphereAABB(ghost.position, sphere.Radius, bMin, bMax) {
				out = append(out, b)
			}
			continue
		}
		if aabbOverlap(gMin, gMax, bMin, bMax) {
			out = append(out, b)
		}
	}
	return out
}
