package physics

import "github.com/go-gl/mathgl/mgl64"

// World is the rigid-body simulation handle the scene core steps and queries.
// Implementations wrap a real engine; DiscreteWorld is the built-in one.
type World interface {
	// StepSimulation advances the world by timeStep seconds split into fixed
	// substeps (at most maxSubSteps). The tick callback runs once per substep.
	// It returns the number of substeps taken.
	StepSimulation(timeStep float64, maxSubSteps int) int
	// SetInternalTickCallback installs the single per-substep handler.
	SetInternalTickCallback(handler TickHandler)
	FixedTimeStep() float64

	SetGravity(g mgl64.Vec3)
	Gravity() mgl64.Vec3

	// AddBody and RemoveBody fail with ErrWorldLocked while a step is in progress.
	AddBody(body *Body) error
	RemoveBody(body *Body) error
	Contains(body *Body) bool
	BodyCount() int

	// RayTest returns the closest non-ghost body hit by the segment from..to.
	RayTest(from, to mgl64.Vec3, ignore ...*Body) (RayHit, bool)
	// Overlapping returns the non-ghost bodies overlapping a ghost body.
	Overlapping(ghost *Body) []*Body
}

// TickHandler receives the internal tick of every physics substep.
type TickHandler interface {
	PhysicsUpdate(world World, timeStep float64)
}

// TickFunc adapts a function to TickHandler.
type TickFunc func(world World, timeStep float64)

func (f TickFunc) PhysicsUpdate(world World, timeStep float64) { f(world, timeStep) }

// RayHit describes the closest intersection of a ray test.
type RayHit struct {
	Body     *Body
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Fraction float64
}

// Shape is a collision shape. Rotation is ignored for broad tests; every
// shape is tested through its axis-aligned bounds except ghost spheres.
type Shape interface {
	HalfExtents() mgl64.Vec3
}

// Box is an axis-aligned box.
type Box struct{ Half mgl64.Vec3 }

func (b Box) HalfExtents() mgl64.Vec3 { return b.Half }

// Sphere is a sphere.
type Sphere struct{ Radius float64 }

func (s Sphere) HalfExtents() mgl64.Vec3 { return mgl64.Vec3{s.Radius, s.Radius, s.Radius} }

// Capsule is a Y-aligned capsule; HalfHeight excludes the caps.
type Capsule struct{ Radius, HalfHeight float64 }

func (c Capsule) HalfExtents() mgl64.Vec3 {
	return mgl64.Vec3{c.Radius, c.HalfHeight + c.Radius, c.Radius}
}
