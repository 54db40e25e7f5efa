package physics

import "github.com/go-gl/mathgl/mgl64"

// Kind selects how a body takes part in the simulation.
type Kind uint8

const (
	// Static bodies never move and block dynamic bodies.
	Static Kind = iota
	// Dynamic bodies integrate gravity and velocity and are pushed out of blockers.
	Dynamic
	// Kinematic bodies move by velocity only and block dynamic bodies.
	Kinematic
	// Ghost bodies only report overlaps.
	Ghost
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	case Kinematic:
		return "kinematic"
	case Ghost:
		return "ghost"
	default:
		return "unknown"
	}
}

// Body is a rigid body primitive. Its state is owned by the world it is
// added to; write it only from physics hooks or outside a step.
type Body struct {
	kind     Kind
	shape    Shape
	mass     float64
	position mgl64.Vec3
	rotation mgl64.Quat
	velocity mgl64.Vec3
	onGround bool
	owner    uint64
}

// NewBody creates a body of the given kind. Mass is ignored for every kind
// except Dynamic, where a non-positive mass defaults to 1.
func NewBody(kind Kind, shape Shape, mass float64, position mgl64.Vec3) *Body {
	if kind == Dynamic && mass <= 0 {
		mass = 1
	}
	return &Body{
		kind:     kind,
		shape:    shape,
		mass:     mass,
		position: position,
		rotation: mgl64.QuatIdent(),
	}
}

func (b *Body) Kind() Kind   { return b.kind }
func (b *Body) Shape() Shape { return b.shape }
func (b *Body) Mass() float64 {
	return b.mass
}

func (b *Body) Position() mgl64.Vec3     { return b.position }
func (b *Body) SetPosition(p mgl64.Vec3) { b.position = p }

func (b *Body) Rotation() mgl64.Quat     { return b.rotation }
func (b *Body) SetRotation(q mgl64.Quat) { b.rotation = q }

func (b *Body) LinearVelocity() mgl64.Vec3     { return b.velocity }
func (b *Body) SetLinearVelocity(v mgl64.Vec3) { b.velocity = v }

// ApplyImpulse changes velocity by impulse/mass. No-op for non-dynamic bodies.
func (b *Body) ApplyImpulse(impulse mgl64.Vec3) {
	if b.kind != Dynamic {
		return
	}
	b.velocity = b.velocity.Add(impulse.Mul(1 / b.mass))
}

// OnGround reports whether the last substep resolved a downward contact.
func (b *Body) OnGround() bool { return b.onGround }

// Owner is the opaque id of the entity that created the body.
func (b *Body) Owner() uint64      { return b.owner }
func (b *Body) SetOwner(id uint64) { b.owner = id }

// Bounds returns the world-space AABB.
func (b *Body) Bounds() (min, max mgl64.Vec3) {
	h := b.shape.HalfExtents()
	return b.position.Sub(h), b.position.Add(h)
}
