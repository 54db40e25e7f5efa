package player

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/scenekit/internal/core/input"
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/scene"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

const pitchLimit = math.Pi/2 - 1e-3

// PlayerControls turns input into locomotion. It is the only writer of the
// player transform and the camera.
//
// Per frame it first copies the simulated body position into the entity and
// camera, then applies look input and computes the desired horizontal
// velocity. The physics tick writes that velocity into the body.
type PlayerControls struct {
	models.Base
	config Config
	camera *scene.Camera

	physics *PlayerPhysics
	state   *PlayerState

	enabled bool
	yaw     float64
	pitch   float64
	desired mgl64.Vec3
	jump    bool
}

func NewPlayerControls(camera *scene.Camera, config Config) *PlayerControls {
	return &PlayerControls{config: config, camera: camera, enabled: true}
}

func (c *PlayerControls) Kind() models.Kind { return models.KindPlayerControls }

func (c *PlayerControls) Initialize(models.Registry) error {
	e := c.Entity()
	var err error
	if c.physics, err = models.Require[*PlayerPhysics](e, models.KindPlayerPhysics); err != nil {
		return err
	}
	c.state, _ = models.ComponentAs[*PlayerState](e, models.KindPlayerState)

	forward := e.Rotation().Rotate(mgl64.Vec3{0, 0, -1})
	c.yaw = math.Atan2(-forward.X(), -forward.Z())
	c.syncTransform()
	return nil
}

// SetEnabled captures or releases control input.
func (c *PlayerControls) SetEnabled(enabled bool) {
	c.enabled = enabled
	if !enabled {
		c.desired = mgl64.Vec3{}
		c.jump = false
	}
}

func (c *PlayerControls) Enabled() bool         { return c.enabled }
func (c *PlayerControls) Yaw() float64          { return c.yaw }
func (c *PlayerControls) Pitch() float64        { return c.pitch }
func (c *PlayerControls) Desired() mgl64.Vec3   { return c.desired }
func (c *PlayerControls) Camera() *scene.Camera { return c.camera }

func (c *PlayerControls) active() bool {
	return c.enabled && (c.state == nil || c.state.Alive())
}

func (c *PlayerControls) FrameUpdate(frame *models.Frame) error {
	c.syncTransform()
	if !c.active() {
		c.desired = mgl64.Vec3{}
		c.jump = false
		return nil
	}

	in := frame.Input
	c.yaw -= in.LookX * c.config.LookSensitivity
	c.pitch = mgl64.Clamp(c.pitch-in.LookY*c.config.LookSensitivity, -pitchLimit, pitchLimit)
	c.orient()

	sin, cos := math.Sincos(c.yaw)
	forward := mgl64.Vec3{-sin, 0, -cos}
	right := mgl64.Vec3{cos, 0, -sin}
	move := forward.Mul(in.Axis(input.KeyW, input.KeyS)).Add(right.Mul(in.Axis(input.KeyD, input.KeyA)))
	if move.Len() > 0 {
		speed := c.config.WalkSpeed
		if in.KeyDown(input.KeyShift) {
			speed *= c.config.SprintFactor
		}
		move = move.Normalize().Mul(speed)
	}
	c.desired = move
	c.jump = in.KeyDown(input.KeySpace)
	return nil
}

func (c *PlayerControls) PhysicsTick(physics.World, float64) error {
	body := c.physics.Body()
	v := body.LinearVelocity()
	vy := v.Y()
	if c.jump && body.OnGround() {
		vy = c.config.JumpSpeed
		c.jump = false
	}
	body.SetLinearVelocity(mgl64.Vec3{c.desired.X(), vy, c.desired.Z()})
	return nil
}

// syncTransform copies the post-physics body position into the entity and
// camera.
func (c *PlayerControls) syncTransform() {
	e := c.Entity()
	pos := c.physics.Body().Position()
	e.SetPosition(pos)
	if c.camera != nil {
		c.camera.Position = pos.Add(mgl64.Vec3{0, c.config.EyeOffset, 0})
	}
	c.orient()
}

func (c *PlayerControls) orient() {
	c.Entity().SetRotation(mgl64.QuatRotate(c.yaw, mgl64.Vec3{0, 1, 0}))
	if c.camera != nil {
		c.camera.Rotation = scene.LookAngles(c.yaw, c.pitch)
	}
}
