package npc

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/looplab/fsm"

	"github.com/zeusync/scenekit/internal/core/events"
	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/navigation"
	"github.com/zeusync/scenekit/internal/core/observability/log"
	"github.com/zeusync/scenekit/internal/core/scene"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

const (
	StateIdle   = "idle"
	StatePatrol = "patrol"
	StateChase  = "chase"
	StateAttack = "attack"
	StateDead   = "dead"
)

const (
	eventPatrol = "patrol"
	eventChase  = "chase"
	eventAttack = "attack"
	eventCalm   = "calm"
	eventDie    = "die"
)

const clipFade = 0.2

var stateClips = map[string]struct {
	clip string
	loop bool
}{
	StateIdle:   {ClipIdle, true},
	StatePatrol: {ClipWalk, true},
	StateChase:  {ClipRun, true},
	StateAttack: {ClipAttack, true},
	StateDead:   {ClipDie, false},
}

// CharacterController is the NPC brain. Transitions are evaluated in the
// frame hook only; the physics hook turns the committed state and path into
// body velocity.
type CharacterController struct {
	models.Base

	config Config
	graph  *scene.Graph
	model  *scene.Node
	clips  map[string]scene.Clip
	mixer  *scene.Mixer

	machine  *fsm.FSM
	registry models.Registry
	logger   log.Log

	health    *Health
	collision *CharacterCollision
	trigger   *AttackTrigger
	navmesh   *navigation.Graph
	target    target

	stateTime   float64
	idleTimeout float64
	hitPending  bool
	path        []mgl64.Vec3
	goal        mgl64.Vec3
	repathIn    float64
	patrolIndex int
	cooldown    float64
	removed     bool
}

// NewCharacterController builds a controller. model and clips may be nil
// for headless NPCs.
func NewCharacterController(config Config, graph *scene.Graph, model *scene.Node, clips map[string]scene.Clip) *CharacterController {
	c := &CharacterController{
		config: config,
		graph:  graph,
		model:  model,
		clips:  clips,
	}
	c.machine = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventPatrol, Src: []string{StateIdle}, Dst: StatePatrol},
			{Name: eventChase, Src: []string{StateIdle, StatePatrol, StateAttack}, Dst: StateChase},
			{Name: eventAttack, Src: []string{StateChase}, Dst: StateAttack},
			{Name: eventCalm, Src: []string{StatePatrol, StateChase, StateAttack}, Dst: StateIdle},
			{Name: eventDie, Src: []string{StateIdle, StatePatrol, StateChase, StateAttack}, Dst: StateDead},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) { c.enter(e.Dst) },
		},
	)
	return c
}

func (c *CharacterController) Kind() models.Kind { return models.KindCharacterController }

func (c *CharacterController) Initialize(registry models.Registry) error {
	e := c.Entity()
	c.registry = registry
	c.logger = registry.Logger().With(log.String("npc", e.Name()))

	var err error
	if c.health, err = models.Require[*Health](e, models.KindHealth); err != nil {
		return err
	}
	if c.collision, err = models.Require[*CharacterCollision](e, models.KindCharacterCollision); err != nil {
		return err
	}
	if c.trigger, err = models.Require[*AttackTrigger](e, models.KindAttackTrigger); err != nil {
		return err
	}
	if err = c.resolveTarget(registry); err != nil {
		return err
	}
	if err = c.resolveNavmesh(registry); err != nil {
		return err
	}
	if c.clips != nil {
		for _, state := range stateClips {
			if _, ok := c.clips[state.clip]; !ok {
				return fmt.Errorf("%w: %s on %q", ErrNoClip, state.clip, e.Name())
			}
		}
		c.mixer = scene.NewMixer(c.clips)
	}
	if c.model != nil && c.graph != nil {
		c.model.Name = e.Name()
		if err = c.graph.Add(c.model); err != nil {
			return err
		}
	}

	if err = e.Subscribe(events.Hit, func(bus.Event) error {
		c.hitPending = true
		return nil
	}); err != nil {
		return err
	}

	c.idleTimeout = jittered(c.config.IdleTimeout, c.config.Jitter, e.Name())
	if n := len(c.config.PatrolRoute); n > 0 {
		c.patrolIndex = int(seed(e.Name()) * float64(n))
	}
	c.enter(StateIdle)
	return nil
}

func (c *CharacterController) resolveTarget(registry models.Registry) error {
	t, ok := registry.Get(c.config.Target)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoTarget, c.config.Target)
	}
	body, ok := models.ComponentAs[BodyProvider](t, models.KindPlayerPhysics)
	if !ok || body.Body() == nil {
		return fmt.Errorf("%w: target %q", ErrNoBody, c.config.Target)
	}
	c.target = target{entity: t, body: body.Body()}
	if vital, ok := models.ComponentAs[Vital](t, models.KindPlayerHealth); ok {
		c.target.vital = vital
	}
	return nil
}

func (c *CharacterController) resolveNavmesh(registry models.Registry) error {
	holder, ok := registry.Get(c.config.Navmesh)
	if !ok {
		return fmt.Errorf("%w: entity %q", ErrNoNavmesh, c.config.Navmesh)
	}
	provider, ok := models.ComponentAs[NavmeshProvider](holder, models.KindNavmesh)
	if !ok || provider.Graph() == nil {
		return fmt.Errorf("%w: on %q", ErrNoNavmesh, c.config.Navmesh)
	}
	c.navmesh = provider.Graph()
	return nil
}

// State returns the committed state.
func (c *CharacterController) State() string { return c.machine.Current() }

// Path returns the remaining waypoints.
func (c *CharacterController) Path() []mgl64.Vec3 { return c.path }

func (c *CharacterController) Mixer() *scene.Mixer { return c.mixer }

func (c *CharacterController) FrameUpdate(frame *models.Frame) error {
	e := c.Entity()
	dt := frame.Delta
	e.SetPosition(c.collision.Feet())
	c.stateTime += dt

	switch {
	case c.machine.Current() == StateDead:
		c.whileDead()
	case !c.health.Alive():
		c.die()
	default:
		c.evaluate(c.perceive(), dt)
	}
	c.hitPending = false

	c.face()
	c.trigger.Follow(e.Position(), e.Forward())
	if c.model != nil {
		c.model.Position = e.Position()
		c.model.Rotation = e.Rotation()
	}
	if c.mixer != nil {
		c.mixer.Update(dt)
	}
	return nil
}

func (c *CharacterController) evaluate(p perception, dt float64) {
	alerted := p.detected || (c.hitPending && p.alive)

	switch c.machine.Current() {
	case StateIdle:
		switch {
		case alerted && c.plan():
			c.fire(eventChase)
		case c.stateTime >= c.idleTimeout && len(c.config.PatrolRoute) > 0:
			c.fire(eventPatrol)
		}

	case StatePatrol:
		switch {
		case alerted && c.plan():
			c.fire(eventChase)
		case !c.patrol():
			c.fire(eventCalm)
		}

	case StateChase:
		switch {
		case !p.alive || p.distance > c.config.LoseRadius:
			c.fire(eventCalm)
		case c.trigger.Overlaps(c.target.body):
			c.fire(eventAttack)
		default:
			c.repathIn -= dt
			if c.stale() && !c.plan() {
				c.fire(eventCalm)
			}
		}

	case StateAttack:
		switch {
		case !p.alive:
			c.fire(eventCalm)
		case !c.trigger.Overlaps(c.target.body):
			if p.distance <= c.config.LoseRadius && c.plan() {
				c.fire(eventChase)
			} else {
				c.fire(eventCalm)
			}
		default:
			c.strike(dt)
		}
	}
}

// plan computes a navmesh path to the target. A missing path is a normal
// per-frame outcome, not an error.
func (c *CharacterController) plan() bool {
	path, ok := c.navmesh.FindPath(c.collision.Feet(), c.target.body.Position())
	if !ok {
		c.path = nil
		return false
	}
	c.path = path
	c.goal = c.target.body.Position()
	c.repathIn = c.config.RepathInterval
	return true
}

// stale reports whether the chase path must be planned again.
func (c *CharacterController) stale() bool {
	return c.repathIn <= 0 ||
		len(c.path) == 0 ||
		physics.HorizontalDistance(c.goal, c.target.body.Position()) > c.config.WaypointReach
}

// patrol keeps a path towards the current route point, advancing the route
// when the point is reached.
func (c *CharacterController) patrol() bool {
	route := c.config.PatrolRoute
	if len(route) == 0 {
		return false
	}
	if len(c.path) > 0 {
		return true
	}
	feet := c.collision.Feet()
	if physics.HorizontalDistance(feet, route[c.patrolIndex]) <= c.config.WaypointReach {
		c.patrolIndex = (c.patrolIndex + 1) % len(route)
	}
	path, ok := c.navmesh.FindPath(feet, route[c.patrolIndex])
	if !ok {
		return false
	}
	c.path = path
	return true
}

func (c *CharacterController) strike(dt float64) {
	c.cooldown -= dt
	if c.cooldown > 0 {
		return
	}
	c.cooldown = c.config.AttackInterval
	name := c.Entity().Name()
	hit := events.HitData{Damage: c.config.AttackDamage, Source: name, Point: c.target.body.Position()}
	if err := c.registry.Bus().PublishToTopic(c.target.entity.Name(), bus.NewEvent(events.Hit, name, hit)); err != nil {
		c.logger.Warn("attack delivery failed", log.Error(err))
	}
}

func (c *CharacterController) die() {
	c.fire(eventDie)
	c.path = nil
	c.collision.Body().SetLinearVelocity(mgl64.Vec3{})
	if err := c.trigger.Disable(); err != nil {
		c.logger.Warn("attack trigger removal failed", log.Error(err))
	}
	name := c.Entity().Name()
	if err := c.registry.Bus().Publish(bus.NewEvent(events.NPCDead, name, nil)); err != nil {
		c.logger.Warn("death notification failed", log.Error(err))
	}
	c.logger.Info("npc died")
}

func (c *CharacterController) whileDead() {
	if c.removed || !c.config.RemoveOnDeath {
		return
	}
	if c.mixer != nil && !c.mixer.Finished() {
		return
	}
	c.removed = true
	if err := c.registry.Remove(c.Entity()); err != nil {
		c.logger.Warn("npc removal failed", log.Error(err))
	}
}

func (c *CharacterController) face() {
	e := c.Entity()
	var goal mgl64.Vec3
	switch c.machine.Current() {
	case StateAttack:
		goal = c.target.body.Position()
	case StateChase, StatePatrol:
		if len(c.path) == 0 {
			return
		}
		goal = c.path[0]
	default:
		return
	}
	if q, ok := physics.YawTowards(e.Position(), goal); ok {
		e.SetRotation(q)
		c.collision.Body().SetRotation(q)
	}
}

func (c *CharacterController) fire(event string) {
	if !c.machine.Can(event) {
		return
	}
	if err := c.machine.Event(context.Background(), event); err != nil {
		var none fsm.NoTransitionError
		if !errors.As(err, &none) {
			c.logger.Warn("state transition failed", log.String("event", event), log.Error(err))
		}
	}
}

func (c *CharacterController) enter(state string) {
	c.stateTime = 0
	if state == StateAttack {
		c.cooldown = c.config.AttackInterval / 2
	}
	if state == StateIdle || state == StateAttack || state == StateDead {
		c.path = nil
	}
	if c.mixer == nil {
		return
	}
	clip := stateClips[state]
	if err := c.mixer.Play(clip.clip, clip.loop, clipFade); err != nil && c.logger != nil {
		c.logger.Warn("clip switch failed", log.String("clip", clip.clip), log.Error(err))
	}
}

// PhysicsTick steers the body along the path. Idle, attack and dead hold
// still; dead also cancels gravity drift.
func (c *CharacterController) PhysicsTick(_ physics.World, _ float64) error {
	body := c.collision.Body()
	velocity := body.LinearVelocity()

	var speed float64
	switch c.machine.Current() {
	case StateDead:
		body.SetLinearVelocity(mgl64.Vec3{})
		return nil
	case StatePatrol:
		speed = c.config.WalkSpeed
	case StateChase:
		speed = c.config.RunSpeed
	}

	feet := c.collision.Feet()
	for len(c.path) > 0 && physics.HorizontalDistance(feet, c.path[0]) <= c.config.WaypointReach {
		c.path = c.path[1:]
	}
	if speed == 0 || len(c.path) == 0 {
		body.SetLinearVelocity(mgl64.Vec3{0, velocity.Y(), 0})
		return nil
	}

	dir := physics.Flatten(c.path[0].Sub(feet))
	if dir.Len() == 0 {
		body.SetLinearVelocity(mgl64.Vec3{0, velocity.Y(), 0})
		return nil
	}
	dir = dir.Normalize().Mul(speed)
	body.SetLinearVelocity(mgl64.Vec3{dir.X(), velocity.Y(), dir.Z()})
	return nil
}

func (c *CharacterController) Dispose() error {
	if c.model != nil && c.graph != nil && c.graph.Contains(c.model) {
		return c.graph.Remove(c.model)
	}
	return nil
}
