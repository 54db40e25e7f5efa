package npc

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/scenekit/internal/core/events"
	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/navigation"
	"github.com/zeusync/scenekit/internal/core/observability/log"
	"github.com/zeusync/scenekit/internal/core/scene"
	"github.com/zeusync/scenekit/internal/core/system"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

const frame = 1.0 / 60.0

type targetBody struct {
	models.Base
	body *physics.Body
}

func (t *targetBody) Kind() models.Kind   { return models.KindPlayerPhysics }
func (t *targetBody) Body() *physics.Body { return t.body }

type targetHealth struct {
	models.Base
	alive bool
}

func (t *targetHealth) Kind() models.Kind { return models.KindPlayerHealth }
func (t *targetHealth) Alive() bool       { return t.alive }

type navmeshHolder struct {
	models.Base
	graph *navigation.Graph
}

func (n *navmeshHolder) Kind() models.Kind        { return models.KindNavmesh }
func (n *navmeshHolder) Graph() *navigation.Graph { return n.graph }

type fixture struct {
	manager *system.Manager
	world   *physics.DiscreteWorld
	loop    *system.Loop
	graph   *scene.Graph
	player  *physics.Body
	vital   *targetHealth
}

func newFixture(t *testing.T, playerAt mgl64.Vec3) *fixture {
	t.Helper()
	f := &fixture{
		manager: system.NewManager(log.Nop(), nil),
		world:   physics.NewDiscreteWorld(physics.WorldConfig{FixedTimeStep: frame}),
		graph:   scene.NewGraph(),
		vital:   &targetHealth{alive: true},
	}
	f.loop = system.NewLoop(system.DefaultLoopConfig(), f.manager, f.world, nil, f.graph, scene.NewCamera(), nil, log.Nop())

	f.player = physics.NewBody(physics.Kinematic, physics.Capsule{Radius: 0.3, HalfHeight: 0.6}, 0, playerAt)
	require.NoError(t, f.world.AddBody(f.player))

	nav := navigation.NewGrid("level", navigation.GridConfig{
		Min:     mgl64.Vec3{-10, 0, -10},
		Max:     mgl64.Vec3{40, 0, 40},
		Spacing: 1,
	})
	require.NoError(t, f.manager.Add(models.NewEntity("Player").
		AddComponent(&targetBody{body: f.player}).
		AddComponent(f.vital)))
	require.NoError(t, f.manager.Add(models.NewEntity("Level").AddComponent(&navmeshHolder{graph: nav})))
	require.NoError(t, f.manager.EndSetup())
	return f
}

func testClips() map[string]scene.Clip {
	return map[string]scene.Clip{
		ClipIdle:   {Name: ClipIdle, Duration: 2},
		ClipWalk:   {Name: ClipWalk, Duration: 1},
		ClipRun:    {Name: ClipRun, Duration: 0.8},
		ClipAttack: {Name: ClipAttack, Duration: 1},
		ClipDie:    {Name: ClipDie, Duration: 0.5},
	}
}

func (f *fixture) spawn(t *testing.T, name string, config Config) (*models.Entity, *CharacterController) {
	t.Helper()
	e, err := New(name, mgl64.Vec3{0, 0, 0}, config, Deps{
		World: f.world,
		Graph: f.graph,
		Model: scene.NewNode("npc-model"),
		Clips: testClips(),
	})
	require.NoError(t, err)
	require.NoError(t, f.manager.Add(e))
	require.NoError(t, f.manager.EndSetup())
	c, ok := models.ComponentAs[*CharacterController](e, models.KindCharacterController)
	require.True(t, ok)
	return e, c
}

func (f *fixture) run(t *testing.T, seconds float64) {
	t.Helper()
	for i := 0; i < int(seconds/frame+0.5); i++ {
		_, err := f.loop.Step(frame)
		require.NoError(t, err)
	}
}

func TestIdleWithoutRouteStaysIdle(t *testing.T) {
	f := newFixture(t, mgl64.Vec3{30, 0.9, 30})
	_, c := f.spawn(t, "npc", DefaultConfig())

	f.run(t, 6)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, ClipIdle, c.Mixer().Current())
}

func TestIdleDetectsTargetInOneUpdate(t *testing.T) {
	f := newFixture(t, mgl64.Vec3{30, 0.9, 30})
	_, c := f.spawn(t, "npc", DefaultConfig())

	f.run(t, 5)
	require.Equal(t, StateIdle, c.State())

	f.player.SetPosition(mgl64.Vec3{6, 0.9, 0})
	f.run(t, frame)
	assert.Equal(t, StateChase, c.State())
	assert.Equal(t, ClipRun, c.Mixer().Current())
	assert.NotEmpty(t, c.Path())
}

func TestWallBlocksLineOfSight(t *testing.T) {
	f := newFixture(t, mgl64.Vec3{6, 0.9, 0})
	wall := physics.NewBody(physics.Static, physics.Box{Half: mgl64.Vec3{0.2, 3, 3}}, 0, mgl64.Vec3{3, 1, 0})
	require.NoError(t, f.world.AddBody(wall))
	_, c := f.spawn(t, "npc", DefaultConfig())

	f.run(t, 0.5)
	assert.Equal(t, StateIdle, c.State())
}

func TestChaseMovesTowardsTarget(t *testing.T) {
	f := newFixture(t, mgl64.Vec3{8, 0.9, 0})
	e, c := f.spawn(t, "npc", DefaultConfig())

	f.run(t, frame)
	require.Equal(t, StateChase, c.State())
	f.run(t, 0.5)
	assert.Greater(t, e.Position().X(), 0.5)
	v := f.body(t, e).LinearVelocity()
	assert.InDelta(t, DefaultConfig().RunSpeed, physics.Flatten(v).Len(), 1e-6)
}

func (f *fixture) body(t *testing.T, e *models.Entity) *physics.Body {
	t.Helper()
	col, ok := models.ComponentAs[*CharacterCollision](e, models.KindCharacterCollision)
	require.True(t, ok)
	return col.Body()
}

func TestAttackWhenTargetInsideTrigger(t *testing.T) {
	f := newFixture(t, mgl64.Vec3{0, 0.9, 1.5})
	e, c := f.spawn(t, "npc", DefaultConfig())

	hits := 0
	_, err := f.manager.Bus().SubscribeTopic("Player", events.Hit, func(ev bus.Event) error {
		if data, ok := ev.Data().(events.HitData); ok {
			assert.Equal(t, "npc", data.Source)
			hits++
		}
		return nil
	})
	require.NoError(t, err)

	f.run(t, 2*frame)
	require.Equal(t, StateAttack, c.State())
	f.run(t, frame)
	assert.Equal(t, StateAttack, c.State())
	assert.Zero(t, physics.Flatten(f.body(t, e).LinearVelocity()).Len())

	f.run(t, 1)
	assert.Equal(t, StateAttack, c.State())
	assert.Positive(t, hits)

	f.player.SetPosition(mgl64.Vec3{0, 0.9, 6})
	f.run(t, frame)
	assert.Equal(t, StateChase, c.State())
}

func TestTargetDeathCalmsDown(t *testing.T) {
	f := newFixture(t, mgl64.Vec3{8, 0.9, 0})
	_, c := f.spawn(t, "npc", DefaultConfig())
	f.run(t, frame)
	require.Equal(t, StateChase, c.State())

	f.vital.alive = false
	f.run(t, frame)
	assert.Equal(t, StateIdle, c.State())
	assert.Empty(t, c.Path())
}

func TestHitTriggersChaseBeyondDetection(t *testing.T) {
	f := newFixture(t, mgl64.Vec3{20, 0.9, 0})
	e, c := f.spawn(t, "npc", DefaultConfig())
	f.run(t, frame)
	require.Equal(t, StateIdle, c.State())

	require.NoError(t, e.Broadcast(events.Hit, events.HitData{Damage: 10, Source: "Player"}))
	f.run(t, frame)
	assert.Equal(t, StateChase, c.State())

	health, _ := models.ComponentAs[*Health](e, models.KindHealth)
	assert.Equal(t, 90.0, health.Current())
}

func TestLostTargetReturnsToIdle(t *testing.T) {
	f := newFixture(t, mgl64.Vec3{8, 0.9, 0})
	_, c := f.spawn(t, "npc", DefaultConfig())
	f.run(t, frame)
	require.Equal(t, StateChase, c.State())

	f.player.SetPosition(mgl64.Vec3{39, 0.9, 39})
	f.run(t, frame)
	assert.Equal(t, StateIdle, c.State())
}

func TestNoPathReturnsToIdle(t *testing.T) {
	f := newFixture(t, mgl64.Vec3{8, 0.9, 0})
	_, c := f.spawn(t, "npc", DefaultConfig())
	f.run(t, frame)
	require.Equal(t, StateChase, c.State())

	// off the navmesh but within the lose radius
	f.player.SetPosition(mgl64.Vec3{-15, 0.9, 0})
	f.run(t, frame)
	assert.Equal(t, StateIdle, c.State())
}

func TestPatrolAfterIdleTimeout(t *testing.T) {
	f := newFixture(t, mgl64.Vec3{35, 0.9, 35})
	config := DefaultConfig()
	config.PatrolRoute = []mgl64.Vec3{{5, 0, 0}, {5, 0, 5}}
	e, c := f.spawn(t, "npc", config)

	f.run(t, 4.9)
	assert.Equal(t, StateIdle, c.State())
	f.run(t, 0.2)
	assert.Equal(t, StatePatrol, c.State())
	assert.Equal(t, ClipWalk, c.Mixer().Current())

	f.run(t, 1)
	assert.Greater(t, physics.HorizontalDistance(e.Position(), mgl64.Vec3{}), 0.5)
}

func TestDeathStopsAndRemoves(t *testing.T) {
	f := newFixture(t, mgl64.Vec3{8, 0.9, 0})
	e, c := f.spawn(t, "npc", DefaultConfig())
	trigger, _ := models.ComponentAs[*AttackTrigger](e, models.KindAttackTrigger)
	body := f.body(t, e)

	deaths := 0
	_, err := f.manager.Bus().Subscribe(events.NPCDead, func(bus.Event) error {
		deaths++
		return nil
	})
	require.NoError(t, err)

	f.run(t, 0.2)
	require.Equal(t, StateChase, c.State())
	require.NotZero(t, body.LinearVelocity().Len())

	require.NoError(t, e.Broadcast(events.Hit, events.HitData{Damage: 1000}))
	f.run(t, frame)
	assert.Equal(t, StateDead, c.State())
	assert.Equal(t, ClipDie, c.Mixer().Current())
	assert.False(t, trigger.Enabled())
	assert.False(t, f.world.Contains(trigger.Ghost()))
	assert.Equal(t, 1, deaths)

	at := body.Position()
	for i := 0; i < 10; i++ {
		f.run(t, frame)
		assert.Equal(t, mgl64.Vec3{}, body.LinearVelocity())
	}
	assert.Equal(t, at, body.Position())
	_, ok := f.manager.Get("npc")
	assert.True(t, ok, "removal waits for the die clip")

	f.run(t, 0.5)
	_, ok = f.manager.Get("npc")
	assert.False(t, ok)
	assert.False(t, f.world.Contains(body))
	assert.Equal(t, 1, deaths)
}

func TestMissingDependenciesFailSetup(t *testing.T) {
	world := physics.NewDiscreteWorld(physics.DefaultWorldConfig())
	m := system.NewManager(log.Nop(), nil)

	e, err := New("npc", mgl64.Vec3{}, DefaultConfig(), Deps{World: world})
	require.NoError(t, err)
	require.NoError(t, m.Add(e))
	assert.ErrorIs(t, m.EndSetup(), ErrNoTarget)
	assert.Zero(t, world.BodyCount(), "rolled back bodies leave the world")

	player := physics.NewBody(physics.Kinematic, physics.Sphere{Radius: 0.5}, 0, mgl64.Vec3{})
	require.NoError(t, m.Add(models.NewEntity("Player").AddComponent(&targetBody{body: player})))
	require.NoError(t, m.EndSetup())

	e, err = New("npc", mgl64.Vec3{}, DefaultConfig(), Deps{World: world})
	require.NoError(t, err)
	require.NoError(t, m.Add(e))
	assert.ErrorIs(t, m.EndSetup(), ErrNoNavmesh)

	lonely := models.NewEntity("npc").AddComponent(NewCharacterController(DefaultConfig(), nil, nil, nil))
	require.NoError(t, m.Add(lonely))
	assert.ErrorIs(t, m.EndSetup(), models.ErrMissingComponent)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	c := DefaultConfig()
	c.LoseRadius = 1
	assert.ErrorIs(t, c.Validate(), ErrBadConfig)
	_, err := New("npc", mgl64.Vec3{}, c, Deps{})
	assert.ErrorIs(t, err, ErrBadConfig)
}

func TestJitterIsDeterministic(t *testing.T) {
	assert.Equal(t, seed("npc-1"), seed("npc-1"))
	assert.NotEqual(t, seed("npc-1"), seed("npc-2"))
	v := jittered(5, 0.2, "npc-1")
	assert.GreaterOrEqual(t, v, 4.0)
	assert.LessOrEqual(t, v, 6.0)
	assert.Equal(t, 5.0, jittered(5, 0, "npc-1"))
}
