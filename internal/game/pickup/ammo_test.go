package pickup

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/scenekit/internal/core/events"
	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/observability/log"
	"github.com/zeusync/scenekit/internal/core/scene"
	"github.com/zeusync/scenekit/internal/core/system"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

type collectorBody struct {
	models.Base
	body *physics.Body
}

func (c *collectorBody) Kind() models.Kind   { return models.KindPlayerPhysics }
func (c *collectorBody) Body() *physics.Body { return c.body }

func TestAmmoBoxDeliversOnceAndRemovesItself(t *testing.T) {
	world := physics.NewDiscreteWorld(physics.WorldConfig{FixedTimeStep: 1.0 / 60})
	graph := scene.NewGraph()
	m := system.NewManager(log.Nop(), nil)

	player := physics.NewBody(physics.Kinematic, physics.Capsule{Radius: 0.3, HalfHeight: 0.6}, 0, mgl64.Vec3{5, 0.9, 5})
	require.NoError(t, world.AddBody(player))
	require.NoError(t, m.Add(models.NewEntity("Player").AddComponent(&collectorBody{body: player})))

	model := scene.NewNode("ammobox")
	box := NewAmmoBox(world, graph, model, nil, 0, "Player")
	require.NoError(t, m.Add(New("AmmoBox0", "level", mgl64.Vec3{0, 0, 0}, box)))
	require.NoError(t, m.EndSetup())
	assert.True(t, graph.Contains(model))
	assert.True(t, world.Contains(box.Ghost()))

	var got []events.AmmoPickupData
	_, err := m.Bus().SubscribeTopic("Player", events.AmmoPickup, func(ev bus.Event) error {
		got = append(got, ev.Data().(events.AmmoPickupData))
		return nil
	})
	require.NoError(t, err)

	frame := &models.Frame{Delta: 1.0 / 60}
	m.Update(frame)
	assert.Empty(t, got)
	assert.False(t, box.Collected())

	player.SetPosition(mgl64.Vec3{0, 0.9, 0})
	m.Update(frame)
	m.Update(frame)

	require.Len(t, got, 1)
	assert.Equal(t, DefaultRounds, got[0].Rounds)
	_, ok := m.Get("AmmoBox0")
	assert.False(t, ok)
	assert.False(t, world.Contains(box.Ghost()))
	assert.False(t, graph.Contains(model))
}

func TestAmmoBoxIsLevelScoped(t *testing.T) {
	world := physics.NewDiscreteWorld(physics.WorldConfig{FixedTimeStep: 1.0 / 60})
	m := system.NewManager(log.Nop(), nil)
	require.NoError(t, m.Add(New("AmmoBox0", "office", mgl64.Vec3{}, NewAmmoBox(world, scene.NewGraph(), nil, nil, 10, "Player"))))
	require.NoError(t, m.EndSetup())

	n, err := m.RemoveLevel("office")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, world.BodyCount())
}
