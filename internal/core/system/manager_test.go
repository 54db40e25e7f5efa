package system

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/observability/log"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

// recorder records every hook call. Optional funcs override the behavior.
type recorder struct {
	models.Base
	kind models.Kind

	inits, frames, ticks, disposals int

	onInit    func(models.Registry) error
	onFrame   func(*models.Frame) error
	onTick    func() error
	onDispose func() error
	trace     *[]string
}

func newRecorder(kind models.Kind) *recorder { return &recorder{kind: kind} }

func (p *recorder) Kind() models.Kind { return p.kind }

func (p *recorder) record(what string) {
	if p.trace != nil {
		*p.trace = append(*p.trace, p.Entity().Name()+":"+p.kind.String()+":"+what)
	}
}

func (p *recorder) Initialize(r models.Registry) error {
	p.inits++
	p.record("init")
	if p.onInit != nil {
		return p.onInit(r)
	}
	return nil
}

func (p *recorder) FrameUpdate(f *models.Frame) error {
	p.frames++
	p.record("frame")
	if p.onFrame != nil {
		return p.onFrame(f)
	}
	return nil
}

func (p *recorder) PhysicsTick(physics.World, float64) error {
	p.ticks++
	if p.onTick != nil {
		return p.onTick()
	}
	return nil
}

func (p *recorder) Dispose() error {
	p.disposals++
	p.record("dispose")
	if p.onDispose != nil {
		return p.onDispose()
	}
	return nil
}

func newTestManager() *Manager {
	return NewManager(log.Nop(), nil)
}

func TestStagedEntitiesAreInvisibleUntilEndSetup(t *testing.T) {
	m := newTestManager()
	p := newRecorder(models.KindHealth)
	e := models.NewEntity("npc").AddComponent(p)

	require.NoError(t, m.Add(e))
	_, ok := m.Get("npc")
	assert.False(t, ok)
	_, ok = m.Lookup(e.ID())
	assert.False(t, ok)
	assert.Equal(t, 1, m.StagedLen())

	m.Update(&models.Frame{Delta: 0.016})
	assert.Zero(t, p.frames)
	assert.Zero(t, p.inits)

	require.NoError(t, m.EndSetup())
	got, ok := m.Get("npc")
	require.True(t, ok)
	assert.Same(t, e, got)
	got, ok = m.Lookup(e.ID())
	require.True(t, ok)
	assert.Same(t, e, got)
	assert.Equal(t, 1, p.inits)

	require.NoError(t, m.EndSetup())
	assert.Equal(t, 1, p.inits, "EndSetup with nothing staged initializes nothing")

	m.Update(&models.Frame{Delta: 0.016})
	assert.Equal(t, 1, p.frames)
}

func TestNamesAreUnique(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Add(models.NewEntity("Player")))
	assert.ErrorIs(t, m.Add(models.NewEntity("Player")), ErrDuplicateName, "staged duplicate")

	require.NoError(t, m.EndSetup())
	assert.ErrorIs(t, m.Add(models.NewEntity("Player")), ErrDuplicateName, "committed duplicate")

	other := models.NewEntity("UIManager")
	require.NoError(t, m.Add(other))
	assert.ErrorIs(t, other.SetName("Player"), ErrDuplicateName)
	require.NoError(t, other.SetName("HUD"))
	require.NoError(t, m.EndSetup())
	_, ok := m.Get("HUD")
	assert.True(t, ok)

	assert.ErrorIs(t, m.Add(models.NewEntity("")), ErrEmptyName)
	assert.ErrorIs(t, m.Add(nil), ErrNilEntity)
}

func TestAddSurfacesComponentErrors(t *testing.T) {
	m := newTestManager()
	e := models.NewEntity("npc").
		AddComponent(newRecorder(models.KindHealth)).
		AddComponent(newRecorder(models.KindHealth))
	assert.ErrorIs(t, m.Add(e), models.ErrDuplicateComponent)

	assert.ErrorIs(t, m.Add(e), models.ErrDuplicateComponent)
	require.NoError(t, m.EndSetup())
	assert.Zero(t, m.Len())
}

func TestUpdateOrder(t *testing.T) {
	m := newTestManager()
	var trace []string
	for _, name := range []string{"a", "b"} {
		first, second := newRecorder(models.KindHealth), newRecorder(models.KindAttackTrigger)
		first.trace, second.trace = &trace, &trace
		require.NoError(t, m.Add(models.NewEntity(name).AddComponent(first).AddComponent(second)))
	}
	require.NoError(t, m.EndSetup())
	trace = nil

	m.Update(&models.Frame{})
	assert.Equal(t, []string{
		"a:Health:frame", "a:AttackTrigger:frame",
		"b:Health:frame", "b:AttackTrigger:frame",
	}, trace)
}

func TestInitializeSeesWholeBatch(t *testing.T) {
	m := newTestManager()
	npc := newRecorder(models.KindCharacterController)
	var target *models.Entity
	npc.onInit = func(r models.Registry) error {
		e, ok := r.Get("Player")
		if !ok {
			return models.ErrMissingEntity
		}
		target = e
		return nil
	}
	require.NoError(t, m.Add(models.NewEntity("npc").AddComponent(npc)))
	require.NoError(t, m.Add(models.NewEntity("Player")))
	require.NoError(t, m.EndSetup())
	require.NotNil(t, target)
	assert.Equal(t, "Player", target.Name())
}

func TestEndSetupRollsBackFailedBatch(t *testing.T) {
	m := newTestManager()
	keep := newRecorder(models.KindUIManager)
	require.NoError(t, m.Add(models.NewEntity("UIManager").AddComponent(keep)))
	require.NoError(t, m.EndSetup())

	ok1, ok2 := newRecorder(models.KindLevelSetup), newRecorder(models.KindNavmesh)
	bad := newRecorder(models.KindCharacterController)
	bad.onInit = func(models.Registry) error { return models.ErrMissingEntity }
	level := models.NewEntity("Level").AddComponent(ok1).AddComponent(ok2)
	npc := models.NewEntity("npc").AddComponent(bad)
	require.NoError(t, m.Add(level))
	require.NoError(t, m.Add(npc))

	err := m.EndSetup()
	require.ErrorIs(t, err, models.ErrMissingEntity)
	assert.Contains(t, err.Error(), `"npc"`)

	_, ok := m.Get("Level")
	assert.False(t, ok)
	_, ok = m.Get("npc")
	assert.False(t, ok)
	assert.Equal(t, 1, ok1.disposals)
	assert.Equal(t, 1, ok2.disposals)
	assert.Equal(t, 1, m.Len())
	assert.Zero(t, keep.disposals)
	assert.Equal(t, uint64(1), m.Diagnostics().InitFailures)

	require.NoError(t, m.Add(models.NewEntity("Level")), "rolled back names are free again")
}

func TestRemoveIsIdempotent(t *testing.T) {
	m := newTestManager()
	p := newRecorder(models.KindAmmoBox)
	e := models.NewEntity("ammo").AddComponent(p)
	require.NoError(t, m.Add(e))
	require.NoError(t, m.EndSetup())
	id := e.ID()

	require.NoError(t, m.Remove(e))
	require.NoError(t, m.Remove(e))
	assert.Equal(t, 1, p.disposals)
	_, ok := m.Get("ammo")
	assert.False(t, ok)
	_, ok = m.Lookup(id)
	assert.False(t, ok)

	again := models.NewEntity("ammo")
	require.NoError(t, m.Add(again))
	require.NoError(t, m.EndSetup())
	assert.Equal(t, id.Slot(), again.ID().Slot(), "slot is reused")
	_, ok = m.Lookup(id)
	assert.False(t, ok, "stale id does not resolve to the new occupant")
}

func TestDisposeReverseOrder(t *testing.T) {
	m := newTestManager()
	var trace []string
	first, second := newRecorder(models.KindPlayerPhysics), newRecorder(models.KindPlayerControls)
	first.trace, second.trace = &trace, &trace
	e := models.NewEntity("Player").AddComponent(first).AddComponent(second)
	require.NoError(t, m.Add(e))
	require.NoError(t, m.EndSetup())
	trace = nil

	require.NoError(t, m.Remove(e))
	assert.Equal(t, []string{"Player:PlayerControls:dispose", "Player:PlayerPhysics:dispose"}, trace)
}

func TestRemoveLevelKeepsPersistentEntities(t *testing.T) {
	m := newTestManager()
	levelRec, npcRec, ammoRec, spawnRec := newRecorder(models.KindLevelSetup), newRecorder(models.KindCharacterController), newRecorder(models.KindAmmoBox), newRecorder(models.KindHealth)
	player, ui := newRecorder(models.KindPlayerControls), newRecorder(models.KindUIManager)

	level := models.NewEntity("Level").SetLevel("level").AddComponent(levelRec)
	require.NoError(t, m.Add(models.NewEntity("Player").AddComponent(player)))
	require.NoError(t, m.Add(models.NewEntity("UIManager").AddComponent(ui)))
	require.NoError(t, m.Add(level))
	require.NoError(t, m.EndSetup())

	npc := models.NewEntity("npc").SetOwner(level.ID()).AddComponent(npcRec)
	ammo := models.NewEntity("AmmoBox1").SetOwner(level.ID()).AddComponent(ammoRec)
	require.NoError(t, m.Add(npc))
	require.NoError(t, m.Add(ammo))
	require.NoError(t, m.EndSetup())
	spawned := models.NewEntity("npc-minion").SetOwner(npc.ID()).AddComponent(spawnRec)
	require.NoError(t, m.Add(spawned))
	require.NoError(t, m.EndSetup())

	n, err := m.RemoveLevel("level")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	for _, p := range []*recorder{levelRec, npcRec, ammoRec, spawnRec} {
		assert.Equal(t, 1, p.disposals)
	}
	assert.Zero(t, player.disposals)
	assert.Zero(t, ui.disposals)
	assert.Equal(t, 2, m.Len())

	n, err = m.RemoveLevel("level")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = m.RemoveLevel("")
	assert.ErrorIs(t, err, ErrEmptyLevel)
}

// A level entity is torn down and rebuilt: the old setup is disposed exactly
// once, the new one initialized exactly once, and persistent entities keep running.
func TestLevelReload(t *testing.T) {
	m := newTestManager()
	ui := newRecorder(models.KindUIManager)
	require.NoError(t, m.Add(models.NewEntity("UIManager").AddComponent(ui)))

	oldSetup := newRecorder(models.KindLevelSetup)
	require.NoError(t, m.Add(models.NewEntity("Level").SetLevel("level").AddComponent(oldSetup)))
	require.NoError(t, m.EndSetup())
	m.Update(&models.Frame{})

	_, err := m.RemoveLevel("level")
	require.NoError(t, err)
	newSetup := newRecorder(models.KindLevelSetup)
	require.NoError(t, m.Add(models.NewEntity("Level").SetLevel("office").AddComponent(newSetup)))
	require.NoError(t, m.EndSetup())
	m.Update(&models.Frame{})

	assert.Equal(t, 1, oldSetup.disposals)
	assert.Equal(t, 1, oldSetup.frames)
	assert.Equal(t, 1, newSetup.inits)
	assert.Equal(t, 1, newSetup.frames)
	assert.Zero(t, newSetup.disposals)
	assert.Equal(t, 2, ui.frames)

	e, ok := m.Get("Level")
	require.True(t, ok)
	assert.Equal(t, "office", e.Level())
}

func TestStructuralChangesDuringUpdateAreDeferred(t *testing.T) {
	m := newTestManager()
	victim := newRecorder(models.KindAmmoBox)
	victimEntity := models.NewEntity("ammo").AddComponent(victim)
	spawned := newRecorder(models.KindHealth)

	killer := newRecorder(models.KindWeapon)
	killer.onFrame = func(*models.Frame) error {
		if killer.frames > 1 {
			return nil
		}
		reg := killer.Entity().Registry()
		require.NoError(t, reg.Remove(victimEntity))
		require.NoError(t, reg.Add(models.NewEntity("spawn").AddComponent(spawned)))
		require.NoError(t, reg.EndSetup())
		_, ok := reg.Get("spawn")
		assert.False(t, ok, "not visible during the pass")
		return nil
	}

	require.NoError(t, m.Add(models.NewEntity("Player").AddComponent(killer)))
	require.NoError(t, m.Add(victimEntity))
	require.NoError(t, m.EndSetup())

	m.Update(&models.Frame{})
	assert.Equal(t, 1, victim.frames, "victim still updated in the pass it was removed")
	assert.Equal(t, 1, victim.disposals)
	assert.Equal(t, 1, spawned.inits)
	assert.Zero(t, spawned.frames)
	_, ok := m.Get("spawn")
	assert.True(t, ok)

	m.Update(&models.Frame{})
	assert.Equal(t, 1, victim.frames)
	assert.Equal(t, 1, spawned.frames)
}

func TestRemovalDuringPhysicsWaitsForUpdate(t *testing.T) {
	m := newTestManager()
	p := newRecorder(models.KindCharacterCollision)
	e := models.NewEntity("npc").AddComponent(p)
	p.onTick = func() error { return m.Remove(e) }
	require.NoError(t, m.Add(e))
	require.NoError(t, m.EndSetup())

	m.PhysicsUpdate(nil, 1.0/60)
	m.PhysicsUpdate(nil, 1.0/60)
	assert.Equal(t, 2, p.ticks)
	assert.Zero(t, p.disposals)

	m.Update(&models.Frame{})
	assert.Equal(t, 1, p.frames)
	assert.Equal(t, 1, p.disposals)
	assert.Zero(t, m.Len())
}

func TestHookFailuresAreIsolatedAndReportedOnce(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	m := NewManager(log.NewWithCore(core), nil)

	broken := newRecorder(models.KindDirectionDebug)
	broken.onFrame = func(*models.Frame) error { panic("boom") }
	failing := newRecorder(models.KindHealth)
	failing.onFrame = func(*models.Frame) error { return errors.New("bad frame") }
	healthy := newRecorder(models.KindCharacterController)

	require.NoError(t, m.Add(models.NewEntity("npc").AddComponent(broken).AddComponent(failing).AddComponent(healthy)))
	require.NoError(t, m.EndSetup())

	for i := 0; i < 3; i++ {
		m.Update(&models.Frame{})
	}
	assert.Equal(t, 3, healthy.frames)

	d := m.Diagnostics()
	assert.Equal(t, uint64(6), d.FrameFailures)
	assert.Equal(t, uint64(3), d.Panics)
	assert.Equal(t, uint64(3), d.Frames)
	assert.Equal(t, 2, logs.FilterMessage("component hook failed").Len())
}

func TestDisposeFailuresAreCounted(t *testing.T) {
	m := newTestManager()
	p := newRecorder(models.KindLevelSetup)
	p.onDispose = func() error { return errors.New("body still attached") }
	e := models.NewEntity("Level").AddComponent(p)
	require.NoError(t, m.Add(e))
	require.NoError(t, m.EndSetup())

	assert.Error(t, m.Remove(e))
	_, ok := m.Get("Level")
	assert.False(t, ok, "failed dispose still removes")
	assert.Equal(t, uint64(1), m.Diagnostics().DisposeFailures)
}

func TestSubscriptionsCancelledOnRemove(t *testing.T) {
	m := newTestManager()
	hits := 0
	p := newRecorder(models.KindHealth)
	p.onInit = func(models.Registry) error {
		return p.Entity().Subscribe("hit", func(bus.Event) error {
			hits++
			return nil
		})
	}
	e := models.NewEntity("npc").AddComponent(p)
	require.NoError(t, m.Add(e))
	require.NoError(t, m.EndSetup())
	assert.Equal(t, uint64(1), m.Bus().GetMetrics().SubscribersActive)
	require.NoError(t, e.Broadcast("hit", 10))
	assert.Equal(t, 1, hits)

	require.NoError(t, m.Remove(e))
	assert.Zero(t, m.Bus().GetMetrics().SubscribersActive)
}

func TestRemovalFromInitializeAppliesBeforeEndSetupReturns(t *testing.T) {
	m := newTestManager()
	doomed := newRecorder(models.KindAmmoBox)
	doomedEntity := models.NewEntity("AmmoBox0").AddComponent(doomed)
	require.NoError(t, m.Add(doomedEntity))
	require.NoError(t, m.EndSetup())

	collector := newRecorder(models.KindPlayerState)
	collector.onInit = func(r models.Registry) error { return r.Remove(doomedEntity) }
	require.NoError(t, m.Add(models.NewEntity("Player").AddComponent(collector)))
	require.NoError(t, m.EndSetup())

	assert.Equal(t, 1, doomed.disposals)
	_, ok := m.Get("AmmoBox0")
	assert.False(t, ok)

	m.Update(&models.Frame{})
	assert.Zero(t, doomed.frames)
	assert.Equal(t, 1, collector.frames)
}

func TestEndSetupKeepsPhysicsRequestsForUpdate(t *testing.T) {
	m := newTestManager()
	p := newRecorder(models.KindCharacterCollision)
	e := models.NewEntity("npc").AddComponent(p)
	p.onTick = func() error { return m.Remove(e) }
	require.NoError(t, m.Add(e))
	require.NoError(t, m.EndSetup())

	m.PhysicsUpdate(nil, 1.0/60)
	require.NoError(t, m.Add(models.NewEntity("late")))
	require.NoError(t, m.EndSetup())
	assert.Zero(t, p.disposals)

	m.Update(&models.Frame{})
	assert.Equal(t, 1, p.disposals)
}

func TestRemoveForgetsFailureReports(t *testing.T) {
	m := newTestManager()
	failing := newRecorder(models.KindHealth)
	failing.onFrame = func(*models.Frame) error { return errors.New("bad frame") }
	e := models.NewEntity("npc").AddComponent(failing)
	require.NoError(t, m.Add(e))
	require.NoError(t, m.EndSetup())

	m.Update(&models.Frame{})
	m.Update(&models.Frame{})
	assert.Len(t, m.reported, 1)

	require.NoError(t, m.Remove(e))
	assert.Empty(t, m.reported)
}

func TestRenameMovesOwnSubscriptions(t *testing.T) {
	m := newTestManager()
	hits := 0
	p := newRecorder(models.KindHealth)
	p.onInit = func(models.Registry) error {
		return p.Entity().Subscribe("hit", func(bus.Event) error {
			hits++
			return nil
		})
	}
	e := models.NewEntity("Mutant0").AddComponent(p)
	require.NoError(t, m.Add(e))
	require.NoError(t, m.EndSetup())

	require.NoError(t, e.SetName("Boss"))
	_, ok := m.Get("Boss")
	assert.True(t, ok)
	_, ok = m.Get("Mutant0")
	assert.False(t, ok)

	require.NoError(t, m.Bus().PublishToTopic("Mutant0", bus.NewEvent("hit", "test", nil)))
	assert.Zero(t, hits)
	require.NoError(t, m.Bus().PublishToTopic("Boss", bus.NewEvent("hit", "test", nil)))
	assert.Equal(t, 1, hits)
	assert.Equal(t, uint64(1), m.Bus().GetMetrics().SubscribersActive)

	require.NoError(t, m.Remove(e))
	assert.Zero(t, m.Bus().GetMetrics().SubscribersActive)
}
