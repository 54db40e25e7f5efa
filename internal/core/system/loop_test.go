package system

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/scenekit/internal/core/input"
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/observability/log"
	"github.com/zeusync/scenekit/internal/core/scene"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

func newTestLoop(t *testing.T) (*Loop, *Manager, *physics.DiscreteWorld, *scene.NopRenderer, *input.State) {
	t.Helper()
	m := newTestManager()
	world := physics.NewDiscreteWorld(physics.DefaultWorldConfig())
	renderer := &scene.NopRenderer{}
	state := input.NewState()
	l := NewLoop(DefaultLoopConfig(), m, world, renderer, scene.NewGraph(), scene.NewCamera(), state, log.Nop())
	return l, m, world, renderer, state
}

func TestStepRunsPhysicsThenFrameThenRender(t *testing.T) {
	l, m, world, renderer, _ := newTestLoop(t)
	p := newRecorder(models.KindPlayerControls)
	framesAtTick := -1
	p.onTick = func() error {
		framesAtTick = p.frames
		return nil
	}
	require.NoError(t, m.Add(models.NewEntity("Player").AddComponent(p)))
	require.NoError(t, m.EndSetup())

	substeps, err := l.Step(1.0 / 30.0)
	require.NoError(t, err)
	assert.Equal(t, 2, substeps)
	assert.Equal(t, 2, p.ticks)
	assert.Equal(t, 1, p.frames)
	assert.Zero(t, framesAtTick, "physics ticks run before the frame hook")
	assert.Equal(t, uint64(1), renderer.Frames)
	assert.Equal(t, uint64(2), world.Substeps())
}

func TestStepClampsFrameDelta(t *testing.T) {
	l, m, _, _, _ := newTestLoop(t)
	p := newRecorder(models.KindPlayerControls)
	var delta float64
	p.onFrame = func(f *models.Frame) error {
		delta = f.Delta
		return nil
	}
	require.NoError(t, m.Add(models.NewEntity("Player").AddComponent(p)))
	require.NoError(t, m.EndSetup())

	substeps, err := l.Step(1.5)
	require.NoError(t, err)
	assert.Equal(t, 2, substeps)
	assert.InDelta(t, 1.0/30.0, delta, 1e-12)
	assert.InDelta(t, 1.0/30.0, l.Elapsed(), 1e-12)
}

func TestStepSnapshotsInput(t *testing.T) {
	l, m, _, _, state := newTestLoop(t)
	p := newRecorder(models.KindPlayerControls)
	var seen []input.Snapshot
	p.onFrame = func(f *models.Frame) error {
		seen = append(seen, f.Input)
		return nil
	}
	require.NoError(t, m.Add(models.NewEntity("Player").AddComponent(p)))
	require.NoError(t, m.EndSetup())

	state.KeyDown(input.KeyW)
	state.Move(4, 0)
	_, err := l.Step(1.0 / 60.0)
	require.NoError(t, err)
	_, err = l.Step(1.0 / 60.0)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.True(t, seen[0].KeyDown(input.KeyW))
	assert.Equal(t, 4.0, seen[0].LookX)
	assert.True(t, seen[1].KeyDown(input.KeyW))
	assert.Zero(t, seen[1].LookX, "look delta is consumed by the first snapshot")
}

func TestDoRunsBeforeNextFrame(t *testing.T) {
	l, _, _, _, _ := newTestLoop(t)
	ran := 0
	require.NoError(t, l.Do(func() { ran++ }))
	assert.Zero(t, ran)
	_, err := l.Step(0)
	require.NoError(t, err)
	assert.Equal(t, 1, ran)
}

func TestRunStopsOnCancel(t *testing.T) {
	l, _, _, renderer, _ := newTestLoop(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, l.Running, time.Second, time.Millisecond)
	executed := make(chan struct{})
	require.NoError(t, l.Do(func() { close(executed) }))
	select {
	case <-executed:
	case <-time.After(time.Second):
		t.Fatal("command not executed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	assert.False(t, l.Running())
	assert.Positive(t, renderer.Frames)
}
