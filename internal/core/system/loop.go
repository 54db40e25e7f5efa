package system

import (
	"context"
	"sync"
	"time"

	"github.com/zeusync/scenekit/internal/core/input"
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/observability/log"
	"github.com/zeusync/scenekit/internal/core/scene"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

// LoopConfig configures the frame loop.
type LoopConfig struct {
	// MaxFrameDelta clamps the wall-clock delta handed to a single frame.
	MaxFrameDelta float64
	// MaxSubSteps bounds the physics substeps per frame.
	MaxSubSteps int
	// FrameRate is the target frames per second of Run.
	FrameRate int
	// CommandBuffer is the capacity of the Do queue.
	CommandBuffer int
}

func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		MaxFrameDelta: 1.0 / 30.0,
		MaxSubSteps:   10,
		FrameRate:     60,
		CommandBuffer: 64,
	}
}

// Loop is the frame scheduler: each Step steps physics (whose substeps
// invoke Manager.PhysicsUpdate), then runs Manager.Update once, then renders.
type Loop struct {
	config   LoopConfig
	manager  *Manager
	world    physics.World
	renderer scene.Renderer
	graph    *scene.Graph
	camera   *scene.Camera
	input    input.Source
	logger   log.Log

	commands chan func()

	mu      sync.Mutex
	running bool

	frames  uint64
	elapsed float64
}

// NewLoop wires the manager as the world's only tick callback.
func NewLoop(config LoopConfig, manager *Manager, world physics.World, renderer scene.Renderer, graph *scene.Graph, camera *scene.Camera, source input.Source, logger log.Log) *Loop {
	defaults := DefaultLoopConfig()
	if config.MaxFrameDelta <= 0 {
		config.MaxFrameDelta = defaults.MaxFrameDelta
	}
	if config.FrameRate <= 0 {
		config.FrameRate = defaults.FrameRate
	}
	if config.CommandBuffer <= 0 {
		config.CommandBuffer = defaults.CommandBuffer
	}
	if renderer == nil {
		renderer = &scene.NopRenderer{}
	}
	if logger == nil {
		logger = log.Nop()
	}

	world.SetInternalTickCallback(manager)
	return &Loop{
		config:   config,
		manager:  manager,
		world:    world,
		renderer: renderer,
		graph:    graph,
		camera:   camera,
		input:    source,
		logger:   logger.With(log.String("component", "loop")),
		commands: make(chan func(), config.CommandBuffer),
	}
}

func (l *Loop) World() physics.World { return l.world }
func (l *Loop) Manager() *Manager    { return l.manager }
func (l *Loop) Frames() uint64       { return l.frames }
func (l *Loop) Elapsed() float64     { return l.elapsed }

func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Step advances one frame by dt seconds and returns the physics substeps taken.
func (l *Loop) Step(dt float64) (int, error) {
	l.drain()

	if dt < 0 {
		dt = 0
	}
	if dt > l.config.MaxFrameDelta {
		dt = l.config.MaxFrameDelta
	}

	var snapshot input.Snapshot
	if l.input != nil {
		snapshot = l.input.Snapshot()
	}

	substeps := l.world.StepSimulation(dt, l.config.MaxSubSteps)

	l.frames++
	l.elapsed += dt
	l.manager.Update(&models.Frame{
		Delta:   dt,
		Elapsed: l.elapsed,
		Count:   l.frames,
		Input:   snapshot,
	})

	return substeps, l.renderer.Render(l.graph, l.camera)
}

// Do queues fn to run on the loop goroutine before the next frame.
func (l *Loop) Do(fn func()) error {
	select {
	case l.commands <- fn:
		return nil
	default:
		return ErrCommandQueueFull
	}
}

func (l *Loop) drain() {
	for {
		select {
		case fn := <-l.commands:
			fn()
		default:
			return
		}
	}
}

// Run steps frames at the configured rate until ctx is cancelled. Render
// errors are logged and do not stop the loop. Queued commands are drained
// before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrLoopRunning
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
		l.drain()
	}()

	ticker := time.NewTicker(time.Second / time.Duration(l.config.FrameRate))
	defer ticker.Stop()

	l.logger.Info("loop started", log.Int("frame_rate", l.config.FrameRate))
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("loop stopped", log.Uint64("frames", l.frames))
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if _, err := l.Step(dt); err != nil {
				l.logger.Warn("render failed", log.Error(err))
			}
		}
	}
}
