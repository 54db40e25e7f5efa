// Package game assembles a playable session from configuration and the
// preloaded asset table, and exposes the control operations the console
// drives.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/zeusync/scenekit/internal/config"
	"github.com/zeusync/scenekit/internal/core/assets"
	"github.com/zeusync/scenekit/internal/core/input"
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/observability/log"
	"github.com/zeusync/scenekit/internal/core/scene"
	"github.com/zeusync/scenekit/internal/core/system"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
	"github.com/zeusync/scenekit/internal/game/builtin"
	"github.com/zeusync/scenekit/internal/game/level"
	"github.com/zeusync/scenekit/internal/game/player"
	"github.com/zeusync/scenekit/internal/game/ui"
)

// Session is one started game: its world, scene and entities.
type Session struct {
	ID      string
	Assets  *assets.Table
	World   *physics.DiscreteWorld
	Graph   *scene.Graph
	Camera  *scene.Camera
	Manager *system.Manager
	Loop    *system.Loop
	Level   string
}

// App owns the current session and the goroutine running its loop. Every
// operation that touches the session while the loop runs is marshalled
// onto the loop goroutine.
type App struct {
	config   *config.Config
	logger   log.Log
	loader   *assets.Loader
	requests []assets.Request
	renderer scene.Renderer
	input    *input.State

	mu      sync.Mutex
	session *Session
	cancel  context.CancelFunc
	done    chan error
}

func NewApp(cfg *config.Config, logger log.Log, renderer scene.Renderer, requests []assets.Request) *App {
	if logger == nil {
		logger = log.Nop()
	}
	return &App{
		config:   cfg,
		logger:   logger.With(log.String("component", "game")),
		loader:   assets.NewLoader(assets.LoaderConfig{Concurrency: cfg.Assets.Concurrency}, logger),
		requests: requests,
		renderer: renderer,
		input:    input.NewState(),
	}
}

// Input is the device state hosts feed key and pointer events into.
func (a *App) Input() *input.State { return a.input }

// Session returns the current session, or nil before StartGame.
func (a *App) Session() *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// StartGame preloads every asset, then replaces the current session with a
// fresh world holding the persistent entities and the default level. A
// running loop is restarted on the new session.
func (a *App) StartGame(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	table, err := a.loader.Preload(ctx, a.requests, func(name string, done, total int) {
		a.logger.Debug("asset loaded", log.String("asset", name), log.Int("done", done), log.Int("total", total))
	})
	if err != nil {
		return err
	}

	s, err := a.newSession(table)
	if err != nil {
		return err
	}

	wasRunning := a.cancel != nil
	if err := a.stopLocked(); err != nil {
		a.logger.Warn("loop stopped with error", log.Error(err))
	}
	if a.session != nil {
		a.teardown(a.session)
	}
	a.session = s
	a.logger.Info("game started", log.String("session", s.ID), log.String("level", s.Level), log.Int("entities", s.Manager.Len()))
	if wasRunning {
		a.startLocked()
	}
	return nil
}

func (a *App) newSession(table *assets.Table) (*Session, error) {
	rt := a.config.Runtime
	id := uuid.NewString()
	logger := a.logger.With(log.String("session", id))

	world := physics.NewDiscreteWorld(physics.WorldConfig{FixedTimeStep: rt.FixedStep, Gravity: a.config.Physics.Gravity})
	graph := scene.NewGraph()
	camera := scene.NewCamera()
	manager := system.NewManager(logger, nil)
	loopConfig := system.DefaultLoopConfig()
	loopConfig.MaxFrameDelta = rt.MaxFrameDelta
	loopConfig.MaxSubSteps = rt.MaxSubSteps
	loopConfig.FrameRate = rt.FrameRate

	s := &Session{
		ID:      id,
		Assets:  table,
		World:   world,
		Graph:   graph,
		Camera:  camera,
		Manager: manager,
		Loop:    system.NewLoop(loopConfig, manager, world, a.renderer, graph, camera, a.input, logger),
	}
	if err := graph.Add(camera.Node); err != nil {
		return nil, err
	}
	if err := a.setupEntities(s); err != nil {
		return nil, fmt.Errorf("setup entities: %w", err)
	}
	return s, nil
}

// setupEntities adds the persistent entities and the default level in one
// batch so every Initialize sees all of them.
func (a *App) setupEntities(s *Session) error {
	name := a.config.DefaultLevel
	spawns, err := a.levelEntities(s, name)
	if err != nil {
		return err
	}

	persistent := []*models.Entity{ui.New(player.Name)}
	if dome, err := s.Assets.Model(builtin.Sky); err == nil {
		persistent = append(persistent, level.NewSkyEntity(s.Graph, dome, s.Camera))
	}
	deps := player.Deps{World: s.World, Graph: s.Graph, Camera: s.Camera}
	if weapon, err := s.Assets.Model(builtin.AK47); err == nil {
		deps.Weapon = weapon
		deps.Flash, _ = s.Assets.Model(builtin.MuzzleFlash)
	}
	p, err := player.New(a.config.Player, a.config.Weapon, deps)
	if err != nil {
		return err
	}
	persistent = append(persistent, p)

	if err := install(s, append(persistent, spawns...)); err != nil {
		return err
	}
	s.Level = name
	return nil
}

// LoadLevel replaces the current level. The level is resolved, built and
// its names checked before the old one is torn down, so an unknown or
// clashing level leaves the session untouched. If the new level fails to
// commit, the previous level is rebuilt.
func (a *App) LoadLevel(ctx context.Context, name string) error {
	return a.exec(ctx, func(s *Session) error {
		spawns, err := a.levelEntities(s, name)
		if err != nil {
			return err
		}
		if err := checkNames(s, spawns); err != nil {
			return fmt.Errorf("load level %s: %w", name, err)
		}

		prev := s.Level
		if prev != "" {
			n, err := s.Manager.RemoveLevel(prev)
			if err != nil {
				a.logger.Warn("level unload incomplete", log.String("level", prev), log.Error(err))
			}
			a.logger.Info("level unloaded", log.String("level", prev), log.Int("entities", n))
			s.Level = ""
		}
		if err := install(s, spawns); err != nil {
			err = fmt.Errorf("load level %s: %w", name, err)
			if prev != "" {
				if rerr := a.restoreLevel(s, prev); rerr != nil {
					return errors.Join(err, fmt.Errorf("restore level %s: %w", prev, rerr))
				}
			}
			return err
		}
		s.Level = name
		a.logger.Info("level loaded", log.String("level", name), log.Int("entities", len(spawns)))
		return nil
	})
}

func (a *App) restoreLevel(s *Session, name string) error {
	spawns, err := a.levelEntities(s, name)
	if err != nil {
		return err
	}
	if err := install(s, spawns); err != nil {
		return err
	}
	s.Level = name
	a.logger.Warn("level restored", log.String("level", name))
	return nil
}

// ToggleControl captures or releases control input and returns whether
// controls are now enabled. Releasing drops every held key.
func (a *App) ToggleControl(ctx context.Context) (bool, error) {
	var enabled bool
	err := a.exec(ctx, func(s *Session) error {
		e, ok := s.Manager.Get(player.Name)
		if !ok {
			return ErrNoPlayer
		}
		controls, err := models.Require[*player.PlayerControls](e, models.KindPlayerControls)
		if err != nil {
			return err
		}
		enabled = !controls.Enabled()
		controls.SetEnabled(enabled)
		if !enabled {
			a.input.Clear()
		}
		return nil
	})
	return enabled, err
}

// StartLoop runs the session loop on its own goroutine.
func (a *App) StartLoop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return ErrNoSession
	}
	if a.cancel != nil {
		return system.ErrLoopRunning
	}
	a.startLocked()
	return nil
}

func (a *App) startLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	loop := a.session.Loop
	go func() { done <- loop.Run(ctx) }()
	a.cancel, a.done = cancel, done
}

// StopLoop stops the loop and waits for its goroutine. Stopping a stopped
// loop is a no-op.
func (a *App) StopLoop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopLocked()
}

func (a *App) stopLocked() error {
	if a.cancel == nil {
		return nil
	}
	a.cancel()
	err := <-a.done
	a.cancel, a.done = nil, nil
	return err
}

// Running reports whether the loop goroutine is active.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

// Close stops the loop and disposes the session.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.stopLocked()
	if a.session != nil {
		a.teardown(a.session)
		a.session = nil
	}
	return err
}

func (a *App) teardown(s *Session) {
	if err := s.Manager.Clear(); err != nil {
		a.logger.Warn("session teardown", log.String("session", s.ID), log.Error(err))
	}
}

// exec runs fn against the current session. While the loop runs, fn is
// queued onto the loop goroutine and exec waits for it or for ctx.
func (a *App) exec(ctx context.Context, fn func(*Session) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.session
	if s == nil {
		return ErrNoSession
	}
	if a.cancel == nil {
		return fn(s)
	}

	result := make(chan error, 1)
	if err := s.Loop.Do(func() { result <- fn(s) }); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
