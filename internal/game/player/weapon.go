package player

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/scenekit/internal/core/events"
	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/input"
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/scene"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

// Weapon fires ray-cast shots from the camera while the primary button is
// held. Whatever entity owns the first body along the ray receives a hit
// event on its topic.
type Weapon struct {
	models.Base
	config WeaponConfig
	world  physics.World
	graph  *scene.Graph
	camera *scene.Camera
	model  *scene.Node
	flash  *scene.Node

	physics  *PlayerPhysics
	controls *PlayerControls
	state    *PlayerState

	magazine  int
	reserve   int
	cooldown  float64
	reloading float64
	flashLeft float64
	shots     uint64
}

// NewWeapon builds the weapon. A nil flash gets an empty node.
func NewWeapon(config WeaponConfig, world physics.World, graph *scene.Graph, camera *scene.Camera, model, flash *scene.Node) *Weapon {
	w := &Weapon{
		config:   config,
		world:    world,
		graph:    graph,
		camera:   camera,
		model:    model,
		magazine: config.MagazineSize,
		reserve:  config.Reserve,
	}
	if flash == nil {
		flash = scene.NewNode("muzzleFlash")
	}
	w.flash = flash
	w.flash.Visible = false
	if model != nil {
		model.Add(w.flash)
	}
	return w
}

func (w *Weapon) Kind() models.Kind { return models.KindWeapon }

func (w *Weapon) Initialize(models.Registry) error {
	switch {
	case w.world == nil:
		return ErrNilWorld
	case w.camera == nil:
		return ErrNilCamera
	}
	e := w.Entity()
	var err error
	if w.physics, err = models.Require[*PlayerPhysics](e, models.KindPlayerPhysics); err != nil {
		return err
	}
	w.controls, _ = models.ComponentAs[*PlayerControls](e, models.KindPlayerControls)
	w.state, _ = models.ComponentAs[*PlayerState](e, models.KindPlayerState)

	if w.model != nil && w.graph != nil {
		if err := w.graph.Add(w.model); err != nil {
			return err
		}
	}
	if err := e.Subscribe(events.AmmoPickup, func(ev bus.Event) error {
		if pickup, ok := ev.Data().(events.AmmoPickupData); ok && pickup.Rounds > 0 {
			w.reserve += pickup.Rounds
			return w.broadcast()
		}
		return nil
	}); err != nil {
		return err
	}
	return w.broadcast()
}

func (w *Weapon) FrameUpdate(frame *models.Frame) error {
	dt := frame.Delta
	w.cooldown -= dt
	if w.flashLeft > 0 {
		w.flashLeft -= dt
		if w.flashLeft <= 0 {
			w.flash.Visible = false
		}
	}
	if w.model != nil {
		w.model.Position = w.camera.Position
		w.model.Rotation = w.camera.Rotation
	}

	if w.reloading > 0 {
		w.reloading -= dt
		if w.reloading <= 0 {
			w.finishReload()
			return w.broadcast()
		}
		return nil
	}
	if !w.armed() {
		return nil
	}

	in := frame.Input
	if in.KeyDown(input.KeyR) && w.canReload() {
		w.reloading = w.config.ReloadTime
		return w.broadcast()
	}
	if in.ButtonDown(input.ButtonPrimary) && w.cooldown <= 0 && w.magazine > 0 {
		return w.fire()
	}
	return nil
}

func (w *Weapon) armed() bool {
	if w.state != nil && !w.state.Alive() {
		return false
	}
	return w.controls == nil || w.controls.Enabled()
}

func (w *Weapon) canReload() bool {
	return w.magazine < w.config.MagazineSize && w.reserve > 0
}

func (w *Weapon) finishReload() {
	w.reloading = 0
	n := min(w.config.MagazineSize-w.magazine, w.reserve)
	w.magazine += n
	w.reserve -= n
}

func (w *Weapon) fire() error {
	w.magazine--
	w.shots++
	w.cooldown = w.config.FireInterval
	w.flashLeft = w.config.FlashTime
	w.flash.Visible = true

	from := w.camera.Position
	to := from.Add(w.camera.Forward().Mul(w.config.Range))
	hitErr := w.shoot(from, to)
	if err := w.broadcast(); err != nil {
		return err
	}
	return hitErr
}

func (w *Weapon) shoot(from, to mgl64.Vec3) error {
	hit, ok := w.world.RayTest(from, to, w.physics.Body())
	if !ok {
		return nil
	}
	e := w.Entity()
	reg := e.Registry()
	target, ok := reg.Lookup(models.EntityID(hit.Body.Owner()))
	if !ok {
		return nil
	}
	data := events.HitData{Damage: w.config.Damage, Source: e.Name(), Point: hit.Point}
	return reg.Bus().PublishToTopic(target.Name(), bus.NewEvent(events.Hit, e.Name(), data))
}

func (w *Weapon) broadcast() error {
	return w.Entity().Broadcast(events.AmmoChanged, events.AmmoData{
		Magazine:  w.magazine,
		Reserve:   w.reserve,
		Reloading: w.reloading > 0,
	})
}

func (w *Weapon) Magazine() int      { return w.magazine }
func (w *Weapon) Reserve() int       { return w.reserve }
func (w *Weapon) Reloading() bool    { return w.reloading > 0 }
func (w *Weapon) Shots() uint64      { return w.shots }
func (w *Weapon) Flash() *scene.Node { return w.flash }

func (w *Weapon) Dispose() error {
	if w.model != nil && w.graph != nil && w.graph.Contains(w.model) {
		return w.graph.Remove(w.model)
	}
	return nil
}
