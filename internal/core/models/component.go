package models

import (
	"fmt"

	"github.com/zeusync/scenekit/internal/core/input"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

// Kind is the closed set of component tags. An entity holds at most one
// component of each kind.
type Kind uint8

const (
	KindUnknown Kind = iota

	KindLevelSetup
	KindNavmesh
	KindBulletDecals
	KindSky

	KindPlayerPhysics
	KindPlayerControls
	KindWeapon
	KindPlayerHealth
	KindPlayerState

	KindCharacterController
	KindHealth
	KindAttackTrigger
	KindCharacterCollision
	KindDirectionDebug

	KindAmmoBox
	KindUIManager

	kindCount
)

var kindNames = [kindCount]string{
	KindUnknown:             "Unknown",
	KindLevelSetup:          "LevelSetup",
	KindNavmesh:             "Navmesh",
	KindBulletDecals:        "BulletDecals",
	KindSky:                 "Sky",
	KindPlayerPhysics:       "PlayerPhysics",
	KindPlayerControls:      "PlayerControls",
	KindWeapon:              "Weapon",
	KindPlayerHealth:        "PlayerHealth",
	KindPlayerState:         "PlayerState",
	KindCharacterController: "CharacterController",
	KindHealth:              "Health",
	KindAttackTrigger:       "AttackTrigger",
	KindCharacterCollision:  "CharacterCollision",
	KindDirectionDebug:      "DirectionDebug",
	KindAmmoBox:             "AmmoBox",
	KindUIManager:           "UIManager",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Component is a unit of data and behavior attached to exactly one entity.
// Behavior is opted into through the capability interfaces below.
type Component interface {
	Kind() Kind
	Bind(entity *Entity)
	Entity() *Entity
}

// Initializer resolves siblings and other entities once, after the entity
// is committed.
type Initializer interface {
	Initialize(registry Registry) error
}

// FrameUpdater runs once per rendered frame, after all physics substeps.
type FrameUpdater interface {
	FrameUpdate(frame *Frame) error
}

// PhysicsTicker runs once per physics substep with the fixed step.
type PhysicsTicker interface {
	PhysicsTick(world physics.World, timeStep float64) error
}

// Disposer releases bodies, nodes and subscriptions. It is called at most once.
type Disposer interface {
	Dispose() error
}

// Frame is the per-frame context passed to FrameUpdate hooks.
type Frame struct {
	Delta   float64
	Elapsed float64
	Count   uint64
	Input   input.Snapshot
}

// Base carries the entity back-reference. Components embed it.
type Base struct {
	entity *Entity
}

func (b *Base) Bind(entity *Entity) { b.entity = entity }
func (b *Base) Entity() *Entity     { return b.entity }

// ComponentAs returns the component of the given kind asserted to T.
func ComponentAs[T any](e *Entity, kind Kind) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	c, ok := e.GetComponent(kind)
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}

// Require is ComponentAs that reports a missing sibling as an error.
func Require[T any](e *Entity, kind Kind) (T, error) {
	t, ok := ComponentAs[T](e, kind)
	if !ok {
		name := "<nil>"
		if e != nil {
			name = e.Name()
		}
		return t, fmt.Errorf("%w: %s on %q", ErrMissingComponent, kind, name)
	}
	return t, nil
}
