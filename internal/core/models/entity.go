package models

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/scenekit/internal/core/events/bus"
)

// Entity is a named container of components with a transform.
// The component bag is mutable only until the manager commits the entity.
type Entity struct {
	id    EntityID
	name  string
	level string
	owner EntityID

	position mgl64.Vec3
	rotation mgl64.Quat

	components []Component
	byKind     map[Kind]Component

	registry  Registry
	committed bool
	disposed  bool
	setupErr  error
	subs      []subscription
}

type subscription struct {
	bus.Subscription
	handler bus.EventHandler
}

func NewEntity(name string) *Entity {
	return &Entity{
		name:     name,
		rotation: mgl64.QuatIdent(),
		byKind:   make(map[Kind]Component),
	}
}

func (e *Entity) ID() EntityID { return e.id }
func (e *Entity) Name() string { return e.name }

// SetName renames the entity. Once registered, the manager checks uniqueness.
func (e *Entity) SetName(name string) error {
	if e.registry != nil {
		return e.registry.Rename(e, name)
	}
	e.name = name
	return nil
}

// Level returns the level tag; empty means the entity survives level changes.
func (e *Entity) Level() string { return e.level }

// SetLevel tags the entity as belonging to a level.
func (e *Entity) SetLevel(tag string) *Entity {
	e.level = tag
	return e
}

// Owner is the entity this one was spawned by, zero if none. Removing the
// owner's level removes its dependents too.
func (e *Entity) Owner() EntityID { return e.owner }

func (e *Entity) SetOwner(id EntityID) *Entity {
	e.owner = id
	return e
}

func (e *Entity) Position() mgl64.Vec3     { return e.position }
func (e *Entity) SetPosition(p mgl64.Vec3) { e.position = p }
func (e *Entity) Rotation() mgl64.Quat     { return e.rotation }
func (e *Entity) SetRotation(q mgl64.Quat) { e.rotation = q }

// Forward is the +Z axis rotated by the entity rotation.
func (e *Entity) Forward() mgl64.Vec3 { return e.rotation.Rotate(mgl64.Vec3{0, 0, 1}) }

func (e *Entity) Committed() bool    { return e.committed }
func (e *Entity) Disposed() bool     { return e.disposed }
func (e *Entity) Registry() Registry { return e.registry }

// Components returns the components in registration order.
func (e *Entity) Components() []Component { return slices.Clone(e.components) }

func (e *Entity) HasComponent(kind Kind) bool {
	_, ok := e.byKind[kind]
	return ok
}

// AddComponent attaches c and binds its back-reference. Problems are
// recorded on the entity and surface from Manager.Add, so calls chain.
func (e *Entity) AddComponent(c Component) *Entity {
	switch {
	case c == nil:
		e.setupErr = errors.Join(e.setupErr, ErrNilComponent)
	case e.committed:
		e.setupErr = errors.Join(e.setupErr, fmt.Errorf("add %s to %q: %w", c.Kind(), e.name, ErrEntitySealed))
	case e.HasComponent(c.Kind()):
		e.setupErr = errors.Join(e.setupErr, fmt.Errorf("add %s to %q: %w", c.Kind(), e.name, ErrDuplicateComponent))
	default:
		c.Bind(e)
		e.byKind[c.Kind()] = c
		e.components = append(e.components, c)
	}
	return e
}

func (e *Entity) GetComponent(kind Kind) (Component, bool) {
	c, ok := e.byKind[kind]
	return c, ok
}

// Err returns the accumulated setup error.
func (e *Entity) Err() error { return e.setupErr }

// Broadcast publishes an event on the entity's own topic.
func (e *Entity) Broadcast(eventType string, data any) error {
	if e.registry == nil {
		return ErrNotRegistered
	}
	return e.registry.Bus().PublishToTopic(e.name, bus.NewEvent(eventType, e.name, data))
}

// Subscribe listens for eventType on the entity's own topic.
func (e *Entity) Subscribe(eventType string, handler bus.EventHandler) error {
	return e.SubscribeTo(e.name, eventType, handler)
}

// SubscribeTo listens on another entity's topic. The subscription is
// cancelled when this entity is disposed.
func (e *Entity) SubscribeTo(topic, eventType string, handler bus.EventHandler) error {
	if e.registry == nil {
		return ErrNotRegistered
	}
	sub, err := e.registry.Bus().SubscribeTopic(topic, eventType, handler)
	if err != nil {
		return err
	}
	e.subs = append(e.subs, subscription{Subscription: sub, handler: handler})
	return nil
}

// MoveSubscriptions re-registers the subscriptions held on the old topic
// under the entity's current name.
func (e *Entity) MoveSubscriptions(old string) error {
	if e.registry == nil || old == e.name {
		return nil
	}
	var all error
	for i, sub := range e.subs {
		if sub.Topic() != old {
			continue
		}
		all = errors.Join(all, sub.Cancel())
		moved, err := e.registry.Bus().SubscribeTopic(e.name, sub.EventType(), sub.handler)
		if err != nil {
			all = errors.Join(all, err)
			continue
		}
		e.subs[i] = subscription{Subscription: moved, handler: sub.handler}
	}
	return all
}

// The methods below are the manager's side of the lifecycle.

// Attach binds the entity to a registry and assigns its id.
func (e *Entity) Attach(registry Registry, id EntityID) {
	e.registry = registry
	e.id = id
}

// Detach clears the registry binding after removal.
func (e *Entity) Detach() {
	e.registry = nil
}

// AssignName sets the name without a uniqueness check.
func (e *Entity) AssignName(name string) { e.name = name }

// Seal commits the entity; its component bag no longer changes.
func (e *Entity) Seal() { e.committed = true }

// MarkDisposed reports whether this call transitioned the entity to disposed.
func (e *Entity) MarkDisposed() bool {
	if e.disposed {
		return false
	}
	e.disposed = true
	return true
}

// CancelSubscriptions drops every subscription taken through the entity.
func (e *Entity) CancelSubscriptions() error {
	var all error
	for _, sub := range e.subs {
		all = errors.Join(all, sub.Cancel())
	}
	e.subs = nil
	return all
}
