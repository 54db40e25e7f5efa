package models

import (
	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/observability/log"
)

// Registry is the entity manager as seen by components. Lookups only see
// committed entities; structural calls made from inside a hook are deferred.
type Registry interface {
	Get(name string) (*Entity, bool)
	Lookup(id EntityID) (*Entity, bool)

	Add(entity *Entity) error
	EndSetup() error
	Remove(entity *Entity) error
	RemoveLevel(tag string) (int, error)

	// Rename moves a registered entity to a new unique name.
	Rename(entity *Entity, name string) error

	Bus() bus.EventBus
	Logger() log.Log
}
