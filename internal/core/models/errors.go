package models

import "errors"

var (
	ErrNilComponent       = errors.New("component is nil")
	ErrDuplicateComponent = errors.New("component kind already attached")
	ErrEntitySealed       = errors.New("entity is committed, component bag is sealed")
	ErrNotRegistered      = errors.New("entity is not registered with a manager")
	ErrMissingComponent   = errors.New("required component is missing")
	ErrMissingEntity      = errors.New("required entity is missing")
)
