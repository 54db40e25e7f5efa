package physics

import "errors"

var (
	ErrWorldLocked  = errors.New("physics world is stepping")
	ErrNilBody      = errors.New("body is nil")
	ErrBodyExists   = errors.New("body already added to world")
	ErrBodyNotFound = errors.New("body not in world")
)
