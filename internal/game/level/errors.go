package level

import "errors"

var (
	ErrNilModel   = errors.New("level model is nil")
	ErrNilNavmesh = errors.New("navigation graph is nil")
	ErrNilWorld   = errors.New("physics world is nil")
	ErrNilGraph   = errors.New("scene graph is nil")
)
