package player

import "errors"

var (
	ErrNilWorld  = errors.New("physics world is nil")
	ErrNilCamera = errors.New("camera is nil")
	ErrNilGraph  = errors.New("scene graph is nil")
)
