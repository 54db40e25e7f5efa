package npc

import "errors"

var (
	ErrNoTarget   = errors.New("npc target entity not found")
	ErrNoNavmesh  = errors.New("npc navmesh not found")
	ErrNoBody     = errors.New("npc body not in world")
	ErrNoClip     = errors.New("npc animation clip missing")
	ErrBadConfig  = errors.New("invalid npc configuration")
	ErrNilScene   = errors.New("scene graph is nil")
	ErrNilPhysics = errors.New("physics world is nil")
)
