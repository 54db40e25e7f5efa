package game

import "errors"

var (
	ErrNoSession     = errors.New("no game session")
	ErrLevelNotFound = errors.New("level not found")
	ErrNoPlayer      = errors.New("player entity missing")
)
