package system

import "errors"

var (
	ErrNilEntity         = errors.New("entity is nil")
	ErrEmptyName         = errors.New("entity name is empty")
	ErrDuplicateName     = errors.New("entity name already in use")
	ErrAlreadyRegistered = errors.New("entity already registered")
	ErrEmptyLevel        = errors.New("level tag is empty")
	ErrHookPanic         = errors.New("component hook panicked")
	ErrLoopRunning       = errors.New("loop already running")
	ErrCommandQueueFull  = errors.New("loop command queue is full")
)
