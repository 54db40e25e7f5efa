package player

import "github.com/zeusync/scenekit/internal/core/models"

type Life uint8

const (
	Alive Life = iota
	Dead
)

func (l Life) String() string {
	if l == Dead {
		return "dead"
	}
	return "alive"
}

// PlayerState is the coarse player lifecycle. A dead player ignores
// control input and cannot fire.
type PlayerState struct {
	models.Base
	life Life
}

func NewPlayerState() *PlayerState { return &PlayerState{} }

func (s *PlayerState) Kind() models.Kind { return models.KindPlayerState }

func (s *PlayerState) Life() Life  { return s.life }
func (s *PlayerState) Alive() bool { return s.life == Alive }
func (s *PlayerState) Kill()       { s.life = Dead }
