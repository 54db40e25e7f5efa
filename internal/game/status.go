package game

import (
	"context"
	"fmt"

	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/system"
	"github.com/zeusync/scenekit/internal/game/ui"
)

// Status is a point-in-time view of the session.
type Status struct {
	Session     string             `json:"session"`
	Level       string             `json:"level"`
	Running     bool               `json:"running"`
	Frames      uint64             `json:"frames"`
	Entities    int                `json:"entities"`
	Bodies      int                `json:"bodies"`
	HUD         ui.HUD             `json:"hud"`
	Diagnostics system.Diagnostics `json:"diagnostics"`
}

func (s Status) String() string {
	state := "stopped"
	if s.Running {
		state = "running"
	}
	return fmt.Sprintf("session %s level %s %s frames %d entities %d bodies %d | %s",
		s.Session, s.Level, state, s.Frames, s.Entities, s.Bodies, s.HUD)
}

func (a *App) Status(ctx context.Context) (Status, error) {
	running := a.Running()
	var st Status
	err := a.exec(ctx, func(s *Session) error {
		st = Status{
			Session:     s.ID,
			Level:       s.Level,
			Running:     running,
			Frames:      s.Loop.Frames(),
			Entities:    s.Manager.Len(),
			Bodies:      s.World.BodyCount(),
			Diagnostics: s.Manager.Diagnostics(),
		}
		if e, ok := s.Manager.Get(ui.Name); ok {
			if hud, ok := models.ComponentAs[*ui.UIManager](e, models.KindUIManager); ok {
				st.HUD = hud.HUD()
			}
		}
		return nil
	})
	return st, err
}
