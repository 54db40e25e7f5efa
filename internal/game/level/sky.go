package level

import (
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/scene"
)

// Sky keeps the sky dome centered on the camera.
type Sky struct {
	models.Base
	graph  *scene.Graph
	dome   *scene.Node
	camera *scene.Camera
}

func NewSky(graph *scene.Graph, dome *scene.Node, camera *scene.Camera) *Sky {
	return &Sky{graph: graph, dome: dome, camera: camera}
}

func (s *Sky) Kind() models.Kind { return models.KindSky }

func (s *Sky) Initialize(models.Registry) error {
	switch {
	case s.graph == nil:
		return ErrNilGraph
	case s.dome == nil:
		return ErrNilModel
	}
	return s.graph.Add(s.dome)
}

func (s *Sky) FrameUpdate(*models.Frame) error {
	if s.camera != nil {
		s.dome.Position = s.camera.Position
	}
	return nil
}

func (s *Sky) Dome() *scene.Node { return s.dome }

func (s *Sky) Dispose() error {
	if s.graph.Contains(s.dome) {
		return s.graph.Remove(s.dome)
	}
	return nil
}
