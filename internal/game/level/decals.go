package level

import (
	"fmt"

	"github.com/zeusync/scenekit/internal/core/events"
	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/scene"
)

const DefaultDecalLimit = 64

// BulletDecals places a decal node wherever a shot hits level geometry.
// The oldest decal is recycled once the limit is reached.
type BulletDecals struct {
	models.Base
	graph  *scene.Graph
	limit  int
	decals []*scene.Node
	placed uint64
}

func NewBulletDecals(graph *scene.Graph, limit int) *BulletDecals {
	if limit <= 0 {
		limit = DefaultDecalLimit
	}
	return &BulletDecals{graph: graph, limit: limit}
}

func (d *BulletDecals) Kind() models.Kind { return models.KindBulletDecals }

func (d *BulletDecals) Initialize(models.Registry) error {
	if d.graph == nil {
		return ErrNilGraph
	}
	return d.Entity().Subscribe(events.Hit, func(ev bus.Event) error {
		hit, ok := ev.Data().(events.HitData)
		if !ok {
			return nil
		}
		return d.place(hit)
	})
}

func (d *BulletDecals) place(hit events.HitData) error {
	if len(d.decals) >= d.limit {
		oldest := d.decals[0]
		d.decals = d.decals[1:]
		if err := d.graph.Remove(oldest); err != nil {
			return err
		}
	}
	n := scene.NewNode(fmt.Sprintf("decal%d", d.placed))
	n.Position = hit.Point
	n.Scale = n.Scale.Mul(0.1)
	if err := d.graph.Add(n); err != nil {
		return err
	}
	d.placed++
	d.decals = append(d.decals, n)
	return nil
}

func (d *BulletDecals) Decals() []*scene.Node { return d.decals }

func (d *BulletDecals) Dispose() error {
	for _, n := range d.decals {
		if d.graph.Contains(n) {
			_ = d.graph.Remove(n)
		}
	}
	d.decals = nil
	return nil
}
