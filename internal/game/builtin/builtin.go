// Package builtin generates the shipped scene assets procedurally so the
// runtime works without an asset pipeline.
package builtin

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/scenekit/internal/core/assets"
	"github.com/zeusync/scenekit/internal/core/navigation"
	"github.com/zeusync/scenekit/internal/core/npc"
	"github.com/zeusync/scenekit/internal/core/scene"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

// Asset names.
const (
	Level         = "level"
	LevelNavmesh  = "navmesh"
	Office        = "office"
	OfficeNavmesh = "office_navmesh"
	Mutant        = "mutant"
	AK47          = "ak47"
	MuzzleFlash   = "muzzleFlash"
	AK47Shot      = "ak47Shot"
	AmmoBox       = "ammobox"
	AmmoBoxShape  = "ammoboxShape"
	Sky           = "sky"
	SkyTexture    = "skyTex"
)

var textures = []string{
	"ammoboxTexD", "ammoboxTexN", "ammoboxTexM", "ammoboxTexR", "ammoboxTexAO",
	"decalColor", "decalNormal", "decalAlpha", SkyTexture,
}

// block is an axis-aligned box in world space.
type block struct {
	name   string
	center mgl64.Vec3
	size   mgl64.Vec3
}

// layout is a walkable floor with solid blocks standing on it.
type layout struct {
	min, max mgl64.Vec3
	blocks   []block
}

var layouts = map[string]layout{
	Level: {
		min: mgl64.Vec3{-10, 0, -10},
		max: mgl64.Vec3{45, 0, 45},
		blocks: []block{
			{"wall_north", mgl64.Vec3{17.5, 2, 45.5}, mgl64.Vec3{55, 4, 1}},
			{"wall_south", mgl64.Vec3{17.5, 2, -10.5}, mgl64.Vec3{55, 4, 1}},
			{"wall_east", mgl64.Vec3{45.5, 2, 17.5}, mgl64.Vec3{1, 4, 55}},
			{"wall_west", mgl64.Vec3{-10.5, 2, 17.5}, mgl64.Vec3{1, 4, 55}},
			{"crate0", mgl64.Vec3{6, 1, 12}, mgl64.Vec3{2, 2, 2}},
			{"crate1", mgl64.Vec3{24, 1, 18}, mgl64.Vec3{3, 2, 3}},
			{"pillar0", mgl64.Vec3{20, 2, 30}, mgl64.Vec3{1.5, 4, 1.5}},
		},
	},
	Office: {
		min: mgl64.Vec3{-5, 0, -5},
		max: mgl64.Vec3{25, 0, 25},
		blocks: []block{
			{"desk0", mgl64.Vec3{5, 0.5, 5}, mgl64.Vec3{2, 1, 1}},
			{"desk1", mgl64.Vec3{12, 0.5, 8}, mgl64.Vec3{2, 1, 1}},
			{"partition", mgl64.Vec3{10, 1.5, 15}, mgl64.Vec3{8, 3, 0.2}},
		},
	},
}

// Requests lists every built-in asset.
func Requests() []assets.Request {
	reqs := []assets.Request{
		model(Level, func() *scene.Node { return layouts[Level].model(Level) }),
		navmesh(LevelNavmesh, Level),
		model(Office, func() *scene.Node { return layouts[Office].model(Office) }),
		navmesh(OfficeNavmesh, Office),
		model(Mutant, mutant),
		{Kind: assets.KindClips, Name: Mutant, Load: value(mutantClips())},
		model(AK47, func() *scene.Node { return scene.NewNode(AK47) }),
		model(MuzzleFlash, func() *scene.Node { return scene.NewNode(MuzzleFlash) }),
		{Kind: assets.KindAudio, Name: AK47Shot, Load: value(assets.Audio{Name: AK47Shot, Duration: 0.4})},
		model(AmmoBox, func() *scene.Node { return scene.NewNode(AmmoBox) }),
		{Kind: assets.KindShape, Name: AmmoBoxShape, Load: value[physics.Shape](physics.Box{Half: mgl64.Vec3{0.3, 0.2, 0.2}})},
		model(Sky, func() *scene.Node { return scene.NewNode(Sky) }),
	}
	for _, name := range textures {
		reqs = append(reqs, assets.Request{
			Kind: assets.KindTexture,
			Name: name,
			Load: value(assets.Texture{Name: name, Width: 1024, Height: 1024}),
		})
	}
	return reqs
}

func value[T any](v T) func(context.Context) (any, error) {
	return func(context.Context) (any, error) { return v, nil }
}

func model(name string, build func() *scene.Node) assets.Request {
	return assets.Request{
		Kind: assets.KindModel,
		Name: name,
		Load: func(context.Context) (any, error) { return build(), nil },
	}
}

func navmesh(name, level string) assets.Request {
	return assets.Request{
		Kind: assets.KindNavmesh,
		Name: name,
		Load: func(context.Context) (any, error) {
			l, ok := layouts[level]
			if !ok {
				return nil, fmt.Errorf("no layout %q", level)
			}
			return l.navmesh(name), nil
		},
	}
}

// model builds one leaf node per floor and block. Leaf scale is the box size.
func (l layout) model(name string) *scene.Node {
	root := scene.NewNode(name)
	size := l.max.Sub(l.min)
	floor := scene.NewNode("floor")
	floor.Position = l.min.Add(l.max).Mul(0.5).Sub(mgl64.Vec3{0, 0.5, 0})
	floor.Scale = mgl64.Vec3{size.X() + 2, 1, size.Z() + 2}
	root.Add(floor)
	for _, b := range l.blocks {
		n := scene.NewNode(b.name)
		n.Position = b.center
		n.Scale = b.size
		root.Add(n)
	}
	return root
}

const clearance = 0.4

func (l layout) navmesh(name string) *navigation.Graph {
	return navigation.NewGrid(name, navigation.GridConfig{
		Min:     l.min,
		Max:     l.max,
		Spacing: 1,
		Blocked: func(p mgl64.Vec3) bool {
			for _, b := range l.blocks {
				half := b.size.Mul(0.5).Add(mgl64.Vec3{clearance, 0, clearance})
				d := p.Sub(b.center)
				if math.Abs(d.X()) <= half.X() && math.Abs(d.Z()) <= half.Z() {
					return true
				}
			}
			return false
		},
	})
}

func mutant() *scene.Node {
	root := scene.NewNode(Mutant)
	for _, part := range []string{"mixamorigHips", "mixamorigSpine", "mixamorigHead"} {
		root.Add(scene.NewNode(part))
	}
	return root
}

func mutantClips() map[string]scene.Clip {
	return map[string]scene.Clip{
		npc.ClipIdle:   {Name: npc.ClipIdle, Duration: 2.5},
		npc.ClipWalk:   {Name: npc.ClipWalk, Duration: 1.1},
		npc.ClipRun:    {Name: npc.ClipRun, Duration: 0.7},
		npc.ClipAttack: {Name: npc.ClipAttack, Duration: 1.3},
		npc.ClipDie:    {Name: npc.ClipDie, Duration: 2.2},
	}
}
