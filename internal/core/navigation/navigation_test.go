package navigation

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPathAroundWall(t *testing.T) {
	// 5x5 grid with a wall at x=2 except the top row.
	g := NewGrid("test", GridConfig{
		Min:     mgl64.Vec3{0, 0, 0},
		Max:     mgl64.Vec3{4, 0, 4},
		Spacing: 1,
		Blocked: func(p mgl64.Vec3) bool { return p.X() == 2 && p.Z() < 4 },
	})
	assert.Equal(t, 21, g.Len())

	path, ok := g.FindPath(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{4, 0, 0})
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{4, 0, 0}, path[len(path)-1])
	crossed := false
	for _, p := range path {
		assert.False(t, p.X() == 2 && p.Z() < 4, "path crosses the wall at %v", p)
		if p.X() == 2 {
			crossed = true
		}
	}
	assert.True(t, crossed)
}

func TestFindPathDisconnected(t *testing.T) {
	g := NewGraph("islands", 1)
	a := g.AddNode(mgl64.Vec3{0, 0, 0})
	b := g.AddNode(mgl64.Vec3{1, 0, 0})
	g.AddNode(mgl64.Vec3{10, 0, 0})
	require.NoError(t, g.Connect(a, b))

	_, ok := g.FindPath(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 0, 0})
	assert.False(t, ok)

	_, ok = g.FindPath(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{50, 0, 0})
	assert.False(t, ok, "target beyond snap distance")

	path, ok := g.FindPath(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1.2, 0, 0})
	require.True(t, ok)
	assert.Equal(t, []mgl64.Vec3{{1, 0, 0}, {1.2, 0, 0}}, path)

	assert.ErrorIs(t, g.Connect(0, 9), ErrNodeOutOfRange)
}

func TestClosestNodeIgnoresHeight(t *testing.T) {
	g := NewGraph("floor", 0.5)
	g.AddNode(mgl64.Vec3{0, 0, 0})
	n, ok := g.ClosestNode(mgl64.Vec3{0.1, 1.5, 0})
	require.True(t, ok)
	assert.Zero(t, n)
}
