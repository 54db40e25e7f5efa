package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphAttachDetach(t *testing.T) {
	g := NewGraph()
	n := NewNode("level")
	require.NoError(t, g.Add(n))
	assert.ErrorIs(t, g.Add(n), ErrNodeAttached)
	assert.True(t, g.Contains(n))
	assert.Equal(t, 1, g.Len())

	require.NoError(t, g.Remove(n))
	assert.ErrorIs(t, g.Remove(n), ErrNodeMissing)
	assert.ErrorIs(t, g.Add(nil), ErrNilNode)
}

func TestNodeCloneIsDeepAndDetached(t *testing.T) {
	root := NewNode("mutant")
	arm := NewNode("arm")
	root.Add(arm)
	arm.Position = mgl64.Vec3{1, 2, 3}

	c := root.Clone()
	assert.Nil(t, c.Parent())
	found, ok := c.Find("arm")
	require.True(t, ok)
	assert.NotSame(t, arm, found)
	assert.Equal(t, arm.Position, found.Position)

	found.Position = mgl64.Vec3{}
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, arm.Position)
}

func TestNodeReparent(t *testing.T) {
	a, b, child := NewNode("a"), NewNode("b"), NewNode("c")
	a.Add(child)
	b.Add(child)
	assert.Empty(t, a.Children())
	assert.Same(t, b, child.Parent())
}

func TestMixerLoopAndOnce(t *testing.T) {
	m := NewMixer(map[string]Clip{
		"idle": {Name: "idle", Duration: 2},
		"die":  {Name: "die", Duration: 1},
	})
	require.NoError(t, m.Play("idle", true, 0))
	m.Update(2.5)
	assert.InDelta(t, 0.5, m.Time(), 1e-9)
	assert.False(t, m.Finished())

	require.NoError(t, m.Play("die", false, 0.5))
	assert.InDelta(t, 0, m.Weight(), 1e-9)
	m.Update(0.25)
	assert.InDelta(t, 0.5, m.Weight(), 1e-9)
	assert.False(t, m.Finished())
	m.Update(1)
	assert.True(t, m.Finished())
	assert.Equal(t, 1.0, m.Weight())

	assert.ErrorIs(t, m.Play("dance", true, 0), ErrClipNotFound)
	assert.Equal(t, "die", m.Current())
}

func TestCameraLook(t *testing.T) {
	c := NewCamera()
	c.Rotation = LookAngles(0, 0)
	f := c.Forward()
	assert.InDelta(t, -1, f.Z(), 1e-9)

	c.Rotation = LookAngles(mgl64.DegToRad(90), 0)
	f = c.Forward()
	assert.InDelta(t, -1, f.X(), 1e-9)
}
