package scene

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrNilNode      = errors.New("scene node is nil")
	ErrNodeAttached = errors.New("scene node already attached")
	ErrNodeMissing  = errors.New("scene node not attached")
)

// Graph is the scene root visual components attach to.
type Graph struct {
	root *Node
}

func NewGraph() *Graph {
	return &Graph{root: NewNode("scene")}
}

func (g *Graph) Root() *Node { return g.root }

// Add attaches a top-level node.
func (g *Graph) Add(n *Node) error {
	if n == nil {
		return ErrNilNode
	}
	if n.parent == g.root {
		return ErrNodeAttached
	}
	g.root.Add(n)
	return nil
}

// Remove detaches a top-level node.
func (g *Graph) Remove(n *Node) error {
	if n == nil {
		return ErrNilNode
	}
	if !g.root.Remove(n) {
		return ErrNodeMissing
	}
	return nil
}

func (g *Graph) Contains(n *Node) bool { return n != nil && n.parent == g.root }

// Len returns the number of top-level nodes.
func (g *Graph) Len() int { return len(g.root.children) }

// Clear detaches every top-level node.
func (g *Graph) Clear() {
	for _, n := range g.root.Children() {
		g.root.Remove(n)
	}
}

// Camera is the view the player locomotion writes into.
type Camera struct {
	*Node
	Fov  float64
	Near float64
	Far  float64
}

func NewCamera() *Camera {
	return &Camera{Node: NewNode("camera"), Fov: 75, Near: 0.01, Far: 1000}
}

// Forward returns the unit view direction; the camera looks down -Z.
func (c *Camera) Forward() mgl64.Vec3 {
	return c.Rotation.Rotate(mgl64.Vec3{0, 0, -1})
}

// LookAngles builds the camera rotation from yaw about +Y then pitch about +X.
func LookAngles(yaw, pitch float64) mgl64.Quat {
	pitch = mgl64.Clamp(pitch, -math.Pi/2+1e-3, math.Pi/2-1e-3)
	qYaw := mgl64.QuatRotate(yaw, mgl64.Vec3{0, 1, 0})
	qPitch := mgl64.QuatRotate(pitch, mgl64.Vec3{1, 0, 0})
	return qYaw.Mul(qPitch)
}

// Renderer draws a graph from a camera. The graphics pipeline lives behind it.
type Renderer interface {
	Render(g *Graph, camera *Camera) error
}

// NopRenderer counts frames and draws nothing.
type NopRenderer struct {
	Frames uint64
}

func (r *NopRenderer) Render(*Graph, *Camera) error {
	r.Frames++
	return nil
}
