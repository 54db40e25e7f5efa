package scene

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// Node is a scene-graph node. Visual components own the nodes they attach
// and detach them on disposal.
type Node struct {
	Name     string
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
	Visible  bool

	parent   *Node
	children []*Node
}

func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
		Visible:  true,
	}
}

func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Add attaches child, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child. It reports whether child was attached to n.
func (n *Node) Remove(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	return true
}

// Clone deep-copies the subtree; the copy is detached.
func (n *Node) Clone() *Node {
	c := &Node{
		Name:     n.Name,
		Position: n.Position,
		Rotation: n.Rotation,
		Scale:    n.Scale,
		Visible:  n.Visible,
	}
	for _, child := range n.children {
		c.Add(child.Clone())
	}
	return c
}

// Traverse visits n and its descendants depth-first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, child := range n.children {
		child.Traverse(fn)
	}
}

// Find returns the first descendant (or n) with the given name.
func (n *Node) Find(name string) (*Node, bool) {
	if n.Name == name {
		return n, true
	}
	for _, child := range n.children {
		if found, ok := child.Find(name); ok {
			return found, true
		}
	}
	return nil, false
}
