package navigation

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/scenekit/pkg/generic"
	"github.com/zeusync/scenekit/pkg/sequence"
)

var ErrNodeOutOfRange = errors.New("navigation node out of range")

// Graph is a waypoint navmesh: nodes at walkable positions connected by
// walkable edges. Queries snap positions to the closest node within Snap.
type Graph struct {
	Name string
	// Snap is the largest distance a query position may be from its node.
	Snap float64

	nodes []mgl64.Vec3
	edges [][]int
}

func NewGraph(name string, snap float64) *Graph {
	return &Graph{Name: name, Snap: snap}
}

func (g *Graph) AddNode(position mgl64.Vec3) int {
	g.nodes = append(g.nodes, position)
	g.edges = append(g.edges, nil)
	return len(g.nodes) - 1
}

// Connect adds an undirected edge.
func (g *Graph) Connect(a, b int) error {
	if a < 0 || b < 0 || a >= len(g.nodes) || b >= len(g.nodes) {
		return fmt.Errorf("%w: %d-%d", ErrNodeOutOfRange, a, b)
	}
	if a == b {
		return nil
	}
	for _, n := range g.edges[a] {
		if n == b {
			return nil
		}
	}
	g.edges[a] = append(g.edges[a], b)
	g.edges[b] = append(g.edges[b], a)
	return nil
}

func (g *Graph) Len() int              { return len(g.nodes) }
func (g *Graph) Node(i int) mgl64.Vec3 { return g.nodes[i] }
func (g *Graph) Neighbors(i int) []int { return g.edges[i] }

// ClosestNode returns the nearest node to p, ignoring height differences,
// if it lies within Snap.
func (g *Graph) ClosestNode(p mgl64.Vec3) (int, bool) {
	best, bestDist := -1, math.Inf(1)
	for i, n := range g.nodes {
		if d := flatDistance(n, p); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || (g.Snap > 0 && bestDist > g.Snap) {
		return -1, false
	}
	return best, true
}

// FindPath runs A* between the nodes closest to from and to. The returned
// waypoints start at the first node after from and end at to.
func (g *Graph) FindPath(from, to mgl64.Vec3) ([]mgl64.Vec3, bool) {
	start, ok := g.ClosestNode(from)
	if !ok {
		return nil, false
	}
	goal, ok := g.ClosestNode(to)
	if !ok {
		return nil, false
	}

	nodes, ok := g.search(start, goal)
	if !ok {
		return nil, false
	}
	path := make([]mgl64.Vec3, 0, len(nodes))
	for _, n := range nodes[1:] {
		path = append(path, g.nodes[n])
	}
	return append(path, to), true
}

// scratch is the per-query A* state, recycled across searches.
type scratch struct {
	cost   []float64
	came   []int
	queued []*sequence.PriorityItem[int]
	closed []bool
}

var scratchPool = generic.NewPool(func() *scratch { return &scratch{} }, func(s *scratch) {
	clear(s.queued)
})

func (s *scratch) prepare(n int) {
	if cap(s.cost) < n {
		s.cost = make([]float64, n)
		s.came = make([]int, n)
		s.queued = make([]*sequence.PriorityItem[int], n)
		s.closed = make([]bool, n)
	}
	s.cost, s.came, s.queued, s.closed = s.cost[:n], s.came[:n], s.queued[:n], s.closed[:n]
	for i := range n {
		s.cost[i] = math.Inf(1)
		s.came[i] = -1
		s.queued[i] = nil
		s.closed[i] = false
	}
}

func (g *Graph) search(start, goal int) ([]int, bool) {
	if start == goal {
		return []int{start}, true
	}

	s := scratchPool.Get()
	defer scratchPool.Put(s)
	s.prepare(len(g.nodes))
	cost, came, queued, closed := s.cost, s.came, s.queued, s.closed

	open := sequence.NewMinQueue[int]()
	cost[start] = 0
	queued[start] = open.Enqueue(start, g.heuristic(start, goal))

	for !open.IsEmpty() {
		current, _ := open.Dequeue()
		if current == goal {
			return g.reconstruct(came, goal), true
		}
		closed[current] = true

		for _, next := range g.edges[current] {
			if closed[next] {
				continue
			}
			tentative := cost[current] + g.nodes[current].Sub(g.nodes[next]).Len()
			if tentative >= cost[next] {
				continue
			}
			came[next] = current
			cost[next] = tentative
			priority := tentative + g.heuristic(next, goal)
			if queued[next] != nil {
				open.Update(queued[next], priority)
				continue
			}
			queued[next] = open.Enqueue(next, priority)
		}
	}
	return nil, false
}

func (g *Graph) heuristic(a, b int) float64 {
	return g.nodes[a].Sub(g.nodes[b]).Len()
}

func (g *Graph) reconstruct(came []int, goal int) []int {
	var path []int
	for n := goal; n >= 0; n = came[n] {
		path = append(path, n)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func flatDistance(a, b mgl64.Vec3) float64 {
	dx, dz := a.X()-b.X(), a.Z()-b.Z()
	return math.Sqrt(dx*dx + dz*dz)
}
