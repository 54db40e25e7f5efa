package navigation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// GridConfig describes a rectangular walkable area sampled into a grid.
type GridConfig struct {
	Min, Max mgl64.Vec3
	Spacing  float64
	// Blocked reports cells that cannot be walked, such as walls.
	Blocked func(p mgl64.Vec3) bool
}

// NewGrid builds a graph with a node per open cell, connected to its eight
// neighbours. Diagonals are dropped when they would cut a blocked corner.
func NewGrid(name string, config GridConfig) *Graph {
	spacing := config.Spacing
	if spacing <= 0 {
		spacing = 1
	}
	g := NewGraph(name, spacing*1.5)

	cols := int(math.Floor((config.Max.X()-config.Min.X())/spacing)) + 1
	rows := int(math.Floor((config.Max.Z()-config.Min.Z())/spacing)) + 1
	if cols <= 0 || rows <= 0 {
		return g
	}

	index := make([]int, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			p := mgl64.Vec3{config.Min.X() + float64(c)*spacing, config.Min.Y(), config.Min.Z() + float64(r)*spacing}
			if config.Blocked != nil && config.Blocked(p) {
				index[r*cols+c] = -1
				continue
			}
			index[r*cols+c] = g.AddNode(p)
		}
	}

	at := func(r, c int) int {
		if r < 0 || c < 0 || r >= rows || c >= cols {
			return -1
		}
		return index[r*cols+c]
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			n := at(r, c)
			if n < 0 {
				continue
			}
			for _, d := range [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}} {
				m := at(r+d[0], c+d[1])
				if m < 0 {
					continue
				}
				if d[0] != 0 && d[1] != 0 && (at(r+d[0], c) < 0 || at(r, c+d[1]) < 0) {
					continue
				}
				_ = g.Connect(n, m)
			}
		}
	}
	return g
}
