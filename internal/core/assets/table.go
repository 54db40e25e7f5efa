package assets

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zeusync/scenekit/internal/core/navigation"
	"github.com/zeusync/scenekit/internal/core/scene"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

// Kind groups assets by what they decode to.
type Kind uint8

const (
	KindModel Kind = iota
	KindClips
	KindTexture
	KindAudio
	KindShape
	KindNavmesh
)

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindClips:
		return "clips"
	case KindTexture:
		return "texture"
	case KindAudio:
		return "audio"
	case KindShape:
		return "shape"
	case KindNavmesh:
		return "navmesh"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Texture is a decoded image handle.
type Texture struct {
	Name          string
	Width, Height int
}

// Audio is a decoded sound handle.
type Audio struct {
	Name     string
	Duration float64
}

type key struct {
	kind Kind
	name string
}

// Table is the completed in-memory asset table. It is filled by the Loader
// and read by components during setup.
type Table struct {
	mu     sync.RWMutex
	values map[key]any
}

func NewTable() *Table {
	return &Table{values: make(map[key]any)}
}

// Put stores a decoded asset, replacing any previous one.
func (t *Table) Put(kind Kind, name string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[key{kind, name}] = value
}

func (t *Table) Has(kind Kind, name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.values[key{kind, name}]
	return ok
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}

// Names lists the asset names of a kind in sorted order.
func (t *Table) Names(kind Kind) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []string
	for k := range t.values {
		if k.kind == kind {
			out = append(out, k.name)
		}
	}
	sort.Strings(out)
	return out
}

func lookup[T any](t *Table, kind Kind, name string) (T, error) {
	t.mu.RLock()
	v, ok := t.values[key{kind, name}]
	t.mu.RUnlock()

	var zero T
	if !ok {
		return zero, fmt.Errorf("%w: %s %q", ErrAssetNotFound, kind, name)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s %q is %T", ErrWrongType, kind, name, v)
	}
	return typed, nil
}

// Model returns a fresh clone of a model so each entity owns its nodes.
func (t *Table) Model(name string) (*scene.Node, error) {
	n, err := lookup[*scene.Node](t, KindModel, name)
	if err != nil {
		return nil, err
	}
	return n.Clone(), nil
}

func (t *Table) Clips(name string) (map[string]scene.Clip, error) {
	return lookup[map[string]scene.Clip](t, KindClips, name)
}

func (t *Table) Texture(name string) (Texture, error) {
	return lookup[Texture](t, KindTexture, name)
}

func (t *Table) Audio(name string) (Audio, error) {
	return lookup[Audio](t, KindAudio, name)
}

func (t *Table) Shape(name string) (physics.Shape, error) {
	return lookup[physics.Shape](t, KindShape, name)
}

func (t *Table) Navmesh(name string) (*navigation.Graph, error) {
	return lookup[*navigation.Graph](t, KindNavmesh, name)
}
