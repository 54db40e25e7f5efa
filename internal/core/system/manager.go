package system

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/observability/log"
	"github.com/zeusync/scenekit/internal/core/systems/physics"
)

var (
	_ models.Registry     = (*Manager)(nil)
	_ physics.TickHandler = (*Manager)(nil)
)

type phase uint8

const (
	phaseInitialize phase = iota
	phaseFrame
	phasePhysics
	phaseDispose
)

func (p phase) String() string {
	switch p {
	case phaseInitialize:
		return "initialize"
	case phaseFrame:
		return "frame"
	case phasePhysics:
		return "physics"
	case phaseDispose:
		return "dispose"
	default:
		return "unknown"
	}
}

// Diagnostics counts hook failures. Each (entity, kind, phase) failure is
// logged the first time only; the counters keep increasing.
type Diagnostics struct {
	FrameFailures   uint64
	PhysicsFailures uint64
	DisposeFailures uint64
	InitFailures    uint64
	Panics          uint64
	Deferred        uint64
	Frames          uint64
	Ticks           uint64
}

type reportKey struct {
	id    models.EntityID
	kind  models.Kind
	phase phase
}

type slot struct {
	entity     *models.Entity
	generation uint32
}

// Manager owns entity lifecycle and drives the two update phases.
//
// Entities go through Add (staged) and EndSetup (committed, initialized).
// Only committed entities are visible to Get, Lookup and the update passes.
// Structural changes requested while a pass runs are queued and applied when
// the next frame pass completes.
//
// Manager is not safe for concurrent use; it belongs to the loop goroutine.
type Manager struct {
	logger log.Log
	bus    bus.EventBus

	committed []*models.Entity
	names     map[string]*models.Entity
	staged    []*models.Entity
	stagedSet map[string]*models.Entity

	slots []slot
	free  []uint32

	depth      int
	committing bool
	recommit   bool
	pending    []func()

	reported map[reportKey]struct{}
	diag     Diagnostics
}

func NewManager(logger log.Log, eventBus bus.EventBus) *Manager {
	if logger == nil {
		logger = log.Nop()
	}
	if eventBus == nil {
		eventBus = bus.New()
	}
	return &Manager{
		logger:    logger.With(log.String("component", "entity-manager")),
		bus:       eventBus,
		names:     make(map[string]*models.Entity),
		stagedSet: make(map[string]*models.Entity),
		reported:  make(map[reportKey]struct{}),
	}
}

func (m *Manager) Bus() bus.EventBus { return m.bus }
func (m *Manager) Logger() log.Log   { return m.logger }

// Diagnostics returns a copy of the failure counters.
func (m *Manager) Diagnostics() Diagnostics { return m.diag }

// Len returns the number of committed entities.
func (m *Manager) Len() int { return len(m.committed) }

// StagedLen returns the number of entities waiting for EndSetup.
func (m *Manager) StagedLen() int { return len(m.staged) }

// Entities returns the committed entities in commit order.
func (m *Manager) Entities() []*models.Entity { return slices.Clone(m.committed) }

// Add stages an entity. The name must be unique among committed and staged
// entities. Setup errors recorded by AddComponent are returned here.
func (m *Manager) Add(e *models.Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	if err := e.Err(); err != nil {
		return fmt.Errorf("entity %q: %w", e.Name(), err)
	}
	if e.Registry() != nil {
		return fmt.Errorf("entity %q: %w", e.Name(), ErrAlreadyRegistered)
	}
	if e.Name() == "" {
		return ErrEmptyName
	}
	if m.nameTaken(e.Name()) {
		return fmt.Errorf("entity %q: %w", e.Name(), ErrDuplicateName)
	}

	e.Attach(m, m.allocate(e))
	m.staged = append(m.staged, e)
	m.stagedSet[e.Name()] = e
	return nil
}

func (m *Manager) nameTaken(name string) bool {
	if _, ok := m.names[name]; ok {
		return true
	}
	_, ok := m.stagedSet[name]
	return ok
}

func (m *Manager) allocate(e *models.Entity) models.EntityID {
	var index uint32
	if n := len(m.free); n > 0 {
		index = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		index = uint32(len(m.slots))
		m.slots = append(m.slots, slot{})
	}
	s := &m.slots[index]
	s.generation++
	s.entity = e
	return models.NewEntityID(index, s.generation)
}

func (m *Manager) release(id models.EntityID) {
	index := id.Slot()
	if int(index) >= len(m.slots) || m.slots[index].generation != id.Generation() {
		return
	}
	m.slots[index].entity = nil
	m.free = append(m.free, index)
}

// Get returns a committed entity by name.
func (m *Manager) Get(name string) (*models.Entity, bool) {
	e, ok := m.names[name]
	return e, ok
}

// Lookup resolves a committed entity by id. Ids of removed entities never resolve.
func (m *Manager) Lookup(id models.EntityID) (*models.Entity, bool) {
	index := id.Slot()
	if id.IsZero() || int(index) >= len(m.slots) {
		return nil, false
	}
	s := m.slots[index]
	if s.generation != id.Generation() || s.entity == nil || !s.entity.Committed() {
		return nil, false
	}
	return s.entity, true
}

// Rename changes a registered entity's name, keeping names unique.
// Subscriptions the entity took on its own topic move to the new name.
// Other entities subscribed to the old topic stay there and stop hearing
// from it.
func (m *Manager) Rename(e *models.Entity, name string) error {
	if e == nil {
		return ErrNilEntity
	}
	if name == "" {
		return ErrEmptyName
	}
	if name == e.Name() {
		return nil
	}
	if m.nameTaken(name) {
		return fmt.Errorf("rename %q to %q: %w", e.Name(), name, ErrDuplicateName)
	}

	old := e.Name()
	switch {
	case m.names[old] == e:
		delete(m.names, old)
		m.names[name] = e
	case m.stagedSet[old] == e:
		delete(m.stagedSet, old)
		m.stagedSet[name] = e
	}
	e.AssignName(name)
	return e.MoveSubscriptions(old)
}

// EndSetup commits every staged entity and runs Initialize once per
// component. If any Initialize fails the whole batch is disposed and
// discarded. Called from inside a pass, the commit is deferred.
// Structural changes requested by Initialize hooks apply before EndSetup
// returns.
func (m *Manager) EndSetup() error {
	if m.committing {
		m.recommit = true
		return nil
	}
	if m.depth > 0 {
		m.enqueue(func() {
			if err := m.EndSetup(); err != nil {
				m.logger.Error("deferred setup failed", log.Error(err))
			}
		})
		return nil
	}

	mark := len(m.pending)
	m.committing = true
	err := m.commitAll()
	m.committing = false
	m.flushFrom(mark)
	return err
}

func (m *Manager) commitAll() error {
	for {
		m.recommit = false
		if err := m.commit(); err != nil {
			return err
		}
		if !m.recommit || len(m.staged) == 0 {
			return nil
		}
	}
}

func (m *Manager) commit() error {
	batch := m.staged
	m.staged = nil
	clear(m.stagedSet)
	if len(batch) == 0 {
		return nil
	}

	for _, e := range batch {
		e.Seal()
		m.committed = append(m.committed, e)
		m.names[e.Name()] = e
	}

	var initialized []models.Component
	for _, e := range batch {
		for _, c := range e.Components() {
			if init, ok := c.(models.Initializer); ok {
				if err := m.call(e, c, phaseInitialize, func() error { return init.Initialize(m) }); err != nil {
					m.diag.InitFailures++
					m.rollback(batch, initialized, c)
					return fmt.Errorf("setup %q: initialize %s: %w", e.Name(), c.Kind(), err)
				}
			}
			initialized = append(initialized, c)
		}
	}
	return nil
}

// rollback disposes what the failed batch already initialized, in reverse
// order, and forgets the batch.
func (m *Manager) rollback(batch []*models.Entity, initialized []models.Component, failed models.Component) {
	for i := len(initialized) - 1; i >= 0; i-- {
		m.dispose(initialized[i])
	}
	if d, ok := failed.(models.Disposer); ok {
		m.disposeHook(failed, d)
	}
	for _, e := range batch {
		e.MarkDisposed()
		m.forget(e)
	}
}

// Update runs FrameUpdate on every committed entity in commit order, then
// applies deferred structural changes.
func (m *Manager) Update(frame *models.Frame) {
	if frame == nil {
		frame = &models.Frame{}
	}
	m.depth++
	for _, e := range slices.Clone(m.committed) {
		if e.Disposed() {
			continue
		}
		for _, c := range e.Components() {
			if u, ok := c.(models.FrameUpdater); ok {
				if err := m.call(e, c, phaseFrame, func() error { return u.FrameUpdate(frame) }); err != nil {
					m.diag.FrameFailures++
				}
			}
		}
	}
	m.depth--
	m.diag.Frames++

	if m.depth == 0 {
		m.flush()
	}
}

// PhysicsUpdate is the physics world's internal tick callback. Structural
// changes requested here wait for the end of the next Update.
func (m *Manager) PhysicsUpdate(world physics.World, timeStep float64) {
	m.depth++
	defer func() { m.depth-- }()

	for _, e := range slices.Clone(m.committed) {
		if e.Disposed() {
			continue
		}
		for _, c := range e.Components() {
			if t, ok := c.(models.PhysicsTicker); ok {
				if err := m.call(e, c, phasePhysics, func() error { return t.PhysicsTick(world, timeStep) }); err != nil {
					m.diag.PhysicsFailures++
				}
			}
		}
	}
	m.diag.Ticks++
}

// Remove disposes the entity's components in reverse registration order and
// removes it. Removing an already removed entity is a no-op.
func (m *Manager) Remove(e *models.Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	if m.depth > 0 || m.committing {
		m.enqueue(func() { _ = m.Remove(e) })
		return nil
	}
	if e.Disposed() || e.Registry() != models.Registry(m) {
		return nil
	}
	return m.remove(e)
}

// RemoveLevel removes every entity tagged with the level and, transitively,
// every entity owned by one of them. It returns how many entities matched.
func (m *Manager) RemoveLevel(tag string) (int, error) {
	if tag == "" {
		return 0, ErrEmptyLevel
	}
	doomed := m.levelMembers(tag)
	if m.depth > 0 || m.committing {
		m.enqueue(func() { _, _ = m.RemoveLevel(tag) })
		return len(doomed), nil
	}

	var all error
	for i := len(doomed) - 1; i >= 0; i-- {
		all = errors.Join(all, m.remove(doomed[i]))
	}
	if len(doomed) > 0 {
		m.logger.Info("level removed", log.String("level", tag), log.Int("entities", len(doomed)))
	}
	return len(doomed), all
}

// levelMembers returns the level's entities and their dependents in
// commit order, staged entities last.
func (m *Manager) levelMembers(tag string) []*models.Entity {
	all := append(slices.Clone(m.committed), m.staged...)
	selected := make(map[models.EntityID]bool)
	for _, e := range all {
		if e.Level() == tag {
			selected[e.ID()] = true
		}
	}
	for grew := len(selected) > 0; grew; {
		grew = false
		for _, e := range all {
			if !selected[e.ID()] && !e.Owner().IsZero() && selected[e.Owner()] {
				selected[e.ID()] = true
				grew = true
			}
		}
	}

	var out []*models.Entity
	for _, e := range all {
		if selected[e.ID()] {
			out = append(out, e)
		}
	}
	return out
}

// Clear removes every entity, persistent ones included.
func (m *Manager) Clear() error {
	var all error
	entities := append(slices.Clone(m.committed), m.staged...)
	for i := len(entities) - 1; i >= 0; i-- {
		all = errors.Join(all, m.Remove(entities[i]))
	}
	return all
}

func (m *Manager) remove(e *models.Entity) error {
	if !e.MarkDisposed() {
		return nil
	}
	if !e.Committed() {
		m.forget(e)
		return nil
	}

	var all error
	components := e.Components()
	for i := len(components) - 1; i >= 0; i-- {
		all = errors.Join(all, m.dispose(components[i]))
	}
	all = errors.Join(all, e.CancelSubscriptions())
	m.forget(e)
	return all
}

func (m *Manager) dispose(c models.Component) error {
	d, ok := c.(models.Disposer)
	if !ok {
		return nil
	}
	return m.disposeHook(c, d)
}

func (m *Manager) disposeHook(c models.Component, d models.Disposer) error {
	err := m.call(c.Entity(), c, phaseDispose, d.Dispose)
	if err != nil {
		m.diag.DisposeFailures++
	}
	return err
}

func (m *Manager) forget(e *models.Entity) {
	if m.names[e.Name()] == e {
		delete(m.names, e.Name())
	}
	if m.stagedSet[e.Name()] == e {
		delete(m.stagedSet, e.Name())
	}
	m.committed = slices.DeleteFunc(m.committed, func(other *models.Entity) bool { return other == e })
	m.staged = slices.DeleteFunc(m.staged, func(other *models.Entity) bool { return other == e })
	_ = e.CancelSubscriptions()
	id := e.ID()
	maps.DeleteFunc(m.reported, func(k reportKey, _ struct{}) bool { return k.id == id })
	m.release(id)
	e.Detach()
}

func (m *Manager) enqueue(op func()) {
	m.diag.Deferred++
	m.pending = append(m.pending, op)
}

// flush applies deferred operations, including ones queued while flushing.
func (m *Manager) flush() { m.flushFrom(0) }

// flushFrom applies the operations queued at or after mark and leaves the
// earlier ones pending.
func (m *Manager) flushFrom(mark int) {
	for len(m.pending) > mark {
		ops := slices.Clone(m.pending[mark:])
		m.pending = m.pending[:mark]
		for _, op := range ops {
			op()
		}
	}
}

// call runs a hook, converting panics to errors and logging the first
// failure of each (entity, kind, phase).
func (m *Manager) call(e *models.Entity, c models.Component, p phase, hook func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.diag.Panics++
			err = fmt.Errorf("%w: %v", ErrHookPanic, r)
		}
		if err != nil {
			m.report(e, c, p, err)
		}
	}()
	return hook()
}

func (m *Manager) report(e *models.Entity, c models.Component, p phase, err error) {
	var id models.EntityID
	name := ""
	if e != nil {
		id, name = e.ID(), e.Name()
	}
	key := reportKey{id: id, kind: c.Kind(), phase: p}
	if _, seen := m.reported[key]; seen {
		return
	}
	m.reported[key] = struct{}{}
	m.logger.Error("component hook failed",
		log.String("entity", name),
		log.Stringer("kind", c.Kind()),
		log.Stringer("phase", p),
		log.Error(err),
	)
}
