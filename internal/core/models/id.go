package models

import "fmt"

// EntityID is a generational handle: the low 32 bits address a manager slot,
// the high 32 bits carry the slot generation. A removed entity's id never
// matches the slot again. The zero id is invalid.
type EntityID uint64

func NewEntityID(slot, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(slot))
}

func (id EntityID) Slot() uint32       { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

func (id EntityID) String() string {
	return fmt.Sprintf("%d:%d", id.Slot(), id.Generation())
}
