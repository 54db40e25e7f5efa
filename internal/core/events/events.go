// Package events names the gameplay events exchanged over the bus and their
// payloads. Entity events travel on the entity's own topic; session-wide
// events use the default topic.
package events

import "github.com/go-gl/mathgl/mgl64"

const (
	// Hit is sent to the damaged entity's topic.
	Hit = "hit"
	// AmmoPickup is sent to the collecting entity's topic.
	AmmoPickup = "ammo_pickup"
	// PlayerHealth and AmmoChanged are broadcast by the player on its topic.
	PlayerHealth = "player_health"
	AmmoChanged  = "ammo_changed"
	// PlayerDead and NPCDead go to the default topic.
	PlayerDead = "player_dead"
	NPCDead    = "npc_dead"
)

// HitData is the payload of Hit.
type HitData struct {
	Damage float64
	Source string
	Point  mgl64.Vec3
}

// AmmoPickupData is the payload of AmmoPickup.
type AmmoPickupData struct {
	Rounds int
}

// HealthData is the payload of PlayerHealth.
type HealthData struct {
	Current, Max float64
}

// AmmoData is the payload of AmmoChanged.
type AmmoData struct {
	Magazine, Reserve int
	Reloading         bool
}
