package npc

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Clip names an NPC model must provide.
const (
	ClipIdle   = "idle"
	ClipWalk   = "walk"
	ClipRun    = "run"
	ClipAttack = "attack"
	ClipDie    = "die"
)

// Config tunes perception, movement and combat of one NPC.
type Config struct {
	// Target is the name of the entity the NPC hunts.
	Target string `yaml:"target"`
	// Navmesh is the name of the entity carrying the level navmesh.
	Navmesh string `yaml:"navmesh"`

	WalkSpeed float64 `yaml:"walk_speed"`
	RunSpeed  float64 `yaml:"run_speed"`

	DetectionRadius float64 `yaml:"detection_radius"`
	LoseRadius      float64 `yaml:"lose_radius"`
	EyeHeight       float64 `yaml:"eye_height"`

	// IdleTimeout is the time spent idle before patrolling, in seconds.
	IdleTimeout float64 `yaml:"idle_timeout"`
	// Jitter spreads IdleTimeout per NPC by up to this fraction.
	Jitter         float64      `yaml:"jitter"`
	PatrolRoute    []mgl64.Vec3 `yaml:"patrol_route"`
	WaypointReach  float64      `yaml:"waypoint_reach"`
	RepathInterval float64      `yaml:"repath_interval"`

	AttackRadius   float64 `yaml:"attack_radius"`
	AttackReach    float64 `yaml:"attack_reach"`
	AttackDamage   float64 `yaml:"attack_damage"`
	AttackInterval float64 `yaml:"attack_interval"`

	MaxHealth     float64 `yaml:"max_health"`
	RemoveOnDeath bool    `yaml:"remove_on_death"`

	CapsuleRadius     float64 `yaml:"capsule_radius"`
	CapsuleHalfHeight float64 `yaml:"capsule_half_height"`
	Mass              float64 `yaml:"mass"`

	Debug bool `yaml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		Target:            "Player",
		Navmesh:           "Level",
		WalkSpeed:         1.5,
		RunSpeed:          3.5,
		DetectionRadius:   15,
		LoseRadius:        25,
		EyeHeight:         1.5,
		IdleTimeout:       5,
		Jitter:            0,
		WaypointReach:     0.4,
		RepathInterval:    0.5,
		AttackRadius:      0.8,
		AttackReach:       1.0,
		AttackDamage:      10,
		AttackInterval:    1.2,
		MaxHealth:         100,
		RemoveOnDeath:     true,
		CapsuleRadius:     0.3,
		CapsuleHalfHeight: 0.6,
		Mass:              70,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Target == "":
		return fmt.Errorf("%w: target is empty", ErrBadConfig)
	case c.DetectionRadius <= 0:
		return fmt.Errorf("%w: detection_radius must be positive", ErrBadConfig)
	case c.LoseRadius < c.DetectionRadius:
		return fmt.Errorf("%w: lose_radius must not be below detection_radius", ErrBadConfig)
	case c.MaxHealth <= 0:
		return fmt.Errorf("%w: max_health must be positive", ErrBadConfig)
	case c.Jitter < 0 || c.Jitter >= 1:
		return fmt.Errorf("%w: jitter must be in [0, 1)", ErrBadConfig)
	case c.CapsuleRadius <= 0 || c.CapsuleHalfHeight < 0:
		return fmt.Errorf("%w: capsule dimensions", ErrBadConfig)
	}
	return nil
}
