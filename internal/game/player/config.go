package player

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Config tunes the player body and locomotion.
type Config struct {
	Spawn mgl64.Vec3 `yaml:"spawn"`
	// Yaw is the initial heading in radians about +Y.
	Yaw float64 `yaml:"yaw"`

	WalkSpeed       float64 `yaml:"walk_speed"`
	SprintFactor    float64 `yaml:"sprint_factor"`
	JumpSpeed       float64 `yaml:"jump_speed"`
	LookSensitivity float64 `yaml:"look_sensitivity"`
	EyeOffset       float64 `yaml:"eye_offset"`

	CapsuleRadius     float64 `yaml:"capsule_radius"`
	CapsuleHalfHeight float64 `yaml:"capsule_half_height"`
	Mass              float64 `yaml:"mass"`

	MaxHealth float64 `yaml:"max_health"`
}

func DefaultConfig() Config {
	return Config{
		Spawn:             mgl64.Vec3{2.14, 1.48, -1.36},
		Yaw:               -math.Pi / 2,
		WalkSpeed:         4,
		SprintFactor:      1.6,
		JumpSpeed:         5,
		LookSensitivity:   0.002,
		EyeOffset:         0.6,
		CapsuleRadius:     0.3,
		CapsuleHalfHeight: 0.6,
		Mass:              80,
		MaxHealth:         100,
	}
}

func (c Config) Validate() error {
	switch {
	case c.WalkSpeed <= 0:
		return fmt.Errorf("player: walk_speed must be positive")
	case c.CapsuleRadius <= 0:
		return fmt.Errorf("player: capsule_radius must be positive")
	case c.MaxHealth <= 0:
		return fmt.Errorf("player: max_health must be positive")
	}
	return nil
}

// WeaponConfig tunes the player's rifle.
type WeaponConfig struct {
	Damage float64 `yaml:"damage"`
	// FireInterval is the time between shots in seconds.
	FireInterval float64 `yaml:"fire_interval"`
	Range        float64 `yaml:"range"`
	MagazineSize int     `yaml:"magazine_size"`
	Reserve      int     `yaml:"reserve"`
	ReloadTime   float64 `yaml:"reload_time"`
	FlashTime    float64 `yaml:"flash_time"`
}

func DefaultWeaponConfig() WeaponConfig {
	return WeaponConfig{
		Damage:       2,
		FireInterval: 0.1,
		Range:        1000,
		MagazineSize: 30,
		Reserve:      100,
		ReloadTime:   1.7,
		FlashTime:    0.05,
	}
}

func (c WeaponConfig) Validate() error {
	switch {
	case c.MagazineSize <= 0:
		return fmt.Errorf("weapon: magazine_size must be positive")
	case c.FireInterval <= 0:
		return fmt.Errorf("weapon: fire_interval must be positive")
	case c.Range <= 0:
		return fmt.Errorf("weapon: range must be positive")
	}
	return nil
}
