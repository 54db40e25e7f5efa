// Package config loads the scene runtime configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/scenekit/internal/core/npc"
	"github.com/zeusync/scenekit/internal/game/level"
	"github.com/zeusync/scenekit/internal/game/player"
	"github.com/zeusync/scenekit/internal/game/ui"
)

var (
	ErrInvalid      = errors.New("invalid config")
	ErrUnknownLevel = errors.New("unknown level")
)

type Config struct {
	LogLevel     string                 `yaml:"log_level"`
	Runtime      Runtime                `yaml:"runtime"`
	Physics      Physics                `yaml:"physics"`
	Assets       Assets                 `yaml:"assets"`
	Player       player.Config          `yaml:"player"`
	Weapon       player.WeaponConfig    `yaml:"weapon"`
	NPC          npc.Config             `yaml:"npc"`
	Levels       map[string]LevelConfig `yaml:"levels"`
	DefaultLevel string                 `yaml:"default_level"`
	Console      Console                `yaml:"console"`
}

// Runtime drives the frame loop.
type Runtime struct {
	FixedStep     float64 `yaml:"fixed_step"`
	MaxSubSteps   int     `yaml:"max_substeps"`
	MaxFrameDelta float64 `yaml:"max_frame_delta"`
	FrameRate     int     `yaml:"frame_rate"`
}

type Physics struct {
	Gravity mgl64.Vec3 `yaml:"gravity"`
}

type Assets struct {
	Concurrency int `yaml:"concurrency"`
}

// LevelConfig names the assets of a level and what spawns in it.
type LevelConfig struct {
	Model   string      `yaml:"model"`
	Navmesh string      `yaml:"navmesh"`
	NPCs    []NPCSpawn  `yaml:"npcs"`
	Ammo    []AmmoSpawn `yaml:"ammo"`
	// Decals caps bullet decals; zero uses the level default.
	Decals int `yaml:"decals"`
	// Patrol overrides the NPC patrol route for this level.
	Patrol []mgl64.Vec3 `yaml:"patrol,omitempty"`
}

type NPCSpawn struct {
	Name     string     `yaml:"name"`
	Position mgl64.Vec3 `yaml:"position"`
}

type AmmoSpawn struct {
	Name     string     `yaml:"name"`
	Position mgl64.Vec3 `yaml:"position"`
	Rounds   int        `yaml:"rounds"`
}

type Console struct {
	// Addr is the console listen address. Empty disables the console.
	Addr string `yaml:"addr"`
}

// Default returns the shipped scene.
func Default() *Config {
	npcs := []NPCSpawn{{Name: "Mutant0", Position: mgl64.Vec3{10.8, 0, 22}}}
	ammo := []AmmoSpawn{
		{Name: "AmmoBox0", Position: mgl64.Vec3{14.37, 0, 10.45}, Rounds: 30},
		{Name: "AmmoBox1", Position: mgl64.Vec3{32.77, 0, 33.84}, Rounds: 30},
	}
	return &Config{
		LogLevel: "info",
		Runtime: Runtime{
			FixedStep:     1.0 / 60.0,
			MaxSubSteps:   10,
			MaxFrameDelta: 1.0 / 30.0,
			FrameRate:     60,
		},
		Physics: Physics{Gravity: mgl64.Vec3{0, -9.81, 0}},
		Assets:  Assets{Concurrency: 4},
		Player:  player.DefaultConfig(),
		Weapon:  player.DefaultWeaponConfig(),
		NPC:     npc.DefaultConfig(),
		Levels: map[string]LevelConfig{
			"level":  {Model: "level", Navmesh: "navmesh", NPCs: npcs, Ammo: ammo},
			"office": {Model: "office", Navmesh: "office_navmesh", NPCs: npcs, Ammo: ammo[:1]},
		},
		DefaultLevel: "level",
		Console:      Console{Addr: "127.0.0.1:7777"},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads YAML over the defaults. Unknown keys are rejected.
func Decode(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Runtime.FixedStep <= 0 {
		errs = append(errs, fmt.Errorf("%w: runtime.fixed_step must be positive", ErrInvalid))
	}
	if c.Runtime.MaxSubSteps <= 0 {
		errs = append(errs, fmt.Errorf("%w: runtime.max_substeps must be positive", ErrInvalid))
	}
	if c.Runtime.MaxFrameDelta <= 0 {
		errs = append(errs, fmt.Errorf("%w: runtime.max_frame_delta must be positive", ErrInvalid))
	}
	if err := c.Player.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	if err := c.Weapon.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	if err := c.NPC.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	if _, ok := c.Levels[c.DefaultLevel]; !ok {
		errs = append(errs, fmt.Errorf("%w: default_level %q", ErrUnknownLevel, c.DefaultLevel))
	}
	persistent := map[string]bool{ui.Name: true, level.SkyName: true, player.Name: true, level.Name: true}
	for name, l := range c.Levels {
		if l.Model == "" {
			errs = append(errs, fmt.Errorf("%w: level %q has no model", ErrInvalid, name))
		}
		errs = append(errs, l.checkNames(name, persistent)...)
	}
	return errors.Join(errs...)
}

// NPCName returns the entity name of the i-th NPC spawn.
func (l LevelConfig) NPCName(i int) string {
	if name := l.NPCs[i].Name; name != "" {
		return name
	}
	return fmt.Sprintf("Mutant%d", i)
}

// AmmoName returns the entity name of the i-th ammo spawn.
func (l LevelConfig) AmmoName(i int) string {
	if name := l.Ammo[i].Name; name != "" {
		return name
	}
	return fmt.Sprintf("AmmoBox%d", i)
}

// checkNames rejects spawn names that repeat within the level or belong to
// entities that outlive level changes.
func (l LevelConfig) checkNames(tag string, persistent map[string]bool) []error {
	var errs []error
	seen := make(map[string]bool, len(l.NPCs)+len(l.Ammo))
	check := func(name string) {
		switch {
		case persistent[name]:
			errs = append(errs, fmt.Errorf("%w: level %q spawn %q clashes with a persistent entity", ErrInvalid, tag, name))
		case seen[name]:
			errs = append(errs, fmt.Errorf("%w: level %q spawn %q is not unique", ErrInvalid, tag, name))
		}
		seen[name] = true
	}
	for i := range l.NPCs {
		check(l.NPCName(i))
	}
	for i := range l.Ammo {
		check(l.AmmoName(i))
	}
	return errs
}

// Level returns the named level.
func (c *Config) Level(name string) (LevelConfig, error) {
	l, ok := c.Levels[name]
	if !ok {
		return LevelConfig{}, fmt.Errorf("%w: %s", ErrUnknownLevel, name)
	}
	return l, nil
}
