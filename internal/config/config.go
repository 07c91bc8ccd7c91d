// Package config provides configuration loading for go-brains hosts.
// Simulation files are YAML; process-level settings come from environment
// variables with defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// Default host configuration.
const (
	DefaultListen   = ":8080"
	DefaultLogLevel = "info"
	DefaultTick     = 20 * time.Millisecond // 50 Hz, matches the simulator step
	DefaultTicks    = 3000
)

// ErrInvalid is returned when a simulation file fails validation.
var ErrInvalid = errors.New("invalid simulation config")

// Sim describes one simulation run.
type Sim struct {
	// Tick is the simulated time step. It is never compared with wall time.
	Tick time.Duration `yaml:"tick"`

	// Ticks is the number of steps to run; 0 means run until cancelled.
	Ticks int `yaml:"ticks"`

	// Parallel ticks independent controllers concurrently.
	Parallel bool `yaml:"parallel"`

	// LogLevel overrides BRAINS_LOG_LEVEL when set.
	LogLevel string `yaml:"log_level"`

	Arena     Box     `yaml:"arena"`
	Obstacles []Box   `yaml:"obstacles"`
	Items     []Item  `yaml:"items"`
	Terrain   []Patch `yaml:"terrain"`
	Robots    []Robot `yaml:"robots"`
}

// Box is an axis-aligned rectangle.
type Box struct {
	Min orb.Point `yaml:"min"`
	Max orb.Point `yaml:"max"`
}

// Bound converts the box to an orb.Bound.
func (b Box) Bound() orb.Bound {
	return orb.Bound{Min: b.Min, Max: b.Max}
}

// Item is a collectable object placed in the arena.
type Item struct {
	Position orb.Point `yaml:"position"`
	Upright  bool      `yaml:"upright"`
}

// Patch is a region of floor with reduced friction.
type Patch struct {
	Area     Box     `yaml:"area"`
	Friction float64 `yaml:"friction"`
}

// Robot places one controller in the arena. Exactly one of Brain or Wiring
// must be set.
type Robot struct {
	Name     string    `yaml:"name"`
	Brain    string    `yaml:"brain"`
	Wiring   string    `yaml:"wiring"`
	Position orb.Point `yaml:"position"`
	Heading  float64   `yaml:"heading"`

	// Anticlockwise flips wall-following brains.
	Anticlockwise bool `yaml:"anticlockwise"`
}

// Default returns an empty arena with the default step.
func Default() Sim {
	return Sim{
		Tick:  DefaultTick,
		Ticks: DefaultTicks,
		Arena: Box{Min: orb.Point{0, 0}, Max: orb.Point{1000, 800}},
	}
}

// Load reads and validates a simulation file.
func Load(path string) (Sim, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Sim{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a simulation document on top of Default and validates it.
func Parse(data []byte) (Sim, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Sim{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Sim{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors that would otherwise surface
// mid-run.
func (s Sim) Validate() error {
	if s.Tick <= 0 {
		return fmt.Errorf("%w: tick must be positive, got %s", ErrInvalid, s.Tick)
	}
	if s.Ticks < 0 {
		return fmt.Errorf("%w: ticks must not be negative", ErrInvalid)
	}
	if s.Arena.Max[0] <= s.Arena.Min[0] || s.Arena.Max[1] <= s.Arena.Min[1] {
		return fmt.Errorf("%w: arena is empty", ErrInvalid)
	}
	for i, p := range s.Terrain {
		if p.Friction < 0 || p.Friction > 1 {
			return fmt.Errorf("%w: terrain patch %d friction %g outside [0, 1]", ErrInvalid, i, p.Friction)
		}
	}
	if len(s.Robots) == 0 {
		return fmt.Errorf("%w: no robots", ErrInvalid)
	}

	seen := make(map[string]bool, len(s.Robots))
	for i, r := range s.Robots {
		if r.Name == "" {
			return fmt.Errorf("%w: robot %d has no name", ErrInvalid, i)
		}
		if seen[r.Name] {
			return fmt.Errorf("%w: duplicate robot name %q", ErrInvalid, r.Name)
		}
		seen[r.Name] = true

		if (r.Brain == "") == (r.Wiring == "") {
			return fmt.Errorf("%w: robot %q needs exactly one of brain or wiring", ErrInvalid, r.Name)
		}
		if !s.Arena.Bound().Contains(r.Position) {
			return fmt.Errorf("%w: robot %q starts outside the arena", ErrInvalid, r.Name)
		}
	}
	return nil
}

// LogLevel returns the log level from BRAINS_LOG_LEVEL, or the default.
func LogLevel() string {
	if lvl := os.Getenv("BRAINS_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return DefaultLogLevel
}

// Listen returns the dashboard listen address from BRAINS_LISTEN, or the
// default.
func Listen() string {
	if addr := os.Getenv("BRAINS_LISTEN"); addr != "" {
		return addr
	}
	return DefaultListen
}
