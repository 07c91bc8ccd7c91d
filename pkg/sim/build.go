package sim

import (
	"fmt"
	"path/filepath"

	"github.com/teslashibe/go-brains/internal/config"
	"github.com/teslashibe/go-brains/pkg/brains"
	"github.com/teslashibe/go-brains/pkg/robot"
	"github.com/teslashibe/go-brains/pkg/wiring"
	"github.com/teslashibe/go-brains/pkg/world"
)

// WorldConfig converts a simulation file's arena to a world configuration.
func WorldConfig(cfg config.Sim) world.Config {
	wc := world.DefaultConfig()
	wc.Arena = cfg.Arena.Bound()
	for _, ob := range cfg.Obstacles {
		wc.Obstacles = append(wc.Obstacles, ob.Bound())
	}
	for _, it := range cfg.Items {
		wc.Items = append(wc.Items, world.Item{Position: it.Position, Upright: it.Upright})
	}
	for _, p := range cfg.Terrain {
		wc.Terrain = append(wc.Terrain, world.Patch{Area: p.Area.Bound(), Friction: p.Friction})
	}
	return wc
}

// FromConfig builds a runner from a validated simulation file. Wiring paths
// are resolved against base.
func FromConfig(cfg config.Sim, base string, opts ...Option) (*Runner, error) {
	w := world.New(WorldConfig(cfg))
	r := New(w, append([]Option{WithTick(cfg.Tick), WithParallel(cfg.Parallel)}, opts...)...)

	for _, rc := range cfg.Robots {
		c, err := controller(rc, brains.Options{
			Name:          rc.Name,
			Anticlockwise: rc.Anticlockwise,
			Step:          cfg.Tick,
			Logger:        r.log,
		}, base)
		if err != nil {
			return nil, fmt.Errorf("robot %s: %w", rc.Name, err)
		}
		body, err := w.AddBody(rc.Name, rc.Position, rc.Heading)
		if err != nil {
			return nil, err
		}
		if err := r.Add(c, body); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func controller(rc config.Robot, opts brains.Options, base string) (*robot.Controller, error) {
	if rc.Brain != "" {
		return brains.Build(rc.Brain, opts)
	}
	path := rc.Wiring
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	doc, err := wiring.Load(path)
	if err != nil {
		return nil, err
	}
	return wiring.Build(doc, opts)
}
