package robot

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/teslashibe/go-brains/internal/log"
	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/arbiter"
	"github.com/teslashibe/go-brains/pkg/behaviour"
	"github.com/teslashibe/go-brains/pkg/sensor"
)

// Snapshot is a point-in-time view of a controller.
type Snapshot struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Tick    uint64           `json:"tick"`
	State   string           `json:"state,omitempty"`
	Command actuator.Command `json:"command"`
	Halted  string           `json:"halted,omitempty"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithID fixes the controller ID instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(c *Controller) { c.id = id }
}

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = log.Or(l) }
}

// Controller owns one robot's sensors, behaviours and arbitration strategy.
// All movement flows through Tick: sensors are sampled, the strategy is
// stepped with the last command and the result becomes the new command.
//
// Tick is not meant to be called concurrently for one controller; the lock
// exists so dashboards can read snapshots while a simulation runs.
type Controller struct {
	id   uuid.UUID
	name string
	log  *slog.Logger

	mu         sync.RWMutex
	sensors    []sensor.Sensor
	sensorIdx  map[string]sensor.Sensor
	behaviours []behaviour.Behaviour
	behaveIdx  map[string]behaviour.Behaviour
	strategy   arbiter.Strategy

	cmd    actuator.Command
	ticks  uint64
	halted error
}

// New creates an empty controller. Sensors, behaviours and a strategy are
// added before the first Tick.
func New(name string, opts ...Option) *Controller {
	c := &Controller{
		id:        uuid.New(),
		name:      name,
		log:       log.L(),
		sensorIdx: make(map[string]sensor.Sensor),
		behaveIdx: make(map[string]behaviour.Behaviour),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("robot", name)
	return c
}

// AddSensors registers sensors by name.
func (c *Controller) AddSensors(ss ...sensor.Sensor) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range ss {
		if _, dup := c.sensorIdx[s.Name()]; dup {
			return fmt.Errorf("%w: sensor %q", ErrDuplicateName, s.Name())
		}
		c.sensorIdx[s.Name()] = s
		c.sensors = append(c.sensors, s)
	}
	return nil
}

// AddBehaviour registers b under name. Registered behaviours are reset with
// the controller.
func (c *Controller) AddBehaviour(name string, b behaviour.Behaviour) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.behaveIdx[name]; dup {
		return fmt.Errorf("%w: behaviour %q", ErrDuplicateName, name)
	}
	c.behaveIdx[name] = b
	c.behaviours = append(c.behaviours, b)
	return nil
}

// SetStrategy installs the arbitration strategy.
func (c *Controller) SetStrategy(s arbiter.Strategy) {
	c.mu.Lock()
	c.strategy = s
	c.mu.Unlock()
}

// Env exposes the registered sensors and behaviours to behaviour.Build.
func (c *Controller) Env() behaviour.Env {
	c.mu.RLock()
	defer c.mu.RUnlock()
	env := behaviour.Env{
		Sensors:    make(map[string]sensor.Sensor, len(c.sensorIdx)),
		Behaviours: make(map[string]behaviour.Behaviour, len(c.behaveIdx)),
	}
	for k, v := range c.sensorIdx {
		env.Sensors[k] = v
	}
	for k, v := range c.behaveIdx {
		env.Behaviours[k] = v
	}
	return env
}

// Sensor returns the sensor registered under name.
func (c *Controller) Sensor(name string) (sensor.Sensor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sensorIdx[name]
	return s, ok
}

// Behaviour returns the behaviour registered under name.
func (c *Controller) Behaviour(name string) (behaviour.Behaviour, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.behaveIdx[name]
	return b, ok
}

// Bind attaches every sensor to p.
func (c *Controller) Bind(p sensor.Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.sensors {
		s.Bind(p)
	}
}

// Tick runs one control cycle and returns the new command.
func (c *Controller) Tick() (actuator.Command, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.halted != nil {
		return c.cmd, fmt.Errorf("%w: %s: %v", ErrHalted, c.name, c.halted)
	}
	if err := c.wired(); err != nil {
		return c.cmd, err
	}

	for _, s := range c.sensors {
		if err := s.Sample(); err != nil {
			return c.cmd, c.halt(fmt.Errorf("sample %s: %w", s.Name(), err))
		}
	}
	cmd, err := c.strategy.Step(c.cmd)
	if err != nil {
		return c.cmd, c.halt(err)
	}
	c.cmd = cmd
	c.ticks++
	return cmd, nil
}

func (c *Controller) wired() error {
	if c.strategy == nil {
		return fmt.Errorf("%w: %s has no strategy", ErrNotWired, c.name)
	}
	for _, s := range c.sensors {
		if !s.Bound() {
			return fmt.Errorf("%w: %s: sensor %q is unbound", ErrNotWired, c.name, s.Name())
		}
	}
	return nil
}

func (c *Controller) halt(err error) error {
	c.halted = err
	c.log.Error("controller halted", "tick", c.ticks, "error", err)
	return fmt.Errorf("%s: tick %d: %w", c.name, c.ticks, err)
}

// Reset resets every behaviour and the strategy and clears the command,
// tick counter and halt state. Sensor bindings are kept.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.behaviours {
		b.Reset()
	}
	if c.strategy != nil {
		c.strategy.Reset()
	}
	c.cmd = actuator.Command{}
	c.ticks = 0
	c.halted = nil
}

// ID returns the controller's unique ID.
func (c *Controller) ID() uuid.UUID { return c.id }

// Name returns the robot name.
func (c *Controller) Name() string { return c.name }

// Command returns the current canonical command.
func (c *Controller) Command() actuator.Command {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cmd
}

// Ticks returns the number of successful ticks since Reset.
func (c *Controller) Ticks() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ticks
}

// Halted returns the fatal error that stopped the controller, if any.
func (c *Controller) Halted() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.halted
}

// Snapshot implements Observer.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Snapshot{
		ID:      c.id.String(),
		Name:    c.name,
		Tick:    c.ticks,
		Command: c.cmd,
	}
	if st, ok := c.strategy.(arbiter.Stater); ok {
		s.State = st.State()
	}
	if c.halted != nil {
		s.Halted = c.halted.Error()
	}
	return s
}
