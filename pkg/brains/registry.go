package brains

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/teslashibe/go-brains/pkg/robot"
)

// Options parameterise a brain constructor.
type Options struct {
	// Name is the robot name. Empty uses the brain name.
	Name string

	// Anticlockwise flips the circuit of wall-following brains.
	Anticlockwise bool

	// Step is the simulated tick length. Zero uses behaviour.DefaultStep.
	Step time.Duration

	Logger *slog.Logger
}

// Constructor builds a fully wired controller.
type Constructor func(Options) (*robot.Controller, error)

type entry struct {
	build       Constructor
	description string
}

// Registry maps brain names to constructors.
type Registry struct {
	mu     sync.RWMutex
	brains map[string]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{brains: make(map[string]entry)}
}

// Register adds a brain, replacing any brain of the same name.
func (r *Registry) Register(name, description string, build Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.brains[name] = entry{build: build, description: description}
}

// Get retrieves a constructor by name.
func (r *Registry) Get(name string) (Constructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.brains[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return e.build, nil
}

// Build constructs the named brain. The robot name defaults to the brain
// name.
func (r *Registry) Build(name string, opts Options) (*robot.Controller, error) {
	build, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if opts.Name == "" {
		opts.Name = name
	}
	c, err := build(opts)
	if err != nil {
		return nil, fmt.Errorf("brain %s: %w", name, err)
	}
	return c, nil
}

// List returns all registered brain names, sorted alphabetically.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.brains))
	for name := range r.brains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the description registered with name.
func (r *Registry) Describe(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.brains[name].description
}

// Default holds the built-in brains.
var Default = NewRegistry()

// Register adds a brain to Default.
func Register(name, description string, build Constructor) {
	Default.Register(name, description, build)
}

// Get retrieves a constructor from Default.
func Get(name string) (Constructor, error) { return Default.Get(name) }

// Build constructs a brain from Default.
func Build(name string, opts Options) (*robot.Controller, error) {
	return Default.Build(name, opts)
}

// List returns the names in Default.
func List() []string { return Default.List() }
