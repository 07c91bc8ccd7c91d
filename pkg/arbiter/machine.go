package arbiter

import (
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-brains/internal/log"
	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/behaviour"
)

// DefaultRequired is the set of fields every machine state must write or
// declare kept.
const DefaultRequired = actuator.FieldMotor | actuator.FieldSteering | actuator.FieldArm

// DefaultHistory bounds the transition log.
const DefaultHistory = 256

// Frame is the command under construction for one tick of a state.
type Frame struct {
	cmd  actuator.Command
	prev actuator.Command
}

// Cmd returns the command being built. Setters on it mark fields written.
func (f *Frame) Cmd() *actuator.Command { return &f.cmd }

// Prev returns last tick's command.
func (f *Frame) Prev() actuator.Command { return f.prev }

// Run updates b and copies every field it wrote.
func (f *Frame) Run(b behaviour.Behaviour) error {
	cmd, err := b.Update()
	if err != nil {
		return err
	}
	f.cmd.Overlay(cmd, cmd.Written())
	return nil
}

// RunFields updates b and copies only fields.
func (f *Frame) RunFields(b behaviour.Behaviour, fields actuator.Field) error {
	cmd, err := b.Update()
	if err != nil {
		return err
	}
	f.cmd.Overlay(cmd, fields)
	return nil
}

// Keep copies fields from last tick's command and marks them written.
func (f *Frame) Keep(fields actuator.Field) {
	f.cmd.Overlay(f.prev, fields)
}

// State is one node of a Machine.
type State struct {
	Name string

	// Run builds this tick's command. It is called once per tick while the
	// state is active.
	Run func(f *Frame) error

	// Next is the transition function, evaluated after Run. It returns the
	// name of the next state; an empty string or the state's own name stays
	// put without running the entry action. Nil always stays.
	Next func() string

	// Enter runs exactly once each time the state is entered from another
	// state, before its first Run.
	Enter func() error

	// Keeps lists required fields this state may leave unwritten; they hold
	// last tick's values.
	Keeps actuator.Field

	// Ceiling, when positive, bounds the ticks spent in this state without
	// leaving. Reaching it transitions to Escape.
	Ceiling int
	Escape  string
}

// Transition records one state change.
type Transition struct {
	Tick   uint64 `json:"tick"`
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// Transition reasons.
const (
	ReasonNext    = "next"
	ReasonCeiling = "ceiling"
)

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the transition logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.log = log.Or(l) }
}

// WithRequired changes the fields every state must account for.
func WithRequired(fields actuator.Field) Option {
	return func(m *Machine) { m.required = fields }
}

// WithHistory bounds the transition log to n entries.
func WithHistory(n int) Option {
	return func(m *Machine) { m.historyCap = n }
}

// Machine is a named-state machine. Exactly one state is active per tick
// and at most one transition is taken per tick.
type Machine struct {
	name     string
	states   map[string]*State
	order    []string
	initial  string
	required actuator.Field
	log      *slog.Logger

	current      string
	entered      bool
	ticks        uint64
	ticksInState int
	transitions  uint64
	history      []Transition
	historyCap   int
}

// NewMachine creates a machine starting in initial.
func NewMachine(name, initial string, states []State, opts ...Option) (*Machine, error) {
	m := &Machine{
		name:       name,
		states:     make(map[string]*State, len(states)),
		initial:    initial,
		required:   DefaultRequired,
		log:        log.L(),
		historyCap: DefaultHistory,
	}
	for _, opt := range opts {
		opt(m)
	}

	states = append([]State(nil), states...)
	for i := range states {
		s := &states[i]
		switch {
		case s.Name == "":
			return nil, fmt.Errorf("%w: state %d has no name", ErrInvalidStrategy, i)
		case s.Run == nil:
			return nil, fmt.Errorf("%w: state %q has no run function", ErrInvalidStrategy, s.Name)
		case s.Ceiling < 0:
			return nil, fmt.Errorf("%w: state %q has a negative ceiling", ErrInvalidStrategy, s.Name)
		}
		if _, dup := m.states[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate state %q", ErrInvalidStrategy, s.Name)
		}
		m.states[s.Name] = s
		m.order = append(m.order, s.Name)
	}
	if _, ok := m.states[initial]; !ok {
		return nil, fmt.Errorf("%w: initial %q", ErrUnknownState, initial)
	}
	for _, s := range m.states {
		if s.Ceiling == 0 {
			continue
		}
		if _, ok := m.states[s.Escape]; !ok {
			return nil, fmt.Errorf("%w: escape %q of state %q", ErrUnknownState, s.Escape, s.Name)
		}
	}

	m.current = initial
	return m, nil
}

// Step implements Strategy. The initial state's entry action runs on the
// first step after construction or Reset.
func (m *Machine) Step(prev actuator.Command) (actuator.Command, error) {
	m.ticks++
	st := m.states[m.current]

	if !m.entered {
		if err := m.enter(st); err != nil {
			return actuator.Command{}, err
		}
		m.entered = true
	}

	f := Frame{cmd: prev.Fresh(), prev: prev}
	if err := st.Run(&f); err != nil {
		return actuator.Command{}, fmt.Errorf("%s: state %q: %w", m.name, st.Name, err)
	}
	if need := m.required &^ st.Keeps; !f.cmd.Covers(need) {
		missing := need &^ f.cmd.Written()
		return actuator.Command{}, fmt.Errorf("%w: %s: state %q left %s unwritten",
			ErrPartialCommand, m.name, st.Name, missing)
	}
	m.ticksInState++

	next, reason := m.current, ReasonNext
	if st.Next != nil {
		if n := st.Next(); n != "" {
			next = n
		}
	}
	if next == m.current && st.Ceiling > 0 && m.ticksInState >= st.Ceiling {
		next, reason = st.Escape, ReasonCeiling
	}
	if next != m.current {
		if err := m.transition(next, reason); err != nil {
			return actuator.Command{}, err
		}
	}
	return f.cmd, nil
}

func (m *Machine) enter(st *State) error {
	if st.Enter == nil {
		return nil
	}
	if err := st.Enter(); err != nil {
		return fmt.Errorf("%s: entering %q: %w", m.name, st.Name, err)
	}
	return nil
}

func (m *Machine) transition(to, reason string) error {
	target, ok := m.states[to]
	if !ok {
		return fmt.Errorf("%w: %s: %q from %q", ErrUnknownState, m.name, to, m.current)
	}
	if err := m.enter(target); err != nil {
		return err
	}

	t := Transition{Tick: m.ticks, From: m.current, To: to, Reason: reason}
	m.log.Debug("state transition",
		"machine", m.name, "from", t.From, "to", t.To, "reason", reason, "tick", t.Tick)

	if m.historyCap > 0 {
		if len(m.history) == m.historyCap {
			m.history = append(m.history[:0], m.history[1:]...)
		}
		m.history = append(m.history, t)
	}
	m.transitions++
	m.current = to
	m.ticksInState = 0
	return nil
}

// Reset returns the machine to its initial state and clears the history.
// Behaviours that states run are reset by the controller that owns them.
func (m *Machine) Reset() {
	m.current = m.initial
	m.entered = false
	m.ticks = 0
	m.ticksInState = 0
	m.transitions = 0
	m.history = nil
}

// State returns the active state name.
func (m *Machine) State() string { return m.current }

// States returns the state names in declaration order.
func (m *Machine) States() []string { return append([]string(nil), m.order...) }

// TicksInState returns the ticks spent in the active state.
func (m *Machine) TicksInState() int { return m.ticksInState }

// Transitions returns the number of transitions taken since Reset.
func (m *Machine) Transitions() uint64 { return m.transitions }

// History returns the most recent transitions, oldest first.
func (m *Machine) History() []Transition {
	return append([]Transition(nil), m.history...)
}

// RunBehaviour is a State.Run that copies every field b writes.
func RunBehaviour(b behaviour.Behaviour) func(*Frame) error {
	return func(f *Frame) error { return f.Run(b) }
}
