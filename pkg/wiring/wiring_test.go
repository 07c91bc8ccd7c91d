package wiring

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-brains/internal/log"
	"github.com/teslashibe/go-brains/pkg/behaviour"
	"github.com/teslashibe/go-brains/pkg/brains"
	"github.com/teslashibe/go-brains/pkg/robot"
	"github.com/teslashibe/go-brains/pkg/sensor"
	"github.com/teslashibe/go-brains/pkg/sensor/sensortest"
)

const motion = `
sensors:
  - {name: velocity, kind: velocity}
  - {name: compass, kind: compass}
  - {name: radar, kind: radar, radar: {range: 300}}
  - {name: left, kind: distance}
  - name: bump
    kind: bumper
    bumper: {mount: {offset: [40, 0]}, shape: {radius: 10}}
`

const chase = motion + `
name: chase
behaviours:
  - name: chase
    kind: move-to-robot
    inputs: {velocity: velocity, compass: compass, radar: radar}
  - name: wall
    kind: follow-wall
    inputs: {velocity: velocity, compass: compass, distance: left}
    wall: {velocity: 100, proximity: 150}
strategy:
  kind: fallback
  primary: chase
  secondary: wall
  when:
    all:
      - robot: radar
      - not: {finished: chase}
`

const steps = motion + `
name: steps
behaviours:
  - name: a
    kind: drive
    inputs: {velocity: velocity}
    drive: {velocity: 50, duration: 1s}
  - name: b
    kind: drive
    inputs: {velocity: velocity}
    drive: {velocity: -50, duration: 1s}
strategy:
  kind: queue
  steps: [a, b]
`

func build(t *testing.T, src string, opts brains.Options) (*robot.Controller, *sensortest.Probe) {
	t.Helper()
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	opts.Logger = log.Discard()
	c, err := Build(doc, opts)
	require.NoError(t, err)
	probe := sensortest.New()
	c.Bind(probe)
	return c, probe
}

func TestLoad_Bumper(t *testing.T) {
	doc, err := Load("../../configs/wiring/bumper.yaml")
	require.NoError(t, err)
	assert.Equal(t, "wired-bumper", doc.Name)

	c, err := Build(doc, brains.Options{Logger: log.Discard()})
	require.NoError(t, err)
	assert.Equal(t, "wired-bumper", c.Name())
	probe := sensortest.New()
	c.Bind(probe)

	cmd, err := c.Tick()
	require.NoError(t, err)
	assert.Greater(t, cmd.Motor(), 0.0)
	assert.Equal(t, "default", c.Snapshot().State)

	probe.Contacts[orb.Point{40, 0}] = true
	cmd, err = c.Tick()
	require.NoError(t, err)
	assert.Equal(t, -20.0, cmd.Motor())
	assert.Equal(t, "reverse", c.Snapshot().State)
}

func TestLoad_Avoider(t *testing.T) {
	doc, err := Load("../../configs/wiring/avoider.yaml")
	require.NoError(t, err)

	c, err := Build(doc, brains.Options{Name: "rover", Logger: log.Discard()})
	require.NoError(t, err)
	assert.Equal(t, "rover", c.Name())
	c.Bind(sensortest.New())
	for range 10 {
		_, err := c.Tick()
		require.NoError(t, err)
	}
}

func TestBuild_Fallback(t *testing.T) {
	c, probe := build(t, chase, brains.Options{})

	_, err := c.Tick()
	require.NoError(t, err)
	assert.Equal(t, "secondary", c.Snapshot().State)

	probe.Robot = sensor.Detection{Found: true, Distance: 120, Angle: 0.3}
	_, err = c.Tick()
	require.NoError(t, err)
	assert.Equal(t, "primary", c.Snapshot().State)
}

func TestBuild_Queue(t *testing.T) {
	c, _ := build(t, steps, brains.Options{})
	cmd, err := c.Tick()
	require.NoError(t, err)
	assert.Greater(t, cmd.Motor(), 0.0)
	assert.Equal(t, "step-0", c.Snapshot().State)
}

func TestBuild_AnticlockwiseLeavesDocument(t *testing.T) {
	doc, err := Parse([]byte(chase))
	require.NoError(t, err)
	_, err = Build(doc, brains.Options{Anticlockwise: true, Logger: log.Discard()})
	require.NoError(t, err)
	assert.False(t, doc.Behaviours[1].Wall.Anticlockwise)
}

func TestRegister(t *testing.T) {
	doc, err := Parse([]byte(steps))
	require.NoError(t, err)

	r := brains.NewRegistry()
	Register(r, doc)
	assert.Equal(t, []string{"steps"}, r.List())

	c, err := r.Build("steps", brains.Options{Logger: log.Discard()})
	require.NoError(t, err)
	assert.Equal(t, "steps", c.Name())
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{
			name: "unknown strategy",
			src:  strings.Replace(steps, "kind: queue", "kind: lottery", 1),
			want: ErrInvalid,
		},
		{
			name: "unknown step",
			src:  strings.Replace(steps, "steps: [a, b]", "steps: [a, c]", 1),
			want: ErrUnknownName,
		},
		{
			name: "condition with two keys",
			src:  strings.Replace(chase, "- robot: radar", "- {robot: radar, contact: bump}", 1),
			want: ErrInvalid,
		},
		{
			name: "condition on wrong sensor kind",
			src:  strings.Replace(chase, "- robot: radar", "- contact: left", 1),
			want: ErrInvalid,
		},
		{
			name: "condition on missing sensor",
			src:  strings.Replace(chase, "- robot: radar", "- robot: sonar", 1),
			want: ErrUnknownName,
		},
		{
			name: "fractional count",
			src: motion + `  - {name: bin, kind: collection}
name: bad
behaviours:
  - {name: a, kind: drive, inputs: {velocity: velocity}}
  - {name: b, kind: drive, inputs: {velocity: velocity}}
strategy:
  kind: fallback
  primary: a
  secondary: b
  when: {count: {sensor: bin, value: 2.5}}
`,
			want: ErrInvalid,
		},
		{
			name: "negative count",
			src: motion + `  - {name: bin, kind: collection}
name: bad
behaviours:
  - {name: a, kind: drive, inputs: {velocity: velocity}}
  - {name: b, kind: drive, inputs: {velocity: velocity}}
strategy:
  kind: fallback
  primary: a
  secondary: b
  when: {count: {sensor: bin, value: -1}}
`,
			want: ErrInvalid,
		},
		{
			name: "unknown sensor kind",
			src:  strings.Replace(steps, "kind: radar", "kind: lidar", 1),
			want: sensor.ErrUnknownKind,
		},
		{
			name: "override rule without action",
			src: motion + `
name: bad
behaviours:
  - {name: a, kind: drive, inputs: {velocity: velocity}}
strategy:
  kind: override
  default: a
  rules:
    - {name: r, when: {contact: bump}, fields: [motor]}
`,
			want: ErrInvalid,
		},
		{
			name: "override rule with both actions",
			src: motion + `
name: bad
behaviours:
  - {name: a, kind: drive, inputs: {velocity: velocity}}
strategy:
  kind: override
  default: a
  rules:
    - {name: r, when: {contact: bump}, use: a, command: {motor: 1}, fields: [motor]}
`,
			want: ErrInvalid,
		},
		{
			name: "unknown field",
			src: motion + `
name: bad
behaviours:
  - {name: a, kind: drive, inputs: {velocity: velocity}}
strategy:
  kind: override
  default: a
  rules:
    - {name: r, when: {contact: bump}, command: {motor: 1}, fields: [wheels]}
`,
			want: ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.src))
			require.NoError(t, err)
			_, err = Build(doc, brains.Options{Logger: log.Discard()})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	for name, src := range map[string]string{
		"unknown key":                  steps + "\ncolour: red\n",
		"unknown behaviour config key": strings.Replace(steps, "drive: {velocity: 50, duration: 1s}", "drive: {velocty: 50}", 1),
		"unknown sensor config key":    strings.Replace(steps, "radar: {range: 300}", "radar: {rnage: 300}", 1),
		"no sensors":                   "name: x\nbehaviours: [{name: a, kind: drive}]\n",
		"no behaviours":                motion,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}

	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoad_EveryShippedWiring(t *testing.T) {
	paths, err := filepath.Glob("../../configs/wiring/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			doc, err := Load(path)
			require.NoError(t, err)
			c, err := Build(doc, brains.Options{Logger: log.Discard()})
			require.NoError(t, err)
			c.Bind(sensortest.New())
			for range 20 {
				_, err := c.Tick()
				require.NoError(t, err)
			}
		})
	}
}

func TestBuild_PartialConfigs(t *testing.T) {
	tests := []struct {
		name      string
		sensors   string
		behaviour string
		check     func(t *testing.T, doc Document)
	}{
		{
			name:      "turn angle only",
			behaviour: "{name: go, kind: relative-turn, inputs: {velocity: velocity, compass: compass}, turn: {angle: 1.57}}",
			check: func(t *testing.T, doc Document) {
				assert.Equal(t, behaviour.DefaultPrecision, doc.Behaviours[0].Turn.Precision)
				assert.Equal(t, behaviour.DefaultTurnVelocity, doc.Behaviours[0].Turn.Velocity)
			},
		},
		{
			name:      "avoid without react",
			sensors:   "  - {name: right, kind: distance, distance: {mount: {angle: -0.6}}}\n",
			behaviour: "{name: go, kind: avoid-obstacle, inputs: {velocity: velocity, compass: compass, left: left, right: right}, avoid: {velocity: 100, proximity: 200}}",
			check: func(t *testing.T, doc Document) {
				assert.Equal(t, behaviour.DefaultAvoidReact, doc.Behaviours[0].Avoid.React)
			},
		},
		{
			name:      "wall proximity only",
			behaviour: "{name: go, kind: follow-wall, inputs: {velocity: velocity, compass: compass, distance: left}, wall: {proximity: 150}}",
			check: func(t *testing.T, doc Document) {
				assert.Equal(t, behaviour.DefaultVelocity, doc.Behaviours[0].Wall.Velocity)
			},
		},
		{
			name:      "follow without robot stop",
			behaviour: "{name: go, kind: move-to-robot, inputs: {velocity: velocity, compass: compass, radar: radar}, approach: {velocity: 40}}",
			check: func(t *testing.T, doc Document) {
				assert.Equal(t, behaviour.DefaultRobotStop, doc.Behaviours[0].Approach.Stop)
			},
		},
		{
			name:      "rangefinder mount only",
			sensors:   "  - {name: side, kind: distance, distance: {mount: {angle: 0.5}}}\n",
			behaviour: "{name: go, kind: follow-wall, inputs: {velocity: velocity, compass: compass, distance: side}}",
			check: func(t *testing.T, doc Document) {
				assert.Equal(t, sensor.DefaultDistanceRange, doc.Sensors[len(doc.Sensors)-1].Distance.MaxRange)
			},
		},
		{
			name:      "rangefinder range only",
			sensors:   "  - {name: side, kind: distance, distance: {max_range: 400}}\n",
			behaviour: "{name: go, kind: follow-wall, inputs: {velocity: velocity, compass: compass, distance: side}}",
			check: func(t *testing.T, doc Document) {
				assert.Equal(t, 400.0, doc.Sensors[len(doc.Sensors)-1].Distance.MaxRange)
				assert.Zero(t, doc.Sensors[len(doc.Sensors)-1].Distance.Mount.Angle)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := motion + tt.sensors + `name: partial
behaviours:
  - ` + tt.behaviour + `
strategy:
  kind: passthrough
  behaviour: go
`
			doc, err := Parse([]byte(src))
			require.NoError(t, err)
			tt.check(t, doc)

			c, err := Build(doc, brains.Options{Logger: log.Discard()})
			require.NoError(t, err)
			c.Bind(sensortest.New())
			for range 5 {
				_, err := c.Tick()
				require.NoError(t, err)
			}
		})
	}
}
