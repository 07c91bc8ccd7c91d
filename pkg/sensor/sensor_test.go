package sensor_test

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-brains/pkg/sensor"
	"github.com/teslashibe/go-brains/pkg/sensor/sensortest"
)

func TestSample_Unbound(t *testing.T) {
	d, err := sensor.NewDistance("front", sensor.DefaultDistanceConfig())
	require.NoError(t, err)

	assert.False(t, d.Bound())
	err = d.Sample()
	assert.True(t, errors.Is(err, sensor.ErrUnbound), "got %v", err)
}

func TestConstructors_InvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		build func() error
	}{
		{"distance zero range", func() error {
			_, err := sensor.NewDistance("d", sensor.DistanceConfig{})
			return err
		}},
		{"distance negative noise", func() error {
			_, err := sensor.NewDistance("d", sensor.DistanceConfig{MaxRange: 10, Noise: sensor.Noise{Sigma: -1}})
			return err
		}},
		{"radar zero range", func() error {
			_, err := sensor.NewRadar("r", sensor.RadarConfig{})
			return err
		}},
		{"camera zero aperture", func() error {
			cfg := sensor.DefaultCameraConfig()
			cfg.Aperture = 0
			_, err := sensor.NewCamera("c", cfg)
			return err
		}},
		{"camera wide aperture", func() error {
			cfg := sensor.DefaultCameraConfig()
			cfg.Aperture = 3 * math.Pi
			_, err := sensor.NewCamera("c", cfg)
			return err
		}},
		{"camera unknown target", func() error {
			cfg := sensor.DefaultCameraConfig()
			cfg.Target = "socks"
			_, err := sensor.NewCamera("c", cfg)
			return err
		}},
		{"bumper empty shape", func() error {
			_, err := sensor.NewBumper("b", sensor.BumperConfig{})
			return err
		}},
		{"bumper negative radius", func() error {
			_, err := sensor.NewBumper("b", sensor.BumperConfig{Shape: sensor.Shape{Radius: -2}})
			return err
		}},
		{"compass negative noise", func() error {
			_, err := sensor.NewCompass("c", sensor.Noise{Sigma: -0.1})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()
			assert.True(t, errors.Is(err, sensor.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestDistance_Reading(t *testing.T) {
	p := sensortest.New()
	d, err := sensor.NewDistance("front", sensor.DistanceConfig{MaxRange: 100})
	require.NoError(t, err)
	p.Bind(d)

	assert.Equal(t, 100.0, d.Value(), "reports max range before sampling")

	require.NoError(t, d.Sample())
	assert.Equal(t, 100.0, d.Value())
	assert.False(t, d.Detected())

	p.Ranges[0] = 42
	// The cached value holds until the next sample.
	assert.Equal(t, 100.0, d.Value())
	require.NoError(t, d.Sample())
	assert.Equal(t, 42.0, d.Value())
	assert.True(t, d.Detected())
}

func TestBumper_Contact(t *testing.T) {
	p := sensortest.New()
	front := orb.Point{20, 0}
	b, err := sensor.NewBumper("front", sensor.BumperConfig{
		Mount: sensor.Mount{Offset: front},
		Shape: sensor.Shape{Width: 5, Height: 30},
	})
	require.NoError(t, err)
	p.Bind(b)

	require.NoError(t, b.Sample())
	assert.False(t, b.Contact())

	p.Contacts[front] = true
	require.NoError(t, b.Sample())
	assert.True(t, b.Contact())
}

func TestPoseSensors(t *testing.T) {
	p := sensortest.New()
	p.Head = 1.25
	p.Speed = -30
	p.Pos = orb.Point{10, 20}
	p.Odo = 500
	p.Friction = 0.4

	compass, err := sensor.NewCompass("compass", sensor.Noise{})
	require.NoError(t, err)
	velocity, err := sensor.NewVelocity("velocity", sensor.Noise{})
	require.NoError(t, err)
	gps := sensor.NewGPS("gps")
	encoder := sensor.NewEncoder("encoder")
	terrain := sensor.NewTerrain("terrain")

	assert.False(t, compass.Initialized())
	assert.Equal(t, 1.0, terrain.Value())

	p.Bind(compass, velocity, gps, encoder, terrain)
	require.NoError(t, sensortest.Sample(compass, velocity, gps, encoder, terrain))

	assert.True(t, compass.Initialized())
	assert.Equal(t, 1.25, compass.Heading())
	assert.Equal(t, -30.0, velocity.Value())
	assert.Equal(t, orb.Point{10, 20}, gps.Position())
	assert.Equal(t, 500.0, encoder.Value())
	assert.Equal(t, 0.4, terrain.Value())
}

func TestNoise_Reproducible(t *testing.T) {
	sample := func() []float64 {
		p := sensortest.New()
		p.Speed = 100
		v, err := sensor.NewVelocity("v", sensor.Noise{Sigma: 0.1, Seed: 7})
		require.NoError(t, err)
		p.Bind(v)
		var out []float64
		for range 5 {
			require.NoError(t, v.Sample())
			out = append(out, v.Value())
		}
		return out
	}

	a, b := sample(), sample()
	assert.Equal(t, a, b)

	varied := false
	for _, v := range a {
		if v != 100 {
			varied = true
		}
	}
	assert.True(t, varied, "noise should perturb readings")
}

func TestCollection(t *testing.T) {
	p := sensortest.New()
	c := sensor.NewCollection("bin")
	p.Bind(c)

	p.Held, p.Hold = 3, true
	require.NoError(t, c.Sample())
	assert.Equal(t, 3, c.Count())
	assert.True(t, c.Holding())
}

func TestRadar(t *testing.T) {
	p := sensortest.New()
	r, err := sensor.NewRadar("radar", sensor.RadarConfig{Range: 100})
	require.NoError(t, err)
	p.Bind(r)

	require.NoError(t, r.Sample())
	assert.False(t, r.HasRobot())

	p.Robot = sensor.Detection{Found: true, Distance: 150, Angle: 0.5}
	require.NoError(t, r.Sample())
	assert.False(t, r.HasRobot(), "robot beyond range")

	p.Robot.Distance = 60
	require.NoError(t, r.Sample())
	assert.True(t, r.HasRobot())
	assert.Equal(t, 0.5, r.Detection().Angle)
}

func TestCamera_SetTarget(t *testing.T) {
	p := sensortest.New()
	c, err := sensor.NewCamera("eye", sensor.DefaultCameraConfig())
	require.NoError(t, err)
	p.Bind(c)

	p.Sights[sensor.TargetRobots] = sensor.Detection{Found: true, Distance: 80}

	require.NoError(t, c.Sample())
	assert.False(t, c.HasTarget())

	require.NoError(t, c.SetTarget(sensor.TargetRobots))
	require.NoError(t, c.Sample())
	assert.True(t, c.HasTarget())
	assert.Equal(t, sensor.TargetRobots, c.Target())

	err = c.SetTarget("ghosts")
	assert.True(t, errors.Is(err, sensor.ErrInvalidConfig))
	assert.Equal(t, sensor.TargetRobots, c.Target())
}

func TestBuild(t *testing.T) {
	for _, kind := range sensor.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			spec := sensor.Spec{Name: "s", Kind: kind}
			if kind == sensor.KindBumper {
				spec.Bumper = &sensor.BumperConfig{Shape: sensor.Shape{Radius: 4}}
			}
			s, err := sensor.Build(spec)
			require.NoError(t, err)
			assert.Equal(t, kind, s.Kind())
			assert.Equal(t, "s", s.Name())
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec sensor.Spec
		want error
	}{
		{"no name", sensor.Spec{Kind: sensor.KindGPS}, sensor.ErrInvalidConfig},
		{"unknown kind", sensor.Spec{Name: "x", Kind: "sonar"}, sensor.ErrUnknownKind},
		{"bumper without shape", sensor.Spec{Name: "b", Kind: sensor.KindBumper}, sensor.ErrInvalidConfig},
		{"bad distance", sensor.Spec{Name: "d", Kind: sensor.KindDistance, Distance: &sensor.DistanceConfig{MaxRange: -1}}, sensor.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sensor.Build(tt.spec)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestCompass_NoiseIsAdditive(t *testing.T) {
	p := sensortest.New()
	c, err := sensor.NewCompass("compass", sensor.Noise{Sigma: 0.05, Seed: 3})
	require.NoError(t, err)
	p.Bind(c)

	varied := false
	for range 20 {
		require.NoError(t, c.Sample())
		if c.Heading() != 0 {
			varied = true
		}
		assert.InDelta(t, 0, c.Heading(), 0.5, "north stays near north")
	}
	assert.True(t, varied, "a zero heading still picks up noise")

	p.Head = math.Pi
	for range 20 {
		require.NoError(t, c.Sample())
		assert.LessOrEqual(t, c.Heading(), math.Pi)
		assert.Greater(t, c.Heading(), -math.Pi)
		assert.InDelta(t, math.Pi, math.Abs(c.Heading()), 0.5)
	}
}

func TestDistance_NoiseNeverInventsObstacles(t *testing.T) {
	p := sensortest.New()
	d, err := sensor.NewDistance("front", sensor.DistanceConfig{
		MaxRange: 100,
		Noise:    sensor.Noise{Sigma: 0.5, Seed: 11},
	})
	require.NoError(t, err)
	p.Bind(d)

	for range 50 {
		require.NoError(t, d.Sample())
		assert.Equal(t, 100.0, d.Value())
		assert.False(t, d.Detected())
	}

	p.Ranges[0] = 90
	for range 50 {
		require.NoError(t, d.Sample())
		assert.GreaterOrEqual(t, d.Value(), 0.0)
		assert.LessOrEqual(t, d.Value(), 100.0)
	}
}

func TestSpec_YAMLKeepsDefaults(t *testing.T) {
	var spec sensor.Spec
	require.NoError(t, yaml.Unmarshal([]byte(`{name: left, kind: distance, distance: {mount: {angle: 0.5}}}`), &spec))
	require.NotNil(t, spec.Distance)
	assert.Equal(t, sensor.DefaultDistanceRange, spec.Distance.MaxRange)
	assert.Equal(t, 0.5, spec.Distance.Mount.Angle)

	spec = sensor.Spec{}
	require.NoError(t, yaml.Unmarshal([]byte(`{name: radar, kind: radar}`), &spec))
	require.NotNil(t, spec.Radar)
	assert.Equal(t, sensor.DefaultRadarRange, spec.Radar.Range)

	_, err := sensor.Build(spec)
	assert.NoError(t, err)

	err = yaml.Unmarshal([]byte(`{name: left, kind: distance, distance: {max_rnage: 10}}`), &spec)
	assert.Error(t, err, "unknown keys are rejected")
}
