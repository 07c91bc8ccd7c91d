package sensor

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Spec describes a sensor by kind with one typed configuration per kind.
// Only the field matching Kind is read; a nil config selects the kind's
// defaults. Decoded from YAML, a config names only the keys it changes.
type Spec struct {
	Name string `yaml:"name"`
	Kind Kind   `yaml:"kind"`

	Distance *DistanceConfig `yaml:"distance,omitempty"`
	Bumper   *BumperConfig   `yaml:"bumper,omitempty"`
	Radar    *RadarConfig    `yaml:"radar,omitempty"`
	Camera   *CameraConfig   `yaml:"camera,omitempty"`
	Noise    *Noise          `yaml:"noise,omitempty"` // compass and velocity
}

// UnmarshalYAML decodes the spec on top of the defaults for its kind.
// Unknown keys are rejected.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Kind Kind `yaml:"kind"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}

	type plain Spec
	p := plain(defaults(head.Kind))
	if err := decodeStrict(node, &p); err != nil {
		return err
	}
	*s = Spec(p)
	return nil
}

// defaults returns a spec whose config for kind holds the stock values.
func defaults(kind Kind) Spec {
	s := Spec{Kind: kind}
	switch kind {
	case KindDistance:
		cfg := DefaultDistanceConfig()
		s.Distance = &cfg
	case KindRadar:
		cfg := DefaultRadarConfig()
		s.Radar = &cfg
	case KindCamera:
		cfg := DefaultCameraConfig()
		s.Camera = &cfg
	}
	return s
}

// decodeStrict decodes node into out, rejecting keys out has no field for.
func decodeStrict(node *yaml.Node, out any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

type builder func(Spec) (Sensor, error)

var builders = map[Kind]builder{
	KindDistance: func(s Spec) (Sensor, error) {
		cfg := DefaultDistanceConfig()
		if s.Distance != nil {
			cfg = *s.Distance
		}
		return NewDistance(s.Name, cfg)
	},
	KindBumper: func(s Spec) (Sensor, error) {
		if s.Bumper == nil {
			return nil, fmt.Errorf("%w: bumper %q needs a shape", ErrInvalidConfig, s.Name)
		}
		return NewBumper(s.Name, *s.Bumper)
	},
	KindRadar: func(s Spec) (Sensor, error) {
		cfg := DefaultRadarConfig()
		if s.Radar != nil {
			cfg = *s.Radar
		}
		return NewRadar(s.Name, cfg)
	},
	KindCamera: func(s Spec) (Sensor, error) {
		cfg := DefaultCameraConfig()
		if s.Camera != nil {
			cfg = *s.Camera
		}
		return NewCamera(s.Name, cfg)
	},
	KindCompass: func(s Spec) (Sensor, error) {
		return NewCompass(s.Name, s.noise())
	},
	KindVelocity: func(s Spec) (Sensor, error) {
		return NewVelocity(s.Name, s.noise())
	},
	KindCollection: func(s Spec) (Sensor, error) { return NewCollection(s.Name), nil },
	KindGPS:        func(s Spec) (Sensor, error) { return NewGPS(s.Name), nil },
	KindEncoder:    func(s Spec) (Sensor, error) { return NewEncoder(s.Name), nil },
	KindTerrain:    func(s Spec) (Sensor, error) { return NewTerrain(s.Name), nil },
}

func (s Spec) noise() Noise {
	if s.Noise == nil {
		return Noise{}
	}
	return *s.Noise
}

// Build constructs a sensor from its spec.
func Build(spec Spec) (Sensor, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: sensor has no name", ErrInvalidConfig)
	}
	b, ok := builders[spec.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, spec.Kind)
	}
	s, err := b(spec)
	if err != nil {
		return nil, fmt.Errorf("sensor %q: %w", spec.Name, err)
	}
	return s, nil
}
