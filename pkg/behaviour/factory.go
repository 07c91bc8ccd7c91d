package behaviour

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-brains/pkg/sensor"
)

// Spec describes a behaviour by kind. Inputs maps each sensor role the kind
// reads to a sensor name; Search names the inner behaviour of find-move-to.
// Only the config field matching Kind is read, and a nil config selects the
// kind's defaults. Decoded from YAML, a config names only the keys it
// changes.
type Spec struct {
	Name   string            `yaml:"name"`
	Kind   Kind              `yaml:"kind"`
	Inputs map[string]string `yaml:"inputs"`
	Search string            `yaml:"search,omitempty"`

	Drive    *DriveConfig    `yaml:"drive,omitempty"`
	Turn     *TurnConfig     `yaml:"turn,omitempty"`
	Wall     *WallConfig     `yaml:"wall,omitempty"`
	Avoid    *AvoidConfig    `yaml:"avoid,omitempty"`
	Approach *ApproachConfig `yaml:"approach,omitempty"`
	Bounce   *BounceConfig   `yaml:"bounce,omitempty"`
	Bump     *BumpConfig     `yaml:"bump,omitempty"`
	Drop     *DropConfig     `yaml:"drop,omitempty"`
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
	case KindDrive:
		s.Drive = ptr(DefaultDriveConfig())
	case KindRelativeTurn, KindAbsoluteTurn:
		s.Turn = ptr(DefaultTurnConfig())
	case KindFollowWall:
		s.Wall = ptr(DefaultWallConfig())
	case KindAvoidObstacle:
		s.Avoid = ptr(DefaultAvoidConfig())
	case KindMoveToObject, KindFindMoveTo:
		s.Approach = ptr(DefaultObjectConfig())
	case KindMoveToRobot:
		s.Approach = ptr(DefaultRobotConfig())
	case KindMoveDropReturn:
		s.Drop = ptr(DefaultDropConfig())
	case KindBounce:
		s.Bounce = ptr(DefaultBounceConfig())
	case KindBumpReverse:
		s.Bump = ptr(DefaultBumpConfig())
	}
	return s
}

func ptr[T any](v T) *T { return &v }

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

// Sensor roles read from Spec.Inputs.
const (
	RoleVelocity   = "velocity"
	RoleCompass    = "compass"
	RoleDistance   = "distance"
	RoleLeft       = "left"
	RoleRight      = "right"
	RoleFront      = "front"
	RoleRear       = "rear"
	RoleCamera     = "camera"
	RoleRadar      = "radar"
	RoleBumper     = "bumper"
	RoleCollection = "collection"
)

// Env resolves the names a Spec refers to.
type Env struct {
	Sensors    map[string]sensor.Sensor
	Behaviours map[string]Behaviour
	Step       time.Duration
}

type builder func(Spec, Env) (Behaviour, error)

var builders = map[Kind]builder{
	KindDrive: func(s Spec, env Env) (Behaviour, error) {
		vel, err := input[*sensor.Velocity](s, env, RoleVelocity)
		if err != nil {
			return nil, err
		}
		cfg := orDefault(s.Drive, DefaultDriveConfig)
		cfg.Step = env.Step
		return NewDrive(vel, cfg)
	},
	KindRelativeTurn: func(s Spec, env Env) (Behaviour, error) {
		compass, err := input[*sensor.Compass](s, env, RoleCompass)
		if err != nil {
			return nil, err
		}
		cfg := orDefault(s.Turn, DefaultTurnConfig)
		cfg.Step = env.Step
		return NewRelativeTurn(compass, cfg)
	},
	KindAbsoluteTurn: func(s Spec, env Env) (Behaviour, error) {
		compass, err := input[*sensor.Compass](s, env, RoleCompass)
		if err != nil {
			return nil, err
		}
		cfg := orDefault(s.Turn, DefaultTurnConfig)
		cfg.Step = env.Step
		return NewAbsoluteTurn(compass, cfg)
	},
	KindFollowWall: func(s Spec, env Env) (Behaviour, error) {
		vel, compass, err := motion(s, env)
		if err != nil {
			return nil, err
		}
		dist, err := input[*sensor.Distance](s, env, RoleDistance)
		if err != nil {
			return nil, err
		}
		cfg := orDefault(s.Wall, DefaultWallConfig)
		cfg.Step = env.Step
		return NewFollowWall(vel, compass, dist, cfg)
	},
	KindAvoidObstacle: func(s Spec, env Env) (Behaviour, error) {
		vel, compass, err := motion(s, env)
		if err != nil {
			return nil, err
		}
		left, err := input[*sensor.Distance](s, env, RoleLeft)
		if err != nil {
			return nil, err
		}
		right, err := input[*sensor.Distance](s, env, RoleRight)
		if err != nil {
			return nil, err
		}
		cfg := orDefault(s.Avoid, DefaultAvoidConfig)
		cfg.Step = env.Step
		return NewAvoidObstacle(vel, compass, left, right, cfg)
	},
	KindMoveToObject: func(s Spec, env Env) (Behaviour, error) {
		vel, compass, err := motion(s, env)
		if err != nil {
			return nil, err
		}
		camera, err := input[*sensor.Camera](s, env, RoleCamera)
		if err != nil {
			return nil, err
		}
		cfg := orDefault(s.Approach, DefaultObjectConfig)
		cfg.Step = env.Step
		return NewMoveToObject(camera, vel, compass, cfg)
	},
	KindMoveToRobot: func(s Spec, env Env) (Behaviour, error) {
		vel, compass, err := motion(s, env)
		if err != nil {
			return nil, err
		}
		radar, err := input[*sensor.Radar](s, env, RoleRadar)
		if err != nil {
			return nil, err
		}
		cfg := orDefault(s.Approach, DefaultRobotConfig)
		cfg.Step = env.Step
		return NewMoveToRobot(radar, vel, compass, cfg)
	},
	KindFindMoveTo: func(s Spec, env Env) (Behaviour, error) {
		vel, compass, err := motion(s, env)
		if err != nil {
			return nil, err
		}
		camera, err := input[*sensor.Camera](s, env, RoleCamera)
		if err != nil {
			return nil, err
		}
		var collection *sensor.Collection
		if _, ok := s.Inputs[RoleCollection]; ok {
			if collection, err = input[*sensor.Collection](s, env, RoleCollection); err != nil {
				return nil, err
			}
		}
		search, ok := env.Behaviours[s.Search]
		if !ok {
			return nil, invalid("unknown search behaviour %q", s.Search)
		}
		cfg := orDefault(s.Approach, DefaultObjectConfig)
		cfg.Step = env.Step
		return NewFindMoveTo(camera, vel, compass, collection, search, cfg)
	},
	KindMoveDropReturn: func(s Spec, env Env) (Behaviour, error) {
		vel, compass, err := motion(s, env)
		if err != nil {
			return nil, err
		}
		cfg := orDefault(s.Drop, DefaultDropConfig)
		cfg.Step = env.Step
		return NewMoveDropReturn(compass, vel, cfg)
	},
	KindBounce: func(s Spec, env Env) (Behaviour, error) {
		front, err := input[*sensor.Distance](s, env, RoleFront)
		if err != nil {
			return nil, err
		}
		rear, err := input[*sensor.Distance](s, env, RoleRear)
		if err != nil {
			return nil, err
		}
		return NewBounce(front, rear, orDefault(s.Bounce, DefaultBounceConfig))
	},
	KindBumpReverse: func(s Spec, env Env) (Behaviour, error) {
		bumper, err := input[*sensor.Bumper](s, env, RoleBumper)
		if err != nil {
			return nil, err
		}
		cfg := orDefault(s.Bump, DefaultBumpConfig)
		cfg.Step = env.Step
		return NewBumpReverse(bumper, cfg)
	},
	KindGrip: func(s Spec, env Env) (Behaviour, error) {
		collection, err := input[*sensor.Collection](s, env, RoleCollection)
		if err != nil {
			return nil, err
		}
		return NewGrip(collection)
	},
}

// Build constructs a behaviour from its spec.
func Build(spec Spec, env Env) (Behaviour, error) {
	if spec.Name == "" {
		return nil, invalid("behaviour has no name")
	}
	b, ok := builders[spec.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, spec.Kind)
	}
	out, err := b(spec, env)
	if err != nil {
		return nil, fmt.Errorf("behaviour %q: %w", spec.Name, err)
	}
	return out, nil
}

// input resolves a sensor role to a sensor of the expected variant.
func input[T sensor.Sensor](s Spec, env Env, role string) (T, error) {
	var zero T
	name, ok := s.Inputs[role]
	if !ok {
		return zero, invalid("missing %s input", role)
	}
	found, ok := env.Sensors[name]
	if !ok {
		return zero, invalid("%s input names unknown sensor %q", role, name)
	}
	typed, ok := found.(T)
	if !ok {
		return zero, invalid("%s input %q is a %s sensor", role, name, found.Kind())
	}
	return typed, nil
}

func motion(s Spec, env Env) (*sensor.Velocity, *sensor.Compass, error) {
	vel, err := input[*sensor.Velocity](s, env, RoleVelocity)
	if err != nil {
		return nil, nil, err
	}
	compass, err := input[*sensor.Compass](s, env, RoleCompass)
	if err != nil {
		return nil, nil, err
	}
	return vel, compass, nil
}

func orDefault[C any](cfg *C, def func() C) C {
	if cfg == nil {
		return def()
	}
	return *cfg
}
