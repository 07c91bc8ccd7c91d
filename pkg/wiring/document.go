// Package wiring builds robot controllers from YAML documents. A document
// lists sensors and behaviours by kind with typed configuration, names the
// sensors each behaviour reads, and picks one arbitration strategy.
// Conditions come from a fixed vocabulary of sensor predicates; nothing is
// evaluated at runtime.
package wiring

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-brains/pkg/behaviour"
	"github.com/teslashibe/go-brains/pkg/sensor"
)

var (
	// ErrInvalid is returned for malformed documents.
	ErrInvalid = errors.New("invalid wiring")

	// ErrUnknownName is returned when a document refers to a sensor or
	// behaviour it does not declare.
	ErrUnknownName = errors.New("unknown name")
)

// Strategy kinds.
const (
	PassThrough = "passthrough"
	Fallback    = "fallback"
	Override    = "override"
	Queue       = "queue"
)

// Document is one wired robot.
type Document struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Step        time.Duration    `yaml:"step"`
	Sensors     []sensor.Spec    `yaml:"sensors"`
	Behaviours  []behaviour.Spec `yaml:"behaviours"`
	Strategy    Strategy         `yaml:"strategy"`
}

// Strategy selects and configures the arbitration. Only the fields of the
// chosen kind are read.
type Strategy struct {
	Kind string `yaml:"kind"`

	// passthrough
	Behaviour string `yaml:"behaviour"`

	// fallback
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
	When      *Cond  `yaml:"when"`

	// override
	Default string `yaml:"default"`
	Rules   []Rule `yaml:"rules"`

	// queue
	Steps  []string `yaml:"steps"`
	Repeat []string `yaml:"repeat"`
}

// Rule is one override rule. Exactly one of Use and Command is set.
type Rule struct {
	Name    string       `yaml:"name"`
	When    Cond         `yaml:"when"`
	Use     string       `yaml:"use"`
	Command *CommandSpec `yaml:"command"`
	Fields  []string     `yaml:"fields"`
}

// CommandSpec is a fixed command. Unset fields stay unwritten.
type CommandSpec struct {
	Motor    *float64 `yaml:"motor"`
	Steering *float64 `yaml:"steering"`
	Arm      *bool    `yaml:"arm"`
}

// Cond is a predicate over sensor readings. Exactly one key is set.
type Cond struct {
	Always bool `yaml:"always"`

	// Contact holds while the named bumper touches something.
	Contact string `yaml:"contact"`
	// Robot holds while the named radar sees a robot.
	Robot string `yaml:"robot"`
	// Sees holds while the named camera sees its target.
	Sees string `yaml:"sees"`
	// Holding holds while the named collection sensor reports a grip.
	Holding string `yaml:"holding"`
	// Finished holds once the named behaviour has finished.
	Finished string `yaml:"finished"`
	// Below holds while a distance sensor reads under Value.
	Below *Threshold `yaml:"below"`
	// Count holds once a collection sensor has counted Value items.
	Count *Threshold `yaml:"count"`

	Not *Cond  `yaml:"not"`
	All []Cond `yaml:"all"`
	Any []Cond `yaml:"any"`
}

// Threshold pairs a sensor with a limit.
type Threshold struct {
	Sensor string  `yaml:"sensor"`
	Value  float64 `yaml:"value"`
}

// Load reads a document from path.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read wiring %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a document. Unknown keys are rejected.
func Parse(data []byte) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(doc.Sensors) == 0 {
		return Document{}, fmt.Errorf("%w: no sensors", ErrInvalid)
	}
	if len(doc.Behaviours) == 0 {
		return Document{}, fmt.Errorf("%w: no behaviours", ErrInvalid)
	}
	return doc, nil
}
