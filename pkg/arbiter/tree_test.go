package arbiter

import (
	"errors"
	"testing"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/behaviour"
)

func TestTree_SelectorFallsBack(t *testing.T) {
	chase := newStub("chase", actuator.Drive(90, 1), 0)
	wander := newStub("wander", actuator.Drive(30, -2), 0)
	seen := false

	tree, err := NewTree(func(t *Tree) bt.Node {
		return Selector(
			Sequence(t.Guard(func() bool { return seen }), t.Leaf(chase)),
			t.Leaf(wander),
		)
	})
	require.NoError(t, err)

	out, err := tree.Step(actuator.Command{})
	require.NoError(t, err)
	assert.Equal(t, actuator.Drive(30, -2), out)
	assert.Equal(t, "running", tree.State())

	seen = true
	out, err = tree.Step(out)
	require.NoError(t, err)
	assert.Equal(t, actuator.Drive(90, 1), out)
	assert.Equal(t, 1, wander.updates, "selector stops at the first running child")
}

func TestTree_SequenceRestarts(t *testing.T) {
	first := newStub("first", actuator.Drive(40, 0), 2)
	second := newStub("second", actuator.Drive(-40, 5), 1)

	tree, err := NewTree(func(t *Tree) bt.Node {
		return Sequence(t.Leaf(first), t.Leaf(second))
	})
	require.NoError(t, err)

	out, err := tree.Step(actuator.Command{})
	require.NoError(t, err)
	assert.Equal(t, 40.0, out.Motor())
	assert.Zero(t, second.updates)

	out, err = tree.Step(out)
	require.NoError(t, err)
	assert.Equal(t, -40.0, out.Motor(), "second runs in the tick first finishes")
	assert.Equal(t, "success", tree.State())
	assert.Equal(t, 1, tree.Rounds())
	assert.Equal(t, 1, first.resets)
	assert.Equal(t, 1, second.resets)

	out, err = tree.Step(out)
	require.NoError(t, err)
	assert.Equal(t, 40.0, out.Motor(), "tree starts over after settling")
}

func TestTree_CarriesUnwrittenFields(t *testing.T) {
	steer := newStub("steer", func() actuator.Command {
		var c actuator.Command
		c.SetSteering(7)
		return c
	}(), 0)
	tree, err := NewTree(func(t *Tree) bt.Node { return t.Leaf(steer) })
	require.NoError(t, err)

	prev := actuator.Drive(55, 0)
	prev.SetArm(true)
	out, err := tree.Step(prev)
	require.NoError(t, err)
	assert.Equal(t, 55.0, out.Motor())
	assert.Equal(t, 7.0, out.Steering())
	assert.True(t, out.Arm())
	assert.Equal(t, actuator.FieldSteering, out.Written())
}

type failing struct{ stub }

var errJammed = errors.New("jammed")

func (f *failing) Update() (actuator.Command, error) { return actuator.Command{}, errJammed }

func TestTree_PropagatesErrors(t *testing.T) {
	var b behaviour.Behaviour = &failing{}
	tree, err := NewTree(func(t *Tree) bt.Node { return t.Leaf(b) })
	require.NoError(t, err)

	_, err = tree.Step(actuator.Command{})
	assert.True(t, errors.Is(err, errJammed))

	_, err = NewTree(func(*Tree) bt.Node { return nil })
	assert.True(t, errors.Is(err, ErrInvalidStrategy))
}
