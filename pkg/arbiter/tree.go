package arbiter

import (
	"errors"
	"fmt"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/behaviour"
)

// Tree arbitrates with a behaviour tree. Behaviours become leaves and
// conditions become guards; bt.Sequence gives sequencing and bt.Selector
// gives fallback. Leaves write into the tick's frame and the strategy
// returns it.
//
// A leaf reports Running while its behaviour is unfinished and Success once
// it finishes, so a sequence moves on in the same tick. When the root
// settles on Success or Failure every leaf is reset and the tree starts
// over on the next tick.
type Tree struct {
	root   bt.Node
	leaves []behaviour.Behaviour
	frame  actuator.Command
	status bt.Status
	rounds int
}

// NewTree builds a tree. build wires leaves and guards created through the
// tree into a root node.
func NewTree(build func(t *Tree) bt.Node) (*Tree, error) {
	t := &Tree{}
	t.root = build(t)
	if t.root == nil {
		return nil, fmt.Errorf("%w: tree has no root", ErrInvalidStrategy)
	}
	return t, nil
}

// Leaf adapts b into a tree node.
func (t *Tree) Leaf(b behaviour.Behaviour) bt.Node {
	t.leaves = append(t.leaves, b)
	return bt.New(func([]bt.Node) (bt.Status, error) {
		cmd, err := b.Update()
		switch {
		case errors.Is(err, behaviour.ErrFinished):
			return bt.Success, nil
		case err != nil:
			return bt.Failure, err
		}
		t.frame.Overlay(cmd, cmd.Written())
		if b.Finished() {
			return bt.Success, nil
		}
		return bt.Running, nil
	})
}

// Guard adapts c into a node that succeeds while c holds.
func (t *Tree) Guard(c Condition) bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		if c() {
			return bt.Success, nil
		}
		return bt.Failure, nil
	})
}

// Sequence is bt.Sequence over children.
func Sequence(children ...bt.Node) bt.Node {
	return bt.New(bt.Sequence, children...)
}

// Selector is bt.Selector over children.
func Selector(children ...bt.Node) bt.Node {
	return bt.New(bt.Selector, children...)
}

// Step implements Strategy.
func (t *Tree) Step(prev actuator.Command) (actuator.Command, error) {
	t.frame = prev.Fresh()
	status, err := t.root.Tick()
	if err != nil {
		return actuator.Command{}, err
	}
	t.status = status
	if status != bt.Running {
		t.restart()
		t.rounds++
	}
	return t.frame, nil
}

func (t *Tree) restart() {
	for _, b := range t.leaves {
		b.Reset()
	}
}

// Reset implements Strategy.
func (t *Tree) Reset() {
	t.restart()
	t.status = bt.Running
	t.rounds = 0
}

// Rounds returns how many times the root has settled since Reset.
func (t *Tree) Rounds() int { return t.rounds }

// State reports the root status of the last tick.
func (t *Tree) State() string {
	switch t.status {
	case bt.Success:
		return "success"
	case bt.Failure:
		return "failure"
	default:
		return "running"
	}
}
