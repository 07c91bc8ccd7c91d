package arbiter

import (
	"fmt"

	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/behaviour"
)

// Queue runs one-shot steps in order, then alternates a repeating pair
// forever.
//
// Each tick the finished steps at the front are popped and the new front is
// updated, so a step that finishes after one update occupies exactly one
// tick. Popped steps are never reset. When the steps are exhausted the
// active half of the pair runs; whenever it finishes it is reset and the
// other half takes over on the next tick. Without a pair an exhausted queue
// stops the robot.
type Queue struct {
	steps  []behaviour.Behaviour
	repeat [2]behaviour.Behaviour
	next   int
	active int
}

// NewQueue creates a queue. repeat may be nil or must hold two behaviours.
func NewQueue(steps []behaviour.Behaviour, repeat []behaviour.Behaviour) (*Queue, error) {
	for i, s := range steps {
		if s == nil {
			return nil, fmt.Errorf("%w: queue step %d is nil", ErrInvalidStrategy, i)
		}
	}
	q := &Queue{steps: steps}
	switch len(repeat) {
	case 0:
	case 2:
		if repeat[0] == nil || repeat[1] == nil {
			return nil, fmt.Errorf("%w: nil repeating behaviour", ErrInvalidStrategy)
		}
		q.repeat = [2]behaviour.Behaviour{repeat[0], repeat[1]}
	default:
		return nil, fmt.Errorf("%w: repeat needs exactly two behaviours, got %d", ErrInvalidStrategy, len(repeat))
	}
	return q, nil
}

// Step implements Strategy.
func (q *Queue) Step(prev actuator.Command) (actuator.Command, error) {
	for q.next < len(q.steps) && q.steps[q.next].Finished() {
		q.next++
	}
	if q.next < len(q.steps) {
		cmd, err := q.steps[q.next].Update()
		if err != nil {
			return actuator.Command{}, fmt.Errorf("step %d: %w", q.next, err)
		}
		return merge(prev, cmd), nil
	}

	cur := q.repeat[q.active]
	if cur == nil {
		out := prev.Fresh()
		out.Stop()
		return out, nil
	}
	cmd, err := cur.Update()
	if err != nil {
		return actuator.Command{}, fmt.Errorf("repeat %d: %w", q.active, err)
	}
	if cur.Finished() {
		cur.Reset()
		q.active ^= 1
	}
	return merge(prev, cmd), nil
}

// Reset implements Strategy.
func (q *Queue) Reset() {
	for _, s := range q.steps {
		s.Reset()
	}
	for _, r := range q.repeat {
		if r != nil {
			r.Reset()
		}
	}
	q.next = 0
	q.active = 0
}

// Remaining returns the number of steps not yet popped.
func (q *Queue) Remaining() int { return len(q.steps) - q.next }

// Repeating reports whether the queue has moved on to its repeating pair.
func (q *Queue) Repeating() bool { return q.next >= len(q.steps) }

// State names the running step or half of the pair.
func (q *Queue) State() string {
	if !q.Repeating() {
		return fmt.Sprintf("step-%d", q.next)
	}
	if q.repeat[0] == nil {
		return "exhausted"
	}
	return fmt.Sprintf("repeat-%d", q.active)
}
