package arbiter

import "github.com/teslashibe/go-brains/pkg/behaviour"

// Condition is a predicate evaluated once per tick, after sensors are
// sampled. Conditions read sensors and behaviour state; they never mutate
// them.
type Condition func() bool

// Always holds every tick.
func Always() Condition { return func() bool { return true } }

// Never holds on no tick.
func Never() Condition { return func() bool { return false } }

// Not negates c.
func Not(c Condition) Condition {
	return func() bool { return !c() }
}

// All holds when every condition holds. It short-circuits in order.
func All(cs ...Condition) Condition {
	return func() bool {
		for _, c := range cs {
			if !c() {
				return false
			}
		}
		return true
	}
}

// Any holds when at least one condition holds. It short-circuits in order.
func Any(cs ...Condition) Condition {
	return func() bool {
		for _, c := range cs {
			if c() {
				return true
			}
		}
		return false
	}
}

// Finished holds once b reports finished.
func Finished(b behaviour.Behaviour) Condition {
	return b.Finished
}

// Counter holds once count reaches n.
func Counter(n int, count func() int) Condition {
	return func() bool { return count() >= n }
}

// Below holds while read returns less than limit.
func Below(read func() float64, limit float64) Condition {
	return func() bool { return read() < limit }
}

// Edge is one guarded transition of a machine state.
type Edge struct {
	When Condition
	To   string
}

// First builds a transition function taking the first edge whose condition
// holds, and staying put when none does.
func First(edges ...Edge) func() string {
	return func() string {
		for _, e := range edges {
			if e.When() {
				return e.To
			}
		}
		return ""
	}
}
