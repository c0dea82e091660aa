package history

import (
	"math"

	"github.com/fakeyudi/refhistory/internal/source"
)

// Capacity resolves the maximum number of snapshots a Stack may hold.
// Resolve is called before every insertion and every retrim, so dynamic
// capacities take effect without the stack observing them.
type Capacity interface {
	Resolve() int
}

// Watcher is implemented by capacities that can report their own changes.
// A controller subscribes to it and retrims when notified.
type Watcher interface {
	Watch(onChange func()) (unwatch func())
}

// Unbounded never trims.
var Unbounded Capacity = unbounded{}

type unbounded struct{}

func (unbounded) Resolve() int { return math.MaxInt }

// Fixed is a constant capacity. Negative values disable history.
type Fixed int

func (f Fixed) Resolve() int { return clampInt(int(f)) }

// Func is a capacity computed by calling the function on every resolution.
type Func func() int

func (f Func) Resolve() int {
	if f == nil {
		return 0
	}
	return clampInt(f())
}

// FloatFunc is like Func but accepts fractional results, which are truncated.
// NaN and infinities resolve to zero.
type FloatFunc func() float64

func (f FloatFunc) Resolve() int {
	if f == nil {
		return 0
	}
	return clampFloat(f())
}

// Live returns a capacity that follows an observable integer. Controllers
// retrim as soon as the binding reports a change.
func Live(b source.Binding[int]) Capacity {
	return live{b: b}
}

type live struct {
	b source.Binding[int]
}

func (l live) Resolve() int { return clampInt(l.b.Get()) }

func (l live) Watch(onChange func()) func() {
	return l.b.Subscribe(func(int) { onChange() })
}

func clampInt(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func clampFloat(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	if f >= math.MaxInt {
		return math.MaxInt
	}
	return int(f)
}
