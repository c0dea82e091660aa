package history

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/refhistory/internal/source"
)

func TestCapacityResolve(t *testing.T) {
	tests := []struct {
		name     string
		capacity Capacity
		want     int
	}{
		{"fixed", Fixed(5), 5},
		{"fixed negative", Fixed(-1), 0},
		{"func", Func(func() int { return 7 }), 7},
		{"func negative", Func(func() int { return -3 }), 0},
		{"nil func", Func(nil), 0},
		{"float", FloatFunc(func() float64 { return 2.9 }), 2},
		{"float nan", FloatFunc(func() float64 { return math.NaN() }), 0},
		{"float +inf", FloatFunc(func() float64 { return math.Inf(1) }), 0},
		{"float -inf", FloatFunc(func() float64 { return math.Inf(-1) }), 0},
		{"float huge", FloatFunc(func() float64 { return 1e300 }), math.MaxInt},
		{"unbounded", Unbounded, math.MaxInt},
		{"live", Live(source.NewRef(4)), 4},
		{"live negative", Live(source.NewRef(-4)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.capacity.Resolve())
		})
	}
}

func TestLiveCapacityWatch(t *testing.T) {
	ref := source.NewRef(2)
	c := Live(ref)

	w, ok := c.(Watcher)
	require.True(t, ok, "Live capacity should be watchable")

	calls := 0
	stop := w.Watch(func() { calls++ })
	ref.Set(1)
	stop()
	ref.Set(0)

	require.Equal(t, 1, calls)
	require.Equal(t, 0, c.Resolve())
}
