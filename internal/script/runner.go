package script

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/fakeyudi/refhistory/internal/history"
	"github.com/fakeyudi/refhistory/internal/source"
)

// Runner executes scripts against an in-memory string source. Source and
// capacity notifications share one scheduler that is flushed after every
// step, so each step behaves like one tick of a batched reactive host.
type Runner struct {
	Tick     *source.Scheduler
	Value    *source.Ref[string]
	Limit    *source.Ref[int]
	History  *history.Controller[string]
	log      *slog.Logger
	executed int
}

// NewRunner builds a runner whose source starts at initial. capacity < 0
// means unbounded. The capacity is live, so scripts may change it.
func NewRunner(initial string, capacity int, logger *slog.Logger, opts ...history.Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if capacity < 0 {
		capacity = math.MaxInt
	}
	tick := source.NewScheduler()
	r := &Runner{
		Tick:  tick,
		Value: source.NewRef(initial, source.WithScheduler[string](tick)),
		Limit: source.NewRef(capacity, source.WithScheduler[int](tick)),
		log:   logger,
	}

	all := []history.Option{history.WithLogger(logger)}
	all = append(all, opts...)
	all = append(all, history.WithCapacity(history.Live(r.Limit)))
	r.History = history.New[string](r.Value, all...)
	return r
}

// Run executes steps in order, stopping at the first failure.
func (r *Runner) Run(steps []Step) error {
	for _, step := range steps {
		if err := r.exec(step); err != nil {
			return fmt.Errorf("line %d: %s: %w", step.Line, step.Op, err)
		}
		r.Tick.Flush()
		r.executed++
	}
	return nil
}

// Executed reports how many steps have run.
func (r *Runner) Executed() int {
	return r.executed
}

func (r *Runner) exec(step Step) error {
	r.log.Debug("replay step", "line", step.Line, "op", string(step.Op))

	switch step.Op {
	case OpSet:
		r.Value.Set(step.Value)
	case OpUndo:
		return r.History.Undo()
	case OpRedo:
		return r.History.Redo()
	case OpClear:
		r.History.Clear()
	case OpCapacity:
		r.Limit.Set(step.N)
	case OpPause:
		r.History.Pause()
	case OpResume:
		r.History.Resume()
	case OpTick:
		r.Tick.Flush()
	default:
		return fmt.Errorf("%w %q", ErrUnknownCommand, step.Op)
	}
	return nil
}
