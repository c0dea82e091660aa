package history

import (
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/fakeyudi/refhistory/internal/source"
)

// State is the controller's reentrancy tag.
type State int

const (
	// Idle accepts commits from source notifications.
	Idle State = iota
	// Applying marks an undo or redo write in flight. Notifications seen in
	// this state come from the controller's own write and are not recorded.
	Applying
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Applying:
		return "applying"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option configures a Controller.
type Option func(*options)

type options struct {
	capacity        Capacity
	unboundedFuture bool
	clone           ClonePolicy
	clock           func() time.Time
	logger          *slog.Logger
	onError         func(error)
}

// WithCapacity bounds the history. The default is Unbounded.
func WithCapacity(c Capacity) Option {
	return func(o *options) {
		if c != nil {
			o.capacity = c
		}
	}
}

// WithUnboundedFuture leaves the redo stack unbounded. By default it shares
// the history capacity.
func WithUnboundedFuture() Option {
	return func(o *options) { o.unboundedFuture = true }
}

// WithClone sets how values are copied into snapshots. The default is CloneNone.
func WithClone(p ClonePolicy) Option {
	return func(o *options) { o.clone = p }
}

// WithClock replaces time.Now for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithErrorHandler receives commit failures raised from source
// notifications, which have no caller to return to. The default logs them.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}

// Controller records the values a source held before each change and can
// restore them. It is not safe for concurrent use: the source's
// notifications and every method call must come from one goroutine.
type Controller[T any] struct {
	src    source.Binding[T]
	past   *Stack[T]
	future *Stack[T]

	state  State
	paused bool

	batching   bool
	batchDirty bool
	batchPrev  T

	clone   ClonePolicy
	stamp   *stamper
	log     *slog.Logger
	onError func(error)
	stops   []func()
}

// New starts tracking src.
func New[T any](src source.Binding[T], opts ...Option) *Controller[T] {
	o := options{capacity: Unbounded}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	futureCap := o.capacity
	if o.unboundedFuture {
		futureCap = Unbounded
	}

	c := &Controller[T]{
		src:    src,
		past:   NewStack[T](o.capacity),
		future: NewStack[T](futureCap),
		clone:  o.clone,
		stamp:  newStamper(o.clock),
		log:    o.logger,
	}
	c.onError = o.onError
	if c.onError == nil {
		c.onError = func(err error) {
			c.log.Warn("history snapshot dropped", "error", err)
		}
	}

	c.stops = append(c.stops, src.Subscribe(c.handleChange))
	if w, ok := o.capacity.(Watcher); ok {
		c.stops = append(c.stops, w.Watch(c.Retrim))
	}
	return c
}

func (c *Controller[T]) handleChange(previous T) {
	switch {
	case c.state == Applying:
		return
	case c.batching:
		if !c.batchDirty {
			c.batchDirty = true
			c.batchPrev = previous
		}
		return
	case c.paused:
		return
	}
	if err := c.Commit(previous); err != nil {
		c.onError(err)
	}
}

// Commit records previous as the newest history entry and discards the redo
// stack. Source notifications call it once per external change; it may also be
// called directly to record a value by hand. It does nothing while paused or
// while an undo or redo write is being applied.
//
// When the value cannot be cloned the redo stack is still discarded, since the
// edit already landed on the source, but no snapshot is stored.
func (c *Controller[T]) Commit(previous T) error {
	if c.state == Applying || c.paused {
		return nil
	}
	c.future.Clear()

	value, err := cloneValue(c.clone, previous)
	if err != nil {
		return &CloneError{Op: "commit", Err: err}
	}
	c.past.PushFront(c.snapshot(value))
	c.log.Debug("history commit", "past", c.past.Len())
	return nil
}

// Undo restores the newest history entry and makes the current value
// redoable. It is a no-op when there is nothing to undo.
func (c *Controller[T]) Undo() error {
	return c.step("undo", c.past, c.future)
}

// Redo re-applies the newest undone value. It is a no-op when there is
// nothing to redo.
func (c *Controller[T]) Redo() error {
	return c.step("redo", c.future, c.past)
}

// step moves the newest entry of from onto the source and the current value
// onto to. The stacks only change once the write has succeeded.
func (c *Controller[T]) step(op string, from, to *Stack[T]) error {
	// A pending external edit is committed first, so it is not mistaken for
	// the value being replaced.
	c.flush()

	record, ok := from.Peek()
	if !ok {
		return nil
	}
	current, err := cloneValue(c.clone, c.src.Get())
	if err != nil {
		return &CloneError{Op: op, Err: err}
	}

	if err := c.apply(record.Value); err != nil {
		return fmt.Errorf("history: %s: write source: %w", op, err)
	}
	from.PopFront()
	to.PushFront(c.snapshot(current))

	c.log.Debug("history "+op, "past", c.past.Len(), "future", c.future.Len())
	return nil
}

// apply writes v to the source with commits suppressed. Deferred bindings are
// flushed inside the window so their notification is suppressed as well.
func (c *Controller[T]) apply(v T) error {
	prev := c.state
	c.state = Applying
	defer func() { c.state = prev }()

	if w, ok := c.src.(source.Writer[T]); ok {
		if err := w.Write(v); err != nil {
			return err
		}
	} else {
		c.src.Set(v)
	}
	c.flush()
	return nil
}

func (c *Controller[T]) flush() {
	if f, ok := c.src.(source.Flusher); ok {
		f.Flush()
	}
}

// Batch runs fn and records every source change made inside it as one edit
// holding the value from before fn. Nothing is recorded when the value after
// fn deep-equals the value before.
func (c *Controller[T]) Batch(fn func()) error {
	if c.batching {
		fn()
		return nil
	}

	c.batching = true
	c.batchDirty = false
	func() {
		defer func() { c.batching = false }()
		fn()
		c.flush()
	}()

	dirty, previous := c.batchDirty, c.batchPrev
	var zero T
	c.batchDirty, c.batchPrev = false, zero

	if !dirty || c.paused || reflect.DeepEqual(previous, c.src.Get()) {
		return nil
	}
	return c.Commit(previous)
}

// Pause stops recording source changes until Resume.
func (c *Controller[T]) Pause() {
	c.paused = true
}

// Resume restarts recording. Changes made while paused are not committed.
func (c *Controller[T]) Resume() {
	c.paused = false
}

// Paused reports whether recording is paused.
func (c *Controller[T]) Paused() bool {
	return c.paused
}

// Clear discards both stacks without touching the source.
func (c *Controller[T]) Clear() {
	c.past.Clear()
	c.future.Clear()
}

// Retrim re-applies the capacity to both stacks. Live capacities trigger it
// automatically; call it after a Func capacity changes.
func (c *Controller[T]) Retrim() {
	c.past.Retrim()
	c.future.Retrim()
}

// History returns the recorded values, newest first.
func (c *Controller[T]) History() []Snapshot[T] {
	return c.past.Entries()
}

// Future returns the redoable values, newest first.
func (c *Controller[T]) Future() []Snapshot[T] {
	return c.future.Entries()
}

// Last returns the newest history entry.
func (c *Controller[T]) Last() (Snapshot[T], bool) {
	return c.past.Peek()
}

// Len returns the number of undo steps available.
func (c *Controller[T]) Len() int { return c.past.Len() }

// FutureLen returns the number of redo steps available.
func (c *Controller[T]) FutureLen() int { return c.future.Len() }

// CanUndo reports whether Undo would change the source.
func (c *Controller[T]) CanUndo() bool { return c.past.Len() > 0 }

// CanRedo reports whether Redo would change the source.
func (c *Controller[T]) CanRedo() bool { return c.future.Len() > 0 }

// Capacity returns the currently resolved history capacity.
func (c *Controller[T]) Capacity() int { return c.past.Capacity() }

// State returns the reentrancy state.
func (c *Controller[T]) State() State { return c.state }

// Close stops tracking the source and the capacity. The recorded history
// stays readable.
func (c *Controller[T]) Close() {
	for _, stop := range c.stops {
		stop()
	}
	c.stops = nil
}

func (c *Controller[T]) snapshot(v T) Snapshot[T] {
	id, ts := c.stamp.next()
	return Snapshot[T]{ID: id, Value: v, Timestamp: ts}
}
