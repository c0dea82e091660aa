package source

// Ref is an in-memory Binding.
//
// Without a scheduler, Set notifies subscribers synchronously. With one, the
// first Set of a tick queues a notification on the scheduler and later Sets in
// the same tick are coalesced into it; when the tick is flushed subscribers see
// the value from before the first Set. Either way a change that leaves the
// value equal to what subscribers last saw produces no notification, unless the
// ref was built without an equality func.
type Ref[T any] struct {
	value T
	equal func(a, b T) bool
	sched *Scheduler
	subs  subscribers[T]

	pending     bool
	pendingPrev T
}

// RefOption configures a Ref.
type RefOption[T any] func(*Ref[T])

// WithScheduler defers notifications to the next flush of s.
func WithScheduler[T any](s *Scheduler) RefOption[T] {
	return func(r *Ref[T]) { r.sched = s }
}

// NewRef returns a Ref that skips notifications for writes of an equal value.
func NewRef[T comparable](initial T, opts ...RefOption[T]) *Ref[T] {
	return NewRefFunc(initial, func(a, b T) bool { return a == b }, opts...)
}

// NewRefFunc returns a Ref using equal to detect no-op writes. A nil equal
// makes every Set notify.
func NewRefFunc[T any](initial T, equal func(a, b T) bool, opts ...RefOption[T]) *Ref[T] {
	r := &Ref[T]{value: initial, equal: equal}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the current value.
func (r *Ref[T]) Get() T {
	return r.value
}

// Set stores value and notifies (or schedules notification of) subscribers.
func (r *Ref[T]) Set(value T) {
	previous := r.value
	r.value = value

	if r.sched == nil {
		if r.same(previous, value) {
			return
		}
		r.subs.notify(previous)
		return
	}

	if !r.pending {
		r.pending = true
		r.pendingPrev = previous
		r.sched.enqueue(r.Flush)
	}
}

// Flush delivers a pending notification now. It is a no-op when nothing is
// pending, so the scheduler's queued call after an early Flush does nothing.
func (r *Ref[T]) Flush() {
	if !r.pending {
		return
	}
	r.pending = false
	previous := r.pendingPrev
	var zero T
	r.pendingPrev = zero
	if r.same(previous, r.value) {
		return
	}
	r.subs.notify(previous)
}

// Subscribe registers handler and returns a func that removes it.
func (r *Ref[T]) Subscribe(handler func(previous T)) func() {
	return r.subs.add(handler)
}

// Subscribers reports how many handlers are registered.
func (r *Ref[T]) Subscribers() int {
	return r.subs.len()
}

func (r *Ref[T]) same(a, b T) bool {
	return r.equal != nil && r.equal(a, b)
}
