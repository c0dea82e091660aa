package history

// Stack is a capacity-bounded stack of snapshots, newest first.
//
// After every mutating call Len() <= capacity.Resolve(); inserting past the
// limit evicts the oldest entries.
type Stack[T any] struct {
	// entries is stored oldest first so pushes append and trims slice the head.
	entries  []Snapshot[T]
	capacity Capacity
}

// NewStack returns an empty stack. A nil capacity is unbounded.
func NewStack[T any](capacity Capacity) *Stack[T] {
	if capacity == nil {
		capacity = Unbounded
	}
	return &Stack[T]{capacity: capacity}
}

// PushFront inserts snap as the newest entry, then trims to capacity.
func (s *Stack[T]) PushFront(snap Snapshot[T]) {
	s.entries = append(s.entries, snap)
	s.Retrim()
}

// PopFront removes and returns the newest entry. ok is false when the stack
// is empty.
func (s *Stack[T]) PopFront() (snap Snapshot[T], ok bool) {
	n := len(s.entries)
	if n == 0 {
		return snap, false
	}
	snap = s.entries[n-1]
	s.entries[n-1] = Snapshot[T]{}
	s.entries = s.entries[:n-1]
	return snap, true
}

// Peek returns the newest entry without removing it.
func (s *Stack[T]) Peek() (snap Snapshot[T], ok bool) {
	n := len(s.entries)
	if n == 0 {
		return snap, false
	}
	return s.entries[n-1], true
}

// Clear removes every entry.
func (s *Stack[T]) Clear() {
	s.entries = nil
}

// Retrim re-applies the capacity without inserting, dropping the oldest
// entries when the capacity has shrunk.
func (s *Stack[T]) Retrim() {
	limit := s.capacity.Resolve()
	if len(s.entries) <= limit {
		return
	}
	excess := len(s.entries) - limit
	kept := make([]Snapshot[T], limit)
	copy(kept, s.entries[excess:])
	s.entries = kept
}

// Len returns the number of entries.
func (s *Stack[T]) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the stack contents, newest first.
func (s *Stack[T]) Entries() []Snapshot[T] {
	out := make([]Snapshot[T], len(s.entries))
	for i, e := range s.entries {
		out[len(s.entries)-1-i] = e
	}
	return out
}

// Capacity returns the currently resolved capacity.
func (s *Stack[T]) Capacity() int {
	return s.capacity.Resolve()
}
