// Package source provides observable value cells that history controllers
// can track.
package source

// Binding is a single mutable value with change notification.
//
// Handlers registered with Subscribe run after the new value is visible via
// Get. They receive the value the binding held before the mutation.
type Binding[T any] interface {
	Get() T
	Set(value T)
	Subscribe(handler func(previous T)) (unsubscribe func())
}

// Flusher is implemented by bindings that defer notifications. Flush delivers
// the binding's pending notification, if any, before returning.
type Flusher interface {
	Flush()
}

// Writer is implemented by bindings whose writes can fail. A failed Write
// leaves the value unchanged and notifies no one.
type Writer[T any] interface {
	Write(value T) error
}

// subscribers is an ordered handler list that tolerates handlers
// unsubscribing (or subscribing) while a notification is in progress.
type subscribers[T any] struct {
	next int
	list []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(previous T)
}

func (s *subscribers[T]) add(fn func(previous T)) func() {
	s.next++
	id := s.next
	s.list = append(s.list, subscriber[T]{id: id, fn: fn})
	return func() { s.remove(id) }
}

func (s *subscribers[T]) remove(id int) {
	for i, sub := range s.list {
		if sub.id == id {
			s.list = append(s.list[:i:i], s.list[i+1:]...)
			return
		}
	}
}

func (s *subscribers[T]) notify(previous T) {
	snapshot := make([]subscriber[T], len(s.list))
	copy(snapshot, s.list)
	for _, sub := range snapshot {
		if !s.has(sub.id) {
			continue
		}
		sub.fn(previous)
	}
}

func (s *subscribers[T]) has(id int) bool {
	for _, sub := range s.list {
		if sub.id == id {
			return true
		}
	}
	return false
}

func (s *subscribers[T]) len() int {
	return len(s.list)
}
