package source

// Scheduler batches deferred notifications into ticks. It is not safe for
// concurrent use; every ref sharing a scheduler belongs to one goroutine.
type Scheduler struct {
	queue []func()
}

// NewScheduler returns an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) enqueue(job func()) {
	s.queue = append(s.queue, job)
}

// Pending reports how many jobs are waiting for the next flush.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// Flush runs queued jobs in order. Jobs queued while flushing run in the same
// flush, so Flush returns only once the queue is empty.
func (s *Scheduler) Flush() {
	for len(s.queue) > 0 {
		job := s.queue[0]
		s.queue = s.queue[1:]
		job()
	}
}
