package history

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
)

// Snapshot is a value the source held at some point, stamped with the time it
// was captured. Snapshots are never modified after creation.
type Snapshot[T any] struct {
	ID        string    `json:"id"`
	Value     T         `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// stamper issues non-decreasing timestamps and time-ordered IDs.
type stamper struct {
	now     func() time.Time
	last    time.Time
	entropy io.Reader
}

func newStamper(now func() time.Time) *stamper {
	if now == nil {
		now = time.Now
	}
	return &stamper{
		now:     now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (s *stamper) next() (string, time.Time) {
	ts := s.now()
	if ts.Before(s.last) {
		ts = s.last
	}
	s.last = ts

	id, err := ulid.New(ulid.Timestamp(ts), s.entropy)
	if err != nil {
		// Monotonic entropy overflows after 2^80 IDs in one millisecond, or
		// the timestamp is outside the ULID range.
		id = ulid.Make()
	}
	return id.String(), ts
}
