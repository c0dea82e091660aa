// Package report renders the state of a tracked value's history for sharing
// and re-opening later.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/fakeyudi/refhistory/internal/history"
)

// Report is a point-in-time, renderable copy of a controller's state.
type Report struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Current     string    `json:"current"`
	GeneratedAt time.Time `json:"generated_at"`
	Capacity    int       `json:"capacity"` // -1 when unbounded
	History     []Entry   `json:"history"`  // newest first
	Future      []Entry   `json:"future"`   // newest first
}

// Entry is one recorded value.
type Entry struct {
	ID        string    `json:"id"`
	Value     string    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// FromController captures h's stacks. src names the tracked value in the
// rendered output.
func FromController(src string, current string, h *history.Controller[string]) *Report {
	capacity := h.Capacity()
	if capacity == history.Unbounded.Resolve() {
		capacity = -1
	}
	return &Report{
		ID:          uuid.New().String(),
		Source:      src,
		Current:     current,
		GeneratedAt: time.Now(),
		Capacity:    capacity,
		History:     entries(h.History()),
		Future:      entries(h.Future()),
	}
}

func entries(snaps []history.Snapshot[string]) []Entry {
	out := make([]Entry, len(snaps))
	for i, s := range snaps {
		out[i] = Entry{ID: s.ID, Value: s.Value, Timestamp: s.Timestamp}
	}
	return out
}
