package history

import (
	"encoding/json"
	"fmt"
)

// ClonePolicy selects how values are copied into snapshots.
type ClonePolicy int

const (
	// CloneNone stores the value as-is. Suitable for immutable or scalar values.
	CloneNone ClonePolicy = iota
	// CloneDeep stores a structural copy taken at capture time.
	CloneDeep
)

func (p ClonePolicy) String() string {
	switch p {
	case CloneNone:
		return "none"
	case CloneDeep:
		return "deep"
	default:
		return fmt.Sprintf("ClonePolicy(%d)", int(p))
	}
}

// ParseClonePolicy maps "none", "deep" or "" (none) to a policy.
func ParseClonePolicy(s string) (ClonePolicy, error) {
	switch s {
	case "", "none":
		return CloneNone, nil
	case "deep":
		return CloneDeep, nil
	}
	return CloneNone, fmt.Errorf("unknown clone policy %q (want none or deep)", s)
}

// Cloner lets a type provide its own deep copy. Values implementing it are
// copied with Clone instead of a JSON round trip.
type Cloner[T any] interface {
	Clone() T
}

// CloneError reports a value that could not be copied into a snapshot.
type CloneError struct {
	Op  string
	Err error
}

func (e *CloneError) Error() string {
	return "history: " + e.Op + ": clone value: " + e.Err.Error()
}

func (e *CloneError) Unwrap() error {
	return e.Err
}

func cloneValue[T any](policy ClonePolicy, v T) (T, error) {
	if policy != CloneDeep {
		return v, nil
	}
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone(), nil
	}

	var out T
	data, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}
