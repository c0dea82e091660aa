// Package history provides bounded undo/redo tracking for a single observable
// value.
//
// A Controller subscribes to a source.Binding. Every change the binding
// reports is recorded as a Snapshot of the value the source held before it:
//
//	theme := source.NewRef("light")
//	h := history.New[string](theme, history.WithCapacity(history.Fixed(50)))
//
//	theme.Set("dark")
//	h.History() // [{Value: "light"}]
//
//	h.Undo()    // theme is "light" again, "dark" is redoable
//	h.Redo()    // theme is "dark"
//
// # Capacity
//
// A Capacity is resolved every time a stack is pushed or retrimmed, so it can
// be a constant (Fixed), a function (Func, FloatFunc) or an observable integer
// (Live). Live capacities are watched and shrink the history as soon as they
// change. Negative or non-finite capacities disable history.
//
// # Reentrancy
//
// Undo and Redo write the restored value back into the source like any other
// mutation, so other subscribers see it. The controller marks itself Applying
// for the duration of that write and ignores the notification it causes.
//
// # Snapshots
//
// With CloneNone (the default) snapshots hold the value itself. Use CloneDeep
// for mutable structured values; it uses the value's Clone method when it
// implements Cloner and a JSON round trip otherwise.
package history
