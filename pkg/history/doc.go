// Package history implements the undo/redo log of the editing core.
//
// An [Action] is one undoable unit, typically one drag gesture. Before any
// entity is mutated, the mutating code calls [Log.CaptureIfUntouched]; the
// first call per entity stores a [Snapshot] of its pre-mutation state and
// later calls are no-ops, so the Action always holds the state from before
// the gesture no matter how many ticks touched the entity.
//
// Structural changes that a geometric snapshot cannot express (adding an
// edge, unlinking a corner) are recorded as a [Replay] pair of closures.
//
// Undo captures the current state of every snapshotted entity, restores the
// stored one, and keeps the captured state for Redo. Entries are undone in
// reverse capture order and redone in capture order, which keeps
// interdependent replays consistent.
//
// Cancelling an open gesture goes through the same machinery: [Log.Abort]
// undoes the open Action and unlinks it from the chain.
package history
