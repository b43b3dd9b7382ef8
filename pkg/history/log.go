package history

import (
	"errors"

	"github.com/google/uuid"

	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/scene"
)

// Sentinel errors for log operations.
var (
	// ErrActionOpen is returned by Begin while another Action is still open.
	ErrActionOpen = errors.New("an action is already open")

	// ErrNoOpenAction is returned when committing or recording without an open Action.
	ErrNoOpenAction = errors.New("no open action")
)

// =============================================================================
// Action
// =============================================================================

type entry struct {
	id     scene.ID
	before Snapshot
	after  Snapshot
}

// Action is one undoable unit of mutation.
type Action struct {
	ID   uuid.UUID
	Name string

	// BoxBefore and BoxAfter are the scene boxes around the mutation.
	BoxBefore geom.Rect
	BoxAfter  geom.Rect

	entries  []entry
	index    map[scene.ID]int
	affected []scene.ID
	seen     map[scene.ID]bool

	prev, next *Action
}

// BoundingBoxChanged reports whether the mutation changed the scene box.
func (a *Action) BoundingBoxChanged() bool { return !a.BoxBefore.Equal(a.BoxAfter) }

// Touched reports whether the Action holds a snapshot for id.
func (a *Action) Touched(id scene.ID) bool {
	_, ok := a.index[id]
	return ok
}

// Snapshot returns the pre-mutation snapshot stored for id.
func (a *Action) Snapshot(id scene.ID) (Snapshot, bool) {
	i, ok := a.index[id]
	if !ok {
		return nil, false
	}
	return a.entries[i].before, true
}

// Len returns the number of stored snapshots and replays.
func (a *Action) Len() int { return len(a.entries) }

// Affected lists the entities the viewer must refresh, in first-touch order.
func (a *Action) Affected() []scene.ID { return a.affected }

// AddAffected marks id for refresh without snapshotting it.
func (a *Action) AddAffected(id scene.ID) {
	if !a.seen[id] {
		a.seen[id] = true
		a.affected = append(a.affected, id)
	}
}

// Prev returns the Action before a in the log.
func (a *Action) Prev() *Action { return a.prev }

// Next returns the Action after a in the log.
func (a *Action) Next() *Action { return a.next }

func (a *Action) add(id scene.ID, snap Snapshot) {
	a.index[id] = len(a.entries)
	a.entries = append(a.entries, entry{id: id, before: snap})
	a.AddAffected(id)
}

func (a *Action) undo(s *scene.Scene) {
	for i := len(a.entries) - 1; i >= 0; i-- {
		en := &a.entries[i]
		if r, ok := en.before.(Replay); ok {
			r.Undo(s)
			continue
		}
		if cur, ok := s.Entity(en.id); ok {
			en.after = CaptureSnapshot(cur)
		}
		en.before.Restore(s)
	}
}

func (a *Action) redo(s *scene.Scene) {
	for i := range a.entries {
		en := &a.entries[i]
		if r, ok := en.before.(Replay); ok {
			r.Redo(s)
			continue
		}
		if en.after != nil {
			en.after.Restore(s)
		}
	}
}

// =============================================================================
// Log
// =============================================================================

// ChangeKind says what happened to the log.
type ChangeKind uint8

const (
	ChangeBegin ChangeKind = iota
	ChangeCommit
	ChangeAbort
	ChangeUndo
	ChangeRedo
)

// Change is delivered to subscribers after every log transition.
type Change struct {
	Kind   ChangeKind
	Action *Action
}

// Log is the linear undo/redo history.
type Log struct {
	currentUndo *Action
	currentRedo *Action
	open        *Action

	max  int
	subs []func(Change)
}

// NewLog creates a log keeping at most max Actions; max <= 0 is unbounded.
func NewLog(max int) *Log {
	return &Log{max: max}
}

// Subscribe registers fn for every log change.
func (l *Log) Subscribe(fn func(Change)) {
	l.subs = append(l.subs, fn)
}

func (l *Log) notify(kind ChangeKind, a *Action) {
	for _, fn := range l.subs {
		fn(Change{Kind: kind, Action: a})
	}
}

// CanUndo reports whether Undo would do anything.
func (l *Log) CanUndo() bool { return l.currentUndo != nil || l.open != nil }

// CanRedo reports whether Redo would do anything.
func (l *Log) CanRedo() bool { return l.currentRedo != nil && l.open == nil }

// Open returns the Action being recorded, if any.
func (l *Log) Open() *Action { return l.open }

// CurrentUndo returns the Action Undo would revert.
func (l *Log) CurrentUndo() *Action { return l.currentUndo }

// CurrentRedo returns the Action Redo would re-apply.
func (l *Log) CurrentRedo() *Action { return l.currentRedo }

// Begin opens a new Action after the current one, discarding redo history.
func (l *Log) Begin(s *scene.Scene, name string) (*Action, error) {
	if l.open != nil {
		return nil, ErrActionOpen
	}
	a := &Action{
		ID:        uuid.New(),
		Name:      name,
		BoxBefore: s.Box,
		BoxAfter:  s.Box,
		index:     make(map[scene.ID]int),
		seen:      make(map[scene.ID]bool),
		prev:      l.currentUndo,
	}
	if l.currentUndo != nil {
		l.currentUndo.next = a
	}
	l.currentUndo = a
	l.currentRedo = nil
	l.open = a
	l.trim()
	l.notify(ChangeBegin, a)
	return a, nil
}

// trim drops the oldest Actions beyond the configured maximum.
func (l *Log) trim() {
	if l.max <= 0 {
		return
	}
	a := l.currentUndo
	for i := 1; a != nil && i < l.max; i++ {
		a = a.prev
	}
	if a != nil && a.prev != nil {
		a.prev.next = nil
		a.prev = nil
	}
}

// CaptureIfUntouched snapshots e into the open Action unless it already
// holds one. It must run before e is mutated.
func (l *Log) CaptureIfUntouched(e scene.Entity) {
	a := l.open
	if a == nil {
		return
	}
	id := entityID(e)
	if a.Touched(id) {
		return
	}
	a.add(id, CaptureSnapshot(e))
}

// Record stores a replay under key in the open Action. A key already
// present is left alone.
func (l *Log) Record(key scene.ID, r Replay) error {
	a := l.open
	if a == nil {
		return ErrNoOpenAction
	}
	if !a.Touched(key) {
		a.add(key, r)
	}
	return nil
}

// Commit closes the open Action, recording the scene box after it. An
// Action that captured nothing and left the box alone is dropped.
func (l *Log) Commit(s *scene.Scene) (*Action, error) {
	a := l.open
	if a == nil {
		return nil, ErrNoOpenAction
	}
	a.BoxAfter = s.Box
	l.open = nil
	if len(a.entries) == 0 && !a.BoundingBoxChanged() {
		l.unlink(a)
		return nil, nil
	}
	l.notify(ChangeCommit, a)
	return a, nil
}

// Abort rolls back the open Action and removes it from the log. Without an
// open Action it does nothing.
func (l *Log) Abort(s *scene.Scene) *Action {
	a := l.open
	if a == nil {
		return nil
	}
	a.undo(s)
	s.Box = a.BoxBefore
	l.open = nil
	l.unlink(a)
	l.notify(ChangeAbort, a)
	return a
}

func (l *Log) unlink(a *Action) {
	l.currentUndo = a.prev
	if a.prev != nil {
		a.prev.next = nil
	}
	a.prev = nil
}

// Undo reverts the current Action. An open Action is committed first. It
// reports false when there is nothing to undo.
func (l *Log) Undo(s *scene.Scene) (*Action, bool) {
	if l.open != nil {
		if _, err := l.Commit(s); err != nil {
			return nil, false
		}
	}
	a := l.currentUndo
	if a == nil {
		return nil, false
	}
	a.undo(s)
	s.Box = a.BoxBefore
	l.currentRedo = a
	l.currentUndo = a.prev
	l.notify(ChangeUndo, a)
	return a, true
}

// Redo re-applies the Action last undone. It reports false when there is
// nothing to redo.
func (l *Log) Redo(s *scene.Scene) (*Action, bool) {
	a := l.currentRedo
	if a == nil || l.open != nil {
		return nil, false
	}
	a.redo(s)
	s.Box = a.BoxAfter
	l.currentUndo = a
	l.currentRedo = a.next
	l.notify(ChangeRedo, a)
	return a, true
}

func entityID(e scene.Entity) scene.ID {
	if e == nil {
		return ""
	}
	return e.EntityID()
}
