// Package session ties one editing session together.
//
// A Session owns the scene, its undo log, the drag/edit orchestrator, the
// hit-test index, the pointer state machine and the viewer notifier. It is
// the only public way to drive edits: every operation runs to completion
// and then flushes the queued viewer notifications, so observers always see
// a consistent scene.
//
// # Usage
//
//	s := session.New(sc, session.Options{})
//	s.Subscribe(myViewer)
//	s.Pointer(ctx, session.Down, interact.Event{Point: p, Screen: p})
//	s.Pointer(ctx, session.Move, interact.Event{Point: q, Screen: q})
//	s.Pointer(ctx, session.Up, interact.Event{Point: q, Screen: q})
//	s.Undo(ctx)
//
// A Session is not safe for concurrent use. Drive it from one goroutine,
// typically the UI event loop.
package session

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphedit/pkg/editor"
	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/history"
	"github.com/matzehuels/graphedit/pkg/hittest"
	"github.com/matzehuels/graphedit/pkg/interact"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/scene"
	"github.com/matzehuels/graphedit/pkg/viewer"
)

// Phase is the pointer transition delivered to Pointer.
type Phase uint8

const (
	Down Phase = iota
	Move
	Up
)

func (p Phase) String() string {
	switch p {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	}
	return "unknown"
}

// Options configures a Session. Zero values get the package defaults.
type Options struct {
	Editor   editor.Settings
	Interact interact.Config

	Router   routing.Router
	Labels   routing.LabelPlacer
	Relayout routing.Relayouter
	Resolve  routing.SettingsResolver

	// MaxActions bounds the undo log; 0 keeps everything.
	MaxActions int

	// Slack is the hit-test pick radius around the pointer.
	Slack float64

	Logger *log.Logger
}

// DefaultSlack is the pick radius used when Options.Slack is zero.
const DefaultSlack = 3

// Session is one interactive editing session over a scene.
type Session struct {
	scene    *scene.Scene
	log      *history.Log
	editor   *editor.Editor
	index    *hittest.Index
	machine  *interact.Machine
	notifier *viewer.Notifier
	slack    float64
	logger   *log.Logger
}

// New opens a session over sc.
func New(sc *scene.Scene, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Slack == 0 {
		opts.Slack = DefaultSlack
	}
	if opts.Interact == (interact.Config{}) {
		opts.Interact = interact.DefaultConfig()
	}
	if opts.Interact.Logger == nil {
		opts.Interact.Logger = opts.Logger
	}

	s := &Session{
		scene:    sc,
		log:      history.NewLog(opts.MaxActions),
		notifier: viewer.NewNotifier(),
		slack:    opts.Slack,
		logger:   opts.Logger,
	}
	s.editor = editor.New(sc, s.log, editor.Options{
		Settings: opts.Editor,
		Router:   opts.Router,
		Labels:   opts.Labels,
		Relayout: opts.Relayout,
		Resolve:  opts.Resolve,
		Logger:   opts.Logger,
		Sink:     s.notifier,
	})
	s.machine = interact.New(s.editor, interact.PickerFunc(s.pick), opts.Interact)
	s.rebuildIndex()

	// The index listens first so viewers querying it see fresh boxes.
	insert := func(id scene.ID) { s.index.Insert(id) }
	remove := func(id scene.ID) { s.index.Remove(id) }
	s.notifier.Subscribe(viewer.Funcs{
		EntityChanged:  func(id scene.ID) { s.index.Invalidate(id) },
		FullInvalidate: s.rebuildIndex,
		EdgeAdded:      insert,
		EdgeRemoved:    remove,
		NodeAdded:      insert,
		NodeRemoved:    remove,
	})
	s.log.Subscribe(func(c history.Change) {
		switch c.Kind {
		case history.ChangeUndo:
			s.logger.Debugf("Undid %s", c.Action.Name)
		case history.ChangeRedo:
			s.logger.Debugf("Redid %s", c.Action.Name)
		}
	})
	return s
}

// hitPriority orders overlapping hits: labels over edges over nodes over
// clusters.
func (s *Session) hitPriority(id scene.ID) int {
	e, ok := s.scene.Entity(id)
	if !ok {
		return -1
	}
	switch e.Kind() {
	case scene.KindLabel:
		return 3
	case scene.KindEdge:
		return 2
	case scene.KindNode:
		return 1
	}
	return 0
}

func (s *Session) rebuildIndex() {
	s.index = hittest.Build(s.scene)
	s.index.SetPriority(s.hitPriority)
}

func (s *Session) pick(pt geom.Point, keep func(scene.ID) bool) (scene.ID, bool) {
	return s.index.QueryFilter(pt, s.slack, keep)
}

// =============================================================================
// Accessors
// =============================================================================

// Scene returns the edited scene. Callers must not mutate it directly.
func (s *Session) Scene() *scene.Scene { return s.scene }

// Log returns the undo log.
func (s *Session) Log() *history.Log { return s.log }

// Editor returns the orchestrator.
func (s *Session) Editor() *editor.Editor { return s.editor }

// Machine returns the pointer state machine.
func (s *Session) Machine() *interact.Machine { return s.machine }

// Subscribe registers a viewer for change notifications.
func (s *Session) Subscribe(v viewer.Viewer) { s.notifier.Subscribe(v) }

// ObjectUnderCursor returns the topmost visible entity at pt.
func (s *Session) ObjectUnderCursor(pt geom.Point) (scene.ID, bool) {
	return s.pick(pt, nil)
}

// SetMode changes the routing mode used by plain drags.
func (s *Session) SetMode(m routing.Mode) { s.editor.SetMode(m) }

// =============================================================================
// Operations
// =============================================================================

// Pointer feeds one pointer transition to the state machine.
func (s *Session) Pointer(ctx context.Context, phase Phase, ev interact.Event) error {
	defer s.notifier.Flush()
	switch phase {
	case Down:
		return s.machine.Down(ctx, ev)
	case Move:
		return s.machine.Move(ctx, ev)
	default:
		return s.machine.Up(ctx, ev)
	}
}

// Forget abandons the current gesture.
func (s *Session) Forget(ctx context.Context) {
	defer s.notifier.Flush()
	s.machine.Forget(ctx)
}

// SetInsertingEdges toggles edge-insertion mode.
func (s *Session) SetInsertingEdges(ctx context.Context, on bool) {
	defer s.notifier.Flush()
	s.machine.SetInsertingEdges(ctx, on)
}

// Undo reverts the last Action. An open gesture is committed first. It
// reports false when there was nothing to undo.
func (s *Session) Undo(ctx context.Context) (*history.Action, bool) {
	defer s.notifier.Flush()
	s.machine.Interrupt()
	a := s.editor.Undo(ctx)
	return a, a != nil
}

// Redo re-applies the last undone Action.
func (s *Session) Redo(ctx context.Context) (*history.Action, bool) {
	defer s.notifier.Flush()
	s.machine.Interrupt()
	a := s.editor.Redo(ctx)
	return a, a != nil
}

// Collapse folds a cluster into its collapsed shape.
func (s *Session) Collapse(ctx context.Context, id scene.ID) (*history.Action, error) {
	defer s.notifier.Flush()
	return s.editor.Collapse(ctx, id)
}

// Expand unfolds a collapsed cluster.
func (s *Session) Expand(ctx context.Context, id scene.ID) (*history.Action, error) {
	defer s.notifier.Flush()
	return s.editor.Expand(ctx, id)
}

// AddNode inserts n as one undoable Action.
func (s *Session) AddNode(ctx context.Context, n *scene.Node) (*history.Action, error) {
	defer s.notifier.Flush()
	return s.editor.AddNode(ctx, n)
}

// RemoveNode removes a node with its incident edges as one undoable Action.
func (s *Session) RemoveNode(ctx context.Context, id scene.ID) (*history.Action, error) {
	defer s.notifier.Flush()
	for _, e := range s.scene.IncidentEdges(id) {
		s.deselect(e.ID)
	}
	s.deselect(id)
	return s.editor.RemoveNode(ctx, id)
}

// RemoveEdge removes an edge and its label as one undoable Action.
func (s *Session) RemoveEdge(ctx context.Context, id scene.ID) (*history.Action, error) {
	defer s.notifier.Flush()
	s.deselect(id)
	if s.editor.EditedEdge() == id {
		s.editor.StopEditing()
	}
	return s.editor.RemoveEdge(ctx, id)
}

// FitBoundingBox fits the scene box to the visible geometry.
func (s *Session) FitBoundingBox(ctx context.Context) (*history.Action, error) {
	defer s.notifier.Flush()
	return s.editor.FitBoundingBox(ctx)
}

func (s *Session) deselect(id scene.ID) {
	if !s.machine.IsSelected(id) {
		return
	}
	var keep []scene.ID
	for _, x := range s.machine.Selection() {
		if x != id {
			keep = append(keep, x)
		}
	}
	s.machine.Select(keep...)
}
