package editor

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/history"
	"github.com/matzehuels/graphedit/pkg/observability"
	"github.com/matzehuels/graphedit/pkg/polyline"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/scene"
	"github.com/matzehuels/graphedit/pkg/viewer"
)

// Sentinel errors for editor operations.
var (
	// ErrNoDrag is returned by Drag and DragCorner without a prepared gesture.
	ErrNoDrag = errors.New("no drag in progress")

	// ErrNotEditing is returned by corner operations when no edge is being edited.
	ErrNotEditing = errors.New("no edge is being edited")

	// ErrEmptySelection is returned when a drag is prepared with nothing movable.
	ErrEmptySelection = errors.New("nothing to drag")
)

// =============================================================================
// Settings
// =============================================================================

// Settings tunes the orchestrator.
type Settings struct {
	// Mode is the routing mode used by drags that do not ask for another.
	Mode routing.Mode

	// NodeSeparation is the minimum gap kept between pushed siblings.
	NodeSeparation float64

	// FanoutFactor scales NodeSeparation into the gap between parallel edges.
	FanoutFactor float64

	// CornerTolerance is the pick radius for deleting a corner.
	CornerTolerance float64

	// InsertBandLow and InsertBandHigh bound the segment parameter at which
	// a corner may be inserted.
	InsertBandLow  float64
	InsertBandHigh float64

	// LineWidth is the stroke of interactively inserted edges.
	LineWidth float64

	Routing routing.Options
}

// DefaultSettings returns the built-in tuning.
func DefaultSettings() Settings {
	return Settings{
		Mode:            routing.ModeStraight,
		NodeSeparation:  10,
		FanoutFactor:    6,
		CornerTolerance: 3,
		InsertBandLow:   polyline.DefaultBandLow,
		InsertBandHigh:  polyline.DefaultBandHigh,
		LineWidth:       1,
		Routing:         routing.DefaultOptions(),
	}
}

// FanoutSeparation is the gap between parallel edges.
func (s Settings) FanoutSeparation() float64 {
	return s.NodeSeparation * s.FanoutFactor
}

// Options carries the collaborators of an Editor. Nil fields get defaults:
// the built-in straight router and label placer, no relayout, a discarded
// logger and no notifications.
type Options struct {
	Settings Settings
	Router   routing.Router
	Labels   routing.LabelPlacer
	Relayout routing.Relayouter
	Resolve  routing.SettingsResolver
	Logger   *log.Logger
	Sink     viewer.Sink
}

// =============================================================================
// Editor
// =============================================================================

// Editor mutates a scene on behalf of the interaction layer.
type Editor struct {
	scene    *scene.Scene
	log      *history.Log
	settings Settings

	router   routing.Router
	labels   routing.LabelPlacer
	relayout routing.Relayouter
	resolve  routing.SettingsResolver
	logger   *log.Logger
	sink     viewer.Sink

	drag     *DragSet
	dragMode routing.Mode
	pusher   *pusher
	grew     bool

	edited     scene.ID
	derived    scene.ID // edge whose corners no Action has recorded yet
	cornerEdge scene.ID
	corner     polyline.Handle
}

type discard struct{}

func (discard) Push(viewer.Event) {}

// New creates an Editor over s recording into l.
func New(s *scene.Scene, l *history.Log, opts Options) *Editor {
	ed := &Editor{
		scene:    s,
		log:      l,
		settings: opts.Settings,
		router:   opts.Router,
		labels:   opts.Labels,
		relayout: opts.Relayout,
		resolve:  opts.Resolve,
		logger:   opts.Logger,
		sink:     opts.Sink,
		corner:   polyline.Nil,
	}
	if ed.settings == (Settings{}) {
		ed.settings = DefaultSettings()
	}
	straight := routing.NewStraightRouter(ed.settings.Routing)
	if ed.router == nil {
		ed.router = straight
	}
	if ed.labels == nil {
		ed.labels = straight
	}
	if ed.resolve == nil {
		sep := ed.settings.NodeSeparation
		ed.resolve = func(scene.ID) routing.LayoutSettings {
			return routing.LayoutSettings{NodeSeparation: sep}
		}
	}
	if ed.logger == nil {
		ed.logger = log.New(io.Discard)
	}
	if ed.sink == nil {
		ed.sink = discard{}
	}
	return ed
}

// Scene returns the edited scene.
func (ed *Editor) Scene() *scene.Scene { return ed.scene }

// Log returns the undo log.
func (ed *Editor) Log() *history.Log { return ed.log }

// Settings returns the current tuning.
func (ed *Editor) Settings() Settings { return ed.settings }

// SetMode changes the default routing mode.
func (ed *Editor) SetMode(m routing.Mode) { ed.settings.Mode = m }

// Dragging reports whether an object or corner gesture is open.
func (ed *Editor) Dragging() bool { return ed.drag != nil || ed.cornerEdge != "" }

// DragSet returns the sets of the current object drag, or nil.
func (ed *Editor) DragSet() *DragSet { return ed.drag }

// BoxGrew reports whether the current gesture has grown the scene box.
func (ed *Editor) BoxGrew() bool { return ed.grew }

// =============================================================================
// Action helpers
// =============================================================================

func (ed *Editor) begin(ctx context.Context, name string) error {
	if _, err := ed.log.Begin(ed.scene, name); err != nil {
		return err
	}
	ed.grew = false
	if ed.derived != "" {
		ed.adoptDerived()
	}
	observability.Edit().OnActionBegin(ctx, name)
	return nil
}

func (ed *Editor) commit(ctx context.Context) (*history.Action, error) {
	open := ed.log.Open()
	a, err := ed.log.Commit(ed.scene)
	if err != nil {
		return nil, err
	}
	if a != nil {
		observability.Edit().OnActionCommit(ctx, a.Name, a.Len())
		ed.logger.Debugf("Committed %s: %d entities", a.Name, a.Len())
	} else if open != nil {
		ed.logger.Debugf("Dropped empty %s", open.Name)
	}
	return a, nil
}

// touch snapshots ent into the open Action and queues a repaint. It must
// run before ent is mutated.
func (ed *Editor) touch(ent scene.Entity) {
	if ent == nil {
		return
	}
	ed.log.CaptureIfUntouched(ent)
	if a := ed.log.Open(); a != nil {
		a.AddAffected(ent.EntityID())
	}
	ed.sink.Push(viewer.Event{Kind: viewer.EntityChanged, ID: ent.EntityID()})
}

// refit recomputes the scene box from the visible geometry.
func (ed *Editor) refit() {
	before := ed.scene.Box
	ed.scene.FitBoundingBox()
	if ed.scene.Box != before {
		if !ed.grew {
			ed.sink.Push(viewer.Event{Kind: viewer.FullInvalidate})
		}
		ed.grew = true
	}
}

// grow extends the scene box over ent.
func (ed *Editor) grow(ent scene.Entity) {
	if ed.scene.UpdateBoundingBox(ent) {
		if !ed.grew {
			ed.sink.Push(viewer.Event{Kind: viewer.FullInvalidate})
		}
		ed.grew = true
	}
}

// affected marks id for repaint without snapshotting it.
func (ed *Editor) affected(id scene.ID) {
	if a := ed.log.Open(); a != nil {
		a.AddAffected(id)
	}
	ed.sink.Push(viewer.Event{Kind: viewer.EntityChanged, ID: id})
}

// =============================================================================
// History
// =============================================================================

// Undo reverts the last Action, committing an open one first. It returns
// nil when there was nothing to undo.
func (ed *Editor) Undo(ctx context.Context) *history.Action {
	ed.closeGesture(ctx)
	a, ok := ed.log.Undo(ed.scene)
	if !ok {
		return nil
	}
	observability.Edit().OnUndo(ctx, a.Name)
	ed.announce(a)
	return a
}

// Redo re-applies the last undone Action. An open Action is committed
// first, which leaves nothing to redo. It returns nil when there was
// nothing to redo.
func (ed *Editor) Redo(ctx context.Context) *history.Action {
	ed.closeGesture(ctx)
	a, ok := ed.log.Redo(ed.scene)
	if !ok {
		return nil
	}
	observability.Edit().OnRedo(ctx, a.Name)
	ed.announce(a)
	return a
}

func (ed *Editor) announce(a *history.Action) {
	for _, id := range a.Affected() {
		ed.sink.Push(viewer.Event{Kind: viewer.EntityChanged, ID: id})
	}
	if a.BoundingBoxChanged() {
		ed.sink.Push(viewer.Event{Kind: viewer.FullInvalidate})
	}
}

// Forget abandons the current gesture. An open Action is rolled back and
// removed from the log.
func (ed *Editor) Forget(ctx context.Context) {
	ed.clearGesture()
	if a := ed.log.Abort(ed.scene); a != nil {
		observability.Edit().OnActionAbort(ctx, a.Name)
		ed.announce(a)
		ed.sink.Push(viewer.Event{Kind: viewer.FullInvalidate})
	}
}

// closeGesture ends the current gesture and commits its open Action.
func (ed *Editor) closeGesture(ctx context.Context) {
	ed.clearGesture()
	ed.dropDerived()
	if ed.log.Open() != nil {
		if _, err := ed.commit(ctx); err != nil {
			ed.logger.Warnf("Commit of interrupted gesture failed: %v", err)
		}
	}
}

func (ed *Editor) clearGesture() {
	ed.drag = nil
	ed.pusher = nil
	ed.cornerEdge = ""
	ed.corner = polyline.Nil
}

// FitBoundingBox shrinks or grows the scene box to the visible geometry as
// one undoable Action.
func (ed *Editor) FitBoundingBox(ctx context.Context) (*history.Action, error) {
	if err := ed.begin(ctx, "fit bounding box"); err != nil {
		return nil, err
	}
	ed.scene.FitBoundingBox()
	ed.sink.Push(viewer.Event{Kind: viewer.FullInvalidate})
	return ed.commit(ctx)
}

// endNodes returns the nodes an edge is drawn between: its endpoints, or
// their outermost collapsed ancestors when those are hidden.
func (ed *Editor) endNodes(e *scene.Edge) (src, tgt *scene.Node) {
	return ed.representative(e.Source), ed.representative(e.Target)
}

func (ed *Editor) representative(id scene.ID) *scene.Node {
	return ed.scene.Representative(id)
}

// curveMid returns the midpoint of an edge's curve, or of its end centers
// when it has none.
func (ed *Editor) curveMid(e *scene.Edge) geom.Point {
	if !e.Curve.Empty() {
		return e.Curve.Midpoint()
	}
	src, tgt := ed.endNodes(e)
	if src == nil || tgt == nil {
		return geom.Point{}
	}
	return geom.Lerp(src.Center(), tgt.Center(), 0.5)
}
