package editor

import (
	"context"

	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/history"
	"github.com/matzehuels/graphedit/pkg/polyline"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/scene"
)

// EditEdge makes the corners of an edge editable. An edge routed without
// corners gets them derived from its curve; the derived corners belong to
// no Action until the first corner edit, and are dropped again if editing
// stops before one.
func (ed *Editor) EditEdge(id scene.ID) error {
	e := ed.scene.Edge(id)
	if e == nil {
		return errors.Wrap(errors.ErrCodeNotFound, scene.ErrUnknownEntity, "edit edge %q", id)
	}
	if ed.edited != "" && ed.edited != id {
		ed.StopEditing()
	}
	if e.Polyline == nil {
		e.Polyline = routing.PolylineFromCurve(ed.scene, e)
		ed.derived = id
	}
	ed.edited = id
	ed.affected(id)
	return nil
}

// StopEditing leaves corner-editing mode.
func (ed *Editor) StopEditing() {
	if ed.edited != "" {
		ed.dropDerived()
		ed.affected(ed.edited)
	}
	ed.edited = ""
}

// dropDerived takes back corners EditEdge derived that no Action adopted.
func (ed *Editor) dropDerived() {
	if ed.derived == "" {
		return
	}
	if e := ed.scene.Edge(ed.derived); e != nil {
		e.Polyline = nil
		ed.affected(e.ID)
	}
	if ed.edited == ed.derived {
		ed.edited = ""
	}
	ed.derived = ""
}

// adoptDerived captures the edge with derived corners into the open Action
// as it was before EditEdge gave it any, so undoing the Action leaves it
// without them.
func (ed *Editor) adoptDerived() {
	e := ed.scene.Edge(ed.derived)
	ed.derived = ""
	if e == nil {
		return
	}
	p := e.Polyline
	e.Polyline = nil
	ed.touch(e)
	e.Polyline = p
	if l := ed.scene.Label(e.Label); l != nil {
		ed.touch(l)
	}
}

// EditedEdge returns the edge whose corners are editable, or "".
func (ed *Editor) EditedEdge() scene.ID { return ed.edited }

func (ed *Editor) editedEdge() (*scene.Edge, error) {
	if ed.edited == "" {
		return nil, ErrNotEditing
	}
	e := ed.scene.Edge(ed.edited)
	if e == nil || e.Polyline == nil {
		ed.edited = ""
		return nil, ErrNotEditing
	}
	return e, nil
}

func (ed *Editor) cornerTolerance(e *scene.Edge) float64 {
	return ed.settings.CornerTolerance + e.LineWidth
}

// CornerAt returns the interior corner of the edited edge under pt.
func (ed *Editor) CornerAt(pt geom.Point) (polyline.Handle, bool) {
	e, err := ed.editedEdge()
	if err != nil {
		return polyline.Nil, false
	}
	h, err := polyline.FindCornerNear(e.Polyline, pt, ed.cornerTolerance(e))
	return h, err == nil
}

// InsertCorner adds a corner to the edited edge at pt, on the first
// segment pt projects onto inside the insertion band.
func (ed *Editor) InsertCorner(ctx context.Context, pt geom.Point) (polyline.Handle, *history.Action, error) {
	e, err := ed.editedEdge()
	if err != nil {
		return polyline.Nil, nil, err
	}
	anchor, err := polyline.FindInsertionAnchor(e.Polyline, pt, ed.settings.InsertBandLow, ed.settings.InsertBandHigh)
	if err != nil {
		return polyline.Nil, nil, err
	}
	if err := ed.begin(ctx, "insert corner"); err != nil {
		return polyline.Nil, nil, err
	}
	h := e.Polyline.InsertAfter(anchor, pt)
	prev, next := e.Polyline.Prev(h), e.Polyline.Next(h)
	ed.rebuild(e)
	if err := ed.log.Record(e.ID, ed.cornerReplay(e.ID, h, prev, next, true)); err != nil {
		return polyline.Nil, nil, err
	}
	a, err := ed.commit(ctx)
	return h, a, err
}

// DeleteCorner removes the corner of the edited edge under pt.
func (ed *Editor) DeleteCorner(ctx context.Context, pt geom.Point) (*history.Action, error) {
	e, err := ed.editedEdge()
	if err != nil {
		return nil, err
	}
	h, err := polyline.FindCornerNear(e.Polyline, pt, ed.cornerTolerance(e))
	if err != nil {
		return nil, err
	}
	if err := ed.begin(ctx, "delete corner"); err != nil {
		return nil, err
	}
	prev, next := e.Polyline.Unlink(h)
	ed.rebuild(e)
	if err := ed.log.Record(e.ID, ed.cornerReplay(e.ID, h, prev, next, false)); err != nil {
		return nil, err
	}
	return ed.commit(ctx)
}

// ToggleCorner deletes the corner under pt or, when there is none, inserts
// one there.
func (ed *Editor) ToggleCorner(ctx context.Context, pt geom.Point) (*history.Action, error) {
	if _, ok := ed.CornerAt(pt); ok {
		return ed.DeleteCorner(ctx, pt)
	}
	_, a, err := ed.InsertCorner(ctx, pt)
	return a, err
}

// cornerReplay records a corner insertion or deletion. The closures look
// the edge up again because Undo of later Actions replaces its Polyline
// with a clone; handles survive cloning.
func (ed *Editor) cornerReplay(id scene.ID, h, prev, next polyline.Handle, inserted bool) history.Replay {
	unlink := func(s *scene.Scene) {
		if e := s.Edge(id); e != nil && e.Polyline != nil {
			e.Polyline.Unlink(h)
			ed.rebuild(e)
		}
	}
	relink := func(s *scene.Scene) {
		if e := s.Edge(id); e != nil && e.Polyline != nil {
			e.Polyline.Relink(h, prev, next)
			ed.rebuild(e)
		}
	}
	if inserted {
		return history.Replay{Undo: unlink, Redo: relink}
	}
	return history.Replay{Undo: relink, Redo: unlink}
}

// rebuild regenerates an edge's curve from its corners.
func (ed *Editor) rebuild(e *scene.Edge) {
	src, tgt := ed.endNodes(e)
	r := routing.Route{Curve: e.Polyline.Curve(), Polyline: e.Polyline}
	routing.ApplyRouteBetween(e, r, src, tgt, ed.settings.Routing)
	if l := ed.scene.Label(e.Label); l != nil {
		l.Attach(e.Curve)
	}
	ed.affected(e.ID)
	ed.grow(e)
}

// PrepareForCornerDragging opens a corner drag on an interior corner of
// the edited edge.
func (ed *Editor) PrepareForCornerDragging(ctx context.Context, h polyline.Handle) error {
	e, err := ed.editedEdge()
	if err != nil {
		return err
	}
	if h == polyline.Nil || !e.Polyline.Linked(h) || e.Polyline.IsSentinel(h) {
		return polyline.ErrNoCorner
	}
	if err := ed.begin(ctx, "drag corner"); err != nil {
		return err
	}
	ed.touch(e)
	if l := ed.scene.Label(e.Label); l != nil {
		ed.touch(l)
	}
	ed.cornerEdge = e.ID
	ed.corner = h
	return nil
}

// DragCorner moves the dragged corner by delta and regenerates the curve.
func (ed *Editor) DragCorner(ctx context.Context, delta geom.Point) error {
	if ed.cornerEdge == "" {
		return ErrNoDrag
	}
	e := ed.scene.Edge(ed.cornerEdge)
	if e == nil || e.Polyline == nil {
		return ErrNoDrag
	}
	e.Polyline.SetPoint(ed.corner, e.Polyline.Point(ed.corner).Add(delta))
	ed.rebuild(e)
	return nil
}

// EndCornerDrag commits the corner drag.
func (ed *Editor) EndCornerDrag(ctx context.Context) (*history.Action, error) {
	if ed.cornerEdge == "" {
		return nil, ErrNoDrag
	}
	ed.cornerEdge = ""
	ed.corner = polyline.Nil
	return ed.commit(ctx)
}
