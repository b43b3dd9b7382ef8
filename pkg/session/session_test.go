package session

import (
	"context"
	"testing"

	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/interact"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/scene"
	"github.com/matzehuels/graphedit/pkg/viewer"
)

func box(id scene.ID, x, y float64) *scene.Node {
	return &scene.Node{ID: id, Boundary: geom.RectPolygon(geom.Pt(x, y), 10, 10)}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// twoNodes builds A(0,0) --ab--> B(100,0).
func twoNodes(t *testing.T) *Session {
	t.Helper()
	sc := scene.New(10, 10)
	must(t, sc.AddNode(box("A", 0, 0)))
	must(t, sc.AddNode(box("B", 100, 0)))
	e := &scene.Edge{ID: "ab", Source: "A", Target: "B"}
	must(t, sc.AddEdge(e))
	routing.ApplyRoute(sc, e, routing.StraightRoute(sc, e, 0, 15), routing.DefaultOptions())
	sc.FitBoundingBox()
	return New(sc, Options{})
}

func at(x, y float64) interact.Event {
	return interact.Event{Point: geom.Pt(x, y), Screen: geom.Pt(x, y)}
}

func drag(t *testing.T, s *Session, from, to geom.Point) {
	t.Helper()
	ctx := context.Background()
	must(t, s.Pointer(ctx, Down, at(from.X, from.Y)))
	must(t, s.Pointer(ctx, Move, at(to.X, to.Y)))
	must(t, s.Pointer(ctx, Up, at(to.X, to.Y)))
}

type recorder struct {
	changed map[scene.ID]int
	full    int
}

func record(s *Session) *recorder {
	r := &recorder{changed: make(map[scene.ID]int)}
	s.Subscribe(viewer.Funcs{
		EntityChanged:  func(id scene.ID) { r.changed[id]++ },
		FullInvalidate: func() { r.full++ },
	})
	return r
}

func TestViewerNotifiedPerPointerEvent(t *testing.T) {
	ctx := context.Background()
	s := twoNodes(t)
	r := record(s)

	must(t, s.Pointer(ctx, Down, at(0, 0)))
	if len(r.changed) != 0 {
		t.Errorf("changes after press = %v, want none", r.changed)
	}
	must(t, s.Pointer(ctx, Move, at(2, 0)))
	if r.changed["A"] != 1 || r.changed["ab"] != 1 {
		t.Errorf("changes after move = %v, want A and ab once", r.changed)
	}
	must(t, s.Pointer(ctx, Move, at(4, 0)))
	if r.changed["A"] != 2 {
		t.Errorf("A changes after second move = %d, want 2", r.changed["A"])
	}
	must(t, s.Pointer(ctx, Up, at(4, 0)))
}

func TestIndexFollowsEdits(t *testing.T) {
	ctx := context.Background()
	s := twoNodes(t)
	drag(t, s, geom.Pt(0, 0), geom.Pt(0, 20))

	if id, ok := s.ObjectUnderCursor(geom.Pt(0, 20)); !ok || id != "A" {
		t.Errorf("ObjectUnderCursor(0,20) = %q, %v, want A", id, ok)
	}
	if id, ok := s.ObjectUnderCursor(geom.Pt(0, 0)); ok {
		t.Errorf("ObjectUnderCursor(0,0) = %q, want nothing", id)
	}

	if _, ok := s.Undo(ctx); !ok {
		t.Fatal("Undo() found nothing")
	}
	if id, ok := s.ObjectUnderCursor(geom.Pt(0, 0)); !ok || id != "A" {
		t.Errorf("after Undo ObjectUnderCursor(0,0) = %q, %v, want A", id, ok)
	}
}

func TestEdgesWinOverNodes(t *testing.T) {
	s := twoNodes(t)
	if id, _ := s.ObjectUnderCursor(geom.Pt(50, 0)); id != "ab" {
		t.Errorf("ObjectUnderCursor(50,0) = %q, want ab", id)
	}
}

func TestUndoMidDrag(t *testing.T) {
	ctx := context.Background()
	s := twoNodes(t)
	must(t, s.Pointer(ctx, Down, at(0, 0)))
	must(t, s.Pointer(ctx, Move, at(0, 20)))

	if _, ok := s.Undo(ctx); !ok {
		t.Fatal("Undo() during a drag found nothing")
	}
	if c := s.Scene().Node("A").Center(); !c.Close(geom.Pt(0, 0)) {
		t.Errorf("A center = %v, want (0,0)", c)
	}
	if s.Machine().State() != interact.StateIdle {
		t.Errorf("State() = %v, want idle", s.Machine().State())
	}
	if !s.Log().CanRedo() {
		t.Error("CanRedo() = false, want true")
	}
	must(t, s.Pointer(ctx, Up, at(0, 20)))
}

func TestRedoMidDrag(t *testing.T) {
	ctx := context.Background()
	s := twoNodes(t)
	must(t, s.Pointer(ctx, Down, at(0, 0)))
	must(t, s.Pointer(ctx, Move, at(5, 0)))

	if _, ok := s.Redo(ctx); ok {
		t.Error("Redo() during a drag redid something")
	}
	if s.Log().Open() != nil {
		t.Fatal("Redo() left the drag Action open")
	}
	if s.Machine().State() != interact.StateIdle {
		t.Errorf("State() = %v, want idle", s.Machine().State())
	}
	if c := s.Scene().Node("A").Center(); !c.Close(geom.Pt(5, 0)) {
		t.Errorf("A center = %v, want (5,0)", c)
	}
	_ = s.Pointer(ctx, Up, at(5, 0))

	drag(t, s, geom.Pt(100, 0), geom.Pt(100, 20))
	if c := s.Scene().Node("B").Center(); !c.Close(geom.Pt(100, 20)) {
		t.Errorf("B center = %v, want (100,20)", c)
	}
	a := s.Log().CurrentUndo()
	if a == nil || a.Prev() == nil || a.Prev().Prev() != nil {
		t.Error("want exactly two Actions in the log")
	}
}

func TestEmptyHistory(t *testing.T) {
	ctx := context.Background()
	s := twoNodes(t)
	if a, ok := s.Undo(ctx); ok || a != nil {
		t.Errorf("Undo() = %v, %v, want nil, false", a, ok)
	}
	if a, ok := s.Redo(ctx); ok || a != nil {
		t.Errorf("Redo() = %v, %v, want nil, false", a, ok)
	}
}

func TestRemoveNodeUndo(t *testing.T) {
	ctx := context.Background()
	s := twoNodes(t)
	s.Machine().Select("B", "ab")

	_, err := s.RemoveNode(ctx, "B")
	must(t, err)
	if s.Scene().Edge("ab") != nil {
		t.Error("incident edge survived RemoveNode")
	}
	if got := s.Machine().Selection(); len(got) != 0 {
		t.Errorf("Selection() = %v, want none", got)
	}
	if id, ok := s.ObjectUnderCursor(geom.Pt(100, 0)); ok {
		t.Errorf("ObjectUnderCursor on removed node = %q", id)
	}

	s.Undo(ctx)
	if s.Scene().Edge("ab") == nil || s.Scene().Node("B") == nil {
		t.Fatal("Undo did not restore B and ab")
	}
	if id, _ := s.ObjectUnderCursor(geom.Pt(100, 0)); id != "B" {
		t.Errorf("ObjectUnderCursor(100,0) = %q, want B", id)
	}
}

func TestRemoveNodeDropsEdgeLabels(t *testing.T) {
	ctx := context.Background()
	s := twoNodes(t)
	must(t, s.Scene().AddNode(box("C", 0, 100)))
	must(t, s.Scene().AddLabel(&scene.Label{ID: "lab", Owner: "ab", Text: "uses", Center: geom.Pt(50, 30), Width: 20, Height: 10}))
	s = New(s.Scene(), Options{})
	if id, _ := s.ObjectUnderCursor(geom.Pt(50, 30)); id != "lab" {
		t.Fatalf("ObjectUnderCursor(50,30) = %q, want lab", id)
	}

	_, err := s.RemoveNode(ctx, "A")
	must(t, err)
	if id, ok := s.ObjectUnderCursor(geom.Pt(50, 30)); ok {
		t.Errorf("ObjectUnderCursor on removed label = %q", id)
	}

	s.Undo(ctx)
	if id, _ := s.ObjectUnderCursor(geom.Pt(50, 30)); id != "lab" {
		t.Errorf("ObjectUnderCursor(50,30) after undo = %q, want lab", id)
	}
	s.Redo(ctx)
	if id, ok := s.ObjectUnderCursor(geom.Pt(50, 30)); ok {
		t.Errorf("ObjectUnderCursor after redo = %q", id)
	}
}

func TestAddNodeIsPickable(t *testing.T) {
	ctx := context.Background()
	s := twoNodes(t)
	_, err := s.AddNode(ctx, box("N", 50, 50))
	must(t, err)
	if id, _ := s.ObjectUnderCursor(geom.Pt(50, 50)); id != "N" {
		t.Errorf("ObjectUnderCursor(50,50) = %q, want N", id)
	}
}

func TestFitBoundingBoxNotifiesFullInvalidate(t *testing.T) {
	ctx := context.Background()
	s := twoNodes(t)
	r := record(s)
	s.Scene().Box = geom.Rect{Min: geom.Pt(-500, -500), Max: geom.Pt(500, 500)}

	a, err := s.FitBoundingBox(ctx)
	must(t, err)
	if a == nil {
		t.Fatal("FitBoundingBox() recorded nothing")
	}
	if r.full != 1 {
		t.Errorf("full invalidations = %d, want 1", r.full)
	}
}
