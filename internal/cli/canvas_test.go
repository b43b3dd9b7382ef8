package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/scene"
	"github.com/matzehuels/graphedit/pkg/session"
)

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// testSession builds alpha(0,0) --ab--> beta(100,0), both 20×10.
func testSession(t *testing.T) *session.Session {
	t.Helper()
	sc := scene.New(10, 10)
	must(t, sc.AddNode(&scene.Node{ID: "A", Name: "alpha", Boundary: geom.RectPolygon(geom.Pt(0, 0), 20, 10)}))
	must(t, sc.AddNode(&scene.Node{ID: "B", Name: "beta", Boundary: geom.RectPolygon(geom.Pt(100, 0), 20, 10)}))
	e := &scene.Edge{ID: "ab", Source: "A", Target: "B"}
	must(t, sc.AddEdge(e))
	routing.ApplyRoute(sc, e, routing.StraightRoute(sc, e, 0, 15), routing.DefaultOptions())
	sc.FitBoundingBox()
	return session.New(sc, session.Options{})
}

// unitView maps one scene unit to one column with (-20,20) at the top-left.
var unitView = viewport{origin: geom.Pt(-20, 20), scale: 1}

func TestViewportRoundTrip(t *testing.T) {
	v := fitViewport(geom.Rect{Min: geom.Pt(-50, -25), Max: geom.Pt(50, 25)}, 50, 25)
	for _, cell := range [][2]int{{0, 0}, {3, 7}, {49, 24}, {-2, 30}} {
		col, row := v.toCell(v.toScene(cell[0], cell[1]))
		if col != cell[0] || row != cell[1] {
			t.Errorf("toCell(toScene(%d,%d)) = (%d,%d)", cell[0], cell[1], col, row)
		}
	}
}

func TestFitViewportContainsBox(t *testing.T) {
	box := geom.Rect{Min: geom.Pt(-50, -25), Max: geom.Pt(50, 25)}
	v := fitViewport(box, 50, 25)
	for _, p := range []geom.Point{box.Min, box.Max, box.Center()} {
		col, row := v.toCell(p)
		if col < 0 || col > 50 || row < 0 || row > 25 {
			t.Errorf("toCell(%v) = (%d,%d), outside the 50x25 grid", p, col, row)
		}
	}
	if got := fitViewport(geom.EmptyRect(), 10, 10).scale; got != 1 {
		t.Errorf("empty box scale = %v, want 1", got)
	}
}

func TestViewportZoomAndPan(t *testing.T) {
	v := unitView
	p := v.toScene(10, 5)
	z := v.zoom(0.5, 10, 5)
	if q := z.toScene(10, 5); !q.Close(p) {
		t.Errorf("zoom moved the anchor from %v to %v", p, q)
	}
	if z.scale != 0.5 {
		t.Errorf("scale = %v, want 0.5", z.scale)
	}
	if got, want := v.pan(3, 2).toScene(0, 0), v.toScene(3, 2); !got.Close(want) {
		t.Errorf("pan(3,2).toScene(0,0) = %v, want %v", got, want)
	}
}

func TestDrawScene(t *testing.T) {
	s := testSession(t)
	c := drawScene(s, unitView, 140, 20)
	rows := strings.Split(c.plain(), "\n")
	if len(rows) != 20 {
		t.Fatalf("rows = %d, want 20", len(rows))
	}

	// alpha spans columns 10..30 and rows 7..12.
	if got := c.at(10, 7); got != '┌' {
		t.Errorf("corner = %q, want '┌'", got)
	}
	if got := c.at(30, 12); got != '┘' {
		t.Errorf("corner = %q, want '┘'", got)
	}
	if !strings.Contains(rows[9], "alpha") || !strings.Contains(rows[9], "beta") {
		t.Errorf("row 9 = %q, want both names", rows[9])
	}
	if got := c.at(50, 10); got != '·' {
		t.Errorf("edge cell = %q, want '·'", got)
	}
	if got := c.inks[7*c.cols+10]; got != inkNode {
		t.Errorf("unselected ink = %v, want %v", got, inkNode)
	}

	s.Machine().Select("A")
	c = drawScene(s, unitView, 140, 20)
	if got := c.inks[7*c.cols+10]; got != inkSelected {
		t.Errorf("selected ink = %v, want %v", got, inkSelected)
	}
}

func TestCanvasLabelClips(t *testing.T) {
	c := newCanvas(20, 5, unitView)
	c.label(geom.Rect{Min: geom.Pt(-20, 10), Max: geom.Pt(-14, 20)}, "longname", inkNode)
	if got := strings.TrimSpace(strings.Split(c.plain(), "\n")[2]); got != "longn" {
		t.Errorf("label = %q, want %q", got, "longn")
	}
}
