package gvroute

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/graphedit/pkg/cache"
	gerrors "github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/scene"
)

func near(a, b geom.Point) bool { return a.Near(b, 1e-6) }

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// fakeRun serves canned output and records what it was asked.
type fakeRun struct {
	out     string
	err     error
	calls   int
	engine  string
	format  string
	lastDOT string
}

func (f *fakeRun) run(_ context.Context, dot []byte, engine, format string) ([]byte, error) {
	f.calls++
	f.engine, f.format, f.lastDOT = engine, format, string(dot)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.out), nil
}

func TestBuildDOT(t *testing.T) {
	dot := string(BuildDOT(Spec{
		Attrs:  map[string]string{"splines": "spline", "overlap": "true"},
		Pinned: true,
		Nodes: []SpecNode{
			{ID: "A", Center: geom.Pt(10, 20), Width: 72, Height: 36},
			{ID: "B C", Center: geom.Pt(-5, 0), Width: 36, Height: 36},
		},
		Edges: []SpecEdge{{ID: "ab", Tail: "A", Head: "B C", Label: "uses"}},
	}))
	for _, want := range []string{
		"digraph G {\n  overlap=\"true\";\n  splines=\"spline\";\n",
		`"A" [width=1, height=0.5, pos="10,20!"];`,
		`"B C" [width=0.5, height=0.5, pos="-5,0!"];`,
		`"A" -> "B C" [id="ab", label="uses"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("BuildDOT() missing %q in:\n%s", want, dot)
		}
	}
}

func TestBuildDOTUnpinned(t *testing.T) {
	dot := string(BuildDOT(Spec{Nodes: []SpecNode{{ID: "A", Width: 72, Height: 72}}}))
	if strings.Contains(dot, "pos=") {
		t.Errorf("unpinned DOT carries positions:\n%s", dot)
	}
}

const plainFixture = `graph 1 2.5 1
node A 0.5 0.5 1 0.5 "" solid box black lightgrey
node "B C" 2 0.5 1 0.5 "" solid box black lightgrey
edge A "B C" 4 1 0.5 1.25 0.5 1.5 0.5 1.5 0.5 solid black
edge A A 4 0.5 0.75 0.25 1 0.75 1 0.5 0.75 "a \"b\"" 0.5 1.1 solid black
stop
`

func TestParsePlain(t *testing.T) {
	p, err := ParsePlain([]byte(plainFixture))
	must(t, err)
	if p.Scale != 1 || p.Width != 180 || p.Height != 72 {
		t.Errorf("graph line = %v %v %v, want 1 180 72", p.Scale, p.Width, p.Height)
	}
	if len(p.Nodes) != 2 || p.Nodes[1].Name != "B C" {
		t.Fatalf("Nodes = %+v", p.Nodes)
	}
	if !near(p.Nodes[1].Center, geom.Pt(144, 36)) || p.Nodes[1].Width != 72 {
		t.Errorf("node B C = %+v", p.Nodes[1])
	}
	if len(p.Edges) != 2 {
		t.Fatalf("Edges = %d, want 2", len(p.Edges))
	}
	e := p.Edges[0]
	if e.HasLabel || len(e.Points) != 4 {
		t.Errorf("edge 0 = %+v", e)
	}
	if c := e.Curve(); len(c.Segs) != 1 || !near(c.Start(), geom.Pt(72, 36)) || !near(c.End(), geom.Pt(108, 36)) {
		t.Errorf("edge 0 curve = %+v", c)
	}
	loop := p.Edges[1]
	if !loop.HasLabel || loop.Label != `a "b"` || !near(loop.LabelPos, geom.Pt(36, 79.2)) {
		t.Errorf("edge 1 label = %q at %v", loop.Label, loop.LabelPos)
	}
}

func TestParsePlainMalformed(t *testing.T) {
	for _, in := range []string{
		"graph 1 x 1\n",
		"node A 1 2\n",
		"edge A B 3 0 0 1 1\n",
		"node \"A 1 1 1 1 x s b c f\n",
	} {
		if _, err := ParsePlain([]byte(in)); !gerrors.Is(err, gerrors.ErrCodeLayoutFailed) {
			t.Errorf("ParsePlain(%q) error = %v, want %s", in, err, gerrors.ErrCodeLayoutFailed)
		}
	}
}

func TestPolylineWhenNotBezier(t *testing.T) {
	e := PlainEdge{Points: []geom.Point{geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(1, 1)}}
	if c := e.Curve(); len(c.Segs) != 2 {
		t.Errorf("segments = %d, want 2 lines", len(c.Segs))
	}
}

func box(id scene.ID, x, y, w, h float64) *scene.Node {
	return &scene.Node{ID: id, Boundary: geom.RectPolygon(geom.Pt(x, y), w, h)}
}

// pair builds A(0,0) and B(144,0), both 72x36, with edges ab, ab2 and ba.
func pair(t *testing.T) *scene.Scene {
	t.Helper()
	s := scene.New(10, 10)
	must(t, s.AddNode(box("A", 0, 0, 72, 36)))
	must(t, s.AddNode(box("B", 144, 0, 72, 36)))
	for _, e := range []*scene.Edge{
		{ID: "ab", Source: "A", Target: "B"},
		{ID: "ab2", Source: "A", Target: "B"},
		{ID: "ba", Source: "B", Target: "A"},
	} {
		must(t, s.AddEdge(e))
	}
	return s
}

// Graphviz translated the pinned drawing by (72,36).
const pairPlain = `graph 1 4 1
node A 1 0.5 1 0.5 "" solid box black lightgrey
node B 3 0.5 1 0.5 "" solid box black lightgrey
edge A B 4 1.5 0.5 2 0.5 2 0.5 2.5 0.5 solid black
edge A B 4 1.5 0.6 2 0.7 2 0.7 2.5 0.6 solid black
edge B A 4 2.5 0.4 2 0.3 2 0.3 1.5 0.4 solid black
stop
`

func TestRouteAllMatchesEdgesAndUndoesTranslation(t *testing.T) {
	s := pair(t)
	fr := &fakeRun{out: pairPlain}
	b := New(Options{Run: fr.run})

	routes, err := b.RouteAll(context.Background(), s, []scene.ID{"ab", "ab2", "ba"}, routing.ModeSpline)
	must(t, err)
	if fr.engine != "neato" || fr.format != "plain" {
		t.Errorf("ran %s/%s, want neato/plain", fr.engine, fr.format)
	}
	if !strings.Contains(fr.lastDOT, `pos="0,0!"`) || !strings.Contains(fr.lastDOT, `splines="spline"`) {
		t.Errorf("DOT not pinned for splines:\n%s", fr.lastDOT)
	}
	tests := []struct {
		id    scene.ID
		start geom.Point
	}{
		{"ab", geom.Pt(36, 0)},
		{"ab2", geom.Pt(36, 7.2)},
		{"ba", geom.Pt(108, -7.2)},
	}
	for _, tt := range tests {
		r, ok := routes[tt.id]
		if !ok {
			t.Errorf("no route for %s", tt.id)
			continue
		}
		if got := r.Curve.Start(); !near(got, tt.start) {
			t.Errorf("%s starts at %v, want %v", tt.id, got, tt.start)
		}
	}
}

func TestRouteAllRectilinearUsesOrtho(t *testing.T) {
	fr := &fakeRun{out: pairPlain}
	b := New(Options{Run: fr.run})
	_, err := b.RouteAll(context.Background(), pair(t), []scene.ID{"ab"}, routing.ModeRectilinear)
	must(t, err)
	if !strings.Contains(fr.lastDOT, `splines="ortho"`) {
		t.Errorf("DOT lacks splines=ortho:\n%s", fr.lastDOT)
	}
}

func TestRouteAllStraightSkipsGraphviz(t *testing.T) {
	fr := &fakeRun{out: pairPlain}
	b := New(Options{Run: fr.run})
	routes, err := b.RouteAll(context.Background(), pair(t), []scene.ID{"ab"}, routing.ModeStraight)
	must(t, err)
	if fr.calls != 0 {
		t.Errorf("graphviz calls = %d, want 0", fr.calls)
	}
	if _, ok := routes["ab"]; !ok {
		t.Error("no straight route for ab")
	}
}

func TestRouteAllCachesOutput(t *testing.T) {
	fc, err := cache.NewFileCache(filepath.Join(t.TempDir(), "gv"))
	must(t, err)
	fr := &fakeRun{out: pairPlain}
	b := New(Options{Run: fr.run, Cache: fc})
	s := pair(t)
	for i := 0; i < 2; i++ {
		_, err := b.RouteAll(context.Background(), s, []scene.ID{"ab", "ab2", "ba"}, routing.ModeSpline)
		must(t, err)
	}
	if fr.calls != 1 {
		t.Errorf("graphviz calls = %d, want 1", fr.calls)
	}
}

func TestRouteAllFailure(t *testing.T) {
	fr := &fakeRun{err: errors.New("boom")}
	b := New(Options{Run: fr.run})
	_, err := b.RouteAll(context.Background(), pair(t), nil, routing.ModeSpline)
	if !gerrors.Is(err, gerrors.ErrCodeRoutingFailed) {
		t.Errorf("RouteAll() error = %v, want %s", err, gerrors.ErrCodeRoutingFailed)
	}
}

func TestRouteToPort(t *testing.T) {
	fr := &fakeRun{out: "graph 1 4 1\nnode A 1 0.5 1 0.5 \"\" solid box black lightgrey\nnode B 3 0.5 1 0.5 \"\" solid box black lightgrey\nedge A B 4 1.5 0.5 2 0.5 2 0.5 2.5 0.5 solid black\nstop\n"}
	b := New(Options{Run: fr.run})
	s := pair(t)
	r, err := b.RouteToPort(context.Background(), s,
		routing.Port{Kind: routing.PortFloating, Node: "A"},
		routing.Port{Kind: routing.PortFloating, Node: "B"})
	must(t, err)
	if !near(r.Curve.End(), geom.Pt(108, 0)) {
		t.Errorf("route ends at %v, want (108,0)", r.Curve.End())
	}
	if strings.Count(fr.lastDOT, "->") != 1 {
		t.Errorf("probe DOT should hold one edge:\n%s", fr.lastDOT)
	}
}

func TestRelayoutRecentersOnCluster(t *testing.T) {
	s := scene.New(10, 10)
	must(t, s.AddCluster(&scene.Cluster{Node: scene.Node{ID: "C", Boundary: geom.RectPolygon(geom.Pt(500, 500), 300, 100)}}))
	a, bn := box("A", 400, 500, 72, 36), box("B", 600, 500, 72, 36)
	a.Parent, bn.Parent = "C", "C"
	must(t, s.AddNode(a))
	must(t, s.AddNode(bn))
	must(t, s.AddNode(box("D", 0, 0, 72, 36)))
	must(t, s.AddEdge(&scene.Edge{ID: "ab", Source: "A", Target: "B"}))
	must(t, s.AddEdge(&scene.Edge{ID: "ad", Source: "A", Target: "D"}))

	// dot stacked A above B.
	fr := &fakeRun{out: "graph 1 1 2\nnode A 0.5 2 1 0.5 \"\" solid box black lightgrey\nnode B 0.5 0.5 1 0.5 \"\" solid box black lightgrey\nedge A B 4 0.5 1.75 0.5 1.5 0.5 1 0.5 0.75 solid black\nstop\n"}
	b := New(Options{Run: fr.run})
	l, err := b.Relayout(context.Background(), s, "C", func(scene.ID) routing.LayoutSettings {
		return routing.LayoutSettings{Engine: "fdp", NodeSeparation: 36}
	})
	must(t, err)
	if fr.engine != "fdp" {
		t.Errorf("engine = %q, want fdp", fr.engine)
	}
	if !strings.Contains(fr.lastDOT, `nodesep="0.5"`) || strings.Contains(fr.lastDOT, `"D"`) {
		t.Errorf("relayout DOT:\n%s", fr.lastDOT)
	}
	if !near(l.Nodes["A"], geom.Pt(500, 554)) || !near(l.Nodes["B"], geom.Pt(500, 446)) {
		t.Errorf("Nodes = %v, want A (500,554) and B (500,446)", l.Nodes)
	}
	if _, ok := l.Edges["ab"]; !ok {
		t.Error("no route for ab")
	}
	if _, ok := l.Edges["ad"]; ok {
		t.Error("edge leaving the scope was routed")
	}
}

const jsonFixture = `{"name":"G","directed":true,"_subgraph_cnt":1,
 "objects":[
  {"_gvid":0,"name":"cluster_x","bb":"8,8,98,160","nodes":[1,2]},
  {"_gvid":1,"name":"a","pos":"53,134","width":"0.75","height":"0.5","shape":"box"},
  {"_gvid":2,"name":"b","pos":"53,34","width":"0.75","height":"0.5","shape":"ellipse"},
  {"_gvid":3,"name":"c","pos":"150,34","width":"0.75","height":"0.5","shape":"ellipse"}],
 "edges":[
  {"_gvid":0,"tail":1,"head":2,"pos":"e,53,52 53,115.7 53,104 53,88.9 53,62","label":"uses","lp":"70,84"},
  {"_gvid":1,"tail":1,"head":3,"id":"ac","pos":"53,115.7 80,90 120,60 150,52"}]}`

func TestLoadDOT(t *testing.T) {
	fr := &fakeRun{out: jsonFixture}
	s, err := LoadDOT(context.Background(), []byte("digraph { }"), LoadOptions{Margin: 10, ClusterMargin: 8, Run: fr.run})
	must(t, err)
	if fr.engine != "dot" || fr.format != "json" {
		t.Errorf("ran %s/%s, want dot/json", fr.engine, fr.format)
	}

	c := s.Cluster("cluster_x")
	if c == nil || len(c.Children) != 2 {
		t.Fatalf("cluster_x = %+v, want two children", c)
	}
	if got := s.Node("c").Parent; got != "" {
		t.Errorf("c parent = %q, want none", got)
	}
	a := s.Node("a")
	if len(a.Boundary) != 4 || math.Abs(a.Width()-54) > 1e-9 || !near(a.Center(), geom.Pt(53, 134)) {
		t.Errorf("a = %v, want a 54 wide box at (53,134)", a.Boundary)
	}
	if got := len(s.Node("b").Boundary); got != 24 {
		t.Errorf("b vertices = %d, want an ellipse", got)
	}

	e := s.Edge("e0")
	if e == nil || e.Source != "a" || e.Target != "b" {
		t.Fatalf("e0 = %+v", e)
	}
	if e.TargetArrow == nil || !near(e.TargetArrow.Tip, geom.Pt(53, 52)) || math.Abs(e.TargetArrow.Length-10) > 1e-9 {
		t.Errorf("e0 arrow = %+v, want tip (53,52) length 10", e.TargetArrow)
	}
	l := s.Label(e.Label)
	if l == nil || l.Text != "uses" || !near(l.Center, geom.Pt(70, 84)) {
		t.Errorf("e0 label = %+v", l)
	}
	if ac := s.Edge("ac"); ac == nil || ac.TargetArrow != nil || len(ac.Curve.Segs) != 1 {
		t.Errorf("ac = %+v, want one segment and no arrow", ac)
	}
	if s.Box.IsEmpty() {
		t.Error("scene box not fitted")
	}
}

func TestLoadDOTRejectsBadJSON(t *testing.T) {
	fr := &fakeRun{out: "{"}
	if _, err := LoadDOT(context.Background(), nil, LoadOptions{Run: fr.run}); !gerrors.Is(err, gerrors.ErrCodeInvalidInput) {
		t.Errorf("LoadDOT() error = %v, want %s", err, gerrors.ErrCodeInvalidInput)
	}
}
