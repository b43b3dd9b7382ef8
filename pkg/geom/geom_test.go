package geom

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestAngle(t *testing.T) {
	c := Pt(0, 0)
	tests := []struct {
		a, b Point
		want float64
	}{
		{Pt(1, 0), Pt(0, 1), math.Pi / 2},
		{Pt(1, 0), Pt(0, -1), 3 * math.Pi / 2},
		{Pt(1, 0), Pt(-1, 0), math.Pi},
		{Pt(1, 0), Pt(2, 0), 0},
	}
	for _, tt := range tests {
		if got := Angle(tt.a, c, tt.b); !near(got, tt.want) {
			t.Errorf("Angle(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestProjectParam(t *testing.T) {
	a, b := Pt(0, 0), Pt(10, 0)
	tests := []struct {
		p    Point
		want float64
	}{
		{Pt(5, 3), 0.5},
		{Pt(-5, 0), -0.5},
		{Pt(10, -1), 1},
	}
	for _, tt := range tests {
		if got := ProjectParam(tt.p, a, b); !near(got, tt.want) {
			t.Errorf("ProjectParam(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if got := ProjectParam(Pt(3, 3), a, a); got != 0 {
		t.Errorf("degenerate ProjectParam = %v, want 0", got)
	}
}

func TestSegmentIntersect(t *testing.T) {
	p, ta, ok := SegmentIntersect(Pt(0, 0), Pt(10, 0), Pt(5, -5), Pt(5, 5))
	if !ok || !p.Close(Pt(5, 0)) || !near(ta, 0.5) {
		t.Errorf("SegmentIntersect = %v %v %v, want (5,0) 0.5 true", p, ta, ok)
	}
	if _, _, ok := SegmentIntersect(Pt(0, 0), Pt(1, 0), Pt(0, 1), Pt(1, 1)); ok {
		t.Error("parallel segments should not intersect")
	}
}

func TestRectUnion(t *testing.T) {
	e := EmptyRect()
	r := RectAround(Pt(0, 0), 2, 2)
	if got := e.Union(r); !got.Equal(r) {
		t.Errorf("Empty.Union(r) = %v, want %v", got, r)
	}
	o := RectAround(Pt(5, 5), 2, 2)
	u := r.Union(o)
	want := Rect{Min: Pt(-1, -1), Max: Pt(6, 6)}
	if !u.Equal(want) {
		t.Errorf("Union = %v, want %v", u, want)
	}
	if !e.IsEmpty() || e.Area() != 0 {
		t.Error("EmptyRect should be empty with zero area")
	}
	if e.Intersects(r) {
		t.Error("empty box should intersect nothing")
	}
}

func TestCurveTrimAndAt(t *testing.T) {
	c := NewPolylineCurve(Pt(0, 0), Pt(10, 0), Pt(10, 10))
	if got := c.At(1.5); !got.Close(Pt(10, 5)) {
		t.Errorf("At(1.5) = %v, want (10,5)", got)
	}
	tr := c.Trim(0.5, 1.5)
	if tr.Empty() || !tr.Start().Close(Pt(5, 0)) || !tr.End().Close(Pt(10, 5)) {
		t.Errorf("Trim(0.5,1.5) = %v, want (5,0)..(10,5)", tr)
	}
	if c.Trim(1, 1) != nil {
		t.Error("empty trim range should return nil")
	}
}

func TestCubicSplitPreservesShape(t *testing.T) {
	s := Cubic(Pt(0, 0), Pt(0, 10), Pt(10, 10), Pt(10, 0))
	c := &Curve{Segs: []Segment{s}}
	tr := c.Trim(0.25, 0.75)
	if !tr.Start().Close(s.At(0.25)) || !tr.End().Close(s.At(0.75)) {
		t.Errorf("trimmed ends = %v %v, want %v %v", tr.Start(), tr.End(), s.At(0.25), s.At(0.75))
	}
	if got, want := tr.At(0.5), s.At(0.5); !got.Near(want, 1e-9) {
		t.Errorf("trimmed midpoint = %v, want %v", got, want)
	}
}

func TestClosestParameter(t *testing.T) {
	c := NewPolylineCurve(Pt(0, 0), Pt(10, 0))
	if got := c.ClosestParameter(Pt(3, 4)); !near(got, 0.3) {
		t.Errorf("ClosestParameter = %v, want 0.3", got)
	}
}

func TestPolygonContains(t *testing.T) {
	p := RectPolygon(Pt(0, 0), 10, 10)
	tests := []struct {
		q    Point
		want bool
	}{
		{Pt(0, 0), true},
		{Pt(4.9, -4.9), true},
		{Pt(6, 0), false},
		{Pt(0, -7), false},
	}
	for _, tt := range tests {
		if got := p.Contains(tt.q); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.q, got, tt.want)
		}
	}
}

func TestPolygonIntersectSegment(t *testing.T) {
	p := RectPolygon(Pt(0, 0), 10, 10)
	x, ok := p.IntersectSegment(Pt(0, 0), Pt(20, 0))
	if !ok || !x.Close(Pt(5, 0)) {
		t.Errorf("IntersectSegment = %v %v, want (5,0) true", x, ok)
	}
}

func TestPolygonClosestParameter(t *testing.T) {
	p := RectPolygon(Pt(0, 0), 10, 10)
	par, d := p.ClosestParameter(Pt(0, -6))
	if !near(d, 1) {
		t.Errorf("distance = %v, want 1", d)
	}
	if got := p.At(par); !got.Close(Pt(0, -5)) {
		t.Errorf("At(closest) = %v, want (0,-5)", got)
	}
}
