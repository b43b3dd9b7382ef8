package polyline

import (
	"testing"

	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/geom"
)

func threeCorner() *Polyline {
	return FromPoints([]geom.Point{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10), geom.Pt(20, 10)})
}

func TestFromPoints(t *testing.T) {
	p := threeCorner()
	if got := p.Len(); got != 4 {
		t.Fatalf("Len() = %d, want 4", got)
	}
	if p.Prev(p.Head()) != Nil || p.Next(p.Tail()) != Nil {
		t.Error("sentinels should have no outer neighbours")
	}
	if got := p.Point(p.Next(p.Head())); got != geom.Pt(10, 0) {
		t.Errorf("second point = %v, want (10,0)", got)
	}
}

func TestInsertUnlinkRelink(t *testing.T) {
	p := threeCorner()
	orig := p.Clone()

	h := p.InsertAfter(p.Head(), geom.Pt(5, 1))
	if got := p.Len(); got != 5 {
		t.Fatalf("Len() after insert = %d, want 5", got)
	}
	if p.Next(p.Head()) != h {
		t.Errorf("inserted site not after head")
	}

	prev, next := p.Unlink(h)
	if !p.Equal(orig) {
		t.Errorf("unlink did not restore sequence: %v, want %v", p.Points(), orig.Points())
	}

	p.Relink(h, prev, next)
	if got := p.Points()[1]; got != geom.Pt(5, 1) {
		t.Errorf("relinked point = %v, want (5,1)", got)
	}
}

func TestUnlinkSentinelPanics(t *testing.T) {
	p := threeCorner()
	for _, h := range []Handle{p.Head(), p.Tail()} {
		func() {
			defer func() {
				if err := errors.FromPanic(recover()); !errors.Is(err, errors.ErrCodeInvariant) {
					t.Errorf("Unlink(%d) recovered %v, want invariant panic", h, err)
				}
			}()
			p.Unlink(h)
		}()
	}
}

func TestClonedPolylineIsIndependent(t *testing.T) {
	p := threeCorner()
	c := p.Clone()
	p.SetPoint(p.Next(p.Head()), geom.Pt(99, 99))
	if c.Point(c.Next(c.Head())) != geom.Pt(10, 0) {
		t.Error("clone shares storage with original")
	}
}

func TestCurveEndpoints(t *testing.T) {
	tests := []struct {
		name string
		pts  []geom.Point
		segs int
	}{
		{"straight", []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0)}, 1},
		{"one corner", []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10)}, 3},
		{"degenerate", []geom.Point{geom.Pt(3, 3), geom.Pt(3, 3)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := FromPoints(tt.pts).Curve()
			if len(c.Segs) != tt.segs {
				t.Errorf("segments = %d, want %d", len(c.Segs), tt.segs)
			}
			if !c.Start().Close(tt.pts[0]) || !c.End().Close(tt.pts[len(tt.pts)-1]) {
				t.Errorf("curve runs %v..%v, want %v..%v", c.Start(), c.End(), tt.pts[0], tt.pts[len(tt.pts)-1])
			}
		})
	}
}

func TestFindCornerNear(t *testing.T) {
	p := threeCorner()
	if _, err := FindCornerNear(p, geom.Pt(0, 0), 1); err != ErrNoCorner {
		t.Errorf("head matched as corner, err = %v", err)
	}
	h, err := FindCornerNear(p, geom.Pt(10.5, 9.5), 1)
	if err != nil || p.Point(h) != geom.Pt(10, 10) {
		t.Errorf("FindCornerNear = %v %v, want (10,10)", h, err)
	}
}

func TestFindInsertionAnchor(t *testing.T) {
	p := threeCorner()
	tests := []struct {
		pt   geom.Point
		want geom.Point
		ok   bool
	}{
		{geom.Pt(5, 0), geom.Pt(0, 0), true},
		{geom.Pt(10, 5), geom.Pt(10, 0), true},
		{geom.Pt(0.5, 0), geom.Pt(0, 0), false},
	}
	for _, tt := range tests {
		h, err := FindInsertionAnchor(p, tt.pt, DefaultBandLow, DefaultBandHigh)
		if (err == nil) != tt.ok {
			t.Errorf("FindInsertionAnchor(%v) err = %v, want ok=%v", tt.pt, err, tt.ok)
			continue
		}
		if tt.ok && p.Point(h) != tt.want {
			t.Errorf("FindInsertionAnchor(%v) = %v, want %v", tt.pt, p.Point(h), tt.want)
		}
	}
}
