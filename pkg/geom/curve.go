package geom

import "math"

// SegmentKind distinguishes the two segment shapes a Curve is built from.
type SegmentKind uint8

const (
	SegmentLine SegmentKind = iota
	SegmentCubic
)

// cubicSamples is the number of chords a cubic is flattened into.
const cubicSamples = 16

// Segment is one piece of a Curve. Lines use P[0] and P[1]; cubics use all
// four control points.
type Segment struct {
	Kind SegmentKind
	P    [4]Point
}

// Line returns a straight segment from a to b.
func Line(a, b Point) Segment {
	return Segment{Kind: SegmentLine, P: [4]Point{a, b}}
}

// Cubic returns a cubic Bezier segment.
func Cubic(a, b, c, d Point) Segment {
	return Segment{Kind: SegmentCubic, P: [4]Point{a, b, c, d}}
}

// Start returns the first point of the segment.
func (s Segment) Start() Point { return s.P[0] }

// End returns the last point of the segment.
func (s Segment) End() Point {
	if s.Kind == SegmentLine {
		return s.P[1]
	}
	return s.P[3]
}

// At evaluates the segment at local parameter t in [0, 1].
func (s Segment) At(t float64) Point {
	if s.Kind == SegmentLine {
		return Lerp(s.P[0], s.P[1], t)
	}
	u := 1 - t
	a := s.P[0].Mul(u * u * u)
	b := s.P[1].Mul(3 * u * u * t)
	c := s.P[2].Mul(3 * u * t * t)
	d := s.P[3].Mul(t * t * t)
	return a.Add(b).Add(c).Add(d)
}

// Bounds returns the box of the control hull, which encloses the segment.
func (s Segment) Bounds() Rect {
	if s.Kind == SegmentLine {
		return RectFromPoints(s.P[0], s.P[1])
	}
	return RectFromPoints(s.P[:]...)
}

func (s Segment) translate(d Point) Segment {
	for i := range s.P {
		s.P[i] = s.P[i].Add(d)
	}
	return s
}

// split returns the sub-segment covering local parameters [t0, t1].
func (s Segment) split(t0, t1 float64) Segment {
	if s.Kind == SegmentLine {
		return Line(s.At(t0), s.At(t1))
	}
	_, right := s.subdivide(t0)
	if t0 >= 1 {
		return Cubic(s.P[3], s.P[3], s.P[3], s.P[3])
	}
	left, _ := right.subdivide((t1 - t0) / (1 - t0))
	return left
}

// subdivide applies de Casteljau at t.
func (s Segment) subdivide(t float64) (Segment, Segment) {
	p01 := Lerp(s.P[0], s.P[1], t)
	p12 := Lerp(s.P[1], s.P[2], t)
	p23 := Lerp(s.P[2], s.P[3], t)
	p012 := Lerp(p01, p12, t)
	p123 := Lerp(p12, p23, t)
	m := Lerp(p012, p123, t)
	return Cubic(s.P[0], p01, p012, m), Cubic(m, p123, p23, s.P[3])
}

// Curve is a connected sequence of segments. The zero Curve has no segments.
type Curve struct {
	Segs []Segment
}

// NewPolylineCurve connects pts with line segments.
func NewPolylineCurve(pts ...Point) *Curve {
	c := &Curve{}
	for i := 1; i < len(pts); i++ {
		c.Segs = append(c.Segs, Line(pts[i-1], pts[i]))
	}
	return c
}

// Empty reports whether c has no segments.
func (c *Curve) Empty() bool { return c == nil || len(c.Segs) == 0 }

// ParEnd is the largest valid parameter.
func (c *Curve) ParEnd() float64 { return float64(len(c.Segs)) }

// Start returns the first point of c.
func (c *Curve) Start() Point { return c.Segs[0].Start() }

// End returns the last point of c.
func (c *Curve) End() Point { return c.Segs[len(c.Segs)-1].End() }

// Add appends s, returning c for chaining.
func (c *Curve) Add(s Segment) *Curve {
	c.Segs = append(c.Segs, s)
	return c
}

// ContinueWithLine appends a line from the current end to p.
func (c *Curve) ContinueWithLine(p Point) *Curve {
	return c.Add(Line(c.End(), p))
}

func (c *Curve) locate(t float64) (int, float64) {
	n := len(c.Segs)
	if t <= 0 {
		return 0, 0
	}
	if t >= float64(n) {
		return n - 1, 1
	}
	i := int(math.Floor(t))
	return i, t - float64(i)
}

// At evaluates c at global parameter t.
func (c *Curve) At(t float64) Point {
	i, lt := c.locate(t)
	return c.Segs[i].At(lt)
}

// Clone returns a deep copy. Cloning nil yields nil.
func (c *Curve) Clone() *Curve {
	if c == nil {
		return nil
	}
	return &Curve{Segs: append([]Segment(nil), c.Segs...)}
}

// Translate shifts every segment of c by d in place.
func (c *Curve) Translate(d Point) {
	for i := range c.Segs {
		c.Segs[i] = c.Segs[i].translate(d)
	}
}

// Bounds returns the box enclosing c.
func (c *Curve) Bounds() Rect {
	r := EmptyRect()
	if c == nil {
		return r
	}
	for _, s := range c.Segs {
		r = r.Union(s.Bounds())
	}
	return r
}

// Equal compares curves segment by segment with the package tolerance.
func (c *Curve) Equal(o *Curve) bool {
	if c.Empty() || o.Empty() {
		return c.Empty() == o.Empty()
	}
	if len(c.Segs) != len(o.Segs) {
		return false
	}
	for i := range c.Segs {
		a, b := c.Segs[i], o.Segs[i]
		if a.Kind != b.Kind {
			return false
		}
		for j := range a.P {
			if !a.P[j].Close(b.P[j]) {
				return false
			}
		}
	}
	return true
}

// Flatten approximates c as a polyline. Each returned point carries its
// global curve parameter in the parallel params slice.
func (c *Curve) Flatten() (pts []Point, params []float64) {
	if c.Empty() {
		return nil, nil
	}
	pts = append(pts, c.Start())
	params = append(params, 0)
	for i, s := range c.Segs {
		n := 1
		if s.Kind == SegmentCubic {
			n = cubicSamples
		}
		for k := 1; k <= n; k++ {
			t := float64(k) / float64(n)
			pts = append(pts, s.At(t))
			params = append(params, float64(i)+t)
		}
	}
	return pts, params
}

// ClosestParameter returns the global parameter of the point of c closest to p.
func (c *Curve) ClosestParameter(p Point) float64 {
	pts, params := c.Flatten()
	best, bestD := 0.0, math.Inf(1)
	for i := 1; i < len(pts); i++ {
		q, t := ClosestOnSegment(p, pts[i-1], pts[i])
		if d := p.DistSq(q); d < bestD {
			bestD = d
			best = params[i-1] + t*(params[i]-params[i-1])
		}
	}
	return best
}

// ClosestPoint returns the point of c closest to p.
func (c *Curve) ClosestPoint(p Point) Point {
	return c.At(c.ClosestParameter(p))
}

// Length approximates the arc length of c.
func (c *Curve) Length() float64 {
	pts, _ := c.Flatten()
	l := 0.0
	for i := 1; i < len(pts); i++ {
		l += pts[i].Dist(pts[i-1])
	}
	return l
}

// Trim returns the part of c between global parameters t0 and t1, or nil if
// the range is empty.
func (c *Curve) Trim(t0, t1 float64) *Curve {
	if c.Empty() || t1-t0 < Epsilon {
		return nil
	}
	i0, l0 := c.locate(t0)
	i1, l1 := c.locate(t1)
	out := &Curve{}
	for i := i0; i <= i1; i++ {
		a, b := 0.0, 1.0
		if i == i0 {
			a = l0
		}
		if i == i1 {
			b = l1
		}
		if b-a < Epsilon {
			continue
		}
		out.Segs = append(out.Segs, c.Segs[i].split(a, b))
	}
	if out.Empty() {
		return nil
	}
	return out
}

// Midpoint returns the point at half the parameter range.
func (c *Curve) Midpoint() Point {
	return c.At(c.ParEnd() / 2)
}

// ControlPoints returns the segment joints and interior cubic control points,
// start and end included.
func (c *Curve) ControlPoints() []Point {
	if c.Empty() {
		return nil
	}
	pts := []Point{c.Start()}
	for _, s := range c.Segs {
		if s.Kind == SegmentCubic {
			pts = append(pts, s.P[1], s.P[2])
		}
		pts = append(pts, s.End())
	}
	return pts
}
