package geom

import "math"

// Polygon is a closed boundary given by its vertices in order. The closing
// edge from the last vertex back to the first is implicit.
type Polygon []Point

// RectPolygon returns the boundary of a w×h box centered at c.
func RectPolygon(c Point, w, h float64) Polygon {
	r := RectAround(c, w, h).Corners()
	return Polygon(r[:])
}

// EllipsePolygon approximates an ellipse of width w and height h with n
// vertices.
func EllipsePolygon(c Point, w, h float64, n int) Polygon {
	if n < 3 {
		n = 3
	}
	p := make(Polygon, n)
	for i := range p {
		a := 2 * math.Pi * float64(i) / float64(n)
		p[i] = Point{c.X + w/2*math.Cos(a), c.Y + h/2*math.Sin(a)}
	}
	return p
}

// Clone returns a copy of p.
func (p Polygon) Clone() Polygon { return append(Polygon(nil), p...) }

// Bounds returns the box enclosing p.
func (p Polygon) Bounds() Rect { return RectFromPoints(p...) }

// Center returns the center of the bounding box.
func (p Polygon) Center() Point { return p.Bounds().Center() }

// Translate shifts every vertex in place.
func (p Polygon) Translate(d Point) {
	for i := range p {
		p[i] = p[i].Add(d)
	}
}

// Edge returns the i-th edge, wrapping at the end.
func (p Polygon) Edge(i int) (Point, Point) {
	return p[i], p[(i+1)%len(p)]
}

// Contains reports whether q lies strictly inside p (even-odd rule).
func (p Polygon) Contains(q Point) bool {
	in := false
	for i := range p {
		a, b := p.Edge(i)
		if (a.Y > q.Y) != (b.Y > q.Y) {
			x := a.X + (q.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if q.X < x {
				in = !in
			}
		}
	}
	return in
}

// ClosestParameter returns the boundary parameter closest to q. Parameter
// i+t addresses edge i at local t.
func (p Polygon) ClosestParameter(q Point) (float64, float64) {
	best, bestD := 0.0, math.Inf(1)
	for i := range p {
		a, b := p.Edge(i)
		c, t := ClosestOnSegment(q, a, b)
		if d := q.DistSq(c); d < bestD {
			best, bestD = float64(i)+t, d
		}
	}
	return best, math.Sqrt(bestD)
}

// At returns the boundary point at parameter t.
func (p Polygon) At(t float64) Point {
	n := float64(len(p))
	t = math.Mod(t, n)
	if t < 0 {
		t += n
	}
	i := int(math.Floor(t))
	a, b := p.Edge(i)
	return Lerp(a, b, t-float64(i))
}

// IntersectSegment returns the intersection of segment ab with the boundary
// closest to a.
func (p Polygon) IntersectSegment(a, b Point) (Point, bool) {
	var (
		best  Point
		bestT = math.Inf(1)
		found bool
	)
	for i := range p {
		c, d := p.Edge(i)
		if x, t, ok := SegmentIntersect(a, b, c, d); ok && t < bestT {
			best, bestT, found = x, t, true
		}
	}
	return best, found
}

// Curve returns the closed boundary as a curve of line segments.
func (p Polygon) Curve() *Curve {
	pts := append(p.Clone(), p[0])
	return NewPolylineCurve(pts...)
}

// Equal compares polygons vertex by vertex.
func (p Polygon) Equal(o Polygon) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if !p[i].Close(o[i]) {
			return false
		}
	}
	return true
}

// Scale scales p about its center in place.
func (p Polygon) Scale(sx, sy float64) {
	c := p.Center()
	for i := range p {
		d := p[i].Sub(c)
		p[i] = Point{c.X + d.X*sx, c.Y + d.Y*sy}
	}
}
