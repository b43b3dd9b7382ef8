package geom

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used for approximate point comparison.
const Epsilon = 1e-6

// Point is a position or a displacement vector in graph space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point       { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point       { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(s float64) Point     { return Point{p.X * s, p.Y * s} }
func (p Point) Dot(q Point) float64     { return p.X*q.X + p.Y*q.Y }
func (p Point) Cross(q Point) float64   { return p.X*q.Y - p.Y*q.X }
func (p Point) LenSq() float64          { return p.X*p.X + p.Y*p.Y }
func (p Point) Len() float64            { return math.Hypot(p.X, p.Y) }
func (p Point) DistSq(q Point) float64  { return p.Sub(q).LenSq() }
func (p Point) Dist(q Point) float64    { return p.Sub(q).Len() }
func (p Point) Perp() Point             { return Point{-p.Y, p.X} }
func (p Point) String() string          { return fmt.Sprintf("(%g,%g)", p.X, p.Y) }
func (p Point) Close(q Point) bool      { return p.DistSq(q) <= Epsilon*Epsilon }
func (p Point) Near(q Point, eps float64) bool { return p.DistSq(q) <= eps*eps }

// Normalize returns p scaled to unit length, or the zero vector if p is zero.
func (p Point) Normalize() Point {
	l := p.Len()
	if l < Epsilon {
		return Point{}
	}
	return p.Mul(1 / l)
}

// Lerp interpolates between a (t=0) and b (t=1).
func Lerp(a, b Point, t float64) Point {
	return Point{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// Angle returns the counter-clockwise angle in [0, 2π) swept from ray
// center->a to ray center->b.
func Angle(a, center, b Point) float64 {
	u, v := a.Sub(center), b.Sub(center)
	ang := math.Atan2(u.Cross(v), u.Dot(v))
	if ang < 0 {
		ang += 2 * math.Pi
	}
	return ang
}

// ProjectParam returns the unclamped parameter of p projected onto the line
// through a and b, where 0 is a and 1 is b. A degenerate segment yields 0.
func ProjectParam(p, a, b Point) float64 {
	d := b.Sub(a)
	l := d.LenSq()
	if l < Epsilon*Epsilon {
		return 0
	}
	return p.Sub(a).Dot(d) / l
}

// ClosestOnSegment returns the point of segment ab closest to p and its
// clamped parameter.
func ClosestOnSegment(p, a, b Point) (Point, float64) {
	t := math.Max(0, math.Min(1, ProjectParam(p, a, b)))
	return Lerp(a, b, t), t
}

// SegmentDistSq is the squared distance from p to segment ab.
func SegmentDistSq(p, a, b Point) float64 {
	q, _ := ClosestOnSegment(p, a, b)
	return p.DistSq(q)
}

// SegmentIntersect intersects segments ab and cd. It returns the intersection
// point and the parameter along ab.
func SegmentIntersect(a, b, c, d Point) (Point, float64, bool) {
	r, s := b.Sub(a), d.Sub(c)
	den := r.Cross(s)
	if math.Abs(den) < Epsilon*Epsilon {
		return Point{}, 0, false
	}
	ca := c.Sub(a)
	t := ca.Cross(s) / den
	u := ca.Cross(r) / den
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, 0, false
	}
	return Lerp(a, b, t), t, true
}
