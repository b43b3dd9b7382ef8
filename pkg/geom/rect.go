package geom

import "math"

// Rect is an axis-aligned box. Min is the left-bottom corner, Max the
// right-top corner. A Rect with Min > Max on either axis is empty.
type Rect struct {
	Min, Max Point
}

// EmptyRect returns the empty box, the identity element of Union.
func EmptyRect() Rect {
	inf := math.Inf(1)
	return Rect{Min: Point{inf, inf}, Max: Point{-inf, -inf}}
}

// RectFromPoints returns the smallest box containing pts.
func RectFromPoints(pts ...Point) Rect {
	r := EmptyRect()
	for _, p := range pts {
		r = r.AddPoint(p)
	}
	return r
}

// RectAround returns a w×h box centered at c.
func RectAround(c Point, w, h float64) Rect {
	return Rect{Min: Point{c.X - w/2, c.Y - h/2}, Max: Point{c.X + w/2, c.Y + h/2}}
}

func (r Rect) IsEmpty() bool     { return r.Min.X > r.Max.X || r.Min.Y > r.Max.Y }
func (r Rect) Width() float64    { return r.Max.X - r.Min.X }
func (r Rect) Height() float64   { return r.Max.Y - r.Min.Y }
func (r Rect) Center() Point     { return Lerp(r.Min, r.Max, 0.5) }
func (r Rect) LeftTop() Point    { return Point{r.Min.X, r.Max.Y} }
func (r Rect) RightBottom() Point { return Point{r.Max.X, r.Min.Y} }

// Area returns zero for an empty box.
func (r Rect) Area() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.Width() * r.Height()
}

// Contains reports whether p lies in r, boundary included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// ContainsRect reports whether o lies entirely in r.
func (r Rect) ContainsRect(o Rect) bool {
	if o.IsEmpty() {
		return true
	}
	return r.Contains(o.Min) && r.Contains(o.Max)
}

// Intersects reports whether r and o share at least one point.
func (r Rect) Intersects(o Rect) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return r.Min.X <= o.Max.X && o.Min.X <= r.Max.X && r.Min.Y <= o.Max.Y && o.Min.Y <= r.Max.Y
}

// Union returns the smallest box containing r and o.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return Rect{
		Min: Point{math.Min(r.Min.X, o.Min.X), math.Min(r.Min.Y, o.Min.Y)},
		Max: Point{math.Max(r.Max.X, o.Max.X), math.Max(r.Max.Y, o.Max.Y)},
	}
}

// AddPoint grows r to include p.
func (r Rect) AddPoint(p Point) Rect {
	return r.Union(Rect{Min: p, Max: p})
}

// Pad grows r by d on every side.
func (r Rect) Pad(d float64) Rect {
	if r.IsEmpty() {
		return r
	}
	return Rect{Min: Point{r.Min.X - d, r.Min.Y - d}, Max: Point{r.Max.X + d, r.Max.Y + d}}
}

// Translate shifts r by d.
func (r Rect) Translate(d Point) Rect {
	if r.IsEmpty() {
		return r
	}
	return Rect{Min: r.Min.Add(d), Max: r.Max.Add(d)}
}

// Equal compares boxes with the package tolerance.
func (r Rect) Equal(o Rect) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return r.IsEmpty() == o.IsEmpty()
	}
	return r.Min.Close(o.Min) && r.Max.Close(o.Max)
}

// Corners returns the four corners counter-clockwise from Min.
func (r Rect) Corners() [4]Point {
	return [4]Point{r.Min, r.RightBottom(), r.Max, r.LeftTop()}
}
