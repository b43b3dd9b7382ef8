package polyline

import (
	"errors"

	"github.com/matzehuels/graphedit/pkg/geom"
)

// ErrNoCorner is returned when no interior corner or insertion anchor
// matches a point.
var ErrNoCorner = errors.New("no corner near point")

const (
	// DefaultBandLow and DefaultBandHigh bound the projection parameter at
	// which a new corner may be inserted on a segment.
	DefaultBandLow  = 0.1
	DefaultBandHigh = 0.9
)

// FindCornerNear returns the first interior Site within tolerance of pt.
func FindCornerNear(p *Polyline, pt geom.Point, tolerance float64) (Handle, error) {
	tol := tolerance * tolerance
	for h := p.Next(p.Head()); h != p.Tail(); h = p.Next(h) {
		if p.Point(h).DistSq(pt) <= tol {
			return h, nil
		}
	}
	return Nil, ErrNoCorner
}

// FindInsertionAnchor returns the earlier Site of the first segment onto
// which pt projects strictly inside (low, high).
func FindInsertionAnchor(p *Polyline, pt geom.Point, low, high float64) (Handle, error) {
	for a := p.Head(); a != p.Tail(); a = p.Next(a) {
		b := p.Next(a)
		t := geom.ProjectParam(pt, p.Point(a), p.Point(b))
		if t > low && t < high {
			return a, nil
		}
	}
	return Nil, ErrNoCorner
}
