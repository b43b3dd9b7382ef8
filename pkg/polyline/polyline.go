package polyline

import (
	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/geom"
)

// Handle addresses a Site inside its Polyline.
type Handle int32

// Nil is the handle that addresses no Site.
const Nil Handle = -1

const (
	// DefaultFit is the fit coefficient given to new Sites.
	DefaultFit = 0.5

	// tangentCoefficient pulls Bezier control points toward the corner.
	tangentCoefficient = 1.0 / 3

	// degenerateLoop is the size of the loop drawn when the two ends coincide.
	degenerateLoop = 5.0
)

// Site is one corner of an edge route.
type Site struct {
	Point geom.Point

	// PrevFit and NextFit control how far along the adjacent segments the
	// corner's Bezier starts and ends, in [0, 1].
	PrevFit float64
	NextFit float64

	prev, next Handle
	linked     bool
}

// Polyline is the doubly linked Site sequence of one edge.
type Polyline struct {
	sites      []Site
	head, tail Handle
}

// FromPoints builds a Polyline through pts. The first and last points
// become the sentinels.
func FromPoints(pts []geom.Point) *Polyline {
	if len(pts) < 2 {
		errors.Invariant("polyline needs at least 2 points, got %d", len(pts))
	}
	p := &Polyline{sites: make([]Site, len(pts))}
	for i, pt := range pts {
		p.sites[i] = Site{Point: pt, PrevFit: DefaultFit, NextFit: DefaultFit, prev: Handle(i - 1), next: Handle(i + 1), linked: true}
	}
	p.sites[len(pts)-1].next = Nil
	p.head, p.tail = 0, Handle(len(pts)-1)
	return p
}

// Head returns the source sentinel.
func (p *Polyline) Head() Handle { return p.head }

// Tail returns the target sentinel.
func (p *Polyline) Tail() Handle { return p.tail }

// Next returns the Site after h, or Nil after the tail.
func (p *Polyline) Next(h Handle) Handle { return p.at(h).next }

// Prev returns the Site before h, or Nil before the head.
func (p *Polyline) Prev(h Handle) Handle { return p.at(h).prev }

// Site returns a copy of the Site at h.
func (p *Polyline) Site(h Handle) Site { return *p.at(h) }

// Point returns the position of h.
func (p *Polyline) Point(h Handle) geom.Point { return p.at(h).Point }

// SetPoint moves h.
func (p *Polyline) SetPoint(h Handle, pt geom.Point) { p.at(h).Point = pt }

// SetFit sets both fit coefficients of h.
func (p *Polyline) SetFit(h Handle, prev, next float64) {
	s := p.at(h)
	s.PrevFit, s.NextFit = prev, next
}

// IsSentinel reports whether h is the head or the tail.
func (p *Polyline) IsSentinel(h Handle) bool { return h == p.head || h == p.tail }

// Linked reports whether h is currently part of the sequence.
func (p *Polyline) Linked(h Handle) bool { return p.at(h).linked }

func (p *Polyline) at(h Handle) *Site {
	if h < 0 || int(h) >= len(p.sites) {
		errors.Invariant("site handle %d out of range", h)
	}
	return &p.sites[h]
}

// InsertAfter allocates a Site at pt between after and its successor and
// returns its handle.
func (p *Polyline) InsertAfter(after Handle, pt geom.Point) Handle {
	if after == p.tail {
		errors.Invariant("cannot insert after the tail sentinel")
	}
	h := Handle(len(p.sites))
	p.sites = append(p.sites, Site{Point: pt, PrevFit: DefaultFit, NextFit: DefaultFit, prev: Nil, next: Nil})
	p.Relink(h, after, p.at(after).next)
	return h
}

// Unlink removes h from the sequence and returns its former neighbours.
// The Site keeps its arena slot so it can be relinked.
func (p *Polyline) Unlink(h Handle) (prev, next Handle) {
	if p.IsSentinel(h) {
		errors.Invariant("cannot unlink sentinel site %d", h)
	}
	s := p.at(h)
	if !s.linked {
		errors.Invariant("site %d is not linked", h)
	}
	prev, next = s.prev, s.next
	p.at(prev).next = next
	p.at(next).prev = prev
	s.prev, s.next, s.linked = Nil, Nil, false
	return prev, next
}

// Relink puts an unlinked h back between the adjacent Sites prev and next.
func (p *Polyline) Relink(h, prev, next Handle) {
	s := p.at(h)
	if s.linked {
		errors.Invariant("site %d is already linked", h)
	}
	if p.at(prev).next != next || p.at(next).prev != prev {
		errors.Invariant("sites %d and %d are not adjacent", prev, next)
	}
	s.prev, s.next, s.linked = prev, next, true
	p.at(prev).next = h
	p.at(next).prev = h
}

// Handles returns the linked Sites in order, sentinels included.
func (p *Polyline) Handles() []Handle {
	var hs []Handle
	for h := p.head; h != Nil; h = p.at(h).next {
		hs = append(hs, h)
	}
	return hs
}

// Len returns the number of linked Sites.
func (p *Polyline) Len() int { return len(p.Handles()) }

// Points returns the linked Site positions in order.
func (p *Polyline) Points() []geom.Point {
	hs := p.Handles()
	pts := make([]geom.Point, len(hs))
	for i, h := range hs {
		pts[i] = p.at(h).Point
	}
	return pts
}

// Clone returns an independent copy sharing no storage with p.
func (p *Polyline) Clone() *Polyline {
	if p == nil {
		return nil
	}
	return &Polyline{sites: append([]Site(nil), p.sites...), head: p.head, tail: p.tail}
}

// Translate moves every Site, linked or not, by d.
func (p *Polyline) Translate(d geom.Point) {
	for i := range p.sites {
		p.sites[i].Point = p.sites[i].Point.Add(d)
	}
}

// Equal reports whether p and o describe the same linked sequence: same
// points and fit coefficients in the same order.
func (p *Polyline) Equal(o *Polyline) bool {
	if p == nil || o == nil {
		return p == o
	}
	a, b := p.Handles(), o.Handles()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := p.at(a[i]), o.at(b[i])
		if !x.Point.Close(y.Point) || x.PrevFit != y.PrevFit || x.NextFit != y.NextFit {
			return false
		}
	}
	return true
}

// Curve smooths the sequence into a drawable curve.
func (p *Polyline) Curve() *geom.Curve {
	c := &geom.Curve{}
	a := p.head
	for b := p.Next(a); b != p.tail; b = p.Next(b) {
		seg := p.cornerSegment(b)
		if c.Empty() {
			if !p.Point(a).Close(seg.Start()) {
				c.Add(geom.Line(p.Point(a), seg.Start()))
			}
		} else if !c.End().Close(seg.Start()) {
			c.ContinueWithLine(seg.Start())
		}
		c.Add(seg)
		a = b
	}

	end := p.Point(p.tail)
	switch {
	case !c.Empty():
		if !c.End().Close(end) {
			c.ContinueWithLine(end)
		}
	case !p.Point(a).Close(end):
		c.Add(geom.Line(p.Point(a), end))
	default:
		s, w := p.Point(a), degenerateLoop
		c.Add(geom.Cubic(s, s.Add(geom.Pt(w, w)), s.Add(geom.Pt(-w, w)), end))
	}
	return c
}

func (p *Polyline) cornerSegment(b Handle) geom.Segment {
	site := p.at(b)
	a, c := p.Point(site.prev), p.Point(site.next)
	s := geom.Lerp(site.Point, a, site.PrevFit)
	e := geom.Lerp(site.Point, c, site.NextFit)
	u := geom.Lerp(site.Point, s, tangentCoefficient)
	v := geom.Lerp(site.Point, e, tangentCoefficient)
	return geom.Cubic(s, u, v, e)
}
