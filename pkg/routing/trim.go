package routing

import (
	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/polyline"
	"github.com/matzehuels/graphedit/pkg/scene"
)

const bisectSteps = 40

// Trim clips c to the part outside src and tgt, then shortens it by the
// arrowhead lengths at either end. It returns the clipped curve and the
// arrowhead tips, or ok=false when nothing drawable is left.
func Trim(c *geom.Curve, src, tgt geom.Polygon, srcArrow, tgtArrow float64) (out *geom.Curve, srcTip, tgtTip *geom.Point, ok bool) {
	if c.Empty() {
		return nil, nil, nil, false
	}
	t0, t1 := 0.0, c.ParEnd()
	if len(src) > 2 && src.Contains(c.Start()) {
		if t0, ok = exit(c, src, true); !ok {
			return nil, nil, nil, false
		}
	}
	if len(tgt) > 2 && tgt.Contains(c.End()) {
		if t1, ok = exit(c, tgt, false); !ok {
			return nil, nil, nil, false
		}
	}
	if t1-t0 < geom.Epsilon {
		return nil, nil, nil, false
	}
	if tgtArrow > 0 {
		tip := c.At(t1)
		if t1, ok = back(c, t1, t0, tgtArrow); !ok {
			return nil, nil, nil, false
		}
		tgtTip = &tip
	}
	if srcArrow > 0 {
		tip := c.At(t0)
		if t0, ok = back(c, t0, t1, srcArrow); !ok {
			return nil, nil, nil, false
		}
		srcTip = &tip
	}
	out = c.Trim(t0, t1)
	return out, srcTip, tgtTip, !out.Empty()
}

// exit finds where c leaves poly, searching from the start when forward is
// set and from the end otherwise.
func exit(c *geom.Curve, poly geom.Polygon, forward bool) (float64, bool) {
	pts, params := c.Flatten()
	n := len(pts)
	for k := 1; k < n; k++ {
		i, prev := k, k-1
		if !forward {
			i, prev = n-1-k, n-k
		}
		if poly.Contains(pts[i]) {
			continue
		}
		in, out := params[prev], params[i]
		for s := 0; s < bisectSteps; s++ {
			mid := (in + out) / 2
			if poly.Contains(c.At(mid)) {
				in = mid
			} else {
				out = mid
			}
		}
		return out, true
	}
	return 0, false
}

// back moves from parameter from toward limit until the curve point is dist
// away from the point at from.
func back(c *geom.Curve, from, limit, dist float64) (float64, bool) {
	anchor := c.At(from)
	pts, params := c.Flatten()
	near, far := from, limit
	found := false
	if limit < from {
		for i := len(pts) - 1; i >= 0; i-- {
			if params[i] >= from {
				continue
			}
			if params[i] < limit {
				break
			}
			if pts[i].Dist(anchor) >= dist {
				far, found = params[i], true
				break
			}
			near = params[i]
		}
	} else {
		for i := range pts {
			if params[i] <= from {
				continue
			}
			if params[i] > limit {
				break
			}
			if pts[i].Dist(anchor) >= dist {
				far, found = params[i], true
				break
			}
			near = params[i]
		}
	}
	if !found && c.At(limit).Dist(anchor) >= dist {
		far, found = limit, true
	}
	if !found {
		return 0, false
	}
	for s := 0; s < bisectSteps; s++ {
		mid := (near + far) / 2
		if c.At(mid).Dist(anchor) < dist {
			near = mid
		} else {
			far = mid
		}
	}
	return far, true
}

// MinimalCurve synthesizes a small curve from a toward b so that an edge
// whose route could not be clipped stays visible.
func MinimalCurve(a, b geom.Point, size float64) *geom.Curve {
	dir := b.Sub(a).Normalize()
	if dir == (geom.Point{}) {
		dir = geom.Pt(1, 0)
	}
	end := a.Add(dir.Mul(size))
	n := dir.Perp().Mul(size / 2)
	return &geom.Curve{Segs: []geom.Segment{
		geom.Cubic(a, geom.Lerp(a, end, 1.0/3).Add(n), geom.Lerp(a, end, 2.0/3).Add(n), end),
	}}
}

func arrowLength(a *scene.Arrowhead, def float64) float64 {
	if a == nil {
		return 0
	}
	if a.Length > 0 {
		return a.Length
	}
	return def
}

// ApplyRoute installs r on e, clipping it against the end nodes. When
// clipping fails the edge gets a minimal curve and ApplyRoute reports false.
// Callers snapshot e first.
func ApplyRoute(s *scene.Scene, e *scene.Edge, r Route, opts Options) bool {
	return ApplyRouteBetween(e, r, s.Node(e.Source), s.Node(e.Target), opts)
}

// ApplyRouteBetween is ApplyRoute with explicit end nodes, used when an end
// is drawn at a collapsed cluster instead of its own node.
func ApplyRouteBetween(e *scene.Edge, r Route, src, tgt *scene.Node, opts Options) bool {
	e.Polyline = r.Polyline
	var sb, tb geom.Polygon
	if src != nil {
		sb = src.Boundary
	}
	if tgt != nil {
		tb = tgt.Boundary
	}
	sl, tl := arrowLength(e.SourceArrow, opts.ArrowheadLength), arrowLength(e.TargetArrow, opts.ArrowheadLength)
	curve, st, tt, ok := Trim(r.Curve, sb, tb, sl, tl)
	if !ok {
		a, b := geom.Point{}, geom.Point{}
		if src != nil {
			a = src.Center()
		}
		if tgt != nil {
			b = tgt.Center()
		}
		e.Curve = MinimalCurve(a, b, opts.MinCurveSize)
		if e.TargetArrow != nil {
			e.TargetArrow.Tip = e.Curve.End()
		}
		if e.SourceArrow != nil {
			e.SourceArrow.Tip = e.Curve.Start()
		}
		return false
	}
	e.Curve = curve
	setTip(e.SourceArrow, st)
	setTip(e.TargetArrow, tt)
	return true
}

func setTip(a *scene.Arrowhead, tip *geom.Point) {
	if a != nil && tip != nil {
		a.Tip = *tip
	}
}

// RebuildCurve regenerates e's curve from its corner sequence.
func RebuildCurve(s *scene.Scene, e *scene.Edge, opts Options) bool {
	if e.Polyline == nil {
		return false
	}
	return ApplyRoute(s, e, Route{Curve: e.Polyline.Curve(), Polyline: e.Polyline}, opts)
}

// PolylineFromCurve builds an editable corner sequence for an edge that has
// a curve but no corners: the source center, the curve's interior control
// points and the target center.
func PolylineFromCurve(s *scene.Scene, e *scene.Edge) *polyline.Polyline {
	src, tgt := s.Node(e.Source), s.Node(e.Target)
	pts := []geom.Point{src.Center()}
	if cp := e.Curve.ControlPoints(); len(cp) > 2 {
		pts = append(pts, cp[1:len(cp)-1]...)
	}
	pts = append(pts, tgt.Center())
	return polyline.FromPoints(pts)
}
