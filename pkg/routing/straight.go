package routing

import (
	"context"
	"math"

	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/polyline"
	"github.com/matzehuels/graphedit/pkg/scene"
)

// StraightRouter routes every edge as a straight line (or an L shape in
// rectilinear mode) between node centers. It is also the fallback label
// placer.
type StraightRouter struct {
	Opts Options
}

// NewStraightRouter creates a StraightRouter.
func NewStraightRouter(opts Options) *StraightRouter {
	return &StraightRouter{Opts: opts}
}

var (
	_ Router      = (*StraightRouter)(nil)
	_ LabelPlacer = (*StraightRouter)(nil)
)

// StraightRoute returns the straight route of e, bent through a midpoint
// displaced perpendicular to the line by offset. Self-edges become a loop
// above the node whose height grows with offset.
func StraightRoute(s *scene.Scene, e *scene.Edge, offset, loopSize float64) Route {
	return StraightBetween(s.Node(e.Source), s.Node(e.Target), offset, loopSize)
}

// StraightBetween is StraightRoute between explicit end nodes. Identical
// ends produce a loop.
func StraightBetween(src, tgt *scene.Node, offset, loopSize float64) Route {
	a, b := src.Center(), tgt.Center()
	var pl *polyline.Polyline
	switch {
	case src == tgt:
		w, h := src.Width(), src.Height()
		top := a.Y + h/2 + loopSize + math.Abs(offset)
		pl = polyline.FromPoints([]geom.Point{a, geom.Pt(a.X-w/4, top), geom.Pt(a.X+w/4, top), a})
	case offset == 0 || a.Close(b):
		pl = polyline.FromPoints([]geom.Point{a, b})
	default:
		mid := geom.Lerp(a, b, 0.5).Add(b.Sub(a).Perp().Normalize().Mul(offset))
		pl = polyline.FromPoints([]geom.Point{a, mid, b})
	}
	return Route{Curve: pl.Curve(), Polyline: pl}
}

// RectilinearRoute returns an axis-parallel route from a to b with at most
// one sharp corner.
func RectilinearRoute(a, b geom.Point) Route {
	if math.Abs(a.X-b.X) < geom.Epsilon || math.Abs(a.Y-b.Y) < geom.Epsilon {
		pl := polyline.FromPoints([]geom.Point{a, b})
		return Route{Curve: pl.Curve(), Polyline: pl}
	}
	pl := polyline.FromPoints([]geom.Point{a, geom.Pt(b.X, a.Y), b})
	pl.SetFit(pl.Next(pl.Head()), 0, 0)
	return Route{Curve: pl.Curve(), Polyline: pl}
}

func edgeIDs(s *scene.Scene, ids []scene.ID) []scene.ID {
	if len(ids) > 0 {
		return ids
	}
	for _, e := range s.Edges() {
		if !e.Hidden {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// RouteAll routes every requested edge independently.
func (r *StraightRouter) RouteAll(ctx context.Context, s *scene.Scene, ids []scene.ID, mode Mode) (map[scene.ID]Route, error) {
	out := make(map[scene.ID]Route)
	for _, id := range edgeIDs(s, ids) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e := s.Edge(id)
		if e == nil {
			continue
		}
		if mode == ModeRectilinear && !e.IsSelf() {
			out[id] = RectilinearRoute(s.Node(e.Source).Center(), s.Node(e.Target).Center())
			continue
		}
		out[id] = StraightRoute(s, e, 0, r.Opts.SelfLoopSize)
	}
	return out, nil
}

// RouteToPoint draws a line from the source port to target.
func (r *StraightRouter) RouteToPoint(ctx context.Context, s *scene.Scene, source Port, target geom.Point) (Route, error) {
	if err := ctx.Err(); err != nil {
		return Route{}, err
	}
	pl := polyline.FromPoints([]geom.Point{PortPoint(s, source), target})
	return Route{Curve: pl.Curve(), Polyline: pl}, nil
}

// RouteToPort draws a line between two ports.
func (r *StraightRouter) RouteToPort(ctx context.Context, s *scene.Scene, source, target Port) (Route, error) {
	return r.RouteToPoint(ctx, s, source, PortPoint(s, target))
}

// PlaceLabels puts each label beside the midpoint of its edge.
func (r *StraightRouter) PlaceLabels(ctx context.Context, s *scene.Scene, ids []scene.ID) (map[scene.ID]geom.Point, error) {
	out := make(map[scene.ID]geom.Point)
	for _, id := range edgeIDs(s, ids) {
		e := s.Edge(id)
		if e == nil || e.Label == "" || e.Curve.Empty() {
			continue
		}
		l := s.Label(e.Label)
		if l == nil {
			continue
		}
		out[l.ID] = LabelBeside(e.Curve, l.Width, l.Height)
	}
	return out, ctx.Err()
}

// LabelBeside returns a label center next to the midpoint of c, offset
// perpendicular to the chord so a w×h box clears the curve.
func LabelBeside(c *geom.Curve, w, h float64) geom.Point {
	mid := c.Midpoint()
	n := c.End().Sub(c.Start()).Perp().Normalize()
	if n == (geom.Point{}) {
		n = geom.Pt(0, 1)
	}
	if n.Y < 0 {
		n = n.Mul(-1)
	}
	return mid.Add(n.Mul(math.Max(w, h)/2 + 1))
}
