package editor

import (
	"math"
	"sort"

	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/scene"
)

// FanOutOffsets spreads parallel edges of node apart. Edges are taken as
// drawn: an end hidden inside a collapsed cluster counts as the cluster, so
// node may name a member of one and edges into different members of the
// same collapsed cluster are parallel. Incident edges are grouped by their
// drawn other endpoint; within each group of two or more the edges are
// ordered by the angle of their curve midpoints around the node and given
// perpendicular offsets symmetric about zero. Consecutive offsets differ by
// separation plus the label width of the edge nearer the middle.
//
// Offsets are measured to the left of the direction from node toward the
// other endpoint. Edges outside any group are absent from the result.
func FanOutOffsets(s *scene.Scene, node scene.ID, separation float64) map[scene.ID]float64 {
	n := s.Representative(node)
	if n == nil {
		return nil
	}
	groups := make(map[scene.ID][]*scene.Edge)
	var order []scene.ID
	for _, e := range s.Edges() {
		if e.Hidden {
			continue
		}
		src, tgt := s.Representative(e.Source), s.Representative(e.Target)
		if src == nil || tgt == nil {
			continue
		}
		var other scene.ID
		switch n.ID {
		case src.ID:
			other = tgt.ID
		case tgt.ID:
			other = src.ID
		default:
			continue
		}
		if _, ok := groups[other]; !ok {
			order = append(order, other)
		}
		groups[other] = append(groups[other], e)
	}

	out := make(map[scene.ID]float64)
	center := n.Center()
	for _, other := range order {
		g := groups[other]
		if len(g) < 2 {
			continue
		}
		sortByAngle(s, g, center)
		for i, off := range spread(s, g, separation) {
			out[g[i].ID] = off
		}
	}
	return out
}

func sortByAngle(s *scene.Scene, g []*scene.Edge, center geom.Point) {
	mids := make(map[scene.ID]geom.Point, len(g))
	for _, e := range g {
		mids[e.ID] = edgeMid(s, e)
	}
	ref := mids[g[0].ID]
	angle := func(e *scene.Edge) float64 {
		a := geom.Angle(ref, center, mids[e.ID])
		if a > math.Pi {
			a -= 2 * math.Pi
		}
		return a
	}
	sort.SliceStable(g, func(i, j int) bool { return angle(g[i]) < angle(g[j]) })
}

// spread assigns offsets to an angle-ordered group.
func spread(s *scene.Scene, g []*scene.Edge, sep float64) []float64 {
	n := len(g)
	out := make([]float64, n)
	lw := func(i int) float64 { return labelWidth(s, g[i]) }
	k := n / 2
	if n%2 == 0 {
		start := (sep + math.Min(lw(k-1), lw(k))) / 2
		off := -start
		for j := k - 1; j >= 0; j-- {
			out[j] = off
			off -= sep + lw(j)
		}
		off = start
		for j := k; j < n; j++ {
			out[j] = off
			off += sep + lw(j)
		}
		return out
	}
	off := 0.0
	for j := k; j >= 0; j-- {
		out[j] = off
		off -= sep + lw(j)
	}
	off = sep + lw(k)
	for j := k + 1; j < n; j++ {
		out[j] = off
		off += sep + lw(j)
	}
	return out
}

func labelWidth(s *scene.Scene, e *scene.Edge) float64 {
	if e.Label == "" {
		return 0
	}
	if l := s.Label(e.Label); l != nil {
		return l.Width
	}
	return 0
}

func edgeMid(s *scene.Scene, e *scene.Edge) geom.Point {
	if !e.Curve.Empty() {
		return e.Curve.Midpoint()
	}
	return geom.Lerp(s.Representative(e.Source).Center(), s.Representative(e.Target).Center(), 0.5)
}
