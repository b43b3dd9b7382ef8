package interact

import (
	"math"

	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/scene"
)

// ResolvePort anchors an edge end at pt on node n. Within tol of the
// boundary it returns a boundary port, snapped to the nearer vertex of the
// boundary segment when that vertex is within tol too. Strictly inside, it
// returns a floating port at pt. Otherwise the port is invalid.
func ResolvePort(n *scene.Node, pt geom.Point, tol float64) routing.Port {
	if n == nil || len(n.Boundary) == 0 {
		return routing.Port{}
	}
	t, d := n.Boundary.ClosestParameter(pt)
	if d <= tol {
		lo := math.Floor(t)
		hi := lo + 1
		snap := lo
		if t-lo > hi-t {
			snap = hi
		}
		if n.Boundary.At(snap).Dist(pt) <= tol {
			t = math.Mod(snap, float64(len(n.Boundary)))
		}
		return routing.Port{Kind: routing.PortBoundary, Node: n.ID, Param: t, Point: n.Boundary.At(t)}
	}
	if n.Boundary.Contains(pt) {
		return routing.Port{Kind: routing.PortFloating, Node: n.ID, Point: pt}
	}
	return routing.Port{}
}
