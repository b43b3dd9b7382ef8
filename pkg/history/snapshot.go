package history

import (
	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/polyline"
	"github.com/matzehuels/graphedit/pkg/scene"
)

// Snapshot is the restorable state of one entity.
type Snapshot interface {
	// Restore writes the captured state back into s.
	Restore(s *scene.Scene)
}

// NodeSnapshot restores a plain node.
type NodeSnapshot struct {
	ID       scene.ID
	Boundary geom.Polygon
	Hidden   bool
}

func (n NodeSnapshot) Restore(s *scene.Scene) {
	if node := s.Node(n.ID); node != nil {
		node.Boundary = n.Boundary.Clone()
		node.Hidden = n.Hidden
	}
}

// ClusterSnapshot restores a cluster's own geometry and collapse state.
// Its children are snapshotted separately.
type ClusterSnapshot struct {
	ID        scene.ID
	Boundary  geom.Polygon
	Hidden    bool
	Collapsed bool
}

func (c ClusterSnapshot) Restore(s *scene.Scene) {
	if cl := s.Cluster(c.ID); cl != nil {
		cl.Boundary = c.Boundary.Clone()
		cl.Hidden = c.Hidden
		cl.Collapsed = c.Collapsed
	}
}

// EdgeSnapshot restores an edge's route.
type EdgeSnapshot struct {
	ID          scene.ID
	Curve       *geom.Curve
	Polyline    *polyline.Polyline
	SourceArrow *scene.Arrowhead
	TargetArrow *scene.Arrowhead
	Hidden      bool
}

func (e EdgeSnapshot) Restore(s *scene.Scene) {
	if edge := s.Edge(e.ID); edge != nil {
		edge.Curve = e.Curve.Clone()
		edge.Polyline = e.Polyline.Clone()
		edge.SourceArrow = cloneArrow(e.SourceArrow)
		edge.TargetArrow = cloneArrow(e.TargetArrow)
		edge.Hidden = e.Hidden
	}
}

// LabelSnapshot restores a label's position.
type LabelSnapshot struct {
	ID          scene.ID
	Center      geom.Point
	AttachStart geom.Point
	AttachEnd   geom.Point
}

func (l LabelSnapshot) Restore(s *scene.Scene) {
	if lab := s.Label(l.ID); lab != nil {
		lab.Center, lab.AttachStart, lab.AttachEnd = l.Center, l.AttachStart, l.AttachEnd
	}
}

// Replay restores by running code. Undo must exactly reverse Redo.
type Replay struct {
	Undo func(s *scene.Scene)
	Redo func(s *scene.Scene)
}

// Restore runs Undo.
func (r Replay) Restore(s *scene.Scene) { r.Undo(s) }

func cloneArrow(a *scene.Arrowhead) *scene.Arrowhead {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// CaptureSnapshot records the current state of e. An entity kind without a
// snapshot form is an invariant violation.
func CaptureSnapshot(e scene.Entity) Snapshot {
	switch x := e.(type) {
	case *scene.Cluster:
		return ClusterSnapshot{ID: x.ID, Boundary: x.Boundary.Clone(), Hidden: x.Hidden, Collapsed: x.Collapsed}
	case *scene.Node:
		return NodeSnapshot{ID: x.ID, Boundary: x.Boundary.Clone(), Hidden: x.Hidden}
	case *scene.Edge:
		return EdgeSnapshot{
			ID:          x.ID,
			Curve:       x.Curve.Clone(),
			Polyline:    x.Polyline.Clone(),
			SourceArrow: cloneArrow(x.SourceArrow),
			TargetArrow: cloneArrow(x.TargetArrow),
			Hidden:      x.Hidden,
		}
	case *scene.Label:
		return LabelSnapshot{ID: x.ID, Center: x.Center, AttachStart: x.AttachStart, AttachEnd: x.AttachEnd}
	}
	errors.Invariant("no restore snapshot for entity type %T", e)
	return nil
}
