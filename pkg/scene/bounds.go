package scene

import "github.com/matzehuels/graphedit/pkg/geom"

// EntityBox returns the entity's box, extended by its label for edges.
func (s *Scene) EntityBox(e Entity) geom.Rect {
	box := e.BoundingBox()
	if edge, ok := e.(*Edge); ok && edge.Label != "" {
		if l := s.labels[edge.Label]; l != nil {
			box = box.Union(l.BoundingBox())
		}
	}
	return box
}

// UpdateBoundingBox grows the scene box to cover e plus the margin and
// reports whether the box changed.
func (s *Scene) UpdateBoundingBox(e Entity) bool {
	box := s.EntityBox(e)
	if box.IsEmpty() {
		return false
	}
	old := s.Box
	s.Box = s.Box.Union(box.Pad(s.Margin))
	return !old.Equal(s.Box)
}

// FitBoundingBox resets the scene box to the visible geometry plus margin.
func (s *Scene) FitBoundingBox() {
	box := geom.EmptyRect()
	for _, e := range s.VisibleEntities() {
		box = box.Union(s.EntityBox(e))
	}
	s.Box = box.Pad(s.Margin)
}

// RecomputeClusterBounds resets an expanded cluster's boundary to the box of
// its visible children padded by ClusterMargin. It reports whether the
// boundary was changed.
func (s *Scene) RecomputeClusterBounds(c *Cluster) bool {
	if c.Collapsed {
		return false
	}
	box := geom.EmptyRect()
	for _, id := range c.Children {
		if ch := s.NodeEntity(id); ch != nil && s.Visible(ch) {
			box = box.Union(ch.BoundingBox())
		}
	}
	if box.IsEmpty() {
		return false
	}
	box = box.Pad(s.ClusterMargin)
	corners := box.Corners()
	c.Boundary = geom.Polygon(corners[:]).Clone()
	return true
}

// DeepTranslate moves a cluster and every node and cluster inside it by d.
// Edges are left untouched.
func (s *Scene) DeepTranslate(c *Cluster, d geom.Point) {
	c.Translate(d)
	for _, id := range s.Descendants(c.ID) {
		if n := s.Node(id); n != nil {
			n.Translate(d)
		}
	}
}
