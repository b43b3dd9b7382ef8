package scene

import (
	"math"

	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/polyline"
)

// ID identifies an entity within a Scene.
type ID string

// Kind discriminates entity variants.
type Kind uint8

const (
	KindNode Kind = iota
	KindCluster
	KindEdge
	KindLabel
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindCluster:
		return "cluster"
	case KindEdge:
		return "edge"
	case KindLabel:
		return "label"
	default:
		return "unknown"
	}
}

// Entity is implemented by *Node, *Cluster, *Edge and *Label only.
type Entity interface {
	EntityID() ID
	Kind() Kind
	BoundingBox() geom.Rect
	entity()
}

// =============================================================================
// Node
// =============================================================================

// Node is a shape in the scene.
type Node struct {
	ID       ID
	Name     string
	Boundary geom.Polygon

	// Parent is the enclosing cluster, empty for top-level nodes.
	Parent ID
	Hidden bool
}

func (n *Node) EntityID() ID           { return n.ID }
func (n *Node) Kind() Kind             { return KindNode }
func (n *Node) BoundingBox() geom.Rect { return n.Boundary.Bounds() }
func (n *Node) entity()                {}

// Center returns the center of the node's box.
func (n *Node) Center() geom.Point { return n.Boundary.Center() }

// Width returns the node's box width.
func (n *Node) Width() float64 { return n.BoundingBox().Width() }

// Height returns the node's box height.
func (n *Node) Height() float64 { return n.BoundingBox().Height() }

// Translate moves the node's boundary by d.
func (n *Node) Translate(d geom.Point) { n.Boundary.Translate(d) }

// SetCenter moves the node so its box is centered at c.
func (n *Node) SetCenter(c geom.Point) { n.Translate(c.Sub(n.Center())) }

// =============================================================================
// Cluster
// =============================================================================

// Cluster is a node that encloses child nodes and clusters.
type Cluster struct {
	Node

	// Children lists direct child node and cluster IDs in order.
	Children []ID

	Collapsed bool

	// CollapsedBoundary is the shape shown while collapsed, centered at the
	// origin. Collapse moves a copy of it to the cluster's center.
	CollapsedBoundary geom.Polygon
}

func (c *Cluster) Kind() Kind { return KindCluster }

// =============================================================================
// Edge
// =============================================================================

// Arrowhead marks one end of an edge. The curve stops Length short of Tip.
type Arrowhead struct {
	Tip    geom.Point
	Length float64
}

// Edge connects two nodes. Curve is nil while the edge has no route.
type Edge struct {
	ID     ID
	Source ID
	Target ID

	Curve    *geom.Curve
	Polyline *polyline.Polyline

	SourceArrow *Arrowhead
	TargetArrow *Arrowhead

	Label     ID
	LineWidth float64
	Hidden    bool
}

func (e *Edge) EntityID() ID { return e.ID }
func (e *Edge) Kind() Kind   { return KindEdge }
func (e *Edge) entity()      {}

// BoundingBox covers the curve and arrow tips, padded by half the line width.
func (e *Edge) BoundingBox() geom.Rect {
	r := e.Curve.Bounds()
	if e.SourceArrow != nil {
		r = r.AddPoint(e.SourceArrow.Tip)
	}
	if e.TargetArrow != nil {
		r = r.AddPoint(e.TargetArrow.Tip)
	}
	return r.Pad(e.LineWidth / 2)
}

// IsSelf reports whether the edge starts and ends at the same node.
func (e *Edge) IsSelf() bool { return e.Source == e.Target }

// Other returns the endpoint opposite id.
func (e *Edge) Other(id ID) ID {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}

// Translate moves the curve, corners and arrowheads by d.
func (e *Edge) Translate(d geom.Point) {
	if e.Curve != nil {
		e.Curve.Translate(d)
	}
	if e.Polyline != nil {
		e.Polyline.Translate(d)
	}
	for _, a := range []*Arrowhead{e.SourceArrow, e.TargetArrow} {
		if a != nil {
			a.Tip = a.Tip.Add(d)
		}
	}
}

// =============================================================================
// Label
// =============================================================================

// Label is the text box of an edge. AttachStart..AttachEnd is the segment
// drawn from the label to its edge.
type Label struct {
	ID     ID
	Owner  ID
	Text   string
	Center geom.Point
	Width  float64
	Height float64

	AttachStart geom.Point
	AttachEnd   geom.Point
}

func (l *Label) EntityID() ID           { return l.ID }
func (l *Label) Kind() Kind             { return KindLabel }
func (l *Label) BoundingBox() geom.Rect { return geom.RectAround(l.Center, l.Width, l.Height) }
func (l *Label) entity()                {}

// Translate moves the label and its attachment segment by d.
func (l *Label) Translate(d geom.Point) {
	l.Center = l.Center.Add(d)
	l.AttachStart = l.AttachStart.Add(d)
	l.AttachEnd = l.AttachEnd.Add(d)
}

// Attach recomputes the attachment segment against curve. The end is the
// curve point closest to the label center; the start is where the segment
// toward it leaves the label box, or the center when the end lies inside.
func (l *Label) Attach(curve *geom.Curve) {
	if curve.Empty() {
		l.AttachStart, l.AttachEnd = l.Center, l.Center
		return
	}
	end := curve.ClosestPoint(l.Center)
	l.AttachEnd = end
	box := l.BoundingBox()
	if box.Contains(end) {
		l.AttachStart = l.Center
		return
	}
	corners := box.Corners()
	if p, ok := geom.Polygon(corners[:]).IntersectSegment(end, l.Center); ok {
		l.AttachStart = p
		return
	}
	l.AttachStart = l.Center
}

// widthOrZero guards against NaN sizes from malformed input.
func widthOrZero(w float64) float64 {
	if math.IsNaN(w) || w < 0 {
		return 0
	}
	return w
}
