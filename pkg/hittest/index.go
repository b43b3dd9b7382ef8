package hittest

import (
	"sort"

	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/scene"
)

// Primitive is one hit-testable piece of an entity.
type Primitive struct {
	Entity scene.ID
	Box    geom.Rect

	// Segment primitives are tested by distance to A..B; HalfWidth accounts
	// for the stroke.
	Segment   bool
	A, B      geom.Point
	HalfWidth float64
}

func (p *Primitive) hit(pt geom.Point, slack float64) bool {
	if p.Segment {
		r := slack + p.HalfWidth
		return geom.SegmentDistSq(pt, p.A, p.B) <= r*r
	}
	return p.Box.Pad(slack).Contains(pt)
}

type node struct {
	left, right, parent *node

	// box is meaningful only while valid is set.
	box   geom.Rect
	valid bool

	prim *Primitive
}

func (n *node) leaf() bool { return n.prim != nil }

// Index is a bounding-volume hierarchy over scene entities.
type Index struct {
	scene    *scene.Scene
	root     *node
	subtrees map[scene.ID]*node
	priority func(scene.ID) int
}

// Build indexes every visible entity of s.
func Build(s *scene.Scene) *Index {
	ix := &Index{scene: s, subtrees: make(map[scene.ID]*node)}
	var parts []*node
	for _, e := range s.VisibleEntities() {
		if sub := ix.tessellate(e); sub != nil {
			ix.subtrees[e.EntityID()] = sub
			parts = append(parts, sub)
		}
	}
	ix.root = balance(parts)
	return ix
}

// tessellate builds the subtree of primitives for one entity.
func (ix *Index) tessellate(e scene.Entity) *node {
	var prims []*Primitive
	id := e.EntityID()
	switch x := e.(type) {
	case *scene.Edge:
		pts, _ := x.Curve.Flatten()
		for _, a := range []*scene.Arrowhead{x.SourceArrow, x.TargetArrow} {
			if a != nil && len(pts) > 0 {
				end := pts[0]
				if a == x.TargetArrow {
					end = pts[len(pts)-1]
				}
				prims = append(prims, segment(id, end, a.Tip, x.LineWidth))
			}
		}
		for i := 1; i < len(pts); i++ {
			prims = append(prims, segment(id, pts[i-1], pts[i], x.LineWidth))
		}
	default:
		if box := e.BoundingBox(); !box.IsEmpty() {
			prims = append(prims, &Primitive{Entity: id, Box: box})
		}
	}
	if len(prims) == 0 {
		return nil
	}
	leaves := make([]*node, len(prims))
	for i, p := range prims {
		leaves[i] = &node{prim: p, box: p.Box, valid: true}
	}
	return balance(leaves)
}

func segment(id scene.ID, a, b geom.Point, halfWidth float64) *Primitive {
	return &Primitive{
		Entity:    id,
		Segment:   true,
		A:         a,
		B:         b,
		HalfWidth: halfWidth,
		Box:       geom.RectFromPoints(a, b).Pad(halfWidth),
	}
}

// balance builds a tree over parts by splitting at the median along the
// longer axis of their centers.
func balance(parts []*node) *node {
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return parts[0]
	}
	for _, p := range parts {
		refresh(p)
	}
	centers := geom.EmptyRect()
	for _, p := range parts {
		centers = centers.AddPoint(p.box.Center())
	}
	byX := centers.Width() >= centers.Height()
	sort.SliceStable(parts, func(i, j int) bool {
		a, b := parts[i].box.Center(), parts[j].box.Center()
		if byX {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	mid := len(parts) / 2
	return join(balance(parts[:mid]), balance(parts[mid:]))
}

func join(l, r *node) *node {
	n := &node{left: l, right: r}
	l.parent, r.parent = n, n
	n.box, n.valid = l.box.Union(r.box), l.valid && r.valid
	return n
}

// refresh recomputes pending boxes under n bottom-up.
func refresh(n *node) {
	if n == nil || n.valid {
		return
	}
	refresh(n.left)
	refresh(n.right)
	n.box = n.left.box.Union(n.right.box)
	n.valid = true
}

func markPending(n *node) {
	for ; n != nil; n = n.parent {
		n.valid = false
	}
}

// Pending reports whether some box awaits recomputation.
func (ix *Index) Pending() bool { return ix.root != nil && !ix.root.valid }

// Len returns the number of indexed entities.
func (ix *Index) Len() int { return len(ix.subtrees) }

// =============================================================================
// Updates
// =============================================================================

// Invalidate re-tessellates the entity after a change. Entities that are no
// longer visible or no longer exist are removed; new ones are inserted.
func (ix *Index) Invalidate(id scene.ID) {
	e, ok := ix.scene.Entity(id)
	if !ok || !ix.scene.Visible(e) {
		ix.Remove(id)
		return
	}
	sub := ix.tessellate(e)
	old := ix.subtrees[id]
	switch {
	case sub == nil:
		ix.Remove(id)
	case old == nil:
		ix.insert(id, sub)
	default:
		ix.replace(old, sub)
		ix.subtrees[id] = sub
	}
}

// Insert indexes a newly added entity.
func (ix *Index) Insert(id scene.ID) { ix.Invalidate(id) }

func (ix *Index) insert(id scene.ID, sub *node) {
	ix.subtrees[id] = sub
	if ix.root == nil {
		ix.root = sub
		return
	}
	ix.root = join(ix.root, sub)
	ix.root.valid = false
}

func (ix *Index) replace(old, sub *node) {
	p := old.parent
	sub.parent = p
	old.parent = nil
	switch {
	case p == nil:
		ix.root = sub
	case p.left == old:
		p.left = sub
	default:
		p.right = sub
	}
	markPending(p)
}

// Remove drops the entity from the index.
func (ix *Index) Remove(id scene.ID) {
	sub := ix.subtrees[id]
	if sub == nil {
		return
	}
	delete(ix.subtrees, id)
	p := sub.parent
	sub.parent = nil
	if p == nil {
		ix.root = nil
		return
	}
	sibling := p.left
	if sibling == sub {
		sibling = p.right
	}
	ix.replace(p, sibling)
}

// =============================================================================
// Queries
// =============================================================================

// SetPriority orders simultaneous hits; the entity with the highest value
// wins, ties keep the first found.
func (ix *Index) SetPriority(fn func(scene.ID) int) { ix.priority = fn }

// Query returns the entity within slack of pt.
func (ix *Index) Query(pt geom.Point, slack float64) (scene.ID, bool) {
	return ix.QueryFilter(pt, slack, nil)
}

// QueryFilter is Query over the entities accepted by keep.
func (ix *Index) QueryFilter(pt geom.Point, slack float64, keep func(scene.ID) bool) (scene.ID, bool) {
	refresh(ix.root)
	hits := ix.collect(ix.root, pt, slack, keep, nil)
	if len(hits) == 0 {
		return "", false
	}
	best := hits[0]
	if ix.priority != nil {
		bp := ix.priority(best)
		for _, h := range hits[1:] {
			if p := ix.priority(h); p > bp {
				best, bp = h, p
			}
		}
	}
	return best, true
}

func (ix *Index) collect(n *node, pt geom.Point, slack float64, keep func(scene.ID) bool, out []scene.ID) []scene.ID {
	if n == nil || !n.box.Pad(slack).Contains(pt) {
		return out
	}
	if n.leaf() {
		id := n.prim.Entity
		if (keep == nil || keep(id)) && n.prim.hit(pt, slack) && !contains(out, id) {
			out = append(out, id)
		}
		return out
	}
	out = ix.collect(n.left, pt, slack, keep, out)
	return ix.collect(n.right, pt, slack, keep, out)
}

func contains(ids []scene.ID, id scene.ID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
