package editor

import (
	"context"

	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/history"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/scene"
	"github.com/matzehuels/graphedit/pkg/viewer"
)

// defaultCollapsedSize is the side of the box shown for a collapsed
// cluster without its own collapsed shape.
const defaultCollapsedSize = 30

// Collapse hides everything inside a cluster and shows it as its collapsed
// shape. Edges between two hidden nodes are hidden; edges leaving the
// cluster are redrawn to it. The enclosing scope is then relaid out when
// a relayout engine is configured.
func (ed *Editor) Collapse(ctx context.Context, id scene.ID) (*history.Action, error) {
	c := ed.scene.Cluster(id)
	if c == nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, scene.ErrUnknownEntity, "collapse %q", id)
	}
	if c.Collapsed {
		return nil, nil
	}
	if err := ed.begin(ctx, "collapse"); err != nil {
		return nil, err
	}
	inside := ed.captureSubtree(c)

	center := c.Center()
	ed.touch(c)
	c.Collapsed = true
	shape := c.CollapsedBoundary
	if len(shape) == 0 {
		shape = geom.RectPolygon(geom.Point{}, defaultCollapsedSize, defaultCollapsedSize)
	}
	c.Boundary = shape.Clone()
	c.Boundary.Translate(center.Sub(c.Boundary.Center()))

	for _, d := range ed.scene.Descendants(id) {
		ed.scene.Node(d).Hidden = true
	}
	var external []scene.ID
	for _, e := range ed.subtreeEdges(inside) {
		if inside[e.Source] && inside[e.Target] {
			e.Hidden = true
			continue
		}
		external = append(external, e.ID)
	}
	ed.rerouteStraight(external, func(e *scene.Edge) scene.ID { return e.Source })

	ed.relayoutScope(ctx, c.Parent)
	ed.refitAncestors(id)
	ed.scene.FitBoundingBox()
	ed.sink.Push(viewer.Event{Kind: viewer.FullInvalidate})
	return ed.commit(ctx)
}

// Expand reverses Collapse. Children reappear around the cluster's current
// center; nested clusters that are still collapsed keep their contents
// hidden.
func (ed *Editor) Expand(ctx context.Context, id scene.ID) (*history.Action, error) {
	c := ed.scene.Cluster(id)
	if c == nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, scene.ErrUnknownEntity, "expand %q", id)
	}
	if !c.Collapsed {
		return nil, nil
	}
	if err := ed.begin(ctx, "expand"); err != nil {
		return nil, err
	}
	inside := ed.captureSubtree(c)
	ed.touch(c)
	c.Collapsed = false

	var reveal func(*scene.Cluster)
	reveal = func(k *scene.Cluster) {
		for _, ch := range k.Children {
			n := ed.scene.Node(ch)
			n.Hidden = false
			if sub := ed.scene.Cluster(ch); sub != nil && !sub.Collapsed {
				reveal(sub)
			}
		}
	}
	reveal(c)

	box := geom.EmptyRect()
	for _, ch := range c.Children {
		box = box.Union(ed.scene.Node(ch).BoundingBox())
	}
	if !box.IsEmpty() {
		d := c.Center().Sub(box.Center())
		for _, desc := range ed.scene.Descendants(id) {
			ed.scene.Node(desc).Translate(d)
		}
	}
	ed.scene.RecomputeClusterBounds(c)

	var edges []scene.ID
	for _, e := range ed.subtreeEdges(inside) {
		src, tgt := ed.endNodes(e)
		e.Hidden = src.Hidden || tgt.Hidden
		if !e.Hidden {
			edges = append(edges, e.ID)
		}
	}
	ed.rerouteStraight(edges, func(e *scene.Edge) scene.ID { return e.Source })

	ed.relayoutScope(ctx, c.Parent)
	ed.refitAncestors(id)
	ed.scene.FitBoundingBox()
	ed.sink.Push(viewer.Event{Kind: viewer.FullInvalidate})
	return ed.commit(ctx)
}

// captureSubtree snapshots every node inside c and every edge touching
// one, returning the set of inside IDs.
func (ed *Editor) captureSubtree(c *scene.Cluster) map[scene.ID]bool {
	inside := make(map[scene.ID]bool)
	for _, d := range ed.scene.Descendants(c.ID) {
		inside[d] = true
		ed.touch(ed.scene.NodeEntity(d))
	}
	for _, e := range ed.subtreeEdges(inside) {
		ed.touch(e)
		if l := ed.scene.Label(e.Label); l != nil {
			ed.touch(l)
		}
	}
	return inside
}

// subtreeEdges returns each edge touching an inside node once, in scene order.
func (ed *Editor) subtreeEdges(inside map[scene.ID]bool) []*scene.Edge {
	var out []*scene.Edge
	for _, e := range ed.scene.Edges() {
		if inside[e.Source] || inside[e.Target] {
			out = append(out, e)
		}
	}
	return out
}

// refitAncestors refits the clusters enclosing id, innermost first.
func (ed *Editor) refitAncestors(id scene.ID) {
	ed.refitClusters([]scene.ID{id}, func(scene.ID) bool { return false })
}

// relayoutScope relays out the children of scope and applies the result.
func (ed *Editor) relayoutScope(ctx context.Context, scope scene.ID) {
	l := ed.safeRelayout(ctx, scope)
	if l == nil {
		return
	}
	ed.applyLayout(ctx, l)
}

// applyLayout moves nodes and clusters to the layout's positions and
// installs its routes. Clusters move with their contents.
func (ed *Editor) applyLayout(ctx context.Context, l *routing.Layout) {
	s := ed.scene
	// Clusters first: moving one drags its contents, whose own absolute
	// positions are applied afterwards.
	for _, c := range s.Clusters() {
		if r, ok := l.Clusters[c.ID]; ok {
			ed.translate(c, r.Center().Sub(c.Center()))
			if !c.Collapsed {
				corners := r.Corners()
				c.Boundary = geom.Polygon(corners[:]).Clone()
			}
		}
	}
	for _, n := range s.Nodes() {
		if c, ok := l.Nodes[n.ID]; ok {
			ed.touch(n)
			n.SetCenter(c)
		}
	}
	if len(l.Edges) > 0 {
		ed.applyRoutes(l.Edges)
		ed.placeLabels(ctx, keys(l.Edges))
	}
	// Edges the layout did not route still have to meet their nodes.
	var rest []scene.ID
	for _, e := range s.Edges() {
		if _, ok := l.Edges[e.ID]; !ok && !e.Hidden && ed.layoutMoved(l, e) {
			rest = append(rest, e.ID)
		}
	}
	ed.rerouteStraight(rest, func(e *scene.Edge) scene.ID { return e.Source })
}

func (ed *Editor) layoutMoved(l *routing.Layout, e *scene.Edge) bool {
	for _, id := range []scene.ID{e.Source, e.Target} {
		if _, ok := l.Nodes[id]; ok {
			return true
		}
		if _, ok := l.Clusters[id]; ok {
			return true
		}
		for _, c := range ed.scene.Ancestors(id) {
			if _, ok := l.Clusters[c.ID]; ok {
				return true
			}
		}
	}
	return false
}
