package editor

import (
	"context"
	"sort"

	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/history"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/scene"
)

// PrepareForObjectDragging computes the drag sets of marked and opens the
// drag Action. The mode decides how edges follow; see the package docs.
func (ed *Editor) PrepareForObjectDragging(ctx context.Context, marked []scene.ID, mode routing.Mode) error {
	d := CalculateDragSets(ed.scene, marked)
	if d.Empty() {
		return ErrEmptySelection
	}
	if err := ed.begin(ctx, "drag"); err != nil {
		return err
	}
	ed.drag = d
	ed.dragMode = mode
	if mode == routing.ModeIncremental {
		ed.pusher = newPusher(ed, d)
	}
	ed.logger.Debugf("Dragging %d objects (%s), %d boundary edges", len(d.Objects), mode, len(d.WithSource)+len(d.WithTarget))
	return nil
}

// Drag moves the prepared selection by delta, the displacement since the
// previous tick.
func (ed *Editor) Drag(ctx context.Context, delta geom.Point) error {
	if ed.drag == nil {
		return ErrNoDrag
	}
	switch ed.dragMode {
	case routing.ModeStraight:
		ed.translateObjects(delta)
		ed.propagateClusterBounds()
		ed.rerouteStraight(ed.drag.Boundary(), ed.drag.movingEnd)
	case routing.ModeIncremental:
		ed.pusher.drag(delta)
	default:
		ed.translateObjects(delta)
		ed.propagateClusterBounds()
		ed.rerouteAll(ctx, ed.dragMode)
		if ed.dragMode == routing.ModeRectilinear {
			ed.refit()
		}
	}
	return nil
}

// EndDrag commits the drag Action. It returns nil when the gesture changed
// nothing.
func (ed *Editor) EndDrag(ctx context.Context) (*history.Action, error) {
	if ed.drag == nil {
		return nil, ErrNoDrag
	}
	ed.drag = nil
	ed.pusher = nil
	return ed.commit(ctx)
}

// translateObjects moves the rigid part of the drag set.
func (ed *Editor) translateObjects(delta geom.Point) {
	for _, id := range ed.drag.Objects {
		ent, ok := ed.scene.Entity(id)
		if !ok {
			continue
		}
		ed.translate(ent, delta)
		ed.grow(ent)
	}
}

func (ed *Editor) translate(ent scene.Entity, delta geom.Point) {
	switch x := ent.(type) {
	case *scene.Cluster:
		ed.touch(x)
		for _, d := range ed.scene.Descendants(x.ID) {
			ed.touch(ed.scene.NodeEntity(d))
		}
		ed.scene.DeepTranslate(x, delta)
	case *scene.Node:
		ed.touch(x)
		x.Translate(delta)
	case *scene.Edge:
		ed.touch(x)
		x.Translate(delta)
		if l := ed.scene.Label(x.Label); l != nil {
			ed.touch(l)
			l.Translate(delta)
		}
	case *scene.Label:
		ed.touch(x)
		x.Translate(delta)
		if owner := ed.scene.Edge(x.Owner); owner != nil {
			x.Attach(owner.Curve)
		}
	}
}

// propagateClusterBounds refits every cluster enclosing a moved node that
// is not itself moving, innermost first.
func (ed *Editor) propagateClusterBounds() {
	ed.refitClusters(ed.drag.Objects, ed.drag.Contains)
}

func (ed *Editor) refitClusters(moved []scene.ID, moving func(scene.ID) bool) {
	depth := make(map[scene.ID]int)
	for _, id := range moved {
		anc := ed.scene.Ancestors(id)
		for i, c := range anc {
			if moving(c.ID) {
				continue
			}
			if d := len(anc) - i; d > depth[c.ID] {
				depth[c.ID] = d
			}
		}
	}
	ids := make([]scene.ID, 0, len(depth))
	for id := range depth {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if depth[ids[i]] != depth[ids[j]] {
			return depth[ids[i]] > depth[ids[j]]
		}
		return ids[i] < ids[j]
	})
	for _, id := range ids {
		c := ed.scene.Cluster(id)
		if c == nil || c.Collapsed {
			continue
		}
		ed.touch(c)
		ed.scene.RecomputeClusterBounds(c)
		ed.grow(c)
	}
}

// rerouteStraight regenerates edges with one moving end as straight
// segments fanned out around the moving end.
func (ed *Editor) rerouteStraight(ids []scene.ID, movingEnd func(*scene.Edge) scene.ID) {
	sep := ed.settings.FanoutSeparation()
	fans := make(map[scene.ID]map[scene.ID]float64)
	for _, id := range ids {
		e := ed.scene.Edge(id)
		if e == nil {
			continue
		}
		end := ed.representative(movingEnd(e))
		src := ed.representative(e.Source)
		if end == nil || src == nil {
			continue
		}
		offs, ok := fans[end.ID]
		if !ok {
			offs = FanOutOffsets(ed.scene, end.ID, sep)
			fans[end.ID] = offs
		}
		off := offs[e.ID]
		if src.ID != end.ID {
			off = -off
		}
		ed.straighten(e, off)
	}
}

// straighten reroutes one edge as a straight segment bent by off.
func (ed *Editor) straighten(e *scene.Edge, off float64) {
	src, tgt := ed.endNodes(e)
	if src == nil || tgt == nil {
		return
	}
	ed.touch(e)
	before := ed.curveMid(e)
	r := routing.StraightBetween(src, tgt, off, ed.settings.Routing.SelfLoopSize)
	routing.ApplyRouteBetween(e, r, src, tgt, ed.settings.Routing)
	ed.followLabel(e, before)
	ed.grow(e)
}

// followLabel keeps a label at the same offset from its edge's midpoint.
func (ed *Editor) followLabel(e *scene.Edge, before geom.Point) {
	l := ed.scene.Label(e.Label)
	if l == nil {
		return
	}
	ed.touch(l)
	l.Translate(ed.curveMid(e).Sub(before))
	l.Attach(e.Curve)
}

// rerouteAll hands every visible edge to the router, falling back to
// straight segments for the boundary edges when it produces nothing.
func (ed *Editor) rerouteAll(ctx context.Context, mode routing.Mode) {
	routes := ed.safeRouteAll(ctx, nil, mode)
	if routes == nil {
		ed.rerouteStraight(ed.drag.Boundary(), ed.drag.movingEnd)
		return
	}
	ed.applyRoutes(routes)
	ed.placeLabels(ctx, keys(routes))
}

// applyRoutes installs router output in scene order.
func (ed *Editor) applyRoutes(routes map[scene.ID]routing.Route) {
	for _, e := range ed.scene.Edges() {
		r, ok := routes[e.ID]
		if !ok {
			continue
		}
		src, tgt := ed.endNodes(e)
		ed.touch(e)
		routing.ApplyRouteBetween(e, r, src, tgt, ed.settings.Routing)
		ed.grow(e)
	}
}

func keys(m map[scene.ID]routing.Route) []scene.ID {
	out := make([]scene.ID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
