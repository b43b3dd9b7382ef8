package editor

import (
	"context"

	"github.com/google/uuid"

	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/history"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/scene"
	"github.com/matzehuels/graphedit/pkg/viewer"
)

// =============================================================================
// Edges
// =============================================================================

// InsertEdge adds an edge between two resolved ports and routes it. When
// the router produces nothing the edge is kept without a curve.
func (ed *Editor) InsertEdge(ctx context.Context, src, tgt routing.Port) (*scene.Edge, *history.Action, error) {
	if !src.Valid() || !tgt.Valid() {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "an edge needs a source and a target port")
	}
	e := &scene.Edge{
		ID:          scene.ID("e-" + uuid.NewString()),
		Source:      src.Node,
		Target:      tgt.Node,
		TargetArrow: &scene.Arrowhead{Tip: routing.PortPoint(ed.scene, tgt), Length: ed.settings.Routing.ArrowheadLength},
		LineWidth:   ed.settings.LineWidth,
	}
	if err := ed.begin(ctx, "insert edge"); err != nil {
		return nil, nil, err
	}
	if err := ed.scene.AddEdge(e); err != nil {
		ed.log.Abort(ed.scene)
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "insert edge")
	}
	if r, ok := ed.safeRouteToPort(ctx, src, tgt); ok {
		routing.ApplyRoute(ed.scene, e, r, ed.settings.Routing)
	}
	if err := ed.log.Record(e.ID, ed.edgeReplay(e, nil, true)); err != nil {
		return nil, nil, err
	}
	ed.grow(e)
	ed.sink.Push(viewer.Event{Kind: viewer.EdgeAdded, ID: e.ID})
	a, err := ed.commit(ctx)
	return e, a, err
}

// RemoveEdge deletes an edge and its label.
func (ed *Editor) RemoveEdge(ctx context.Context, id scene.ID) (*history.Action, error) {
	if ed.scene.Edge(id) == nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, scene.ErrUnknownEntity, "remove edge %q", id)
	}
	if err := ed.begin(ctx, "remove edge"); err != nil {
		return nil, err
	}
	e, l, err := ed.scene.RemoveEdge(id)
	if err != nil {
		ed.log.Abort(ed.scene)
		return nil, err
	}
	if ed.edited == id {
		ed.edited = ""
	}
	if err := ed.log.Record(id, ed.edgeReplay(e, l, false)); err != nil {
		return nil, err
	}
	if l != nil {
		ed.affected(l.ID)
	}
	ed.sink.Push(viewer.Event{Kind: viewer.EdgeRemoved, ID: id})
	return ed.commit(ctx)
}

func (ed *Editor) edgeReplay(e *scene.Edge, l *scene.Label, added bool) history.Replay {
	add := func(s *scene.Scene) {
		if err := s.AddEdge(e); err != nil {
			errors.Invariant("restore edge %q: %v", e.ID, err)
		}
		if l != nil {
			if err := s.AddLabel(l); err != nil {
				errors.Invariant("restore label %q: %v", l.ID, err)
			}
		}
		ed.sink.Push(viewer.Event{Kind: viewer.EdgeAdded, ID: e.ID})
	}
	del := func(s *scene.Scene) {
		if _, _, err := s.RemoveEdge(e.ID); err != nil {
			errors.Invariant("remove edge %q: %v", e.ID, err)
		}
		if ed.edited == e.ID {
			ed.edited = ""
		}
		ed.sink.Push(viewer.Event{Kind: viewer.EdgeRemoved, ID: e.ID})
	}
	if added {
		return history.Replay{Undo: del, Redo: add}
	}
	return history.Replay{Undo: add, Redo: del}
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode inserts a plain node.
func (ed *Editor) AddNode(ctx context.Context, n *scene.Node) (*history.Action, error) {
	if err := ed.begin(ctx, "add node"); err != nil {
		return nil, err
	}
	if err := ed.scene.AddNode(n); err != nil {
		ed.log.Abort(ed.scene)
		return nil, err
	}
	if err := ed.log.Record(n.ID, ed.nodeReplay(n, -1, nil, nil, true)); err != nil {
		return nil, err
	}
	if c := ed.scene.Cluster(n.Parent); c != nil {
		ed.refitClusters([]scene.ID{n.ID}, func(scene.ID) bool { return false })
	}
	ed.grow(n)
	ed.sink.Push(viewer.Event{Kind: viewer.NodeAdded, ID: n.ID})
	return ed.commit(ctx)
}

// RemoveNode deletes a plain node with its incident edges.
func (ed *Editor) RemoveNode(ctx context.Context, id scene.ID) (*history.Action, error) {
	if ed.scene.NodeEntity(id) == nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, scene.ErrUnknownEntity, "remove node %q", id)
	}
	if err := ed.begin(ctx, "remove node"); err != nil {
		return nil, err
	}
	n, index, edges, labels, err := ed.scene.RemoveNode(id)
	if err != nil {
		ed.log.Abort(ed.scene)
		return nil, err
	}
	for _, e := range edges {
		if ed.edited == e.ID {
			ed.edited = ""
		}
		ed.sink.Push(viewer.Event{Kind: viewer.EdgeRemoved, ID: e.ID})
	}
	if err := ed.log.Record(id, ed.nodeReplay(n, index, edges, labels, false)); err != nil {
		return nil, err
	}
	for _, l := range labels {
		ed.affected(l.ID)
	}
	ed.sink.Push(viewer.Event{Kind: viewer.NodeRemoved, ID: id})
	return ed.commit(ctx)
}

func (ed *Editor) nodeReplay(n *scene.Node, index int, edges []*scene.Edge, labels []*scene.Label, added bool) history.Replay {
	add := func(s *scene.Scene) {
		if err := s.RestoreNode(n, index); err != nil {
			errors.Invariant("restore node %q: %v", n.ID, err)
		}
		ed.sink.Push(viewer.Event{Kind: viewer.NodeAdded, ID: n.ID})
		for _, e := range edges {
			if err := s.AddEdge(e); err != nil {
				errors.Invariant("restore edge %q: %v", e.ID, err)
			}
			ed.sink.Push(viewer.Event{Kind: viewer.EdgeAdded, ID: e.ID})
		}
		for _, l := range labels {
			if err := s.AddLabel(l); err != nil {
				errors.Invariant("restore label %q: %v", l.ID, err)
			}
		}
	}
	del := func(s *scene.Scene) {
		_, _, removed, _, err := s.RemoveNode(n.ID)
		if err != nil {
			errors.Invariant("remove node %q: %v", n.ID, err)
		}
		for _, e := range removed {
			ed.sink.Push(viewer.Event{Kind: viewer.EdgeRemoved, ID: e.ID})
		}
		ed.sink.Push(viewer.Event{Kind: viewer.NodeRemoved, ID: n.ID})
	}
	if added {
		return history.Replay{Undo: del, Redo: add}
	}
	return history.Replay{Undo: add, Redo: del}
}
