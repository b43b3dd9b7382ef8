package editor

import "github.com/matzehuels/graphedit/pkg/scene"

// DragSet partitions what a drag moves.
type DragSet struct {
	// Objects move rigidly: nodes, clusters, labels, and edges whose both
	// ends move.
	Objects []scene.ID

	// WithSource holds edges whose source moves and whose target stays.
	WithSource []scene.ID

	// WithTarget holds edges whose target moves and whose source stays.
	WithTarget []scene.ID

	objects map[scene.ID]bool

	// partial maps a boundary edge to whether its source is the moving end.
	partial map[scene.ID]bool
}

func newDragSet() *DragSet {
	return &DragSet{objects: make(map[scene.ID]bool), partial: make(map[scene.ID]bool)}
}

// Contains reports whether id moves rigidly.
func (d *DragSet) Contains(id scene.ID) bool { return d.objects[id] }

// Partial reports whether id is an edge with one moving end.
func (d *DragSet) Partial(id scene.ID) bool {
	_, ok := d.partial[id]
	return ok
}

// Boundary returns WithSource followed by WithTarget.
func (d *DragSet) Boundary() []scene.ID {
	out := make([]scene.ID, 0, len(d.WithSource)+len(d.WithTarget))
	out = append(out, d.WithSource...)
	return append(out, d.WithTarget...)
}

// Empty reports whether nothing moves.
func (d *DragSet) Empty() bool { return len(d.Objects) == 0 }

func (d *DragSet) movingEnd(e *scene.Edge) scene.ID {
	if d.partial[e.ID] {
		return e.Source
	}
	return e.Target
}

func (d *DragSet) add(id scene.ID) {
	if !d.objects[id] {
		d.objects[id] = true
		d.Objects = append(d.Objects, id)
	}
}

func (d *DragSet) drop(id scene.ID) {
	if !d.objects[id] {
		return
	}
	delete(d.objects, id)
	for i, x := range d.Objects {
		if x == id {
			d.Objects = append(d.Objects[:i], d.Objects[i+1:]...)
			return
		}
	}
}

func (d *DragSet) addPartial(e *scene.Edge, sourceMoves bool) {
	if d.objects[e.ID] || d.Partial(e.ID) {
		return
	}
	d.partial[e.ID] = sourceMoves
	if sourceMoves {
		d.WithSource = append(d.WithSource, e.ID)
	} else {
		d.WithTarget = append(d.WithTarget, e.ID)
	}
}

// CalculateDragSets derives the drag sets of a selection. Marked edges
// bring their endpoints along. An entity inside a marked cluster is
// represented by the cluster. Every edge touching a moving node, or a node
// inside a moving cluster, is sorted into Objects when its other end moves
// too and into WithSource or WithTarget otherwise.
func CalculateDragSets(s *scene.Scene, marked []scene.ID) *DragSet {
	d := newDragSet()
	for _, id := range marked {
		ent, ok := s.Entity(id)
		if !ok {
			continue
		}
		d.add(id)
		if e, ok := ent.(*scene.Edge); ok {
			d.add(e.Source)
			d.add(e.Target)
		}
	}

	for _, id := range append([]scene.ID(nil), d.Objects...) {
		switch mustEntity(s, id).(type) {
		case *scene.Node, *scene.Cluster:
			if ancestorIn(s, d, id) {
				d.drop(id)
			}
		}
	}

	moves := func(id scene.ID) bool { return d.objects[id] || ancestorIn(s, d, id) }
	var visit func(id scene.ID)
	visit = func(id scene.ID) {
		for _, e := range s.SelfEdges(id) {
			d.add(e.ID)
		}
		for _, e := range s.InEdges(id) {
			if moves(e.Source) {
				d.add(e.ID)
			} else {
				d.addPartial(e, false)
			}
		}
		for _, e := range s.OutEdges(id) {
			if moves(e.Target) {
				d.add(e.ID)
			} else {
				d.addPartial(e, true)
			}
		}
	}
	for _, id := range append([]scene.ID(nil), d.Objects...) {
		switch mustEntity(s, id).(type) {
		case *scene.Node:
			visit(id)
		case *scene.Cluster:
			visit(id)
			for _, desc := range s.Descendants(id) {
				visit(desc)
			}
		}
	}

	// Labels of rigid edges travel with them.
	for _, id := range append([]scene.ID(nil), d.Objects...) {
		if e := s.Edge(id); e != nil && e.Label != "" {
			d.drop(e.Label)
		}
	}
	return d
}

func mustEntity(s *scene.Scene, id scene.ID) scene.Entity {
	e, _ := s.Entity(id)
	return e
}

func ancestorIn(s *scene.Scene, d *DragSet, id scene.ID) bool {
	for _, c := range s.Ancestors(id) {
		if d.objects[c.ID] {
			return true
		}
	}
	return false
}
