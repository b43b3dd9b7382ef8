package editor

import (
	"math"

	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/scene"
)

// pusher implements incremental dragging: the dragged nodes shove
// overlapping siblings aside, level by level up the cluster tree.
type pusher struct {
	ed    *Editor
	set   *DragSet
	nodes []scene.ID
}

func newPusher(ed *Editor, d *DragSet) *pusher {
	p := &pusher{ed: ed, set: d}
	for _, id := range d.Objects {
		if ed.scene.Node(id) != nil {
			p.nodes = append(p.nodes, id)
		}
	}
	return p
}

func (p *pusher) drag(delta geom.Point) {
	ed := p.ed
	s := ed.scene
	moved := make(map[scene.ID]bool)
	var order []scene.ID
	mark := func(id scene.ID) {
		if !moved[id] {
			moved[id] = true
			order = append(order, id)
		}
	}

	ed.translateObjects(delta)
	for _, id := range p.nodes {
		mark(id)
	}

	// Push at the level of the dragged nodes, then let every enclosing
	// cluster that changed push its own siblings.
	level := p.nodes
	for len(level) > 0 {
		for _, id := range p.push(level) {
			mark(id)
		}
		parent := s.Node(level[0]).Parent
		if parent == "" {
			break
		}
		c := s.Cluster(parent)
		if c == nil || c.Collapsed || p.set.Contains(parent) {
			break
		}
		before := c.BoundingBox()
		ed.touch(c)
		s.RecomputeClusterBounds(c)
		ed.grow(c)
		if c.BoundingBox().Equal(before) {
			break
		}
		mark(parent)
		level = []scene.ID{parent}
	}

	var edges []scene.ID
	seen := make(map[scene.ID]bool)
	ends := make(map[scene.ID]bool)
	for _, id := range order {
		ends[id] = true
		ids := []scene.ID{id}
		if s.Cluster(id) != nil {
			for _, d := range s.Descendants(id) {
				ends[d] = true
				ids = append(ids, d)
			}
		}
		for _, n := range ids {
			for _, e := range s.IncidentEdges(n) {
				if !seen[e.ID] && !p.set.Contains(e.ID) {
					seen[e.ID] = true
					edges = append(edges, e.ID)
				}
			}
		}
	}
	ed.rerouteStraight(edges, func(e *scene.Edge) scene.ID {
		if ends[e.Source] {
			return e.Source
		}
		return e.Target
	})
}

// push moves visible siblings of the pushing nodes out of their way,
// breadth first, so every pushed node pushes in turn. It returns the
// pushed IDs.
func (p *pusher) push(pushing []scene.ID) []scene.ID {
	ed := p.ed
	s := ed.scene
	sep := ed.settings.NodeSeparation
	parent := s.Node(pushing[0]).Parent
	siblings := p.siblings(parent)

	fixed := make(map[scene.ID]bool)
	for _, id := range pushing {
		fixed[id] = true
	}
	queue := append([]scene.ID(nil), pushing...)
	var pushed []scene.ID
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		a := s.Node(id)
		for _, sid := range siblings {
			if fixed[sid] {
				continue
			}
			b := s.Node(sid)
			d, ok := pushVector(a.BoundingBox(), b.BoundingBox(), sep)
			if !ok {
				continue
			}
			ent := s.NodeEntity(sid)
			ed.translate(ent, d)
			ed.grow(ent)
			fixed[sid] = true
			pushed = append(pushed, sid)
			queue = append(queue, sid)
		}
	}
	return pushed
}

func (p *pusher) siblings(parent scene.ID) []scene.ID {
	s := p.ed.scene
	if parent != "" {
		if c := s.Cluster(parent); c != nil {
			return visibleOnly(s, c.Children)
		}
	}
	var out []scene.ID
	for _, n := range s.Nodes() {
		if n.Parent == "" && !n.Hidden {
			out = append(out, n.ID)
		}
	}
	for _, c := range s.Clusters() {
		if c.Parent == "" && !c.Hidden {
			out = append(out, c.ID)
		}
	}
	return out
}

func visibleOnly(s *scene.Scene, ids []scene.ID) []scene.ID {
	var out []scene.ID
	for _, id := range ids {
		if n := s.Node(id); n != nil && !n.Hidden {
			out = append(out, id)
		}
	}
	return out
}

// pushVector returns how far b must move so it keeps sep away from a,
// along the axis on which their centers are farther apart. It reports
// false when they are already separated on either axis.
func pushVector(a, b geom.Rect, sep float64) (geom.Point, bool) {
	del := b.Center().Sub(a.Center())
	w := (a.Width() + b.Width()) / 2
	h := (a.Height() + b.Height()) / 2
	xGap := math.Abs(del.X) - w
	yGap := math.Abs(del.Y) - h
	if xGap >= sep || yGap >= sep {
		return geom.Point{}, false
	}
	if math.Abs(del.X) >= math.Abs(del.Y) {
		d := sep - xGap
		if del.X < 0 {
			d = -d
		}
		return geom.Pt(d, 0), true
	}
	d := sep - yGap
	if del.Y < 0 {
		d = -d
	}
	return geom.Pt(0, d), true
}
