package scene

import (
	"errors"
	"slices"

	gerrors "github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/geom"
)

// Sentinel errors for scene mutation.
var (
	// ErrUnknownEntity is returned when an ID names no entity of the expected kind.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrDuplicateID is returned when adding an entity whose ID is taken.
	ErrDuplicateID = errors.New("duplicate entity id")

	// ErrCycle is returned when a parent assignment would make a cluster
	// its own ancestor.
	ErrCycle = errors.New("cluster ancestry cycle")
)

// Scene owns every entity being edited.
type Scene struct {
	// Box encloses all visible geometry plus Margin.
	Box geom.Rect

	// Margin pads the scene box; ClusterMargin pads cluster bounds
	// computed from children.
	Margin        float64
	ClusterMargin float64

	nodes    map[ID]*Node
	clusters map[ID]*Cluster
	edges    map[ID]*Edge
	labels   map[ID]*Label
	order    []ID

	out map[ID][]ID
	in  map[ID][]ID
}

// New creates an empty scene.
func New(margin, clusterMargin float64) *Scene {
	return &Scene{
		Box:           geom.EmptyRect(),
		Margin:        margin,
		ClusterMargin: clusterMargin,
		nodes:         make(map[ID]*Node),
		clusters:      make(map[ID]*Cluster),
		edges:         make(map[ID]*Edge),
		labels:        make(map[ID]*Label),
		out:           make(map[ID][]ID),
		in:            make(map[ID][]ID),
	}
}

// =============================================================================
// Mutation
// =============================================================================

func (s *Scene) checkNew(id ID) error {
	if err := gerrors.ValidateID(string(id)); err != nil {
		return err
	}
	if _, ok := s.Entity(id); ok {
		return ErrDuplicateID
	}
	return nil
}

func (s *Scene) attach(id, parent ID, index int) error {
	if parent == "" {
		return nil
	}
	c := s.clusters[parent]
	if c == nil {
		return ErrUnknownEntity
	}
	if index < 0 || index > len(c.Children) {
		index = len(c.Children)
	}
	c.Children = slices.Insert(c.Children, index, id)
	return nil
}

// AddNode adds a plain node, appending it to its parent cluster.
func (s *Scene) AddNode(n *Node) error {
	return s.insertNode(n, -1)
}

// RestoreNode re-adds a removed node at its former child position.
func (s *Scene) RestoreNode(n *Node, index int) error {
	return s.insertNode(n, index)
}

func (s *Scene) insertNode(n *Node, index int) error {
	if err := s.checkNew(n.ID); err != nil {
		return err
	}
	if err := s.attach(n.ID, n.Parent, index); err != nil {
		return err
	}
	s.nodes[n.ID] = n
	s.order = append(s.order, n.ID)
	return nil
}

// AddCluster adds a cluster. Its Children are filled by adding nodes with
// Parent set to the cluster.
func (s *Scene) AddCluster(c *Cluster) error {
	if err := s.checkNew(c.ID); err != nil {
		return err
	}
	for p := c.Parent; p != ""; {
		if p == c.ID {
			return ErrCycle
		}
		pc := s.clusters[p]
		if pc == nil {
			return ErrUnknownEntity
		}
		p = pc.Parent
	}
	if err := s.attach(c.ID, c.Parent, -1); err != nil {
		return err
	}
	c.Children = nil
	s.clusters[c.ID] = c
	s.order = append(s.order, c.ID)
	return nil
}

// AddEdge adds an edge between existing nodes or clusters.
func (s *Scene) AddEdge(e *Edge) error {
	if err := s.checkNew(e.ID); err != nil {
		return err
	}
	if s.Node(e.Source) == nil || s.Node(e.Target) == nil {
		return ErrUnknownEntity
	}
	s.edges[e.ID] = e
	s.order = append(s.order, e.ID)
	s.out[e.Source] = append(s.out[e.Source], e.ID)
	s.in[e.Target] = append(s.in[e.Target], e.ID)
	return nil
}

// AddLabel adds a label to an existing edge.
func (s *Scene) AddLabel(l *Label) error {
	if err := s.checkNew(l.ID); err != nil {
		return err
	}
	e := s.edges[l.Owner]
	if e == nil {
		return ErrUnknownEntity
	}
	l.Width, l.Height = widthOrZero(l.Width), widthOrZero(l.Height)
	e.Label = l.ID
	s.labels[l.ID] = l
	s.order = append(s.order, l.ID)
	return nil
}

// RemoveEdge removes an edge and its label.
func (s *Scene) RemoveEdge(id ID) (*Edge, *Label, error) {
	e := s.edges[id]
	if e == nil {
		return nil, nil, ErrUnknownEntity
	}
	var l *Label
	if e.Label != "" {
		l = s.labels[e.Label]
		delete(s.labels, e.Label)
		s.dropOrder(e.Label)
	}
	delete(s.edges, id)
	s.dropOrder(id)
	s.out[e.Source] = remove(s.out[e.Source], id)
	s.in[e.Target] = remove(s.in[e.Target], id)
	return e, l, nil
}

// RemoveNode removes a plain node together with its incident edges. It
// returns the node, its index among its parent's children, and the removed
// edges with their labels.
func (s *Scene) RemoveNode(id ID) (*Node, int, []*Edge, []*Label, error) {
	n := s.nodes[id]
	if n == nil {
		if s.clusters[id] != nil {
			return nil, 0, nil, nil, gerrors.New(gerrors.ErrCodeUnsupported, "cannot remove cluster %q", id)
		}
		return nil, 0, nil, nil, ErrUnknownEntity
	}
	var (
		edges  []*Edge
		labels []*Label
	)
	incident := append(slices.Clone(s.out[id]), s.in[id]...)
	for _, eid := range incident {
		if s.edges[eid] == nil {
			continue
		}
		e, l, _ := s.RemoveEdge(eid)
		edges = append(edges, e)
		if l != nil {
			labels = append(labels, l)
		}
	}
	index := -1
	if c := s.clusters[n.Parent]; c != nil {
		index = slices.Index(c.Children, id)
		c.Children = remove(c.Children, id)
	}
	delete(s.nodes, id)
	delete(s.out, id)
	delete(s.in, id)
	s.dropOrder(id)
	return n, index, edges, labels, nil
}

func (s *Scene) dropOrder(id ID) { s.order = remove(s.order, id) }

func remove(ids []ID, id ID) []ID {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}

// =============================================================================
// Lookup
// =============================================================================

// Entity looks up any entity by ID.
func (s *Scene) Entity(id ID) (Entity, bool) {
	if n, ok := s.nodes[id]; ok {
		return n, true
	}
	if c, ok := s.clusters[id]; ok {
		return c, true
	}
	if e, ok := s.edges[id]; ok {
		return e, true
	}
	if l, ok := s.labels[id]; ok {
		return l, true
	}
	return nil, false
}

// Node returns the node with id, or the node part of the cluster with id.
func (s *Scene) Node(id ID) *Node {
	if n := s.nodes[id]; n != nil {
		return n
	}
	if c := s.clusters[id]; c != nil {
		return &c.Node
	}
	return nil
}

// NodeEntity returns the node or cluster with id as an Entity.
func (s *Scene) NodeEntity(id ID) Entity {
	if n := s.nodes[id]; n != nil {
		return n
	}
	if c := s.clusters[id]; c != nil {
		return c
	}
	return nil
}

func (s *Scene) Cluster(id ID) *Cluster { return s.clusters[id] }
func (s *Scene) Edge(id ID) *Edge       { return s.edges[id] }
func (s *Scene) Label(id ID) *Label     { return s.labels[id] }

// Entities returns every entity in insertion order.
func (s *Scene) Entities() []Entity {
	out := make([]Entity, 0, len(s.order))
	for _, id := range s.order {
		e, _ := s.Entity(id)
		out = append(out, e)
	}
	return out
}

// Nodes returns plain nodes in insertion order.
func (s *Scene) Nodes() []*Node {
	var out []*Node
	for _, id := range s.order {
		if n := s.nodes[id]; n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Clusters returns clusters in insertion order.
func (s *Scene) Clusters() []*Cluster {
	var out []*Cluster
	for _, id := range s.order {
		if c := s.clusters[id]; c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Edges returns edges in insertion order.
func (s *Scene) Edges() []*Edge {
	var out []*Edge
	for _, id := range s.order {
		if e := s.edges[id]; e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Labels returns labels in insertion order.
func (s *Scene) Labels() []*Label {
	var out []*Label
	for _, id := range s.order {
		if l := s.labels[id]; l != nil {
			out = append(out, l)
		}
	}
	return out
}

// =============================================================================
// Adjacency
// =============================================================================

func (s *Scene) edgeList(ids []ID, keep func(*Edge) bool) []*Edge {
	var out []*Edge
	for _, id := range ids {
		if e := s.edges[id]; e != nil && keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// OutEdges returns edges leaving id, self-edges excluded.
func (s *Scene) OutEdges(id ID) []*Edge {
	return s.edgeList(s.out[id], func(e *Edge) bool { return !e.IsSelf() })
}

// InEdges returns edges entering id, self-edges excluded.
func (s *Scene) InEdges(id ID) []*Edge {
	return s.edgeList(s.in[id], func(e *Edge) bool { return !e.IsSelf() })
}

// SelfEdges returns edges from id to itself.
func (s *Scene) SelfEdges(id ID) []*Edge {
	return s.edgeList(s.out[id], (*Edge).IsSelf)
}

// IncidentEdges returns all edges touching id, each once.
func (s *Scene) IncidentEdges(id ID) []*Edge {
	out := s.OutEdges(id)
	out = append(out, s.InEdges(id)...)
	return append(out, s.SelfEdges(id)...)
}

// =============================================================================
// Ancestry
// =============================================================================

// parentOf returns the enclosing cluster of a node or cluster.
func (s *Scene) parentOf(id ID) ID {
	if n := s.Node(id); n != nil {
		return n.Parent
	}
	return ""
}

// Ancestors returns the enclosing clusters of id, nearest first.
func (s *Scene) Ancestors(id ID) []*Cluster {
	var out []*Cluster
	seen := map[ID]bool{id: true}
	for p := s.parentOf(id); p != ""; p = s.parentOf(p) {
		if seen[p] {
			gerrors.Invariant("cluster %q is its own ancestor", p)
		}
		seen[p] = true
		c := s.clusters[p]
		if c == nil {
			break
		}
		out = append(out, c)
	}
	return out
}

// IsAncestor reports whether cluster encloses id, directly or not.
func (s *Scene) IsAncestor(cluster, id ID) bool {
	for _, c := range s.Ancestors(id) {
		if c.ID == cluster {
			return true
		}
	}
	return false
}

// Descendants returns every node and cluster inside cluster, depth first.
func (s *Scene) Descendants(cluster ID) []ID {
	var out []ID
	var walk func(ID)
	walk = func(id ID) {
		c := s.clusters[id]
		if c == nil {
			return
		}
		for _, ch := range c.Children {
			out = append(out, ch)
			walk(ch)
		}
	}
	walk(cluster)
	return out
}

// Representative returns the node drawn for id: id itself, or its
// outermost collapsed ancestor when one hides it.
func (s *Scene) Representative(id ID) *Node {
	var rep *Node
	for _, c := range s.Ancestors(id) {
		if c.Collapsed {
			rep = &c.Node
		}
	}
	if rep != nil {
		return rep
	}
	return s.Node(id)
}

// CommonCluster returns the nearest cluster enclosing both a and b, or ""
// when only the scene root does.
func (s *Scene) CommonCluster(a, b ID) ID {
	anc := map[ID]bool{}
	for _, c := range s.Ancestors(a) {
		anc[c.ID] = true
	}
	for _, c := range s.Ancestors(b) {
		if anc[c.ID] {
			return c.ID
		}
	}
	return ""
}

// =============================================================================
// Visibility
// =============================================================================

// Visible reports whether the entity is currently shown. Labels follow
// their edge.
func (s *Scene) Visible(e Entity) bool {
	switch x := e.(type) {
	case *Node:
		return !x.Hidden
	case *Cluster:
		return !x.Hidden
	case *Edge:
		return !x.Hidden
	case *Label:
		if owner := s.edges[x.Owner]; owner != nil {
			return !owner.Hidden
		}
		return false
	}
	return false
}

// VisibleEntities returns visible entities in insertion order.
func (s *Scene) VisibleEntities() []Entity {
	var out []Entity
	for _, e := range s.Entities() {
		if s.Visible(e) {
			out = append(out, e)
		}
	}
	return out
}
