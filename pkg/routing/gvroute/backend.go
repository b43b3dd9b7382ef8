package gvroute

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/graphedit/pkg/cache"
	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/scene"
)

// Runner lays out dot with engine and renders it in format.
type Runner func(ctx context.Context, dot []byte, engine, format string) ([]byte, error)

// Graphviz is the Runner backed by go-graphviz.
func Graphviz(ctx context.Context, dot []byte, engine, format string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(dot)
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	gv.SetLayout(graphviz.Layout(engine))
	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.Format(format), &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// Options configures a Backend. Zero values get defaults.
type Options struct {
	// Engine routes with every node pinned; it must honour pos="x,y!".
	Engine string

	// RelayoutEngine re-lays a scope.
	RelayoutEngine string

	// PortMode is the mode used by RouteToPort.
	PortMode routing.Mode

	Cache    cache.Cache
	CacheTTL time.Duration

	Straight routing.Options
	Logger   *log.Logger
	Run      Runner
}

// Backend is a Graphviz-driven router and relayouter.
type Backend struct {
	engine   string
	relayout string
	portMode routing.Mode
	cache    cache.Cache
	ttl      time.Duration
	straight *routing.StraightRouter
	logger   *log.Logger
	run      Runner
}

var (
	_ routing.Router      = (*Backend)(nil)
	_ routing.LabelPlacer = (*Backend)(nil)
	_ routing.Relayouter  = (*Backend)(nil)
)

// New creates a Backend.
func New(opts Options) *Backend {
	b := &Backend{
		engine:   opts.Engine,
		relayout: opts.RelayoutEngine,
		portMode: opts.PortMode,
		cache:    opts.Cache,
		ttl:      opts.CacheTTL,
		logger:   opts.Logger,
		run:      opts.Run,
	}
	if b.engine == "" {
		b.engine = "neato"
	}
	if b.relayout == "" {
		b.relayout = "dot"
	}
	if b.portMode == routing.ModeStraight {
		b.portMode = routing.ModeSpline
	}
	if b.cache == nil {
		b.cache = cache.NullCache{}
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}
	if b.run == nil {
		b.run = Graphviz
	}
	if opts.Straight == (routing.Options{}) {
		opts.Straight = routing.DefaultOptions()
	}
	b.straight = routing.NewStraightRouter(opts.Straight)
	return b
}

// layout runs spec through engine, consulting the cache first.
func (b *Backend) layout(ctx context.Context, spec Spec, engine string) (*Plain, error) {
	dot := BuildDOT(spec)
	key := cache.LayoutKey(engine+"/plain", dot)
	out, hit, err := b.cache.Get(ctx, key)
	if err != nil {
		b.logger.Warnf("Layout cache read failed: %v", err)
	}
	if !hit {
		start := time.Now()
		if out, err = b.run(ctx, dot, engine, "plain"); err != nil {
			return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "graphviz %s", engine)
		}
		b.logger.Debugf("Graphviz %s: %d nodes, %d edges in %v", engine, len(spec.Nodes), len(spec.Edges), time.Since(start))
		if err := b.cache.Set(ctx, key, out, b.ttl); err != nil {
			b.logger.Warnf("Layout cache write failed: %v", err)
		}
	}
	return ParsePlain(out)
}

// =============================================================================
// Routing
// =============================================================================

// RouteAll routes ids, or every visible edge when ids is empty. Straight
// and incremental modes use the built-in straight router.
func (b *Backend) RouteAll(ctx context.Context, s *scene.Scene, ids []scene.ID, mode routing.Mode) (map[scene.ID]routing.Route, error) {
	if mode == routing.ModeStraight || mode == routing.ModeIncremental {
		return b.straight.RouteAll(ctx, s, ids, mode)
	}
	if len(ids) == 0 {
		for _, e := range s.Edges() {
			if !e.Hidden {
				ids = append(ids, e.ID)
			}
		}
	}
	spec := routingSpec(s, ids, mode)
	if len(spec.Edges) == 0 {
		return map[scene.ID]routing.Route{}, nil
	}
	p, err := b.layout(ctx, spec, b.engine)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRoutingFailed, err, "route %d edges", len(spec.Edges))
	}
	return routes(spec, p, pinOffset(spec, p)), nil
}

func routes(spec Spec, p *Plain, off geom.Point) map[scene.ID]routing.Route {
	out := make(map[scene.ID]routing.Route, len(spec.Edges))
	for id, pe := range matchEdges(spec, p) {
		c := pe.Curve()
		if c.Empty() {
			continue
		}
		c.Translate(off)
		out[id] = routing.Route{Curve: c}
	}
	return out
}

// RouteToPoint draws the rubber band of an edge being inserted. It runs on
// every pointer move, so it stays straight.
func (b *Backend) RouteToPoint(ctx context.Context, s *scene.Scene, source routing.Port, target geom.Point) (routing.Route, error) {
	return b.straight.RouteToPoint(ctx, s, source, target)
}

// RouteToPort routes a prospective edge between two ports around the pinned
// scene.
func (b *Backend) RouteToPort(ctx context.Context, s *scene.Scene, source, target routing.Port) (routing.Route, error) {
	src, tgt := s.Representative(source.Node), s.Representative(target.Node)
	if src == nil || tgt == nil {
		return routing.Route{}, routing.ErrNoRoute
	}
	spec := routingSpec(s, nil, b.portMode)
	const probe = scene.ID("probe")
	spec.Edges = []SpecEdge{{ID: probe, Tail: src.ID, Head: tgt.ID}}
	p, err := b.layout(ctx, spec, b.engine)
	if err != nil {
		return routing.Route{}, errors.Wrap(errors.ErrCodeRoutingFailed, err, "route %s -> %s", src.ID, tgt.ID)
	}
	r, ok := routes(spec, p, pinOffset(spec, p))[probe]
	if !ok {
		return routing.Route{}, routing.ErrNoRoute
	}
	return r, nil
}

// PlaceLabels puts labels beside their current curves. Graphviz would
// reroute the edges to place labels, so the built-in placement is used.
func (b *Backend) PlaceLabels(ctx context.Context, s *scene.Scene, edges []scene.ID) (map[scene.ID]geom.Point, error) {
	return b.straight.PlaceLabels(ctx, s, edges)
}

// =============================================================================
// Relayout
// =============================================================================

// Relayout re-lays the visible children of scope with the relayout engine
// and recenters the result on the scope's current center.
func (b *Backend) Relayout(ctx context.Context, s *scene.Scene, scope scene.ID, resolve routing.SettingsResolver) (*routing.Layout, error) {
	settings := routing.LayoutSettings{}
	if resolve != nil {
		settings = resolve(scope)
	}
	engine := settings.Engine
	if engine == "" {
		engine = b.relayout
	}

	children, center := scopeChildren(s, scope)
	if len(children) == 0 {
		return &routing.Layout{}, nil
	}
	spec := Spec{Attrs: map[string]string{"splines": "spline"}}
	if sep := settings.NodeSeparation; sep > 0 {
		spec.Attrs["nodesep"] = num(sep / pointsPerInch)
		spec.Attrs["ranksep"] = num(2 * sep / pointsPerInch)
	}
	child := make(map[scene.ID]bool, len(children))
	for _, n := range children {
		spec.Nodes = append(spec.Nodes, specNode(n))
		child[n.ID] = true
	}
	// direct marks edges whose both drawn ends are children; only their
	// routes are meaningful in scene space.
	direct := make(map[scene.ID]bool)
	for _, e := range s.Edges() {
		if e.Hidden {
			continue
		}
		tail, head := childOf(s, scope, e.Source), childOf(s, scope, e.Target)
		if !child[tail] || !child[head] || (tail == head && !e.IsSelf()) {
			continue
		}
		spec.Edges = append(spec.Edges, SpecEdge{ID: e.ID, Tail: tail, Head: head})
		if tail == s.Representative(e.Source).ID && head == s.Representative(e.Target).ID {
			direct[e.ID] = true
		}
	}

	p, err := b.layout(ctx, spec, engine)
	if err != nil {
		return nil, err
	}

	box := geom.EmptyRect()
	for _, n := range p.Nodes {
		box = box.Union(geom.RectAround(n.Center, n.Width, n.Height))
	}
	off := center.Sub(box.Center())

	l := &routing.Layout{
		Nodes:    make(map[scene.ID]geom.Point),
		Clusters: make(map[scene.ID]geom.Rect),
		Edges:    make(map[scene.ID]routing.Route),
	}
	for _, pn := range p.Nodes {
		id := scene.ID(pn.Name)
		c := pn.Center.Add(off)
		if cl := s.Cluster(id); cl != nil {
			l.Clusters[id] = geom.RectAround(c, cl.Width(), cl.Height())
		} else if s.Node(id) != nil {
			l.Nodes[id] = c
		}
	}
	for id, r := range routes(spec, p, off) {
		if direct[id] {
			l.Edges[id] = r
		}
	}
	return l, nil
}

// scopeChildren returns the visible direct children of scope as boxes and
// the point the relayout is centered on.
func scopeChildren(s *scene.Scene, scope scene.ID) ([]*scene.Node, geom.Point) {
	var out []*scene.Node
	box := geom.EmptyRect()
	add := func(n *scene.Node) {
		if n != nil && !n.Hidden {
			out = append(out, n)
			box = box.Union(n.BoundingBox())
		}
	}
	if c := s.Cluster(scope); c != nil {
		for _, id := range c.Children {
			add(s.Node(id))
		}
		return out, c.Center()
	}
	for _, n := range s.Nodes() {
		if n.Parent == "" {
			add(n)
		}
	}
	for _, c := range s.Clusters() {
		if c.Parent == "" {
			add(&c.Node)
		}
	}
	return out, box.Center()
}

// childOf returns the direct child of scope that contains id, or "".
func childOf(s *scene.Scene, scope, id scene.ID) scene.ID {
	cur := id
	for {
		n := s.Node(cur)
		if n == nil {
			return ""
		}
		if n.Parent == scope {
			return cur
		}
		if n.Parent == "" {
			return ""
		}
		cur = n.Parent
	}
}
