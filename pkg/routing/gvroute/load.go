package gvroute

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/scene"
)

// LoadOptions configures LoadDOT.
type LoadOptions struct {
	// Engine computes the initial layout; default "dot".
	Engine string

	Margin        float64
	ClusterMargin float64

	// FontSize estimates label boxes, which Graphviz does not report.
	FontSize float64

	Run Runner
}

// LoadDOT lays out a DOT graph and builds an editable scene from it.
// Subgraphs named cluster* become clusters; nodes keep their Graphviz
// names as IDs.
func LoadDOT(ctx context.Context, dot []byte, opts LoadOptions) (*scene.Scene, error) {
	if opts.Engine == "" {
		opts.Engine = "dot"
	}
	if opts.Run == nil {
		opts.Run = Graphviz
	}
	out, err := opts.Run(ctx, dot, opts.Engine, "json")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "graphviz %s", opts.Engine)
	}
	return SceneFromJSON(out, opts)
}

type jsonGraph struct {
	Directed bool         `json:"directed"`
	Objects  []jsonObject `json:"objects"`
	Edges    []jsonEdge   `json:"edges"`
}

type jsonObject struct {
	ID     int    `json:"_gvid"`
	Name   string `json:"name"`
	BB     string `json:"bb"`
	Nodes  []int  `json:"nodes"`
	Pos    string `json:"pos"`
	Width  string `json:"width"`
	Height string `json:"height"`
	Shape  string `json:"shape"`
}

func (o jsonObject) isNode() bool { return o.BB == "" && o.Nodes == nil }

type jsonEdge struct {
	ID    int    `json:"_gvid"`
	Name  string `json:"id"`
	Tail  int    `json:"tail"`
	Head  int    `json:"head"`
	Pos   string `json:"pos"`
	Label string `json:"label"`
	LP    string `json:"lp"`
}

// SceneFromJSON builds a scene from Graphviz "json" output.
func SceneFromJSON(data []byte, opts LoadOptions) (*scene.Scene, error) {
	var g jsonGraph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse graphviz json")
	}
	if opts.FontSize == 0 {
		opts.FontSize = 14
	}
	s := scene.New(opts.Margin, opts.ClusterMargin)

	type cluster struct {
		obj  jsonObject
		box  geom.Rect
		area float64
	}
	var clusters []cluster
	names := make(map[int]string)
	for _, o := range g.Objects {
		if o.isNode() {
			names[o.ID] = o.Name
			continue
		}
		if o.BB == "" || !strings.HasPrefix(o.Name, "cluster") {
			continue
		}
		box, err := parseBB(o.BB)
		if err != nil {
			return nil, err
		}
		clusters = append(clusters, cluster{obj: o, box: box, area: box.Width() * box.Height()})
	}
	// Outermost first, so parents exist before their children.
	slices.SortStableFunc(clusters, func(a, b cluster) int { return cmp.Compare(b.area, a.area) })

	// parentOf picks the smallest cluster enclosing box among the first n.
	parentOf := func(box geom.Rect, n int) scene.ID {
		for i := n - 1; i >= 0; i-- {
			if clusters[i].box.ContainsRect(box) {
				return scene.ID(clusters[i].obj.Name)
			}
		}
		return ""
	}
	nodeParent := make(map[int]scene.ID)
	for i, c := range clusters {
		corners := c.box.Corners()
		sc := &scene.Cluster{Node: scene.Node{
			ID:       scene.ID(c.obj.Name),
			Parent:   parentOf(c.box, i),
			Boundary: geom.Polygon(corners[:]).Clone(),
		}}
		if err := s.AddCluster(sc); err != nil {
			return nil, fmt.Errorf("cluster %q: %w", c.obj.Name, err)
		}
		for _, id := range c.obj.Nodes {
			nodeParent[id] = sc.ID
		}
	}

	for _, o := range g.Objects {
		if !o.isNode() {
			continue
		}
		c, err := parsePoint(o.Pos)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", o.Name, err)
		}
		w, _ := strconv.ParseFloat(o.Width, 64)
		h, _ := strconv.ParseFloat(o.Height, 64)
		n := &scene.Node{
			ID:       scene.ID(o.Name),
			Parent:   nodeParent[o.ID],
			Boundary: shape(o.Shape, c, w*pointsPerInch, h*pointsPerInch),
		}
		if err := s.AddNode(n); err != nil {
			return nil, fmt.Errorf("node %q: %w", o.Name, err)
		}
	}

	for _, je := range g.Edges {
		id := scene.ID(je.Name)
		if id == "" {
			id = scene.ID(fmt.Sprintf("e%d", je.ID))
		}
		e := &scene.Edge{
			ID:        id,
			Source:    scene.ID(names[je.Tail]),
			Target:    scene.ID(names[je.Head]),
			LineWidth: 1,
		}
		route, tip, hasTip, err := parseSpline(je.Pos)
		if err != nil {
			return nil, fmt.Errorf("edge %q: %w", id, err)
		}
		e.Curve = route
		if g.Directed && hasTip && !route.Empty() {
			e.TargetArrow = &scene.Arrowhead{Tip: tip, Length: route.End().Dist(tip)}
		}
		if err := s.AddEdge(e); err != nil {
			return nil, fmt.Errorf("edge %q: %w", id, err)
		}
		if je.Label == "" {
			continue
		}
		l := &scene.Label{
			ID:     id + ".label",
			Owner:  id,
			Text:   je.Label,
			Width:  0.6 * opts.FontSize * float64(len(je.Label)),
			Height: 1.3 * opts.FontSize,
		}
		if l.Center, err = parsePoint(je.LP); err != nil && !route.Empty() {
			l.Center = routing.LabelBeside(route, l.Width, l.Height)
		}
		if err := s.AddLabel(l); err != nil {
			return nil, fmt.Errorf("label of %q: %w", id, err)
		}
		l.Attach(e.Curve)
	}
	s.FitBoundingBox()
	return s, nil
}

func shape(name string, c geom.Point, w, h float64) geom.Polygon {
	switch name {
	case "box", "rect", "rectangle", "square", "plaintext", "plain", "none", "record", "Mrecord":
		return geom.RectPolygon(c, w, h)
	}
	return geom.EllipsePolygon(c, w, h, 24)
}

func parsePoint(s string) (geom.Point, error) {
	x, y, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Point{}, errors.New(errors.ErrCodeInvalidInput, "bad point %q", s)
	}
	px, err1 := strconv.ParseFloat(x, 64)
	py, err2 := strconv.ParseFloat(strings.TrimSuffix(y, "!"), 64)
	if err1 != nil || err2 != nil {
		return geom.Point{}, errors.New(errors.ErrCodeInvalidInput, "bad point %q", s)
	}
	return geom.Pt(px, py), nil
}

func parseBB(s string) (geom.Rect, error) {
	f := strings.Split(s, ",")
	if len(f) != 4 {
		return geom.Rect{}, errors.New(errors.ErrCodeInvalidInput, "bad bounding box %q", s)
	}
	v, ok := floats(f, 4)
	if !ok {
		return geom.Rect{}, errors.New(errors.ErrCodeInvalidInput, "bad bounding box %q", s)
	}
	return geom.Rect{Min: geom.Pt(v[0], v[1]), Max: geom.Pt(v[2], v[3])}, nil
}

// parseSpline reads an edge pos attribute: optional "s,x,y" and "e,x,y"
// arrow endpoints followed by 3k+1 B-spline control points. Only the end
// arrow is reported.
func parseSpline(s string) (c *geom.Curve, tip geom.Point, hasTip bool, err error) {
	var pts []geom.Point
	for _, f := range strings.Fields(s) {
		switch {
		case strings.HasPrefix(f, "e,"):
			if tip, err = parsePoint(f[2:]); err != nil {
				return nil, tip, false, err
			}
			hasTip = true
		case strings.HasPrefix(f, "s,"):
		default:
			p, err := parsePoint(f)
			if err != nil {
				return nil, tip, false, err
			}
			pts = append(pts, p)
		}
	}
	return PlainEdge{Points: pts}.Curve(), tip, hasTip, nil
}
