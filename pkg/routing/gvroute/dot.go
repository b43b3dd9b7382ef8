package gvroute

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/scene"
)

// pointsPerInch converts scene units, taken as points, to Graphviz inches.
const pointsPerInch = 72

// Spec is the graph handed to Graphviz.
type Spec struct {
	// Attrs are graph attributes, written in key order.
	Attrs map[string]string

	// Pinned fixes every node at its Center.
	Pinned bool

	Nodes []SpecNode
	Edges []SpecEdge
}

// SpecNode is a fixed-size box.
type SpecNode struct {
	ID            scene.ID
	Center        geom.Point
	Width, Height float64
}

// SpecEdge connects two spec nodes. Label, when set, asks Graphviz for a
// label position.
type SpecEdge struct {
	ID, Tail, Head scene.ID
	Label          string
}

// BuildDOT writes spec as a DOT digraph.
func BuildDOT(spec Spec) []byte {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	for _, k := range slices.Sorted(maps.Keys(spec.Attrs)) {
		fmt.Fprintf(&buf, "  %s=%q;\n", k, spec.Attrs[k])
	}
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("  edge [dir=none];\n")
	for _, n := range spec.Nodes {
		fmt.Fprintf(&buf, "  %q [width=%s, height=%s", string(n.ID), num(n.Width/pointsPerInch), num(n.Height/pointsPerInch))
		if spec.Pinned {
			fmt.Fprintf(&buf, ", pos=\"%s,%s!\"", num(n.Center.X), num(n.Center.Y))
		}
		buf.WriteString("];\n")
	}
	for _, e := range spec.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [id=%q", string(e.Tail), string(e.Head), string(e.ID))
		if e.Label != "" {
			fmt.Fprintf(&buf, ", label=%q", e.Label)
		}
		buf.WriteString("];\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// splines maps a routing mode to the Graphviz splines attribute.
func splines(m routing.Mode) string {
	switch m {
	case routing.ModeRectilinear:
		return "ortho"
	case routing.ModeSpline:
		return "spline"
	}
	return "line"
}

// routingSpec pins every visible node and collapsed cluster of s and adds
// the given edges between their drawn representatives.
func routingSpec(s *scene.Scene, ids []scene.ID, mode routing.Mode) Spec {
	spec := Spec{
		Pinned: true,
		Attrs: map[string]string{
			"inputscale":  "72",
			"notranslate": "true",
			"overlap":     "true",
			"splines":     splines(mode),
		},
	}
	for _, e := range s.VisibleEntities() {
		var n *scene.Node
		switch x := e.(type) {
		case *scene.Node:
			n = x
		case *scene.Cluster:
			if x.Collapsed {
				n = &x.Node
			}
		}
		if n != nil {
			spec.Nodes = append(spec.Nodes, specNode(n))
		}
	}
	for _, id := range ids {
		e := s.Edge(id)
		if e == nil || e.Hidden {
			continue
		}
		src, tgt := s.Representative(e.Source), s.Representative(e.Target)
		if src == nil || tgt == nil {
			continue
		}
		spec.Edges = append(spec.Edges, SpecEdge{ID: e.ID, Tail: src.ID, Head: tgt.ID})
	}
	return spec
}

func specNode(n *scene.Node) SpecNode {
	return SpecNode{ID: n.ID, Center: n.Center(), Width: n.Width(), Height: n.Height()}
}

// pinOffset is the translation from Graphviz coordinates back to the scene,
// averaged over the pinned nodes.
func pinOffset(spec Spec, p *Plain) geom.Point {
	at := make(map[string]geom.Point, len(p.Nodes))
	for _, n := range p.Nodes {
		at[n.Name] = n.Center
	}
	var sum geom.Point
	k := 0
	for _, n := range spec.Nodes {
		if c, ok := at[string(n.ID)]; ok {
			sum = sum.Add(n.Center.Sub(c))
			k++
		}
	}
	if k == 0 {
		return geom.Point{}
	}
	return sum.Mul(1 / float64(k))
}

// matchEdges pairs the edges of p with those of spec by endpoints, in
// emission order.
func matchEdges(spec Spec, p *Plain) map[scene.ID]PlainEdge {
	queues := make(map[[2]string][]scene.ID)
	for _, e := range spec.Edges {
		k := [2]string{string(e.Tail), string(e.Head)}
		queues[k] = append(queues[k], e.ID)
	}
	out := make(map[scene.ID]PlainEdge, len(spec.Edges))
	for _, pe := range p.Edges {
		k := [2]string{pe.Tail, pe.Head}
		q := queues[k]
		if len(q) == 0 {
			continue
		}
		out[q[0]] = pe
		queues[k] = q[1:]
	}
	return out
}
