package gvroute

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/geom"
)

// Plain is a parsed Graphviz "plain" output. Coordinates and sizes are in
// points.
type Plain struct {
	Scale         float64
	Width, Height float64
	Nodes         []PlainNode
	Edges         []PlainEdge
}

// PlainNode is one "node" line.
type PlainNode struct {
	Name          string
	Center        geom.Point
	Width, Height float64
	Label         string
}

// PlainEdge is one "edge" line. Points are B-spline control points.
type PlainEdge struct {
	Tail, Head string
	Points     []geom.Point

	HasLabel bool
	Label    string
	LabelPos geom.Point
}

// Curve converts the control points to a chain of cubic segments, or to a
// polyline when their count is not 3k+1.
func (e PlainEdge) Curve() *geom.Curve {
	pts := e.Points
	if len(pts) < 2 {
		return nil
	}
	if (len(pts)-1)%3 != 0 {
		return geom.NewPolylineCurve(pts...)
	}
	c := &geom.Curve{}
	for i := 0; i+3 < len(pts); i += 3 {
		c.Add(geom.Cubic(pts[i], pts[i+1], pts[i+2], pts[i+3]))
	}
	return c
}

// ParsePlain parses Graphviz "plain" output:
//
//	graph scale width height
//	node name x y width height label style shape color fillcolor
//	edge tail head n x1 y1 .. xn yn [label xl yl] style color
//	stop
func ParsePlain(data []byte) (*Plain, error) {
	p := &Plain{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		f, err := fields(sc.Text())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "plain output line %d", line)
		}
		if len(f) == 0 {
			continue
		}
		bad := func(what string) error {
			return errors.New(errors.ErrCodeLayoutFailed, "plain output line %d: malformed %s", line, what)
		}
		switch f[0] {
		case "graph":
			v, ok := floats(f[1:], 3)
			if !ok {
				return nil, bad("graph")
			}
			p.Scale, p.Width, p.Height = v[0], v[1]*pointsPerInch, v[2]*pointsPerInch
		case "node":
			if len(f) < 7 {
				return nil, bad("node")
			}
			v, ok := floats(f[2:6], 4)
			if !ok {
				return nil, bad("node")
			}
			p.Nodes = append(p.Nodes, PlainNode{
				Name:   f[1],
				Center: geom.Pt(v[0]*pointsPerInch, v[1]*pointsPerInch),
				Width:  v[2] * pointsPerInch,
				Height: v[3] * pointsPerInch,
				Label:  f[6],
			})
		case "edge":
			e, ok := parseEdge(f)
			if !ok {
				return nil, bad("edge")
			}
			p.Edges = append(p.Edges, e)
		case "stop":
			return p, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "read plain output")
	}
	return p, nil
}

func parseEdge(f []string) (PlainEdge, bool) {
	if len(f) < 4 {
		return PlainEdge{}, false
	}
	e := PlainEdge{Tail: f[1], Head: f[2]}
	n, err := strconv.Atoi(f[3])
	if err != nil || n < 0 || len(f) < 4+2*n {
		return PlainEdge{}, false
	}
	v, ok := floats(f[4:4+2*n], 2*n)
	if !ok {
		return PlainEdge{}, false
	}
	for i := 0; i < n; i++ {
		e.Points = append(e.Points, geom.Pt(v[2*i]*pointsPerInch, v[2*i+1]*pointsPerInch))
	}
	// Remaining: [label xl yl] style color.
	rest := f[4+2*n:]
	if len(rest) >= 5 {
		lv, ok := floats(rest[1:3], 2)
		if !ok {
			return PlainEdge{}, false
		}
		e.HasLabel, e.Label = true, rest[0]
		e.LabelPos = geom.Pt(lv[0]*pointsPerInch, lv[1]*pointsPerInch)
	}
	return e, true
}

func floats(f []string, n int) ([]float64, bool) {
	if len(f) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i := range out {
		v, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// fields splits a plain line on blanks, keeping double-quoted strings
// together and unescaping them.
func fields(s string) ([]string, error) {
	var (
		out []string
		cur strings.Builder
		in  bool
		has bool
	)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case in && ch == '\\' && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
		case ch == '"':
			in = !in
			has = true
		case !in && (ch == ' ' || ch == '\t'):
			if has {
				out = append(out, cur.String())
				cur.Reset()
				has = false
			}
		default:
			cur.WriteByte(ch)
			has = true
		}
	}
	if in {
		return nil, errors.New(errors.ErrCodeLayoutFailed, "unterminated quote")
	}
	if has {
		out = append(out, cur.String())
	}
	return out, nil
}
