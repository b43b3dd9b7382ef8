package cli

import (
	"math"
	"strings"

	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/scene"
	"github.com/matzehuels/graphedit/pkg/session"
)

// ink selects the style of a canvas cell; later strokes overwrite earlier.
type ink uint8

const (
	inkNone ink = iota
	inkCluster
	inkEdge
	inkNode
	inkLabel
	inkSelected
	inkEdited
	inkCorner
	inkPreview
)

// cellAspect is the height of a terminal cell in units of its width.
const cellAspect = 2

// cellPixels approximate the device size of one cell, so the drag threshold
// is measured in pixels rather than cells.
const (
	cellPixelsX = 8
	cellPixelsY = cellPixelsX * cellAspect
)

// =============================================================================
// Viewport
// =============================================================================

// viewport maps terminal cells to scene coordinates. The scene is y-up,
// rows grow downwards.
type viewport struct {
	origin geom.Point // scene point at the top-left corner of cell (0,0)
	scale  float64    // scene units per column
}

// fitViewport shows box in cols×rows cells.
func fitViewport(box geom.Rect, cols, rows int) viewport {
	if box.IsEmpty() || cols <= 0 || rows <= 0 {
		return viewport{scale: 1}
	}
	scale := math.Max(box.Width()/float64(cols), box.Height()/float64(rows*cellAspect))
	if scale <= 0 {
		scale = 1
	}
	// Center the slack.
	w, h := float64(cols)*scale, float64(rows)*scale*cellAspect
	c := box.Center()
	return viewport{origin: geom.Pt(c.X-w/2, c.Y+h/2), scale: scale}
}

// toScene returns the scene point at the center of a cell.
func (v viewport) toScene(col, row int) geom.Point {
	return geom.Pt(
		v.origin.X+(float64(col)+0.5)*v.scale,
		v.origin.Y-(float64(row)+0.5)*v.scale*cellAspect,
	)
}

// toCell returns the cell containing p.
func (v viewport) toCell(p geom.Point) (col, row int) {
	col = int(math.Floor((p.X - v.origin.X) / v.scale))
	row = int(math.Floor((v.origin.Y - p.Y) / (v.scale * cellAspect)))
	return col, row
}

func (v viewport) pan(cols, rows int) viewport {
	v.origin = v.origin.Add(geom.Pt(float64(cols)*v.scale, -float64(rows)*v.scale*cellAspect))
	return v
}

// zoom scales by f keeping the scene point under (col,row) in place.
func (v viewport) zoom(f float64, col, row int) viewport {
	p := v.toScene(col, row)
	v.scale *= f
	q := v.toScene(col, row)
	v.origin = v.origin.Add(p.Sub(q))
	return v
}

// =============================================================================
// Canvas
// =============================================================================

type canvas struct {
	cols, rows int
	cells      []rune
	inks       []ink
	view       viewport
}

func newCanvas(cols, rows int, v viewport) *canvas {
	c := &canvas{cols: cols, rows: rows, view: v}
	c.cells = make([]rune, cols*rows)
	c.inks = make([]ink, cols*rows)
	for i := range c.cells {
		c.cells[i] = ' '
	}
	return c
}

func (c *canvas) set(col, row int, r rune, k ink) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.cells[row*c.cols+col] = r
	c.inks[row*c.cols+col] = k
}

func (c *canvas) at(col, row int) rune {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return 0
	}
	return c.cells[row*c.cols+col]
}

func (c *canvas) text(col, row int, s string, k ink) {
	for i, r := range []rune(s) {
		c.set(col+i, row, r, k)
	}
}

// line plots a..b in scene space.
func (c *canvas) line(a, b geom.Point, r rune, k ink) {
	c0, r0 := c.view.toCell(a)
	c1, r1 := c.view.toCell(b)
	n := max(abs(c1-c0), abs(r1-r0), 1)
	for i := 0; i <= n; i++ {
		p := geom.Lerp(a, b, float64(i)/float64(n))
		col, row := c.view.toCell(p)
		c.set(col, row, r, k)
	}
}

func (c *canvas) box(r geom.Rect, k ink) {
	c0, r0 := c.view.toCell(r.LeftTop())
	c1, r1 := c.view.toCell(r.RightBottom())
	if c1 <= c0 || r1 <= r0 {
		c.set(c0, r0, '■', k)
		return
	}
	for col := c0 + 1; col < c1; col++ {
		c.set(col, r0, '─', k)
		c.set(col, r1, '─', k)
	}
	for row := r0 + 1; row < r1; row++ {
		c.set(c0, row, '│', k)
		c.set(c1, row, '│', k)
	}
	c.set(c0, r0, '┌', k)
	c.set(c1, r0, '┐', k)
	c.set(c0, r1, '└', k)
	c.set(c1, r1, '┘', k)
}

func (c *canvas) polygon(p geom.Polygon, k ink) {
	if len(p) == 4 {
		c.box(p.Bounds(), k)
		return
	}
	for i := range p {
		a, b := p.Edge(i)
		c.line(a, b, '·', k)
	}
}

func (c *canvas) curve(cv *geom.Curve, r rune, k ink) {
	if cv.Empty() {
		return
	}
	pts, _ := cv.Flatten()
	for i := 1; i < len(pts); i++ {
		c.line(pts[i-1], pts[i], r, k)
	}
}

func (c *canvas) arrow(from, tip geom.Point, k ink) {
	d := tip.Sub(from)
	r := '>'
	switch {
	case math.Abs(d.Y) > math.Abs(d.X) && d.Y > 0:
		r = '^'
	case math.Abs(d.Y) > math.Abs(d.X):
		r = 'v'
	case d.X < 0:
		r = '<'
	}
	col, row := c.view.toCell(tip)
	c.set(col, row, r, k)
}

// label centers s within r's cells on its middle row.
func (c *canvas) label(r geom.Rect, s string, k ink) {
	c0, r0 := c.view.toCell(r.LeftTop())
	c1, r1 := c.view.toCell(r.RightBottom())
	width := c1 - c0 - 1
	rs := []rune(s)
	if width <= 0 || len(rs) == 0 {
		return
	}
	if len(rs) > width {
		rs = rs[:width]
	}
	c.text(c0+1+(width-len(rs))/2, (r0+r1)/2, string(rs), k)
}

// plain returns the canvas text without styles.
func (c *canvas) plain() string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		b.WriteString(string(c.cells[row*c.cols : (row+1)*c.cols]))
		if row < c.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// String renders the canvas with styles, one run per ink.
func (c *canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		line := c.cells[row*c.cols : (row+1)*c.cols]
		inks := c.inks[row*c.cols : (row+1)*c.cols]
		start := 0
		for i := 1; i <= len(line); i++ {
			if i == len(line) || inks[i] != inks[start] {
				b.WriteString(inkStyles[inks[start]].Render(string(line[start:i])))
				start = i
			}
		}
		if row < c.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// =============================================================================
// Scene Drawing
// =============================================================================

// drawScene paints the visible scene of s through v.
func drawScene(s *session.Session, v viewport, cols, rows int) *canvas {
	c := newCanvas(cols, rows, v)
	sc := s.Scene()
	m := s.Machine()
	edited := s.Editor().EditedEdge()
	pick := func(id scene.ID, k ink) ink {
		switch {
		case m.IsSelected(id):
			return inkSelected
		case id == edited:
			return inkEdited
		}
		return k
	}

	var nodes []*scene.Node
	var labels []*scene.Label
	for _, e := range sc.VisibleEntities() {
		switch x := e.(type) {
		case *scene.Cluster:
			if x.Collapsed {
				nodes = append(nodes, &x.Node)
				continue
			}
			k := pick(x.ID, inkCluster)
			c.box(x.BoundingBox(), k)
			col, row := v.toCell(x.BoundingBox().LeftTop())
			c.text(col+1, row, string(x.ID), k)
		case *scene.Edge:
			k := pick(x.ID, inkEdge)
			c.curve(x.Curve, '·', k)
			if !x.Curve.Empty() {
				if a := x.TargetArrow; a != nil {
					c.arrow(x.Curve.End(), a.Tip, k)
				}
				if a := x.SourceArrow; a != nil {
					c.arrow(x.Curve.Start(), a.Tip, k)
				}
			}
		case *scene.Node:
			nodes = append(nodes, x)
		case *scene.Label:
			labels = append(labels, x)
		}
	}
	for _, n := range nodes {
		k := pick(n.ID, inkNode)
		c.polygon(n.Boundary, k)
		name := n.Name
		if name == "" {
			name = string(n.ID)
		}
		if cl := sc.Cluster(n.ID); cl != nil && cl.Collapsed {
			name = "+" + name
		}
		c.label(n.BoundingBox(), name, k)
	}
	for _, l := range labels {
		k := pick(l.ID, inkLabel)
		col, row := v.toCell(l.Center)
		rs := []rune(l.Text)
		c.text(col-len(rs)/2, row, l.Text, k)
	}
	if e := sc.Edge(edited); e != nil && e.Polyline != nil {
		pts := e.Polyline.Points()
		for i := 1; i < len(pts)-1; i++ {
			col, row := v.toCell(pts[i])
			c.set(col, row, 'o', inkCorner)
		}
	}
	if r, ok := m.Preview(); ok {
		c.curve(r.Curve, '·', inkPreview)
	}
	return c
}
