package session_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/interact"
	"github.com/matzehuels/graphedit/pkg/scene"
	"github.com/matzehuels/graphedit/pkg/session"
)

func Example() {
	ctx := context.Background()
	sc := scene.New(10, 10)
	_ = sc.AddNode(&scene.Node{ID: "A", Boundary: geom.RectPolygon(geom.Pt(0, 0), 10, 10)})
	_ = sc.AddNode(&scene.Node{ID: "B", Boundary: geom.RectPolygon(geom.Pt(100, 0), 10, 10)})
	_ = sc.AddEdge(&scene.Edge{ID: "ab", Source: "A", Target: "B"})
	sc.FitBoundingBox()

	s := session.New(sc, session.Options{})
	ev := func(x, y float64) interact.Event {
		return interact.Event{Point: geom.Pt(x, y), Screen: geom.Pt(x, y)}
	}
	_ = s.Pointer(ctx, session.Down, ev(0, 0))
	_ = s.Pointer(ctx, session.Move, ev(0, 40))
	_ = s.Pointer(ctx, session.Up, ev(0, 40))

	c := sc.Node("A").Center()
	fmt.Printf("dragged: (%.0f, %.0f)\n", c.X, c.Y)

	s.Undo(ctx)
	c = sc.Node("A").Center()
	fmt.Printf("undone: (%.0f, %.0f)\n", c.X, c.Y)
	// Output:
	// dragged: (0, 40)
	// undone: (0, 0)
}
