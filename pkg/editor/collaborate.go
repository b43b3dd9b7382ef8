package editor

import (
	"context"
	"time"

	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/observability"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/scene"
)

// guard runs fn, converting a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.FromPanic(r)
		}
	}()
	return fn()
}

// safeRouteAll calls the router and returns nil when it fails.
func (ed *Editor) safeRouteAll(ctx context.Context, ids []scene.ID, mode routing.Mode) map[scene.ID]routing.Route {
	hooks := observability.Routing()
	hooks.OnRouteStart(ctx, mode.String(), len(ids))
	start := time.Now()
	var routes map[scene.ID]routing.Route
	err := guard(func() error {
		var err error
		routes, err = ed.router.RouteAll(ctx, ed.scene, ids, mode)
		return err
	})
	hooks.OnRouteComplete(ctx, mode.String(), time.Since(start), err)
	if err != nil {
		ed.routeFailed(ctx, mode, err)
		return nil
	}
	return routes
}

// safeRouteToPort routes a new edge between two ports. The boolean is
// false when the router produced no route.
func (ed *Editor) safeRouteToPort(ctx context.Context, src, tgt routing.Port) (routing.Route, bool) {
	mode := ed.settings.Mode
	var r routing.Route
	err := guard(func() error {
		var err error
		r, err = ed.router.RouteToPort(ctx, ed.scene, src, tgt)
		return err
	})
	if err == nil && r.Curve.Empty() {
		err = routing.ErrNoRoute
	}
	if err != nil {
		ed.routeFailed(ctx, mode, err)
		return routing.Route{}, false
	}
	return r, true
}

func (ed *Editor) routeFailed(ctx context.Context, mode routing.Mode, err error) {
	observability.Routing().OnRouteFailure(ctx, mode.String(), err)
	ed.logger.Warnf("Routing (%s) produced no route: %v", mode, err)
}

// placeLabels asks the label placer for new centers and applies them.
func (ed *Editor) placeLabels(ctx context.Context, edges []scene.ID) {
	var centers map[scene.ID]geom.Point
	err := guard(func() error {
		var err error
		centers, err = ed.labels.PlaceLabels(ctx, ed.scene, edges)
		return err
	})
	if err != nil {
		ed.logger.Warnf("Label placement failed: %v", err)
		return
	}
	for _, id := range edges {
		e := ed.scene.Edge(id)
		if e == nil {
			continue
		}
		l := ed.scene.Label(e.Label)
		if l == nil {
			continue
		}
		c, ok := centers[l.ID]
		if !ok {
			continue
		}
		ed.touch(l)
		l.Translate(c.Sub(l.Center))
		l.Attach(e.Curve)
		ed.grow(l)
	}
}

// safeRelayout asks the relayout engine to lay out scope. It returns nil
// when no engine is configured or it fails.
func (ed *Editor) safeRelayout(ctx context.Context, scope scene.ID) *routing.Layout {
	if ed.relayout == nil {
		return nil
	}
	start := time.Now()
	var l *routing.Layout
	err := guard(func() error {
		var err error
		l, err = ed.relayout.Relayout(ctx, ed.scene, scope, ed.resolve)
		return err
	})
	observability.Routing().OnRelayout(ctx, string(scope), time.Since(start), err)
	if err != nil {
		ed.logger.Warnf("Relayout of %q failed: %v", scope, err)
		return nil
	}
	return l
}

// PreviewEdge routes the rubber band of an edge being drawn from src: to
// tgt when it is a valid port, to pt otherwise. The scene is not changed.
func (ed *Editor) PreviewEdge(ctx context.Context, src, tgt routing.Port, pt geom.Point) (routing.Route, bool) {
	var r routing.Route
	err := guard(func() error {
		var err error
		if tgt.Valid() {
			r, err = ed.router.RouteToPort(ctx, ed.scene, src, tgt)
		} else {
			r, err = ed.router.RouteToPoint(ctx, ed.scene, src, pt)
		}
		return err
	})
	if err != nil || r.Curve.Empty() {
		return routing.Route{}, false
	}
	return r, true
}
