// Package pkg provides the libraries behind graphedit, an interactive editor
// for laid-out graphs.
//
// # Overview
//
// A graph arrives already laid out (by Graphviz) as a scene of nodes,
// clusters, edges and labels. The user then drags things around; every
// gesture becomes one undoable Action, and the edges touched are rerouted
// as the drag goes. The pkg directory is organized into four areas:
//
//  1. [scene], [geom], [polyline] - the entity model and its geometry
//  2. [history], [editor], [interact], [hittest] - editing: undo/redo, the
//     drag orchestrator, the pointer state machine and picking
//  3. [routing] - collaborator interfaces plus the built-in straight router;
//     [routing/gvroute] implements them on top of Graphviz
//  4. [session], [viewer] - the public entry point and change notification
//
// # Architecture
//
// The flow of one gesture:
//
//	pointer event
//	     ↓
//	[interact] state machine (click, drag, corner edit, edge insertion)
//	     ↓
//	[editor] orchestrator (drag sets, fan-out, rerouting, bounds)
//	     ↓
//	[history] Action (first-touch snapshots)  +  [viewer] queued events
//	     ↓
//	[session] flushes notifications to the hit-test index and viewers
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/graphedit/pkg/routing/gvroute"
//	    "github.com/matzehuels/graphedit/pkg/session"
//	)
//
//	sc, _ := gvroute.LoadDOT(ctx, dot, gvroute.LoadOptions{})
//	backend := gvroute.New(gvroute.Options{})
//	s := session.New(sc, session.Options{Router: backend, Labels: backend, Relayout: backend})
//
//	s.Pointer(ctx, session.Down, ev)
//	s.Pointer(ctx, session.Move, ev2)
//	s.Pointer(ctx, session.Up, ev2)
//	s.Undo(ctx)
//
// # Supporting Packages
//
// [config] loads TOML settings, [cache] stores Graphviz output between runs,
// [errors] carries error codes through the CLI, [observability] exposes
// hooks for edits, routing and caching, and [buildinfo] holds version
// strings set at link time.
package pkg
