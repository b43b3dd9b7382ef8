// Package gvroute routes edges and re-lays scopes with Graphviz.
//
// The [Backend] implements [routing.Router], [routing.LabelPlacer] and
// [routing.Relayouter] through github.com/goccy/go-graphviz. Routing pins
// every visible node at its current center (pos="x,y!" under neato) and
// asks Graphviz for splines only; relayout hands the visible children of a
// scope to an unpinned engine (dot by default) and recenters the result on
// the scope.
//
// Graphviz results are read from its "plain" output format, parsed by
// [ParsePlain]. Because that format carries no edge IDs, edges are matched
// back by endpoint pair in emission order.
//
// [LoadDOT] builds a scene from a DOT file, taking clusters and initial
// positions from Graphviz's "json" output.
//
// Outputs are cached by content hash when the backend has a [cache.Cache];
// the same pinned input always routes the same way, which makes undo and
// redo cycles cheap.
package gvroute
