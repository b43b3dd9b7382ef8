// Package routing defines the routing and layout collaborators of the
// editor and ships a dependency-free straight-line implementation.
//
// A [Router] computes edge routes, a [LabelPlacer] positions edge labels and
// a [Relayouter] re-lays a cluster after collapse or expand. Collaborators
// never mutate the scene: they return [Route] values and positions, and the
// editor applies them after capturing undo snapshots.
//
// The package also holds the curve post-processing shared by every router:
// [Trim] clips a curve against its end node boundaries and makes room for
// arrowheads, and [MinimalCurve] synthesizes a small drawable curve when
// clipping fails.
//
// See package gvroute for the Graphviz-backed implementation.
package routing
