// Package scene holds the geometric model being edited.
//
// A [Scene] owns four entity kinds: [Node], [Cluster] (a node with ordered
// children), [Edge] and [Label]. All four implement the sealed [Entity]
// interface; code that needs per-kind behaviour switches on the concrete
// type:
//
//	switch e := ent.(type) {
//	case *scene.Cluster:
//	case *scene.Node:
//	case *scene.Edge:
//	case *scene.Label:
//	}
//
// Ownership is top-down. Entities refer to each other by [ID] only: a node's
// Parent names its enclosing cluster, an edge names its endpoints, a label
// names its owning edge. The scene keeps adjacency and ancestry indexes.
//
// # Bounding boxes
//
// Every entity reports its own box. [Scene.EntityBox] also covers an edge's
// label. The scene box (Scene.Box) encloses everything visible plus
// Scene.Margin; [Scene.UpdateBoundingBox] grows it after a mutation and
// reports whether it grew.
package scene
