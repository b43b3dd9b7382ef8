// Package hittest answers "which entity is under this point" over a scene.
//
// [Build] tessellates every visible entity into boxed primitives (one box for
// nodes, clusters and labels, one thick segment per flattened curve chord for
// edges) and builds a bounding-volume hierarchy by recursive median splits
// along the longer axis.
//
// After an edit, [Index.Invalidate] rebuilds only the edited entity's subtree
// and marks its ancestors pending. Pending boxes are recomputed bottom-up by
// the next query before it descends, so queries never see stale boxes while
// edits stay cheap.
package hittest
