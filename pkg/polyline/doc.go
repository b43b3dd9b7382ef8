// Package polyline holds the user-editable corner sequence of an edge.
//
// A [Polyline] is an arena of [Site] values addressed by [Handle]. The
// previous/next links are handles rather than pointers, so a Polyline can be
// cloned by value for undo snapshots and an unlinked Site keeps its slot,
// letting redo relink the very same Site.
//
// The first and last Sites are sentinels standing for the source and target
// attachment points. They can be moved but never unlinked; [Polyline.Unlink]
// on a sentinel is an invariant violation.
//
// [Polyline.Curve] derives the drawable curve: every interior Site becomes a
// cubic Bezier corner shaped by its fit coefficients, and consecutive corners
// are joined with straight segments.
package polyline
