// Package geom provides the planar geometry used by the editing core.
//
// The package is deliberately small: points and vectors ([Point]), axis-aligned
// boxes ([Rect]), piecewise curves made of line and cubic Bezier segments
// ([Curve]), and closed polygonal boundaries ([Polygon]) for node shapes.
//
// Coordinates are in graph space with the y axis pointing up. Curve parameters
// are global: a value t in [0, n] addresses segment floor(t) at local parameter
// t-floor(t), so [Curve.At] and [Curve.ClosestParameter] agree across segment
// boundaries.
//
// # Empty boxes
//
// [EmptyRect] is the identity for [Rect.Union]. It is a genuinely empty box and
// never doubles as a "needs recompute" marker; callers that defer box
// computation track that state explicitly.
package geom
