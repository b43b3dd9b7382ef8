// Package interact turns pointer events into editing gestures.
//
// A [Machine] receives button-down, move and button-up events carrying both
// scene and screen coordinates. It decides whether a press is a click or
// the start of a drag, opens the drag through the editor only once the
// pointer has travelled past a screen-space threshold, and feeds the editor
// the incremental delta of every later move.
//
//	Idle --down--> PotentialDrag --move past threshold--> Dragging | EditingCornerDrag
//	  ^                 |                                     |
//	  +------ up (click) +-----------------up (commit) --------+
//
// Edge insertion is a separate mode entered with [Machine.BeginEdgeInsertion]:
// a press on a node starts a rubber band from the resolved port, and the
// release commits an edge when it lands on another port.
//
// No undoable Action is opened for a click, and [Machine.Forget] abandons
// any gesture without leaving one half open.
package interact
