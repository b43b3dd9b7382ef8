// Package editor is the drag and edit orchestrator of the editing core.
//
// An [Editor] turns high-level edit requests into scene mutations recorded
// in the undo log: moving a selection in one of four routing modes,
// editing the corners of an edge, inserting and removing edges and nodes,
// collapsing and expanding clusters.
//
// # Dragging
//
// A drag is a three-step protocol. [Editor.PrepareForObjectDragging]
// computes the drag sets from the marked entities and opens an Action;
// [Editor.Drag] applies one incremental delta; [Editor.EndDrag] commits.
// [Editor.Forget] abandons the gesture and restores the scene.
//
// The drag sets (see [CalculateDragSets]) separate entities that move
// rigidly from edges that have exactly one moving endpoint. Rigid entities
// are translated; the others are regenerated every tick by the routing mode:
//
//   - Straight: one straight segment per edge, bent sideways for parallel
//     edges by [FanOutOffsets].
//   - Spline and Rectilinear: every edge is re-routed through the
//     configured [routing.Router].
//   - Incremental: overlapping siblings are pushed aside, then edges are
//     regenerated as in Straight mode.
//
// Every mutation is preceded by a snapshot of the entity in the open
// Action, so Undo restores exactly the pre-gesture state.
//
// # Collaborators
//
// Routers, label placers and relayout engines return values; the Editor
// applies them. A collaborator that fails or panics is logged and treated
// as having produced no result.
package editor
