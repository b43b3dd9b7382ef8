package interact

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphedit/pkg/editor"
	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/polyline"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/scene"
)

// =============================================================================
// Events
// =============================================================================

// Button identifies a pointer button.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Modifiers is a set of held keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

// Has reports whether every key in k is held.
func (m Modifiers) Has(k Modifiers) bool { return m&k == k }

// Event is one pointer event. Point is in scene coordinates; Screen is in
// device coordinates and only used for the drag threshold.
type Event struct {
	Point  geom.Point
	Screen geom.Point
	Button Button
	Mods   Modifiers
}

// State is the machine's current phase.
type State uint8

const (
	StateIdle State = iota
	StatePotentialDrag
	StateDragging
	StateEditingCornerDrag
	StateAwaitingSource
	StateDrawingToTarget
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePotentialDrag:
		return "potential-drag"
	case StateDragging:
		return "dragging"
	case StateEditingCornerDrag:
		return "corner-drag"
	case StateAwaitingSource:
		return "awaiting-source"
	case StateDrawingToTarget:
		return "drawing-to-target"
	}
	return "unknown"
}

// Picker finds the entity under a point. keep, when non-nil, restricts
// the candidates.
type Picker interface {
	Pick(pt geom.Point, keep func(scene.ID) bool) (scene.ID, bool)
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(pt geom.Point, keep func(scene.ID) bool) (scene.ID, bool)

func (f PickerFunc) Pick(pt geom.Point, keep func(scene.ID) bool) (scene.ID, bool) {
	return f(pt, keep)
}

// Config tunes the machine.
type Config struct {
	// DragThreshold is the screen distance a press must travel to become a drag.
	DragThreshold float64

	// CornerRadius, SnapFactor and StrokeWidth size the port snapping
	// band; see SnapTolerance.
	CornerRadius float64
	SnapFactor   float64
	StrokeWidth  float64

	Logger *log.Logger
}

// DefaultConfig returns the built-in tuning.
func DefaultConfig() Config {
	return Config{DragThreshold: 2, CornerRadius: 3, SnapFactor: 2, StrokeWidth: 1}
}

// SnapTolerance is the distance within which a pointer snaps to a node
// boundary.
func (c Config) SnapTolerance() float64 {
	return c.SnapFactor*c.CornerRadius + c.StrokeWidth/2
}

// =============================================================================
// Machine
// =============================================================================

// Machine is the pointer interaction state machine of one editing session.
type Machine struct {
	ed     *editor.Editor
	pick   Picker
	cfg    Config
	logger *log.Logger

	state     State
	selection []scene.ID
	selected  map[scene.ID]bool

	press     Event
	last      geom.Point
	crossed   bool
	candidate scene.ID
	corner    polyline.Handle

	inserting bool
	source    routing.Port
	target    routing.Port
	preview   routing.Route
	previewOK bool
}

// New creates a Machine driving ed.
func New(ed *editor.Editor, pick Picker, cfg Config) *Machine {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	return &Machine{
		ed:       ed,
		pick:     pick,
		cfg:      cfg,
		logger:   cfg.Logger,
		selected: make(map[scene.ID]bool),
		corner:   polyline.Nil,
	}
}

// State returns the current phase.
func (m *Machine) State() State { return m.state }

// Selection returns the selected entities in selection order.
func (m *Machine) Selection() []scene.ID { return append([]scene.ID(nil), m.selection...) }

// IsSelected reports whether id is selected.
func (m *Machine) IsSelected(id scene.ID) bool { return m.selected[id] }

// Select replaces the selection.
func (m *Machine) Select(ids ...scene.ID) {
	m.ClearSelection()
	for _, id := range ids {
		m.add(id)
	}
}

// ClearSelection deselects everything.
func (m *Machine) ClearSelection() {
	m.selection = nil
	m.selected = make(map[scene.ID]bool)
}

func (m *Machine) add(id scene.ID) {
	if !m.selected[id] {
		m.selected[id] = true
		m.selection = append(m.selection, id)
	}
}

func (m *Machine) toggle(id scene.ID) {
	if !m.selected[id] {
		m.add(id)
		return
	}
	delete(m.selected, id)
	for i, x := range m.selection {
		if x == id {
			m.selection = append(m.selection[:i], m.selection[i+1:]...)
			break
		}
	}
}

// BeginEdgeInsertion enters edge-insertion mode.
func (m *Machine) BeginEdgeInsertion(ctx context.Context) {
	m.Forget(ctx)
	m.inserting = true
	m.state = StateAwaitingSource
}

// EndEdgeInsertion leaves edge-insertion mode.
func (m *Machine) EndEdgeInsertion(ctx context.Context) {
	m.inserting = false
	m.Forget(ctx)
}

// SetInsertingEdges switches edge-insertion mode on or off.
func (m *Machine) SetInsertingEdges(ctx context.Context, on bool) {
	if on {
		m.BeginEdgeInsertion(ctx)
		return
	}
	m.EndEdgeInsertion(ctx)
}

// Inserting reports whether edge-insertion mode is on.
func (m *Machine) Inserting() bool { return m.inserting }

// Preview returns the rubber band of the edge being drawn.
func (m *Machine) Preview() (routing.Route, bool) { return m.preview, m.previewOK }

// Ports returns the resolved source and target of the edge being drawn.
func (m *Machine) Ports() (source, target routing.Port) { return m.source, m.target }

// Forget abandons the current gesture, rolling back any open drag.
func (m *Machine) Forget(ctx context.Context) {
	if m.state == StateDragging || m.state == StateEditingCornerDrag {
		m.ed.Forget(ctx)
	}
	m.reset()
}

// Interrupt drops the current gesture without touching the editor. It is
// used after an outside operation has already closed the gesture.
func (m *Machine) Interrupt() { m.reset() }

func (m *Machine) reset() {
	m.crossed = false
	m.candidate = ""
	m.corner = polyline.Nil
	m.source, m.target = routing.Port{}, routing.Port{}
	m.preview, m.previewOK = routing.Route{}, false
	if m.inserting {
		m.state = StateAwaitingSource
	} else {
		m.state = StateIdle
	}
}

// =============================================================================
// Events
// =============================================================================

// Down handles a button press.
func (m *Machine) Down(ctx context.Context, ev Event) error {
	switch m.state {
	case StateAwaitingSource:
		if ev.Button != ButtonLeft {
			return nil
		}
		p := m.portAt(ev.Point)
		if !p.Valid() {
			return nil
		}
		m.source = p
		m.press = ev
		m.state = StateDrawingToTarget
		return nil
	case StateIdle:
	default:
		return nil
	}

	m.press = ev
	m.last = ev.Point
	m.crossed = false
	m.corner = polyline.Nil
	m.candidate, _ = m.pick.Pick(ev.Point, nil)
	if edited := m.ed.EditedEdge(); edited != "" && ev.Button == ButtonLeft {
		if h, ok := m.ed.CornerAt(ev.Point); ok {
			m.corner = h
			m.candidate = edited
		}
	}
	m.state = StatePotentialDrag
	return nil
}

// Move handles pointer motion.
func (m *Machine) Move(ctx context.Context, ev Event) error {
	switch m.state {
	case StatePotentialDrag:
		if m.crossed || m.press.Button != ButtonLeft || ev.Screen.Dist(m.press.Screen) < m.cfg.DragThreshold {
			return nil
		}
		m.crossed = true
		if err := m.startDrag(ctx); err != nil || m.state == StatePotentialDrag {
			return err
		}
		return m.Move(ctx, ev)
	case StateDragging:
		err := m.ed.Drag(ctx, ev.Point.Sub(m.last))
		m.last = ev.Point
		return err
	case StateEditingCornerDrag:
		err := m.ed.DragCorner(ctx, ev.Point.Sub(m.last))
		m.last = ev.Point
		return err
	case StateDrawingToTarget:
		m.target = m.portAt(ev.Point)
		if m.target.Node == m.source.Node && m.target.Kind == m.source.Kind && m.target.Point.Close(m.source.Point) {
			m.target = routing.Port{}
		}
		m.preview, m.previewOK = m.ed.PreviewEdge(ctx, m.source, m.target, ev.Point)
	}
	return nil
}

// Up handles a button release.
func (m *Machine) Up(ctx context.Context, ev Event) error {
	var err error
	switch m.state {
	case StatePotentialDrag:
		if !m.crossed {
			err = m.click(ctx)
		}
	case StateDragging:
		_, err = m.ed.EndDrag(ctx)
	case StateEditingCornerDrag:
		_, err = m.ed.EndCornerDrag(ctx)
	case StateDrawingToTarget:
		target := m.portAt(ev.Point)
		if target.Valid() && !(target.Node == m.source.Node && target.Point.Close(m.source.Point)) {
			var e *scene.Edge
			e, _, err = m.ed.InsertEdge(ctx, m.source, target)
			if e != nil {
				m.logger.Debugf("Inserted edge %s -> %s", e.Source, e.Target)
			}
		}
	}
	m.reset()
	return err
}

// startDrag opens the drag the press was heading for.
func (m *Machine) startDrag(ctx context.Context) error {
	if m.corner != polyline.Nil {
		if err := m.ed.PrepareForCornerDragging(ctx, m.corner); err != nil {
			return err
		}
		m.state = StateEditingCornerDrag
		return nil
	}
	if m.candidate == "" {
		return nil
	}
	if !m.selected[m.candidate] {
		if m.press.Mods.Has(ModCtrl) || m.press.Mods.Has(ModShift) {
			m.add(m.candidate)
		} else {
			m.Select(m.candidate)
		}
	}
	mode := m.ed.Settings().Mode
	if m.press.Mods.Has(ModShift) {
		mode = routing.ModeIncremental
	}
	if err := m.ed.PrepareForObjectDragging(ctx, m.sameScope(m.candidate), mode); err != nil {
		if errors.Is(err, editor.ErrEmptySelection) {
			return nil
		}
		return err
	}
	m.state = StateDragging
	return nil
}

// sameScope returns the selected entities that live in the same cluster
// as the drag candidate.
func (m *Machine) sameScope(candidate scene.ID) []scene.ID {
	want := m.scope(candidate)
	var out []scene.ID
	for _, id := range m.selection {
		if m.scope(id) == want {
			out = append(out, id)
		}
	}
	return out
}

func (m *Machine) scope(id scene.ID) scene.ID {
	s := m.ed.Scene()
	if n := s.Node(id); n != nil {
		return n.Parent
	}
	if e := s.Edge(id); e != nil {
		return s.CommonCluster(e.Source, e.Target)
	}
	if l := s.Label(id); l != nil {
		return m.scope(l.Owner)
	}
	return ""
}

// click handles a press that never became a drag.
func (m *Machine) click(ctx context.Context) error {
	id := m.candidate
	if m.press.Button == ButtonRight {
		edited := m.ed.EditedEdge()
		if edited == "" {
			return nil
		}
		if _, onCorner := m.ed.CornerAt(m.press.Point); id == edited || onCorner {
			_, err := m.ed.ToggleCorner(ctx, m.press.Point)
			if errors.Is(err, polyline.ErrNoCorner) {
				return nil
			}
			return err
		}
		return nil
	}
	keep := m.press.Mods.Has(ModCtrl) || m.press.Mods.Has(ModShift)
	switch {
	case id == "" && !keep:
		m.ClearSelection()
	case id == "":
	case keep:
		m.toggle(id)
	default:
		m.Select(id)
	}

	if edited := m.ed.EditedEdge(); edited != "" && !m.selected[edited] {
		m.ed.StopEditing()
	}
	if id != "" && m.selected[id] && m.ed.Scene().Edge(id) != nil {
		return m.ed.EditEdge(id)
	}
	return nil
}

// portAt resolves the port under pt on the topmost node there.
func (m *Machine) portAt(pt geom.Point) routing.Port {
	s := m.ed.Scene()
	id, ok := m.pick.Pick(pt, func(id scene.ID) bool {
		n := s.Node(id)
		return n != nil && !n.Hidden
	})
	if !ok {
		return routing.Port{}
	}
	return ResolvePort(s.Node(id), pt, m.cfg.SnapTolerance())
}
