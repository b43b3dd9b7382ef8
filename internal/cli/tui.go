package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/interact"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/scene"
	"github.com/matzehuels/graphedit/pkg/session"
)

const (
	headerRows = 1
	footerRows = 1
)

const editHelp = "drag: move  click edge: corners  u/r: undo/redo  m: mode  e: add edges  c: collapse  x: delete  q: quit"

// =============================================================================
// EditModel - Interactive scene editing
// =============================================================================

// EditModel is the bubbletea model of the terminal editor. Mouse events
// are translated to session pointer events; the canvas is redrawn from the
// scene on every frame.
type EditModel struct {
	ctx  context.Context
	sess *session.Session
	name string

	view       viewport
	fitted     bool
	cols, rows int

	pressed bool
	button  interact.Button

	status string
	err    error
}

// NewEditModel creates an editor over s; name is shown in the header.
func NewEditModel(ctx context.Context, s *session.Session, name string) EditModel {
	return EditModel{ctx: ctx, sess: s, name: name, cols: 80, rows: 22}
}

func (m EditModel) Init() tea.Cmd {
	return nil
}

func (m EditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols = max(msg.Width, 1)
		m.rows = max(msg.Height-headerRows-footerRows, 1)
		if !m.fitted {
			m.view = fitViewport(m.sess.Scene().Box, m.cols, m.rows)
			m.fitted = true
		}
	case tea.KeyMsg:
		return m.key(msg.String())
	case tea.MouseMsg:
		m = m.mouse(tea.MouseEvent(msg))
	}
	return m, nil
}

func (m EditModel) key(k string) (tea.Model, tea.Cmd) {
	ctx := m.ctx
	m.err = nil
	switch k {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.sess.Forget(ctx)
		m.pressed = false
		m.status = "gesture abandoned"
	case "u", "ctrl+z":
		if a, ok := m.sess.Undo(ctx); ok {
			m.status = "undid " + a.Name
		} else {
			m.status = "nothing to undo"
		}
	case "r", "ctrl+y":
		if a, ok := m.sess.Redo(ctx); ok {
			m.status = "redid " + a.Name
		} else {
			m.status = "nothing to redo"
		}
	case "m":
		mode := (m.sess.Editor().Settings().Mode + 1) % (routing.ModeIncremental + 1)
		m.sess.SetMode(mode)
		m.status = "routing mode " + mode.String()
	case "e":
		on := !m.sess.Machine().Inserting()
		m.sess.SetInsertingEdges(ctx, on)
		m.status = "edge insertion off"
		if on {
			m.status = "edge insertion on"
		}
	case "c":
		m.err = m.toggleCollapse()
	case "x", "delete", "backspace":
		m.err = m.removeSelection()
	case "f":
		_, m.err = m.sess.FitBoundingBox(ctx)
		m.status = "scene box fitted"
	case "left", "h":
		m.view = m.view.pan(-m.cols/8, 0)
	case "right", "l":
		m.view = m.view.pan(m.cols/8, 0)
	case "up", "k":
		m.view = m.view.pan(0, -m.rows/8)
	case "down", "j":
		m.view = m.view.pan(0, m.rows/8)
	case "+", "=":
		m.view = m.view.zoom(0.8, m.cols/2, m.rows/2)
	case "-":
		m.view = m.view.zoom(1.25, m.cols/2, m.rows/2)
	case "0":
		m.view = fitViewport(m.sess.Scene().Box, m.cols, m.rows)
	}
	return m, nil
}

func (m EditModel) toggleCollapse() error {
	for _, id := range m.sess.Machine().Selection() {
		c := m.sess.Scene().Cluster(id)
		if c == nil {
			continue
		}
		var err error
		if c.Collapsed {
			_, err = m.sess.Expand(m.ctx, id)
		} else {
			_, err = m.sess.Collapse(m.ctx, id)
		}
		return err
	}
	return errors.New(errors.ErrCodeInvalidInput, "select a cluster to collapse or expand")
}

func (m EditModel) removeSelection() error {
	sc := m.sess.Scene()
	for _, id := range m.sess.Machine().Selection() {
		var err error
		switch e, _ := sc.Entity(id); {
		case e == nil:
			continue
		case e.Kind() == scene.KindEdge:
			_, err = m.sess.RemoveEdge(m.ctx, id)
		case e.Kind() == scene.KindNode:
			_, err = m.sess.RemoveNode(m.ctx, id)
		default:
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// pointerEvent converts a terminal mouse event to scene and device space.
func (m EditModel) pointerEvent(ev tea.MouseEvent) interact.Event {
	row := ev.Y - headerRows
	e := interact.Event{
		Point:  m.view.toScene(ev.X, row),
		Screen: geom.Pt(float64(ev.X*cellPixelsX), float64(row*cellPixelsY)),
		Button: m.button,
	}
	if ev.Shift {
		e.Mods |= interact.ModShift
	}
	if ev.Ctrl {
		e.Mods |= interact.ModCtrl
	}
	if ev.Alt {
		e.Mods |= interact.ModAlt
	}
	return e
}

func (m EditModel) mouse(ev tea.MouseEvent) EditModel {
	switch ev.Button {
	case tea.MouseButtonWheelUp:
		m.view = m.view.zoom(0.8, ev.X, ev.Y-headerRows)
		return m
	case tea.MouseButtonWheelDown:
		m.view = m.view.zoom(1.25, ev.X, ev.Y-headerRows)
		return m
	}
	var err error
	switch ev.Action {
	case tea.MouseActionPress:
		if m.pressed {
			return m
		}
		switch ev.Button {
		case tea.MouseButtonRight:
			m.button = interact.ButtonRight
		case tea.MouseButtonMiddle:
			m.button = interact.ButtonMiddle
		default:
			m.button = interact.ButtonLeft
		}
		m.pressed = true
		err = m.sess.Pointer(m.ctx, session.Down, m.pointerEvent(ev))
	case tea.MouseActionMotion:
		if !m.pressed {
			return m
		}
		err = m.sess.Pointer(m.ctx, session.Move, m.pointerEvent(ev))
	case tea.MouseActionRelease:
		if !m.pressed {
			return m
		}
		m.pressed = false
		err = m.sess.Pointer(m.ctx, session.Up, m.pointerEvent(ev))
	}
	m.err = err
	if err == nil {
		m.status = ""
	}
	return m
}

func (m EditModel) View() string {
	var b strings.Builder

	mach := m.sess.Machine()
	b.WriteString(StyleTitle.Render(appName) + " " + StyleValue.Render(m.name))
	b.WriteString(styleStatus.Render(fmt.Sprintf("  %s · %s · %d selected",
		m.sess.Editor().Settings().Mode, mach.State(), len(mach.Selection()))))
	b.WriteString("\n")

	b.WriteString(drawScene(m.sess, m.view, m.cols, m.rows).String())
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(styleError.Render(iconError + " " + errors.UserMessage(m.err)))
	case m.status != "":
		b.WriteString(styleStatus.Render(iconInfo + " " + m.status))
	default:
		b.WriteString(StyleDim.Render(editHelp))
	}
	return b.String()
}
