package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/history"
	"github.com/matzehuels/graphedit/pkg/interact"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/scene"
	"github.com/matzehuels/graphedit/pkg/session"
)

// =============================================================================
// Script
// =============================================================================

// Script is a replayable list of editing steps, read from TOML:
//
//	[[step]]
//	do = "drag"
//	at = [10, 20]
//	to = [60, 20]
//	mods = ["shift"]
//
//	[[step]]
//	do = "undo"
type Script struct {
	Mode  string `toml:"mode"`
	Steps []Step `toml:"step"`
}

// Step is one scripted operation. Do is one of down, move, up, click,
// drag, undo, redo, forget, edges, mode, collapse, expand and fit. Pointer
// steps use At (and To for drag) in scene coordinates; Target names the
// cluster, the routing mode or "on"/"off" for edges.
type Step struct {
	Do     string    `toml:"do"`
	At     []float64 `toml:"at"`
	To     []float64 `toml:"to"`
	Button string    `toml:"button"`
	Mods   []string  `toml:"mods"`
	Target string    `toml:"target"`
}

// dragTicks is the number of move events a scripted drag is split into.
const dragTicks = 4

// ParseScript decodes and validates a replay script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse script")
	}
	if s.Mode != "" {
		if _, err := routing.ParseMode(s.Mode); err != nil {
			return nil, err
		}
	}
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "step %d", i+1)
		}
	}
	return &s, nil
}

func (st Step) validate() error {
	switch st.Do {
	case "down", "move", "up", "click":
		if len(st.At) != 2 {
			return fmt.Errorf("%s needs at = [x, y]", st.Do)
		}
	case "drag":
		if len(st.At) != 2 || len(st.To) != 2 {
			return fmt.Errorf("drag needs at = [x, y] and to = [x, y]")
		}
	case "collapse", "expand":
		if st.Target == "" {
			return fmt.Errorf("%s needs a target cluster", st.Do)
		}
	case "mode":
		if _, err := routing.ParseMode(st.Target); err != nil {
			return err
		}
	case "edges":
		if st.Target != "on" && st.Target != "off" {
			return fmt.Errorf(`edges target must be "on" or "off"`)
		}
	case "undo", "redo", "forget", "fit":
	default:
		return fmt.Errorf("unknown step %q", st.Do)
	}
	if _, err := parseButton(st.Button); err != nil {
		return err
	}
	_, err := parseMods(st.Mods)
	return err
}

func parseButton(s string) (interact.Button, error) {
	switch s {
	case "", "left":
		return interact.ButtonLeft, nil
	case "right":
		return interact.ButtonRight, nil
	case "middle":
		return interact.ButtonMiddle, nil
	}
	return 0, fmt.Errorf("unknown button %q", s)
}

func parseMods(names []string) (interact.Modifiers, error) {
	var m interact.Modifiers
	for _, n := range names {
		switch n {
		case "shift":
			m |= interact.ModShift
		case "ctrl":
			m |= interact.ModCtrl
		case "alt":
			m |= interact.ModAlt
		default:
			return 0, fmt.Errorf("unknown modifier %q", n)
		}
	}
	return m, nil
}

// event builds a pointer event at p; replay uses scene units as device
// units.
func (st Step) event(p geom.Point) interact.Event {
	b, _ := parseButton(st.Button)
	m, _ := parseMods(st.Mods)
	return interact.Event{Point: p, Screen: p, Button: b, Mods: m}
}

func pt(v []float64) geom.Point { return geom.Pt(v[0], v[1]) }

// =============================================================================
// Replay
// =============================================================================

// stepResult records the session state after one step.
type stepResult struct {
	Step     Step
	State    interact.State
	Selected int
	Note     string
}

// replay runs the script against s. The first failing step stops it.
func replay(ctx context.Context, s *session.Session, script *Script) ([]stepResult, error) {
	if script.Mode != "" {
		m, _ := routing.ParseMode(script.Mode)
		s.SetMode(m)
	}
	var results []stepResult
	for i, st := range script.Steps {
		note, err := runStep(ctx, s, st)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, st.Do, err)
		}
		results = append(results, stepResult{
			Step:     st,
			State:    s.Machine().State(),
			Selected: len(s.Machine().Selection()),
			Note:     note,
		})
	}
	return results, nil
}

func runStep(ctx context.Context, s *session.Session, st Step) (string, error) {
	actionNote := func(a *history.Action, ok bool) string {
		if !ok {
			return "no-op"
		}
		return a.Name
	}
	switch st.Do {
	case "down":
		return "", s.Pointer(ctx, session.Down, st.event(pt(st.At)))
	case "move":
		return "", s.Pointer(ctx, session.Move, st.event(pt(st.At)))
	case "up":
		return "", s.Pointer(ctx, session.Up, st.event(pt(st.At)))
	case "click":
		p := pt(st.At)
		if err := s.Pointer(ctx, session.Down, st.event(p)); err != nil {
			return "", err
		}
		return hitNote(s, p), s.Pointer(ctx, session.Up, st.event(p))
	case "drag":
		from, to := pt(st.At), pt(st.To)
		note := hitNote(s, from)
		if err := s.Pointer(ctx, session.Down, st.event(from)); err != nil {
			return "", err
		}
		for k := 1; k <= dragTicks; k++ {
			p := geom.Lerp(from, to, float64(k)/dragTicks)
			if err := s.Pointer(ctx, session.Move, st.event(p)); err != nil {
				return "", err
			}
		}
		return note, s.Pointer(ctx, session.Up, st.event(to))
	case "undo":
		return actionNote(s.Undo(ctx)), nil
	case "redo":
		return actionNote(s.Redo(ctx)), nil
	case "forget":
		s.Forget(ctx)
		return "", nil
	case "edges":
		s.SetInsertingEdges(ctx, st.Target == "on")
		return "", nil
	case "mode":
		m, _ := routing.ParseMode(st.Target)
		s.SetMode(m)
		return m.String(), nil
	case "collapse":
		a, err := s.Collapse(ctx, scene.ID(st.Target))
		return actionNote(a, a != nil), err
	case "expand":
		a, err := s.Expand(ctx, scene.ID(st.Target))
		return actionNote(a, a != nil), err
	case "fit":
		a, err := s.FitBoundingBox(ctx)
		return actionNote(a, a != nil), err
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown step %q", st.Do)
}

func hitNote(s *session.Session, p geom.Point) string {
	if id, ok := s.ObjectUnderCursor(p); ok {
		return string(id)
	}
	return "empty"
}

// =============================================================================
// Geometry Check
// =============================================================================

// geometry is a deep copy of the drawable state of a scene.
type geometry struct {
	nodes  map[scene.ID]geom.Polygon
	edges  map[scene.ID]*geom.Curve
	labels map[scene.ID]geom.Point
}

func captureGeometry(s *scene.Scene) geometry {
	g := geometry{
		nodes:  make(map[scene.ID]geom.Polygon),
		edges:  make(map[scene.ID]*geom.Curve),
		labels: make(map[scene.ID]geom.Point),
	}
	for _, n := range s.Nodes() {
		g.nodes[n.ID] = n.Boundary.Clone()
	}
	for _, c := range s.Clusters() {
		g.nodes[c.ID] = c.Boundary.Clone()
	}
	for _, e := range s.Edges() {
		var c *geom.Curve
		if !e.Curve.Empty() {
			c = e.Curve.Clone()
		}
		g.edges[e.ID] = c
	}
	for _, l := range s.Labels() {
		g.labels[l.ID] = l.Center
	}
	return g
}

// diff lists the entities whose geometry differs between g and o.
func (g geometry) diff(o geometry) []scene.ID {
	var out []scene.ID
	for id, p := range g.nodes {
		if q, ok := o.nodes[id]; !ok || !p.Equal(q) {
			out = append(out, id)
		}
	}
	for id, c := range g.edges {
		if d, ok := o.edges[id]; !ok || !c.Equal(d) {
			out = append(out, id)
		}
	}
	for id, p := range g.labels {
		if q, ok := o.labels[id]; !ok || !p.Near(q, geom.Epsilon) {
			out = append(out, id)
		}
	}
	if len(g.nodes)+len(g.edges)+len(g.labels) != len(o.nodes)+len(o.edges)+len(o.labels) {
		out = append(out, "(entity count)")
	}
	return out
}

// undoAll undoes every Action and reports how many there were.
func undoAll(ctx context.Context, s *session.Session) int {
	n := 0
	for {
		if _, ok := s.Undo(ctx); !ok {
			return n
		}
		n++
	}
}

// =============================================================================
// Command
// =============================================================================

// replayCommand creates the "replay" command.
func (c *CLI) replayCommand() *cobra.Command {
	var noVerify bool

	cmd := &cobra.Command{
		Use:   "replay GRAPH SCRIPT",
		Short: "Replay scripted edits on a graph",
		Long: `Replay loads GRAPH, runs the steps of the TOML SCRIPT through the same
pointer state machine as the editor, prints what each step did, and then
checks that undoing everything restores the initial geometry.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReplay(cmd.Context(), args[0], args[1], !noVerify)
		},
	}

	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip the undo-all check")
	return cmd
}

func (c *CLI) runReplay(ctx context.Context, graphPath, scriptPath string, verify bool) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return err
	}
	script, err := ParseScript(data)
	if err != nil {
		return err
	}

	stats, reset := installHooks(logger)
	defer reset()

	prog := newProgress(logger)
	sess, err := spin(ctx, fmt.Sprintf("Laying out %s...", filepath.Base(graphPath)), func() (*session.Session, error) {
		return c.openSession(ctx, graphPath, cfg)
	})
	if err != nil {
		return fmt.Errorf("load %s: %w", graphPath, err)
	}
	prog.done(fmt.Sprintf("Loaded %s", filepath.Base(graphPath)))

	initial := captureGeometry(sess.Scene())
	results, runErr := replay(ctx, sess, script)
	fmt.Fprintln(out, renderResults(results))
	if runErr != nil {
		printError("%v", runErr)
		return runErr
	}

	printKeyValue("steps", strconv.Itoa(len(results)))
	printKeyValue("commits", strconv.FormatInt(stats.commits.Load(), 10))
	printKeyValue("undos", strconv.FormatInt(stats.undos.Load(), 10))
	printKeyValue("redos", strconv.FormatInt(stats.redos.Load(), 10))
	if n := stats.routeFailures.Load(); n > 0 {
		printWarning("%d routing failures; affected edges kept fallback curves", n)
	}
	if !verify {
		return nil
	}

	undone := undoAll(ctx, sess)
	if bad := captureGeometry(sess.Scene()).diff(initial); len(bad) > 0 {
		if cfg.History.MaxActions > 0 && undone >= cfg.History.MaxActions {
			printWarning("History bound of %d reached; undo-all check skipped", cfg.History.MaxActions)
			return nil
		}
		return errors.New(errors.ErrCodeInternal, "undoing %d actions left %d entities changed: %v", undone, len(bad), bad)
	}
	printSuccess("Undoing %d actions restored the initial geometry", undone)
	return nil
}

// renderResults draws the per-step table.
func renderResults(results []stepResult) string {
	rows := make([][]string, len(results))
	for i, r := range results {
		what := r.Step.Do
		if len(r.Step.Mods) > 0 {
			what += " +" + strings.Join(r.Step.Mods, "+")
		}
		if r.Step.Button != "" && r.Step.Button != "left" {
			what += " (" + r.Step.Button + ")"
		}
		rows[i] = []string{strconv.Itoa(i + 1), what, r.Note, r.State.String(), strconv.Itoa(r.Selected)}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Step", "On", "State", "Selected").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}
