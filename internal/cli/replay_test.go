package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/geom"
	"github.com/matzehuels/graphedit/pkg/interact"
)

const dragScript = `
mode = "straight"

[[step]]
do = "drag"
at = [0, 0]
to = [0, 40]
mods = ["shift"]

[[step]]
do = "undo"

[[step]]
do = "redo"

[[step]]
do = "click"
at = [500, 500]
`

func TestParseScript(t *testing.T) {
	s, err := ParseScript([]byte(dragScript))
	must(t, err)
	if s.Mode != "straight" || len(s.Steps) != 4 {
		t.Fatalf("script = %+v", s)
	}
	if got := s.Steps[0]; got.Do != "drag" || len(got.To) != 2 || got.Mods[0] != "shift" {
		t.Errorf("step 1 = %+v", got)
	}
}

func TestParseScriptRejects(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"bad toml", `[[step]`},
		{"unknown step", "[[step]]\ndo = \"jump\""},
		{"click without point", "[[step]]\ndo = \"click\""},
		{"drag without target", "[[step]]\ndo = \"drag\"\nat = [0, 0]"},
		{"collapse without cluster", "[[step]]\ndo = \"collapse\""},
		{"unknown mode", "[[step]]\ndo = \"mode\"\ntarget = \"curvy\""},
		{"bad edges toggle", "[[step]]\ndo = \"edges\"\ntarget = \"maybe\""},
		{"unknown button", "[[step]]\ndo = \"click\"\nat = [0, 0]\nbutton = \"fourth\""},
		{"unknown modifier", "[[step]]\ndo = \"click\"\nat = [0, 0]\nmods = [\"meta\"]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript([]byte(tt.script))
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("ParseScript() error = %v, want %s", err, errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestParseMods(t *testing.T) {
	m, err := parseMods([]string{"shift", "alt"})
	must(t, err)
	if m != interact.ModShift|interact.ModAlt {
		t.Errorf("parseMods() = %v, want shift|alt", m)
	}
}

func TestReplay(t *testing.T) {
	ctx := context.Background()
	s := testSession(t)
	// drop the shift modifier; a plain drag is enough here
	script, err := ParseScript([]byte(strings.Replace(dragScript, `mods = ["shift"]`, "", 1)))
	must(t, err)

	initial := captureGeometry(s.Scene())
	results, err := replay(ctx, s, script)
	must(t, err)
	if len(results) != 4 {
		t.Fatalf("results = %d, want 4", len(results))
	}
	wantNotes := []string{"A", "drag", "drag", "empty"}
	for i, want := range wantNotes {
		if results[i].Note != want {
			t.Errorf("step %d note = %q, want %q", i+1, results[i].Note, want)
		}
	}
	if c := s.Scene().Node("A").Center(); !c.Close(geom.Pt(0, 40)) {
		t.Errorf("A center = %v, want (0,40)", c)
	}

	moved := captureGeometry(s.Scene()).diff(initial)
	if !containsID(moved, "A") || !containsID(moved, "ab") {
		t.Errorf("diff = %v, want A and ab", moved)
	}

	if n := undoAll(ctx, s); n != 1 {
		t.Errorf("undoAll() = %d, want 1", n)
	}
	if bad := captureGeometry(s.Scene()).diff(initial); len(bad) != 0 {
		t.Errorf("diff after undoAll = %v, want none", bad)
	}
}

func TestReplayStopsOnError(t *testing.T) {
	s := testSession(t)
	script, err := ParseScript([]byte("[[step]]\ndo = \"fit\"\n[[step]]\ndo = \"collapse\"\ntarget = \"nope\""))
	must(t, err)
	results, err := replay(context.Background(), s, script)
	if err == nil || !strings.Contains(err.Error(), "step 2") {
		t.Errorf("replay() error = %v, want a step 2 failure", err)
	}
	if len(results) != 1 {
		t.Errorf("results = %d, want 1", len(results))
	}
}

func TestRenderResults(t *testing.T) {
	got := renderResults([]stepResult{
		{Step: Step{Do: "drag", Mods: []string{"shift"}}, State: interact.StateIdle, Selected: 1, Note: "A"},
		{Step: Step{Do: "click", Button: "right"}, State: interact.StateIdle, Note: "empty"},
	})
	for _, want := range []string{"Step", "Selected", "drag +shift", "click (right)", interact.StateIdle.String()} {
		if !strings.Contains(got, want) {
			t.Errorf("renderResults() missing %q:\n%s", want, got)
		}
	}
}

func containsID[T ~string](ids []T, id T) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
