package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/graphedit/pkg/cache"
)

// execute runs the root command with args and returns what the command
// and the print helpers wrote.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	got, err := execute(t, "config", "path", "--config", path)
	must(t, err)
	if strings.TrimSpace(got) != path {
		t.Errorf("config path = %q, want %q", got, path)
	}

	_, err = execute(t, "config", "init", "--config", path)
	must(t, err)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config init wrote nothing: %v", err)
	}
	got, err = execute(t, "config", "init", "--config", path)
	must(t, err)
	if !strings.Contains(got, "already exists") {
		t.Errorf("second init = %q, want a warning", got)
	}

	got, err = execute(t, "config", "show", "--config", path)
	must(t, err)
	for _, want := range []string{"routing_mode", "[graphviz]", "max_actions"} {
		if !strings.Contains(got, want) {
			t.Errorf("config show missing %q", want)
		}
	}
}

func TestConfigShowRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	must(t, os.WriteFile(path, []byte("[editor]\nrouting_mode = \"curvy\"\n"), 0o644))
	if _, err := execute(t, "config", "show", "--config", path); err == nil {
		t.Error("config show accepted an unknown routing mode")
	}
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	want := filepath.Join(dir, "graphedit")

	got, err := execute(t, "cache", "path")
	must(t, err)
	if strings.TrimSpace(got) != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}

	got, err = execute(t, "cache", "info")
	must(t, err)
	if !strings.Contains(got, "empty") {
		t.Errorf("cache info = %q, want empty", got)
	}

	fc, err := cache.NewFileCache(want)
	must(t, err)
	ctx := context.Background()
	must(t, fc.Set(ctx, "a", []byte("one"), 0))
	must(t, fc.Set(ctx, "b", []byte("two"), 0))

	got, err = execute(t, "cache", "info")
	must(t, err)
	if !strings.Contains(got, "entries") {
		t.Errorf("cache info = %q, want entry counts", got)
	}
	got, err = execute(t, "cache", "clear")
	must(t, err)
	if !strings.Contains(got, "Cleared 2") {
		t.Errorf("cache clear = %q, want two entries cleared", got)
	}
}

func TestCompletionCommand(t *testing.T) {
	got, err := execute(t, "completion", "bash")
	must(t, err)
	if !strings.Contains(got, appName) {
		t.Errorf("bash completion does not mention %s", appName)
	}
}

const pairJSON = `{"name":"G","directed":true,
 "objects":[
  {"_gvid":0,"name":"a","pos":"50,50","width":"0.75","height":"0.5","shape":"box"},
  {"_gvid":1,"name":"b","pos":"200,50","width":"0.75","height":"0.5","shape":"box"}],
 "edges":[
  {"_gvid":0,"tail":0,"head":1,"pos":"e,173,50 77,50 100,50 140,50 163,50"}]}`

const pairScript = `
[[step]]
do = "drag"
at = [50, 50]
to = [50, 120]

[[step]]
do = "undo"

[[step]]
do = "redo"
`

func TestReplayCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	graph := filepath.Join(dir, "pair.json")
	script := filepath.Join(dir, "edits.toml")
	must(t, os.WriteFile(graph, []byte(pairJSON), 0o644))
	must(t, os.WriteFile(script, []byte(pairScript), 0o644))

	got, err := execute(t, "replay", graph, script, "--config", filepath.Join(dir, "none.toml"), "--no-cache")
	must(t, err)
	for _, want := range []string{"drag", "commits", "restored the initial geometry"} {
		if !strings.Contains(got, want) {
			t.Errorf("replay output missing %q:\n%s", want, got)
		}
	}
}

func TestReplayCommandBadScript(t *testing.T) {
	dir := t.TempDir()
	graph := filepath.Join(dir, "pair.json")
	script := filepath.Join(dir, "edits.toml")
	must(t, os.WriteFile(graph, []byte(pairJSON), 0o644))
	must(t, os.WriteFile(script, []byte("[[step]]\ndo = \"jump\"\n"), 0o644))

	if _, err := execute(t, "replay", graph, script, "--config", filepath.Join(dir, "none.toml")); err == nil {
		t.Error("replay accepted an unknown step")
	}
}

func TestCachedRunner(t *testing.T) {
	ctx := context.Background()
	calls := 0
	run := func(context.Context, []byte, string, string) ([]byte, error) {
		calls++
		return []byte("layout"), nil
	}

	fc, err := cache.NewFileCache(t.TempDir())
	must(t, err)
	r := cachedRunner(fc, time.Hour, run)
	for i := 0; i < 2; i++ {
		got, err := r(ctx, []byte("digraph { a }"), "dot", "json")
		must(t, err)
		if string(got) != "layout" {
			t.Errorf("run %d = %q", i, got)
		}
	}
	if calls != 1 {
		t.Errorf("runner calls = %d, want 1", calls)
	}
	if _, err := r(ctx, []byte("digraph { a }"), "neato", "json"); err != nil || calls != 2 {
		t.Errorf("other engine: calls = %d, err = %v, want a fresh run", calls, err)
	}

	calls = 0
	null := cachedRunner(cache.NullCache{}, time.Hour, run)
	null(ctx, nil, "dot", "json")
	null(ctx, nil, "dot", "json")
	if calls != 2 {
		t.Errorf("uncached runner calls = %d, want 2", calls)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 << 20, "5.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestUndoDepth(t *testing.T) {
	ctx := context.Background()
	s := testSession(t)
	if got := undoDepth(s.Log()); got != 0 {
		t.Errorf("undoDepth() = %d, want 0", got)
	}
	script, err := ParseScript([]byte("[[step]]\ndo = \"drag\"\nat = [0, 0]\nto = [0, 30]\n[[step]]\ndo = \"drag\"\nat = [100, 0]\nto = [100, 30]"))
	must(t, err)
	_, err = replay(ctx, s, script)
	must(t, err)
	if got := undoDepth(s.Log()); got != 2 {
		t.Errorf("undoDepth() = %d, want 2", got)
	}
	s.Undo(ctx)
	if got := undoDepth(s.Log()); got != 1 {
		t.Errorf("undoDepth() after undo = %d, want 1", got)
	}
}
