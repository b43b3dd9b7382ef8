// Package cli implements the graphedit command-line interface.
//
// The commands are:
//   - edit: open a graph in the interactive terminal editor
//   - replay: drive a graph headlessly with a scripted list of pointer events
//   - config: show, create or locate the configuration file
//   - cache: inspect and clear the Graphviz layout cache
//   - completion: generate shell completion scripts
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphedit/pkg/buildinfo"
	"github.com/matzehuels/graphedit/pkg/cache"
	"github.com/matzehuels/graphedit/pkg/config"
	"github.com/matzehuels/graphedit/pkg/routing/gvroute"
	"github.com/matzehuels/graphedit/pkg/scene"
	"github.com/matzehuels/graphedit/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "graphedit"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	logOut     io.Writer
	configPath string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), logOut: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Graphedit edits laid-out graphs interactively",
		Long:         `Graphedit loads a graph laid out by Graphviz and lets you drag nodes, clusters, labels and edge corners with undo/redo, rerouting edges as you go.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", config.Path(), "config file")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "bypass the layout cache")

	root.AddCommand(c.editCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Session Factory
// =============================================================================

func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// newCache opens the layout cache, or a NullCache when caching is off or
// the cache directory is unusable.
func (c *CLI) newCache(cfg *config.Config) cache.Cache {
	if c.noCache || !cfg.Graphviz.Cache {
		return cache.NullCache{}
	}
	fc, err := cache.NewFileCache(cache.DefaultDir())
	if err != nil {
		c.Logger.Warnf("Layout cache disabled: %v", err)
		return cache.NullCache{}
	}
	return cache.Observed(cache.Scoped(fc, buildinfo.CacheScope()), "layout")
}

// openSession loads the graph at path and opens an editing session over it
// with a Graphviz backend.
func (c *CLI) openSession(ctx context.Context, path string, cfg *config.Config) (*session.Session, error) {
	layouts := c.newCache(cfg)
	sc, err := loadScene(ctx, path, cfg, layouts)
	if err != nil {
		return nil, err
	}
	ttl, _ := cfg.CacheTTL()
	backend := gvroute.New(gvroute.Options{
		Engine:         cfg.Graphviz.Engine,
		RelayoutEngine: cfg.Graphviz.RelayoutEngine,
		Cache:          layouts,
		CacheTTL:       ttl,
		Straight:       cfg.RoutingOptions(),
		Logger:         c.Logger,
	})
	return session.New(sc, session.Options{
		Editor:     cfg.EditorSettings(),
		Interact:   cfg.InteractConfig(),
		Router:     backend,
		Labels:     backend,
		Relayout:   backend,
		MaxActions: cfg.History.MaxActions,
		Slack:      cfg.PickSlack(),
		Logger:     c.Logger,
	}), nil
}

// loadScene reads a DOT file and lays it out, or reads Graphviz json output
// as is when the file ends in .json.
func loadScene(ctx context.Context, path string, cfg *config.Config, layouts cache.Cache) (*scene.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ttl, _ := cfg.CacheTTL()
	opts := gvroute.LoadOptions{
		Engine:        cfg.Graphviz.RelayoutEngine,
		Margin:        cfg.Editor.SceneMargin,
		ClusterMargin: cfg.Editor.ClusterMargin,
		Run:           cachedRunner(layouts, ttl, gvroute.Graphviz),
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return gvroute.SceneFromJSON(data, opts)
	}
	return gvroute.LoadDOT(ctx, data, opts)
}

// cachedRunner memoizes run in c, keyed by engine, format and input.
func cachedRunner(c cache.Cache, ttl time.Duration, run gvroute.Runner) gvroute.Runner {
	return func(ctx context.Context, dot []byte, engine, format string) ([]byte, error) {
		key := cache.LayoutKey(engine+"/"+format, dot)
		if out, ok, err := c.Get(ctx, key); err == nil && ok {
			return out, nil
		}
		out, err := run(ctx, dot, engine, format)
		if err != nil {
			return nil, err
		}
		_ = c.Set(ctx, key, out, ttl)
		return out, nil
	}
}
