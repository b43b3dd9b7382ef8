package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphedit/pkg/history"
	"github.com/matzehuels/graphedit/pkg/routing"
	"github.com/matzehuels/graphedit/pkg/session"
)

// editCommand creates the "edit" command.
func (c *CLI) editCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "edit GRAPH",
		Short: "Edit a graph in the terminal",
		Long: `Edit lays out a DOT file (or reads Graphviz json output) and opens it in a
mouse-driven terminal editor. Drag nodes, clusters and labels; click an edge
to edit its corners, right click to add or remove one. Every gesture can be
undone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), args[0], mode)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "routing mode (straight, spline, rectilinear, incremental)")
	return cmd
}

func (c *CLI) runEdit(ctx context.Context, path, mode string) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if mode != "" {
		if _, err := routing.ParseMode(mode); err != nil {
			return err
		}
		cfg.Editor.RoutingMode = mode
	}

	prog := newProgress(logger)
	sess, err := spin(ctx, fmt.Sprintf("Laying out %s...", filepath.Base(path)), func() (*session.Session, error) {
		return c.openSession(ctx, path, cfg)
	})
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	prog.done(fmt.Sprintf("Loaded %s", filepath.Base(path)))

	// The alternate screen owns the terminal until the editor exits.
	c.Logger.SetOutput(io.Discard)
	defer c.Logger.SetOutput(c.logOut)

	p := tea.NewProgram(NewEditModel(ctx, sess, filepath.Base(path)),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return err
	}

	printInfo("Closed %s after %s actions", StyleHighlight.Render(filepath.Base(path)),
		StyleValue.Render(fmt.Sprint(undoDepth(sess.Log()))))
	return nil
}

// undoDepth counts the Actions that can be undone.
func undoDepth(l *history.Log) int {
	n := 0
	for a := l.CurrentUndo(); a != nil; a = a.Prev() {
		n++
	}
	return n
}
