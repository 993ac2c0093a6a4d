package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/thoughttree/pkg/pipeline"
	"github.com/matzehuels/thoughttree/pkg/view"
)

// viewCommand opens the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var flags treeFlags

	cmd := &cobra.Command{
		Use:   "view [tree.json]",
		Short: "Explore a reasoning tree in the terminal",
		Long: `Explore a reasoning tree in the terminal.

Click a node with children (or select it with tab and press enter) to
collapse or expand it. Drag the background or use the arrow keys to pan,
scroll or press +/- to zoom, and [ ] to change the depth cutoff.

On exit the collapsed nodes are printed as a 'render' command that
reproduces the view.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], &flags)
		},
	}
	flags.register(cmd)

	return cmd
}

func (c *CLI) runView(ctx context.Context, input string, flags *treeFlags) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	root, err := pipeline.Load(ctx, input)
	if err != nil {
		return err
	}

	ctrl := view.NewController(root,
		view.WithMaxDepth(flags.maxDepth),
		view.WithGeometry(cfg.Layout),
		view.WithViewport(cfg.Viewport),
		view.WithCollapsed(flags.identities()...),
	)
	logger.Debug("opening viewer", "file", input, "visible", ctrl.Layout().Len())

	prog := tea.NewProgram(NewTreeModel(ctrl, cfg.Text, input),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	if _, err := prog.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("viewer: %w", err)
	}

	printNextStep("Render this view", renderHint(input, ctrl.State()))
	return nil
}

// renderHint builds the render command line for a viewer state.
func renderHint(input string, st view.State) string {
	args := []string{appName, "render", input}
	if st.MaxDepth >= 0 {
		args = append(args, fmt.Sprintf("--max-depth %d", st.MaxDepth))
	}
	if len(st.Collapsed) > 0 {
		ids := make([]string, len(st.Collapsed))
		for i, id := range st.Collapsed {
			ids[i] = string(id)
		}
		args = append(args, "--collapse "+strings.Join(ids, ","))
	}
	return strings.Join(args, " ")
}
