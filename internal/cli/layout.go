package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/thoughttree/pkg/layout"
	"github.com/matzehuels/thoughttree/pkg/pipeline"
	"github.com/matzehuels/thoughttree/pkg/tree"
)

// treeFlags are the layout flags shared by layout, render and view.
type treeFlags struct {
	maxDepth  int
	collapsed []string
	noCache   bool
	refresh   bool
}

func (f *treeFlags) register(cmd *cobra.Command) {
	f.maxDepth = layout.Unlimited
	cmd.Flags().IntVarP(&f.maxDepth, "max-depth", "d", f.maxDepth, "hide nodes below this depth (-1 = unlimited)")
	cmd.Flags().StringSliceVarP(&f.collapsed, "collapse", "c", nil, "collapse nodes by identity (e.g. 0-1,0-0-2)")
}

func (f *treeFlags) registerCache(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
}

func (f *treeFlags) identities() []tree.Identity {
	if len(f.collapsed) == 0 {
		return nil
	}
	ids := make([]tree.Identity, 0, len(f.collapsed))
	for _, s := range f.collapsed {
		if s = strings.TrimSpace(s); s != "" {
			ids = append(ids, tree.Identity(s))
		}
	}
	return ids
}

// layoutCommand creates the layout command for computing scene geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  treeFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [tree.json]",
		Short: "Compute the scene of a reasoning tree",
		Long: `Compute the scene of a reasoning tree.

The input is a tree or a ToT response from the move-selection service. The
output is a JSON document with every visible node box, its wrapped text and
the edge curves, ready for a drawing surface that does its own rendering
(same format as 'render -f json').

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], &flags, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)
	flags.registerCache(cmd)

	return cmd
}

// runLayout loads the tree, computes the scene and writes it out.
func (c *CLI) runLayout(ctx context.Context, input string, flags *treeFlags, output string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	root, err := pipeline.Load(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := layoutOptions(cfg, flags)
	opts.Formats = []string{pipeline.FormatJSON}

	p := newProgress(c.Logger)
	res, err := runner.Execute(ctx, root, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	p.done("Layout computed")

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := os.WriteFile(outputPath, res.Artifacts[pipeline.FormatJSON], 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(res.Stats, res.CacheInfo.SceneHit)
	printNewline()
	printNextStep("Explore", appName+" view "+input)
	return nil
}
