package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/thoughttree/pkg/pipeline"
)

// renderOpts holds the render-only flags.
type renderOpts struct {
	output     string
	formats    []string
	vizType    string
	scale      float64
	responsive bool
	detailed   bool
}

// renderCommand creates the render command for drawing a tree to files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		flags      treeFlags
		ro         renderOpts
	)

	cmd := &cobra.Command{
		Use:   "render [tree.json]",
		Short: "Render a reasoning tree to SVG, PNG, PDF, JSON or DOT",
		Long: `Render a reasoning tree to SVG, PNG, PDF, JSON or DOT.

The default tree view draws fixed-size boxes with wrapped thought and reason
text, collapse affordances and curved edges. The nodelink view (-t nodelink)
lays the same tree out with Graphviz instead.

PNG and PDF output requires rsvg-convert on PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ro.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(ro.formats); err != nil {
				return err
			}
			if ro.vizType != "" {
				if err := pipeline.ValidateVizType(ro.vizType); err != nil {
					return err
				}
			}
			return c.runRender(cmd.Context(), args[0], &flags, &ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().StringVarP(&ro.vizType, "type", "t", "", "visualization type: tree (default), nodelink")
	cmd.Flags().Float64Var(&ro.scale, "scale", pipeline.DefaultScale, "PNG pixel density")
	cmd.Flags().BoolVar(&ro.responsive, "responsive", false, "size the SVG to its container")
	cmd.Flags().BoolVar(&ro.detailed, "detailed", false, "include reasons in nodelink labels")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedChoices(
		pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatJSON, pipeline.FormatDOT))
	_ = cmd.RegisterFlagCompletionFunc("type", fixedChoices("tree", "nodelink"))
	flags.register(cmd)
	flags.registerCache(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, flags *treeFlags, ro *renderOpts) error {
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
	opts.Formats = ro.formats
	opts.VizType = ro.vizType
	opts.Scale = ro.scale
	opts.Responsive = ro.responsive
	opts.Detailed = ro.detailed

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(ro.formats, ", ")))
	spinner.Start()

	res, err := runner.Execute(ctx, root, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: res.Artifacts,
		formats:   ro.formats,
		input:     input,
		output:    ro.output,
		stats:     res.Stats,
		cacheHit:  res.CacheInfo.RenderHit,
	})
}

// artifactWriteParams describes one batch of rendered outputs.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	stats     pipeline.Stats
	cacheHit  bool
}

// writeArtifacts writes each format next to the input, or to output. With
// several formats, output is a base path and gets one extension per format.
func writeArtifacts(p artifactWriteParams) error {
	base := basePath(p.output, p.input)
	var written []string
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("no %s output produced", format)
		}
		path := base + "." + format
		if len(p.formats) == 1 && p.output != "" {
			path = p.output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	printSuccess("Rendered %d file(s)", len(written))
	for _, path := range written {
		printFile(path)
	}
	printStats(p.stats, p.cacheHit)
	return nil
}

// basePath strips the extension from output, or derives a base path from
// the input file name.
func basePath(output, input string) string {
	if output != "" {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}
