package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/thoughttree/pkg/layout"
	"github.com/matzehuels/thoughttree/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the wrapped reason below the thought in node labels.
	// When false, only the primary text is shown.
	Detailed bool

	// Collapsed marks nodes whose children are hidden. They are drawn with
	// dashed outlines. May be nil.
	Collapsed layout.Collapsed

	// Text sets the wrap limits for labels. Zero value uses the defaults.
	Text render.TextConfig
}

// ToDOT converts the visible part of a layout to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Graphviz computes its own positions; only the visible node set and edges
// are taken from the layout.
func ToDOT(r *layout.Result, opts Options) string {
	if opts.Text == (render.TextConfig{}) {
		opts.Text = render.DefaultTextConfig()
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for i := range r.Nodes {
		n := &r.Nodes[i]
		label := fmtLabel(n, opts)
		attrs := fmtAttrs(n, label, opts.Collapsed)
		fmt.Fprintf(&buf, "  %q [%s];\n", string(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range r.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", string(r.Nodes[e.From].ID), string(r.Nodes[e.To].ID))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *layout.Node, opts Options) string {
	lines := render.WrapText(render.PrimaryText(n.Source), opts.Text.PrimaryWidth, opts.Text.MaxLines)
	if opts.Detailed {
		lines = append(lines, render.WrapText(render.SecondaryText(n.Source), opts.Text.SecondaryWidth, opts.Text.MaxLines)...)
	}
	return strings.Join(lines, "\n")
}

func fmtAttrs(n *layout.Node, label string, collapsed layout.Collapsed) []string {
	attrs := []string{fmt.Sprintf("label=%q", label), fmt.Sprintf("tooltip=%q", render.Tooltip(n.Source))}
	if collapsed != nil && n.Source.HasChildren() && collapsed.IsCollapsed(n.ID) {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
