package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/thoughttree/pkg/errors"
	"github.com/matzehuels/thoughttree/pkg/layout"
	"github.com/matzehuels/thoughttree/pkg/render"
	"github.com/matzehuels/thoughttree/pkg/render/nodelink"
	"github.com/matzehuels/thoughttree/pkg/render/sink"
)

// Render generates output artifacts in the requested formats. r is only
// consulted for nodelink output and DOT, which Graphviz lays out itself.
func Render(ctx context.Context, r *layout.Result, scene render.Scene, opts Options) (map[string][]byte, error) {
	if opts.IsNodelink() {
		return renderNodelink(ctx, r, opts)
	}
	return renderTree(ctx, r, scene, opts)
}

// renderTree encodes the scene with the sink renderers.
func renderTree(ctx context.Context, r *layout.Result, scene render.Scene, opts Options) (map[string][]byte, error) {
	var svgOpts []sink.SVGOption
	if opts.Responsive {
		svgOpts = append(svgOpts, sink.WithResponsive())
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(scene, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(ctx, scene,
				sink.WithScale(opts.Scale),
				sink.WithPNGSVGOptions(svgOpts...))
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, scene, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(scene,
				sink.WithJSONMaxDepth(opts.MaxDepth),
				sink.WithJSONCollapsed(opts.Collapsed))
		case FormatDOT:
			data = []byte(nodelink.ToDOT(r, dotOptions(opts)))
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// renderNodelink hands the visible tree to Graphviz.
func renderNodelink(ctx context.Context, r *layout.Result, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(r, dotOptions(opts))

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case FormatDOT:
			data = []byte(dot)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func dotOptions(opts Options) nodelink.Options {
	return nodelink.Options{
		Detailed:  opts.Detailed,
		Collapsed: collapsedSet(opts.Collapsed),
		Text:      opts.Text,
	}
}
