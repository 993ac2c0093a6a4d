// Package nodelink renders reasoning trees as Graphviz node-link diagrams.
//
// # Overview
//
// This package is an alternative to the tidy-tree scene in [sink]: the
// visible node set of a [layout.Result] is handed to Graphviz, which picks
// its own positions. Collapse state and the depth cutoff are honored because
// only visible nodes are emitted.
//
// # Usage
//
//	dot := nodelink.ToDOT(&result, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
//
// [sink]: github.com/matzehuels/thoughttree/pkg/render/sink
// [layout.Result]: github.com/matzehuels/thoughttree/pkg/layout.Result
package nodelink
