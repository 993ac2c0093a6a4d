// Package render turns a layout into a drawable scene.
//
// # Overview
//
// Drawing is left to sinks; this package owns the geometry and text that
// every surface shares:
//
//   - [Build] converts a [layout.Result] into a [Scene] of boxes and curves
//   - [WrapText] and friends produce the per-node text blocks
//   - [EdgeCurve] computes the cubic Bézier for a parent-child link
//   - [ToPDF] and [ToPNG] convert SVG to other formats
//
// Concrete outputs live in subpackages: [sink] (SVG, PNG, PDF, JSON) and
// [nodelink] (Graphviz node-link diagrams).
//
// # Text
//
// A box carries two text blocks. The primary block is the thought (or "—"
// when empty) with a " (P%)" suffix when the score is a finite number in
// [0,1], P = floor(score·100). The secondary block is the reason. Both are
// greedily wrapped at whitespace, 28 and 34 characters by default, and
// capped at three lines; words past the cap are dropped.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] shell out to rsvg-convert (from librsvg):
//
//	svg := sink.RenderSVG(scene)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [sink]: github.com/matzehuels/thoughttree/pkg/render/sink
// [nodelink]: github.com/matzehuels/thoughttree/pkg/render/nodelink
package render
