// Package sink provides output format renderers for reasoning-tree scenes.
//
// # Overview
//
// A "sink" transforms a [render.Scene] into a final output format:
//
//   - SVG: Scalable vector graphics, one group carrying the viewport transform
//   - JSON: Scene data for external drawing surfaces
//   - PDF: Print-ready output (requires rsvg-convert)
//   - PNG: Raster image output (requires rsvg-convert)
//
// # SVG Output
//
// [RenderSVG] writes edges first and boxes on top, all inside a single
// group transformed by translate(tx ty) scale(s). Node coordinates are never
// re-derived for the transform.
//
//	svg := sink.RenderSVG(scene, sink.WithResponsive())
//
// # SVG Options
//
//   - [WithResponsive]: width/height 100% with preserved aspect ratio, for
//     embedding in a page
//   - [WithoutTooltips]: omit the per-box <title> elements
//   - [WithoutStyles]: omit the embedded stylesheet
//
// [render.Scene]: github.com/matzehuels/thoughttree/pkg/render.Scene
package sink
