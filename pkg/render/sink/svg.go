package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/matzehuels/thoughttree/pkg/render"
)

const sceneCSS = `
    .tt-svg { cursor: grab; background: #fafafa; }
    .tt-svg.tt-panning { cursor: grabbing; }
    .tt-edges path { stroke: #9aa5b1; stroke-width: 2; fill: none; }
    .tt-node rect.tt-box { fill: #ffffff; stroke: #3e4c59; stroke-width: 1.5; }
    .tt-node.tt-collapsible { cursor: pointer; }
    .tt-title { font: 600 14px sans-serif; fill: #1f2933; }
    .tt-reason { font: 12px sans-serif; fill: #616e7c; }
    .tt-toggle rect { fill: #e4e7eb; stroke: #9aa5b1; }
    .tt-toggle text { font: 700 12px sans-serif; fill: #1f2933; }`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	responsive bool
	tooltips   bool
	styles     bool
}

// WithResponsive sizes the SVG to its container instead of the scene.
func WithResponsive() SVGOption { return func(r *svgRenderer) { r.responsive = true } }

// WithoutTooltips omits the per-box <title> elements.
func WithoutTooltips() SVGOption { return func(r *svgRenderer) { r.tooltips = false } }

// WithoutStyles omits the embedded stylesheet.
func WithoutStyles() SVGOption { return func(r *svgRenderer) { r.styles = false } }

// RenderSVG renders the scene as a standalone SVG document.
func RenderSVG(s render.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{tooltips: true, styles: true}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := s.ViewBox()
	class := "tt-svg"
	if s.Panning {
		class += " tt-panning"
	}

	var buf bytes.Buffer
	if r.responsive {
		fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" class="%s" viewBox="0 0 %s %s" width="100%%" height="100%%" preserveAspectRatio="xMidYMid meet" role="img" aria-label="Tree of Thought graph">`+"\n",
			class, num(w), num(h))
	} else {
		fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" class="%s" viewBox="0 0 %s %s" width="%.0f" height="%.0f" role="img" aria-label="Tree of Thought graph">`+"\n",
			class, num(w), num(h), w, h)
	}
	if r.styles {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", sceneCSS)
	}

	fmt.Fprintf(&buf, "  <g transform=\"%s\">\n", s.Transform)
	buf.WriteString("    <g class=\"tt-edges\">\n")
	for _, e := range s.Edges {
		fmt.Fprintf(&buf, "      <path d=\"%s\" data-from=\"%s\" data-to=\"%s\"/>\n",
			e.Path(), escapeXML(string(e.From)), escapeXML(string(e.To)))
	}
	buf.WriteString("    </g>\n")

	buf.WriteString("    <g class=\"tt-nodes\">\n")
	for _, b := range s.Boxes {
		renderBox(&buf, b, r.tooltips)
	}
	buf.WriteString("    </g>\n")
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderBox(buf *bytes.Buffer, b render.Box, tooltips bool) {
	class := "tt-node"
	if b.Toggle != nil {
		class += " tt-collapsible"
	}
	fmt.Fprintf(buf, "      <g class=\"%s\" id=\"node-%s\" transform=\"translate(%s, %s)\">\n",
		class, escapeXML(string(b.ID)), num(b.X), num(b.Y))
	fmt.Fprintf(buf, "        <rect class=\"tt-box\" rx=\"%s\" ry=\"%s\" width=\"%s\" height=\"%s\"/>\n",
		num(render.CornerRadius), num(render.CornerRadius), num(b.Width), num(b.Height))
	if tooltips {
		fmt.Fprintf(buf, "        <title>%s</title>\n", escapeXML(b.Tooltip))
	}
	for _, l := range b.Title {
		fmt.Fprintf(buf, "        <text class=\"tt-title\" x=\"%s\" y=\"%s\">%s</text>\n", num(l.X), num(l.Y), escapeXML(l.Text))
	}
	for _, l := range b.Reason {
		fmt.Fprintf(buf, "        <text class=\"tt-reason\" x=\"%s\" y=\"%s\">%s</text>\n", num(l.X), num(l.Y), escapeXML(l.Text))
	}
	if t := b.Toggle; t != nil {
		fmt.Fprintf(buf, "        <g class=\"tt-toggle\" transform=\"translate(%s, %s)\">", num(t.X), num(t.Y))
		fmt.Fprintf(buf, "<rect width=\"%s\" height=\"%s\" rx=\"3\" ry=\"3\"/>", num(t.Size), num(t.Size))
		fmt.Fprintf(buf, "<text x=\"%s\" y=\"%s\" text-anchor=\"middle\">%s</text></g>\n", num(t.Size/2), num(t.Size-4), t.Glyph)
	}
	buf.WriteString("      </g>\n")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
