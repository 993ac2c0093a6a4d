package render

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/thoughttree/pkg/layout"
	"github.com/matzehuels/thoughttree/pkg/tree"
	"github.com/matzehuels/thoughttree/pkg/view"
)

// Text offsets inside a box, in scene units.
const (
	TextInset       = 12.0
	TitleBaseline   = 22.0
	TitleLeading    = 18.0
	ReasonGap       = 10.0
	ReasonLeading   = 16.0
	ToggleSize      = 16.0
	ToggleMarginTop = 8.0
	ToggleInset     = 24.0 // toggle left edge, measured from the box's right edge
	CornerRadius    = 8.0

	// EdgeTangent is the vertical offset of a curve's control points from
	// its endpoints.
	EdgeTangent = 16.0
	// EdgeBend is the fraction of the horizontal distance the control points
	// are pulled toward each other.
	EdgeBend = 0.4
)

// Toggle glyphs.
const (
	GlyphExpanded  = "−"
	GlyphCollapsed = "+"
)

// Line is one line of text, positioned relative to its box's top-left
// corner (x is the start, y the baseline).
type Line struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
}

// Toggle is the collapse affordance, positioned relative to its box.
type Toggle struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Size      float64 `json:"size"`
	Glyph     string  `json:"glyph"`
	Collapsed bool    `json:"collapsed"`
}

// Box is one visible node ready to draw. X and Y are the top-left corner.
type Box struct {
	ID      tree.Identity `json:"id"`
	Path    string        `json:"path"`
	Depth   int           `json:"depth"`
	X       float64       `json:"x"`
	Y       float64       `json:"y"`
	Width   float64       `json:"width"`
	Height  float64       `json:"height"`
	Title   []Line        `json:"title,omitempty"`
	Reason  []Line        `json:"reason,omitempty"`
	Tooltip string        `json:"tooltip"`
	Toggle  *Toggle       `json:"toggle,omitempty"`
}

// Curve is a cubic Bézier from a parent's bottom-center to a child's
// top-center.
type Curve struct {
	From tree.Identity `json:"from"`
	To   tree.Identity `json:"to"`
	X1   float64       `json:"x1"`
	Y1   float64       `json:"y1"`
	C1X  float64       `json:"c1x"`
	C1Y  float64       `json:"c1y"`
	C2X  float64       `json:"c2x"`
	C2Y  float64       `json:"c2y"`
	X2   float64       `json:"x2"`
	Y2   float64       `json:"y2"`
}

// Path returns the curve as SVG path data.
func (c Curve) Path() string {
	return fmt.Sprintf("M %s %s C %s %s, %s %s, %s %s",
		num(c.X1), num(c.Y1), num(c.C1X), num(c.C1Y), num(c.C2X), num(c.C2Y), num(c.X2), num(c.Y2))
}

// EdgeCurve computes the link between a parent and a child box. The
// control points are offset horizontally by 40% of the distance between
// the endpoints and vertically by a fixed tangent.
func EdgeCurve(parent, child *layout.Node) Curve {
	x1, y1 := parent.X, parent.Bottom()
	x2, y2 := child.X, child.Y
	dx := (x2 - x1) * EdgeBend
	return Curve{
		From: parent.ID, To: child.ID,
		X1: x1, Y1: y1,
		C1X: x1 + dx, C1Y: y1 + EdgeTangent,
		C2X: x2 - dx, C2Y: y2 - EdgeTangent,
		X2: x2, Y2: y2,
	}
}

// Scene is everything a surface needs to draw one frame: boxes, curves and
// the viewport transform applied to all of them at once.
type Scene struct {
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Transform view.Transform `json:"transform"`
	Panning   bool           `json:"panning,omitempty"`
	Boxes     []Box          `json:"nodes"`
	Edges     []Curve        `json:"edges"`
}

// ViewBox returns the scene size, floored at 1 in each dimension.
func (s Scene) ViewBox() (w, h float64) {
	return max(1, s.Width), max(1, s.Height)
}

// Option configures [Build].
type Option func(*builder)

type builder struct {
	text      TextConfig
	transform view.Transform
	panning   bool
}

// WithText overrides the wrap limits.
func WithText(cfg TextConfig) Option {
	return func(b *builder) { b.text = cfg }
}

// WithTransform sets the viewport transform recorded in the scene.
func WithTransform(t view.Transform) Option {
	return func(b *builder) { b.transform = t }
}

// WithPanning marks the scene as drawn during an active drag.
func WithPanning(p bool) Option {
	return func(b *builder) { b.panning = p }
}

// Build converts a layout into a scene. collapsed decides the toggle glyph
// and may be nil.
func Build(r *layout.Result, collapsed layout.Collapsed, opts ...Option) Scene {
	b := builder{text: DefaultTextConfig(), transform: view.IdentityTransform}
	for _, opt := range opts {
		opt(&b)
	}

	s := Scene{
		Width:     r.Width,
		Height:    r.Height,
		Transform: b.transform,
		Panning:   b.panning,
		Boxes:     make([]Box, 0, len(r.Nodes)),
		Edges:     make([]Curve, 0, len(r.Edges)),
	}
	for i := range r.Nodes {
		s.Boxes = append(s.Boxes, b.box(&r.Nodes[i], collapsed))
	}
	for _, e := range r.Edges {
		s.Edges = append(s.Edges, EdgeCurve(&r.Nodes[e.From], &r.Nodes[e.To]))
	}
	return s
}

// FromController builds the scene for a session's current state.
func FromController(c *view.Controller, opts ...Option) Scene {
	vp := c.Viewport()
	opts = append([]Option{WithTransform(vp.Transform()), WithPanning(vp.Dragging())}, opts...)
	return Build(c.Layout(), c.Collapsed(), opts...)
}

func (b *builder) box(n *layout.Node, collapsed layout.Collapsed) Box {
	box := Box{
		ID:      n.ID,
		Path:    n.Path,
		Depth:   n.Depth,
		X:       n.Left(),
		Y:       n.Y,
		Width:   n.Width,
		Height:  n.Height,
		Tooltip: Tooltip(n.Source),
	}

	title := WrapText(PrimaryText(n.Source), b.text.PrimaryWidth, b.text.MaxLines)
	for i, l := range title {
		box.Title = append(box.Title, Line{X: TextInset, Y: TitleBaseline + TitleLeading*float64(i), Text: l})
	}
	reasonTop := TitleBaseline + TitleLeading*float64(len(title)) + ReasonGap
	for i, l := range WrapText(SecondaryText(n.Source), b.text.SecondaryWidth, b.text.MaxLines) {
		box.Reason = append(box.Reason, Line{X: TextInset, Y: reasonTop + ReasonLeading*float64(i), Text: l})
	}

	if n.Source.HasChildren() {
		c := collapsed != nil && collapsed.IsCollapsed(n.ID)
		glyph := GlyphExpanded
		if c {
			glyph = GlyphCollapsed
		}
		box.Toggle = &Toggle{
			X:         n.Width - ToggleInset,
			Y:         ToggleMarginTop,
			Size:      ToggleSize,
			Glyph:     glyph,
			Collapsed: c,
		}
	}
	return box
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
