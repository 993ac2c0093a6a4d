package layout

import "github.com/matzehuels/thoughttree/pkg/tree"

// Default geometry, in scene units.
const (
	DefaultNodeWidth     = 240.0
	DefaultNodeHeight    = 100.0
	DefaultHorizontalGap = 48.0
	DefaultVerticalGap   = 140.0
	DefaultPadding       = 24.0
)

// Unlimited disables the depth cutoff.
const Unlimited = -1

// Geometry holds the fixed sizes used by a layout pass.
type Geometry struct {
	NodeWidth     float64 `json:"node_width" toml:"node_width"`
	NodeHeight    float64 `json:"node_height" toml:"node_height"`
	HorizontalGap float64 `json:"horizontal_gap" toml:"horizontal_gap"`
	VerticalGap   float64 `json:"vertical_gap" toml:"vertical_gap"`
	Padding       float64 `json:"padding" toml:"padding"`
}

// DefaultGeometry returns the standard node and gap sizes.
func DefaultGeometry() Geometry {
	return Geometry{
		NodeWidth:     DefaultNodeWidth,
		NodeHeight:    DefaultNodeHeight,
		HorizontalGap: DefaultHorizontalGap,
		VerticalGap:   DefaultVerticalGap,
		Padding:       DefaultPadding,
	}
}

// RowHeight is the vertical distance between two consecutive depths.
func (g Geometry) RowHeight() float64 { return g.NodeHeight + g.VerticalGap }

// Collapsed reports whether a node's children are hidden.
type Collapsed interface {
	IsCollapsed(id tree.Identity) bool
}

// Set is a plain Collapsed implementation for callers that do not need the
// full interaction state.
type Set map[tree.Identity]bool

// IsCollapsed implements Collapsed.
func (s Set) IsCollapsed(id tree.Identity) bool { return s[id] }

// Option configures a layout pass.
type Option func(*options)

type options struct {
	maxDepth  int
	collapsed Collapsed
	geometry  Geometry
}

// WithMaxDepth hides everything below depth d; nodes at depth d render as
// leaves. A negative d means no cutoff.
func WithMaxDepth(d int) Option {
	return func(o *options) { o.maxDepth = d }
}

// WithCollapsed sets the collapsed-identity set consulted during the pass.
func WithCollapsed(c Collapsed) Option {
	return func(o *options) { o.collapsed = c }
}

// WithGeometry overrides the default node and gap sizes.
func WithGeometry(g Geometry) Option {
	return func(o *options) { o.geometry = g }
}

// expands reports whether the node's children take part in this pass.
func (o *options) expands(n *tree.Node, id tree.Identity, depth int) bool {
	if !n.HasChildren() {
		return false
	}
	if o.maxDepth >= 0 && depth >= o.maxDepth {
		return false
	}
	return o.collapsed == nil || !o.collapsed.IsCollapsed(id)
}
