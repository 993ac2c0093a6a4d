// Package pipeline provides the decode → layout → render pipeline for
// thoughttree.
//
// The CLI and the HTTP server both go through a [Runner] so that caching,
// logging and instrumentation behave the same at every entry point.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Decode: read a tree or a ToT response envelope
//  2. Layout: compute positions for the visible nodes and build the scene
//  3. Render: encode the scene as SVG, PNG, PDF, JSON or DOT
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, root, pipeline.Options{
//	    MaxDepth: 3,
//	    Formats:  []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/thoughttree/pkg/cache"
	"github.com/matzehuels/thoughttree/pkg/errors"
	"github.com/matzehuels/thoughttree/pkg/layout"
	"github.com/matzehuels/thoughttree/pkg/render"
	"github.com/matzehuels/thoughttree/pkg/tree"
	"github.com/matzehuels/thoughttree/pkg/view"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultScale is the PNG rasterisation scale.
const DefaultScale = 2.0

// Visualization types.
const (
	// VizTree draws fixed-size boxes at the computed layout positions.
	VizTree = "tree"

	// VizNodelink lets Graphviz position the visible nodes.
	VizNodelink = "nodelink"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTree

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTree:     true,
	VizNodelink: true,
}

// ContentTypes maps each format to its HTTP content type.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatDOT:  "text/vnd.graphviz",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Layout options
	MaxDepth  int             `json:"max_depth"`
	Collapsed []tree.Identity `json:"collapsed,omitempty"`
	Geometry  layout.Geometry `json:"geometry"`

	// Render options
	VizType    string            `json:"viz_type,omitempty"`
	Formats    []string          `json:"formats,omitempty"`
	Text       render.TextConfig `json:"text"`
	Transform  view.Transform    `json:"transform"`
	Scale      float64           `json:"scale,omitempty"`
	Responsive bool              `json:"responsive,omitempty"`
	Detailed   bool              `json:"detailed,omitempty"`
	Refresh    bool              `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the decoded input.
	Tree *tree.Node

	// TreeHash is the content hash of the tree.
	TreeHash string

	// Layout holds the positions of the visible nodes. It is empty when the
	// scene and every artifact came from cache.
	Layout layout.Result

	// Scene is the drawable geometry built from Layout.
	Scene render.Scene

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Tree       tree.Stats
	Visible    int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SceneHit  bool // Whether the scene came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errors.ValidateOneOf(errors.ErrCodeInvalidFormat, "format", format, ValidFormats)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	return errors.ValidateOneOf(errors.ErrCodeInvalidVizType, "viz_type", vizType, ValidVizTypes)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Geometry == (layout.Geometry{}) {
		o.Geometry = layout.DefaultGeometry()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errors.ValidateMaxDepth(o.MaxDepth); err != nil {
		return err
	}
	g := o.Geometry
	if g.NodeWidth <= 0 || g.NodeHeight <= 0 || g.HorizontalGap < 0 || g.VerticalGap < 0 || g.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid geometry: sizes must be positive and gaps non-negative")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if o.Text == (render.TextConfig{}) {
		o.Text = render.DefaultTextConfig()
	}
	if o.Transform == (view.Transform{}) {
		o.Transform = view.IdentityTransform
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	return nil
}

// IsNodelink returns true if the visualization type is nodelink.
func (o Options) IsNodelink() bool {
	return o.VizType == VizNodelink
}

// SceneKeyOpts returns the cache key inputs of the scene stage.
func (o Options) SceneKeyOpts() cache.SceneKeyOpts {
	ids := make([]string, len(o.Collapsed))
	for i, id := range o.Collapsed {
		ids[i] = string(id)
	}
	return cache.SceneKeyOpts{
		MaxDepth:  o.MaxDepth,
		Collapsed: ids,
		Geometry:  o.Geometry,
		Text:      o.Text,
	}
}

// ArtifactKeyOpts returns the cache key inputs of one rendered format.
func (o Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Viz:        o.VizType,
		Format:     format,
		Scale:      o.Scale,
		Responsive: o.Responsive,
		Detailed:   o.Detailed,
		Transform:  o.Transform,
	}
}

// FromState returns options that reproduce a viewing session.
func FromState(s view.State) Options {
	return Options{
		MaxDepth:  s.MaxDepth,
		Collapsed: s.Collapsed,
		Transform: s.Viewport,
	}
}
