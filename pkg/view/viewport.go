package view

import (
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/thoughttree/pkg/errors"
)

// Default viewport bounds and zoom steps.
const (
	DefaultMinScale = 0.5
	DefaultMaxScale = 2.5
	DefaultZoomIn   = 1.1
	DefaultZoomOut  = 0.9
)

// ViewportConfig bounds the scale and sets the per-notch zoom factors.
type ViewportConfig struct {
	MinScale float64 `json:"min_scale" toml:"min_scale"`
	MaxScale float64 `json:"max_scale" toml:"max_scale"`
	ZoomIn   float64 `json:"zoom_in" toml:"zoom_in"`
	ZoomOut  float64 `json:"zoom_out" toml:"zoom_out"`
}

// DefaultViewportConfig returns the standard [0.5, 2.5] range with 10% steps.
func DefaultViewportConfig() ViewportConfig {
	return ViewportConfig{
		MinScale: DefaultMinScale,
		MaxScale: DefaultMaxScale,
		ZoomIn:   DefaultZoomIn,
		ZoomOut:  DefaultZoomOut,
	}
}

// Validate checks that the range is non-empty and positive and that the
// zoom factors point the right way.
func (c ViewportConfig) Validate() error {
	switch {
	case !(c.MinScale > 0) || math.IsNaN(c.MaxScale) || math.IsInf(c.MaxScale, 0):
		return errors.New(errors.ErrCodeInvalidConfig, "viewport: scale range must be positive and finite")
	case !(c.MaxScale >= c.MinScale):
		return errors.New(errors.ErrCodeInvalidConfig, "viewport: max_scale %g below min_scale %g", c.MaxScale, c.MinScale)
	case !(c.ZoomIn > 1):
		return errors.New(errors.ErrCodeInvalidConfig, "viewport: zoom_in must be greater than 1, got %g", c.ZoomIn)
	case !(c.ZoomOut > 0 && c.ZoomOut < 1):
		return errors.New(errors.ErrCodeInvalidConfig, "viewport: zoom_out must be in (0, 1), got %g", c.ZoomOut)
	}
	return nil
}

// Transform is a translate-then-scale affine map from scene to screen
// coordinates: screen = translate + scale·scene.
type Transform struct {
	Scale float64 `json:"scale"`
	TX    float64 `json:"tx"`
	TY    float64 `json:"ty"`
}

// IdentityTransform is the transform that leaves the scene untouched.
var IdentityTransform = Transform{Scale: 1}

// Apply maps a scene point to screen coordinates.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return t.TX + t.Scale*x, t.TY + t.Scale*y
}

// Invert maps a screen point back into scene coordinates.
func (t Transform) Invert(x, y float64) (float64, float64) {
	return (x - t.TX) / t.Scale, (y - t.TY) / t.Scale
}

// String formats the transform as an SVG transform attribute.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%s %s) scale(%s)", num(t.TX), num(t.TY), num(t.Scale))
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// Viewport is the pan/zoom state of one session. Scale is always within
// the configured range; translation is unbounded.
type Viewport struct {
	cfg   ViewportConfig
	scale float64
	tx    float64
	ty    float64

	dragging     bool
	lastX, lastY float64
}

// NewViewport returns a viewport at scale 1 (clamped into cfg) and no
// translation. An invalid cfg falls back to the defaults.
func NewViewport(cfg ViewportConfig) *Viewport {
	if cfg.Validate() != nil {
		cfg = DefaultViewportConfig()
	}
	v := &Viewport{cfg: cfg}
	v.SetScale(1)
	return v
}

// Config returns the bounds the viewport was built with.
func (v *Viewport) Config() ViewportConfig { return v.cfg }

// Scale returns the current, clamped scale.
func (v *Viewport) Scale() float64 { return v.scale }

// Translation returns the current pan offset.
func (v *Viewport) Translation() (float64, float64) { return v.tx, v.ty }

// Transform returns the affine map for the current state.
func (v *Viewport) Transform() Transform {
	return Transform{Scale: v.scale, TX: v.tx, TY: v.ty}
}

// SetScale sets the scale, clamped into the configured range. NaN clamps to
// the lower bound.
func (v *Viewport) SetScale(s float64) {
	switch {
	case !(s >= v.cfg.MinScale):
		s = v.cfg.MinScale
	case s > v.cfg.MaxScale:
		s = v.cfg.MaxScale
	}
	v.scale = s
}

// Wheel zooms about the origin. A positive deltaY (scrolling down) zooms
// out, a negative one zooms in, zero does nothing.
func (v *Viewport) Wheel(deltaY float64) {
	switch {
	case deltaY > 0:
		v.SetScale(v.scale * v.cfg.ZoomOut)
	case deltaY < 0:
		v.SetScale(v.scale * v.cfg.ZoomIn)
	}
}

// PointerDown starts a pan session at (x, y). A press during an active
// session just moves the anchor.
func (v *Viewport) PointerDown(x, y float64) {
	v.dragging = true
	v.lastX, v.lastY = x, y
}

// PointerMove pans by the delta since the last recorded pointer position.
// Without an active session it is a no-op.
func (v *Viewport) PointerMove(x, y float64) {
	if !v.dragging {
		return
	}
	v.tx += x - v.lastX
	v.ty += y - v.lastY
	v.lastX, v.lastY = x, y
}

// PointerUp ends the pan session. Ending an inactive session is a no-op.
func (v *Viewport) PointerUp() { v.dragging = false }

// PointerLeave ends the pan session when the pointer leaves the surface.
func (v *Viewport) PointerLeave() { v.dragging = false }

// Pan shifts the translation by (dx, dy) outside of any drag session.
func (v *Viewport) Pan(dx, dy float64) {
	v.tx += dx
	v.ty += dy
}

// Dragging reports whether a pan session is active.
func (v *Viewport) Dragging() bool { return v.dragging }

// Reset returns to scale 1 (clamped) and no translation, and ends any drag.
func (v *Viewport) Reset() {
	v.SetScale(1)
	v.tx, v.ty = 0, 0
	v.dragging = false
}

// Restore sets the state from a persisted transform. The scale is clamped
// again so stored values can never escape the range.
func (v *Viewport) Restore(t Transform) {
	v.SetScale(t.Scale)
	v.tx, v.ty = t.TX, t.TY
	v.dragging = false
}
