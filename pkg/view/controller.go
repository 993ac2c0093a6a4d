package view

import (
	"github.com/matzehuels/thoughttree/pkg/layout"
	"github.com/matzehuels/thoughttree/pkg/tree"
)

// EventKind names a raw input event.
type EventKind string

// Raw input events accepted by [Controller.Handle].
const (
	EventPointerDown  EventKind = "down"
	EventPointerMove  EventKind = "move"
	EventPointerUp    EventKind = "up"
	EventPointerLeave EventKind = "leave"
	EventWheel        EventKind = "wheel"
)

// Event is one raw pointer or wheel event in screen coordinates.
type Event struct {
	Kind   EventKind `json:"kind"`
	X      float64   `json:"x,omitempty"`
	Y      float64   `json:"y,omitempty"`
	DeltaY float64   `json:"delta_y,omitempty"`
}

// State is the persistable part of a session.
type State struct {
	MaxDepth  int             `json:"max_depth"`
	Collapsed []tree.Identity `json:"collapsed,omitempty"`
	Viewport  Transform       `json:"viewport"`
}

// Controller is the single writer of a session's collapse state and
// viewport. It keeps the layout of the current state and recomputes it
// from scratch after every change.
type Controller struct {
	root     *tree.Node
	maxDepth int
	geometry layout.Geometry

	collapse *CollapseState
	viewport *Viewport
	result   layout.Result

	// press tracks a pointer-down on a node box, the only way a click
	// starts. A press on a node never begins a pan.
	press    tree.Identity
	pressing bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithMaxDepth sets the depth cutoff. Negative means unlimited.
func WithMaxDepth(d int) Option {
	return func(c *Controller) { c.maxDepth = d }
}

// WithGeometry overrides the default node and gap sizes.
func WithGeometry(g layout.Geometry) Option {
	return func(c *Controller) { c.geometry = g }
}

// WithViewport sets the scale bounds and zoom factors.
func WithViewport(cfg ViewportConfig) Option {
	return func(c *Controller) { c.viewport = NewViewport(cfg) }
}

// WithCollapsed starts the session with the given identities collapsed.
func WithCollapsed(ids ...tree.Identity) Option {
	return func(c *Controller) { c.collapse = NewCollapseState(ids...) }
}

// NewController starts a session over root and computes the first layout.
func NewController(root *tree.Node, opts ...Option) *Controller {
	c := &Controller{
		root:     root,
		maxDepth: layout.Unlimited,
		geometry: layout.DefaultGeometry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.collapse == nil {
		c.collapse = &CollapseState{}
	}
	if c.viewport == nil {
		c.viewport = NewViewport(DefaultViewportConfig())
	}
	c.relayout()
	return c
}

func (c *Controller) relayout() {
	c.result = layout.Compute(c.root,
		layout.WithMaxDepth(c.maxDepth),
		layout.WithCollapsed(c.collapse),
		layout.WithGeometry(c.geometry),
	)
}

// Tree returns the tree being viewed.
func (c *Controller) Tree() *tree.Node { return c.root }

// Layout returns the layout of the current state. It is replaced, not
// patched, on every change.
func (c *Controller) Layout() *layout.Result { return &c.result }

// Viewport returns the session viewport. Callers should drive it through
// the controller so clicks and pans stay separated.
func (c *Controller) Viewport() *Viewport { return c.viewport }

// Collapsed returns the session's collapse state.
func (c *Controller) Collapsed() *CollapseState { return c.collapse }

// MaxDepth returns the depth cutoff, negative when unlimited.
func (c *Controller) MaxDepth() int { return c.maxDepth }

// SetTree swaps in a new tree and relayouts. Collapse state is kept; path
// identities carry over by position.
func (c *Controller) SetTree(root *tree.Node) {
	c.root = root
	c.pressing = false
	c.relayout()
}

// SetMaxDepth changes the depth cutoff and relayouts.
func (c *Controller) SetMaxDepth(d int) {
	if d < 0 {
		d = layout.Unlimited
	}
	if d == c.maxDepth {
		return
	}
	c.maxDepth = d
	c.relayout()
}

// Click toggles the node's collapse state when it has children. It reports
// whether anything changed; clicks on leaves and unknown ids are ignored.
func (c *Controller) Click(id tree.Identity) bool {
	var src *tree.Node
	if n, ok := c.result.Lookup(id); ok {
		src = n.Source
	} else if n, _, ok := tree.Find(c.root, id); ok {
		src = n
	}
	if !src.HasChildren() {
		return false
	}
	c.collapse.Toggle(id)
	c.relayout()
	return true
}

// ExpandAll clears the collapse state.
func (c *Controller) ExpandAll() {
	if c.collapse.Len() == 0 {
		return
	}
	c.collapse.Reset()
	c.relayout()
}

// PointerDown handles a press at screen point (x, y). A press on a node box
// arms a click; anywhere else it starts a pan.
func (c *Controller) PointerDown(x, y float64) {
	if n, ok := c.hit(x, y); ok {
		c.press, c.pressing = n.ID, true
		return
	}
	c.pressing = false
	c.viewport.PointerDown(x, y)
}

// PointerMove pans while a drag is active.
func (c *Controller) PointerMove(x, y float64) {
	c.viewport.PointerMove(x, y)
}

// PointerUp ends any drag. A release over the node that was pressed is a
// click. It reports whether the layout changed.
func (c *Controller) PointerUp(x, y float64) bool {
	c.viewport.PointerUp()
	if !c.pressing {
		return false
	}
	c.pressing = false
	n, ok := c.hit(x, y)
	if !ok || n.ID != c.press {
		return false
	}
	return c.Click(n.ID)
}

// PointerLeave ends any drag and disarms a pending click.
func (c *Controller) PointerLeave() {
	c.pressing = false
	c.viewport.PointerLeave()
}

// Pan shifts the view by a keyboard step. It does not affect a drag in
// progress.
func (c *Controller) Pan(dx, dy float64) {
	c.viewport.Pan(dx, dy)
}

// ResetView returns to the initial zoom and translation and drops any
// pending press.
func (c *Controller) ResetView() {
	c.viewport.Reset()
	c.pressing = false
}

// Wheel zooms about the origin.
func (c *Controller) Wheel(deltaY float64) {
	c.viewport.Wheel(deltaY)
}

// Handle dispatches a raw event. It reports whether the layout changed.
// Unknown kinds are ignored.
func (c *Controller) Handle(ev Event) bool {
	switch ev.Kind {
	case EventPointerDown:
		c.PointerDown(ev.X, ev.Y)
	case EventPointerMove:
		c.PointerMove(ev.X, ev.Y)
	case EventPointerUp:
		return c.PointerUp(ev.X, ev.Y)
	case EventPointerLeave:
		c.PointerLeave()
	case EventWheel:
		c.Wheel(ev.DeltaY)
	}
	return false
}

// hit maps a screen point into the scene and returns the node under it.
func (c *Controller) hit(x, y float64) (*layout.Node, bool) {
	sx, sy := c.viewport.Transform().Invert(x, y)
	return c.result.HitTest(sx, sy)
}

// State captures the persistable session state.
func (c *Controller) State() State {
	return State{
		MaxDepth:  c.maxDepth,
		Collapsed: c.collapse.Identities(),
		Viewport:  c.viewport.Transform(),
	}
}

// Restore replaces the session state and relayouts. Any pending drag or
// click is dropped.
func (c *Controller) Restore(s State) {
	c.maxDepth = s.MaxDepth
	if c.maxDepth < 0 {
		c.maxDepth = layout.Unlimited
	}
	c.collapse = NewCollapseState(s.Collapsed...)
	c.viewport.Restore(s.Viewport)
	c.pressing = false
	c.relayout()
}
