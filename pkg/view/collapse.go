package view

import (
	"slices"

	"github.com/matzehuels/thoughttree/pkg/layout"
	"github.com/matzehuels/thoughttree/pkg/tree"
)

// CollapseState is the set of identities whose children are hidden.
// The zero value is an empty set ready to use.
//
// It stores identities only and never touches the tree, so it survives
// relayouts and can outlive the tree it was built against.
type CollapseState struct {
	ids map[tree.Identity]bool
}

var _ layout.Collapsed = (*CollapseState)(nil)

// NewCollapseState returns a set with the given identities collapsed.
func NewCollapseState(ids ...tree.Identity) *CollapseState {
	c := &CollapseState{}
	for _, id := range ids {
		c.Set(id, true)
	}
	return c
}

// IsCollapsed implements layout.Collapsed. A nil state collapses nothing.
func (c *CollapseState) IsCollapsed(id tree.Identity) bool {
	return c != nil && c.ids[id]
}

// Toggle flips membership of id and returns the new state.
// Toggling twice restores the original set.
func (c *CollapseState) Toggle(id tree.Identity) bool {
	collapsed := !c.IsCollapsed(id)
	c.Set(id, collapsed)
	return collapsed
}

// Set marks id as collapsed or expanded.
func (c *CollapseState) Set(id tree.Identity, collapsed bool) {
	if !collapsed {
		delete(c.ids, id)
		return
	}
	if c.ids == nil {
		c.ids = make(map[tree.Identity]bool)
	}
	c.ids[id] = true
}

// Len returns the number of collapsed identities.
func (c *CollapseState) Len() int {
	if c == nil {
		return 0
	}
	return len(c.ids)
}

// Identities returns the collapsed identities in sorted order.
func (c *CollapseState) Identities() []tree.Identity {
	if c.Len() == 0 {
		return nil
	}
	out := make([]tree.Identity, 0, len(c.ids))
	for id := range c.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Reset expands everything.
func (c *CollapseState) Reset() { clear(c.ids) }

// Clone returns an independent copy.
func (c *CollapseState) Clone() *CollapseState {
	return NewCollapseState(c.Identities()...)
}
