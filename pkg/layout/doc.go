// Package layout computes non-overlapping 2D positions for a reasoning tree.
//
// [Compute] is a pure function of (tree, depth cutoff, collapsed set): it
// returns a fresh [Result] on every call and never patches a previous one.
// Callers relayout from scratch whenever the tree, the cutoff or the
// collapsed set changes.
//
// # Algorithm
//
// The layout is a classic two-pass tidy-tree placement:
//
//  1. Width pass (bottom-up). A node whose children are hidden (no children,
//     depth cutoff reached, or collapsed) is a leaf and spans one node width.
//     Otherwise its subtree spans max(nodeWidth, Σ child spans + gap·(n−1)).
//  2. Position pass (top-down). The root sits at x=0 and children are laid
//     out left to right, centered under their parent.
//  3. Normalization. Everything is shifted so the leftmost box edge sits at
//     the padding; totals are the padded bounding box.
//
// Nodes are stored in an arena indexed by int, with parent and child
// relations as index lists. Both passes iterate over the arena instead of
// recursing, so trace depth is bounded only by memory.
//
// # Coordinates
//
// X is the center of a node box, Y is its top edge. Y grows downward with
// depth: y = depth·(nodeHeight + verticalGap).
package layout
