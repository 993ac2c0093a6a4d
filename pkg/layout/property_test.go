package layout

import (
	"reflect"
	"strconv"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/thoughttree/pkg/tree"
)

// genTree draws a random tree of bounded depth and fan-out. Some nodes get
// explicit ids so both identity kinds are exercised.
func genTree(t *rapid.T, depth int, label string) *tree.Node {
	n := &tree.Node{Thought: label}
	if rapid.Bool().Draw(t, "id-"+label) {
		n.ID = "id-" + label
	}
	if depth >= 4 {
		return n
	}
	k := rapid.IntRange(0, 4).Draw(t, "fanout-"+label)
	for i := range k {
		n.Children = append(n.Children, genTree(t, depth+1, label+"-"+strconv.Itoa(i)))
	}
	return n
}

// genCollapsed draws a random subset of the tree's identities.
func genCollapsed(t *rapid.T, root *tree.Node) Set {
	set := Set{}
	tree.Walk(root, func(n *tree.Node, path string, _ int) bool {
		id := n.Identity(path)
		if rapid.Bool().Draw(t, "collapse-"+path) {
			set[id] = true
		}
		return true
	})
	return set
}

// reachable counts nodes reachable without crossing a cutoff or collapsed
// boundary, independently of Compute.
func reachable(root *tree.Node, maxDepth int, collapsed Set) int {
	count := 0
	tree.Walk(root, func(n *tree.Node, path string, depth int) bool {
		count++
		if maxDepth >= 0 && depth >= maxDepth {
			return false
		}
		return !collapsed[n.Identity(path)]
	})
	return count
}

func TestPropertyVisibleCount(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root := genTree(t, 0, "0")
		maxDepth := rapid.IntRange(-1, 5).Draw(t, "maxDepth")
		collapsed := genCollapsed(t, root)

		r := Compute(root, WithMaxDepth(maxDepth), WithCollapsed(collapsed))

		if want := reachable(root, maxDepth, collapsed); r.Len() != want {
			t.Fatalf("Len() = %d, want %d", r.Len(), want)
		}
		if len(r.Edges) != r.Len()-1 {
			t.Fatalf("len(Edges) = %d, want %d", len(r.Edges), r.Len()-1)
		}
	})
}

func TestPropertySiblingsDisjoint(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root := genTree(t, 0, "0")
		collapsed := genCollapsed(t, root)
		r := Compute(root, WithCollapsed(collapsed))
		g := r.Geometry

		for _, n := range r.Nodes {
			if n.Width != g.NodeWidth || n.Height != g.NodeHeight {
				t.Fatalf("node %s size %vx%v", n.ID, n.Width, n.Height)
			}
			for i := 1; i < len(n.Children); i++ {
				a, b := r.Nodes[n.Children[i-1]], r.Nodes[n.Children[i]]
				if gap := b.Left() - a.Right(); gap < g.HorizontalGap-eps {
					t.Fatalf("siblings %s and %s gap %v < %v", a.ID, b.ID, gap, g.HorizontalGap)
				}
			}
		}
	})
}

func TestPropertyBoundingBox(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root := genTree(t, 0, "0")
		r := Compute(root)
		g := r.Geometry

		minLeft, maxRight := r.Nodes[0].Left(), r.Nodes[0].Right()
		for _, n := range r.Nodes {
			minLeft = min(minLeft, n.Left())
			maxRight = max(maxRight, n.Right())
			if n.Bottom() > r.Height {
				t.Fatalf("node %s bottom %v outside height %v", n.ID, n.Bottom(), r.Height)
			}
		}
		if minLeft < g.Padding-eps || minLeft > g.Padding+eps {
			t.Fatalf("min left = %v, want %v", minLeft, g.Padding)
		}
		if d := r.Width - (maxRight + g.Padding); d > eps || d < -eps {
			t.Fatalf("Width = %v, want %v", r.Width, maxRight+g.Padding)
		}
	})
}

func TestPropertyDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root := genTree(t, 0, "0")
		collapsed := genCollapsed(t, root)

		a := Compute(root, WithCollapsed(collapsed))
		b := Compute(root, WithCollapsed(collapsed))
		if !reflect.DeepEqual(a, b) {
			t.Fatal("two passes over the same input differ")
		}
	})
}
