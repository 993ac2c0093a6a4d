package layout

import "github.com/matzehuels/thoughttree/pkg/tree"

// Node is one visible tree node after layout. It is created fresh on every
// pass and never mutated once Compute returns.
type Node struct {
	Index  int           // position in Result.Nodes
	ID     tree.Identity // identity used for collapse state
	Path   string        // structural path from the root
	X      float64       // center x
	Y      float64       // top y
	Width  float64
	Height float64
	Depth  int
	Span   float64 // width of the visible subtree rooted here

	Parent   int   // index of the parent, -1 for the root
	Children []int // indices of visible children, left to right

	Source *tree.Node // the input node (descendants retained even when hidden)
}

// Left returns the x of the box's left edge.
func (n *Node) Left() float64 { return n.X - n.Width/2 }

// Right returns the x of the box's right edge.
func (n *Node) Right() float64 { return n.X + n.Width/2 }

// Bottom returns the y of the box's bottom edge.
func (n *Node) Bottom() float64 { return n.Y + n.Height }

// Contains reports whether the scene point (x, y) lies inside the box.
func (n *Node) Contains(x, y float64) bool {
	return x >= n.Left() && x <= n.Right() && y >= n.Y && y <= n.Bottom()
}

// Edge links a parent to one of its visible children, by arena index.
type Edge struct {
	From int
	To   int
}

// Result is the output of a layout pass.
type Result struct {
	Root     int     // index of the root node, -1 for an empty result
	Width    float64 // padded bounding-box width
	Height   float64 // padded bounding-box height
	Nodes    []Node  // visible nodes in pre-order
	Edges    []Edge  // one per visible parent-child link
	Geometry Geometry

	index map[tree.Identity]int
}

// Len returns the number of visible nodes.
func (r *Result) Len() int { return len(r.Nodes) }

// Lookup returns the visible node with the given identity.
func (r *Result) Lookup(id tree.Identity) (*Node, bool) {
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return &r.Nodes[i], true
}

// HitTest returns the node whose box contains the scene point (x, y).
// Boxes never overlap, so at most one node matches.
func (r *Result) HitTest(x, y float64) (*Node, bool) {
	for i := range r.Nodes {
		if r.Nodes[i].Contains(x, y) {
			return &r.Nodes[i], true
		}
	}
	return nil, false
}

// Compute lays out root. It is deterministic and has no side effects.
// The running time is linear in the number of visible nodes.
func Compute(root *tree.Node, opts ...Option) Result {
	o := options{maxDepth: Unlimited, geometry: DefaultGeometry()}
	for _, opt := range opts {
		opt(&o)
	}
	g := o.geometry

	res := Result{Root: -1, Geometry: g, index: map[tree.Identity]int{}}
	if root == nil {
		return res
	}

	res.Nodes = build(root, &o, res.index)
	res.Root = 0

	spans := measure(res.Nodes, g)
	res.Edges = place(res.Nodes, spans, g)
	res.Width, res.Height = normalize(res.Nodes, g)
	return res
}

// build walks the visible part of the tree in pre-order and fills the arena.
// Children always get larger indices than their parent.
func build(root *tree.Node, o *options, index map[tree.Identity]int) []Node {
	g := o.geometry
	type frame struct {
		node   *tree.Node
		path   string
		depth  int
		parent int
	}

	var nodes []Node
	stack := []frame{{root, tree.RootPath, 0, -1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx := len(nodes)
		id := f.node.Identity(f.path)
		nodes = append(nodes, Node{
			Index:  idx,
			ID:     id,
			Path:   f.path,
			Y:      float64(f.depth) * g.RowHeight(),
			Width:  g.NodeWidth,
			Height: g.NodeHeight,
			Depth:  f.depth,
			Parent: f.parent,
			Source: f.node,
		})
		if _, dup := index[id]; !dup {
			index[id] = idx
		}
		if f.parent >= 0 {
			nodes[f.parent].Children = append(nodes[f.parent].Children, idx)
		}

		if !o.expands(f.node, id, f.depth) {
			continue
		}
		kids := f.node.Children
		for i := len(kids) - 1; i >= 0; i-- {
			if kids[i] == nil {
				continue
			}
			stack = append(stack, frame{kids[i], tree.ChildPath(f.path, i), f.depth + 1, idx})
		}
	}
	return nodes
}

// measure computes every node's subtree span bottom-up.
func measure(nodes []Node, g Geometry) []float64 {
	spans := make([]float64, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		n := &nodes[i]
		spans[i] = max(g.NodeWidth, childSpan(n.Children, spans, g))
		n.Span = spans[i]
	}
	return spans
}

// childSpan is the total width occupied by a row of sibling subtrees.
func childSpan(children []int, spans []float64, g Geometry) float64 {
	if len(children) == 0 {
		return 0
	}
	total := g.HorizontalGap * float64(len(children)-1)
	for _, c := range children {
		total += spans[c]
	}
	return total
}

// place assigns x top-down and emits one edge per parent-child pair.
func place(nodes []Node, spans []float64, g Geometry) []Edge {
	var edges []Edge
	nodes[0].X = 0
	for i := range nodes {
		n := &nodes[i]
		if len(n.Children) == 0 {
			continue
		}
		x := n.X - childSpan(n.Children, spans, g)/2
		for _, c := range n.Children {
			nodes[c].X = x + spans[c]/2
			x += spans[c] + g.HorizontalGap
			edges = append(edges, Edge{From: i, To: c})
		}
	}
	return edges
}

// normalize shifts x so the leftmost box edge equals the padding, and
// returns the padded total width and height.
//
// Height reserves a full row (node height plus vertical gap) for every
// visible depth, then the padding.
func normalize(nodes []Node, g Geometry) (width, height float64) {
	minLeft := nodes[0].Left()
	deepest := 0
	for i := range nodes {
		minLeft = min(minLeft, nodes[i].Left())
		deepest = max(deepest, nodes[i].Depth)
	}

	shift := g.Padding - minLeft
	maxRight := 0.0
	for i := range nodes {
		nodes[i].X += shift
		maxRight = max(maxRight, nodes[i].Right())
	}

	width = maxRight + g.Padding
	height = float64(deepest+1)*g.RowHeight() + g.Padding
	return width, height
}
