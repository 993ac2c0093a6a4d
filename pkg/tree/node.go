package tree

import (
	"math"
	"strconv"
)

// Identity is the stable key used to track per-node session state.
type Identity string

// RootPath is the structural path of the root node.
const RootPath = "0"

// Node is one branch of a reasoning trace. It is read-only to the layout
// and interaction core.
type Node struct {
	ID       string   `json:"id,omitempty" bson:"id,omitempty"`
	Thought  string   `json:"thought" bson:"thought"`
	Reason   string   `json:"reason" bson:"reason"`
	Score    *float64 `json:"score,omitempty" bson:"score,omitempty"`
	Children []*Node  `json:"children,omitempty" bson:"children,omitempty"`
}

// Identity returns the node's identity given its structural path.
// An explicit, non-empty id wins over the path.
func (n *Node) Identity(path string) Identity {
	if n.ID != "" {
		return Identity(n.ID)
	}
	return Identity(path)
}

// HasChildren reports whether the node has a non-empty children list. Only
// such nodes can be collapsed or expanded.
func (n *Node) HasChildren() bool {
	return n != nil && len(n.Children) > 0
}

// HasScore reports whether the score is a finite number in [0,1].
func (n *Node) HasScore() bool {
	if n == nil || n.Score == nil {
		return false
	}
	s := *n.Score
	return !math.IsNaN(s) && !math.IsInf(s, 0) && s >= 0 && s <= 1
}

// ChildPath returns the structural path of the idx-th child of the node at
// path.
func ChildPath(path string, idx int) string {
	return path + "-" + strconv.Itoa(idx)
}

// Score returns a pointer to s, for building trees in code.
func Score(s float64) *float64 { return &s }

// Visit is called for each node during [Walk]. Returning false skips the
// node's children.
type Visit func(n *Node, path string, depth int) bool

// Walk visits every node in pre-order (parent before children, children left
// to right) using an explicit stack, so arbitrarily deep trees are safe.
func Walk(root *Node, fn Visit) {
	if root == nil {
		return
	}
	type frame struct {
		node  *Node
		path  string
		depth int
	}
	stack := []frame{{root, RootPath, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node == nil {
			continue
		}
		if !fn(f.node, f.path, f.depth) {
			continue
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], ChildPath(f.path, i), f.depth + 1})
		}
	}
}

// Stats summarizes a tree's shape.
type Stats struct {
	Nodes    int `json:"nodes" bson:"nodes"`         // total node count
	Leaves   int `json:"leaves" bson:"leaves"`       // nodes without children
	MaxDepth int `json:"max_depth" bson:"max_depth"` // depth of the deepest node (root = 0)
}

// Measure computes shape statistics for the whole tree.
func Measure(root *Node) Stats {
	var s Stats
	Walk(root, func(n *Node, _ string, depth int) bool {
		s.Nodes++
		if !n.HasChildren() {
			s.Leaves++
		}
		s.MaxDepth = max(s.MaxDepth, depth)
		return true
	})
	return s
}

// Find returns the first node (in pre-order) with the given identity and its
// structural path.
func Find(root *Node, id Identity) (*Node, string, bool) {
	var (
		found *Node
		where string
	)
	Walk(root, func(n *Node, path string, _ int) bool {
		if found != nil {
			return false
		}
		if n.Identity(path) == id {
			found, where = n, path
			return false
		}
		return true
	})
	return found, where, found != nil
}
