// Package tree defines the reasoning-trace input model.
//
// A reasoning trace is a finite, acyclic, single-rooted tree of [Node]
// values produced by an external move-selection service. Each node carries a
// short thought, a free-text reason, an optional score in [0,1] and an ordered
// list of children whose order is the left-to-right display order.
//
// # Identity
//
// All session state (collapse flags) is keyed by [Identity]. A node's
// identity is its explicit id when one is present, otherwise the structural
// path of child ordinals from the root:
//
//	root          "0"
//	second child  "0-1"
//	its 1st child "0-1-0"
//
// Path identities depend on sibling order: if the service returns a reordered
// tree, a previously collapsed path may now name a different logical node.
// This is kept as observed behavior.
//
// # Serialization
//
// [Decode] accepts either a bare tree or the service's tree-of-thought
// response envelope ({"mode":"tot","tree":{...}}). The package does not
// check acyclicity; a decoded JSON document is a tree by construction.
package tree
