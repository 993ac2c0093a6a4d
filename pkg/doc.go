// Package pkg provides the libraries behind Thoughttree, a viewer for the
// reasoning trees produced by a move-selection service.
//
// # Overview
//
// A move-selection service explores candidate moves ("thoughts") and returns
// the tree it searched. Thoughttree lays that tree out as fixed-size boxes,
// lets a viewer collapse subtrees, pan and zoom, and draws the result to a
// terminal, to files or over HTTP. The pkg directory is organized into four
// areas:
//
//  1. Core: [tree], [layout], [view], [render]
//  2. Orchestration: [pipeline]
//  3. Adapters: [session], [treestore], [cache], [integrations], [server]
//  4. Shared: [config], [errors], [observability], [buildinfo]
//
// # Architecture
//
// The data flow for one frame:
//
//	tree JSON or ToT response
//	         ↓
//	    [tree] package (decode, identities)
//	         ↓
//	    [layout] package (positions, edges; collapse and depth aware)
//	         ↓
//	    [render] package (boxes, wrapped text, curves, viewport transform)
//	         ↓
//	    SVG/PNG/PDF/JSON via [render/sink], DOT via [render/nodelink]
//
// The [view] controller sits on top: it owns the collapse state and the
// viewport, turns raw pointer and wheel events into clicks, drags and zooms,
// and recomputes the layout from scratch after every change.
//
// # Quick Start
//
// Lay out and render a tree:
//
//	root, _ := tree.ReadFile("move.json")
//	res := layout.Compute(root, layout.WithMaxDepth(3))
//	scene := render.Build(&res, layout.Set{"0-1": true})
//	svg := sink.RenderSVG(scene)
//
// Drive it interactively:
//
//	ctrl := view.NewController(root)
//	ctrl.Handle(view.Event{Kind: view.EventPointerDown, X: 288, Y: 50})
//	ctrl.Handle(view.Event{Kind: view.EventPointerUp, X: 288, Y: 50}) // toggles the root
//	scene = render.FromController(ctrl)
//
// # Main Packages
//
// [tree] - Node model, identities (explicit id or structural path such as
// "0-1-2") and JSON decoding of bare trees and service responses.
//
// [layout] - Two-pass tidy layout over an index arena: subtree widths bottom
// up, positions top down, then normalization to the padded bounding box.
//
// [view] - Collapse state, viewport (clamped zoom, drag sessions) and the
// interaction controller.
//
// [render] - Scene building: text wrapping, score suffixes, toggle glyphs and
// Bézier edges. [render/sink] writes the scene; [render/nodelink] draws the
// same tree with Graphviz.
//
// [pipeline] - Decode → layout → render with a content-addressed cache, used
// by both the CLI and the HTTP server.
//
// [session] - Persisted viewer state (memory, file, Redis).
//
// [treestore] - Stored trees addressed by key (memory, file, MongoDB).
//
// [integrations] - Cached HTTP client and the move-selection service client.
//
// [server] - chi-based HTTP API over trees, layouts and sessions.
//
// # Testing
//
//	go test ./pkg/...             # All tests
//	go test ./pkg/layout/...      # Specific package
//	go test -run Example ./pkg/... # Examples only
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/thoughttree/pkg/tree
// [layout]: https://pkg.go.dev/github.com/matzehuels/thoughttree/pkg/layout
// [view]: https://pkg.go.dev/github.com/matzehuels/thoughttree/pkg/view
// [render]: https://pkg.go.dev/github.com/matzehuels/thoughttree/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/thoughttree/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/thoughttree/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/thoughttree/pkg/pipeline
// [session]: https://pkg.go.dev/github.com/matzehuels/thoughttree/pkg/session
// [treestore]: https://pkg.go.dev/github.com/matzehuels/thoughttree/pkg/treestore
// [cache]: https://pkg.go.dev/github.com/matzehuels/thoughttree/pkg/cache
// [integrations]: https://pkg.go.dev/github.com/matzehuels/thoughttree/pkg/integrations
// [server]: https://pkg.go.dev/github.com/matzehuels/thoughttree/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/thoughttree/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/thoughttree/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/thoughttree/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/thoughttree/pkg/buildinfo
package pkg
