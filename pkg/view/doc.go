// Package view holds the interactive state of a viewing session.
//
// A session owns exactly three pieces of mutable state:
//
//   - [CollapseState]: which node identities have their children hidden.
//   - [Viewport]: the pan/zoom transform applied once to the whole scene.
//   - [Controller]: the single writer of both, translating raw pointer and
//     wheel events into toggles and viewport updates.
//
// Every write goes through the controller, which recomputes the layout from
// scratch afterwards. Nothing here is safe for concurrent use; adapters that
// share a controller between goroutines must serialize access themselves.
//
// Spurious input (a move without an active drag, a second pointer-up, a
// click on a leaf) is ignored, never reported as an error.
package view
