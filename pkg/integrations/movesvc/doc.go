// Package movesvc is a client for the move-selection service.
//
// The service takes a tic-tac-toe board and returns the move it picked.
// In tree-of-thought mode ("tot") the response also carries the search
// tree that thoughttree lays out:
//
//	POST /api/v1/move
//	{"mode": "tot", "board": ["X", null, ...], "player": "O", "beam": 3, "depth": 4}
//
//	{"mode": "tot", "move": 4, "reasoning": "...", "tree": {"thought": "...", "children": [...]}}
//
// Responses are cached by request, so re-running the same board does not
// query the model again unless refresh is set.
package movesvc
