package sink

import (
	"encoding/json"

	"github.com/matzehuels/thoughttree/pkg/render"
	"github.com/matzehuels/thoughttree/pkg/tree"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	collapsed []tree.Identity
	maxDepth  *int
}

// WithJSONCollapsed records the collapsed identities the scene was built
// with, so a client can restore the same view.
func WithJSONCollapsed(ids []tree.Identity) JSONOption {
	return func(r *jsonRenderer) { r.collapsed = ids }
}

// WithJSONMaxDepth records the depth cutoff. Negative values are omitted.
func WithJSONMaxDepth(d int) JSONOption {
	return func(r *jsonRenderer) {
		if d >= 0 {
			r.maxDepth = &d
		}
	}
}

type jsonOutput struct {
	render.Scene
	MaxDepth  *int            `json:"max_depth,omitempty"`
	Collapsed []tree.Identity `json:"collapsed,omitempty"`
}

// RenderJSON exports the scene as a pretty-printed JSON document for
// drawing surfaces that do their own rendering. Positions are in scene
// units; the viewport transform is recorded alongside, not applied.
func RenderJSON(s render.Scene, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	out := jsonOutput{Scene: s, MaxDepth: r.maxDepth, Collapsed: r.collapsed}
	return json.MarshalIndent(out, "", "  ")
}
