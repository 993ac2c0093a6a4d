package pipeline

import (
	"github.com/matzehuels/thoughttree/pkg/layout"
	"github.com/matzehuels/thoughttree/pkg/render"
	"github.com/matzehuels/thoughttree/pkg/tree"
)

// GenerateLayout lays out root under the view state in opts and builds the
// drawable scene from it.
func GenerateLayout(root *tree.Node, opts Options) (layout.Result, render.Scene) {
	collapsed := collapsedSet(opts.Collapsed)
	r := layout.Compute(root,
		layout.WithMaxDepth(opts.MaxDepth),
		layout.WithCollapsed(collapsed),
		layout.WithGeometry(opts.Geometry),
	)
	scene := render.Build(&r, collapsed,
		render.WithText(opts.Text),
		render.WithTransform(opts.Transform),
	)
	return r, scene
}

func collapsedSet(ids []tree.Identity) layout.Set {
	s := make(layout.Set, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}
