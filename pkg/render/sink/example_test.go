package sink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/thoughttree/pkg/layout"
	"github.com/matzehuels/thoughttree/pkg/render"
	"github.com/matzehuels/thoughttree/pkg/render/sink"
	"github.com/matzehuels/thoughttree/pkg/tree"
)

func ExampleRenderSVG() {
	root := &tree.Node{
		Thought:  "start",
		Children: []*tree.Node{{Thought: "go left"}, {Thought: "go right"}},
	}
	r := layout.Compute(root)
	svg := string(sink.RenderSVG(render.Build(&r, nil)))

	fmt.Println(strings.HasPrefix(svg, "<svg"))
	fmt.Println(strings.Count(svg, "<path "), "edges")
	// Output:
	// true
	// 2 edges
}
