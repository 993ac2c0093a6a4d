package sink

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/thoughttree/pkg/layout"
	"github.com/matzehuels/thoughttree/pkg/render"
	"github.com/matzehuels/thoughttree/pkg/tree"
	"github.com/matzehuels/thoughttree/pkg/view"
)

func testScene(opts ...render.Option) render.Scene {
	root := &tree.Node{
		Thought: "start <here>",
		Reason:  "a & b",
		Children: []*tree.Node{
			{Thought: "go left"},
			{Thought: "go right", Score: tree.Score(0.82)},
		},
	}
	r := layout.Compute(root)
	return render.Build(&r, nil, opts...)
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(testScene()))

	for _, want := range []string{
		`viewBox="0 0 576 504"`,
		`width="576" height="504"`,
		`<g transform="translate(0 0) scale(1)">`,
		`id="node-0-1"`,
		`go right (82%)`,
		`start &lt;here&gt;`,
		`<title>start &lt;here&gt;&#xA;a &amp; b</title>`,
		`M 288 100 C`,
		render.GlyphExpanded,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("RenderSVG() missing %q", want)
		}
	}
	if strings.Count(svg, "<path ") != 2 {
		t.Errorf("RenderSVG() has %d paths, want 2", strings.Count(svg, "<path "))
	}
	if strings.Count(svg, `class="tt-toggle"`) != 1 {
		t.Error("only the root should have a toggle")
	}
}

func TestRenderSVGWellFormed(t *testing.T) {
	svg := RenderSVG(testScene())
	d := xml.NewDecoder(strings.NewReader(string(svg)))
	for {
		_, err := d.Token()
		if err != nil {
			if err == io.EOF {
				return
			}
			t.Fatalf("RenderSVG() is not well-formed XML: %v", err)
		}
	}
}

func TestRenderSVGTransform(t *testing.T) {
	s := testScene(render.WithTransform(view.Transform{Scale: 1.5, TX: 10, TY: -20}), render.WithPanning(true))
	svg := string(RenderSVG(s))

	if !strings.Contains(svg, `<g transform="translate(10 -20) scale(1.5)">`) {
		t.Error("RenderSVG() missing viewport transform")
	}
	if !strings.Contains(svg, `class="tt-svg tt-panning"`) {
		t.Error("RenderSVG() missing panning class")
	}
	// Node coordinates do not depend on the transform.
	plain := string(RenderSVG(testScene()))
	if strings.Count(svg, `translate(168, 0)`) != 1 || strings.Count(plain, `translate(168, 0)`) != 1 {
		t.Error("box positions should be independent of the transform")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	svg := string(RenderSVG(testScene(), WithResponsive(), WithoutTooltips(), WithoutStyles()))

	if !strings.Contains(svg, `width="100%" height="100%"`) {
		t.Error("WithResponsive() should size to the container")
	}
	if strings.Contains(svg, "<title>") {
		t.Error("WithoutTooltips() should drop titles")
	}
	if strings.Contains(svg, "<style>") {
		t.Error("WithoutStyles() should drop the stylesheet")
	}
}

func TestRenderSVGEmptyScene(t *testing.T) {
	svg := string(RenderSVG(render.Scene{Transform: view.IdentityTransform}))
	if !strings.Contains(svg, `viewBox="0 0 1 1"`) {
		t.Errorf("empty scene viewBox should floor at 1: %s", svg)
	}
}
