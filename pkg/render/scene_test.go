package render

import (
	"strings"
	"testing"

	"github.com/matzehuels/thoughttree/pkg/layout"
	"github.com/matzehuels/thoughttree/pkg/tree"
	"github.com/matzehuels/thoughttree/pkg/view"
)

func exampleA() *tree.Node {
	return &tree.Node{
		Thought: "start",
		Reason:  "opening position",
		Children: []*tree.Node{
			{Thought: "go left"},
			{Thought: "go right", Score: tree.Score(0.82)},
		},
	}
}

func TestBuildExampleA(t *testing.T) {
	r := layout.Compute(exampleA())
	s := Build(&r, nil)

	if len(s.Boxes) != 3 || len(s.Edges) != 2 {
		t.Fatalf("scene has %d boxes and %d edges, want 3 and 2", len(s.Boxes), len(s.Edges))
	}

	right := s.Boxes[2]
	last := right.Title[len(right.Title)-1].Text
	if !strings.HasSuffix(last, "(82%)") {
		t.Errorf("second child title %q should end with (82%%)", last)
	}
	if right.Toggle != nil {
		t.Error("leaf should have no toggle")
	}

	root := s.Boxes[0]
	if root.Toggle == nil || root.Toggle.Glyph != GlyphExpanded {
		t.Fatalf("root toggle = %+v, want expanded", root.Toggle)
	}
	if root.Toggle.X != root.Width-24 || root.Toggle.Y != 8 || root.Toggle.Size != 16 {
		t.Errorf("root toggle at %+v", root.Toggle)
	}
	if root.X != r.Nodes[0].X-r.Nodes[0].Width/2 {
		t.Errorf("box x = %v, want left edge", root.X)
	}
}

func TestBuildTextOffsets(t *testing.T) {
	n := &tree.Node{
		Thought: "take the center square because it opens lines",
		Reason:  "center participates in four of the eight winning lines",
	}
	r := layout.Compute(n)
	box := Build(&r, nil).Boxes[0]

	if len(box.Title) != 2 {
		t.Fatalf("title lines = %+v", box.Title)
	}
	for i, l := range box.Title {
		if l.X != 12 || l.Y != 22+18*float64(i) {
			t.Errorf("title line %d at (%v, %v)", i, l.X, l.Y)
		}
	}
	if len(box.Reason) == 0 {
		t.Fatal("missing reason lines")
	}
	for i, l := range box.Reason {
		if want := 22 + 18*2 + 10 + 16*float64(i); l.Y != want {
			t.Errorf("reason line %d y = %v, want %v", i, l.Y, want)
		}
	}
	if !strings.Contains(box.Tooltip, "\n") {
		t.Errorf("tooltip %q should carry the reason", box.Tooltip)
	}
}

func TestBuildCollapsedGlyph(t *testing.T) {
	r := layout.Compute(exampleA(), layout.WithCollapsed(layout.Set{"0": true}))
	s := Build(&r, layout.Set{"0": true})

	if len(s.Boxes) != 1 {
		t.Fatalf("boxes = %d, want 1", len(s.Boxes))
	}
	if g := s.Boxes[0].Toggle; g == nil || g.Glyph != GlyphCollapsed || !g.Collapsed {
		t.Errorf("toggle = %+v, want collapsed", g)
	}
}

func TestBuildEmptyChildrenNoToggle(t *testing.T) {
	r := layout.Compute(&tree.Node{Thought: "x", Children: []*tree.Node{}})
	if Build(&r, nil).Boxes[0].Toggle != nil {
		t.Error("empty children list should not show a toggle")
	}
}

func TestEdgeCurve(t *testing.T) {
	parent := &layout.Node{ID: "0", X: 100, Y: 0, Width: 240, Height: 100}
	child := &layout.Node{ID: "0-0", X: 200, Y: 240, Width: 240, Height: 100}

	c := EdgeCurve(parent, child)
	want := Curve{
		From: "0", To: "0-0",
		X1: 100, Y1: 100,
		C1X: 140, C1Y: 116,
		C2X: 160, C2Y: 224,
		X2: 200, Y2: 240,
	}
	if c != want {
		t.Errorf("EdgeCurve() = %+v, want %+v", c, want)
	}
	if got := c.Path(); got != "M 100 100 C 140 116, 160 224, 200 240" {
		t.Errorf("Path() = %q", got)
	}

	// Leftward links mirror the control points.
	c = EdgeCurve(child, parent)
	if c.C1X != 160 || c.C2X != 140 {
		t.Errorf("leftward control x = %v, %v", c.C1X, c.C2X)
	}
}

func TestFromController(t *testing.T) {
	c := view.NewController(exampleA())
	c.Wheel(-1)
	c.PointerDown(1, 1)

	s := FromController(c)
	if !s.Panning {
		t.Error("scene should be panning during a drag")
	}
	if s.Transform.Scale != c.Viewport().Scale() {
		t.Errorf("transform scale = %v", s.Transform.Scale)
	}
}

func TestViewBoxFloor(t *testing.T) {
	w, h := Scene{}.ViewBox()
	if w != 1 || h != 1 {
		t.Errorf("ViewBox() = %v, %v, want 1, 1", w, h)
	}
}
