package sink

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/thoughttree/pkg/tree"
)

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(testScene())
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}

	if out.Width != 576 {
		t.Errorf("Width = %v, want 576", out.Width)
	}
	if len(out.Boxes) != 3 {
		t.Errorf("Boxes count = %d, want 3", len(out.Boxes))
	}
	if len(out.Edges) != 2 {
		t.Errorf("Edges count = %d, want 2", len(out.Edges))
	}
	if out.Transform.Scale != 1 {
		t.Errorf("Transform.Scale = %v, want 1", out.Transform.Scale)
	}
	if out.MaxDepth != nil || out.Collapsed != nil {
		t.Error("optional fields should be omitted")
	}
}

func TestRenderJSONWithOptions(t *testing.T) {
	data, err := RenderJSON(testScene(),
		WithJSONCollapsed([]tree.Identity{"0-0"}),
		WithJSONMaxDepth(2),
	)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.MaxDepth == nil || *out.MaxDepth != 2 {
		t.Errorf("MaxDepth = %v, want 2", out.MaxDepth)
	}
	if len(out.Collapsed) != 1 || out.Collapsed[0] != "0-0" {
		t.Errorf("Collapsed = %v", out.Collapsed)
	}
}

func TestRenderJSONUnlimitedDepthOmitted(t *testing.T) {
	data, err := RenderJSON(testScene(), WithJSONMaxDepth(-1))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["max_depth"]; ok {
		t.Error("negative depth should be omitted")
	}
}
