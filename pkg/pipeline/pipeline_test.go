package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/thoughttree/pkg/cache"
	"github.com/matzehuels/thoughttree/pkg/errors"
	"github.com/matzehuels/thoughttree/pkg/layout"
	"github.com/matzehuels/thoughttree/pkg/tree"
	"github.com/matzehuels/thoughttree/pkg/view"
)

func sample() *tree.Node {
	return &tree.Node{
		Thought: "start",
		Children: []*tree.Node{
			{Thought: "go left", Score: tree.Score(0.4), Children: []*tree.Node{{Thought: "deep"}}},
			{Thought: "go right", Reason: "center control", Score: tree.Score(0.82)},
		},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateVizType(t *testing.T) {
	tests := []struct {
		vizType string
		wantErr bool
	}{
		{"tree", false},
		{"nodelink", false},
		{"tower", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateVizType(tt.vizType)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVizType(%q) error = %v, wantErr %v", tt.vizType, err, tt.wantErr)
		}
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{MaxDepth: layout.Unlimited}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if opts.Geometry != layout.DefaultGeometry() {
		t.Errorf("Geometry = %+v", opts.Geometry)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.VizType != DefaultVizType {
		t.Errorf("VizType = %q", opts.VizType)
	}
	if opts.Transform != view.IdentityTransform {
		t.Errorf("Transform = %+v", opts.Transform)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v", opts.Scale)
	}

	// Second call should be idempotent
	opts.Formats = []string{"bogus"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call should be a no-op: %v", err)
	}
}

func TestOptionsValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"depth", Options{MaxDepth: -2}, errors.ErrCodeInvalidDepth},
		{"format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"viz", Options{VizType: "tower"}, errors.ErrCodeInvalidVizType},
		{"scale", Options{Scale: -1}, errors.ErrCodeInvalidInput},
		{"geometry", Options{Geometry: layout.Geometry{NodeWidth: -1, NodeHeight: 1}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestFromState(t *testing.T) {
	s := view.State{
		MaxDepth:  2,
		Collapsed: []tree.Identity{"0-1"},
		Viewport:  view.Transform{Scale: 1.5, TX: 10, TY: -4},
	}
	opts := FromState(s)
	if opts.MaxDepth != 2 || len(opts.Collapsed) != 1 || opts.Transform != s.Viewport {
		t.Errorf("FromState = %+v", opts)
	}
}

func TestSceneKeyOptsIncludeCollapse(t *testing.T) {
	k := cache.NewDefaultKeyer()
	a := Options{MaxDepth: 1}
	b := Options{MaxDepth: 1, Collapsed: []tree.Identity{"0-0"}}
	if k.SceneKey("h", a.SceneKeyOpts()) == k.SceneKey("h", b.SceneKeyOpts()) {
		t.Error("collapse state should be part of the scene key")
	}
}

func TestDecode(t *testing.T) {
	ctx := context.Background()

	root, err := Decode(ctx, strings.NewReader(`{"mode":"tot","move":4,"tree":{"thought":"root"}}`), "stdin")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if root.Thought != "root" {
		t.Errorf("Thought = %q", root.Thought)
	}

	if _, err := Decode(ctx, strings.NewReader(`{`), "stdin"); !errors.Is(err, errors.ErrCodeInvalidTree) {
		t.Errorf("bad JSON err = %v", err)
	}
}

func TestGenerateLayout(t *testing.T) {
	opts := Options{MaxDepth: layout.Unlimited, Collapsed: []tree.Identity{"0-0"}}
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()

	res, scene := GenerateLayout(sample(), opts)
	if res.Len() != 3 {
		t.Errorf("visible = %d, want 3", res.Len())
	}
	if len(scene.Boxes) != 3 || len(scene.Edges) != 2 {
		t.Errorf("scene has %d boxes, %d edges", len(scene.Boxes), len(scene.Edges))
	}
	for _, b := range scene.Boxes {
		if b.ID == "0-0" && (b.Toggle == nil || !b.Toggle.Collapsed) {
			t.Errorf("box 0-0 should carry a collapsed toggle: %+v", b.Toggle)
		}
	}
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	opts := Options{MaxDepth: layout.Unlimited, Formats: []string{FormatSVG, FormatJSON, FormatDOT}}
	first, err := r.Execute(ctx, sample(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.SceneHit || first.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}
	if first.Stats.Tree.Nodes != 4 || first.Stats.Visible != 4 {
		t.Errorf("stats = %+v", first.Stats)
	}
	if !bytes.HasPrefix(first.Artifacts[FormatSVG], []byte("<svg")) {
		t.Errorf("svg artifact = %.40q", first.Artifacts[FormatSVG])
	}
	if !bytes.Contains(first.Artifacts[FormatDOT], []byte("digraph")) {
		t.Errorf("dot artifact = %.40q", first.Artifacts[FormatDOT])
	}
	var doc map[string]any
	if err := json.Unmarshal(first.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("json artifact: %v", err)
	}

	second, err := r.Execute(ctx, sample(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.SceneHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit the cache: %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached SVG differs")
	}
	if first.TreeHash != second.TreeHash {
		t.Error("tree hash should be stable")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, sample(), opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if third.CacheInfo.SceneHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestRunnerExecuteCachedSceneDOT(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, nil)

	if _, err := r.Execute(ctx, sample(), Options{Formats: []string{FormatSVG}}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// Scene is cached now, DOT is not.
	res, err := r.Execute(ctx, sample(), Options{Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("Execute dot: %v", err)
	}
	if !res.CacheInfo.SceneHit || res.CacheInfo.RenderHit {
		t.Errorf("cache info = %+v", res.CacheInfo)
	}
	if !bytes.Contains(res.Artifacts[FormatDOT], []byte(`"0-1"`)) {
		t.Errorf("dot should list node 0-1:\n%s", res.Artifacts[FormatDOT])
	}
}

func TestRunnerExecuteInvalid(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), sample(), Options{Formats: []string{"gif"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v", err)
	}
}

func TestRunnerNodelinkRejectsJSON(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), sample(), Options{VizType: VizNodelink, Formats: []string{FormatJSON}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v", err)
	}
}
