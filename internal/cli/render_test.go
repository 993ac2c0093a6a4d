package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/thoughttree/pkg/pipeline"
	"github.com/matzehuels/thoughttree/pkg/tree"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "png", []string{"png"}},
		{"multiple formats", "svg,pdf,dot", []string{"svg", "pdf", "dot"}},
		{"spaces and empty parts", " svg, ,json ", []string{"svg", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "trees/move4.json", "trees/move4"},
		{"out/view.svg", "trees/move4.json", "out/view"},
		{"out/view", "trees/move4.json", "out/view"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestTreeFlagsIdentities(t *testing.T) {
	f := treeFlags{collapsed: []string{"0-1", " 0-0-2 ", ""}}
	want := []tree.Identity{"0-1", "0-0-2"}
	if got := f.identities(); !reflect.DeepEqual(got, want) {
		t.Errorf("identities() = %v, want %v", got, want)
	}
	if got := (&treeFlags{}).identities(); got != nil {
		t.Errorf("identities() without flags = %v, want nil", got)
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "move.json")
	artifacts := map[string][]byte{
		pipeline.FormatSVG: []byte("<svg/>"),
		pipeline.FormatDOT: []byte("digraph G {}"),
	}

	t.Run("multiple formats next to input", func(t *testing.T) {
		err := writeArtifacts(artifactWriteParams{
			artifacts: artifacts,
			formats:   []string{"svg", "dot"},
			input:     input,
		})
		if err != nil {
			t.Fatal(err)
		}
		for _, name := range []string{"move.svg", "move.dot"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				t.Errorf("%s not written: %v", name, err)
			}
		}
	})

	t.Run("single format to explicit output", func(t *testing.T) {
		out := filepath.Join(dir, "picture.image")
		err := writeArtifacts(artifactWriteParams{
			artifacts: artifacts,
			formats:   []string{"svg"},
			input:     input,
			output:    out,
		})
		if err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(out)
		if err != nil || string(data) != "<svg/>" {
			t.Errorf("ReadFile(%s) = %q, %v", out, data, err)
		}
	})

	t.Run("missing artifact", func(t *testing.T) {
		err := writeArtifacts(artifactWriteParams{
			artifacts: artifacts,
			formats:   []string{"png"},
			input:     input,
		})
		if err == nil {
			t.Error("expected error for a format that was not rendered")
		}
	})
}
