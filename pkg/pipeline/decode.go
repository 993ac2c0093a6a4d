package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/matzehuels/thoughttree/pkg/observability"
	"github.com/matzehuels/thoughttree/pkg/tree"
)

// Decode reads a tree, or a ToT response envelope, from r. source names the
// input in hooks and error messages.
func Decode(ctx context.Context, r io.Reader, source string) (*tree.Node, error) {
	observability.Pipeline().OnDecodeStart(ctx, source)
	start := time.Now()

	root, err := tree.Decode(r)
	n := 0
	if err == nil {
		n = tree.Measure(root).Nodes
	}
	observability.Pipeline().OnDecodeComplete(ctx, source, n, time.Since(start), err)
	return root, err
}

// Load reads a tree file.
func Load(ctx context.Context, path string) (*tree.Node, error) {
	observability.Pipeline().OnDecodeStart(ctx, path)
	start := time.Now()

	root, err := tree.ReadFile(path)
	n := 0
	if err == nil {
		n = tree.Measure(root).Nodes
	}
	observability.Pipeline().OnDecodeComplete(ctx, path, n, time.Since(start), err)
	return root, err
}
