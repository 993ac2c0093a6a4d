package tree

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/thoughttree/pkg/errors"
)

// Response is the tree-of-thought response envelope returned by the
// move-selection service. Only Tree is used by the layout core.
type Response struct {
	Mode      string `json:"mode"`
	Move      int    `json:"move"`
	Reasoning string `json:"reasoning"`
	Tree      *Node  `json:"tree"`
}

// Decode reads a tree from r. Both a bare node object and a [Response]
// envelope are accepted.
func Decode(r io.Reader) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "read tree")
	}
	return Unmarshal(data)
}

// Unmarshal parses a tree from JSON bytes. See [Decode].
func Unmarshal(data []byte) (*Node, error) {
	resp, err := UnmarshalResponse(data)
	if err != nil {
		return nil, err
	}
	return resp.Tree, nil
}

// UnmarshalResponse parses either an envelope or a bare tree. A bare tree
// comes back wrapped in a Response with only Tree set.
func UnmarshalResponse(data []byte) (*Response, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.New(errors.ErrCodeInvalidTree, "tree is empty")
	}

	var envelope struct {
		Mode      string          `json:"mode"`
		Move      int             `json:"move"`
		Reasoning string          `json:"reasoning"`
		Tree      json.RawMessage `json:"tree"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "parse tree JSON")
	}

	resp := &Response{}
	body := data
	if len(envelope.Tree) > 0 && !bytes.Equal(envelope.Tree, []byte("null")) {
		body = envelope.Tree
		resp.Mode, resp.Move, resp.Reasoning = envelope.Mode, envelope.Move, envelope.Reasoning
	} else if envelope.Mode != "" {
		return nil, errors.New(errors.ErrCodeInvalidTree, "%s response carries no tree", envelope.Mode)
	}

	var root Node
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "parse tree JSON")
	}
	resp.Tree = &root
	return resp, nil
}

// Marshal serializes a tree to pretty-printed JSON.
func Marshal(root *Node) ([]byte, error) {
	return json.MarshalIndent(root, "", "  ")
}

// ReadFile loads a tree from a JSON file.
func ReadFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile writes a tree to a JSON file.
func WriteFile(root *Node, path string) error {
	data, err := Marshal(root)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
