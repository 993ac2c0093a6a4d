// Package treestore keeps reasoning trees under short keys.
//
// A tree is posted once (for example by the game page after a move) and read
// back by key by any viewer: the full-screen view, a viewing session or the
// CLI. Records are immutable once stored.
//
// Backends:
//   - [MemoryStore]: in-process map
//   - [FileStore]: one JSON file per tree
//   - [MongoStore]: a MongoDB collection, one document per tree
package treestore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/thoughttree/pkg/errors"
	"github.com/matzehuels/thoughttree/pkg/tree"
)

// Record is one stored tree plus the envelope fields it arrived with.
type Record struct {
	Key       string     `json:"key" bson:"_id"`
	Mode      string     `json:"mode,omitempty" bson:"mode,omitempty"`
	Move      int        `json:"move,omitempty" bson:"move,omitempty"`
	Reasoning string     `json:"reasoning,omitempty" bson:"reasoning,omitempty"`
	Tree      *tree.Node `json:"tree" bson:"tree"`
	Stats     tree.Stats `json:"stats" bson:"stats"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
}

// NewRecord wraps a decoded service response. The key is left empty for
// the store to assign.
func NewRecord(resp *tree.Response) *Record {
	return &Record{
		Mode:      resp.Mode,
		Move:      resp.Move,
		Reasoning: resp.Reasoning,
		Tree:      resp.Tree,
		Stats:     tree.Measure(resp.Tree),
		CreatedAt: time.Now().UTC(),
	}
}

// Store is the interface for tree storage backends.
type Store interface {
	// Put stores rec and returns its key, assigning a new one when
	// rec.Key is empty.
	Put(ctx context.Context, rec *Record) (string, error)

	// Get loads a record. A missing key is an error with code
	// TREE_NOT_FOUND.
	Get(ctx context.Context, key string) (*Record, error)

	// Delete removes a record. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// prepare validates rec and fills in its key and timestamp.
func prepare(rec *Record) error {
	if rec == nil || rec.Tree == nil {
		return errors.New(errors.ErrCodeInvalidTree, "record has no tree")
	}
	if rec.Key == "" {
		rec.Key = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return errors.ValidateKey(rec.Key)
}

func notFound(key string) error {
	return errors.New(errors.ErrCodeTreeNotFound, "tree %s not found", key)
}
