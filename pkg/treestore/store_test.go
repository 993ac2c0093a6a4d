package treestore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/thoughttree/pkg/errors"
	"github.com/matzehuels/thoughttree/pkg/tree"
)

func sampleRecord() *Record {
	return NewRecord(&tree.Response{
		Mode:      "tot",
		Move:      4,
		Reasoning: "center first",
		Tree: &tree.Node{
			Thought: "start",
			Children: []*tree.Node{
				{ID: "l", Thought: "go left", Reason: "corner"},
				{Thought: "go right", Score: tree.Score(0.82)},
			},
		},
	})
}

func runStoreContract(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("Put assigns key", func(t *testing.T) {
		rec := sampleRecord()
		key, err := store.Put(ctx, rec)
		require.NoError(t, err)
		assert.NotEmpty(t, key)
		assert.Equal(t, key, rec.Key)

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "tot", got.Mode)
		assert.Equal(t, 4, got.Move)
		assert.Equal(t, tree.Stats{Nodes: 3, Leaves: 2, MaxDepth: 1}, got.Stats)
		require.NotNil(t, got.Tree)
		require.Len(t, got.Tree.Children, 2)
		assert.Equal(t, "l", got.Tree.Children[0].ID)
		assert.InDelta(t, 0.82, *got.Tree.Children[1].Score, 1e-12)
	})

	t.Run("Put with key", func(t *testing.T) {
		rec := sampleRecord()
		rec.Key = "game-42-move-3"
		key, err := store.Put(ctx, rec)
		require.NoError(t, err)
		assert.Equal(t, "game-42-move-3", key)
	})

	t.Run("Put rejects empty", func(t *testing.T) {
		_, err := store.Put(ctx, &Record{})
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidTree), "got %v", err)
	})

	t.Run("Get missing", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.True(t, errors.Is(err, errors.ErrCodeTreeNotFound), "got %v", err)
	})

	t.Run("Delete", func(t *testing.T) {
		key, err := store.Put(ctx, sampleRecord())
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, key))
		_, err = store.Get(ctx, key)
		assert.True(t, errors.IsNotFound(err), "got %v", err)
		assert.NoError(t, store.Delete(ctx, key))
	})
}

func TestMemoryStore_Contract(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestFileStore_Contract(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	runStoreContract(t, store)
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	rec := sampleRecord()
	rec.Key = "../escape"
	_, err = store.Put(context.Background(), rec)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidKey), "got %v", err)
}

func TestRecordBSON(t *testing.T) {
	rec := sampleRecord()
	rec.Key = "k1"

	data, err := bson.Marshal(rec)
	require.NoError(t, err)

	var raw bson.M
	require.NoError(t, bson.Unmarshal(data, &raw))
	assert.Equal(t, "k1", raw["_id"])
	assert.Contains(t, raw, "tree")
	assert.Contains(t, raw, "created_at")

	var back Record
	require.NoError(t, bson.Unmarshal(data, &back))
	assert.Equal(t, rec.Key, back.Key)
	assert.Equal(t, rec.Stats, back.Stats)
	assert.Equal(t, "go left", back.Tree.Children[0].Thought)
	assert.Nil(t, back.Tree.Children[0].Score)
}

// TestMongoStore_Contract runs against a live server when
// THOUGHTTREE_TEST_MONGO_URI is set.
func TestMongoStore_Contract(t *testing.T) {
	uri := os.Getenv("THOUGHTTREE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("THOUGHTTREE_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	store, err := DialMongo(ctx, uri, "thoughttree_test", "trees_"+t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.coll.Drop(context.Background())
		_ = store.Close()
	})
	require.NoError(t, store.EnsureIndexes(ctx))
	runStoreContract(t, store)
}
