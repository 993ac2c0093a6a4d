package treestore

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/thoughttree/pkg/errors"
)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "trees"

// MongoStore keeps one document per tree, keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// DialMongo connects to uri and pings the primary before returning a store.
// The store owns the client and disconnects it on Close.
func DialMongo(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongo")
	}
	s := NewMongoStore(client.Database(database), collection)
	s.owned = true
	return s, nil
}

// NewMongoStore uses an existing database handle. Close leaves the client
// connected.
func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &MongoStore{client: db.Client(), coll: db.Collection(collection)}
}

// EnsureIndexes creates the created_at index used for retention queries.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create tree indexes")
	}
	return nil
}

func (s *MongoStore) Put(ctx context.Context, rec *Record) (string, error) {
	if err := prepare(rec); err != nil {
		return "", err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rec.Key}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStorage, err, "store tree %s", rec.Key)
	}
	return rec.Key, nil
}

func (s *MongoStore) Get(ctx context.Context, key string) (*Record, error) {
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&rec)
	if err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound(key)
		}
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load tree %s", key)
	}
	return &rec, nil
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete tree %s", key)
	}
	return nil
}

// Close disconnects the client if the store created it.
func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
