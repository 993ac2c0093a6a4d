package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/matzehuels/thoughttree/pkg/errors"
)

// DefaultRedisPrefix namespaces session keys.
const DefaultRedisPrefix = "thoughttree:session:"

// neverExpires is the index score of sessions without a TTL (2100-01-01).
const neverExpires = 4102444800

// RedisStore keeps sessions in Redis. Each session is a JSON string with a
// native expiry, plus a sorted-set index scored by expiry time for listing.
type RedisStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL sets the key expiry applied on every Set. Zero keeps sessions
// until deleted.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// NewRedisStore creates a store on an existing client.
func NewRedisStore(client *backend.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DialRedis connects to addr and pings the server before returning a store.
func DialRedis(ctx context.Context, addr, password string, db int, opts ...RedisOption) (*RedisStore, error) {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect redis %s", addr)
	}
	return NewRedisStore(client, opts...), nil
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) indexKey() string { return s.prefix + "index" }

// expiry is the effective lifetime of sess in Redis: the store TTL, or the
// session's own expiry when that is sooner.
func (s *RedisStore) expiry(sess *Session) time.Duration {
	ttl := s.ttl
	if !sess.ExpiresAt.IsZero() {
		if left := time.Until(sess.ExpiresAt); ttl == 0 || left < ttl {
			ttl = max(left, time.Millisecond)
		}
	}
	return ttl
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if stderrors.Is(err, backend.Nil) {
			return nil, notFound(id)
		}
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "get session from redis")
	}

	var sess Session
	if err := json.Unmarshal(val, &sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "parse session %s", id)
	}
	if sess.IsExpired() {
		return nil, notFound(id)
	}
	return &sess, nil
}

func (s *RedisStore) Set(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := s.expiry(sess)
	score := float64(neverExpires)
	if ttl > 0 {
		score = float64(time.Now().Add(ttl).Unix())
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(sess.ID), data, ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: sess.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save session to redis")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete session from redis")
	}
	return nil
}

// List prunes expired entries from the index and returns the rest.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	if err := s.Cleanup(ctx); err != nil {
		return nil, err
	}
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list sessions")
	}
	return ids, nil
}

// Cleanup drops index entries whose keys Redis has already expired.
func (s *RedisStore) Cleanup(ctx context.Context) error {
	now := fmt.Sprintf("%d", time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+now).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "prune expired sessions")
	}
	return nil
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
