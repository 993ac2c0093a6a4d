// Package session persists viewing sessions between requests.
//
// A viewing session is the interactive state of one viewer over one stored
// tree: the depth cutoff, the collapsed identities and the viewport
// transform. The layout itself is never stored; it is recomputed from the
// tree and this state on load.
//
// Backends:
//   - [MemoryStore]: in-process map, for development, tests and the TUI
//   - [FileStore]: one JSON file per session, for single-host deployments
//   - [RedisStore]: Redis-backed storage for multi-instance deployments
//
// # Usage
//
//	store := session.NewRedisStore(client, session.WithTTL(24*time.Hour))
//
//	sess := session.New(treeKey, ctrl.State(), session.DefaultTTL)
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
//
//	sess, err := store.Get(ctx, id)
//	if errors.Is(err, errors.ErrCodeSessionNotFound) {
//	    // missing or expired
//	}
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/thoughttree/pkg/errors"
	"github.com/matzehuels/thoughttree/pkg/view"
)

// DefaultTTL is the default session lifetime.
const DefaultTTL = 24 * time.Hour

// Session is the persisted state of one viewer over one tree.
type Session struct {
	ID        string     `json:"id"`
	TreeKey   string     `json:"tree_key"`
	State     view.State `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at,omitempty"`
}

// New creates a session with a fresh random ID. A ttl of zero never
// expires.
func New(treeKey string, state view.State, ttl time.Duration) *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		TreeKey:   treeKey,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
	return s
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Update records new view state and extends the expiry by ttl.
func (s *Session) Update(state view.State, ttl time.Duration) {
	s.State = state
	s.UpdatedAt = time.Now()
	if ttl > 0 {
		s.ExpiresAt = s.UpdatedAt.Add(ttl)
	}
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. A missing or expired session is an
	// error with code SESSION_NOT_FOUND.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session, replacing any previous version.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of live sessions.
	List(ctx context.Context) ([]string, error)

	// Cleanup removes expired sessions (may be a no-op where the backend
	// expires keys itself).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
}
