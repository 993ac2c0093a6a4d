package server

import (
	"sync"
	"time"

	"github.com/matzehuels/thoughttree/pkg/view"
)

// liveSession is the in-memory side of a session: its controller and the
// store revision the controller reflects.
type liveSession struct {
	mu      sync.Mutex
	ctrl    *view.Controller
	treeKey string
	updated time.Time
}

// registry hands out one liveSession per session ID so requests on the
// same session serialize on its mutex.
type registry struct {
	mu       sync.Mutex
	sessions map[string]*liveSession
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*liveSession)}
}

// acquire returns the session entry locked. Callers must call release.
func (r *registry) acquire(id string) *liveSession {
	r.mu.Lock()
	ls, ok := r.sessions[id]
	if !ok {
		ls = &liveSession{}
		r.sessions[id] = ls
	}
	r.mu.Unlock()
	ls.mu.Lock()
	return ls
}

func (r *registry) release(ls *liveSession) { ls.mu.Unlock() }

// forget drops the entry for id if it is still ls. A request that was
// blocked on ls must not evict an entry created after ls was dropped.
func (r *registry) forget(id string, ls *liveSession) {
	r.mu.Lock()
	if r.sessions[id] == ls {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
}

// Len returns the number of live entries.
func (r *registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// retain drops every entry whose ID is not in keep.
func (r *registry) retain(keep []string) int {
	set := make(map[string]bool, len(keep))
	for _, id := range keep {
		set[id] = true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id := range r.sessions {
		if !set[id] {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}
