// Package presence is the in-memory source of truth for which users are
// online. State is intentionally ephemeral: a process restart starts from
// an empty registry and clients re-announce themselves.
package presence

import (
	"sync"
	"time"

	"github.com/kingdice/presence-service/internal/domain"
)

// Registry maps userID to presence entry, with a reverse index from
// connection handle to userID so disconnect cleanup is O(1) instead of a
// scan over everyone online. Both maps mutate under one lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]domain.PresenceEntry // userID -> entry
	byConn  map[string]string               // connID -> userID
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]domain.PresenceEntry),
		byConn:  make(map[string]string),
	}
}

// Announce records a user as online on the given connection and returns
// the entry plus the handle of any previous connection that was bound to
// this user. When a user re-announces from a new connection the old
// handle's reverse mapping is released here, so a later disconnect of the
// orphaned connection cannot knock the user offline.
func (r *Registry) Announce(connID, userID, username string) (entry domain.PresenceEntry, prevConnID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.entries[userID]; ok && prev.ConnID != connID {
		prevConnID = prev.ConnID
		delete(r.byConn, prev.ConnID)
	}

	entry = domain.PresenceEntry{
		UserID:   userID,
		Username: username,
		ConnID:   connID,
		LastSeen: time.Now().UTC(),
	}
	r.entries[userID] = entry
	r.byConn[connID] = userID
	return entry, prevConnID
}

// Retire removes a user's presence entry. It reports the removed entry and
// whether the user was known; retiring an unknown user is a no-op.
func (r *Registry) Retire(userID string) (domain.PresenceEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[userID]
	if !ok {
		return domain.PresenceEntry{}, false
	}
	delete(r.entries, userID)
	delete(r.byConn, entry.ConnID)
	return entry, true
}

// LookupByConn resolves the user announced on a connection, if any.
func (r *Registry) LookupByConn(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.byConn[connID]
	return userID, ok
}

// Get returns the presence entry for a user.
func (r *Registry) Get(userID string) (domain.PresenceEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[userID]
	return entry, ok
}

// Snapshot returns all current presence entries.
func (r *Registry) Snapshot() []domain.PresenceEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.PresenceEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry)
	}
	return out
}

// Count reports how many users are online.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
