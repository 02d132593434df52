// Package rooms tracks which users occupy which chat rooms.
package rooms

import "sync"

// Tracker keeps a set of userIDs per chat room. Room ids come from the
// chat catalog and are not validated here; empty sets are kept around
// since the id space is bounded by the catalog.
type Tracker struct {
	mu      sync.RWMutex
	members map[string]map[string]struct{} // chatID -> userID set
}

func NewTracker() *Tracker {
	return &Tracker{
		members: make(map[string]map[string]struct{}),
	}
}

// Join adds a user to a room's membership set. It returns the resulting
// member count and whether the set actually changed; joining a room the
// user already occupies is a no-op.
func (t *Tracker) Join(chatID, userID string) (count int, changed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.members[chatID]
	if !ok {
		set = make(map[string]struct{})
		t.members[chatID] = set
	}
	if _, exists := set[userID]; !exists {
		set[userID] = struct{}{}
		changed = true
	}
	return len(set), changed
}

// Leave removes a user from a room's membership set. Leaving a room the
// user never joined is a no-op.
func (t *Tracker) Leave(chatID, userID string) (count int, changed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.members[chatID]
	if !ok {
		return 0, false
	}
	if _, exists := set[userID]; exists {
		delete(set, userID)
		changed = true
	}
	return len(set), changed
}

// CleanupOnDisconnect removes the user from every room they occupy and
// returns the resulting count per affected room. Visiting the full index
// matters: a user can sit in several rooms at once.
func (t *Tracker) CleanupOnDisconnect(userID string) map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	affected := make(map[string]int)
	for chatID, set := range t.members {
		if _, exists := set[userID]; exists {
			delete(set, userID)
			affected[chatID] = len(set)
		}
	}
	return affected
}

// Count reports the membership size of a room.
func (t *Tracker) Count(chatID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.members[chatID])
}

// Contains reports whether a user occupies a room.
func (t *Tracker) Contains(chatID, userID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.members[chatID][userID]
	return ok
}
