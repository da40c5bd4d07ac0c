package recruit

import (
	"slices"
	"sync"

	"github.com/ashureev/recruitbot/internal/domain"
)

// Index maps a user to the sessions they participate in. It is kept in step
// with every committed membership change so presence events never need to
// scan message history.
type Index struct {
	mu     sync.RWMutex
	byUser map[string]map[string]struct{}
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{byUser: make(map[string]map[string]struct{})}
}

func (x *Index) add(sessionID string, userIDs ...string) {
	for _, u := range userIDs {
		set, ok := x.byUser[u]
		if !ok {
			set = make(map[string]struct{})
			x.byUser[u] = set
		}
		set[sessionID] = struct{}{}
	}
}

func (x *Index) remove(sessionID string, userIDs ...string) {
	for _, u := range userIDs {
		set, ok := x.byUser[u]
		if !ok {
			continue
		}
		delete(set, sessionID)
		if len(set) == 0 {
			delete(x.byUser, u)
		}
	}
}

// Track registers every participant of s.
func (x *Index) Track(s *domain.Session) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.add(s.ID, s.Participants...)
}

// Untrack removes every participant of s.
func (x *Index) Untrack(s *domain.Session) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.remove(s.ID, s.Participants...)
}

// Update applies the membership diff between two states of one session.
func (x *Index) Update(prev, next *domain.Session) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, u := range prev.Participants {
		if !next.Has(u) {
			x.remove(prev.ID, u)
		}
	}
	for _, u := range next.Participants {
		if !prev.Has(u) {
			x.add(next.ID, u)
		}
	}
}

// SessionsOf returns the ids of the sessions userID participates in, sorted.
func (x *Index) SessionsOf(userID string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	set := x.byUser[userID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
