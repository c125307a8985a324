package auth

import "sync"

// Store is a concurrent-safe table of live sessions keyed by session key.
// It enforces at most one live session per user: Put evicts any existing
// session owned by the same user in the same critical section, so two
// concurrent logins for one account can race but never both survive.
//
// Expiry is not enforced here; callers check Token.Expired on access. An
// optional Sweep is provided for deployments that want stale entries
// reclaimed eagerly.
type Store struct {
	mu   sync.RWMutex
	data map[string]*Token
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{data: make(map[string]*Token)}
}

// Put inserts or replaces the token, removing any existing session that
// belongs to the same user first.
func (s *Store) Put(t *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := t.User(); u != nil {
		for key, existing := range s.data {
			if eu := existing.User(); eu != nil && eu.ID == u.ID {
				delete(s.data, key)
			}
		}
	}
	s.data[t.SessionKey()] = t
}

// Get returns the token for the given session key, if present.
func (s *Store) Get(sessionKey string) (*Token, bool) {
	s.mu.RLock()
	t, ok := s.data[sessionKey]
	s.mu.RUnlock()
	return t, ok
}

// Contains reports whether a session key is already in use.
func (s *Store) Contains(sessionKey string) bool {
	s.mu.RLock()
	_, ok := s.data[sessionKey]
	s.mu.RUnlock()
	return ok
}

// Remove deletes the session for the given key. Removing an absent key is a
// no-op.
func (s *Store) Remove(sessionKey string) {
	s.mu.Lock()
	delete(s.data, sessionKey)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Sweep removes every idle-expired session and returns how many were
// evicted. The authorization path never calls this; it exists so a server
// can opt into periodic reclamation of sessions that stopped being accessed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, t := range s.data {
		if t.Expired() {
			delete(s.data, key)
			n++
		}
	}
	return n
}
