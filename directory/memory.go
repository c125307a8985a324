package directory

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a thread-safe in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]*User
	configs     map[string]json.RawMessage
	userConfigs map[uuid.UUID]json.RawMessage
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory directory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[uuid.UUID]*User),
		configs:     make(map[string]json.RawMessage),
		userConfigs: make(map[uuid.UUID]json.RawMessage),
	}
}

func (s *MemoryStore) UserByID(id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUserNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) UserByEmail(email string) (*User, error) {
	key := NormalizeEmail(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if NormalizeEmail(u.Email) == key {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", key, ErrUserNotFound)
}

func (s *MemoryStore) UserByUsername(username string) (*User, error) {
	key := NormalizeUsername(username)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if NormalizeUsername(u.Username) == key {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", key, ErrUserNotFound)
}

func (s *MemoryStore) SaveUser(u *User) error {
	cp := *u
	s.mu.Lock()
	s.users[u.ID] = &cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) DeleteUser(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("%s: %w", id, ErrUserNotFound)
	}
	delete(s.users, id)
	delete(s.userConfigs, id)
	return nil
}

func (s *MemoryStore) GlobalConfig() (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cfg, ok := s.configs["global"]; ok {
		return append(json.RawMessage(nil), cfg...), nil
	}
	return emptyConfig, nil
}

func (s *MemoryStore) SetGlobalConfig(config json.RawMessage) error {
	s.mu.Lock()
	s.configs["global"] = append(json.RawMessage(nil), config...)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) UserConfig(id uuid.UUID) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cfg, ok := s.userConfigs[id]; ok {
		return append(json.RawMessage(nil), cfg...), nil
	}
	return emptyConfig, nil
}

func (s *MemoryStore) SetUserConfig(id uuid.UUID, config json.RawMessage) error {
	s.mu.Lock()
	s.userConfigs[id] = append(json.RawMessage(nil), config...)
	s.mu.Unlock()
	return nil
}
