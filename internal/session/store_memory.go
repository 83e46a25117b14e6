package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process. Stored states are copies, so callers
// never share mutable state through the store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*State
	now  func() time.Time
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*State),
		now:  time.Now,
	}
}

// Get returns a copy of the session. Expired sessions are dropped on access.
func (s *MemoryStore) Get(ctx context.Context, id string) (*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	state, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if !state.Expired(s.now()) {
		return state.Clone()
	}

	// A Save may have refreshed the session since the read lock was released.
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !current.Expired(s.now()) {
		return current.Clone()
	}
	delete(s.data, id)
	return nil, ErrExpired
}

// Save stores a copy of state, replacing any previous version.
func (s *MemoryStore) Save(ctx context.Context, state *State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if state == nil || state.ID == "" {
		return ErrInvalidState
	}
	cp, err := state.Clone()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[state.ID] = cp
	return nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// PurgeExpired removes every session expired at now and returns their IDs.
func (s *MemoryStore) PurgeExpired(ctx context.Context, now time.Time) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []string
	for id, state := range s.data {
		if state.Expired(now) {
			delete(s.data, id)
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	return removed, nil
}
