// Package identity keeps the single active user identity of the process and
// persists it across sessions.
package identity

import (
	"context"
	"fmt"
	"sync"

	"daybook/internal/core"
)

// StorageKey is the fixed name the identity is persisted under.
const StorageKey = "userEmail"

// Persister stores string settings by key.
type Persister interface {
	GetSetting(ctx context.Context, key string) (value string, ok bool, err error)
	PutSetting(ctx context.Context, key, value string) error
}

// Store holds the one live identity value.
type Store struct {
	mu      sync.RWMutex
	current core.Identity
	persist Persister
}

// Open creates a store seeded with the persisted identity, if any.
func Open(ctx context.Context, p Persister) (*Store, error) {
	s := &Store{persist: p}
	if p == nil {
		return s, nil
	}
	raw, ok, err := p.GetSetting(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}
	if ok {
		s.current, _ = core.NormalizeIdentity(raw)
	}
	return s, nil
}

// Get returns the current identity, or "" when none is set.
func (s *Store) Get() core.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set normalizes raw and makes it the current identity. changed reports
// whether the normalized value differs from the previous one. Empty input is
// a no-op: the current value is returned with changed=false and a nil error.
func (s *Store) Set(ctx context.Context, raw string) (id core.Identity, changed bool, err error) {
	id, ok := core.NormalizeIdentity(raw)
	if !ok {
		return s.Get(), false, nil
	}
	if s.persist != nil {
		if err := s.persist.PutSetting(ctx, StorageKey, id.String()); err != nil {
			return s.Get(), false, fmt.Errorf("persist identity: %w", err)
		}
	}
	s.mu.Lock()
	changed = id != s.current
	s.current = id
	s.mu.Unlock()
	return id, changed, nil
}
