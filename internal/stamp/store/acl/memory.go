package acl

import (
	"context"
	"sync"

	id "meterai/pkg/domain"
)

// InMemory keeps per-token access lists in process. Grant and Revoke are
// idempotent: granting twice or revoking an absent grantee is a no-op.
type InMemory struct {
	mu     sync.RWMutex
	grants map[id.TokenID]map[id.Identity]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{grants: make(map[id.TokenID]map[id.Identity]struct{})}
}

func (s *InMemory) Grant(_ context.Context, tokenID id.TokenID, grantee id.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, exists := s.grants[tokenID]
	if !exists {
		set = make(map[id.Identity]struct{})
		s.grants[tokenID] = set
	}
	set[grantee] = struct{}{}
	return nil
}

func (s *InMemory) Revoke(_ context.Context, tokenID id.TokenID, grantee id.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if set, exists := s.grants[tokenID]; exists {
		delete(set, grantee)
	}
	return nil
}

func (s *InMemory) IsGranted(_ context.Context, tokenID id.TokenID, grantee id.Identity) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, exists := s.grants[tokenID]
	if !exists {
		return false, nil
	}
	_, granted := set[grantee]
	return granted, nil
}
