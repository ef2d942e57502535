package token

import (
	"context"
	"sync"

	"meterai/internal/stamp/models"
	id "meterai/pkg/domain"
	"meterai/pkg/platform/sentinel"
)

// InMemory is the default token registry. It keeps the token table, the
// availability FIFO, the per-status counters, and the owner index behind one
// lock so every mutation leaves them mutually consistent.
//
// Ids are dense from 0, so the table is a slice indexed by id.
type InMemory struct {
	mu     sync.RWMutex
	tokens []*models.Token
	avail  *availQueue
	counts map[models.Status]int
	owners map[id.Identity]*ownedSet
}

func NewInMemory() *InMemory {
	return &InMemory{
		avail:  newAvailQueue(),
		counts: make(map[models.Status]int),
		owners: make(map[id.Identity]*ownedSet),
	}
}

// Insert assigns the next sequential id to t and indexes it. New tokens must
// be Available; the registry owns id allocation so mint batches stay dense.
func (s *InMemory) Insert(_ context.Context, t *models.Token) (id.TokenID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Status != models.StatusAvailable {
		return 0, sentinel.ErrInvalidState
	}

	t.ID = id.TokenID(len(s.tokens))
	s.tokens = append(s.tokens, t.Clone())

	s.avail.Push(t.ID)
	s.counts[models.StatusAvailable]++
	s.ownerSet(t.Owner).Add(t.ID)
	return t.ID, nil
}

// FindByID returns a snapshot of the token. Returns sentinel.ErrNotFound
// when the id is outside the minted range.
func (s *InMemory) FindByID(_ context.Context, tokenID id.TokenID) (*models.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if int(tokenID) >= len(s.tokens) {
		return nil, sentinel.ErrNotFound
	}
	return s.tokens[tokenID].Clone(), nil
}

// Execute atomically validates and mutates one token. The lock is held for
// both callbacks, so a validation that passes cannot be invalidated before
// apply runs. After apply the store reconciles the availability index, the
// counters, and the owner index against the status and owner changes.
//
// validate errors abort with no effect. apply must not fail.
func (s *InMemory) Execute(
	_ context.Context,
	tokenID id.TokenID,
	validate func(t *models.Token) error,
	apply func(t *models.Token),
) (*models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int(tokenID) >= len(s.tokens) {
		return nil, sentinel.ErrNotFound
	}
	t := s.tokens[tokenID]

	if err := validate(t); err != nil {
		return nil, err
	}

	prevStatus, prevOwner := t.Status, t.Owner
	apply(t)

	if t.Status != prevStatus {
		s.counts[prevStatus]--
		s.counts[t.Status]++
		if prevStatus == models.StatusAvailable {
			s.avail.Remove(tokenID)
		}
	}
	if t.Owner != prevOwner {
		s.ownerSet(prevOwner).Remove(tokenID)
		s.ownerSet(t.Owner).Add(tokenID)
	}
	return t.Clone(), nil
}

// PeekAvailable reports the FIFO head of the availability index. Returns
// sentinel.ErrExhausted when no Available token remains.
func (s *InMemory) PeekAvailable(_ context.Context) (id.TokenID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tokenID, ok := s.avail.Peek()
	if !ok {
		return 0, sentinel.ErrExhausted
	}
	return tokenID, nil
}

func (s *InMemory) TotalSupply(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.tokens)), nil
}

func (s *InMemory) CountByStatus(_ context.Context, status models.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[status], nil
}

// ListByOwner returns the ids currently held by owner, in insertion order.
func (s *InMemory) ListByOwner(_ context.Context, owner id.Identity) ([]id.TokenID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, exists := s.owners[owner]
	if !exists {
		return nil, nil
	}
	return set.List(), nil
}

func (s *InMemory) ownerSet(owner id.Identity) *ownedSet {
	set, exists := s.owners[owner]
	if !exists {
		set = newOwnedSet()
		s.owners[owner] = set
	}
	return set
}
