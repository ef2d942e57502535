package ledger

import (
	"context"
	"sync"

	id "meterai/pkg/domain"
	"meterai/pkg/platform/sentinel"
)

// InMemoryOwnership tracks token holders in process. It is both the test
// fake and the default backend when no external ledger is wired.
type InMemoryOwnership struct {
	mu       sync.RWMutex
	owners   map[id.TokenID]id.Identity
	holdings map[id.Identity]int
}

func NewInMemoryOwnership() *InMemoryOwnership {
	return &InMemoryOwnership{
		owners:   make(map[id.TokenID]id.Identity),
		holdings: make(map[id.Identity]int),
	}
}

func (l *InMemoryOwnership) Register(_ context.Context, tokenID id.TokenID, owner id.Identity) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.owners[tokenID]; exists {
		return sentinel.ErrConflict
	}
	l.owners[tokenID] = owner
	l.holdings[owner]++
	return nil
}

func (l *InMemoryOwnership) Transfer(_ context.Context, tokenID id.TokenID, from, to id.Identity) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	current, exists := l.owners[tokenID]
	if !exists {
		return sentinel.ErrNotFound
	}
	if current != from {
		return sentinel.ErrInvalidState
	}
	l.owners[tokenID] = to
	l.holdings[from]--
	l.holdings[to]++
	return nil
}

func (l *InMemoryOwnership) OwnerOf(_ context.Context, tokenID id.TokenID) (id.Identity, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	owner, exists := l.owners[tokenID]
	if !exists {
		return "", sentinel.ErrNotFound
	}
	return owner, nil
}

func (l *InMemoryOwnership) Holdings(_ context.Context, owner id.Identity) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.holdings[owner], nil
}

// InMemoryBank keeps account balances in process. Deposit exists so wiring
// code and tests can fund accounts; the platform this models has its own
// issuance mechanics.
type InMemoryBank struct {
	mu       sync.RWMutex
	balances map[id.Identity]id.Amount
}

func NewInMemoryBank() *InMemoryBank {
	return &InMemoryBank{balances: make(map[id.Identity]id.Amount)}
}

func (b *InMemoryBank) Deposit(who id.Identity, amount id.Amount) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[who] += amount
}

func (b *InMemoryBank) Transfer(_ context.Context, from, to id.Identity, amount id.Amount) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.balances[from] < amount {
		return sentinel.ErrInsufficientFunds
	}
	b.balances[from] -= amount
	b.balances[to] += amount
	return nil
}

func (b *InMemoryBank) BalanceOf(_ context.Context, who id.Identity) (id.Amount, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[who], nil
}
