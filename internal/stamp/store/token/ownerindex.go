package token

import (
	id "meterai/pkg/domain"
)

// ownedSet tracks the token ids held by one identity in insertion order.
// Add and Remove are O(1); List walks the order slice and compacts lazily
// once removed entries dominate, so repeated listings stay linear in the
// live set.
type ownedSet struct {
	order   []id.TokenID
	present map[id.TokenID]bool
}

func newOwnedSet() *ownedSet {
	return &ownedSet{present: make(map[id.TokenID]bool)}
}

func (s *ownedSet) Add(tokenID id.TokenID) {
	if s.present[tokenID] {
		return
	}
	s.present[tokenID] = true
	s.order = append(s.order, tokenID)
}

func (s *ownedSet) Remove(tokenID id.TokenID) {
	delete(s.present, tokenID)
}

func (s *ownedSet) Len() int {
	return len(s.present)
}

func (s *ownedSet) List() []id.TokenID {
	if len(s.order) > 2*len(s.present) {
		s.compact()
	}
	out := make([]id.TokenID, 0, len(s.present))
	for _, tokenID := range s.order {
		if s.present[tokenID] {
			out = append(out, tokenID)
		}
	}
	return out
}

func (s *ownedSet) compact() {
	live := s.order[:0]
	for _, tokenID := range s.order {
		if s.present[tokenID] {
			live = append(live, tokenID)
		}
	}
	s.order = live
}
