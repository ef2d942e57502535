package token

import (
	id "meterai/pkg/domain"
)

// availQueue is the availability index: a FIFO over Available token ids with
// O(1) push, peek, and removal of an arbitrary id. Removal by id matters
// because a purchase may target any Available token, not just the head.
//
// Implemented as a doubly linked list with a node index. The catalogue may
// hold many thousands of entries, so a linear scan on take or remove is not
// acceptable.
type availQueue struct {
	head  *availNode
	tail  *availNode
	nodes map[id.TokenID]*availNode
}

type availNode struct {
	tokenID    id.TokenID
	prev, next *availNode
}

func newAvailQueue() *availQueue {
	return &availQueue{nodes: make(map[id.TokenID]*availNode)}
}

func (q *availQueue) Len() int {
	return len(q.nodes)
}

// Push appends a token id in mint order. Pushing an id already present is a
// no-op; ids enter the queue exactly once at mint.
func (q *availQueue) Push(tokenID id.TokenID) {
	if _, exists := q.nodes[tokenID]; exists {
		return
	}
	n := &availNode{tokenID: tokenID, prev: q.tail}
	if q.tail != nil {
		q.tail.next = n
	} else {
		q.head = n
	}
	q.tail = n
	q.nodes[tokenID] = n
}

// Peek returns the earliest-inserted id without removing it.
func (q *availQueue) Peek() (id.TokenID, bool) {
	if q.head == nil {
		return 0, false
	}
	return q.head.tokenID, true
}

// Remove unlinks an id from anywhere in the queue. Returns false if the id
// is not present.
func (q *availQueue) Remove(tokenID id.TokenID) bool {
	n, exists := q.nodes[tokenID]
	if !exists {
		return false
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		q.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		q.tail = n.prev
	}
	delete(q.nodes, tokenID)
	return true
}
