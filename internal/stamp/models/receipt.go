package models

import (
	"time"

	"github.com/google/uuid"

	id "meterai/pkg/domain"
)

// Receipt is the materialized outcome of a successful purchase.
type Receipt struct {
	ReceiptID uuid.UUID   `json:"receipt_id"`
	TokenID   id.TokenID  `json:"token_id"`
	Price     id.Amount   `json:"price"`
	Buyer     id.Identity `json:"buyer"`
	PaidAt    time.Time   `json:"paid_at"`
}

// Offer is the read-only "next available" view returned before a purchase.
// The token it names is the FIFO head, so the same token is consumed by the
// next purchase if no other purchase intervenes.
type Offer struct {
	TokenID id.TokenID `json:"token_id"`
	Price   id.Amount  `json:"price"`
}

// Stats captures the per-status totals alongside the total supply. The
// counters are maintained incrementally on every transition and always equal
// the exact cardinality of tokens in each status.
type Stats struct {
	TotalSupply uint64 `json:"total_supply"`
	Available   int    `json:"available"`
	Paid        int    `json:"paid"`
	Bound       int    `json:"bound"`
}
