package audit

import (
	"time"

	"github.com/google/uuid"

	id "meterai/pkg/domain"
)

// Event is emitted from domain logic to capture committed lifecycle
// transitions. Keep it transport-agnostic so stores and sinks can fan out.
//
// The stream is for external observers; it accurately reflects committed
// transitions but carries no internal consistency obligation.
type Event struct {
	ID        uuid.UUID    `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Action    Action       `json:"action"`
	Actor     id.Identity  `json:"actor"`
	TokenIDs  []id.TokenID `json:"token_ids,omitempty"`
	Amount    id.Amount    `json:"amount,omitempty"`
	Grantee   id.Identity  `json:"grantee,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
}

// Action names a committed transition.
type Action string

const (
	ActionMinted        Action = "minted"
	ActionBought        Action = "bought"
	ActionBound         Action = "bound"
	ActionAccessGranted Action = "access_granted"
	ActionAccessRevoked Action = "access_revoked"
)
