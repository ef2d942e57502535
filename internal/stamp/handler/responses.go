package handler

import (
	"meterai/internal/stamp/models"
	id "meterai/pkg/domain"
)

// MintResponse lists the ids of a freshly minted batch.
type MintResponse struct {
	TokenIDs []id.TokenID `json:"token_ids"`
}

// TokenResponse is the read view of a token. Document is only present once
// the token is bound and the caller passed the access gate.
type TokenResponse struct {
	TokenID  id.TokenID    `json:"token_id"`
	Status   models.Status `json:"status"`
	Price    id.Amount     `json:"price"`
	Owner    id.Identity   `json:"owner"`
	Document string        `json:"document,omitempty"`
}

func FromToken(t *models.Token) TokenResponse {
	return TokenResponse{
		TokenID:  t.ID,
		Status:   t.Status,
		Price:    t.Price,
		Owner:    t.Owner,
		Document: t.Document,
	}
}

// PasswordResponse returns the stored password to an authorized reader.
type PasswordResponse struct {
	Password string `json:"password"`
}

// TokenListResponse lists token ids in insertion order.
type TokenListResponse struct {
	TokenIDs []id.TokenID `json:"token_ids"`
}
