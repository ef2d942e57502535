package handler

import (
	"strings"

	id "meterai/pkg/domain"
	dErrors "meterai/pkg/domain-errors"
)

// MintRequest creates a batch of tokens at one fixed price.
type MintRequest struct {
	Count int       `json:"count"`
	Price id.Amount `json:"price"`
}

func (r *MintRequest) Validate() error {
	if r.Count < 1 {
		return dErrors.New(dErrors.CodeValidation, "count must be at least 1")
	}
	return nil
}

// BuyRequest carries the payment attached to a purchase call.
type BuyRequest struct {
	Payment id.Amount `json:"payment"`
}

// BindRequest seals a token to a document. Password is optional.
type BindRequest struct {
	Document string `json:"document"`
	Password string `json:"password"`
}

func (r *BindRequest) Normalize() {
	r.Document = strings.TrimSpace(r.Document)
}

func (r *BindRequest) Validate() error {
	if r.Document == "" {
		return dErrors.New(dErrors.CodeValidation, "document is required")
	}
	return nil
}

// AccessRequest adds an identity to a token's read allow-list.
type AccessRequest struct {
	Grantee string `json:"grantee"`
}

func (r *AccessRequest) ParsedGrantee() (id.Identity, error) {
	return id.ParseIdentity(r.Grantee)
}
