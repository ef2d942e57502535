package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"meterai/internal/stamp/models"
	id "meterai/pkg/domain"
	dErrors "meterai/pkg/domain-errors"
	"meterai/pkg/platform/httputil"
	"meterai/pkg/requestcontext"
)

// Handler wires stamp endpoints to the stamp service. It stays thin: decode,
// authenticate via context, delegate, encode.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// Service is the surface the handler needs from the stamp service.
type Service interface {
	Mint(ctx context.Context, caller id.Identity, count int, price id.Amount) ([]id.TokenID, error)
	Buy(ctx context.Context, caller id.Identity, tokenID id.TokenID, payment id.Amount) (*models.Receipt, error)
	Bind(ctx context.Context, caller id.Identity, tokenID id.TokenID, document, password string) error
	GrantAccess(ctx context.Context, caller id.Identity, tokenID id.TokenID, grantee id.Identity) error
	RevokeAccess(ctx context.Context, caller id.Identity, tokenID id.TokenID, grantee id.Identity) error
	GetToken(ctx context.Context, caller id.Identity, tokenID id.TokenID) (*models.Token, error)
	GetPassword(ctx context.Context, caller id.Identity, tokenID id.TokenID) (string, error)
	GetAvailableToken(ctx context.Context) (*models.Offer, error)
	Stats(ctx context.Context) (*models.Stats, error)
	TokensOf(ctx context.Context, owner id.Identity) ([]id.TokenID, error)
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts stamp endpoints on the router. The router is expected to
// run behind the caller-auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tokens/mint", h.HandleMint)
	r.Post("/tokens/{id}/buy", h.HandleBuy)
	r.Post("/tokens/{id}/bind", h.HandleBind)
	r.Post("/tokens/{id}/access", h.HandleGrantAccess)
	r.Delete("/tokens/{id}/access/{grantee}", h.HandleRevokeAccess)
	r.Get("/tokens/available", h.HandleGetAvailable)
	r.Get("/tokens/stats", h.HandleStats)
	r.Get("/tokens/{id}", h.HandleGetToken)
	r.Get("/tokens/{id}/password", h.HandleGetPassword)
	r.Get("/me/tokens", h.HandleMyTokens)
}

func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}

	req, ok := httputil.Decode[MintRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	tokenIDs, err := h.service.Mint(ctx, caller, req.Count, req.Price)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, MintResponse{TokenIDs: tokenIDs})
}

func (h *Handler) HandleBuy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	tokenID, ok := h.tokenID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[BuyRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	receipt, err := h.service.Buy(ctx, caller, tokenID, req.Payment)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, receipt)
}

func (h *Handler) HandleBind(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	tokenID, ok := h.tokenID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[BindRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Bind(ctx, caller, tokenID, req.Document, req.Password); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGrantAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	tokenID, ok := h.tokenID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[AccessRequest](w, r, h.logger, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	grantee, err := req.ParsedGrantee()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.GrantAccess(ctx, caller, tokenID, grantee); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleRevokeAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	tokenID, ok := h.tokenID(w, r)
	if !ok {
		return
	}
	grantee, err := id.ParseIdentity(chi.URLParam(r, "grantee"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.RevokeAccess(ctx, caller, tokenID, grantee); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGetAvailable(w http.ResponseWriter, r *http.Request) {
	offer, err := h.service.GetAvailableToken(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, offer)
}

func (h *Handler) HandleGetToken(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	tokenID, ok := h.tokenID(w, r)
	if !ok {
		return
	}

	t, err := h.service.GetToken(r.Context(), caller, tokenID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromToken(t))
}

func (h *Handler) HandleGetPassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	tokenID, ok := h.tokenID(w, r)
	if !ok {
		return
	}

	password, err := h.service.GetPassword(r.Context(), caller, tokenID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PasswordResponse{Password: password})
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) HandleMyTokens(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}

	tokenIDs, err := h.service.TokensOf(r.Context(), caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TokenListResponse{TokenIDs: tokenIDs})
}

func (h *Handler) requireCaller(w http.ResponseWriter, r *http.Request) (id.Identity, bool) {
	caller := requestcontext.Caller(r.Context())
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return "", false
	}
	return caller, true
}

func (h *Handler) tokenID(w http.ResponseWriter, r *http.Request) (id.TokenID, bool) {
	tokenID, err := id.ParseTokenID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return tokenID, true
}
