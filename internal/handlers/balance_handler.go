package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/paydash/backend/internal/middleware"
	"github.com/paydash/backend/internal/services"
)

type BalanceCalculator interface {
	ComputeBalance(ctx context.Context, orgID string) (*services.Balance, error)
}

type BalanceHandler struct {
	balances BalanceCalculator
	logger   *zap.Logger
}

func NewBalanceHandler(balances BalanceCalculator, logger *zap.Logger) *BalanceHandler {
	return &BalanceHandler{balances: balances, logger: logger}
}

// BalanceResponse carries amounts as JSON numbers without float rounding.
type BalanceResponse struct {
	Available                json.Number `json:"available" swaggertype:"number"`
	Pending                  json.Number `json:"pending" swaggertype:"number"`
	Currency                 string      `json:"currency"`
	PriceUSD                 json.Number `json:"priceUsd" swaggertype:"number"`
	TotalUSD                 json.Number `json:"totalUsd" swaggertype:"number"`
	PriceChangePercentage24h *float64    `json:"priceChangePercentage24h"`
	PriceStale               bool        `json:"priceStale"`
	UpdatedAt                time.Time   `json:"updatedAt"`
}

func newBalanceResponse(b *services.Balance) BalanceResponse {
	return BalanceResponse{
		Available:                json.Number(b.Available.String()),
		Pending:                  json.Number(b.Pending.String()),
		Currency:                 b.Currency,
		PriceUSD:                 json.Number(b.PriceUSD.String()),
		TotalUSD:                 json.Number(b.TotalUSD.String()),
		PriceChangePercentage24h: b.ChangePercent24h,
		PriceStale:               b.PriceStale,
		UpdatedAt:                b.AsOf,
	}
}

// OrganizationBalance returns the organization's balance and its USD value
// @Summary Organization balance
// @Description Available and pending holdings with the current USD price. A stale price is served when the price source is unavailable.
// @Tags Balance
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Success 200 {object} BalanceResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /organizations/{orgId}/balance [get]
func (h *BalanceHandler) OrganizationBalance(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, chi.URLParam(r, middleware.OrgURLParam))
}

// MerchantBalance returns the balance of the organization owning the API key
// @Summary Merchant balance
// @Tags Merchant
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} BalanceResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /merchant/balance [get]
func (h *BalanceHandler) MerchantBalance(w http.ResponseWriter, r *http.Request) {
	orgID, ok := middleware.OrganizationIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	h.respond(w, r, orgID)
}

func (h *BalanceHandler) respond(w http.ResponseWriter, r *http.Request, orgID string) {
	balance, err := h.balances.ComputeBalance(r.Context(), orgID)
	if err != nil {
		writeServiceError(w, h.logger.With(zap.String("org_id", orgID)), err)
		return
	}
	services.SendJSON(w, http.StatusOK, newBalanceResponse(balance))
}
