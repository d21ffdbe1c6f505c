package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/paydash/backend/internal/middleware"
	"github.com/paydash/backend/internal/models"
	"github.com/paydash/backend/internal/services"
)

type WalletOperator interface {
	Buy(ctx context.Context, orgID string, amount decimal.Decimal) (*models.Transaction, error)
	Send(ctx context.Context, orgID string, amount decimal.Decimal, recipient, memo string) (*models.Transaction, error)
	CreateReceiveRequest(ctx context.Context, orgID string, amount *decimal.Decimal, memo string) (*services.ReceiveRequest, error)
	GetReceiveRequest(ctx context.Context, orgID, requestID string) (*services.ReceiveRequest, error)
}

type WalletHandler struct {
	wallet    WalletOperator
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewWalletHandler(wallet WalletOperator, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{
		wallet:    wallet,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

type BuyRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"1.5"`
}

type SendRequest struct {
	Amount    decimal.Decimal `json:"amount" swaggertype:"string" example:"0.25"`
	Recipient string          `json:"recipient" validate:"required,max=128"`
	Memo      string          `json:"memo" validate:"max=140"`
}

type ReceiveRequestBody struct {
	Amount *decimal.Decimal `json:"amount,omitempty" swaggertype:"string"`
	Memo   string           `json:"memo" validate:"max=140"`
}

// Buy records a purchase of the wallet asset
// @Summary Buy
// @Description Records a pending inbound purchase valued at the current price
// @Tags Wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param request body BuyRequest true "Amount in asset units"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /organizations/{orgId}/wallet/buy [post]
func (h *WalletHandler) Buy(w http.ResponseWriter, r *http.Request) {
	var req BuyRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	tx, err := h.wallet.Buy(r.Context(), chi.URLParam(r, middleware.OrgURLParam), req.Amount)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusCreated, tx)
}

// Send records an outbound transfer
// @Summary Send
// @Description Records a pending outbound transfer; the available balance must cover the amount
// @Tags Wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param request body SendRequest true "Transfer"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /organizations/{orgId}/wallet/send [post]
func (h *WalletHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	tx, err := h.wallet.Send(r.Context(), chi.URLParam(r, middleware.OrgURLParam), req.Amount, req.Recipient, req.Memo)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusCreated, tx)
}

// CreateReceive creates a payment request with a QR code
// @Summary Create receive request
// @Tags Wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param request body ReceiveRequestBody false "Optional amount and memo"
// @Success 201 {object} services.ReceiveRequest
// @Failure 400 {object} services.ErrorResponse
// @Router /organizations/{orgId}/wallet/receive [post]
func (h *WalletHandler) CreateReceive(w http.ResponseWriter, r *http.Request) {
	var req ReceiveRequestBody
	if r.ContentLength != 0 {
		if !decodeRequest(w, r, h.validator, &req) {
			return
		}
	}

	rr, err := h.wallet.CreateReceiveRequest(r.Context(), chi.URLParam(r, middleware.OrgURLParam), req.Amount, req.Memo)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusCreated, rr)
}

// GetReceive returns an unexpired receive request
// @Summary Get receive request
// @Tags Wallet
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param requestId path string true "Receive request ID"
// @Success 200 {object} services.ReceiveRequest
// @Failure 404 {object} services.ErrorResponse
// @Router /organizations/{orgId}/wallet/receive/{requestId} [get]
func (h *WalletHandler) GetReceive(w http.ResponseWriter, r *http.Request) {
	rr, err := h.wallet.GetReceiveRequest(r.Context(), chi.URLParam(r, middleware.OrgURLParam), chi.URLParam(r, "requestId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusOK, rr)
}
