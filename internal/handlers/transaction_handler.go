package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/paydash/backend/internal/middleware"
	"github.com/paydash/backend/internal/models"
	"github.com/paydash/backend/internal/services"
)

type TransactionManager interface {
	List(ctx context.Context, orgID string, filter models.TransactionFilter, cursor string, limit int) (*services.TransactionPage, error)
	Get(ctx context.Context, orgID, txID string) (*models.Transaction, error)
	UpdateStatus(ctx context.Context, orgID, txID string, status models.TransactionStatus) (*models.Transaction, error)
}

type TransferExporter interface {
	ExportTransfer(ctx context.Context, orgID, txID string) (*services.TransferExport, error)
}

type TransactionHandler struct {
	txs       TransactionManager
	exporter  TransferExporter
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewTransactionHandler(txs TransactionManager, exporter TransferExporter, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		txs:       txs,
		exporter:  exporter,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

type TransactionPageResponse struct {
	Items      []models.Transaction `json:"items"`
	NextCursor string               `json:"nextCursor,omitempty"`
}

type UpdateStatusRequest struct {
	Status models.TransactionStatus `json:"status" validate:"required,oneof=posted failed"`
}

// List returns the organization's transactions, newest first
// @Summary List transactions
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param status query string false "pending, posted or failed"
// @Param direction query string false "in or out"
// @Param kind query string false "Transaction kind"
// @Param cursor query string false "nextCursor of the previous page"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} TransactionPageResponse
// @Failure 400 {object} services.ErrorResponse
// @Router /organizations/{orgId}/transactions [get]
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest,
				errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	filter := models.TransactionFilter{
		Status:    models.TransactionStatus(q.Get("status")),
		Direction: models.Direction(q.Get("direction")),
		Kind:      models.TransactionKind(q.Get("kind")),
	}

	page, err := h.txs.List(r.Context(), chi.URLParam(r, middleware.OrgURLParam), filter, q.Get("cursor"), limit)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	items := page.Items
	if items == nil {
		items = []models.Transaction{}
	}
	services.SendJSON(w, http.StatusOK, TransactionPageResponse{Items: items, NextCursor: page.NextCursor})
}

// Get returns one transaction
// @Summary Get transaction
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param txId path string true "Transaction ID"
// @Success 200 {object} models.Transaction
// @Failure 404 {object} services.ErrorResponse
// @Router /organizations/{orgId}/transactions/{txId} [get]
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.txs.Get(r.Context(), chi.URLParam(r, middleware.OrgURLParam), chi.URLParam(r, "txId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusOK, tx)
}

// UpdateStatus settles a pending transaction
// @Summary Settle transaction
// @Description Moves a pending transaction to posted or failed. Settled transactions cannot change.
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param txId path string true "Transaction ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} models.Transaction
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /organizations/{orgId}/transactions/{txId} [patch]
func (h *TransactionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	tx, err := h.txs.UpdateStatus(r.Context(), chi.URLParam(r, middleware.OrgURLParam), chi.URLParam(r, "txId"), req.Status)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusOK, tx)
}

// ExportISO20022 renders an outbound transfer as a pacs.008 message
// @Summary Export transfer as ISO 20022
// @Tags Transactions
// @Produce json
// @Produce xml
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param txId path string true "Transaction ID"
// @Param Accept header string false "application/xml for the raw document"
// @Success 200 {object} services.TransferExport
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /organizations/{orgId}/transactions/{txId}/iso20022 [get]
func (h *TransactionHandler) ExportISO20022(w http.ResponseWriter, r *http.Request) {
	export, err := h.exporter.ExportTransfer(r.Context(), chi.URLParam(r, middleware.OrgURLParam), chi.URLParam(r, "txId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if r.Header.Get("Accept") == "application/xml" {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(export.XML))
		return
	}
	services.SendJSON(w, http.StatusOK, export)
}
