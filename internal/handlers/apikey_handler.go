package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/paydash/backend/internal/middleware"
	"github.com/paydash/backend/internal/models"
	"github.com/paydash/backend/internal/services"
)

type APIKeyManager interface {
	CreateKey(ctx context.Context, orgID string, label *string) (*services.CreatedAPIKey, error)
	ListKeys(ctx context.Context, orgID string) ([]models.APIKey, error)
	RevokeKey(ctx context.Context, orgID, keyID string) error
}

type APIKeyHandler struct {
	keys      APIKeyManager
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewAPIKeyHandler(keys APIKeyManager, logger *zap.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		keys:      keys,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

type CreateAPIKeyRequest struct {
	Name *string `json:"name" validate:"omitempty,max=100"`
}

// CreatedAPIKeyResponse is the only response that ever contains the plaintext key.
type CreatedAPIKeyResponse struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Last4     string    `json:"last4"`
	Name      *string   `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Active    bool      `json:"active"`
}

// Create issues a new API key
// @Summary Create API key
// @Description The plaintext key is returned once and cannot be retrieved again
// @Tags API Keys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param request body CreateAPIKeyRequest false "Key label"
// @Success 201 {object} CreatedAPIKeyResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /organizations/{orgId}/api-keys [post]
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAPIKeyRequest
	if r.ContentLength != 0 {
		if !decodeRequest(w, r, h.validator, &req) {
			return
		}
	}

	created, err := h.keys.CreateKey(r.Context(), chi.URLParam(r, middleware.OrgURLParam), req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	services.SendJSON(w, http.StatusCreated, CreatedAPIKeyResponse{
		ID:        created.ID,
		Key:       created.Secret,
		Last4:     created.DisplayFragment,
		Name:      created.Label,
		CreatedAt: created.CreatedAt,
		Active:    created.Active,
	})
}

// List returns the organization's keys, newest first
// @Summary List API keys
// @Tags API Keys
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Success 200 {object} ListResponse[models.APIKey]
// @Failure 403 {object} services.ErrorResponse
// @Router /organizations/{orgId}/api-keys [get]
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keys.ListKeys(r.Context(), chi.URLParam(r, middleware.OrgURLParam))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if keys == nil {
		keys = []models.APIKey{}
	}
	services.SendJSON(w, http.StatusOK, ListResponse[models.APIKey]{Items: keys})
}

// Revoke deactivates a key
// @Summary Revoke API key
// @Description Revoking an already revoked key succeeds
// @Tags API Keys
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param keyId path string true "API key ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /organizations/{orgId}/api-keys/{keyId} [delete]
func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	err := h.keys.RevokeKey(r.Context(), chi.URLParam(r, middleware.OrgURLParam), chi.URLParam(r, "keyId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusOK, MessageResponse{Message: "API key revoked"})
}
