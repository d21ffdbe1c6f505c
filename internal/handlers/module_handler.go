package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/paydash/backend/internal/middleware"
	"github.com/paydash/backend/internal/models"
	"github.com/paydash/backend/internal/services"
)

type ModuleManager interface {
	Create(ctx context.Context, orgID string, in services.ModuleInput) (*models.PaymentModule, error)
	List(ctx context.Context, orgID string) ([]models.PaymentModule, error)
	Get(ctx context.Context, orgID, moduleID string) (*models.PaymentModule, error)
	Update(ctx context.Context, orgID, moduleID string, in services.ModuleInput) (*models.PaymentModule, error)
	Delete(ctx context.Context, orgID, moduleID string) error
}

type SnippetGenerator interface {
	Generate(module *models.PaymentModule, format services.SnippetFormat) (string, error)
}

type ModuleHandler struct {
	modules   ModuleManager
	snippets  SnippetGenerator
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewModuleHandler(modules ModuleManager, snippets SnippetGenerator, logger *zap.Logger) *ModuleHandler {
	return &ModuleHandler{
		modules:   modules,
		snippets:  snippets,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

// ModuleRequest creates or replaces a module. config is decoded according to kind.
type ModuleRequest struct {
	Name    string            `json:"name" validate:"required,max=100"`
	Kind    models.ModuleKind `json:"kind" validate:"omitempty,oneof=payment_link donation checkout wallet"`
	Config  json.RawMessage   `json:"config" swaggertype:"object"`
	Enabled *bool             `json:"enabled"`
}

func (req ModuleRequest) input() services.ModuleInput {
	return services.ModuleInput{
		Name:    req.Name,
		Kind:    req.Kind,
		Config:  req.Config,
		Enabled: req.Enabled,
	}
}

type SnippetResponse struct {
	ModuleID string `json:"moduleId"`
	Format   string `json:"format"`
	Snippet  string `json:"snippet"`
}

// Create adds a payment module
// @Summary Create module
// @Tags Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param request body ModuleRequest true "Module"
// @Success 201 {object} models.PaymentModule
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /organizations/{orgId}/modules [post]
func (h *ModuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ModuleRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}
	m, err := h.modules.Create(r.Context(), chi.URLParam(r, middleware.OrgURLParam), req.input())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusCreated, m)
}

// List returns the organization's modules including the wallet module
// @Summary List modules
// @Tags Modules
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Success 200 {object} ListResponse[models.PaymentModule]
// @Router /organizations/{orgId}/modules [get]
func (h *ModuleHandler) List(w http.ResponseWriter, r *http.Request) {
	modules, err := h.modules.List(r.Context(), chi.URLParam(r, middleware.OrgURLParam))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if modules == nil {
		modules = []models.PaymentModule{}
	}
	services.SendJSON(w, http.StatusOK, ListResponse[models.PaymentModule]{Items: modules})
}

// Get returns one module
// @Summary Get module
// @Tags Modules
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param moduleId path string true "Module ID"
// @Success 200 {object} models.PaymentModule
// @Failure 404 {object} services.ErrorResponse
// @Router /organizations/{orgId}/modules/{moduleId} [get]
func (h *ModuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.modules.Get(r.Context(), chi.URLParam(r, middleware.OrgURLParam), chi.URLParam(r, "moduleId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusOK, m)
}

// Update replaces a module's name, config and enabled flag
// @Summary Update module
// @Tags Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param moduleId path string true "Module ID"
// @Param request body ModuleRequest true "Module"
// @Success 200 {object} models.PaymentModule
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /organizations/{orgId}/modules/{moduleId} [put]
func (h *ModuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ModuleRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	m, err := h.modules.Update(r.Context(), chi.URLParam(r, middleware.OrgURLParam), chi.URLParam(r, "moduleId"), req.input())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusOK, m)
}

// Delete removes a module. The wallet module cannot be deleted.
// @Summary Delete module
// @Tags Modules
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param moduleId path string true "Module ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /organizations/{orgId}/modules/{moduleId} [delete]
func (h *ModuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.modules.Delete(r.Context(), chi.URLParam(r, middleware.OrgURLParam), chi.URLParam(r, "moduleId")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusOK, MessageResponse{Message: "Module deleted"})
}

// Snippet renders the embed code of a module
// @Summary Module embed snippet
// @Tags Modules
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param moduleId path string true "Module ID"
// @Param format query string false "html or react" Enums(html, react)
// @Success 200 {object} SnippetResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /organizations/{orgId}/modules/{moduleId}/snippet [get]
func (h *ModuleHandler) Snippet(w http.ResponseWriter, r *http.Request) {
	m, err := h.modules.Get(r.Context(), chi.URLParam(r, middleware.OrgURLParam), chi.URLParam(r, "moduleId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	format := services.SnippetFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = services.SnippetHTML
	}
	snippet, err := h.snippets.Generate(m, format)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusOK, SnippetResponse{ModuleID: m.ID, Format: string(format), Snippet: snippet})
}
