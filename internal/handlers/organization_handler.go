package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/paydash/backend/internal/middleware"
	"github.com/paydash/backend/internal/models"
	"github.com/paydash/backend/internal/services"
)

type OrganizationManager interface {
	Create(ctx context.Context, userID, name string) (*models.Organization, error)
	ListForUser(ctx context.Context, userID string) ([]models.OrganizationSummary, error)
	Get(ctx context.Context, orgID string) (*models.Organization, error)
	AddMember(ctx context.Context, orgID, email string, role models.Role) (*models.Membership, error)
	ListMembers(ctx context.Context, orgID string) ([]models.Membership, error)
	RemoveMember(ctx context.Context, orgID, userID string) error
}

type OrganizationHandler struct {
	orgs      OrganizationManager
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewOrganizationHandler(orgs OrganizationManager, logger *zap.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		orgs:      orgs,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

type AddMemberRequest struct {
	Email string      `json:"email" validate:"required,email"`
	Role  models.Role `json:"role" validate:"required,oneof=admin member"`
}

// Create creates an organization owned by the caller
// @Summary Create organization
// @Description Creates an organization with its wallet module; the caller becomes owner
// @Tags Organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateOrganizationRequest true "Organization"
// @Success 201 {object} models.Organization
// @Failure 400 {object} services.ErrorResponse
// @Router /organizations [post]
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req CreateOrganizationRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	org, err := h.orgs.Create(r.Context(), userID, req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusCreated, org)
}

// List returns the caller's organizations
// @Summary List organizations
// @Tags Organizations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ListResponse[models.OrganizationSummary]
// @Router /organizations [get]
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	orgs, err := h.orgs.ListForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if orgs == nil {
		orgs = []models.OrganizationSummary{}
	}
	services.SendJSON(w, http.StatusOK, ListResponse[models.OrganizationSummary]{Items: orgs})
}

// Get returns one organization
// @Summary Get organization
// @Tags Organizations
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Success 200 {object} models.OrganizationSummary
// @Failure 403 {object} services.ErrorResponse
// @Router /organizations/{orgId} [get]
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgs.Get(r.Context(), chi.URLParam(r, middleware.OrgURLParam))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	summary := models.OrganizationSummary{Organization: *org}
	if m, ok := middleware.MembershipFromContext(r.Context()); ok {
		summary.Role = m.Role
	}
	services.SendJSON(w, http.StatusOK, summary)
}

// AddMember adds an existing user to the organization
// @Summary Add member
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param request body AddMemberRequest true "Member"
// @Success 201 {object} models.Membership
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /organizations/{orgId}/members [post]
func (h *OrganizationHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req AddMemberRequest
	if !decodeRequest(w, r, h.validator, &req) {
		return
	}

	m, err := h.orgs.AddMember(r.Context(), chi.URLParam(r, middleware.OrgURLParam), req.Email, req.Role)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusCreated, m)
}

// ListMembers lists the organization's members
// @Summary List members
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Success 200 {object} ListResponse[models.Membership]
// @Failure 403 {object} services.ErrorResponse
// @Router /organizations/{orgId}/members [get]
func (h *OrganizationHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.orgs.ListMembers(r.Context(), chi.URLParam(r, middleware.OrgURLParam))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if members == nil {
		members = []models.Membership{}
	}
	services.SendJSON(w, http.StatusOK, ListResponse[models.Membership]{Items: members})
}

// RemoveMember removes a non-owner member
// @Summary Remove member
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param orgId path string true "Organization ID"
// @Param userId path string true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /organizations/{orgId}/members/{userId} [delete]
func (h *OrganizationHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.orgs.RemoveMember(r.Context(), chi.URLParam(r, middleware.OrgURLParam), chi.URLParam(r, "userId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	services.SendJSON(w, http.StatusOK, MessageResponse{Message: "Member removed"})
}
