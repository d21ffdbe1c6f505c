package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paydash/backend/internal/models"
	"github.com/paydash/backend/internal/services"
)

// OrgURLParam is the chi route parameter holding the organization id.
const OrgURLParam = "orgId"

type Authorizer interface {
	Authorize(ctx context.Context, userID, orgID string, needManage bool) (*models.Membership, error)
}

// RequireMembership rejects callers that are not members of the organization in the URL,
// or that lack a managing role when needManage is set. It must run after AuthMiddleware.
func RequireMembership(authz Authorizer, needManage bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
				return
			}

			membership, err := authz.Authorize(r.Context(), userID, chi.URLParam(r, OrgURLParam), needManage)
			if err != nil {
				if errors.Is(err, services.ErrForbidden) {
					services.SendErrorResponse(w, "You do not have access to this organization", http.StatusForbidden, nil)
					return
				}
				services.SendErrorResponse(w, "Failed to check organization access", http.StatusInternalServerError, nil)
				return
			}

			ctx := context.WithValue(r.Context(), ContextMembership, membership)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
