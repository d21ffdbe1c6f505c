package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/paydash/backend/internal/audit"
	"github.com/paydash/backend/internal/models"
	"github.com/paydash/backend/internal/services"
)

const APIKeyHeader = "X-API-Key"

type KeyAuthenticator interface {
	Authenticate(ctx context.Context, plaintext string) (*models.APIKey, error)
}

// APIKeyMiddleware authenticates merchant integrations by the X-API-Key header and
// puts the owning organization in the request context.
func APIKeyMiddleware(keys KeyAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			plaintext := r.Header.Get(APIKeyHeader)
			if plaintext == "" {
				services.SendErrorResponse(w, "API key required", http.StatusUnauthorized, nil)
				return
			}

			key, err := keys.Authenticate(r.Context(), plaintext)
			if err != nil {
				if errors.Is(err, services.ErrUnauthorized) {
					services.SendErrorResponse(w, "Invalid API key", http.StatusUnauthorized, nil)
					return
				}
				services.SendErrorResponse(w, "Failed to authenticate API key", http.StatusInternalServerError, nil)
				return
			}

			ctx := context.WithValue(r.Context(), ContextOrganizationID, key.OrganizationID)
			ctx = context.WithValue(ctx, ContextAPIKeyID, key.ID)
			ctx = audit.WithActor(ctx, "apikey:"+key.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
