package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/paydash/backend/internal/audit"
	"github.com/paydash/backend/internal/services"
)

// TokenParser resolves a bearer token to the user it was issued to.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// AuthMiddleware requires a valid "Bearer <jwt>" Authorization header.
func AuthMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				services.SendErrorResponse(w, "Authorization header required", http.StatusUnauthorized, nil)
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				services.SendErrorResponse(w, "Invalid authorization header format", http.StatusUnauthorized, nil)
				return
			}

			userID, err := tokens.ParseToken(parts[1])
			if err != nil {
				services.SendErrorResponse(w, "Invalid token", http.StatusUnauthorized, nil)
				return
			}

			ctx := context.WithValue(r.Context(), ContextUserID, userID)
			ctx = audit.WithActor(ctx, "user:"+userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
