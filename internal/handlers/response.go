package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/paydash/backend/internal/middleware"
	"github.com/paydash/backend/internal/services"
)

// MessageResponse is returned by endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListResponse wraps collections.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}

// writeServiceError maps service sentinels onto status codes. Unexpected errors are
// logged and reported without detail.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
	case errors.Is(err, services.ErrUnauthorized):
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
	case errors.Is(err, services.ErrForbidden):
		services.SendErrorResponse(w, "Forbidden", http.StatusForbidden, nil)
	case errors.Is(err, services.ErrNotFound):
		services.SendErrorResponse(w, "Resource not found", http.StatusNotFound, nil)
	case errors.Is(err, services.ErrConflict):
		services.SendErrorResponse(w, "Conflict", http.StatusConflict, nil)
	case errors.Is(err, services.ErrInsufficientFunds):
		services.SendErrorResponse(w, "Insufficient funds", http.StatusUnprocessableEntity, nil)
	default:
		logger.Error("request failed", zap.Error(err))
		services.SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
	}
}

// decodeRequest reads and validates a JSON body, writing the 400 response itself on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, v *services.ValidationHelper, dst any) bool {
	if err := services.DecodeJSON(w, r, dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, err)
		return false
	}
	if err := v.ValidateStruct(dst); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return false
	}
	return true
}

func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
	}
	return userID, ok
}
