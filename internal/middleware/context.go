package middleware

import (
	"context"

	"github.com/paydash/backend/internal/models"
)

type contextKey string

const (
	ContextUserID         contextKey = "userID"
	ContextOrganizationID contextKey = "organizationID"
	ContextMembership     contextKey = "membership"
	ContextAPIKeyID       contextKey = "apiKeyID"
)

func UserIDFromContext(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextUserID).(string)
	return val, ok && val != ""
}

// OrganizationIDFromContext returns the organization resolved from an API key.
func OrganizationIDFromContext(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextOrganizationID).(string)
	return val, ok && val != ""
}

func MembershipFromContext(ctx context.Context) (*models.Membership, bool) {
	val, ok := ctx.Value(ContextMembership).(*models.Membership)
	return val, ok && val != nil
}

func APIKeyIDFromContext(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(ContextAPIKeyID).(string)
	return val, ok && val != ""
}
