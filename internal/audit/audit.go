// Package audit records security-relevant changes as structured log events.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type EventType string

const (
	EventAPIKeyCreated   EventType = "API_KEY_CREATED"
	EventAPIKeyRevoked   EventType = "API_KEY_REVOKED"
	EventMemberAdded     EventType = "MEMBER_ADDED"
	EventMemberRemoved   EventType = "MEMBER_REMOVED"
	EventModuleCreated   EventType = "MODULE_CREATED"
	EventModuleUpdated   EventType = "MODULE_UPDATED"
	EventModuleDeleted   EventType = "MODULE_DELETED"
	EventOrgCreated      EventType = "ORGANIZATION_CREATED"
	EventWalletOperation EventType = "WALLET_OPERATION"
	EventTxStatusChanged EventType = "TRANSACTION_STATUS_CHANGED"
	EventError           EventType = "ERROR"
)

type Event struct {
	Timestamp      time.Time
	Type           EventType
	OrganizationID string
	ActorID        string
	ResourceID     string
	Status         string
	Details        map[string]string
}

type actorKey struct{}

// WithActor attaches the acting principal to ctx for later audit events.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

func ActorFromContext(ctx context.Context) string {
	id, _ := ctx.Value(actorKey{}).(string)
	return id
}

// Logger writes audit events through zap. A nil *Logger discards events.
type Logger struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{
		logger: logger.Named("audit"),
		now:    time.Now,
	}
}

// Record logs e, filling the timestamp and the actor from ctx when unset.
func (a *Logger) Record(ctx context.Context, e Event) {
	if a == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = a.now().UTC()
	}
	if e.ActorID == "" {
		e.ActorID = ActorFromContext(ctx)
	}
	if e.Status == "" {
		e.Status = "SUCCESS"
	}

	fields := []zap.Field{
		zap.Time("timestamp", e.Timestamp),
		zap.String("event_type", string(e.Type)),
		zap.String("org_id", e.OrganizationID),
		zap.String("actor_id", e.ActorID),
		zap.String("resource_id", e.ResourceID),
		zap.String("status", e.Status),
	}
	if len(e.Details) > 0 {
		fields = append(fields, zap.Any("details", e.Details))
	}
	a.logger.Info("AUDIT", fields...)
}

func (a *Logger) LogError(ctx context.Context, orgID, resourceID string, err error) {
	a.Record(ctx, Event{
		Type:           EventError,
		OrganizationID: orgID,
		ResourceID:     resourceID,
		Status:         "FAILED",
		Details:        map[string]string{"error": err.Error()},
	})
}

// LogWalletOperation records a buy, send or receive against the organization wallet.
func (a *Logger) LogWalletOperation(ctx context.Context, orgID, txID, kind, amount, status string) {
	a.Record(ctx, Event{
		Type:           EventWalletOperation,
		OrganizationID: orgID,
		ResourceID:     txID,
		Status:         status,
		Details:        map[string]string{"kind": kind, "amount": amount},
	})
}
