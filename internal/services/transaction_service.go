package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paydash/backend/internal/audit"
	"github.com/paydash/backend/internal/models"
	"github.com/paydash/backend/internal/store"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type TransactionStore interface {
	ListTransactions(ctx context.Context, orgID string, filter models.TransactionFilter, after *store.Cursor, limit int) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, orgID, txID string) (*models.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, orgID, txID string, status models.TransactionStatus) (*models.Transaction, error)
}

type TransactionPage struct {
	Items      []models.Transaction
	NextCursor string
}

type cursorToken struct {
	CreatedAt time.Time `json:"t"`
	ID        string    `json:"id"`
}

type TransactionService struct {
	txs    TransactionStore
	audit  *audit.Logger
	logger *zap.Logger
}

func NewTransactionService(txs TransactionStore, auditLog *audit.Logger, logger *zap.Logger) *TransactionService {
	return &TransactionService{txs: txs, audit: auditLog, logger: logger}
}

// List returns one page of transactions, newest first. cursor is the NextCursor of the
// previous page or empty for the first page.
func (s *TransactionService) List(ctx context.Context, orgID string, filter models.TransactionFilter, cursor string, limit int) (*TransactionPage, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validationErrorf("unknown status %q", filter.Status)
	}
	if filter.Direction != "" && !filter.Direction.Valid() {
		return nil, validationErrorf("unknown direction %q", filter.Direction)
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	after, err := decodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	txs, err := s.txs.ListTransactions(ctx, orgID, filter, after, limit+1)
	if err != nil {
		return nil, err
	}

	page := &TransactionPage{Items: txs}
	if len(txs) > limit {
		page.Items = txs[:limit]
		last := page.Items[limit-1]
		page.NextCursor = encodeCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

func (s *TransactionService) Get(ctx context.Context, orgID, txID string) (*models.Transaction, error) {
	if _, err := uuid.Parse(txID); err != nil {
		return nil, fmt.Errorf("transaction %q: %w", txID, ErrNotFound)
	}
	return s.txs.GetTransaction(ctx, orgID, txID)
}

// UpdateStatus settles a pending transaction as posted or failed.
// Posted and failed transactions are immutable and yield ErrConflict.
func (s *TransactionService) UpdateStatus(ctx context.Context, orgID, txID string, status models.TransactionStatus) (*models.Transaction, error) {
	if !status.Final() {
		return nil, validationErrorf("status must be posted or failed")
	}
	if _, err := uuid.Parse(txID); err != nil {
		return nil, fmt.Errorf("transaction %q: %w", txID, ErrNotFound)
	}

	tx, err := s.txs.UpdateTransactionStatus(ctx, orgID, txID, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction settled",
		zap.String("org_id", orgID),
		zap.String("tx_id", txID),
		zap.String("status", string(status)))
	s.audit.Record(ctx, audit.Event{
		Type:           audit.EventTxStatusChanged,
		OrganizationID: orgID,
		ResourceID:     txID,
		Details:        map[string]string{"status": string(status)},
	})
	return tx, nil
}

func encodeCursor(createdAt time.Time, id string) string {
	raw, _ := json.Marshal(cursorToken{CreatedAt: createdAt.UTC(), ID: id})
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(cursor string) (*store.Cursor, error) {
	if cursor == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, validationErrorf("invalid cursor")
	}
	var tok cursorToken
	if err := json.Unmarshal(raw, &tok); err != nil || tok.ID == "" || tok.CreatedAt.IsZero() {
		return nil, validationErrorf("invalid cursor")
	}
	return &store.Cursor{CreatedAt: tok.CreatedAt, ID: tok.ID}, nil
}
