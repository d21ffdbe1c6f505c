package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paydash/backend/internal/models"
)

const transactionColumns = "id, organization_id, module_id, kind, direction, status, amount, currency, counterparty, reference, metadata, created_at, updated_at"

// Cursor identifies the last row of a page; the next page starts strictly after it.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		t        models.Transaction
		moduleID sql.NullString
	)
	err := row.Scan(&t.ID, &t.OrganizationID, &moduleID, &t.Kind, &t.Direction, &t.Status,
		&t.Amount, &t.Currency, &t.Counterparty, &t.Reference, &t.Metadata, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.ModuleID = stringPtr(moduleID)
	return &t, nil
}

// ListLedger loads every ledger entry of the organization with the fields balance needs.
func (s *Store) ListLedger(ctx context.Context, orgID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT direction, status, amount FROM transactions WHERE organization_id = $1",
		orgID)
	if err != nil {
		return nil, wrap("failed to load ledger", err)
	}
	defer rows.Close()

	var ledger []models.Transaction
	for rows.Next() {
		t := models.Transaction{OrganizationID: orgID}
		if err := rows.Scan(&t.Direction, &t.Status, &t.Amount); err != nil {
			return nil, wrap("failed to scan ledger entry", err)
		}
		ledger = append(ledger, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("failed to load ledger", err)
	}
	return ledger, nil
}

// ListTransactions returns up to limit transactions, newest first, after the cursor.
func (s *Store) ListTransactions(ctx context.Context, orgID string, filter models.TransactionFilter, after *Cursor, limit int) ([]models.Transaction, error) {
	var (
		where = []string{"organization_id = $1"}
		args  = []any{orgID}
	)
	add := func(clause string, vals ...any) {
		for _, v := range vals {
			args = append(args, v)
			clause = strings.Replace(clause, "?", fmt.Sprintf("$%d", len(args)), 1)
		}
		where = append(where, clause)
	}

	if filter.Status != "" {
		add("status = ?", string(filter.Status))
	}
	if filter.Direction != "" {
		add("direction = ?", string(filter.Direction))
	}
	if filter.Kind != "" {
		add("kind = ?", string(filter.Kind))
	}
	if after != nil {
		add("(created_at, id) < (?, ?)", after.CreatedAt, after.ID)
	}
	args = append(args, limit)

	query := fmt.Sprintf(
		"SELECT %s FROM transactions WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d",
		transactionColumns, strings.Join(where, " AND "), len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("failed to list transactions", err)
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, wrap("failed to scan transaction", err)
		}
		txs = append(txs, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("failed to list transactions", err)
	}
	return txs, nil
}

func (s *Store) GetTransaction(ctx context.Context, orgID, txID string) (*models.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = $1 AND organization_id = $2",
		txID, orgID))
	if err != nil {
		return nil, wrap("failed to get transaction", err)
	}
	return t, nil
}

func (s *Store) CreateTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	created, err := scanTransaction(s.db.QueryRowContext(ctx, `
		INSERT INTO transactions (id, organization_id, module_id, kind, direction, status, amount, currency, counterparty, reference, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+transactionColumns,
		t.ID, t.OrganizationID, nullString(t.ModuleID), string(t.Kind), string(t.Direction), string(t.Status),
		t.Amount, t.Currency, t.Counterparty, t.Reference, t.Metadata))
	if err != nil {
		return nil, wrap("failed to create transaction", err)
	}
	return created, nil
}

// UpdateTransactionStatus moves a pending transaction to status. Transactions that
// are already posted or failed are reported as ErrConflict.
func (s *Store) UpdateTransactionStatus(ctx context.Context, orgID, txID string, status models.TransactionStatus) (*models.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx, `
		UPDATE transactions SET status = $1, updated_at = NOW()
		WHERE id = $2 AND organization_id = $3 AND status = 'pending'
		RETURNING `+transactionColumns,
		string(status), txID, orgID))
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, wrap("failed to update transaction status", err)
	}

	if _, err := s.GetTransaction(ctx, orgID, txID); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("transaction is no longer pending: %w", ErrConflict)
}
