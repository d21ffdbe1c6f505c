package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/paydash/backend/internal/models"
)

const moduleColumns = "id, organization_id, name, kind, config, enabled, created_at, updated_at"

func scanModule(row rowScanner) (*models.PaymentModule, error) {
	var (
		m   models.PaymentModule
		raw []byte
	)
	if err := row.Scan(&m.ID, &m.OrganizationID, &m.Name, &m.Kind, &raw, &m.Enabled, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	cfg, err := models.DecodeModuleConfig(m.Kind, raw)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", m.ID, err)
	}
	m.Config = cfg
	return &m, nil
}

func insertModule(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, m *models.PaymentModule) (*models.PaymentModule, error) {
	raw, err := models.EncodeModuleConfig(m.Config)
	if err != nil {
		return nil, err
	}
	row := q.QueryRowContext(ctx, `
		INSERT INTO payment_modules (id, organization_id, name, kind, config, enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+moduleColumns,
		m.ID, m.OrganizationID, m.Name, string(m.Kind), raw, m.Enabled)
	return scanModule(row)
}

func (s *Store) CreateModule(ctx context.Context, m *models.PaymentModule) (*models.PaymentModule, error) {
	created, err := insertModule(ctx, s.db, m)
	if err != nil {
		return nil, wrap("failed to create module", err)
	}
	return created, nil
}

// ListModules returns the organization's modules, oldest first.
func (s *Store) ListModules(ctx context.Context, orgID string) ([]models.PaymentModule, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+moduleColumns+" FROM payment_modules WHERE organization_id = $1 ORDER BY created_at ASC",
		orgID)
	if err != nil {
		return nil, wrap("failed to list modules", err)
	}
	defer rows.Close()

	modules := []models.PaymentModule{}
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, wrap("failed to scan module", err)
		}
		modules = append(modules, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("failed to list modules", err)
	}
	return modules, nil
}

func (s *Store) GetModule(ctx context.Context, orgID, moduleID string) (*models.PaymentModule, error) {
	m, err := scanModule(s.db.QueryRowContext(ctx,
		"SELECT "+moduleColumns+" FROM payment_modules WHERE id = $1 AND organization_id = $2",
		moduleID, orgID))
	if err != nil {
		return nil, wrap("failed to get module", err)
	}
	return m, nil
}

// GetWalletModule returns the organization's reserved bookkeeping module.
func (s *Store) GetWalletModule(ctx context.Context, orgID string) (*models.PaymentModule, error) {
	m, err := scanModule(s.db.QueryRowContext(ctx,
		"SELECT "+moduleColumns+" FROM payment_modules WHERE organization_id = $1 AND kind = 'wallet'",
		orgID))
	if err != nil {
		return nil, wrap("failed to get wallet module", err)
	}
	return m, nil
}

// UpdateModule replaces name, config and enabled of a non-reserved module.
func (s *Store) UpdateModule(ctx context.Context, m *models.PaymentModule) (*models.PaymentModule, error) {
	raw, err := models.EncodeModuleConfig(m.Config)
	if err != nil {
		return nil, err
	}
	updated, err := scanModule(s.db.QueryRowContext(ctx, `
		UPDATE payment_modules
		SET name = $1, config = $2, enabled = $3, updated_at = NOW()
		WHERE id = $4 AND organization_id = $5 AND kind <> 'wallet'
		RETURNING `+moduleColumns,
		m.Name, raw, m.Enabled, m.ID, m.OrganizationID))
	if err != nil {
		return nil, wrap("failed to update module", err)
	}
	return updated, nil
}

func (s *Store) DeleteModule(ctx context.Context, orgID, moduleID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM payment_modules WHERE id = $1 AND organization_id = $2 AND kind <> 'wallet'",
		moduleID, orgID)
	if err != nil {
		return wrap("failed to delete module", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("failed to delete module", err)
	}
	if n == 0 {
		return fmt.Errorf("failed to delete module: %w", ErrNotFound)
	}
	return nil
}

// EnsureWalletModule returns the organization's wallet module, creating it from wallet
// when the organization predates it.
func (s *Store) EnsureWalletModule(ctx context.Context, wallet *models.PaymentModule) (*models.PaymentModule, error) {
	m, err := s.GetWalletModule(ctx, wallet.OrganizationID)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	created, err := s.CreateModule(ctx, wallet)
	if errors.Is(err, ErrConflict) {
		return s.GetWalletModule(ctx, wallet.OrganizationID)
	}
	return created, err
}
