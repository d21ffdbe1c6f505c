package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/paydash/backend/internal/models"
)

// CreateOrganization inserts the organization, its owner membership and its wallet module
// in one transaction.
func (s *Store) CreateOrganization(ctx context.Context, org *models.Organization, wallet *models.PaymentModule) (*models.Organization, error) {
	created := &models.Organization{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO organizations (id, name, slug, created_by)
			VALUES ($1, $2, $3, $4)
			RETURNING id, name, slug, created_by, created_at`,
			org.ID, org.Name, org.Slug, org.CreatedBy).
			Scan(&created.ID, &created.Name, &created.Slug, &created.CreatedBy, &created.CreatedAt)
		if err != nil {
			return wrap("failed to create organization", err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO memberships (organization_id, user_id, role) VALUES ($1, $2, $3)",
			created.ID, org.CreatedBy, string(models.RoleOwner)); err != nil {
			return wrap("failed to create owner membership", err)
		}

		if _, err := insertModule(ctx, tx, wallet); err != nil {
			return wrap("failed to create wallet module", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) GetOrganization(ctx context.Context, orgID string) (*models.Organization, error) {
	org := &models.Organization{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, slug, created_by, created_at FROM organizations WHERE id = $1", orgID).
		Scan(&org.ID, &org.Name, &org.Slug, &org.CreatedBy, &org.CreatedAt)
	if err != nil {
		return nil, wrap("failed to get organization", err)
	}
	return org, nil
}

// ListOrganizationsForUser returns every organization the user belongs to with their role.
func (s *Store) ListOrganizationsForUser(ctx context.Context, userID string) ([]models.OrganizationSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.name, o.slug, o.created_by, o.created_at, m.role
		FROM organizations o
		JOIN memberships m ON m.organization_id = o.id
		WHERE m.user_id = $1
		ORDER BY o.created_at ASC`, userID)
	if err != nil {
		return nil, wrap("failed to list organizations", err)
	}
	defer rows.Close()

	orgs := []models.OrganizationSummary{}
	for rows.Next() {
		var o models.OrganizationSummary
		if err := rows.Scan(&o.ID, &o.Name, &o.Slug, &o.CreatedBy, &o.CreatedAt, &o.Role); err != nil {
			return nil, wrap("failed to scan organization", err)
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("failed to list organizations", err)
	}
	return orgs, nil
}

func (s *Store) GetMembership(ctx context.Context, orgID, userID string) (*models.Membership, error) {
	m := &models.Membership{}
	err := s.db.QueryRowContext(ctx,
		"SELECT organization_id, user_id, role, created_at FROM memberships WHERE organization_id = $1 AND user_id = $2",
		orgID, userID).Scan(&m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, wrap("failed to get membership", err)
	}
	return m, nil
}

func (s *Store) AddMember(ctx context.Context, m *models.Membership) (*models.Membership, error) {
	created := &models.Membership{Email: m.Email}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO memberships (organization_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING organization_id, user_id, role, created_at`,
		m.OrganizationID, m.UserID, string(m.Role)).
		Scan(&created.OrganizationID, &created.UserID, &created.Role, &created.CreatedAt)
	if err != nil {
		return nil, wrap("failed to add member", err)
	}
	return created, nil
}

func (s *Store) ListMembers(ctx context.Context, orgID string) ([]models.Membership, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.organization_id, m.user_id, u.email, m.role, m.created_at
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.organization_id = $1
		ORDER BY m.created_at ASC`, orgID)
	if err != nil {
		return nil, wrap("failed to list members", err)
	}
	defer rows.Close()

	members := []models.Membership{}
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.OrganizationID, &m.UserID, &m.Email, &m.Role, &m.CreatedAt); err != nil {
			return nil, wrap("failed to scan member", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("failed to list members", err)
	}
	return members, nil
}

// RemoveMember deletes a non-owner membership.
func (s *Store) RemoveMember(ctx context.Context, orgID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM memberships WHERE organization_id = $1 AND user_id = $2 AND role <> 'owner'",
		orgID, userID)
	if err != nil {
		return wrap("failed to remove member", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("failed to remove member", err)
	}
	if n == 0 {
		return fmt.Errorf("failed to remove member: %w", ErrNotFound)
	}
	return nil
}
