package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paydash/backend/internal/models"
)

// CreateAPIKey persists the hashed key and fills in CreatedAt.
func (s *Store) CreateAPIKey(ctx context.Context, k *models.APIKey) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO api_keys (id, organization_id, secret_hash, display_fragment, label, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		k.ID, k.OrganizationID, k.SecretHash, k.DisplayFragment, nullString(k.Label), k.Active).
		Scan(&k.CreatedAt)
	if err != nil {
		return wrap("failed to create api key", err)
	}
	return nil
}

// ListAPIKeys returns the organization's keys newest first. The secret hash is not selected.
func (s *Store) ListAPIKeys(ctx context.Context, orgID string) ([]models.APIKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, organization_id, display_fragment, label, active, created_at, last_used_at
		FROM api_keys
		WHERE organization_id = $1
		ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, wrap("failed to list api keys", err)
	}
	defer rows.Close()

	keys := []models.APIKey{}
	for rows.Next() {
		var (
			k        models.APIKey
			label    sql.NullString
			lastUsed sql.NullTime
		)
		if err := rows.Scan(&k.ID, &k.OrganizationID, &k.DisplayFragment, &label, &k.Active, &k.CreatedAt, &lastUsed); err != nil {
			return nil, wrap("failed to scan api key", err)
		}
		k.Label = stringPtr(label)
		if lastUsed.Valid {
			t := lastUsed.Time
			k.LastUsedAt = &t
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("failed to list api keys", err)
	}
	return keys, nil
}

// RevokeAPIKey marks the key inactive. The update matches already-inactive keys too,
// so repeating it succeeds; a key outside the organization is ErrNotFound.
func (s *Store) RevokeAPIKey(ctx context.Context, orgID, keyID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE api_keys SET active = FALSE WHERE id = $1 AND organization_id = $2",
		keyID, orgID)
	if err != nil {
		return wrap("failed to revoke api key", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("failed to revoke api key", err)
	}
	if n == 0 {
		return fmt.Errorf("failed to revoke api key: %w", ErrNotFound)
	}
	return nil
}

// ActiveAPIKeysByFragment returns active keys whose plaintext ends with fragment.
func (s *Store) ActiveAPIKeysByFragment(ctx context.Context, fragment string) ([]models.APIKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, organization_id, secret_hash, display_fragment
		FROM api_keys
		WHERE display_fragment = $1 AND active`, fragment)
	if err != nil {
		return nil, wrap("failed to find api keys", err)
	}
	defer rows.Close()

	var keys []models.APIKey
	for rows.Next() {
		k := models.APIKey{Active: true}
		if err := rows.Scan(&k.ID, &k.OrganizationID, &k.SecretHash, &k.DisplayFragment); err != nil {
			return nil, wrap("failed to scan api key", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("failed to find api keys", err)
	}
	return keys, nil
}

func (s *Store) TouchAPIKey(ctx context.Context, keyID string, at time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE api_keys SET last_used_at = $1 WHERE id = $2", at, keyID); err != nil {
		return wrap("failed to update api key usage", err)
	}
	return nil
}
