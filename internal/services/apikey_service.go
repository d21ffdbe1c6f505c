package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/paydash/backend/internal/audit"
	"github.com/paydash/backend/internal/cache"
	"github.com/paydash/backend/internal/config"
	"github.com/paydash/backend/internal/models"
)

const (
	apiKeySecretBytes  = 16 // 128 bits, 32 hex characters
	apiKeyFragmentLen  = 4
	minAPIKeyHashCost  = bcrypt.DefaultCost
	maxAPIKeyLabelRune = 100
)

type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, k *models.APIKey) error
	ListAPIKeys(ctx context.Context, orgID string) ([]models.APIKey, error)
	RevokeAPIKey(ctx context.Context, orgID, keyID string) error
	ActiveAPIKeysByFragment(ctx context.Context, fragment string) ([]models.APIKey, error)
	TouchAPIKey(ctx context.Context, keyID string, at time.Time) error
}

// CreatedAPIKey carries the plaintext secret. It exists only in the create response.
type CreatedAPIKey struct {
	models.APIKey
	Secret string
}

type APIKeyService struct {
	keys   APIKeyStore
	prefix string
	cost   int
	clock  cache.Clock
	random io.Reader
	audit  *audit.Logger
	logger *zap.Logger
}

func NewAPIKeyService(keys APIKeyStore, cfg config.APIKeyConfig, auditLog *audit.Logger, logger *zap.Logger) *APIKeyService {
	cost := cfg.BcryptCost
	if cost < minAPIKeyHashCost {
		cost = minAPIKeyHashCost
	}
	return &APIKeyService{
		keys:   keys,
		prefix: cfg.Prefix,
		cost:   cost,
		clock:  cache.SystemClock{},
		random: rand.Reader,
		audit:  auditLog,
		logger: logger,
	}
}

// CreateKey issues a new key for the organization and returns its plaintext once.
func (s *APIKeyService) CreateKey(ctx context.Context, orgID string, label *string) (*CreatedAPIKey, error) {
	label, err := normalizeLabel(label)
	if err != nil {
		return nil, err
	}

	secret, err := s.generateSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate api key: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash api key: %w", err)
	}

	key := models.APIKey{
		ID:              uuid.NewString(),
		OrganizationID:  orgID,
		SecretHash:      string(hash),
		DisplayFragment: secret[len(secret)-apiKeyFragmentLen:],
		Label:           label,
		Active:          true,
	}
	if err := s.keys.CreateAPIKey(ctx, &key); err != nil {
		return nil, err
	}

	s.logger.Info("api key created",
		zap.String("org_id", orgID),
		zap.String("key_id", key.ID),
		zap.String("last4", key.DisplayFragment))
	s.audit.Record(ctx, audit.Event{
		Type:           audit.EventAPIKeyCreated,
		OrganizationID: orgID,
		ResourceID:     key.ID,
		Details:        map[string]string{"last4": key.DisplayFragment},
	})

	return &CreatedAPIKey{APIKey: key, Secret: secret}, nil
}

// ListKeys returns the organization's keys, newest first, without hashes.
func (s *APIKeyService) ListKeys(ctx context.Context, orgID string) ([]models.APIKey, error) {
	keys, err := s.keys.ListAPIKeys(ctx, orgID)
	if err != nil {
		return nil, err
	}
	for i := range keys {
		keys[i].SecretHash = ""
	}
	return keys, nil
}

// RevokeKey deactivates a key of the organization. Revoking an inactive key succeeds;
// a key that belongs to another organization is ErrNotFound.
func (s *APIKeyService) RevokeKey(ctx context.Context, orgID, keyID string) error {
	if _, err := uuid.Parse(keyID); err != nil {
		return fmt.Errorf("api key %q: %w", keyID, ErrNotFound)
	}
	if err := s.keys.RevokeAPIKey(ctx, orgID, keyID); err != nil {
		return err
	}

	s.logger.Info("api key revoked", zap.String("org_id", orgID), zap.String("key_id", keyID))
	s.audit.Record(ctx, audit.Event{
		Type:           audit.EventAPIKeyRevoked,
		OrganizationID: orgID,
		ResourceID:     keyID,
	})
	return nil
}

// Verify reports whether candidate matches the stored bcrypt hash.
func (s *APIKeyService) Verify(candidate, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(candidate)) == nil
}

// Authenticate resolves a presented plaintext key to its active record and stamps its use.
func (s *APIKeyService) Authenticate(ctx context.Context, plaintext string) (*models.APIKey, error) {
	if !s.wellFormed(plaintext) {
		return nil, ErrUnauthorized
	}

	candidates, err := s.keys.ActiveAPIKeysByFragment(ctx, plaintext[len(plaintext)-apiKeyFragmentLen:])
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		k := candidates[i]
		if !s.Verify(plaintext, k.SecretHash) {
			continue
		}
		now := s.clock.Now().UTC()
		if err := s.keys.TouchAPIKey(ctx, k.ID, now); err != nil {
			s.logger.Warn("failed to record api key use", zap.String("key_id", k.ID), zap.Error(err))
		} else {
			k.LastUsedAt = &now
		}
		k.SecretHash = ""
		return &k, nil
	}
	return nil, ErrUnauthorized
}

func (s *APIKeyService) generateSecret() (string, error) {
	b := make([]byte, apiKeySecretBytes)
	if _, err := io.ReadFull(s.random, b); err != nil {
		return "", err
	}
	return s.prefix + hex.EncodeToString(b), nil
}

func (s *APIKeyService) wellFormed(plaintext string) bool {
	if !strings.HasPrefix(plaintext, s.prefix) {
		return false
	}
	suffix := plaintext[len(s.prefix):]
	if len(suffix) != apiKeySecretBytes*2 {
		return false
	}
	_, err := hex.DecodeString(suffix)
	return err == nil
}

func normalizeLabel(label *string) (*string, error) {
	if label == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*label)
	if v == "" {
		return nil, nil
	}
	if len([]rune(v)) > maxAPIKeyLabelRune {
		return nil, validationErrorf("name must be at most %d characters", maxAPIKeyLabelRune)
	}
	return &v, nil
}
