package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paydash/backend/internal/audit"
	"github.com/paydash/backend/internal/models"
)

type OrganizationStore interface {
	CreateOrganization(ctx context.Context, org *models.Organization, wallet *models.PaymentModule) (*models.Organization, error)
	GetOrganization(ctx context.Context, orgID string) (*models.Organization, error)
	ListOrganizationsForUser(ctx context.Context, userID string) ([]models.OrganizationSummary, error)
	GetMembership(ctx context.Context, orgID, userID string) (*models.Membership, error)
	AddMember(ctx context.Context, m *models.Membership) (*models.Membership, error)
	ListMembers(ctx context.Context, orgID string) ([]models.Membership, error)
	RemoveMember(ctx context.Context, orgID, userID string) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

type OrganizationService struct {
	store  OrganizationStore
	asset  string
	audit  *audit.Logger
	logger *zap.Logger
}

func NewOrganizationService(store OrganizationStore, asset string, auditLog *audit.Logger, logger *zap.Logger) *OrganizationService {
	return &OrganizationService{
		store:  store,
		asset:  asset,
		audit:  auditLog,
		logger: logger,
	}
}

// Create makes userID the owner of a new organization and provisions its wallet module.
func (s *OrganizationService) Create(ctx context.Context, userID, name string) (*models.Organization, error) {
	name = strings.TrimSpace(name)
	if l := len([]rune(name)); l < 2 || l > 100 {
		return nil, validationErrorf("name must be between 2 and 100 characters")
	}

	id := uuid.New()
	org := &models.Organization{
		ID:        id.String(),
		Name:      name,
		Slug:      slugify(name) + "-" + strings.ReplaceAll(id.String(), "-", "")[:8],
		CreatedBy: userID,
	}
	wallet := &models.PaymentModule{
		ID:             uuid.NewString(),
		OrganizationID: org.ID,
		Name:           "Wallet",
		Kind:           models.ModuleKindWallet,
		Config:         models.WalletConfig{Asset: s.asset},
		Enabled:        true,
	}

	created, err := s.store.CreateOrganization(ctx, org, wallet)
	if err != nil {
		return nil, err
	}

	s.logger.Info("organization created", zap.String("org_id", created.ID), zap.String("user_id", userID))
	s.audit.Record(ctx, audit.Event{Type: audit.EventOrgCreated, OrganizationID: created.ID, ResourceID: created.ID})
	return created, nil
}

func (s *OrganizationService) ListForUser(ctx context.Context, userID string) ([]models.OrganizationSummary, error) {
	return s.store.ListOrganizationsForUser(ctx, userID)
}

func (s *OrganizationService) Get(ctx context.Context, orgID string) (*models.Organization, error) {
	return s.store.GetOrganization(ctx, orgID)
}

// Authorize returns the caller's membership. Non-members, and members without a managing
// role when needManage is set, get ErrForbidden.
func (s *OrganizationService) Authorize(ctx context.Context, userID, orgID string, needManage bool) (*models.Membership, error) {
	if _, err := uuid.Parse(orgID); err != nil {
		return nil, ErrForbidden
	}
	m, err := s.store.GetMembership(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if needManage && !m.Role.CanManage() {
		return nil, ErrForbidden
	}
	return m, nil
}

// AddMember adds an existing user by email as admin or member.
func (s *OrganizationService) AddMember(ctx context.Context, orgID, email string, role models.Role) (*models.Membership, error) {
	if !role.Valid() || role == models.RoleOwner {
		return nil, validationErrorf("role must be admin or member")
	}

	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("user %q: %w", email, ErrNotFound)
		}
		return nil, err
	}

	m, err := s.store.AddMember(ctx, &models.Membership{
		OrganizationID: orgID,
		UserID:         user.ID,
		Email:          user.Email,
		Role:           role,
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("user is already a member: %w", ErrConflict)
		}
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		Type:           audit.EventMemberAdded,
		OrganizationID: orgID,
		ResourceID:     user.ID,
		Details:        map[string]string{"role": string(role)},
	})
	return m, nil
}

func (s *OrganizationService) ListMembers(ctx context.Context, orgID string) ([]models.Membership, error) {
	return s.store.ListMembers(ctx, orgID)
}

// RemoveMember removes a non-owner member. Owners cannot be removed.
func (s *OrganizationService) RemoveMember(ctx context.Context, orgID, userID string) error {
	m, err := s.store.GetMembership(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if m.Role == models.RoleOwner {
		return fmt.Errorf("the owner cannot be removed: %w", ErrForbidden)
	}
	if err := s.store.RemoveMember(ctx, orgID, userID); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Event{Type: audit.EventMemberRemoved, OrganizationID: orgID, ResourceID: userID})
	return nil
}

func slugify(name string) string {
	slug := strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		return "org"
	}
	if len(slug) > 48 {
		slug = strings.TrimRight(slug[:48], "-")
	}
	return slug
}
