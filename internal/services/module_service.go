package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paydash/backend/internal/audit"
	"github.com/paydash/backend/internal/models"
)

type ModuleStore interface {
	CreateModule(ctx context.Context, m *models.PaymentModule) (*models.PaymentModule, error)
	ListModules(ctx context.Context, orgID string) ([]models.PaymentModule, error)
	GetModule(ctx context.Context, orgID, moduleID string) (*models.PaymentModule, error)
	UpdateModule(ctx context.Context, m *models.PaymentModule) (*models.PaymentModule, error)
	DeleteModule(ctx context.Context, orgID, moduleID string) error
}

// ModuleInput is the client-supplied part of a payment module.
type ModuleInput struct {
	Name    string
	Kind    models.ModuleKind
	Config  json.RawMessage
	Enabled *bool
}

type ModuleService struct {
	modules ModuleStore
	audit   *audit.Logger
	logger  *zap.Logger
}

func NewModuleService(modules ModuleStore, auditLog *audit.Logger, logger *zap.Logger) *ModuleService {
	return &ModuleService{modules: modules, audit: auditLog, logger: logger}
}

func (s *ModuleService) Create(ctx context.Context, orgID string, in ModuleInput) (*models.PaymentModule, error) {
	name, err := moduleName(in.Name)
	if err != nil {
		return nil, err
	}
	if !in.Kind.Valid() {
		return nil, validationErrorf("unknown module kind %q", in.Kind)
	}
	if in.Kind.Reserved() {
		return nil, validationErrorf("module kind %q is managed by the system", in.Kind)
	}
	cfg, err := decodeConfig(in.Kind, in.Config)
	if err != nil {
		return nil, err
	}

	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}
	m, err := s.modules.CreateModule(ctx, &models.PaymentModule{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Name:           name,
		Kind:           in.Kind,
		Config:         cfg,
		Enabled:        enabled,
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		Type:           audit.EventModuleCreated,
		OrganizationID: orgID,
		ResourceID:     m.ID,
		Details:        map[string]string{"kind": string(m.Kind)},
	})
	return m, nil
}

func (s *ModuleService) List(ctx context.Context, orgID string) ([]models.PaymentModule, error) {
	return s.modules.ListModules(ctx, orgID)
}

func (s *ModuleService) Get(ctx context.Context, orgID, moduleID string) (*models.PaymentModule, error) {
	if _, err := uuid.Parse(moduleID); err != nil {
		return nil, fmt.Errorf("module %q: %w", moduleID, ErrNotFound)
	}
	return s.modules.GetModule(ctx, orgID, moduleID)
}

// Update replaces name, config and enabled. The kind of a module never changes.
func (s *ModuleService) Update(ctx context.Context, orgID, moduleID string, in ModuleInput) (*models.PaymentModule, error) {
	existing, err := s.Get(ctx, orgID, moduleID)
	if err != nil {
		return nil, err
	}
	if existing.Kind.Reserved() {
		return nil, fmt.Errorf("the %s module cannot be modified: %w", existing.Kind, ErrForbidden)
	}
	if in.Kind != "" && in.Kind != existing.Kind {
		return nil, validationErrorf("module kind cannot change from %q", existing.Kind)
	}

	name, err := moduleName(in.Name)
	if err != nil {
		return nil, err
	}
	cfg, err := decodeConfig(existing.Kind, in.Config)
	if err != nil {
		return nil, err
	}

	existing.Name = name
	existing.Config = cfg
	if in.Enabled != nil {
		existing.Enabled = *in.Enabled
	}
	updated, err := s.modules.UpdateModule(ctx, existing)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{Type: audit.EventModuleUpdated, OrganizationID: orgID, ResourceID: moduleID})
	return updated, nil
}

func (s *ModuleService) Delete(ctx context.Context, orgID, moduleID string) error {
	existing, err := s.Get(ctx, orgID, moduleID)
	if err != nil {
		return err
	}
	if existing.Kind.Reserved() {
		return fmt.Errorf("the %s module cannot be deleted: %w", existing.Kind, ErrForbidden)
	}
	if err := s.modules.DeleteModule(ctx, orgID, moduleID); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Event{Type: audit.EventModuleDeleted, OrganizationID: orgID, ResourceID: moduleID})
	return nil
}

func moduleName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || len([]rune(name)) > 100 {
		return "", validationErrorf("name must be between 1 and 100 characters")
	}
	return name, nil
}

func decodeConfig(kind models.ModuleKind, raw json.RawMessage) (models.ModuleConfig, error) {
	cfg, err := models.DecodeModuleConfig(kind, raw)
	if err != nil {
		return nil, validationErrorf("%v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, validationErrorf("%v", err)
	}
	return cfg, nil
}
