package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/paydash/backend/internal/models"
	"github.com/paydash/backend/internal/store"
)

// MockStore implements every store interface the services depend on.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateAPIKey(ctx context.Context, k *models.APIKey) error {
	args := m.Called(ctx, k)
	return args.Error(0)
}

func (m *MockStore) ListAPIKeys(ctx context.Context, orgID string) ([]models.APIKey, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.APIKey), args.Error(1)
}

func (m *MockStore) RevokeAPIKey(ctx context.Context, orgID, keyID string) error {
	args := m.Called(ctx, orgID, keyID)
	return args.Error(0)
}

func (m *MockStore) ActiveAPIKeysByFragment(ctx context.Context, fragment string) ([]models.APIKey, error) {
	args := m.Called(ctx, fragment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.APIKey), args.Error(1)
}

func (m *MockStore) TouchAPIKey(ctx context.Context, keyID string, at time.Time) error {
	args := m.Called(ctx, keyID, at)
	return args.Error(0)
}

func (m *MockStore) ListLedger(ctx context.Context, orgID string) ([]models.Transaction, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockStore) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) CreateOrganization(ctx context.Context, org *models.Organization, wallet *models.PaymentModule) (*models.Organization, error) {
	args := m.Called(ctx, org, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockStore) GetOrganization(ctx context.Context, orgID string) (*models.Organization, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockStore) ListOrganizationsForUser(ctx context.Context, userID string) ([]models.OrganizationSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrganizationSummary), args.Error(1)
}

func (m *MockStore) GetMembership(ctx context.Context, orgID, userID string) (*models.Membership, error) {
	args := m.Called(ctx, orgID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

func (m *MockStore) AddMember(ctx context.Context, mem *models.Membership) (*models.Membership, error) {
	args := m.Called(ctx, mem)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

func (m *MockStore) ListMembers(ctx context.Context, orgID string) ([]models.Membership, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Membership), args.Error(1)
}

func (m *MockStore) RemoveMember(ctx context.Context, orgID, userID string) error {
	args := m.Called(ctx, orgID, userID)
	return args.Error(0)
}

func (m *MockStore) CreateModule(ctx context.Context, mod *models.PaymentModule) (*models.PaymentModule, error) {
	args := m.Called(ctx, mod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentModule), args.Error(1)
}

func (m *MockStore) ListModules(ctx context.Context, orgID string) ([]models.PaymentModule, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentModule), args.Error(1)
}

func (m *MockStore) GetModule(ctx context.Context, orgID, moduleID string) (*models.PaymentModule, error) {
	args := m.Called(ctx, orgID, moduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentModule), args.Error(1)
}

func (m *MockStore) EnsureWalletModule(ctx context.Context, wallet *models.PaymentModule) (*models.PaymentModule, error) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentModule), args.Error(1)
}

func (m *MockStore) UpdateModule(ctx context.Context, mod *models.PaymentModule) (*models.PaymentModule, error) {
	args := m.Called(ctx, mod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentModule), args.Error(1)
}

func (m *MockStore) DeleteModule(ctx context.Context, orgID, moduleID string) error {
	args := m.Called(ctx, orgID, moduleID)
	return args.Error(0)
}

func (m *MockStore) ListTransactions(ctx context.Context, orgID string, filter models.TransactionFilter, after *store.Cursor, limit int) ([]models.Transaction, error) {
	args := m.Called(ctx, orgID, filter, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockStore) GetTransaction(ctx context.Context, orgID, txID string) (*models.Transaction, error) {
	args := m.Called(ctx, orgID, txID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockStore) CreateTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockStore) UpdateTransactionStatus(ctx context.Context, orgID, txID string, status models.TransactionStatus) (*models.Transaction, error) {
	args := m.Called(ctx, orgID, txID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

type MockQuoteProvider struct {
	mock.Mock
}

func (m *MockQuoteProvider) CurrentQuote(ctx context.Context) (*models.PriceQuote, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.PriceQuote), args.Bool(1), args.Error(2)
}

var (
	_ APIKeyStore       = (*MockStore)(nil)
	_ LedgerReader      = (*MockStore)(nil)
	_ UserStore         = (*MockStore)(nil)
	_ OrganizationStore = (*MockStore)(nil)
	_ ModuleStore       = (*MockStore)(nil)
	_ TransactionStore  = (*MockStore)(nil)
	_ WalletStore       = (*MockStore)(nil)
	_ TransferStore     = (*MockStore)(nil)
	_ QuoteProvider     = (*MockQuoteProvider)(nil)
)
