package handlers

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/paydash/backend/internal/models"
	"github.com/paydash/backend/internal/services"
)

type MockTokens struct{ mock.Mock }

func (m *MockTokens) ParseToken(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

type MockKeys struct{ mock.Mock }

func (m *MockKeys) Authenticate(ctx context.Context, plaintext string) (*models.APIKey, error) {
	args := m.Called(ctx, plaintext)
	if k := args.Get(0); k != nil {
		return k.(*models.APIKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockKeys) CreateKey(ctx context.Context, orgID string, label *string) (*services.CreatedAPIKey, error) {
	args := m.Called(ctx, orgID, label)
	if k := args.Get(0); k != nil {
		return k.(*services.CreatedAPIKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockKeys) ListKeys(ctx context.Context, orgID string) ([]models.APIKey, error) {
	args := m.Called(ctx, orgID)
	if k := args.Get(0); k != nil {
		return k.([]models.APIKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockKeys) RevokeKey(ctx context.Context, orgID, keyID string) error {
	return m.Called(ctx, orgID, keyID).Error(0)
}

type MockOrganizations struct{ mock.Mock }

func (m *MockOrganizations) Authorize(ctx context.Context, userID, orgID string, needManage bool) (*models.Membership, error) {
	args := m.Called(ctx, userID, orgID, needManage)
	if v := args.Get(0); v != nil {
		return v.(*models.Membership), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrganizations) Create(ctx context.Context, userID, name string) (*models.Organization, error) {
	args := m.Called(ctx, userID, name)
	if v := args.Get(0); v != nil {
		return v.(*models.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrganizations) ListForUser(ctx context.Context, userID string) ([]models.OrganizationSummary, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]models.OrganizationSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrganizations) Get(ctx context.Context, orgID string) (*models.Organization, error) {
	args := m.Called(ctx, orgID)
	if v := args.Get(0); v != nil {
		return v.(*models.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrganizations) AddMember(ctx context.Context, orgID, email string, role models.Role) (*models.Membership, error) {
	args := m.Called(ctx, orgID, email, role)
	if v := args.Get(0); v != nil {
		return v.(*models.Membership), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrganizations) ListMembers(ctx context.Context, orgID string) ([]models.Membership, error) {
	args := m.Called(ctx, orgID)
	if v := args.Get(0); v != nil {
		return v.([]models.Membership), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrganizations) RemoveMember(ctx context.Context, orgID, userID string) error {
	return m.Called(ctx, orgID, userID).Error(0)
}

type MockAuth struct{ mock.Mock }

func (m *MockAuth) Register(ctx context.Context, email, password, fullName string) (*models.User, string, error) {
	args := m.Called(ctx, email, password, fullName)
	if v := args.Get(0); v != nil {
		return v.(*models.User), args.String(1), args.Error(2)
	}
	return nil, "", args.Error(2)
}

func (m *MockAuth) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, email, password)
	if v := args.Get(0); v != nil {
		return v.(*models.User), args.String(1), args.Error(2)
	}
	return nil, "", args.Error(2)
}

func (m *MockAuth) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockBalances struct{ mock.Mock }

func (m *MockBalances) ComputeBalance(ctx context.Context, orgID string) (*services.Balance, error) {
	args := m.Called(ctx, orgID)
	if v := args.Get(0); v != nil {
		return v.(*services.Balance), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockModules struct{ mock.Mock }

func (m *MockModules) Create(ctx context.Context, orgID string, in services.ModuleInput) (*models.PaymentModule, error) {
	args := m.Called(ctx, orgID, in)
	if v := args.Get(0); v != nil {
		return v.(*models.PaymentModule), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockModules) List(ctx context.Context, orgID string) ([]models.PaymentModule, error) {
	args := m.Called(ctx, orgID)
	if v := args.Get(0); v != nil {
		return v.([]models.PaymentModule), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockModules) Get(ctx context.Context, orgID, moduleID string) (*models.PaymentModule, error) {
	args := m.Called(ctx, orgID, moduleID)
	if v := args.Get(0); v != nil {
		return v.(*models.PaymentModule), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockModules) Update(ctx context.Context, orgID, moduleID string, in services.ModuleInput) (*models.PaymentModule, error) {
	args := m.Called(ctx, orgID, moduleID, in)
	if v := args.Get(0); v != nil {
		return v.(*models.PaymentModule), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockModules) Delete(ctx context.Context, orgID, moduleID string) error {
	return m.Called(ctx, orgID, moduleID).Error(0)
}

type MockTransactions struct{ mock.Mock }

func (m *MockTransactions) List(ctx context.Context, orgID string, filter models.TransactionFilter, cursor string, limit int) (*services.TransactionPage, error) {
	args := m.Called(ctx, orgID, filter, cursor, limit)
	if v := args.Get(0); v != nil {
		return v.(*services.TransactionPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactions) Get(ctx context.Context, orgID, txID string) (*models.Transaction, error) {
	args := m.Called(ctx, orgID, txID)
	if v := args.Get(0); v != nil {
		return v.(*models.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactions) UpdateStatus(ctx context.Context, orgID, txID string, status models.TransactionStatus) (*models.Transaction, error) {
	args := m.Called(ctx, orgID, txID, status)
	if v := args.Get(0); v != nil {
		return v.(*models.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactions) ExportTransfer(ctx context.Context, orgID, txID string) (*services.TransferExport, error) {
	args := m.Called(ctx, orgID, txID)
	if v := args.Get(0); v != nil {
		return v.(*services.TransferExport), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockWallet struct{ mock.Mock }

func (m *MockWallet) Buy(ctx context.Context, orgID string, amount decimal.Decimal) (*models.Transaction, error) {
	args := m.Called(ctx, orgID, amount.String())
	if v := args.Get(0); v != nil {
		return v.(*models.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWallet) Send(ctx context.Context, orgID string, amount decimal.Decimal, recipient, memo string) (*models.Transaction, error) {
	args := m.Called(ctx, orgID, amount.String(), recipient, memo)
	if v := args.Get(0); v != nil {
		return v.(*models.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWallet) CreateReceiveRequest(ctx context.Context, orgID string, amount *decimal.Decimal, memo string) (*services.ReceiveRequest, error) {
	args := m.Called(ctx, orgID, amount, memo)
	if v := args.Get(0); v != nil {
		return v.(*services.ReceiveRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWallet) GetReceiveRequest(ctx context.Context, orgID, requestID string) (*services.ReceiveRequest, error) {
	args := m.Called(ctx, orgID, requestID)
	if v := args.Get(0); v != nil {
		return v.(*services.ReceiveRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPinger struct{ mock.Mock }

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var (
	_ APIKeyManager       = (*MockKeys)(nil)
	_ OrganizationManager = (*MockOrganizations)(nil)
	_ Authenticator       = (*MockAuth)(nil)
	_ BalanceCalculator   = (*MockBalances)(nil)
	_ ModuleManager       = (*MockModules)(nil)
	_ TransactionManager  = (*MockTransactions)(nil)
	_ TransferExporter    = (*MockTransactions)(nil)
	_ WalletOperator      = (*MockWallet)(nil)
	_ Pinger              = (*MockPinger)(nil)
)
