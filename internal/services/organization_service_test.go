package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/paydash/backend/internal/models"
)

const testOrgID = "0f6c2f4e-8d0b-4b3f-9a6e-2a7b1c9d0e11"

func newOrganizationService(st OrganizationStore) *OrganizationService {
	return NewOrganizationService(st, "solana", nil, zap.NewNop())
}

func TestOrganizationService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creator owns a new organization with a wallet", func(t *testing.T) {
		st := new(MockStore)
		st.On("CreateOrganization", ctx, mock.Anything, mock.Anything).
			Return(&models.Organization{ID: testOrgID, Name: "Acme Coffee"}, nil)

		_, err := newOrganizationService(st).Create(ctx, "user-1", "  Acme Coffee ")
		require.NoError(t, err)

		call := st.Calls[0]
		org := call.Arguments.Get(1).(*models.Organization)
		wallet := call.Arguments.Get(2).(*models.PaymentModule)
		assert.Equal(t, "Acme Coffee", org.Name)
		assert.Equal(t, "user-1", org.CreatedBy)
		assert.Regexp(t, `^acme-coffee-[0-9a-f]{8}$`, org.Slug)
		assert.Equal(t, models.ModuleKindWallet, wallet.Kind)
		assert.Equal(t, org.ID, wallet.OrganizationID)
		assert.Equal(t, models.WalletConfig{Asset: "solana"}, wallet.Config)
	})

	t.Run("name too short", func(t *testing.T) {
		_, err := newOrganizationService(new(MockStore)).Create(ctx, "user-1", "A")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestOrganizationService_Authorize(t *testing.T) {
	ctx := context.Background()

	t.Run("member may read", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetMembership", ctx, testOrgID, "user-1").
			Return(&models.Membership{OrganizationID: testOrgID, UserID: "user-1", Role: models.RoleMember}, nil)

		m, err := newOrganizationService(st).Authorize(ctx, "user-1", testOrgID, false)
		require.NoError(t, err)
		assert.Equal(t, models.RoleMember, m.Role)
	})

	t.Run("member may not manage", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetMembership", ctx, testOrgID, "user-1").
			Return(&models.Membership{Role: models.RoleMember}, nil)

		_, err := newOrganizationService(st).Authorize(ctx, "user-1", testOrgID, true)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin may manage", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetMembership", ctx, testOrgID, "user-1").
			Return(&models.Membership{Role: models.RoleAdmin}, nil)

		_, err := newOrganizationService(st).Authorize(ctx, "user-1", testOrgID, true)
		assert.NoError(t, err)
	})

	t.Run("non-member is forbidden", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetMembership", ctx, testOrgID, "user-2").Return(nil, ErrNotFound)

		_, err := newOrganizationService(st).Authorize(ctx, "user-2", testOrgID, false)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("malformed organization id is forbidden", func(t *testing.T) {
		st := new(MockStore)
		_, err := newOrganizationService(st).Authorize(ctx, "user-1", "acme", false)
		assert.ErrorIs(t, err, ErrForbidden)
		st.AssertNotCalled(t, "GetMembership", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure is not hidden", func(t *testing.T) {
		st := new(MockStore)
		dbErr := errors.New("timeout")
		st.On("GetMembership", ctx, testOrgID, "user-1").Return(nil, dbErr)

		_, err := newOrganizationService(st).Authorize(ctx, "user-1", testOrgID, false)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestOrganizationService_Members(t *testing.T) {
	ctx := context.Background()

	t.Run("add by email", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetUserByEmail", ctx, "bob@example.com").Return(&models.User{ID: "user-2", Email: "bob@example.com"}, nil)
		st.On("AddMember", ctx, mock.MatchedBy(func(m *models.Membership) bool {
			return m.UserID == "user-2" && m.Role == models.RoleAdmin && m.OrganizationID == testOrgID
		})).Return(&models.Membership{OrganizationID: testOrgID, UserID: "user-2", Email: "bob@example.com", Role: models.RoleAdmin}, nil)

		m, err := newOrganizationService(st).AddMember(ctx, testOrgID, "Bob@example.com", models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, "user-2", m.UserID)
		st.AssertExpectations(t)
	})

	t.Run("owner role cannot be granted", func(t *testing.T) {
		_, err := newOrganizationService(new(MockStore)).AddMember(ctx, testOrgID, "bob@example.com", models.RoleOwner)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown user", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetUserByEmail", ctx, "ghost@example.com").Return(nil, ErrNotFound)

		_, err := newOrganizationService(st).AddMember(ctx, testOrgID, "ghost@example.com", models.RoleMember)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("owner cannot be removed", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetMembership", ctx, testOrgID, "user-1").Return(&models.Membership{Role: models.RoleOwner}, nil)

		err := newOrganizationService(st).RemoveMember(ctx, testOrgID, "user-1")
		assert.ErrorIs(t, err, ErrForbidden)
		st.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("remove member", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetMembership", ctx, testOrgID, "user-2").Return(&models.Membership{Role: models.RoleMember}, nil)
		st.On("RemoveMember", ctx, testOrgID, "user-2").Return(nil)

		assert.NoError(t, newOrganizationService(st).RemoveMember(ctx, testOrgID, "user-2"))
		st.AssertExpectations(t)
	})
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "acme-coffee", slugify("Acme   Coffee!"))
	assert.Equal(t, "org", slugify("!!!"))
	assert.Len(t, slugify("a very long organization name that keeps going and going"), 48)
}
