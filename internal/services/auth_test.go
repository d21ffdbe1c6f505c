package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/paydash/backend/internal/config"
	"github.com/paydash/backend/internal/models"
)

func newAuthService(st UserStore) *AuthService {
	return NewAuthService(st,
		config.JWTConfig{SecretKey: "test-secret", ExpiryHours: 24},
		config.Argon2Config{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLength: 32, SaltLength: 16},
		zap.NewNop())
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("successful registration", func(t *testing.T) {
		st := new(MockStore)
		created := &models.User{}
		st.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).
			Run(func(args mock.Arguments) { *created = *args.Get(1).(*models.User) }).
			Return(created, nil)

		svc := newAuthService(st)
		user, token, err := svc.Register(ctx, " Test@Example.com ", "password123", "Jane Doe")
		require.NoError(t, err)
		assert.Equal(t, "test@example.com", user.Email)
		assert.NotEqual(t, "password123", user.PasswordHash)
		assert.True(t, svc.verifyPassword("password123", user.PasswordHash))

		userID, err := svc.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, userID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		st := new(MockStore)
		st.On("CreateUser", ctx, mock.Anything).Return(nil, ErrConflict)

		_, _, err := newAuthService(st).Register(ctx, "a@b.co", "password123", "A")
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(nil)
	hash, err := svc.hashPassword("password123")
	require.NoError(t, err)
	user := &models.User{ID: "user-1", Email: "test@example.com", PasswordHash: hash}

	t.Run("successful login", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetUserByEmail", ctx, "test@example.com").Return(user, nil)

		got, token, err := newAuthService(st).Login(ctx, "TEST@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, "user-1", got.ID)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetUserByEmail", ctx, "test@example.com").Return(user, nil)

		_, _, err := newAuthService(st).Login(ctx, "test@example.com", "password124")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetUserByEmail", ctx, "nobody@example.com").Return(nil, ErrNotFound)

		_, _, err := newAuthService(st).Login(ctx, "nobody@example.com", "password123")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestPasswordHashing(t *testing.T) {
	svc := newAuthService(nil)

	hash, err := svc.hashPassword("testpassword")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.Contains(t, hash, "$")

	assert.True(t, svc.verifyPassword("testpassword", hash))
	assert.False(t, svc.verifyPassword("wrongpassword", hash))
	assert.False(t, svc.verifyPassword("testpassword", "invalid-format"))

	other, err := svc.hashPassword("testpassword")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestParseToken(t *testing.T) {
	svc := newAuthService(nil)

	t.Run("round trip", func(t *testing.T) {
		token, err := svc.IssueToken("user-1")
		require.NoError(t, err)
		userID, err := svc.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := svc.IssueToken("user-1")
		require.NoError(t, err)

		later := newAuthService(nil)
		later.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
		_, err = later.ParseToken(token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthService(nil, config.JWTConfig{SecretKey: "other", ExpiryHours: 1}, config.Argon2Config{}, zap.NewNop())
		token, err := other.IssueToken("user-1")
		require.NoError(t, err)

		_, err = svc.ParseToken(token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unsigned token", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "user-1"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ParseToken(token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}
