package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/paydash/backend/internal/audit"
	"github.com/paydash/backend/internal/models"
	"github.com/paydash/backend/internal/services"
)

type mockTokens struct{ mock.Mock }

func (m *mockTokens) ParseToken(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

type mockKeys struct{ mock.Mock }

func (m *mockKeys) Authenticate(ctx context.Context, plaintext string) (*models.APIKey, error) {
	args := m.Called(ctx, plaintext)
	if k := args.Get(0); k != nil {
		return k.(*models.APIKey), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAuthorizer struct{ mock.Mock }

func (m *mockAuthorizer) Authorize(ctx context.Context, userID, orgID string, needManage bool) (*models.Membership, error) {
	args := m.Called(ctx, userID, orgID, needManage)
	if mem := args.Get(0); mem != nil {
		return mem.(*models.Membership), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestAuthMiddleware(t *testing.T) {
	tokens := new(mockTokens)
	tokens.On("ParseToken", "good").Return("user-1", nil)
	tokens.On("ParseToken", "bad").Return("", services.ErrUnauthorized)

	var seenUser, seenActor string
	h := AuthMiddleware(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser, _ = UserIDFromContext(r.Context())
		seenActor = audit.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
	assert.Equal(t, "user-1", seenUser)
	assert.Equal(t, "user:user-1", seenActor)
}

func TestAPIKeyMiddleware(t *testing.T) {
	keys := new(mockKeys)
	keys.On("Authenticate", mock.Anything, "pk_live_good").
		Return(&models.APIKey{ID: "key-1", OrganizationID: "org-1"}, nil)
	keys.On("Authenticate", mock.Anything, "pk_live_bad").Return(nil, services.ErrUnauthorized)
	keys.On("Authenticate", mock.Anything, "pk_live_down").Return(nil, errors.New("db down"))

	var seenOrg string
	h := APIKeyMiddleware(keys)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenOrg, _ = OrganizationIDFromContext(r.Context())
		keyID, _ := APIKeyIDFromContext(r.Context())
		assert.Equal(t, "key-1", keyID)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		key  string
		want int
	}{
		{"", http.StatusUnauthorized},
		{"pk_live_bad", http.StatusUnauthorized},
		{"pk_live_down", http.StatusInternalServerError},
		{"pk_live_good", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.key != "" {
			req.Header.Set(APIKeyHeader, tt.key)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, tt.want, rr.Code, "key %q", tt.key)
	}
	assert.Equal(t, "org-1", seenOrg)
}

func TestRequireMembership(t *testing.T) {
	authz := new(mockAuthorizer)
	authz.On("Authorize", mock.Anything, "member", "org-1", true).Return(nil, services.ErrForbidden)
	authz.On("Authorize", mock.Anything, "owner", "org-1", true).
		Return(&models.Membership{OrganizationID: "org-1", UserID: "owner", Role: models.RoleOwner}, nil)
	authz.On("Authorize", mock.Anything, "broken", "org-1", true).Return(nil, errors.New("db down"))

	r := chi.NewRouter()
	r.With(RequireMembership(authz, true)).Get("/organizations/{orgId}/api-keys", func(w http.ResponseWriter, r *http.Request) {
		m, ok := MembershipFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, models.RoleOwner, m.Role)
		w.WriteHeader(http.StatusOK)
	})

	do := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/organizations/org-1/api-keys", nil)
		if userID != "" {
			req = req.WithContext(context.WithValue(req.Context(), ContextUserID, userID))
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusUnauthorized, do(""))
	assert.Equal(t, http.StatusForbidden, do("member"))
	assert.Equal(t, http.StatusInternalServerError, do("broken"))
	assert.Equal(t, http.StatusOK, do("owner"))
}

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/x", nil))

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "POST", ctx["method"])
	assert.Equal(t, "/api/v1/x", ctx["path"])
	assert.EqualValues(t, http.StatusTeapot, ctx["status"])
}

func TestWidgetAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.js"), []byte("window.paydash={};"), 0o644))
	h := WidgetAssets(dir)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/widget.js", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "window.paydash={};", rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/../../etc/passwd", nil))
	assert.Equal(t, placeholderWidget, rr.Body.String())
	assert.Equal(t, "application/javascript", rr.Header().Get("Content-Type"))
}
