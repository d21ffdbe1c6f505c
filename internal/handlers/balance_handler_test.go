package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/paydash/backend/internal/services"
)

func TestBalanceHandler_OrganizationBalance(t *testing.T) {
	asOf := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("renders exact amounts", func(t *testing.T) {
		ts := newTestServer(t)
		ts.balances.On("ComputeBalance", mock.Anything, testOrgID).Return(balanceFixture(asOf, nil), nil).Once()

		rr := ts.do(http.MethodGet, orgPath("/balance"), memberToken, "")
		require.Equal(t, http.StatusOK, rr.Code)

		body := rr.Body.String()
		assert.Contains(t, body, `"available":120`)
		assert.Contains(t, body, `"pending":20`)
		assert.Contains(t, body, `"priceUsd":2`)
		assert.Contains(t, body, `"totalUsd":280`)
		assert.Contains(t, body, `"currency":"SOL"`)
		assert.Contains(t, body, `"priceChangePercentage24h":null`)
		assert.Contains(t, body, `"updatedAt":"2026-03-01T12:00:00Z"`)
	})

	t.Run("includes 24h change", func(t *testing.T) {
		ts := newTestServer(t)
		change := -3.25
		ts.balances.On("ComputeBalance", mock.Anything, testOrgID).Return(balanceFixture(asOf, &change), nil).Once()

		rr := ts.do(http.MethodGet, orgPath("/balance"), ownerToken, "")
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Change *float64 `json:"priceChangePercentage24h"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.NotNil(t, resp.Change)
		assert.Equal(t, -3.25, *resp.Change)
	})

	t.Run("ledger failure is a server error", func(t *testing.T) {
		ts := newTestServer(t)
		ts.balances.On("ComputeBalance", mock.Anything, testOrgID).Return(nil, errors.New("connection reset")).Once()

		rr := ts.do(http.MethodGet, orgPath("/balance"), memberToken, "")
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "connection reset")
	})

	t.Run("outsider is forbidden", func(t *testing.T) {
		ts := newTestServer(t)

		rr := ts.do(http.MethodGet, orgPath("/balance"), outsiderToken, "")
		assert.Equal(t, http.StatusForbidden, rr.Code)
		ts.balances.AssertNotCalled(t, "ComputeBalance", mock.Anything, mock.Anything)
	})
}

func TestBalanceHandler_MerchantBalance(t *testing.T) {
	ts := newTestServer(t)
	ts.balances.On("ComputeBalance", mock.Anything, testOrgID).
		Return(balanceFixture(time.Now().UTC(), nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/merchant/balance", nil)
	req.Header.Set("X-API-Key", validAPIKey)
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"totalUsd":280`)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/merchant/balance", nil)
	req.Header.Set("X-API-Key", "pk_live_revoked")
	rr = httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	ts.balances.AssertNumberOfCalls(t, "ComputeBalance", 1)
}

func balanceFixture(asOf time.Time, change *float64) *services.Balance {
	return &services.Balance{
		Available:        decimal.NewFromInt(120),
		Pending:          decimal.NewFromInt(20),
		Currency:         "SOL",
		PriceUSD:         decimal.NewFromInt(2),
		TotalUSD:         decimal.NewFromInt(280),
		ChangePercent24h: change,
		AsOf:             asOf,
	}
}
