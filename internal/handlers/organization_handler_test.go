package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/paydash/backend/internal/models"
	"github.com/paydash/backend/internal/services"
)

func TestOrganizationHandler_CreateAndList(t *testing.T) {
	ts := newTestServer(t)
	org := &models.Organization{ID: testOrgID, Name: "Acme", Slug: "acme-6f1d3c2a", CreatedBy: "owner"}
	ts.orgs.On("Create", mock.Anything, "owner", "Acme").Return(org, nil).Once()
	ts.orgs.On("ListForUser", mock.Anything, "owner").
		Return([]models.OrganizationSummary{{Organization: *org, Role: models.RoleOwner}}, nil).Once()
	ts.orgs.On("ListForUser", mock.Anything, "outsider").Return(nil, nil).Once()

	rr := ts.do(http.MethodPost, "/api/v1/organizations", ownerToken, `{"name":"Acme"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"slug":"acme-6f1d3c2a"`)

	rr = ts.do(http.MethodPost, "/api/v1/organizations", ownerToken, `{"name":"A"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(http.MethodGet, "/api/v1/organizations", ownerToken, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list ListResponse[models.OrganizationSummary]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, models.RoleOwner, list.Items[0].Role)

	rr = ts.do(http.MethodGet, "/api/v1/organizations", outsiderToken, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"items":[]}`, rr.Body.String())

	ts.orgs.AssertExpectations(t)
}

func TestOrganizationHandler_Get(t *testing.T) {
	ts := newTestServer(t)
	ts.orgs.On("Get", mock.Anything, testOrgID).Return(&models.Organization{ID: testOrgID, Name: "Acme"}, nil)

	rr := ts.do(http.MethodGet, orgPath(""), memberToken, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var summary models.OrganizationSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, "Acme", summary.Name)
	assert.Equal(t, models.RoleMember, summary.Role)

	rr = ts.do(http.MethodGet, orgPath(""), outsiderToken, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestOrganizationHandler_Members(t *testing.T) {
	ts := newTestServer(t)
	added := &models.Membership{OrganizationID: testOrgID, UserID: "user-2", Email: "bob@example.com", Role: models.RoleAdmin}
	ts.orgs.On("AddMember", mock.Anything, testOrgID, "bob@example.com", models.RoleAdmin).Return(added, nil).Once()
	ts.orgs.On("AddMember", mock.Anything, testOrgID, "ghost@example.com", models.RoleMember).
		Return(nil, fmt.Errorf("user %q: %w", "ghost@example.com", services.ErrNotFound)).Once()
	ts.orgs.On("ListMembers", mock.Anything, testOrgID).Return([]models.Membership{*added}, nil).Once()
	ts.orgs.On("RemoveMember", mock.Anything, testOrgID, "owner").
		Return(fmt.Errorf("the owner cannot be removed: %w", services.ErrForbidden)).Once()
	ts.orgs.On("RemoveMember", mock.Anything, testOrgID, "user-2").Return(nil).Once()

	rr := ts.do(http.MethodPost, orgPath("/members"), ownerToken, `{"email":"bob@example.com","role":"admin"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.do(http.MethodPost, orgPath("/members"), ownerToken, `{"email":"ghost@example.com","role":"member"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(http.MethodPost, orgPath("/members"), ownerToken, `{"email":"eve@example.com","role":"owner"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeError(t, rr).Details, "role")

	rr = ts.do(http.MethodPost, orgPath("/members"), memberToken, `{"email":"eve@example.com","role":"member"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.do(http.MethodGet, orgPath("/members"), memberToken, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email":"bob@example.com"`)

	rr = ts.do(http.MethodDelete, orgPath("/members/owner"), ownerToken, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.do(http.MethodDelete, orgPath("/members/user-2"), ownerToken, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	ts.orgs.AssertExpectations(t)
}
