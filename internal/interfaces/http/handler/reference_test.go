package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	referenceapp "github.com/mdm/backend/internal/application/reference"
	"github.com/mdm/backend/internal/domain/constraint"
	"github.com/mdm/backend/internal/domain/reference"
	"github.com/mdm/backend/internal/interfaces/http/dto"
	"github.com/mdm/backend/internal/interfaces/http/middleware"
)

func newReferenceRouter(t *testing.T) (*gin.Engine, uuid.UUID) {
	t.Helper()

	tenantID := uuid.New()
	items := []reference.Item{
		{Category: reference.CategoryGenders, Code: "FEMALE", Locale: "en-US",
			Scope: reference.GlobalScope(), Name: "Female"},
		{Category: reference.CategoryGenders, Code: "MALE", Locale: "en-US",
			Scope: reference.GlobalScope(), Name: "Male"},
		{Category: reference.CategoryGenders, Code: "FEMALE", Locale: "en-US",
			Scope: reference.TenantScope(tenantID), Name: "Female (tenant wording)"},
		{Category: reference.CategoryRoleTypes, Code: "account_holder", Locale: "en-US",
			Scope: reference.GlobalScope(), Name: "Account holder",
			PartyTypes: []string{"person"}},
	}
	roleConstraints := []reference.RoleConstraint{
		{RoleType: "account_holder", Target: reference.TargetAttribute,
			TargetType: "birth_date", Kind: reference.ConstraintRequired},
	}
	propertyConstraints := []reference.PropertyConstraint{
		{Owner: reference.OwnerMandate, OwnerType: "payment", PropertyType: "iban",
			Kind: reference.ConstraintRequired},
	}

	table, err := reference.NewTable(items, roleConstraints, propertyConstraints)
	require.NoError(t, err)

	store := reference.NewStaticStore(table)
	resolver, err := reference.NewResolver(store)
	require.NoError(t, err)
	svc := referenceapp.NewService(store, resolver, constraint.NewEngine(store, resolver))

	h := NewReferenceHandler(svc)
	router := gin.New()
	router.Use(middleware.TenantContext())
	router.GET("/reference/:category", h.Resolve)
	router.GET("/reference/:category/valid", h.CheckValidity)
	router.GET("/reference/:category/:code", h.Lookup)
	router.GET("/constraints/roles", h.ListRoleConstraints)
	router.GET("/constraints/roles/:roleType", h.GetRoleConstraints)
	router.GET("/constraints/mandates/:type", h.GetMandateConstraints)
	router.POST("/reference/reload", h.Reload)

	return router, tenantID
}

func doReferenceRequest(router *gin.Engine, method, path string, tenantID uuid.UUID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestReferenceHandler_Resolve(t *testing.T) {
	router, tenantID := newReferenceRouter(t)

	w := doReferenceRequest(router, http.MethodGet, "/reference/genders", tenantID)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                        `json:"success"`
		Data    []referenceapp.ItemResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	// The tenant row layers on top of the global set, it does not replace
	// the global FEMALE row
	require.Len(t, resp.Data, 3)
	globalByName := make(map[string]bool)
	for _, item := range resp.Data {
		globalByName[item.Name] = item.Global
	}
	assert.Contains(t, globalByName, "Female")
	assert.Contains(t, globalByName, "Female (tenant wording)")
	assert.True(t, globalByName["Female"])
	assert.False(t, globalByName["Female (tenant wording)"])
	assert.True(t, globalByName["Male"])
}

func TestReferenceHandler_Resolve_LocaleSelection(t *testing.T) {
	router, tenantID := newReferenceRouter(t)

	t.Run("missing X-Locale resolves against the default locale", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reference/genders", nil)
		req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"FEMALE"`)
	})

	t.Run("explicit supported locale without rows resolves empty", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reference/genders", nil)
		req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
		req.Header.Set(middleware.LocaleHeaderKey, "nl-NL")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), `"code":"FEMALE"`)
	})

	t.Run("unsupported locale is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reference/genders", nil)
		req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
		req.Header.Set(middleware.LocaleHeaderKey, "tlh")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeInvalidInput)
	})
}

func TestReferenceHandler_Resolve_OtherTenantSeesGlobalOnly(t *testing.T) {
	router, _ := newReferenceRouter(t)

	w := doReferenceRequest(router, http.MethodGet, "/reference/genders", uuid.New())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Female"`)
	assert.NotContains(t, w.Body.String(), "tenant wording")
}

func TestReferenceHandler_Lookup(t *testing.T) {
	router, tenantID := newReferenceRouter(t)

	t.Run("found", func(t *testing.T) {
		w := doReferenceRequest(router, http.MethodGet, "/reference/genders/MALE", tenantID)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"MALE"`)
	})

	t.Run("unknown code", func(t *testing.T) {
		w := doReferenceRequest(router, http.MethodGet, "/reference/genders/NONBINARY", tenantID)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeNotFound)
	})
}

func TestReferenceHandler_CheckValidity(t *testing.T) {
	router, tenantID := newReferenceRouter(t)

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"valid code", "/reference/genders/valid?code=FEMALE", `"valid":true`},
		{"unknown code", "/reference/genders/valid?code=UNDECLARED", `"valid":false`},
		{"role restricted to persons", "/reference/role_types/valid?code=account_holder&party_type=person", `"valid":true`},
		{"role not applicable to organizations", "/reference/role_types/valid?code=account_holder&party_type=organization", `"valid":false`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doReferenceRequest(router, http.MethodGet, tt.path, tenantID)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.expected)
		})
	}

	t.Run("missing code parameter", func(t *testing.T) {
		w := doReferenceRequest(router, http.MethodGet, "/reference/genders/valid", tenantID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReferenceHandler_Constraints(t *testing.T) {
	router, tenantID := newReferenceRouter(t)

	t.Run("all role constraints", func(t *testing.T) {
		w := doReferenceRequest(router, http.MethodGet, "/constraints/roles", tenantID)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "account_holder")
	})

	t.Run("single role", func(t *testing.T) {
		w := doReferenceRequest(router, http.MethodGet, "/constraints/roles/account_holder", tenantID)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"kind":"REQUIRED"`)
		assert.Contains(t, w.Body.String(), "birth_date")
	})

	t.Run("unknown role yields empty list", func(t *testing.T) {
		w := doReferenceRequest(router, http.MethodGet, "/constraints/roles/unknown_role", tenantID)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"data":[]`)
	})

	t.Run("mandate constraints", func(t *testing.T) {
		w := doReferenceRequest(router, http.MethodGet, "/constraints/mandates/payment", tenantID)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"property_type":"iban"`)
	})
}

func TestReferenceHandler_Reload(t *testing.T) {
	router, tenantID := newReferenceRouter(t)

	// Static store has no loader, reload is a no-op success
	w := doReferenceRequest(router, http.MethodPost, "/reference/reload", tenantID)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reloaded":true`)
}
