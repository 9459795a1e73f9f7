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

	"github.com/mdm/backend/internal/domain/shared"
	"github.com/mdm/backend/internal/interfaces/http/dto"
	"github.com/mdm/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name: "from context string",
			setup: func(c *gin.Context) {
				c.Set(RequestIDKey, "ctx-request-id")
			},
			expectedID: "ctx-request-id",
		},
		{
			name: "from header when context empty",
			setup: func(c *gin.Context) {
				c.Request.Header.Set("X-Request-ID", "header-request-id")
			},
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(RequestIDKey, "ctx-id")
				c.Request.Header.Set("X-Request-ID", "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext()
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestGetTenantID(t *testing.T) {
	t.Run("from middleware context", func(t *testing.T) {
		c, _ := newTestContext()
		tenantID := uuid.New()
		c.Set(middleware.TenantIDKey, tenantID.String())

		resolved, err := getTenantID(c)
		require.NoError(t, err)
		assert.Equal(t, tenantID, resolved)
	})

	t.Run("falls back to header", func(t *testing.T) {
		c, _ := newTestContext()
		tenantID := uuid.New()
		c.Request.Header.Set(middleware.TenantHeaderKey, tenantID.String())

		resolved, err := getTenantID(c)
		require.NoError(t, err)
		assert.Equal(t, tenantID, resolved)
	})

	t.Run("defaults when nothing set", func(t *testing.T) {
		c, _ := newTestContext()

		resolved, err := getTenantID(c)
		require.NoError(t, err)
		assert.Equal(t, middleware.DefaultTenantID, resolved.String())
	})

	t.Run("rejects malformed header", func(t *testing.T) {
		c, _ := newTestContext()
		c.Request.Header.Set(middleware.TenantHeaderKey, "not-a-uuid")

		_, err := getTenantID(c)
		assert.Error(t, err)
	})
}

func TestHandleError(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "not found domain error",
			err:            shared.ErrNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
		},
		{
			name:           "invalid argument domain error",
			err:            shared.InvalidArgument("Gender code is not valid"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeInvalidInput,
		},
		{
			name:           "service unavailable domain error",
			err:            shared.ServiceUnavailable("store down"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   dto.ErrCodeUnavailable,
		},
		{
			name:           "unknown error becomes internal",
			err:            assert.AnError,
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
		})
	}
}

func TestSuccessHelpers(t *testing.T) {
	h := &BaseHandler{}

	t.Run("Success", func(t *testing.T) {
		c, w := newTestContext()
		h.Success(c, gin.H{"hello": "world"})

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})

	t.Run("SuccessWithMeta", func(t *testing.T) {
		c, w := newTestContext()
		h.SuccessWithMeta(c, []string{"a", "b"}, 10, 2, 2)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(10), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.Page)
	})

	t.Run("NoContent", func(t *testing.T) {
		c, w := newTestContext()
		h.NoContent(c)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
