package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// requestEntry finds the request log written by GinMiddleware and indexes
// its fields by key.
func requestEntry(t *testing.T, recorded *observer.ObservedLogs) (observer.LoggedEntry, map[string]zapcore.Field) {
	t.Helper()
	for _, entry := range recorded.All() {
		if entry.Message != "HTTP Request" {
			continue
		}
		fields := make(map[string]zapcore.Field, len(entry.Context))
		for _, field := range entry.Context {
			fields[field.Key] = field
		}
		return entry, fields
	}
	t.Fatal("no request log entry recorded")
	return observer.LoggedEntry{}, nil
}

func newObservedRouter(level zapcore.Level, pre ...gin.HandlerFunc) (*gin.Engine, *observer.ObservedLogs) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(level)

	router := gin.New()
	for _, mw := range pre {
		router.Use(mw)
	}
	router.Use(GinMiddleware(zap.New(core)))
	return router, recorded
}

func TestGinMiddleware_LogsRequestFields(t *testing.T) {
	router, recorded := newObservedRouter(zapcore.InfoLevel)
	router.POST("/parties/persons", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"id": 1})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/parties/persons?validate=true", nil)
	req.Header.Set("User-Agent", "mdm-client/1.0")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	entry, fields := requestEntry(t, recorded)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	for _, key := range []string{"method", "path", "status", "latency", "client_ip", "user_agent"} {
		assert.Contains(t, fields, key)
	}
	assert.Equal(t, "/parties/persons", fields["path"].String)
	assert.Contains(t, fields["query"].String, "validate=true")
}

func TestGinMiddleware_EnrichesWithRequestAndTenant(t *testing.T) {
	router, recorded := newObservedRouter(zapcore.InfoLevel, func(c *gin.Context) {
		c.Set("request_id", "req-42")
		c.Set("tenant_id", "7d4ba0bc-0000-0000-0000-000000000001")
		c.Next()
	})
	router.GET("/reference/genders", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/reference/genders", nil)
	router.ServeHTTP(w, req)

	_, fields := requestEntry(t, recorded)
	require.Contains(t, fields, "request_id")
	assert.Equal(t, "req-42", fields["request_id"].String)
	require.Contains(t, fields, "tenant_id")
	assert.Equal(t, "7d4ba0bc-0000-0000-0000-000000000001", fields["tenant_id"].String)
}

func TestGinMiddleware_NoTenantFieldWithoutTenant(t *testing.T) {
	router, recorded := newObservedRouter(zapcore.InfoLevel)
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	_, fields := requestEntry(t, recorded)
	assert.NotContains(t, fields, "tenant_id")
}

func TestGinMiddleware_LevelTracksStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"2xx logs info", http.StatusOK, zapcore.InfoLevel},
		{"4xx logs warn", http.StatusBadRequest, zapcore.WarnLevel},
		{"5xx logs error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, recorded := newObservedRouter(zapcore.InfoLevel)
			router.GET("/status", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/status", nil)
			router.ServeHTTP(w, req)

			entry, fields := requestEntry(t, recorded)
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, int64(tt.status), fields["status"].Integer)
		})
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/panic", nil)
	assert.NotPanics(t, func() {
		router.ServeHTTP(w, req)
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	logs := recorded.All()
	require.NotEmpty(t, logs)
	assert.Equal(t, "Panic recovered", logs[0].Message)
}

func TestGetGinLogger(t *testing.T) {
	router, _ := newObservedRouter(zapcore.InfoLevel)

	var fromContext *zap.Logger
	router.GET("/test", func(c *gin.Context) {
		fromContext = GetGinLogger(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)

	assert.NotNil(t, fromContext)
}

func TestGetGinLogger_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	// Falls back to a no-op logger rather than nil
	fromContext := GetGinLogger(c)
	require.NotNil(t, fromContext)
	assert.NotPanics(t, func() {
		fromContext.Info("noop")
	})
}
