package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminRequired(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		header     string
		wantStatus int
		wantError  string
	}{
		{name: "valid token", token: "secret", header: "Bearer secret", wantStatus: http.StatusOK},
		{name: "missing header", token: "secret", header: "", wantStatus: http.StatusUnauthorized, wantError: "authorization header required"},
		{name: "wrong scheme", token: "secret", header: "Basic secret", wantStatus: http.StatusUnauthorized, wantError: "invalid authorization format"},
		{name: "wrong token", token: "secret", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantError: "invalid API token"},
		{name: "unconfigured token", token: "", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantError: "invalid API token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(AdminRequired(tt.token))
			header := map[string]string{}
			if tt.header != "" {
				header["Authorization"] = tt.header
			}

			w := do(r, "/ok", header)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantError != "" {
				assert.Contains(t, w.Body.String(), tt.wantError)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	r := newRouter(Recovery(zap.NewNop()))

	w := do(r, "/panic", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestRequestLogger(t *testing.T) {
	r := newRouter(RequestLogger(zap.NewNop()))

	w := do(r, "/ok", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestLogger_RecordsRecoveredPanic(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)
	r := newRouter(RequestLogger(log), Recovery(log))

	w := do(r, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := logs.FilterMessage("request").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, int64(http.StatusInternalServerError), entries[0].ContextMap()["status"])
	}
}

func TestClientRateLimiter(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewClientRateLimiter(60, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"), "burst exhausted")
	assert.True(t, l.Allow("2.2.2.2"), "other clients keep their own bucket")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("1.1.1.1"), "one token refills per second at 60/min")

	assert.Equal(t, 2, l.Len())
	now = now.Add(11 * time.Minute)
	l.Allow("3.3.3.3")
	assert.Equal(t, 1, l.Len(), "idle clients are evicted")
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newRouter(RateLimit(NewClientRateLimiter(1, 1)))

	first := do(r, "/ok", nil)
	second := do(r, "/ok", nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.JSONEq(t, `{"success":false,"error":"Too many requests"}`, second.Body.String())
}
