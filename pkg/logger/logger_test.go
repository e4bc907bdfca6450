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

	"github.com/noah-isme/academic-records/pkg/config"
	"github.com/noah-isme/academic-records/pkg/middleware/requestid"
)

func newObservedEngine(skip ...string) (*gin.Engine, *observer.ObservedLogs) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(requestid.Middleware())
	r.Use(GinMiddleware(zap.New(core), skip...))
	r.GET("/students/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/students", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r, logs
}

func TestGinMiddlewareLogsRouteAndRequestID(t *testing.T) {
	r, logs := newObservedEngine()
	req := httptest.NewRequest(http.MethodGet, "/students/abc", nil)
	req.Header.Set("X-Request-ID", "req-42")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "/students/:id", fields["route"])
	assert.Equal(t, "/students/abc", fields["path"])
	assert.Equal(t, "req-42", fields["request_id"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

func TestGinMiddlewareWarnsOnClientErrors(t *testing.T) {
	r, logs := newObservedEngine()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/students", nil))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestGinMiddlewareSkipsQuietPaths(t *testing.T) {
	r, logs := newObservedEngine("/health")
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Zero(t, logs.Len())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, 1, logs.Len())
	_, hasRoute := logs.All()[0].ContextMap()["route"]
	assert.False(t, hasRoute)
}

func TestNewHonoursLevelAndFormat(t *testing.T) {
	l, err := New(&config.Config{Env: config.EnvDevelopment, Log: config.LogConfig{Level: "warn", Format: "console"}})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = New(&config.Config{Env: config.EnvProduction, Log: config.LogConfig{Level: "loud"}})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}
