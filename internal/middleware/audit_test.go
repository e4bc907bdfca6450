package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/academic-records/pkg/middleware/requestid"
)

func TestAuditLogsSuccessfulMutations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(requestid.Middleware(), Audit(zap.New(core)))
	r.DELETE("/students/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.POST("/students", func(c *gin.Context) { c.Status(http.StatusConflict) })
	r.GET("/students", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodDelete, "/students/s1", nil)
	req.Header.Set("X-Request-ID", "req-1")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/students", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/students", nil))

	entries := logs.FilterMessage("record change").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/students/:id", fields["route"])
	assert.Equal(t, "s1", fields["resource_id"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.EqualValues(t, http.StatusNoContent, fields["status"])
}
