package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(origins []string, method, origin string, preflight bool) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(origins))
	r.GET("/students", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/students", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	rec := serve([]string{"https://records.example.com/"}, http.MethodGet, "https://records.example.com", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://records.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	rec := serve([]string{"https://records.example.com"}, http.MethodGet, "https://evil.example.com", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSWildcardSubdomain(t *testing.T) {
	origins := []string{"https://*.school.edu"}

	rec := serve(origins, http.MethodGet, "https://registrar.school.edu", false)
	assert.Equal(t, "https://registrar.school.edu", rec.Header().Get("Access-Control-Allow-Origin"))

	for _, origin := range []string{"https://school.edu", "http://registrar.school.edu", "https://evilschool.edu"} {
		rec = serve(origins, http.MethodGet, origin, false)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"), origin)
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := serve(nil, http.MethodOptions, "https://any.example.com", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORSPreflightRejectsUnknownOrigin(t *testing.T) {
	rec := serve([]string{"https://records.example.com"}, http.MethodOptions, "https://evil.example.com", true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORSNoOriginPassesThrough(t *testing.T) {
	rec := serve(nil, http.MethodGet, "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}
