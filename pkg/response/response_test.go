package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-records/internal/models"
	appErrors "github.com/noah-isme/academic-records/pkg/errors"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestJSONWritesPaginationAndMeta(t *testing.T) {
	c, rec := newTestContext()
	JSON(c, http.StatusOK, []string{"a"}, &models.Pagination{Page: 2, PageSize: 1, TotalCount: 3, TotalPages: 3}, map[string]interface{}{"cgpa": "3.30"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.JSONEq(t, `["a"]`, string(body["data"]))
	assert.JSONEq(t, `{"page":2,"page_size":1,"total_count":3,"total_pages":3}`, string(body["pagination"]))
	assert.JSONEq(t, `{"cgpa":"3.30"}`, string(body["meta"]))
	assert.NotContains(t, body, "error")
}

func TestErrorMapsStatus(t *testing.T) {
	c, rec := newTestContext()
	Error(c, appErrors.Clone(appErrors.ErrDuplicateKey, "roll number already exists"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"DUPLICATE_KEY","message":"roll number already exists","status":409}}`, rec.Body.String())
}

func TestErrorHidesUnknownErrors(t *testing.T) {
	c, rec := newTestContext()
	Error(c, errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestAttachment(t *testing.T) {
	c, rec := newTestContext()
	Attachment(c, "transcript-CS-001.pdf", []byte("%PDF-1.3"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="transcript-CS-001.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", rec.Body.String())
}

func TestAttachmentFromReaderStripsPath(t *testing.T) {
	c, rec := newTestContext()
	payload := "name,roll\n"
	AttachmentFromReader(c, "exports/abc/students-2024-09-01.csv", int64(len(payload)), strings.NewReader(payload))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="students-2024-09-01.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, payload, rec.Body.String())
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv", ContentType("a.CSV"))
	assert.Equal(t, "application/pdf", ContentType("a.pdf"))
	assert.Equal(t, "application/octet-stream", ContentType("a.bin"))
}
