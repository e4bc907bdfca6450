package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-records/internal/dto"
	appErrors "github.com/noah-isme/academic-records/pkg/errors"
)

type fakeExportSrv struct {
	lastReq    dto.StudentExportRequest
	resolveErr error
	dir        string
}

func (f *fakeExportSrv) Students(_ context.Context, req dto.StudentExportRequest) (*dto.ExportResponse, error) {
	f.lastReq = req
	return &dto.ExportResponse{
		Filename:  "students-2024-09-01.csv",
		Format:    req.Format,
		Rows:      2,
		URL:       "/api/v1/exports/download?token=abc",
		Token:     "abc",
		ExpiresAt: time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC),
	}, nil
}

func (f *fakeExportSrv) Resolve(token string) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return "exp-1/students-2024-09-01.csv", nil
}

func (f *fakeExportSrv) Open(relPath string) (*os.File, error) {
	file, err := os.Open(filepath.Join(f.dir, filepath.FromSlash(relPath)))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file not found")
	}
	return file, nil
}

func TestExportHandlerStudents(t *testing.T) {
	srv := &fakeExportSrv{}
	h := NewExportHandler(srv)

	c, rec := newContext(http.MethodPost, "/exports/students", []byte(`{"format":"csv","department":"Civil","sortBy":"name"}`))
	h.Students(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, dto.ExportFormatCSV, srv.lastReq.Format)
	assert.Equal(t, "Civil", srv.lastReq.Department)
	assert.Equal(t, "name", srv.lastReq.SortBy)
}

func TestExportHandlerDownload(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "exp-1"), 0o755))
	content := "Name,Roll Number\nAyesha Khan,CS-2024-001\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "exp-1", "students-2024-09-01.csv"), []byte(content), 0o600))
	h := NewExportHandler(&fakeExportSrv{dir: dir})

	c, rec := newContext(http.MethodGet, "/exports/download?token=abc", nil)
	h.Download(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="students-2024-09-01.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, content, rec.Body.String())
}

func TestExportHandlerDownloadRequiresToken(t *testing.T) {
	h := NewExportHandler(&fakeExportSrv{})

	c, rec := newContext(http.MethodGet, "/exports/download", nil)
	h.Download(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportHandlerDownloadInvalidToken(t *testing.T) {
	h := NewExportHandler(&fakeExportSrv{resolveErr: appErrors.Clone(appErrors.ErrValidation, "download link expired")})

	c, rec := newContext(http.MethodGet, "/exports/download?token=stale", nil)
	h.Download(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "download link expired", env.Error.Message)
}

func TestExportHandlerDownloadMissingFile(t *testing.T) {
	h := NewExportHandler(&fakeExportSrv{dir: t.TempDir()})

	c, rec := newContext(http.MethodGet, "/exports/download?token=abc", nil)
	h.Download(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
