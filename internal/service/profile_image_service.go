package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records/internal/models"
	appErrors "github.com/noah-isme/academic-records/pkg/errors"
)

// DefaultMaxImageSize is the largest accepted profile image.
const DefaultMaxImageSize int64 = 5 * 1024 * 1024

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

type imageStudentUpdater interface {
	UpdateStudent(ctx context.Context, id string, patch models.StudentPatch) (*models.Student, error)
}

type uploadObserver interface {
	RecordImageRejected(reason string)
}

// ProfileImageService validates uploaded profile images and stores them on the
// student as data URLs.
type ProfileImageService struct {
	students imageStudentUpdater
	observer uploadObserver
	maxSize  int64
	logger   *zap.Logger
}

// NewProfileImageService constructs the service. A non-positive maxSize uses
// DefaultMaxImageSize.
func NewProfileImageService(students imageStudentUpdater, maxSize int64, observer uploadObserver, logger *zap.Logger) *ProfileImageService {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileImageService{students: students, observer: observer, maxSize: maxSize, logger: logger}
}

// Upload reads the image, checks its size and sniffed type, and attaches it to
// the student.
func (s *ProfileImageService) Upload(ctx context.Context, studentID string, r io.Reader) (*models.Student, error) {
	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(r, s.maxSize+1)); err != nil {
		return nil, appErrors.Invalid(err, "failed to read image")
	}
	if buf.Len() == 0 {
		s.reject("empty")
		return nil, appErrors.Clone(appErrors.ErrValidation, "image is required")
	}
	if int64(buf.Len()) > s.maxSize {
		s.reject("size")
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image must be at most %s", humanize.IBytes(uint64(s.maxSize))))
	}

	mime := mimetype.Detect(buf.Bytes())
	if _, ok := allowedImageTypes[mime.String()]; !ok {
		s.reject("type")
		return nil, appErrors.Clone(appErrors.ErrValidation, "only JPEG, PNG and WebP images are allowed")
	}

	dataURL := DataURL(mime.String(), buf.Bytes())
	student, err := s.students.UpdateStudent(ctx, studentID, models.StudentPatch{ProfileImage: &dataURL})
	if err != nil {
		return nil, storeError(err, "failed to store profile image")
	}
	s.logger.Info("profile image updated",
		zap.String("student_id", studentID),
		zap.String("mime", mime.String()),
		zap.Int("size_bytes", buf.Len()),
	)
	return student, nil
}

// Remove clears the student's profile image.
func (s *ProfileImageService) Remove(ctx context.Context, studentID string) (*models.Student, error) {
	empty := ""
	student, err := s.students.UpdateStudent(ctx, studentID, models.StudentPatch{ProfileImage: &empty})
	if err != nil {
		return nil, storeError(err, "failed to remove profile image")
	}
	return student, nil
}

// DataURL encodes data as an RFC 2397 base64 data URL.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func (s *ProfileImageService) reject(reason string) {
	if s.observer != nil {
		s.observer.RecordImageRejected(reason)
	}
}
