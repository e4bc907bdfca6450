package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records/internal/models"
	appErrors "github.com/noah-isme/academic-records/pkg/errors"
)

// Collection names; each is persisted as one payload under its own key.
const (
	CollectionStudents  = "students"
	CollectionSubjects  = "subjects"
	CollectionSemesters = "semesters"
)

// WriteObserver is notified after every attempt to persist a collection.
type WriteObserver interface {
	ObserveStoreWrite(collection string, size int, duration time.Duration, err error)
}

// StoreOptions configures a RecordStore. Zero values fall back to uuid ids,
// the wall clock and a no-op logger.
type StoreOptions struct {
	KeyPrefix string
	Clock     func() time.Time
	NewID     func() string
	Logger    *zap.Logger
	Observer  WriteObserver
}

// RecordStore owns the canonical student, subject and semester collections.
//
// Every mutation runs under a single writer lock: the next collection is built
// as a copy, persisted in full, and only then swapped in. A failed write leaves
// the in-memory state untouched. Readers always receive copies.
type RecordStore struct {
	mu       sync.RWMutex
	backend  Backend
	prefix   string
	now      func() time.Time
	newID    func() string
	logger   *zap.Logger
	observer WriteObserver

	students  []models.Student
	subjects  []models.Subject
	semesters []models.Semester
}

// NewRecordStore constructs an empty store; call Load to read persisted state.
func NewRecordStore(backend Backend, opts StoreOptions) *RecordStore {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &RecordStore{
		backend:   backend,
		prefix:    opts.KeyPrefix,
		now:       opts.Clock,
		newID:     opts.NewID,
		logger:    opts.Logger,
		observer:  opts.Observer,
		students:  []models.Student{},
		subjects:  []models.Subject{},
		semesters: []models.Semester{},
	}
}

// Key returns the backend key of a collection.
func (s *RecordStore) Key(collection string) string {
	if s.prefix == "" {
		return collection
	}
	return s.prefix + ":" + collection
}

// Load replaces the in-memory state with the persisted collections. Missing
// keys are treated as empty collections.
func (s *RecordStore) Load(ctx context.Context) error {
	students, err := loadCollection[models.Student](ctx, s.backend, s.Key(CollectionStudents))
	if err != nil {
		return err
	}
	subjects, err := loadCollection[models.Subject](ctx, s.backend, s.Key(CollectionSubjects))
	if err != nil {
		return err
	}
	semesters, err := loadCollection[models.Semester](ctx, s.backend, s.Key(CollectionSemesters))
	if err != nil {
		return err
	}
	for i := range students {
		if students[i].Enrollments == nil {
			students[i].Enrollments = []models.Enrollment{}
		}
	}

	s.mu.Lock()
	s.students, s.subjects, s.semesters = students, subjects, semesters
	s.mu.Unlock()

	s.logger.Info("records loaded",
		zap.Int("students", len(students)),
		zap.Int("subjects", len(subjects)),
		zap.Int("semesters", len(semesters)),
	)
	return nil
}

// NewID hands out a fresh identifier from the configured generator.
func (s *RecordStore) NewID() string {
	return s.newID()
}

// Now returns the current instant from the configured clock in UTC.
func (s *RecordStore) Now() time.Time {
	return s.now().UTC()
}

// ListStudents returns all students in insertion order.
func (s *RecordStore) ListStudents(ctx context.Context) []models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Student, len(s.students))
	for i, st := range s.students {
		out[i] = st.Clone()
	}
	return out
}

// FindStudent returns the student with id.
func (s *RecordStore) FindStudent(ctx context.Context, id string) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := indexOf(s.students, id, studentID)
	if idx < 0 {
		return nil, studentNotFound()
	}
	st := s.students[idx].Clone()
	return &st, nil
}

// CreateStudent assigns id and timestamps, starts an empty enrollment list and
// appends the student. The roll number must not be in use.
func (s *RecordStore) CreateStudent(ctx context.Context, student *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rollNumberTaken(student.RollNumber, "") {
		return appErrors.Clone(appErrors.ErrDuplicateKey, "roll number already registered")
	}
	record := *student
	record.ID = s.newID()
	now := s.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	record.Enrollments = []models.Enrollment{}

	next := appendCopy(s.students, record)
	if err := s.persist(ctx, CollectionStudents, next); err != nil {
		return err
	}
	s.students = next
	*student = record.Clone()
	return nil
}

// UpdateStudent merges the non-nil patch fields into the student and refreshes
// its update timestamp.
func (s *RecordStore) UpdateStudent(ctx context.Context, id string, patch models.StudentPatch) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.students, id, studentID)
	if idx < 0 {
		return nil, studentNotFound()
	}
	if patch.RollNumber != nil && s.rollNumberTaken(*patch.RollNumber, id) {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "roll number already registered")
	}

	updated := s.students[idx].Clone()
	applyStudentPatch(&updated, patch)
	updated.UpdatedAt = s.advance(updated.UpdatedAt)

	next := replaceAt(s.students, idx, updated)
	if err := s.persist(ctx, CollectionStudents, next); err != nil {
		return nil, err
	}
	s.students = next
	out := updated.Clone()
	return &out, nil
}

// MutateStudent applies fn to a copy of the student and commits the result.
// When fn fails nothing is persisted and its error is returned unchanged.
func (s *RecordStore) MutateStudent(ctx context.Context, id string, fn func(*models.Student) error) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.students, id, studentID)
	if idx < 0 {
		return nil, studentNotFound()
	}
	updated := s.students[idx].Clone()
	if err := fn(&updated); err != nil {
		return nil, err
	}
	updated.ID = id
	updated.UpdatedAt = s.advance(updated.UpdatedAt)

	next := replaceAt(s.students, idx, updated)
	if err := s.persist(ctx, CollectionStudents, next); err != nil {
		return nil, err
	}
	s.students = next
	out := updated.Clone()
	return &out, nil
}

// DeleteStudent removes the student together with its enrollments.
func (s *RecordStore) DeleteStudent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.students, id, studentID)
	if idx < 0 {
		return studentNotFound()
	}
	next := removeAt(s.students, idx)
	if err := s.persist(ctx, CollectionStudents, next); err != nil {
		return err
	}
	s.students = next
	return nil
}

// ClearStudents empties the student collection; subjects and semesters stay.
func (s *RecordStore) ClearStudents(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := []models.Student{}
	if err := s.persist(ctx, CollectionStudents, next); err != nil {
		return err
	}
	s.students = next
	return nil
}

// ListSubjects returns the subject catalog in insertion order.
func (s *RecordStore) ListSubjects(ctx context.Context) []models.Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Subject(nil), s.subjects...)
}

// FindSubject returns the subject with id.
func (s *RecordStore) FindSubject(ctx context.Context, id string) (*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := indexOf(s.subjects, id, subjectID)
	if idx < 0 {
		return nil, subjectNotFound()
	}
	subject := s.subjects[idx]
	return &subject, nil
}

// CreateSubject appends a subject; its code must not be in use.
func (s *RecordStore) CreateSubject(ctx context.Context, subject *models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subjectCodeTaken(subject.Code, "") {
		return appErrors.Clone(appErrors.ErrDuplicateKey, "subject code already exists")
	}
	record := *subject
	record.ID = s.newID()
	now := s.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	next := appendCopy(s.subjects, record)
	if err := s.persist(ctx, CollectionSubjects, next); err != nil {
		return err
	}
	s.subjects = next
	*subject = record
	return nil
}

// UpdateSubject merges the patch into the catalog entry. Enrollments keep the
// snapshot they were created with.
func (s *RecordStore) UpdateSubject(ctx context.Context, id string, patch models.SubjectPatch) (*models.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.subjects, id, subjectID)
	if idx < 0 {
		return nil, subjectNotFound()
	}
	if patch.Code != nil && s.subjectCodeTaken(*patch.Code, id) {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "subject code already exists")
	}

	updated := s.subjects[idx]
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Code != nil {
		updated.Code = *patch.Code
	}
	if patch.CreditHours != nil {
		updated.CreditHours = *patch.CreditHours
	}
	if patch.InstructorName != nil {
		updated.InstructorName = *patch.InstructorName
	}
	updated.UpdatedAt = s.advance(updated.UpdatedAt)

	next := replaceAt(s.subjects, idx, updated)
	if err := s.persist(ctx, CollectionSubjects, next); err != nil {
		return nil, err
	}
	s.subjects = next
	return &updated, nil
}

// DeleteSubject removes a catalog entry. Existing enrollments of the subject
// are left as they are.
func (s *RecordStore) DeleteSubject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.subjects, id, subjectID)
	if idx < 0 {
		return subjectNotFound()
	}
	next := removeAt(s.subjects, idx)
	if err := s.persist(ctx, CollectionSubjects, next); err != nil {
		return err
	}
	s.subjects = next
	return nil
}

// ListSemesters returns the configured semesters in insertion order.
func (s *RecordStore) ListSemesters(ctx context.Context) []models.Semester {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Semester(nil), s.semesters...)
}

// FindSemester returns the semester with id.
func (s *RecordStore) FindSemester(ctx context.Context, id string) (*models.Semester, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := indexOf(s.semesters, id, semesterID)
	if idx < 0 {
		return nil, semesterNotFound()
	}
	semester := s.semesters[idx]
	return &semester, nil
}

// ActiveSemester returns the first semester flagged active.
func (s *RecordStore) ActiveSemester(ctx context.Context) (*models.Semester, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, semester := range s.semesters {
		if semester.IsActive {
			active := semester
			return &active, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "no active semester")
}

// CreateSemester appends a semester.
func (s *RecordStore) CreateSemester(ctx context.Context, semester *models.Semester) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := *semester
	record.ID = s.newID()
	now := s.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	next := appendCopy(s.semesters, record)
	if err := s.persist(ctx, CollectionSemesters, next); err != nil {
		return err
	}
	s.semesters = next
	*semester = record
	return nil
}

// UpdateSemester merges the patch into the semester.
func (s *RecordStore) UpdateSemester(ctx context.Context, id string, patch models.SemesterPatch) (*models.Semester, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.semesters, id, semesterID)
	if idx < 0 {
		return nil, semesterNotFound()
	}
	updated := s.semesters[idx]
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Year != nil {
		updated.Year = *patch.Year
	}
	if patch.IsActive != nil {
		updated.IsActive = *patch.IsActive
	}
	updated.UpdatedAt = s.advance(updated.UpdatedAt)

	next := replaceAt(s.semesters, idx, updated)
	if err := s.persist(ctx, CollectionSemesters, next); err != nil {
		return nil, err
	}
	s.semesters = next
	return &updated, nil
}

// DeleteSemester removes a semester. Enrollment labels are free-form and are
// not touched.
func (s *RecordStore) DeleteSemester(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.semesters, id, semesterID)
	if idx < 0 {
		return semesterNotFound()
	}
	next := removeAt(s.semesters, idx)
	if err := s.persist(ctx, CollectionSemesters, next); err != nil {
		return err
	}
	s.semesters = next
	return nil
}

// Close releases the backend.
func (s *RecordStore) Close() error {
	return s.backend.Close()
}

// Ping checks the backend when it supports health checks.
func (s *RecordStore) Ping(ctx context.Context) error {
	if pinger, ok := s.backend.(Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

// Sizes reports the number of items held in each collection.
func (s *RecordStore) Sizes() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		CollectionStudents:  len(s.students),
		CollectionSubjects:  len(s.subjects),
		CollectionSemesters: len(s.semesters),
	}
}

func (s *RecordStore) persist(ctx context.Context, collection string, items interface{}) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	start := time.Now()
	err = s.backend.Save(ctx, s.Key(collection), payload)
	if s.observer != nil {
		s.observer.ObserveStoreWrite(collection, collectionSize(items), time.Since(start), err)
	}
	if err != nil {
		s.logger.Error("persist collection failed", zap.String("collection", collection), zap.Error(err))
		return fmt.Errorf("persist %s: %w", collection, err)
	}
	return nil
}

// advance returns the current instant, nudged past prev when the clock has
// not moved so update timestamps are strictly increasing.
func (s *RecordStore) advance(prev time.Time) time.Time {
	now := s.Now()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

func (s *RecordStore) rollNumberTaken(rollNumber, excludeID string) bool {
	for _, st := range s.students {
		if st.ID != excludeID && strings.EqualFold(st.RollNumber, rollNumber) {
			return true
		}
	}
	return false
}

func (s *RecordStore) subjectCodeTaken(code, excludeID string) bool {
	for _, subject := range s.subjects {
		if subject.ID != excludeID && strings.EqualFold(subject.Code, code) {
			return true
		}
	}
	return false
}

func applyStudentPatch(st *models.Student, patch models.StudentPatch) {
	if patch.Name != nil {
		st.Name = *patch.Name
	}
	if patch.RollNumber != nil {
		st.RollNumber = *patch.RollNumber
	}
	if patch.Department != nil {
		st.Department = *patch.Department
	}
	if patch.Email != nil {
		st.Email = *patch.Email
	}
	if patch.PhoneNumber != nil {
		st.PhoneNumber = *patch.PhoneNumber
	}
	if patch.AcademicYear != nil {
		st.AcademicYear = *patch.AcademicYear
	}
	if patch.ProfileImage != nil {
		st.ProfileImage = *patch.ProfileImage
	}
}

func loadCollection[T any](ctx context.Context, backend Backend, key string) ([]T, error) {
	payload, err := backend.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func collectionSize(items interface{}) int {
	switch v := items.(type) {
	case []models.Student:
		return len(v)
	case []models.Subject:
		return len(v)
	case []models.Semester:
		return len(v)
	}
	return 0
}

func studentID(s models.Student) string   { return s.ID }
func subjectID(s models.Subject) string   { return s.ID }
func semesterID(s models.Semester) string { return s.ID }

func studentNotFound() error  { return appErrors.Clone(appErrors.ErrNotFound, "student not found") }
func subjectNotFound() error  { return appErrors.Clone(appErrors.ErrNotFound, "subject not found") }
func semesterNotFound() error { return appErrors.Clone(appErrors.ErrNotFound, "semester not found") }

func indexOf[T any](items []T, id string, idOf func(T) string) int {
	for i, item := range items {
		if idOf(item) == id {
			return i
		}
	}
	return -1
}

func appendCopy[T any](items []T, item T) []T {
	next := make([]T, len(items), len(items)+1)
	copy(next, items)
	return append(next, item)
}

func replaceAt[T any](items []T, idx int, item T) []T {
	next := make([]T, len(items))
	copy(next, items)
	next[idx] = item
	return next
}

func removeAt[T any](items []T, idx int) []T {
	next := make([]T, 0, len(items)-1)
	next = append(next, items[:idx]...)
	return append(next, items[idx+1:]...)
}
