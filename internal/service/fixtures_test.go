package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-records/internal/models"
	"github.com/noah-isme/academic-records/internal/repository"
)

type memoryBackend struct {
	mu      sync.Mutex
	data    map[string][]byte
	saveErr error
}

func (m *memoryBackend) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.data[key]
	if !ok {
		return nil, repository.ErrSnapshotNotFound
	}
	return payload, nil
}

func (m *memoryBackend) Save(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = append([]byte(nil), payload...)
	return nil
}

func (m *memoryBackend) Close() error { return nil }

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type storeHarness struct {
	store   *repository.RecordStore
	backend *memoryBackend
	clock   *testClock
}

func newStoreHarness(t *testing.T) *storeHarness {
	t.Helper()
	backend := &memoryBackend{data: map[string][]byte{}}
	clock := &testClock{now: time.Date(2024, 9, 1, 9, 0, 0, 0, time.UTC)}
	var mu sync.Mutex
	seq := 0
	store := repository.NewRecordStore(backend, repository.StoreOptions{
		KeyPrefix: "test",
		Clock:     clock.Now,
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("id-%03d", seq)
		},
	})
	require.NoError(t, store.Load(context.Background()))
	return &storeHarness{store: store, backend: backend, clock: clock}
}

func validStudentRequest(roll string) CreateStudentRequest {
	return CreateStudentRequest{
		Name:         "Ayesha Khan",
		RollNumber:   roll,
		Department:   string(models.DepartmentComputerScience),
		Email:        "ayesha.khan@example.com",
		PhoneNumber:  "03001234567",
		AcademicYear: string(models.AcademicYearFirst),
	}
}

func strPtr(v string) *string { return &v }

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }
