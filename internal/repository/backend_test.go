package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInMemoryBadger(t *testing.T) *BadgerBackend {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	backend := NewBadgerBackend(db)
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

func TestBadgerBackendRoundTrip(t *testing.T) {
	backend := newInMemoryBadger(t)
	ctx := context.Background()

	_, err := backend.Load(ctx, "records:students")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	require.NoError(t, backend.Save(ctx, "records:students", []byte(`[]`)))
	require.NoError(t, backend.Save(ctx, "records:students", []byte(`[{"id":"1"}]`)))

	payload, err := backend.Load(ctx, "records:students")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(payload))
}

func TestBadgerBackendHonoursCancelledContext(t *testing.T) {
	backend := newInMemoryBadger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, backend.Save(ctx, "k", []byte("v")), context.Canceled)
}

func TestRedisBackendRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backend := NewRedisBackend(client)
	defer backend.Close()
	ctx := context.Background()

	_, err := backend.Load(ctx, "records:subjects")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	require.NoError(t, backend.Save(ctx, "records:subjects", []byte(`[{"code":"MATH101"}]`)))
	stored, err := mr.Get("records:subjects")
	require.NoError(t, err)
	assert.Equal(t, `[{"code":"MATH101"}]`, stored)
	assert.Zero(t, mr.TTL("records:subjects"))

	payload, err := backend.Load(ctx, "records:subjects")
	require.NoError(t, err)
	assert.Equal(t, `[{"code":"MATH101"}]`, string(payload))
}

func TestRedisBackendUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	backend := NewRedisBackend(client)
	defer backend.Close()
	mr.Close()

	err := backend.Save(context.Background(), "records:students", []byte(`[]`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSnapshotNotFound)
}

func newSnapshotMock(t *testing.T) (*SQLBackend, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	backend := NewSQLBackend(sqlx.NewDb(db, "postgres"))
	t.Cleanup(func() { _ = backend.Close() })
	return backend, mock
}

func TestSQLBackendEnsureSchema(t *testing.T) {
	backend, mock := newSnapshotMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS record_snapshots").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, backend.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLBackendLoad(t *testing.T) {
	backend, mock := newSnapshotMock(t)
	mock.ExpectQuery("SELECT payload FROM record_snapshots").
		WithArgs("records:semesters").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(`[{"name":"Fall"}]`))

	payload, err := backend.Load(context.Background(), "records:semesters")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Fall"}]`, string(payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLBackendLoadMissing(t *testing.T) {
	backend, mock := newSnapshotMock(t)
	mock.ExpectQuery("SELECT payload FROM record_snapshots").
		WithArgs("records:students").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err := backend.Load(context.Background(), "records:students")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLBackendSave(t *testing.T) {
	backend, mock := newSnapshotMock(t)
	mock.ExpectExec("INSERT INTO record_snapshots").
		WithArgs("records:students", `[]`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, backend.Save(context.Background(), "records:students", []byte(`[]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
