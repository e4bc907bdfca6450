package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/academic-records/pkg/errors"
)

func TestSubjectServiceCreate(t *testing.T) {
	h := newStoreHarness(t)
	svc := NewSubjectService(h.store, nil, zap.NewNop())
	ctx := context.Background()

	subject, err := svc.Create(ctx, CreateSubjectRequest{Name: "Data Structures", Code: " cs201 ", CreditHours: 4, InstructorName: "Prof Hina Shah"})
	require.NoError(t, err)
	assert.Equal(t, "CS201", subject.Code)
	assert.NotEmpty(t, subject.ID)

	_, err = svc.Create(ctx, CreateSubjectRequest{Name: "Data Structures II", Code: "CS201", CreditHours: 4, InstructorName: "Prof Hina Shah"})
	assert.ErrorIs(t, err, appErrors.ErrDuplicateKey)

	invalid := []CreateSubjectRequest{
		{Name: "X", Code: "CS202", CreditHours: 3, InstructorName: "Prof Hina"},
		{Name: "Algorithms", Code: "CS", CreditHours: 3, InstructorName: "Prof Hina"},
		{Name: "Algorithms", Code: "CS-202", CreditHours: 3, InstructorName: "Prof Hina"},
		{Name: "Algorithms", Code: "CS202", CreditHours: 7, InstructorName: "Prof Hina"},
		{Name: "Algorithms", Code: "CS202", CreditHours: 0, InstructorName: "Prof Hina"},
		{Name: "Algorithms", Code: "CS202", CreditHours: 3, InstructorName: "Dr. Hina"},
	}
	for _, req := range invalid {
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, appErrors.ErrValidation, "%+v", req)
	}
	assert.Len(t, svc.List(ctx), 1)
}

func TestSubjectServiceUpdateAndDelete(t *testing.T) {
	h := newStoreHarness(t)
	svc := NewSubjectService(h.store, nil, zap.NewNop())
	ctx := context.Background()

	subject, err := svc.Create(ctx, CreateSubjectRequest{Name: "Physics", Code: "PHY101", CreditHours: 3, InstructorName: "Dr Sana"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, subject.ID, UpdateSubjectRequest{Code: strPtr("phy102"), CreditHours: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, "PHY102", updated.Code)
	assert.Equal(t, 4, updated.CreditHours)
	assert.Equal(t, "Physics", updated.Name)

	_, err = svc.Update(ctx, subject.ID, UpdateSubjectRequest{CreditHours: intPtr(9)})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	require.NoError(t, svc.Delete(ctx, subject.ID))
	_, err = svc.Get(ctx, subject.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
