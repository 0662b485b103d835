package service_test

import (
	"context"
	"testing"

	"clinipos/internal/apierror"
	"clinipos/internal/dto"
	"clinipos/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestPatientCreate_AssignsMRN(t *testing.T) {
	repo := newFakePatientRepo()
	svc := service.NewPatientService(repo)

	first, err := svc.Create(context.Background(), dto.CreatePatientRequest{
		FirstName: "Ana", LastName: "Gómez",
		BirthDate: str("1990-04-12"), Sex: str("female"),
	})
	require.NoError(t, err)
	assert.Equal(t, "MRN-000001", first.MRN)
	require.NotNil(t, first.BirthDate)
	assert.Equal(t, "1990-04-12", *first.BirthDate)

	second, err := svc.Create(context.Background(), dto.CreatePatientRequest{
		FirstName: "Luis", LastName: "Paz",
	})
	require.NoError(t, err)
	assert.Equal(t, "MRN-000002", second.MRN)
	assert.Nil(t, second.BirthDate)
}

func TestPatientCreate_BadBirthDate(t *testing.T) {
	svc := service.NewPatientService(newFakePatientRepo())

	_, err := svc.Create(context.Background(), dto.CreatePatientRequest{
		FirstName: "Ana", LastName: "Gómez", BirthDate: str("12/04/1990"),
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindInvalidArgument, kindOf(t, err))
}

func TestPatientGet_NotFound(t *testing.T) {
	svc := service.NewPatientService(newFakePatientRepo())

	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, kindOf(t, err))
}

func TestPatientUpdate_PartialFields(t *testing.T) {
	repo := newFakePatientRepo()
	svc := service.NewPatientService(repo)

	created, err := svc.Create(context.Background(), dto.CreatePatientRequest{
		FirstName: "Ana", LastName: "Gómez", Phone: str("9999-0000"),
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	updated, err := svc.Update(context.Background(), id, dto.UpdatePatientRequest{
		Phone: str("8888-1111"), City: str("Tegucigalpa"),
	})
	require.NoError(t, err)

	// Untouched fields survive, MRN never changes
	assert.Equal(t, "Ana", updated.FirstName)
	assert.Equal(t, "MRN-000001", updated.MRN)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, "8888-1111", *updated.Phone)
	require.NotNil(t, updated.City)
	assert.Equal(t, "Tegucigalpa", *updated.City)
}

func TestPatientDelete(t *testing.T) {
	repo := newFakePatientRepo()
	svc := service.NewPatientService(repo)

	created, err := svc.Create(context.Background(), dto.CreatePatientRequest{
		FirstName: "Ana", LastName: "Gómez",
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	require.NoError(t, svc.Delete(context.Background(), id))

	_, err = svc.Get(context.Background(), id)
	assert.Equal(t, apierror.KindNotFound, kindOf(t, err))
}

func TestPatientDelete_NotFound(t *testing.T) {
	svc := service.NewPatientService(newFakePatientRepo())

	err := svc.Delete(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, kindOf(t, err))
}

func TestPatientList_DefaultsPaging(t *testing.T) {
	repo := newFakePatientRepo()
	svc := service.NewPatientService(repo)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), dto.CreatePatientRequest{
			FirstName: "P", LastName: "Q",
		})
		require.NoError(t, err)
	}

	list, err := svc.List(context.Background(), dto.PatientFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.Total)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 50, list.Limit)
}
