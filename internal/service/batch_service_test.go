package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danceflow/attendance-api/internal/models"
	"github.com/danceflow/attendance-api/internal/store"
	appErrors "github.com/danceflow/attendance-api/pkg/errors"
)

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: 1, Username: "admin", Role: models.RoleAdmin}
}

func teacherClaims(userID int) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Username: "neha", Role: models.RoleTeacher}
}

func testBatchService(t *testing.T) (*BatchService, *store.Store) {
	t.Helper()
	st := store.New(store.DefaultSnapshot())
	return NewBatchService(st, NewPolicy(false), nil, nil), st
}

func TestBatchListVisibility(t *testing.T) {
	svc, _ := testBatchService(t)
	ctx := context.Background()

	all, err := svc.List(ctx, adminClaims(), "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	// Neha (user 2) instructs Hip-Hop Beginners and Salsa Fusion.
	mine, err := svc.List(ctx, teacherClaims(2), "")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, b := range mine {
		assert.Equal(t, 2, b.InstructorID)
		assert.Equal(t, "Neha", b.InstructorName)
	}
}

func TestBatchListSortKeys(t *testing.T) {
	svc, _ := testBatchService(t)
	ctx := context.Background()

	byName, err := svc.List(ctx, adminClaims(), models.SortNameAsc)
	require.NoError(t, err)
	assert.Equal(t, "Ballet Basics", byName[0].Name)
	assert.Equal(t, "Salsa Fusion", byName[3].Name)

	byNameDesc, err := svc.List(ctx, adminClaims(), models.SortNameDesc)
	require.NoError(t, err)
	assert.Equal(t, "Salsa Fusion", byNameDesc[0].Name)

	byInstructor, err := svc.List(ctx, adminClaims(), models.SortInstructorAsc)
	require.NoError(t, err)
	assert.Equal(t, "Neha", byInstructor[0].InstructorName)
	assert.Equal(t, "Raj", byInstructor[3].InstructorName)
}

func TestBatchListUnknownSortPreservesOrder(t *testing.T) {
	svc, _ := testBatchService(t)

	unsorted, err := svc.List(context.Background(), adminClaims(), models.SortOption("bogus"))
	require.NoError(t, err)
	require.Len(t, unsorted, 4)
	for i, b := range unsorted {
		assert.Equal(t, i+1, b.ID, "unknown sort key keeps storage order")
	}
}

func TestBatchListSortDoesNotMutateStore(t *testing.T) {
	svc, st := testBatchService(t)

	_, err := svc.List(context.Background(), adminClaims(), models.SortNameDesc)
	require.NoError(t, err)

	stored := st.Batches()
	for i, b := range stored {
		assert.Equal(t, i+1, b.ID)
	}
}

func TestBatchSaveAdminOnly(t *testing.T) {
	svc, st := testBatchService(t)
	before := st.Batches()

	req := SaveBatchRequest{Name: "Jazz", InstructorID: 3, Schedule: "Sun - 9:00 AM", TotalSessions: 6}
	_, err := svc.Save(context.Background(), teacherClaims(2), req, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Equal(t, before, st.Batches(), "denied save mutates nothing")
}

func TestBatchSaveCreateAssignsColorAndCreator(t *testing.T) {
	svc, _ := testBatchService(t)

	req := SaveBatchRequest{Name: "Jazz", InstructorID: 3, Schedule: "Sun - 9:00 AM", TotalSessions: 6}
	batch, err := svc.Save(context.Background(), adminClaims(), req, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, batch.ID)
	assert.Equal(t, 1, batch.CreatedBy)
	assert.Empty(t, batch.StudentIDs)
	// Four batches exist, so the new one cycles to the fifth palette color.
	assert.Equal(t, models.BatchColors[4], batch.Color)
}

func TestBatchSaveUnknownInstructor(t *testing.T) {
	svc, _ := testBatchService(t)

	req := SaveBatchRequest{Name: "Jazz", InstructorID: 99, Schedule: "Sun", TotalSessions: 6}
	_, err := svc.Save(context.Background(), adminClaims(), req, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBatchSaveEditMergesFields(t *testing.T) {
	svc, _ := testBatchService(t)

	id := 1
	req := SaveBatchRequest{Name: "Hip-Hop Advanced", InstructorID: 3, Schedule: "Mon - 7:00 PM", TotalSessions: 10, Color: "#ef4444"}
	batch, err := svc.Save(context.Background(), adminClaims(), req, &id)
	require.NoError(t, err)

	assert.Equal(t, 1, batch.ID)
	assert.Equal(t, "Hip-Hop Advanced", batch.Name)
	assert.Equal(t, []int{1, 2, 3, 4, 9, 11}, batch.StudentIDs, "roster survives edits")
	assert.Equal(t, 1, batch.CreatedBy)
}

func TestBatchDeleteCascades(t *testing.T) {
	svc, st := testBatchService(t)

	err := svc.Delete(context.Background(), teacherClaims(2), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), adminClaims(), 1))
	assert.Empty(t, st.SessionsByBatch(1))

	err = svc.Delete(context.Background(), adminClaims(), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBatchGetResolvesInstructorName(t *testing.T) {
	svc, _ := testBatchService(t)

	batch, err := svc.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Contemporary Flow", batch.Name)
	assert.Equal(t, "Raj", batch.InstructorName)

	_, err = svc.Get(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
