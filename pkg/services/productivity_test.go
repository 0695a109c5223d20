package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/models"
)

func TestProductivityService_BulkAdd(t *testing.T) {
	repo := newMockProductivityRepo()
	svc := NewProductivityService(newFakeTxRunner(), &fakeUoW{}, repo, zap.NewNop())

	result, err := svc.BulkAdd(userContext("lead"), []*models.BenchmarkProductivity{
		{WarehouseID: 1, CategoryID: 1, ProductivityExperienced: 10, ProductivityNew: 5},
		{WarehouseID: 1, CategoryID: 2, ProductivityExperienced: -1, ProductivityNew: 5},
		{WarehouseID: 1, CategoryID: 1, ProductivityExperienced: 11, ProductivityNew: 6},
	})
	require.NoError(t, err)

	assert.Len(t, result.Succeeded, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, int64(2), result.Failed[0].Record.CategoryID)

	require.Len(t, repo.records, 1)
	stored := repo.records[productivityKey{1, 1}]
	assert.Equal(t, 11.0, stored.ProductivityExperienced)
	assert.Equal(t, "lead", stored.CreatedBy)
}

func TestProductivityService_Update(t *testing.T) {
	repo := newMockProductivityRepo()
	svc := NewProductivityService(newFakeTxRunner(), &fakeUoW{}, repo, zap.NewNop())
	ctx := userContext("lead")

	p := &models.BenchmarkProductivity{WarehouseID: 1, CategoryID: 1, ProductivityExperienced: 10, ProductivityNew: 5}
	require.NoError(t, repo.Create(ctx, &fakeUoW{}, p))

	newValue := 7.5
	bad := -2.0
	result, err := svc.Update(ctx, []models.BenchmarkProductivityUpdate{
		{ID: p.ID, ProductivityNew: &newValue},
		{ID: 77, ProductivityNew: &newValue},
		{ID: p.ID, ProductivityExperienced: &bad},
	})
	require.NoError(t, err)

	require.Len(t, result.Updated, 1)
	assert.Equal(t, 10.0, result.Updated[0].ProductivityExperienced, "omitted fields are unchanged")
	assert.Equal(t, 7.5, result.Updated[0].ProductivityNew)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, "benchmark productivity 77 not found", result.Failed[0].Error)
	assert.Contains(t, result.Failed[1].Error, "must not be negative")
}

func TestProductivityService_ListNeverNil(t *testing.T) {
	svc := NewProductivityService(newFakeTxRunner(), &fakeUoW{}, newMockProductivityRepo(), zap.NewNop())

	records, err := svc.ListByWarehouse(context.Background(), 3)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
