package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disassembly-doe-lab/internal/domain"
	"disassembly-doe-lab/internal/storage"
)

func testComponentRecord(id, expID string) *domain.ComponentRecord {
	return &domain.ComponentRecord{
		RecordID:     id,
		ExperimentID: expID,
		ProductID:    "prod-7",
		ProductType:  "hd",
		ComponentID:  "battery",
		StepID:       "3_1",
		ResourceID:   "station_1",
		Level:        domain.LevelComponent,
		Quality:      0.85,
		Attributes:   map[string]float64{"process_duration": 90, "runtime": 82},
		Results:      map[string]float64{"VAL01": 54, "IND01": 52.8},
	}
}

func TestComponentRecordStore_InsertAndGetByExperiment(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewComponentRecordStore(pool)
	ctx := context.Background()

	rec := testComponentRecord("rec-001", "exp-1")
	require.NoError(t, store.Insert(ctx, rec))

	got, err := store.GetByExperiment(ctx, "exp-1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, rec.RecordID, got[0].RecordID)
	assert.Equal(t, rec.ComponentID, got[0].ComponentID)
	assert.Equal(t, rec.Level, got[0].Level)
	assert.Equal(t, rec.Quality, got[0].Quality)
	assert.Equal(t, rec.Attributes, got[0].Attributes)
	assert.Equal(t, rec.Results, got[0].Results)
}

func TestComponentRecordStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewComponentRecordStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testComponentRecord("rec-dup", "exp-1")))
	err := store.Insert(ctx, testComponentRecord("rec-dup", "exp-2"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestComponentRecordStore_InsertBulkAndGetByProductType(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewComponentRecordStore(pool)
	ctx := context.Background()

	r1 := testComponentRecord("rec-b", "exp-1")
	r2 := testComponentRecord("rec-a", "exp-1")
	r3 := testComponentRecord("rec-c", "exp-2")
	r3.ProductType = "phone"

	require.NoError(t, store.InsertBulk(ctx, []*domain.ComponentRecord{r1, r2, r3}))

	hd, err := store.GetByProductType(ctx, "hd")
	require.NoError(t, err)
	require.Len(t, hd, 2)
	assert.Equal(t, "rec-a", hd[0].RecordID)
	assert.Equal(t, "rec-b", hd[1].RecordID)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestComponentRecordStore_InsertBulkRollsBackOnDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewComponentRecordStore(pool)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.ComponentRecord{
		testComponentRecord("rec-a", "exp-1"),
		testComponentRecord("rec-a", "exp-1"),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
