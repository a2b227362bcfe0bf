package memory

import (
	"context"
	"testing"

	"disassembly-doe-lab/internal/domain"
)

func TestGroupStatisticStore(t *testing.T) {
	store := NewGroupStatisticStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.GroupStatistic{
		{GroupID: "g2", CellKey: "sys1", IndicatorID: "total_score", Count: 2, Mean: 0.5},
		{GroupID: "g1", CellKey: "high", IndicatorID: "IND01", Count: 3, Mean: 100},
		{GroupID: "g1", CellKey: "high", IndicatorID: "total_score", Count: 3, Mean: 0.7},
	})
	if err != nil {
		t.Fatalf("InsertBulk error: %v", err)
	}

	byGroup, err := store.GetByGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("GetByGroup error: %v", err)
	}
	if len(byGroup) != 2 {
		t.Fatalf("got %d rows, want 2", len(byGroup))
	}
	// ordered by cell key, then metric id
	if byGroup[0].IndicatorID != "IND01" || byGroup[1].IndicatorID != "total_score" {
		t.Errorf("order = %s, %s", byGroup[0].IndicatorID, byGroup[1].IndicatorID)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll error: %v", err)
	}
	if len(all) != 3 || all[0].GroupID != "g1" || all[2].GroupID != "g2" {
		t.Errorf("GetAll order wrong: %+v", all)
	}
}

func TestDepthPointStore(t *testing.T) {
	store := NewDepthPointStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.DepthPoint{
		{ProductType: "phone", StepID: "1", BranchID: "main", StepProfit: 5},
		{ProductType: "hd", StepID: "2", BranchID: "main", StepProfit: 10},
		{ProductType: "hd", StepID: "1", BranchID: "main", StepProfit: 20, BreakEven: true},
	})
	if err != nil {
		t.Fatalf("InsertBulk error: %v", err)
	}

	byType, err := store.GetByProductType(ctx, "hd")
	if err != nil {
		t.Fatalf("GetByProductType error: %v", err)
	}
	if len(byType) != 2 || byType[0].StepID != "1" || !byType[0].BreakEven {
		t.Errorf("GetByProductType = %+v", byType)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll error: %v", err)
	}
	if len(all) != 3 || all[0].ProductType != "hd" {
		t.Errorf("GetAll order wrong")
	}
}
