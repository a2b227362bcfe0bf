package reporting

import (
	"context"
	"strings"
	"testing"
	"time"

	"disassembly-doe-lab/internal/domain"
	"disassembly-doe-lab/internal/storage/memory"
)

func ptr(v int) *int { return &v }

func setupTestData(t *testing.T) (*memory.ExperimentStore, *memory.GroupStatisticStore, *memory.DepthPointStore) {
	ctx := context.Background()

	expStore := memory.NewExperimentStore()
	groupStore := memory.NewGroupStatisticStore()
	depthStore := memory.NewDepthPointStore()

	experiments := []*domain.Experiment{
		{
			ExperimentID: "e1",
			Factors:      domain.Factors{SystemID: "s1", PortfolioID: "p1", AutomationID: "none", AutomationFraction: 0},
			Raw:          map[string]float64{"IND01": 40000, "IND02": 0.8},
			Normalized:   map[string]float64{"IND01": 1.0, "IND02": 1.0},
			Feasible:     true,
			TotalScore:   1.0,
			RankAll:      1,
			RankFeasible: ptr(1),
		},
		{
			ExperimentID: "e2",
			Factors:      domain.Factors{SystemID: "s2", PortfolioID: "p1", AutomationID: "robot", AutomationFraction: 0.8},
			Raw:          map[string]float64{"IND01": 43000, "IND02": 0.6},
			Normalized:   map[string]float64{"IND01": 0.4, "IND02": 0.33},
			Feasible:     true,
			TotalScore:   0.372,
			RankAll:      2,
			RankFeasible: ptr(2),
		},
		{
			ExperimentID: "e3",
			Factors:      domain.Factors{SystemID: "s1", PortfolioID: "p2", AutomationID: "robot", AutomationFraction: 0.5},
			Raw:          map[string]float64{"IND01": 52000, "IND02": 0.4},
			Normalized:   map[string]float64{"IND01": -1.4, "IND02": 0.0},
			Violations:   []string{"IND01"},
			Feasible:     false,
			TotalScore:   -0.84,
			RankAll:      3,
			RankFeasible: nil,
		},
	}
	if err := expStore.InsertBulk(ctx, experiments); err != nil {
		t.Fatalf("Insert experiments failed: %v", err)
	}

	stats := []*domain.GroupStatistic{
		{GroupID: "by_system", CellKey: "s1", Variables: map[string]string{"system": "s1"}, IndicatorID: domain.MetricTotalScore, Count: 2, Mean: 0.08, Std: 1.3, Min: -0.84, Max: 1.0},
		{GroupID: "by_system", CellKey: "s2", Variables: map[string]string{"system": "s2"}, IndicatorID: domain.MetricTotalScore, Count: 1, Mean: 0.372, Std: 0, Min: 0.372, Max: 0.372},
	}
	if err := groupStore.InsertBulk(ctx, stats); err != nil {
		t.Fatalf("Insert group statistics failed: %v", err)
	}

	points := []*domain.DepthPoint{
		{ProductType: "hd", StepID: "1", BranchID: "main", Components: "housing", StepProfit: 20, CumulativeProfit: 20, BaselineCost: 50},
		{ProductType: "hd", StepID: "2", BranchID: "main", Components: "board", StepProfit: 35, CumulativeProfit: 55, BaselineCost: 50, BreakEven: true},
	}
	if err := depthStore.InsertBulk(ctx, points); err != nil {
		t.Fatalf("Insert depth points failed: %v", err)
	}

	return expStore, groupStore, depthStore
}

func TestGenerate_WithClock(t *testing.T) {
	ctx := context.Background()
	expStore, groupStore, depthStore := setupTestData(t)

	fixedTime := time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC)
	generator := NewGenerator(expStore, groupStore, depthStore).WithClock(func() time.Time {
		return fixedTime
	})

	report, err := generator.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !report.GeneratedAt.Equal(fixedTime) {
		t.Errorf("Expected GeneratedAt %v, got %v", fixedTime, report.GeneratedAt)
	}
}

func TestGenerate_ContainsRequiredSections(t *testing.T) {
	ctx := context.Background()
	expStore, groupStore, depthStore := setupTestData(t)
	generator := NewGenerator(expStore, groupStore, depthStore)

	report, err := generator.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if report.ExperimentCount != 3 {
		t.Errorf("ExperimentCount = %d, want 3", report.ExperimentCount)
	}
	if report.FeasibleCount != 2 {
		t.Errorf("FeasibleCount = %d, want 2", report.FeasibleCount)
	}
	if len(report.Indicators) != 2 || report.Indicators[0] != "IND01" {
		t.Errorf("Indicators = %v", report.Indicators)
	}
	if len(report.Ranking) != 3 || report.Ranking[0].ExperimentID != "e1" {
		t.Errorf("Ranking = %+v", report.Ranking)
	}
	if len(report.Groups) != 2 {
		t.Errorf("Groups = %+v", report.Groups)
	}
	if len(report.Depth) != 2 {
		t.Errorf("Depth = %+v", report.Depth)
	}
}

func TestGenerate_ScoreStatistics(t *testing.T) {
	ctx := context.Background()
	expStore, groupStore, depthStore := setupTestData(t)

	report, err := NewGenerator(expStore, groupStore, depthStore).Generate(ctx)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// Feasible scores are 1.0 and 0.372; e3 is excluded.
	stats := report.ScoreStats
	if stats.Count != 2 {
		t.Fatalf("Count = %d, want 2", stats.Count)
	}
	if stats.Min != 0.372 || stats.Max != 1.0 {
		t.Errorf("Min/Max = %v/%v", stats.Min, stats.Max)
	}
	wantMean := (1.0 + 0.372) / 2
	if diff := stats.Mean - wantMean; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Mean = %v, want %v", stats.Mean, wantMean)
	}
	if stats.Std <= 0 {
		t.Errorf("Std = %v, want > 0", stats.Std)
	}
}

func TestGenerate_TopBottomFeasible(t *testing.T) {
	ctx := context.Background()
	expStore, groupStore, depthStore := setupTestData(t)

	report, err := NewGenerator(expStore, groupStore, depthStore).WithTopN(1).Generate(ctx)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(report.TopFeasible) != 1 || report.TopFeasible[0].ExperimentID != "e1" {
		t.Errorf("TopFeasible = %+v", report.TopFeasible)
	}
	if len(report.BottomFeasible) != 1 || report.BottomFeasible[0].ExperimentID != "e2" {
		t.Errorf("BottomFeasible = %+v", report.BottomFeasible)
	}
}

func TestRenderRankingCSV(t *testing.T) {
	ctx := context.Background()
	expStore, groupStore, depthStore := setupTestData(t)

	report, err := NewGenerator(expStore, groupStore, depthStore).Generate(ctx)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	csv := RenderRankingCSV(report)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3 rows", len(lines))
	}

	wantHeader := "experiment_id,system_id,portfolio_id,automation_id,automation_fraction,raw_IND01,raw_IND02,norm_IND01,norm_IND02,feasible,violations,total_score,rank_all,rank_feasible"
	if lines[0] != wantHeader {
		t.Errorf("header = %s", lines[0])
	}

	if !strings.HasPrefix(lines[1], "e1,s1,p1,none,0.0000,40000.000000") {
		t.Errorf("e1 row = %s", lines[1])
	}
	// Infeasible row carries its violation list and an empty feasible rank.
	if !strings.Contains(lines[3], "false,IND01,") || !strings.HasSuffix(lines[3], ",3,") {
		t.Errorf("e3 row = %s", lines[3])
	}
}

func TestRenderGroupCSV(t *testing.T) {
	csv := RenderGroupCSV([]GroupRow{
		{GroupID: "g1", CellKey: "s1", IndicatorID: "total_score", Count: 2, Mean: 0.5, Std: 0.1, Min: 0.4, Max: 0.6},
	})

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[1] != "g1,s1,total_score,2,0.500000,0.100000,0.400000,0.600000" {
		t.Errorf("row = %s", lines[1])
	}
}

func TestRenderDepthCSV(t *testing.T) {
	csv := RenderDepthCSV([]DepthRow{
		{ProductType: "hd", StepID: "2", BranchID: "main", Components: "drum,motor", StepProfit: 35, CumulativeProfit: 55, BaselineCost: 50, BreakEven: true},
	})

	// Commas inside the component list must not break the column layout.
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if lines[1] != "hd,main,2,drum;motor,35.000000,55.000000,50.000000,true" {
		t.Errorf("row = %s", lines[1])
	}
}

func TestRenderMarkdown(t *testing.T) {
	ctx := context.Background()
	expStore, groupStore, depthStore := setupTestData(t)

	diags := []domain.Diagnostic{
		{Code: domain.DiagThresholdViolations, Message: "indicator IND01: 1 experiments violate the threshold"},
	}
	report, err := NewGenerator(expStore, groupStore, depthStore).WithDiagnostics(diags).Generate(ctx)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)

	sections := []string{
		"# Experiment Ranking Report",
		"## Feasible Score Statistics",
		"## Ranking",
		"## Top Feasible Experiments",
		"## Group Statistics",
		"### by_system",
		"## Disassembly Depth",
		"### hd (baseline 50.00)",
		"## Diagnostics",
	}
	for _, s := range sections {
		if !strings.Contains(md, s) {
			t.Errorf("markdown missing section %q", s)
		}
	}

	// Infeasible experiment renders a dash for its feasible rank.
	if !strings.Contains(md, "| 3 | e3 | s1 | p2 | robot | 0.50 | -0.8400 | no | - | IND01 |") {
		t.Errorf("e3 ranking row not rendered as expected:\n%s", md)
	}
}
