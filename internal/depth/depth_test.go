package depth

import (
	"errors"
	"math"
	"testing"

	"disassembly-doe-lab/internal/domain"
)

const profitID = "VAL_PROFIT"

func profitRecord(productType, component string, profit float64) *domain.ComponentRecord {
	return &domain.ComponentRecord{
		RecordID:    productType + "_" + component,
		ProductType: productType,
		ComponentID: component,
		Results:     map[string]float64{profitID: profit},
	}
}

func linearPath(productType string, profits map[string]float64) ([]domain.DepthPath, []*domain.ComponentRecord) {
	var steps []domain.DepthStep
	var records []*domain.ComponentRecord
	i := 0
	for _, comp := range []string{"housing", "cover", "board", "battery", "frame", "core"} {
		p, ok := profits[comp]
		if !ok {
			continue
		}
		i++
		steps = append(steps, domain.DepthStep{
			StepID:     itoa(i),
			BranchID:   "main",
			Components: []string{comp},
		})
		records = append(records, profitRecord(productType, comp, p))
	}
	return []domain.DepthPath{{ProductType: productType, Steps: steps}}, records
}

func itoa(n int) string {
	return string(rune('0' + n))
}

func TestAnalyzeBreakEven(t *testing.T) {
	// cumulative: 20, 45, 80, 130 against baseline 100: break-even at step 4
	paths, records := linearPath("hd", map[string]float64{
		"housing": 20, "cover": 25, "board": 35, "battery": 50,
	})

	a := New(Options{ProfitValueID: profitID, Baselines: map[string]float64{"hd": 100}})
	curves, err := a.Analyze(paths, records)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if len(curves) != 1 {
		t.Fatalf("got %d curves, want 1", len(curves))
	}

	curve := curves[0]
	be := curve.BreakEvenStep["main"]
	if be == nil || *be != "4" {
		t.Fatalf("break-even = %v, want step 4", be)
	}

	for _, p := range curve.Points {
		wantFlag := p.StepID == "4"
		if p.BreakEven != wantFlag {
			t.Errorf("step %s BreakEven = %v, want %v", p.StepID, p.BreakEven, wantFlag)
		}
	}
	if got := curve.Points[3].CumulativeProfit; got != 130 {
		t.Errorf("cumulative at step 4 = %v, want 130", got)
	}
}

func TestAnalyzeNotReached(t *testing.T) {
	paths, records := linearPath("hd", map[string]float64{"housing": 10, "cover": 15})

	a := New(Options{ProfitValueID: profitID, Baselines: map[string]float64{"hd": 1000}})
	curves, err := a.Analyze(paths, records)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if be := curves[0].BreakEvenStep["main"]; be != nil {
		t.Errorf("break-even = %q, want nil (not reached)", *be)
	}
	for _, p := range curves[0].Points {
		if p.BreakEven {
			t.Errorf("step %s flagged break-even on a curve that never crosses", p.StepID)
		}
	}
}

func TestAnalyzeNegativeStepDecreasesCumulative(t *testing.T) {
	paths, records := linearPath("hd", map[string]float64{
		"housing": 50, "cover": -20, "board": 10,
	})

	a := New(Options{ProfitValueID: profitID, Baselines: map[string]float64{"hd": 1000}})
	curves, err := a.Analyze(paths, records)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	pts := curves[0].Points
	if pts[1].CumulativeProfit >= pts[0].CumulativeProfit {
		t.Errorf("negative-profit step must decrease the cumulative: %v -> %v",
			pts[0].CumulativeProfit, pts[1].CumulativeProfit)
	}
	if pts[2].CumulativeProfit != 40 {
		t.Errorf("cumulative = %v, want 40", pts[2].CumulativeProfit)
	}
}

func TestAnalyzeBranches(t *testing.T) {
	paths := []domain.DepthPath{{
		ProductType: "hd",
		Steps: []domain.DepthStep{
			{StepID: "1", BranchID: "main", Components: []string{"housing"}},
			{StepID: "5_1_1", BranchID: "b1", ParentBranch: "main", Components: []string{"board"}},
			{StepID: "5_2_1", BranchID: "b2", ParentBranch: "main", Components: []string{"battery"}},
		},
	}}
	records := []*domain.ComponentRecord{
		profitRecord("hd", "housing", 40),
		profitRecord("hd", "board", 10),
		profitRecord("hd", "battery", 100),
	}

	a := New(Options{ProfitValueID: profitID, Baselines: map[string]float64{"hd": 120}})
	curves, err := a.Analyze(paths, records)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	curve := curves[0]

	byStep := map[string]domain.DepthPoint{}
	for _, p := range curve.Points {
		byStep[p.StepID] = p
	}

	// both branches start from the shared prefix total of 40
	if got := byStep["5_1_1"].CumulativeProfit; got != 50 {
		t.Errorf("b1 cumulative = %v, want 50", got)
	}
	if got := byStep["5_2_1"].CumulativeProfit; got != 140 {
		t.Errorf("b2 cumulative = %v, want 140", got)
	}

	// b2 crosses the baseline, b1 does not; the branches are independent
	if be := curve.BreakEvenStep["b1"]; be != nil {
		t.Errorf("b1 break-even = %q, want nil", *be)
	}
	if be := curve.BreakEvenStep["b2"]; be == nil || *be != "5_2_1" {
		t.Errorf("b2 break-even = %v, want 5_2_1", be)
	}
}

func TestAnalyzeMeanOverInstances(t *testing.T) {
	// two product instances of the same component average out
	paths := []domain.DepthPath{{
		ProductType: "hd",
		Steps: []domain.DepthStep{
			{StepID: "1", BranchID: "main", Components: []string{"housing"}},
		},
	}}
	records := []*domain.ComponentRecord{
		{RecordID: "r1", ProductType: "hd", ComponentID: "housing", Results: map[string]float64{profitID: 30}},
		{RecordID: "r2", ProductType: "hd", ComponentID: "housing", Results: map[string]float64{profitID: 50}},
	}

	a := New(Options{ProfitValueID: profitID, Baselines: map[string]float64{"hd": 100}})
	curves, err := a.Analyze(paths, records)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if got := curves[0].Points[0].StepProfit; math.Abs(got-40) > 1e-9 {
		t.Errorf("step profit = %v, want mean 40", got)
	}
}

func TestAnalyzeMissingData(t *testing.T) {
	paths := []domain.DepthPath{{
		ProductType: "hd",
		Steps: []domain.DepthStep{
			{StepID: "1", BranchID: "main", Components: []string{"housing"}},
		},
	}}

	a := New(Options{ProfitValueID: profitID, Baselines: map[string]float64{"hd": 100}})

	if _, err := a.Analyze(paths, nil); !errors.Is(err, ErrNoComponentRecords) {
		t.Errorf("error = %v, want %v", err, ErrNoComponentRecords)
	}

	noProfit := []*domain.ComponentRecord{
		{RecordID: "r1", ProductType: "hd", ComponentID: "housing"},
	}
	if _, err := a.Analyze(paths, noProfit); !errors.Is(err, ErrMissingProfitValue) {
		t.Errorf("error = %v, want %v", err, ErrMissingProfitValue)
	}
}

func TestAnalyzeUnknownParent(t *testing.T) {
	paths := []domain.DepthPath{{
		ProductType: "hd",
		Steps: []domain.DepthStep{
			{StepID: "2", BranchID: "b1", ParentBranch: "ghost", Components: []string{"housing"}},
		},
	}}
	records := []*domain.ComponentRecord{profitRecord("hd", "housing", 10)}

	a := New(Options{ProfitValueID: profitID, Baselines: map[string]float64{"hd": 100}})
	if _, err := a.Analyze(paths, records); !errors.Is(err, ErrUnknownParentBranch) {
		t.Errorf("error = %v, want %v", err, ErrUnknownParentBranch)
	}
}

func TestStepIDOrdering(t *testing.T) {
	steps := []stepRef{
		{step: domain.DepthStep{StepID: "10"}, key: parseStepKey("10")},
		{step: domain.DepthStep{StepID: "bad"}, key: parseStepKey("bad")},
		{step: domain.DepthStep{StepID: "5_2_1"}, key: parseStepKey("5_2_1")},
		{step: domain.DepthStep{StepID: "5"}, key: parseStepKey("5")},
		{step: domain.DepthStep{StepID: "5.1.1"}, key: parseStepKey("5.1.1")},
		{step: domain.DepthStep{StepID: "2"}, key: parseStepKey("2")},
	}

	sortSteps(steps)

	want := []string{"2", "5", "5.1.1", "5_2_1", "10", "bad"}
	for i, w := range want {
		if steps[i].step.StepID != w {
			t.Fatalf("order[%d] = %s, want %s", i, steps[i].step.StepID, w)
		}
	}
}
