package aggregate

import (
	"testing"

	"disassembly-doe-lab/internal/domain"
)

func record(expID, recID string, level domain.AggregationLevel, results map[string]float64) *domain.ComponentRecord {
	return &domain.ComponentRecord{
		RecordID:     recID,
		ExperimentID: expID,
		Level:        level,
		Results:      results,
	}
}

func TestAggregateSumAndMean(t *testing.T) {
	indicators := []domain.Indicator{
		{IndicatorID: "IND01", Level: domain.LevelComponent, Mode: domain.AggregateSum},
		{IndicatorID: "IND02", Level: domain.LevelResource, Mode: domain.AggregateMean},
	}

	records := []*domain.ComponentRecord{
		record("exp1", "r1", domain.LevelComponent, map[string]float64{"IND01": 10.5}),
		record("exp1", "r2", domain.LevelComponent, map[string]float64{"IND01": 4.25}),
		record("exp1", "r3", domain.LevelResource, map[string]float64{"IND02": 0.6}),
		record("exp1", "r4", domain.LevelResource, map[string]float64{"IND02": 0.8}),
		record("exp2", "r5", domain.LevelComponent, map[string]float64{"IND01": 3}),
	}

	factors := map[string]domain.Factors{
		"exp1": {SystemID: "sys1"},
		"exp2": {SystemID: "sys2"},
	}

	exps := Aggregate(records, indicators, factors)
	if len(exps) != 2 {
		t.Fatalf("got %d experiments, want 2", len(exps))
	}

	// sorted by experiment id
	if exps[0].ExperimentID != "exp1" || exps[1].ExperimentID != "exp2" {
		t.Fatalf("experiment order = %s, %s", exps[0].ExperimentID, exps[1].ExperimentID)
	}
	if exps[0].Factors.SystemID != "sys1" {
		t.Errorf("exp1 factors not attached")
	}

	if got := exps[0].Raw["IND01"]; got != 14.75 {
		t.Errorf("exp1 IND01 = %v, want 14.75", got)
	}
	if got := exps[0].Raw["IND02"]; got != 0.7 {
		t.Errorf("exp1 IND02 = %v, want 0.7", got)
	}
	if got := exps[1].Raw["IND01"]; got != 3 {
		t.Errorf("exp2 IND01 = %v, want 3", got)
	}
	if _, ok := exps[1].Raw["IND02"]; ok {
		t.Error("exp2 has no resource records; IND02 must stay absent")
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	indicators := []domain.Indicator{
		{IndicatorID: "IND01", Level: domain.LevelComponent, Mode: domain.AggregateSum},
	}
	factors := map[string]domain.Factors{"exp1": {}}

	forward := []*domain.ComponentRecord{
		record("exp1", "r1", domain.LevelComponent, map[string]float64{"IND01": 1.11}),
		record("exp1", "r2", domain.LevelComponent, map[string]float64{"IND01": 2.22}),
		record("exp1", "r3", domain.LevelComponent, map[string]float64{"IND01": 3.33}),
	}
	reversed := []*domain.ComponentRecord{forward[2], forward[1], forward[0]}

	a := Aggregate(forward, indicators, factors)
	b := Aggregate(reversed, indicators, factors)
	if a[0].Raw["IND01"] != b[0].Raw["IND01"] {
		t.Errorf("aggregation depends on record order: %v vs %v", a[0].Raw["IND01"], b[0].Raw["IND01"])
	}
}

func TestAggregateRounds(t *testing.T) {
	indicators := []domain.Indicator{
		{IndicatorID: "IND01", Level: domain.LevelComponent, Mode: domain.AggregateMean},
	}
	records := []*domain.ComponentRecord{
		record("exp1", "r1", domain.LevelComponent, map[string]float64{"IND01": 1}),
		record("exp1", "r2", domain.LevelComponent, map[string]float64{"IND01": 2}),
		record("exp1", "r3", domain.LevelComponent, map[string]float64{"IND01": 2}),
	}

	exps := Aggregate(records, indicators, map[string]domain.Factors{"exp1": {}})
	if got := exps[0].Raw["IND01"]; got != 1.67 {
		t.Errorf("IND01 = %v, want 1.67", got)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0.125, 0.13},
		{-0.125, -0.13},
		{0, 0},
		{14.749999999, 14.75},
		{3.14159, 3.14},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
