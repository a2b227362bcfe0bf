package reporting

import (
	"time"

	"disassembly-doe-lab/internal/domain"
)

// Report represents the full run report structure.
type Report struct {
	// Metadata
	GeneratedAt     time.Time
	ExperimentCount int
	FeasibleCount   int

	// Indicator ids present in the batch, sorted, used as table columns.
	Indicators []string

	// Ranking (sorted by rank_all)
	Ranking []RankingRow

	// Score statistics over the feasible set
	ScoreStats ScoreStatistics

	// Leaders and laggards of the feasible ranking
	TopFeasible    []RankingRow
	BottomFeasible []RankingRow

	// Group statistics (sorted by group_id, cell_key, indicator_id)
	Groups []GroupRow

	// Depth/break-even curves (sorted by product_type, branch_id, step_id)
	Depth []DepthRow

	// Non-fatal findings of the run that produced the data
	Diagnostics []domain.Diagnostic
}

// RankingRow represents one experiment in the ranking table.
type RankingRow struct {
	ExperimentID       string
	SystemID           string
	PortfolioID        string
	AutomationID       string
	AutomationFraction float64
	Raw                map[string]float64
	Normalized         map[string]float64
	Feasible           bool
	Violations         []string
	TotalScore         float64
	RankAll            int
	RankFeasible       *int
}

// ScoreStatistics describes the total score distribution of the feasible set.
type ScoreStatistics struct {
	Count int
	Mean  float64
	Std   float64 // sample std; 0 for a single feasible experiment
	Min   float64
	Max   float64
}

// GroupRow represents one row in a group statistics table.
type GroupRow struct {
	GroupID     string
	CellKey     string
	IndicatorID string
	Count       int
	Mean        float64
	Std         float64
	Min         float64
	Max         float64
}

// DepthRow represents one step of a depth/break-even curve.
type DepthRow struct {
	ProductType      string
	StepID           string
	BranchID         string
	Components       string
	StepProfit       float64
	CumulativeProfit float64
	BaselineCost     float64
	BreakEven        bool
}
