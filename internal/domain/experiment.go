package domain

// Factors is the experimental factor tuple of one experiment.
type Factors struct {
	SystemID           string
	PortfolioID        string
	AutomationID       string
	AutomationFraction float64 // share of automated stations in [0, 1]
}

// Experiment is the experiment-level entity enriched stage by stage:
// created by the aggregator (Raw), extended by the normalizer (Normalized,
// Violations, Feasible) and the ranker (TotalScore, RankAll, RankFeasible).
// Each stage only appends; earlier fields are never rewritten.
type Experiment struct {
	ExperimentID string
	Factors      Factors

	// Aggregation stage
	Raw map[string]float64 // indicator id -> aggregated raw value

	// Normalization stage
	Normalized map[string]float64 // indicator id -> normalized value, (-inf, 1]
	Violations []string           // indicator ids whose threshold is violated
	Feasible   bool

	// Ranking stage
	TotalScore   float64
	RankAll      int
	RankFeasible *int // nil for infeasible experiments
}
