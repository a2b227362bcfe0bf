package domain

// GroupVariableType distinguishes raw experimental factors from derived
// categorical variables.
type GroupVariableType string

// GroupVariableType constants
const (
	VariableFactor  GroupVariableType = "factor"
	VariableDerived GroupVariableType = "derived"
)

// Bucket maps a numeric source range onto a categorical label.
// A value v matches when Min <= v <= Max; the first matching bucket wins,
// so adjacent buckets may share a boundary.
type Bucket struct {
	Label string
	Min   float64
	Max   float64
}

// GroupVariable is one grouping dimension: either a raw factor (system,
// portfolio, automation id) or a derived variable mapping a numeric factor
// onto labels via buckets.
type GroupVariable struct {
	Name    string
	Type    GroupVariableType
	Source  string   // factor name: system | portfolio | automation | automation_fraction
	Buckets []Bucket // derived variables only
}

// GroupDefinition partitions the experiment set by one or more grouping
// variables. Each experiment maps to exactly one cell per definition.
type GroupDefinition struct {
	GroupID   string
	Name      string
	Variables []GroupVariable
	Metrics   []string // indicator ids and/or MetricTotalScore
}

// MetricTotalScore selects the SAW total score as a grouping metric.
const MetricTotalScore = "total_score"

// GroupStatistic is one (definition, cell, metric) statistics row.
type GroupStatistic struct {
	GroupID     string
	CellKey     string            // display label, e.g. "SYS01_high"; identity is Variables
	Variables   map[string]string // variable name -> cell value
	IndicatorID string            // indicator id or MetricTotalScore
	Count       int               // experiments contributing to the cell
	Mean        float64
	Std         float64 // sample std; 0 for single-member cells
	Min         float64
	Max         float64
}
