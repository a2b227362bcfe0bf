package domain

// Direction declares whether lower or higher raw values are better.
type Direction string

// Direction constants
const (
	DirectionMinimize Direction = "minimize"
	DirectionMaximize Direction = "maximize"
)

// AggregationLevel selects which record table an indicator is computed over.
type AggregationLevel string

// AggregationLevel constants
const (
	LevelComponent AggregationLevel = "component"
	LevelResource  AggregationLevel = "resource"
	LevelProduct   AggregationLevel = "product"
)

// AggregationMode declares how record-level values collapse to experiment level.
type AggregationMode string

// AggregationMode constants
const (
	AggregateSum  AggregationMode = "sum"
	AggregateMean AggregationMode = "mean"
)

// VariableSource declares where a formula variable is resolved from.
type VariableSource string

// VariableSource constants
const (
	// SourceRecord reads a numeric field directly from the record.
	SourceRecord VariableSource = "record"
	// SourceComponentAttribute looks up a fixed component attribute by component name.
	SourceComponentAttribute VariableSource = "component_attribute"
	// SourceResourceAttribute looks up a resource rate by the record's resource id.
	SourceResourceAttribute VariableSource = "resource_attribute"
	// SourceSystemAttribute looks up a system rate by the experiment's system id.
	SourceSystemAttribute VariableSource = "system_attribute"
	// SourceQualityBand selects a quality-banded component attribute using the
	// record's quality value. Exactly one band must match.
	SourceQualityBand VariableSource = "quality_band"
)

// VariableSpec describes how one formula variable is resolved for a record.
type VariableSpec struct {
	Source    VariableSource
	Attribute string // record field, attribute key, or banded attribute name
}

// Indicator is one weighted performance indicator definition.
// Weights are consumed pre-computed (AHP upstream); the pipeline never
// renormalizes them.
type Indicator struct {
	IndicatorID string
	Name        string
	Formula     string
	Unit        string
	Direction   Direction
	Weight      float64
	Threshold   float64
	Level       AggregationLevel
	Mode        AggregationMode
	Variables   map[string]VariableSpec
}

// ValueDefinition is a supporting economic calculation (labor cost,
// electricity cost, revenue, profit) computed per record with the same
// formula machinery as indicators. Values carry no weight or threshold and
// never enter normalization; indicators and the depth analyzer reference
// them by id.
type ValueDefinition struct {
	ValueID   string
	Name      string
	Formula   string
	Level     AggregationLevel
	Category  ValueCategory
	Variables map[string]VariableSpec
}

// ValueCategory orders value evaluation: cost factors before aggregates.
type ValueCategory string

// ValueCategory constants
const (
	CategoryCostFactor ValueCategory = "cost_factor"
	CategoryAggregate  ValueCategory = "aggregate"
)
