package domain

// QualityBand is one quality range of a quality-dependent component
// attribute, e.g. the reuse / remanufacture / recycling value bands.
// A quality q matches when QualityMin <= q <= QualityMax.
type QualityBand struct {
	Option     string // band label, e.g. "reuse"
	QualityMin float64
	QualityMax float64
	Value      float64
}

// ComponentAttributes holds the external attribute table entry for one
// component: fixed attributes (weight, circularity rating) and
// quality-banded attributes (base value per recovery type).
type ComponentAttributes struct {
	ComponentName string
	Fixed         map[string]float64
	QualityBanded map[string][]QualityBand // attribute name -> bands
}

// ResourceAttributes holds per-station cost rates
// (labor_rate, power_rating, fixed_cost_rate).
type ResourceAttributes struct {
	ResourceID string
	Rates      map[string]float64
}

// SystemAttributes holds per-system rates such as energy_rate and
// system_fixed_cost, consumed by formula evaluation via the "system"
// value source. Depth analysis baselines come from the depth
// configuration per product type, not from this table.
type SystemAttributes struct {
	SystemID string
	Rates    map[string]float64
}

// AttributeTables bundles all external attribute lookups consumed by the
// indicator calculator and the depth analyzer.
type AttributeTables struct {
	Components map[string]ComponentAttributes
	Resources  map[string]ResourceAttributes
	Systems    map[string]SystemAttributes
}
