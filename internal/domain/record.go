package domain

// ComponentRecord is one per-component (or per-resource, per-product)
// simulation result row. Attributes carry the raw simulation fields
// (process_duration, runtime, timestamps); Results accumulates computed
// indicator and value outputs keyed by id.
type ComponentRecord struct {
	RecordID     string // deterministic hash, see idhash
	ExperimentID string
	ProductID    string
	ProductType  string // e.g. "car_hd"
	ComponentID  string // component / step name released at this step
	StepID       string // hierarchical disassembly step id, e.g. "5_1_1"
	ResourceID   string // station that performed the step
	Level        AggregationLevel

	Quality    float64 // component quality in [0, 1]
	Attributes map[string]float64
	Results    map[string]float64
}

// Attribute returns the named raw attribute and whether it is present.
// Absence is a defined failure mode for the caller, never a silent zero.
func (r *ComponentRecord) Attribute(name string) (float64, bool) {
	v, ok := r.Attributes[name]
	return v, ok
}

// Result returns a previously computed indicator or value result.
func (r *ComponentRecord) Result(id string) (float64, bool) {
	v, ok := r.Results[id]
	return v, ok
}

// SetResult attaches a computed result under the given indicator/value id.
func (r *ComponentRecord) SetResult(id string, v float64) {
	if r.Results == nil {
		r.Results = make(map[string]float64)
	}
	r.Results[id] = v
}
