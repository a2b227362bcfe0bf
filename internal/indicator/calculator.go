// Package indicator applies indicator and value formulas to component
// records. Definitions may reference each other by id; the calculator
// resolves a dependency order up front and rejects cycles.
package indicator

import (
	"fmt"

	"disassembly-doe-lab/internal/domain"
	"disassembly-doe-lab/internal/formula"
)

// Options configures a Calculator.
type Options struct {
	Indicators []domain.Indicator
	Values     []domain.ValueDefinition
	Tables     domain.AttributeTables
	Factors    map[string]domain.Factors // experiment id -> factor tuple

	// BestEffort skips records that fail a lookup and counts them per
	// definition instead of aborting. Strict (false) is the default.
	BestEffort bool
}

// Calculator evaluates all configured definitions over a record batch.
type Calculator struct {
	opts  Options
	order []*definition
	names map[string][]string // definition id -> formula variable names
}

// RunStats summarizes one calculator pass.
type RunStats struct {
	Evaluated int            // (record, definition) evaluations performed
	Skipped   map[string]int // definition id -> records skipped (best-effort)
}

// New builds a Calculator, resolving the evaluation order of all value and
// indicator definitions. Cost-factor values come before aggregate values,
// which come before indicators; id references override that baseline via
// topological sorting.
func New(opts Options) (*Calculator, error) {
	var defs []*definition

	add := func(id, src string, level domain.AggregationLevel, vars map[string]domain.VariableSpec) {
		defs = append(defs, &definition{
			id:         id,
			formulaSrc: src,
			level:      level,
			variables:  vars,
			order:      len(defs),
		})
	}

	for _, v := range opts.Values {
		if v.Category == domain.CategoryCostFactor {
			add(v.ValueID, v.Formula, v.Level, v.Variables)
		}
	}
	for _, v := range opts.Values {
		if v.Category != domain.CategoryCostFactor {
			add(v.ValueID, v.Formula, v.Level, v.Variables)
		}
	}
	for _, ind := range opts.Indicators {
		add(ind.IndicatorID, ind.Formula, ind.Level, ind.Variables)
	}

	order, err := buildOrder(defs)
	if err != nil {
		return nil, err
	}

	names := make(map[string][]string, len(order))
	for _, d := range order {
		vars, err := formula.Variables(d.formulaSrc)
		if err != nil {
			return nil, fmt.Errorf("definition %s: %w", d.id, err)
		}
		names[d.id] = vars
	}

	return &Calculator{opts: opts, order: order, names: names}, nil
}

// Run evaluates every definition against every eligible record, attaching
// results under the definition id. Records are eligible when their level
// matches the definition's aggregation level.
func (c *Calculator) Run(records []*domain.ComponentRecord) (RunStats, error) {
	stats := RunStats{Skipped: make(map[string]int)}

	for _, def := range c.order {
		for _, rec := range records {
			if rec.Level != def.level {
				continue
			}

			ctx, err := c.resolveContext(def, rec)
			if err == nil {
				var v float64
				v, err = formula.Eval(def.formulaSrc, ctx)
				if err == nil {
					rec.SetResult(def.id, v)
					stats.Evaluated++
					continue
				}
			}

			if c.opts.BestEffort {
				stats.Skipped[def.id]++
				continue
			}
			return stats, fmt.Errorf("definition %s, record %s (component %s, step %s): %w",
				def.id, rec.RecordID, rec.ComponentID, rec.StepID, err)
		}
	}
	return stats, nil
}

// resolveContext builds the variable context for one (definition, record)
// pair. Variables with an explicit spec resolve through the attribute
// tables; bare names matching another definition's id resolve from the
// record's prior results. Anything else stays absent and fails evaluation.
func (c *Calculator) resolveContext(def *definition, rec *domain.ComponentRecord) (map[string]float64, error) {
	ctx := make(map[string]float64, len(c.names[def.id]))

	for _, name := range c.names[def.id] {
		if spec, ok := def.variables[name]; ok {
			v, err := c.resolveSpec(spec, rec)
			if err != nil {
				return nil, fmt.Errorf("variable %s: %w", name, err)
			}
			ctx[name] = v
			continue
		}
		if v, ok := rec.Result(name); ok {
			ctx[name] = v
		}
		// unresolved names surface as ErrUnknownVariable from Eval
	}
	return ctx, nil
}

func (c *Calculator) resolveSpec(spec domain.VariableSpec, rec *domain.ComponentRecord) (float64, error) {
	switch spec.Source {
	case domain.SourceRecord:
		v, ok := rec.Attribute(spec.Attribute)
		if !ok {
			return 0, fmt.Errorf("%w: record field %q", ErrMissingAttribute, spec.Attribute)
		}
		return v, nil

	case domain.SourceComponentAttribute:
		comp, ok := c.opts.Tables.Components[rec.ComponentID]
		if !ok {
			return 0, fmt.Errorf("%w: component %q has no attribute entry", ErrMissingAttribute, rec.ComponentID)
		}
		v, ok := comp.Fixed[spec.Attribute]
		if !ok {
			return 0, fmt.Errorf("%w: component %q attribute %q", ErrMissingAttribute, rec.ComponentID, spec.Attribute)
		}
		return v, nil

	case domain.SourceResourceAttribute:
		res, ok := c.opts.Tables.Resources[rec.ResourceID]
		if !ok {
			return 0, fmt.Errorf("%w: resource %q has no attribute entry", ErrMissingAttribute, rec.ResourceID)
		}
		v, ok := res.Rates[spec.Attribute]
		if !ok {
			return 0, fmt.Errorf("%w: resource %q rate %q", ErrMissingAttribute, rec.ResourceID, spec.Attribute)
		}
		return v, nil

	case domain.SourceSystemAttribute:
		factors, ok := c.opts.Factors[rec.ExperimentID]
		if !ok {
			return 0, fmt.Errorf("%w: experiment %q has no factor tuple", ErrMissingAttribute, rec.ExperimentID)
		}
		sys, ok := c.opts.Tables.Systems[factors.SystemID]
		if !ok {
			return 0, fmt.Errorf("%w: system %q has no attribute entry", ErrMissingAttribute, factors.SystemID)
		}
		v, ok := sys.Rates[spec.Attribute]
		if !ok {
			return 0, fmt.Errorf("%w: system %q rate %q", ErrMissingAttribute, factors.SystemID, spec.Attribute)
		}
		return v, nil

	case domain.SourceQualityBand:
		return c.resolveQualityBand(spec, rec)

	default:
		return 0, fmt.Errorf("%w: variable source %q", ErrMissingAttribute, spec.Source)
	}
}

// resolveQualityBand selects the banded attribute value whose quality range
// contains the record's quality. Zero matches and multiple matches are both
// configuration defects.
func (c *Calculator) resolveQualityBand(spec domain.VariableSpec, rec *domain.ComponentRecord) (float64, error) {
	comp, ok := c.opts.Tables.Components[rec.ComponentID]
	if !ok {
		return 0, fmt.Errorf("%w: component %q has no attribute entry", ErrMissingAttribute, rec.ComponentID)
	}
	bands, ok := comp.QualityBanded[spec.Attribute]
	if !ok {
		return 0, fmt.Errorf("%w: component %q banded attribute %q", ErrMissingAttribute, rec.ComponentID, spec.Attribute)
	}

	matched := 0
	var value float64
	for _, b := range bands {
		if rec.Quality >= b.QualityMin && rec.Quality <= b.QualityMax {
			matched++
			value = b.Value
		}
	}
	if matched != 1 {
		return 0, fmt.Errorf("%w: component %q attribute %q, quality %.4f matched %d bands",
			ErrNoMatchingQualityBand, rec.ComponentID, spec.Attribute, rec.Quality, matched)
	}
	return value, nil
}
