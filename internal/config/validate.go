package config

import (
	"fmt"
	"math"

	"disassembly-doe-lab/internal/domain"
)

// WeightSumTolerance bounds the accepted deviation of the indicator weight
// sum from 1.0 before a diagnostic is raised.
const WeightSumTolerance = 0.001

// Validate checks structural consistency: required fields, enum values,
// unique ids, weight ranges. Weight-sum deviation is deliberately not a
// validation failure; it surfaces through Diagnostics instead.
func (c *Config) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	ids := make(map[string]bool)
	for i, ind := range c.Indicators {
		if ind.ID == "" {
			return fail("indicator %d: missing id", i)
		}
		if ids[ind.ID] {
			return fail("indicator %s: duplicate id", ind.ID)
		}
		ids[ind.ID] = true
		if ind.Formula == "" {
			return fail("indicator %s: missing formula", ind.ID)
		}
		switch domain.Direction(ind.Direction) {
		case domain.DirectionMinimize, domain.DirectionMaximize:
		default:
			return fail("indicator %s: direction %q", ind.ID, ind.Direction)
		}
		if err := validLevel(ind.Level); err != nil {
			return fail("indicator %s: %v", ind.ID, err)
		}
		switch domain.AggregationMode(ind.Mode) {
		case domain.AggregateSum, domain.AggregateMean:
		default:
			return fail("indicator %s: mode %q", ind.ID, ind.Mode)
		}
		if ind.Weight < 0 || ind.Weight > 1 {
			return fail("indicator %s: weight %v outside [0, 1]", ind.ID, ind.Weight)
		}
	}

	for i, v := range c.Values {
		if v.ID == "" {
			return fail("value %d: missing id", i)
		}
		if ids[v.ID] {
			return fail("value %s: duplicate id", v.ID)
		}
		ids[v.ID] = true
		if v.Formula == "" {
			return fail("value %s: missing formula", v.ID)
		}
		if err := validLevel(v.Level); err != nil {
			return fail("value %s: %v", v.ID, err)
		}
		switch domain.ValueCategory(v.Category) {
		case domain.CategoryCostFactor, domain.CategoryAggregate:
		default:
			return fail("value %s: category %q", v.ID, v.Category)
		}
	}

	for _, g := range c.Groups {
		if g.ID == "" {
			return fail("group %q: missing id", g.Name)
		}
		if len(g.Variables) == 0 {
			return fail("group %s: no grouping variables", g.ID)
		}
		for _, v := range g.Variables {
			switch domain.GroupVariableType(v.Type) {
			case domain.VariableFactor:
			case domain.VariableDerived:
				if len(v.Buckets) == 0 {
					return fail("group %s, variable %s: derived variable without buckets", g.ID, v.Name)
				}
			default:
				return fail("group %s, variable %s: type %q", g.ID, v.Name, v.Type)
			}
		}
		for _, m := range g.Metrics {
			if m != domain.MetricTotalScore && !ids[m] {
				return fail("group %s: metric %q names no indicator or value", g.ID, m)
			}
		}
	}

	if len(c.Depth.Paths) > 0 && c.Depth.ProfitValue == "" {
		return fail("depth: missing profit_value")
	}
	if c.Depth.ProfitValue != "" && !ids[c.Depth.ProfitValue] {
		return fail("depth: profit_value %q names no value definition", c.Depth.ProfitValue)
	}
	for _, p := range c.Depth.Paths {
		if p.ProductType == "" {
			return fail("depth path: missing product_type")
		}
		branches := make(map[string]bool)
		for _, s := range p.Steps {
			if s.ID == "" || s.Branch == "" {
				return fail("depth path %s: step needs id and branch", p.ProductType)
			}
			// parent must be declared by an earlier step
			if s.Parent != "" && !branches[s.Parent] {
				return fail("depth path %s, step %s: parent branch %q not declared before it",
					p.ProductType, s.ID, s.Parent)
			}
			branches[s.Branch] = true
			if len(s.Components) == 0 {
				return fail("depth path %s, step %s: no components", p.ProductType, s.ID)
			}
		}
	}

	expIDs := make(map[string]bool)
	for i, e := range c.Experiments {
		if e.System == "" || e.Portfolio == "" {
			return fail("experiment %d: system and portfolio are required", i)
		}
		if e.AutomationFraction < 0 || e.AutomationFraction > 1 {
			return fail("experiment %d: automation_fraction %v outside [0, 1]", i, e.AutomationFraction)
		}
		id := e.EffectiveID()
		if expIDs[id] {
			return fail("experiment %d: duplicate id %s", i, id)
		}
		expIDs[id] = true
	}

	return nil
}

func validLevel(level string) error {
	switch domain.AggregationLevel(level) {
	case domain.LevelComponent, domain.LevelResource, domain.LevelProduct:
		return nil
	}
	return fmt.Errorf("level %q", level)
}

// Diagnostics returns the run-start findings: non-fatal configuration
// conditions reported once per run, never per record.
func (c *Config) Diagnostics() []domain.Diagnostic {
	var out []domain.Diagnostic

	var sum float64
	for _, ind := range c.Indicators {
		sum += ind.Weight
	}
	if len(c.Indicators) > 0 && math.Abs(sum-1.0) > WeightSumTolerance {
		out = append(out, domain.Diagnostic{
			Code:    domain.DiagWeightSumMismatch,
			Message: fmt.Sprintf("indicator weights sum to %.4f, expected 1.0", sum),
		})
	}
	return out
}
