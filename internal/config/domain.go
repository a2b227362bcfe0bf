package config

import (
	"disassembly-doe-lab/internal/domain"
	"disassembly-doe-lab/internal/idhash"
)

// EffectiveID returns the declared experiment id, or the deterministic
// factor hash when none is declared.
func (e ExperimentConfig) EffectiveID() string {
	if e.ID != "" {
		return e.ID
	}
	return idhash.ComputeExperimentID(e.System, e.Portfolio, e.Automation, e.AutomationFraction)
}

// DomainIndicators converts the indicator section.
func (c *Config) DomainIndicators() []domain.Indicator {
	out := make([]domain.Indicator, 0, len(c.Indicators))
	for _, ind := range c.Indicators {
		out = append(out, domain.Indicator{
			IndicatorID: ind.ID,
			Name:        ind.Name,
			Formula:     ind.Formula,
			Unit:        ind.Unit,
			Direction:   domain.Direction(ind.Direction),
			Weight:      ind.Weight,
			Threshold:   ind.Threshold,
			Level:       domain.AggregationLevel(ind.Level),
			Mode:        domain.AggregationMode(ind.Mode),
			Variables:   convertVariables(ind.Variables),
		})
	}
	return out
}

// DomainValues converts the value section.
func (c *Config) DomainValues() []domain.ValueDefinition {
	out := make([]domain.ValueDefinition, 0, len(c.Values))
	for _, v := range c.Values {
		out = append(out, domain.ValueDefinition{
			ValueID:   v.ID,
			Name:      v.Name,
			Formula:   v.Formula,
			Level:     domain.AggregationLevel(v.Level),
			Category:  domain.ValueCategory(v.Category),
			Variables: convertVariables(v.Variables),
		})
	}
	return out
}

func convertVariables(vars map[string]VariableConfig) map[string]domain.VariableSpec {
	if len(vars) == 0 {
		return nil
	}
	out := make(map[string]domain.VariableSpec, len(vars))
	for name, v := range vars {
		out[name] = domain.VariableSpec{
			Source:    domain.VariableSource(v.Source),
			Attribute: v.Attribute,
		}
	}
	return out
}

// DomainTables converts the attribute tables.
func (c *Config) DomainTables() domain.AttributeTables {
	tables := domain.AttributeTables{
		Components: make(map[string]domain.ComponentAttributes, len(c.Attributes.Components)),
		Resources:  make(map[string]domain.ResourceAttributes, len(c.Attributes.Resources)),
		Systems:    make(map[string]domain.SystemAttributes, len(c.Attributes.Systems)),
	}

	for _, comp := range c.Attributes.Components {
		banded := make(map[string][]domain.QualityBand, len(comp.Banded))
		for attr, bands := range comp.Banded {
			converted := make([]domain.QualityBand, 0, len(bands))
			for _, b := range bands {
				converted = append(converted, domain.QualityBand{
					Option:     b.Option,
					QualityMin: b.Min,
					QualityMax: b.Max,
					Value:      b.Value,
				})
			}
			banded[attr] = converted
		}
		tables.Components[comp.Name] = domain.ComponentAttributes{
			ComponentName: comp.Name,
			Fixed:         comp.Fixed,
			QualityBanded: banded,
		}
	}

	for _, r := range c.Attributes.Resources {
		tables.Resources[r.ID] = domain.ResourceAttributes{ResourceID: r.ID, Rates: r.Rates}
	}
	for _, s := range c.Attributes.Systems {
		tables.Systems[s.ID] = domain.SystemAttributes{SystemID: s.ID, Rates: s.Rates}
	}
	return tables
}

// DomainGroups converts the group definitions.
func (c *Config) DomainGroups() []domain.GroupDefinition {
	out := make([]domain.GroupDefinition, 0, len(c.Groups))
	for _, g := range c.Groups {
		vars := make([]domain.GroupVariable, 0, len(g.Variables))
		for _, v := range g.Variables {
			buckets := make([]domain.Bucket, 0, len(v.Buckets))
			for _, b := range v.Buckets {
				buckets = append(buckets, domain.Bucket{Label: b.Label, Min: b.Min, Max: b.Max})
			}
			vars = append(vars, domain.GroupVariable{
				Name:    v.Name,
				Type:    domain.GroupVariableType(v.Type),
				Source:  v.Source,
				Buckets: buckets,
			})
		}
		out = append(out, domain.GroupDefinition{
			GroupID:   g.ID,
			Name:      g.Name,
			Variables: vars,
			Metrics:   g.Metrics,
		})
	}
	return out
}

// DomainDepthPaths converts the depth step sequences.
func (c *Config) DomainDepthPaths() []domain.DepthPath {
	out := make([]domain.DepthPath, 0, len(c.Depth.Paths))
	for _, p := range c.Depth.Paths {
		steps := make([]domain.DepthStep, 0, len(p.Steps))
		for _, s := range p.Steps {
			steps = append(steps, domain.DepthStep{
				StepID:       s.ID,
				BranchID:     s.Branch,
				ParentBranch: s.Parent,
				Components:   s.Components,
			})
		}
		out = append(out, domain.DepthPath{ProductType: p.ProductType, Steps: steps})
	}
	return out
}

// DepthBaselines maps product type to its investment baseline.
func (c *Config) DepthBaselines() map[string]float64 {
	out := make(map[string]float64, len(c.Depth.Paths))
	for _, p := range c.Depth.Paths {
		out[p.ProductType] = p.Baseline
	}
	return out
}

// FactorsByID maps effective experiment id to its factor tuple.
func (c *Config) FactorsByID() map[string]domain.Factors {
	out := make(map[string]domain.Factors, len(c.Experiments))
	for _, e := range c.Experiments {
		out[e.EffectiveID()] = domain.Factors{
			SystemID:           e.System,
			PortfolioID:        e.Portfolio,
			AutomationID:       e.Automation,
			AutomationFraction: e.AutomationFraction,
		}
	}
	return out
}
