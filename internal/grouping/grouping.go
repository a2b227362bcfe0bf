// Package grouping partitions the ranked experiment set by factor and
// derived grouping variables and computes descriptive statistics per cell.
package grouping

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"disassembly-doe-lab/internal/domain"
)

// Grouping errors.
var (
	// ErrUnknownGroupSource is returned when a grouping variable names a
	// factor the experiment tuple does not carry.
	ErrUnknownGroupSource = errors.New("unknown grouping source")

	// ErrNoMatchingBucket is returned when a derived variable's value falls
	// outside every declared bucket.
	ErrNoMatchingBucket = errors.New("no matching bucket")
)

// Compute evaluates every group definition over the experiment set and
// returns one statistics row per (definition, cell, metric). Cells exist
// only for variable combinations actually observed; absent combinations
// contribute no row. Rows come back sorted by group id, cell key, and
// metric id.
func Compute(defs []domain.GroupDefinition, experiments []*domain.Experiment) ([]domain.GroupStatistic, error) {
	var out []domain.GroupStatistic

	for _, def := range defs {
		stats, err := computeDefinition(def, experiments)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", def.GroupID, err)
		}
		out = append(out, stats...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].GroupID != out[j].GroupID {
			return out[i].GroupID < out[j].GroupID
		}
		if out[i].CellKey != out[j].CellKey {
			return out[i].CellKey < out[j].CellKey
		}
		return out[i].IndicatorID < out[j].IndicatorID
	})
	return out, nil
}

type cell struct {
	key       string // display label, underscore-joined
	variables map[string]string
	members   []*domain.Experiment
}

func computeDefinition(def domain.GroupDefinition, experiments []*domain.Experiment) ([]domain.GroupStatistic, error) {
	// Cell identity is the ordered label tuple. Labels may themselves
	// contain underscores, so the identity key joins on a separator that
	// cannot occur in a label; the underscore join is display only.
	cells := make(map[string]*cell)

	for _, exp := range experiments {
		labels := make(map[string]string, len(def.Variables))
		parts := make([]string, 0, len(def.Variables))
		for _, v := range def.Variables {
			label, err := VariableLabel(v, exp.Factors)
			if err != nil {
				return nil, fmt.Errorf("experiment %s, variable %s: %w", exp.ExperimentID, v.Name, err)
			}
			labels[v.Name] = label
			parts = append(parts, label)
		}
		id := strings.Join(parts, "\x1f")

		c, ok := cells[id]
		if !ok {
			c = &cell{key: strings.Join(parts, "_"), variables: labels}
			cells[id] = c
		}
		c.members = append(c.members, exp)
	}

	ids := make([]string, 0, len(cells))
	for id := range cells {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []domain.GroupStatistic
	for _, id := range ids {
		c := cells[id]
		for _, metric := range def.Metrics {
			values := metricValues(metric, c.members)
			if len(values) == 0 {
				continue
			}
			mean, std, min, max := describe(values)
			out = append(out, domain.GroupStatistic{
				GroupID:     def.GroupID,
				CellKey:     c.key,
				Variables:   c.variables,
				IndicatorID: metric,
				Count:       len(values),
				Mean:        mean,
				Std:         std,
				Min:         min,
				Max:         max,
			})
		}
	}
	return out, nil
}

// VariableLabel maps one experiment onto its cell value for a grouping
// variable. Pure function of (variable, factors); derived variables bucket
// the automation fraction through the declared cut points, first match
// wins.
func VariableLabel(v domain.GroupVariable, f domain.Factors) (string, error) {
	if v.Type == domain.VariableDerived {
		raw, err := numericFactor(v.Source, f)
		if err != nil {
			return "", err
		}
		for _, b := range v.Buckets {
			if raw >= b.Min && raw <= b.Max {
				return b.Label, nil
			}
		}
		return "", fmt.Errorf("%w: %s = %s", ErrNoMatchingBucket, v.Source,
			strconv.FormatFloat(raw, 'f', -1, 64))
	}

	switch v.Source {
	case "system":
		return f.SystemID, nil
	case "portfolio":
		return f.PortfolioID, nil
	case "automation":
		return f.AutomationID, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGroupSource, v.Source)
	}
}

func numericFactor(source string, f domain.Factors) (float64, error) {
	switch source {
	case "automation_fraction":
		return f.AutomationFraction, nil
	default:
		return 0, fmt.Errorf("%w: %q is not numeric", ErrUnknownGroupSource, source)
	}
}

func metricValues(metric string, members []*domain.Experiment) []float64 {
	values := make([]float64, 0, len(members))
	for _, exp := range members {
		if metric == domain.MetricTotalScore {
			values = append(values, exp.TotalScore)
			continue
		}
		if v, ok := exp.Raw[metric]; ok {
			values = append(values, v)
		}
	}
	return values
}

// describe returns mean, sample standard deviation, min, and max.
// A single observation has std 0, never NaN.
func describe(values []float64) (mean, std, min, max float64) {
	min, max = values[0], values[0]
	var sum float64
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean = sum / float64(len(values))

	if len(values) > 1 {
		var sq float64
		for _, v := range values {
			d := v - mean
			sq += d * d
		}
		std = math.Sqrt(sq / float64(len(values)-1))
	}
	return mean, std, min, max
}
