// Package aggregate rolls record-level indicator results up to experiment
// level, one raw value per (experiment, indicator) pair.
package aggregate

import (
	"math"
	"sort"

	"disassembly-doe-lab/internal/domain"
)

// Aggregate collapses the record results of each indicator into one raw
// value per experiment using the indicator's aggregation mode, and returns
// the experiment entities with Raw populated. Sum and mean are both
// order-independent, so record order never changes the outcome.
//
// Experiments with no eligible record for an indicator simply carry no raw
// value for it; absence is left visible rather than zero-filled.
func Aggregate(
	records []*domain.ComponentRecord,
	indicators []domain.Indicator,
	factors map[string]domain.Factors,
) []*domain.Experiment {
	type accum struct {
		sum   float64
		count int
	}

	// (experiment id, indicator id) -> accumulator
	byExp := make(map[string]map[string]*accum)
	for _, rec := range records {
		for _, ind := range indicators {
			if rec.Level != ind.Level {
				continue
			}
			v, ok := rec.Result(ind.IndicatorID)
			if !ok {
				continue
			}
			inds, ok := byExp[rec.ExperimentID]
			if !ok {
				inds = make(map[string]*accum)
				byExp[rec.ExperimentID] = inds
			}
			a, ok := inds[ind.IndicatorID]
			if !ok {
				a = &accum{}
				inds[ind.IndicatorID] = a
			}
			a.sum += v
			a.count++
		}
	}

	experiments := make([]*domain.Experiment, 0, len(byExp))
	for expID, inds := range byExp {
		exp := &domain.Experiment{
			ExperimentID: expID,
			Factors:      factors[expID],
			Raw:          make(map[string]float64, len(inds)),
		}
		for _, ind := range indicators {
			a, ok := inds[ind.IndicatorID]
			if !ok {
				continue
			}
			v := a.sum
			if ind.Mode == domain.AggregateMean {
				v = a.sum / float64(a.count)
			}
			exp.Raw[ind.IndicatorID] = Round2(v)
		}
		experiments = append(experiments, exp)
	}

	sort.Slice(experiments, func(i, j int) bool {
		return experiments[i].ExperimentID < experiments[j].ExperimentID
	})
	return experiments
}

// Round2 rounds to the 2-decimal precision used by all downstream tables.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
