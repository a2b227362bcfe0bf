// Package ranking computes the SAW total score and the two rank orderings
// over a normalized experiment batch.
package ranking

import (
	"sort"

	"disassembly-doe-lab/internal/domain"
)

// Rank computes each experiment's weighted total score and assigns
// rank-all over every experiment plus rank-feasible over the feasible
// subset. Both orderings sort by score descending with ties broken by
// experiment id ascending; rank-feasible is renumbered densely from 1 and
// stays nil for infeasible experiments.
//
// Weights are used exactly as declared. Renormalizing a weight set that
// does not sum to 1.0 is the caller's decision, surfaced as a run-start
// diagnostic, never applied silently here.
func Rank(experiments []*domain.Experiment, indicators []domain.Indicator) {
	for _, exp := range experiments {
		exp.TotalScore = Score(exp, indicators)
	}

	ordered := make([]*domain.Experiment, len(experiments))
	copy(ordered, experiments)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].TotalScore != ordered[j].TotalScore {
			return ordered[i].TotalScore > ordered[j].TotalScore
		}
		return ordered[i].ExperimentID < ordered[j].ExperimentID
	})

	feasibleRank := 0
	for i, exp := range ordered {
		exp.RankAll = i + 1
		if exp.Feasible {
			feasibleRank++
			r := feasibleRank
			exp.RankFeasible = &r
		}
	}
}

// Score is the Simple Additive Weighting sum over an experiment's
// normalized indicator values. Indicators without a normalized value for
// the experiment contribute nothing.
func Score(exp *domain.Experiment, indicators []domain.Indicator) float64 {
	var total float64
	for _, ind := range indicators {
		if v, ok := exp.Normalized[ind.IndicatorID]; ok {
			total += ind.Weight * v
		}
	}
	return total
}
