// Package normalization scales raw indicator values onto a common [.., 1]
// scale across the whole experiment batch and classifies feasibility
// against the declared thresholds.
package normalization

import (
	"disassembly-doe-lab/internal/domain"
)

// Summary reports batch-level normalization findings for the run
// diagnostics.
type Summary struct {
	// Degenerate lists indicators whose raw value was identical across all
	// experiments; their normalized value is fixed at 1.0.
	Degenerate []string
	// Violations counts, per indicator, the experiments violating its
	// threshold.
	Violations map[string]int
	// Missing counts, per indicator, the experiments without a raw value.
	// Such experiments are neither normalized nor threshold-checked for
	// that indicator; the count surfaces the gap instead of hiding it.
	Missing map[string]int
}

// Normalize computes per-indicator min-max normalization over all
// experiments and flags each experiment feasible or infeasible. Both the
// Normalized map and the Violations list are written onto the experiments;
// earlier stage fields are left untouched.
//
// The worst bound of each indicator's scale is capped at its threshold, so
// the threshold itself normalizes to 0 and any violating value comes out
// negative in proportion to its deviation. Values are never clamped: an
// infeasible experiment is penalized, not merely excluded.
func Normalize(experiments []*domain.Experiment, indicators []domain.Indicator) Summary {
	summary := Summary{
		Violations: make(map[string]int),
		Missing:    make(map[string]int),
	}

	for _, ind := range indicators {
		best, worst, seen := observedBounds(experiments, ind)
		if !seen {
			if len(experiments) > 0 {
				summary.Missing[ind.IndicatorID] = len(experiments)
			}
			continue
		}

		// cap the worst bound at the threshold so violators go negative
		switch ind.Direction {
		case domain.DirectionMinimize:
			if ind.Threshold < worst {
				worst = ind.Threshold
			}
		case domain.DirectionMaximize:
			if ind.Threshold > worst {
				worst = ind.Threshold
			}
		}

		span := best - worst
		degenerate := span == 0
		if degenerate {
			summary.Degenerate = append(summary.Degenerate, ind.IndicatorID)
		}

		for _, exp := range experiments {
			raw, ok := exp.Raw[ind.IndicatorID]
			if !ok {
				summary.Missing[ind.IndicatorID]++
				continue
			}
			if exp.Normalized == nil {
				exp.Normalized = make(map[string]float64, len(indicators))
			}

			if degenerate {
				exp.Normalized[ind.IndicatorID] = 1.0
			} else {
				exp.Normalized[ind.IndicatorID] = (raw - worst) / span
			}

			if violates(raw, ind) {
				exp.Violations = append(exp.Violations, ind.IndicatorID)
				summary.Violations[ind.IndicatorID]++
			}
		}
	}

	for _, exp := range experiments {
		exp.Feasible = len(exp.Violations) == 0
	}
	return summary
}

// observedBounds returns the best and worst raw value of ind across the
// batch, oriented by direction. seen is false when no experiment carries a
// raw value for the indicator.
func observedBounds(experiments []*domain.Experiment, ind domain.Indicator) (best, worst float64, seen bool) {
	for _, exp := range experiments {
		raw, ok := exp.Raw[ind.IndicatorID]
		if !ok {
			continue
		}
		if !seen {
			best, worst, seen = raw, raw, true
			continue
		}
		switch ind.Direction {
		case domain.DirectionMinimize:
			if raw < best {
				best = raw
			}
			if raw > worst {
				worst = raw
			}
		default: // maximize
			if raw > best {
				best = raw
			}
			if raw < worst {
				worst = raw
			}
		}
	}
	return best, worst, seen
}

// violates reports whether raw breaks ind's threshold. The boundary value
// itself is feasible for both directions.
func violates(raw float64, ind domain.Indicator) bool {
	switch ind.Direction {
	case domain.DirectionMinimize:
		return raw > ind.Threshold
	case domain.DirectionMaximize:
		return raw < ind.Threshold
	}
	return false
}
