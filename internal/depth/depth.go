// Package depth computes cumulative disassembly profit curves per product
// type and locates the break-even step against the system investment
// baseline.
package depth

import (
	"errors"
	"fmt"
	"strings"

	"disassembly-doe-lab/internal/domain"
)

// Analysis errors.
var (
	// ErrMissingProfitValue is returned when a matching record carries no
	// computed profit result.
	ErrMissingProfitValue = errors.New("missing profit value")

	// ErrNoComponentRecords is returned when a configured step releases a
	// component that no record covers. Silent zero-profit steps hide holes
	// in the input data.
	ErrNoComponentRecords = errors.New("no component records")

	// ErrUnknownParentBranch is returned when a step forks from a branch
	// that has not been seen yet.
	ErrUnknownParentBranch = errors.New("unknown parent branch")
)

// Options configures an Analyzer.
type Options struct {
	// ProfitValueID names the per-record value result holding component
	// profit (recovery value minus labor, electricity, and fixed cost).
	ProfitValueID string

	// Baselines maps product type to the system investment baseline the
	// cumulative curve is compared against.
	Baselines map[string]float64
}

// Analyzer walks configured disassembly paths over computed component
// records.
type Analyzer struct {
	opts Options
}

// New returns an Analyzer for the given options.
func New(opts Options) *Analyzer {
	return &Analyzer{opts: opts}
}

type stepRef struct {
	step domain.DepthStep
	key  stepKey
}

// Analyze produces one curve per configured product type. Steps are walked
// in hierarchical step-id order; each branch accumulates from its parent's
// total at the fork point and finds its own break-even independently.
// A branch that never reaches the baseline keeps a nil break-even entry,
// never step zero or the last step.
func (a *Analyzer) Analyze(paths []domain.DepthPath, records []*domain.ComponentRecord) ([]*domain.DepthCurve, error) {
	curves := make([]*domain.DepthCurve, 0, len(paths))
	for _, path := range paths {
		curve, err := a.analyzePath(path, records)
		if err != nil {
			return nil, fmt.Errorf("product type %s: %w", path.ProductType, err)
		}
		curves = append(curves, curve)
	}
	return curves, nil
}

func (a *Analyzer) analyzePath(path domain.DepthPath, records []*domain.ComponentRecord) (*domain.DepthCurve, error) {
	baseline := a.opts.Baselines[path.ProductType]

	curve := &domain.DepthCurve{
		ProductType:   path.ProductType,
		BaselineCost:  baseline,
		BreakEvenStep: make(map[string]*string),
	}

	refs := make([]stepRef, 0, len(path.Steps))
	for _, s := range path.Steps {
		refs = append(refs, stepRef{step: s, key: parseStepKey(s.StepID)})
	}
	sortSteps(refs)

	// branch id -> running cumulative profit
	cumulative := make(map[string]float64)

	for _, ref := range refs {
		s := ref.step

		if _, seen := cumulative[s.BranchID]; !seen {
			if s.ParentBranch == "" {
				cumulative[s.BranchID] = 0
				curve.BreakEvenStep[s.BranchID] = nil
			} else {
				parent, ok := cumulative[s.ParentBranch]
				if !ok {
					return nil, fmt.Errorf("step %s: %w: %q", s.StepID, ErrUnknownParentBranch, s.ParentBranch)
				}
				// branches share the cumulative total up to the fork point,
				// including a break-even already reached on the parent
				cumulative[s.BranchID] = parent
				curve.BreakEvenStep[s.BranchID] = curve.BreakEvenStep[s.ParentBranch]
			}
		}

		profit, err := a.stepProfit(path.ProductType, s, records)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", s.StepID, err)
		}
		cumulative[s.BranchID] += profit

		point := domain.DepthPoint{
			ProductType:      path.ProductType,
			StepID:           s.StepID,
			BranchID:         s.BranchID,
			Components:       strings.Join(s.Components, ","),
			StepProfit:       profit,
			CumulativeProfit: cumulative[s.BranchID],
			BaselineCost:     baseline,
		}

		if curve.BreakEvenStep[s.BranchID] == nil && cumulative[s.BranchID] >= baseline {
			id := s.StepID
			curve.BreakEvenStep[s.BranchID] = &id
			point.BreakEven = true
		}
		curve.Points = append(curve.Points, point)
	}
	return curve, nil
}

// stepProfit sums, over the components released at a step, the mean profit
// of that component across all matching records.
func (a *Analyzer) stepProfit(productType string, s domain.DepthStep, records []*domain.ComponentRecord) (float64, error) {
	var total float64
	for _, comp := range s.Components {
		var sum float64
		count := 0
		for _, rec := range records {
			if rec.ProductType != productType || rec.ComponentID != comp {
				continue
			}
			v, ok := rec.Result(a.opts.ProfitValueID)
			if !ok {
				return 0, fmt.Errorf("%w: record %s, component %s", ErrMissingProfitValue, rec.RecordID, comp)
			}
			sum += v
			count++
		}
		if count == 0 {
			return 0, fmt.Errorf("%w: component %s", ErrNoComponentRecords, comp)
		}
		total += sum / float64(count)
	}
	return total, nil
}
