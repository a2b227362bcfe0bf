package reporting

import (
	"context"
	"math"
	"sort"
	"time"

	"disassembly-doe-lab/internal/domain"
	"disassembly-doe-lab/internal/storage"
)

// defaultTopN bounds the leader and laggard tables.
const defaultTopN = 5

// Generator produces reports from stored data.
type Generator struct {
	experimentStore storage.ExperimentStore
	groupStore      storage.GroupStatisticStore
	depthStore      storage.DepthPointStore
	diagnostics     []domain.Diagnostic
	topN            int
	now             func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(
	experimentStore storage.ExperimentStore,
	groupStore storage.GroupStatisticStore,
	depthStore storage.DepthPointStore,
) *Generator {
	return &Generator{
		experimentStore: experimentStore,
		groupStore:      groupStore,
		depthStore:      depthStore,
		topN:            defaultTopN,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithDiagnostics attaches run diagnostics to the generated report.
func (g *Generator) WithDiagnostics(diags []domain.Diagnostic) *Generator {
	g.diagnostics = diags
	return g
}

// WithTopN sets the size of the leader and laggard tables.
func (g *Generator) WithTopN(n int) *Generator {
	if n > 0 {
		g.topN = n
	}
	return g
}

// Generate produces a complete run report.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	experiments, err := g.experimentStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	ranking := make([]RankingRow, len(experiments))
	feasibleCount := 0
	for i, e := range experiments {
		ranking[i] = rankingRow(e)
		if e.Feasible {
			feasibleCount++
		}
	}

	groups, err := g.generateGroupRows(ctx)
	if err != nil {
		return nil, err
	}

	depthRows, err := g.generateDepthRows(ctx)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt:     g.now(),
		ExperimentCount: len(experiments),
		FeasibleCount:   feasibleCount,
		Indicators:      indicatorColumns(experiments),
		Ranking:         ranking,
		ScoreStats:      scoreStatistics(experiments),
		TopFeasible:     feasibleSlice(ranking, g.topN, false),
		BottomFeasible:  feasibleSlice(ranking, g.topN, true),
		Groups:          groups,
		Depth:           depthRows,
		Diagnostics:     g.diagnostics,
	}, nil
}

func rankingRow(e *domain.Experiment) RankingRow {
	return RankingRow{
		ExperimentID:       e.ExperimentID,
		SystemID:           e.Factors.SystemID,
		PortfolioID:        e.Factors.PortfolioID,
		AutomationID:       e.Factors.AutomationID,
		AutomationFraction: e.Factors.AutomationFraction,
		Raw:                e.Raw,
		Normalized:         e.Normalized,
		Feasible:           e.Feasible,
		Violations:         e.Violations,
		TotalScore:         e.TotalScore,
		RankAll:            e.RankAll,
		RankFeasible:       e.RankFeasible,
	}
}

// indicatorColumns collects the union of indicator ids seen across the
// batch, sorted for stable column order.
func indicatorColumns(experiments []*domain.Experiment) []string {
	seen := make(map[string]struct{})
	for _, e := range experiments {
		for id := range e.Raw {
			seen[id] = struct{}{}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// scoreStatistics describes the total score distribution of the feasible
// experiments.
func scoreStatistics(experiments []*domain.Experiment) ScoreStatistics {
	var scores []float64
	for _, e := range experiments {
		if e.Feasible {
			scores = append(scores, e.TotalScore)
		}
	}
	if len(scores) == 0 {
		return ScoreStatistics{}
	}

	stats := ScoreStatistics{Count: len(scores), Min: scores[0], Max: scores[0]}
	sum := 0.0
	for _, s := range scores {
		sum += s
		if s < stats.Min {
			stats.Min = s
		}
		if s > stats.Max {
			stats.Max = s
		}
	}
	stats.Mean = sum / float64(len(scores))

	if len(scores) > 1 {
		var sq float64
		for _, s := range scores {
			d := s - stats.Mean
			sq += d * d
		}
		stats.Std = math.Sqrt(sq / float64(len(scores)-1))
	}
	return stats
}

// feasibleSlice returns up to n feasible rows from the head (or tail) of
// the ranking, which is already ordered by rank.
func feasibleSlice(ranking []RankingRow, n int, fromTail bool) []RankingRow {
	var feasible []RankingRow
	for _, r := range ranking {
		if r.Feasible {
			feasible = append(feasible, r)
		}
	}
	if len(feasible) <= n {
		return feasible
	}
	if fromTail {
		return feasible[len(feasible)-n:]
	}
	return feasible[:n]
}

func (g *Generator) generateGroupRows(ctx context.Context) ([]GroupRow, error) {
	stats, err := g.groupStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]GroupRow, len(stats))
	for i, st := range stats {
		rows[i] = GroupRow{
			GroupID:     st.GroupID,
			CellKey:     st.CellKey,
			IndicatorID: st.IndicatorID,
			Count:       st.Count,
			Mean:        st.Mean,
			Std:         st.Std,
			Min:         st.Min,
			Max:         st.Max,
		}
	}
	return rows, nil
}

func (g *Generator) generateDepthRows(ctx context.Context) ([]DepthRow, error) {
	points, err := g.depthStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]DepthRow, len(points))
	for i, p := range points {
		rows[i] = DepthRow{
			ProductType:      p.ProductType,
			StepID:           p.StepID,
			BranchID:         p.BranchID,
			Components:       p.Components,
			StepProfit:       p.StepProfit,
			CumulativeProfit: p.CumulativeProfit,
			BaselineCost:     p.BaselineCost,
			BreakEven:        p.BreakEven,
		}
	}
	return rows, nil
}
