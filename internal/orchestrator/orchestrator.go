// Package orchestrator provides E2E pipeline orchestration.
// It coordinates: calculation → aggregation → normalization → ranking →
// grouping → depth analysis, persisting each stage's output.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"disassembly-doe-lab/internal/aggregate"
	"disassembly-doe-lab/internal/config"
	"disassembly-doe-lab/internal/depth"
	"disassembly-doe-lab/internal/domain"
	"disassembly-doe-lab/internal/grouping"
	"disassembly-doe-lab/internal/indicator"
	"disassembly-doe-lab/internal/normalization"
	"disassembly-doe-lab/internal/observability"
	"disassembly-doe-lab/internal/ranking"
	"disassembly-doe-lab/internal/storage"
)

// Orchestrator coordinates the E2E pipeline execution.
type Orchestrator struct {
	// Stores
	recordStore         storage.ComponentRecordStore
	experimentStore     storage.ExperimentStore
	groupStatisticStore storage.GroupStatisticStore
	depthPointStore     storage.DepthPointStore

	// Config
	cfg *config.Config

	// Options
	bestEffort bool
	verbose    bool
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	RecordStore         storage.ComponentRecordStore
	ExperimentStore     storage.ExperimentStore
	GroupStatisticStore storage.GroupStatisticStore
	DepthPointStore     storage.DepthPointStore

	// Run configuration (already validated by config.Load)
	Config *config.Config

	// Options
	BestEffort bool // skip failing records instead of aborting
	Verbose    bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		recordStore:         opts.RecordStore,
		experimentStore:     opts.ExperimentStore,
		groupStatisticStore: opts.GroupStatisticStore,
		depthPointStore:     opts.DepthPointStore,
		cfg:                 opts.Config,
		bestEffort:          opts.BestEffort,
		verbose:             opts.Verbose,
	}
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	RecordsProcessed  int
	Evaluations       int
	ExperimentsRanked int
	FeasibleCount     int
	GroupRowsCreated  int
	DepthPoints       int
	Diagnostics       []domain.Diagnostic
}

// Run executes the full analysis pipeline.
// Phases:
//  1. Load component records
//  2. Evaluate value and indicator formulas per record
//  3. Aggregate to experiment level
//  4. Normalize and classify feasibility
//  5. Score and rank
//  6. Compute group statistics
//  7. Compute depth/break-even curves
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	started := time.Now()
	result := &RunResult{}
	result.Diagnostics = append(result.Diagnostics, o.cfg.Diagnostics()...)

	indicators := o.cfg.DomainIndicators()
	factors := o.cfg.FactorsByID()

	// Phase 1: Load all component records
	o.log("Phase 1: Loading component records...")
	records, err := o.recordStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load records) failed: %w", err)
	}
	result.RecordsProcessed = len(records)
	observability.DefaultMetrics.RecordsProcessed.Add(float64(len(records)))
	o.log("  Found %d records", len(records))

	if len(records) == 0 {
		return result, nil
	}

	// Phase 2: Formula evaluation
	o.log("Phase 2: Evaluating formulas...")
	stats, err := o.runCalculation(records)
	if err != nil {
		observability.RecordCalculationError("formula")
		observability.RecordPipelineRun("calculation", "error", time.Since(started).Seconds())
		return nil, fmt.Errorf("phase 2 (calculation) failed: %w", err)
	}
	result.Evaluations = stats.Evaluated
	observability.RecordEvaluations(stats.Evaluated)
	result.Diagnostics = append(result.Diagnostics, skippedDiagnostics(stats)...)
	o.log("  Performed %d evaluations (%d definitions skipped records)", stats.Evaluated, len(stats.Skipped))

	// Phase 3: Aggregation
	o.log("Phase 3: Aggregating to experiment level...")
	experiments := aggregate.Aggregate(records, indicators, factors)
	o.log("  Built %d experiments", len(experiments))

	// Phase 4: Normalization and feasibility
	o.log("Phase 4: Normalizing and classifying feasibility...")
	summary := normalization.Normalize(experiments, indicators)
	result.Diagnostics = append(result.Diagnostics, normalizationDiagnostics(summary)...)

	// Phase 5: Ranking
	o.log("Phase 5: Scoring and ranking...")
	ranking.Rank(experiments, indicators)
	result.ExperimentsRanked = len(experiments)
	for _, e := range experiments {
		if e.Feasible {
			result.FeasibleCount++
		}
	}
	observability.UpdateFeasibility(result.FeasibleCount, len(experiments)-result.FeasibleCount)
	o.log("  Ranked %d experiments (%d feasible)", len(experiments), result.FeasibleCount)

	insertStart := time.Now()
	err = o.experimentStore.InsertBulk(ctx, experiments)
	observability.RecordDBQuery("experiments", "insert_bulk", time.Since(insertStart).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("phase 5 (store experiments) failed: %w", err)
	}

	// Phase 6: Group statistics
	o.log("Phase 6: Computing group statistics...")
	groupRows, err := o.runGrouping(ctx, experiments)
	if err != nil {
		return nil, fmt.Errorf("phase 6 (grouping) failed: %w", err)
	}
	result.GroupRowsCreated = groupRows
	o.log("  Created %d group statistics rows", groupRows)

	// Phase 7: Depth analysis
	o.log("Phase 7: Computing depth curves...")
	depthPoints, err := o.runDepth(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("phase 7 (depth analysis) failed: %w", err)
	}
	result.DepthPoints = depthPoints
	o.log("  Created %d depth points", depthPoints)

	observability.RecordPipelineRun("full", "success", time.Since(started).Seconds())
	observability.DefaultMetrics.ExperimentsRanked.Add(float64(result.ExperimentsRanked))
	observability.DefaultMetrics.LastSuccessfulPipeline.SetToCurrentTime()

	o.log("Pipeline completed: %d records, %d experiments, %d group rows, %d depth points",
		result.RecordsProcessed, result.ExperimentsRanked, result.GroupRowsCreated, result.DepthPoints)

	return result, nil
}

// runCalculation evaluates all value and indicator formulas in place.
func (o *Orchestrator) runCalculation(records []*domain.ComponentRecord) (indicator.RunStats, error) {
	calc, err := indicator.New(indicator.Options{
		Indicators: o.cfg.DomainIndicators(),
		Values:     o.cfg.DomainValues(),
		Tables:     o.cfg.DomainTables(),
		Factors:    o.cfg.FactorsByID(),
		BestEffort: o.bestEffort,
	})
	if err != nil {
		return indicator.RunStats{}, err
	}
	return calc.Run(records)
}

// runGrouping computes and stores group statistics.
func (o *Orchestrator) runGrouping(ctx context.Context, experiments []*domain.Experiment) (int, error) {
	defs := o.cfg.DomainGroups()
	if len(defs) == 0 {
		return 0, nil
	}

	rows, err := grouping.Compute(defs, experiments)
	if err != nil {
		return 0, err
	}

	stats := make([]*domain.GroupStatistic, len(rows))
	for i := range rows {
		stats[i] = &rows[i]
	}
	insertStart := time.Now()
	err = o.groupStatisticStore.InsertBulk(ctx, stats)
	observability.RecordDBQuery("group_statistics", "insert_bulk", time.Since(insertStart).Seconds(), err)
	if err != nil {
		return 0, err
	}
	observability.DefaultMetrics.GroupRowsComputed.Add(float64(len(stats)))
	return len(stats), nil
}

// runDepth computes and stores depth/break-even curves.
func (o *Orchestrator) runDepth(ctx context.Context, records []*domain.ComponentRecord) (int, error) {
	paths := o.cfg.DomainDepthPaths()
	if len(paths) == 0 {
		return 0, nil
	}

	analyzer := depth.New(depth.Options{
		ProfitValueID: o.cfg.Depth.ProfitValue,
		Baselines:     o.cfg.DepthBaselines(),
	})

	curves, err := analyzer.Analyze(paths, records)
	if err != nil {
		return 0, err
	}

	var points []*domain.DepthPoint
	for _, curve := range curves {
		for i := range curve.Points {
			points = append(points, &curve.Points[i])
		}
	}
	if len(points) == 0 {
		return 0, nil
	}
	insertStart := time.Now()
	err = o.depthPointStore.InsertBulk(ctx, points)
	observability.RecordDBQuery("depth_points", "insert_bulk", time.Since(insertStart).Seconds(), err)
	if err != nil {
		return 0, err
	}
	observability.DefaultMetrics.DepthPointsComputed.Add(float64(len(points)))
	return len(points), nil
}

// skippedDiagnostics converts best-effort skip counts into diagnostics,
// one per definition, in stable id order.
func skippedDiagnostics(stats indicator.RunStats) []domain.Diagnostic {
	if len(stats.Skipped) == 0 {
		return nil
	}

	ids := make([]string, 0, len(stats.Skipped))
	for id := range stats.Skipped {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	diags := make([]domain.Diagnostic, 0, len(ids))
	for _, id := range ids {
		observability.RecordSkipped(id, stats.Skipped[id])
		diags = append(diags, domain.Diagnostic{
			Code:    domain.DiagSkippedRecords,
			Message: fmt.Sprintf("definition %s: skipped %d records", id, stats.Skipped[id]),
		})
	}
	return diags
}

// normalizationDiagnostics converts batch normalization findings into
// diagnostics.
func normalizationDiagnostics(summary normalization.Summary) []domain.Diagnostic {
	var diags []domain.Diagnostic

	for _, id := range summary.Degenerate {
		diags = append(diags, domain.Diagnostic{
			Code:    domain.DiagDegenerateIndicatorRange,
			Message: fmt.Sprintf("indicator %s: identical raw value across all experiments, normalized to 1.0", id),
		})
	}

	ids := make([]string, 0, len(summary.Violations))
	for id := range summary.Violations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		observability.RecordViolations(id, summary.Violations[id])
		diags = append(diags, domain.Diagnostic{
			Code:    domain.DiagThresholdViolations,
			Message: fmt.Sprintf("indicator %s: %d experiments violate the threshold", id, summary.Violations[id]),
		})
	}

	missing := make([]string, 0, len(summary.Missing))
	for id := range summary.Missing {
		missing = append(missing, id)
	}
	sort.Strings(missing)

	for _, id := range missing {
		diags = append(diags, domain.Diagnostic{
			Code:    domain.DiagMissingRawValues,
			Message: fmt.Sprintf("indicator %s: %d experiments have no raw value", id, summary.Missing[id]),
		})
	}
	return diags
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}
