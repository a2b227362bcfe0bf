// Package main provides the E2E analysis pipeline entry point.
// Executes: load config + records → calculation → aggregation →
// normalization → ranking → grouping → depth → reporting.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"disassembly-doe-lab/internal/config"
	"disassembly-doe-lab/internal/domain"
	"disassembly-doe-lab/internal/idhash"
	"disassembly-doe-lab/internal/observability"
	"disassembly-doe-lab/internal/orchestrator"
	"disassembly-doe-lab/internal/reporting"
	"disassembly-doe-lab/internal/storage"
	chstore "disassembly-doe-lab/internal/storage/clickhouse"
	"disassembly-doe-lab/internal/storage/memory"
	"disassembly-doe-lab/internal/storage/migrations"
	pgstore "disassembly-doe-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config.yaml", "Run configuration YAML file")
	recordsPath := flag.String("records", "records.csv", "Component record CSV file")
	outputDir := flag.String("output-dir", "docs", "Output directory for generated files")
	postgresDSN := flag.String("postgres-dsn", "", "Optional PostgreSQL connection string for persistence")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "Optional ClickHouse connection string for persistence")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty disables the listener)")
	bestEffort := flag.Bool("best-effort", false, "Skip records that fail a lookup instead of aborting")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	if *metricsAddr != "" {
		go startMetricsServer(*metricsAddr)
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling pipeline...\n", sig)
		cancel()
	}()

	// Load and validate configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating stores: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	// Load component records
	records, err := loadRecords(*recordsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading records: %v\n", err)
		os.Exit(1)
	}
	if err := stores.recordStore.InsertBulk(ctx, records); err != nil {
		fmt.Fprintf(os.Stderr, "Error storing records: %v\n", err)
		os.Exit(1)
	}

	// Run the pipeline
	fmt.Println("=== Analysis Pipeline ===")
	orch := orchestrator.New(orchestrator.Options{
		RecordStore:         stores.recordStore,
		ExperimentStore:     stores.experimentStore,
		GroupStatisticStore: stores.groupStatisticStore,
		DepthPointStore:     stores.depthPointStore,
		Config:              cfg,
		BestEffort:          *bestEffort,
		Verbose:             *verbose,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Pipeline completed:\n")
	fmt.Printf("  Records: %d\n", result.RecordsProcessed)
	fmt.Printf("  Evaluations: %d\n", result.Evaluations)
	fmt.Printf("  Experiments: %d (%d feasible)\n", result.ExperimentsRanked, result.FeasibleCount)
	fmt.Printf("  Group rows: %d\n", result.GroupRowsCreated)
	fmt.Printf("  Depth points: %d\n", result.DepthPoints)
	for _, d := range result.Diagnostics {
		fmt.Printf("  [%s] %s\n", d.Code, d.Message)
	}

	// Generate and write reports
	fmt.Println("\n=== Reporting ===")
	generator := reporting.NewGenerator(
		stores.experimentStore,
		stores.groupStatisticStore,
		stores.depthPointStore,
	).WithDiagnostics(result.Diagnostics)

	report, err := generator.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Report error: %v\n", err)
		os.Exit(1)
	}

	if err := writeReports(*outputDir, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing reports: %v\n", err)
		os.Exit(1)
	}
	observability.RecordReportGenerated()

	fmt.Println("Pipeline completed successfully:")
	fmt.Printf("  - %s/REPORT.md\n", *outputDir)
	fmt.Printf("  - %s/ranking.csv\n", *outputDir)
	fmt.Printf("  - %s/group_statistics.csv\n", *outputDir)
	fmt.Printf("  - %s/depth_curves.csv\n", *outputDir)
}

// startMetricsServer serves health and Prometheus metrics endpoints.
func startMetricsServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	fmt.Printf("Serving metrics on %s\n", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "Metrics server error: %v\n", err)
	}
}

// allStores holds the stores the pipeline writes to.
type allStores struct {
	recordStore         storage.ComponentRecordStore
	experimentStore     storage.ExperimentStore
	groupStatisticStore storage.GroupStatisticStore
	depthPointStore     storage.DepthPointStore
}

// createStores creates memory stores by default, or database stores when
// both DSNs are given. Database migrations are applied on connect.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string) (*allStores, func(), error) {
	if postgresDSN == "" && clickhouseDSN == "" {
		return &allStores{
			recordStore:         memory.NewComponentRecordStore(),
			experimentStore:     memory.NewExperimentStore(),
			groupStatisticStore: memory.NewGroupStatisticStore(),
			depthPointStore:     memory.NewDepthPointStore(),
		}, func() {}, nil
	}

	if postgresDSN == "" || clickhouseDSN == "" {
		return nil, nil, fmt.Errorf("either both or neither of --postgres-dsn and --clickhouse-dsn must be set")
	}

	pgPool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pgPool); err != nil {
		pgPool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pgPool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &allStores{
		recordStore:         pgstore.NewComponentRecordStore(pgPool),
		experimentStore:     pgstore.NewExperimentStore(pgPool),
		groupStatisticStore: chstore.NewGroupStatisticStore(chConn),
		depthPointStore:     chstore.NewDepthPointStore(chConn),
	}
	cleanup := func() {
		pgPool.Close()
		chConn.Close()
	}
	return stores, cleanup, nil
}

// Fixed record CSV columns; every remaining column is a numeric attribute.
var recordColumns = map[string]bool{
	"record_id":     true,
	"experiment_id": true,
	"product_id":    true,
	"product_type":  true,
	"component_id":  true,
	"step_id":       true,
	"resource_id":   true,
	"level":         true,
	"quality":       true,
}

// loadRecords reads component records from a header-driven CSV file.
// An empty record_id column is filled with the deterministic hash.
func loadRecords(path string) ([]*domain.ComponentRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read records header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, required := range []string{"experiment_id", "component_id", "step_id", "level"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("records file missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		if i, ok := index[name]; ok {
			return row[i]
		}
		return ""
	}

	var records []*domain.ComponentRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read records line %d: %w", line, err)
		}

		rec := &domain.ComponentRecord{
			RecordID:     field(row, "record_id"),
			ExperimentID: field(row, "experiment_id"),
			ProductID:    field(row, "product_id"),
			ProductType:  field(row, "product_type"),
			ComponentID:  field(row, "component_id"),
			StepID:       field(row, "step_id"),
			ResourceID:   field(row, "resource_id"),
			Level:        domain.AggregationLevel(field(row, "level")),
			Attributes:   make(map[string]float64),
		}
		if rec.RecordID == "" {
			rec.RecordID = idhash.ComputeRecordID(rec.ExperimentID, rec.ProductID, rec.ComponentID, rec.StepID)
		}

		if q := field(row, "quality"); q != "" {
			rec.Quality, err = strconv.ParseFloat(q, 64)
			if err != nil {
				return nil, fmt.Errorf("records line %d: bad quality %q: %w", line, q, err)
			}
		}

		for i, name := range header {
			if recordColumns[name] || row[i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(row[i], 64)
			if err != nil {
				return nil, fmt.Errorf("records line %d: bad value for %q: %w", line, name, err)
			}
			rec.Attributes[name] = v
		}

		records = append(records, rec)
	}
	return records, nil
}

// writeReports renders and writes all output files.
func writeReports(outputDir string, report *reporting.Report) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := map[string]string{
		"REPORT.md":            reporting.RenderMarkdown(report),
		"ranking.csv":          reporting.RenderRankingCSV(report),
		"group_statistics.csv": reporting.RenderGroupCSV(report.Groups),
		"depth_curves.csv":     reporting.RenderDepthCSV(report.Depth),
	}
	for name, content := range files {
		path := filepath.Join(outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
