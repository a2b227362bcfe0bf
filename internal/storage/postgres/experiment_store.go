package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"disassembly-doe-lab/internal/domain"
	"disassembly-doe-lab/internal/storage"
)

// ExperimentStore implements storage.ExperimentStore using PostgreSQL.
// Indicator value maps persist as JSONB columns.
type ExperimentStore struct {
	pool *Pool
}

// NewExperimentStore creates a new ExperimentStore.
func NewExperimentStore(pool *Pool) *ExperimentStore {
	return &ExperimentStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ExperimentStore = (*ExperimentStore)(nil)

const experimentColumns = `
	experiment_id, system_id, portfolio_id, automation_id, automation_fraction,
	raw_values, normalized_values, violations, feasible,
	total_score, rank_all, rank_feasible
`

// Insert adds a new experiment. Returns ErrDuplicateKey if experiment_id exists.
func (s *ExperimentStore) Insert(ctx context.Context, e *domain.Experiment) error {
	if e == nil || e.ExperimentID == "" {
		return storage.ErrInvalidInput
	}

	rawJSON, normJSON, err := marshalValueMaps(e)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO experiments (` + experimentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = s.pool.Exec(ctx, query,
		e.ExperimentID,
		e.Factors.SystemID,
		e.Factors.PortfolioID,
		e.Factors.AutomationID,
		e.Factors.AutomationFraction,
		rawJSON,
		normJSON,
		e.Violations,
		e.Feasible,
		e.TotalScore,
		e.RankAll,
		e.RankFeasible,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert experiment: %w", err)
	}
	return nil
}

// InsertBulk adds multiple experiments atomically inside one transaction.
// Fails entire batch on any duplicate.
func (s *ExperimentStore) InsertBulk(ctx context.Context, experiments []*domain.Experiment) error {
	if len(experiments) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO experiments (` + experimentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	for _, e := range experiments {
		if e == nil || e.ExperimentID == "" {
			return storage.ErrInvalidInput
		}
		rawJSON, normJSON, err := marshalValueMaps(e)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, query,
			e.ExperimentID,
			e.Factors.SystemID,
			e.Factors.PortfolioID,
			e.Factors.AutomationID,
			e.Factors.AutomationFraction,
			rawJSON,
			normJSON,
			e.Violations,
			e.Feasible,
			e.TotalScore,
			e.RankAll,
			e.RankFeasible,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert experiment %s: %w", e.ExperimentID, err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves an experiment by its ID. Returns ErrNotFound if not exists.
func (s *ExperimentStore) GetByID(ctx context.Context, experimentID string) (*domain.Experiment, error) {
	query := `
		SELECT ` + experimentColumns + `
		FROM experiments
		WHERE experiment_id = $1
	`

	row := s.pool.QueryRow(ctx, query, experimentID)
	e, err := scanExperiment(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get experiment by id: %w", err)
	}
	return e, nil
}

// GetAll retrieves all experiments, ordered by rank_all ASC.
func (s *ExperimentStore) GetAll(ctx context.Context) ([]*domain.Experiment, error) {
	query := `
		SELECT ` + experimentColumns + `
		FROM experiments
		ORDER BY rank_all ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all experiments: %w", err)
	}
	defer rows.Close()

	return scanExperiments(rows)
}

// GetFeasible retrieves feasible experiments, ordered by rank_feasible ASC.
func (s *ExperimentStore) GetFeasible(ctx context.Context) ([]*domain.Experiment, error) {
	query := `
		SELECT ` + experimentColumns + `
		FROM experiments
		WHERE feasible
		ORDER BY rank_feasible ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get feasible experiments: %w", err)
	}
	defer rows.Close()

	return scanExperiments(rows)
}

// GetBySystem retrieves all experiments of a given system, ordered by rank_all ASC.
func (s *ExperimentStore) GetBySystem(ctx context.Context, systemID string) ([]*domain.Experiment, error) {
	query := `
		SELECT ` + experimentColumns + `
		FROM experiments
		WHERE system_id = $1
		ORDER BY rank_all ASC
	`

	rows, err := s.pool.Query(ctx, query, systemID)
	if err != nil {
		return nil, fmt.Errorf("get experiments by system: %w", err)
	}
	defer rows.Close()

	return scanExperiments(rows)
}

func marshalValueMaps(e *domain.Experiment) (raw, normalized []byte, err error) {
	raw, err = json.Marshal(e.Raw)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal raw values: %w", err)
	}
	normalized, err = json.Marshal(e.Normalized)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal normalized values: %w", err)
	}
	return raw, normalized, nil
}

// scanExperiment scans a single row into an Experiment.
func scanExperiment(row pgx.Row) (*domain.Experiment, error) {
	var e domain.Experiment
	var rawJSON, normJSON []byte

	err := row.Scan(
		&e.ExperimentID,
		&e.Factors.SystemID,
		&e.Factors.PortfolioID,
		&e.Factors.AutomationID,
		&e.Factors.AutomationFraction,
		&rawJSON,
		&normJSON,
		&e.Violations,
		&e.Feasible,
		&e.TotalScore,
		&e.RankAll,
		&e.RankFeasible,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(rawJSON, &e.Raw); err != nil {
		return nil, fmt.Errorf("unmarshal raw values: %w", err)
	}
	if err := json.Unmarshal(normJSON, &e.Normalized); err != nil {
		return nil, fmt.Errorf("unmarshal normalized values: %w", err)
	}
	return &e, nil
}

// scanExperiments scans multiple rows into a slice of Experiment.
func scanExperiments(rows pgx.Rows) ([]*domain.Experiment, error) {
	var experiments []*domain.Experiment

	for rows.Next() {
		e, err := scanExperiment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan experiment row: %w", err)
		}
		experiments = append(experiments, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate experiment rows: %w", err)
	}

	return experiments, nil
}
