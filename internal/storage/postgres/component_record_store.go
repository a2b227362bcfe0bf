package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"disassembly-doe-lab/internal/domain"
	"disassembly-doe-lab/internal/storage"
)

// ComponentRecordStore implements storage.ComponentRecordStore using PostgreSQL.
// Attribute and result maps persist as JSONB columns.
type ComponentRecordStore struct {
	pool *Pool
}

// NewComponentRecordStore creates a new ComponentRecordStore.
func NewComponentRecordStore(pool *Pool) *ComponentRecordStore {
	return &ComponentRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ComponentRecordStore = (*ComponentRecordStore)(nil)

const recordColumns = `
	record_id, experiment_id, product_id, product_type, component_id,
	step_id, resource_id, level, quality, attributes, results
`

const insertRecordQuery = `
	INSERT INTO component_records (` + recordColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// Insert adds a new record. Returns ErrDuplicateKey if record_id exists.
func (s *ComponentRecordStore) Insert(ctx context.Context, r *domain.ComponentRecord) error {
	if r == nil || r.RecordID == "" {
		return storage.ErrInvalidInput
	}

	attrJSON, resJSON, err := marshalRecordMaps(r)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, insertRecordQuery,
		r.RecordID,
		r.ExperimentID,
		r.ProductID,
		r.ProductType,
		r.ComponentID,
		r.StepID,
		r.ResourceID,
		string(r.Level),
		r.Quality,
		attrJSON,
		resJSON,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert component record: %w", err)
	}
	return nil
}

// InsertBulk adds multiple records atomically inside one transaction.
// Fails entire batch on any duplicate.
func (s *ComponentRecordStore) InsertBulk(ctx context.Context, records []*domain.ComponentRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		if r == nil || r.RecordID == "" {
			return storage.ErrInvalidInput
		}
		attrJSON, resJSON, err := marshalRecordMaps(r)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, insertRecordQuery,
			r.RecordID,
			r.ExperimentID,
			r.ProductID,
			r.ProductType,
			r.ComponentID,
			r.StepID,
			r.ResourceID,
			string(r.Level),
			r.Quality,
			attrJSON,
			resJSON,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert component record %s: %w", r.RecordID, err)
		}
	}

	return tx.Commit(ctx)
}

// GetByExperiment retrieves all records of an experiment, ordered by record_id ASC.
func (s *ComponentRecordStore) GetByExperiment(ctx context.Context, experimentID string) ([]*domain.ComponentRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM component_records
		WHERE experiment_id = $1
		ORDER BY record_id ASC
	`

	rows, err := s.pool.Query(ctx, query, experimentID)
	if err != nil {
		return nil, fmt.Errorf("get records by experiment: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetByProductType retrieves all records of a product type, ordered by record_id ASC.
func (s *ComponentRecordStore) GetByProductType(ctx context.Context, productType string) ([]*domain.ComponentRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM component_records
		WHERE product_type = $1
		ORDER BY record_id ASC
	`

	rows, err := s.pool.Query(ctx, query, productType)
	if err != nil {
		return nil, fmt.Errorf("get records by product type: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetAll retrieves every record, ordered by record_id ASC.
func (s *ComponentRecordStore) GetAll(ctx context.Context) ([]*domain.ComponentRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM component_records
		ORDER BY record_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func marshalRecordMaps(r *domain.ComponentRecord) (attrs, results []byte, err error) {
	attrs, err = json.Marshal(r.Attributes)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal attributes: %w", err)
	}
	results, err = json.Marshal(r.Results)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal results: %w", err)
	}
	return attrs, results, nil
}

// scanRecords scans multiple rows into a slice of ComponentRecord.
func scanRecords(rows pgx.Rows) ([]*domain.ComponentRecord, error) {
	var records []*domain.ComponentRecord

	for rows.Next() {
		var r domain.ComponentRecord
		var levelStr string
		var attrJSON, resJSON []byte

		err := rows.Scan(
			&r.RecordID,
			&r.ExperimentID,
			&r.ProductID,
			&r.ProductType,
			&r.ComponentID,
			&r.StepID,
			&r.ResourceID,
			&levelStr,
			&r.Quality,
			&attrJSON,
			&resJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}

		r.Level = domain.AggregationLevel(levelStr)
		if err := json.Unmarshal(attrJSON, &r.Attributes); err != nil {
			return nil, fmt.Errorf("unmarshal attributes: %w", err)
		}
		if err := json.Unmarshal(resJSON, &r.Results); err != nil {
			return nil, fmt.Errorf("unmarshal results: %w", err)
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record rows: %w", err)
	}

	return records, nil
}
