package storage

import (
	"context"

	"disassembly-doe-lab/internal/domain"
)

// ExperimentStore provides access to ranked experiment storage.
type ExperimentStore interface {
	// Insert adds a new experiment. Returns ErrDuplicateKey if experiment_id exists.
	Insert(ctx context.Context, e *domain.Experiment) error

	// InsertBulk adds multiple experiments atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, experiments []*domain.Experiment) error

	// GetByID retrieves an experiment by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, experimentID string) (*domain.Experiment, error)

	// GetAll retrieves all experiments, ordered by rank_all ASC.
	GetAll(ctx context.Context) ([]*domain.Experiment, error)

	// GetFeasible retrieves feasible experiments, ordered by rank_feasible ASC.
	GetFeasible(ctx context.Context) ([]*domain.Experiment, error)

	// GetBySystem retrieves all experiments of a given system, ordered by rank_all ASC.
	GetBySystem(ctx context.Context, systemID string) ([]*domain.Experiment, error)
}

// ComponentRecordStore provides access to component record storage.
type ComponentRecordStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if record_id exists.
	Insert(ctx context.Context, r *domain.ComponentRecord) error

	// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, records []*domain.ComponentRecord) error

	// GetByExperiment retrieves all records of an experiment, ordered by record_id ASC.
	GetByExperiment(ctx context.Context, experimentID string) ([]*domain.ComponentRecord, error)

	// GetByProductType retrieves all records of a product type, ordered by record_id ASC.
	GetByProductType(ctx context.Context, productType string) ([]*domain.ComponentRecord, error)

	// GetAll retrieves every record, ordered by record_id ASC.
	GetAll(ctx context.Context) ([]*domain.ComponentRecord, error)
}

// GroupStatisticStore provides access to group statistics storage.
type GroupStatisticStore interface {
	// InsertBulk adds multiple statistics rows.
	InsertBulk(ctx context.Context, stats []*domain.GroupStatistic) error

	// GetByGroup retrieves all rows of a group definition, ordered by cell key and metric.
	GetByGroup(ctx context.Context, groupID string) ([]*domain.GroupStatistic, error)

	// GetAll retrieves every row, ordered by group, cell key, and metric.
	GetAll(ctx context.Context) ([]*domain.GroupStatistic, error)
}

// DepthPointStore provides access to depth/break-even curve storage.
type DepthPointStore interface {
	// InsertBulk adds multiple curve points.
	InsertBulk(ctx context.Context, points []*domain.DepthPoint) error

	// GetByProductType retrieves all points of a product type, ordered by branch and step.
	GetByProductType(ctx context.Context, productType string) ([]*domain.DepthPoint, error)

	// GetAll retrieves every point, ordered by product type, branch, and step.
	GetAll(ctx context.Context) ([]*domain.DepthPoint, error)
}
