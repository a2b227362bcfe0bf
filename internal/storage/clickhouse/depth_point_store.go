package clickhouse

import (
	"context"
	"fmt"

	"disassembly-doe-lab/internal/domain"
	"disassembly-doe-lab/internal/storage"
)

// DepthPointStore implements storage.DepthPointStore using ClickHouse.
type DepthPointStore struct {
	conn *Conn
}

// NewDepthPointStore creates a new DepthPointStore.
func NewDepthPointStore(conn *Conn) *DepthPointStore {
	return &DepthPointStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DepthPointStore = (*DepthPointStore)(nil)

const depthPointColumns = `
	product_type, step_id, branch_id, components,
	step_profit, cumulative_profit, baseline_cost, break_even
`

// InsertBulk adds multiple curve points in one batch.
func (s *DepthPointStore) InsertBulk(ctx context.Context, points []*domain.DepthPoint) error {
	if len(points) == 0 {
		return nil
	}
	for _, p := range points {
		if p == nil || p.ProductType == "" || p.StepID == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO depth_points (`+depthPointColumns+`)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.ProductType,
			p.StepID,
			p.BranchID,
			p.Components,
			p.StepProfit,
			p.CumulativeProfit,
			p.BaselineCost,
			p.BreakEven,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByProductType retrieves all points of a product type, ordered by branch and step.
func (s *DepthPointStore) GetByProductType(ctx context.Context, productType string) ([]*domain.DepthPoint, error) {
	query := `
		SELECT ` + depthPointColumns + `
		FROM depth_points
		WHERE product_type = ?
		ORDER BY branch_id ASC, step_id ASC
	`

	rows, err := s.conn.Query(ctx, query, productType)
	if err != nil {
		return nil, fmt.Errorf("query by product type: %w", err)
	}
	defer rows.Close()

	return scanDepthPoints(rows)
}

// GetAll retrieves every point, ordered by product type, branch, and step.
func (s *DepthPointStore) GetAll(ctx context.Context) ([]*domain.DepthPoint, error) {
	query := `
		SELECT ` + depthPointColumns + `
		FROM depth_points
		ORDER BY product_type ASC, branch_id ASC, step_id ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all: %w", err)
	}
	defer rows.Close()

	return scanDepthPoints(rows)
}

func scanDepthPoints(rows chRows) ([]*domain.DepthPoint, error) {
	var points []*domain.DepthPoint

	for rows.Next() {
		var p domain.DepthPoint
		err := rows.Scan(
			&p.ProductType,
			&p.StepID,
			&p.BranchID,
			&p.Components,
			&p.StepProfit,
			&p.CumulativeProfit,
			&p.BaselineCost,
			&p.BreakEven,
		)
		if err != nil {
			return nil, fmt.Errorf("scan depth point row: %w", err)
		}
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate depth point rows: %w", err)
	}

	return points, nil
}
