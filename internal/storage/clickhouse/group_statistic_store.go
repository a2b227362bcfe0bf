package clickhouse

import (
	"context"
	"fmt"

	"disassembly-doe-lab/internal/domain"
	"disassembly-doe-lab/internal/storage"
)

// GroupStatisticStore implements storage.GroupStatisticStore using ClickHouse.
type GroupStatisticStore struct {
	conn *Conn
}

// NewGroupStatisticStore creates a new GroupStatisticStore.
func NewGroupStatisticStore(conn *Conn) *GroupStatisticStore {
	return &GroupStatisticStore{conn: conn}
}

// Compile-time interface check.
var _ storage.GroupStatisticStore = (*GroupStatisticStore)(nil)

const groupStatColumns = `
	group_id, cell_key, variables, indicator_id,
	member_count, mean_value, std_value, min_value, max_value
`

// InsertBulk adds multiple statistics rows in one batch.
func (s *GroupStatisticStore) InsertBulk(ctx context.Context, stats []*domain.GroupStatistic) error {
	if len(stats) == 0 {
		return nil
	}
	for _, st := range stats {
		if st == nil || st.GroupID == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO group_statistics (`+groupStatColumns+`)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, st := range stats {
		err = batch.Append(
			st.GroupID,
			st.CellKey,
			st.Variables,
			st.IndicatorID,
			uint32(st.Count),
			st.Mean,
			st.Std,
			st.Min,
			st.Max,
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

// GetByGroup retrieves all rows of a group definition, ordered by cell key and metric.
func (s *GroupStatisticStore) GetByGroup(ctx context.Context, groupID string) ([]*domain.GroupStatistic, error) {
	query := `
		SELECT ` + groupStatColumns + `
		FROM group_statistics
		WHERE group_id = ?
		ORDER BY cell_key ASC, indicator_id ASC
	`

	rows, err := s.conn.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("query by group: %w", err)
	}
	defer rows.Close()

	return scanGroupStatistics(rows)
}

// GetAll retrieves every row, ordered by group, cell key, and metric.
func (s *GroupStatisticStore) GetAll(ctx context.Context) ([]*domain.GroupStatistic, error) {
	query := `
		SELECT ` + groupStatColumns + `
		FROM group_statistics
		ORDER BY group_id ASC, cell_key ASC, indicator_id ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all: %w", err)
	}
	defer rows.Close()

	return scanGroupStatistics(rows)
}

// chRows is the subset of driver rows used for scanning.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanGroupStatistics(rows chRows) ([]*domain.GroupStatistic, error) {
	var stats []*domain.GroupStatistic

	for rows.Next() {
		var st domain.GroupStatistic
		var count uint32

		err := rows.Scan(
			&st.GroupID,
			&st.CellKey,
			&st.Variables,
			&st.IndicatorID,
			&count,
			&st.Mean,
			&st.Std,
			&st.Min,
			&st.Max,
		)
		if err != nil {
			return nil, fmt.Errorf("scan group statistic row: %w", err)
		}

		st.Count = int(count)
		stats = append(stats, &st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group statistic rows: %w", err)
	}

	return stats, nil
}
