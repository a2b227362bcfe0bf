package memory

import (
	"context"
	"sort"
	"sync"

	"disassembly-doe-lab/internal/domain"
	"disassembly-doe-lab/internal/storage"
)

// GroupStatisticStore is an in-memory implementation of storage.GroupStatisticStore.
type GroupStatisticStore struct {
	mu   sync.RWMutex
	data []*domain.GroupStatistic
}

// NewGroupStatisticStore creates a new in-memory group statistic store.
func NewGroupStatisticStore() *GroupStatisticStore {
	return &GroupStatisticStore{}
}

// InsertBulk adds multiple statistics rows.
func (s *GroupStatisticStore) InsertBulk(_ context.Context, stats []*domain.GroupStatistic) error {
	for _, st := range stats {
		if st == nil || st.GroupID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range stats {
		s.data = append(s.data, cloneStatistic(st))
	}
	return nil
}

// GetByGroup retrieves all rows of a group definition, ordered by cell key and metric.
func (s *GroupStatisticStore) GetByGroup(_ context.Context, groupID string) ([]*domain.GroupStatistic, error) {
	return s.filter(func(st *domain.GroupStatistic) bool {
		return st.GroupID == groupID
	}), nil
}

// GetAll retrieves every row, ordered by group, cell key, and metric.
func (s *GroupStatisticStore) GetAll(_ context.Context) ([]*domain.GroupStatistic, error) {
	return s.filter(func(*domain.GroupStatistic) bool { return true }), nil
}

func (s *GroupStatisticStore) filter(keep func(*domain.GroupStatistic) bool) []*domain.GroupStatistic {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.GroupStatistic
	for _, st := range s.data {
		if keep(st) {
			result = append(result, cloneStatistic(st))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].GroupID != result[j].GroupID {
			return result[i].GroupID < result[j].GroupID
		}
		if result[i].CellKey != result[j].CellKey {
			return result[i].CellKey < result[j].CellKey
		}
		return result[i].IndicatorID < result[j].IndicatorID
	})
	return result
}

func cloneStatistic(st *domain.GroupStatistic) *domain.GroupStatistic {
	clone := *st
	if st.Variables != nil {
		clone.Variables = make(map[string]string, len(st.Variables))
		for k, v := range st.Variables {
			clone.Variables[k] = v
		}
	}
	return &clone
}

// Verify interface compliance at compile time.
var _ storage.GroupStatisticStore = (*GroupStatisticStore)(nil)
