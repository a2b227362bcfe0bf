package memory

import (
	"context"
	"sort"
	"sync"

	"disassembly-doe-lab/internal/domain"
	"disassembly-doe-lab/internal/storage"
)

// DepthPointStore is an in-memory implementation of storage.DepthPointStore.
type DepthPointStore struct {
	mu   sync.RWMutex
	data []*domain.DepthPoint
}

// NewDepthPointStore creates a new in-memory depth point store.
func NewDepthPointStore() *DepthPointStore {
	return &DepthPointStore{}
}

// InsertBulk adds multiple curve points.
func (s *DepthPointStore) InsertBulk(_ context.Context, points []*domain.DepthPoint) error {
	for _, p := range points {
		if p == nil || p.ProductType == "" || p.StepID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		clone := *p
		s.data = append(s.data, &clone)
	}
	return nil
}

// GetByProductType retrieves all points of a product type, ordered by branch and step.
func (s *DepthPointStore) GetByProductType(_ context.Context, productType string) ([]*domain.DepthPoint, error) {
	return s.filter(func(p *domain.DepthPoint) bool {
		return p.ProductType == productType
	}), nil
}

// GetAll retrieves every point, ordered by product type, branch, and step.
func (s *DepthPointStore) GetAll(_ context.Context) ([]*domain.DepthPoint, error) {
	return s.filter(func(*domain.DepthPoint) bool { return true }), nil
}

func (s *DepthPointStore) filter(keep func(*domain.DepthPoint) bool) []*domain.DepthPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DepthPoint
	for _, p := range s.data {
		if keep(p) {
			clone := *p
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ProductType != result[j].ProductType {
			return result[i].ProductType < result[j].ProductType
		}
		if result[i].BranchID != result[j].BranchID {
			return result[i].BranchID < result[j].BranchID
		}
		return result[i].StepID < result[j].StepID
	})
	return result
}

// Verify interface compliance at compile time.
var _ storage.DepthPointStore = (*DepthPointStore)(nil)
