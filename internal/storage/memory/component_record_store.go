package memory

import (
	"context"
	"sort"
	"sync"

	"disassembly-doe-lab/internal/domain"
	"disassembly-doe-lab/internal/storage"
)

// ComponentRecordStore is an in-memory implementation of storage.ComponentRecordStore.
type ComponentRecordStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ComponentRecord // keyed by record_id
}

// NewComponentRecordStore creates a new in-memory component record store.
func NewComponentRecordStore() *ComponentRecordStore {
	return &ComponentRecordStore{
		data: make(map[string]*domain.ComponentRecord),
	}
}

// Insert adds a new record. Returns ErrDuplicateKey if record_id exists.
func (s *ComponentRecordStore) Insert(_ context.Context, r *domain.ComponentRecord) error {
	if r == nil || r.RecordID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RecordID]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[r.RecordID] = cloneRecord(r)
	return nil
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *ComponentRecordStore) InsertBulk(_ context.Context, records []*domain.ComponentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.RecordID == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[r.RecordID]; dup {
			return storage.ErrDuplicateKey
		}
		if _, exists := s.data[r.RecordID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[r.RecordID] = struct{}{}
	}

	for _, r := range records {
		s.data[r.RecordID] = cloneRecord(r)
	}
	return nil
}

// GetByExperiment retrieves all records of an experiment, ordered by record_id ASC.
func (s *ComponentRecordStore) GetByExperiment(_ context.Context, experimentID string) ([]*domain.ComponentRecord, error) {
	return s.filter(func(r *domain.ComponentRecord) bool {
		return r.ExperimentID == experimentID
	}), nil
}

// GetByProductType retrieves all records of a product type, ordered by record_id ASC.
func (s *ComponentRecordStore) GetByProductType(_ context.Context, productType string) ([]*domain.ComponentRecord, error) {
	return s.filter(func(r *domain.ComponentRecord) bool {
		return r.ProductType == productType
	}), nil
}

// GetAll retrieves every record, ordered by record_id ASC.
func (s *ComponentRecordStore) GetAll(_ context.Context) ([]*domain.ComponentRecord, error) {
	return s.filter(func(*domain.ComponentRecord) bool { return true }), nil
}

func (s *ComponentRecordStore) filter(keep func(*domain.ComponentRecord) bool) []*domain.ComponentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ComponentRecord
	for _, r := range s.data {
		if keep(r) {
			result = append(result, cloneRecord(r))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RecordID < result[j].RecordID
	})
	return result
}

func cloneRecord(r *domain.ComponentRecord) *domain.ComponentRecord {
	clone := *r
	if r.Attributes != nil {
		clone.Attributes = make(map[string]float64, len(r.Attributes))
		for k, v := range r.Attributes {
			clone.Attributes[k] = v
		}
	}
	if r.Results != nil {
		clone.Results = make(map[string]float64, len(r.Results))
		for k, v := range r.Results {
			clone.Results[k] = v
		}
	}
	return &clone
}

// Verify interface compliance at compile time.
var _ storage.ComponentRecordStore = (*ComponentRecordStore)(nil)
