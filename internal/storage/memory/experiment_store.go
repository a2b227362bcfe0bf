package memory

import (
	"context"
	"sort"
	"sync"

	"disassembly-doe-lab/internal/domain"
	"disassembly-doe-lab/internal/storage"
)

// ExperimentStore is an in-memory implementation of storage.ExperimentStore.
type ExperimentStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Experiment // keyed by experiment_id
}

// NewExperimentStore creates a new in-memory experiment store.
func NewExperimentStore() *ExperimentStore {
	return &ExperimentStore{
		data: make(map[string]*domain.Experiment),
	}
}

// Insert adds a new experiment. Returns ErrDuplicateKey if experiment_id exists.
func (s *ExperimentStore) Insert(_ context.Context, e *domain.Experiment) error {
	if e == nil || e.ExperimentID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.ExperimentID]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[e.ExperimentID] = cloneExperiment(e)
	return nil
}

// InsertBulk adds multiple experiments atomically. Fails entire batch on any duplicate.
func (s *ExperimentStore) InsertBulk(_ context.Context, experiments []*domain.Experiment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(experiments))
	for _, e := range experiments {
		if e == nil || e.ExperimentID == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[e.ExperimentID]; dup {
			return storage.ErrDuplicateKey
		}
		if _, exists := s.data[e.ExperimentID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[e.ExperimentID] = struct{}{}
	}

	for _, e := range experiments {
		s.data[e.ExperimentID] = cloneExperiment(e)
	}
	return nil
}

// GetByID retrieves an experiment by its ID. Returns ErrNotFound if not exists.
func (s *ExperimentStore) GetByID(_ context.Context, experimentID string) (*domain.Experiment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[experimentID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneExperiment(e), nil
}

// GetAll retrieves all experiments, ordered by rank_all ASC.
func (s *ExperimentStore) GetAll(_ context.Context) ([]*domain.Experiment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Experiment, 0, len(s.data))
	for _, e := range s.data {
		result = append(result, cloneExperiment(e))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RankAll < result[j].RankAll
	})
	return result, nil
}

// GetFeasible retrieves feasible experiments, ordered by rank_feasible ASC.
func (s *ExperimentStore) GetFeasible(_ context.Context) ([]*domain.Experiment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Experiment
	for _, e := range s.data {
		if e.Feasible {
			result = append(result, cloneExperiment(e))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		ri, rj := result[i].RankFeasible, result[j].RankFeasible
		if ri == nil || rj == nil {
			return rj == nil && ri != nil
		}
		return *ri < *rj
	})
	return result, nil
}

// GetBySystem retrieves all experiments of a given system, ordered by rank_all ASC.
func (s *ExperimentStore) GetBySystem(_ context.Context, systemID string) ([]*domain.Experiment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Experiment
	for _, e := range s.data {
		if e.Factors.SystemID == systemID {
			result = append(result, cloneExperiment(e))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RankAll < result[j].RankAll
	})
	return result, nil
}

// cloneExperiment copies an experiment including its maps and the feasible
// rank pointer, preventing external mutation of stored state.
func cloneExperiment(e *domain.Experiment) *domain.Experiment {
	clone := *e
	if e.Raw != nil {
		clone.Raw = make(map[string]float64, len(e.Raw))
		for k, v := range e.Raw {
			clone.Raw[k] = v
		}
	}
	if e.Normalized != nil {
		clone.Normalized = make(map[string]float64, len(e.Normalized))
		for k, v := range e.Normalized {
			clone.Normalized[k] = v
		}
	}
	if e.Violations != nil {
		clone.Violations = append([]string(nil), e.Violations...)
	}
	if e.RankFeasible != nil {
		r := *e.RankFeasible
		clone.RankFeasible = &r
	}
	return &clone
}

// Verify interface compliance at compile time.
var _ storage.ExperimentStore = (*ExperimentStore)(nil)
