package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/interfaces"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
)

// Memory implements Repository interface with in-memory storage
type Memory struct {
	mu       sync.RWMutex
	datasets map[types.RunID]*model.Dataset
}

// NewMemory creates a new memory repository
func NewMemory() interfaces.Repository {
	return &Memory{
		datasets: make(map[types.RunID]*model.Dataset),
	}
}

// PutDataset stores a copy of the dataset
func (m *Memory) PutDataset(ctx context.Context, dataset *model.Dataset) error {
	if err := validateDataset(dataset); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.datasets[dataset.RunID] = dataset.Clone()
	return nil
}

// GetDataset retrieves a dataset by run ID
func (m *Memory) GetDataset(ctx context.Context, id types.RunID) (*model.Dataset, error) {
	if id == "" {
		return nil, goerr.New("run ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ds, ok := m.datasets[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrDatasetNotFound, "no dataset for run", goerr.V("run_id", id))
	}
	return ds.Clone(), nil
}

// GetLatestDataset retrieves the most recently created dataset
func (m *Memory) GetLatestDataset(ctx context.Context) (*model.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sorted := m.sortedLocked()
	if len(sorted) == 0 {
		return nil, goerr.Wrap(model.ErrDatasetNotFound, "repository is empty")
	}
	return sorted[0].Clone(), nil
}

// ListDatasets returns dataset headers, newest first
func (m *Memory) ListDatasets(ctx context.Context, limit int) ([]*model.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sorted := m.sortedLocked()
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	headers := make([]*model.Dataset, len(sorted))
	for i, ds := range sorted {
		headers[i] = ds.Header()
	}
	return headers, nil
}

func (m *Memory) sortedLocked() []*model.Dataset {
	sorted := make([]*model.Dataset, 0, len(m.datasets))
	for _, ds := range m.datasets {
		sorted = append(sorted, ds)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].RunID > sorted[j].RunID
	})
	return sorted
}

// Close does nothing for memory repository
func (m *Memory) Close() error {
	return nil
}

func validateDataset(dataset *model.Dataset) error {
	if dataset == nil {
		return goerr.New("dataset is nil")
	}
	if dataset.RunID == "" {
		return goerr.New("dataset run ID is empty")
	}
	return nil
}
