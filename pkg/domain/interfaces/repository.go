package interfaces

import (
	"context"

	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
)

// Repository defines the interface for consolidated dataset persistence
type Repository interface {
	// PutDataset stores a dataset with all its rows, replacing any dataset
	// with the same run ID
	PutDataset(ctx context.Context, dataset *model.Dataset) error
	// GetDataset returns a dataset with its rows. It returns
	// model.ErrDatasetNotFound if no such run exists.
	GetDataset(ctx context.Context, id types.RunID) (*model.Dataset, error)
	// GetLatestDataset returns the most recently created dataset
	GetLatestDataset(ctx context.Context) (*model.Dataset, error)
	// ListDatasets returns dataset headers (without rows), newest first
	ListDatasets(ctx context.Context, limit int) ([]*model.Dataset, error)

	// Close closes the repository connection
	Close() error
}
