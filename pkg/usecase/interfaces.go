package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/scantrend/pkg/domain/model"
)

// GitLabClient reads CI pipelines and their jobs
type GitLabClient interface {
	ListPipelines(ctx context.Context, ref string, createdAfter time.Time) ([]model.Pipeline, error)
	ListJobs(ctx context.Context, pipelineID int64) ([]model.Job, error)
}

// locator is implemented by stores that can tell where a key ends up
type locator interface {
	URI(key string) string
}
