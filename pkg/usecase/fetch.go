package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/interfaces"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/utils/telemetry"
)

const (
	// DefaultFetchPause is the wait between two pipelines' job requests
	DefaultFetchPause = 100 * time.Millisecond

	fetchTimestampLayout = "2006-01-02-150405"
)

// Fetcher exports recent CI pipelines of one ref with their jobs nested
type Fetcher struct {
	client  GitLabClient
	stores  []interfaces.BlobStore
	project string
	ref     string
	days    int
	pause   time.Duration
	now     func() time.Time
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithFetchPause overrides the pause between pipelines
func WithFetchPause(d time.Duration) FetcherOption {
	return func(x *Fetcher) {
		x.pause = d
	}
}

// WithFetchClock overrides the clock
func WithFetchClock(now func() time.Time) FetcherOption {
	return func(x *Fetcher) {
		x.now = now
	}
}

// WithFetchStore adds a store receiving the export
func WithFetchStore(store interfaces.BlobStore) FetcherOption {
	return func(x *Fetcher) {
		x.stores = append(x.stores, store)
	}
}

// NewFetcher creates a Fetcher
func NewFetcher(client GitLabClient, project, ref string, days int, opts ...FetcherOption) *Fetcher {
	x := &Fetcher{
		client:  client,
		project: project,
		ref:     ref,
		days:    days,
		pause:   DefaultFetchPause,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// FileName returns the export file name for a timestamp
func (x *Fetcher) FileName(at time.Time) string {
	project := strings.ReplaceAll(x.project, "%2F", "-")
	project = strings.ReplaceAll(project, "/", "-")
	return fmt.Sprintf("GitLab_API-Pipelines-With-Jobs-%s-%dDays-%s-%s.json",
		strings.ToUpper(x.ref), x.days, project, at.Format(fetchTimestampLayout))
}

// Fetch lists the pipelines of the last N days, attaches the jobs of each
// and writes the result to every store. A pipeline whose jobs cannot be read
// gets an empty job list. It returns the file name, or "" when there was no
// pipeline to export.
func (x *Fetcher) Fetch(ctx context.Context) (_ string, err error) {
	ctx, span := telemetry.Start(ctx, "fetch.pipelines")
	defer func() { telemetry.End(span, err) }()

	logger := ctxlog.From(ctx)
	now := x.now()
	createdAfter := now.UTC().AddDate(0, 0, -x.days)

	pipelines, err := x.client.ListPipelines(ctx, x.ref, createdAfter)
	if err != nil {
		return "", goerr.Wrap(err, "failed to fetch pipelines",
			goerr.V("project", x.project),
			goerr.V("ref", x.ref))
	}
	logger.Info("pipelines fetched", "count", len(pipelines), "ref", x.ref, "created_after", createdAfter)

	if len(pipelines) == 0 {
		logger.Warn("no pipeline found", "ref", x.ref, "days", x.days)
		return "", nil
	}

	for i := range pipelines {
		jobs, err := x.client.ListJobs(ctx, pipelines[i].ID)
		if err != nil {
			if ctx.Err() != nil {
				return "", goerr.Wrap(ctx.Err(), "fetch canceled")
			}
			logger.Warn("failed to fetch jobs, keeping empty list",
				"pipeline_id", pipelines[i].ID,
				"error", err)
		}
		if jobs == nil {
			jobs = []model.Job{}
		}
		pipelines[i].Jobs = jobs
		logger.Debug("jobs fetched",
			"pipeline", fmt.Sprintf("%d/%d", i+1, len(pipelines)),
			"pipeline_id", pipelines[i].ID,
			"jobs", len(jobs))

		if i < len(pipelines)-1 && x.pause > 0 {
			select {
			case <-ctx.Done():
				return "", goerr.Wrap(ctx.Err(), "fetch canceled")
			case <-time.After(x.pause):
			}
		}
	}

	data, err := json.MarshalIndent(pipelines, "", "    ")
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode pipelines")
	}

	name := x.FileName(now)
	for _, store := range x.stores {
		if err := store.Put(ctx, name, data); err != nil {
			return "", goerr.Wrap(err, "failed to store pipelines", goerr.V("file", name))
		}
		if loc, ok := store.(locator); ok {
			logger.Info("pipelines exported", "location", loc.URI(name))
		}
	}

	return name, nil
}
