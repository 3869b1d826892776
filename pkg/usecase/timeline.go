package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/interfaces"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
	"github.com/secmon-lab/scantrend/pkg/utils/async"
	"github.com/secmon-lab/scantrend/pkg/utils/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Timeline resolves the commits of a merge set and places them in periods
type Timeline struct {
	mergeSet  *MergeSet
	resolver  interfaces.CommitResolver
	bucketing model.Bucketing
}

// NewTimeline creates a Timeline use case
func NewTimeline(mergeSet *MergeSet, resolver interfaces.CommitResolver, bucketing model.Bucketing) *Timeline {
	return &Timeline{
		mergeSet:  mergeSet,
		resolver:  resolver,
		bucketing: bucketing,
	}
}

type resolved struct {
	at   time.Time
	diag *model.Diagnostic
}

// Build resolves every commit directory and returns the sorted timeline.
// Unresolvable commits are dropped with a diagnostic. No commit directory or
// no resolved commit at all is fatal.
func (x *Timeline) Build(ctx context.Context) (_ *model.Timeline, err error) {
	ctx, span := telemetry.Start(ctx, "timeline.build")
	defer func() { telemetry.End(span, err) }()

	commits, err := x.mergeSet.Commits(ctx)
	if err != nil {
		return nil, err
	}

	results, err := async.Collect(ctx, commits, x.mergeSet.workers, func(ctx context.Context, _ int, commit types.CommitHash) (resolved, error) {
		at, err := x.resolver.CommitTime(ctx, commit)
		if err != nil {
			if ctx.Err() != nil {
				return resolved{}, ctx.Err()
			}
			return resolved{diag: &model.Diagnostic{
				Commit:  commit,
				Kind:    model.DiagUnresolvedCommit,
				Message: err.Error(),
			}}, nil
		}
		return resolved{at: at}, nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve commit timestamps")
	}

	var (
		entries []model.TimelineEntry
		diags   []model.Diagnostic
	)
	for i, res := range results {
		if res.diag != nil {
			diags = append(diags, *res.diag)
			continue
		}
		entries = append(entries, x.entry(commits[i], res.at))
	}

	logDiagnostics(ctx, diags)
	if len(entries) == 0 {
		return nil, goerr.Wrap(model.ErrNoResolvedCommits, "timeline is empty",
			goerr.V("commits", len(commits)),
			goerr.V("unresolved", len(diags)))
	}

	tl := model.NewTimeline(entries, diags)
	span.SetAttributes(
		attribute.Int("commits", len(tl.Entries)),
		attribute.Int("periods", tl.Periods()),
	)
	ctxlog.From(ctx).Info("timeline built",
		"commits", len(tl.Entries),
		"periods", tl.Periods(),
		"unresolved", len(diags),
		"anchor", x.bucketing.Anchor,
	)
	return tl, nil
}

func (x *Timeline) entry(commit types.CommitHash, at time.Time) model.TimelineEntry {
	offset := x.bucketing.Assign(at)
	return model.TimelineEntry{
		Commit:   commit,
		Date:     at,
		DaysDiff: x.bucketing.DaysSince(at),
		Offset:   offset,
		Label:    x.bucketing.Period(offset).Label(),
	}
}
