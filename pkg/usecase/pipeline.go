package usecase

import (
	"bytes"
	"context"
	"io"
	"path"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/interfaces"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
	slackSvc "github.com/secmon-lab/scantrend/pkg/service/slack"
	"github.com/secmon-lab/scantrend/pkg/service/tabular"
	"github.com/secmon-lab/scantrend/pkg/utils/telemetry"
	"github.com/slack-go/slack"
	"go.opentelemetry.io/otel/attribute"
)

// Default output file names
const (
	DefaultTimelineFile = "merge_timeline.csv"
	DefaultDatasetFile  = "dataset_final_consolidado.csv"
)

// ScannerTableFile returns the output file name of a scanner table
func ScannerTableFile(name types.ScannerName) string {
	return name.String() + "_counts.csv"
}

// OutputFiles names the tables written by the pipeline
type OutputFiles struct {
	Timeline string
	Dataset  string
}

// DefaultOutputFiles returns the default output file names
func DefaultOutputFiles() OutputFiles {
	return OutputFiles{
		Timeline: DefaultTimelineFile,
		Dataset:  DefaultDatasetFile,
	}
}

// Pipeline runs the timeline, scan and consolidation stages and writes
// their tables
type Pipeline struct {
	mergeSet     *MergeSet
	timeline     *Timeline
	consolidator *Consolidator
	scanners     *model.ScannersConfig
	out          interfaces.BlobStore

	files      OutputFiles
	publishers []interfaces.BlobStore
	repo       interfaces.Repository
	slack      interfaces.SlackClient
	channel    string
	now        func() time.Time
	newRunID   func() types.RunID
}

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithOutputFiles overrides the output file names
func WithOutputFiles(files OutputFiles) PipelineOption {
	return func(x *Pipeline) {
		if files.Timeline != "" {
			x.files.Timeline = files.Timeline
		}
		if files.Dataset != "" {
			x.files.Dataset = files.Dataset
		}
	}
}

// WithPublisher adds a store receiving a copy of every table of a run under
// <run id>/<file>
func WithPublisher(store interfaces.BlobStore) PipelineOption {
	return func(x *Pipeline) {
		x.publishers = append(x.publishers, store)
	}
}

// WithRepository persists the dataset of every run
func WithRepository(repo interfaces.Repository) PipelineOption {
	return func(x *Pipeline) {
		x.repo = repo
	}
}

// WithSlack posts the run summary to a channel
func WithSlack(client interfaces.SlackClient, channel string) PipelineOption {
	return func(x *Pipeline) {
		x.slack = client
		x.channel = channel
	}
}

// WithClock overrides the clock used for CreatedAt
func WithClock(now func() time.Time) PipelineOption {
	return func(x *Pipeline) {
		x.now = now
	}
}

// WithRunIDGenerator overrides run ID generation
func WithRunIDGenerator(fn func() types.RunID) PipelineOption {
	return func(x *Pipeline) {
		x.newRunID = fn
	}
}

// NewPipeline creates a Pipeline writing its tables to out
func NewPipeline(mergeSet *MergeSet, timeline *Timeline, scanners *model.ScannersConfig, out interfaces.BlobStore, opts ...PipelineOption) *Pipeline {
	x := &Pipeline{
		mergeSet:     mergeSet,
		timeline:     timeline,
		consolidator: NewConsolidator(),
		scanners:     scanners,
		out:          out,
		files:        DefaultOutputFiles(),
		now:          time.Now,
		newRunID:     types.NewRunID,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// BuildTimeline builds the timeline and writes the timeline table
func (x *Pipeline) BuildTimeline(ctx context.Context) (*model.Timeline, error) {
	if x.timeline == nil {
		return nil, goerr.New("commit resolver is not configured", goerr.T(model.ErrTagConfiguration))
	}

	tl, err := x.timeline.Build(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := x.write(ctx, x.files.Timeline, func(w io.Writer) error { return tabular.WriteTimeline(w, tl) }); err != nil {
		return nil, err
	}
	return tl, nil
}

// ScanTables scans every configured scanner and writes one table each
func (x *Pipeline) ScanTables(ctx context.Context) ([]*model.ScannerTable, error) {
	tables, err := x.mergeSet.ScanAll(ctx, x.scanners)
	if err != nil {
		return nil, err
	}

	for _, table := range tables {
		if _, err := x.write(ctx, ScannerTableFile(table.Scanner.Name), func(w io.Writer) error {
			return tabular.WriteScannerTable(w, table)
		}); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

// LoadTimeline reads the timeline table written by a previous run
func (x *Pipeline) LoadTimeline(ctx context.Context) (*model.Timeline, error) {
	data, err := x.out.Get(ctx, x.files.Timeline)
	if err != nil {
		return nil, goerr.Wrap(model.ErrTimelineUnavailable, "failed to read timeline table",
			goerr.V("file", x.files.Timeline),
			goerr.V("error", err.Error()))
	}

	tl, err := tabular.ReadTimeline(bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(model.ErrTimelineUnavailable, "failed to decode timeline table",
			goerr.V("file", x.files.Timeline),
			goerr.V("error", err.Error()))
	}
	return tl, nil
}

// Consolidate joins the stored timeline table with a fresh scan and writes
// the consolidated table
func (x *Pipeline) Consolidate(ctx context.Context) (*model.Dataset, error) {
	tl, err := x.LoadTimeline(ctx)
	if err != nil {
		return nil, err
	}

	tables, err := x.mergeSet.ScanAll(ctx, x.scanners)
	if err != nil {
		return nil, err
	}

	ds, err := x.consolidator.Join(ctx, tl, tables)
	if err != nil {
		return nil, err
	}
	ds.RunID = x.newRunID()
	ds.CreatedAt = x.now()

	if _, err := x.write(ctx, x.files.Dataset, func(w io.Writer) error { return tabular.WriteDataset(w, ds) }); err != nil {
		return nil, err
	}
	return ds, nil
}

// Run executes every stage in one pass, then persists, publishes and
// announces the result
func (x *Pipeline) Run(ctx context.Context) (_ *model.RunSummary, err error) {
	runID := x.newRunID()
	ctx = ctxlog.With(ctx, ctxlog.From(ctx).With("run_id", runID.String()))

	ctx, span := telemetry.Start(ctx, "pipeline.run")
	span.SetAttributes(attribute.String("run_id", runID.String()))
	defer func() { telemetry.End(span, err) }()

	logger := ctxlog.From(ctx)
	logger.Info("pipeline started", "root", x.mergeSet.Root(), "scanners", len(x.scanners.Scanners))

	tl, err := x.BuildTimeline(ctx)
	if err != nil {
		return nil, err
	}
	tables, err := x.ScanTables(ctx)
	if err != nil {
		return nil, err
	}

	ds, err := x.consolidator.Join(ctx, tl, tables)
	if err != nil {
		return nil, err
	}
	ds.RunID = runID
	ds.CreatedAt = x.now()

	outputs := []string{
		x.location(x.files.Timeline),
	}
	for _, table := range tables {
		outputs = append(outputs, x.location(ScannerTableFile(table.Scanner.Name)))
	}
	loc, err := x.write(ctx, x.files.Dataset, func(w io.Writer) error { return tabular.WriteDataset(w, ds) })
	if err != nil {
		return nil, err
	}
	outputs = append(outputs, loc)

	published, err := x.publish(ctx, runID, tl, tables, ds)
	if err != nil {
		return nil, err
	}
	outputs = append(outputs, published...)

	if x.repo != nil {
		if err := x.repo.PutDataset(ctx, ds); err != nil {
			return nil, goerr.Wrap(err, "failed to persist dataset", goerr.V("run_id", runID))
		}
		logger.Info("dataset persisted", "rows", len(ds.Rows))
	}

	summary := x.summarize(runID, tl, tables, ds, outputs)
	for _, sc := range summary.Scanners {
		for _, m := range sc.Mismatches {
			logger.Warn("declared total does not match category sum",
				"scanner", sc.Name,
				"commit", m.Commit,
				"declared", m.Declared,
				"sum", m.Sum)
		}
	}

	x.notify(ctx, summary)
	logger.Info("pipeline finished",
		"commits", summary.Commits,
		"periods", summary.Periods,
		"columns", summary.Columns,
		"diagnostics", summary.Diagnostics,
		"reconciles", summary.Reconciles())
	return summary, nil
}

func (x *Pipeline) publish(ctx context.Context, runID types.RunID, tl *model.Timeline, tables []*model.ScannerTable, ds *model.Dataset) ([]string, error) {
	if len(x.publishers) == 0 {
		return nil, nil
	}

	type blob struct {
		file   string
		encode func(w io.Writer) error
	}
	blobs := []blob{
		{x.files.Timeline, func(w io.Writer) error { return tabular.WriteTimeline(w, tl) }},
	}
	for _, table := range tables {
		blobs = append(blobs, blob{ScannerTableFile(table.Scanner.Name), func(w io.Writer) error {
			return tabular.WriteScannerTable(w, table)
		}})
	}
	blobs = append(blobs, blob{x.files.Dataset, func(w io.Writer) error { return tabular.WriteDataset(w, ds) }})

	var locations []string
	for _, b := range blobs {
		data, err := encode(b.encode)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode table", goerr.V("file", b.file))
		}

		key := path.Join(runID.String(), path.Base(b.file))
		for _, store := range x.publishers {
			if err := store.Put(ctx, key, data); err != nil {
				return nil, goerr.Wrap(err, "failed to publish table", goerr.V("key", key))
			}
			if loc, ok := store.(locator); ok {
				locations = append(locations, loc.URI(key))
			}
		}
	}
	return locations, nil
}

func (x *Pipeline) summarize(runID types.RunID, tl *model.Timeline, tables []*model.ScannerTable, ds *model.Dataset, outputs []string) *model.RunSummary {
	summary := &model.RunSummary{
		RunID:       runID,
		Commits:     len(ds.Rows),
		Periods:     tl.Periods(),
		Columns:     len(ds.Columns()),
		Diagnostics: len(tl.Diagnostics),
		Outputs:     outputs,
	}
	for _, table := range tables {
		sc := table.Summarize()
		summary.Scanners = append(summary.Scanners, sc)
		summary.Diagnostics += sc.Diagnostics
	}
	return summary
}

func (x *Pipeline) notify(ctx context.Context, summary *model.RunSummary) {
	if x.slack == nil || x.channel == "" {
		return
	}

	_, _, err := x.slack.PostMessage(ctx, x.channel,
		slack.MsgOptionText(slackSvc.SummaryText(summary), false),
		slack.MsgOptionBlocks(slackSvc.BuildSummaryBlocks(summary)...),
	)
	if err != nil {
		ctxlog.From(ctx).Error("failed to notify run summary", "error", err, "channel", x.channel)
		return
	}
	ctxlog.From(ctx).Info("run summary posted", "channel", x.channel)
}

func (x *Pipeline) write(ctx context.Context, file string, fn func(w io.Writer) error) (string, error) {
	data, err := encode(fn)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode table", goerr.V("file", file))
	}
	if err := x.out.Put(ctx, file, data); err != nil {
		return "", goerr.Wrap(err, "failed to write table", goerr.V("file", file))
	}

	loc := x.location(file)
	ctxlog.From(ctx).Info("table written", "location", loc, "bytes", len(data))
	return loc, nil
}

func (x *Pipeline) location(file string) string {
	if loc, ok := x.out.(locator); ok {
		return loc.URI(file)
	}
	return file
}

func encode(fn func(w io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
