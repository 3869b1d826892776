package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
	"github.com/secmon-lab/scantrend/pkg/service/normalizer"
	"github.com/secmon-lab/scantrend/pkg/utils/async"
	"github.com/secmon-lab/scantrend/pkg/utils/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// ArtifactsDir is the folder holding the reports of one commit
	ArtifactsDir = "artifacts"

	// DefaultWorkers is the default number of commits normalized concurrently
	DefaultWorkers = 4
)

// MergeSet reads the per-commit artifact directories under a root
type MergeSet struct {
	root    string
	workers int
}

// MergeSetOption configures a MergeSet
type MergeSetOption func(*MergeSet)

// WithWorkers sets how many commits are normalized concurrently
func WithWorkers(n int) MergeSetOption {
	return func(x *MergeSet) {
		if n > 0 {
			x.workers = n
		}
	}
}

// NewMergeSet creates a MergeSet rooted at root
func NewMergeSet(root string, opts ...MergeSetOption) *MergeSet {
	x := &MergeSet{
		root:    root,
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Root returns the merge-set root directory
func (x *MergeSet) Root() string {
	return x.root
}

// Commits lists the commit directories directly under the root, sorted by
// name. Finding none is fatal for the run.
func (x *MergeSet) Commits(ctx context.Context) ([]types.CommitHash, error) {
	entries, err := os.ReadDir(x.root)
	if err != nil {
		return nil, goerr.Wrap(model.ErrNoCommitDirectories, "failed to read merge-set root",
			goerr.V("root", x.root),
			goerr.V("error", err.Error()))
	}

	var commits []types.CommitHash
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		commits = append(commits, types.CommitHash(entry.Name()))
	}

	if len(commits) == 0 {
		return nil, goerr.Wrap(model.ErrNoCommitDirectories, "merge-set root has no commit directory",
			goerr.V("root", x.root))
	}

	sort.Slice(commits, func(i, j int) bool { return commits[i] < commits[j] })
	ctxlog.From(ctx).Debug("commit directories found", "root", x.root, "count", len(commits))
	return commits, nil
}

// ReportPath returns <root>/<commit>/artifacts/<report file>
func (x *MergeSet) ReportPath(commit types.CommitHash, scanner model.ScannerSpec) string {
	return filepath.Join(x.root, commit.String(), ArtifactsDir, scanner.ReportFile)
}

// CommitFromReportPath returns the commit identity of a report path, the
// third path segment from the end
func CommitFromReportPath(path string) types.CommitHash {
	dir := filepath.Dir(filepath.Dir(filepath.Clean(path)))
	return types.CommitHash(filepath.Base(dir))
}

type commitResult struct {
	row   model.CountRow
	diags []model.Diagnostic
}

// Scan builds the wide table of one scanner: one row per commit directory,
// one column per category observed anywhere in the merge set. Problems with a
// single report become diagnostics on an all-zero row.
func (x *MergeSet) Scan(ctx context.Context, scanner model.ScannerSpec) (_ *model.ScannerTable, err error) {
	ctx, span := telemetry.Start(ctx, "mergeset.scan")
	span.SetAttributes(attribute.String("scanner", scanner.Name.String()))
	defer func() { telemetry.End(span, err) }()

	norm, err := normalizer.New(scanner.Kind)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create normalizer",
			goerr.T(model.ErrTagConfiguration),
			goerr.V("scanner", scanner.Name))
	}

	commits, err := x.Commits(ctx)
	if err != nil {
		return nil, err
	}

	results, err := async.Collect(ctx, commits, x.workers, func(ctx context.Context, _ int, commit types.CommitHash) (res commitResult, err error) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		defer func() {
			if r := recover(); r != nil {
				res = emptyResult(commit, model.Diagnostic{
					Commit:  commit,
					Scanner: scanner.Name,
					Kind:    model.DiagMalformedInput,
					Message: fmt.Sprintf("normalizer panicked: %v", r),
				})
			}
		}()
		return x.scanCommit(norm, scanner, commit), nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to scan merge set", goerr.V("scanner", scanner.Name))
	}

	table := &model.ScannerTable{
		Scanner: scanner,
		Rows:    make([]model.CountRow, len(results)),
	}
	observed := make([]model.Counts, len(results))
	for i, res := range results {
		table.Rows[i] = res.row
		observed[i] = res.row.Counts
		table.Diagnostics = append(table.Diagnostics, res.diags...)
	}
	table.Categories = model.VocabularyOf(scanner.Kind).Union(observed...)

	logDiagnostics(ctx, table.Diagnostics)
	ctxlog.From(ctx).Info("scanner table built",
		"scanner", scanner.Name,
		"rows", len(table.Rows),
		"categories", len(table.Categories),
		"diagnostics", len(table.Diagnostics),
	)
	return table, nil
}

// ScanAll scans every configured scanner in configuration order
func (x *MergeSet) ScanAll(ctx context.Context, cfg *model.ScannersConfig) ([]*model.ScannerTable, error) {
	tables := make([]*model.ScannerTable, 0, len(cfg.Scanners))
	for _, scanner := range cfg.Scanners {
		table, err := x.Scan(ctx, scanner)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}

func (x *MergeSet) scanCommit(norm normalizer.Normalizer, scanner model.ScannerSpec, commit types.CommitHash) commitResult {
	path := x.ReportPath(commit, scanner)
	commit = CommitFromReportPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		kind := model.DiagMalformedInput
		msg := "report file is unreadable: " + err.Error()
		if errors.Is(err, fs.ErrNotExist) {
			kind = model.DiagMissingInput
			msg = "report file not found: " + path
		}
		return emptyResult(commit, model.Diagnostic{
			Commit:  commit,
			Scanner: scanner.Name,
			Kind:    kind,
			Message: msg,
		})
	}

	normalized, err := norm.Normalize(data)
	if err != nil {
		return emptyResult(commit, model.Diagnostic{
			Commit:  commit,
			Scanner: scanner.Name,
			Kind:    model.DiagMalformedInput,
			Message: err.Error(),
		})
	}

	res := commitResult{
		row: model.CountRow{
			Commit:    commit,
			Counts:    normalized.Counts,
			Total:     normalized.Total,
			Declared:  normalized.Declared,
			HasReport: true,
		},
	}
	for _, w := range normalized.Warnings {
		res.diags = append(res.diags, model.Diagnostic{
			Commit:  commit,
			Scanner: scanner.Name,
			Kind:    model.DiagSchemaSurprise,
			Message: w,
		})
	}
	return res
}

func emptyResult(commit types.CommitHash, diag model.Diagnostic) commitResult {
	return commitResult{
		row: model.CountRow{
			Commit: commit,
			Counts: model.Counts{},
		},
		diags: []model.Diagnostic{diag},
	}
}

func logDiagnostics(ctx context.Context, diags []model.Diagnostic) {
	logger := ctxlog.From(ctx)
	for _, d := range diags {
		logger.Warn("input skipped or defaulted", "diagnostic", d)
	}
}
