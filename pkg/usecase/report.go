package usecase

import (
	"context"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
	"github.com/secmon-lab/scantrend/pkg/service/normalizer"
)

// Baseline is the normalized view of one report file
type Baseline struct {
	Kind       types.ScannerKind
	File       string
	Categories []model.Category
	Normalized *model.Normalized
}

// Reconciles reports whether the declared total matches the category sum
func (b *Baseline) Reconciles() bool {
	return b.Normalized.Reconciles()
}

// BaselineReport normalizes a single report file. Unlike the merge-set scan,
// a missing or malformed file is an error here.
func BaselineReport(ctx context.Context, kind types.ScannerKind, path string) (*Baseline, error) {
	norm, err := normalizer.New(kind)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create normalizer", goerr.T(model.ErrTagConfiguration))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read report", goerr.V("path", path))
	}

	normalized, err := norm.Normalize(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to normalize report", goerr.V("path", path))
	}

	logger := ctxlog.From(ctx)
	for _, w := range normalized.Warnings {
		logger.Warn("report warning", "path", path, "warning", w)
	}
	if !normalized.Reconciles() {
		logger.Warn("declared total does not match category sum",
			"path", path,
			"declared", *normalized.Declared,
			"sum", normalized.Counts.Sum())
	}

	return &Baseline{
		Kind:       kind,
		File:       path,
		Categories: model.VocabularyOf(kind).Union(normalized.Counts),
		Normalized: normalized,
	}, nil
}
