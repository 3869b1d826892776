package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
	"github.com/secmon-lab/scantrend/pkg/utils/telemetry"
)

// Consolidator left-joins scanner tables onto the timeline
type Consolidator struct{}

// NewConsolidator creates a Consolidator
func NewConsolidator() *Consolidator {
	return &Consolidator{}
}

// Columns returns the prefixed count columns of tables in order. A name that
// collides with a timeline column or another prefixed column is an error.
func (x *Consolidator) Columns(tables []*model.ScannerTable) ([]string, error) {
	seen := make(map[string]types.ScannerName)
	for _, col := range model.TimelineColumns() {
		seen[col] = ""
	}

	var columns []string
	for _, table := range tables {
		for _, col := range table.Columns() {
			name := model.PrefixedColumn(table.Scanner.Name, col)
			if owner, ok := seen[name]; ok {
				return nil, goerr.Wrap(model.ErrColumnCollision, "prefixed column is not unique",
					goerr.V("column", name),
					goerr.V("scanner", table.Scanner.Name),
					goerr.V("owner", owner))
			}
			seen[name] = table.Scanner.Name
			columns = append(columns, name)
		}
	}
	return columns, nil
}

// Join returns one row per timeline entry, in timeline order. Scanner cells
// with no matching row are 0. RunID and CreatedAt are left for the caller.
func (x *Consolidator) Join(ctx context.Context, tl *model.Timeline, tables []*model.ScannerTable) (_ *model.Dataset, err error) {
	_, span := telemetry.Start(ctx, "consolidator.join")
	defer func() { telemetry.End(span, err) }()

	if tl == nil {
		return nil, goerr.Wrap(model.ErrTimelineUnavailable, "timeline is nil")
	}

	columns, err := x.Columns(tables)
	if err != nil {
		return nil, err
	}

	type index map[types.CommitHash]model.CountRow
	indexes := make([]index, len(tables))
	for i, table := range tables {
		idx := make(index, len(table.Rows))
		for _, row := range table.Rows {
			idx[row.Commit] = row
		}
		indexes[i] = idx
	}

	ds := &model.Dataset{
		CountColumns: columns,
		Rows:         make([]model.DatasetRow, 0, len(tl.Entries)),
	}

	var unmatched int
	for _, entry := range tl.Entries {
		row := model.DatasetRow{
			Commit:       entry.Commit,
			Date:         entry.Date,
			DaysDiff:     entry.DaysDiff,
			Offset:       entry.Offset,
			Label:        entry.Label,
			SequentialID: entry.SequentialID,
			Counts:       make(map[string]int, len(columns)),
		}

		for i, table := range tables {
			cols := table.Columns()
			countRow, ok := indexes[i][entry.Commit]
			if !ok {
				unmatched++
				for _, col := range cols {
					row.Counts[model.PrefixedColumn(table.Scanner.Name, col)] = 0
				}
				continue
			}
			for j, v := range table.Values(countRow) {
				row.Counts[model.PrefixedColumn(table.Scanner.Name, cols[j])] = v
			}
		}
		ds.Rows = append(ds.Rows, row)
	}

	ctxlog.From(ctx).Info("dataset consolidated",
		"rows", len(ds.Rows),
		"columns", len(ds.Columns()),
		"unmatched", unmatched,
	)
	return ds, nil
}
