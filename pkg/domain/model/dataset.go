package model

import (
	"time"

	"github.com/secmon-lab/scantrend/pkg/domain/types"
)

// Timeline column names
const (
	ColumnDate         = "date"
	ColumnDaysDiff     = "days_diff"
	ColumnGroupOffset  = "group_offset"
	ColumnPeriodLabel  = "period_label"
	ColumnSequentialID = "sequential_id"
)

// TimelineColumns returns the timeline table header
func TimelineColumns() []string {
	return []string{
		ColumnCommitHash,
		ColumnDate,
		ColumnDaysDiff,
		ColumnGroupOffset,
		ColumnPeriodLabel,
		ColumnSequentialID,
	}
}

// Dataset is the consolidated table of one run
type Dataset struct {
	RunID        types.RunID  `json:"run_id" firestore:"run_id"`
	CreatedAt    time.Time    `json:"created_at" firestore:"created_at"`
	CountColumns []string     `json:"count_columns" firestore:"count_columns"`
	Rows         []DatasetRow `json:"rows" firestore:"-"`
}

// DatasetRow is one commit of the consolidated table
type DatasetRow struct {
	Commit       types.CommitHash `json:"commit_hash" firestore:"commit_hash"`
	Date         time.Time        `json:"date" firestore:"date"`
	DaysDiff     int              `json:"days_diff" firestore:"days_diff"`
	Offset       int              `json:"group_offset" firestore:"group_offset"`
	Label        string           `json:"period_label" firestore:"period_label"`
	SequentialID int              `json:"sequential_id" firestore:"sequential_id"`
	Counts       map[string]int   `json:"counts" firestore:"counts"`
}

// Value returns the count stored under a prefixed column, 0 if absent
func (r DatasetRow) Value(column string) int {
	return r.Counts[column]
}

// Columns returns the full header of the consolidated table
func (d *Dataset) Columns() []string {
	cols := TimelineColumns()
	return append(cols, d.CountColumns...)
}

// Row returns the row of a commit
func (d *Dataset) Row(commit types.CommitHash) (*DatasetRow, bool) {
	for i := range d.Rows {
		if d.Rows[i].Commit == commit {
			return &d.Rows[i], true
		}
	}
	return nil, false
}

// PrefixedColumn returns the consolidated name of a scanner column
func PrefixedColumn(scanner types.ScannerName, column string) string {
	return scanner.String() + "_" + column
}

// RunSummary is reported at the end of a pipeline run
type RunSummary struct {
	RunID       types.RunID
	Commits     int
	Periods     int
	Columns     int
	Scanners    []ScannerSummary
	Diagnostics int
	Outputs     []string
}

// Reconciles reports whether every declared total matched its category sum
func (s *RunSummary) Reconciles() bool {
	for _, sc := range s.Scanners {
		if len(sc.Mismatches) > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		RunID:        d.RunID,
		CreatedAt:    d.CreatedAt,
		CountColumns: append([]string(nil), d.CountColumns...),
	}
	if d.Rows != nil {
		out.Rows = make([]DatasetRow, len(d.Rows))
		for i, r := range d.Rows {
			out.Rows[i] = r
			out.Rows[i].Counts = make(map[string]int, len(r.Counts))
			for k, v := range r.Counts {
				out.Rows[i].Counts[k] = v
			}
		}
	}
	return out
}

// Header returns a copy without rows
func (d *Dataset) Header() *Dataset {
	return &Dataset{
		RunID:        d.RunID,
		CreatedAt:    d.CreatedAt,
		CountColumns: append([]string(nil), d.CountColumns...),
	}
}
