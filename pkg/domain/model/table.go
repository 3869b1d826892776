package model

import (
	"github.com/secmon-lab/scantrend/pkg/domain/types"
)

// Column names shared by all tables
const (
	ColumnCommitHash    = "commit_hash"
	ColumnTotal         = "total"
	ColumnTotalScanInfo = "total_scan_info"
)

// CountRow is the normalized result of one (commit, scanner) pair
type CountRow struct {
	Commit    types.CommitHash
	Counts    Counts
	Total     int
	Declared  *int
	HasReport bool
}

// Reconciles reports whether the declared total, when present, equals the
// sum of the category counts
func (r CountRow) Reconciles() bool {
	if r.Declared == nil {
		return true
	}
	return *r.Declared == r.Counts.Sum()
}

// ScannerTable is the wide per-scanner table: one row per commit directory,
// one column per category observed anywhere in the merge set
type ScannerTable struct {
	Scanner     ScannerSpec
	Categories  []Category
	Rows        []CountRow
	Diagnostics []Diagnostic
}

// Columns returns the value columns in output order, excluding commit_hash
func (t *ScannerTable) Columns() []string {
	cols := make([]string, 0, len(t.Categories)+2)
	for _, c := range t.Categories {
		cols = append(cols, c.String())
	}
	cols = append(cols, ColumnTotal)
	if t.Scanner.Kind == types.ScannerKindBrakeman {
		cols = append(cols, ColumnTotalScanInfo)
	}
	return cols
}

// Values returns the cells of row aligned with Columns
func (t *ScannerTable) Values(row CountRow) []int {
	values := make([]int, 0, len(t.Categories)+2)
	for _, c := range t.Categories {
		values = append(values, row.Counts.Get(c))
	}
	values = append(values, row.Total)
	if t.Scanner.Kind == types.ScannerKindBrakeman {
		declared := 0
		if row.Declared != nil {
			declared = *row.Declared
		}
		values = append(values, declared)
	}
	return values
}

// Row returns the row of a commit
func (t *ScannerTable) Row(commit types.CommitHash) (CountRow, bool) {
	for _, r := range t.Rows {
		if r.Commit == commit {
			return r, true
		}
	}
	return CountRow{}, false
}

// Mismatch is a row whose declared total differs from its category sum
type Mismatch struct {
	Commit   types.CommitHash
	Declared int
	Sum      int
}

// ScannerSummary aggregates one scanner table
type ScannerSummary struct {
	Name        types.ScannerName
	Rows        int
	Reports     int
	Categories  []Category
	Totals      Counts
	Total       int
	Declared    int
	HasDeclared bool
	Mismatches  []Mismatch
	Diagnostics int
}

// Summarize totals the table over all commits
func (t *ScannerTable) Summarize() ScannerSummary {
	s := ScannerSummary{
		Name:        t.Scanner.Name,
		Rows:        len(t.Rows),
		Categories:  t.Categories,
		Totals:      Counts{},
		Diagnostics: len(t.Diagnostics),
	}
	for _, r := range t.Rows {
		if r.HasReport {
			s.Reports++
		}
		for c, n := range r.Counts {
			s.Totals.Add(c, n)
		}
		s.Total += r.Total
		if r.Declared != nil {
			s.HasDeclared = true
			s.Declared += *r.Declared
			if !r.Reconciles() {
				s.Mismatches = append(s.Mismatches, Mismatch{
					Commit:   r.Commit,
					Declared: *r.Declared,
					Sum:      r.Counts.Sum(),
				})
			}
		}
	}
	return s
}
