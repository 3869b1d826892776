// Package tabular encodes and decodes the CSV tables produced by a run.
package tabular

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
)

// Accepted timestamp layouts: RFC 3339, pandas' default datetime rendering
// and git's %ci format
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05 -0700",
}

// ParseDate parses a commit timestamp in any accepted layout
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, goerr.New("unsupported timestamp format", goerr.V("value", s))
}

// FormatDate renders a timestamp as RFC 3339 in UTC
func FormatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// WriteTimeline writes the timeline table
func WriteTimeline(w io.Writer, tl *model.Timeline) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.TimelineColumns()); err != nil {
		return goerr.Wrap(err, "failed to write timeline header")
	}
	for _, e := range tl.Entries {
		if err := cw.Write(timelineRecord(e)); err != nil {
			return goerr.Wrap(err, "failed to write timeline row", goerr.V("commit", e.Commit))
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush timeline")
	}
	return nil
}

func timelineRecord(e model.TimelineEntry) []string {
	return []string{
		e.Commit.String(),
		FormatDate(e.Date),
		strconv.Itoa(e.DaysDiff),
		strconv.Itoa(e.Offset),
		e.Label,
		strconv.Itoa(e.SequentialID),
	}
}

// ReadTimeline reads a timeline table. Columns are located by header name so
// extra columns are ignored. Sequential ids are taken as written.
func ReadTimeline(r io.Reader) (*model.Timeline, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	return decodeTimeline(header, records)
}

func decodeTimeline(header []string, records [][]string) (*model.Timeline, error) {
	idx, err := indexColumns(header,
		model.ColumnCommitHash,
		model.ColumnDate,
		model.ColumnGroupOffset,
		model.ColumnPeriodLabel,
		model.ColumnSequentialID,
	)
	if err != nil {
		return nil, err
	}
	daysIdx, hasDays := columnIndex(header, model.ColumnDaysDiff)

	tl := &model.Timeline{}
	for i, rec := range records {
		line := i + 2
		date, err := ParseDate(rec[idx[model.ColumnDate]])
		if err != nil {
			return nil, goerr.Wrap(err, "invalid date in timeline", goerr.V("line", line))
		}
		offset, err := parseInt(rec[idx[model.ColumnGroupOffset]], model.ColumnGroupOffset, line)
		if err != nil {
			return nil, err
		}
		seq, err := parseInt(rec[idx[model.ColumnSequentialID]], model.ColumnSequentialID, line)
		if err != nil {
			return nil, err
		}
		entry := model.TimelineEntry{
			Commit:       types.CommitHash(strings.TrimSpace(rec[idx[model.ColumnCommitHash]])),
			Date:         date,
			Offset:       offset,
			Label:        rec[idx[model.ColumnPeriodLabel]],
			SequentialID: seq,
		}
		if hasDays {
			if entry.DaysDiff, err = parseInt(rec[daysIdx], model.ColumnDaysDiff, line); err != nil {
				return nil, err
			}
		}
		tl.Entries = append(tl.Entries, entry)
	}

	return tl, nil
}

// WriteScannerTable writes one wide per-scanner table
func WriteScannerTable(w io.Writer, table *model.ScannerTable) error {
	cw := csv.NewWriter(w)
	header := append([]string{model.ColumnCommitHash}, table.Columns()...)
	if err := cw.Write(header); err != nil {
		return goerr.Wrap(err, "failed to write scanner table header")
	}
	for _, row := range table.Rows {
		rec := []string{row.Commit.String()}
		for _, v := range table.Values(row) {
			rec = append(rec, strconv.Itoa(v))
		}
		if err := cw.Write(rec); err != nil {
			return goerr.Wrap(err, "failed to write scanner table row",
				goerr.V("scanner", table.Scanner.Name),
				goerr.V("commit", row.Commit))
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush scanner table")
	}
	return nil
}

// WriteDataset writes the consolidated table
func WriteDataset(w io.Writer, ds *model.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Columns()); err != nil {
		return goerr.Wrap(err, "failed to write dataset header")
	}
	for _, row := range ds.Rows {
		rec := timelineRecord(model.TimelineEntry{
			Commit:       row.Commit,
			Date:         row.Date,
			DaysDiff:     row.DaysDiff,
			Offset:       row.Offset,
			Label:        row.Label,
			SequentialID: row.SequentialID,
		})
		for _, col := range ds.CountColumns {
			rec = append(rec, strconv.Itoa(row.Value(col)))
		}
		if err := cw.Write(rec); err != nil {
			return goerr.Wrap(err, "failed to write dataset row", goerr.V("commit", row.Commit))
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush dataset")
	}
	return nil
}

// ReadDataset reads a consolidated table. Every column after the timeline
// columns is a count column; empty cells read as 0.
func ReadDataset(r io.Reader) (*model.Dataset, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	tl, err := decodeTimeline(header, records)
	if err != nil {
		return nil, err
	}

	timelineCols := make(map[string]bool)
	for _, c := range model.TimelineColumns() {
		timelineCols[c] = true
	}

	ds := &model.Dataset{}
	var countIdx []int
	for i, c := range header {
		if !timelineCols[c] {
			ds.CountColumns = append(ds.CountColumns, c)
			countIdx = append(countIdx, i)
		}
	}

	for i, e := range tl.Entries {
		row := model.DatasetRow{
			Commit:       e.Commit,
			Date:         e.Date,
			DaysDiff:     e.DaysDiff,
			Offset:       e.Offset,
			Label:        e.Label,
			SequentialID: e.SequentialID,
			Counts:       make(map[string]int, len(countIdx)),
		}
		for j, ci := range countIdx {
			cell := strings.TrimSpace(records[i][ci])
			if cell == "" {
				row.Counts[ds.CountColumns[j]] = 0
				continue
			}
			// pandas writes filled integer columns as floats
			f, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, goerr.Wrap(err, "invalid count in dataset",
					goerr.V("line", i+2),
					goerr.V("column", ds.CountColumns[j]))
			}
			row.Counts[ds.CountColumns[j]] = int(f)
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

func readAll(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, goerr.New("table is empty")
		}
		return nil, nil, goerr.Wrap(err, "failed to read table header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to read table rows")
	}
	return header, records, nil
}

func columnIndex(header []string, name string) (int, bool) {
	for i, h := range header {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

func indexColumns(header []string, names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	for _, name := range names {
		i, ok := columnIndex(header, name)
		if !ok {
			return nil, goerr.New("required column is missing",
				goerr.V("column", name),
				goerr.V("header", header))
		}
		idx[name] = i
	}
	return idx, nil
}

func parseInt(s, column string, line int) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err == nil {
		return n, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil {
		return 0, goerr.Wrap(err, "invalid integer",
			goerr.V("column", column),
			goerr.V("line", line),
			goerr.V("value", s))
	}
	return int(f), nil
}
