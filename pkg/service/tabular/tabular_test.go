package tabular_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/sebdah/goldie/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
	"github.com/secmon-lab/scantrend/pkg/service/tabular"
)

func sampleDataset() *model.Dataset {
	return &model.Dataset{
		CountColumns: []string{"brakeman_High", "brakeman_total", "zap_Unknown(9)"},
		Rows: []model.DatasetRow{
			{
				Commit:       "aaaa1111",
				Date:         time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC),
				DaysDiff:     1,
				Offset:       0,
				Label:        "2025-11-09 to 2025-11-22",
				SequentialID: 1,
				Counts:       map[string]int{"brakeman_High": 2, "brakeman_total": 2, "zap_Unknown(9)": 2},
			},
			{
				Commit:       "bbbb2222",
				Date:         time.Date(2025, 11, 24, 5, 0, 0, 0, time.FixedZone("", -3*60*60)),
				DaysDiff:     15,
				Offset:       1,
				Label:        "2025-11-23 to 2025-12-06",
				SequentialID: 2,
				Counts:       map[string]int{},
			},
		},
	}
}

func TestWriteDataset(t *testing.T) {
	var buf bytes.Buffer
	gt.NoError(t, tabular.WriteDataset(&buf, sampleDataset()))

	g := goldie.New(t)
	g.Assert(t, "dataset", buf.Bytes())
}

func TestWriteDatasetIsDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	gt.NoError(t, tabular.WriteDataset(&a, sampleDataset()))
	gt.NoError(t, tabular.WriteDataset(&b, sampleDataset()))
	gt.Equal(t, a.String(), b.String())
}

func TestReadDataset(t *testing.T) {
	var buf bytes.Buffer
	gt.NoError(t, tabular.WriteDataset(&buf, sampleDataset()))

	ds, err := tabular.ReadDataset(&buf)
	gt.NoError(t, err)
	gt.Equal(t, ds.CountColumns, []string{"brakeman_High", "brakeman_total", "zap_Unknown(9)"})
	gt.Equal(t, len(ds.Rows), 2)

	row, ok := ds.Row("bbbb2222")
	gt.True(t, ok)
	gt.Equal(t, row.SequentialID, 2)
	gt.Equal(t, row.Value("zap_Unknown(9)"), 0)
	gt.True(t, row.Date.Equal(time.Date(2025, 11, 24, 8, 0, 0, 0, time.UTC)))
}

func TestReadDatasetFromPandas(t *testing.T) {
	data := "commit_hash,date,days_diff,group_offset,period_label,sequential_id,brakeman_High,trivy_HIGH\n" +
		"abc123,2025-11-10 17:30:00+00:00,1,0,2025-11-09 to 2025-11-22,1,2.0,\n"
	ds, err := tabular.ReadDataset(strings.NewReader(data))
	gt.NoError(t, err)
	gt.Equal(t, ds.Rows[0].Value("brakeman_High"), 2)
	gt.Equal(t, ds.Rows[0].Value("trivy_HIGH"), 0)
}

func TestWriteScannerTable(t *testing.T) {
	three := 3
	table := &model.ScannerTable{
		Scanner:    model.ScannerSpec{Name: "brakeman", Kind: types.ScannerKindBrakeman, ReportFile: "brakeman-report.json"},
		Categories: []model.Category{"High", "Medium", "Weak"},
		Rows: []model.CountRow{
			{Commit: "aaaa1111", Counts: model.Counts{"High": 2, "Medium": 1}, Total: 3, Declared: &three, HasReport: true},
			{Commit: "bbbb2222", Counts: model.Counts{}},
		},
	}

	var buf bytes.Buffer
	gt.NoError(t, tabular.WriteScannerTable(&buf, table))

	g := goldie.New(t)
	g.Assert(t, "brakeman_counts", buf.Bytes())
}

func TestTimelineRoundTrip(t *testing.T) {
	tl := model.NewTimeline([]model.TimelineEntry{
		{Commit: "bbbb", Date: time.Date(2025, 11, 24, 0, 0, 0, 0, time.UTC), DaysDiff: 15, Offset: 1, Label: "2025-11-23 to 2025-12-06"},
		{Commit: "aaaa", Date: time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC), DaysDiff: -10, Offset: -1, Label: "2025-10-26 to 2025-11-08"},
	}, nil)

	var buf bytes.Buffer
	gt.NoError(t, tabular.WriteTimeline(&buf, tl))
	gt.S(t, buf.String()).Contains("aaaa,2025-10-30T00:00:00Z,-10,-1,2025-10-26 to 2025-11-08,1\n")

	read, err := tabular.ReadTimeline(&buf)
	gt.NoError(t, err)
	gt.Equal(t, len(read.Entries), 2)
	gt.Equal(t, read.Entries[0].Commit, types.CommitHash("aaaa"))
	gt.Equal(t, read.Entries[1].SequentialID, 2)
	gt.Equal(t, read.Entries[1].DaysDiff, 15)
}

func TestReadTimeline(t *testing.T) {
	t.Run("missing required column", func(t *testing.T) {
		_, err := tabular.ReadTimeline(strings.NewReader("commit_hash,date\nabc,2025-11-10T00:00:00Z\n"))
		gt.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := tabular.ReadTimeline(strings.NewReader(""))
		gt.Error(t, err)
	})

	t.Run("invalid date", func(t *testing.T) {
		data := "commit_hash,date,group_offset,period_label,sequential_id\nabc,yesterday,0,x,1\n"
		_, err := tabular.ReadTimeline(strings.NewReader(data))
		gt.Error(t, err)
	})

	t.Run("columns in any order and without days_diff", func(t *testing.T) {
		data := "sequential_id,period_label,group_offset,date,commit_hash\n3,p,-1,2025-11-01 10:00:00 -0300,abc\n"
		tl, err := tabular.ReadTimeline(strings.NewReader(data))
		gt.NoError(t, err)
		gt.Equal(t, tl.Entries[0].SequentialID, 3)
		gt.Equal(t, tl.Entries[0].Offset, -1)
		gt.True(t, tl.Entries[0].Date.Equal(time.Date(2025, 11, 1, 13, 0, 0, 0, time.UTC)))
	})
}

func TestParseDate(t *testing.T) {
	want := time.Date(2025, 11, 10, 17, 30, 0, 0, time.UTC)
	for _, s := range []string{
		"2025-11-10T17:30:00Z",
		"2025-11-10T14:30:00-03:00",
		"2025-11-10 17:30:00+00:00",
		"2025-11-10 14:30:00 -0300",
	} {
		t.Run(s, func(t *testing.T) {
			got, err := tabular.ParseDate(s)
			gt.NoError(t, err)
			gt.True(t, got.Equal(want))
		})
	}

	_, err := tabular.ParseDate("10/11/2025")
	gt.Error(t, err)
}
