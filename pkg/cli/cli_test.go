package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/scantrend/pkg/cli"
	"github.com/secmon-lab/scantrend/pkg/cli/config"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
	"github.com/secmon-lab/scantrend/pkg/usecase"
)

const (
	commitA = "1111aaaa2222bbbb3333cccc4444dddd5555eeee"
	commitB = "6666ffff7777aaaa8888bbbb9999cccc0000dddd"

	datasetCSV = `commit_hash,date,days_diff,group_offset,period_label,sequential_id,brakeman_High,brakeman_total
1111aaaa2222bbbb3333cccc4444dddd5555eeee,2025-11-10T12:00:00Z,1,0,2025-11-09 to 2025-11-22,1,2,2
6666ffff7777aaaa8888bbbb9999cccc0000dddd,2025-11-24T08:00:00Z,15,1,2025-11-23 to 2025-12-06,2,0,0
`
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	gt.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	gt.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newMergeRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, commitA, "artifacts", "brakeman-report.json"),
		`{"scan_info":{"security_warnings":2},"warnings":[{"confidence":"High"},{"confidence":"High"}]}`)
	writeFile(t, filepath.Join(root, commitA, "artifacts", "zap-report.json"),
		`{"site":[{"alerts":[{"riskcode":"1","count":"3"}]}]}`)
	writeFile(t, filepath.Join(root, commitB, "artifacts", "brakeman-report.json"), `{"warnings":[]}`)
	return root
}

func TestScanCommand(t *testing.T) {
	ctx := context.Background()
	root := newMergeRoot(t)
	out := t.TempDir()

	err := cli.Run(ctx, []string{"scantrend", "--log-level", "error",
		"scan", "--merge-root", root, "--out-dir", out})
	gt.NoError(t, err)

	for _, name := range []types.ScannerName{"brakeman", "trivy", "zap"} {
		data, err := os.ReadFile(filepath.Join(out, usecase.ScannerTableFile(name)))
		gt.NoError(t, err)
		gt.True(t, bytes.Contains(data, []byte(commitA)))
		gt.True(t, bytes.Contains(data, []byte(commitB)))
	}
}

func TestScanCommandWithScannersConfig(t *testing.T) {
	ctx := context.Background()
	root := newMergeRoot(t)
	out := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "scanners.yaml")
	writeFile(t, cfgPath, `scanners:
  - name: dast
    kind: zap
    report_file: zap-report.json
`)

	err := cli.Run(ctx, []string{"scantrend", "--log-level", "error",
		"scan", "--merge-root", root, "--out-dir", out, "--scanners-config", cfgPath})
	gt.NoError(t, err)

	_, err = os.Stat(filepath.Join(out, "dast_counts.csv"))
	gt.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "brakeman_counts.csv"))
	gt.True(t, os.IsNotExist(err))
}

func TestScanCommandMissingRoot(t *testing.T) {
	ctx := context.Background()
	err := cli.Run(ctx, []string{"scantrend", "--log-level", "error",
		"scan", "--merge-root", filepath.Join(t.TempDir(), "missing"), "--out-dir", t.TempDir()})
	gt.Error(t, err)
}

func TestConsolidateWithoutTimeline(t *testing.T) {
	ctx := context.Background()
	root := newMergeRoot(t)
	out := t.TempDir()

	err := cli.Run(ctx, []string{"scantrend", "--log-level", "error",
		"consolidate", "--merge-root", root, "--out-dir", out})
	gt.Error(t, err)

	_, err = os.Stat(filepath.Join(out, usecase.DefaultDatasetFile))
	gt.True(t, os.IsNotExist(err))
}

func TestConsolidateCommand(t *testing.T) {
	ctx := context.Background()
	root := newMergeRoot(t)
	out := t.TempDir()
	writeFile(t, filepath.Join(out, usecase.DefaultTimelineFile),
		`commit_hash,date,days_diff,group_offset,period_label,sequential_id
1111aaaa2222bbbb3333cccc4444dddd5555eeee,2025-11-10T12:00:00Z,1,0,2025-11-09 to 2025-11-22,1
`)

	err := cli.Run(ctx, []string{"scantrend", "--log-level", "error",
		"consolidate", "--merge-root", root, "--out-dir", out})
	gt.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, usecase.DefaultDatasetFile))
	gt.NoError(t, err)
	gt.True(t, bytes.Contains(data, []byte("brakeman_High")))
	gt.True(t, bytes.Contains(data, []byte(commitA)))
	gt.False(t, bytes.Contains(data, []byte(commitB)))
}

func TestReportCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown kind", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.json")
		writeFile(t, path, `{}`)
		err := cli.Run(ctx, []string{"scantrend", "--log-level", "error",
			"report", "--kind", "semgrep", "--file", path})
		gt.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		err := cli.Run(ctx, []string{"scantrend", "--log-level", "error",
			"report", "--kind", "zap", "--file", filepath.Join(t.TempDir(), "none.json")})
		gt.Error(t, err)
	})
}

func TestRenderSummary(t *testing.T) {
	summary := &model.RunSummary{
		RunID:   "run-1",
		Commits: 2,
		Periods: 2,
		Columns: 9,
		Outputs: []string{"/tmp/out/dataset_final_consolidado.csv"},
		Scanners: []model.ScannerSummary{
			{
				Name:        "brakeman",
				Rows:        2,
				Reports:     2,
				Categories:  []model.Category{"High", "Medium", "Weak"},
				Totals:      model.Counts{"High": 2},
				Total:       2,
				Declared:    3,
				HasDeclared: true,
				Mismatches: []model.Mismatch{
					{Commit: commitA, Declared: 3, Sum: 2},
				},
			},
		},
	}

	var buf bytes.Buffer
	gt.NoError(t, cli.RenderSummary(&buf, summary))

	out := buf.String()
	gt.S(t, out).Contains("run-1")
	gt.S(t, out).Contains("brakeman")
	gt.S(t, out).Contains("High 2")
	gt.S(t, out).Contains("1111aaaa declared 3, counted 2")
	gt.S(t, out).Contains("dataset_final_consolidado.csv")
	gt.S(t, out).Contains("declared totals do not match category sums")
}

func TestRenderBaseline(t *testing.T) {
	declared := 3
	baseline := &usecase.Baseline{
		Kind:       types.ScannerKindBrakeman,
		File:       "brakeman-report.json",
		Categories: []model.Category{"High", "Medium", "Weak"},
		Normalized: &model.Normalized{
			Counts:   model.Counts{"High": 2, "Medium": 1},
			Total:    3,
			Declared: &declared,
		},
	}

	var buf bytes.Buffer
	gt.NoError(t, cli.RenderBaseline(&buf, baseline))

	out := buf.String()
	gt.S(t, out).Contains("brakeman-report.json")
	gt.S(t, out).Contains("Medium")
	gt.S(t, out).NotContains("does not match")
}

func TestOpenServeRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("loads dataset table into memory", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, usecase.DefaultDatasetFile), datasetCSV)

		repo, err := cli.OpenServeRepository(ctx, &config.Repository{}, &config.Output{
			Dir:         dir,
			DatasetFile: usecase.DefaultDatasetFile,
		})
		gt.NoError(t, err)
		defer repo.Close()

		ds, err := repo.GetLatestDataset(ctx)
		gt.NoError(t, err)
		gt.A(t, ds.Rows).Length(2)
		gt.Equal(t, ds.CountColumns, []string{"brakeman_High", "brakeman_total"})

		row, ok := ds.Row(commitA)
		gt.True(t, ok)
		gt.Equal(t, row.Value("brakeman_High"), 2)
	})

	t.Run("missing table serves empty repository", func(t *testing.T) {
		repo, err := cli.OpenServeRepository(ctx, &config.Repository{}, &config.Output{
			Dir:         t.TempDir(),
			DatasetFile: usecase.DefaultDatasetFile,
		})
		gt.NoError(t, err)
		defer repo.Close()

		list, err := repo.ListDatasets(ctx, 10)
		gt.NoError(t, err)
		gt.A(t, list).Length(0)
	})

	t.Run("broken table is an error", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, usecase.DefaultDatasetFile), "commit_hash\nnot-a-row,extra\n")

		_, err := cli.OpenServeRepository(ctx, &config.Repository{}, &config.Output{
			Dir:         dir,
			DatasetFile: usecase.DefaultDatasetFile,
		})
		gt.Error(t, err)
	})
}
