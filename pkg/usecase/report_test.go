package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
	"github.com/secmon-lab/scantrend/pkg/usecase"
)

func TestBaselineReport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		gt.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	t.Run("brakeman counts reconcile with scan_info", func(t *testing.T) {
		b, err := usecase.BaselineReport(ctx, types.ScannerKindBrakeman, write("brakeman.json", brakemanReport))
		gt.NoError(t, err)
		gt.Equal(t, 2, b.Normalized.Counts.Get("High"))
		gt.Equal(t, 1, b.Normalized.Counts.Get("Medium"))
		gt.Equal(t, 3, b.Normalized.Total)
		gt.True(t, b.Reconciles())
		gt.Equal(t, []model.Category{"High", "Medium", "Weak"}, b.Categories)
	})

	t.Run("declared total mismatch is reported, not an error", func(t *testing.T) {
		b, err := usecase.BaselineReport(ctx, types.ScannerKindBrakeman,
			write("mismatch.json", `{"scan_info":{"security_warnings":5},"warnings":[{"confidence":"Weak"}]}`))
		gt.NoError(t, err)
		gt.False(t, b.Reconciles())
	})

	t.Run("zap unknown risk code", func(t *testing.T) {
		b, err := usecase.BaselineReport(ctx, types.ScannerKindZAP, write("zap.json", zapReport))
		gt.NoError(t, err)
		gt.Equal(t, 7, b.Normalized.Total)
		gt.Equal(t, model.Category("Unknown(9)"), b.Categories[len(b.Categories)-1])
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := usecase.BaselineReport(ctx, types.ScannerKindTrivy, filepath.Join(dir, "none.json"))
		gt.Error(t, err)
	})

	t.Run("malformed file is tagged", func(t *testing.T) {
		_, err := usecase.BaselineReport(ctx, types.ScannerKindTrivy, write("bad.json", "{"))
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, model.ErrTagMalformedReport))
	})
}
