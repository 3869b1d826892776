package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
)

func TestScannerKindValidation(t *testing.T) {
	tests := []struct {
		name     string
		kind     types.ScannerKind
		expected bool
	}{
		{"Valid brakeman", types.ScannerKindBrakeman, true},
		{"Valid trivy", types.ScannerKindTrivy, true},
		{"Valid zap", types.ScannerKindZAP, true},
		{"Invalid empty", types.ScannerKind(""), false},
		{"Invalid mixed case", types.ScannerKind("Trivy"), false},
		{"Invalid unknown", types.ScannerKind("semgrep"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.kind.IsValid()
			if result != tt.expected {
				t.Errorf("ScannerKind(%q).IsValid() = %v, want %v", tt.kind, result, tt.expected)
			}
		})
	}
}

func TestCommitHash(t *testing.T) {
	t.Run("full sha1 is valid", func(t *testing.T) {
		gt.NoError(t, types.CommitHash("0f3a9c1d2e4b5a6978877665544332211aabbccd").Validate())
	})

	t.Run("abbreviated hash is valid", func(t *testing.T) {
		gt.NoError(t, types.CommitHash("0f3a9c1").Validate())
	})

	t.Run("too short", func(t *testing.T) {
		gt.Error(t, types.CommitHash("0f3").Validate())
	})

	t.Run("non hex character", func(t *testing.T) {
		gt.Error(t, types.CommitHash("0f3a9c1z").Validate())
	})

	t.Run("path traversal", func(t *testing.T) {
		gt.Error(t, types.CommitHash("../etc").Validate())
	})

	t.Run("short form", func(t *testing.T) {
		gt.Equal(t, types.CommitHash("0f3a9c1d2e4b5a69").Short(), "0f3a9c1d")
		gt.Equal(t, types.CommitHash("0f3a").Short(), "0f3a")
	})
}

func TestNewRunID(t *testing.T) {
	a := types.NewRunID()
	b := types.NewRunID()
	gt.NotEqual(t, a, b)
	gt.Equal(t, len(a.String()), 36)
}
