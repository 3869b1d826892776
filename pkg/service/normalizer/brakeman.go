package normalizer

import (
	"fmt"

	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
)

// Brakeman counts warnings by confidence label
type Brakeman struct{}

// Kind returns the scanner kind
func (x *Brakeman) Kind() types.ScannerKind {
	return types.ScannerKindBrakeman
}

// Normalize counts warnings per confidence. The scan_info total is kept as
// Declared for reconciliation and never replaces the counted values.
func (x *Brakeman) Normalize(data []byte) (*model.Normalized, error) {
	var report model.BrakemanReport
	if err := decode(x.Kind(), data, &report); err != nil {
		return nil, err
	}

	result := model.NewNormalized()
	if report.ScanInfo != nil && report.ScanInfo.SecurityWarnings != nil {
		declared := *report.ScanInfo.SecurityWarnings
		result.Declared = &declared
	}

	for i, w := range report.Warnings {
		if w.Confidence == "" {
			result.Warn(fmt.Sprintf("warning #%d has no confidence field", i))
			continue
		}
		result.Counts.Add(model.Category(w.Confidence), 1)
	}
	result.Total = result.Counts.Sum()

	return result, nil
}
