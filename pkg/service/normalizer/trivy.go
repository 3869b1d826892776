package normalizer

import (
	"fmt"

	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
)

// Trivy counts vulnerabilities and secrets by severity
type Trivy struct{}

// Kind returns the scanner kind
func (x *Trivy) Kind() types.ScannerKind {
	return types.ScannerKindTrivy
}

// Flatten merges the vulnerabilities and secrets of every result into one
// list. Secrets have no package and share the vulnerability severity scale.
func Flatten(report *model.TrivyReport) []model.Finding {
	var findings []model.Finding
	for _, r := range report.Results {
		for _, v := range r.Vulnerabilities {
			findings = append(findings, model.Finding{
				Target:   r.Target,
				Kind:     model.FindingKindVulnerability,
				ID:       v.VulnerabilityID,
				Package:  v.PkgName,
				Severity: model.Category(v.Severity),
			})
		}
		for _, s := range r.Secrets {
			findings = append(findings, model.Finding{
				Target:   r.Target,
				Kind:     model.FindingKindSecret,
				ID:       s.RuleID,
				Package:  "N/A",
				Severity: model.Category(s.Severity),
			})
		}
	}
	return findings
}

// Normalize counts the flattened findings by severity. Total is the number of
// findings, including those without a severity.
func (x *Trivy) Normalize(data []byte) (*model.Normalized, error) {
	var report model.TrivyReport
	if err := decode(x.Kind(), data, &report); err != nil {
		return nil, err
	}

	result := model.NewNormalized()
	findings := Flatten(&report)
	for _, f := range findings {
		if f.Severity == "" {
			result.Warn(fmt.Sprintf("%s %s in %s has no severity", f.Kind, f.ID, f.Target))
			continue
		}
		result.Counts.Add(f.Severity, 1)
	}
	result.Total = len(findings)

	return result, nil
}
