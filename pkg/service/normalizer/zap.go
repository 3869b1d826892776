package normalizer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
)

var riskLevels = map[string]model.Category{
	"3": "High",
	"2": "Medium",
	"1": "Low",
	"0": "Informational",
}

// RiskCategory maps a ZAP risk code to its level. Unrecognized codes map to
// "Unknown(<code>)".
func RiskCategory(code string) model.Category {
	if c, ok := riskLevels[code]; ok {
		return c
	}
	return model.Category(fmt.Sprintf("Unknown(%s)", code))
}

// ZAP sums alert instance counts by risk level
type ZAP struct{}

// Kind returns the scanner kind
func (x *ZAP) Kind() types.ScannerKind {
	return types.ScannerKindZAP
}

// Normalize sums the instance counts of the alerts of every site. When any
// alert exists the four canonical levels are always reported.
func (x *ZAP) Normalize(data []byte) (*model.Normalized, error) {
	var report model.ZAPReport
	if err := decode(x.Kind(), data, &report); err != nil {
		return nil, err
	}

	result := model.NewNormalized()
	alerts := 0
	for _, site := range report.Site {
		for _, a := range site.Alerts {
			alerts++
			code := strings.TrimSpace(string(a.RiskCode))
			n, err := strconv.Atoi(strings.TrimSpace(string(a.Count)))
			if err != nil || n < 0 {
				result.Warn(fmt.Sprintf("alert %q (plugin %s) has invalid count %q", a.Name, a.PluginID, a.Count))
				n = 0
			}
			result.Counts.Add(RiskCategory(code), n)
		}
	}

	if alerts > 0 {
		for _, c := range model.VocabularyOf(x.Kind()).Canonical {
			result.Counts.Add(c, 0)
		}
	}
	result.Total = result.Counts.Sum()

	return result, nil
}
