// Package normalizer turns raw scanner reports into per-category counts.
package normalizer

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
)

// Normalizer converts one raw report document into category counts
type Normalizer interface {
	Kind() types.ScannerKind
	Normalize(data []byte) (*model.Normalized, error)
}

// New returns the normalizer for a scanner kind
func New(kind types.ScannerKind) (Normalizer, error) {
	switch kind {
	case types.ScannerKindBrakeman:
		return &Brakeman{}, nil
	case types.ScannerKindTrivy:
		return &Trivy{}, nil
	case types.ScannerKindZAP:
		return &ZAP{}, nil
	default:
		return nil, goerr.New("unknown scanner kind", goerr.V("kind", kind))
	}
}

func decode(kind types.ScannerKind, data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return goerr.New("report is empty",
			goerr.T(model.ErrTagMalformedReport),
			goerr.V("kind", kind))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return goerr.Wrap(err, "failed to decode report",
			goerr.T(model.ErrTagMalformedReport),
			goerr.V("kind", kind))
	}
	return nil
}
