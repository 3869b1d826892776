package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
)

// ScannerSpec describes one scanner of the merge set
type ScannerSpec struct {
	Name       types.ScannerName `yaml:"name"`        // Column prefix (e.g., "brakeman")
	Kind       types.ScannerKind `yaml:"kind"`        // Report format
	ReportFile string            `yaml:"report_file"` // File name inside <commit>/artifacts/
}

// Validate validates the scanner spec
func (s *ScannerSpec) Validate() error {
	if s.Name == "" {
		return goerr.New("scanner name is required")
	}
	if !s.Kind.IsValid() {
		return goerr.New("unknown scanner kind",
			goerr.V("name", s.Name),
			goerr.V("kind", s.Kind))
	}
	if s.ReportFile == "" {
		return goerr.New("scanner report file is required",
			goerr.V("name", s.Name))
	}
	return nil
}

// ScannersConfig represents the scanners configuration
type ScannersConfig struct {
	Scanners []ScannerSpec `yaml:"scanners"`
}

// DefaultScannersConfig returns the built-in scanner list used when no
// configuration file is given
func DefaultScannersConfig() *ScannersConfig {
	return &ScannersConfig{
		Scanners: []ScannerSpec{
			{Name: "brakeman", Kind: types.ScannerKindBrakeman, ReportFile: "brakeman-report.json"},
			{Name: "trivy", Kind: types.ScannerKindTrivy, ReportFile: "trivy-report.json"},
			{Name: "zap", Kind: types.ScannerKindZAP, ReportFile: "zap-report.json"},
		},
	}
}

// Validate validates the scanners configuration
func (c *ScannersConfig) Validate() error {
	if len(c.Scanners) == 0 {
		return goerr.New("at least one scanner is required")
	}

	names := make(map[types.ScannerName]bool)
	for i, s := range c.Scanners {
		if err := s.Validate(); err != nil {
			return goerr.Wrap(err, "invalid scanner at index",
				goerr.V("index", i),
				goerr.V("name", s.Name))
		}

		if names[s.Name] {
			return goerr.New("duplicate scanner name",
				goerr.V("name", s.Name))
		}
		names[s.Name] = true
	}

	return nil
}

// FindScannerByName finds a scanner by its name
func (c *ScannersConfig) FindScannerByName(name types.ScannerName) *ScannerSpec {
	for _, s := range c.Scanners {
		if s.Name == name {
			result := s
			return &result
		}
	}
	return nil
}
