package types

// ScannerKind selects the report format understood by a normalizer
type ScannerKind string

const (
	ScannerKindBrakeman ScannerKind = "brakeman"
	ScannerKindTrivy    ScannerKind = "trivy"
	ScannerKindZAP      ScannerKind = "zap"
)

// String returns the string representation of the kind
func (k ScannerKind) String() string {
	return string(k)
}

// IsValid checks if the kind is known
func (k ScannerKind) IsValid() bool {
	switch k {
	case ScannerKindBrakeman, ScannerKindTrivy, ScannerKindZAP:
		return true
	default:
		return false
	}
}

// AllScannerKinds returns every known kind in their default pipeline order
func AllScannerKinds() []ScannerKind {
	return []ScannerKind{
		ScannerKindBrakeman,
		ScannerKindTrivy,
		ScannerKindZAP,
	}
}
