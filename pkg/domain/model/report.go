package model

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// LooseString decodes a JSON string, number or null into its textual form.
// ZAP emits riskcode and count as strings but some exporters write numbers.
type LooseString string

// UnmarshalJSON implements json.Unmarshaler
func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return goerr.Wrap(err, "failed to decode string value")
		}
		*s = LooseString(v)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return goerr.Wrap(err, "failed to decode numeric value")
		}
		*s = LooseString(n.String())
	}
	return nil
}

// BrakemanReport is the subset of a Brakeman JSON report read by the normalizer
type BrakemanReport struct {
	ScanInfo *BrakemanScanInfo `json:"scan_info"`
	Warnings []BrakemanWarning `json:"warnings"`
}

// BrakemanScanInfo carries the report's own summary
type BrakemanScanInfo struct {
	BrakemanVersion  string `json:"brakeman_version"`
	SecurityWarnings *int   `json:"security_warnings"`
}

// BrakemanWarning is one warning entry
type BrakemanWarning struct {
	WarningType string `json:"warning_type"`
	Fingerprint string `json:"fingerprint"`
	CheckName   string `json:"check_name"`
	File        string `json:"file"`
	Confidence  string `json:"confidence"`
}

// TrivyReport is the subset of a Trivy JSON report read by the normalizer
type TrivyReport struct {
	ArtifactName string        `json:"ArtifactName"`
	Results      []TrivyResult `json:"Results"`
}

// TrivyResult is the scan result of one target (e.g., Gemfile.lock)
type TrivyResult struct {
	Target          string               `json:"Target"`
	Class           string               `json:"Class"`
	Vulnerabilities []TrivyVulnerability `json:"Vulnerabilities"`
	Secrets         []TrivySecret        `json:"Secrets"`
}

// TrivyVulnerability is a dependency vulnerability
type TrivyVulnerability struct {
	VulnerabilityID string `json:"VulnerabilityID"`
	PkgName         string `json:"PkgName"`
	Severity        string `json:"Severity"`
}

// TrivySecret is an exposed secret finding
type TrivySecret struct {
	RuleID   string `json:"RuleID"`
	Category string `json:"Category"`
	Severity string `json:"Severity"`
}

// FindingKind distinguishes flattened Trivy findings
type FindingKind string

const (
	FindingKindVulnerability FindingKind = "Vulnerability"
	FindingKindSecret        FindingKind = "Secret"
)

// Finding is a flattened Trivy finding
type Finding struct {
	Target   string
	Kind     FindingKind
	ID       string
	Package  string
	Severity Category
}

// ZAPReport is the subset of an OWASP ZAP JSON report read by the normalizer
type ZAPReport struct {
	Site []ZAPSite `json:"site"`
}

// ZAPSite groups the alerts raised for one scanned site
type ZAPSite struct {
	Name   string     `json:"@name"`
	Alerts []ZAPAlert `json:"alerts"`
}

// ZAPAlert is one grouped alert. Count is the number of instances.
type ZAPAlert struct {
	PluginID string      `json:"pluginid"`
	Name     string      `json:"name"`
	RiskCode LooseString `json:"riskcode"`
	Count    LooseString `json:"count"`
}
