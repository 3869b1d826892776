package usecase_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
)

const (
	commitA types.CommitHash = "1111aaaa2222bbbb3333cccc4444dddd5555eeee"
	commitB types.CommitHash = "6666ffff7777aaaa8888bbbb9999cccc0000dddd"

	brakemanReport = `{"scan_info":{"security_warnings":3},"warnings":[{"confidence":"High"},{"confidence":"High"},{"confidence":"Medium"}]}`
	trivyReport    = `{"Results":[{"Target":"Gemfile.lock","Vulnerabilities":[{"VulnerabilityID":"CVE-1","PkgName":"rack","Severity":"HIGH"},{"VulnerabilityID":"CVE-2","PkgName":"nokogiri","Severity":"CRITICAL"}],"Secrets":[{"RuleID":"aws-access-key-id","Severity":"HIGH"}]}]}`
	zapReport      = `{"site":[{"@name":"http://localhost","alerts":[{"riskcode":"3","count":"5"},{"riskcode":"9","count":"2"}]}]}`
)

// writeReport writes <root>/<commit>/artifacts/<file>
func writeReport(t *testing.T, root string, commit types.CommitHash, file, content string) {
	t.Helper()
	dir := filepath.Join(root, commit.String(), "artifacts")
	gt.NoError(t, os.MkdirAll(dir, 0755))
	gt.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0644))
}

// newMergeSet lays out two commits; commitB has no Trivy report
func newMergeSet(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeReport(t, root, commitA, "brakeman-report.json", brakemanReport)
	writeReport(t, root, commitA, "trivy-report.json", trivyReport)
	writeReport(t, root, commitA, "zap-report.json", zapReport)

	writeReport(t, root, commitB, "brakeman-report.json", `{"warnings":[]}`)
	writeReport(t, root, commitB, "zap-report.json", `{"site":[]}`)

	return root
}
