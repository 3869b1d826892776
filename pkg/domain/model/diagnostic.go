package model

import (
	"log/slog"

	"github.com/secmon-lab/scantrend/pkg/domain/types"
)

// DiagnosticKind classifies a recoverable problem found during a run
type DiagnosticKind string

const (
	DiagMissingInput     DiagnosticKind = "missing_input"
	DiagMalformedInput   DiagnosticKind = "malformed_input"
	DiagSchemaSurprise   DiagnosticKind = "schema_surprise"
	DiagUnresolvedCommit DiagnosticKind = "unresolved_commit"
)

// Diagnostic is a per-item note about skipped or defaulted data. It never
// aborts a run.
type Diagnostic struct {
	Commit  types.CommitHash
	Scanner types.ScannerName
	Kind    DiagnosticKind
	Message string
}

// LogValue returns structured log value
func (d Diagnostic) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", string(d.Kind)),
		slog.String("commit", d.Commit.String()),
	}
	if d.Scanner != "" {
		attrs = append(attrs, slog.String("scanner", d.Scanner.String()))
	}
	attrs = append(attrs, slog.String("message", d.Message))
	return slog.GroupValue(attrs...)
}
