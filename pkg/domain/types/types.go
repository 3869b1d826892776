package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// CommitHash identifies one merged commit. It is the name of the commit's
// artifact directory under the merge-set root.
type CommitHash string

// String returns the string representation
func (h CommitHash) String() string {
	return string(h)
}

// Short returns the first 8 characters of the hash
func (h CommitHash) Short() string {
	if len(h) <= 8 {
		return string(h)
	}
	return string(h[:8])
}

// Validate checks that the hash looks like an abbreviated or full git object name
func (h CommitHash) Validate() error {
	if len(h) < 4 || len(h) > 64 {
		return goerr.New("invalid commit hash length", goerr.V("hash", string(h)))
	}
	for _, c := range h {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return goerr.New("invalid commit hash character", goerr.V("hash", string(h)))
		}
	}
	return nil
}

// ScannerName is the configured name of a scanner. It doubles as the column
// prefix in the consolidated dataset.
type ScannerName string

// String returns the string representation
func (n ScannerName) String() string {
	return string(n)
}

// RunID identifies one consolidation run
type RunID string

// String returns the string representation
func (id RunID) String() string {
	return string(id)
}

// NewRunID creates a new RunID
func NewRunID() RunID {
	return RunID(uuid.New().String())
}
