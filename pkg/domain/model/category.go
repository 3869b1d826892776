package model

import (
	"sort"

	"github.com/secmon-lab/scantrend/pkg/domain/types"
)

// Category is a scanner-specific severity, confidence or risk label
type Category string

// String returns the string representation
func (c Category) String() string {
	return string(c)
}

// Vocabulary is the closed, ordered set of canonical categories of a scanner
// kind. Labels outside the set are still accepted and are ordered after the
// canonical ones.
type Vocabulary struct {
	Canonical []Category
}

var (
	brakemanVocabulary = Vocabulary{Canonical: []Category{"High", "Medium", "Weak"}}
	trivyVocabulary    = Vocabulary{Canonical: []Category{"CRITICAL", "HIGH", "MEDIUM", "LOW", "UNKNOWN"}}
	zapVocabulary      = Vocabulary{Canonical: []Category{"High", "Medium", "Low", "Informational"}}
)

// VocabularyOf returns the vocabulary of a scanner kind
func VocabularyOf(kind types.ScannerKind) Vocabulary {
	switch kind {
	case types.ScannerKindBrakeman:
		return brakemanVocabulary
	case types.ScannerKindTrivy:
		return trivyVocabulary
	case types.ScannerKindZAP:
		return zapVocabulary
	default:
		return Vocabulary{}
	}
}

// IsCanonical returns true if c belongs to the canonical set
func (v Vocabulary) IsCanonical(c Category) bool {
	for _, x := range v.Canonical {
		if x == c {
			return true
		}
	}
	return false
}

// Union returns the canonical categories in canonical order followed by every
// other observed category sorted lexically. Canonical categories are always
// present even if never observed.
func (v Vocabulary) Union(observed ...Counts) []Category {
	result := make([]Category, 0, len(v.Canonical))
	result = append(result, v.Canonical...)

	seen := make(map[Category]bool, len(v.Canonical))
	for _, c := range v.Canonical {
		seen[c] = true
	}

	var extra []Category
	for _, counts := range observed {
		for c := range counts {
			if seen[c] {
				continue
			}
			seen[c] = true
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })

	return append(result, extra...)
}
