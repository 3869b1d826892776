package model

import (
	"sort"
	"time"

	"github.com/secmon-lab/scantrend/pkg/domain/types"
)

// TimelineEntry places one commit in its period
type TimelineEntry struct {
	Commit       types.CommitHash
	Date         time.Time
	DaysDiff     int
	Offset       int
	Label        string
	SequentialID int
}

// Timeline is the ordered list of resolved commits
type Timeline struct {
	Entries     []TimelineEntry
	Diagnostics []Diagnostic
}

// NewTimeline sorts entries by date (ties broken by commit hash) and assigns
// sequential ids as a dense rank over the distinct offsets: the smallest
// offset gets 1, the next distinct offset gets 2, and so on.
func NewTimeline(entries []TimelineEntry, diags []Diagnostic) *Timeline {
	sorted := make([]TimelineEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].Commit < sorted[j].Commit
	})

	offsets := make([]int, 0, len(sorted))
	seen := make(map[int]bool)
	for _, e := range sorted {
		if !seen[e.Offset] {
			seen[e.Offset] = true
			offsets = append(offsets, e.Offset)
		}
	}
	sort.Ints(offsets)

	rank := make(map[int]int, len(offsets))
	for i, o := range offsets {
		rank[o] = i + 1
	}
	for i := range sorted {
		sorted[i].SequentialID = rank[sorted[i].Offset]
	}

	return &Timeline{Entries: sorted, Diagnostics: diags}
}

// Entry returns the entry of a commit
func (t *Timeline) Entry(commit types.CommitHash) (TimelineEntry, bool) {
	for _, e := range t.Entries {
		if e.Commit == commit {
			return e, true
		}
	}
	return TimelineEntry{}, false
}

// Periods returns the number of distinct periods
func (t *Timeline) Periods() int {
	max := 0
	for _, e := range t.Entries {
		if e.SequentialID > max {
			max = e.SequentialID
		}
	}
	return max
}
