package model

import (
	"fmt"
	"time"
)

// DefaultWindowDays is the length of one period bucket
const DefaultWindowDays = 14

// PeriodLabelLayout is the date layout used in period labels
const PeriodLabelLayout = "2006-01-02"

// DefaultAnchor is the start of period 0
var DefaultAnchor = time.Date(2025, time.November, 9, 0, 0, 0, 0, time.UTC)

// Bucketing assigns instants to fixed-length windows anchored at Anchor
type Bucketing struct {
	Anchor     time.Time
	WindowDays int
}

// NewBucketing returns a bucketing with the given anchor and window length.
// A non-positive window falls back to DefaultWindowDays.
func NewBucketing(anchor time.Time, windowDays int) Bucketing {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return Bucketing{Anchor: anchor.UTC(), WindowDays: windowDays}
}

// DaysSince returns the whole days elapsed from the anchor to t, rounded
// towards negative infinity
func (b Bucketing) DaysSince(t time.Time) int {
	return floorDiv64(int64(t.Sub(b.Anchor)), int64(24*time.Hour))
}

// Assign returns the signed offset of the window containing t
func (b Bucketing) Assign(t time.Time) int {
	return floorDiv(b.DaysSince(t), b.WindowDays)
}

// Period returns the window with the given offset
func (b Bucketing) Period(offset int) Period {
	start := b.Anchor.AddDate(0, 0, offset*b.WindowDays)
	return Period{
		Offset: offset,
		Start:  start,
		End:    start.AddDate(0, 0, b.WindowDays-1),
	}
}

// Period is one window. End is the last day included in the window.
type Period struct {
	Offset int
	Start  time.Time
	End    time.Time
}

// Label returns "YYYY-MM-DD to YYYY-MM-DD"
func (p Period) Label() string {
	return fmt.Sprintf("%s to %s", p.Start.Format(PeriodLabelLayout), p.End.Format(PeriodLabelLayout))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorDiv64(a, b int64) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return int(q)
}
