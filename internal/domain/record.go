package domain

import "time"

// RawRecord represents one fact read from the time tracker.
// A zero End means the fact is still running.
type RawRecord struct {
	Start    time.Time
	End      time.Time
	Customer string
	Activity string
	Comment  string
	Tags     []string
}

// Duration returns End - Start.
func (r RawRecord) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Key returns the grouping key of the record.
func (r RawRecord) Key() GroupKey {
	return GroupKey{
		Day:      r.Start.Format(DayFormat),
		Customer: r.Customer,
		Activity: r.Activity,
	}
}

// GroupKey identifies records that belong to one billable block
type GroupKey struct {
	Day      string
	Customer string
	Activity string
}

// MergedRecord is the result of folding a group of raw records.
// End is synthetic: Start plus the accumulated elapsed minutes.
type MergedRecord struct {
	Start    time.Time
	End      time.Time
	Customer string
	Activity string
	Comments string
	Tags     []string
	Minutes  int
}

// TimeRange represents a half-open [Start, End) window
type TimeRange struct {
	Start time.Time
	End   time.Time
}
