package aggregator

import (
	"time"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
)

// BillingIncrement is the billing granularity in minutes.
const BillingIncrement = 15

// ToMinutes converts a duration to whole minutes, rounding partial minutes up.
// Sub-second precision is dropped first. Negative durations give 0.
func ToMinutes(d time.Duration) int {
	seconds := int64(d / time.Second)
	if seconds <= 0 {
		return 0
	}
	return int((seconds + 59) / 60)
}

// RoundMinutes snaps minutes to the nearest BillingIncrement.
// A value exactly halfway rounds up.
func RoundMinutes(minutes int) int {
	under := (minutes / BillingIncrement) * BillingIncrement
	over := under + BillingIncrement
	if abs(minutes-over) <= abs(minutes-under) {
		return over
	}
	return under
}

// Round sets the billed minutes of a merged record.
func Round(m domain.MergedRecord) domain.MergedRecord {
	m.Minutes = RoundMinutes(ToMinutes(m.End.Sub(m.Start)))
	return m
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
