package aggregator

import (
	"sort"
	"strings"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
)

// Group partitions records by (day, customer, activity).
// Records inside a group are ordered by start time. Groups come back ordered
// by the start of their first record, so the result does not depend on the
// order of the input.
func Group(records []domain.RawRecord) [][]domain.RawRecord {
	if len(records) == 0 {
		return nil
	}

	sorted := make([]domain.RawRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lessRecord(sorted[i], sorted[j])
	})

	var groups [][]domain.RawRecord
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i].Key() == sorted[start].Key() {
			continue
		}
		groups = append(groups, sorted[start:i:i])
		start = i
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i][0], groups[j][0]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.Customer != b.Customer {
			return a.Customer < b.Customer
		}
		return a.Activity < b.Activity
	})
	return groups
}

func lessRecord(a, b domain.RawRecord) bool {
	if a.Activity != b.Activity {
		return a.Activity < b.Activity
	}
	if a.Customer != b.Customer {
		return a.Customer < b.Customer
	}
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	if !a.End.Equal(b.End) {
		return a.End.Before(b.End)
	}
	if a.Comment != b.Comment {
		return a.Comment < b.Comment
	}
	return strings.Join(a.Tags, ",") < strings.Join(b.Tags, ",")
}
