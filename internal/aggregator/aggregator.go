// Package aggregator turns raw time tracker facts into billable timesheet lines.
//
// The pipeline is Validate, Group, Combine, Round and Format. Every step is a
// pure function over in-memory values; nothing here performs I/O.
package aggregator

import (
	"fmt"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
	apperrors "github.com/kurihiro0119/hamster-timesheets/internal/errors"
)

// Aggregate runs the whole pipeline over one batch of records.
// A single malformed record rejects the batch and no submissions are returned.
func Aggregate(records []domain.RawRecord) ([]domain.Submission, error) {
	if err := Validate(records); err != nil {
		return nil, err
	}

	groups := Group(records)
	submissions := make([]domain.Submission, 0, len(groups))
	for _, group := range groups {
		merged := Round(Combine(group))
		submissions = append(submissions, Format(merged))
	}
	return submissions, nil
}

// Validate rejects records that have no end time or end before they start.
func Validate(records []domain.RawRecord) error {
	for i, r := range records {
		if r.End.IsZero() {
			return apperrors.NewMalformedRecordError(
				fmt.Sprintf("record %d (%s / %s at %s) has no end time", i, r.Customer, r.Activity, r.Start.Format(domain.DateFormat)))
		}
		if r.End.Before(r.Start) {
			return apperrors.NewMalformedRecordError(
				fmt.Sprintf("record %d (%s / %s) ends at %s before it starts at %s", i, r.Customer, r.Activity,
					r.End.Format(domain.DateFormat), r.Start.Format(domain.DateFormat)))
		}
	}
	return nil
}
