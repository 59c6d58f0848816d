package aggregator

import (
	"strings"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
)

// Format maps a rounded merged record to the submission shape.
func Format(m domain.MergedRecord) domain.Submission {
	return domain.Submission{
		StartTime: m.Start.Format(domain.DateFormat),
		EndTime:   m.End.Format(domain.DateFormat),
		Customer:  m.Customer,
		Activity:  m.Activity,
		Comments:  m.Comments,
		Tags:      strings.Join(m.Tags, ","),
		Minutes:   m.Minutes,
	}
}
