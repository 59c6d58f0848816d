// Package timecalc parses the [start, end) windows used by the CLI and API.
package timecalc

import (
	"fmt"
	"time"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
	apperrors "github.com/kurihiro0119/hamster-timesheets/internal/errors"
)

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DefaultWindow runs from yesterday 00:00 to tomorrow 00:00 around now.
func DefaultWindow(now time.Time) domain.TimeRange {
	today := StartOfDay(now)
	return domain.TimeRange{
		Start: today.AddDate(0, 0, -1),
		End:   today.AddDate(0, 0, 1),
	}
}

// ParseBound reads RFC3339 or YYYY-MM-DD. A bare date means midnight in loc.
func ParseBound(val string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	if d, err := time.ParseInLocation(domain.DayFormat, val, loc); err == nil {
		return d, nil
	}
	return time.Time{}, apperrors.NewBadRequestError(fmt.Sprintf("invalid time %q: use YYYY-MM-DD or RFC3339", val))
}

// ParseWindow builds a window from optional start and end strings.
// Empty values fall back to DefaultWindow. The end is exclusive.
func ParseWindow(startStr, endStr string, now time.Time) (domain.TimeRange, error) {
	tr := DefaultWindow(now)
	loc := now.Location()

	if startStr != "" {
		start, err := ParseBound(startStr, loc)
		if err != nil {
			return domain.TimeRange{}, err
		}
		tr.Start = start
	}
	if endStr != "" {
		end, err := ParseBound(endStr, loc)
		if err != nil {
			return domain.TimeRange{}, err
		}
		tr.End = end
	}

	if !tr.Start.Before(tr.End) {
		return domain.TimeRange{}, apperrors.NewBadRequestError(
			fmt.Sprintf("start %s must be before end %s", tr.Start.Format(time.RFC3339), tr.End.Format(time.RFC3339)))
	}
	return tr, nil
}
