package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kurihiro0119/hamster-timesheets/internal/aggregator"
	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
	apperrors "github.com/kurihiro0119/hamster-timesheets/internal/errors"
)

// ExportRecord is one fact in the JSON export format.
type ExportRecord struct {
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Minutes   int     `json:"minutes"`
	Comments  string  `json:"comments"`
	Customer  *string `json:"customer"`
	Activity  *string `json:"activity"`
	Tags      *string `json:"tags"`
}

// JSONCollector serves records decoded from an export document
type JSONCollector struct {
	records []domain.RawRecord
}

// NewJSONCollector decodes an export document from r.
// Times are read as wall clock times in loc.
func NewJSONCollector(r io.Reader, loc *time.Location) (*JSONCollector, error) {
	if loc == nil {
		loc = time.Local
	}

	var exported []ExportRecord
	if err := json.NewDecoder(r).Decode(&exported); err != nil {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("invalid export document: %v", err))
	}

	records := make([]domain.RawRecord, 0, len(exported))
	for i, e := range exported {
		rec := domain.RawRecord{
			Customer: deref(e.Customer),
			Activity: deref(e.Activity),
			Comment:  e.Comments,
			Tags:     splitTags(deref(e.Tags)),
		}
		var err error
		if rec.Start, err = parseExportTime(e.StartTime, loc); err != nil || rec.Start.IsZero() {
			return nil, apperrors.NewMalformedRecordError(fmt.Sprintf("record %d: invalid start_time %q", i, e.StartTime))
		}
		if rec.End, err = parseExportTime(e.EndTime, loc); err != nil {
			return nil, apperrors.NewMalformedRecordError(fmt.Sprintf("record %d: invalid end_time %q", i, e.EndTime))
		}
		records = append(records, rec)
	}
	return &JSONCollector{records: records}, nil
}

// CollectRecords returns the decoded records inside [start, end).
// A zero start or end leaves that side of the window open.
func (j *JSONCollector) CollectRecords(_ context.Context, start, end time.Time) ([]domain.RawRecord, error) {
	var out []domain.RawRecord
	for _, r := range j.records {
		if !start.IsZero() && r.Start.Before(start) {
			continue
		}
		if !end.IsZero() && !r.End.IsZero() && !r.End.Before(end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// EncodeJSON writes records in the export format.
func EncodeJSON(w io.Writer, records []domain.RawRecord) error {
	exported := make([]ExportRecord, 0, len(records))
	for _, r := range records {
		e := ExportRecord{
			StartTime: r.Start.Format(domain.DateFormat),
			Minutes:   aggregator.ToMinutes(r.Duration()),
			Comments:  r.Comment,
			Customer:  nullable(r.Customer),
			Activity:  nullable(r.Activity),
			Tags:      nullable(strings.Join(r.Tags, ",")),
		}
		if !r.End.IsZero() {
			e.EndTime = r.End.Format(domain.DateFormat)
		}
		exported = append(exported, e)
	}
	return json.NewEncoder(w).Encode(exported)
}

func parseExportTime(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(domain.DateFormat, s, loc)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
