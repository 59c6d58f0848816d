package collector

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
	apperrors "github.com/kurihiro0119/hamster-timesheets/internal/errors"
)

const hamsterTimeFormat = "2006-01-02 15:04:05"

// The activity name holds the customer and the category holds the kind of
// work, so the two are swapped on the way out.
const factsQuery = `
	SELECT
		strftime('%Y-%m-%d %H:%M:%S', f.start_time),
		strftime('%Y-%m-%d %H:%M:%S', f.end_time),
		COALESCE(a.name, ''),
		COALESCE(c.name, ''),
		COALESCE(f.description, ''),
		group_concat(t.name)
	FROM facts f
	LEFT JOIN activities a ON a.id = f.activity_id
	LEFT JOIN categories c ON c.id = a.category_id
	LEFT JOIN fact_tags ft ON ft.fact_id = f.id
	LEFT JOIN tags t ON t.id = ft.tag_id
	WHERE f.end_time IS NOT NULL
		AND f.start_time >= ? AND f.end_time < ?
	GROUP BY f.id
	ORDER BY f.start_time, f.id
`

// HamsterCollector reads facts from a Hamster SQLite database
type HamsterCollector struct {
	db  *sql.DB
	loc *time.Location
}

// NewHamsterCollector opens the Hamster database read-only.
// Timestamps in the database are wall clock times in loc.
func NewHamsterCollector(dbPath string, loc *time.Location) (*HamsterCollector, error) {
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("hamster database %s", dbPath))
		}
		return nil, fmt.Errorf("failed to stat hamster database: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open hamster database: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	return &HamsterCollector{db: db, loc: loc}, nil
}

// CollectRecords returns finished facts that start at or after start and end before end.
func (h *HamsterCollector) CollectRecords(ctx context.Context, start, end time.Time) ([]domain.RawRecord, error) {
	rows, err := h.db.QueryContext(ctx, factsQuery,
		start.In(h.loc).Format(hamsterTimeFormat), end.In(h.loc).Format(hamsterTimeFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	var records []domain.RawRecord
	for rows.Next() {
		var (
			startStr, endStr sql.NullString
			r                domain.RawRecord
			tags             sql.NullString
		)
		if err := rows.Scan(&startStr, &endStr, &r.Customer, &r.Activity, &r.Comment, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		if r.Start, err = h.parseTime(startStr); err != nil {
			return nil, err
		}
		if r.End, err = h.parseTime(endStr); err != nil {
			return nil, err
		}
		r.Tags = splitTags(tags.String)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read facts: %w", err)
	}
	return records, nil
}

func (h *HamsterCollector) parseTime(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(hamsterTimeFormat, s.String, h.loc)
	if err != nil {
		return time.Time{}, apperrors.NewMalformedRecordError(fmt.Sprintf("unparseable fact time %q", s.String))
	}
	return t, nil
}

// Close closes the database connection
func (h *HamsterCollector) Close() error {
	return h.db.Close()
}
