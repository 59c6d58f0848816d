// Package collector reads raw time tracker facts.
package collector

import (
	"context"
	"strings"
	"time"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
)

// Collector supplies raw records for a half-open [start, end) window
type Collector interface {
	CollectRecords(ctx context.Context, start, end time.Time) ([]domain.RawRecord, error)
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
