// Package billing submits timesheet lines to the GetMyTime service.
package billing

import (
	"context"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
)

// Sink accepts formatted submissions.
// Validate checks a whole batch so that nothing is sent when any line is bad.
type Sink interface {
	Validate(ctx context.Context, subs []domain.Submission) error
	Submit(ctx context.Context, sub domain.Submission) error
}
