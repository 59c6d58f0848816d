// Package submitter runs the collect, aggregate and submit workflow.
package submitter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kurihiro0119/hamster-timesheets/internal/aggregator"
	"github.com/kurihiro0119/hamster-timesheets/internal/billing"
	"github.com/kurihiro0119/hamster-timesheets/internal/collector"
	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
	apperrors "github.com/kurihiro0119/hamster-timesheets/internal/errors"
	"github.com/kurihiro0119/hamster-timesheets/internal/logger"
	"github.com/kurihiro0119/hamster-timesheets/internal/storage"
)

// Options controls a single run
type Options struct {
	// DryRun validates against the billing service but sends nothing.
	DryRun bool
}

// Result summarizes a run
type Result struct {
	BatchID     string              `json:"batch_id,omitempty"`
	DryRun      bool                `json:"dry_run"`
	Records     int                 `json:"records"`
	Entries     int                 `json:"entries"`
	// Submitted counts entries accepted by the sink, or in a dry run the
	// entries that passed validation.
	Submitted   int                 `json:"submitted"`
	Submissions []domain.Submission `json:"submissions"`
}

// Submitter wires a record source to a billing sink.
// Sink and store may be nil: without a sink only Preview works, without a
// store runs are not journaled.
type Submitter struct {
	collector collector.Collector
	sink      billing.Sink
	store     storage.Storage
	log       *logger.Logger
	now       func() time.Time
}

// New creates a new Submitter
func New(c collector.Collector, sink billing.Sink, store storage.Storage, log *logger.Logger) *Submitter {
	if log == nil {
		log = logger.Nop()
	}
	return &Submitter{
		collector: c,
		sink:      sink,
		store:     store,
		log:       log,
		now:       time.Now,
	}
}

// Preview collects and aggregates without touching the billing service.
func (s *Submitter) Preview(ctx context.Context, tr domain.TimeRange) (*Result, error) {
	records, err := s.collector.CollectRecords(ctx, tr.Start, tr.End)
	if err != nil {
		return nil, fmt.Errorf("failed to collect records: %w", err)
	}

	subs, err := aggregator.Aggregate(records)
	if err != nil {
		return nil, err
	}

	s.log.Debug("aggregated records", "records", len(records), "entries", len(subs))
	return &Result{Records: len(records), Entries: len(subs), Submissions: subs}, nil
}

// Run aggregates the window and submits every entry.
// Every entry is validated before the first one is sent.
func (s *Submitter) Run(ctx context.Context, tr domain.TimeRange, opts Options) (*Result, error) {
	if s.sink == nil {
		return nil, apperrors.NewBadRequestError("billing is not configured")
	}

	now := s.now()
	batch := &domain.SubmissionBatch{
		ID:        uuid.New().String(),
		Mode:      domain.BatchModeSubmit,
		StartDate: tr.Start,
		EndDate:   tr.End,
		Status:    domain.BatchStatusInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if opts.DryRun {
		batch.Mode = domain.BatchModeDryRun
	}
	log := s.log.With("batch_id", batch.ID, "dry_run", opts.DryRun)

	if s.store != nil {
		if err := s.store.SaveBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("failed to start batch: %w", err)
		}
	}

	result, runErr := s.run(ctx, tr, opts, log)
	result.BatchID = batch.ID
	batch.RecordCount = result.Records
	batch.EntryCount = result.Entries
	batch.SubmittedCount = result.Submitted
	batch.UpdatedAt = s.now()
	if runErr != nil {
		batch.Status = domain.BatchStatusFailed
		batch.Error = runErr.Error()
		log.Error("batch failed", "error", runErr, "submitted", result.Submitted)
	} else {
		batch.Status = domain.BatchStatusCompleted
		log.Info("batch completed", "entries", result.Entries, "submitted", result.Submitted)
	}

	if s.store != nil {
		// the final state is saved even when ctx was cancelled
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := s.store.SaveSubmissions(saveCtx, batch.ID, result.Submissions[:result.Submitted]); err != nil && runErr == nil {
			runErr = fmt.Errorf("failed to journal submissions: %w", err)
		}
		if err := s.store.SaveBatch(saveCtx, batch); err != nil && runErr == nil {
			runErr = fmt.Errorf("failed to finish batch: %w", err)
		}
	}

	if runErr != nil {
		return result, runErr
	}
	return result, nil
}

func (s *Submitter) run(ctx context.Context, tr domain.TimeRange, opts Options, log *logger.Logger) (*Result, error) {
	result := &Result{DryRun: opts.DryRun}

	preview, err := s.Preview(ctx, tr)
	if err != nil {
		return result, err
	}
	result.Records = preview.Records
	result.Entries = preview.Entries
	result.Submissions = preview.Submissions

	if err := s.sink.Validate(ctx, result.Submissions); err != nil {
		return result, err
	}

	for i, sub := range result.Submissions {
		if opts.DryRun {
			log.Info("would submit entry", "start", sub.StartTime, "customer", sub.Customer, "activity", sub.Activity, "minutes", sub.Minutes)
			result.Submitted++
			continue
		}
		if err := s.sink.Submit(ctx, sub); err != nil {
			return result, fmt.Errorf("entry %d of %d: %w", i+1, len(result.Submissions), err)
		}
		result.Submitted++
	}
	return result, nil
}
