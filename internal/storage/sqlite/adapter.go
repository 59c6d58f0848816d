package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
	apperrors "github.com/kurihiro0119/hamster-timesheets/internal/errors"
	"github.com/kurihiro0119/hamster-timesheets/internal/storage"
)

// sqliteStorage implements the Storage interface for SQLite
type sqliteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (storage.Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &sqliteStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *sqliteStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		start_date TIMESTAMP NOT NULL,
		end_date TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		record_count INTEGER NOT NULL DEFAULT 0,
		entry_count INTEGER NOT NULL DEFAULT 0,
		submitted_count INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_batches_created_at ON batches(created_at);

	CREATE TABLE IF NOT EXISTS submissions (
		batch_id TEXT NOT NULL REFERENCES batches(id),
		seq INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		customer TEXT NOT NULL,
		activity TEXT NOT NULL,
		comments TEXT NOT NULL,
		tags TEXT NOT NULL,
		minutes INTEGER NOT NULL,
		PRIMARY KEY (batch_id, seq)
	);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveBatch inserts or updates a batch
func (s *sqliteStorage) SaveBatch(ctx context.Context, b *domain.SubmissionBatch) error {
	query := `
		INSERT OR REPLACE INTO batches (id, mode, start_date, end_date, status, record_count, entry_count, submitted_count, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		b.ID, b.Mode, b.StartDate, b.EndDate, b.Status,
		b.RecordCount, b.EntryCount, b.SubmittedCount, b.Error,
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save batch %s: %w", b.ID, err)
	}
	return nil
}

const batchColumns = `id, mode, start_date, end_date, status, record_count, entry_count, submitted_count, error, created_at, updated_at`

// GetBatch retrieves a batch by id
func (s *sqliteStorage) GetBatch(ctx context.Context, id string) (*domain.SubmissionBatch, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = ?`, id)
	b, err := scanBatch(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("batch %s", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch %s: %w", id, err)
	}
	return b, nil
}

// ListBatches returns the most recent batches first
func (s *sqliteStorage) ListBatches(ctx context.Context, limit int) ([]*domain.SubmissionBatch, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+batchColumns+` FROM batches ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	var batches []*domain.SubmissionBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// SaveSubmissions replaces the submitted lines of a batch
func (s *sqliteStorage) SaveSubmissions(ctx context.Context, batchID string, subs []domain.Submission) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE batch_id = ?`, batchID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO submissions (batch_id, seq, start_time, end_time, customer, activity, comments, tags, minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, sub := range subs {
		_, err = stmt.ExecContext(ctx,
			batchID, i, sub.StartTime, sub.EndTime, sub.Customer, sub.Activity, sub.Comments, sub.Tags, sub.Minutes,
		)
		if err != nil {
			return fmt.Errorf("failed to save submission %d of batch %s: %w", i, batchID, err)
		}
	}

	return tx.Commit()
}

// GetSubmissions returns the submitted lines of a batch in order
func (s *sqliteStorage) GetSubmissions(ctx context.Context, batchID string) ([]domain.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT start_time, end_time, customer, activity, comments, tags, minutes
		FROM submissions WHERE batch_id = ? ORDER BY seq
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Submission
	for rows.Next() {
		var sub domain.Submission
		if err := rows.Scan(&sub.StartTime, &sub.EndTime, &sub.Customer, &sub.Activity, &sub.Comments, &sub.Tags, &sub.Minutes); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Close closes the database connection
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBatch(row scanner) (*domain.SubmissionBatch, error) {
	var b domain.SubmissionBatch
	err := row.Scan(&b.ID, &b.Mode, &b.StartDate, &b.EndDate, &b.Status,
		&b.RecordCount, &b.EntryCount, &b.SubmittedCount, &b.Error,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
