package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasks-api/internal/docstore"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

// JobsCollection is the document collection holding job records.
const JobsCollection = "jobs"

// ErrJobNotFound is returned when a status update names an unknown job.
var ErrJobNotFound = errors.New("job not found")

// DocumentStore implements Store over a docstore collection.
type DocumentStore struct {
	jobs   docstore.Collection
	logger *slog.Logger
	now    func() time.Time
}

// NewDocumentStore creates a job store in the jobs collection of ds.
// now is used to evaluate olderThan; if nil, time.Now is used.
func NewDocumentStore(ds docstore.Store, now func() time.Time, logger *slog.Logger) *DocumentStore {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &DocumentStore{
		jobs:   ds.Collection(JobsCollection),
		logger: logger.With(slog.String("component", "job_store")),
		now:    now,
	}
}

// Ensure DocumentStore implements Store interface
var _ Store = (*DocumentStore)(nil)

type jobRecord struct {
	ID        string     `mapstructure:"id"`
	Type      string     `mapstructure:"type"`
	Payload   string     `mapstructure:"payload"`
	Status    string     `mapstructure:"status"`
	Error     string     `mapstructure:"error"`
	CreatedAt time.Time  `mapstructure:"createdAt"`
	UpdatedAt *time.Time `mapstructure:"updatedAt"`
}

// Save implements Store.Save.
func (s *DocumentStore) Save(ctx context.Context, job Job) error {
	_, err := s.jobs.Create(ctx, docstore.Document{
		docstore.FieldID: job.ID(),
		"type":           job.Type(),
		"payload":        string(job.Payload()),
		"status":         string(StatusPending),
		"error":          "",
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID()))
		return fmt.Errorf("failed to save job %s: %w", job.ID(), err)
	}
	return nil
}

// UpdateStatus implements Store.UpdateStatus.
func (s *DocumentStore) UpdateStatus(ctx context.Context, id string, status Status, errMsg string) error {
	_, err := s.jobs.Update(ctx, id, docstore.Document{
		"status": string(status),
		"error":  errMsg,
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update job %s: %w", id, err)
	}
	return nil
}

// ListByStatus implements Store.ListByStatus. Records are returned oldest first.
func (s *DocumentStore) ListByStatus(ctx context.Context, status Status, olderThan time.Duration) ([]Record, error) {
	docs, err := s.jobs.Query(ctx, docstore.Query{
		Conditions: []docstore.Condition{docstore.Where("status", docstore.OpEqual, string(status))},
		OrderBy:    &docstore.OrderBy{Field: docstore.FieldCreatedAt, Direction: docstore.Asc},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s jobs: %w", status, err)
	}

	cutoff := s.now().Add(-olderThan)
	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		var rec jobRecord
		if err := docstore.Decode(doc, &rec); err != nil {
			return nil, err
		}
		last := rec.CreatedAt
		if rec.UpdatedAt != nil {
			last = *rec.UpdatedAt
		}
		if olderThan > 0 && last.After(cutoff) {
			continue
		}
		records = append(records, Record{
			ID:        rec.ID,
			Type:      rec.Type,
			Payload:   []byte(rec.Payload),
			Status:    Status(rec.Status),
			Error:     rec.Error,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	return records, nil
}
