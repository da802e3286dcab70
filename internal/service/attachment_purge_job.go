package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/events"
	"github.com/phrazzld/tasks-api/internal/jobs"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

// AttachmentPurgeJobType identifies attachment purge jobs.
const AttachmentPurgeJobType = "attachment_purge"

type attachmentPurgePayload struct {
	UserID string `json:"userId"`
	TaskID string `json:"taskId"`
}

// AttachmentPurgeJob removes every attachment of a deleted task.
type AttachmentPurgeJob struct {
	id          string
	payload     attachmentPurgePayload
	attachments AttachmentService
}

// Ensure AttachmentPurgeJob implements jobs.Job interface
var _ jobs.Job = (*AttachmentPurgeJob)(nil)

// NewAttachmentPurgeJob creates a purge job for the task's attachments.
func NewAttachmentPurgeJob(attachments AttachmentService, userID, taskID string) *AttachmentPurgeJob {
	return &AttachmentPurgeJob{
		id:          uuid.NewString(),
		payload:     attachmentPurgePayload{UserID: userID, TaskID: taskID},
		attachments: attachments,
	}
}

// ID implements jobs.Job.
func (j *AttachmentPurgeJob) ID() string { return j.id }

// Type implements jobs.Job.
func (j *AttachmentPurgeJob) Type() string { return AttachmentPurgeJobType }

// Payload implements jobs.Job.
func (j *AttachmentPurgeJob) Payload() []byte {
	data, _ := json.Marshal(j.payload)
	return data
}

// Execute implements jobs.Job.
func (j *AttachmentPurgeJob) Execute(ctx context.Context) error {
	removed, err := j.attachments.PurgeTaskAttachments(ctx, j.payload.UserID, j.payload.TaskID)
	logger.FromContext(ctx).Info("purged task attachments",
		slog.String("task_id", j.payload.TaskID),
		slog.Int("removed", removed))
	return err
}

// AttachmentPurgeJobFactory rebuilds purge jobs from their stored records.
func AttachmentPurgeJobFactory(attachments AttachmentService) jobs.Factory {
	return func(rec jobs.Record) (jobs.Job, error) {
		var payload attachmentPurgePayload
		if err := json.Unmarshal(rec.Payload, &payload); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", AttachmentPurgeJobType, err)
		}
		if payload.TaskID == "" || payload.UserID == "" {
			return nil, fmt.Errorf("invalid %s payload: missing task or user", AttachmentPurgeJobType)
		}
		return &AttachmentPurgeJob{id: rec.ID, payload: payload, attachments: attachments}, nil
	}
}

// JobSubmitter accepts background jobs.
type JobSubmitter interface {
	Submit(ctx context.Context, job jobs.Job) error
}

// AttachmentPurgeHandler schedules an AttachmentPurgeJob for every deleted task.
type AttachmentPurgeHandler struct {
	attachments AttachmentService
	jobs        JobSubmitter
	logger      *slog.Logger
}

// Ensure AttachmentPurgeHandler implements events.EventHandler interface
var _ events.EventHandler = (*AttachmentPurgeHandler)(nil)

// NewAttachmentPurgeHandler creates a new AttachmentPurgeHandler.
// If logger is nil, a default logger will be used.
func NewAttachmentPurgeHandler(
	attachments AttachmentService,
	submitter JobSubmitter,
	logger *slog.Logger,
) *AttachmentPurgeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttachmentPurgeHandler{
		attachments: attachments,
		jobs:        submitter,
		logger:      logger.With(slog.String("component", "attachment_purge_handler")),
	}
}

// HandleEvent implements events.EventHandler. Events other than task
// deletions are ignored.
func (h *AttachmentPurgeHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != TaskDeletedEventType {
		return nil
	}

	var payload TaskDeletedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("invalid %s payload: %w", event.Type, err)
	}

	job := NewAttachmentPurgeJob(h.attachments, payload.UserID, payload.TaskID)
	if err := h.jobs.Submit(ctx, job); err != nil {
		return fmt.Errorf("failed to submit %s job: %w", AttachmentPurgeJobType, err)
	}

	logger.FromContextOrDefault(ctx, h.logger).Debug("scheduled attachment purge",
		slog.String("job_id", job.ID()),
		slog.String("task_id", payload.TaskID),
		slog.String("event_id", event.ID))
	return nil
}
