package api

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service"
)

const (
	// attachmentFormField is the multipart field carrying the upload.
	attachmentFormField = "file"

	// multipartOverhead allows for form boundaries and headers on top of the
	// file itself.
	multipartOverhead = 1 << 20
)

// AttachmentHandler handles file attachments of a task. Every route runs
// behind the ownership gate, which supplies the task.
type AttachmentHandler struct {
	attachments    service.AttachmentService
	maxUploadBytes int64
	errors         *ErrorHandler
	logger         *slog.Logger
}

// NewAttachmentHandler creates a new AttachmentHandler.
// If logger is nil, a default logger will be used.
func NewAttachmentHandler(
	attachments service.AttachmentService,
	maxUploadBytes int64,
	errHandler *ErrorHandler,
	logger *slog.Logger,
) *AttachmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttachmentHandler{
		attachments:    attachments,
		maxUploadBytes: maxUploadBytes,
		errors:         errHandler,
		logger:         logger.With(slog.String("component", "attachment_handler")),
	}
}

// Upload handles POST /api/tasks/{id}/attachments with a multipart "file".
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	task, ok := h.task(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	file, header, err := r.FormFile(attachmentFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge), errors.Is(err, multipart.ErrMessageTooLarge):
			h.errors.Handle(w, r, domain.ErrAttachmentTooLarge)
		case errors.Is(err, http.ErrMissingFile):
			h.errors.Handle(w, r, domain.ErrEmptyAttachment)
		default:
			shared.RespondValidationError(w, r, []shared.FieldError{
				{Field: attachmentFormField, Message: "request must be multipart/form-data with a file field"},
			})
		}
		return
	}
	defer func() { _ = file.Close() }()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	attachment, err := h.attachments.Upload(r.Context(), task.UserID, task.ID, service.UploadFile{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, attachment)
}

// List handles GET /api/tasks/{id}/attachments.
func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	task, ok := h.task(w, r)
	if !ok {
		return
	}

	attachments, err := h.attachments.List(r.Context(), task.UserID, task.ID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, attachments)
}

// SignedURL handles GET /api/tasks/{id}/attachments/{name}/url.
func (h *AttachmentHandler) SignedURL(w http.ResponseWriter, r *http.Request) {
	task, ok := h.task(w, r)
	if !ok {
		return
	}

	url, expires, err := h.attachments.SignedURL(r.Context(), task.UserID, task.ID, chi.URLParam(r, "name"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, AttachmentURLResponse{URL: url, ExpiresAt: expires})
}

// Delete handles DELETE /api/tasks/{id}/attachments/{name}.
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	task, ok := h.task(w, r)
	if !ok {
		return
	}

	if err := h.attachments.Delete(r.Context(), task.UserID, task.ID, chi.URLParam(r, "name")); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// task returns the task loaded by the ownership gate.
func (h *AttachmentHandler) task(w http.ResponseWriter, r *http.Request) (*domain.Task, bool) {
	task, ok := shared.TaskFromContext(r.Context())
	if !ok {
		h.logger.Error("attachment route reached without the ownership gate")
		h.errors.Handle(w, r, errors.New("task missing from request context"))
		return nil, false
	}
	return task, true
}
