package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/phrazzld/tasks-api/internal/blob"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

// maxFileNameLength bounds the sanitized client file name.
const maxFileNameLength = 200

var unsafeFileNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// UploadFile is a file received from a client.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// AttachmentConfig bounds uploads and signed URLs.
type AttachmentConfig struct {
	MaxUploadBytes int64
	SignedURLTTL   time.Duration
}

// AttachmentService stores files under a task. Objects live at
// users/{userId}/tasks/{taskId}/{unixMillis}-{fileName}; the attachment
// name is the last path segment.
type AttachmentService interface {
	Upload(ctx context.Context, userID, taskID string, file UploadFile) (*domain.Attachment, error)
	List(ctx context.Context, userID, taskID string) ([]*domain.Attachment, error)

	// SignedURL returns a time-limited read URL and its expiry.
	SignedURL(ctx context.Context, userID, taskID, name string) (string, time.Time, error)

	Delete(ctx context.Context, userID, taskID, name string) error

	// PurgeTaskAttachments removes every attachment of a task and reports
	// how many were removed.
	PurgeTaskAttachments(ctx context.Context, userID, taskID string) (int, error)
}

// AttachmentServiceImpl implements the AttachmentService interface
type AttachmentServiceImpl struct {
	blobs  blob.Store
	config AttachmentConfig
	now    func() time.Time
	logger *slog.Logger
}

// Ensure AttachmentServiceImpl implements AttachmentService interface
var _ AttachmentService = (*AttachmentServiceImpl)(nil)

// NewAttachmentService creates a new AttachmentService.
// If logger is nil, a default logger will be used.
func NewAttachmentService(blobs blob.Store, config AttachmentConfig, logger *slog.Logger) *AttachmentServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	if config.SignedURLTTL <= 0 {
		config.SignedURLTTL = time.Hour
	}
	return &AttachmentServiceImpl{
		blobs:  blobs,
		config: config,
		now:    time.Now,
		logger: logger.With(slog.String("component", "attachment_service")),
	}
}

// TaskAttachmentPrefix is the object path prefix of a task's attachments.
func TaskAttachmentPrefix(userID, taskID string) string {
	return "users/" + userID + "/tasks/" + taskID + "/"
}

// SanitizeFileName reduces a client file name to a safe single path segment.
func SanitizeFileName(name string) (string, error) {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	clean := unsafeFileNameChars.ReplaceAllString(base, "_")
	clean = strings.TrimLeft(clean, ".")
	if len(clean) > maxFileNameLength {
		clean = clean[len(clean)-maxFileNameLength:]
	}
	if clean == "" || clean == "_" {
		return "", domain.ErrInvalidFileName
	}
	return clean, nil
}

// Upload implements AttachmentService.Upload.
func (s *AttachmentServiceImpl) Upload(
	ctx context.Context,
	userID, taskID string,
	file UploadFile,
) (*domain.Attachment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if file.Content == nil || file.Size <= 0 {
		return nil, domain.ErrEmptyAttachment
	}
	if s.config.MaxUploadBytes > 0 && file.Size > s.config.MaxUploadBytes {
		return nil, domain.ErrAttachmentTooLarge
	}
	safe, err := SanitizeFileName(file.Name)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	name := fmt.Sprintf("%d-%s", now.UnixMilli(), safe)
	objectPath := TaskAttachmentPrefix(userID, taskID) + name

	url, err := s.blobs.Upload(ctx, objectPath, file.Content, file.ContentType)
	if err != nil {
		log.Error("failed to upload attachment",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID))
		return nil, NewServiceError("attachment", "upload", err)
	}

	log.Info("attachment uploaded",
		slog.String("task_id", taskID),
		slog.String("attachment", name),
		slog.Int64("size", file.Size))
	return &domain.Attachment{
		Name:        name,
		Path:        objectPath,
		URL:         url,
		ContentType: file.ContentType,
		Size:        file.Size,
		UploadedAt:  now,
	}, nil
}

// List implements AttachmentService.List.
func (s *AttachmentServiceImpl) List(ctx context.Context, userID, taskID string) ([]*domain.Attachment, error) {
	prefix := TaskAttachmentPrefix(userID, taskID)
	objects, err := s.blobs.List(ctx, prefix)
	if err != nil {
		return nil, NewServiceError("attachment", "list", err)
	}

	out := make([]*domain.Attachment, 0, len(objects))
	for _, obj := range objects {
		out = append(out, &domain.Attachment{
			Name:        strings.TrimPrefix(obj.Path, prefix),
			Path:        obj.Path,
			ContentType: obj.ContentType,
			Size:        obj.Size,
			UploadedAt:  obj.Updated,
		})
	}
	return out, nil
}

// SignedURL implements AttachmentService.SignedURL.
func (s *AttachmentServiceImpl) SignedURL(
	ctx context.Context,
	userID, taskID, name string,
) (string, time.Time, error) {
	objectPath, err := attachmentPath(userID, taskID, name)
	if err != nil {
		return "", time.Time{}, err
	}

	expires := s.now().Add(s.config.SignedURLTTL).UTC()
	url, err := s.blobs.SignedURL(ctx, objectPath, s.config.SignedURLTTL)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return "", time.Time{}, domain.ErrAttachmentNotFound
		}
		return "", time.Time{}, NewServiceError("attachment", "signed_url", err)
	}
	return url, expires, nil
}

// Delete implements AttachmentService.Delete.
func (s *AttachmentServiceImpl) Delete(ctx context.Context, userID, taskID, name string) error {
	objectPath, err := attachmentPath(userID, taskID, name)
	if err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, objectPath); err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return domain.ErrAttachmentNotFound
		}
		return NewServiceError("attachment", "delete", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("attachment deleted",
		slog.String("task_id", taskID),
		slog.String("attachment", name))
	return nil
}

// PurgeTaskAttachments implements AttachmentService.PurgeTaskAttachments.
// Objects that disappear while purging are not errors.
func (s *AttachmentServiceImpl) PurgeTaskAttachments(ctx context.Context, userID, taskID string) (int, error) {
	objects, err := s.blobs.List(ctx, TaskAttachmentPrefix(userID, taskID))
	if err != nil {
		return 0, NewServiceError("attachment", "purge", err)
	}

	removed := 0
	var errs []error
	for _, obj := range objects {
		err := s.blobs.Delete(ctx, obj.Path)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, blob.ErrNotFound):
		default:
			errs = append(errs, fmt.Errorf("%s: %w", obj.Path, err))
		}
	}
	if len(errs) > 0 {
		return removed, NewServiceError("attachment", "purge", errors.Join(errs...))
	}
	return removed, nil
}

// attachmentPath resolves an attachment name to its object path. Names are
// single path segments as produced by Upload.
func attachmentPath(userID, taskID, name string) (string, error) {
	if name == "" || name != path.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", domain.ErrInvalidFileName
	}
	return TaskAttachmentPrefix(userID, taskID) + name, nil
}
