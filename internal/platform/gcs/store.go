package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/phrazzld/tasks-api/internal/blob"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const publicHost = "https://storage.googleapis.com"

// Store implements blob.Store over a single bucket.
type Store struct {
	client *storage.Client
	bucket string
	public bool
	logger *slog.Logger
}

// Ensure Store implements blob.Store interface
var _ blob.Store = (*Store)(nil)

// New connects to Cloud Storage. Credentials come from cfg.CredentialsFile
// when set, otherwise from the environment's default credentials.
// If logger is nil, a default logger will be used.
func New(ctx context.Context, cfg config.BlobConfig, logger *slog.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs: bucket is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: failed to create client: %w", err)
	}

	return &Store{
		client: client,
		bucket: cfg.Bucket,
		public: cfg.PublicUploads,
		logger: logger.With(slog.String("component", "gcs_store"), slog.String("bucket", cfg.Bucket)),
	}, nil
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Upload implements blob.Store.Upload. Public uploads get an AllUsers read ACL.
func (s *Store) Upload(ctx context.Context, path string, r io.Reader, contentType string) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	obj := s.client.Bucket(s.bucket).Object(path)

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		log.Error("failed to write object", slog.String("error", err.Error()), slog.String("path", path))
		return "", fmt.Errorf("gcs: failed to write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		log.Error("failed to finalize object", slog.String("error", err.Error()), slog.String("path", path))
		return "", fmt.Errorf("gcs: failed to finalize %s: %w", path, err)
	}

	if !s.public {
		return "", nil
	}
	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		log.Error("failed to make object public", slog.String("error", err.Error()), slog.String("path", path))
		return "", fmt.Errorf("gcs: failed to make %s public: %w", path, err)
	}
	return PublicURL(s.bucket, path), nil
}

// Delete implements blob.Store.Delete.
func (s *Store) Delete(ctx context.Context, path string) error {
	err := s.client.Bucket(s.bucket).Object(path).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return blob.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("gcs: failed to delete %s: %w", path, err)
	}
	return nil
}

// SignedURL implements blob.Store.SignedURL with a V4 GET signature.
func (s *Store) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	bucket := s.client.Bucket(s.bucket)
	if _, err := bucket.Object(path).Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", blob.ErrNotFound
		}
		return "", fmt.Errorf("gcs: failed to stat %s: %w", path, err)
	}

	signed, err := bucket.SignedURL(path, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("gcs: failed to sign %s: %w", path, err)
	}
	return signed, nil
}

// List implements blob.Store.List.
func (s *Store) List(ctx context.Context, prefix string) ([]blob.Object, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	out := make([]blob.Object, 0)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs: failed to list %s: %w", prefix, err)
		}
		out = append(out, blob.Object{
			Path:        attrs.Name,
			ContentType: attrs.ContentType,
			Size:        attrs.Size,
			Updated:     attrs.Updated,
		})
	}
	return out, nil
}

// PublicURL is the address of a publicly readable object.
func PublicURL(bucket, path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return publicHost + "/" + bucket + "/" + strings.Join(segments, "/")
}
