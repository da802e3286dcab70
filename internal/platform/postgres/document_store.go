package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/docstore"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

// DBTX is implemented by both *sql.DB and *sql.Tx, so collections can run
// inside a caller-managed transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DocumentStore implements docstore.Store over a single JSONB table.
type DocumentStore struct {
	db     *sql.DB
	conn   DBTX
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a DocumentStore.
type Option func(*DocumentStore)

// WithClock sets the function used to stamp createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *DocumentStore) {
		s.now = now
	}
}

// WithConn routes statements through conn (typically a *sql.Tx) instead of the pool.
func WithConn(conn DBTX) Option {
	return func(s *DocumentStore) {
		s.conn = conn
	}
}

// NewDocumentStore creates a PostgreSQL document store.
// It accepts a database connection that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewDocumentStore(db *sql.DB, logger *slog.Logger, opts ...Option) *DocumentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &DocumentStore{
		db:     db,
		conn:   db,
		logger: logger.With(slog.String("component", "document_store")),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure DocumentStore implements docstore.Store interface
var _ docstore.Store = (*DocumentStore)(nil)

// Collection returns a handle on the named collection.
func (s *DocumentStore) Collection(name string) docstore.Collection {
	return &collection{store: s, name: name}
}

// Ping verifies the database connection.
func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *DocumentStore) Close() error {
	return s.db.Close()
}

type collection struct {
	store *DocumentStore
	name  string
}

func (c *collection) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, c.store.logger).With(slog.String("collection", c.name))
}

// Create implements docstore.Collection.Create.
func (c *collection) Create(ctx context.Context, doc docstore.Document) (docstore.Document, error) {
	log := c.log(ctx)

	id, data, err := splitDocument(doc)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := c.store.now().UTC()

	query := `
		INSERT INTO documents (collection, id, data, created_at)
		VALUES ($1, $2, $3::jsonb, $4)
	`
	if _, err := c.store.conn.ExecContext(ctx, query, c.name, id, string(data), createdAt); err != nil {
		if IsUniqueViolation(err) {
			log.Warn("document id already taken", slog.String("document_id", id))
		} else {
			log.Error("failed to create document",
				slog.String("error", err.Error()),
				slog.String("document_id", id))
		}
		return nil, MapError(err)
	}

	created := doc.Clone()
	created[docstore.FieldID] = id
	created[docstore.FieldCreatedAt] = createdAt
	delete(created, docstore.FieldUpdatedAt)

	log.Debug("document created", slog.String("document_id", id))
	return created, nil
}

// FindByID implements docstore.Collection.FindByID.
func (c *collection) FindByID(ctx context.Context, id string) (docstore.Document, error) {
	query := `SELECT ` + selectColumns + ` FROM documents WHERE collection = $1 AND id = $2`

	doc, err := scanDocument(c.store.conn.QueryRowContext(ctx, query, c.name, id))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.log(ctx).Error("failed to get document",
				slog.String("error", err.Error()),
				slog.String("document_id", id))
		}
		return nil, MapError(err)
	}
	return doc, nil
}

// FindByField implements docstore.Collection.FindByField.
func (c *collection) FindByField(ctx context.Context, field string, value any) ([]docstore.Document, error) {
	return c.Query(ctx, docstore.Query{
		Conditions: []docstore.Condition{docstore.Where(field, docstore.OpEqual, value)},
	})
}

// Update implements docstore.Collection.Update.
// The patch is merged at the top level with the JSONB concatenation operator.
func (c *collection) Update(ctx context.Context, id string, patch docstore.Document) (docstore.Document, error) {
	_, data, err := splitDocument(patch)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = $4
		WHERE collection = $1 AND id = $2
		RETURNING ` + selectColumns

	row := c.store.conn.QueryRowContext(ctx, query, c.name, id, string(data), c.store.now().UTC())
	doc, err := scanDocument(row)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.log(ctx).Error("failed to update document",
				slog.String("error", err.Error()),
				slog.String("document_id", id))
		}
		return nil, MapError(err)
	}
	return doc, nil
}

// Delete implements docstore.Collection.Delete.
func (c *collection) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`
	if _, err := c.store.conn.ExecContext(ctx, query, c.name, id); err != nil {
		c.log(ctx).Error("failed to delete document",
			slog.String("error", err.Error()),
			slog.String("document_id", id))
		return MapError(err)
	}
	return nil
}

// Query implements docstore.Collection.Query.
func (c *collection) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	query, args, err := buildSelect(c.name, q)
	if err != nil {
		return nil, err
	}

	rows, err := c.store.conn.QueryContext(ctx, query, args...)
	if err != nil {
		c.log(ctx).Error("failed to query documents", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			c.log(ctx).Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	docs := make([]docstore.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return docs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (docstore.Document, error) {
	var (
		id        string
		data      []byte
		createdAt time.Time
		updatedAt sql.NullTime
	)
	if err := row.Scan(&id, &data, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	doc := docstore.Document{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document %q: %w", id, err)
		}
	}
	doc[docstore.FieldID] = id
	doc[docstore.FieldCreatedAt] = createdAt.UTC()
	if updatedAt.Valid {
		doc[docstore.FieldUpdatedAt] = updatedAt.Time.UTC()
	}
	return doc, nil
}
