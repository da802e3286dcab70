package repository

import (
	"errors"
	"time"

	"github.com/phrazzld/tasks-api/internal/docstore"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
)

// Collection names.
const (
	UsersCollection = "users"
	TasksCollection = "tasks"
)

type userRecord struct {
	ID        string    `mapstructure:"id"`
	Email     string    `mapstructure:"email"`
	CreatedAt time.Time `mapstructure:"createdAt"`
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{ID: r.ID, Email: r.Email, CreatedAt: r.CreatedAt}
}

type taskRecord struct {
	ID          string     `mapstructure:"id"`
	Title       string     `mapstructure:"title"`
	Description string     `mapstructure:"description"`
	Completed   bool       `mapstructure:"completed"`
	UserID      string     `mapstructure:"userId"`
	CreatedAt   time.Time  `mapstructure:"createdAt"`
	UpdatedAt   *time.Time `mapstructure:"updatedAt"`
}

func (r taskRecord) toDomain() *domain.Task {
	return &domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		UserID:      r.UserID,
	}
}

func decodeUser(doc docstore.Document) (*domain.User, error) {
	var rec userRecord
	if err := docstore.Decode(doc, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

func decodeTask(doc docstore.Document) (*domain.Task, error) {
	var rec taskRecord
	if err := docstore.Decode(doc, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

func taskDocument(t *domain.Task) docstore.Document {
	return docstore.Document{
		docstore.FieldID: t.ID,
		"title":          t.Title,
		"description":    t.Description,
		"completed":      t.Completed,
		"userId":         t.UserID,
	}
}

func patchDocument(p domain.TaskPatch) docstore.Document {
	doc := docstore.Document{}
	if p.Title != nil {
		doc["title"] = *p.Title
	}
	if p.Description != nil {
		doc["description"] = *p.Description
	}
	if p.Completed != nil {
		doc["completed"] = *p.Completed
	}
	return doc
}

// mapError translates docstore errors into store errors. notFound is the
// entity-specific sentinel to return for a missing document.
func mapError(entity, operation string, notFound, err error) error {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return notFound
	case errors.Is(err, docstore.ErrDuplicate):
		return store.ErrIDExists
	default:
		return store.NewStoreError(entity, operation, "document store failure", err)
	}
}
