package domain

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field limits for tasks.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// AnonymousOwnerID owns tasks created without an authenticated identity.
// The routing table always authenticates task creation, so this only appears
// when a caller wires the task service without the authentication gate.
const AnonymousOwnerID = "anonymous"

// Task is a single to-do item owned by exactly one user.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	UserID      string     `json:"userId"`
}

// NewTask creates a pending task for the given owner.
func NewTask(userID, title, description string, now time.Time) (*Task, error) {
	if userID == "" {
		userID = AnonymousOwnerID
	}

	task := &Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   now.UTC(),
		UserID:      userID,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks the task's field constraints.
func (t *Task) Validate() error {
	if err := validateTitle(t.Title); err != nil {
		return err
	}
	return validateDescription(t.Description)
}

// OwnedBy reports whether userID owns the task.
func (t *Task) OwnedBy(userID string) bool {
	return t.UserID == userID
}

// TaskPatch carries the explicitly supplied fields of a partial update.
// Nil fields are left untouched.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// Validate checks the supplied fields against the task constraints.
func (p TaskPatch) Validate() error {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := validateDescription(*p.Description); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies the supplied fields onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

func validateTitle(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}
