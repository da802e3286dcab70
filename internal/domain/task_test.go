package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNewTask(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)

	t.Run("defaults", func(t *testing.T) {
		task, err := NewTask("user-1", "Buy milk", "", now)

		require.NoError(t, err)
		assert.NotEmpty(t, task.ID)
		assert.Equal(t, "Buy milk", task.Title)
		assert.Equal(t, "", task.Description)
		assert.False(t, task.Completed)
		assert.Equal(t, now, task.CreatedAt)
		assert.Nil(t, task.UpdatedAt)
		assert.Equal(t, "user-1", task.UserID)
	})

	t.Run("anonymous owner fallback", func(t *testing.T) {
		task, err := NewTask("", "Orphan", "", now)

		require.NoError(t, err)
		assert.Equal(t, AnonymousOwnerID, task.UserID)
	})

	t.Run("field limits", func(t *testing.T) {
		tests := []struct {
			name        string
			title       string
			description string
			wantErr     error
		}{
			{"empty title", "", "", ErrEmptyTitle},
			{"whitespace title counts as characters", "   ", "", nil},
			{"title at limit", strings.Repeat("a", MaxTitleLength), "", nil},
			{"title too long", strings.Repeat("a", MaxTitleLength+1), "", ErrTitleTooLong},
			{"multibyte title at limit", strings.Repeat("é", MaxTitleLength), "", nil},
			{"description at limit", "ok", strings.Repeat("d", MaxDescriptionLength), nil},
			{"description too long", "ok", strings.Repeat("d", MaxDescriptionLength+1), ErrDescriptionTooLong},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewTask("user-1", tt.title, tt.description, now)
				if tt.wantErr == nil {
					assert.NoError(t, err)
					return
				}
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, KindValidation, KindOf(err))
			})
		}
	})
}

func TestTaskPatch(t *testing.T) {
	base := Task{ID: "t1", Title: "Title", Description: "Desc", Completed: false, UserID: "u1"}

	t.Run("completed only leaves text untouched", func(t *testing.T) {
		task := base
		patch := TaskPatch{Completed: ptr(true)}

		require.NoError(t, patch.Validate())
		patch.Apply(&task)

		assert.True(t, task.Completed)
		assert.Equal(t, "Title", task.Title)
		assert.Equal(t, "Desc", task.Description)
	})

	t.Run("empty description is an explicit value", func(t *testing.T) {
		task := base
		TaskPatch{Description: ptr("")}.Apply(&task)

		assert.Equal(t, "", task.Description)
		assert.Equal(t, "Title", task.Title)
	})

	t.Run("empty patch", func(t *testing.T) {
		assert.True(t, TaskPatch{}.IsEmpty())
		assert.False(t, TaskPatch{Title: ptr("x")}.IsEmpty())
	})

	t.Run("invalid title", func(t *testing.T) {
		assert.ErrorIs(t, TaskPatch{Title: ptr("")}.Validate(), ErrEmptyTitle)
	})
}

func TestTaskFiltersNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       TaskFilters
		expected TaskFilters
	}{
		{
			name:     "zero value",
			in:       TaskFilters{},
			expected: TaskFilters{DateOrder: DateOrderDesc, StatusFilter: StatusAll, Limit: 50, Page: 1},
		},
		{
			name: "explicit values kept",
			in: TaskFilters{
				DateOrder: DateOrderAsc, StatusFilter: StatusPending, SearchTerm: "foo", Limit: 10, Page: 3,
			},
			expected: TaskFilters{
				DateOrder: DateOrderAsc, StatusFilter: StatusPending, SearchTerm: "foo", Limit: 10, Page: 3,
			},
		},
		{
			name:     "out of range replaced by defaults",
			in:       TaskFilters{DateOrder: "sideways", StatusFilter: "archived", Limit: 101, Page: -2},
			expected: TaskFilters{DateOrder: DateOrderDesc, StatusFilter: StatusAll, Limit: 50, Page: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.in.Normalize())
		})
	}
}

func TestTaskFiltersWindow(t *testing.T) {
	f := TaskFilters{Limit: 10, Page: 2}.Normalize()
	assert.Equal(t, 10, f.Offset())
	assert.Equal(t, 20, f.FetchLimit())

	f.SearchTerm = "foo"
	assert.Equal(t, SearchFetchCap, f.FetchLimit())
}
