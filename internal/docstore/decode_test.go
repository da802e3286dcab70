package docstore_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/phrazzld/tasks-api/internal/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTime(t *testing.T) {
	want := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	local := want.In(time.FixedZone("UTC+2", 2*3600))

	tests := []struct {
		name  string
		input any
		ok    bool
	}{
		{"time value", local, true},
		{"time pointer", &local, true},
		{"rfc3339 string", "2024-02-03T06:05:06+02:00", true},
		{"epoch millis int64", want.UnixMilli(), true},
		{"epoch millis float64", float64(want.UnixMilli()), true},
		{"epoch millis json number", json.Number("1706933106000"), true},
		{"seconds and nanoseconds map", map[string]any{"_seconds": float64(want.Unix()), "_nanoseconds": float64(0)}, true},
		{"seconds map", map[string]any{"seconds": want.Unix()}, true},
		{"garbage string", "yesterday", false},
		{"bool", true, false},
		{"map without seconds", map[string]any{"nanos": 5}, false},
		{"nil pointer", (*time.Time)(nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := docstore.NormalizeTime(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, want.Equal(got), "got %v", got)
				assert.Equal(t, time.UTC, got.Location())
			}
		})
	}
}

type record struct {
	ID        string     `mapstructure:"id"`
	Title     string     `mapstructure:"title"`
	Done      bool       `mapstructure:"done"`
	CreatedAt time.Time  `mapstructure:"createdAt"`
	UpdatedAt *time.Time `mapstructure:"updatedAt"`
}

func TestDecode(t *testing.T) {
	created := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	t.Run("mixed timestamp representations", func(t *testing.T) {
		var r record
		err := docstore.Decode(docstore.Document{
			"id":        "r1",
			"title":     "hello",
			"done":      true,
			"createdAt": map[string]any{"_seconds": float64(created.Unix())},
			"updatedAt": "2024-02-04T00:00:00Z",
			"extra":     "ignored",
		}, &r)

		require.NoError(t, err)
		assert.Equal(t, "r1", r.ID)
		assert.Equal(t, "hello", r.Title)
		assert.True(t, r.Done)
		assert.True(t, created.Equal(r.CreatedAt))
		require.NotNil(t, r.UpdatedAt)
		assert.Equal(t, time.Date(2024, 2, 4, 0, 0, 0, 0, time.UTC), *r.UpdatedAt)
	})

	t.Run("missing optional timestamp", func(t *testing.T) {
		var r record
		err := docstore.Decode(docstore.Document{"id": "r2", "createdAt": created}, &r)

		require.NoError(t, err)
		assert.Nil(t, r.UpdatedAt)
		assert.Equal(t, created, r.CreatedAt)
	})

	t.Run("unrecognised timestamp", func(t *testing.T) {
		var r record
		err := docstore.Decode(docstore.Document{"id": "r3", "createdAt": "not a date"}, &r)

		assert.Error(t, err)
	})
}
