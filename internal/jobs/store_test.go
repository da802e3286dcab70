package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/tasks-api/internal/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStore(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	ds := docstore.NewMemoryStore(docstore.WithClock(func() time.Time { return created }))
	store := NewDocumentStore(ds, func() time.Time { return created.Add(time.Hour) }, nil)

	require.NoError(t, store.Save(ctx, &testJob{id: "j1", typ: "purge", payload: []byte(`{"taskId":"t1"}`)}))
	require.NoError(t, store.Save(ctx, &testJob{id: "j2", typ: "purge"}))

	t.Run("saved jobs are pending", func(t *testing.T) {
		recs, err := store.ListByStatus(ctx, StatusPending, 0)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "j1", recs[0].ID)
		assert.Equal(t, "purge", recs[0].Type)
		assert.Equal(t, []byte(`{"taskId":"t1"}`), recs[0].Payload)
		assert.Equal(t, created, recs[0].CreatedAt)
	})

	t.Run("status transitions", func(t *testing.T) {
		require.NoError(t, store.UpdateStatus(ctx, "j1", StatusFailed, "boom"))

		recs, err := store.ListByStatus(ctx, StatusFailed, 0)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "boom", recs[0].Error)
		require.NotNil(t, recs[0].UpdatedAt)
	})

	t.Run("older than filter", func(t *testing.T) {
		recs, err := store.ListByStatus(ctx, StatusPending, 30*time.Minute)
		require.NoError(t, err)
		assert.Len(t, recs, 1)

		recs, err = store.ListByStatus(ctx, StatusPending, 2*time.Hour)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("unknown job", func(t *testing.T) {
		err := store.UpdateStatus(ctx, "missing", StatusCompleted, "")
		assert.ErrorIs(t, err, ErrJobNotFound)
	})

	t.Run("duplicate id", func(t *testing.T) {
		err := store.Save(ctx, &testJob{id: "j2", typ: "purge"})
		assert.ErrorIs(t, err, docstore.ErrDuplicate)
	})
}
