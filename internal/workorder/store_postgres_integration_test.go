//go:build integration

package workorder_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"shopfloor/internal/workorder"
	"shopfloor/pkg/platform/sentinel"
	"shopfloor/pkg/testutil/containers"
)

func TestPostgresWorkOrderStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := workorder.NewPostgres(pg.DB)
	ctx := context.Background()

	newOrder := func(status workorder.Status) *workorder.WorkOrder {
		return &workorder.WorkOrder{
			ID:        uuid.NewString(),
			ProductID: 1,
			Quantity:  10,
			Status:    status,
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		}
	}

	t.Run("create and read back", func(t *testing.T) {
		w := newOrder(workorder.StatusPlanned)
		require.NoError(t, store.Create(ctx, w))

		got, err := store.GetByID(ctx, w.ID)
		require.NoError(t, err)
		require.Equal(t, w.ID, got.ID)
		require.Equal(t, workorder.StatusPlanned, got.Status)
		require.Nil(t, got.CompletedAt)
	})

	t.Run("missing order returns sentinel", func(t *testing.T) {
		_, err := store.GetByID(ctx, "no-such-order")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("update persists status and completion time", func(t *testing.T) {
		w := newOrder(workorder.StatusInProgress)
		require.NoError(t, store.Create(ctx, w))

		now := time.Now().UTC().Truncate(time.Microsecond)
		w.ApplyCompletion(now)
		require.NoError(t, store.Update(ctx, w))

		got, err := store.GetByID(ctx, w.ID)
		require.NoError(t, err)
		require.Equal(t, workorder.StatusCompleted, got.Status)
		require.NotNil(t, got.CompletedAt)
	})

	t.Run("filter by status", func(t *testing.T) {
		w := newOrder(workorder.StatusQualityDone)
		require.NoError(t, store.Create(ctx, w))

		done, err := store.GetByStatus(ctx, workorder.StatusQualityDone)
		require.NoError(t, err)
		require.Len(t, done, 1)
		require.Equal(t, w.ID, done[0].ID)
	})

	t.Run("delete reports existence", func(t *testing.T) {
		w := newOrder(workorder.StatusPlanned)
		require.NoError(t, store.Create(ctx, w))

		deleted, err := store.Delete(ctx, w.ID)
		require.NoError(t, err)
		require.True(t, deleted)

		deleted, err = store.Delete(ctx, w.ID)
		require.NoError(t, err)
		require.False(t, deleted)
	})
}
