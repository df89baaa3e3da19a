//go:build integration

package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shopfloor/internal/inventory"
	"shopfloor/pkg/testutil/containers"
)

func seedRecord(t *testing.T, store *inventory.Postgres, available int) *inventory.Record {
	t.Helper()
	ctx := context.Background()

	rec, err := store.Create(ctx, &inventory.Record{
		ProductID: 1,
		Location:  inventory.DefaultLocation,
		CreatedAt: time.Now().UTC(),
		Materials: []inventory.MaterialStock{
			{MaterialName: "Bolt", AvailableQty: available, ThresholdQty: 5, CreatedAt: time.Now().UTC()},
		},
	})
	require.NoError(t, err)
	return rec
}

func TestPostgresAllocate(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := inventory.NewPostgres(pg.DB)
	ctx := context.Background()

	t.Run("insufficient stock leaves the row untouched", func(t *testing.T) {
		rec := seedRecord(t, store, 15)

		err := store.Allocate(ctx, rec.ID, []inventory.Requirement{
			{MaterialName: "Bolt", Quantity: 20},
		})
		var insufficient *inventory.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		require.Equal(t, 15, insufficient.Available)

		after, err := store.GetByID(ctx, rec.ID)
		require.NoError(t, err)
		require.Equal(t, 15, after.Materials[0].AvailableQty)
	})

	t.Run("sufficient stock deducts atomically", func(t *testing.T) {
		rec := seedRecord(t, store, 25)

		err := store.Allocate(ctx, rec.ID, []inventory.Requirement{
			{MaterialName: "Bolt", Quantity: 20},
		})
		require.NoError(t, err)

		after, err := store.GetByID(ctx, rec.ID)
		require.NoError(t, err)
		require.Equal(t, 5, after.Materials[0].AvailableQty)
	})

	t.Run("unknown material fails the allocation", func(t *testing.T) {
		rec := seedRecord(t, store, 25)

		err := store.Allocate(ctx, rec.ID, []inventory.Requirement{
			{MaterialName: "Rivet", Quantity: 1},
		})
		var insufficient *inventory.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		require.Equal(t, "Rivet", insufficient.MaterialName)
	})

	t.Run("concurrent allocations never oversell", func(t *testing.T) {
		rec := seedRecord(t, store, 20)

		results := make(chan error, 2)
		for i := 0; i < 2; i++ {
			go func() {
				results <- store.Allocate(ctx, rec.ID, []inventory.Requirement{
					{MaterialName: "Bolt", Quantity: 15},
				})
			}()
		}
		var failures int
		for i := 0; i < 2; i++ {
			if err := <-results; err != nil {
				failures++
			}
		}
		// Only one of the two 15-unit allocations can fit in 20.
		require.Equal(t, 1, failures)

		after, err := store.GetByID(ctx, rec.ID)
		require.NoError(t, err)
		require.Equal(t, 5, after.Materials[0].AvailableQty)
	})
}
