package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointwallet/backend/internal/models"
)

func TestMemoryAccountStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAccountStore()

	t.Run("get unknown user reports not found", func(t *testing.T) {
		_, found, err := store.Get(ctx, 42)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("put then get returns the snapshot", func(t *testing.T) {
		written, err := store.Put(ctx, 1, 5000, 1700000000000)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), written.Points)

		point, found, err := store.Get(ctx, 1)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, written, point)
	})

	t.Run("put replaces the prior snapshot", func(t *testing.T) {
		_, err := store.Put(ctx, 1, 7500, 1700000001000)
		require.NoError(t, err)

		point, found, err := store.Get(ctx, 1)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, int64(7500), point.Points)
		assert.Equal(t, int64(1700000001000), point.UpdateMillis)
	})
}

func TestMemoryHistoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryHistoryStore()

	t.Run("list for unknown user is empty", func(t *testing.T) {
		records, err := store.ListByUser(ctx, 42)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("append assigns increasing ids across users", func(t *testing.T) {
		first, err := store.Append(ctx, 1, 500, models.TransactionCharge, 1700000000000)
		require.NoError(t, err)
		second, err := store.Append(ctx, 2, 200, models.TransactionUse, 1700000000001)
		require.NoError(t, err)
		third, err := store.Append(ctx, 1, 300, models.TransactionUse, 1700000000002)
		require.NoError(t, err)

		assert.Greater(t, second.ID, first.ID)
		assert.Greater(t, third.ID, second.ID)
	})

	t.Run("list returns only the user's records", func(t *testing.T) {
		records, err := store.ListByUser(ctx, 1)
		require.NoError(t, err)
		require.Len(t, records, 2)
		for _, record := range records {
			assert.Equal(t, int64(1), record.UserID)
		}
	})
}

func TestMemoryHistoryStoreConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryHistoryStore()

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(userID int64) {
			defer wg.Done()
			_, err := store.Append(ctx, userID, 100, models.TransactionCharge, 1700000000000)
			assert.NoError(t, err)
		}(int64(i % 5))
	}
	wg.Wait()

	seen := map[int64]bool{}
	for userID := int64(0); userID < 5; userID++ {
		records, err := store.ListByUser(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, records, 10)
		for _, record := range records {
			assert.False(t, seen[record.ID], "record id %d assigned twice", record.ID)
			seen[record.ID] = true
		}
	}
}
