package inmem_test

import (
	"sync"
	"testing"

	"ticketing/internal/adapters/out/inmem"
	"ticketing/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingRetryStore_SetSemantics(t *testing.T) {
	t.Run("should add and report membership", func(t *testing.T) {
		store := inmem.NewPendingRetryStore()
		id := kernel.NewUUID()

		assert.False(t, store.Contains(id))
		store.Add(id)
		assert.True(t, store.Contains(id))
	})

	t.Run("should treat duplicate add as a no-op", func(t *testing.T) {
		store := inmem.NewPendingRetryStore()
		id := kernel.NewUUID()

		store.Add(id)
		store.Add(id)

		assert.Len(t, store.Snapshot(), 1)
	})

	t.Run("should treat remove of absent id as a no-op", func(t *testing.T) {
		store := inmem.NewPendingRetryStore()

		store.Remove(kernel.NewUUID())

		assert.Empty(t, store.Snapshot())
	})

	t.Run("should remove present id", func(t *testing.T) {
		store := inmem.NewPendingRetryStore()
		id := kernel.NewUUID()

		store.Add(id)
		store.Remove(id)

		assert.False(t, store.Contains(id))
		assert.Empty(t, store.Snapshot())
	})
}

func TestPendingRetryStore_Snapshot(t *testing.T) {
	t.Run("should return ids sorted by string", func(t *testing.T) {
		store := inmem.NewPendingRetryStore()
		for range 20 {
			store.Add(kernel.NewUUID())
		}

		snapshot := store.Snapshot()

		require.Len(t, snapshot, 20)
		for i := 1; i < len(snapshot); i++ {
			assert.Less(t, snapshot[i-1].String(), snapshot[i].String())
		}
	})

	t.Run("should not expose mutation access to the live set", func(t *testing.T) {
		store := inmem.NewPendingRetryStore()
		id := kernel.NewUUID()
		store.Add(id)

		snapshot := store.Snapshot()
		snapshot[0] = kernel.NewUUID()

		assert.True(t, store.Contains(id))
		assert.True(t, store.Snapshot()[0].IsEqual(id))
	})
}

func TestPendingRetryStore_Concurrency(t *testing.T) {
	t.Run("should survive concurrent adds, removes and snapshots", func(t *testing.T) {
		store := inmem.NewPendingRetryStore()

		ids := make([]kernel.UUID, 50)
		for i := range ids {
			ids[i] = kernel.NewUUID()
		}

		var wg sync.WaitGroup
		for _, id := range ids {
			wg.Add(3)
			go func() {
				defer wg.Done()
				for range 100 {
					store.Add(id)
				}
			}()
			go func() {
				defer wg.Done()
				for range 100 {
					store.Contains(id)
					store.Snapshot()
				}
			}()
			go func() {
				defer wg.Done()
				for range 50 {
					store.Remove(id)
				}
			}()
		}
		wg.Wait()

		// Whatever interleaving happened, membership and snapshot must agree.
		snapshot := store.Snapshot()
		for _, id := range snapshot {
			assert.True(t, store.Contains(id))
		}
	})
}
