package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/restaurant-pos-terminal/models"
	"github.com/yeremiapane/restaurant-pos-terminal/services"
)

func newOrderCache() *services.OptimisticCache[int, *models.TableOrder] {
	return services.NewOptimisticCache[int, *models.TableOrder](func(o *models.TableOrder) *models.TableOrder {
		if o == nil {
			return nil
		}
		return o.Clone()
	})
}

func seededOrder(tableNumber int) *models.TableOrder {
	order, _ := models.NewTableOrder(tableNumber, 2, nil)
	order.Items = []models.OrderItem{{Name: "Pie", Quantity: 1, Price: 5.00}}
	return order
}

func TestCacheOptimisticFallsBackToConfirmed(t *testing.T) {
	cache := newOrderCache()
	cache.Commit(5, seededOrder(5))

	got, ok := cache.GetOptimistic(5)
	assert.True(t, ok)
	assert.Equal(t, 5, got.TableNumber)

	_, ok = cache.GetOptimistic(6)
	assert.False(t, ok)
}

func TestCacheMutationDivergesUntilCommit(t *testing.T) {
	cache := newOrderCache()
	cache.Commit(5, seededOrder(5))

	snap := cache.BeginMutation(5, func(current *models.TableOrder, present bool) *models.TableOrder {
		current.Items = append(current.Items, models.OrderItem{Name: "Tea", Quantity: 1, Price: 2.00})
		return current
	})
	assert.True(t, snap.Present)

	optimistic, _ := cache.GetOptimistic(5)
	confirmed, _ := cache.GetConfirmed(5)
	assert.Len(t, optimistic.Items, 2)
	assert.Len(t, confirmed.Items, 1)

	// commit menyatukan kedua lapis lagi
	cache.Commit(5, optimistic)
	confirmed, _ = cache.GetConfirmed(5)
	assert.Len(t, confirmed.Items, 2)
}

func TestCacheRollbackRestoresPreMutationValue(t *testing.T) {
	cache := newOrderCache()
	cache.Commit(5, seededOrder(5))

	snap := cache.BeginMutation(5, func(current *models.TableOrder, present bool) *models.TableOrder {
		current.Items = nil
		return current
	})
	cache.Rollback(5, snap)

	got, _ := cache.GetOptimistic(5)
	assert.Len(t, got.Items, 1)
}

func TestCacheRollbackOfFreshKeyDeletesIt(t *testing.T) {
	cache := newOrderCache()

	snap := cache.BeginMutation(9, func(current *models.TableOrder, present bool) *models.TableOrder {
		assert.False(t, present)
		return seededOrder(9)
	})
	assert.False(t, snap.Present)

	_, ok := cache.GetOptimistic(9)
	assert.True(t, ok)

	cache.Rollback(9, snap)
	_, ok = cache.GetOptimistic(9)
	assert.False(t, ok)
}

func TestCacheSnapshotIsIsolatedFromLaterWrites(t *testing.T) {
	cache := newOrderCache()
	cache.Commit(5, seededOrder(5))

	snap := cache.BeginMutation(5, func(current *models.TableOrder, present bool) *models.TableOrder {
		return current
	})

	// mutasi berikutnya tidak boleh menyentuh snapshot yang sudah dipegang
	cache.BeginMutation(5, func(current *models.TableOrder, present bool) *models.TableOrder {
		current.Items[0].Name = "Mash"
		return current
	})
	assert.Equal(t, "Pie", snap.Value.Items[0].Name)
}

func TestCacheCommitConfirmedKeepsOptimisticDivergence(t *testing.T) {
	cache := newOrderCache()
	cache.Commit(5, seededOrder(5))

	cache.BeginMutation(5, func(current *models.TableOrder, present bool) *models.TableOrder {
		current.GuestCount = 6
		return current
	})

	refreshed := seededOrder(5)
	refreshed.GuestCount = 3
	cache.CommitConfirmed(5, refreshed)

	confirmed, _ := cache.GetConfirmed(5)
	optimistic, _ := cache.GetOptimistic(5)
	assert.Equal(t, 3, confirmed.GuestCount)
	assert.Equal(t, 6, optimistic.GuestCount)
}

func TestCacheRemoveAndRestore(t *testing.T) {
	cache := newOrderCache()
	cache.Commit(5, seededOrder(5))

	confirmedSnap, optimisticSnap := cache.Remove(5)
	_, ok := cache.GetOptimistic(5)
	assert.False(t, ok)

	cache.Restore(5, confirmedSnap, optimisticSnap)
	got, ok := cache.GetConfirmed(5)
	assert.True(t, ok)
	assert.Equal(t, 5, got.TableNumber)
}

func TestCacheKeysUnionBothLayers(t *testing.T) {
	cache := newOrderCache()
	cache.CommitConfirmed(1, seededOrder(1))
	cache.BeginMutation(2, func(current *models.TableOrder, present bool) *models.TableOrder {
		return seededOrder(2)
	})

	keys := cache.Keys()
	assert.ElementsMatch(t, []int{1, 2}, keys)
}
