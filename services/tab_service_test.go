package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/restaurant-pos-terminal/models"
	"github.com/yeremiapane/restaurant-pos-terminal/services"
)

// seatWithTab -> meja seated dengan satu tab berisi item awal
func seatWithTab(t *testing.T, svc *services.OrderSyncService, tableNumber int, name string, items []models.OrderItem) *models.CustomerTab {
	t.Helper()
	ctx := context.Background()
	if _, ok := svc.GetTableOrder(tableNumber); !ok {
		_, err := svc.Create(ctx, tableNumber, 4, nil)
		assert.NoError(t, err)
	}
	tab, err := svc.CreateTab(ctx, tableNumber, name, "")
	assert.NoError(t, err)
	if len(items) > 0 {
		tab, err = svc.AddItemsToTab(ctx, tab.ID, items)
		assert.NoError(t, err)
	}
	return tab
}

func TestTabLifecycleSplitThenMerge(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tabA := seatWithTab(t, svc, 5, "Guest A", []models.OrderItem{
		{Name: "Pie", Quantity: 1, Price: 5.00},
		{Name: "Mash", Quantity: 1, Price: 5.00},
	})
	tabB := seatWithTab(t, svc, 5, "Guest B", nil)

	result, err := svc.SplitTab(ctx, tabA.ID, "Guest A2", []int{1}, "")
	assert.NoError(t, err)
	assert.Len(t, result.OriginalTab.Items, 1)
	assert.Equal(t, "Pie", result.OriginalTab.Items[0].Name)
	assert.Len(t, result.NewTab.Items, 1)
	assert.Equal(t, "Mash", result.NewTab.Items[0].Name)
	assert.False(t, models.IsLocalID(result.NewTab.ID))

	merged, err := svc.MergeTabs(ctx, result.NewTab.ID, tabB.ID)
	assert.NoError(t, err)
	assert.Len(t, merged.Items, 1)
	assert.Equal(t, "Mash", merged.Items[0].Name)

	// tab A2 hilang, tinggal A dan B
	tabs := svc.GetCustomerTabsForTable(5)
	assert.Len(t, tabs, 2)
	for _, tab := range tabs {
		assert.NotEqual(t, result.NewTab.ID, tab.ID)
	}
	_, err = svc.AddItemsToTab(ctx, result.NewTab.ID, []models.OrderItem{{Name: "Tea", Quantity: 1, Price: 2.00}})
	assert.True(t, services.IsNotFoundError(err))
}

func TestSplitTabValidations(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tab := seatWithTab(t, svc, 5, "Guest A", []models.OrderItem{
		{Name: "Pie", Quantity: 1, Price: 5.00},
		{Name: "Mash", Quantity: 1, Price: 5.00},
	})

	_, err := svc.SplitTab(ctx, tab.ID, "Guest A2", nil, "")
	assert.True(t, services.IsValidationError(err))

	_, err = svc.SplitTab(ctx, tab.ID, "Guest A2", []int{7}, "")
	assert.True(t, services.IsValidationError(err))

	// split yang mengosongkan tab sumber ditolak
	_, err = svc.SplitTab(ctx, tab.ID, "Guest A2", []int{0, 1}, "")
	assert.True(t, services.IsValidationError(err))

	// sumber tidak tersentuh oleh percobaan yang gagal
	tabs := svc.GetCustomerTabsForTable(5)
	assert.Len(t, tabs, 1)
	assert.Len(t, tabs[0].Items, 2)
}

func TestMoveItemsConservesItems(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tabA := seatWithTab(t, svc, 5, "Guest A", []models.OrderItem{
		{Name: "Pie", Quantity: 1, Price: 5.00},
		{Name: "Mash", Quantity: 1, Price: 5.00},
		{Name: "Peas", Quantity: 1, Price: 2.00},
	})
	tabB := seatWithTab(t, svc, 5, "Guest B", []models.OrderItem{
		{Name: "Tea", Quantity: 1, Price: 2.00},
	})

	result, err := svc.MoveItems(ctx, tabA.ID, tabB.ID, []int{0, 2})
	assert.NoError(t, err)
	assert.Len(t, result.SourceTab.Items, 1)
	assert.Equal(t, "Mash", result.SourceTab.Items[0].Name)
	// item pindahan menempel di belakang item target, urutan sumber terjaga
	assert.Len(t, result.TargetTab.Items, 3)
	assert.Equal(t, "Tea", result.TargetTab.Items[0].Name)
	assert.Equal(t, "Pie", result.TargetTab.Items[1].Name)
	assert.Equal(t, "Peas", result.TargetTab.Items[2].Name)

	total := result.SourceTab.Total() + result.TargetTab.Total()
	assert.InDelta(t, 14.00, total, 0.001)
}

func TestMoveItemsAcrossTables(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tabA := seatWithTab(t, svc, 5, "Guest A", []models.OrderItem{
		{Name: "Pie", Quantity: 1, Price: 5.00},
		{Name: "Mash", Quantity: 1, Price: 5.00},
	})
	tabB := seatWithTab(t, svc, 6, "Guest B", nil)

	result, err := svc.MoveItems(ctx, tabA.ID, tabB.ID, []int{0})
	assert.NoError(t, err)
	assert.Len(t, result.SourceTab.Items, 1)
	assert.Len(t, result.TargetTab.Items, 1)

	// masing-masing meja melihat hasilnya
	assert.Len(t, svc.GetCustomerTabsForTable(5)[0].Items, 1)
	assert.Len(t, svc.GetCustomerTabsForTable(6)[0].Items, 1)
}

func TestActiveTabPointerNeverDangles(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tabA := seatWithTab(t, svc, 5, "Guest A", []models.OrderItem{{Name: "Pie", Quantity: 1, Price: 5.00}})
	tabB := seatWithTab(t, svc, 5, "Guest B", []models.OrderItem{{Name: "Tea", Quantity: 1, Price: 2.00}})

	// tab pertama otomatis aktif
	active, ok := svc.GetActiveCustomerTab(5)
	assert.True(t, ok)
	assert.Equal(t, tabA.ID, active.ID)

	// menutup tab aktif memindahkan pointer ke tab tersisa
	assert.NoError(t, svc.CloseTab(ctx, tabA.ID))
	active, ok = svc.GetActiveCustomerTab(5)
	assert.True(t, ok)
	assert.Equal(t, tabB.ID, active.ID)

	// menghapus tab terakhir mengosongkan pointer
	assert.NoError(t, svc.DeleteTab(ctx, tabB.ID))
	_, ok = svc.GetActiveCustomerTab(5)
	assert.False(t, ok)
}

func TestMergeMovesActivePointerToTarget(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tabA := seatWithTab(t, svc, 5, "Guest A", []models.OrderItem{{Name: "Pie", Quantity: 1, Price: 5.00}})
	tabB := seatWithTab(t, svc, 5, "Guest B", nil)

	_, err := svc.MergeTabs(ctx, tabA.ID, tabB.ID)
	assert.NoError(t, err)

	active, ok := svc.GetActiveCustomerTab(5)
	assert.True(t, ok)
	assert.Equal(t, tabB.ID, active.ID)
}

func TestMergeRejectsSelf(t *testing.T) {
	svc, _ := newTestService(t)

	tab := seatWithTab(t, svc, 5, "Guest A", []models.OrderItem{{Name: "Pie", Quantity: 1, Price: 5.00}})
	_, err := svc.MergeTabs(context.Background(), tab.ID, tab.ID)
	assert.True(t, services.IsValidationError(err))
}

func TestSetActiveCustomerTab(t *testing.T) {
	svc, _ := newTestService(t)

	tabA := seatWithTab(t, svc, 5, "Guest A", nil)
	tabB := seatWithTab(t, svc, 5, "Guest B", nil)
	_ = tabA

	assert.NoError(t, svc.SetActiveCustomerTab(5, tabB.ID))
	active, ok := svc.GetActiveCustomerTab(5)
	assert.True(t, ok)
	assert.Equal(t, tabB.ID, active.ID)

	err := svc.SetActiveCustomerTab(5, "nope")
	assert.True(t, services.IsNotFoundError(err))
}

func TestCreateTabRollbackOnRemoteFailure(t *testing.T) {
	svc, remote := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, 5, 2, nil)
	assert.NoError(t, err)

	remote.fail["create_customer_tab"] = errors.New("server unreachable")
	_, err = svc.CreateTab(ctx, 5, "Guest A", "")
	assert.True(t, services.IsRemoteFailure(err))

	// tab optimistic hilang lagi, pointer aktif tidak tertinggal
	assert.Empty(t, svc.GetCustomerTabsForTable(5))
	_, ok := svc.GetActiveCustomerTab(5)
	assert.False(t, ok)

	// error tercatat di bawah correlation token lokal
	_, tabErrs, _ := svc.Errors().Snapshot()
	assert.Len(t, tabErrs, 1)
	for tabID := range tabErrs {
		assert.True(t, strings.HasPrefix(tabID, models.LocalTabIDPrefix))
	}
}

func TestSplitTabRollbackOnRemoteFailure(t *testing.T) {
	svc, remote := newTestService(t)
	ctx := context.Background()

	tab := seatWithTab(t, svc, 5, "Guest A", []models.OrderItem{
		{Name: "Pie", Quantity: 1, Price: 5.00},
		{Name: "Mash", Quantity: 1, Price: 5.00},
	})

	remote.fail["split_tab"] = errors.New("server unreachable")
	_, err := svc.SplitTab(ctx, tab.ID, "Guest A2", []int{1}, "")
	assert.True(t, services.IsRemoteFailure(err))

	tabs := svc.GetCustomerTabsForTable(5)
	assert.Len(t, tabs, 1)
	assert.Len(t, tabs[0].Items, 2)

	msg, ok := svc.Errors().TabError(tab.ID)
	assert.True(t, ok)
	assert.Contains(t, msg, "split_tab")
}

func TestMergeRollbackRestoresBothTabs(t *testing.T) {
	svc, remote := newTestService(t)
	ctx := context.Background()

	tabA := seatWithTab(t, svc, 5, "Guest A", []models.OrderItem{{Name: "Pie", Quantity: 1, Price: 5.00}})
	tabB := seatWithTab(t, svc, 5, "Guest B", []models.OrderItem{{Name: "Tea", Quantity: 1, Price: 2.00}})

	remote.fail["merge_tabs"] = errors.New("server unreachable")
	_, err := svc.MergeTabs(ctx, tabA.ID, tabB.ID)
	assert.True(t, services.IsRemoteFailure(err))

	tabs := svc.GetCustomerTabsForTable(5)
	assert.Len(t, tabs, 2)
	for _, tab := range tabs {
		assert.Len(t, tab.Items, 1)
	}
	// source masih aktif dan masih bisa dimutasi
	active, ok := svc.GetActiveCustomerTab(5)
	assert.True(t, ok)
	assert.Equal(t, tabA.ID, active.ID)
	_, err = svc.AddItemsToTab(ctx, tabA.ID, []models.OrderItem{{Name: "Peas", Quantity: 1, Price: 2.00}})
	assert.NoError(t, err)
}

func TestRemoveItemFromTabOutOfRange(t *testing.T) {
	svc, _ := newTestService(t)

	tab := seatWithTab(t, svc, 5, "Guest A", []models.OrderItem{{Name: "Pie", Quantity: 1, Price: 5.00}})
	_, err := svc.RemoveItemFromTab(context.Background(), tab.ID, 3)
	assert.True(t, services.IsNotFoundError(err))
}

func TestUpdateTabPartialMerge(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tab := seatWithTab(t, svc, 5, "Guest A", []models.OrderItem{{Name: "Pie", Quantity: 1, Price: 5.00}})

	name := "Guest Alpha"
	updated, err := svc.UpdateTab(ctx, tab.ID, services.TabUpdate{Name: &name})
	assert.NoError(t, err)
	assert.Equal(t, "Guest Alpha", updated.Name)
	// field yang tidak diisi tidak tersentuh
	assert.Len(t, updated.Items, 1)
	assert.Equal(t, models.TabStatusActive, updated.Status)
}

func TestReplaceTabItemsWholesale(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tab := seatWithTab(t, svc, 5, "Guest A", []models.OrderItem{
		{Name: "Pie", Quantity: 1, Price: 5.00},
		{Name: "Mash", Quantity: 1, Price: 3.00},
	})

	replaced, err := svc.ReplaceTabItems(ctx, tab.ID, []models.OrderItem{
		{Name: "Roast", Quantity: 2, Price: 9.50},
	})
	assert.NoError(t, err)
	// bukan merge: daftar lama diganti seluruhnya
	assert.Len(t, replaced.Items, 1)
	assert.Equal(t, "Roast", replaced.Items[0].Name)
	assert.Equal(t, 2, replaced.Items[0].Quantity)

	tabs := svc.GetCustomerTabsForTable(5)
	assert.Len(t, tabs, 1)
	assert.Len(t, tabs[0].Items, 1)
	assert.Equal(t, "Roast", tabs[0].Items[0].Name)
}

func TestReplaceTabItemsRollbackOnRemoteFailure(t *testing.T) {
	svc, remote := newTestService(t)
	ctx := context.Background()

	tab := seatWithTab(t, svc, 5, "Guest A", []models.OrderItem{
		{Name: "Pie", Quantity: 1, Price: 5.00},
		{Name: "Mash", Quantity: 1, Price: 3.00},
	})

	remote.fail["update_customer_tab"] = errors.New("server unreachable")
	_, err := svc.ReplaceTabItems(ctx, tab.ID, []models.OrderItem{
		{Name: "Roast", Quantity: 2, Price: 9.50},
	})
	assert.True(t, services.IsRemoteFailure(err))

	tabs := svc.GetCustomerTabsForTable(5)
	assert.Len(t, tabs, 1)
	assert.Len(t, tabs[0].Items, 2)
	assert.Equal(t, "Pie", tabs[0].Items[0].Name)
	msg, ok := svc.Errors().TabError(tab.ID)
	assert.True(t, ok)
	assert.Contains(t, msg, "update_customer_tab")
}

func TestCrossTableMergeRepointsSourceActiveTab(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tabA := seatWithTab(t, svc, 5, "Guest A", nil)
	tabA2 := seatWithTab(t, svc, 5, "Guest A2", []models.OrderItem{{Name: "Pie", Quantity: 1, Price: 5.00}})
	tabA3 := seatWithTab(t, svc, 5, "Guest A3", nil)
	tabB := seatWithTab(t, svc, 6, "Guest B", nil)

	assert.NoError(t, svc.SetActiveCustomerTab(5, tabA2.ID))

	_, err := svc.MergeTabs(ctx, tabA2.ID, tabB.ID)
	assert.NoError(t, err)

	// pointer aktif meja 5 pindah ke tab berikutnya milik meja 5,
	// bukan ke tab target di meja 6
	active, ok := svc.GetActiveCustomerTab(5)
	assert.True(t, ok)
	assert.Equal(t, tabA3.ID, active.ID)

	tabs := svc.GetCustomerTabsForTable(5)
	assert.Len(t, tabs, 2)
	assert.Equal(t, tabA.ID, tabs[0].ID)

	activeB, ok := svc.GetActiveCustomerTab(6)
	assert.True(t, ok)
	assert.Equal(t, tabB.ID, activeB.ID)
}

func TestCrossTableMergeLastTabClearsSourcePointer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tabA := seatWithTab(t, svc, 5, "Guest A", []models.OrderItem{{Name: "Pie", Quantity: 1, Price: 5.00}})
	tabB := seatWithTab(t, svc, 6, "Guest B", nil)

	_, err := svc.MergeTabs(ctx, tabA.ID, tabB.ID)
	assert.NoError(t, err)

	_, ok := svc.GetActiveCustomerTab(5)
	assert.False(t, ok)
	assert.Empty(t, svc.GetCustomerTabsForTable(5))
}
