package client_test

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos-terminal/client"
	"github.com/yeremiapane/restaurant-pos-terminal/models"
	"github.com/yeremiapane/restaurant-pos-terminal/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

var dbCounter int64

func newBackend(t *testing.T) *client.LocalBackend {
	t.Helper()
	dsn := fmt.Sprintf("file:backend%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	backend, err := client.NewLocalBackend(db)
	if err != nil {
		t.Fatalf("failed to init backend: %v", err)
	}
	return backend
}

func createTab(t *testing.T, b *client.LocalBackend, tableNumber int, name string, items []models.OrderItem) *models.CustomerTab {
	t.Helper()
	ctx := context.Background()
	tab, err := b.CreateCustomerTab(ctx, client.CreateCustomerTabRequest{TableNumber: tableNumber, Name: name})
	assert.NoError(t, err)
	if len(items) > 0 {
		tab, err = b.AddItemsToCustomerTab(ctx, tab.ID, items)
		assert.NoError(t, err)
	}
	return tab
}

func TestTableOrderRoundTrip(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	order, err := b.CreateTableOrder(ctx, client.CreateTableOrderRequest{TableNumber: 5, GuestCount: 4})
	assert.NoError(t, err)
	assert.Equal(t, models.TableStatusSeated, order.Status)

	// nomor meja adalah natural key: order kedua untuk meja yang sama ditolak
	_, err = b.CreateTableOrder(ctx, client.CreateTableOrderRequest{TableNumber: 5, GuestCount: 2})
	assert.Error(t, err)

	updated, err := b.UpdateTableOrder(ctx, client.UpdateTableOrderRequest{
		TableNumber: 5,
		Items:       []models.OrderItem{{Name: "Pie", Quantity: 2, Price: 5.00}},
	})
	assert.NoError(t, err)
	assert.Len(t, updated.Items, 1)
	assert.InDelta(t, 10.00, updated.Total(), 0.001)

	orders, err := b.ListTableOrders(ctx)
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCreateLinkedTablesWritesBackReferences(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	_, err := b.CreateTableOrder(ctx, client.CreateTableOrderRequest{TableNumber: 5, GuestCount: 10, LinkedTables: []int{6, 7}})
	assert.NoError(t, err)

	orders, err := b.ListTableOrders(ctx)
	assert.NoError(t, err)
	assert.Len(t, orders, 3)
	for _, order := range orders {
		if order.TableNumber == 5 {
			assert.ElementsMatch(t, []int{6, 7}, order.LinkedTables)
			assert.Zero(t, order.PrimaryTable)
		} else {
			assert.Equal(t, 5, order.PrimaryTable)
		}
	}
}

func TestCompleteCascadesToLinkedTablesAndTabs(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	_, err := b.CreateTableOrder(ctx, client.CreateTableOrderRequest{TableNumber: 5, GuestCount: 10, LinkedTables: []int{6}})
	assert.NoError(t, err)
	createTab(t, b, 5, "Guest A", nil)
	createTab(t, b, 6, "Overflow Guest", nil)

	assert.NoError(t, b.CompleteTableOrder(ctx, 5))

	orders, err := b.ListTableOrders(ctx)
	assert.NoError(t, err)
	assert.Empty(t, orders)
	tabs, err := b.ListCustomerTabsForTable(ctx, 5)
	assert.NoError(t, err)
	assert.Empty(t, tabs)
	// tab meja anggota ikut terhapus, bukan cuma order-nya
	memberTabs, err := b.ListCustomerTabsForTable(ctx, 6)
	assert.NoError(t, err)
	assert.Empty(t, memberTabs)

	// complete kedua kali bukan error
	assert.NoError(t, b.CompleteTableOrder(ctx, 5))
}

func TestListTabsOmitsClosedOnes(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	tabA := createTab(t, b, 5, "Guest A", nil)
	createTab(t, b, 5, "Guest B", nil)

	closed, err := b.CloseCustomerTab(ctx, tabA.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TabStatusPaid, closed.Status)

	tabs, err := b.ListCustomerTabsForTable(ctx, 5)
	assert.NoError(t, err)
	assert.Len(t, tabs, 1)
	assert.Equal(t, "Guest B", tabs[0].Name)
}

func TestSplitTabPartitionsItems(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	source := createTab(t, b, 5, "Guest A", []models.OrderItem{
		{Name: "Pie", Quantity: 1, Price: 5.00},
		{Name: "Mash", Quantity: 1, Price: 5.00},
		{Name: "Peas", Quantity: 1, Price: 2.00},
	})

	result, err := b.SplitTab(ctx, client.SplitTabRequest{
		SourceTabID: source.ID,
		NewName:     "Guest A2",
		ItemIndices: []int{0, 2},
	})
	assert.NoError(t, err)
	assert.Len(t, result.OriginalTab.Items, 1)
	assert.Equal(t, "Mash", result.OriginalTab.Items[0].Name)
	assert.Len(t, result.NewTab.Items, 2)
	assert.Equal(t, "Pie", result.NewTab.Items[0].Name)
	assert.Equal(t, "Peas", result.NewTab.Items[1].Name)
	assert.NotEqual(t, source.ID, result.NewTab.ID)

	// kedua tab tersimpan
	tabs, err := b.ListCustomerTabsForTable(ctx, 5)
	assert.NoError(t, err)
	assert.Len(t, tabs, 2)
}

func TestSplitTabRejectsEmptyingSource(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	source := createTab(t, b, 5, "Guest A", []models.OrderItem{
		{Name: "Pie", Quantity: 1, Price: 5.00},
	})

	_, err := b.SplitTab(ctx, client.SplitTabRequest{SourceTabID: source.ID, NewName: "A2", ItemIndices: []int{0}})
	assert.Error(t, err)
	_, err = b.SplitTab(ctx, client.SplitTabRequest{SourceTabID: source.ID, NewName: "A2", ItemIndices: []int{5}})
	assert.Error(t, err)
	_, err = b.SplitTab(ctx, client.SplitTabRequest{SourceTabID: source.ID, NewName: "A2"})
	assert.Error(t, err)

	// sumber tidak berubah setelah seluruh percobaan gagal
	tabs, err := b.ListCustomerTabsForTable(ctx, 5)
	assert.NoError(t, err)
	assert.Len(t, tabs, 1)
	assert.Len(t, tabs[0].Items, 1)
}

func TestMergeTabsDeletesSource(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	source := createTab(t, b, 5, "Guest A", []models.OrderItem{{Name: "Pie", Quantity: 1, Price: 5.00}})
	target := createTab(t, b, 5, "Guest B", []models.OrderItem{{Name: "Tea", Quantity: 1, Price: 2.00}})

	merged, err := b.MergeTabs(ctx, source.ID, target.ID)
	assert.NoError(t, err)
	assert.Equal(t, target.ID, merged.ID)
	assert.Len(t, merged.Items, 2)
	assert.Equal(t, "Tea", merged.Items[0].Name)
	assert.Equal(t, "Pie", merged.Items[1].Name)

	tabs, err := b.ListCustomerTabsForTable(ctx, 5)
	assert.NoError(t, err)
	assert.Len(t, tabs, 1)

	_, err = b.MergeTabs(ctx, source.ID, target.ID)
	assert.Error(t, err)
}

func TestMoveItemsBetweenTabs(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	source := createTab(t, b, 5, "Guest A", []models.OrderItem{
		{Name: "Pie", Quantity: 1, Price: 5.00},
		{Name: "Mash", Quantity: 1, Price: 5.00},
	})
	target := createTab(t, b, 6, "Guest B", nil)

	result, err := b.MoveItemsBetweenTabs(ctx, client.MoveItemsRequest{
		SourceTabID: source.ID,
		TargetTabID: target.ID,
		ItemIndices: []int{1},
	})
	assert.NoError(t, err)
	assert.Len(t, result.SourceTab.Items, 1)
	assert.Equal(t, "Pie", result.SourceTab.Items[0].Name)
	assert.Len(t, result.TargetTab.Items, 1)
	assert.Equal(t, "Mash", result.TargetTab.Items[0].Name)
}

func TestUpdateCustomerTabPartialFields(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	tab := createTab(t, b, 5, "Guest A", []models.OrderItem{{Name: "Pie", Quantity: 1, Price: 5.00}})

	name := "Guest Alpha"
	updated, err := b.UpdateCustomerTab(ctx, client.UpdateCustomerTabRequest{TabID: tab.ID, Name: &name})
	assert.NoError(t, err)
	assert.Equal(t, "Guest Alpha", updated.Name)
	assert.Len(t, updated.Items, 1)

	_, err = b.UpdateCustomerTab(ctx, client.UpdateCustomerTabRequest{TabID: "missing", Name: &name})
	assert.Error(t, err)
}

func TestResetTableClearsEverything(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	_, err := b.CreateTableOrder(ctx, client.CreateTableOrderRequest{TableNumber: 5, GuestCount: 2})
	assert.NoError(t, err)
	createTab(t, b, 5, "Guest A", nil)

	assert.NoError(t, b.ResetTableToAvailable(ctx, 5))

	orders, err := b.ListTableOrders(ctx)
	assert.NoError(t, err)
	assert.Empty(t, orders)
}
