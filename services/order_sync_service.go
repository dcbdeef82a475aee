package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/yeremiapane/restaurant-pos-terminal/client"
	"github.com/yeremiapane/restaurant-pos-terminal/models"
	"github.com/yeremiapane/restaurant-pos-terminal/utils"
)

// Event yang disiarkan ke notification sink setiap kali state berubah
const (
	EventTableOrderUpdate   = "table_order_update"
	EventTableOrderComplete = "table_order_complete"
	EventTabUpdate          = "tab_update"
	EventSyncDrift          = "sync_drift"
	EventMutationFailed     = "mutation_failed"
)

// Notifier adalah sink notifikasi ke presentasi (websocket hub di production,
// fake di test). Boleh nil: engine jalan tanpa notifikasi.
type Notifier interface {
	Publish(event string, data interface{})
}

// SyncConfig mengatur perilaku engine
type SyncConfig struct {
	// OptimisticEnabled: read presentasi memakai lapis optimistic.
	// False berarti presentasi hanya melihat state confirmed.
	OptimisticEnabled bool
	RetryAttempts     int
	RetryBaseDelay    time.Duration
}

// OrderSyncService adalah engine sinkronisasi state order meja dan tab
// customer. Semua mutasi mengikuti template yang sama: snapshot -> transform
// optimistic -> remote call -> commit hasil otoritatif, atau rollback plus
// pencatatan error kalau remote gagal. Instance di-construct eksplisit dan
// di-inject, tidak ada state global.
type OrderSyncService struct {
	remote   client.PersistenceAPI
	notifier Notifier
	config   SyncConfig

	tables *OptimisticCache[int, *models.TableOrder]
	tabs   *OptimisticCache[int, []models.CustomerTab]

	// mu menjaga reverse index tab->meja dan pointer tab aktif per meja
	mu         sync.RWMutex
	tabIndex   map[string]int
	activeTabs map[int]string

	locks  *KeyLockSet
	errors *ErrorTracker
}

func NewOrderSyncService(remote client.PersistenceAPI, notif Notifier, cfg SyncConfig) *OrderSyncService {
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 500 * time.Millisecond
	}
	return &OrderSyncService{
		remote:   remote,
		notifier: notif,
		config:   cfg,
		tables: NewOptimisticCache[int, *models.TableOrder](func(v *models.TableOrder) *models.TableOrder {
			return v.Clone()
		}),
		tabs:       NewOptimisticCache[int, []models.CustomerTab](models.CloneTabs),
		tabIndex:   make(map[string]int),
		activeTabs: make(map[int]string),
		locks:      NewKeyLockSet(),
		errors:     NewErrorTracker(),
	}
}

// Errors -> tracker error per meja / per tab untuk presentasi
func (s *OrderSyncService) Errors() *ErrorTracker {
	return s.errors
}

func tableKey(tableNumber int) string {
	return "table:" + strconv.Itoa(tableNumber)
}

func (s *OrderSyncService) publish(event string, data interface{}) {
	if s.notifier != nil {
		s.notifier.Publish(event, data)
	}
}

func (s *OrderSyncService) callRemote(ctx context.Context, label string, fn func(ctx context.Context) error) error {
	return RetryWithBackoff(ctx, label, s.config.RetryAttempts, s.config.RetryBaseDelay, fn)
}

// readTable -> view meja sesuai mode (optimistic atau confirmed)
func (s *OrderSyncService) readTable(tableNumber int) (*models.TableOrder, bool) {
	if s.config.OptimisticEnabled {
		return s.tables.GetOptimistic(tableNumber)
	}
	return s.tables.GetConfirmed(tableNumber)
}

// readTabs -> view list tab satu meja sesuai mode
func (s *OrderSyncService) readTabs(tableNumber int) []models.CustomerTab {
	var tabs []models.CustomerTab
	var ok bool
	if s.config.OptimisticEnabled {
		tabs, ok = s.tabs.GetOptimistic(tableNumber)
	} else {
		tabs, ok = s.tabs.GetConfirmed(tableNumber)
	}
	if !ok {
		return nil
	}
	return tabs
}

// LoadAll memuat seluruh state otoritatif saat terminal start. Kegagalan di
// sini tercatat sebagai error global, bukan per meja.
func (s *OrderSyncService) LoadAll(ctx context.Context) error {
	var orders []models.TableOrder
	err := s.callRemote(ctx, "list_table_orders", func(ctx context.Context) error {
		res, err := s.remote.ListTableOrders(ctx)
		if err != nil {
			return err
		}
		orders = res
		return nil
	})
	if err != nil {
		s.errors.RecordGlobalError("initial load failed: " + err.Error())
		return &RemoteFailure{Op: "list_table_orders", Err: err}
	}

	for i := range orders {
		order := orders[i]
		s.tables.Commit(order.TableNumber, &order)

		tabs, err := s.remote.ListCustomerTabsForTable(ctx, order.TableNumber)
		if err != nil {
			utils.ErrorLogger.Printf("Failed to load tabs for table %d: %v", order.TableNumber, err)
			continue
		}
		s.tabs.Commit(order.TableNumber, tabs)

		s.mu.Lock()
		for _, tab := range tabs {
			s.tabIndex[tab.ID] = order.TableNumber
		}
		if len(tabs) > 0 {
			if _, ok := s.activeTabs[order.TableNumber]; !ok {
				s.activeTabs[order.TableNumber] = tabs[0].ID
			}
		}
		s.mu.Unlock()
	}

	utils.InfoLogger.Printf("Loaded %d table orders from persistence", len(orders))
	return nil
}

// ===== Read accessors =====

// GetTableOrders -> seluruh order meja, urut nomor meja
func (s *OrderSyncService) GetTableOrders() []models.TableOrder {
	keys := s.tables.Keys()
	sort.Ints(keys)

	var orders []models.TableOrder
	for _, key := range keys {
		if order, ok := s.readTable(key); ok {
			orders = append(orders, *order)
		}
	}
	return orders
}

// GetTableOrder -> order untuk satu meja
func (s *OrderSyncService) GetTableOrder(tableNumber int) (*models.TableOrder, bool) {
	return s.readTable(tableNumber)
}

// GetTableStatus -> available kalau meja tidak punya order
func (s *OrderSyncService) GetTableStatus(tableNumber int) string {
	order, ok := s.readTable(tableNumber)
	if !ok {
		return models.TableStatusAvailable
	}
	return order.Status
}

// GetCustomerTabsForTable -> seluruh tab satu meja, urutan list dipertahankan
func (s *OrderSyncService) GetCustomerTabsForTable(tableNumber int) []models.CustomerTab {
	return s.readTabs(tableNumber)
}

// GetActiveCustomerTab mengembalikan tab yang sedang dipilih untuk meja.
// Pointer yang sudah tidak resolve dikoreksi otomatis ke tab pertama yang
// tersisa, atau dihapus kalau tidak ada tab sama sekali.
func (s *OrderSyncService) GetActiveCustomerTab(tableNumber int) (*models.CustomerTab, bool) {
	tabs := s.readTabs(tableNumber)

	s.mu.Lock()
	defer s.mu.Unlock()

	activeID, ok := s.activeTabs[tableNumber]
	if ok {
		for i := range tabs {
			if tabs[i].ID == activeID {
				return tabs[i].Clone(), true
			}
		}
		utils.InfoLogger.Printf("Active tab %s for table %d no longer resolves, correcting", activeID, tableNumber)
	}

	if len(tabs) == 0 {
		delete(s.activeTabs, tableNumber)
		return nil, false
	}
	s.activeTabs[tableNumber] = tabs[0].ID
	return tabs[0].Clone(), true
}

// SetActiveCustomerTab -> pilih tab aktif untuk meja (aksi UI)
func (s *OrderSyncService) SetActiveCustomerTab(tableNumber int, tabID string) error {
	tabs := s.readTabs(tableNumber)
	for i := range tabs {
		if tabs[i].ID == tabID {
			s.mu.Lock()
			s.activeTabs[tableNumber] = tabID
			s.mu.Unlock()
			return nil
		}
	}
	return models.NewTabNotFound(tabID)
}

// GetLinkedTableGroup menyusun view agregat untuk meja yang di-link.
// tableNumber boleh meja utama maupun meja anggota.
func (s *OrderSyncService) GetLinkedTableGroup(tableNumber int) *models.LinkedTableGroup {
	order, ok := s.readTable(tableNumber)
	if !ok {
		return nil
	}

	primary := order
	if order.PrimaryTable != 0 {
		primary, ok = s.readTable(order.PrimaryTable)
		if !ok {
			return nil
		}
	}

	group := models.BuildLinkedTableGroup(primary, func(n int) *models.TableOrder {
		member, ok := s.readTable(n)
		if !ok {
			return nil
		}
		return member
	})
	if group == nil {
		return nil
	}

	group.Tabs = make(map[int][]models.CustomerTab)
	for _, member := range group.MemberTables {
		if tabs := s.readTabs(member); tabs != nil {
			group.Tabs[member] = tabs
		}
	}
	return group
}

// GetTotalOrdersForLinkedTables -> gabungan item seluruh meja dalam group
func (s *OrderSyncService) GetTotalOrdersForLinkedTables(tableNumber int) []models.OrderItem {
	group := s.GetLinkedTableGroup(tableNumber)
	if group == nil {
		return nil
	}
	return group.TotalOrders()
}

// ===== Table order mutations =====

// Create men-seat meja baru: status langsung seated dengan item kosong.
// Meja tambahan di linkedTables mendapat order placeholder dengan
// back-reference ke meja utama.
func (s *OrderSyncService) Create(ctx context.Context, tableNumber, guestCount int, linkedTables []int) (*models.TableOrder, error) {
	order, err := models.NewTableOrder(tableNumber, guestCount, linkedTables)
	if err != nil {
		return nil, err
	}
	if existing, ok := s.readTable(tableNumber); ok && existing.IsSeated() {
		return nil, &models.ValidationError{Field: "table_number", Message: fmt.Sprintf("table %d is already seated", tableNumber)}
	}

	unlock := s.locks.Lock(tableKey(tableNumber))
	defer unlock()

	snap := s.tables.BeginMutation(tableNumber, func(_ *models.TableOrder, _ bool) *models.TableOrder {
		return order.Clone()
	})

	members := make(map[int]*models.TableOrder, len(linkedTables))
	memberSnaps := make(map[int]Snapshot[*models.TableOrder], len(linkedTables))
	for _, linked := range linkedTables {
		member := &models.TableOrder{
			TableNumber:  linked,
			Status:       models.TableStatusSeated,
			Items:        []models.OrderItem{},
			PrimaryTable: tableNumber,
			CreatedAt:    order.CreatedAt,
			UpdatedAt:    order.UpdatedAt,
		}
		members[linked] = member
		memberSnaps[linked] = s.tables.BeginMutation(linked, func(_ *models.TableOrder, _ bool) *models.TableOrder {
			return member.Clone()
		})
	}

	var created *models.TableOrder
	err = s.callRemote(ctx, "create_table_order", func(ctx context.Context) error {
		res, err := s.remote.CreateTableOrder(ctx, client.CreateTableOrderRequest{
			TableNumber:  tableNumber,
			GuestCount:   guestCount,
			LinkedTables: linkedTables,
		})
		if err != nil {
			return err
		}
		created = res
		return nil
	})
	if err != nil {
		s.tables.Rollback(tableNumber, snap)
		for linked, memberSnap := range memberSnaps {
			s.tables.Rollback(linked, memberSnap)
		}
		s.recordTableFailure(tableNumber, "create_table_order", err)
		return nil, &RemoteFailure{Op: "create_table_order", Err: err}
	}

	s.tables.Commit(tableNumber, created)
	for linked, member := range members {
		s.tables.Commit(linked, member)
	}
	s.errors.ClearTableError(tableNumber)
	utils.InfoLogger.Printf("Table %d seated with %d guests", tableNumber, guestCount)
	s.publish(EventTableOrderUpdate, created)
	return created.Clone(), nil
}

// UpdateItems -> replace item list meja secara utuh
func (s *OrderSyncService) UpdateItems(ctx context.Context, tableNumber int, items []models.OrderItem) (*models.TableOrder, error) {
	unlock := s.locks.Lock(tableKey(tableNumber))
	defer unlock()
	return s.updateItemsLocked(ctx, tableNumber, items)
}

// AddItems -> append item ke meja; input kosong adalah no-op, bukan error
func (s *OrderSyncService) AddItems(ctx context.Context, tableNumber int, items []models.OrderItem) (*models.TableOrder, error) {
	unlock := s.locks.Lock(tableKey(tableNumber))
	defer unlock()

	current, ok := s.readTable(tableNumber)
	if !ok {
		return nil, models.NewTableNotFound(tableNumber)
	}
	if len(items) == 0 {
		return current, nil
	}
	merged := append(models.CloneItems(current.Items), items...)
	return s.updateItemsLocked(ctx, tableNumber, merged)
}

// RemoveItem -> hapus satu item meja berdasarkan posisi
func (s *OrderSyncService) RemoveItem(ctx context.Context, tableNumber, index int) (*models.TableOrder, error) {
	unlock := s.locks.Lock(tableKey(tableNumber))
	defer unlock()

	current, ok := s.readTable(tableNumber)
	if !ok {
		return nil, models.NewTableNotFound(tableNumber)
	}
	if index < 0 || index >= len(current.Items) {
		return nil, &models.NotFoundError{Entity: "item", Key: strconv.Itoa(index)}
	}

	remaining := make([]models.OrderItem, 0, len(current.Items)-1)
	remaining = append(remaining, current.Items[:index]...)
	remaining = append(remaining, current.Items[index+1:]...)
	return s.updateItemsLocked(ctx, tableNumber, remaining)
}

func (s *OrderSyncService) updateItemsLocked(ctx context.Context, tableNumber int, items []models.OrderItem) (*models.TableOrder, error) {
	if _, ok := s.readTable(tableNumber); !ok {
		return nil, models.NewTableNotFound(tableNumber)
	}

	snap := s.tables.BeginMutation(tableNumber, func(current *models.TableOrder, _ bool) *models.TableOrder {
		current.Items = models.CloneItems(items)
		current.UpdatedAt = time.Now()
		return current
	})

	var updated *models.TableOrder
	err := s.callRemote(ctx, "update_table_order", func(ctx context.Context) error {
		res, err := s.remote.UpdateTableOrder(ctx, client.UpdateTableOrderRequest{
			TableNumber: tableNumber,
			Items:       items,
		})
		if err != nil {
			return err
		}
		updated = res
		return nil
	})
	if err != nil {
		s.tables.Rollback(tableNumber, snap)
		s.recordTableFailure(tableNumber, "update_table_order", err)
		return nil, &RemoteFailure{Op: "update_table_order", Err: err}
	}

	s.tables.Commit(tableNumber, updated)
	s.errors.ClearTableError(tableNumber)
	s.publish(EventTableOrderUpdate, updated)
	return updated.Clone(), nil
}

// Complete menyelesaikan bill meja: order dihapus dari kedua lapis cache.
// Idempotent kalau meja sudah tidak punya order.
func (s *OrderSyncService) Complete(ctx context.Context, tableNumber int) error {
	return s.settleTable(ctx, tableNumber, "complete_table_order", true, s.remote.CompleteTableOrder)
}

// ResetToAvailable membatalkan bill (void/abandon) tanpa mensyaratkan
// Complete lebih dulu.
func (s *OrderSyncService) ResetToAvailable(ctx context.Context, tableNumber int) error {
	return s.settleTable(ctx, tableNumber, "reset_table_to_available", false, s.remote.ResetTableToAvailable)
}

// settleTable -> jalur bersama Complete dan ResetToAvailable: hapus order,
// tab, linkage, dan pointer aktif secara optimistic, pulihkan semuanya
// kalau remote call gagal.
func (s *OrderSyncService) settleTable(ctx context.Context, tableNumber int, op string, requireOrder bool, call func(ctx context.Context, tableNumber int) error) error {
	unlock := s.locks.Lock(tableKey(tableNumber))
	defer unlock()

	current, ok := s.readTable(tableNumber)
	if !ok && requireOrder {
		// sudah dihapus, tidak ada yang perlu dilakukan
		return nil
	}

	orderC, orderO := s.tables.Remove(tableNumber)

	// meja tambahan yang ter-link ikut dibubarkan: order, tab, pointer aktif
	var members []int
	if current != nil {
		members = current.LinkedTables
	}
	settled := append([]int{tableNumber}, members...)

	memberOrderSnaps := make(map[int][2]Snapshot[*models.TableOrder])
	for _, member := range members {
		c, o := s.tables.Remove(member)
		memberOrderSnaps[member] = [2]Snapshot[*models.TableOrder]{c, o}
	}
	tabSnaps := make(map[int][2]Snapshot[[]models.CustomerTab])
	for _, table := range settled {
		c, o := s.tabs.Remove(table)
		tabSnaps[table] = [2]Snapshot[[]models.CustomerTab]{c, o}
	}

	s.mu.Lock()
	removedActive := make(map[int]string)
	for _, table := range settled {
		if active, ok := s.activeTabs[table]; ok {
			removedActive[table] = active
			delete(s.activeTabs, table)
		}
	}
	removedIndex := make(map[string]int)
	for _, snaps := range tabSnaps {
		for _, snap := range snaps {
			if snap.Present {
				for _, tab := range snap.Value {
					if owner, ok := s.tabIndex[tab.ID]; ok {
						removedIndex[tab.ID] = owner
						delete(s.tabIndex, tab.ID)
					}
				}
			}
		}
	}
	s.mu.Unlock()

	err := s.callRemote(ctx, op, func(ctx context.Context) error {
		return call(ctx, tableNumber)
	})
	if err != nil {
		s.tables.Restore(tableNumber, orderC, orderO)
		for member, snaps := range memberOrderSnaps {
			s.tables.Restore(member, snaps[0], snaps[1])
		}
		for table, snaps := range tabSnaps {
			s.tabs.Restore(table, snaps[0], snaps[1])
		}
		s.mu.Lock()
		for table, active := range removedActive {
			s.activeTabs[table] = active
		}
		for id, owner := range removedIndex {
			s.tabIndex[id] = owner
		}
		s.mu.Unlock()

		s.recordTableFailure(tableNumber, op, err)
		return &RemoteFailure{Op: op, Err: err}
	}

	s.errors.ClearTableError(tableNumber)
	utils.InfoLogger.Printf("Table %d settled (%s)", tableNumber, op)
	s.publish(EventTableOrderComplete, map[string]interface{}{"table_number": tableNumber, "op": op})
	return nil
}

func (s *OrderSyncService) recordTableFailure(tableNumber int, op string, err error) {
	message := fmt.Sprintf("%s failed: %v", op, err)
	s.errors.RecordTableError(tableNumber, message)
	utils.ErrorLogger.Printf("Table %d: %s", tableNumber, message)
	s.publish(EventMutationFailed, map[string]interface{}{"table_number": tableNumber, "op": op, "error": err.Error()})
}

// ===== Reconciliation =====

// ValidateConsistency membandingkan lapis optimistic dan confirmed untuk satu
// meja. Drift dilaporkan lewat log dan event, tidak diselesaikan diam-diam;
// satu-satunya koreksi otomatis adalah pointer tab aktif yang dangling.
func (s *OrderSyncService) ValidateConsistency(tableNumber int) bool {
	consistent := true

	orderC, hasC, orderO, hasO := s.tables.GetBoth(tableNumber)
	if hasC && hasO && len(orderC.Items) != len(orderO.Items) {
		consistent = false
		utils.ErrorLogger.Printf("Drift on table %d: optimistic has %d items, confirmed has %d",
			tableNumber, len(orderO.Items), len(orderC.Items))
		s.publish(EventSyncDrift, map[string]interface{}{
			"table_number": tableNumber,
			"optimistic":   len(orderO.Items),
			"confirmed":    len(orderC.Items),
		})
	}

	tabsC, hasTC, tabsO, hasTO := s.tabs.GetBoth(tableNumber)
	if hasTC && hasTO && len(tabsC) != len(tabsO) {
		consistent = false
		utils.ErrorLogger.Printf("Drift on table %d tabs: optimistic has %d, confirmed has %d",
			tableNumber, len(tabsO), len(tabsC))
		s.publish(EventSyncDrift, map[string]interface{}{
			"table_number":    tableNumber,
			"optimistic_tabs": len(tabsO),
			"confirmed_tabs":  len(tabsC),
		})
	}

	// koreksi pointer aktif yang tidak lagi resolve
	s.mu.Lock()
	activeID, ok := s.activeTabs[tableNumber]
	if ok {
		tabs := tabsO
		if !hasTO {
			tabs = tabsC
		}
		found := false
		for i := range tabs {
			if tabs[i].ID == activeID {
				found = true
				break
			}
		}
		if !found {
			if len(tabs) > 0 {
				s.activeTabs[tableNumber] = tabs[0].ID
				utils.InfoLogger.Printf("Corrected active tab for table %d: %s -> %s", tableNumber, activeID, tabs[0].ID)
			} else {
				delete(s.activeTabs, tableNumber)
				utils.InfoLogger.Printf("Cleared dangling active tab %s for table %d", activeID, tableNumber)
			}
		}
	}
	s.mu.Unlock()

	return consistent
}

// RefreshTabsForActiveTables menarik ulang list tab otoritatif untuk setiap
// meja yang punya tab, dan memasukkannya ke lapis confirmed. Dipakai oleh
// sync loop periodik.
func (s *OrderSyncService) RefreshTabsForActiveTables(ctx context.Context) {
	for _, tableNumber := range s.tables.Keys() {
		if len(s.readTabs(tableNumber)) == 0 {
			continue
		}
		tabs, err := s.remote.ListCustomerTabsForTable(ctx, tableNumber)
		if err != nil {
			utils.ErrorLogger.Printf("Tab refresh for table %d failed: %v", tableNumber, err)
			continue
		}
		s.tabs.CommitConfirmed(tableNumber, tabs)

		// tab baru dari terminal lain ikut terdaftar di reverse index
		s.mu.Lock()
		for _, tab := range tabs {
			if _, ok := s.tabIndex[tab.ID]; !ok {
				s.tabIndex[tab.ID] = tableNumber
			}
		}
		s.mu.Unlock()

		s.ValidateConsistency(tableNumber)
	}
}

// ForceRefresh memuat ulang seluruh order meja secara eager, melewati timer.
// Kedua lapis diganti dengan state otoritatif.
func (s *OrderSyncService) ForceRefresh(ctx context.Context) error {
	var orders []models.TableOrder
	err := s.callRemote(ctx, "list_table_orders", func(ctx context.Context) error {
		res, err := s.remote.ListTableOrders(ctx)
		if err != nil {
			return err
		}
		orders = res
		return nil
	})
	if err != nil {
		s.errors.RecordGlobalError("refresh failed: " + err.Error())
		return &RemoteFailure{Op: "list_table_orders", Err: err}
	}

	seen := make(map[int]bool, len(orders))
	for i := range orders {
		order := orders[i]
		seen[order.TableNumber] = true
		s.tables.Commit(order.TableNumber, &order)

		tabs, err := s.remote.ListCustomerTabsForTable(ctx, order.TableNumber)
		if err != nil {
			utils.ErrorLogger.Printf("Tab refresh for table %d failed: %v", order.TableNumber, err)
			continue
		}
		s.tabs.Commit(order.TableNumber, tabs)

		s.mu.Lock()
		for _, tab := range tabs {
			s.tabIndex[tab.ID] = order.TableNumber
		}
		s.mu.Unlock()
	}

	// meja yang sudah tidak ada di server dibuang dari cache
	for _, key := range s.tables.Keys() {
		if !seen[key] {
			s.tables.Drop(key)
			s.tabs.Drop(key)
			s.mu.Lock()
			delete(s.activeTabs, key)
			for id, owner := range s.tabIndex {
				if owner == key {
					delete(s.tabIndex, id)
				}
			}
			s.mu.Unlock()
		}
	}

	for _, key := range s.tables.Keys() {
		s.ValidateConsistency(key)
	}
	utils.InfoLogger.Printf("Force refresh complete: %d table orders", len(orders))
	return nil
}
