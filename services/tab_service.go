package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/yeremiapane/restaurant-pos-terminal/client"
	"github.com/yeremiapane/restaurant-pos-terminal/models"
	"github.com/yeremiapane/restaurant-pos-terminal/utils"
)

// TabUpdate -> partial update tab: field nil tidak disentuh
type TabUpdate struct {
	Name   *string
	Items  *[]models.OrderItem
	Status *string
}

// locateTab -> nomor meja pemilik tab lewat reverse index (O(1), bukan scan)
func (s *OrderSyncService) locateTab(tabID string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tableNumber, ok := s.tabIndex[tabID]
	return tableNumber, ok
}

func findTabIndex(tabs []models.CustomerTab, tabID string) int {
	for i := range tabs {
		if tabs[i].ID == tabID {
			return i
		}
	}
	return -1
}

// CreateTab membuat tab baru untuk meja. Tab optimistic langsung muncul
// dengan correlation token lokal; saat server menjawab, token ditukar dengan
// id otoritatif pada posisi list yang sama dan pointer tab aktif yang
// memegang token ikut di-repoint secara atomik.
func (s *OrderSyncService) CreateTab(ctx context.Context, tableNumber int, name, guestID string) (*models.CustomerTab, error) {
	if _, ok := s.readTable(tableNumber); !ok {
		return nil, models.NewTableNotFound(tableNumber)
	}
	tempID := models.LocalTabIDPrefix + uuid.NewString()
	tab, err := models.NewCustomerTab(tempID, tableNumber, name, guestID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(tableKey(tableNumber))
	defer unlock()

	snap := s.tabs.BeginMutation(tableNumber, func(current []models.CustomerTab, _ bool) []models.CustomerTab {
		return append(current, *tab.Clone())
	})

	s.mu.Lock()
	s.tabIndex[tempID] = tableNumber
	_, hadActive := s.activeTabs[tableNumber]
	if !hadActive {
		s.activeTabs[tableNumber] = tempID
	}
	s.mu.Unlock()

	var created *models.CustomerTab
	err = s.callRemote(ctx, "create_customer_tab", func(ctx context.Context) error {
		res, err := s.remote.CreateCustomerTab(ctx, client.CreateCustomerTabRequest{
			TableNumber: tableNumber,
			Name:        name,
			GuestID:     guestID,
		})
		if err != nil {
			return err
		}
		created = res
		return nil
	})
	if err != nil {
		s.tabs.Rollback(tableNumber, snap)
		s.mu.Lock()
		delete(s.tabIndex, tempID)
		if s.activeTabs[tableNumber] == tempID {
			delete(s.activeTabs, tableNumber)
		}
		s.mu.Unlock()
		s.recordTabFailure(tempID, tableNumber, "create_customer_tab", err)
		return nil, &RemoteFailure{Op: "create_customer_tab", Err: err}
	}

	// tukar correlation token dengan id server pada posisi yang sama
	list, _ := s.tabs.GetOptimistic(tableNumber)
	if idx := findTabIndex(list, tempID); idx >= 0 {
		list[idx] = *created.Clone()
	}
	s.tabs.Commit(tableNumber, list)

	s.mu.Lock()
	delete(s.tabIndex, tempID)
	s.tabIndex[created.ID] = tableNumber
	if s.activeTabs[tableNumber] == tempID {
		s.activeTabs[tableNumber] = created.ID
	}
	s.mu.Unlock()

	s.errors.ClearTabError(tempID)
	utils.InfoLogger.Printf("Tab %s (%s) created on table %d", created.ID, created.Name, tableNumber)
	s.publish(EventTabUpdate, created)
	return created.Clone(), nil
}

// UpdateTab -> partial merge atas nama, item list, atau status tab
func (s *OrderSyncService) UpdateTab(ctx context.Context, tabID string, update TabUpdate) (*models.CustomerTab, error) {
	tableNumber, ok := s.locateTab(tabID)
	if !ok {
		return nil, models.NewTabNotFound(tabID)
	}

	unlock := s.locks.Lock(tableKey(tableNumber))
	defer unlock()

	list := s.readTabs(tableNumber)
	if findTabIndex(list, tabID) < 0 {
		return nil, models.NewTabNotFound(tabID)
	}

	snap := s.tabs.BeginMutation(tableNumber, func(current []models.CustomerTab, _ bool) []models.CustomerTab {
		if idx := findTabIndex(current, tabID); idx >= 0 {
			if update.Name != nil {
				current[idx].Name = *update.Name
			}
			if update.Items != nil {
				current[idx].Items = models.CloneItems(*update.Items)
			}
			if update.Status != nil {
				current[idx].Status = *update.Status
			}
			current[idx].UpdatedAt = time.Now()
		}
		return current
	})

	var updated *models.CustomerTab
	err := s.callRemote(ctx, "update_customer_tab", func(ctx context.Context) error {
		res, err := s.remote.UpdateCustomerTab(ctx, client.UpdateCustomerTabRequest{
			TabID:  tabID,
			Name:   update.Name,
			Items:  update.Items,
			Status: update.Status,
		})
		if err != nil {
			return err
		}
		updated = res
		return nil
	})
	if err != nil {
		s.tabs.Rollback(tableNumber, snap)
		s.recordTabFailure(tabID, tableNumber, "update_customer_tab", err)
		return nil, &RemoteFailure{Op: "update_customer_tab", Err: err}
	}

	s.commitTabIntoList(tableNumber, updated)
	s.errors.ClearTabError(tabID)
	s.publish(EventTabUpdate, updated)
	return updated.Clone(), nil
}

// commitTabIntoList -> merge snapshot server untuk satu tab ke list meja,
// lalu commit kedua lapis
func (s *OrderSyncService) commitTabIntoList(tableNumber int, tab *models.CustomerTab) {
	list, _ := s.tabs.GetOptimistic(tableNumber)
	if idx := findTabIndex(list, tab.ID); idx >= 0 {
		list[idx] = *tab.Clone()
	} else {
		list = append(list, *tab.Clone())
	}
	s.tabs.Commit(tableNumber, list)
}

// AddItemsToTab -> append item ke tab; input kosong adalah no-op
func (s *OrderSyncService) AddItemsToTab(ctx context.Context, tabID string, items []models.OrderItem) (*models.CustomerTab, error) {
	tableNumber, ok := s.locateTab(tabID)
	if !ok {
		return nil, models.NewTabNotFound(tabID)
	}

	unlock := s.locks.Lock(tableKey(tableNumber))
	defer unlock()

	list := s.readTabs(tableNumber)
	idx := findTabIndex(list, tabID)
	if idx < 0 {
		return nil, models.NewTabNotFound(tabID)
	}
	if len(items) == 0 {
		return list[idx].Clone(), nil
	}

	merged := append(models.CloneItems(list[idx].Items), items...)
	return s.applyTabItemsLocked(ctx, tableNumber, tabID, merged, "add_items_to_customer_tab",
		func(ctx context.Context) (*models.CustomerTab, error) {
			return s.remote.AddItemsToCustomerTab(ctx, tabID, items)
		})
}

// RemoveItemFromTab -> hapus satu item tab berdasarkan posisi
func (s *OrderSyncService) RemoveItemFromTab(ctx context.Context, tabID string, index int) (*models.CustomerTab, error) {
	tableNumber, ok := s.locateTab(tabID)
	if !ok {
		return nil, models.NewTabNotFound(tabID)
	}

	unlock := s.locks.Lock(tableKey(tableNumber))
	defer unlock()

	list := s.readTabs(tableNumber)
	idx := findTabIndex(list, tabID)
	if idx < 0 {
		return nil, models.NewTabNotFound(tabID)
	}
	if index < 0 || index >= len(list[idx].Items) {
		return nil, &models.NotFoundError{Entity: "item", Key: strconv.Itoa(index)}
	}

	remaining := make([]models.OrderItem, 0, len(list[idx].Items)-1)
	remaining = append(remaining, list[idx].Items[:index]...)
	remaining = append(remaining, list[idx].Items[index+1:]...)
	items := remaining
	return s.applyTabItemsLocked(ctx, tableNumber, tabID, items, "update_customer_tab",
		func(ctx context.Context) (*models.CustomerTab, error) {
			return s.remote.UpdateCustomerTab(ctx, client.UpdateCustomerTabRequest{TabID: tabID, Items: &items})
		})
}

// ReplaceTabItems -> replace item list tab secara utuh
func (s *OrderSyncService) ReplaceTabItems(ctx context.Context, tabID string, items []models.OrderItem) (*models.CustomerTab, error) {
	tableNumber, ok := s.locateTab(tabID)
	if !ok {
		return nil, models.NewTabNotFound(tabID)
	}

	unlock := s.locks.Lock(tableKey(tableNumber))
	defer unlock()

	if findTabIndex(s.readTabs(tableNumber), tabID) < 0 {
		return nil, models.NewTabNotFound(tabID)
	}
	items = models.CloneItems(items)
	return s.applyTabItemsLocked(ctx, tableNumber, tabID, items, "update_customer_tab",
		func(ctx context.Context) (*models.CustomerTab, error) {
			return s.remote.UpdateCustomerTab(ctx, client.UpdateCustomerTabRequest{TabID: tabID, Items: &items})
		})
}

// applyTabItemsLocked -> jalur bersama mutasi item satu tab: transform
// optimistic, remote call, commit atau rollback. Caller sudah memegang lock
// meja.
func (s *OrderSyncService) applyTabItemsLocked(ctx context.Context, tableNumber int, tabID string, items []models.OrderItem, op string, call func(ctx context.Context) (*models.CustomerTab, error)) (*models.CustomerTab, error) {
	snap := s.tabs.BeginMutation(tableNumber, func(current []models.CustomerTab, _ bool) []models.CustomerTab {
		if idx := findTabIndex(current, tabID); idx >= 0 {
			current[idx].Items = models.CloneItems(items)
			current[idx].UpdatedAt = time.Now()
		}
		return current
	})

	var updated *models.CustomerTab
	err := s.callRemote(ctx, op, func(ctx context.Context) error {
		res, err := call(ctx)
		if err != nil {
			return err
		}
		updated = res
		return nil
	})
	if err != nil {
		s.tabs.Rollback(tableNumber, snap)
		s.recordTabFailure(tabID, tableNumber, op, err)
		return nil, &RemoteFailure{Op: op, Err: err}
	}

	s.commitTabIntoList(tableNumber, updated)
	s.errors.ClearTabError(tabID)
	s.publish(EventTabUpdate, updated)
	return updated.Clone(), nil
}

// CloseTab -> tab selesai dibayar; keluar dari list meja
func (s *OrderSyncService) CloseTab(ctx context.Context, tabID string) error {
	return s.removeTab(ctx, tabID, "close_customer_tab", func(ctx context.Context) error {
		_, err := s.remote.CloseCustomerTab(ctx, tabID)
		return err
	})
}

// DeleteTab -> tab dibatalkan dan dihapus
func (s *OrderSyncService) DeleteTab(ctx context.Context, tabID string) error {
	return s.removeTab(ctx, tabID, "delete_customer_tab", func(ctx context.Context) error {
		return s.remote.DeleteCustomerTab(ctx, tabID)
	})
}

// removeTab -> jalur bersama CloseTab dan DeleteTab. Kalau tab yang dihapus
// sedang aktif, tab berikutnya menurut urutan list menjadi aktif, atau
// pointer dihapus kalau tidak ada yang tersisa.
func (s *OrderSyncService) removeTab(ctx context.Context, tabID, op string, call func(ctx context.Context) error) error {
	tableNumber, ok := s.locateTab(tabID)
	if !ok {
		return models.NewTabNotFound(tabID)
	}

	unlock := s.locks.Lock(tableKey(tableNumber))
	defer unlock()

	list := s.readTabs(tableNumber)
	idx := findTabIndex(list, tabID)
	if idx < 0 {
		return models.NewTabNotFound(tabID)
	}

	snap := s.tabs.BeginMutation(tableNumber, func(current []models.CustomerTab, _ bool) []models.CustomerTab {
		if i := findTabIndex(current, tabID); i >= 0 {
			current = append(current[:i], current[i+1:]...)
		}
		return current
	})

	s.mu.Lock()
	prevActive, hadActive := s.activeTabs[tableNumber]
	if hadActive && prevActive == tabID {
		remaining, _ := s.tabs.GetOptimistic(tableNumber)
		if len(remaining) > 0 {
			next := idx
			if next >= len(remaining) {
				next = len(remaining) - 1
			}
			s.activeTabs[tableNumber] = remaining[next].ID
		} else {
			delete(s.activeTabs, tableNumber)
		}
	}
	delete(s.tabIndex, tabID)
	s.mu.Unlock()

	err := s.callRemote(ctx, op, call)
	if err != nil {
		s.tabs.Rollback(tableNumber, snap)
		s.mu.Lock()
		s.tabIndex[tabID] = tableNumber
		if hadActive {
			s.activeTabs[tableNumber] = prevActive
		}
		s.mu.Unlock()
		s.recordTabFailure(tabID, tableNumber, op, err)
		return &RemoteFailure{Op: op, Err: err}
	}

	list, _ = s.tabs.GetOptimistic(tableNumber)
	s.tabs.Commit(tableNumber, list)
	s.errors.ClearTabError(tabID)
	utils.InfoLogger.Printf("Tab %s removed from table %d (%s)", tabID, tableNumber, op)
	s.publish(EventTabUpdate, map[string]interface{}{"table_number": tableNumber, "removed_tab": tabID})
	return nil
}

// SplitTab mempartisi item list tab sumber jadi dua list disjoint: tab baru
// menerima persis item pada itemIndices (urutan dipertahankan), tab sumber
// menyimpan komplemennya. Split yang akan mengosongkan tab sumber ditolak.
func (s *OrderSyncService) SplitTab(ctx context.Context, sourceTabID, newName string, itemIndices []int, guestID string) (*client.SplitTabResult, error) {
	if len(itemIndices) == 0 {
		return nil, &models.ValidationError{Field: "item_indices", Message: "at least one item must be selected"}
	}
	tableNumber, ok := s.locateTab(sourceTabID)
	if !ok {
		return nil, models.NewTabNotFound(sourceTabID)
	}

	unlock := s.locks.Lock(tableKey(tableNumber))
	defer unlock()

	list := s.readTabs(tableNumber)
	idx := findTabIndex(list, sourceTabID)
	if idx < 0 {
		return nil, models.NewTabNotFound(sourceTabID)
	}

	selected, remaining, ok := models.PartitionItems(list[idx].Items, itemIndices)
	if !ok {
		return nil, &models.ValidationError{Field: "item_indices", Message: "item index out of range"}
	}
	if len(remaining) == 0 {
		return nil, &models.ValidationError{Field: "item_indices", Message: "split would leave source tab empty"}
	}

	tempID := models.LocalTabIDPrefix + uuid.NewString()
	newTab, err := models.NewCustomerTab(tempID, tableNumber, newName, guestID)
	if err != nil {
		return nil, err
	}
	newTab.Items = selected

	snap := s.tabs.BeginMutation(tableNumber, func(current []models.CustomerTab, _ bool) []models.CustomerTab {
		if i := findTabIndex(current, sourceTabID); i >= 0 {
			current[i].Items = models.CloneItems(remaining)
			current[i].UpdatedAt = time.Now()
		}
		return append(current, *newTab.Clone())
	})

	s.mu.Lock()
	s.tabIndex[tempID] = tableNumber
	s.mu.Unlock()

	var result *client.SplitTabResult
	err = s.callRemote(ctx, "split_tab", func(ctx context.Context) error {
		res, err := s.remote.SplitTab(ctx, client.SplitTabRequest{
			SourceTabID: sourceTabID,
			NewName:     newName,
			ItemIndices: itemIndices,
			GuestID:     guestID,
		})
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		s.tabs.Rollback(tableNumber, snap)
		s.mu.Lock()
		delete(s.tabIndex, tempID)
		s.mu.Unlock()
		s.recordTabFailure(sourceTabID, tableNumber, "split_tab", err)
		return nil, &RemoteFailure{Op: "split_tab", Err: err}
	}

	// tukar entry optimistic dengan kedua snapshot server
	list, _ = s.tabs.GetOptimistic(tableNumber)
	if i := findTabIndex(list, sourceTabID); i >= 0 {
		list[i] = *result.OriginalTab.Clone()
	}
	if i := findTabIndex(list, tempID); i >= 0 {
		list[i] = *result.NewTab.Clone()
	}
	s.tabs.Commit(tableNumber, list)

	s.mu.Lock()
	delete(s.tabIndex, tempID)
	s.tabIndex[result.NewTab.ID] = tableNumber
	s.mu.Unlock()

	s.errors.ClearTabError(sourceTabID)
	utils.InfoLogger.Printf("Tab %s split: %d items moved to new tab %s", sourceTabID, len(selected), result.NewTab.ID)
	s.publish(EventTabUpdate, result)
	return result, nil
}

// MergeTabs menggabungkan dua tab: target menyerap item source (append,
// bukan interleave), source dihapus. Kalau source sedang aktif, pointer
// aktif berpindah ke target (satu meja) atau ke tab berikutnya di meja
// sumber (lintas meja).
func (s *OrderSyncService) MergeTabs(ctx context.Context, sourceTabID, targetTabID string) (*models.CustomerTab, error) {
	if sourceTabID == targetTabID {
		return nil, &models.ValidationError{Field: "target_tab_id", Message: "cannot merge a tab into itself"}
	}
	srcTable, ok := s.locateTab(sourceTabID)
	if !ok {
		return nil, models.NewTabNotFound(sourceTabID)
	}
	tgtTable, ok := s.locateTab(targetTabID)
	if !ok {
		return nil, models.NewTabNotFound(targetTabID)
	}

	unlockAll := s.lockTables(srcTable, tgtTable)
	defer unlockAll()

	srcList := s.readTabs(srcTable)
	srcIdx := findTabIndex(srcList, sourceTabID)
	if srcIdx < 0 {
		return nil, models.NewTabNotFound(sourceTabID)
	}
	if findTabIndex(s.readTabs(tgtTable), targetTabID) < 0 {
		return nil, models.NewTabNotFound(targetTabID)
	}
	sourceItems := models.CloneItems(srcList[srcIdx].Items)

	// transform optimistic: target menyerap, source hilang
	snaps := make(map[int]Snapshot[[]models.CustomerTab])
	snaps[tgtTable] = s.tabs.BeginMutation(tgtTable, func(current []models.CustomerTab, _ bool) []models.CustomerTab {
		if i := findTabIndex(current, targetTabID); i >= 0 {
			current[i].Items = append(current[i].Items, sourceItems...)
			current[i].UpdatedAt = time.Now()
		}
		if srcTable == tgtTable {
			if i := findTabIndex(current, sourceTabID); i >= 0 {
				current = append(current[:i], current[i+1:]...)
			}
		}
		return current
	})
	if srcTable != tgtTable {
		snaps[srcTable] = s.tabs.BeginMutation(srcTable, func(current []models.CustomerTab, _ bool) []models.CustomerTab {
			if i := findTabIndex(current, sourceTabID); i >= 0 {
				current = append(current[:i], current[i+1:]...)
			}
			return current
		})
	}

	s.mu.Lock()
	prevActive, hadActive := s.activeTabs[srcTable]
	if hadActive && prevActive == sourceTabID {
		if srcTable == tgtTable {
			s.activeTabs[srcTable] = targetTabID
		} else {
			// pointer aktif meja sumber harus tetap menunjuk tab meja itu
			// sendiri: tab berikutnya menurut urutan list yang jadi aktif
			remaining, _ := s.tabs.GetOptimistic(srcTable)
			if len(remaining) > 0 {
				next := srcIdx
				if next >= len(remaining) {
					next = len(remaining) - 1
				}
				s.activeTabs[srcTable] = remaining[next].ID
			} else {
				delete(s.activeTabs, srcTable)
			}
		}
	}
	delete(s.tabIndex, sourceTabID)
	s.mu.Unlock()

	var merged *models.CustomerTab
	err := s.callRemote(ctx, "merge_tabs", func(ctx context.Context) error {
		res, err := s.remote.MergeTabs(ctx, sourceTabID, targetTabID)
		if err != nil {
			return err
		}
		merged = res
		return nil
	})
	if err != nil {
		for table, snap := range snaps {
			s.tabs.Rollback(table, snap)
		}
		s.mu.Lock()
		s.tabIndex[sourceTabID] = srcTable
		if hadActive {
			s.activeTabs[srcTable] = prevActive
		}
		s.mu.Unlock()
		s.recordTabFailure(sourceTabID, srcTable, "merge_tabs", err)
		return nil, &RemoteFailure{Op: "merge_tabs", Err: err}
	}

	s.commitTabIntoList(tgtTable, merged)
	if srcTable != tgtTable {
		srcAfter, _ := s.tabs.GetOptimistic(srcTable)
		s.tabs.Commit(srcTable, srcAfter)
	}
	s.errors.ClearTabError(sourceTabID)
	utils.InfoLogger.Printf("Tab %s merged into %s", sourceTabID, targetTabID)
	s.publish(EventTabUpdate, merged)
	return merged.Clone(), nil
}

// MoveItems memindahkan item pada itemIndices dari tab sumber ke tab target
// (append di belakang item target). Filter berdasarkan posisi dengan
// komplemen index yang stabil, bukan berdasarkan nilai item.
func (s *OrderSyncService) MoveItems(ctx context.Context, sourceTabID, targetTabID string, itemIndices []int) (*client.MoveItemsResult, error) {
	if len(itemIndices) == 0 {
		return nil, &models.ValidationError{Field: "item_indices", Message: "at least one item must be selected"}
	}
	if sourceTabID == targetTabID {
		return nil, &models.ValidationError{Field: "target_tab_id", Message: "cannot move items to the same tab"}
	}
	srcTable, ok := s.locateTab(sourceTabID)
	if !ok {
		return nil, models.NewTabNotFound(sourceTabID)
	}
	tgtTable, ok := s.locateTab(targetTabID)
	if !ok {
		return nil, models.NewTabNotFound(targetTabID)
	}

	unlockAll := s.lockTables(srcTable, tgtTable)
	defer unlockAll()

	srcList := s.readTabs(srcTable)
	srcIdx := findTabIndex(srcList, sourceTabID)
	if srcIdx < 0 {
		return nil, models.NewTabNotFound(sourceTabID)
	}
	if findTabIndex(s.readTabs(tgtTable), targetTabID) < 0 {
		return nil, models.NewTabNotFound(targetTabID)
	}

	selected, remaining, ok := models.PartitionItems(srcList[srcIdx].Items, itemIndices)
	if !ok {
		return nil, &models.ValidationError{Field: "item_indices", Message: "item index out of range"}
	}

	snaps := make(map[int]Snapshot[[]models.CustomerTab])
	snaps[srcTable] = s.tabs.BeginMutation(srcTable, func(current []models.CustomerTab, _ bool) []models.CustomerTab {
		if i := findTabIndex(current, sourceTabID); i >= 0 {
			current[i].Items = models.CloneItems(remaining)
			current[i].UpdatedAt = time.Now()
		}
		if srcTable == tgtTable {
			if i := findTabIndex(current, targetTabID); i >= 0 {
				current[i].Items = append(current[i].Items, selected...)
				current[i].UpdatedAt = time.Now()
			}
		}
		return current
	})
	if srcTable != tgtTable {
		snaps[tgtTable] = s.tabs.BeginMutation(tgtTable, func(current []models.CustomerTab, _ bool) []models.CustomerTab {
			if i := findTabIndex(current, targetTabID); i >= 0 {
				current[i].Items = append(current[i].Items, selected...)
				current[i].UpdatedAt = time.Now()
			}
			return current
		})
	}

	var result *client.MoveItemsResult
	err := s.callRemote(ctx, "move_items_between_tabs", func(ctx context.Context) error {
		res, err := s.remote.MoveItemsBetweenTabs(ctx, client.MoveItemsRequest{
			SourceTabID: sourceTabID,
			TargetTabID: targetTabID,
			ItemIndices: itemIndices,
		})
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		for table, snap := range snaps {
			s.tabs.Rollback(table, snap)
		}
		s.recordTabFailure(sourceTabID, srcTable, "move_items_between_tabs", err)
		return nil, &RemoteFailure{Op: "move_items_between_tabs", Err: err}
	}

	s.commitTabIntoList(srcTable, &result.SourceTab)
	s.commitTabIntoList(tgtTable, &result.TargetTab)
	s.errors.ClearTabError(sourceTabID)
	utils.InfoLogger.Printf("Moved %d items from tab %s to %s", len(selected), sourceTabID, targetTabID)
	s.publish(EventTabUpdate, result)
	return result, nil
}

// lockTables -> ambil lock beberapa meja dalam urutan nomor supaya dua
// operasi lintas meja tidak saling deadlock
func (s *OrderSyncService) lockTables(tables ...int) func() {
	uniq := make(map[int]bool)
	var ordered []int
	for _, t := range tables {
		if !uniq[t] {
			uniq[t] = true
			ordered = append(ordered, t)
		}
	}
	sort.Ints(ordered)

	var unlocks []func()
	for _, t := range ordered {
		unlocks = append(unlocks, s.locks.Lock(tableKey(t)))
	}
	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

func (s *OrderSyncService) recordTabFailure(tabID string, tableNumber int, op string, err error) {
	message := fmt.Sprintf("%s failed: %v", op, err)
	s.errors.RecordTabError(tabID, message)
	utils.ErrorLogger.Printf("Tab %s (table %d): %s", tabID, tableNumber, message)
	s.publish(EventMutationFailed, map[string]interface{}{
		"tab_id":       tabID,
		"table_number": tableNumber,
		"op":           op,
		"error":        err.Error(),
	})
}
