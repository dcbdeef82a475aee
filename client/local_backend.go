package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos-terminal/models"
)

// LocalBackend adalah implementasi PersistenceAPI di atas database embedded
// (sqlite untuk mode standalone, mysql kalau terminal menunjuk DB bersama).
// Semantik split/merge/move di sini adalah semantik otoritatif yang sama
// dengan server pusat, supaya engine tidak peduli backend mana yang dipakai.
type LocalBackend struct {
	DB *gorm.DB
}

// OpenLocalBackend -> buka koneksi sesuai driver lalu migrasi model
func OpenLocalBackend(driver, dsn string) (*LocalBackend, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite", "":
		if dsn == "" {
			dsn = "file:pos_terminal.db?cache=shared"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return NewLocalBackend(db)
}

// NewLocalBackend -> bungkus koneksi gorm yang sudah ada (dipakai juga di test)
func NewLocalBackend(db *gorm.DB) (*LocalBackend, error) {
	if err := db.AutoMigrate(&models.TableOrder{}, &models.CustomerTab{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &LocalBackend{DB: db}, nil
}

func (b *LocalBackend) ListTableOrders(ctx context.Context) ([]models.TableOrder, error) {
	var orders []models.TableOrder
	if err := b.DB.WithContext(ctx).Order("table_number asc").Find(&orders).Error; err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	return orders, nil
}

func (b *LocalBackend) CreateTableOrder(ctx context.Context, req CreateTableOrderRequest) (*models.TableOrder, error) {
	order, err := models.NewTableOrder(req.TableNumber, req.GuestCount, req.LinkedTables)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}

	err = b.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.TableOrder
		if err := tx.Where("table_number = ?", req.TableNumber).First(&existing).Error; err == nil {
			return fmt.Errorf("table %d already has an open order", req.TableNumber)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		// linked table menyimpan back-reference ke meja utama
		for _, linked := range req.LinkedTables {
			member := models.TableOrder{
				TableNumber:  linked,
				Status:       models.TableStatusSeated,
				GuestCount:   0,
				Items:        []models.OrderItem{},
				PrimaryTable: req.TableNumber,
				CreatedAt:    order.CreatedAt,
				UpdatedAt:    order.UpdatedAt,
			}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	return order, nil
}

func (b *LocalBackend) UpdateTableOrder(ctx context.Context, req UpdateTableOrderRequest) (*models.TableOrder, error) {
	var order models.TableOrder
	if err := b.DB.WithContext(ctx).Where("table_number = ?", req.TableNumber).First(&order).Error; err != nil {
		return nil, b.wrapLookupError(err, fmt.Sprintf("table %d", req.TableNumber))
	}
	order.Items = models.CloneItems(req.Items)
	order.UpdatedAt = time.Now()
	if err := b.DB.WithContext(ctx).Save(&order).Error; err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	return &order, nil
}

func (b *LocalBackend) CompleteTableOrder(ctx context.Context, tableNumber int) error {
	// idempotent: menghapus order yang sudah tidak ada bukan error.
	// Meja tambahan yang ter-link ke meja ini ikut dibubarkan.
	err := b.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var members []int
		if err := tx.Model(&models.TableOrder{}).
			Where("primary_table = ?", tableNumber).
			Pluck("table_number", &members).Error; err != nil {
			return err
		}
		tables := append(members, tableNumber)
		if err := tx.Where("table_number = ? OR primary_table = ?", tableNumber, tableNumber).
			Delete(&models.TableOrder{}).Error; err != nil {
			return err
		}
		return tx.Where("table_number IN ?", tables).Delete(&models.CustomerTab{}).Error
	})
	if err != nil {
		return &APIError{Message: err.Error()}
	}
	return nil
}

func (b *LocalBackend) ResetTableToAvailable(ctx context.Context, tableNumber int) error {
	return b.CompleteTableOrder(ctx, tableNumber)
}

func (b *LocalBackend) ListCustomerTabsForTable(ctx context.Context, tableNumber int) ([]models.CustomerTab, error) {
	// tab yang sudah paid/cancelled bukan bagian dari state meja yang terbuka
	var tabs []models.CustomerTab
	if err := b.DB.WithContext(ctx).
		Where("table_number = ? AND status = ?", tableNumber, models.TabStatusActive).
		Order("created_at asc").
		Find(&tabs).Error; err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	return tabs, nil
}

func (b *LocalBackend) CreateCustomerTab(ctx context.Context, req CreateCustomerTabRequest) (*models.CustomerTab, error) {
	tab, err := models.NewCustomerTab(uuid.NewString(), req.TableNumber, req.Name, req.GuestID)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	if err := b.DB.WithContext(ctx).Create(tab).Error; err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	return tab, nil
}

func (b *LocalBackend) UpdateCustomerTab(ctx context.Context, req UpdateCustomerTabRequest) (*models.CustomerTab, error) {
	var tab models.CustomerTab
	if err := b.DB.WithContext(ctx).Where("id = ?", req.TabID).First(&tab).Error; err != nil {
		return nil, b.wrapLookupError(err, "tab "+req.TabID)
	}
	if req.Name != nil {
		tab.Name = *req.Name
	}
	if req.Items != nil {
		tab.Items = models.CloneItems(*req.Items)
	}
	if req.Status != nil {
		tab.Status = *req.Status
	}
	tab.UpdatedAt = time.Now()
	if err := b.DB.WithContext(ctx).Save(&tab).Error; err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	return &tab, nil
}

func (b *LocalBackend) AddItemsToCustomerTab(ctx context.Context, tabID string, items []models.OrderItem) (*models.CustomerTab, error) {
	var tab models.CustomerTab
	if err := b.DB.WithContext(ctx).Where("id = ?", tabID).First(&tab).Error; err != nil {
		return nil, b.wrapLookupError(err, "tab "+tabID)
	}
	tab.Items = append(models.CloneItems(tab.Items), items...)
	tab.UpdatedAt = time.Now()
	if err := b.DB.WithContext(ctx).Save(&tab).Error; err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	return &tab, nil
}

func (b *LocalBackend) CloseCustomerTab(ctx context.Context, tabID string) (*models.CustomerTab, error) {
	var tab models.CustomerTab
	if err := b.DB.WithContext(ctx).Where("id = ?", tabID).First(&tab).Error; err != nil {
		return nil, b.wrapLookupError(err, "tab "+tabID)
	}
	tab.Status = models.TabStatusPaid
	tab.UpdatedAt = time.Now()
	if err := b.DB.WithContext(ctx).Save(&tab).Error; err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	return &tab, nil
}

func (b *LocalBackend) DeleteCustomerTab(ctx context.Context, tabID string) error {
	if err := b.DB.WithContext(ctx).Where("id = ?", tabID).Delete(&models.CustomerTab{}).Error; err != nil {
		return &APIError{Message: err.Error()}
	}
	return nil
}

func (b *LocalBackend) SplitTab(ctx context.Context, req SplitTabRequest) (*SplitTabResult, error) {
	if len(req.ItemIndices) == 0 {
		return nil, &APIError{Message: "split requires at least one item index"}
	}

	var result SplitTabResult
	err := b.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var source models.CustomerTab
		if err := tx.Where("id = ?", req.SourceTabID).First(&source).Error; err != nil {
			return fmt.Errorf("tab %s not found", req.SourceTabID)
		}
		selected, remaining, ok := models.PartitionItems(source.Items, req.ItemIndices)
		if !ok {
			return fmt.Errorf("item index out of range")
		}
		if len(remaining) == 0 {
			return fmt.Errorf("split would leave source tab empty")
		}

		newTab, err := models.NewCustomerTab(uuid.NewString(), source.TableNumber, req.NewName, req.GuestID)
		if err != nil {
			return err
		}
		newTab.Items = selected

		source.Items = remaining
		source.UpdatedAt = time.Now()
		if err := tx.Save(&source).Error; err != nil {
			return err
		}
		if err := tx.Create(newTab).Error; err != nil {
			return err
		}
		result = SplitTabResult{OriginalTab: source, NewTab: *newTab}
		return nil
	})
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	return &result, nil
}

func (b *LocalBackend) MergeTabs(ctx context.Context, sourceTabID, targetTabID string) (*models.CustomerTab, error) {
	var target models.CustomerTab
	err := b.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var source models.CustomerTab
		if err := tx.Where("id = ?", sourceTabID).First(&source).Error; err != nil {
			return fmt.Errorf("tab %s not found", sourceTabID)
		}
		if err := tx.Where("id = ?", targetTabID).First(&target).Error; err != nil {
			return fmt.Errorf("tab %s not found", targetTabID)
		}
		// target menyerap item source, source dihapus
		target.Items = append(models.CloneItems(target.Items), source.Items...)
		target.UpdatedAt = time.Now()
		if err := tx.Save(&target).Error; err != nil {
			return err
		}
		return tx.Delete(&source).Error
	})
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	return &target, nil
}

func (b *LocalBackend) MoveItemsBetweenTabs(ctx context.Context, req MoveItemsRequest) (*MoveItemsResult, error) {
	if len(req.ItemIndices) == 0 {
		return nil, &APIError{Message: "move requires at least one item index"}
	}

	var result MoveItemsResult
	err := b.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var source, target models.CustomerTab
		if err := tx.Where("id = ?", req.SourceTabID).First(&source).Error; err != nil {
			return fmt.Errorf("tab %s not found", req.SourceTabID)
		}
		if err := tx.Where("id = ?", req.TargetTabID).First(&target).Error; err != nil {
			return fmt.Errorf("tab %s not found", req.TargetTabID)
		}
		selected, remaining, ok := models.PartitionItems(source.Items, req.ItemIndices)
		if !ok {
			return fmt.Errorf("item index out of range")
		}
		source.Items = remaining
		target.Items = append(models.CloneItems(target.Items), selected...)
		now := time.Now()
		source.UpdatedAt = now
		target.UpdatedAt = now
		if err := tx.Save(&source).Error; err != nil {
			return err
		}
		if err := tx.Save(&target).Error; err != nil {
			return err
		}
		result = MoveItemsResult{SourceTab: source, TargetTab: target}
		return nil
	})
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	return &result, nil
}

func (b *LocalBackend) wrapLookupError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &APIError{Message: what + " not found"}
	}
	return &APIError{Message: err.Error()}
}
