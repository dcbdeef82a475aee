package client

import (
	"context"
	"fmt"

	"github.com/yeremiapane/restaurant-pos-terminal/models"
)

// PersistenceAPI adalah kontrak ke store otoritatif (server pusat restoran
// atau backend embedded). Setiap method mengembalikan snapshot entity utuh;
// response dengan status false dari server dikembalikan sebagai *APIError.
type PersistenceAPI interface {
	ListTableOrders(ctx context.Context) ([]models.TableOrder, error)
	CreateTableOrder(ctx context.Context, req CreateTableOrderRequest) (*models.TableOrder, error)
	UpdateTableOrder(ctx context.Context, req UpdateTableOrderRequest) (*models.TableOrder, error)
	CompleteTableOrder(ctx context.Context, tableNumber int) error
	ResetTableToAvailable(ctx context.Context, tableNumber int) error

	ListCustomerTabsForTable(ctx context.Context, tableNumber int) ([]models.CustomerTab, error)
	CreateCustomerTab(ctx context.Context, req CreateCustomerTabRequest) (*models.CustomerTab, error)
	UpdateCustomerTab(ctx context.Context, req UpdateCustomerTabRequest) (*models.CustomerTab, error)
	AddItemsToCustomerTab(ctx context.Context, tabID string, items []models.OrderItem) (*models.CustomerTab, error)
	CloseCustomerTab(ctx context.Context, tabID string) (*models.CustomerTab, error)
	DeleteCustomerTab(ctx context.Context, tabID string) error

	SplitTab(ctx context.Context, req SplitTabRequest) (*SplitTabResult, error)
	MergeTabs(ctx context.Context, sourceTabID, targetTabID string) (*models.CustomerTab, error)
	MoveItemsBetweenTabs(ctx context.Context, req MoveItemsRequest) (*MoveItemsResult, error)
}

// CreateTableOrderRequest -> payload seat meja baru
type CreateTableOrderRequest struct {
	TableNumber  int   `json:"table_number"`
	GuestCount   int   `json:"guest_count"`
	LinkedTables []int `json:"linked_tables,omitempty"`
}

// UpdateTableOrderRequest -> replace item list meja secara utuh
type UpdateTableOrderRequest struct {
	TableNumber int                `json:"table_number"`
	Items       []models.OrderItem `json:"items"`
}

// CreateCustomerTabRequest -> payload tab baru
type CreateCustomerTabRequest struct {
	TableNumber int    `json:"table_number"`
	Name        string `json:"name"`
	GuestID     string `json:"guest_id,omitempty"`
}

// UpdateCustomerTabRequest -> partial update: field nil tidak diubah
type UpdateCustomerTabRequest struct {
	TabID  string              `json:"tab_id"`
	Name   *string             `json:"name,omitempty"`
	Items  *[]models.OrderItem `json:"items,omitempty"`
	Status *string             `json:"status,omitempty"`
}

// SplitTabRequest -> partisi item tab sumber berdasarkan index set
type SplitTabRequest struct {
	SourceTabID string `json:"source_tab_id"`
	NewName     string `json:"new_name"`
	ItemIndices []int  `json:"item_indices"`
	GuestID     string `json:"guest_id,omitempty"`
}

// SplitTabResult -> kedua tab hasil split
type SplitTabResult struct {
	OriginalTab models.CustomerTab `json:"original_tab"`
	NewTab      models.CustomerTab `json:"new_tab"`
}

// MoveItemsRequest -> pindahkan item antar tab berdasarkan index set
type MoveItemsRequest struct {
	SourceTabID string `json:"source_tab_id"`
	TargetTabID string `json:"target_tab_id"`
	ItemIndices []int  `json:"item_indices"`
}

// MoveItemsResult -> kedua tab setelah item dipindahkan
type MoveItemsResult struct {
	SourceTab models.CustomerTab `json:"source_tab"`
	TargetTab models.CustomerTab `json:"target_tab"`
}

// APIError merepresentasikan response tidak sukses dari persistence API
// (status false atau HTTP error). Engine memperlakukannya sama dengan
// kegagalan transport.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("persistence API error (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return "persistence API error: " + e.Message
}
