package models

import (
	"strings"
	"time"
)

// Status tab customer
const (
	TabStatusActive    = "active"
	TabStatusPaid      = "paid"
	TabStatusCancelled = "cancelled"
)

// LocalTabIDPrefix menandai correlation token lokal untuk tab yang masih
// menunggu id otoritatif dari server (optimistic create).
const LocalTabIDPrefix = "local-"

// CustomerTab adalah sub-order satu tamu (atau sub-rombongan) di dalam satu
// meja. ID unik secara global, bukan hanya per meja.
type CustomerTab struct {
	ID          string      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	TableNumber int         `gorm:"index;not null" json:"table_number"`
	Name        string      `gorm:"type:varchar(100);not null" json:"name"`
	Items       []OrderItem `gorm:"serializer:json" json:"items"`
	Status      string      `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	GuestID     string      `gorm:"type:varchar(64)" json:"guest_id,omitempty"`
	CreatedAt   time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"not null" json:"updated_at"`
}

// NewCustomerTab -> membuat tab baru berstatus active dengan item kosong
func NewCustomerTab(id string, tableNumber int, name, guestID string) (*CustomerTab, error) {
	if tableNumber < 1 {
		return nil, &ValidationError{Field: "table_number", Message: "table number must be positive"}
	}
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Message: "tab name is required"}
	}
	now := time.Now()
	tab := &CustomerTab{
		ID:          id,
		TableNumber: tableNumber,
		Name:        name,
		Items:       []OrderItem{},
		Status:      TabStatusActive,
		GuestID:     guestID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return tab, nil
}

// Clone -> deep copy dari tab
func (t *CustomerTab) Clone() *CustomerTab {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Items = CloneItems(t.Items)
	return &cp
}

// CloneTabs -> deep copy dari list tab satu meja
func CloneTabs(tabs []CustomerTab) []CustomerTab {
	if tabs == nil {
		return nil
	}
	out := make([]CustomerTab, len(tabs))
	for i := range tabs {
		out[i] = *tabs[i].Clone()
	}
	return out
}

// Total -> total harga seluruh item di tab
func (t *CustomerTab) Total() float64 {
	return ItemsTotal(t.Items)
}

// IsLocalID -> true kalau id masih correlation token lokal (belum di-commit)
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalTabIDPrefix)
}
