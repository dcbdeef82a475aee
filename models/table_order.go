package models

import "time"

// Status meja
const (
	TableStatusAvailable = "available"
	TableStatusSeated    = "seated"
)

// TableOrder adalah state order untuk satu meja fisik yang sedang terisi.
// TableNumber adalah natural key: satu nomor meja maksimal punya satu
// TableOrder pada satu waktu.
type TableOrder struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	TableNumber  int         `gorm:"uniqueIndex;not null" json:"table_number"`
	Status       string      `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	GuestCount   int         `gorm:"not null" json:"guest_count"`
	Items        []OrderItem `gorm:"serializer:json" json:"items"`
	LinkedTables []int       `gorm:"serializer:json" json:"linked_tables,omitempty"`
	// PrimaryTable menyimpan back-reference ke meja utama kalau meja ini
	// di-link sebagai meja tambahan. 0 berarti bukan linked table.
	PrimaryTable int       `json:"primary_table,omitempty"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// NewTableOrder -> membuat order meja baru dengan status seated dan item kosong
func NewTableOrder(tableNumber, guestCount int, linkedTables []int) (*TableOrder, error) {
	if tableNumber < 1 {
		return nil, &ValidationError{Field: "table_number", Message: "table number must be positive"}
	}
	if guestCount < 1 {
		return nil, &ValidationError{Field: "guest_count", Message: "guest count must be at least 1"}
	}
	for _, linked := range linkedTables {
		if linked == tableNumber {
			return nil, &ValidationError{Field: "linked_tables", Message: "table cannot link to itself"}
		}
	}
	now := time.Now()
	order := &TableOrder{
		TableNumber:  tableNumber,
		Status:       TableStatusSeated,
		GuestCount:   guestCount,
		Items:        []OrderItem{},
		LinkedTables: append([]int(nil), linkedTables...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return order, nil
}

// Clone -> salinan dalam (deep copy) supaya snapshot cache tidak bisa
// dimutasi dari luar
func (t *TableOrder) Clone() *TableOrder {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Items = CloneItems(t.Items)
	cp.LinkedTables = append([]int(nil), t.LinkedTables...)
	return &cp
}

// Total -> total harga seluruh item di meja
func (t *TableOrder) Total() float64 {
	return ItemsTotal(t.Items)
}

// IsSeated -> true kalau meja sedang terisi tamu
func (t *TableOrder) IsSeated() bool {
	return t.Status == TableStatusSeated
}
