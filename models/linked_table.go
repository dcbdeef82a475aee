package models

// LinkedTableGroup adalah view agregat atas satu meja utama plus meja-meja
// tambahan yang di-link karena kapasitas. Group ini diturunkan dari atribut
// TableOrder setiap kali dibutuhkan, tidak pernah dipersist sendiri.
type LinkedTableGroup struct {
	PrimaryTable int                   `json:"primary_table"`
	MemberTables []int                 `json:"member_tables"`
	GuestCount   int                   `json:"guest_count"`
	Orders       map[int]*TableOrder   `json:"orders"`
	Tabs         map[int][]CustomerTab `json:"tabs,omitempty"`
}

// BuildLinkedTableGroup menyusun group dari order meja utama dan lookup
// order per nomor meja. Member yang tidak punya order tetap tercatat di
// MemberTables tapi tidak muncul di Orders.
func BuildLinkedTableGroup(primary *TableOrder, lookup func(tableNumber int) *TableOrder) *LinkedTableGroup {
	if primary == nil {
		return nil
	}
	group := &LinkedTableGroup{
		PrimaryTable: primary.TableNumber,
		MemberTables: []int{primary.TableNumber},
		GuestCount:   primary.GuestCount,
		Orders:       map[int]*TableOrder{primary.TableNumber: primary.Clone()},
	}
	for _, member := range primary.LinkedTables {
		group.MemberTables = append(group.MemberTables, member)
		if order := lookup(member); order != nil {
			group.Orders[member] = order.Clone()
			group.GuestCount += order.GuestCount
		}
	}
	return group
}

// TotalOrders -> gabungan seluruh item dari semua meja dalam group,
// urut mengikuti MemberTables
func (g *LinkedTableGroup) TotalOrders() []OrderItem {
	items := make([]OrderItem, 0)
	for _, member := range g.MemberTables {
		if order, ok := g.Orders[member]; ok {
			items = append(items, CloneItems(order.Items)...)
		}
	}
	return items
}
