package models

// OrderItem merepresentasikan satu line item pada order meja atau tab customer.
// Item disimpan sebagai nilai (bukan referensi), sehingga dua tab tidak pernah
// berbagi identitas item yang sama.
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Notes    string  `json:"notes,omitempty"`
}

// Subtotal -> harga item dikali quantity
func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// CloneItems -> menyalin slice item supaya snapshot lama tidak ikut berubah
func CloneItems(items []OrderItem) []OrderItem {
	if items == nil {
		return nil
	}
	out := make([]OrderItem, len(items))
	copy(out, items)
	return out
}

// ItemsTotal -> total harga dari seluruh item
func ItemsTotal(items []OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}

// PartitionItems membagi item list menjadi dua bagian berdasarkan index set:
// selected berisi item pada posisi indices (urutan list asal dipertahankan),
// remaining berisi komplemennya. Index di luar range mengembalikan ok=false.
func PartitionItems(items []OrderItem, indices []int) (selected, remaining []OrderItem, ok bool) {
	picked := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(items) {
			return nil, nil, false
		}
		picked[idx] = true
	}
	for i, it := range items {
		if picked[i] {
			selected = append(selected, it)
		} else {
			remaining = append(remaining, it)
		}
	}
	return selected, remaining, true
}
