package services

import "sync"

// Snapshot menangkap nilai optimistic sebelum sebuah mutasi, dipakai untuk
// rollback kalau remote call gagal. Present false berarti key belum ada.
type Snapshot[V any] struct {
	Value   V
	Present bool
}

// OptimisticCache adalah store dua lapis per key: confirmed (state terakhir
// yang diketahui cocok dengan server) dan optimistic (proyeksi lokal yang
// bisa mendahului confirmed selama mutasi in-flight). Komponen ini murni
// in-memory dan tidak pernah melakukan I/O.
//
// Nilai di-clone di setiap boundary sehingga snapshot yang sudah dipegang
// caller tidak pernah berubah belakangan.
type OptimisticCache[K comparable, V any] struct {
	mu         sync.RWMutex
	confirmed  map[K]V
	optimistic map[K]V
	clone      func(V) V
}

func NewOptimisticCache[K comparable, V any](clone func(V) V) *OptimisticCache[K, V] {
	return &OptimisticCache[K, V]{
		confirmed:  make(map[K]V),
		optimistic: make(map[K]V),
		clone:      clone,
	}
}

// GetConfirmed -> nilai lapis confirmed
func (c *OptimisticCache[K, V]) GetConfirmed(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.confirmed[key]
	if !ok {
		var zero V
		return zero, false
	}
	return c.clone(v), true
}

// GetOptimistic -> nilai lapis optimistic; jatuh ke confirmed kalau tidak
// ada divergensi untuk key ini
func (c *OptimisticCache[K, V]) GetOptimistic(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.optimistic[key]; ok {
		return c.clone(v), true
	}
	v, ok := c.confirmed[key]
	if !ok {
		var zero V
		return zero, false
	}
	return c.clone(v), true
}

// BeginMutation menerapkan transform pada nilai optimistic sekarang dan
// menyimpan hasilnya, lalu mengembalikan nilai sebelumnya sebagai snapshot
// rollback. Transform menerima clone, jadi boleh memodifikasi argumennya.
func (c *OptimisticCache[K, V]) BeginMutation(key K, transform func(current V, present bool) V) Snapshot[V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, present := c.optimistic[key]
	if !present {
		current, present = c.confirmed[key]
	}

	var snap Snapshot[V]
	if present {
		snap = Snapshot[V]{Value: c.clone(current), Present: true}
		current = c.clone(current)
	}
	c.optimistic[key] = transform(current, present)
	return snap
}

// Commit -> ganti kedua lapis dengan hasil otoritatif dari server
func (c *OptimisticCache[K, V]) Commit(key K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmed[key] = c.clone(v)
	c.optimistic[key] = c.clone(v)
}

// CommitConfirmed -> update lapis confirmed saja (hasil sync loop); lapis
// optimistic ikut diganti hanya kalau tidak sedang menyimpan divergensi
func (c *OptimisticCache[K, V]) CommitConfirmed(key K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmed[key] = c.clone(v)
}

// Rollback -> pulihkan lapis optimistic ke snapshot sebelum mutasi
func (c *OptimisticCache[K, V]) Rollback(key K, snap Snapshot[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if snap.Present {
		c.optimistic[key] = c.clone(snap.Value)
	} else {
		delete(c.optimistic, key)
	}
}

// Drop -> hapus key dari kedua lapis (settlement final)
func (c *OptimisticCache[K, V]) Drop(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.confirmed, key)
	delete(c.optimistic, key)
}

// Remove menghapus key dari kedua lapis secara optimistic dan mengembalikan
// snapshot keduanya supaya Restore bisa memulihkan kalau remote call gagal.
func (c *OptimisticCache[K, V]) Remove(key K) (confirmedSnap, optimisticSnap Snapshot[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.confirmed[key]; ok {
		confirmedSnap = Snapshot[V]{Value: c.clone(v), Present: true}
	}
	if v, ok := c.optimistic[key]; ok {
		optimisticSnap = Snapshot[V]{Value: c.clone(v), Present: true}
	}
	delete(c.confirmed, key)
	delete(c.optimistic, key)
	return
}

// Restore -> kebalikan Remove, dipanggil di jalur rollback
func (c *OptimisticCache[K, V]) Restore(key K, confirmedSnap, optimisticSnap Snapshot[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if confirmedSnap.Present {
		c.confirmed[key] = c.clone(confirmedSnap.Value)
	}
	if optimisticSnap.Present {
		c.optimistic[key] = c.clone(optimisticSnap.Value)
	}
}

// Keys -> union key dari kedua lapis
func (c *OptimisticCache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[K]bool, len(c.optimistic)+len(c.confirmed))
	var keys []K
	for k := range c.optimistic {
		seen[k] = true
		keys = append(keys, k)
	}
	for k := range c.confirmed {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// GetBoth -> kedua lapis sekaligus, untuk deteksi drift
func (c *OptimisticCache[K, V]) GetBoth(key K) (confirmed V, confirmedOK bool, optimistic V, optimisticOK bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.confirmed[key]; ok {
		confirmed, confirmedOK = c.clone(v), true
	}
	if v, ok := c.optimistic[key]; ok {
		optimistic, optimisticOK = c.clone(v), true
	}
	return
}
